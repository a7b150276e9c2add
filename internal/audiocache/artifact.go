package audiocache

import "github.com/google/uuid"

// ArtifactKind tags the two artifact variants
type ArtifactKind int

const (
	// ArtifactRemote is a durable URL owned by the remote audio store
	ArtifactRemote ArtifactKind = iota
	// ArtifactLocal is an in-process byte blob with an ephemeral handle
	ArtifactLocal
)

// String returns the string representation of the kind
func (k ArtifactKind) String() string {
	switch k {
	case ArtifactRemote:
		return "remote"
	case ArtifactLocal:
		return "local"
	default:
		return "unknown"
	}
}

// Artifact is the playable result of a resolve: a remote URL or an
// in-memory blob. Consumers must switch on Kind; exactly one variant's
// fields are set.
type Artifact struct {
	Kind   ArtifactKind
	URL    string // remote only
	Data   []byte // local only
	Handle string // local only; ephemeral, scoped to this process
}

// NewRemoteArtifact wraps a durable store URL
func NewRemoteArtifact(url string) *Artifact {
	return &Artifact{Kind: ArtifactRemote, URL: url}
}

// NewLocalArtifact wraps in-memory audio under a fresh ephemeral handle
func NewLocalArtifact(data []byte) *Artifact {
	return &Artifact{Kind: ArtifactLocal, Data: data, Handle: uuid.NewString()}
}

// Release revokes the artifact's locally-owned resources. Remote artifacts
// hold none; Release is idempotent and safe on nil.
func (a *Artifact) Release() {
	if a == nil || a.Kind != ArtifactLocal {
		return
	}
	a.Data = nil
	a.Handle = ""
}

// Released reports whether a local artifact's handle has been revoked
func (a *Artifact) Released() bool {
	return a.Kind == ArtifactLocal && a.Handle == ""
}
