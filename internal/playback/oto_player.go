package playback

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/hajimehoshi/go-mp3"

	"github.com/echophrase/echophrase/internal/audiocache"
)

const fetchTimeout = 30 * time.Second

// OtoPlayer renders MP3 artifacts through the system audio device. The
// oto context is created lazily on first play with the first track's
// sample rate; the synthesis gateway emits a uniform rate, so later
// tracks reuse it.
type OtoPlayer struct {
	httpClient *http.Client

	mu     sync.Mutex
	otoCtx *oto.Context
	stop   chan struct{}
}

// NewOtoPlayer creates a player that is not yet bound to the audio device
func NewOtoPlayer() *OtoPlayer {
	return &OtoPlayer{
		httpClient: &http.Client{Timeout: fetchTimeout},
	}
}

// Play decodes and renders the artifact, blocking until the audio ends,
// Stop is called, or the context is cancelled.
func (p *OtoPlayer) Play(ctx context.Context, artifact *audiocache.Artifact) error {
	data, err := p.audioData(ctx, artifact)
	if err != nil {
		return err
	}

	decoder, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to decode audio: %w", err)
	}

	otoCtx, err := p.ensureContext(decoder.SampleRate())
	if err != nil {
		return err
	}

	stop := make(chan struct{})
	p.mu.Lock()
	p.stop = stop
	p.mu.Unlock()

	player := otoCtx.NewPlayer(decoder)
	defer player.Close()
	player.Play()

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		case <-ticker.C:
			if !player.IsPlaying() {
				return nil
			}
		}
	}
}

// Stop interrupts the current playback, if any
func (p *OtoPlayer) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stop != nil {
		close(p.stop)
		p.stop = nil
	}
}

// Close releases the player. The oto context has no close; stopping the
// active playback is all the teardown needed.
func (p *OtoPlayer) Close() error {
	p.Stop()
	return nil
}

// audioData returns the artifact's MP3 bytes, fetching remote artifacts
// over HTTP
func (p *OtoPlayer) audioData(ctx context.Context, artifact *audiocache.Artifact) ([]byte, error) {
	switch artifact.Kind {
	case audiocache.ArtifactLocal:
		if artifact.Released() {
			return nil, fmt.Errorf("artifact handle has been released")
		}
		return artifact.Data, nil
	case audiocache.ArtifactRemote:
		return p.fetch(ctx, artifact.URL)
	default:
		return nil, fmt.Errorf("unknown artifact kind: %s", artifact.Kind)
	}
}

func (p *OtoPlayer) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create fetch request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch audio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("audio fetch returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio body: %w", err)
	}
	return data, nil
}

func (p *OtoPlayer) ensureContext(sampleRate int) (*oto.Context, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.otoCtx != nil {
		return p.otoCtx, nil
	}

	otoCtx, readyChan, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize audio device: %w", err)
	}
	<-readyChan

	p.otoCtx = otoCtx
	return otoCtx, nil
}
