// Package catalog manages the sentence/phrase catalogs behind the reader.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/echophrase/echophrase/internal/storage"
	"github.com/echophrase/echophrase/pkg/types"
)

const catalogContentType = "application/json"

// Repository handles catalog persistence
type Repository interface {
	// SaveCatalog stores a catalog
	SaveCatalog(ctx context.Context, catalog *types.Catalog) error

	// GetCatalog retrieves a catalog by ID
	GetCatalog(ctx context.Context, catalogID string) (*types.Catalog, error)

	// ListCatalogs returns all catalog IDs
	ListCatalogs(ctx context.Context) ([]string, error)

	// DeleteCatalog removes a catalog; deleting an absent catalog is a no-op
	DeleteCatalog(ctx context.Context, catalogID string) error
}

// StorageRepository implements Repository using a storage adapter
type StorageRepository struct {
	storage storage.Adapter
}

// NewRepository creates a new catalog repository
func NewRepository(storageAdapter storage.Adapter) Repository {
	return &StorageRepository{
		storage: storageAdapter,
	}
}

// SaveCatalog stores a catalog
func (r *StorageRepository) SaveCatalog(ctx context.Context, catalog *types.Catalog) error {
	if catalog.ID == "" {
		return fmt.Errorf("catalog ID is required")
	}

	data, err := json.Marshal(catalog)
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}

	return r.storage.Put(ctx, catalogPath(catalog.ID), bytes.NewReader(data), catalogContentType)
}

// GetCatalog retrieves a catalog by ID
func (r *StorageRepository) GetCatalog(ctx context.Context, catalogID string) (*types.Catalog, error) {
	reader, err := r.storage.Get(ctx, catalogPath(catalogID))
	if err != nil {
		return nil, fmt.Errorf("failed to get catalog %s: %w", catalogID, err)
	}
	defer reader.Close()

	var catalog types.Catalog
	if err := json.NewDecoder(reader).Decode(&catalog); err != nil {
		return nil, fmt.Errorf("failed to decode catalog %s: %w", catalogID, err)
	}

	return &catalog, nil
}

// ListCatalogs returns all catalog IDs
func (r *StorageRepository) ListCatalogs(ctx context.Context) ([]string, error) {
	paths, err := r.storage.List(ctx, "catalogs/")
	if err != nil {
		return nil, fmt.Errorf("failed to list catalogs: %w", err)
	}

	ids := make([]string, 0, len(paths))
	for _, p := range paths {
		base := path.Base(p)
		if !strings.HasSuffix(base, ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(base, ".json"))
	}

	return ids, nil
}

// DeleteCatalog removes a catalog
func (r *StorageRepository) DeleteCatalog(ctx context.Context, catalogID string) error {
	if err := r.storage.Delete(ctx, catalogPath(catalogID)); err != nil {
		return fmt.Errorf("failed to delete catalog %s: %w", catalogID, err)
	}
	return nil
}

func catalogPath(catalogID string) string {
	return path.Join("catalogs", catalogID+".json")
}
