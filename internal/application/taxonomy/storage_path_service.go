package taxonomy

import (
	"context"
	"errors"

	"github.com/dms/backend/internal/domain/shared"
	"github.com/dms/backend/internal/domain/taxonomy"
	"github.com/google/uuid"
)

// StoragePathService handles storage path operations
type StoragePathService struct {
	storagePathRepo taxonomy.StoragePathRepository
}

// NewStoragePathService creates a new StoragePathService
func NewStoragePathService(storagePathRepo taxonomy.StoragePathRepository) *StoragePathService {
	return &StoragePathService{storagePathRepo: storagePathRepo}
}

// Create creates a storage path owned by the requesting user
func (s *StoragePathService) Create(ctx context.Context, viewer shared.Viewer, req CreateStoragePathRequest) (*StoragePathResponse, error) {
	if _, err := s.storagePathRepo.FindByName(ctx, req.Name); err == nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Storage path with this name already exists")
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	storagePath, err := taxonomy.NewStoragePath(req.Name, req.Path)
	if err != nil {
		return nil, err
	}
	storagePath.SetOwner(viewer.UserID)
	if err := applyMatchingFields(&storagePath.MatchingRule, req.MatchingFields); err != nil {
		return nil, err
	}

	if err := s.storagePathRepo.Save(ctx, storagePath); err != nil {
		return nil, err
	}
	return ToStoragePathResponse(storagePath, taxonomy.UsageCounts{}), nil
}

// GetByID retrieves a storage path visible to the viewer
func (s *StoragePathService) GetByID(ctx context.Context, viewer shared.Viewer, id uuid.UUID) (*StoragePathResponse, error) {
	storagePath, err := s.storagePathRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !storagePath.AccessibleBy(viewer.UserID, viewer.Superuser) {
		return nil, shared.ErrNotFound
	}
	counts, err := s.usageFor(ctx, viewer, storagePath.ID)
	if err != nil {
		return nil, err
	}
	return ToStoragePathResponse(storagePath, counts), nil
}

// List returns the viewer's visible storage paths with counts
func (s *StoragePathService) List(ctx context.Context, viewer shared.Viewer, filter ListFilter) ([]*StoragePathResponse, int64, error) {
	storagePaths, counts, total, err := s.storagePathRepo.FindAccessible(ctx, viewer, toDomainFilter(filter))
	if err != nil {
		return nil, 0, err
	}

	responses := make([]*StoragePathResponse, len(storagePaths))
	for i, storagePath := range storagePaths {
		responses[i] = ToStoragePathResponse(storagePath, counts[storagePath.ID])
	}
	return responses, total, nil
}

// Update modifies a storage path the viewer may edit
func (s *StoragePathService) Update(ctx context.Context, viewer shared.Viewer, id uuid.UUID, req UpdateStoragePathRequest) (*StoragePathResponse, error) {
	storagePath, err := s.storagePathRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !storagePath.AccessibleBy(viewer.UserID, viewer.Superuser) {
		return nil, shared.ErrNotFound
	}
	if !storagePath.EditableBy(viewer.UserID, viewer.Superuser) {
		return nil, shared.ErrForbidden
	}

	name := storagePath.Name
	if req.Name != nil {
		name = *req.Name
	}
	path := storagePath.Path
	if req.Path != nil {
		path = *req.Path
	}
	if name != storagePath.Name {
		if _, err := s.storagePathRepo.FindByName(ctx, name); err == nil {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Storage path with this name already exists")
		} else if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
	}
	if err := storagePath.Update(name, path); err != nil {
		return nil, err
	}
	if err := applyMatchingFields(&storagePath.MatchingRule, req.MatchingFields); err != nil {
		return nil, err
	}

	if err := s.storagePathRepo.Save(ctx, storagePath); err != nil {
		return nil, err
	}
	counts, err := s.usageFor(ctx, viewer, storagePath.ID)
	if err != nil {
		return nil, err
	}
	return ToStoragePathResponse(storagePath, counts), nil
}

// Delete removes a storage path, clearing the reference on documents
func (s *StoragePathService) Delete(ctx context.Context, viewer shared.Viewer, id uuid.UUID) error {
	storagePath, err := s.storagePathRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !storagePath.AccessibleBy(viewer.UserID, viewer.Superuser) {
		return shared.ErrNotFound
	}
	if !storagePath.EditableBy(viewer.UserID, viewer.Superuser) {
		return shared.ErrForbidden
	}
	return s.storagePathRepo.Delete(ctx, id)
}

func (s *StoragePathService) usageFor(ctx context.Context, viewer shared.Viewer, id uuid.UUID) (taxonomy.UsageCounts, error) {
	_, counts, _, err := s.storagePathRepo.FindAccessible(ctx, viewer, shared.Filter{
		Filters: map[string]interface{}{"id": id},
	})
	if err != nil {
		return taxonomy.UsageCounts{}, err
	}
	return counts[id], nil
}
