package documents

import (
	"context"
	"strings"

	"github.com/dms/backend/internal/domain/documents"
	"github.com/dms/backend/internal/domain/shared"
	"github.com/dms/backend/internal/domain/taxonomy"
	"github.com/google/uuid"
)

// Browse entry types
const (
	BrowseEntryFolder = "folder"
	BrowseEntryFile   = "file"
)

// BrowseRequest asks for one level of the storage path hierarchy
type BrowseRequest struct {
	ParentStoragePathID *uuid.UUID
	Page                int
	PageSize            int
}

// BrowseEntry is a folder or document in a browse listing
type BrowseEntry struct {
	Type string    `json:"type"`
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	// Path is set for folder entries
	Path string `json:"path,omitempty"`
}

// BrowseParent describes the storage path being browsed
type BrowseParent struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Path string    `json:"path"`
}

// BrowseResponse is one page of a combined folder and file listing
type BrowseResponse struct {
	Total   int64         `json:"count"`
	Parent  *BrowseParent `json:"parent_storage_path"`
	Results []BrowseEntry `json:"results"`
}

// BrowseService walks documents along the storage path hierarchy,
// presenting paths as folders and assigned documents as files.
type BrowseService struct {
	storagePaths taxonomy.StoragePathRepository
	documents    documents.DocumentRepository
}

// NewBrowseService creates a new BrowseService
func NewBrowseService(storagePaths taxonomy.StoragePathRepository, docs documents.DocumentRepository) *BrowseService {
	return &BrowseService{storagePaths: storagePaths, documents: docs}
}

// Browse lists one hierarchy level: child storage paths first, then the
// documents assigned to the requested path. Without a parent it lists the
// top level and documents carrying no storage path.
func (s *BrowseService) Browse(ctx context.Context, viewer shared.Viewer, req BrowseRequest) (*BrowseResponse, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 {
		pageSize = 25
	}

	var parent *taxonomy.StoragePath
	if req.ParentStoragePathID != nil {
		found, err := s.storagePaths.FindByID(ctx, *req.ParentStoragePathID)
		if err != nil {
			return nil, err
		}
		if !found.AccessibleBy(viewer.UserID, viewer.Superuser) {
			return nil, shared.ErrNotFound
		}
		parent = found
	}

	folders, err := s.childFolders(ctx, viewer, parent)
	if err != nil {
		return nil, err
	}

	filter := documents.DocumentFilter{}
	if parent != nil {
		filter.StoragePathID = &parent.ID
	} else {
		filter.WithoutStoragePath = true
	}
	docPage, _, err := s.documents.FindAccessible(ctx, viewer, filter)
	if err != nil {
		return nil, err
	}

	entries := make([]BrowseEntry, 0, len(folders)+len(docPage.Items))
	for _, folder := range folders {
		entries = append(entries, BrowseEntry{
			Type: BrowseEntryFolder,
			ID:   folder.ID,
			Name: folder.Name,
			Path: folder.Path,
		})
	}
	for _, doc := range docPage.Items {
		entries = append(entries, BrowseEntry{
			Type: BrowseEntryFile,
			ID:   doc.ID,
			Name: doc.Title,
		})
	}

	resp := &BrowseResponse{
		Total:   int64(len(entries)),
		Results: slicePage(entries, page, pageSize),
	}
	if parent != nil {
		resp.Parent = &BrowseParent{ID: parent.ID, Name: parent.Name, Path: parent.Path}
	}
	return resp, nil
}

// childFolders returns the storage paths one level below the parent,
// or the top-level paths when parent is nil
func (s *BrowseService) childFolders(ctx context.Context, viewer shared.Viewer, parent *taxonomy.StoragePath) ([]*taxonomy.StoragePath, error) {
	paths, _, _, err := s.storagePaths.FindAccessible(ctx, viewer, shared.Filter{})
	if err != nil {
		return nil, err
	}

	var children []*taxonomy.StoragePath
	for _, sp := range paths {
		if parent == nil {
			if !strings.Contains(sp.Path, "/") {
				children = append(children, sp)
			}
			continue
		}
		prefix := parent.Path + "/"
		if strings.HasPrefix(sp.Path, prefix) && !strings.Contains(strings.TrimPrefix(sp.Path, prefix), "/") {
			children = append(children, sp)
		}
	}
	return children, nil
}

func slicePage(entries []BrowseEntry, page, pageSize int) []BrowseEntry {
	start := (page - 1) * pageSize
	if start >= len(entries) {
		return []BrowseEntry{}
	}
	end := start + pageSize
	if end > len(entries) {
		end = len(entries)
	}
	return entries[start:end]
}
