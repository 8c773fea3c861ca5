package documents

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/dms/backend/internal/domain/documents"
	"github.com/dms/backend/internal/domain/shared"
	"github.com/dms/backend/internal/domain/tasks"
	"github.com/dms/backend/internal/infrastructure/storage"
	"github.com/google/uuid"
)

// UploadService accepts document uploads and queues them for consumption
type UploadService struct {
	tasks     tasks.TaskRepository
	documents documents.DocumentRepository
	storage   storage.FileStorage
}

// NewUploadService creates a new UploadService
func NewUploadService(taskRepo tasks.TaskRepository, docs documents.DocumentRepository, store storage.FileStorage) *UploadService {
	return &UploadService{tasks: taskRepo, documents: docs, storage: store}
}

// Upload stores the file for a consumption worker and returns the task id
// the client can poll
func (s *UploadService) Upload(ctx context.Context, viewer shared.Viewer, req UploadRequest, file io.Reader) (uuid.UUID, error) {
	if strings.TrimSpace(req.Filename) == "" {
		return uuid.Nil, shared.NewDomainError("INVALID_INPUT", "Filename is required")
	}
	if req.ArchiveSerialNumber != nil {
		if err := s.checkASNFree(ctx, *req.ArchiveSerialNumber); err != nil {
			return uuid.Nil, err
		}
	}

	ownerID := viewer.UserID
	task := tasks.NewConsumeTask(req.Filename, &ownerID)
	if err := task.SetOverrides(tasks.ConsumeOverrides{
		Title:           req.Title,
		Created:         req.Created,
		CorrespondentID: req.CorrespondentID,
		DocumentTypeID:  req.DocumentTypeID,
		StoragePathID:   req.StoragePathID,
		TagIDs:          req.TagIDs,
		ASN:             req.ArchiveSerialNumber,
	}); err != nil {
		return uuid.Nil, err
	}

	if err := s.storage.Put(ctx, task.IncomingKey(), file, "application/octet-stream"); err != nil {
		return uuid.Nil, err
	}
	if err := s.tasks.Save(ctx, task); err != nil {
		return uuid.Nil, err
	}
	return task.TaskID, nil
}

func (s *UploadService) checkASNFree(ctx context.Context, asn int64) error {
	_, err := s.documents.FindByASN(ctx, asn)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		return err
	}
	return shared.NewDomainError("ALREADY_EXISTS", "Archive serial number is already in use")
}
