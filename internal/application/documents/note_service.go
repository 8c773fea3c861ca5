package documents

import (
	"context"

	"github.com/dms/backend/internal/domain/documents"
	"github.com/dms/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// NoteService handles notes attached to documents
type NoteService struct {
	notes     documents.NoteRepository
	documents documents.DocumentRepository
	reindexer *Reindexer
}

// NewNoteService creates a new NoteService
func NewNoteService(notes documents.NoteRepository, docs documents.DocumentRepository, reindexer *Reindexer) *NoteService {
	return &NoteService{notes: notes, documents: docs, reindexer: reindexer}
}

// List returns the document's notes newest first
func (s *NoteService) List(ctx context.Context, viewer shared.Viewer, documentID uuid.UUID) ([]*NoteResponse, error) {
	if _, err := s.loadDocument(ctx, viewer, documentID); err != nil {
		return nil, err
	}
	return s.listResponses(ctx, documentID)
}

// Create adds a note to a document and returns the refreshed note list
func (s *NoteService) Create(ctx context.Context, viewer shared.Viewer, documentID uuid.UUID, req CreateNoteRequest) ([]*NoteResponse, error) {
	doc, err := s.loadDocument(ctx, viewer, documentID)
	if err != nil {
		return nil, err
	}
	if !doc.EditableBy(viewer.UserID, viewer.Superuser) {
		return nil, shared.ErrForbidden
	}

	userID := viewer.UserID
	note, err := documents.NewNote(documentID, &userID, req.Note)
	if err != nil {
		return nil, err
	}
	if err := s.notes.Save(ctx, note); err != nil {
		return nil, err
	}
	s.reindexer.Reindex(ctx, doc)
	return s.listResponses(ctx, documentID)
}

// Delete removes a note and returns the refreshed note list
func (s *NoteService) Delete(ctx context.Context, viewer shared.Viewer, documentID, noteID uuid.UUID) ([]*NoteResponse, error) {
	doc, err := s.loadDocument(ctx, viewer, documentID)
	if err != nil {
		return nil, err
	}
	if !doc.EditableBy(viewer.UserID, viewer.Superuser) {
		return nil, shared.ErrForbidden
	}

	note, err := s.notes.FindByID(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if note.DocumentID != documentID {
		return nil, shared.ErrNotFound
	}
	if err := s.notes.Delete(ctx, noteID); err != nil {
		return nil, err
	}
	s.reindexer.Reindex(ctx, doc)
	return s.listResponses(ctx, documentID)
}

func (s *NoteService) listResponses(ctx context.Context, documentID uuid.UUID) ([]*NoteResponse, error) {
	notes, err := s.notes.FindByDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	responses := make([]*NoteResponse, len(notes))
	for i, note := range notes {
		responses[i] = ToNoteResponse(note)
	}
	return responses, nil
}

func (s *NoteService) loadDocument(ctx context.Context, viewer shared.Viewer, id uuid.UUID) (*documents.Document, error) {
	doc, err := s.documents.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !doc.AccessibleBy(viewer.UserID, viewer.Superuser) {
		return nil, shared.ErrNotFound
	}
	return doc, nil
}
