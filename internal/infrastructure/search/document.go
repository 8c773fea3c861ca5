package search

import (
	"github.com/dms/backend/internal/domain/documents"
)

// NewIndexedDocument flattens a document and its related names into the
// form stored in the index.
func NewIndexedDocument(doc *documents.Document, correspondent, documentType, storagePath string, tags []string, notes string) IndexedDocument {
	indexed := IndexedDocument{
		ID:            doc.ID.String(),
		Title:         doc.Title,
		Content:       doc.Content,
		Correspondent: correspondent,
		Type:          documentType,
		Path:          storagePath,
		Tags:          tags,
		Notes:         notes,
		OriginalName:  doc.OriginalFilename,
		Created:       doc.Created,
		Added:         doc.Added,
		Owner:         ownerNone,
	}
	if doc.ASN != nil {
		indexed.ASN = *doc.ASN
	}
	if doc.OwnerID != nil {
		indexed.Owner = doc.OwnerID.String()
	}
	for _, id := range doc.SharedUserIDs() {
		indexed.SharedWith = append(indexed.SharedWith, id.String())
	}
	return indexed
}
