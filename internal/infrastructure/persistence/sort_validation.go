package persistence

import (
	"strings"

	"github.com/dms/backend/internal/domain/shared"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// SortExpr resolves the requested sort field to its ORDER BY expression.
// An empty field falls back to defaultField. Unknown fields are rejected
// so callers surface an invalid input error instead of silently reordering.
func SortExpr(sortField string, allowed map[string]string, defaultField string) (string, error) {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		trimmed = defaultField
	}
	if expr, ok := allowed[trimmed]; ok {
		return expr, nil
	}
	return "", shared.NewDomainError("INVALID_INPUT", "Cannot order by "+trimmed)
}

// DocumentSortFields maps orderable document fields to ORDER BY expressions
var DocumentSortFields = map[string]string{
	"id":                    "id",
	"created_at":            "created_at",
	"updated_at":            "updated_at",
	"title":                 "title",
	"created":               "created",
	"added":                 "added",
	"modified":              "modified",
	"archive_serial_number": "archive_serial_number",
	"correspondent_id":      "correspondent_id",
	"document_type_id":      "document_type_id",
	"storage_path_id":       "storage_path_id",
	"mime_type":             "mime_type",
	"page_count":            "page_count",
	"num_notes":             "(SELECT COUNT(*) FROM document_notes WHERE document_notes.document_id = documents.id)",
}

// taxonomySortFields builds the field map shared by the taxonomy tables,
// extended with the table-specific orderings.
func taxonomySortFields(extra map[string]string) map[string]string {
	fields := map[string]string{
		"id":                 "id",
		"created_at":         "created_at",
		"updated_at":         "updated_at",
		"name":               "LOWER(name)",
		"slug":               "slug",
		"match":              `"match"`,
		"matching_algorithm": "matching_algorithm",
	}
	for field, expr := range extra {
		fields[field] = expr
	}
	return fields
}

var (
	// TagSortFields contains allowed sort fields for tags
	TagSortFields = taxonomySortFields(map[string]string{
		"document_count": "(SELECT COUNT(*) FROM document_tags WHERE document_tags.tag_id = tags.id)",
	})

	// CorrespondentSortFields contains allowed sort fields for correspondents
	CorrespondentSortFields = taxonomySortFields(map[string]string{
		"document_count":      "(SELECT COUNT(*) FROM documents WHERE documents.correspondent_id = correspondents.id)",
		"last_correspondence": "(SELECT MAX(documents.created) FROM documents WHERE documents.correspondent_id = correspondents.id)",
	})

	// DocumentTypeSortFields contains allowed sort fields for document types
	DocumentTypeSortFields = taxonomySortFields(map[string]string{
		"document_count": "(SELECT COUNT(*) FROM documents WHERE documents.document_type_id = document_types.id)",
	})

	// StoragePathSortFields contains allowed sort fields for storage paths
	StoragePathSortFields = taxonomySortFields(map[string]string{
		"path":           "path",
		"document_count": "(SELECT COUNT(*) FROM documents WHERE documents.storage_path_id = storage_paths.id)",
	})
)

// TaskSortFields contains allowed sort fields for background tasks
var TaskSortFields = map[string]string{
	"id":         "id",
	"created_at": "created_at",
	"updated_at": "updated_at",
	"status":     "status",
	"date_done":  "date_done",
}

// SavedViewSortFields contains allowed sort fields for saved views
var SavedViewSortFields = map[string]string{
	"id":         "id",
	"created_at": "created_at",
	"updated_at": "updated_at",
	"name":       "LOWER(name)",
}
