package documents

import (
	"strings"
	"time"

	"github.com/dms/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Document is the central aggregate: a consumed file with extracted text,
// taxonomy assignments and pointers to the stored original, archive and
// thumbnail objects.
type Document struct {
	shared.OwnedAggregateRoot
	Title            string      `gorm:"type:varchar(256);not null"`
	Content          string      `gorm:"type:text;not null;default:''"`
	CorrespondentID  *uuid.UUID  `gorm:"type:uuid;index"`
	DocumentTypeID   *uuid.UUID  `gorm:"type:uuid;index"`
	StoragePathID    *uuid.UUID  `gorm:"type:uuid;index"`
	TagIDs           []uuid.UUID `gorm:"-"`
	ASN              *int64      `gorm:"column:archive_serial_number;uniqueIndex"`
	Created          time.Time   `gorm:"not null;index"`
	Modified         time.Time   `gorm:"not null"`
	Added            time.Time   `gorm:"not null;index"`
	OriginalFilename string      `gorm:"type:varchar(1024);not null"`
	OriginalKey      string      `gorm:"type:varchar(1024);not null"`
	ArchiveKey       string      `gorm:"type:varchar(1024)"`
	ThumbnailKey     string      `gorm:"type:varchar(1024)"`
	MimeType         string      `gorm:"type:varchar(256);not null"`
	Checksum         string      `gorm:"type:varchar(64);not null;uniqueIndex"`
	ArchiveChecksum  string      `gorm:"type:varchar(64)"`
	Language         string      `gorm:"type:varchar(8);not null;default:''"`
	PageCount        *int        `gorm:""`
}

// TableName returns the table name for GORM
func (Document) TableName() string {
	return "documents"
}

// NewDocument creates a document record for a freshly consumed file
func NewDocument(title, originalFilename, mimeType, checksum string) (*Document, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Title is required")
	}
	if checksum == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Checksum is required")
	}
	now := time.Now()
	return &Document{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(),
		Title:              title,
		Created:            now,
		Modified:           now,
		Added:              now,
		OriginalFilename:   originalFilename,
		MimeType:           mimeType,
		Checksum:           checksum,
	}, nil
}

// SetTitle updates the title
func (d *Document) SetTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return shared.NewDomainError("INVALID_INPUT", "Title is required")
	}
	if len(title) > 256 {
		return shared.NewDomainError("INVALID_INPUT", "Title cannot exceed 256 characters")
	}
	d.Title = title
	d.Touch()
	return nil
}

// SetASN assigns or clears the archive serial number
func (d *Document) SetASN(asn *int64) error {
	if asn != nil && *asn < 0 {
		return shared.NewDomainError("INVALID_INPUT", "Archive serial number must not be negative")
	}
	d.ASN = asn
	d.Touch()
	return nil
}

// SetContent replaces the extracted text
func (d *Document) SetContent(content string) {
	d.Content = content
	d.Touch()
}

// ReplaceTags swaps the full tag assignment
func (d *Document) ReplaceTags(tagIDs []uuid.UUID) {
	d.TagIDs = tagIDs
	d.Touch()
}

// SetCreated moves the document's creation date
func (d *Document) SetCreated(created time.Time) {
	d.Created = created
	d.Touch()
}

// AssignCorrespondent sets or clears the correspondent
func (d *Document) AssignCorrespondent(id *uuid.UUID) {
	d.CorrespondentID = id
	d.Touch()
}

// AssignDocumentType sets or clears the document type
func (d *Document) AssignDocumentType(id *uuid.UUID) {
	d.DocumentTypeID = id
	d.Touch()
}

// AssignStoragePath sets or clears the storage path
func (d *Document) AssignStoragePath(id *uuid.UUID) {
	d.StoragePathID = id
	d.Touch()
}

// HasArchiveVersion reports whether an archived rendition exists
func (d *Document) HasArchiveVersion() bool {
	return d.ArchiveKey != ""
}

// FileKey returns the storage key to serve: the archive version when one
// exists, unless the original is explicitly requested.
func (d *Document) FileKey(original bool) string {
	if !original && d.HasArchiveVersion() {
		return d.ArchiveKey
	}
	return d.OriginalKey
}

// ServedFilename is the download name for the chosen rendition
func (d *Document) ServedFilename(original bool) string {
	if !original && d.HasArchiveVersion() {
		base := d.OriginalFilename
		if idx := strings.LastIndex(base, "."); idx > 0 {
			base = base[:idx]
		}
		return base + ".pdf"
	}
	return d.OriginalFilename
}

// ServedMimeType is the content type for the chosen rendition
func (d *Document) ServedMimeType(original bool) string {
	if !original && d.HasArchiveVersion() {
		return "application/pdf"
	}
	return d.MimeType
}

// Touch refreshes the modified timestamp and bumps the version
func (d *Document) Touch() {
	now := time.Now()
	d.Modified = now
	d.UpdatedAt = now
	d.IncrementVersion()
}

// HasTag reports whether the tag is currently assigned
func (d *Document) HasTag(tagID uuid.UUID) bool {
	for _, id := range d.TagIDs {
		if id == tagID {
			return true
		}
	}
	return false
}

// AddTag assigns a tag, ignoring duplicates
func (d *Document) AddTag(tagID uuid.UUID) {
	if d.HasTag(tagID) {
		return
	}
	d.TagIDs = append(d.TagIDs, tagID)
	d.Touch()
}

// RemoveTag unassigns a tag if present
func (d *Document) RemoveTag(tagID uuid.UUID) {
	for i, id := range d.TagIDs {
		if id == tagID {
			d.TagIDs = append(d.TagIDs[:i], d.TagIDs[i+1:]...)
			d.Touch()
			return
		}
	}
}
