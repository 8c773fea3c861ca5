package archive

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/dms/backend/internal/domain/documents"
	"github.com/dms/backend/internal/domain/taxonomy"
	"github.com/dms/backend/internal/infrastructure/storage"
)

// Content selects which file versions go into a bulk download
type Content string

const (
	// ContentArchive prefers the archived version, falling back to the original
	ContentArchive Content = "archive"
	// ContentOriginals always takes the original file
	ContentOriginals Content = "originals"
	// ContentBoth takes both versions, split into subdirectories
	ContentBoth Content = "both"
)

// ValidContent reports whether c is a known content choice
func ValidContent(c Content) bool {
	switch c {
	case ContentArchive, ContentOriginals, ContentBoth:
		return true
	}
	return false
}

// Compression selects the zip entry method
type Compression string

const (
	// CompressionDeflate compresses entries with deflate
	CompressionDeflate Compression = "deflate"
	// CompressionNone stores entries uncompressed
	CompressionNone Compression = "none"
)

// ValidCompression reports whether c is a known compression choice
func ValidCompression(c Compression) bool {
	switch c {
	case CompressionDeflate, CompressionNone:
		return true
	}
	return false
}

// ZipBuilder streams document files from storage into a zip archive.
// Entry names are deduplicated so two documents with the same title do
// not clobber each other.
type ZipBuilder struct {
	writer           *zip.Writer
	storage          storage.FileStorage
	content          Content
	method           uint16
	followFormatting bool
	usedNames        map[string]int
}

// NewZipBuilder creates a builder writing zip output to w
func NewZipBuilder(w io.Writer, store storage.FileStorage, content Content, compression Compression, followFormatting bool) *ZipBuilder {
	method := zip.Deflate
	if compression == CompressionNone {
		method = zip.Store
	}
	return &ZipBuilder{
		writer:           zip.NewWriter(w),
		storage:          store,
		content:          content,
		method:           method,
		followFormatting: followFormatting,
		usedNames:        map[string]int{},
	}
}

// AddDocument writes the document's files into the archive according to
// the content choice. The correspondent is used for formatted names and
// may be nil.
func (z *ZipBuilder) AddDocument(ctx context.Context, doc *documents.Document, correspondent *taxonomy.Correspondent) error {
	switch z.content {
	case ContentOriginals:
		return z.addFile(ctx, doc, correspondent, true, "")
	case ContentArchive:
		return z.addFile(ctx, doc, correspondent, !doc.HasArchiveVersion(), "")
	case ContentBoth:
		if err := z.addFile(ctx, doc, correspondent, true, "originals"); err != nil {
			return err
		}
		if doc.HasArchiveVersion() {
			return z.addFile(ctx, doc, correspondent, false, "archive")
		}
		return nil
	default:
		return fmt.Errorf("unknown content choice %q", z.content)
	}
}

func (z *ZipBuilder) addFile(ctx context.Context, doc *documents.Document, correspondent *taxonomy.Correspondent, original bool, prefix string) error {
	name := z.entryName(doc, correspondent, original, prefix)

	reader, _, err := z.storage.Open(ctx, doc.FileKey(original))
	if err != nil {
		return fmt.Errorf("failed to read file for document %s: %w", doc.ID, err)
	}
	defer reader.Close()

	entry, err := z.writer.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   z.method,
		Modified: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to create zip entry %s: %w", name, err)
	}
	if _, err := io.Copy(entry, reader); err != nil {
		return fmt.Errorf("failed to write zip entry %s: %w", name, err)
	}
	return nil
}

// entryName builds a unique archive member name for the document
func (z *ZipBuilder) entryName(doc *documents.Document, correspondent *taxonomy.Correspondent, original bool, prefix string) string {
	name := doc.ServedFilename(original)
	if z.followFormatting && correspondent != nil {
		name = path.Join(sanitize(correspondent.Name), name)
	}
	if prefix != "" {
		name = path.Join(prefix, name)
	}

	count := z.usedNames[name]
	z.usedNames[name] = count + 1
	if count == 0 {
		return name
	}

	ext := path.Ext(name)
	return fmt.Sprintf("%s_%02d%s", strings.TrimSuffix(name, ext), count, ext)
}

// Close finalizes the zip central directory
func (z *ZipBuilder) Close() error {
	return z.writer.Close()
}

func sanitize(name string) string {
	replacer := strings.NewReplacer("/", "-", "\\", "-", ":", "-")
	return replacer.Replace(name)
}
