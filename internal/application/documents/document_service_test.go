package documents

import (
	"context"
	"io"
	"testing"

	"github.com/dms/backend/internal/domain/shared"
	"github.com/dms/backend/internal/domain/taxonomy"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentService_Get(t *testing.T) {
	f := newFixture(t)
	owner := shared.Viewer{UserID: uuid.New()}
	doc := f.addDocument(t, "Tax statement", owner.UserID)

	resp, err := f.service.Get(context.Background(), owner, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "Tax statement", resp.Title)
	assert.Equal(t, doc.ID, resp.ID)
	assert.Equal(t, []uuid.UUID{}, resp.Tags)

	t.Run("hidden from strangers", func(t *testing.T) {
		stranger := shared.Viewer{UserID: uuid.New()}
		_, err := f.service.Get(context.Background(), stranger, doc.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("visible to superusers", func(t *testing.T) {
		admin := shared.Viewer{UserID: uuid.New(), Superuser: true}
		resp, err := f.service.Get(context.Background(), admin, doc.ID)
		require.NoError(t, err)
		assert.Equal(t, doc.ID, resp.ID)
	})
}

func TestDocumentService_Update(t *testing.T) {
	f := newFixture(t)
	owner := shared.Viewer{UserID: uuid.New()}

	correspondent, err := taxonomy.NewCorrespondent("ACME Corp")
	require.NoError(t, err)
	f.corrs.correspondents[correspondent.ID] = correspondent

	doc := f.addDocument(t, "Old title", owner.UserID)
	doc.AssignCorrespondent(&correspondent.ID)

	title := "New title"
	resp, err := f.service.Update(context.Background(), owner, doc.ID, UpdateDocumentRequest{
		Title: &title,
	})
	require.NoError(t, err)
	assert.Equal(t, "New title", resp.Title)
	assert.Equal(t, &correspondent.ID, resp.CorrespondentID)

	t.Run("explicit null clears the correspondent", func(t *testing.T) {
		resp, err := f.service.Update(context.Background(), owner, doc.ID, UpdateDocumentRequest{
			CorrespondentID: OptionalID{Present: true, Value: nil},
		})
		require.NoError(t, err)
		assert.Nil(t, resp.CorrespondentID)
	})

	t.Run("unknown tag is rejected", func(t *testing.T) {
		bogus := []uuid.UUID{uuid.New()}
		_, err := f.service.Update(context.Background(), owner, doc.ID, UpdateDocumentRequest{
			Tags: &bogus,
		})
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_INPUT", domainErr.Code)
	})

	t.Run("replaces tags", func(t *testing.T) {
		tag, err := taxonomy.NewTag("important")
		require.NoError(t, err)
		f.tags.tags[tag.ID] = tag

		wanted := []uuid.UUID{tag.ID}
		resp, err := f.service.Update(context.Background(), owner, doc.ID, UpdateDocumentRequest{
			Tags: &wanted,
		})
		require.NoError(t, err)
		assert.Equal(t, wanted, resp.Tags)
	})

	t.Run("shared users cannot edit", func(t *testing.T) {
		reader := shared.Viewer{UserID: uuid.New()}
		doc.ShareWith(reader.UserID)

		title := "Sneaky rename"
		_, err := f.service.Update(context.Background(), reader, doc.ID, UpdateDocumentRequest{
			Title: &title,
		})
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})
}

func TestDocumentService_UpdateASNConflict(t *testing.T) {
	f := newFixture(t)
	owner := shared.Viewer{UserID: uuid.New()}

	first := f.addDocument(t, "First", owner.UserID)
	asn := int64(42)
	require.NoError(t, first.SetASN(&asn))

	second := f.addDocument(t, "Second", owner.UserID)
	_, err := f.service.Update(context.Background(), owner, second.ID, UpdateDocumentRequest{
		ArchiveSerialNumber: OptionalSerial{Present: true, Value: &asn},
	})
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "ALREADY_EXISTS", domainErr.Code)

	t.Run("keeping the own number is fine", func(t *testing.T) {
		_, err := f.service.Update(context.Background(), owner, first.ID, UpdateDocumentRequest{
			ArchiveSerialNumber: OptionalSerial{Present: true, Value: &asn},
		})
		assert.NoError(t, err)
	})
}

func TestDocumentService_Delete(t *testing.T) {
	f := newFixture(t)
	owner := shared.Viewer{UserID: uuid.New()}
	doc := f.addDocument(t, "Disposable", owner.UserID)
	key := doc.OriginalKey

	require.NoError(t, f.service.Delete(context.Background(), owner, doc.ID))

	assert.Equal(t, []uuid.UUID{doc.ID}, f.docs.deleted)
	exists, err := f.store.Exists(context.Background(), key)
	require.NoError(t, err)
	assert.False(t, exists)

	t.Run("second delete reports not found", func(t *testing.T) {
		err := f.service.Delete(context.Background(), owner, doc.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestDocumentService_Download(t *testing.T) {
	f := newFixture(t)
	owner := shared.Viewer{UserID: uuid.New()}
	doc := f.addDocument(t, "Receipt", owner.UserID)

	download, err := f.service.Download(context.Background(), owner, doc.ID, false)
	require.NoError(t, err)
	defer download.Reader.Close()

	data, err := io.ReadAll(download.Reader)
	require.NoError(t, err)
	assert.Equal(t, "content of Receipt", string(data))
	assert.Equal(t, "Receipt.pdf", download.Filename)
	assert.Equal(t, "application/pdf", download.ContentType)
	assert.Equal(t, int64(len(data)), download.Size)
}

func TestDocumentService_DownloadPrefersArchive(t *testing.T) {
	f := newFixture(t)
	owner := shared.Viewer{UserID: uuid.New()}
	doc := f.addDocument(t, "Scan", owner.UserID)
	doc.OriginalFilename = "scan.png"
	doc.MimeType = "image/png"
	doc.ArchiveKey = "archive/" + doc.ID.String() + ".pdf"
	require.NoError(t, f.store.Put(context.Background(), doc.ArchiveKey, contentReader("archived Scan"), "application/pdf"))

	download, err := f.service.Download(context.Background(), owner, doc.ID, false)
	require.NoError(t, err)
	defer download.Reader.Close()

	data, err := io.ReadAll(download.Reader)
	require.NoError(t, err)
	assert.Equal(t, "content of archived Scan", string(data))
	assert.Equal(t, "scan.pdf", download.Filename)
	assert.Equal(t, "application/pdf", download.ContentType)

	t.Run("original on request", func(t *testing.T) {
		download, err := f.service.Download(context.Background(), owner, doc.ID, true)
		require.NoError(t, err)
		defer download.Reader.Close()
		assert.Equal(t, "scan.png", download.Filename)
		assert.Equal(t, "image/png", download.ContentType)
	})
}

func TestDocumentService_DownloadMissingFile(t *testing.T) {
	f := newFixture(t)
	owner := shared.Viewer{UserID: uuid.New()}
	doc := f.addDocument(t, "Gone", owner.UserID)
	require.NoError(t, f.store.Delete(context.Background(), doc.OriginalKey))

	_, err := f.service.Download(context.Background(), owner, doc.ID, false)
	assert.ErrorIs(t, err, shared.ErrFileMissing)
}

func TestDocumentService_ThumbnailMissing(t *testing.T) {
	f := newFixture(t)
	owner := shared.Viewer{UserID: uuid.New()}
	doc := f.addDocument(t, "Plain", owner.UserID)

	_, err := f.service.Thumbnail(context.Background(), owner, doc.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestDocumentService_Metadata(t *testing.T) {
	f := newFixture(t)
	owner := shared.Viewer{UserID: uuid.New()}
	doc := f.addDocument(t, "Invoice", owner.UserID)
	doc.Language = "de"

	meta, err := f.service.Metadata(context.Background(), owner, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.Checksum, meta.OriginalChecksum)
	assert.Equal(t, "application/pdf", meta.OriginalMimeType)
	assert.Equal(t, int64(len("content of Invoice")), meta.OriginalSize)
	assert.False(t, meta.HasArchiveVersion)
	assert.Nil(t, meta.ArchiveSize)
	assert.Equal(t, "de", meta.Language)
}

func TestDocumentService_Suggestions(t *testing.T) {
	f := newFixture(t)
	owner := shared.Viewer{UserID: uuid.New()}

	doc := f.addDocument(t, "Invoice", owner.UserID)
	doc.SetContent("Electric invoice from ACME dated 2024-03-15. Amount due.")
	doc.OriginalFilename = "acme-scan-2023-11-02.pdf"

	correspondent, err := taxonomy.NewCorrespondent("ACME")
	require.NoError(t, err)
	require.NoError(t, correspondent.SetRule("acme", taxonomy.MatchAny, true))
	f.corrs.correspondents[correspondent.ID] = correspondent

	other, err := taxonomy.NewCorrespondent("Unrelated")
	require.NoError(t, err)
	require.NoError(t, other.SetRule("plumbing", taxonomy.MatchAny, true))
	f.corrs.correspondents[other.ID] = other

	tag, err := taxonomy.NewTag("utilities")
	require.NoError(t, err)
	require.NoError(t, tag.SetRule("electric", taxonomy.MatchAny, true))
	f.tags.tags[tag.ID] = tag

	suggestions, err := f.service.Suggestions(context.Background(), owner, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{correspondent.ID}, suggestions.Correspondents)
	assert.Equal(t, []uuid.UUID{tag.ID}, suggestions.Tags)
	assert.Empty(t, suggestions.DocumentTypes)
	assert.Contains(t, suggestions.Dates, "2024-03-15")
	assert.Contains(t, suggestions.Dates, "2023-11-02")
}
