package documents

import (
	"context"
	"sort"
	"strings"
	"testing"

	domaindocs "github.com/dms/backend/internal/domain/documents"
	"github.com/dms/backend/internal/domain/shared"
	"github.com/dms/backend/internal/domain/tasks"
	"github.com/dms/backend/internal/domain/taxonomy"
	"github.com/dms/backend/internal/infrastructure/search"
	"github.com/dms/backend/internal/infrastructure/storage"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// The fakes embed their repository interface so only the methods a test
// exercises need an implementation. Calling anything else panics.

type fakeDocumentRepo struct {
	domaindocs.DocumentRepository
	docs      map[uuid.UUID]*domaindocs.Document
	deleted   []uuid.UUID
	saved     int
	selection *domaindocs.SelectionCounts
}

func newFakeDocumentRepo() *fakeDocumentRepo {
	return &fakeDocumentRepo{docs: map[uuid.UUID]*domaindocs.Document{}}
}

func (f *fakeDocumentRepo) FindByID(ctx context.Context, id uuid.UUID) (*domaindocs.Document, error) {
	doc, ok := f.docs[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return doc, nil
}

func (f *fakeDocumentRepo) FindByIDs(ctx context.Context, viewer shared.Viewer, ids []uuid.UUID) ([]*domaindocs.Document, error) {
	var result []*domaindocs.Document
	for _, id := range ids {
		doc, ok := f.docs[id]
		if !ok || !doc.AccessibleBy(viewer.UserID, viewer.Superuser) {
			continue
		}
		result = append(result, doc)
	}
	return result, nil
}

func (f *fakeDocumentRepo) FindByASN(ctx context.Context, asn int64) (*domaindocs.Document, error) {
	for _, doc := range f.docs {
		if doc.ASN != nil && *doc.ASN == asn {
			return doc, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (f *fakeDocumentRepo) FindAccessible(ctx context.Context, viewer shared.Viewer, filter domaindocs.DocumentFilter) (*shared.Paginated[*domaindocs.Document], map[uuid.UUID]int64, error) {
	var matches []*domaindocs.Document
	for _, doc := range f.docs {
		if !doc.AccessibleBy(viewer.UserID, viewer.Superuser) {
			continue
		}
		if filter.StoragePathID != nil && (doc.StoragePathID == nil || *doc.StoragePathID != *filter.StoragePathID) {
			continue
		}
		if filter.WithoutStoragePath && doc.StoragePathID != nil {
			continue
		}
		matches = append(matches, doc)
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Title < matches[j].Title
	})
	page := shared.NewPaginated(matches, int64(len(matches)), 1, 0)
	return &page, map[uuid.UUID]int64{}, nil
}

func (f *fakeDocumentRepo) Save(ctx context.Context, doc *domaindocs.Document) error {
	f.docs[doc.ID] = doc
	f.saved++
	return nil
}

func (f *fakeDocumentRepo) SelectionCounts(ctx context.Context, viewer shared.Viewer, documentIDs []uuid.UUID) (*domaindocs.SelectionCounts, error) {
	if f.selection != nil {
		return f.selection, nil
	}
	return &domaindocs.SelectionCounts{
		SelectedCorrespondents: map[uuid.UUID]int64{},
		SelectedTags:           map[uuid.UUID]int64{},
		SelectedDocumentTypes:  map[uuid.UUID]int64{},
		SelectedStoragePaths:   map[uuid.UUID]int64{},
	}, nil
}

func (f *fakeDocumentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.docs[id]; !ok {
		return shared.ErrNotFound
	}
	delete(f.docs, id)
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeNoteRepo struct {
	domaindocs.NoteRepository
	notes map[uuid.UUID]*domaindocs.Note
}

func newFakeNoteRepo() *fakeNoteRepo {
	return &fakeNoteRepo{notes: map[uuid.UUID]*domaindocs.Note{}}
}

func (f *fakeNoteRepo) Save(ctx context.Context, note *domaindocs.Note) error {
	f.notes[note.ID] = note
	return nil
}

func (f *fakeNoteRepo) FindByID(ctx context.Context, id uuid.UUID) (*domaindocs.Note, error) {
	note, ok := f.notes[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return note, nil
}

func (f *fakeNoteRepo) FindByDocument(ctx context.Context, documentID uuid.UUID) ([]*domaindocs.Note, error) {
	var result []*domaindocs.Note
	for _, note := range f.notes {
		if note.DocumentID == documentID {
			result = append(result, note)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (f *fakeNoteRepo) CountByDocument(ctx context.Context, documentID uuid.UUID) (int64, error) {
	var count int64
	for _, note := range f.notes {
		if note.DocumentID == documentID {
			count++
		}
	}
	return count, nil
}

func (f *fakeNoteRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.notes[id]; !ok {
		return shared.ErrNotFound
	}
	delete(f.notes, id)
	return nil
}

type fakeMetadataRepo struct {
	domaindocs.CustomMetadataRepository
	entries map[uuid.UUID][]*domaindocs.CustomMetadata
}

func newFakeMetadataRepo() *fakeMetadataRepo {
	return &fakeMetadataRepo{entries: map[uuid.UUID][]*domaindocs.CustomMetadata{}}
}

func (f *fakeMetadataRepo) FindByDocument(ctx context.Context, documentID uuid.UUID) ([]*domaindocs.CustomMetadata, error) {
	return f.entries[documentID], nil
}

func (f *fakeMetadataRepo) Replace(ctx context.Context, documentID uuid.UUID, entries []*domaindocs.CustomMetadata) error {
	f.entries[documentID] = entries
	return nil
}

type fakeTagRepo struct {
	taxonomy.TagRepository
	tags map[uuid.UUID]*taxonomy.Tag
}

func newFakeTagRepo() *fakeTagRepo {
	return &fakeTagRepo{tags: map[uuid.UUID]*taxonomy.Tag{}}
}

func (f *fakeTagRepo) FindByID(ctx context.Context, id uuid.UUID) (*taxonomy.Tag, error) {
	tag, ok := f.tags[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return tag, nil
}

func (f *fakeTagRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*taxonomy.Tag, error) {
	var result []*taxonomy.Tag
	for _, id := range ids {
		if tag, ok := f.tags[id]; ok {
			result = append(result, tag)
		}
	}
	return result, nil
}

func (f *fakeTagRepo) FindAccessible(ctx context.Context, viewer shared.Viewer, filter shared.Filter) ([]*taxonomy.Tag, map[uuid.UUID]taxonomy.UsageCounts, int64, error) {
	var result []*taxonomy.Tag
	for _, tag := range f.tags {
		if tag.AccessibleBy(viewer.UserID, viewer.Superuser) {
			result = append(result, tag)
		}
	}
	return result, map[uuid.UUID]taxonomy.UsageCounts{}, int64(len(result)), nil
}

type fakeCorrespondentRepo struct {
	taxonomy.CorrespondentRepository
	correspondents map[uuid.UUID]*taxonomy.Correspondent
}

func newFakeCorrespondentRepo() *fakeCorrespondentRepo {
	return &fakeCorrespondentRepo{correspondents: map[uuid.UUID]*taxonomy.Correspondent{}}
}

func (f *fakeCorrespondentRepo) FindByID(ctx context.Context, id uuid.UUID) (*taxonomy.Correspondent, error) {
	c, ok := f.correspondents[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return c, nil
}

func (f *fakeCorrespondentRepo) FindAccessible(ctx context.Context, viewer shared.Viewer, filter shared.Filter) ([]*taxonomy.Correspondent, map[uuid.UUID]taxonomy.UsageCounts, int64, error) {
	var result []*taxonomy.Correspondent
	for _, c := range f.correspondents {
		if c.AccessibleBy(viewer.UserID, viewer.Superuser) {
			result = append(result, c)
		}
	}
	return result, map[uuid.UUID]taxonomy.UsageCounts{}, int64(len(result)), nil
}

type fakeDocumentTypeRepo struct {
	taxonomy.DocumentTypeRepository
	types map[uuid.UUID]*taxonomy.DocumentType
}

func newFakeDocumentTypeRepo() *fakeDocumentTypeRepo {
	return &fakeDocumentTypeRepo{types: map[uuid.UUID]*taxonomy.DocumentType{}}
}

func (f *fakeDocumentTypeRepo) FindByID(ctx context.Context, id uuid.UUID) (*taxonomy.DocumentType, error) {
	dt, ok := f.types[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return dt, nil
}

func (f *fakeDocumentTypeRepo) FindAccessible(ctx context.Context, viewer shared.Viewer, filter shared.Filter) ([]*taxonomy.DocumentType, map[uuid.UUID]taxonomy.UsageCounts, int64, error) {
	var result []*taxonomy.DocumentType
	for _, dt := range f.types {
		if dt.AccessibleBy(viewer.UserID, viewer.Superuser) {
			result = append(result, dt)
		}
	}
	return result, map[uuid.UUID]taxonomy.UsageCounts{}, int64(len(result)), nil
}

type fakeStoragePathRepo struct {
	taxonomy.StoragePathRepository
	paths map[uuid.UUID]*taxonomy.StoragePath
}

func newFakeStoragePathRepo() *fakeStoragePathRepo {
	return &fakeStoragePathRepo{paths: map[uuid.UUID]*taxonomy.StoragePath{}}
}

func (f *fakeStoragePathRepo) FindByID(ctx context.Context, id uuid.UUID) (*taxonomy.StoragePath, error) {
	sp, ok := f.paths[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return sp, nil
}

func (f *fakeStoragePathRepo) FindAccessible(ctx context.Context, viewer shared.Viewer, filter shared.Filter) ([]*taxonomy.StoragePath, map[uuid.UUID]taxonomy.UsageCounts, int64, error) {
	var result []*taxonomy.StoragePath
	for _, sp := range f.paths {
		if sp.AccessibleBy(viewer.UserID, viewer.Superuser) {
			result = append(result, sp)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Path < result[j].Path
	})
	return result, map[uuid.UUID]taxonomy.UsageCounts{}, int64(len(result)), nil
}

type fakeTaskRepo struct {
	tasks.TaskRepository
	saved []*tasks.Task
}

func (f *fakeTaskRepo) Save(ctx context.Context, task *tasks.Task) error {
	f.saved = append(f.saved, task)
	return nil
}

// fixture wires the services against in-memory fakes, a filesystem store
// and an in-memory search index.
type fixture struct {
	docs     *fakeDocumentRepo
	notes    *fakeNoteRepo
	metadata *fakeMetadataRepo
	tags     *fakeTagRepo
	corrs    *fakeCorrespondentRepo
	types    *fakeDocumentTypeRepo
	paths    *fakeStoragePathRepo
	taskRepo *fakeTaskRepo
	store     *storage.FilesystemStorage
	index     *search.BleveIndex
	reindexer *Reindexer

	service  *DocumentService
	noteSvc  *NoteService
	metaSvc  *CustomMetadataService
	bulk     *BulkService
	upload   *UploadService
	searches *SearchService
	browse   *BrowseService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	index, err := search.NewMemoryIndex()
	require.NoError(t, err)
	t.Cleanup(func() { index.Close() })

	store, err := storage.NewFilesystemStorage(t.TempDir())
	require.NoError(t, err)

	f := &fixture{
		docs:     newFakeDocumentRepo(),
		notes:    newFakeNoteRepo(),
		metadata: newFakeMetadataRepo(),
		tags:     newFakeTagRepo(),
		corrs:    newFakeCorrespondentRepo(),
		types:    newFakeDocumentTypeRepo(),
		paths:    newFakeStoragePathRepo(),
		taskRepo: &fakeTaskRepo{},
		store:    store,
		index:    index,
	}

	f.reindexer = NewReindexer(ReindexerDeps{
		Documents:      f.docs,
		Notes:          f.notes,
		Tags:           f.tags,
		Correspondents: f.corrs,
		DocumentTypes:  f.types,
		StoragePaths:   f.paths,
		Index:          index,
	}, nil)

	f.service = NewDocumentService(DocumentServiceDeps{
		Documents:      f.docs,
		Notes:          f.notes,
		Tags:           f.tags,
		Correspondents: f.corrs,
		DocumentTypes:  f.types,
		StoragePaths:   f.paths,
		Storage:        store,
		Reindexer:      f.reindexer,
	})
	f.noteSvc = NewNoteService(f.notes, f.docs, f.reindexer)
	f.metaSvc = NewCustomMetadataService(f.metadata, f.docs)
	f.bulk = NewBulkService(BulkServiceDeps{
		Documents:      f.docs,
		Correspondents: f.corrs,
		DocumentTypes:  f.types,
		StoragePaths:   f.paths,
		Tags:           f.tags,
		Storage:        store,
		Reindexer:      f.reindexer,
	})
	f.upload = NewUploadService(f.taskRepo, f.docs, store)
	f.searches = NewSearchService(index, f.docs, f.notes)
	f.browse = NewBrowseService(f.paths, f.docs)
	return f
}

func contentReader(s string) *strings.Reader {
	return strings.NewReader("content of " + s)
}

// addDocument creates an owned document with a stored original file
func (f *fixture) addDocument(t *testing.T, title string, owner uuid.UUID) *domaindocs.Document {
	t.Helper()

	doc, err := domaindocs.NewDocument(title, title+".pdf", "application/pdf", uuid.NewString())
	require.NoError(t, err)
	doc.SetOwner(owner)
	doc.OriginalKey = "originals/" + doc.ID.String() + ".pdf"
	require.NoError(t, f.store.Put(context.Background(), doc.OriginalKey, contentReader(title), "application/pdf"))
	require.NoError(t, f.docs.Save(context.Background(), doc))
	return doc
}

// reindexAll pushes the documents into the search index
func (f *fixture) reindexAll(t *testing.T, docs ...*domaindocs.Document) {
	t.Helper()
	for _, doc := range docs {
		f.reindexer.Reindex(context.Background(), doc)
	}
}
