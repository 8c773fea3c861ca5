package consumer

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/dms/backend/internal/domain/documents"
	"github.com/dms/backend/internal/domain/shared"
	"github.com/dms/backend/internal/domain/tasks"
	"github.com/dms/backend/internal/domain/taxonomy"
	"github.com/dms/backend/internal/infrastructure/logger"
	"github.com/dms/backend/internal/infrastructure/search"
	"github.com/dms/backend/internal/infrastructure/storage"
	"go.uber.org/zap"
)

// Deps are the collaborators a Consumer needs
type Deps struct {
	Tasks          tasks.TaskRepository
	Documents      documents.DocumentRepository
	Tags           taxonomy.TagRepository
	Correspondents taxonomy.CorrespondentRepository
	DocumentTypes  taxonomy.DocumentTypeRepository
	StoragePaths   taxonomy.StoragePathRepository
	Storage        storage.FileStorage
	Index          search.DocumentIndex
}

// Consumer drains pending consume tasks: it reads the uploaded file from
// storage, extracts text, runs the matching rules and creates the document.
type Consumer struct {
	deps         Deps
	logger       *zap.Logger
	workers      int
	pollInterval time.Duration
	taskTimeout  time.Duration
}

// Option configures the Consumer
type Option func(*Consumer)

// WithLogger sets the logger
func WithLogger(log *zap.Logger) Option {
	return func(c *Consumer) {
		c.logger = log
	}
}

// WithWorkers sets the number of concurrent workers
func WithWorkers(n int) Option {
	return func(c *Consumer) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithPollInterval sets how often idle workers look for new tasks
func WithPollInterval(d time.Duration) Option {
	return func(c *Consumer) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

// WithTaskTimeout bounds how long a single consumption may run
func WithTaskTimeout(d time.Duration) Option {
	return func(c *Consumer) {
		if d > 0 {
			c.taskTimeout = d
		}
	}
}

// NewConsumer creates a consumer with default settings
func NewConsumer(deps Deps, opts ...Option) *Consumer {
	c := &Consumer{
		deps:         deps,
		logger:       zap.NewNop(),
		workers:      2,
		pollInterval: 2 * time.Second,
		taskTimeout:  10 * time.Minute,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run starts the worker pool and blocks until the context is cancelled
func (c *Consumer) Run(ctx context.Context) {
	ctx = logger.WithContext(ctx, c.logger)
	var wg sync.WaitGroup
	for i := 0; i < c.workers; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			c.workerLoop(logger.WithContext(ctx, c.logger.With(zap.Int("worker", worker))))
		}(i)
	}
	wg.Wait()
}

func (c *Consumer) workerLoop(ctx context.Context) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.drain(ctx)
		}
	}
}

// drain processes pending tasks until the queue is empty
func (c *Consumer) drain(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		task, err := c.deps.Tasks.NextPending(ctx)
		if err != nil {
			if !errors.Is(err, shared.ErrNotFound) {
				logger.L(ctx).Error("failed to claim task", zap.Error(err))
			}
			return
		}
		c.ProcessTask(ctx, task)
	}
}

// ProcessTask runs a single claimed task to completion and records the outcome
func (c *Consumer) ProcessTask(ctx context.Context, task *tasks.Task) {
	taskCtx, cancel := context.WithTimeout(ctx, c.taskTimeout)
	defer cancel()

	log := logger.L(ctx).With(
		zap.String("task_id", task.TaskID.String()),
		zap.String("file", task.TaskFileName),
	)

	doc, err := c.consume(taskCtx, task)
	if err != nil {
		log.Warn("consumption failed", zap.Error(err))
		task.Fail(err.Error())
	} else {
		log.Info("document consumed", zap.String("document_id", doc.ID.String()))
		task.Succeed(fmt.Sprintf("Success. New document id %s created", doc.ID), &doc.ID)
	}

	if err := c.deps.Tasks.Save(ctx, task); err != nil {
		log.Error("failed to record task outcome", zap.Error(err))
	}
}

func (c *Consumer) consume(ctx context.Context, task *tasks.Task) (*documents.Document, error) {
	reader, _, err := c.deps.Storage.Open(ctx, task.IncomingKey())
	if err != nil {
		return nil, fmt.Errorf("uploaded file is gone: %w", err)
	}
	data, err := io.ReadAll(reader)
	reader.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}

	sum := sha256.Sum256(data)
	checksum := hex.EncodeToString(sum[:])

	existing, err := c.deps.Documents.FindByChecksum(ctx, checksum)
	if err == nil {
		return nil, fmt.Errorf("not consuming %s: it is a duplicate of %s", task.TaskFileName, existing.Title)
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	mime, err := DetectMimeType(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if !Supported(mime) {
		return nil, fmt.Errorf("unsupported file type %s", mime)
	}

	overrides, err := task.GetOverrides()
	if err != nil {
		return nil, fmt.Errorf("invalid metadata overrides: %w", err)
	}

	title := overrides.Title
	if title == "" {
		title = titleFromFilename(task.TaskFileName)
	}

	doc, err := documents.NewDocument(title, task.TaskFileName, mime, checksum)
	if err != nil {
		return nil, err
	}
	doc.OwnerID = task.OwnerID
	doc.Content = ExtractText(data, mime)
	doc.Language = DetectLanguage(doc.Content)
	doc.OriginalKey = "originals/" + doc.ID.String() + strings.ToLower(path.Ext(task.TaskFileName))
	doc.ThumbnailKey = "thumbnails/" + doc.ID.String() + ".webp"
	if overrides.Created != nil {
		doc.SetCreated(*overrides.Created)
	}
	if overrides.ASN != nil {
		if err := doc.SetASN(overrides.ASN); err != nil {
			return nil, err
		}
	}

	if err := c.classify(ctx, doc, overrides); err != nil {
		return nil, err
	}

	if err := c.deps.Storage.Put(ctx, doc.OriginalKey, bytes.NewReader(data), mime); err != nil {
		return nil, err
	}
	if err := c.deps.Storage.Put(ctx, doc.ThumbnailKey, bytes.NewReader(placeholderThumbnail), "image/webp"); err != nil {
		return nil, err
	}
	if err := c.deps.Documents.Save(ctx, doc); err != nil {
		return nil, err
	}
	if err := c.indexDocument(ctx, doc); err != nil {
		logger.L(ctx).Warn("failed to index document", zap.Error(err))
	}
	if err := c.deps.Storage.Delete(ctx, task.IncomingKey()); err != nil {
		logger.L(ctx).Warn("failed to remove incoming file", zap.Error(err))
	}
	return doc, nil
}

// classify assigns taxonomy entities, either from the upload's overrides
// or by running the matching rules against the document text.
func (c *Consumer) classify(ctx context.Context, doc *documents.Document, overrides tasks.ConsumeOverrides) error {
	text := doc.Title + "\n" + doc.Content

	if overrides.CorrespondentID != nil {
		doc.AssignCorrespondent(overrides.CorrespondentID)
	} else {
		correspondents, err := c.deps.Correspondents.FindAll(ctx, shared.Filter{})
		if err != nil {
			return err
		}
		for _, correspondent := range correspondents {
			if correspondent.Matches(text) {
				id := correspondent.ID
				doc.AssignCorrespondent(&id)
				break
			}
		}
	}

	if overrides.DocumentTypeID != nil {
		doc.AssignDocumentType(overrides.DocumentTypeID)
	} else {
		documentTypes, err := c.deps.DocumentTypes.FindAll(ctx, shared.Filter{})
		if err != nil {
			return err
		}
		for _, documentType := range documentTypes {
			if documentType.Matches(text) {
				id := documentType.ID
				doc.AssignDocumentType(&id)
				break
			}
		}
	}

	if overrides.StoragePathID != nil {
		doc.AssignStoragePath(overrides.StoragePathID)
	} else {
		storagePaths, err := c.deps.StoragePaths.FindAll(ctx, shared.Filter{})
		if err != nil {
			return err
		}
		for _, storagePath := range storagePaths {
			if storagePath.Matches(text) {
				id := storagePath.ID
				doc.AssignStoragePath(&id)
				break
			}
		}
	}

	if len(overrides.TagIDs) > 0 {
		for _, id := range overrides.TagIDs {
			doc.AddTag(id)
		}
	} else {
		allTags, err := c.deps.Tags.FindAll(ctx, shared.Filter{})
		if err != nil {
			return err
		}
		for _, tag := range allTags {
			if tag.Matches(text) {
				doc.AddTag(tag.ID)
			}
		}
	}

	// inbox tags always land on freshly consumed documents
	inboxTags, err := c.deps.Tags.FindInboxTags(ctx)
	if err != nil {
		return err
	}
	for _, tag := range inboxTags {
		doc.AddTag(tag.ID)
	}
	return nil
}

func (c *Consumer) indexDocument(ctx context.Context, doc *documents.Document) error {
	var correspondentName, typeName, pathName string
	if doc.CorrespondentID != nil {
		if correspondent, err := c.deps.Correspondents.FindByID(ctx, *doc.CorrespondentID); err == nil {
			correspondentName = correspondent.Name
		}
	}
	if doc.DocumentTypeID != nil {
		if documentType, err := c.deps.DocumentTypes.FindByID(ctx, *doc.DocumentTypeID); err == nil {
			typeName = documentType.Name
		}
	}
	if doc.StoragePathID != nil {
		if storagePath, err := c.deps.StoragePaths.FindByID(ctx, *doc.StoragePathID); err == nil {
			pathName = storagePath.Name
		}
	}

	var tagNames []string
	if len(doc.TagIDs) > 0 {
		docTags, err := c.deps.Tags.FindByIDs(ctx, doc.TagIDs)
		if err != nil {
			return err
		}
		for _, tag := range docTags {
			tagNames = append(tagNames, tag.Name)
		}
	}

	return c.deps.Index.Index(ctx, search.NewIndexedDocument(doc, correspondentName, typeName, pathName, tagNames, ""))
}

// titleFromFilename derives a document title from the upload's filename
func titleFromFilename(filename string) string {
	base := path.Base(filename)
	title := strings.TrimSuffix(base, path.Ext(base))
	title = strings.TrimSpace(title)
	if title == "" {
		return "Untitled"
	}
	return title
}
