package search

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/dms/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ownerNone marks unowned documents in the index. Empty terms are not
// indexed, so a sentinel is needed for the visibility filter.
const ownerNone = "__none__"

// IndexedDocument is the flattened form of a document stored in the
// full text index. Related entities are denormalized to their names so
// queries like "correspondent:acme" work.
type IndexedDocument struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	Correspondent string    `json:"correspondent"`
	Type          string    `json:"type"`
	Path          string    `json:"path"`
	Tags          []string  `json:"tag"`
	Notes         string    `json:"notes"`
	ASN           int64     `json:"asn"`
	OriginalName  string    `json:"original_filename"`
	Created       time.Time `json:"created"`
	Added         time.Time `json:"added"`
	Owner         string    `json:"owner"`
	SharedWith    []string  `json:"shared_with"`
}

// Hit is a single ranked search result
type Hit struct {
	ID         uuid.UUID
	Score      float64
	Highlights map[string][]string
}

// Result is a page of ranked hits
type Result struct {
	Hits  []Hit
	Total uint64
}

// DocumentIndex is the full text index over documents
type DocumentIndex interface {
	Index(ctx context.Context, doc IndexedDocument) error
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, queryString string, viewer shared.Viewer, page, pageSize int) (*Result, error)
	MoreLikeThis(ctx context.Context, id uuid.UUID, content string, viewer shared.Viewer, page, pageSize int) (*Result, error)
	Autocomplete(ctx context.Context, term string, limit int) ([]string, error)
	Close() error
}

// BleveIndex implements DocumentIndex using a bleve index on disk
type BleveIndex struct {
	index  bleve.Index
	logger *zap.Logger
}

// BleveOption configures the BleveIndex
type BleveOption func(*BleveIndex)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) BleveOption {
	return func(b *BleveIndex) {
		b.logger = logger
	}
}

func buildIndexMapping() *mapping.IndexMappingImpl {
	textField := bleve.NewTextFieldMapping()

	keywordField := bleve.NewTextFieldMapping()
	keywordField.Analyzer = keyword.Name

	dateField := bleve.NewDateTimeFieldMapping()
	numericField := bleve.NewNumericFieldMapping()

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("title", textField)
	docMapping.AddFieldMappingsAt("content", textField)
	docMapping.AddFieldMappingsAt("correspondent", textField)
	docMapping.AddFieldMappingsAt("type", textField)
	docMapping.AddFieldMappingsAt("path", textField)
	docMapping.AddFieldMappingsAt("tag", textField)
	docMapping.AddFieldMappingsAt("notes", textField)
	docMapping.AddFieldMappingsAt("original_filename", textField)
	docMapping.AddFieldMappingsAt("asn", numericField)
	docMapping.AddFieldMappingsAt("created", dateField)
	docMapping.AddFieldMappingsAt("added", dateField)
	docMapping.AddFieldMappingsAt("owner", keywordField)
	docMapping.AddFieldMappingsAt("shared_with", keywordField)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = docMapping
	return indexMapping
}

// NewBleveIndex opens the index at dir, creating it on first use
func NewBleveIndex(dir string, opts ...BleveOption) (*BleveIndex, error) {
	var index bleve.Index
	var err error

	if _, statErr := os.Stat(dir); os.IsNotExist(statErr) {
		index, err = bleve.New(dir, buildIndexMapping())
	} else {
		index, err = bleve.Open(dir)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open search index at %s: %w", dir, err)
	}

	b := &BleveIndex{
		index:  index,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// NewMemoryIndex creates a transient in-memory index
func NewMemoryIndex(opts ...BleveOption) (*BleveIndex, error) {
	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create search index: %w", err)
	}
	b := &BleveIndex{
		index:  index,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Index adds or replaces a document in the index
func (b *BleveIndex) Index(ctx context.Context, doc IndexedDocument) error {
	if doc.ID == "" {
		return fmt.Errorf("document id is required")
	}
	if doc.Owner == "" {
		doc.Owner = ownerNone
	}
	if err := b.index.Index(doc.ID, doc); err != nil {
		return fmt.Errorf("failed to index document %s: %w", doc.ID, err)
	}
	b.logger.Debug("indexed document", zap.String("id", doc.ID))
	return nil
}

// Delete removes a document from the index
func (b *BleveIndex) Delete(ctx context.Context, id uuid.UUID) error {
	if err := b.index.Delete(id.String()); err != nil {
		return fmt.Errorf("failed to remove document %s from index: %w", id, err)
	}
	return nil
}

// Search runs a query string query and returns a ranked page of hits.
// Queries that do not parse (unbalanced quotes, stray colons) are
// rejected rather than silently reinterpreted.
func (b *BleveIndex) Search(ctx context.Context, queryString string, viewer shared.Viewer, page, pageSize int) (*Result, error) {
	userQuery := bleve.NewQueryStringQuery(queryString)
	if _, err := userQuery.Parse(); err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Invalid search query")
	}
	return b.run(userQuery, viewer, page, pageSize)
}

// MoreLikeThis finds documents similar to the given content by querying
// for its most frequent terms, excluding the source document itself.
func (b *BleveIndex) MoreLikeThis(ctx context.Context, id uuid.UUID, content string, viewer shared.Viewer, page, pageSize int) (*Result, error) {
	terms := topTerms(content, 10)
	if len(terms) == 0 {
		return &Result{}, nil
	}

	similar := bleve.NewBooleanQuery()
	for _, term := range terms {
		match := bleve.NewMatchQuery(term)
		match.SetField("content")
		similar.AddShould(match)
	}
	similar.AddMustNot(bleve.NewDocIDQuery([]string{id.String()}))
	similar.SetMinShould(1)

	return b.run(similar, viewer, page, pageSize)
}

func (b *BleveIndex) run(userQuery query.Query, viewer shared.Viewer, page, pageSize int) (*Result, error) {
	root := bleve.NewBooleanQuery()
	root.AddMust(userQuery)

	if !viewer.Superuser {
		visible := bleve.NewBooleanQuery()

		unowned := bleve.NewTermQuery(ownerNone)
		unowned.SetField("owner")
		visible.AddShould(unowned)

		owned := bleve.NewTermQuery(viewer.UserID.String())
		owned.SetField("owner")
		visible.AddShould(owned)

		sharedWith := bleve.NewTermQuery(viewer.UserID.String())
		sharedWith.SetField("shared_with")
		visible.AddShould(sharedWith)

		visible.SetMinShould(1)
		root.AddMust(visible)
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 25
	}

	request := bleve.NewSearchRequestOptions(root, pageSize, (page-1)*pageSize, false)
	request.Fields = []string{"title"}
	request.Highlight = bleve.NewHighlightWithStyle("html")
	request.Highlight.AddField("content")
	request.Highlight.AddField("title")

	searchResult, err := b.index.Search(request)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	result := &Result{
		Hits:  make([]Hit, 0, len(searchResult.Hits)),
		Total: searchResult.Total,
	}
	for _, hit := range searchResult.Hits {
		docID, err := uuid.Parse(hit.ID)
		if err != nil {
			continue
		}
		result.Hits = append(result.Hits, Hit{
			ID:         docID,
			Score:      hit.Score,
			Highlights: hit.Fragments,
		})
	}
	return result, nil
}

// Autocomplete returns indexed terms completing the given prefix,
// most frequent first.
func (b *BleveIndex) Autocomplete(ctx context.Context, term string, limit int) ([]string, error) {
	prefix := strings.ToLower(strings.TrimSpace(term))
	if prefix == "" {
		return nil, nil
	}
	if limit < 1 {
		limit = 10
	}

	dict, err := b.index.FieldDictPrefix("content", []byte(prefix))
	if err != nil {
		return nil, fmt.Errorf("failed to read term dictionary: %w", err)
	}
	defer dict.Close()

	type termCount struct {
		term  string
		count uint64
	}
	var candidates []termCount
	for {
		entry, err := dict.Next()
		if err != nil {
			return nil, fmt.Errorf("failed to read term dictionary: %w", err)
		}
		if entry == nil {
			break
		}
		candidates = append(candidates, termCount{term: entry.Term, count: entry.Count})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].count != candidates[j].count {
			return candidates[i].count > candidates[j].count
		}
		return candidates[i].term < candidates[j].term
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	terms := make([]string, 0, len(candidates))
	for _, c := range candidates {
		terms = append(terms, c.term)
	}
	return terms, nil
}

// Close releases the index
func (b *BleveIndex) Close() error {
	return b.index.Close()
}

// topTerms extracts the most frequent meaningful words from text
func topTerms(text string, limit int) []string {
	counts := make(map[string]int)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,;:!?\"'()[]{}")
		if len(word) < 4 || stopWords[word] {
			continue
		}
		counts[word]++
	}

	terms := make([]string, 0, len(counts))
	for term := range counts {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if counts[terms[i]] != counts[terms[j]] {
			return counts[terms[i]] > counts[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if len(terms) > limit {
		terms = terms[:limit]
	}
	return terms
}

var stopWords = map[string]bool{
	"this": true, "that": true, "with": true, "from": true, "have": true,
	"been": true, "were": true, "they": true, "their": true, "which": true,
	"will": true, "would": true, "there": true, "about": true, "your": true,
}

// Ensure BleveIndex implements DocumentIndex
var _ DocumentIndex = (*BleveIndex)(nil)
