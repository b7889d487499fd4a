// Package index maintains the full-text search index over documents. Every
// document is indexed as one entry per text fragment, so a hit can always be
// traced back to a document ID.
package index

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/tmc/langchaingo/textsplitter"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"inquest/internal"
	"inquest/models"
)

// Fragments longer than this get split before indexing so highlighting and
// scoring stay useful on very long pages.
const fragmentSize = 2000
const fragmentOverlap = 100

// reindexWorkers bounds the concurrency of a full reindex.
const reindexWorkers = 4

type entry struct {
	DocumentID   string `json:"document_id"`
	CollectionID string `json:"collection_id"`
	Type         string `json:"type"`
	Title        string `json:"title"`
	Text         string `json:"text"`
}

type Indexer struct {
	index    bleve.Index
	splitter textsplitter.RecursiveCharacter
}

func buildMapping() mapping.IndexMapping {
	keyword := bleve.NewKeywordFieldMapping()
	text := bleve.NewTextFieldMapping()

	document := bleve.NewDocumentMapping()
	document.AddFieldMappingsAt("document_id", keyword)
	document.AddFieldMappingsAt("collection_id", keyword)
	document.AddFieldMappingsAt("type", keyword)
	document.AddFieldMappingsAt("title", text)
	document.AddFieldMappingsAt("text", text)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = document

	return indexMapping
}

func newSplitter() textsplitter.RecursiveCharacter {
	splitter := textsplitter.NewRecursiveCharacter()
	splitter.ChunkSize = fragmentSize
	splitter.ChunkOverlap = fragmentOverlap

	return splitter
}

// Open opens the index at path, creating it when it does not exist yet.
func Open(path string) (*Indexer, error) {
	idx, err := bleve.Open(path)
	if err == bleve.ErrorIndexPathDoesNotExist {
		idx, err = bleve.New(path, buildMapping())
	}
	if err != nil {
		return nil, err
	}

	return &Indexer{index: idx, splitter: newSplitter()}, nil
}

// NewMemOnly returns an in-memory index used by tests.
func NewMemOnly() (*Indexer, error) {
	idx, err := bleve.NewMemOnly(buildMapping())
	if err != nil {
		return nil, err
	}

	return &Indexer{index: idx, splitter: newSplitter()}, nil
}

func (i *Indexer) Close() error {
	return i.index.Close()
}

func fragmentID(documentID uint, seq int) string {
	return fmt.Sprintf("%d:%d", documentID, seq)
}

func documentIDOfHit(hitID string) (uint, bool) {
	prefix, _, found := strings.Cut(hitID, ":")
	if !found {
		return 0, false
	}
	id, err := strconv.ParseUint(prefix, 10, 64)
	if err != nil {
		return 0, false
	}

	return uint(id), true
}

// IndexDocument replaces the document's entries with one per text fragment.
// A document with no text still gets a single entry so it is findable by
// title.
func (i *Indexer) IndexDocument(document *models.Document, view models.DocumentIndexView) error {
	if err := i.DeleteDocument(document.ID); err != nil {
		return err
	}

	var fragments []string
	for _, part := range view.Text {
		if len(part) <= fragmentSize {
			fragments = append(fragments, part)
			continue
		}
		split, err := i.splitter.SplitText(part)
		if err != nil {
			return err
		}
		fragments = append(fragments, split...)
	}
	if len(fragments) == 0 {
		fragments = []string{""}
	}

	batch := i.index.NewBatch()
	for seq, fragment := range fragments {
		err := batch.Index(fragmentID(document.ID, seq), entry{
			DocumentID:   strconv.FormatUint(uint64(document.ID), 10),
			CollectionID: strconv.FormatUint(uint64(view.CollectionID), 10),
			Type:         string(view.Type),
			Title:        view.DisplayTitle(),
			Text:         fragment,
		})
		if err != nil {
			return err
		}
	}

	return i.index.Batch(batch)
}

// DeleteDocument removes every fragment of a document from the index.
func (i *Indexer) DeleteDocument(documentID uint) error {
	term := bleve.NewTermQuery(strconv.FormatUint(uint64(documentID), 10))
	term.SetField("document_id")

	for {
		request := bleve.NewSearchRequestOptions(term, 500, 0, false)
		result, err := i.index.Search(request)
		if err != nil {
			return err
		}
		if len(result.Hits) == 0 {
			return nil
		}

		batch := i.index.NewBatch()
		for _, hit := range result.Hits {
			batch.Delete(hit.ID)
		}
		if err := i.index.Batch(batch); err != nil {
			return err
		}
	}
}

// Search runs a match query and returns the IDs of matching documents,
// best-scoring first. A non-zero collectionID restricts the search to one
// collection.
func (i *Indexer) Search(queryString string, collectionID uint, limit int) ([]uint, error) {
	match := bleve.NewMatchQuery(queryString)

	var request *bleve.SearchRequest
	if collectionID != 0 {
		term := bleve.NewTermQuery(strconv.FormatUint(uint64(collectionID), 10))
		term.SetField("collection_id")
		request = bleve.NewSearchRequestOptions(bleve.NewConjunctionQuery(match, term), limit*4, 0, false)
	} else {
		request = bleve.NewSearchRequestOptions(match, limit*4, 0, false)
	}

	result, err := i.index.Search(request)
	if err != nil {
		return nil, err
	}

	// Fragments of the same document dedupe to its first (best) hit.
	seen := map[uint]bool{}
	var ids []uint
	for _, hit := range result.Hits {
		id, ok := documentIDOfHit(hit.ID)
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
		if len(ids) == limit {
			break
		}
	}

	return ids, nil
}

// Reindex walks all documents in batches and rebuilds their index entries.
func (i *Indexer) Reindex(db *gorm.DB) error {
	logger, err := internal.NewLogger("index")
	if err != nil {
		return err
	}

	var documents []models.Document
	result := db.FindInBatches(&documents, 100, func(tx *gorm.DB, batch int) error {
		group := errgroup.Group{}
		group.SetLimit(reindexWorkers)

		for idx := range documents {
			document := documents[idx]
			group.Go(func() error {
				view, err := document.IndexView(db, nil)
				if err != nil {
					return err
				}

				return i.IndexDocument(&document, view)
			})
		}

		if err := group.Wait(); err != nil {
			return err
		}

		logger.Infow("reindexed batch", "batch", batch, "documents", len(documents))
		return nil
	})

	return result.Error
}
