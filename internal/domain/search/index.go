// Package search keeps an in-memory full-text index over the consolidated transactions
// of a batch.
package search

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/FACorreiaa/statement-analyzer/internal/domain/transaction"
)

// document is the indexed form of a transaction
type document struct {
	Description  string  `json:"description"`
	OperationTag string  `json:"operation_tag"`
	Category     string  `json:"category"`
	Bank         string  `json:"bank"`
	DocType      string  `json:"doc_type"`
	Source       string  `json:"source"`
	Month        string  `json:"month"`
	Value        float64 `json:"value"`
}

// Hit is a matching transaction with its relevance score.
type Hit struct {
	Transaction transaction.Transaction
	Score       float64
}

// Index is an in-memory bleve index. Document IDs are positions in the indexed slice.
type Index struct {
	index bleve.Index
	txs   []transaction.Transaction
	mu    sync.RWMutex
}

// NewIndex creates an empty in-memory index.
func NewIndex() (*Index, error) {
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create index: %w", err)
	}
	return &Index{index: idx}, nil
}

func buildIndexMapping() mapping.IndexMapping {
	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Analyzer = simple.Name

	keywordFieldMapping := bleve.NewTextFieldMapping()
	keywordFieldMapping.Analyzer = keyword.Name

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("description", textFieldMapping)
	docMapping.AddFieldMappingsAt("operation_tag", textFieldMapping)
	docMapping.AddFieldMappingsAt("category", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("bank", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("doc_type", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("source", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("month", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("value", bleve.NewNumericFieldMapping())

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = docMapping
	indexMapping.DefaultAnalyzer = simple.Name
	return indexMapping
}

// Add indexes the transactions in one batch.
func (i *Index) Add(txs []transaction.Transaction) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	batch := i.index.NewBatch()
	for _, tx := range txs {
		id := strconv.Itoa(len(i.txs))
		doc := document{
			Description:  tx.Description,
			OperationTag: tx.OperationTag,
			Category:     string(tx.Category),
			Bank:         string(tx.Bank),
			DocType:      string(tx.DocType),
			Source:       tx.Source,
			Month:        tx.Month(),
			Value:        tx.Value.InexactFloat64(),
		}
		if err := batch.Index(id, doc); err != nil {
			return fmt.Errorf("failed to index transaction %s: %w", id, err)
		}
		i.txs = append(i.txs, tx)
	}

	if err := i.index.Batch(batch); err != nil {
		return fmt.Errorf("failed to execute batch index: %w", err)
	}
	return nil
}

// Query runs a typo tolerant match over descriptions and operation tags.
func (i *Index) Query(text string, limit int) ([]Hit, error) {
	matchQuery := bleve.NewMatchQuery(text)
	matchQuery.SetFuzziness(1)

	return i.search(matchQuery, limit)
}

// ByCategory returns the transactions labelled with category.
func (i *Index) ByCategory(category transaction.Category, limit int) ([]Hit, error) {
	termQuery := bleve.NewTermQuery(string(category))
	termQuery.SetField("category")

	return i.search(termQuery, limit)
}

// Advanced accepts the bleve query string syntax, e.g. "+pix -estorno month:2024-03".
func (i *Index) Advanced(queryString string, limit int) ([]Hit, error) {
	return i.search(bleve.NewQueryStringQuery(queryString), limit)
}

func (i *Index) search(q query.Query, limit int) ([]Hit, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	if limit <= 0 {
		limit = 10
	}

	req := bleve.NewSearchRequest(q)
	req.Size = limit

	res, err := i.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	hits := make([]Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		pos, err := strconv.Atoi(h.ID)
		if err != nil || pos < 0 || pos >= len(i.txs) {
			continue
		}
		hits = append(hits, Hit{Transaction: i.txs[pos], Score: h.Score})
	}
	return hits, nil
}

// Count returns the number of indexed transactions.
func (i *Index) Count() (uint64, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.index.DocCount()
}

// Close releases the index.
func (i *Index) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.index != nil {
		return i.index.Close()
	}
	return nil
}
