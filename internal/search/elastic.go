// Package search implements free-text catalog queries on Elasticsearch.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/olivere/elastic/v7"
	"github.com/shopspring/decimal"

	"github.com/mybooks/storefront/internal/domain/book"
)

// searchFields are the indexed document fields a free-text query runs over.
var searchFields = []string{
	"book_name", "publisher_name", "author_names", "tag_names", "book_explanation",
}

// Doc is the shape of a catalog document in the search index.
type Doc struct {
	BookID      int64           `json:"book_id"`
	Name        string          `json:"book_name"`
	Publisher   string          `json:"publisher_name"`
	Authors     []string        `json:"author_names"`
	Tags        []string        `json:"tag_names"`
	Explanation string          `json:"book_explanation"`
	Image       string          `json:"image"`
	Rate        float64         `json:"rate"`
	Cost        decimal.Decimal `json:"cost"`
	SaleCost    decimal.Decimal `json:"sale_cost"`
}

var _ book.SearchIndex = (*BookIndex)(nil)

// BookIndex implements book.SearchIndex on a single Elasticsearch index.
type BookIndex struct {
	es    *elastic.Client
	index string
}

// NewBookIndex returns a BookIndex bound to the named index.
func NewBookIndex(es *elastic.Client, index string) *BookIndex {
	return &BookIndex{es: es, index: index}
}

// Search runs a free-text query over the catalog and returns one page of
// result tiles. An empty query matches everything.
func (i *BookIndex) Search(ctx context.Context, query string, page, size int) (*book.SearchPage, error) {
	var q elastic.Query
	if query == "" {
		q = elastic.NewMatchAllQuery()
	} else {
		q = elastic.NewMultiMatchQuery(query, searchFields...)
	}

	if page < 1 {
		page = 1
	}
	res, err := i.es.Search(i.index).
		Query(q).
		From((page - 1) * size).
		Size(size).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("searching books for %q: %w", query, err)
	}

	briefs := make([]book.Brief, 0, len(res.Hits.Hits))
	for _, hit := range res.Hits.Hits {
		var doc Doc
		if err := json.Unmarshal(hit.Source, &doc); err != nil {
			return nil, fmt.Errorf("decoding search hit %q: %w", hit.Id, err)
		}
		briefs = append(briefs, book.Brief{
			BookID:   doc.BookID,
			Image:    doc.Image,
			Name:     doc.Name,
			Rate:     doc.Rate,
			Cost:     doc.Cost,
			SaleCost: doc.SaleCost,
		})
	}

	return &book.SearchPage{
		Books: briefs,
		Total: res.TotalHits(),
		Page:  page,
		Size:  size,
	}, nil
}

// BulkIndex upserts a batch of catalog documents, keyed by book id.
func (i *BookIndex) BulkIndex(ctx context.Context, docs []Doc) error {
	if len(docs) == 0 {
		return nil
	}

	bulk := i.es.Bulk()
	for _, doc := range docs {
		bulk.Add(elastic.NewBulkIndexRequest().
			Index(i.index).
			Id(strconv.FormatInt(doc.BookID, 10)).
			Doc(doc))
	}

	res, err := bulk.Do(ctx)
	if err != nil {
		return fmt.Errorf("bulk indexing %d books: %w", len(docs), err)
	}
	if failed := res.Failed(); len(failed) > 0 {
		return fmt.Errorf("bulk indexing: %d of %d documents failed, first: %s",
			len(failed), len(docs), failed[0].Id)
	}
	return nil
}
