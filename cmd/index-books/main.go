// Command index-books streams gzip-compressed NDJSON catalog dumps into the
// Elasticsearch book index. Dumps from different sources overlap heavily, so
// a bloom filter skips ISBN duplicates already submitted during the run.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"github.com/olivere/elastic/v7"
	"golang.org/x/sync/errgroup"

	"github.com/mybooks/storefront/internal/search"
)

const (
	bloomCapacity = 10_000_000
	bloomFPR      = 0.001
	batchSize     = 500
	progressEvery = 100_000
)

// dumpLine is one NDJSON record of a catalog dump: an indexable document plus
// the ISBN used for cross-file deduplication.
type dumpLine struct {
	search.Doc
	ISBN string `json:"isbn"`
}

func main() {
	var (
		dataDir    string
		elasticURL string
		indexName  string
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing bookdump*.gz NDJSON files")
	flag.StringVar(&elasticURL, "elastic-url", "http://localhost:9200", "Elasticsearch URL (or ELASTIC_URL env)")
	flag.StringVar(&indexName, "index", "books", "Elasticsearch index name")
	flag.Parse()

	if v := os.Getenv("ELASTIC_URL"); v != "" {
		elasticURL = v
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, dataDir, elasticURL, indexName); err != nil {
		slog.Error("index failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("index completed successfully")
}

func run(ctx context.Context, dataDir, elasticURL, indexName string) error {
	files, err := filepath.Glob(filepath.Join(dataDir, "bookdump*.gz"))
	if err != nil {
		return errors.Wrap(err, "glob dump files")
	}
	if len(files) == 0 {
		return errors.Errorf("no bookdump*.gz files in %s", dataDir)
	}

	es, err := elastic.NewClient(
		elastic.SetURL(elasticURL),
		elastic.SetSniff(false),
	)
	if err != nil {
		return errors.Wrap(err, "create elastic client")
	}
	defer es.Stop()

	index := search.NewBookIndex(es, indexName)

	// One producer per dump file, a single consumer doing bulk writes. The
	// bloom filter is shared across producers so overlapping dumps only
	// submit an ISBN once.
	var (
		seenMu sync.Mutex
		seen   = bloom.NewWithEstimates(bloomCapacity, bloomFPR)
	)
	docs := make(chan search.Doc, batchSize)

	g, ctx := errgroup.WithContext(ctx)
	producers, pctx := errgroup.WithContext(ctx)
	for _, f := range files {
		producers.Go(streamDumpFile(pctx, f, docs, seen, &seenMu))
	}
	g.Go(func() error {
		defer close(docs)
		return producers.Wait()
	})
	g.Go(bulkWriter(ctx, index, docs))

	return g.Wait()
}

func streamDumpFile(
	ctx context.Context,
	path string,
	docs chan<- search.Doc,
	seen *bloom.BloomFilter,
	seenMu *sync.Mutex,
) func() error {
	return func() error {
		f, err := os.Open(path)
		if err != nil {
			return errors.Wrapf(err, "open %s", path)
		}
		defer func() { _ = f.Close() }()

		gz, err := pgzip.NewReader(f)
		if err != nil {
			return errors.Wrapf(err, "create gzip reader for %s", path)
		}
		defer func() { _ = gz.Close() }()

		var count uint64
		scanner := bufio.NewScanner(gz)
		scanner.Buffer(make([]byte, 0, 1<<20), 1<<20)
		for scanner.Scan() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var line dumpLine
			if err := json.Unmarshal(scanner.Bytes(), &line); err != nil {
				return errors.Wrapf(err, "parse record in %s", path)
			}

			seenMu.Lock()
			duplicate := line.ISBN != "" && seen.TestOrAddString(line.ISBN)
			seenMu.Unlock()
			if duplicate {
				continue
			}

			select {
			case docs <- line.Doc:
			case <-ctx.Done():
				return ctx.Err()
			}

			count++
			if count%progressEvery == 0 {
				slog.Info("dump progress",
					slog.String("file", filepath.Base(path)),
					slog.Uint64("records", count),
				)
			}
		}
		if err := scanner.Err(); err != nil {
			return errors.Wrapf(err, "scan %s", path)
		}

		slog.Info("dump complete",
			slog.String("file", filepath.Base(path)),
			slog.Uint64("records", count),
		)
		return nil
	}
}

func bulkWriter(ctx context.Context, index *search.BookIndex, docs <-chan search.Doc) func() error {
	return func() error {
		batch := make([]search.Doc, 0, batchSize)
		var total int

		flush := func() error {
			if len(batch) == 0 {
				return nil
			}
			if err := index.BulkIndex(ctx, batch); err != nil {
				return err
			}
			total += len(batch)
			batch = batch[:0]
			return nil
		}

		for doc := range docs {
			batch = append(batch, doc)
			if len(batch) == batchSize {
				if err := flush(); err != nil {
					return err
				}
			}
		}
		if err := flush(); err != nil {
			return err
		}

		slog.Info("indexed books", slog.Int("total", total))
		return nil
	}
}
