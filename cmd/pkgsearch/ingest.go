package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/pkgsearch/internal/domain/pkginfo"
	"github.com/kailas-cloud/pkgsearch/internal/domain/search/result"
	pkginforepo "github.com/kailas-cloud/pkgsearch/internal/repository/pkginfo"
	searchrepo "github.com/kailas-cloud/pkgsearch/internal/repository/search"
)

// maxLineBytes bounds one JSON Lines record.
const maxLineBytes = 4 << 20

// ingestRecord is one line of the ingest file: the indexed package document
// plus its optional analysis metadata.
type ingestRecord struct {
	result.Document
	Metadata *pkginfo.Metadata `json:"metadata,omitempty"`
}

// packageWriter stores package documents.
type packageWriter interface {
	EnsureIndex(ctx context.Context) (bool, error)
	Put(ctx context.Context, docs []result.Document) error
}

// metadataWriter stores analysis metadata.
type metadataWriter interface {
	Put(ctx context.Context, metas map[string]pkginfo.Metadata) error
}

func ingestCommand(c *cli.Context) error {
	cfg, logger, err := loadRuntime(c)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	in := io.Reader(os.Stdin)
	if path := c.String("file"); path != "-" {
		f, err := os.Open(path) //nolint:gosec // operator-supplied path
		if err != nil {
			return fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()
		in = f
	}

	store, err := openStore(c.Context, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	index := searchrepo.PackageIndex(cfg.Index.Name, cfg.Index.KeyPrefix)
	packages := searchrepo.New(store, index, cfg.Index.CandidateWindow)
	infos := pkginforepo.New(store, cfg.Index.KeyPrefix, index)

	n, err := ingest(c.Context, in, c.Int("batch-size"), packages, infos, logger)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(c.App.Writer, "ingested %d packages into %s\n", n, index.Name)
	return err
}

// ingest creates the index when missing and writes records in batches.
// Documents and metadata of one batch are written concurrently.
func ingest(
	ctx context.Context, in io.Reader, batchSize int,
	packages packageWriter, infos metadataWriter, logger *zap.Logger,
) (int, error) {
	if batchSize <= 0 {
		return 0, fmt.Errorf("batch size must be positive, got %d", batchSize)
	}

	created, err := packages.EnsureIndex(ctx)
	if err != nil {
		return 0, fmt.Errorf("ensure index: %w", err)
	}
	if created {
		logger.Info("Created package index")
	}

	flush := func(docs []result.Document, metas map[string]pkginfo.Metadata) error {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error { return packages.Put(gctx, docs) })
		g.Go(func() error { return infos.Put(gctx, metas) })
		return g.Wait()
	}

	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64<<10), maxLineBytes)

	var (
		total int
		line  int
		docs  = make([]result.Document, 0, batchSize)
		metas = make(map[string]pkginfo.Metadata, batchSize)
	)
	for sc.Scan() {
		line++
		raw := sc.Bytes()
		if len(raw) == 0 {
			continue
		}

		var rec ingestRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return total, fmt.Errorf("line %d: %w", line, err)
		}
		if err := pkginfo.ValidateName(rec.Name); err != nil {
			return total, fmt.Errorf("line %d: %w", line, err)
		}

		docs = append(docs, rec.Document)
		if rec.Metadata != nil {
			metas[rec.Name] = *rec.Metadata
		}

		if len(docs) == batchSize {
			if err := flush(docs, metas); err != nil {
				return total, fmt.Errorf("write batch ending at line %d: %w", line, err)
			}
			total += len(docs)
			logger.Debug("Batch written", zap.Int("total", total))
			docs = docs[:0]
			metas = make(map[string]pkginfo.Metadata, batchSize)
		}
	}
	if err := sc.Err(); err != nil {
		return total, fmt.Errorf("read input: %w", err)
	}

	if len(docs) > 0 {
		if err := flush(docs, metas); err != nil {
			return total, fmt.Errorf("write final batch: %w", err)
		}
		total += len(docs)
	}

	logger.Info("Ingest complete", zap.Int("packages", total))
	return total, nil
}
