package application

import (
	"context"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"support-rag/domain"
)

// DefaultMaxWords is the chunk word budget used when a request does not
// supply one.
const DefaultMaxWords = 500

// FileInput is one uploaded or discovered file awaiting ingestion.
type FileInput struct {
	Name string
	Data []byte
}

// FileResult is the per-file outcome of a batch ingestion. Every input file
// gets exactly one entry: success with a chunk count, or a typed error
// message. A failing file never aborts the rest of the batch.
type FileResult struct {
	FileName string `json:"file_name"`
	Chunks   int    `json:"chunks"`
	Status   string `json:"status"`
	Error    string `json:"error,omitempty"`
}

// IngestionService drives the pipeline Extractor -> Normalizer -> Chunker ->
// Embedding Gateway -> Vector Collection for batches of files. Chunk
// embeddings within a file are dispatched to a bounded worker pool; the
// per-run chunk batches are transient and handed off to the store whole.
type IngestionService struct {
	extractor *TextExtractor
	embedder  domain.EmbeddingClient
	store     domain.VectorStore
	workers   int
}

// NewIngestionService creates an IngestionService. workers bounds the
// number of concurrent embedding calls per file.
func NewIngestionService(extractor *TextExtractor, embedder domain.EmbeddingClient, store domain.VectorStore, workers int) *IngestionService {
	if workers <= 0 {
		workers = 4
	}
	return &IngestionService{
		extractor: extractor,
		embedder:  embedder,
		store:     store,
		workers:   workers,
	}
}

// IngestFiles processes each file independently and returns one result per
// input file. Extraction and format errors stay contained to their file;
// only context cancellation stops the batch early, and even then every file
// still receives a result entry.
func (s *IngestionService) IngestFiles(ctx context.Context, files []FileInput, collection string, maxWords int) []FileResult {
	if maxWords <= 0 {
		maxWords = DefaultMaxWords
	}

	results := make([]FileResult, 0, len(files))
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			results = append(results, FileResult{FileName: file.Name, Status: "error", Error: err.Error()})
			continue
		}
		count, err := s.ingestFile(ctx, file, collection, maxWords)
		if err != nil {
			log.Printf("ingestion: %s failed: %v", file.Name, err)
			results = append(results, FileResult{FileName: file.Name, Status: "error", Error: err.Error()})
			continue
		}
		results = append(results, FileResult{FileName: file.Name, Chunks: count, Status: "success"})
	}
	return results
}

// IngestDirectory walks the tree rooted at dir and ingests every supported
// file it finds, mirroring the batch semantics of IngestFiles.
func (s *IngestionService) IngestDirectory(ctx context.Context, dir, collection string, maxWords int) ([]FileResult, error) {
	var files []FileInput
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".pdf", ".md", ".markdown":
		default:
			return nil
		}
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return readErr
		}
		files = append(files, FileInput{Name: filepath.Base(path), Data: data})
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("ingestion: found %d files under %s", len(files), dir)
	return s.IngestFiles(ctx, files, collection, maxWords), nil
}

// ingestFile runs the full pipeline for one file and returns its chunk count.
func (s *IngestionService) ingestFile(ctx context.Context, file FileInput, collection string, maxWords int) (int, error) {
	sections, err := s.extractor.Extract(file.Data, file.Name)
	if err != nil {
		return 0, err
	}

	chunks := ChunkSections(file.Name, sections, maxWords)
	if len(chunks) == 0 {
		return 0, nil
	}

	if err := s.store.EnsureCollection(ctx, collection, s.embedder.Dimension(), domain.MetricCosine); err != nil {
		return 0, err
	}

	// Chunk embeddings are independent; dispatch them to the pool. A
	// cancelled run stops handing out new chunks and lets in-flight
	// embedding calls finish.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i := range chunks {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			vector, err := s.embedder.Embed(gctx, chunks[i].Text)
			if err != nil {
				return err
			}
			chunks[i].Vector = vector
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	points := make([]domain.Point, len(chunks))
	for i, chunk := range chunks {
		points[i] = domain.Point{ID: chunk.ID, Vector: chunk.Vector, Payload: chunk.Payload()}
	}
	if err := s.store.Upsert(ctx, collection, points); err != nil {
		return 0, err
	}
	return len(chunks), nil
}
