package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"support-rag/application"
	"support-rag/config"
	"support-rag/domain"
	"support-rag/infrastructure/embedding"
	"support-rag/infrastructure/httpapi"
	"support-rag/infrastructure/vectorstore"
	"support-rag/infrastructure/vectorstore/memory"
)

func main() {
	ingestDir := flag.String("ingest", "", "ingest all .pdf/.md files under this directory and exit")
	ingestCollection := flag.String("collection", "", "target collection for -ingest (defaults to DOCS_COLLECTION)")
	maxWords := flag.Int("max-words", 0, "chunk word budget for -ingest (defaults to CHUNK_MAX_WORDS)")
	retagFile := flag.String("retag", "", "report tag changes for the resolved tickets in this JSON file and exit")
	flag.Parse()

	cfg := config.Load()

	embedder, err := embedding.NewOpenAIEmbeddingClient(embedding.Config{
		APIKey:    cfg.OpenAIKey,
		BaseURL:   cfg.OpenAIBaseURL,
		Model:     cfg.EmbeddingModel,
		Dimension: cfg.EmbeddingDimension,
		Timeout:   cfg.EmbedTimeout,
	})
	if err != nil {
		log.Fatalf("failed to initialize embedding client: %v", err)
	}

	// An unreachable embedding backend is fatal at startup; later failures
	// are retried per call.
	pingCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := embedder.Ping(pingCtx); err != nil {
		cancel()
		log.Fatalf("embedding backend unreachable: %v", err)
	}
	cancel()

	store, err := newStore(cfg)
	if err != nil {
		log.Fatalf("failed to initialize vector store: %v", err)
	}

	extractor := application.NewTextExtractor()
	ingestion := application.NewIngestionService(extractor, embedder, store, cfg.IngestWorkers)
	suggestions := application.NewSuggestionService(embedder, store, cfg.TicketsCollection, cfg.DocsCollection)
	classifier := application.NewTagClassifier(embedder)

	if *ingestDir != "" {
		runIngest(ingestion, cfg, *ingestDir, *ingestCollection, *maxWords)
		return
	}
	if *retagFile != "" {
		runRetag(application.NewTicketIndexer(embedder, store, classifier, cfg.TagVocabulary), *retagFile)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	for _, collection := range []string{cfg.TicketsCollection, cfg.DocsCollection} {
		if err := store.EnsureCollection(ctx, collection, embedder.Dimension(), domain.MetricCosine); err != nil {
			log.Fatalf("failed to ensure collection %s: %v", collection, err)
		}
	}

	if cfg.SeedFile != "" {
		indexer := application.NewTicketIndexer(embedder, store, classifier, cfg.TagVocabulary)
		if err := indexer.SeedFromFile(ctx, cfg.SeedFile, cfg.TicketsCollection); err != nil {
			log.Printf("warning: seeding tickets failed: %v", err)
		}
	}

	handlers := httpapi.NewHandlers(suggestions, ingestion, classifier, store,
		cfg.DocsCollection, cfg.TicketsCollection, cfg.MaxWords, cfg.TagVocabulary)
	serverCfg := httpapi.DefaultServerConfig()
	serverCfg.Port = cfg.Port
	server := httpapi.NewServer(handlers, serverCfg)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown error: %v", err)
		}
	}
}

// newStore picks the configured vector store backend.
func newStore(cfg *config.Config) (domain.VectorStore, error) {
	switch cfg.VectorStore {
	case "memory":
		return memory.NewStore(), nil
	case "qdrant":
		return vectorstore.NewQdrantClient(cfg.QdrantAddr, cfg.StoreTimeout)
	default:
		return nil, fmt.Errorf("unknown vector store %q", cfg.VectorStore)
	}
}

// runIngest performs a one-shot directory ingestion and prints the per-file
// results, mirroring the batch pipeline's best-effort semantics.
func runIngest(ingestion *application.IngestionService, cfg *config.Config, dir, collection string, maxWords int) {
	if collection == "" {
		collection = cfg.DocsCollection
	}
	if maxWords <= 0 {
		maxWords = cfg.MaxWords
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	results, err := ingestion.IngestDirectory(ctx, dir, collection, maxWords)
	if err != nil {
		log.Fatalf("ingestion failed: %v", err)
	}
	failures := 0
	for _, result := range results {
		if result.Status == "success" {
			fmt.Printf("%s: %d chunks\n", result.FileName, result.Chunks)
		} else {
			failures++
			fmt.Printf("%s: error: %s\n", result.FileName, result.Error)
		}
	}
	fmt.Printf("ingested %d files, %d failed\n", len(results)-failures, failures)
	if failures > 0 {
		os.Exit(1)
	}
}

// runRetag performs a one-shot re-tagging pass over a ticket export and
// prints only the tickets whose tag would change.
func runRetag(indexer *application.TicketIndexer, path string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	updates, err := indexer.RetagFromFile(ctx, path)
	if err != nil {
		log.Fatalf("retag failed: %v", err)
	}
	for _, update := range updates {
		fmt.Printf("%s: %s -> %s\n", update.ID, update.OldTag, update.NewTag)
	}
	fmt.Printf("%d tickets need a new tag\n", len(updates))
}
