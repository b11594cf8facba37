package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// defaultTagVocabulary is the fixed tag set used when TAG_VOCABULARY is not
// configured.
var defaultTagVocabulary = []string{"Helm", "Istio", "Keycloak", "CI/CD", "ArgoCD", "Redis"}

// Config holds every tunable the retrieval core needs, loaded from the
// environment. Caches and clients built from it are constructed explicitly
// in main and passed down; there is no ambient global state.
type Config struct {
	Port int

	// Vector store
	VectorStore       string // "qdrant" or "memory"
	QdrantAddr        string
	TicketsCollection string
	DocsCollection    string
	StoreTimeout      time.Duration

	// Embedding backend
	OpenAIKey          string
	OpenAIBaseURL      string
	EmbeddingModel     string
	EmbeddingDimension int
	EmbedTimeout       time.Duration

	// Ingestion
	MaxWords      int
	IngestWorkers int

	// Tagging and seeding
	TagVocabulary []string
	SeedFile      string
}

// Load reads configuration from the environment, after loading a .env file
// if one is present.
func Load() *Config {
	godotenv.Load()

	return &Config{
		Port: getEnvInt("PORT", 8080),

		VectorStore:       getEnv("VECTOR_STORE", "qdrant"),
		QdrantAddr:        getEnv("QDRANT_ADDR", "localhost:6334"),
		TicketsCollection: getEnv("TICKETS_COLLECTION", "tickets"),
		DocsCollection:    getEnv("DOCS_COLLECTION", "docs"),
		StoreTimeout:      getEnvDuration("STORE_TIMEOUT", 10*time.Second),

		OpenAIKey:          getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:      getEnv("OPENAI_BASE_URL", ""),
		EmbeddingModel:     getEnv("OPENAI_EMBEDDING_MODEL", "text-embedding-3-small"),
		EmbeddingDimension: getEnvInt("EMBEDDING_DIMENSION", 0),
		EmbedTimeout:       getEnvDuration("EMBED_TIMEOUT", 30*time.Second),

		MaxWords:      getEnvInt("CHUNK_MAX_WORDS", 500),
		IngestWorkers: getEnvInt("INGEST_WORKERS", 4),

		TagVocabulary: getEnvList("TAG_VOCABULARY", defaultTagVocabulary),
		SeedFile:      getEnv("SEED_FILE", ""),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

func getEnvList(key string, defaultVal []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	var items []string
	for _, item := range strings.Split(val, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return defaultVal
	}
	return items
}
