package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"support-rag/application"
	"support-rag/domain"
)

// Suggester produces ranked suggestions for a ticket's text.
type Suggester interface {
	Suggest(ctx context.Context, ticketText string) (*domain.SuggestionResult, error)
}

// Ingestor runs batch document ingestion.
type Ingestor interface {
	IngestFiles(ctx context.Context, files []application.FileInput, collection string, maxWords int) []application.FileResult
}

// Classifier assigns the nearest vocabulary tag to free text.
type Classifier interface {
	Classify(ctx context.Context, text string, vocabulary []string) (string, error)
}

// Handlers holds the HTTP handlers for the retrieval API.
type Handlers struct {
	suggester         Suggester
	ingestor          Ingestor
	classifier        Classifier
	store             domain.VectorStore
	docsCollection    string
	ticketsCollection string
	maxWords          int
	vocabulary        []string
}

// NewHandlers creates the handler set. maxWords is the chunk word budget
// applied to uploads that do not supply their own.
func NewHandlers(suggester Suggester, ingestor Ingestor, classifier Classifier, store domain.VectorStore, docsCollection, ticketsCollection string, maxWords int, vocabulary []string) *Handlers {
	return &Handlers{
		suggester:         suggester,
		ingestor:          ingestor,
		classifier:        classifier,
		store:             store,
		docsCollection:    docsCollection,
		ticketsCollection: ticketsCollection,
		maxWords:          maxWords,
		vocabulary:        vocabulary,
	}
}

// maxUploadBytes caps the parsed size of a document upload request.
const maxUploadBytes = 32 << 20

// UploadDoc handles POST /ai/upload-doc. It accepts one or more files in
// the multipart "files" field plus an optional target collection and chunk
// word budget, and always answers with one result entry per file.
func (h *Handlers) UploadDoc(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	fileHeaders := r.MultipartForm.File["files"]
	if len(fileHeaders) == 0 {
		writeError(w, http.StatusBadRequest, "at least one file is required")
		return
	}

	collection := r.FormValue("collection")
	if collection == "" {
		collection = h.docsCollection
	}
	maxWords := h.maxWords
	if raw := r.FormValue("max_words"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "max_words must be a positive integer")
			return
		}
		maxWords = parsed
	}

	files := make([]application.FileInput, 0, len(fileHeaders))
	for _, header := range fileHeaders {
		f, err := header.Open()
		if err != nil {
			writeError(w, http.StatusBadRequest, "failed to read upload "+header.Filename)
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			writeError(w, http.StatusBadRequest, "failed to read upload "+header.Filename)
			return
		}
		files = append(files, application.FileInput{Name: header.Filename, Data: data})
	}

	results := h.ingestor.IngestFiles(r.Context(), files, collection, maxWords)
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

// suggestRequest is the JSON request body for POST /ai/suggest.
type suggestRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Suggest handles POST /ai/suggest: it returns the ranked resolved-ticket
// and documentation matches for a ticket's title and description.
func (h *Handlers) Suggest(w http.ResponseWriter, r *http.Request) {
	var req suggestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" && req.Description == "" {
		writeError(w, http.StatusBadRequest, "title or description is required")
		return
	}

	result, err := h.suggester.Suggest(r.Context(), req.Title+"\n\n"+req.Description)
	if err != nil {
		var unavailable *domain.RetrievalUnavailableError
		if errors.As(err, &unavailable) {
			writeError(w, http.StatusServiceUnavailable, unavailable.Error())
			return
		}
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// classifyRequest is the JSON request body for POST /ai/classify.
type classifyRequest struct {
	Text string `json:"text"`
}

// Classify handles POST /ai/classify: it embeds the text and returns the
// nearest tag from the configured vocabulary.
func (h *Handlers) Classify(w http.ResponseWriter, r *http.Request) {
	var req classifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tag, err := h.classifier.Classify(r.Context(), req.Text, h.vocabulary)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"tag": tag})
}

// Health handles GET /healthz: liveness plus vector-store reachability.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	count, err := h.store.Count(r.Context(), h.ticketsCollection)
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "degraded",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"tickets": count,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
