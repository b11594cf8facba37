package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"support-rag/application"
	"support-rag/domain"
	"support-rag/infrastructure/vectorstore/memory"
)

type fakeSuggester struct {
	gotText string
	result  *domain.SuggestionResult
	err     error
}

func (f *fakeSuggester) Suggest(_ context.Context, ticketText string) (*domain.SuggestionResult, error) {
	f.gotText = ticketText
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeIngestor struct {
	gotCollection string
	gotMaxWords   int
	results       []application.FileResult
}

func (f *fakeIngestor) IngestFiles(_ context.Context, files []application.FileInput, collection string, maxWords int) []application.FileResult {
	f.gotCollection = collection
	f.gotMaxWords = maxWords
	if f.results != nil {
		return f.results
	}
	out := make([]application.FileResult, 0, len(files))
	for _, file := range files {
		out = append(out, application.FileResult{FileName: file.Name, Chunks: 1, Status: "success"})
	}
	return out
}

type fakeClassifier struct {
	gotVocabulary []string
	tag           string
	err           error
}

func (f *fakeClassifier) Classify(_ context.Context, _ string, vocabulary []string) (string, error) {
	f.gotVocabulary = vocabulary
	if f.err != nil {
		return "", f.err
	}
	return f.tag, nil
}

func newTestHandlers(t *testing.T, suggester Suggester, ingestor Ingestor, classifier Classifier) (*Handlers, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	require.NoError(t, store.EnsureCollection(context.Background(), "tickets", 2, domain.MetricCosine))
	h := NewHandlers(suggester, ingestor, classifier, store, "docs", "tickets", 300, []string{"Helm", "Redis"})
	return h, store
}

func multipartUpload(t *testing.T, fields map[string]string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for name, content := range files {
		part, err := writer.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	require.NoError(t, writer.Close())
	return &body, writer.FormDataContentType()
}

func TestSuggest_ReturnsRankedResults(t *testing.T) {
	suggester := &fakeSuggester{result: &domain.SuggestionResult{
		Past: []domain.PastSuggestion{{TicketID: "T-7", Title: "Redis timeout", Rank: 1}},
		Docs: []domain.DocSuggestion{{FileName: "redis.md", Rank: 1}},
	}}
	h, _ := newTestHandlers(t, suggester, &fakeIngestor{}, &fakeClassifier{})

	body := `{"title":"Redis down","description":"cache timeouts"}`
	req := httptest.NewRequest(http.MethodPost, "/ai/suggest", strings.NewReader(body))
	rec := httptest.NewRecorder()
	NewRouter(h).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Redis down\n\ncache timeouts", suggester.gotText)

	var result domain.SuggestionResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Len(t, result.Past, 1)
	assert.Equal(t, "T-7", result.Past[0].TicketID)
	require.Len(t, result.Docs, 1)
	assert.Equal(t, "redis.md", result.Docs[0].FileName)
}

func TestSuggest_EmptyRequestRejected(t *testing.T) {
	h, _ := newTestHandlers(t, &fakeSuggester{}, &fakeIngestor{}, &fakeClassifier{})

	req := httptest.NewRequest(http.MethodPost, "/ai/suggest", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	NewRouter(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSuggest_MalformedBody(t *testing.T) {
	h, _ := newTestHandlers(t, &fakeSuggester{}, &fakeIngestor{}, &fakeClassifier{})

	req := httptest.NewRequest(http.MethodPost, "/ai/suggest", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	NewRouter(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSuggest_EmbeddingDown(t *testing.T) {
	suggester := &fakeSuggester{err: &domain.RetrievalUnavailableError{Err: errors.New("backend offline")}}
	h, _ := newTestHandlers(t, suggester, &fakeIngestor{}, &fakeClassifier{})

	req := httptest.NewRequest(http.MethodPost, "/ai/suggest", strings.NewReader(`{"title":"t"}`))
	rec := httptest.NewRecorder()
	NewRouter(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestSuggest_SearchFailure(t *testing.T) {
	suggester := &fakeSuggester{err: errors.New("search blew up")}
	h, _ := newTestHandlers(t, suggester, &fakeIngestor{}, &fakeClassifier{})

	req := httptest.NewRequest(http.MethodPost, "/ai/suggest", strings.NewReader(`{"title":"t"}`))
	rec := httptest.NewRecorder()
	NewRouter(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestUploadDoc_PerFileResults(t *testing.T) {
	ingestor := &fakeIngestor{results: []application.FileResult{
		{FileName: "guide.md", Chunks: 4, Status: "success"},
		{FileName: "broken.docx", Status: "error", Error: "unsupported file type: .docx"},
	}}
	h, _ := newTestHandlers(t, &fakeSuggester{}, ingestor, &fakeClassifier{})

	body, contentType := multipartUpload(t, nil, map[string]string{
		"guide.md":    "# Guide\n\nSome text.",
		"broken.docx": "binary",
	})
	req := httptest.NewRequest(http.MethodPost, "/ai/upload-doc", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	NewRouter(h).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "docs", ingestor.gotCollection)

	var resp struct {
		Results []application.FileResult `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "success", resp.Results[0].Status)
	assert.Equal(t, "error", resp.Results[1].Status)
}

func TestUploadDoc_CollectionAndBudgetOverride(t *testing.T) {
	ingestor := &fakeIngestor{}
	h, _ := newTestHandlers(t, &fakeSuggester{}, ingestor, &fakeClassifier{})

	body, contentType := multipartUpload(t,
		map[string]string{"collection": "runbooks", "max_words": "120"},
		map[string]string{"guide.md": "text"},
	)
	req := httptest.NewRequest(http.MethodPost, "/ai/upload-doc", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	NewRouter(h).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "runbooks", ingestor.gotCollection)
	assert.Equal(t, 120, ingestor.gotMaxWords)
}

func TestUploadDoc_ConfiguredBudgetIsDefault(t *testing.T) {
	ingestor := &fakeIngestor{}
	h, _ := newTestHandlers(t, &fakeSuggester{}, ingestor, &fakeClassifier{})

	body, contentType := multipartUpload(t, nil, map[string]string{"guide.md": "text"})
	req := httptest.NewRequest(http.MethodPost, "/ai/upload-doc", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	NewRouter(h).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 300, ingestor.gotMaxWords)
}

func TestUploadDoc_NoFiles(t *testing.T) {
	h, _ := newTestHandlers(t, &fakeSuggester{}, &fakeIngestor{}, &fakeClassifier{})

	body, contentType := multipartUpload(t, map[string]string{"collection": "docs"}, nil)
	req := httptest.NewRequest(http.MethodPost, "/ai/upload-doc", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	NewRouter(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadDoc_InvalidMaxWords(t *testing.T) {
	h, _ := newTestHandlers(t, &fakeSuggester{}, &fakeIngestor{}, &fakeClassifier{})

	body, contentType := multipartUpload(t,
		map[string]string{"max_words": "zero"},
		map[string]string{"guide.md": "text"},
	)
	req := httptest.NewRequest(http.MethodPost, "/ai/upload-doc", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	NewRouter(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClassify_ReturnsTag(t *testing.T) {
	classifier := &fakeClassifier{tag: "Redis"}
	h, _ := newTestHandlers(t, &fakeSuggester{}, &fakeIngestor{}, classifier)

	req := httptest.NewRequest(http.MethodPost, "/ai/classify", strings.NewReader(`{"text":"cache is timing out"}`))
	rec := httptest.NewRecorder()
	NewRouter(h).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"Helm", "Redis"}, classifier.gotVocabulary)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Redis", resp["tag"])
}

func TestClassify_EmbeddingDown(t *testing.T) {
	classifier := &fakeClassifier{err: &domain.EmbeddingUnavailableError{Err: errors.New("offline")}}
	h, _ := newTestHandlers(t, &fakeSuggester{}, &fakeIngestor{}, classifier)

	req := httptest.NewRequest(http.MethodPost, "/ai/classify", strings.NewReader(`{"text":"anything"}`))
	rec := httptest.NewRecorder()
	NewRouter(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealth_OK(t *testing.T) {
	h, store := newTestHandlers(t, &fakeSuggester{}, &fakeIngestor{}, &fakeClassifier{})
	require.NoError(t, store.Upsert(context.Background(), "tickets", []domain.Point{
		{ID: "t1", Vector: domain.Embedding{1, 0}, Payload: map[string]any{"status": "resolved"}},
	}))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	NewRouter(h).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, float64(1), resp["tickets"])
}

func TestHealth_StoreUnreachable(t *testing.T) {
	store := memory.NewStore()
	h := NewHandlers(&fakeSuggester{}, &fakeIngestor{}, &fakeClassifier{}, store, "docs", "tickets", 300, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	NewRouter(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
