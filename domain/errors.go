package domain

import "fmt"

// UnsupportedFormatError reports a file extension the extractor does not
// handle. It is user-correctable and reported per file.
type UnsupportedFormatError struct {
	Extension string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported file type: %s", e.Extension)
}

// ExtractionError reports a malformed source document. It is contained at
// single-file granularity during batch ingestion.
type ExtractionError struct {
	Source string
	Err    error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("failed to extract text from %s: %v", e.Source, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// EmbeddingUnavailableError reports that the embedding backend cannot be
// reached. Fatal when detected at startup, retryable per call elsewhere.
type EmbeddingUnavailableError struct {
	Err error
}

func (e *EmbeddingUnavailableError) Error() string {
	return fmt.Sprintf("embedding backend unavailable: %v", e.Err)
}

func (e *EmbeddingUnavailableError) Unwrap() error { return e.Err }

// DimensionMismatchError reports a collection whose vector dimension does
// not match the configured embedding model. This is a configuration error;
// vectors are never silently truncated or padded to fit.
type DimensionMismatchError struct {
	Collection string
	Want       int
	Got        int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("collection %s has dimension %d, expected %d", e.Collection, e.Got, e.Want)
}

// UpsertError reports a rejected point batch. The batch fails as a unit.
type UpsertError struct {
	Collection string
	Points     int
	Err        error
}

func (e *UpsertError) Error() string {
	return fmt.Sprintf("failed to upsert %d points to %s: %v", e.Points, e.Collection, e.Err)
}

func (e *UpsertError) Unwrap() error { return e.Err }

// RetrievalUnavailableError reports that the embedding step of a suggestion
// query failed. The whole query fails; there is no degraded partial result.
type RetrievalUnavailableError struct {
	Err error
}

func (e *RetrievalUnavailableError) Error() string {
	return fmt.Sprintf("suggestion retrieval unavailable: %v", e.Err)
}

func (e *RetrievalUnavailableError) Unwrap() error { return e.Err }
