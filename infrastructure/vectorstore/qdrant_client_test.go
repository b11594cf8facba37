package vectorstore

import (
	"testing"

	qdrant "github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"support-rag/domain"
)

func TestBuildFilter_Empty(t *testing.T) {
	assert.Nil(t, buildFilter(nil))
	assert.Nil(t, buildFilter(domain.Filter{}))
}

func TestBuildFilter_KeywordConditions(t *testing.T) {
	f := buildFilter(domain.Filter{"status": "resolved"})
	require.NotNil(t, f)
	require.Len(t, f.Must, 1)

	field := f.Must[0].GetField()
	require.NotNil(t, field)
	assert.Equal(t, "status", field.Key)
	assert.Equal(t, "resolved", field.GetMatch().GetKeyword())
}

func TestMapToPayload_SupportedTypes(t *testing.T) {
	payload, err := mapToPayload(map[string]any{
		"file_name": "guide.md",
		"chunk_id":  7,
		"offset":    int64(12),
		"score":     0.5,
		"archived":  true,
	})
	require.NoError(t, err)

	assert.Equal(t, "guide.md", payload["file_name"].GetStringValue())
	assert.Equal(t, int64(7), payload["chunk_id"].GetIntegerValue())
	assert.Equal(t, int64(12), payload["offset"].GetIntegerValue())
	assert.Equal(t, 0.5, payload["score"].GetDoubleValue())
	assert.True(t, payload["archived"].GetBoolValue())
}

func TestMapToPayload_UnsupportedType(t *testing.T) {
	_, err := mapToPayload(map[string]any{"nested": map[string]string{"a": "b"}})
	assert.Error(t, err)
}

func TestPayloadToMap_RoundTrip(t *testing.T) {
	payload := map[string]*qdrant.Value{
		"text":     {Kind: &qdrant.Value_StringValue{StringValue: "hello"}},
		"chunk_id": {Kind: &qdrant.Value_IntegerValue{IntegerValue: 3}},
		"score":    {Kind: &qdrant.Value_DoubleValue{DoubleValue: 1.5}},
		"resolved": {Kind: &qdrant.Value_BoolValue{BoolValue: true}},
	}

	got := payloadToMap(payload)
	assert.Equal(t, "hello", got["text"])
	assert.Equal(t, int64(3), got["chunk_id"])
	assert.Equal(t, 1.5, got["score"])
	assert.Equal(t, true, got["resolved"])
}
