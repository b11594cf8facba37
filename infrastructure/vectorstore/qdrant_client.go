package vectorstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	qdrant "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"

	"support-rag/domain"
)

// QdrantClient implements domain.VectorStore against a Qdrant instance over
// gRPC. It owns the mapping from collection name to dimension and metric:
// collections are created lazily on first use and every later EnsureCollection
// verifies the stored dimension instead of trusting the caller.
type QdrantClient struct {
	points      qdrant.PointsClient
	collections qdrant.CollectionsClient
	timeout     time.Duration

	mu    sync.Mutex
	known map[string]int // collection name -> verified dimension
}

// NewQdrantClient connects to the Qdrant gRPC endpoint at addr. Every store
// call is bounded by timeout so a stalled backend surfaces as an error
// instead of hanging the caller.
func NewQdrantClient(addr string, timeout time.Duration) (*QdrantClient, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("could not connect to Qdrant: %w", err)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &QdrantClient{
		points:      qdrant.NewPointsClient(conn),
		collections: qdrant.NewCollectionsClient(conn),
		timeout:     timeout,
		known:       make(map[string]int),
	}, nil
}

// distances maps the domain metric names onto Qdrant's distance enum.
var distances = map[domain.Metric]qdrant.Distance{
	domain.MetricCosine:    qdrant.Distance_Cosine,
	domain.MetricEuclidean: qdrant.Distance_Euclid,
	domain.MetricDot:       qdrant.Distance_Dot,
}

// EnsureCollection creates the collection if it does not exist. An existing
// collection with the same dimension is a no-op; a different dimension is a
// DimensionMismatchError. Losing a create race to a concurrent caller is
// tolerated: AlreadyExists just means someone else got there first, and the
// dimension is verified afterwards either way.
func (c *QdrantClient) EnsureCollection(ctx context.Context, name string, dimension int, metric domain.Metric) error {
	c.mu.Lock()
	verified, ok := c.known[name]
	c.mu.Unlock()
	if ok {
		if verified != dimension {
			return &domain.DimensionMismatchError{Collection: name, Want: dimension, Got: verified}
		}
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	existing, err := c.collectionDimension(ctx, name)
	if err != nil {
		if status.Code(err) != codes.NotFound {
			return fmt.Errorf("failed to inspect collection %s: %w", name, err)
		}
		distance, ok := distances[metric]
		if !ok {
			return fmt.Errorf("unsupported distance metric %q", metric)
		}
		_, createErr := c.collections.Create(ctx, &qdrant.CreateCollection{
			CollectionName: name,
			VectorsConfig: &qdrant.VectorsConfig{
				Config: &qdrant.VectorsConfig_Params{
					Params: &qdrant.VectorParams{
						Size:     uint64(dimension),
						Distance: distance,
					},
				},
			},
		})
		if createErr != nil && status.Code(createErr) != codes.AlreadyExists {
			return fmt.Errorf("failed to create collection %s: %w", name, createErr)
		}
		existing, err = c.collectionDimension(ctx, name)
		if err != nil {
			return fmt.Errorf("failed to verify collection %s: %w", name, err)
		}
	}

	if existing != dimension {
		return &domain.DimensionMismatchError{Collection: name, Want: dimension, Got: existing}
	}
	c.mu.Lock()
	c.known[name] = existing
	c.mu.Unlock()
	return nil
}

// collectionDimension fetches the vector size a collection was created with.
func (c *QdrantClient) collectionDimension(ctx context.Context, name string) (int, error) {
	info, err := c.collections.Get(ctx, &qdrant.GetCollectionInfoRequest{CollectionName: name})
	if err != nil {
		return 0, err
	}
	size := info.GetResult().GetConfig().GetParams().GetVectorsConfig().GetParams().GetSize()
	return int(size), nil
}

// Upsert writes a batch of points, waiting for the write to be acknowledged
// so the batch succeeds or fails as a unit from the caller's perspective.
func (c *QdrantClient) Upsert(ctx context.Context, collection string, points []domain.Point) error {
	if len(points) == 0 {
		return nil
	}

	structs := make([]*qdrant.PointStruct, 0, len(points))
	for _, p := range points {
		payload, err := mapToPayload(p.Payload)
		if err != nil {
			return &domain.UpsertError{Collection: collection, Points: len(points), Err: err}
		}
		structs = append(structs, &qdrant.PointStruct{
			Id:      &qdrant.PointId{PointIdOptions: &qdrant.PointId_Uuid{Uuid: p.ID}},
			Vectors: &qdrant.Vectors{VectorsOptions: &qdrant.Vectors_Vector{Vector: &qdrant.Vector{Data: p.Vector}}},
			Payload: payload,
		})
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	_, err := c.points.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collection,
		Points:         structs,
		Wait:           proto.Bool(true),
	})
	if err != nil {
		return &domain.UpsertError{Collection: collection, Points: len(points), Err: err}
	}
	return nil
}

// Search returns up to limit points ordered by descending similarity,
// optionally restricted by exact-match payload conditions.
func (c *QdrantClient) Search(ctx context.Context, collection string, vector domain.Embedding, limit int, filter domain.Filter) ([]domain.ScoredPoint, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	result, err := c.points.Search(ctx, &qdrant.SearchPoints{
		CollectionName: collection,
		Vector:         vector,
		Limit:          uint64(limit),
		Filter:         buildFilter(filter),
		WithPayload:    &qdrant.WithPayloadSelector{SelectorOptions: &qdrant.WithPayloadSelector_Enable{Enable: true}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search collection %s: %w", collection, err)
	}

	hits := make([]domain.ScoredPoint, 0, len(result.GetResult()))
	for _, hit := range result.GetResult() {
		id := ""
		if uuidVal, ok := hit.GetId().GetPointIdOptions().(*qdrant.PointId_Uuid); ok {
			id = uuidVal.Uuid
		}
		hits = append(hits, domain.ScoredPoint{
			ID:      id,
			Score:   hit.GetScore(),
			Payload: payloadToMap(hit.GetPayload()),
		})
	}
	return hits, nil
}

// Count returns the exact number of points in the collection.
func (c *QdrantClient) Count(ctx context.Context, collection string) (uint64, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	result, err := c.points.Count(ctx, &qdrant.CountPoints{
		CollectionName: collection,
		Exact:          proto.Bool(true),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count collection %s: %w", collection, err)
	}
	return result.GetResult().GetCount(), nil
}

// buildFilter converts exact-match payload conditions to a Qdrant filter.
func buildFilter(filter domain.Filter) *qdrant.Filter {
	if len(filter) == 0 {
		return nil
	}
	conditions := make([]*qdrant.Condition, 0, len(filter))
	for key, value := range filter {
		conditions = append(conditions, &qdrant.Condition{
			ConditionOneOf: &qdrant.Condition_Field{
				Field: &qdrant.FieldCondition{
					Key:   key,
					Match: &qdrant.Match{MatchValue: &qdrant.Match_Keyword{Keyword: value}},
				},
			},
		})
	}
	return &qdrant.Filter{Must: conditions}
}

// mapToPayload converts a generic payload map to Qdrant payload values.
func mapToPayload(data map[string]any) (map[string]*qdrant.Value, error) {
	payload := make(map[string]*qdrant.Value, len(data))
	for key, val := range data {
		switch v := val.(type) {
		case string:
			payload[key] = &qdrant.Value{Kind: &qdrant.Value_StringValue{StringValue: v}}
		case int:
			payload[key] = &qdrant.Value{Kind: &qdrant.Value_IntegerValue{IntegerValue: int64(v)}}
		case int64:
			payload[key] = &qdrant.Value{Kind: &qdrant.Value_IntegerValue{IntegerValue: v}}
		case float64:
			payload[key] = &qdrant.Value{Kind: &qdrant.Value_DoubleValue{DoubleValue: v}}
		case bool:
			payload[key] = &qdrant.Value{Kind: &qdrant.Value_BoolValue{BoolValue: v}}
		default:
			return nil, fmt.Errorf("unsupported type for payload field %q: %T", key, v)
		}
	}
	return payload, nil
}

// payloadToMap converts Qdrant payload values back to plain Go values.
func payloadToMap(payload map[string]*qdrant.Value) map[string]any {
	result := make(map[string]any, len(payload))
	for key, val := range payload {
		switch kind := val.GetKind().(type) {
		case *qdrant.Value_StringValue:
			result[key] = kind.StringValue
		case *qdrant.Value_IntegerValue:
			result[key] = kind.IntegerValue
		case *qdrant.Value_DoubleValue:
			result[key] = kind.DoubleValue
		case *qdrant.Value_BoolValue:
			result[key] = kind.BoolValue
		}
	}
	return result
}
