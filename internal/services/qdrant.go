package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"alfredoptarigan/screenly/internal/config"
)

// ProfileIndex is a vector index of job profile chunks, keyed by role.
type ProfileIndex interface {
	InitCollection(ctx context.Context) error
	UpsertChunk(ctx context.Context, role string, chunk int, text string, embedding []float32) error
	SearchSimilar(ctx context.Context, queryEmbedding []float32, role string, limit int) ([]SearchResult, error)
	DeleteRole(ctx context.Context, role string) error
}

type SearchResult struct {
	ID    string
	Score float32
	Text  string
	Role  string
}

// embeddingSize matches text-embedding-004.
const embeddingSize = 768

type qdrantService struct {
	client         *qdrant.Client
	collectionName string
	vectorSize     uint64
}

func NewQdrantService(cfg config.QdrantConfig) (ProfileIndex, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &qdrantService{
		client:         client,
		collectionName: cfg.Collection,
		vectorSize:     embeddingSize,
	}, nil
}

// InitCollection implements ProfileIndex.
func (q *qdrantService) InitCollection(ctx context.Context) error {
	exists, err := q.client.CollectionExists(ctx, q.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if exists {
		slog.InfoContext(ctx, "✅ Collection already exists", "collection", q.collectionName)
		return nil
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     q.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	slog.InfoContext(ctx, "✅ Qdrant collection created", "collection", q.collectionName)
	return nil
}

// UpsertChunk stores one chunk of a role's profile. Point IDs are derived from
// role and chunk index, so re-indexing overwrites instead of duplicating.
func (q *qdrantService) UpsertChunk(ctx context.Context, role string, chunk int, text string, embedding []float32) error {
	pointID := chunkPointID(role, chunk)

	point := &qdrant.PointStruct{
		Id:      qdrant.NewID(pointID.String()),
		Vectors: qdrant.NewVectors(embedding...),
		Payload: qdrant.NewValueMap(map[string]any{
			"role":  role,
			"chunk": chunk,
			"text":  text,
		}),
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collectionName,
		Points:         []*qdrant.PointStruct{point},
	})
	if err != nil {
		return fmt.Errorf("failed to upsert point: %w", err)
	}

	return nil
}

// SearchSimilar implements ProfileIndex. An empty role searches every profile.
func (q *qdrantService) SearchSimilar(ctx context.Context, queryEmbedding []float32, role string, limit int) ([]SearchResult, error) {
	var filter *qdrant.Filter
	if role != "" {
		filter = &qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("role", role),
			},
		}
	}

	points, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collectionName,
		Query:          qdrant.NewQuery(queryEmbedding...),
		Filter:         filter,
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	results := make([]SearchResult, 0, len(points))
	for _, point := range points {
		results = append(results, SearchResult{
			ID:    point.GetId().GetUuid(),
			Score: point.Score,
			Text:  point.Payload["text"].GetStringValue(),
			Role:  point.Payload["role"].GetStringValue(),
		})
	}

	return results, nil
}

// DeleteRole implements ProfileIndex.
func (q *qdrantService) DeleteRole(ctx context.Context, role string) error {
	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.collectionName,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Filter{
				Filter: &qdrant.Filter{
					Must: []*qdrant.Condition{
						qdrant.NewMatch("role", role),
					},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete profile points: %w", err)
	}

	return nil
}

func chunkPointID(role string, chunk int) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("job-profile/%s/%d", role, chunk)))
}
