package database

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/auth"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"github.com/tieubaoca/rag-be/config"
	"github.com/tieubaoca/rag-be/types"
)

const defaultIndexBatchSize = 200

// WeaviateStore indexes chunks in a single Weaviate class with externally
// supplied vectors.
type WeaviateStore struct {
	client    *weaviate.Client
	className string
	batchSize int
}

var _ Store = (*WeaviateStore)(nil)

func NewWeaviateStore(cfg config.WeaviateConfig, batchSize int) (*WeaviateStore, error) {
	scheme := cfg.Scheme
	host := cfg.Host
	if strings.Contains(host, "://") {
		parts := strings.SplitN(host, "://", 2)
		scheme = parts[0]
		host = parts[1]
	}
	if scheme == "" {
		scheme = "http"
	}

	wcfg := weaviate.Config{
		Host:   host,
		Scheme: scheme,
	}
	if cfg.APIKey != "" {
		wcfg.AuthConfig = auth.ApiKey{
			Value: cfg.APIKey,
		}
	}
	client, err := weaviate.NewClient(wcfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create weaviate client: %v", err)
	}

	className := cfg.ClassName
	if className == "" {
		className = "KnowledgeChunk"
	}
	if batchSize <= 0 {
		batchSize = defaultIndexBatchSize
	}
	return &WeaviateStore{
		client:    client,
		className: className,
		batchSize: batchSize,
	}, nil
}

// EnsureSchema creates the chunk class if the schema does not already have
// it. Vectors are supplied by the embedding service, so the class carries no
// vectorizer module.
func (s *WeaviateStore) EnsureSchema(ctx context.Context) error {
	schema, err := s.client.Schema().Getter().Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to get schema: %v", err)
	}
	for _, class := range schema.Classes {
		if class.Class == s.className {
			return nil
		}
	}

	if err := s.client.Schema().ClassCreator().WithClass(s.classObject()).Do(ctx); err != nil {
		return fmt.Errorf("failed to create %s class: %v", s.className, err)
	}
	log.Printf("Created %s class", s.className)
	return nil
}

func (s *WeaviateStore) classObject() *models.Class {
	return &models.Class{
		Class: s.className,
		Properties: []*models.Property{
			{Name: "chunk_id", DataType: []string{"text"}},
			{Name: "content", DataType: []string{"text"}},
			{Name: "title", DataType: []string{"text"}},
			{Name: "url", DataType: []string{"text"}},
			{Name: "author", DataType: []string{"text"}},
			{Name: "source", DataType: []string{"text"}},
			{Name: "space_key", DataType: []string{"text"}},
			{Name: "created_date", DataType: []string{"text"}},
			{Name: "modified_date", DataType: []string{"text"}},
			{Name: "tags", DataType: []string{"text[]"}},
			{Name: "chunk_index", DataType: []string{"int"}},
			{Name: "total_chunks", DataType: []string{"int"}},
		},
		Vectorizer:      "none",
		VectorIndexType: "hnsw",
		VectorIndexConfig: map[string]interface{}{
			"distance": "cosine",
		},
	}
}

// Clear deletes all objects of the chunk class. The server caps how many
// objects one batch delete removes, so the call loops until nothing matches.
func (s *WeaviateStore) Clear(ctx context.Context) (int, error) {
	deleted := 0
	for {
		resp, err := s.client.Batch().ObjectsBatchDeleter().
			WithClassName(s.className).
			WithWhere(filters.Where().
				WithPath([]string{"chunk_id"}).
				WithOperator(filters.Like).
				WithValueText("*")).
			WithOutput("minimal").
			Do(ctx)
		if err != nil {
			return deleted, fmt.Errorf("failed to clear %s class: %v", s.className, err)
		}
		if resp == nil || resp.Results == nil || resp.Results.Matches == 0 {
			break
		}
		if resp.Results.Successful == 0 {
			return deleted, fmt.Errorf("failed to delete %d matched objects from %s", resp.Results.Matches, s.className)
		}
		deleted += int(resp.Results.Successful)
	}
	log.Printf("Cleared %d objects from %s", deleted, s.className)
	return deleted, nil
}

// UploadChunks writes embedded chunks in batches. Failures are accounted per
// object; a failed batch marks all its objects failed and the upload moves
// on.
func (s *WeaviateStore) UploadChunks(ctx context.Context, chunks []types.EmbeddedChunk) (types.UploadResult, error) {
	result := types.UploadResult{}
	total := len(chunks)

	for i := 0; i < total; i += s.batchSize {
		end := i + s.batchSize
		if end > total {
			end = total
		}

		batcher := s.client.Batch().ObjectsBatcher()
		for _, chunk := range chunks[i:end] {
			batcher = batcher.WithObjects(s.chunkObject(chunk))
		}

		resp, err := batcher.Do(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			result.Failed += end - i
			log.Printf("Failed to upload batch %d-%d: %v", i, end, err)
			continue
		}

		for _, obj := range resp {
			if obj.Result != nil && obj.Result.Errors != nil && len(obj.Result.Errors.Error) > 0 {
				result.Failed++
				log.Printf("Failed to upload object %s: %s", obj.ID, obj.Result.Errors.Error[0].Message)
			} else {
				result.Uploaded++
			}
		}
		log.Printf("Uploaded batch %d-%d of %d chunks", i, end, total)
	}

	return result, nil
}

// chunkObject maps a chunk onto a Weaviate object. The object ID is derived
// from the chunk ID, so re-uploading the same chunk overwrites instead of
// duplicating.
func (s *WeaviateStore) chunkObject(chunk types.EmbeddedChunk) *models.Object {
	c := chunk.Chunk
	tags := c.Tags
	if tags == nil {
		tags = []string{}
	}
	return &models.Object{
		Class: s.className,
		ID:    strfmt.UUID(chunkObjectID(c.ID)),
		Properties: map[string]interface{}{
			"chunk_id":      c.ID,
			"content":       c.Content,
			"title":         c.Title,
			"url":           c.URL,
			"author":        c.Author,
			"source":        c.Source,
			"space_key":     c.SpaceKey,
			"created_date":  c.CreatedDate,
			"modified_date": c.ModifiedDate,
			"tags":          tags,
			"chunk_index":   c.ChunkIndex,
			"total_chunks":  c.TotalChunks,
		},
		Vector: models.C11yVector(chunk.Vector),
	}
}

func chunkObjectID(chunkID string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(chunkID)).String()
}

// VectorSearch returns the topK nearest chunks by cosine similarity. Score
// is 1 - distance so that higher means more similar.
func (s *WeaviateStore) VectorSearch(ctx context.Context, vector []float32, topK int, filter *types.SearchFilter) ([]types.RetrievedChunk, error) {
	nearVector := s.client.GraphQL().NearVectorArgBuilder().WithVector(vector)

	getBuilder := s.client.GraphQL().Get().
		WithClassName(s.className).
		WithFields(chunkFields(false)...).
		WithNearVector(nearVector)
	if topK > 0 {
		getBuilder = getBuilder.WithLimit(topK)
	}
	if where := buildWhereFilter(filter); where != nil {
		getBuilder = getBuilder.WithWhere(where)
	}

	result, err := getBuilder.Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %v", err)
	}
	if result.Errors != nil {
		return nil, fmt.Errorf("vector search failed: %v", result.Errors[0].Message)
	}

	chunks := s.parseSearchResults(result, false)
	log.Printf("Found %d results for vector search", len(chunks))
	return chunks, nil
}

// HybridSearch combines BM25 on the query text with vector similarity.
func (s *WeaviateStore) HybridSearch(ctx context.Context, query string, vector []float32, topK int, filter *types.SearchFilter) ([]types.RetrievedChunk, error) {
	hybrid := s.client.GraphQL().HybridArgumentBuilder().
		WithQuery(query).
		WithVector(vector)

	getBuilder := s.client.GraphQL().Get().
		WithClassName(s.className).
		WithFields(chunkFields(true)...).
		WithHybrid(hybrid)
	if topK > 0 {
		getBuilder = getBuilder.WithLimit(topK)
	}
	if where := buildWhereFilter(filter); where != nil {
		getBuilder = getBuilder.WithWhere(where)
	}

	result, err := getBuilder.Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("hybrid search failed: %v", err)
	}
	if result.Errors != nil {
		return nil, fmt.Errorf("hybrid search failed: %v", result.Errors[0].Message)
	}

	chunks := s.parseSearchResults(result, true)
	log.Printf("Found %d results for hybrid search", len(chunks))
	return chunks, nil
}

func chunkFields(hybrid bool) []graphql.Field {
	additional := graphql.Field{Name: "_additional", Fields: []graphql.Field{{Name: "distance"}}}
	if hybrid {
		additional = graphql.Field{Name: "_additional", Fields: []graphql.Field{{Name: "score"}}}
	}
	return []graphql.Field{
		{Name: "chunk_id"},
		{Name: "content"},
		{Name: "title"},
		{Name: "url"},
		{Name: "author"},
		{Name: "source"},
		{Name: "space_key"},
		{Name: "created_date"},
		{Name: "modified_date"},
		{Name: "tags"},
		{Name: "chunk_index"},
		{Name: "total_chunks"},
		additional,
	}
}

func (s *WeaviateStore) parseSearchResults(result *models.GraphQLResponse, hybrid bool) []types.RetrievedChunk {
	var chunks []types.RetrievedChunk
	get, ok := result.Data["Get"].(map[string]interface{})
	if !ok {
		return chunks
	}
	items, ok := get[s.className].([]interface{})
	if !ok {
		return chunks
	}

	for _, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		chunk := types.RetrievedChunk{
			ID:           parseString(obj["chunk_id"]),
			Content:      parseString(obj["content"]),
			Title:        parseString(obj["title"]),
			URL:          parseString(obj["url"]),
			Author:       parseString(obj["author"]),
			Source:       parseString(obj["source"]),
			SpaceKey:     parseString(obj["space_key"]),
			CreatedDate:  parseString(obj["created_date"]),
			ModifiedDate: parseString(obj["modified_date"]),
			Tags:         parseStringArray(obj["tags"]),
			ChunkIndex:   parseInt(obj["chunk_index"]),
			TotalChunks:  parseInt(obj["total_chunks"]),
		}
		if additional, ok := obj["_additional"].(map[string]interface{}); ok {
			chunk.Score = parseScore(additional, hybrid)
		}
		chunks = append(chunks, chunk)
	}
	return chunks
}

// buildWhereFilter converts the typed filter into a Weaviate where clause.
// Multiple conditions are And-composed.
func buildWhereFilter(filter *types.SearchFilter) *filters.WhereBuilder {
	if filter == nil || filter.IsZero() {
		return nil
	}

	var conditions []*filters.WhereBuilder
	if filter.SpaceKey != "" {
		conditions = append(conditions, filters.Where().
			WithPath([]string{"space_key"}).
			WithOperator(filters.Equal).
			WithValueText(filter.SpaceKey))
	}
	if filter.Source != "" {
		conditions = append(conditions, filters.Where().
			WithPath([]string{"source"}).
			WithOperator(filters.Equal).
			WithValueText(filter.Source))
	}
	if len(filter.Tags) > 0 {
		conditions = append(conditions, filters.Where().
			WithPath([]string{"tags"}).
			WithOperator(filters.ContainsAny).
			WithValueText(filter.Tags...))
	}

	if len(conditions) == 1 {
		return conditions[0]
	}
	return filters.Where().
		WithOperator(filters.And).
		WithOperands(conditions)
}

// Helper functions
func parseString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func parseStringArray(v interface{}) []string {
	arr, ok := v.([]interface{})
	if !ok {
		return nil
	}
	result := make([]string, 0, len(arr))
	for _, item := range arr {
		if s, ok := item.(string); ok {
			result = append(result, s)
		}
	}
	return result
}

func parseInt(v interface{}) int {
	switch t := v.(type) {
	case float64:
		return int(t)
	case int:
		return t
	case int64:
		return int(t)
	}
	return 0
}

// parseScore maps the search metadata onto a higher-is-better score. Vector
// search reports a cosine distance; hybrid search reports a fused score that
// some server versions encode as a string.
func parseScore(additional map[string]interface{}, hybrid bool) float64 {
	if hybrid {
		switch v := additional["score"].(type) {
		case float64:
			return v
		case string:
			score, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return 0
			}
			return score
		}
		return 0
	}
	if distance, ok := additional["distance"].(float64); ok {
		return 1 - distance
	}
	return 0
}
