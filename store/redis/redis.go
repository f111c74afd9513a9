// Package redis implements the evidence store on Redis. Evidence records
// (item plus embedding) are stored as JSON values indexed by a set, and
// similarity is computed client-side, which keeps the backend free of any
// vector-index module.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/docqa-ai/docqa"
	"github.com/docqa-ai/docqa/store"
)

// Options configures the Redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
	// Prefix namespaces all keys, default "docqa:".
	Prefix string
	// TTL expires evidence records, default 0 (no expiration).
	TTL time.Duration
}

// Store is a Redis-backed evidence store.
type Store struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

var _ docqa.EvidenceStore = (*Store)(nil)

// record is the persisted form of one evidence item.
type record struct {
	Item      docqa.EvidenceItem `json:"item"`
	Embedding []float32          `json:"embedding"`
	StoredAt  time.Time          `json:"stored_at"`
}

// New creates a Redis evidence store.
func New(opts Options) *Store {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	prefix := opts.Prefix
	if prefix == "" {
		prefix = "docqa:"
	}

	return &Store{
		client: client,
		prefix: prefix,
		ttl:    opts.TTL,
	}
}

func (s *Store) itemKey(id string) string {
	return fmt.Sprintf("%sevidence:%s", s.prefix, id)
}

func (s *Store) indexKey() string {
	return s.prefix + "evidence:index"
}

// Add stores evidence items with their embeddings.
func (s *Store) Add(ctx context.Context, items []docqa.EvidenceItem, embeddings [][]float32) error {
	if len(items) != len(embeddings) {
		return fmt.Errorf("items and embeddings must have same length (%d != %d)", len(items), len(embeddings))
	}

	pipe := s.client.Pipeline()
	now := time.Now()
	for i, item := range items {
		data, err := json.Marshal(record{Item: item, Embedding: embeddings[i], StoredAt: now})
		if err != nil {
			return fmt.Errorf("failed to marshal evidence record: %w", err)
		}

		id := uuid.NewString()
		pipe.Set(ctx, s.itemKey(id), data, s.ttl)
		pipe.SAdd(ctx, s.indexKey(), id)
	}
	if s.ttl > 0 {
		pipe.Expire(ctx, s.indexKey(), s.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store evidence in redis: %w", err)
	}
	return nil
}

// Search loads all records and scores them client-side against the query
// embedding.
func (s *Store) Search(ctx context.Context, queryEmbedding []float32, opts docqa.SearchOptions) ([]docqa.EvidenceItem, error) {
	if opts.TopK <= 0 {
		return nil, fmt.Errorf("top-k must be positive, got %d", opts.TopK)
	}

	records, err := s.loadAll(ctx)
	if err != nil {
		return nil, err
	}

	scored := make([]docqa.EvidenceItem, 0, len(records))
	for _, rec := range records {
		if opts.DocumentFilter != "" && rec.Item.SourceDocument != opts.DocumentFilter {
			continue
		}
		score := store.CosineSimilarity(queryEmbedding, rec.Embedding)
		if score < opts.MinScore {
			continue
		}
		item := rec.Item
		item.SimilarityScore = score
		scored = append(scored, item)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].SimilarityScore > scored[j].SimilarityScore
	})

	if len(scored) > opts.TopK {
		scored = scored[:opts.TopK]
	}
	return scored, nil
}

// loadAll fetches every evidence record referenced by the index set.
func (s *Store) loadAll(ctx context.Context) ([]record, error) {
	ids, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read evidence index: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.itemKey(id)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load evidence records: %w", err)
	}

	records := make([]record, 0, len(values))
	for _, v := range values {
		data, ok := v.(string)
		if !ok {
			// Expired or deleted between SMembers and MGet.
			continue
		}
		var rec record
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal evidence record: %w", err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// Stats reports the store contents.
func (s *Store) Stats(ctx context.Context) (*docqa.StoreStats, error) {
	records, err := s.loadAll(ctx)
	if err != nil {
		return nil, err
	}

	stats := &docqa.StoreStats{TotalItems: len(records)}
	for _, rec := range records {
		if stats.Dimension == 0 {
			stats.Dimension = len(rec.Embedding)
		}
		if rec.StoredAt.After(stats.LastUpdated) {
			stats.LastUpdated = rec.StoredAt
		}
	}
	return stats, nil
}

// Close closes the Redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
