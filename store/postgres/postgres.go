// Package postgres implements the evidence store on PostgreSQL. Embeddings
// are stored as JSONB and scored client-side, so a stock database without
// the pgvector extension is sufficient.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/docqa-ai/docqa"
	"github.com/docqa-ai/docqa/store"
)

// DBPool is the subset of pgxpool.Pool used by the store. Declared as an
// interface so tests can substitute pgxmock.
type DBPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// Options configures the Postgres connection.
type Options struct {
	ConnString string
	// TableName defaults to "evidence".
	TableName string
}

// Store is a PostgreSQL-backed evidence store.
type Store struct {
	pool      DBPool
	tableName string
}

var _ docqa.EvidenceStore = (*Store)(nil)

// New creates a Postgres evidence store with a fresh connection pool.
func New(ctx context.Context, opts Options) (*Store, error) {
	pool, err := pgxpool.New(ctx, opts.ConnString)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}
	return NewWithPool(pool, opts.TableName), nil
}

// NewWithPool creates a Postgres evidence store on an existing pool.
// Useful for testing with mocks.
func NewWithPool(pool DBPool, tableName string) *Store {
	if tableName == "" {
		tableName = "evidence"
	}
	return &Store{
		pool:      pool,
		tableName: tableName,
	}
}

// InitSchema creates the evidence table if it doesn't exist.
func (s *Store) InitSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			content TEXT NOT NULL,
			content_type TEXT NOT NULL,
			source_document TEXT NOT NULL,
			page_number INTEGER NOT NULL,
			embedding JSONB NOT NULL,
			stored_at TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_%s_source_document ON %s (source_document);
	`, s.tableName, s.tableName, s.tableName)

	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Add stores evidence items with their embeddings.
func (s *Store) Add(ctx context.Context, items []docqa.EvidenceItem, embeddings [][]float32) error {
	if len(items) != len(embeddings) {
		return fmt.Errorf("items and embeddings must have same length (%d != %d)", len(items), len(embeddings))
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, content, content_type, source_document, page_number, embedding, stored_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, s.tableName)

	now := time.Now()
	for i, item := range items {
		embJSON, err := json.Marshal(embeddings[i])
		if err != nil {
			return fmt.Errorf("failed to marshal embedding: %w", err)
		}

		_, err = s.pool.Exec(ctx, query,
			uuid.NewString(),
			item.Content,
			string(item.ContentType),
			item.SourceDocument,
			item.PageNumber,
			embJSON,
			now,
		)
		if err != nil {
			return fmt.Errorf("failed to insert evidence: %w", err)
		}
	}
	return nil
}

// Search loads candidate rows (restricted by document filter when set) and
// scores them client-side against the query embedding.
func (s *Store) Search(ctx context.Context, queryEmbedding []float32, opts docqa.SearchOptions) ([]docqa.EvidenceItem, error) {
	if opts.TopK <= 0 {
		return nil, fmt.Errorf("top-k must be positive, got %d", opts.TopK)
	}

	var (
		rows pgx.Rows
		err  error
	)
	if opts.DocumentFilter != "" {
		query := fmt.Sprintf(`SELECT content, content_type, source_document, page_number, embedding FROM %s WHERE source_document = $1`, s.tableName)
		rows, err = s.pool.Query(ctx, query, opts.DocumentFilter)
	} else {
		query := fmt.Sprintf(`SELECT content, content_type, source_document, page_number, embedding FROM %s`, s.tableName)
		rows, err = s.pool.Query(ctx, query)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query evidence: %w", err)
	}
	defer rows.Close()

	var scored []docqa.EvidenceItem
	for rows.Next() {
		var (
			item        docqa.EvidenceItem
			contentType string
			embJSON     []byte
		)
		if err := rows.Scan(&item.Content, &contentType, &item.SourceDocument, &item.PageNumber, &embJSON); err != nil {
			return nil, fmt.Errorf("failed to scan evidence row: %w", err)
		}

		var embedding []float32
		if err := json.Unmarshal(embJSON, &embedding); err != nil {
			return nil, fmt.Errorf("failed to unmarshal embedding: %w", err)
		}

		score := store.CosineSimilarity(queryEmbedding, embedding)
		if score < opts.MinScore {
			continue
		}
		item.ContentType = docqa.ContentType(contentType)
		item.SimilarityScore = score
		scored = append(scored, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate evidence rows: %w", err)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].SimilarityScore > scored[j].SimilarityScore
	})

	if len(scored) > opts.TopK {
		scored = scored[:opts.TopK]
	}
	return scored, nil
}

// Stats reports the store contents.
func (s *Store) Stats(ctx context.Context) (*docqa.StoreStats, error) {
	query := fmt.Sprintf(`SELECT COUNT(*), COALESCE(MAX(stored_at), 'epoch'::timestamptz) FROM %s`, s.tableName)

	stats := &docqa.StoreStats{}
	if err := s.pool.QueryRow(ctx, query).Scan(&stats.TotalItems, &stats.LastUpdated); err != nil {
		return nil, fmt.Errorf("failed to read store stats: %w", err)
	}
	return stats, nil
}

// Close closes the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}
