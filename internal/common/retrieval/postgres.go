// internal/common/retrieval/postgres.go
package retrieval

import (
	"context"
	"database/sql"
	"fmt"
)

// corpusSearchQuery ranks passages of one corpus partition by full-text relevance.
const corpusSearchQuery = `
SELECT content
FROM corpus_passages
WHERE corpus = $1
  AND search_vector @@ plainto_tsquery('english', $2)
ORDER BY ts_rank(search_vector, plainto_tsquery('english', $2)) DESC
LIMIT $3`

// PostgresLookup searches the corpus_passages table with Postgres full-text search.
type PostgresLookup struct {
	db      *sql.DB
	corpora map[string]string
	logger  Logger
}

func NewPostgresLookup(db *sql.DB, corpora map[string]string, log Logger) *PostgresLookup {
	return &PostgresLookup{db: db, corpora: corpora, logger: log}
}

func (l *PostgresLookup) Search(ctx context.Context, query string, corpus Corpus, k int) (string, error) {
	partition, err := indexFor(l.corpora, corpus)
	if err != nil {
		return "", err
	}

	rows, err := l.db.QueryContext(ctx, corpusSearchQuery, partition, query, normalizeK(k))
	if err != nil {
		return "", fmt.Errorf("postgres corpus search: %w", err)
	}
	defer rows.Close()

	var passages []string
	for rows.Next() {
		var content string
		if err := rows.Scan(&content); err != nil {
			return "", fmt.Errorf("scan passage: %w", err)
		}
		passages = append(passages, content)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("iterate passages: %w", err)
	}

	l.logger.Debug("corpus search completed", map[string]interface{}{
		"corpus":    string(corpus),
		"partition": partition,
		"hits":      len(passages),
	})

	return joinPassages(passages), nil
}
