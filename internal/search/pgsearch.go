package search

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// PgSearch implements Searcher with plain ILIKE matching as a fallback.
type PgSearch struct {
	db *sql.DB
}

// NewPgSearch creates a PostgreSQL searcher.
func NewPgSearch(db *sql.DB) *PgSearch {
	return &PgSearch{db: db}
}

// Healthy always returns true. If Postgres is down, the whole app is down.
func (p *PgSearch) Healthy() bool {
	return true
}

// Search runs a UNION ALL over clients and notes with a case-insensitive
// substring match, newest first within each kind.
func (p *PgSearch) Search(q Query) ([]Result, int, error) {
	if strings.TrimSpace(q.Text) == "" {
		return nil, 0, nil
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	pattern := "%" + escapeLike(q.Text) + "%"

	var subQueries []string
	if q.FilterType == "" || q.FilterType == ResultClient {
		subQueries = append(subQueries, `
			SELECT 'client'::text AS type, c.id::text, c.name AS title,
				COALESCE(c.bullets, COALESCE(c.industry, '')) AS snippet,
				c.id AS client_id, c.updated_at AS sort_at
			FROM clients c
			WHERE c.owner_id=$1
			  AND (c.name ILIKE $2 OR c.industry ILIKE $2 OR c.bullets ILIKE $2)`)
	}
	if q.FilterType == "" || q.FilterType == ResultNote {
		subQueries = append(subQueries, `
			SELECT 'note'::text AS type, n.id::text, COALESCE(n.title, '') AS title,
				n.content AS snippet,
				n.client_id, n.updated_at AS sort_at
			FROM notes n
			WHERE n.owner_id=$1
			  AND (n.title ILIKE $2 OR n.content ILIKE $2)`)
	}
	if len(subQueries) == 0 {
		return nil, 0, nil
	}

	query := fmt.Sprintf(`
		SELECT type, id, title, snippet, client_id
		FROM (%s) hits
		ORDER BY sort_at DESC
		LIMIT $3 OFFSET $4
	`, strings.Join(subQueries, " UNION ALL "))

	rows, err := p.db.QueryContext(context.Background(), query, q.OwnerID, pattern, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("pg search: %w", err)
	}
	defer rows.Close()

	results := make([]Result, 0)
	for rows.Next() {
		var r Result
		var typ string
		if err := rows.Scan(&typ, &r.ID, &r.Title, &r.Snippet, &r.ClientID); err != nil {
			return nil, 0, fmt.Errorf("scan search hit: %w", err)
		}
		r.Type = ResultType(typ)
		r.Snippet = truncate(r.Snippet, 200)
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate search hits: %w", err)
	}
	return results, len(results), nil
}

// LoadAllRecords reads every searchable entity for bulk reindexing.
func (p *PgSearch) LoadAllRecords(ctx context.Context) ([]ClientRecord, []NoteRecord, error) {
	clientRows, err := p.db.QueryContext(ctx, `
		SELECT id::text, owner_id, name, COALESCE(industry, ''), COALESCE(bullets, ''), status
		FROM clients
	`)
	if err != nil {
		return nil, nil, fmt.Errorf("load clients for index: %w", err)
	}
	defer clientRows.Close()

	var clients []ClientRecord
	for clientRows.Next() {
		var c ClientRecord
		if err := clientRows.Scan(&c.ID, &c.OwnerID, &c.Name, &c.Industry, &c.Bullets, &c.Status); err != nil {
			return nil, nil, fmt.Errorf("scan client record: %w", err)
		}
		clients = append(clients, c)
	}
	if err := clientRows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate client records: %w", err)
	}

	noteRows, err := p.db.QueryContext(ctx, `
		SELECT id::text, owner_id, client_id, COALESCE(title, ''), content
		FROM notes
	`)
	if err != nil {
		return nil, nil, fmt.Errorf("load notes for index: %w", err)
	}
	defer noteRows.Close()

	var notes []NoteRecord
	for noteRows.Next() {
		var n NoteRecord
		if err := noteRows.Scan(&n.ID, &n.OwnerID, &n.ClientID, &n.Title, &n.Content); err != nil {
			return nil, nil, fmt.Errorf("scan note record: %w", err)
		}
		notes = append(notes, n)
	}
	if err := noteRows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate note records: %w", err)
	}

	return clients, notes, nil
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
