package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// GetRunByDay returns the run for one owner and day key, or nil when no run
// exists yet.
func (s *PostgresStore) GetRunByDay(ctx context.Context, ownerID, dayKey string) (*Run, error) {
	var run Run
	err := s.db.QueryRowContext(ctx, `
		SELECT id, owner_id, day_key, created_at
		FROM daily_runs
		WHERE owner_id=$1 AND day_key=$2
	`, ownerID, dayKey).Scan(&run.ID, &run.OwnerID, &run.DayKey, &run.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap("get run by day", err)
	}
	return &run, nil
}

// CreateRun inserts a run for the owner and day, or hands back the existing
// one when a concurrent caller got there first. The unique index on
// (owner_id, day_key) makes the race safe; the losing insert re-selects.
func (s *PostgresStore) CreateRun(ctx context.Context, ownerID, dayKey string) (*Run, bool, error) {
	var run Run
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO daily_runs (owner_id, day_key)
		VALUES ($1, $2)
		ON CONFLICT (owner_id, day_key) DO NOTHING
		RETURNING id, owner_id, day_key, created_at
	`, ownerID, dayKey).Scan(&run.ID, &run.OwnerID, &run.DayKey, &run.CreatedAt)
	if err == nil {
		return &run, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, wrap("create run", err)
	}
	existing, err := s.GetRunByDay(ctx, ownerID, dayKey)
	if err != nil {
		return nil, false, err
	}
	if existing == nil {
		return nil, false, fmt.Errorf("create run: conflict but no row for %s/%s", ownerID, dayKey)
	}
	return existing, false, nil
}

// InsertRunItems appends line-items. Duplicate client rows are skipped rather
// than erroring so two reconcile passes can overlap.
func (s *PostgresStore) InsertRunItems(ctx context.Context, runID int64, ownerID string, items []NewRunItem) error {
	for _, item := range items {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO run_items (run_id, owner_id, client_id, ordinal)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (run_id, client_id) DO NOTHING
		`, runID, ownerID, item.ClientID, item.Ordinal)
		if err != nil {
			return wrap("insert run item", err)
		}
	}
	return nil
}

const runItemClientJoin = `
	ri.id, ri.run_id, ri.owner_id, ri.client_id, ri.ordinal,
	COALESCE(ri.outcome, ''), COALESCE(ri.quick_note, ''), ri.reviewed_at,
	c.name, c.status, c.priority, COALESCE(c.industry, ''), c.health_score,
	COALESCE(c.bullets, ''), c.last_contact_at, c.last_touched_at`

func scanRunItem(rows *sql.Rows, withContactMade bool) (RunItem, error) {
	var item RunItem
	dest := []any{
		&item.ID, &item.RunID, &item.OwnerID, &item.ClientID, &item.Ordinal,
		&item.Outcome, &item.QuickNote, &item.ReviewedAt,
		&item.ClientName, &item.ClientStatus, &item.ClientPriority, &item.ClientIndustry,
		&item.ClientHealthScore, &item.ClientBullets, &item.ClientLastContactAt, &item.ClientLastTouchedAt,
	}
	if withContactMade {
		dest = append(dest, &item.ContactMade)
	}
	return item, rows.Scan(dest...)
}

// ListRunItems returns a run's line-items joined with their clients, in
// ordinal order. Items whose client has been deleted or deactivated are
// filtered out by the inner join, not removed from storage.
func (s *PostgresStore) ListRunItems(ctx context.Context, runID int64, ownerID string) ([]RunItem, error) {
	cols := runItemClientJoin
	if s.caps.RunItemContactMade {
		cols += `, ri.contact_made`
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+cols+`
		FROM run_items ri
		JOIN clients c ON c.id=ri.client_id AND c.status='active'
		WHERE ri.run_id=$1 AND ri.owner_id=$2
		ORDER BY ri.ordinal ASC
	`, runID, ownerID)
	if err != nil {
		return nil, wrap("list run items", err)
	}
	defer rows.Close()

	items := make([]RunItem, 0)
	for rows.Next() {
		item, err := scanRunItem(rows, s.caps.RunItemContactMade)
		if err != nil {
			return nil, fmt.Errorf("scan run item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("iterate run items", err)
	}
	return items, nil
}

// ListRunClientIDs returns every client ever added to the run, including
// clients the joined read no longer surfaces. Reconciliation diffs against
// this set so a deactivated-then-reactivated client is not re-added.
func (s *PostgresStore) ListRunClientIDs(ctx context.Context, runID int64) (map[int64]bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT client_id FROM run_items WHERE run_id=$1`, runID)
	if err != nil {
		return nil, wrap("list run client ids", err)
	}
	defer rows.Close()

	ids := make(map[int64]bool)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan run client id: %w", err)
		}
		ids[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("iterate run client ids", err)
	}
	return ids, nil
}

// MaxOrdinal returns the highest ordinal in the run, or 0 when the run has
// no items. Appended items continue from here.
func (s *PostgresStore) MaxOrdinal(ctx context.Context, runID int64) (int, error) {
	var max int
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(ordinal), 0) FROM run_items WHERE run_id=$1
	`, runID).Scan(&max)
	if err != nil {
		return 0, wrap("max ordinal", err)
	}
	return max, nil
}

func (s *PostgresStore) GetRunItem(ctx context.Context, itemID int64, ownerID string) (RunItem, error) {
	cols := `id, run_id, owner_id, client_id, ordinal, COALESCE(outcome, ''), COALESCE(quick_note, ''), reviewed_at`
	if s.caps.RunItemContactMade {
		cols += `, contact_made`
	}
	row := s.db.QueryRowContext(ctx, `
		SELECT `+cols+`
		FROM run_items
		WHERE id=$1 AND owner_id=$2
	`, itemID, ownerID)

	var item RunItem
	dest := []any{
		&item.ID, &item.RunID, &item.OwnerID, &item.ClientID, &item.Ordinal,
		&item.Outcome, &item.QuickNote, &item.ReviewedAt,
	}
	if s.caps.RunItemContactMade {
		dest = append(dest, &item.ContactMade)
	}
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return RunItem{}, err
		}
		return RunItem{}, wrap("get run item", err)
	}
	return item, nil
}

// SetItemOutcome records or overwrites a line-item's review outcome. Passing
// outcome="" resets the item to pending and clears the review timestamp.
func (s *PostgresStore) SetItemOutcome(ctx context.Context, itemID int64, ownerID, outcome, quickNote string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE run_items SET
			outcome=NULLIF($3, ''),
			quick_note=NULLIF($4, ''),
			reviewed_at=CASE WHEN $3='' THEN NULL ELSE NOW() END
		WHERE id=$1 AND owner_id=$2
	`, itemID, ownerID, outcome, quickNote)
	if err != nil {
		return wrap("set item outcome", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set item outcome rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *PostgresStore) SetItemContactMade(ctx context.Context, itemID int64, ownerID string, made bool) error {
	if !s.caps.RunItemContactMade {
		return fmt.Errorf("set item contact made: %w", ErrColumnMissing)
	}
	result, err := s.db.ExecContext(ctx, `
		UPDATE run_items SET contact_made=$3
		WHERE id=$1 AND owner_id=$2
	`, itemID, ownerID, made)
	if err != nil {
		return wrap("set item contact made", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set item contact made rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListRunSummaries returns per-day aggregates for the owner's most recent
// runs, newest first. Counts only cover items whose client is still active,
// matching what ListRunItems would show.
func (s *PostgresStore) ListRunSummaries(ctx context.Context, ownerID string, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 30
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.day_key, r.created_at,
			COUNT(ri.id),
			COUNT(ri.id) FILTER (WHERE ri.outcome IS NOT NULL AND ri.outcome <> 'flagged'),
			COUNT(ri.id) FILTER (WHERE ri.outcome = 'flagged'),
			COUNT(ri.id) FILTER (WHERE ri.outcome IS NULL)
		FROM daily_runs r
		LEFT JOIN run_items ri ON ri.run_id=r.id
			AND EXISTS (SELECT 1 FROM clients c WHERE c.id=ri.client_id AND c.status='active')
		WHERE r.owner_id=$1
		GROUP BY r.id, r.day_key, r.created_at
		ORDER BY r.day_key DESC
		LIMIT $2
	`, ownerID, limit)
	if err != nil {
		return nil, wrap("list run summaries", err)
	}
	defer rows.Close()

	items := make([]RunSummary, 0)
	for rows.Next() {
		var item RunSummary
		if err := rows.Scan(&item.ID, &item.DayKey, &item.CreatedAt, &item.Total, &item.Reviewed, &item.Flagged, &item.Pending); err != nil {
			return nil, fmt.Errorf("scan run summary: %w", err)
		}
		item.Complete = item.Total > 0 && item.Pending == 0
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("iterate run summaries", err)
	}
	return items, nil
}

// ---------------------------------------------------------------------------
// Focus notes

// UpsertFocusNote writes the single free-form note for one owner and day.
// Last write wins.
func (s *PostgresStore) UpsertFocusNote(ctx context.Context, ownerID, dayKey, body string) (FocusNote, error) {
	var note FocusNote
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO focus_notes (owner_id, day_key, body, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (owner_id, day_key)
		DO UPDATE SET body=EXCLUDED.body, updated_at=NOW()
		RETURNING owner_id, day_key, body, updated_at
	`, ownerID, dayKey, body).Scan(&note.OwnerID, &note.DayKey, &note.Body, &note.UpdatedAt)
	if err != nil {
		return FocusNote{}, wrap("upsert focus note", err)
	}
	return note, nil
}

// GetFocusNote returns the note for the day, or nil when none has been saved.
func (s *PostgresStore) GetFocusNote(ctx context.Context, ownerID, dayKey string) (*FocusNote, error) {
	var note FocusNote
	err := s.db.QueryRowContext(ctx, `
		SELECT owner_id, day_key, body, updated_at
		FROM focus_notes
		WHERE owner_id=$1 AND day_key=$2
	`, ownerID, dayKey).Scan(&note.OwnerID, &note.DayKey, &note.Body, &note.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap("get focus note", err)
	}
	return &note, nil
}
