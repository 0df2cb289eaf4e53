package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type PostgresStore struct {
	db   *sql.DB
	caps Capabilities
}

func NewPostgresStore(db *sql.DB, caps Capabilities) *PostgresStore {
	return &PostgresStore{db: db, caps: caps}
}

func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

func (s *PostgresStore) Capabilities() Capabilities {
	return s.caps
}

// DetectCapabilities probes optional schema surface once, at startup, instead
// of sniffing error text per request.
func DetectCapabilities(ctx context.Context, db *sql.DB) (Capabilities, error) {
	var caps Capabilities
	err := db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM information_schema.columns
			WHERE table_name='run_items' AND column_name='contact_made'
		)
	`).Scan(&caps.RunItemContactMade)
	if err != nil {
		return Capabilities{}, wrap("detect capabilities", err)
	}
	return caps, nil
}

// Ping verifies the database connection is alive
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// ---------------------------------------------------------------------------
// Clients

const clientColumns = `id, owner_id, name, status, priority, COALESCE(industry, ''), COALESCE(revenue::text, ''), health_score, COALESCE(bullets, ''), last_contact_at, last_reviewed_at, last_touched_at, created_at, updated_at`

func scanClient(row interface{ Scan(...any) error }) (Client, error) {
	var item Client
	err := row.Scan(
		&item.ID,
		&item.OwnerID,
		&item.Name,
		&item.Status,
		&item.Priority,
		&item.Industry,
		&item.Revenue,
		&item.HealthScore,
		&item.Bullets,
		&item.LastContactAt,
		&item.LastReviewedAt,
		&item.LastTouchedAt,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	return item, err
}

func (s *PostgresStore) ListClients(ctx context.Context, ownerID, status string) ([]Client, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+clientColumns+`
		FROM clients
		WHERE owner_id=$1 AND ($2='' OR status=$2)
		ORDER BY LOWER(name) ASC
	`, ownerID, status)
	if err != nil {
		return nil, wrap("list clients", err)
	}
	defer rows.Close()

	items := make([]Client, 0)
	for rows.Next() {
		item, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("iterate clients", err)
	}
	return items, nil
}

func (s *PostgresStore) GetClient(ctx context.Context, ownerID string, clientID int64) (Client, error) {
	item, err := scanClient(s.db.QueryRowContext(ctx, `
		SELECT `+clientColumns+`
		FROM clients
		WHERE id=$1 AND owner_id=$2
	`, clientID, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Client{}, err
		}
		return Client{}, wrap("get client", err)
	}
	return item, nil
}

func (s *PostgresStore) CreateClient(ctx context.Context, item Client) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO clients (owner_id, name, status, priority, industry, revenue, health_score, bullets)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, '')::numeric, $7, NULLIF($8, ''))
		RETURNING id
	`, item.OwnerID, item.Name, item.Status, item.Priority, item.Industry, item.Revenue, item.HealthScore, item.Bullets).Scan(&id)
	if err != nil {
		return 0, wrap("insert client", err)
	}
	return id, nil
}

func (s *PostgresStore) UpdateClient(ctx context.Context, ownerID string, clientID int64, u ClientUpdate) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE clients SET
			name=COALESCE($3, name),
			status=COALESCE($4, status),
			priority=COALESCE($5, priority),
			industry=COALESCE($6, industry),
			revenue=COALESCE($7::numeric, revenue),
			health_score=COALESCE($8, health_score),
			bullets=COALESCE($9, bullets),
			last_touched_at=NOW(),
			updated_at=NOW()
		WHERE id=$1 AND owner_id=$2
	`, clientID, ownerID, u.Name, u.Status, u.Priority, u.Industry, u.Revenue, u.HealthScore, u.Bullets)
	if err != nil {
		return wrap("update client", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update client rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *PostgresStore) DeleteClient(ctx context.Context, ownerID string, clientID int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM clients WHERE id=$1 AND owner_id=$2`, clientID, ownerID)
	if err != nil {
		return wrap("delete client", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete client rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// TouchClient bumps the broad last-touched marker and optionally the
// narrower contact/reviewed markers in one statement.
func (s *PostgresStore) TouchClient(ctx context.Context, ownerID string, clientID int64, contact, reviewed bool) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE clients SET
			last_touched_at=NOW(),
			last_contact_at=CASE WHEN $3 THEN NOW() ELSE last_contact_at END,
			last_reviewed_at=CASE WHEN $4 THEN NOW() ELSE last_reviewed_at END,
			updated_at=NOW()
		WHERE id=$1 AND owner_id=$2
	`, clientID, ownerID, contact, reviewed)
	if err != nil {
		return wrap("touch client", err)
	}
	return nil
}

func (s *PostgresStore) CountClientStatuses(ctx context.Context, ownerID string) (ClientStatusCounts, error) {
	var counts ClientStatusCounts
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE status='active'),
			COUNT(*) FILTER (WHERE status='prospect'),
			COUNT(*) FILTER (WHERE status='inactive'),
			COUNT(*) FILTER (WHERE status='active' AND priority='high')
		FROM clients
		WHERE owner_id=$1
	`, ownerID).Scan(&counts.Total, &counts.Active, &counts.Prospect, &counts.Inactive, &counts.HighPriorityActive)
	if err != nil {
		return ClientStatusCounts{}, wrap("count client statuses", err)
	}
	return counts, nil
}

// CountNeedsAttention counts active clients whose broad touch marker is null
// or older than the cutoff.
func (s *PostgresStore) CountNeedsAttention(ctx context.Context, ownerID string, cutoff time.Time) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM clients
		WHERE owner_id=$1 AND status='active'
		  AND (last_touched_at IS NULL OR last_touched_at <= $2)
	`, ownerID, cutoff).Scan(&count)
	if err != nil {
		return 0, wrap("count needs attention", err)
	}
	return count, nil
}

// ---------------------------------------------------------------------------
// Contacts

const contactColumns = `id, owner_id, client_id, name, COALESCE(role, ''), COALESCE(email, ''), COALESCE(phone, ''), is_primary, COALESCE(notes, ''), created_at, updated_at`

func (s *PostgresStore) ListContacts(ctx context.Context, ownerID string, clientID int64) ([]Contact, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+contactColumns+`
		FROM contacts
		WHERE owner_id=$1 AND ($2=0 OR client_id=$2)
		ORDER BY is_primary DESC, name ASC
	`, ownerID, clientID)
	if err != nil {
		return nil, wrap("list contacts", err)
	}
	defer rows.Close()

	items := make([]Contact, 0)
	for rows.Next() {
		var item Contact
		if err := rows.Scan(
			&item.ID,
			&item.OwnerID,
			&item.ClientID,
			&item.Name,
			&item.Role,
			&item.Email,
			&item.Phone,
			&item.IsPrimary,
			&item.Notes,
			&item.CreatedAt,
			&item.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("iterate contacts", err)
	}
	return items, nil
}

func (s *PostgresStore) CreateContact(ctx context.Context, item Contact) (int64, error) {
	if item.IsPrimary {
		if err := s.clearPrimaryContact(ctx, item.OwnerID, item.ClientID); err != nil {
			return 0, err
		}
	}
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO contacts (owner_id, client_id, name, role, email, phone, is_primary, notes)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), $7, NULLIF($8, ''))
		RETURNING id
	`, item.OwnerID, item.ClientID, item.Name, item.Role, item.Email, item.Phone, item.IsPrimary, item.Notes).Scan(&id)
	if err != nil {
		return 0, wrap("insert contact", err)
	}
	return id, nil
}

func (s *PostgresStore) UpdateContact(ctx context.Context, ownerID string, contactID int64, u ContactUpdate) error {
	if u.IsPrimary != nil && *u.IsPrimary {
		var clientID int64
		err := s.db.QueryRowContext(ctx, `SELECT client_id FROM contacts WHERE id=$1 AND owner_id=$2`, contactID, ownerID).Scan(&clientID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return err
			}
			return wrap("lookup contact client", err)
		}
		if err := s.clearPrimaryContact(ctx, ownerID, clientID); err != nil {
			return err
		}
	}
	result, err := s.db.ExecContext(ctx, `
		UPDATE contacts SET
			name=COALESCE($3, name),
			role=COALESCE($4, role),
			email=COALESCE($5, email),
			phone=COALESCE($6, phone),
			is_primary=COALESCE($7, is_primary),
			notes=COALESCE($8, notes),
			updated_at=NOW()
		WHERE id=$1 AND owner_id=$2
	`, contactID, ownerID, u.Name, u.Role, u.Email, u.Phone, u.IsPrimary, u.Notes)
	if err != nil {
		return wrap("update contact", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update contact rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// clearPrimaryContact keeps at most one primary contact per client.
func (s *PostgresStore) clearPrimaryContact(ctx context.Context, ownerID string, clientID int64) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE contacts SET is_primary=FALSE
		WHERE owner_id=$1 AND client_id=$2 AND is_primary
	`, ownerID, clientID)
	if err != nil {
		return wrap("clear primary contact", err)
	}
	return nil
}

func (s *PostgresStore) DeleteContact(ctx context.Context, ownerID string, contactID int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM contacts WHERE id=$1 AND owner_id=$2`, contactID, ownerID)
	if err != nil {
		return wrap("delete contact", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete contact rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ---------------------------------------------------------------------------
// Notes

const noteColumns = `id, owner_id, client_id, COALESCE(title, ''), content, is_pinned, created_at, updated_at`

func (s *PostgresStore) ListNotes(ctx context.Context, ownerID string, clientID int64) ([]Note, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+noteColumns+`
		FROM notes
		WHERE owner_id=$1 AND ($2=0 OR client_id=$2)
		ORDER BY is_pinned DESC, created_at DESC
	`, ownerID, clientID)
	if err != nil {
		return nil, wrap("list notes", err)
	}
	defer rows.Close()

	items := make([]Note, 0)
	for rows.Next() {
		var item Note
		if err := rows.Scan(
			&item.ID,
			&item.OwnerID,
			&item.ClientID,
			&item.Title,
			&item.Content,
			&item.IsPinned,
			&item.CreatedAt,
			&item.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("iterate notes", err)
	}
	return items, nil
}

// CreateNote records a note and counts it as a contact with the client.
func (s *PostgresStore) CreateNote(ctx context.Context, item Note) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO notes (owner_id, client_id, title, content, is_pinned)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5)
		RETURNING id
	`, item.OwnerID, item.ClientID, item.Title, item.Content, item.IsPinned).Scan(&id)
	if err != nil {
		return 0, wrap("insert note", err)
	}
	if err := s.TouchClient(ctx, item.OwnerID, item.ClientID, true, false); err != nil {
		return 0, err
	}
	return id, nil
}

func (s *PostgresStore) UpdateNote(ctx context.Context, ownerID string, noteID int64, u NoteUpdate) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE notes SET
			title=COALESCE($3, title),
			content=COALESCE($4, content),
			is_pinned=COALESCE($5, is_pinned),
			updated_at=NOW()
		WHERE id=$1 AND owner_id=$2
	`, noteID, ownerID, u.Title, u.Content, u.IsPinned)
	if err != nil {
		return wrap("update note", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update note rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *PostgresStore) DeleteNote(ctx context.Context, ownerID string, noteID int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM notes WHERE id=$1 AND owner_id=$2`, noteID, ownerID)
	if err != nil {
		return wrap("delete note", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete note rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ---------------------------------------------------------------------------
// Tasks

const taskColumns = `id, owner_id, client_id, title, COALESCE(description, ''), status, priority, due_date, completed_at, created_at, updated_at`

func scanTask(row interface{ Scan(...any) error }) (Task, error) {
	var item Task
	err := row.Scan(
		&item.ID,
		&item.OwnerID,
		&item.ClientID,
		&item.Title,
		&item.Description,
		&item.Status,
		&item.Priority,
		&item.DueDate,
		&item.CompletedAt,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	return item, err
}

func (s *PostgresStore) ListTasks(ctx context.Context, ownerID string, clientID int64, status string) ([]Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE owner_id=$1 AND ($2=0 OR client_id=$2) AND ($3='' OR status=$3)
		ORDER BY due_date ASC NULLS LAST, priority ASC
	`, ownerID, clientID, status)
	if err != nil {
		return nil, wrap("list tasks", err)
	}
	defer rows.Close()

	items := make([]Task, 0)
	for rows.Next() {
		item, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("iterate tasks", err)
	}
	return items, nil
}

func (s *PostgresStore) UpcomingTasks(ctx context.Context, ownerID string, clientID int64, limit int) ([]Task, error) {
	if limit <= 0 {
		limit = 3
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE owner_id=$1 AND client_id=$2 AND status='pending'
		ORDER BY due_date ASC NULLS LAST
		LIMIT $3
	`, ownerID, clientID, limit)
	if err != nil {
		return nil, wrap("upcoming tasks", err)
	}
	defer rows.Close()

	items := make([]Task, 0)
	for rows.Next() {
		item, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan upcoming task: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("iterate upcoming tasks", err)
	}
	return items, nil
}

func (s *PostgresStore) CreateTask(ctx context.Context, item Task) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO tasks (owner_id, client_id, title, description, status, priority, due_date)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7)
		RETURNING id
	`, item.OwnerID, item.ClientID, item.Title, item.Description, item.Status, item.Priority, item.DueDate).Scan(&id)
	if err != nil {
		return 0, wrap("insert task", err)
	}
	return id, nil
}

func (s *PostgresStore) UpdateTask(ctx context.Context, ownerID string, taskID int64, u TaskUpdate) error {
	dueDate := u.DueDate
	result, err := s.db.ExecContext(ctx, `
		UPDATE tasks SET
			title=COALESCE($3, title),
			description=COALESCE($4, description),
			status=COALESCE($5, status),
			priority=COALESCE($6, priority),
			due_date=CASE WHEN $8 THEN NULL ELSE COALESCE($7, due_date) END,
			completed_at=CASE
				WHEN $5='completed' THEN NOW()
				WHEN $5 IS NOT NULL THEN NULL
				ELSE completed_at
			END,
			updated_at=NOW()
		WHERE id=$1 AND owner_id=$2
	`, taskID, ownerID, u.Title, u.Description, u.Status, u.Priority, dueDate, u.ClearDue)
	if err != nil {
		return wrap("update task", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update task rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	// A status change is an interaction with the attached client.
	if u.Status != nil {
		var clientID *int64
		err := s.db.QueryRowContext(ctx, `SELECT client_id FROM tasks WHERE id=$1 AND owner_id=$2`, taskID, ownerID).Scan(&clientID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return wrap("lookup task client", err)
		}
		if clientID != nil {
			if err := s.TouchClient(ctx, ownerID, *clientID, false, false); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *PostgresStore) DeleteTask(ctx context.Context, ownerID string, taskID int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id=$1 AND owner_id=$2`, taskID, ownerID)
	if err != nil {
		return wrap("delete task", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete task rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *PostgresStore) CountTasks(ctx context.Context, ownerID string, now time.Time) (TaskCounts, error) {
	var counts TaskCounts
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FILTER (WHERE status='pending'),
			COUNT(*) FILTER (WHERE status='pending' AND due_date IS NOT NULL AND due_date < $2)
		FROM tasks
		WHERE owner_id=$1
	`, ownerID, now).Scan(&counts.Pending, &counts.Overdue)
	if err != nil {
		return TaskCounts{}, wrap("count tasks", err)
	}
	return counts, nil
}

// ---------------------------------------------------------------------------
// Tags

func (s *PostgresStore) ListTags(ctx context.Context, ownerID string) ([]Tag, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, name, color, created_at
		FROM tags
		WHERE owner_id=$1
		ORDER BY name ASC
	`, ownerID)
	if err != nil {
		return nil, wrap("list tags", err)
	}
	defer rows.Close()

	items := make([]Tag, 0)
	for rows.Next() {
		var item Tag
		if err := rows.Scan(&item.ID, &item.OwnerID, &item.Name, &item.Color, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("iterate tags", err)
	}
	return items, nil
}

func (s *PostgresStore) CreateTag(ctx context.Context, item Tag) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO tags (owner_id, name, color)
		VALUES ($1, $2, $3)
		RETURNING id
	`, item.OwnerID, item.Name, item.Color).Scan(&id)
	if err != nil {
		return 0, wrap("insert tag", err)
	}
	return id, nil
}

func (s *PostgresStore) UpdateTag(ctx context.Context, ownerID string, tagID int64, name, color *string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE tags SET name=COALESCE($3, name), color=COALESCE($4, color)
		WHERE id=$1 AND owner_id=$2
	`, tagID, ownerID, name, color)
	if err != nil {
		return wrap("update tag", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update tag rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *PostgresStore) DeleteTag(ctx context.Context, ownerID string, tagID int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM client_tags WHERE tag_id=$1 AND owner_id=$2`, tagID, ownerID); err != nil {
		return wrap("delete tag assignments", err)
	}
	result, err := s.db.ExecContext(ctx, `DELETE FROM tags WHERE id=$1 AND owner_id=$2`, tagID, ownerID)
	if err != nil {
		return wrap("delete tag", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete tag rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *PostgresStore) ListClientTags(ctx context.Context, ownerID string, clientID int64) ([]ClientTag, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ct.id, ct.tag_id, t.name, t.color
		FROM client_tags ct
		JOIN tags t ON t.id=ct.tag_id
		WHERE ct.owner_id=$1 AND ct.client_id=$2
		ORDER BY t.name ASC
	`, ownerID, clientID)
	if err != nil {
		return nil, wrap("list client tags", err)
	}
	defer rows.Close()

	items := make([]ClientTag, 0)
	for rows.Next() {
		var item ClientTag
		if err := rows.Scan(&item.ID, &item.TagID, &item.TagName, &item.TagColor); err != nil {
			return nil, fmt.Errorf("scan client tag: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("iterate client tags", err)
	}
	return items, nil
}

func (s *PostgresStore) AddClientTag(ctx context.Context, ownerID string, clientID, tagID int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO client_tags (owner_id, client_id, tag_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (client_id, tag_id) DO NOTHING
	`, ownerID, clientID, tagID)
	if err != nil {
		return wrap("add client tag", err)
	}
	return nil
}

func (s *PostgresStore) RemoveClientTag(ctx context.Context, ownerID string, clientID, tagID int64) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM client_tags
		WHERE owner_id=$1 AND client_id=$2 AND tag_id=$3
	`, ownerID, clientID, tagID)
	if err != nil {
		return wrap("remove client tag", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Activity log

func (s *PostgresStore) InsertActivity(ctx context.Context, entry ActivityEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO activity_log (owner_id, client_id, entity_type, entity_id, action, details)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''))
	`, entry.OwnerID, entry.ClientID, entry.EntityType, entry.EntityID, entry.Action, entry.Details)
	if err != nil {
		return wrap("insert activity", err)
	}
	return nil
}

func (s *PostgresStore) ListActivity(ctx context.Context, ownerID string, clientID int64, limit int) ([]ActivityEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, client_id, entity_type, entity_id, action, COALESCE(details, ''), created_at
		FROM activity_log
		WHERE owner_id=$1 AND ($2=0 OR client_id=$2)
		ORDER BY created_at DESC
		LIMIT $3
	`, ownerID, clientID, limit)
	if err != nil {
		return nil, wrap("list activity", err)
	}
	defer rows.Close()

	items := make([]ActivityEntry, 0)
	for rows.Next() {
		var item ActivityEntry
		if err := rows.Scan(
			&item.ID,
			&item.OwnerID,
			&item.ClientID,
			&item.EntityType,
			&item.EntityID,
			&item.Action,
			&item.Details,
			&item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("iterate activity", err)
	}
	return items, nil
}
