package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using modernc.org/sqlite with automatic
// schema creation.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path. Parent
// directories are created if needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// WAL keeps readers unblocked while the chat path appends messages.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	slog.Info("sqlite store initialised", "path", path)
	return s, nil
}

func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS local_types (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			uuid TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			description TEXT,
			short_description TEXT,
			icon TEXT,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS customers (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			uuid TEXT NOT NULL UNIQUE,
			name TEXT,
			is_event_created INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL
		);

		CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			uuid TEXT NOT NULL UNIQUE,
			subject TEXT NOT NULL UNIQUE,
			email TEXT,
			customer_id INTEGER REFERENCES customers(id) ON DELETE CASCADE,
			is_onboarding_complete INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL
		);

		CREATE TABLE IF NOT EXISTS locals (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			uuid TEXT NOT NULL UNIQUE,
			customer_id INTEGER REFERENCES customers(id) ON DELETE CASCADE,
			local_type_id INTEGER REFERENCES local_types(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			description TEXT,
			co_ordinates TEXT,
			location_search_query TEXT,
			radius INTEGER,
			created_at TIMESTAMP,
			updated_at TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			uuid TEXT NOT NULL UNIQUE,
			message_by TEXT NOT NULL,
			user_id INTEGER REFERENCES users(id) ON DELETE CASCADE,
			customer_id INTEGER REFERENCES customers(id) ON DELETE CASCADE,
			local_id INTEGER REFERENCES locals(id) ON DELETE CASCADE,
			message TEXT NOT NULL,
			metadata TEXT,
			message_prompt TEXT,
			message_summary TEXT,
			created_at TIMESTAMP
		);

		CREATE INDEX IF NOT EXISTS idx_locals_type ON locals(local_type_id);
		CREATE INDEX IF NOT EXISTS idx_messages_local ON messages(local_id);
		CREATE INDEX IF NOT EXISTS idx_messages_created ON messages(created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

// DB exposes the underlying handle for seeding and tests.
func (s *SQLiteStore) DB() *sql.DB { return s.db }

func (s *SQLiteStore) LocalTypes(ctx context.Context) ([]LocalType, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, uuid, name, COALESCE(description,''), COALESCE(short_description,''),
		       COALESCE(icon,''), created_at, COALESCE(updated_at, created_at)
		FROM local_types ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying local types: %w", err)
	}
	defer rows.Close()

	var out []LocalType
	for rows.Next() {
		var lt LocalType
		if err := rows.Scan(&lt.ID, &lt.UUID, &lt.Name, &lt.Description,
			&lt.ShortDescription, &lt.Icon, &lt.CreatedAt, &lt.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning local type: %w", err)
		}
		out = append(out, lt)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) LocalTypeByUUID(ctx context.Context, id string) (*LocalType, error) {
	var lt LocalType
	err := s.db.QueryRowContext(ctx, `
		SELECT id, uuid, name, COALESCE(description,''), COALESCE(short_description,''),
		       COALESCE(icon,''), created_at, COALESCE(updated_at, created_at)
		FROM local_types WHERE uuid = ?`, id).
		Scan(&lt.ID, &lt.UUID, &lt.Name, &lt.Description, &lt.ShortDescription,
			&lt.Icon, &lt.CreatedAt, &lt.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying local type: %w", err)
	}
	return &lt, nil
}

func (s *SQLiteStore) CreateLocal(ctx context.Context, params LocalParams) (*Local, error) {
	id := uuid.NewString()
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO locals (uuid, customer_id, local_type_id, name, description,
		                    co_ordinates, location_search_query, radius, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, nullableID(params.CustomerID), nullableID(params.LocalTypeID),
		params.Name, params.Description, params.Coordinates,
		params.LocationSearchQuery, params.RadiusMeters, now, now)
	if err != nil {
		return nil, fmt.Errorf("creating local: %w", err)
	}
	rowID, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("creating local: %w", err)
	}
	return s.localByRowID(ctx, rowID)
}

func (s *SQLiteStore) LocalByUUID(ctx context.Context, id string) (*Local, error) {
	return s.queryLocal(ctx, "l.uuid = ?", id)
}

func (s *SQLiteStore) localByRowID(ctx context.Context, id int64) (*Local, error) {
	return s.queryLocal(ctx, "l.id = ?", id)
}

func (s *SQLiteStore) queryLocal(ctx context.Context, where string, arg any) (*Local, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT l.id, l.uuid, COALESCE(l.customer_id,0), COALESCE(l.local_type_id,0),
		       l.name, COALESCE(l.description,''), COALESCE(l.co_ordinates,''),
		       COALESCE(l.location_search_query,''), COALESCE(l.radius,0),
		       l.created_at, l.updated_at,
		       COALESCE(t.uuid,''), COALESCE(t.name,''), COALESCE(t.description,''),
		       COALESCE(t.short_description,''), COALESCE(t.icon,'')
		FROM locals l
		LEFT JOIN local_types t ON t.id = l.local_type_id
		WHERE `+where, arg)

	var l Local
	var t LocalType
	err := row.Scan(&l.ID, &l.UUID, &l.CustomerID, &l.LocalTypeID,
		&l.Name, &l.Description, &l.Coordinates, &l.LocationSearchQuery,
		&l.RadiusMeters, &l.CreatedAt, &l.UpdatedAt,
		&t.UUID, &t.Name, &t.Description, &t.ShortDescription, &t.Icon)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying local: %w", err)
	}
	if t.UUID != "" {
		t.ID = l.LocalTypeID
		l.LocalType = &t
	}
	return &l, nil
}

func (s *SQLiteStore) Locals(ctx context.Context, filter LocalFilter) ([]Local, int, error) {
	where := []string{"1=1"}
	var args []any
	if filter.LocalTypeID != 0 {
		where = append(where, "local_type_id = ?")
		args = append(args, filter.LocalTypeID)
	}
	if filter.Search != "" {
		where = append(where, "name LIKE ?")
		args = append(args, "%"+filter.Search+"%")
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM locals WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting locals: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	args = append(args, limit, (page-1)*limit)

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, uuid, COALESCE(customer_id,0), COALESCE(local_type_id,0),
		       name, COALESCE(description,''), COALESCE(co_ordinates,''),
		       COALESCE(location_search_query,''), COALESCE(radius,0),
		       created_at, updated_at
		FROM locals WHERE `+cond+` ORDER BY id LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("querying locals: %w", err)
	}
	defer rows.Close()

	var out []Local
	for rows.Next() {
		var l Local
		if err := rows.Scan(&l.ID, &l.UUID, &l.CustomerID, &l.LocalTypeID,
			&l.Name, &l.Description, &l.Coordinates, &l.LocationSearchQuery,
			&l.RadiusMeters, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scanning local: %w", err)
		}
		out = append(out, l)
	}
	return out, total, rows.Err()
}

func (s *SQLiteStore) UpdateLocal(ctx context.Context, id string, params LocalParams) (*Local, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE locals
		SET name = ?, description = ?, co_ordinates = ?, location_search_query = ?,
		    radius = ?, local_type_id = COALESCE(?, local_type_id), updated_at = ?
		WHERE uuid = ?`,
		params.Name, params.Description, params.Coordinates,
		params.LocationSearchQuery, params.RadiusMeters,
		nullableID(params.LocalTypeID), time.Now().UTC(), id)
	if err != nil {
		return nil, fmt.Errorf("updating local: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return nil, ErrNotFound
	}
	return s.LocalByUUID(ctx, id)
}

func (s *SQLiteStore) DeleteLocal(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM locals WHERE uuid = ?", id)
	if err != nil {
		return fmt.Errorf("deleting local: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) SaveMessage(ctx context.Context, rec MessageRecord) (*MessageRecord, error) {
	rec.UUID = uuid.NewString()
	rec.CreatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (uuid, message_by, user_id, customer_id, local_id,
		                      message, metadata, message_prompt, message_summary, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.UUID, rec.MessageBy, nullableID(rec.UserID), nullableID(rec.CustomerID),
		nullableID(rec.LocalID), rec.Message, string(rec.Metadata), rec.Prompt,
		rec.Summary, rec.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("saving message: %w", err)
	}
	rec.ID, _ = res.LastInsertId()
	return &rec, nil
}

func (s *SQLiteStore) MessagesForLocal(ctx context.Context, localUUID string, limit int) ([]MessageRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT m.id, m.uuid, m.message_by, COALESCE(m.user_id,0), COALESCE(m.customer_id,0),
		       COALESCE(m.local_id,0), m.message, COALESCE(m.metadata,''),
		       COALESCE(m.message_prompt,''), COALESCE(m.message_summary,''), m.created_at
		FROM messages m
		JOIN locals l ON l.id = m.local_id
		WHERE l.uuid = ?
		ORDER BY m.id DESC LIMIT ?`, localUUID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer rows.Close()

	var out []MessageRecord
	for rows.Next() {
		var m MessageRecord
		var metadata string
		if err := rows.Scan(&m.ID, &m.UUID, &m.MessageBy, &m.UserID, &m.CustomerID,
			&m.LocalID, &m.Message, &metadata, &m.Prompt, &m.Summary, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		if metadata != "" {
			m.Metadata = []byte(metadata)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) PurgeMessagesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM messages WHERE created_at < ?", cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("purging messages: %w", err)
	}
	return res.RowsAffected()
}

// EnsureUser returns the user mapped to the auth subject, creating the
// user and a backing customer row on first sight.
func (s *SQLiteStore) EnsureUser(ctx context.Context, subject, email string) (*User, error) {
	u, err := s.userBySubject(ctx, subject)
	if err == nil {
		return u, nil
	}
	if err != ErrNotFound {
		return nil, err
	}

	now := time.Now().UTC()
	custRes, err := s.db.ExecContext(ctx,
		"INSERT INTO customers (uuid, name, created_at) VALUES (?, ?, ?)",
		uuid.NewString(), email, now)
	if err != nil {
		return nil, fmt.Errorf("creating customer: %w", err)
	}
	customerID, _ := custRes.LastInsertId()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO users (uuid, subject, email, customer_id, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		uuid.NewString(), subject, email, customerID, now)
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}
	return s.userBySubject(ctx, subject)
}

func (s *SQLiteStore) userBySubject(ctx context.Context, subject string) (*User, error) {
	var u User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, uuid, subject, COALESCE(email,''), COALESCE(customer_id,0),
		       is_onboarding_complete, created_at
		FROM users WHERE subject = ?`, subject).
		Scan(&u.ID, &u.UUID, &u.Subject, &u.Email, &u.CustomerID,
			&u.OnboardingComplete, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}
	return &u, nil
}

func (s *SQLiteStore) MarkUserOnboarded(ctx context.Context, userID int64) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE users SET is_onboarding_complete = 1 WHERE id = ?", userID)
	if err != nil {
		return fmt.Errorf("marking user onboarded: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		UPDATE customers SET is_event_created = 1
		WHERE id = (SELECT customer_id FROM users WHERE id = ?)`, userID)
	if err != nil {
		return fmt.Errorf("marking customer event created: %w", err)
	}
	return nil
}

// nullableID maps 0 to NULL so optional foreign keys stay unset.
func nullableID(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}
