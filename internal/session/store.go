package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

// Supported database/sql driver names.
const (
	DriverCGO    = "sqlite3" // github.com/mattn/go-sqlite3
	DriverPureGo = "sqlite"  // modernc.org/sqlite
)

// Store provides SQLite-backed persistence for sessions.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// NewStore opens the SQLite database at dbPath with the default driver.
func NewStore(dbPath string) (*Store, error) {
	return Open(context.Background(), DriverCGO, dbPath)
}

// Open opens dbPath with the named driver and applies pending migrations.
func Open(ctx context.Context, driver, dbPath string) (*Store, error) {
	dsn, err := buildDSN(driver, dbPath)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// SQLite allows one writer; a single connection keeps transactions serialized.
	db.SetMaxOpenConns(1)

	if err := Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	return &Store{db: db, now: func() time.Time { return time.Now().UTC() }}, nil
}

func buildDSN(driver, dbPath string) (string, error) {
	switch driver {
	case DriverCGO:
		return "file:" + dbPath + "?_busy_timeout=5000&_foreign_keys=on", nil
	case DriverPureGo:
		return "file:" + dbPath + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", nil
	default:
		return "", fmt.Errorf("unsupported sqlite driver %q", driver)
	}
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

const sessionColumns = `id, status, cursor, state, draft, pending_name, pending_logo,
	name_suggestions, name_history, logo_variants, logo_style, logo_generation,
	palette_json, font_lock, palette_locked, font_locked, keep_layout, layout_seed,
	version, created_at, updated_at`

// CreateSession creates a new active session at cursor 0 in the given state.
func (s *Store) CreateSession(ctx context.Context, state string) (*Session, error) {
	now := s.now()
	sess := &Session{
		ID:        uuid.New().String(),
		Status:    StatusActive,
		State:     state,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, status, cursor, state, created_at, updated_at)
		 VALUES (?, ?, 0, ?, ?, ?)`,
		sess.ID, string(sess.Status), sess.State, formatTime(now), formatTime(now),
	)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}

	return sess, nil
}

// GetSession retrieves a session by ID. Returns ErrNotFound if absent.
func (s *Store) GetSession(ctx context.Context, id string) (*Session, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan session: %w", err)
	}
	return sess, nil
}

// Commit writes next and appends the given ledger records in one
// transaction. The write only succeeds if the stored version still equals
// next.Version; on success next.Version and next.UpdatedAt are advanced.
func (s *Store) Commit(ctx context.Context, next *Session, appends []NewAnswer) error {
	suggestions, err := marshalList(next.NameSuggestions)
	if err != nil {
		return err
	}
	history, err := marshalList(next.NameHistory)
	if err != nil {
		return err
	}
	variants, err := marshalList(next.LogoVariants)
	if err != nil {
		return err
	}
	palette, err := marshalList(next.Prefs.Palette)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := s.now()
	result, err := tx.ExecContext(ctx,
		`UPDATE sessions SET status = ?, cursor = ?, state = ?, draft = ?,
		        pending_name = ?, pending_logo = ?, name_suggestions = ?, name_history = ?,
		        logo_variants = ?, logo_style = ?, logo_generation = ?,
		        palette_json = ?, font_lock = ?, palette_locked = ?, font_locked = ?,
		        keep_layout = ?, layout_seed = ?, version = version + 1, updated_at = ?
		 WHERE id = ? AND version = ?`,
		string(next.Status), next.Cursor, next.State, next.Draft,
		next.PendingName, next.PendingLogo, suggestions, history,
		variants, next.LogoStyle, next.LogoGeneration,
		palette, next.Prefs.Font, next.Prefs.PaletteLocked, next.Prefs.FontLocked,
		next.Prefs.KeepLayout, int64(next.Prefs.LayoutSeed), formatTime(now),
		next.ID, next.Version,
	)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM sessions WHERE id = ?`, next.ID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("check session: %w", err)
		}
		return ErrConflict
	}

	for _, a := range appends {
		if _, err := insertAnswer(ctx, tx, next.ID, a, now); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	next.Version++
	next.UpdatedAt = now
	return nil
}

// ListSessions returns summaries of the most recently updated sessions.
func (s *Store) ListSessions(ctx context.Context, limit int) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT s.id, s.status, s.cursor, s.state, s.updated_at,
		        COUNT(DISTINCT CASE WHEN a.confirmed = 1 THEN a.question_id END) AS confirmed
		 FROM sessions s
		 LEFT JOIN answers a ON s.id = a.session_id
		 GROUP BY s.id
		 ORDER BY s.updated_at DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var summaries []Summary
	for rows.Next() {
		var sum Summary
		var status, updated string
		if err := rows.Scan(&sum.ID, &status, &sum.Cursor, &sum.State, &updated, &sum.Confirmed); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		sum.Status = Status(status)
		if sum.UpdatedAt, err = parseTime(updated); err != nil {
			return nil, err
		}
		summaries = append(summaries, sum)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return summaries, nil
}

// AppendAnswer appends a single ledger record outside a session commit.
func (s *Store) AppendAnswer(ctx context.Context, sessionID string, a NewAnswer) (*Answer, error) {
	return insertAnswer(ctx, s.db, sessionID, a, s.now())
}

// CurrentAnswer returns the most recent record for questionID, or nil if none.
func (s *Store) CurrentAnswer(ctx context.Context, sessionID, questionID string) (*Answer, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT seq, id, session_id, question_id, raw_value, refined_value, confirmed, created_at
		 FROM answers
		 WHERE session_id = ? AND question_id = ?
		 ORDER BY seq DESC
		 LIMIT 1`,
		sessionID, questionID,
	)
	ans, err := scanAnswer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan answer: %w", err)
	}
	return ans, nil
}

// ConfirmedValues maps each question ID to the effective value of its most
// recent confirmed record.
func (s *Store) ConfirmedValues(ctx context.Context, sessionID string) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT a.question_id, a.raw_value, a.refined_value
		 FROM answers a
		 JOIN (SELECT question_id, MAX(seq) AS seq
		       FROM answers
		       WHERE session_id = ? AND confirmed = 1
		       GROUP BY question_id) latest ON a.seq = latest.seq`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query confirmed answers: %w", err)
	}
	defer func() { _ = rows.Close() }()

	values := make(map[string]string)
	for rows.Next() {
		var a Answer
		if err := rows.Scan(&a.QuestionID, &a.Raw, &a.Refined); err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		values[a.QuestionID] = a.Effective()
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return values, nil
}

// History returns every ledger record for a session in append order.
func (s *Store) History(ctx context.Context, sessionID string) ([]Answer, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, id, session_id, question_id, raw_value, refined_value, confirmed, created_at
		 FROM answers
		 WHERE session_id = ?
		 ORDER BY seq ASC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query answers: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var answers []Answer
	for rows.Next() {
		ans, err := scanAnswer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		answers = append(answers, *ans)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return answers, nil
}

// ToggleFavorite saves path as a favorite, or removes it if already saved.
// Returns true when the path is a favorite after the call.
func (s *Store) ToggleFavorite(ctx context.Context, sessionID, path, style string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx,
		`DELETE FROM favorites WHERE session_id = ? AND path = ?`, sessionID, path)
	if err != nil {
		return false, fmt.Errorf("delete favorite: %w", err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("check rows affected: %w", err)
	}

	if removed == 0 {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO favorites (session_id, path, style, created_at) VALUES (?, ?, ?, ?)`,
			sessionID, path, style, formatTime(s.now()),
		)
		if err != nil {
			return false, fmt.Errorf("insert favorite: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit transaction: %w", err)
	}
	return removed == 0, nil
}

// ListFavorites returns the saved favorites of a session, oldest first.
func (s *Store) ListFavorites(ctx context.Context, sessionID string) ([]Favorite, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT session_id, path, style, created_at
		 FROM favorites
		 WHERE session_id = ?
		 ORDER BY created_at ASC, path ASC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query favorites: %w", err)
	}
	defer func() { _ = rows.Close() }()

	favorites := []Favorite{}
	for rows.Next() {
		var fav Favorite
		var created string
		if err := rows.Scan(&fav.SessionID, &fav.Path, &fav.Style, &created); err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}
		if fav.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		favorites = append(favorites, fav)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return favorites, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertAnswer(ctx context.Context, db execer, sessionID string, a NewAnswer, now time.Time) (*Answer, error) {
	ans := &Answer{
		ID:         uuid.New().String(),
		SessionID:  sessionID,
		QuestionID: a.QuestionID,
		Raw:        a.Raw,
		Refined:    a.Refined,
		Confirmed:  a.Confirmed,
		CreatedAt:  now,
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO answers (id, session_id, question_id, raw_value, refined_value, confirmed, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ans.ID, sessionID, ans.QuestionID, ans.Raw, ans.Refined, ans.Confirmed, formatTime(now),
	)
	if err != nil {
		return nil, fmt.Errorf("insert answer: %w", err)
	}
	if ans.Seq, err = result.LastInsertId(); err != nil {
		return nil, fmt.Errorf("read answer sequence: %w", err)
	}

	return ans, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (*Session, error) {
	var sess Session
	var status, suggestions, history, variants, palette, created, updated string
	var layoutSeed int64
	err := row.Scan(
		&sess.ID, &status, &sess.Cursor, &sess.State, &sess.Draft, &sess.PendingName, &sess.PendingLogo,
		&suggestions, &history, &variants, &sess.LogoStyle, &sess.LogoGeneration,
		&palette, &sess.Prefs.Font, &sess.Prefs.PaletteLocked, &sess.Prefs.FontLocked, &sess.Prefs.KeepLayout, &layoutSeed,
		&sess.Version, &created, &updated,
	)
	if err != nil {
		return nil, err
	}

	sess.Status = Status(status)
	sess.Prefs.LayoutSeed = uint32(layoutSeed)
	if sess.NameSuggestions, err = unmarshalList(suggestions); err != nil {
		return nil, err
	}
	if sess.NameHistory, err = unmarshalList(history); err != nil {
		return nil, err
	}
	if sess.LogoVariants, err = unmarshalList(variants); err != nil {
		return nil, err
	}
	if sess.Prefs.Palette, err = unmarshalList(palette); err != nil {
		return nil, err
	}
	if sess.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if sess.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}

	return &sess, nil
}

func scanAnswer(row scanner) (*Answer, error) {
	var ans Answer
	var created string
	if err := row.Scan(&ans.Seq, &ans.ID, &ans.SessionID, &ans.QuestionID, &ans.Raw, &ans.Refined, &ans.Confirmed, &created); err != nil {
		return nil, err
	}
	var err error
	if ans.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	return &ans, nil
}

func marshalList(items []string) (string, error) {
	if items == nil {
		items = []string{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("marshal list: %w", err)
	}
	return string(data), nil
}

func unmarshalList(data string) ([]string, error) {
	if data == "" {
		return nil, nil
	}
	var items []string
	if err := json.Unmarshal([]byte(data), &items); err != nil {
		return nil, fmt.Errorf("unmarshal list: %w", err)
	}
	if len(items) == 0 {
		return nil, nil
	}
	return items, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", value, err)
	}
	return t, nil
}
