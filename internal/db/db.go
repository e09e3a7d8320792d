package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/shakilbd009/lead-finder/internal/model"
)

// Store persists leads for the reference API. Tags are kept comma-joined
// in a TEXT column; the other list and object fields are JSON text.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

func NewStore(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", dbPath))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// sqlite wants a single writer, and every :memory: connection is its own database
	db.SetMaxOpenConns(1)

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS leads (
		id                TEXT PRIMARY KEY,
		position          TEXT NOT NULL,
		company           TEXT NOT NULL,
		location          TEXT DEFAULT '',
		url               TEXT DEFAULT '',
		status            TEXT NOT NULL DEFAULT 'new',
		tags              TEXT DEFAULT '',
		description       TEXT DEFAULT '',
		salary            TEXT DEFAULT '',
		requirements      TEXT DEFAULT '[]',
		benefits          TEXT DEFAULT '[]',
		contact_info      TEXT DEFAULT '{}',
		notes             TEXT DEFAULT '',
		platform          TEXT DEFAULT '',
		response_received INTEGER NOT NULL DEFAULT 0,
		response_date     TEXT DEFAULT '',
		follow_up_date    TEXT,
		custom_fields     TEXT DEFAULT '[]',
		created_at        TEXT NOT NULL,
		updated_at        TEXT NOT NULL
	)`)
	return err
}

// timestamps are fixed width so that string order is time order
const timeFormat = "2006-01-02T15:04:05.000000Z07:00"

func generateID() string {
	return uuid.New().String()[:8]
}

const leadColumns = "id, position, company, location, url, status, tags, description, salary, requirements, benefits, contact_info, notes, platform, response_received, response_date, follow_up_date, custom_fields, created_at, updated_at"

type scanner interface {
	Scan(dest ...any) error
}

func scanLead(row scanner) (model.Lead, error) {
	var (
		l                                       model.Lead
		status, tags                            string
		requirements, benefits, contact, custom string
		followUp                                sql.NullString
	)
	err := row.Scan(&l.ID, &l.Position, &l.Company, &l.Location, &l.URL, &status, &tags, &l.Description, &l.Salary,
		&requirements, &benefits, &contact, &l.Notes, &l.Platform, &l.ResponseReceived, &l.ResponseDate, &followUp,
		&custom, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return model.Lead{}, err
	}

	l.Status = model.Status(status)
	l.Tags = model.SplitList(tags)
	l.Requirements = decodeList(requirements)
	l.Benefits = decodeList(benefits)
	l.CustomFields = []model.CustomField{}
	_ = json.Unmarshal([]byte(custom), &l.CustomFields)
	_ = json.Unmarshal([]byte(contact), &l.ContactInfo)
	if followUp.Valid && followUp.String != "" {
		v := followUp.String
		l.FollowUpDate = &v
	}
	return l, nil
}

func decodeList(s string) []string {
	out := []string{}
	_ = json.Unmarshal([]byte(s), &out)
	if out == nil {
		out = []string{}
	}
	return out
}

func encodeJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func where(opts model.ListOptions) (string, []any) {
	var clauses []string
	var args []any
	if opts.Status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, opts.Status)
	}
	if opts.Tag != "" {
		// tags are stored as "a, b, c"; pad both sides so whole tags match
		clauses = append(clauses, `(', ' || tags || ',') LIKE ? ESCAPE '\'`)
		args = append(args, "%, "+likeEscaper.Replace(opts.Tag)+",%")
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func (s *Store) Count(ctx context.Context, opts model.ListOptions) (int, error) {
	clause, args := where(opts)
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM leads"+clause, args...).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (s *Store) List(ctx context.Context, opts model.ListOptions) ([]model.Lead, error) {
	clause, args := where(opts)
	query := "SELECT " + leadColumns + " FROM leads" + clause + " ORDER BY updated_at DESC, id LIMIT ? OFFSET ?"
	args = append(args, opts.Limit, opts.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	leads := []model.Lead{}
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, l)
	}
	return leads, rows.Err()
}

func (s *Store) Get(ctx context.Context, id string) (*model.Lead, error) {
	l, err := scanLead(s.db.QueryRowContext(ctx, "SELECT "+leadColumns+" FROM leads WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (s *Store) Create(ctx context.Context, req model.CreateRequest) (*model.Lead, error) {
	now := s.now().UTC().Format(timeFormat)
	id := generateID()

	status := req.Status
	if status == "" {
		status = string(model.StatusNew)
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO leads (id, position, company, location, url, status, tags, platform, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		id, req.Position, req.Company, req.Location, req.URL, status, model.JoinList(req.Tags), req.Platform, now, now,
	)
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, id)
}

// columnValue converts a validated patch value into what the column stores.
func columnValue(field string, v any) any {
	switch field {
	case "tags":
		return model.JoinList(model.ListFrom(v))
	case "requirements", "benefits":
		return encodeJSON(model.ListFrom(v))
	case "contact_info":
		return encodeJSON(model.ContactFrom(v))
	case "custom_fields":
		return encodeJSON(model.CustomFieldsFrom(v))
	default:
		return v
	}
}

// Update applies a partial update. Fields that are not editable are
// ignored; the patch must already be validated.
func (s *Store) Update(ctx context.Context, id string, patch model.Patch) (*model.Lead, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	existing, err := scanLead(tx.QueryRowContext(ctx, "SELECT "+leadColumns+" FROM leads WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var setClauses []string
	var args []any
	for _, field := range patch.Keys() {
		if !model.Editable(field) {
			continue
		}
		setClauses = append(setClauses, field+" = ?")
		args = append(args, columnValue(field, patch[field]))
	}

	if len(setClauses) == 0 {
		return &existing, nil
	}

	setClauses = append(setClauses, "updated_at = ?")
	args = append(args, s.now().UTC().Format(timeFormat))
	args = append(args, id)

	query := fmt.Sprintf("UPDATE leads SET %s WHERE id = ?", strings.Join(setClauses, ", "))
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return nil, err
	}

	updated, err := scanLead(tx.QueryRowContext(ctx, "SELECT "+leadColumns+" FROM leads WHERE id = ?", id))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}

	return &updated, nil
}

func (s *Store) Stats(ctx context.Context) (*model.StatsResponse, error) {
	resp := &model.StatsResponse{
		ByStatus: make(map[model.Status]int),
	}

	for status := range model.ValidStatuses {
		resp.ByStatus[status] = 0
	}

	rows, err := s.db.QueryContext(ctx, "SELECT status, COUNT(*) as count FROM leads GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("querying status counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scanning status count: %w", err)
		}
		resp.ByStatus[model.Status(status)] = count
		resp.Total += count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating status counts: %w", err)
	}

	err = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM leads WHERE response_received = 1").Scan(&resp.ResponsesTotal)
	if err != nil {
		return nil, fmt.Errorf("querying responses: %w", err)
	}

	now := s.now().UTC().Format(time.RFC3339)
	err = s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM leads WHERE follow_up_date IS NOT NULL AND follow_up_date >= ?", now,
	).Scan(&resp.FollowUpsPending)
	if err != nil {
		return nil, fmt.Errorf("querying pending follow-ups: %w", err)
	}

	return resp, nil
}

func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM leads WHERE id = ?", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
