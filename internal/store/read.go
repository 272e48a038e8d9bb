package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/lowerc/internal/compiler"
	"github.com/roach88/lowerc/internal/diag"
	"github.com/roach88/lowerc/internal/semantic"
)

// SessionSummary is one row of ListSessions.
type SessionSummary struct {
	ID          string    `json:"id"`
	StartedAt   time.Time `json:"started_at"`
	ProgramHash string    `json:"program_hash"`
	Classes     int       `json:"classes"`
	Units       int       `json:"units"`
	Violations  int       `json:"violations"`
	ErrorCode   string    `json:"error_code,omitempty"`
}

// ReadReport returns the report recorded for a session, or ErrNotFound.
func (s *Store) ReadReport(ctx context.Context, id string) (*compiler.Report, error) {
	r := &compiler.Report{SessionID: id, Counters: make(map[string]int64)}

	var started, finished string
	err := s.db.QueryRowContext(ctx, `
		SELECT started_at, finished_at, translator_version, program_hash, config_hash, error_code, error
		FROM sessions
		WHERE id = ?
	`, id).Scan(&started, &finished, &r.TranslatorVersion, &r.ProgramHash, &r.ConfigHash, &r.ErrorCode, &r.Error)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("read session %s: %w", id, err)
	}
	if r.StartedAt, err = parseTime(started); err != nil {
		return nil, err
	}
	if r.FinishedAt, err = parseTime(finished); err != nil {
		return nil, err
	}

	readers := []func(context.Context, *compiler.Report) error{
		s.readClasses,
		s.readViolations,
		s.readWarnings,
		s.readValidation,
		s.readCounters,
		s.readUnits,
	}
	for _, read := range readers {
		if err := read(ctx, r); err != nil {
			return nil, fmt.Errorf("read session %s: %w", id, err)
		}
	}
	return r, nil
}

// LatestSession returns the most recently recorded session ID, or
// ErrNotFound for an empty ledger.
func (s *Store) LatestSession(ctx context.Context) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `SELECT id FROM sessions ORDER BY rowid DESC LIMIT 1`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("latest session: %w", err)
	}
	return id, nil
}

// ListSessions returns every session in insertion order.
// Returns an empty slice (not nil) for an empty ledger.
func (s *Store) ListSessions(ctx context.Context) ([]SessionSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.started_at, s.program_hash, s.error_code,
		       (SELECT COUNT(*) FROM session_classes c WHERE c.session_id = s.id AND c.skipped = 0),
		       (SELECT COUNT(*) FROM units u WHERE u.session_id = s.id),
		       (SELECT COUNT(*) FROM violations v WHERE v.session_id = s.id)
		FROM sessions s
		ORDER BY s.rowid ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	out := []SessionSummary{}
	for rows.Next() {
		var sum SessionSummary
		var started string
		if err := rows.Scan(&sum.ID, &started, &sum.ProgramHash, &sum.ErrorCode, &sum.Classes, &sum.Units, &sum.Violations); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		if sum.StartedAt, err = parseTime(started); err != nil {
			return nil, err
		}
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return out, nil
}

// SessionsEmitting returns the sessions that emitted a unit with the given
// content hash, in insertion order.
func (s *Store) SessionsEmitting(ctx context.Context, hash string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT u.session_id
		FROM units u JOIN sessions s ON s.id = u.session_id
		WHERE u.hash = ?
		ORDER BY s.rowid ASC
	`, hash)
	if err != nil {
		return nil, fmt.Errorf("query units: %w", err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan unit: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// each runs query for r's session and calls scan per row.
func (s *Store) each(ctx context.Context, r *compiler.Report, query string, scan func(*sql.Rows) error) error {
	rows, err := s.db.QueryContext(ctx, query, r.SessionID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (s *Store) readClasses(ctx context.Context, r *compiler.Report) error {
	return s.each(ctx, r, `
		SELECT name, skipped FROM session_classes WHERE session_id = ? ORDER BY skipped ASC, seq ASC
	`, func(rows *sql.Rows) error {
		var name string
		var skipped int
		if err := rows.Scan(&name, &skipped); err != nil {
			return err
		}
		if skipped != 0 {
			r.Skipped = append(r.Skipped, name)
		} else {
			r.Classes = append(r.Classes, name)
		}
		return nil
	})
}

func (s *Store) readViolations(ctx context.Context, r *compiler.Report) error {
	return s.each(ctx, r, `
		SELECT policy, class, message FROM violations WHERE session_id = ? ORDER BY seq ASC
	`, func(rows *sql.Rows) error {
		var v diag.Violation
		if err := rows.Scan(&v.Policy, &v.Class, &v.Message); err != nil {
			return err
		}
		r.Violations = append(r.Violations, v)
		return nil
	})
}

func (s *Store) readWarnings(ctx context.Context, r *compiler.Report) error {
	return s.each(ctx, r, `
		SELECT class, method, message FROM warnings WHERE session_id = ? ORDER BY seq ASC
	`, func(rows *sql.Rows) error {
		var w diag.Warning
		if err := rows.Scan(&w.Class, &w.Method, &w.Message); err != nil {
			return err
		}
		r.Warnings = append(r.Warnings, w)
		return nil
	})
}

func (s *Store) readValidation(ctx context.Context, r *compiler.Report) error {
	return s.each(ctx, r, `
		SELECT code, field, message FROM validation_errors WHERE session_id = ? ORDER BY seq ASC
	`, func(rows *sql.Rows) error {
		var v semantic.ValidationError
		if err := rows.Scan(&v.Code, &v.Field, &v.Message); err != nil {
			return err
		}
		r.Validation = append(r.Validation, v)
		return nil
	})
}

func (s *Store) readCounters(ctx context.Context, r *compiler.Report) error {
	return s.each(ctx, r, `
		SELECT name, value FROM counters WHERE session_id = ? ORDER BY name ASC
	`, func(rows *sql.Rows) error {
		var name string
		var value int64
		if err := rows.Scan(&name, &value); err != nil {
			return err
		}
		r.Counters[name] = value
		return nil
	})
}

func (s *Store) readUnits(ctx context.Context, r *compiler.Report) error {
	return s.each(ctx, r, `
		SELECT name, hash, bytes FROM units WHERE session_id = ? ORDER BY seq ASC
	`, func(rows *sql.Rows) error {
		var u compiler.UnitRecord
		if err := rows.Scan(&u.Name, &u.Hash, &u.Bytes); err != nil {
			return err
		}
		r.Units = append(r.Units, u)
		return nil
	})
}
