package store

import (
	"context"
	"database/sql"
	"fmt"
	"maps"
	"slices"

	"github.com/roach88/lowerc/internal/compiler"
)

// WriteReport records a session report in one transaction.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - writing the same
// session twice leaves the first record untouched.
func (s *Store) WriteReport(ctx context.Context, r *compiler.Report) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write report: begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO sessions
		(id, started_at, finished_at, translator_version, program_hash, config_hash, error_code, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		r.SessionID,
		formatTime(r.StartedAt),
		formatTime(r.FinishedAt),
		r.TranslatorVersion,
		r.ProgramHash,
		r.ConfigHash,
		r.ErrorCode,
		r.Error,
	)
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("write report: %w", err)
	} else if n == 0 {
		return nil
	}

	if err := writeChildren(ctx, tx, r); err != nil {
		return fmt.Errorf("write report %s: %w", r.SessionID, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write report: commit: %w", err)
	}
	return nil
}

func writeChildren(ctx context.Context, tx *sql.Tx, r *compiler.Report) error {
	id := r.SessionID
	for i, name := range r.Classes {
		if err := exec(ctx, tx, `INSERT INTO session_classes (session_id, seq, name, skipped) VALUES (?, ?, ?, ?)`,
			id, i, name, boolToInt(false)); err != nil {
			return err
		}
	}
	for i, name := range r.Skipped {
		if err := exec(ctx, tx, `INSERT INTO session_classes (session_id, seq, name, skipped) VALUES (?, ?, ?, ?)`,
			id, i, name, boolToInt(true)); err != nil {
			return err
		}
	}
	for i, v := range r.Violations {
		if err := exec(ctx, tx, `INSERT INTO violations (session_id, seq, policy, class, message) VALUES (?, ?, ?, ?, ?)`,
			id, i, v.Policy, v.Class, v.Message); err != nil {
			return err
		}
	}
	for i, w := range r.Warnings {
		if err := exec(ctx, tx, `INSERT INTO warnings (session_id, seq, class, method, message) VALUES (?, ?, ?, ?, ?)`,
			id, i, w.Class, w.Method, w.Message); err != nil {
			return err
		}
	}
	for i, v := range r.Validation {
		if err := exec(ctx, tx, `INSERT INTO validation_errors (session_id, seq, code, field, message) VALUES (?, ?, ?, ?, ?)`,
			id, i, v.Code, v.Field, v.Message); err != nil {
			return err
		}
	}
	for _, name := range slices.Sorted(maps.Keys(r.Counters)) {
		if err := exec(ctx, tx, `INSERT INTO counters (session_id, name, value) VALUES (?, ?, ?)`,
			id, name, r.Counters[name]); err != nil {
			return err
		}
	}
	for i, u := range r.Units {
		if err := exec(ctx, tx, `INSERT INTO units (session_id, seq, name, hash, bytes) VALUES (?, ?, ?, ?, ?)`,
			id, i, u.Name, u.Hash, u.Bytes); err != nil {
			return err
		}
	}
	return nil
}

func exec(ctx context.Context, tx *sql.Tx, query string, args ...any) error {
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("exec %q: %w", query, err)
	}
	return nil
}
