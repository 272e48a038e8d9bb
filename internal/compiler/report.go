package compiler

import (
	"time"

	"github.com/roach88/lowerc/internal/diag"
	"github.com/roach88/lowerc/internal/ir"
	"github.com/roach88/lowerc/internal/semantic"
)

// Report summarizes one session for printing and the ledger.
type Report struct {
	SessionID         string                     `json:"session_id"`
	StartedAt         time.Time                  `json:"started_at"`
	FinishedAt        time.Time                  `json:"finished_at"`
	TranslatorVersion string                     `json:"translator_version"`
	ProgramHash       string                     `json:"program_hash"`
	ConfigHash        string                     `json:"config_hash"`
	Classes           []string                   `json:"classes"`
	Skipped           []string                   `json:"skipped,omitempty"`
	Units             []UnitRecord               `json:"units"`
	Violations        []diag.Violation           `json:"violations"`
	Warnings          []diag.Warning             `json:"warnings,omitempty"`
	Validation        []semantic.ValidationError `json:"validation,omitempty"`
	Counters          map[string]int64           `json:"counters"`
	ErrorCode         string                     `json:"error_code,omitempty"`
	Error             string                     `json:"error,omitempty"`
}

// UnitRecord identifies one emitted unit by content hash.
type UnitRecord struct {
	Name  string `json:"name"`
	Hash  string `json:"hash"`
	Bytes int    `json:"bytes"`
}

// Failed reports whether the session aborted.
func (r *Report) Failed() bool {
	return r.Error != ""
}

// Report summarizes the session. It is valid before, during and after
// Compile.
func (s *Session) Report() *Report {
	r := &Report{
		SessionID:         s.id,
		StartedAt:         s.startedAt,
		FinishedAt:        s.finishedAt,
		TranslatorVersion: ir.TranslatorVersion,
		ProgramHash:       s.programHash,
		ConfigHash:        s.configHash,
		Skipped:           s.skipped,
		Violations:        s.sink.Violations(),
		Warnings:          s.sink.Warnings(),
		Validation:        s.validation,
		Counters:          s.sink.Counters(),
	}
	if s.gen != nil && s.err == nil {
		r.Classes = s.gen.Classes()
	}
	for _, u := range s.Units() {
		r.Units = append(r.Units, UnitRecord{Name: u.Name, Hash: ir.UnitHash(u.Name, u.Text), Bytes: len(u.Text)})
	}
	if s.err != nil {
		r.Error = s.err.Error()
		r.ErrorCode = ErrorCode(s.err)
	}
	return r
}
