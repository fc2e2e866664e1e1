// Package metrics keeps per-generation usage counters. Plans themselves are
// never stored.
package metrics

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gourmet-guide/internal/shared"
)

// ExecutionMetric is one row of execution_metrics.
type ExecutionMetric struct {
	AgentName        string
	Model            string
	Outcome          shared.Outcome
	PromptTokens     int
	CompletionTokens int
	LatencyMS        int64
	Timestamp        time.Time
}

// Store persists metrics to SQLite.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// NewStore uses an already migrated connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// Record saves m; a zero Timestamp means now.
func (s *Store) Record(ctx context.Context, m ExecutionMetric) error {
	ts := m.Timestamp
	if ts.IsZero() {
		ts = s.now()
	}
	outcome := m.Outcome
	if outcome == "" {
		outcome = shared.OutcomeOK
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO execution_metrics
			(agent_name, model, outcome, prompt_tokens, completion_tokens, latency_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.AgentName, m.Model, string(outcome), m.PromptTokens, m.CompletionTokens, m.LatencyMS, ts.UTC().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to record metric for %s: %w", m.AgentName, err)
	}
	return nil
}

// RecordMeta records an agent execution.
func (s *Store) RecordMeta(ctx context.Context, meta shared.AgentMeta) error {
	return s.Record(ctx, FromMeta(meta, s.now()))
}

// FromMeta maps execution metadata onto a row stamped at ts. Tokens the
// provider bills beyond prompt and completion (reasoning, for one) count as
// completion so the daily totals match the bill.
func FromMeta(meta shared.AgentMeta, ts time.Time) ExecutionMetric {
	completion := max(meta.Usage.CompletionTokens, meta.Usage.Total()-meta.Usage.PromptTokens)
	return ExecutionMetric{
		AgentName:        meta.AgentName,
		Model:            meta.Usage.Model,
		Outcome:          meta.Outcome,
		PromptTokens:     meta.Usage.PromptTokens,
		CompletionTokens: completion,
		LatencyMS:        meta.Latency.Milliseconds(),
		Timestamp:        ts,
	}
}

// DailyUsage aggregates one UTC day.
type DailyUsage struct {
	Date            string
	Executions      int
	Rejected        int
	Failed          int
	TotalPrompt     int
	TotalCompletion int
	AvgLatencyMS    int64
}

// GetDailyUsage returns per-day totals for the last days days, newest first.
func (s *Store) GetDailyUsage(ctx context.Context, days int) ([]DailyUsage, error) {
	since := s.now().AddDate(0, 0, -days).UTC().Unix()

	rows, err := s.db.QueryContext(ctx, `
		SELECT
			date(created_at, 'unixepoch') AS day,
			COUNT(*),
			SUM(CASE WHEN outcome = 'rejected' THEN 1 ELSE 0 END),
			SUM(CASE WHEN outcome = 'failed' THEN 1 ELSE 0 END),
			COALESCE(SUM(prompt_tokens), 0),
			COALESCE(SUM(completion_tokens), 0),
			CAST(COALESCE(AVG(latency_ms), 0) AS INTEGER)
		FROM execution_metrics
		WHERE created_at >= ?
		GROUP BY day
		ORDER BY day DESC`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily usage: %w", err)
	}
	defer rows.Close()

	var results []DailyUsage
	for rows.Next() {
		var u DailyUsage
		if err := rows.Scan(&u.Date, &u.Executions, &u.Rejected, &u.Failed, &u.TotalPrompt, &u.TotalCompletion, &u.AvgLatencyMS); err != nil {
			return nil, fmt.Errorf("failed to scan daily usage: %w", err)
		}
		results = append(results, u)
	}
	return results, rows.Err()
}

// Cleanup deletes rows older than olderThanDays and reports how many went.
func (s *Store) Cleanup(ctx context.Context, olderThanDays int) (int64, error) {
	threshold := s.now().AddDate(0, 0, -olderThanDays).UTC().Unix()

	res, err := s.db.ExecContext(ctx, `DELETE FROM execution_metrics WHERE created_at < ?`, threshold)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up metrics: %w", err)
	}
	return res.RowsAffected()
}
