// Package app wires the planner, the renderer, the exporter and the metrics
// store behind the operations the front-ends call.
package app

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"gourmet-guide/internal/export"
	"gourmet-guide/internal/mealplan"
	"gourmet-guide/internal/metrics"
	"gourmet-guide/internal/planner"
	"gourmet-guide/internal/shared"
)

// PlanRequester produces raw plan replies.
type PlanRequester interface {
	RequestPlan(ctx context.Context, req planner.Request) (planner.Reply, error)
}

// MetricsRecorder stores execution metadata.
type MetricsRecorder interface {
	RecordMeta(ctx context.Context, meta shared.AgentMeta) error
}

// UsageReader reads aggregated usage back.
type UsageReader interface {
	GetDailyUsage(ctx context.Context, days int) ([]metrics.DailyUsage, error)
}

// App holds the application's dependencies. The metrics fields may be nil.
type App struct {
	planner  PlanRequester
	exporter *export.Exporter
	recorder MetricsRecorder
	usage    UsageReader
	dbPath   string

	pending sync.WaitGroup
}

// Option customizes an App.
type Option func(*App)

// WithMetrics records every generation in store and serves usage from it.
// dbPath is only used to report the database size.
func WithMetrics(store *metrics.Store, dbPath string) Option {
	return func(a *App) {
		a.recorder = store
		a.usage = store
		a.dbPath = dbPath
	}
}

// WithRecorder records generations without exposing usage.
func WithRecorder(r MetricsRecorder) Option {
	return func(a *App) { a.recorder = r }
}

// NewApp creates an App around p.
func NewApp(p PlanRequester, opts ...Option) *App {
	a := &App{planner: p, exporter: export.NewExporter()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// GeneratePlan requests a plan and returns the raw reply text. Metrics and
// structural checks never change the result.
func (a *App) GeneratePlan(ctx context.Context, req planner.Request) (string, error) {
	reply, err := a.planner.RequestPlan(ctx, req)
	a.record(ctx, reply.Meta)
	if err != nil {
		return "", err
	}

	if reply.Meta.Outcome != shared.OutcomeRejected {
		if problems := mealplan.Parse(reply.Text).Check(req.Days); len(problems) > 0 {
			log.Printf("Plan for %d days deviates from the expected shape (%d problems): %v", req.Days, len(problems), problems)
		}
	}
	return reply.Text, nil
}

// record stores meta in the background so a slow database never delays the
// reply. Wait blocks until every pending write is done.
func (a *App) record(ctx context.Context, meta shared.AgentMeta) {
	if a.recorder == nil || meta.AgentName == "" {
		return
	}
	// Recording must not be cut short by a request that already timed out.
	ctx = context.WithoutCancel(ctx)
	a.pending.Add(1)
	go func() {
		defer a.pending.Done()
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := a.recorder.RecordMeta(ctx, meta); err != nil {
			log.Printf("Warning: failed to record metrics for %s: %v", meta.AgentName, err)
			return
		}
		log.Printf("Recorded %s run: %s in %s, %d tokens", meta.AgentName, meta.Outcome, meta.Latency.Round(time.Millisecond), meta.Usage.Total())
	}()
}

// Wait blocks until all background metric writes have finished. Call it
// before closing the metrics store.
func (a *App) Wait() {
	a.pending.Wait()
}

// RenderHTML returns the sanitized HTML fragment for a raw reply.
func (a *App) RenderHTML(raw string) string {
	return mealplan.RenderHTML(raw)
}

// ExportPDF parses raw and writes it as a PDF to w.
func (a *App) ExportPDF(w io.Writer, raw string) error {
	if err := a.exporter.Export(w, mealplan.Parse(raw)); err != nil {
		return fmt.Errorf("failed to export plan: %w", err)
	}
	return nil
}

// UsageReport summarizes the last days days of usage and the process health.
func (a *App) UsageReport(ctx context.Context, days int) (string, error) {
	if a.usage == nil {
		return "", fmt.Errorf("metrics are not enabled")
	}
	usage, err := a.usage.GetDailyUsage(ctx, days)
	if err != nil {
		return "", err
	}
	return metrics.Report(usage, metrics.GetSysHealth(a.dbPath)), nil
}
