package planner

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	"gourmet-guide/internal/llm"
	"gourmet-guide/internal/mealplan"
	"gourmet-guide/internal/shared"
)

//go:embed planner_prompt.md
var plannerPrompt string

var plannerTemplate = template.Must(template.New("planner").Parse(plannerPrompt))

// AgentName identifies planner executions in the metrics store.
const AgentName = "Planner"

var (
	// ErrInvalidDayCount is returned before any network call when Days < 1.
	ErrInvalidDayCount = errors.New("day count must be a positive integer")
	// ErrGenerationFailed covers every transport or endpoint failure.
	ErrGenerationFailed = errors.New("meal plan generation failed")
)

// Request is what the user submits: free-form ingredient text and a day count.
type Request struct {
	Ingredients string `json:"ingredients"`
	Days        int    `json:"daysToPlan"`
}

// Reply is the raw text produced by the model, untouched.
type Reply struct {
	Text string
	Meta shared.AgentMeta
}

type promptData struct {
	Days        int
	Ingredients string
	Sentinel    string
}

// Planner turns a Request into a single instruction for the completion service.
type Planner struct {
	textGen llm.TextGenerator
	timeout time.Duration
}

// NewPlanner creates a new Planner. A zero timeout leaves the deadline to ctx.
func NewPlanner(textGen llm.TextGenerator, timeout time.Duration) *Planner {
	return &Planner{
		textGen: textGen,
		timeout: timeout,
	}
}

// RequestPlan asks the model for a meal plan and blocks until the full reply
// arrives. Failures are reported as ErrGenerationFailed; the cause is wrapped
// for logging only.
func (p *Planner) RequestPlan(ctx context.Context, req Request) (Reply, error) {
	if req.Days < 1 {
		return Reply{}, ErrInvalidDayCount
	}

	prompt, err := BuildPrompt(req)
	if err != nil {
		return Reply{}, err
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := p.textGen.GenerateContent(ctx, prompt)
	meta := shared.AgentMeta{
		AgentName: AgentName,
		Outcome:   shared.OutcomeFailed,
		Usage:     resp.Usage,
		Latency:   time.Since(start),
	}
	if err != nil {
		return Reply{Meta: meta}, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}
	if strings.TrimSpace(resp.Content) == "" {
		return Reply{Meta: meta}, fmt.Errorf("%w: %w", ErrGenerationFailed, llm.ErrEmptyResponse)
	}

	meta.Outcome = shared.OutcomeOK
	if mealplan.IsRejection(resp.Content) {
		meta.Outcome = shared.OutcomeRejected
	}
	return Reply{Text: resp.Content, Meta: meta}, nil
}

// BuildPrompt renders the planning instruction for req.
func BuildPrompt(req Request) (string, error) {
	var buf bytes.Buffer
	err := plannerTemplate.Execute(&buf, promptData{
		Days:        req.Days,
		Ingredients: req.Ingredients,
		Sentinel:    mealplan.Sentinel,
	})
	if err != nil {
		return "", fmt.Errorf("failed to build planner prompt: %w", err)
	}
	return buf.String(), nil
}
