package planner

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"gourmet-guide/internal/llm"
	"gourmet-guide/internal/mealplan"
	"gourmet-guide/internal/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockTextGenerator struct {
	Response string
	Err      error
	Delay    time.Duration

	Prompts []string
}

func (m *MockTextGenerator) GenerateContent(ctx context.Context, prompt string) (llm.ContentResponse, error) {
	m.Prompts = append(m.Prompts, prompt)
	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return llm.ContentResponse{}, ctx.Err()
		}
	}
	if m.Err != nil {
		return llm.ContentResponse{}, m.Err
	}
	return llm.ContentResponse{
		Content: m.Response,
		Usage:   shared.TokenUsage{PromptTokens: 10, CompletionTokens: 20, Model: "mock"},
	}, nil
}

func TestBuildPrompt(t *testing.T) {
	prompt, err := BuildPrompt(Request{Ingredients: "chicken, rice, broccoli", Days: 2})
	require.NoError(t, err)

	for _, want := range []string{
		"over 2 days",
		"ONLY the following ingredients: chicken, rice, broccoli",
		`"` + mealplan.Sentinel + `"`,
		`"### 2-Day Meal Plan"`,
		`"### Day X"`,
		"**Breakfast:** Meal - Calories",
		"**Lunch:** Meal - Calories",
		"**Dinner:** Meal - Calories",
		`"####"`,
		"no extra commentary",
	} {
		assert.Contains(t, prompt, want)
	}
}

func TestBuildPrompt_IngredientsNotEscaped(t *testing.T) {
	prompt, err := BuildPrompt(Request{Ingredients: `eggs & "fresh" <herbs>`, Days: 1})
	require.NoError(t, err)
	assert.Contains(t, prompt, `eggs & "fresh" <herbs>`)
}

func TestRequestPlan(t *testing.T) {
	ctx := context.Background()

	t.Run("ReturnsRawTextVerbatim", func(t *testing.T) {
		raw := "  ### 1-Day Meal Plan\n### Day 1\n- **Breakfast:** Eggs - 200 calories\n\n"
		gen := &MockTextGenerator{Response: raw}
		p := NewPlanner(gen, time.Second)

		reply, err := p.RequestPlan(ctx, Request{Ingredients: "eggs", Days: 1})
		require.NoError(t, err)
		assert.Equal(t, raw, reply.Text)
		assert.Equal(t, AgentName, reply.Meta.AgentName)
		assert.Equal(t, 10, reply.Meta.Usage.PromptTokens)
		assert.Equal(t, shared.OutcomeOK, reply.Meta.Outcome)
		require.Len(t, gen.Prompts, 1)
	})

	t.Run("SentinelIsNotTrimmed", func(t *testing.T) {
		gen := &MockTextGenerator{Response: mealplan.Sentinel}
		reply, err := NewPlanner(gen, 0).RequestPlan(ctx, Request{Ingredients: "a bicycle", Days: 3})
		require.NoError(t, err)
		assert.Equal(t, mealplan.Sentinel, reply.Text)
		assert.Equal(t, shared.OutcomeRejected, reply.Meta.Outcome)
	})

	t.Run("InvalidDayCount", func(t *testing.T) {
		for _, days := range []int{0, -1} {
			gen := &MockTextGenerator{Response: "unused"}
			_, err := NewPlanner(gen, 0).RequestPlan(ctx, Request{Ingredients: "eggs", Days: days})
			assert.ErrorIs(t, err, ErrInvalidDayCount)
			assert.Empty(t, gen.Prompts, "no request may be sent for days=%d", days)
		}
	})

	t.Run("TransportFailure", func(t *testing.T) {
		gen := &MockTextGenerator{Err: errors.New("connection refused")}
		reply, err := NewPlanner(gen, 0).RequestPlan(ctx, Request{Ingredients: "eggs", Days: 1})
		assert.ErrorIs(t, err, ErrGenerationFailed)
		assert.True(t, strings.Contains(err.Error(), "connection refused"))
		assert.Equal(t, shared.OutcomeFailed, reply.Meta.Outcome)
	})

	t.Run("EmptyReply", func(t *testing.T) {
		gen := &MockTextGenerator{Response: " \n"}
		_, err := NewPlanner(gen, 0).RequestPlan(ctx, Request{Ingredients: "eggs", Days: 1})
		assert.ErrorIs(t, err, ErrGenerationFailed)
		assert.ErrorIs(t, err, llm.ErrEmptyResponse)
	})

	t.Run("Timeout", func(t *testing.T) {
		gen := &MockTextGenerator{Response: "late", Delay: time.Second}
		start := time.Now()
		_, err := NewPlanner(gen, 20*time.Millisecond).RequestPlan(ctx, Request{Ingredients: "eggs", Days: 1})
		assert.ErrorIs(t, err, ErrGenerationFailed)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Less(t, time.Since(start), 500*time.Millisecond)
	})
}
