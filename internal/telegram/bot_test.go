package telegram

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"gourmet-guide/internal/mealplan"
	"gourmet-guide/internal/planner"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []tgbotapi.Chattable
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	return tgbotapi.Message{MessageID: len(f.sent)}, nil
}

func (f *fakeSender) messages() []tgbotapi.Chattable {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]tgbotapi.Chattable(nil), f.sent...)
}

type stubService struct {
	raw    string
	err    error
	report string

	mu   sync.Mutex
	reqs []planner.Request
}

func (s *stubService) GeneratePlan(ctx context.Context, req planner.Request) (string, error) {
	s.mu.Lock()
	s.reqs = append(s.reqs, req)
	s.mu.Unlock()
	return s.raw, s.err
}

func (s *stubService) RenderHTML(raw string) string { return mealplan.RenderHTML(raw) }

func (s *stubService) ExportPDF(w io.Writer, raw string) error {
	_, err := io.WriteString(w, "%PDF-1.3")
	return err
}

func (s *stubService) UsageReport(ctx context.Context, days int) (string, error) {
	if s.report == "" {
		return "", errors.New("metrics are not enabled")
	}
	return s.report, nil
}

const (
	userID  = int64(42)
	adminID = int64(7)
)

func message(from int64, text string) *tgbotapi.Message {
	msg := &tgbotapi.Message{
		MessageID: 1,
		From:      &tgbotapi.User{ID: from},
		Chat:      &tgbotapi.Chat{ID: from},
		Text:      text,
	}
	if strings.HasPrefix(text, "/") {
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(text)}}
	}
	return msg
}

func TestHandleMessage_Plan(t *testing.T) {
	api := &fakeSender{}
	svc := &stubService{raw: twoDayReply}
	New(api, svc, []int64{userID}, adminID).HandleMessage(context.Background(), message(userID, "rice, chicken, broccoli | 2"))

	require.Equal(t, []planner.Request{{Ingredients: "rice, chicken, broccoli", Days: 2}}, svc.reqs)

	sent := api.messages()
	require.Len(t, sent, 3)
	assert.IsType(t, tgbotapi.MessageConfig{}, sent[0])

	edit, ok := sent[1].(tgbotapi.EditMessageTextConfig)
	require.True(t, ok)
	assert.Equal(t, 1, edit.MessageID)
	assert.Equal(t, tgbotapi.ModeHTML, edit.ParseMode)
	assert.Contains(t, edit.Text, "<b>Day 2</b>")

	doc, ok := sent[2].(tgbotapi.DocumentConfig)
	require.True(t, ok)
	file, ok := doc.File.(tgbotapi.FileBytes)
	require.True(t, ok)
	assert.Equal(t, "meal_plan.pdf", file.Name)
}

func TestHandleMessage_Sentinel(t *testing.T) {
	api := &fakeSender{}
	New(api, &stubService{raw: mealplan.Sentinel}, []int64{userID}, 0).HandleMessage(context.Background(), message(userID, "a bicycle | 3"))

	sent := api.messages()
	require.Len(t, sent, 2)
	edit := sent[1].(tgbotapi.EditMessageTextConfig)
	assert.Equal(t, mealplan.Sentinel, edit.Text)
	assert.Empty(t, edit.ParseMode)
}

func TestHandleMessage_Failure(t *testing.T) {
	api := &fakeSender{}
	svc := &stubService{err: errors.New("upstream 503: internal detail")}
	New(api, svc, []int64{userID}, 0).HandleMessage(context.Background(), message(userID, "rice"))

	require.Equal(t, DefaultDays, svc.reqs[0].Days)
	sent := api.messages()
	require.Len(t, sent, 2)
	assert.Equal(t, genericFailure, sent[1].(tgbotapi.EditMessageTextConfig).Text)
}

func TestHandleMessage_BadRequestShowsUsage(t *testing.T) {
	api := &fakeSender{}
	svc := &stubService{}
	New(api, svc, []int64{userID}, 0).HandleMessage(context.Background(), message(userID, "rice | lots"))

	assert.Empty(t, svc.reqs)
	sent := api.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, usageText, sent[0].(tgbotapi.MessageConfig).Text)
}

func TestHandleMessage_Metrics(t *testing.T) {
	svc := &stubService{report: "Usage\n  2024-03-10: 1 plans"}

	api := &fakeSender{}
	New(api, svc, []int64{userID}, adminID).HandleMessage(context.Background(), message(userID, "/metrics"))
	require.Len(t, api.messages(), 1)
	assert.Contains(t, api.messages()[0].(tgbotapi.MessageConfig).Text, "Access denied")

	api = &fakeSender{}
	New(api, svc, []int64{userID}, adminID).HandleMessage(context.Background(), message(adminID, "/metrics"))
	require.Len(t, api.messages(), 1)
	assert.Contains(t, api.messages()[0].(tgbotapi.MessageConfig).Text, "2024-03-10: 1 plans")
}

func TestWebhook(t *testing.T) {
	update := func(from int64) string {
		id := strconv.FormatInt(from, 10)
		return `{"update_id":1,"message":{"message_id":1,"from":{"id":` + id +
			`,"is_bot":false,"first_name":"A"},"chat":{"id":` + id +
			`,"type":"private"},"date":0,"text":"rice | 1"}}`
	}

	t.Run("Unauthorized", func(t *testing.T) {
		api := &fakeSender{}
		svc := &stubService{raw: twoDayReply}
		bot := New(api, svc, []int64{userID}, 0)
		mux := http.NewServeMux()
		bot.Register(mux)

		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(update(999))))
		bot.Wait()

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, api.messages())
		assert.Empty(t, svc.reqs)
	})

	t.Run("Authorized", func(t *testing.T) {
		api := &fakeSender{}
		svc := &stubService{raw: twoDayReply}
		bot := New(api, svc, []int64{userID}, 0)
		mux := http.NewServeMux()
		bot.Register(mux)

		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(update(userID))))
		bot.Wait()

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, api.messages(), 3)
	})

	t.Run("Malformed", func(t *testing.T) {
		bot := New(&fakeSender{}, &stubService{}, nil, 0)
		mux := http.NewServeMux()
		bot.Register(mux)

		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader("{")))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
