// Package telegram serves meal plans to an allow-listed set of Telegram users
// through a webhook.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"log"
	"net/http"
	"sync"

	"gourmet-guide/internal/config"
	"gourmet-guide/internal/mealplan"
	"gourmet-guide/internal/planner"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	genericFailure = "An error occurred."
	usageText      = "Send the ingredients you have and, optionally, how many days to plan:\n\n<code>rice, chicken, broccoli | 3</code>"
)

// Service is what the bot needs from the application.
type Service interface {
	GeneratePlan(ctx context.Context, req planner.Request) (string, error)
	RenderHTML(raw string) string
	ExportPDF(w io.Writer, raw string) error
	UsageReport(ctx context.Context, days int) (string, error)
}

// Sender delivers messages; *tgbotapi.BotAPI satisfies it.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Bot answers plan requests sent to the webhook.
type Bot struct {
	api     Sender
	svc     Service
	allowed map[int64]bool
	adminID int64

	wg sync.WaitGroup
}

// NewBot authorizes against the Bot API and points the webhook at
// cfg.TelegramWebhookURL.
func NewBot(cfg *config.Config, svc Service) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}
	log.Printf("Authorized on account %s", api.Self.UserName)

	wh, err := tgbotapi.NewWebhook(cfg.TelegramWebhookURL)
	if err != nil {
		return nil, fmt.Errorf("invalid webhook url %s: %w", cfg.TelegramWebhookURL, err)
	}
	resp, err := api.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.TelegramWebhookURL, err)
	}
	log.Printf("Webhook set response: %s", resp.Description)

	return New(api, svc, cfg.TelegramAllowedUserIDs, cfg.AdminTelegramID), nil
}

// New creates a Bot around an existing sender.
func New(api Sender, svc Service, allowedIDs []int64, adminID int64) *Bot {
	allowed := make(map[int64]bool, len(allowedIDs)+1)
	for _, id := range allowedIDs {
		allowed[id] = true
	}
	if adminID != 0 {
		allowed[adminID] = true
	}
	return &Bot{api: api, svc: svc, allowed: allowed, adminID: adminID}
}

// Register adds the webhook route to mux.
func (b *Bot) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /webhook", b.handleWebhook)
}

// Wait blocks until every in-flight message has been answered.
func (b *Bot) Wait() {
	b.wg.Wait()
}

func (b *Bot) handleWebhook(w http.ResponseWriter, r *http.Request) {
	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		log.Printf("Error parsing update: %v", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusOK)

	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}
	if !b.allowed[msg.From.ID] {
		log.Printf("Unauthorized access attempt from UserID: %d", msg.From.ID)
		return
	}

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.HandleMessage(context.Background(), msg)
	}()
}

// HandleMessage answers one message from an allowed user.
func (b *Bot) HandleMessage(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start", "help":
		b.sendHTML(msg.Chat.ID, usageText)
		return
	case "metrics":
		b.handleMetrics(ctx, msg)
		return
	}

	req, err := ParseRequest(msg.Text)
	if err != nil {
		b.sendHTML(msg.Chat.ID, usageText)
		return
	}
	b.handlePlan(ctx, msg.Chat.ID, req)
}

func (b *Bot) handlePlan(ctx context.Context, chatID int64, req planner.Request) {
	status, err := b.api.Send(tgbotapi.NewMessage(chatID, fmt.Sprintf("🧑‍🍳 Planning %d days of meals...", req.Days)))
	if err != nil {
		log.Printf("Failed to send initial reply: %v", err)
		return
	}

	raw, err := b.svc.GeneratePlan(ctx, req)
	if err != nil {
		log.Printf("Error generating plan: %v", err)
		b.edit(chatID, status.MessageID, genericFailure, "")
		return
	}

	if mealplan.IsRejection(raw) {
		b.edit(chatID, status.MessageID, raw, "")
		return
	}

	text, err := FormatHTML(b.svc.RenderHTML(raw))
	if err != nil || text == "" {
		log.Printf("Error formatting plan: %v", err)
		b.edit(chatID, status.MessageID, genericFailure, "")
		return
	}

	chunks := splitMessage(text, maxMessageLen)
	b.edit(chatID, status.MessageID, chunks[0], tgbotapi.ModeHTML)
	for _, chunk := range chunks[1:] {
		b.sendHTML(chatID, chunk)
	}

	var pdf bytes.Buffer
	if err := b.svc.ExportPDF(&pdf, raw); err != nil {
		log.Printf("Error exporting plan: %v", err)
		return
	}
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: "meal_plan.pdf", Bytes: pdf.Bytes()})
	if _, err := b.api.Send(doc); err != nil {
		log.Printf("Failed to send plan document: %v", err)
	}
}

func (b *Bot) handleMetrics(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil || msg.From.ID != b.adminID {
		b.send(tgbotapi.NewMessage(msg.Chat.ID, "⛔ Access denied: admin only."))
		return
	}

	report, err := b.svc.UsageReport(ctx, 7)
	if err != nil {
		log.Printf("Error fetching metrics: %v", err)
		b.send(tgbotapi.NewMessage(msg.Chat.ID, "❌ Error fetching metrics."))
		return
	}
	b.sendHTML(msg.Chat.ID, "📊 <b>Usage &amp; Health Report</b>\n<pre>"+html.EscapeString(report)+"</pre>")
}

func (b *Bot) edit(chatID int64, messageID int, text, mode string) {
	e := tgbotapi.NewEditMessageText(chatID, messageID, text)
	e.ParseMode = mode
	b.send(e)
}

func (b *Bot) sendHTML(chatID int64, text string) {
	m := tgbotapi.NewMessage(chatID, text)
	m.ParseMode = tgbotapi.ModeHTML
	b.send(m)
}

func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.api.Send(c); err != nil {
		log.Printf("Failed to send message: %v", err)
	}
}
