package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"gourmet-guide/internal/config"
	"gourmet-guide/internal/server"
	"gourmet-guide/internal/telegram"

	"github.com/spf13/cobra"
)

var serveTelegram bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the meal plan HTTP API",
	Long: `Serves POST /generate-meal-plan, /render-meal-plan and /export-meal-plan
on PORT. With --telegram the bot webhook is mounted on the same server.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Serve only the Telegram webhook",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return RunBot(ctx, cfg)
	},
}

func init() {
	serveCmd.Flags().BoolVar(&serveTelegram, "telegram", false, "also mount the Telegram webhook at /webhook")
	rootCmd.AddCommand(serveCmd, botCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, cleanup, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	api := server.New(a, cfg.AllowedOrigins)
	mux := http.NewServeMux()
	api.Register(mux)

	var bot *telegram.Bot
	if serveTelegram {
		if bot, err = newBot(cfg, a); err != nil {
			return err
		}
		bot.Register(mux)
		defer bot.Wait()
	}

	return server.ListenAndServe(ctx, httpServer(cfg, api.Wrap(mux)))
}

// RunBot serves the Telegram webhook and /health until ctx is cancelled.
func RunBot(ctx context.Context, cfg *config.Config) error {
	a, cleanup, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	bot, err := newBot(cfg, a)
	if err != nil {
		return err
	}
	defer bot.Wait()

	mux := http.NewServeMux()
	bot.Register(mux)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return server.ListenAndServe(ctx, httpServer(cfg, mux))
}

func newBot(cfg *config.Config, svc telegram.Service) (*telegram.Bot, error) {
	if cfg.TelegramBotToken == "" {
		return nil, errors.New("TELEGRAM_BOT_TOKEN environment variable not set")
	}
	return telegram.NewBot(cfg, svc)
}

func httpServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
