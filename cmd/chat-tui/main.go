package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"

	"pdfchat/internal/app"
	"pdfchat/internal/config"
	"pdfchat/internal/logger"
	"pdfchat/internal/service"
	"pdfchat/internal/tui"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fatal(slog.Default(), "invalid configuration", err)
	}
	log := logger.New(cfg.Log, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err = run(ctx, cfg, log)
	stop()
	if err != nil {
		fatal(log, "chat failed", err)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	embedder, err := app.NewEmbedder(ctx, cfg)
	if err != nil {
		return fmt.Errorf("configure embeddings: %w", err)
	}
	defer app.Close(log, embedder)
	store, err := app.NewStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect vector store: %w", err)
	}
	defer app.Close(log, store)
	// nothing may write to the terminal while the program owns it
	quiet := logger.Discard()
	model, err := app.NewModel(ctx, cfg, quiet)
	if err != nil {
		return fmt.Errorf("configure language model: %w", err)
	}
	defer app.Close(log, model)

	answerer := service.NewAnswerer(service.NewSearcher(embedder, store, quiet), model, cfg.TopK, quiet)

	m := tui.New(ctx, answerer, cfg.Ingest.PDFPath)
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func fatal(log *slog.Logger, msg string, err error) {
	log.Error(msg, "error", err)
	os.Exit(1)
}
