package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"pdfchat/internal/app"
	"pdfchat/internal/chat"
	"pdfchat/internal/config"
	"pdfchat/internal/logger"
	"pdfchat/internal/service"
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
	answerer, closeAll, err := newAnswerer(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeAll()
	return chat.New(answerer, os.Stdin, os.Stdout).Run(ctx)
}

func newAnswerer(ctx context.Context, cfg *config.Config, log *slog.Logger) (*service.Answerer, func(), error) {
	embedder, err := app.NewEmbedder(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("configure embeddings: %w", err)
	}
	store, err := app.NewStore(ctx, cfg)
	if err != nil {
		app.Close(log, embedder)
		return nil, nil, fmt.Errorf("connect vector store: %w", err)
	}
	model, err := app.NewModel(ctx, cfg, log)
	if err != nil {
		app.Close(log, embedder, store)
		return nil, nil, fmt.Errorf("configure language model: %w", err)
	}
	searcher := service.NewSearcher(embedder, store, log)
	closeAll := func() { app.Close(log, model, store, embedder) }
	return service.NewAnswerer(searcher, model, cfg.TopK, log), closeAll, nil
}

func fatal(log *slog.Logger, msg string, err error) {
	log.Error(msg, "error", err)
	os.Exit(1)
}
