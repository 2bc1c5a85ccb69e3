package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"pdfchat/internal/app"
	"pdfchat/internal/config"
	"pdfchat/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fatal(slog.Default(), "invalid configuration", err)
	}
	log := logger.New(cfg.Log, os.Stderr)
	for _, line := range cfg.Describe() {
		log.Debug("configuration", "value", line)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err = run(ctx, cfg, log)
	stop()
	if err != nil {
		fatal(log, "ingestion failed", err)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	ingestor, err := app.NewIngestor(cfg, log)
	if err != nil {
		return err
	}
	chunks, err := ingestor.Chunks(ctx, cfg.Ingest.PDFPath)
	if err != nil {
		return err
	}
	if len(chunks) == 0 {
		fmt.Printf("Nenhum chunk foi criado a partir de %s; nada a ingerir.\n", cfg.Ingest.PDFPath)
		return nil
	}

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

	report, err := ingestor.Index(ctx, chunks, embedder, store)
	if err != nil {
		return fmt.Errorf("%d of %d chunks written: %w", report.Written, report.Chunks, err)
	}
	fmt.Printf("✅ Ingestão concluída: %d chunks gravados na coleção %q.\n", report.Written, cfg.VectorStore.Collection)
	return nil
}

func fatal(log *slog.Logger, msg string, err error) {
	log.Error(msg, "error", err)
	os.Exit(1)
}
