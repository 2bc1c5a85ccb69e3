package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"pdfchat/internal/app"
	"pdfchat/internal/config"
	"pdfchat/internal/logger"
	"pdfchat/internal/service"
)

const (
	sampleQuery = "Qual o faturamento da empresa?"
	topK        = 3
	previewLen  = 200
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fatal(slog.Default(), "invalid configuration", err)
	}
	log := logger.New(cfg.Log, os.Stderr)

	query := strings.TrimSpace(strings.Join(os.Args[1:], " "))
	if query == "" {
		query = sampleQuery
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err = run(ctx, cfg, log, query)
	stop()
	if err != nil {
		fatal(log, "search failed", err)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger, query string) error {
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

	fmt.Printf("Testando busca para: '%s'\n", query)
	results := service.NewSearcher(embedder, store, log).Search(ctx, query, topK)
	if len(results) == 0 {
		fmt.Println("Nenhum resultado encontrado.")
		return nil
	}
	fmt.Printf("\nEncontrados %d resultados:\n", len(results))
	for i, r := range results {
		page, ok := r.Metadata["page"]
		if !ok {
			page = "N/A"
		}
		fmt.Printf("\n--- Resultado %d (Score: %.4f) ---\n", i+1, r.Score)
		fmt.Printf("Página: %v\n", page)
		fmt.Println(preview(r.Content, previewLen))
	}
	return nil
}

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func fatal(log *slog.Logger, msg string, err error) {
	log.Error(msg, "error", err)
	os.Exit(1)
}
