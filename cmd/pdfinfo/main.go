package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"unicode/utf8"

	"pdfchat/internal/chunker"
	"pdfchat/internal/config"
	"pdfchat/internal/loader"
	"pdfchat/internal/logger"
	"pdfchat/internal/summarizer"
)

const previewLen = 200

func main() {
	cfg, err := config.Read()
	if err != nil {
		fatal(slog.Default(), "invalid configuration", err)
	}
	log := logger.New(cfg.Log, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err = run(ctx, cfg, log)
	stop()
	if err != nil {
		fatal(log, "could not inspect PDF", err)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	path := cfg.Ingest.PDFPath
	_, statErr := os.Stat(path)
	fmt.Printf("Carregando PDF: %s\n", path)
	fmt.Printf("Arquivo existe: %t\n", statErr == nil)
	if errors.Is(statErr, os.ErrNotExist) {
		return nil
	}

	docs, err := loader.NewPDFLoader(log).Load(ctx, path)
	if err != nil {
		fmt.Printf("❌ Erro ao carregar PDF: %v\n", err)
		return nil
	}
	fmt.Printf("Número de páginas carregadas: %d\n", len(docs))
	if len(docs) == 0 {
		fmt.Println("❌ Nenhum documento foi carregado do PDF!")
		return nil
	}
	first := docs[0].Content
	fmt.Printf("Primeira página - tamanho do conteúdo: %d\n", utf8.RuneCountInString(first))
	fmt.Printf("Primeiros %d caracteres: %s\n", previewLen, head(first, previewLen))

	var all strings.Builder
	for _, d := range docs {
		all.WriteString(d.Content)
		all.WriteString("\n")
	}
	fmt.Printf("Resumo: %s\n", summarizer.Summarize(all.String(), 3))

	chunks := chunker.NewRecursiveChunker(cfg.Chunker.ChunkSize, cfg.Chunker.ChunkOverlap).Split(docs)
	fmt.Printf("Número de chunks criados: %d\n", len(chunks))
	if len(chunks) > 0 {
		fmt.Printf("Primeiro chunk - tamanho: %d\n", utf8.RuneCountInString(chunks[0].Content))
		fmt.Printf("Primeiro chunk - conteúdo: %s\n", head(chunks[0].Content, previewLen))
	}
	return nil
}

func head(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func fatal(log *slog.Logger, msg string, err error) {
	log.Error(msg, "error", err)
	os.Exit(1)
}
