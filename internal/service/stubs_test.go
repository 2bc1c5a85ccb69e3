package service

import (
	"context"
	"errors"
	"strings"

	"pdfchat/internal/domain"
)

type stubLoader struct {
	docs []domain.Document
	err  error
}

func (l stubLoader) Load(context.Context, string) ([]domain.Document, error) {
	return l.docs, l.err
}

// keywordEmbedder maps text onto one axis per keyword plus a constant bias axis.
type keywordEmbedder struct {
	keywords []string
	docCalls int
	qCalls   int
	err      error
}

func (e *keywordEmbedder) vector(text string) []float32 {
	lower := strings.ToLower(text)
	v := make([]float32, len(e.keywords)+1)
	for i, kw := range e.keywords {
		v[i] = float32(strings.Count(lower, kw))
	}
	v[len(e.keywords)] = 0.01
	return v
}

func (e *keywordEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	e.docCalls++
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = e.vector(t)
	}
	return out, nil
}

func (e *keywordEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	e.qCalls++
	if e.err != nil {
		return nil, e.err
	}
	return e.vector(text), nil
}

type stubStore struct {
	batches  [][]domain.Record
	failAt   int // 1-based upsert call that fails, 0 never
	results  []domain.SearchResult
	queryErr error
	resets   int
	events   []string
}

func (s *stubStore) Upsert(_ context.Context, records []domain.Record) error {
	s.events = append(s.events, "upsert")
	if s.failAt > 0 && len(s.batches)+1 == s.failAt {
		return errors.New("connection reset")
	}
	s.batches = append(s.batches, records)
	return nil
}

func (s *stubStore) Query(context.Context, []float32, int) ([]domain.SearchResult, error) {
	return s.results, s.queryErr
}

func (s *stubStore) Reset(context.Context) error {
	s.events = append(s.events, "reset")
	s.resets++
	return nil
}

func (s *stubStore) written() []domain.Record {
	var out []domain.Record
	for _, b := range s.batches {
		out = append(out, b...)
	}
	return out
}

// plainStore has no Reset method.
type plainStore struct{ upserts int }

func (s *plainStore) Upsert(context.Context, []domain.Record) error { s.upserts++; return nil }
func (s *plainStore) Query(context.Context, []float32, int) ([]domain.SearchResult, error) {
	return nil, nil
}

type stubModel struct {
	calls   int
	prompts []string
	reply   func(prompt string) string
	err     error
	panics  bool
}

func (m *stubModel) Generate(_ context.Context, prompt string) (string, error) {
	m.calls++
	m.prompts = append(m.prompts, prompt)
	if m.panics {
		panic("model exploded")
	}
	if m.err != nil {
		return "", m.err
	}
	if m.reply == nil {
		return "ok", nil
	}
	return m.reply(prompt), nil
}

type stubRetriever struct {
	context string
	calls   int
	k       int
}

func (r *stubRetriever) GetContext(_ context.Context, _ string, k int) string {
	r.calls++
	r.k = k
	return r.context
}
