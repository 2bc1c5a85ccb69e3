package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

type stubAnswerer struct{ calls int }

func (s *stubAnswerer) Answer(_ context.Context, q string) string {
	s.calls++
	return "Resposta sobre " + q + "."
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func typed(m Model, s string) Model {
	m.input.SetValue(s)
	return m
}

func TestUpdate_QuitKeys(t *testing.T) {
	m := New(context.Background(), &stubAnswerer{}, "document.pdf")
	for _, key := range []tea.KeyType{tea.KeyCtrlC, tea.KeyCtrlD} {
		if _, cmd := m.Update(tea.KeyMsg{Type: key}); !isQuit(cmd) {
			t.Fatalf("expected quit for %v", key)
		}
	}
}

func TestUpdate_ExitWordQuits(t *testing.T) {
	a := &stubAnswerer{}
	m := typed(New(context.Background(), a, "document.pdf"), "  Sair ")
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter}); !isQuit(cmd) {
		t.Fatal("expected quit on exit word")
	}
	if a.calls != 0 {
		t.Fatalf("exit word must not be answered, got %d calls", a.calls)
	}
}

func TestUpdate_EnterAsksOnce(t *testing.T) {
	a := &stubAnswerer{}
	m := typed(New(context.Background(), a, "document.pdf"), "faturamento")
	m.ready = true

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected answer command")
	}
	m = next.(Model)
	if !m.busy || m.input.Value() != "" {
		t.Fatalf("expected busy model with cleared input, got busy=%v input=%q", m.busy, m.input.Value())
	}

	msg := cmd()
	if a.calls != 1 {
		t.Fatalf("expected one answer call, got %d", a.calls)
	}
	next, _ = m.Update(msg)
	m = next.(Model)
	if m.busy || m.answer != "Resposta sobre faturamento." {
		t.Fatalf("unexpected state: busy=%v answer=%q", m.busy, m.answer)
	}
	if !strings.Contains(m.renderAnswer(), "Resposta sobre faturamento.") {
		t.Fatalf("answer not rendered: %q", m.renderAnswer())
	}
}

func TestUpdate_EmptyEnterIsIgnored(t *testing.T) {
	a := &stubAnswerer{}
	m := typed(New(context.Background(), a, "document.pdf"), "   ")
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter}); cmd != nil {
		t.Fatal("expected no command for empty input")
	}
}

func TestHighlightBestSentence_PlainWhenSingleSentence(t *testing.T) {
	text := "O faturamento foi de 10 milhões."
	if got := highlightBestSentence(text, "faturamento"); got != text {
		t.Fatalf("single sentence should be untouched, got %q", got)
	}
}
