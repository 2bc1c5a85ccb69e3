package chat

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Answerer produces the reply printed for one question.
type Answerer interface {
	Answer(ctx context.Context, question string) string
}

var exitWords = map[string]struct{}{"sair": {}, "exit": {}, "quit": {}, "": {}}

// IsExit reports whether the trimmed, case-folded input ends the conversation.
func IsExit(input string) bool {
	_, ok := exitWords[strings.ToLower(strings.TrimSpace(input))]
	return ok
}

const rule = 60

// Loop is a line-oriented question/answer session over a reader and a writer.
type Loop struct {
	answerer Answerer
	in       io.Reader
	out      io.Writer

	title  lipgloss.Style
	hint   lipgloss.Style
	label  lipgloss.Style
	status lipgloss.Style
	faint  lipgloss.Style
}

func New(answerer Answerer, in io.Reader, out io.Writer) *Loop {
	r := lipgloss.NewRenderer(out)
	return &Loop{
		answerer: answerer,
		in:       in,
		out:      out,
		title:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		hint:     r.NewStyle().Foreground(lipgloss.Color("8")),
		label:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("10")),
		status:   r.NewStyle().Foreground(lipgloss.Color("11")),
		faint:    r.NewStyle().Faint(true),
	}
}

// Run reads questions until an exit word, end of input or cancellation of ctx.
// Each other line is answered exactly once, in order.
func (l *Loop) Run(ctx context.Context) error {
	l.banner()

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(l.in)
		sc.Buffer(make([]byte, 64*1024), 1024*1024)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- sc.Err()
	}()

	for {
		fmt.Fprint(l.out, "Faça sua pergunta: ")
		var (
			line string
			ok   bool
		)
		select {
		case <-ctx.Done():
			l.goodbye("\n\n")
			return nil
		case line, ok = <-lines:
		}
		if !ok {
			l.goodbye("\n")
			select {
			case err := <-readErr:
				return err
			default:
				return nil
			}
		}
		if IsExit(line) {
			l.goodbye("\n")
			return nil
		}

		fmt.Fprintln(l.out, "\n"+l.status.Render("🔍 Buscando informações..."))
		answer := l.answerer.Answer(ctx, strings.TrimSpace(line))
		if ctx.Err() != nil {
			l.goodbye("\n\n")
			return nil
		}
		fmt.Fprintf(l.out, "\n%s %s\n", l.label.Render("📋 RESPOSTA:"), answer)
		fmt.Fprintln(l.out, l.faint.Render(strings.Repeat("-", rule)))
	}
}

func (l *Loop) banner() {
	sep := strings.Repeat("=", rule)
	fmt.Fprintln(l.out, sep)
	fmt.Fprintln(l.out, l.title.Render("🤖 CHAT RAG - Pergunte sobre o conteúdo do PDF"))
	fmt.Fprintln(l.out, sep)
	fmt.Fprintln(l.out, l.hint.Render("Digite 'sair' para encerrar o chat")+"\n")
}

func (l *Loop) goodbye(prefix string) {
	fmt.Fprintln(l.out, prefix+"👋 Chat encerrado. Até logo!")
}
