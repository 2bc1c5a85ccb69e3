package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"pdfchat/internal/domain"
)

const (
	// RefusalMessage is returned when the retrieved context does not hold the answer.
	RefusalMessage = "Não tenho informações necessárias para responder sua pergunta."
	// ErrorMessage is returned when any step of answering fails.
	ErrorMessage = "Desculpe, ocorreu um erro ao processar sua pergunta."
)

// promptTemplate takes the context and the question, in that order.
const promptTemplate = `CONTEXTO:
%s

REGRAS:
- Responda somente com base no CONTEXTO.
- Se a informação não estiver explicitamente no CONTEXTO, responda:
  "Não tenho informações necessárias para responder sua pergunta."
- Nunca invente ou use conhecimento externo.
- Nunca produza opiniões ou interpretações além do que está escrito.

EXEMPLOS DE PERGUNTAS FORA DO CONTEXTO:
Pergunta: "Qual é a capital da França?"
Resposta: "Não tenho informações necessárias para responder sua pergunta."

Pergunta: "Quantos clientes temos em 2024?"
Resposta: "Não tenho informações necessárias para responder sua pergunta."

Pergunta: "Você acha isso bom ou ruim?"
Resposta: "Não tenho informações necessárias para responder sua pergunta."

PERGUNTA DO USUÁRIO:
%s

RESPONDA A "PERGUNTA DO USUÁRIO"`

// RenderPrompt fills the grounding template. Both values are inserted verbatim.
func RenderPrompt(context, question string) string {
	return fmt.Sprintf(promptTemplate, context, question)
}

// ContextRetriever supplies the context block for a question.
type ContextRetriever interface {
	GetContext(ctx context.Context, query string, k int) string
}

// Answerer answers questions from retrieved context only.
type Answerer struct {
	retriever ContextRetriever
	model     domain.LanguageModel
	topK      int
	log       *slog.Logger
}

func NewAnswerer(retriever ContextRetriever, model domain.LanguageModel, topK int, log *slog.Logger) *Answerer {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Answerer{retriever: retriever, model: model, topK: topK, log: log}
}

// Answer returns the model answer for question. Callers tell outcomes apart
// by comparing with RefusalMessage and ErrorMessage.
func (a *Answerer) Answer(ctx context.Context, question string) (answer string) {
	defer func() {
		if rec := recover(); rec != nil {
			a.log.Error("failed to process question", "panic", rec)
			answer = ErrorMessage
		}
	}()

	contextText := a.retriever.GetContext(ctx, question, a.topK)
	if contextText == "" {
		return RefusalMessage
	}

	out, err := a.model.Generate(ctx, RenderPrompt(contextText, question))
	if err != nil {
		a.log.Error("failed to process question", "error", err)
		return ErrorMessage
	}
	return normalizeRefusal(out)
}

// normalizeRefusal maps a quoted or padded refusal back to the exact literal.
// Any other output is returned untouched.
func normalizeRefusal(out string) string {
	t := strings.TrimSpace(out)
	t = strings.Trim(t, "\"'“”")
	if strings.TrimSpace(t) == RefusalMessage {
		return RefusalMessage
	}
	return out
}
