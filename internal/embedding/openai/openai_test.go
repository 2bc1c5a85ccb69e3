package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	retries := 0
	c, err := NewClient(Config{BaseURL: srv.URL + "/v1", APIKey: "sk-test", MaxRetries: &retries})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestEmbedDocuments_OrdersByIndex(t *testing.T) {
	var req struct {
		Model string   `json:"model"`
		Input []string `json:"input"`
	}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/embeddings" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","model":"text-embedding-3-small",
			"data":[{"object":"embedding","index":1,"embedding":[0,1]},{"object":"embedding","index":0,"embedding":[1,0]}],
			"usage":{"prompt_tokens":2,"total_tokens":2}}`))
	})

	got, err := c.EmbedDocuments(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("EmbedDocuments: %v", err)
	}
	if req.Model != "text-embedding-3-small" || len(req.Input) != 2 || req.Input[0] != "a" {
		t.Fatalf("unexpected request: %+v", req)
	}
	if len(got) != 2 || got[0][0] != 1 || got[1][1] != 1 {
		t.Fatalf("unexpected vectors: %v", got)
	}
}

func TestEmbedQuery_CountMismatch(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","model":"m","data":[],"usage":{"prompt_tokens":0,"total_tokens":0}}`))
	})
	if _, err := c.EmbedQuery(context.Background(), "q"); err == nil {
		t.Fatal("expected error for missing embedding")
	}
}

func TestEmbed_ServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"invalid api key"}}`, http.StatusUnauthorized)
	})
	if _, err := c.EmbedDocuments(context.Background(), []string{"a"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestEmbedDocuments_EmptyInput(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})
	got, err := c.EmbedDocuments(context.Background(), nil)
	if err != nil || got != nil {
		t.Fatalf("unexpected result: %v, %v", got, err)
	}
}
