package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPProviderGenerateSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("expected bearer auth header, got %q", r.Header.Get("Authorization"))
		}
		var body httpRequestBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode request body: %v", err)
		}
		if body.Prompt != "hello" {
			t.Errorf("expected prompt 'hello', got %q", body.Prompt)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"text": "generated reply"})
	}))
	defer server.Close()

	provider := NewHTTPProvider(server.URL, "test-key", "default-model")
	resp, err := provider.Generate(context.Background(), "hello", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Content != "generated reply" {
		t.Fatalf("unexpected content: %q", resp.Content)
	}
}

func TestHTTPProviderClassifiesServerErrorsAsTemporary(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("down"))
	}))
	defer server.Close()

	provider := NewHTTPProvider(server.URL, "", "model")
	_, err := provider.Generate(context.Background(), "hello", Options{})
	if err == nil {
		t.Fatal("expected error")
	}
	te, ok := err.(TemporaryError)
	if !ok || !te.Temporary() {
		t.Fatalf("expected a temporary error for a 503, got %v", err)
	}
}

func TestHTTPProviderClassifiesClientErrorsAsPermanent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte("bad key"))
	}))
	defer server.Close()

	provider := NewHTTPProvider(server.URL, "bad", "model")
	_, err := provider.Generate(context.Background(), "hello", Options{})
	if err == nil {
		t.Fatal("expected error")
	}
	te, ok := err.(TemporaryError)
	if !ok || te.Temporary() {
		t.Fatalf("expected a permanent error for a 401, got %v", err)
	}
}
