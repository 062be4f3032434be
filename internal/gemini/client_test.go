package gemini

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{APIKey: "k", Model: "gemini-2.0-flash", BaseURL: srv.URL + "/", Timeout: time.Second})
}

func TestExplain(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if r.URL.Path != "/models/gemini-2.0-flash:generateContent" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("x-goog-api-key") != "k" {
			t.Error("missing api key header")
		}
		if r.URL.RawQuery != "" {
			t.Errorf("unexpected query %q", r.URL.RawQuery)
		}
		body, _ := io.ReadAll(r.Body)
		for _, want := range []string{"User is feeling: tired", "User intent: relax", "Movie recommended: Paddington 2"} {
			if !strings.Contains(string(body), want) {
				t.Errorf("prompt missing %q", want)
			}
		}
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"  A gentle bear to hold your evening.\n"}]}}]}`))
	})

	got, err := c.Explain(context.Background(), "Paddington 2", "tired", "relax")
	if err != nil {
		t.Fatalf("Explain: %v", err)
	}
	if got != "A gentle bear to hold your evening." {
		t.Errorf("text = %q", got)
	}
}

func TestExplainEmptyResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	})
	if _, err := c.Explain(context.Background(), "X", "happy", "relax"); !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestExplainStatusError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	_, err := c.Explain(context.Background(), "X", "happy", "relax")
	if err == nil || !strings.Contains(err.Error(), "status 429") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestExplainDisabled(t *testing.T) {
	c := NewClient(Config{})
	if c.Enabled() {
		t.Fatal("expected disabled client")
	}
	if _, err := c.Explain(context.Background(), "X", "happy", ""); !errors.Is(err, ErrDisabled) {
		t.Fatalf("expected ErrDisabled, got %v", err)
	}
}

func TestExplainRespectsContext(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := c.Explain(ctx, "X", "happy", ""); err == nil {
		t.Fatal("expected error on deadline")
	}
}

func TestCircuitOpensAfterConsecutiveFailures(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	for i := 0; i < 5; i++ {
		_, _ = c.Explain(context.Background(), "X", "happy", "")
	}
	_, err := c.Explain(context.Background(), "X", "happy", "")
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("expected open circuit, got %v", err)
	}
	if calls.Load() != 5 {
		t.Errorf("expected 5 upstream calls, got %d", calls.Load())
	}
}

func TestTransportErrorOmitsAPIKey(t *testing.T) {
	c := NewClient(Config{APIKey: "SECRET-API-KEY", Model: "m", BaseURL: "http://127.0.0.1:1", Timeout: time.Second})

	_, err := c.Explain(context.Background(), "Paddington 2", "tired", "relax")
	if err == nil {
		t.Fatal("expected connection error")
	}
	if strings.Contains(err.Error(), "SECRET-API-KEY") {
		t.Errorf("error leaks api key: %v", err)
	}
}
