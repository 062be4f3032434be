package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"cinepulse-recommendation-service/internal/models"
	"cinepulse-recommendation-service/internal/tmdb"
)

type fakeGenerator struct {
	text   string
	err    error
	prompt string
}

func (g *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.prompt = prompt
	return g.text, g.err
}

func newTMDBServer(t *testing.T) *tmdb.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("query") {
		case "Paddington 2":
			_, _ = w.Write([]byte(`{"results":[{"id":346648,"title":"Paddington 2","poster_path":"/p2.jpg","release_date":"2017-11-09"}]}`))
		case "Amelie":
			_, _ = w.Write([]byte(`{"results":[{"id":194,"title":"Amélie","release_date":""}]}`))
		default:
			_, _ = w.Write([]byte(`{"results":[]}`))
		}
	}))
	t.Cleanup(srv.Close)
	return tmdb.NewClient("test-key", srv.URL)
}

func chatRequest(content string) models.ChatRequest {
	return models.ChatRequest{Messages: []models.ChatMessage{{Role: "user", Content: content}}}
}

func TestChatReplyWithSuggestions(t *testing.T) {
	gen := &fakeGenerator{text: "Try [[Paddington 2]] for pure warmth, or [[Amelie]] if you want whimsy. [[Nope]] too."}
	svc := NewChatService(gen, newTMDBServer(t))

	resp := svc.Reply(context.Background(), models.ChatRequest{
		Messages: []models.ChatMessage{
			{Role: "user", Content: "something cosy"},
			{Role: "assistant", Content: "Any genre?"},
			{Role: "user", Content: "family"},
		},
		Context: map[string]any{"time_of_day": "night"},
	})

	if resp.Message.Role != "assistant" || resp.Message.Content != gen.text {
		t.Errorf("message = %+v", resp.Message)
	}
	for _, want := range []string{"User: something cosy\nAssistant: Any genre?\nUser: family\nAssistant: ", `"time_of_day":"night"`, "[[Title]]"} {
		if !strings.Contains(gen.prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}

	if len(resp.SuggestedMovies) != 2 {
		t.Fatalf("suggested = %+v", resp.SuggestedMovies)
	}
	first := resp.SuggestedMovies[0]
	if first.ID != 346648 || first.Poster == nil || *first.Poster != models.TMDBImageBaseW200+"/p2.jpg" || first.Year == nil || *first.Year != "2017" {
		t.Errorf("first suggestion = %+v", first)
	}
	second := resp.SuggestedMovies[1]
	if second.Title != "Amélie" || second.Poster != nil || second.Year != nil {
		t.Errorf("second suggestion = %+v", second)
	}
}

func TestChatReplyFallbacks(t *testing.T) {
	resp := NewChatService(nil, nil).Reply(context.Background(), chatRequest("hi"))
	if resp.Message.Content != chatDisabledReply {
		t.Errorf("disabled reply = %q", resp.Message.Content)
	}

	resp = NewChatService(&fakeGenerator{err: errUpstream}, newTMDBServer(t)).Reply(context.Background(), chatRequest("hi"))
	if resp.Message.Content != chatFailureReply {
		t.Errorf("failure reply = %q", resp.Message.Content)
	}
	if resp.SuggestedMovies == nil || len(resp.SuggestedMovies) != 0 {
		t.Errorf("expected empty suggestions, got %#v", resp.SuggestedMovies)
	}
}

func TestChatReplyWithoutTMDB(t *testing.T) {
	svc := NewChatService(&fakeGenerator{text: "Watch [[Paddington 2]]."}, tmdb.NewClient("", "http://127.0.0.1:1"))
	resp := svc.Reply(context.Background(), chatRequest("cheer me up"))
	if len(resp.SuggestedMovies) != 0 {
		t.Errorf("unconfigured TMDB should give no suggestions, got %+v", resp.SuggestedMovies)
	}
}

func TestExtractTitles(t *testing.T) {
	tests := []struct {
		text string
		want []string
	}{
		{text: "no markers here", want: nil},
		{text: "[[A]] and [[ a ]] and [[B]]", want: []string{"A", "B"}},
		{text: "[[A]] [[B]] [[C]] [[D]]", want: []string{"A", "B", "C"}},
		{text: "[[]] [[  ]] [[Real]]", want: []string{"Real"}},
	}
	for _, tt := range tests {
		if got := extractTitles(tt.text, maxSuggestions); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("extractTitles(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}
