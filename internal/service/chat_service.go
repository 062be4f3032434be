package service

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"

	"github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"

	"cinepulse-recommendation-service/internal/metrics"
	"cinepulse-recommendation-service/internal/models"
	"cinepulse-recommendation-service/internal/tmdb"
)

const (
	chatDisabledReply = "Hey! I'm having some technical issues right now, but I'd love to help you find a great movie. What are you in the mood for?"
	chatFailureReply  = "Oops, something went wrong on my end. Could you try asking that again?"
	maxSuggestions    = 3
)

const assistantPrompt = `You are a friendly movie and TV series recommendation assistant called "CinePulse Assistant".

IMPORTANT RULES:
1. ONLY respond to questions about movies, TV series, web series, and related topics (actors, directors, genres, streaming platforms, etc.)
2. If someone asks about anything unrelated to movies/series (like coding, weather, politics, etc.), politely redirect them by saying: "Hey! I'm here to help you discover great movies and shows. What kind of movie or series are you in the mood for today?"
3. Keep your responses short, casual, and easy to understand - like chatting with a friend who loves movies
4. Avoid overly dramatic or poetic language - be natural and helpful
5. When recommending movies, wrap titles in [[Title]] format so the system can fetch more details
6. Give practical recommendations based on what the user actually wants

RESPONSE STYLE:
- Be warm and conversational, not robotic
- Use simple, everyday language
- Keep answers concise (2-4 sentences usually)
- If recommending movies, briefly explain WHY they'd enjoy it
- It's okay to ask clarifying questions to give better recommendations

User context: `

var titleMarker = regexp.MustCompile(`\[\[(.*?)\]\]`)

// Generator produces free text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// MovieSearcher finds the best TMDB match for a title.
type MovieSearcher interface {
	Configured() bool
	SearchMovie(ctx context.Context, query string) (*tmdb.TMDBMovie, error)
}

// ChatService runs the movie-only assistant.
type ChatService struct {
	generator Generator
	searcher  MovieSearcher
}

// NewChatService creates a ChatService. A nil generator answers every turn
// with a fixed apology; a nil searcher disables suggestions.
func NewChatService(generator Generator, searcher MovieSearcher) *ChatService {
	return &ChatService{generator: generator, searcher: searcher}
}

// Reply answers the last turn of the conversation. Generation failures are
// reported in the reply text, not as errors.
func (s *ChatService) Reply(ctx context.Context, req models.ChatRequest) *models.ChatResponse {
	resp := &models.ChatResponse{
		Message:         models.ChatMessage{Role: "assistant"},
		SuggestedMovies: []models.SuggestedMovie{},
	}

	if s.generator == nil {
		metrics.ChatTotal.WithLabelValues("disabled").Inc()
		resp.Message.Content = chatDisabledReply
		return resp
	}

	text, err := s.generator.Generate(ctx, buildChatPrompt(req))
	if err != nil {
		slog.Error("assistant generation failed", "error", err)
		metrics.ChatTotal.WithLabelValues("failed").Inc()
		resp.Message.Content = chatFailureReply
		return resp
	}
	metrics.ChatTotal.WithLabelValues("ok").Inc()

	resp.Message.Content = strings.TrimSpace(text)
	resp.SuggestedMovies = s.suggest(ctx, extractTitles(resp.Message.Content, maxSuggestions))
	return resp
}

func (s *ChatService) suggest(ctx context.Context, titles []string) []models.SuggestedMovie {
	out := []models.SuggestedMovie{}
	if len(titles) == 0 || s.searcher == nil || !s.searcher.Configured() {
		return out
	}

	found := make([]*models.SuggestedMovie, len(titles))
	var g errgroup.Group
	g.SetLimit(maxSuggestions)
	for i, title := range titles {
		g.Go(func() error {
			match, err := s.searcher.SearchMovie(ctx, title)
			if err != nil {
				if !errors.Is(err, tmdb.ErrNoResults) {
					slog.Warn("suggestion lookup failed", "title", title, "error", err)
				}
				return nil
			}
			found[i] = suggestionFrom(match)
			return nil
		})
	}
	_ = g.Wait()

	for _, m := range found {
		if m != nil {
			out = append(out, *m)
		}
	}
	return out
}

func suggestionFrom(m *tmdb.TMDBMovie) *models.SuggestedMovie {
	s := &models.SuggestedMovie{ID: m.ID, Title: m.Title}
	if m.PosterPath != "" {
		poster := models.TMDBImageBaseW200 + m.PosterPath
		s.Poster = &poster
	}
	if year, _, _ := strings.Cut(m.ReleaseDate, "-"); year != "" {
		s.Year = &year
	}
	return s
}

func buildChatPrompt(req models.ChatRequest) string {
	var sb strings.Builder
	sb.WriteString(assistantPrompt)
	if len(req.Context) == 0 {
		sb.WriteString("No specific context.")
	} else if data, err := json.Marshal(req.Context); err == nil {
		sb.Write(data)
	}
	sb.WriteString("\n")

	for _, msg := range req.Messages {
		if msg.Role == "user" {
			sb.WriteString("User: ")
		} else {
			sb.WriteString("Assistant: ")
		}
		sb.WriteString(msg.Content)
		sb.WriteString("\n")
	}
	sb.WriteString("Assistant: ")
	return sb.String()
}

// extractTitles returns up to limit distinct [[Title]] markers in order of
// first appearance.
func extractTitles(text string, limit int) []string {
	var titles []string
	seen := map[string]bool{}
	for _, match := range titleMarker.FindAllStringSubmatch(text, -1) {
		title := strings.TrimSpace(match[1])
		key := strings.ToLower(title)
		if title == "" || seen[key] {
			continue
		}
		seen[key] = true
		titles = append(titles, title)
		if len(titles) == limit {
			break
		}
	}
	return titles
}
