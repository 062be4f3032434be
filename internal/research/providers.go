package research

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	readability "github.com/go-shiori/go-readability"
	"golang.org/x/time/rate"

	"cinepulse-recommendation-service/internal/models"
)

const (
	defaultRuntime   = 120
	maxOverviewChars = 2000
	minArticleChars  = 100
	userAgent        = "CinePulse/1.0 (title research)"
)

// Finding is the raw material a provider returns for a title.
type Finding struct {
	Title       string
	Overview    string
	Runtime     int
	Genres      []string
	ContentType models.ContentType
}

// Provider looks a title up in one source. It returns (nil, nil) when the
// source knows nothing about the title.
type Provider interface {
	Name() string
	Lookup(ctx context.Context, title string) (*Finding, error)
}

func newHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 15 * time.Second,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
}

// ---- SerpAPI ----

// SerpAPIProvider reads the Google knowledge graph through SerpAPI.
type SerpAPIProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

// NewSerpAPIProvider returns nil when apiKey is empty.
func NewSerpAPIProvider(apiKey, baseURL string, limiter *rate.Limiter) *SerpAPIProvider {
	if apiKey == "" {
		return nil
	}
	if baseURL == "" {
		baseURL = "https://serpapi.com/search"
	}
	return &SerpAPIProvider{apiKey: apiKey, baseURL: baseURL, client: newHTTPClient(), limiter: limiter}
}

func (p *SerpAPIProvider) Name() string { return "serpapi" }

type knowledgeGraph struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Type        string `json:"type"`
}

func (p *SerpAPIProvider) Lookup(ctx context.Context, title string) (*Finding, error) {
	if err := wait(ctx, p.limiter); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("q", title+" movie overview genre runtime")
	params.Set("api_key", p.apiKey)
	params.Set("engine", "google")

	body, status, err := get(ctx, p.client, p.baseURL+"?"+params.Encode())
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("serpapi returned status %d", status)
	}

	var payload struct {
		KnowledgeGraph json.RawMessage `json:"knowledge_graph"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode serpapi response: %w", err)
	}
	if len(payload.KnowledgeGraph) == 0 || string(payload.KnowledgeGraph) == "null" {
		return nil, nil
	}

	var kg knowledgeGraph
	if err := json.Unmarshal(payload.KnowledgeGraph, &kg); err != nil {
		return nil, fmt.Errorf("decode knowledge graph: %w", err)
	}
	if kg.Title == "" && kg.Description == "" {
		return nil, nil
	}

	f := &Finding{
		Title:       firstNonEmpty(kg.Title, title),
		Overview:    firstNonEmpty(kg.Description, "A fascinating story discovered through web analysis."),
		Runtime:     defaultRuntime,
		Genres:      []string{firstNonEmpty(kg.Type, "Drama")},
		ContentType: models.ContentMovie,
	}
	if strings.Contains(strings.ToLower(string(payload.KnowledgeGraph)), "series") {
		f.ContentType = models.ContentSeries
	}
	return f, nil
}

// ---- Web page ----

// WebProvider fetches an encyclopedia page and extracts its readable text.
type WebProvider struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

// NewWebProvider returns a provider rooted at baseURL, e.g.
// https://en.wikipedia.org/wiki.
func NewWebProvider(baseURL string, limiter *rate.Limiter) *WebProvider {
	if baseURL == "" {
		return nil
	}
	return &WebProvider{baseURL: strings.TrimRight(baseURL, "/"), client: newHTTPClient(), limiter: limiter}
}

func (p *WebProvider) Name() string { return "web" }

func (p *WebProvider) Lookup(ctx context.Context, title string) (*Finding, error) {
	if err := wait(ctx, p.limiter); err != nil {
		return nil, err
	}

	pageURL := p.baseURL + "/" + url.PathEscape(strings.ReplaceAll(strings.TrimSpace(title), " ", "_"))
	body, status, err := get(ctx, p.client, pageURL)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, nil
	}
	if status >= 400 {
		return nil, fmt.Errorf("page fetch returned status %d", status)
	}

	parsed, _ := url.Parse(pageURL)
	article, err := readability.FromReader(strings.NewReader(string(body)), parsed)
	if err != nil {
		return nil, fmt.Errorf("extract page text: %w", err)
	}

	text := strings.TrimSpace(article.TextContent)
	if len(text) < minArticleChars {
		return nil, nil
	}

	return &Finding{
		Title:       title,
		Overview:    leadParagraph(text),
		Runtime:     defaultRuntime,
		Genres:      []string{"Drama"},
		ContentType: models.ContentMovie,
	}, nil
}

// leadParagraph returns the first substantial paragraph, cut at a word
// boundary.
func leadParagraph(text string) string {
	lead := text
	for _, para := range strings.Split(text, "\n") {
		para = strings.TrimSpace(para)
		if len(para) >= minArticleChars {
			lead = para
			break
		}
	}
	if len(lead) <= maxOverviewChars {
		return lead
	}
	cut := strings.LastIndex(lead[:maxOverviewChars], " ")
	if cut <= 0 {
		cut = maxOverviewChars
	}
	return lead[:cut]
}

// ---- Built-in knowledge ----

// KnowledgeBase answers from a fixed set of well-known titles.
type KnowledgeBase struct {
	entries []kbEntry
}

type kbEntry struct {
	key     string
	finding Finding
}

// NewKnowledgeBase returns the built-in knowledge base.
func NewKnowledgeBase() *KnowledgeBase {
	return &KnowledgeBase{entries: []kbEntry{
		{key: "rrr", finding: Finding{
			Title:       "RRR",
			Overview:    "A fictional history of two legendary revolutionaries' journey away from home before they began fighting for their country in the 1920s.",
			Runtime:     187,
			Genres:      []string{"Action", "Drama"},
			ContentType: models.ContentMovie,
		}},
		{key: "sacred games", finding: Finding{
			Title:       "Sacred Games",
			Overview:    "A link in their pasts leads an honest cop to a fugitive gang boss, whose cryptic warning spurs the officer on a quest to save Mumbai from cataclysm.",
			Runtime:     50,
			Genres:      []string{"Crime", "Thriller"},
			ContentType: models.ContentSeries,
		}},
		{key: "mirzapur", finding: Finding{
			Title:       "Mirzapur",
			Overview:    "A shocking incident at a wedding procession ignites a series of events that entangle the lives of two families in the lawless city of Mirzapur.",
			Runtime:     60,
			Genres:      []string{"Action", "Crime", "Thriller"},
			ContentType: models.ContentSeries,
		}},
		{key: "dangal", finding: Finding{
			Title:       "Dangal",
			Overview:    "Former wrestler Mahavir Singh Phogat and his two wrestler daughters struggle towards glory at the Commonwealth Games in the face of societal oppression.",
			Runtime:     161,
			Genres:      []string{"Action", "Biography", "Drama"},
			ContentType: models.ContentMovie,
		}},
		{key: "lagaan", finding: Finding{
			Title:       "Lagaan: Once Upon a Time in India",
			Overview:    "The people of a small village in Victorian India stake their future on a game of cricket against their ruthless British rulers.",
			Runtime:     224,
			Genres:      []string{"Drama", "Musical", "Sport"},
			ContentType: models.ContentMovie,
		}},
	}}
}

func (k *KnowledgeBase) Name() string { return "knowledge_base" }

// Lookup matches when an entry's key appears anywhere in title.
func (k *KnowledgeBase) Lookup(_ context.Context, title string) (*Finding, error) {
	lower := strings.ToLower(title)
	for _, e := range k.entries {
		if strings.Contains(lower, e.key) {
			f := e.finding
			f.Genres = append([]string(nil), e.finding.Genres...)
			return &f, nil
		}
	}
	return nil, nil
}

// ---- helpers ----

func wait(ctx context.Context, limiter *rate.Limiter) error {
	if limiter == nil {
		return nil
	}
	return limiter.Wait(ctx)
}

func get(ctx context.Context, client *http.Client, endpoint string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", stripURL(err))
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("HTTP request failed: %w", stripURL(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read body: %w", err)
	}
	return body, resp.StatusCode, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// stripURL drops the request URL, which carries the API key, from transport
// errors.
func stripURL(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return fmt.Errorf("%s: %w", uerr.Op, uerr.Err)
	}
	return err
}
