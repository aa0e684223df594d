// Package news fetches recent headlines for a market question from a
// NewsAPI-compatible endpoint. Results are cached per query and every
// failure degrades to "no news": headlines are context, never a
// prerequisite for a trading cycle.
package news

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/mselser95/polymarket-autopilot/pkg/cache"
)

const (
	defaultBaseURL = "https://newsapi.org/v2"
	defaultTTL     = 10 * time.Minute
	maxResults     = 10
	daysBack       = 3
)

// Article is one headline from the news API.
type Article struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Source      struct {
		Name string `json:"name"`
	} `json:"source"`
	PublishedAt time.Time `json:"publishedAt"`
}

type searchResponse struct {
	Status   string    `json:"status"`
	Articles []Article `json:"articles"`
}

// Config holds the news client settings.
type Config struct {
	APIKey  string
	BaseURL string
	Cache   cache.Cache
	Logger  *zap.Logger
}

// Client queries a NewsAPI-compatible endpoint.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	cache      cache.Cache
	log        *zap.Logger
	now        func() time.Time
}

// New creates a news client. An empty API key produces a client that
// always reports no news.
func New(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		cache: cfg.Cache,
		log:   cfg.Logger,
		now:   time.Now,
	}
}

// Headlines fetches recent articles for the market question. Failures are
// logged and return an empty slice.
func (c *Client) Headlines(ctx context.Context, question string) []Article {
	if c.apiKey == "" {
		return nil
	}

	query := ExtractKeywords(question)
	if query == "" {
		return nil
	}

	if c.cache != nil {
		if cached, ok := c.cache.Get("news:" + query); ok {
			if articles, ok := cached.([]Article); ok {
				return articles
			}
		}
	}

	articles, err := c.search(ctx, query)
	if err != nil {
		c.log.Warn("news-fetch-failed",
			zap.String("query", query),
			zap.Error(err))
		FetchesTotal.WithLabelValues("error").Inc()
		return nil
	}
	FetchesTotal.WithLabelValues("ok").Inc()

	if c.cache != nil {
		c.cache.Set("news:"+query, articles, defaultTTL)
	}
	return articles
}

func (c *Client) search(ctx context.Context, query string) ([]Article, error) {
	params := url.Values{}
	params.Add("q", query)
	params.Add("from", c.now().AddDate(0, 0, -daysBack).Format("2006-01-02"))
	params.Add("sortBy", "relevancy")
	params.Add("pageSize", strconv.Itoa(maxResults))
	params.Add("language", "en")
	params.Add("apiKey", c.apiKey)

	requestURL := fmt.Sprintf("%s/everything?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, body)
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return parsed.Articles, nil
}

// Summarize renders the top articles as a compact bulleted summary for
// prompt context.
func Summarize(articles []Article) string {
	if len(articles) == 0 {
		return "No recent news found."
	}

	var lines []string
	for _, a := range articles {
		if len(lines) == 5 {
			break
		}
		if a.Title == "" {
			continue
		}
		source := a.Source.Name
		if source == "" {
			source = "Unknown"
		}
		line := fmt.Sprintf("- [%s] %s", source, a.Title)
		if a.Description != "" {
			desc := a.Description
			if len(desc) > 100 {
				desc = desc[:100] + "..."
			}
			line += ": " + desc
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// NewestAgeHours returns the age of the most recent article in hours,
// relative to now. The second return is false when no article carries a
// timestamp.
func NewestAgeHours(articles []Article, now time.Time) (float64, bool) {
	var newest time.Time
	for _, a := range articles {
		if a.PublishedAt.After(newest) {
			newest = a.PublishedAt
		}
	}
	if newest.IsZero() {
		return 0, false
	}
	return now.Sub(newest).Hours(), true
}

var stopWords = map[string]struct{}{
	"will": {}, "be": {}, "the": {}, "a": {}, "an": {}, "in": {}, "on": {},
	"at": {}, "to": {}, "by": {}, "for": {}, "of": {}, "or": {}, "and": {},
}

// ExtractKeywords reduces a market question to a short search query:
// lowercased words over three characters, stop words removed, capped at
// five terms.
func ExtractKeywords(question string) string {
	words := strings.Fields(strings.ToLower(question))

	var keywords []string
	for _, w := range words {
		w = strings.Trim(w, "?.,!:;\"'")
		if _, stop := stopWords[w]; stop || len(w) <= 3 {
			continue
		}
		keywords = append(keywords, w)
		if len(keywords) == 5 {
			break
		}
	}
	return strings.Join(keywords, " ")
}
