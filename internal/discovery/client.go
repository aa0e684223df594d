// Package discovery fetches tradeable markets from the Gamma API and
// serves them to the engine with short-lived caching.
package discovery

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/mselser95/polymarket-autopilot/pkg/types"
)

// MaxBatchSize is the maximum number of markets per API request.
const MaxBatchSize = 100

// Client is an HTTP client for the Gamma markets API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a Gamma API client.
func NewClient(baseURL string, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// gammaMarket is the raw wire shape. Gamma encodes outcome names, prices
// and token IDs as JSON strings inside JSON.
type gammaMarket struct {
	ID            string   `json:"id"`
	Slug          string   `json:"slug"`
	Question      string   `json:"question"`
	Description   string   `json:"description"`
	Category      string   `json:"category"`
	Tags          []string `json:"tags"`
	Active        bool     `json:"active"`
	Closed        bool     `json:"closed"`
	CreatedAt     string   `json:"createdAt"`
	EndDate       string   `json:"endDate"`
	Outcomes      string   `json:"outcomes"`      // "[\"Yes\", \"No\"]"
	OutcomePrices string   `json:"outcomePrices"` // "[\"0.45\", \"0.55\"]"
	ClobTokenIDs  string   `json:"clobTokenIds"`  // "[\"tok1\", \"tok2\"]"
	Liquidity     float64  `json:"liquidityNum"`
	Volume        float64  `json:"volumeNum"`
}

// toMarket converts the wire shape into a Market. Markets whose embedded
// arrays do not parse, or that are not two-outcome, return an error and
// are skipped upstream.
func (g *gammaMarket) toMarket() (*types.Market, error) {
	var names, prices, tokenIDs []string
	if err := json.Unmarshal([]byte(g.Outcomes), &names); err != nil {
		return nil, fmt.Errorf("parse outcomes: %w", err)
	}
	if err := json.Unmarshal([]byte(g.OutcomePrices), &prices); err != nil {
		return nil, fmt.Errorf("parse outcome prices: %w", err)
	}
	if err := json.Unmarshal([]byte(g.ClobTokenIDs), &tokenIDs); err != nil {
		return nil, fmt.Errorf("parse token ids: %w", err)
	}
	if len(names) != len(prices) || len(names) != len(tokenIDs) {
		return nil, fmt.Errorf("outcome arrays disagree: %d names, %d prices, %d tokens",
			len(names), len(prices), len(tokenIDs))
	}

	outcomes := make([]types.Outcome, 0, len(names))
	for i, name := range names {
		price, err := strconv.ParseFloat(prices[i], 64)
		if err != nil {
			return nil, fmt.Errorf("parse price %q: %w", prices[i], err)
		}
		outcomes = append(outcomes, types.Outcome{
			ID:    tokenIDs[i],
			Title: name,
			Price: price,
		})
	}

	m := &types.Market{
		ID:          g.ID,
		Slug:        g.Slug,
		Question:    g.Question,
		Description: g.Description,
		Category:    g.Category,
		Tags:        g.Tags,
		Active:      g.Active && !g.Closed,
		Outcomes:    outcomes,
		Liquidity:   g.Liquidity,
		Volume:      g.Volume,
	}
	if t, err := time.Parse(time.RFC3339, g.CreatedAt); err == nil {
		m.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339, g.EndDate); err == nil {
		m.EndDate = &t
	}

	if err := m.ValidateShape(); err != nil {
		return nil, err
	}
	return m, nil
}

// FetchActiveMarkets fetches active markets sorted by the given field,
// paginating when limit exceeds one batch. limit 0 fetches everything.
func (c *Client) FetchActiveMarkets(ctx context.Context, limit, offset int, orderBy string) ([]*types.Market, error) {
	if limit > MaxBatchSize || limit == 0 {
		return c.fetchWithPagination(ctx, limit, offset, orderBy)
	}
	markets, _, err := c.fetchSinglePage(ctx, limit, offset, orderBy)
	return markets, err
}

// fetchSinglePage returns the parsed markets plus the raw page size; the
// raw count drives pagination, since invalid markets are dropped here.
func (c *Client) fetchSinglePage(ctx context.Context, limit, offset int, orderBy string) ([]*types.Market, int, error) {
	if limit == 0 {
		limit = MaxBatchSize
	}

	params := url.Values{}
	params.Add("closed", "false")
	params.Add("active", "true")
	params.Add("limit", strconv.Itoa(limit))
	params.Add("offset", strconv.Itoa(offset))
	params.Add("order", orderBy)
	if orderBy == "endDate" {
		params.Add("ascending", "true")
	} else {
		params.Add("ascending", "false")
	}

	requestURL := fmt.Sprintf("%s/markets?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "polymarket-autopilot/1.0")

	c.logger.Debug("fetching-markets",
		zap.String("url", requestURL),
		zap.Int("limit", limit),
		zap.Int("offset", offset))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, 0, fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, body)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("read response body: %w", err)
	}

	// Gamma returns a bare array.
	var raw []gammaMarket
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, 0, fmt.Errorf("unmarshal response: %w", err)
	}

	markets := make([]*types.Market, 0, len(raw))
	for i := range raw {
		m, err := raw[i].toMarket()
		if err != nil {
			InvalidMarketsTotal.Inc()
			c.logger.Debug("market-skipped",
				zap.String("market-id", raw[i].ID),
				zap.Error(err))
			continue
		}
		markets = append(markets, m)
	}

	c.logger.Debug("fetched-markets",
		zap.Int("raw", len(raw)),
		zap.Int("parsed", len(markets)))

	return markets, len(raw), nil
}

func (c *Client) fetchWithPagination(ctx context.Context, limit, offset int, orderBy string) ([]*types.Market, error) {
	var (
		all          []*types.Market
		currentPage  int
		totalFetched int
		fetchAll     = limit == 0
	)

	for {
		pageBatchSize := MaxBatchSize
		if !fetchAll {
			remaining := limit - totalFetched
			if remaining <= 0 {
				break
			}
			if remaining < pageBatchSize {
				pageBatchSize = remaining
			}
		}

		page, rawCount, err := c.fetchSinglePage(ctx, pageBatchSize, offset+currentPage*MaxBatchSize, orderBy)
		if err != nil {
			return nil, fmt.Errorf("fetch page %d: %w", currentPage, err)
		}

		all = append(all, page...)
		totalFetched += rawCount

		if rawCount < pageBatchSize {
			break
		}
		if !fetchAll && totalFetched >= limit {
			break
		}
		currentPage++
	}

	return all, nil
}
