package discovery

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"

	"github.com/mselser95/polymarket-autopilot/pkg/cache"
)

func gammaJSON(id, question string, yes, no float64) string {
	return fmt.Sprintf(`{
		"id": %q,
		"slug": "slug-%s",
		"question": %q,
		"active": true,
		"closed": false,
		"createdAt": "2026-01-01T00:00:00Z",
		"endDate": "2026-06-01T00:00:00Z",
		"outcomes": "[\"Yes\", \"No\"]",
		"outcomePrices": "[\"%g\", \"%g\"]",
		"clobTokenIds": "[\"%s-yes\", \"%s-no\"]",
		"liquidityNum": 20000,
		"volumeNum": 50000
	}`, id, id, question, yes, no, id, id)
}

func TestClient_FetchActiveMarkets(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("closed") != "false" || q.Get("active") != "true" {
			t.Errorf("missing active filters: %s", r.URL)
		}
		if q.Get("order") != "volume24hr" || q.Get("ascending") != "false" {
			t.Errorf("unexpected ordering: %s", r.URL)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, "[%s,%s]",
			gammaJSON("m1", "Will A happen?", 0.45, 0.55),
			gammaJSON("m2", "Will B happen?", 0.30, 0.70))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, zap.NewNop())
	markets, err := c.FetchActiveMarkets(context.Background(), 10, 0, "volume24hr")
	if err != nil {
		t.Fatalf("FetchActiveMarkets: %v", err)
	}
	if len(markets) != 2 {
		t.Fatalf("got %d markets, want 2", len(markets))
	}

	m := markets[0]
	if m.ID != "m1" || m.Question != "Will A happen?" {
		t.Errorf("market = %s %q", m.ID, m.Question)
	}
	if price, ok := m.YesPrice(); !ok || price != 0.45 {
		t.Errorf("yes price = %f ok=%v, want 0.45", price, ok)
	}
	if o, ok := m.OutcomeBySide("yes"); !ok || o.ID != "m1-yes" {
		t.Errorf("yes token = %+v", o)
	}
	if m.EndDate == nil || m.EndDate.Year() != 2026 {
		t.Errorf("end date = %v", m.EndDate)
	}
	if m.Liquidity != 20000 || m.Volume != 50000 {
		t.Errorf("liquidity/volume = %f/%f", m.Liquidity, m.Volume)
	}
}

func TestClient_SkipsInvalidMarkets(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		// Second market has a malformed outcomes array, third has three
		// outcomes; both are dropped.
		fmt.Fprintf(w, `[%s,
			{"id": "bad", "outcomes": "not json", "outcomePrices": "[]", "clobTokenIds": "[]"},
			{"id": "multi", "outcomes": "[\"A\",\"B\",\"C\"]", "outcomePrices": "[\"0.3\",\"0.3\",\"0.4\"]", "clobTokenIds": "[\"1\",\"2\",\"3\"]"}
		]`, gammaJSON("ok", "Will it?", 0.50, 0.50))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, zap.NewNop())
	markets, err := c.FetchActiveMarkets(context.Background(), 10, 0, "volume24hr")
	if err != nil {
		t.Fatalf("FetchActiveMarkets: %v", err)
	}
	if len(markets) != 1 || markets[0].ID != "ok" {
		t.Errorf("markets = %v, want only the valid one", markets)
	}
}

func TestClient_Pagination(t *testing.T) {
	var pages atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pages.Add(1)
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

		w.Header().Set("Content-Type", "application/json")
		// Serve full pages up to 250 markets total.
		var out []string
		for i := 0; i < limit && offset+i < 250; i++ {
			id := fmt.Sprintf("m%d", offset+i)
			out = append(out, gammaJSON(id, "Q?", 0.5, 0.5))
		}
		fmt.Fprintf(w, "[%s]", join(out))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, zap.NewNop())
	markets, err := c.FetchActiveMarkets(context.Background(), 250, 0, "volume24hr")
	if err != nil {
		t.Fatalf("FetchActiveMarkets: %v", err)
	}
	if len(markets) != 250 {
		t.Errorf("got %d markets, want 250", len(markets))
	}
	if got := pages.Load(); got != 3 {
		t.Errorf("made %d requests, want 3 pages", got)
	}
	if markets[100].ID != "m100" {
		t.Errorf("page boundary market = %s, want m100", markets[100].ID)
	}
}

func join(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ","
		}
		out += p
	}
	return out
}

func TestService_GetMarketUsesCache(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, "[%s]", gammaJSON("m1", "Will it?", 0.50, 0.50))
	}))
	defer srv.Close()

	store, err := cache.NewRistrettoCache(&cache.RistrettoConfig{
		NumCounters: 1000,
		MaxCost:     1 << 20,
		BufferItems: 64,
		Logger:      zap.NewNop(),
	})
	if err != nil {
		t.Fatalf("cache: %v", err)
	}
	defer store.Close()

	svc := New(&Config{
		Client:      NewClient(srv.URL, zap.NewNop()),
		Cache:       store,
		MarketLimit: 10,
		Logger:      zap.NewNop(),
	})

	if _, err := svc.ListMarkets(context.Background()); err != nil {
		t.Fatalf("ListMarkets: %v", err)
	}
	if rc, ok := store.(interface{ Wait() }); ok {
		rc.Wait()
	}

	m, err := svc.GetMarket(context.Background(), "m1")
	if err != nil {
		t.Fatalf("GetMarket: %v", err)
	}
	if m.ID != "m1" {
		t.Errorf("market = %s, want m1", m.ID)
	}
	if calls.Load() != 1 {
		t.Errorf("API called %d times, want 1 (lookup served from cache)", calls.Load())
	}
}
