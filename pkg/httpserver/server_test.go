package httpserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/mselser95/polymarket-autopilot/internal/portfolio"
	"github.com/mselser95/polymarket-autopilot/pkg/healthprobe"
	"github.com/mselser95/polymarket-autopilot/pkg/types"
)

type staticPortfolio struct {
	snap portfolio.Snapshot
}

func (s *staticPortfolio) Snapshot() portfolio.Snapshot {
	return s.snap
}

func testServer(t *testing.T, provider PortfolioProvider) *Server {
	t.Helper()
	hc := healthprobe.New()
	hc.SetReady(true)
	return New(&Config{
		Port:          "0",
		Logger:        zap.NewNop(),
		HealthChecker: hc,
		Portfolio:     provider,
	})
}

func TestServer_Health(t *testing.T) {
	srv := testServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	srv.server.Handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("health status = %d, want 200", rr.Code)
	}
}

func TestServer_ReadyStates(t *testing.T) {
	hc := healthprobe.New()
	srv := New(&Config{Port: "0", Logger: zap.NewNop(), HealthChecker: hc})

	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	rr := httptest.NewRecorder()
	srv.server.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("ready before startup = %d, want 503", rr.Code)
	}

	hc.SetReady(true)
	rr = httptest.NewRecorder()
	srv.server.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("ready after startup = %d, want 200", rr.Code)
	}
}

func TestServer_Metrics(t *testing.T) {
	srv := testServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	srv.server.Handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("metrics status = %d, want 200", rr.Code)
	}
	if rr.Body.Len() == 0 {
		t.Error("metrics body is empty")
	}
}

func TestServer_Portfolio(t *testing.T) {
	market := &types.Market{
		ID:       "mkt-1",
		Question: "Will it happen?",
		Outcomes: []types.Outcome{
			{ID: "tok-yes", Title: "Yes", Price: 0.40},
			{ID: "tok-no", Title: "No", Price: 0.60},
		},
	}
	pos, err := portfolio.NewPosition(market, types.SideYes, 250, 0.40, 0.32, 0.80, 0.8, time.Now())
	if err != nil {
		t.Fatalf("NewPosition() error = %v", err)
	}

	provider := &staticPortfolio{snap: portfolio.Snapshot{
		InitialCapital:   1000,
		CurrentCapital:   1000,
		Equity:           1025,
		AvailableCapital: 900,
		OpenPositions:    []*portfolio.Position{pos},
	}}
	srv := testServer(t, provider)

	req := httptest.NewRequest(http.MethodGet, "/api/portfolio", nil)
	rr := httptest.NewRecorder()
	srv.server.Handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("portfolio status = %d, want 200", rr.Code)
	}
	if got := rr.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("content type = %s", got)
	}

	var snap portfolio.Snapshot
	if err := json.Unmarshal(rr.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if snap.Equity != 1025 {
		t.Errorf("equity = %f, want 1025", snap.Equity)
	}
	if len(snap.OpenPositions) != 1 || snap.OpenPositions[0].MarketID != "mkt-1" {
		t.Errorf("open positions = %+v", snap.OpenPositions)
	}
}

func TestServer_PortfolioRouteAbsentWithoutProvider(t *testing.T) {
	srv := testServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/portfolio", nil)
	rr := httptest.NewRecorder()
	srv.server.Handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("portfolio without provider = %d, want 404", rr.Code)
	}
}
