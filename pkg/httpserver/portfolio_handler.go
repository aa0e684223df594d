package httpserver

import (
	"net/http"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/mselser95/polymarket-autopilot/internal/portfolio"
)

// PortfolioProvider exposes the current portfolio state.
type PortfolioProvider interface {
	Snapshot() portfolio.Snapshot
}

// PortfolioHandler serves the portfolio status surface.
type PortfolioHandler struct {
	provider PortfolioProvider
	logger   *zap.Logger
}

// NewPortfolioHandler creates a new portfolio handler.
func NewPortfolioHandler(provider PortfolioProvider, logger *zap.Logger) *PortfolioHandler {
	return &PortfolioHandler{
		provider: provider,
		logger:   logger,
	}
}

// ErrorResponse represents an HTTP error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HandlePortfolio handles GET /api/portfolio requests.
func (h *PortfolioHandler) HandlePortfolio(w http.ResponseWriter, r *http.Request) {
	snap := h.provider.Snapshot()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(snap); err != nil {
		h.logger.Error("portfolio-encode-failed", zap.Error(err))
	}
}
