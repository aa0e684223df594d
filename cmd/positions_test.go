package cmd

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mselser95/polymarket-autopilot/internal/portfolio"
	"github.com/mselser95/polymarket-autopilot/pkg/types"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		max      int
		expected string
	}{
		{
			name:     "short-string-unchanged",
			input:    "Will it rain?",
			max:      50,
			expected: "Will it rain?",
		},
		{
			name:     "exact-length-unchanged",
			input:    "abcde",
			max:      5,
			expected: "abcde",
		},
		{
			name:     "long-string-truncated-with-ellipsis",
			input:    "Will the incumbent win the upcoming national election?",
			max:      20,
			expected: "Will the incumben...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, truncate(tt.input, tt.max))
		})
	}
}

func TestFetchSnapshot(t *testing.T) {
	opened := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	snap := portfolio.Snapshot{
		InitialCapital:   1000,
		CurrentCapital:   1000,
		Equity:           1025,
		AvailableCapital: 850,
		TotalAllocated:   150,
		TotalPnL:         25,
		ClosedPositions:  2,
		OpenPositions: []*portfolio.Position{
			{
				ID:           "pos-1",
				MarketID:     "mkt-1",
				Question:     "Will it rain tomorrow?",
				Side:         types.SideNo,
				Shares:       176.47,
				EntryPrice:   0.85,
				CurrentPrice: 0.90,
				PriceKnown:   true,
				Status:       types.StatusOpen,
				OpenedAt:     opened,
			},
		},
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/portfolio", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		err := json.NewEncoder(w).Encode(snap)
		require.NoError(t, err)
	}))
	defer server.Close()

	got, err := fetchSnapshot(server.URL)
	require.NoError(t, err)

	assert.Equal(t, 1025.0, got.Equity)
	assert.Equal(t, 2, got.ClosedPositions)
	require.Len(t, got.OpenPositions, 1)
	assert.Equal(t, "mkt-1", got.OpenPositions[0].MarketID)
	assert.Equal(t, types.SideNo, got.OpenPositions[0].Side)
}

func TestFetchSnapshot_BadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := fetchSnapshot(server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}
