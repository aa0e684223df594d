package storage

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mselser95/polymarket-autopilot/internal/portfolio"
)

const consoleRule = "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"

// ConsoleStorage implements Storage by pretty-printing to console.
type ConsoleStorage struct {
	logger *zap.Logger
}

// NewConsoleStorage creates a new console storage.
func NewConsoleStorage(logger *zap.Logger) *ConsoleStorage {
	logger.Info("console-storage-initialized")
	return &ConsoleStorage{
		logger: logger,
	}
}

// StorePosition pretty-prints a newly opened position.
func (c *ConsoleStorage) StorePosition(ctx context.Context, pos *portfolio.Position) error {
	fmt.Println("\n" + consoleRule)
	fmt.Printf("📈 POSITION OPENED\n")
	fmt.Println(consoleRule)
	fmt.Printf("ID:       %s\n", shortID(pos.ID))
	fmt.Printf("Market:   %s\n", pos.MarketID)
	fmt.Printf("Question: %s\n", pos.Question)
	fmt.Printf("Time:     %s\n", pos.OpenedAt.Format("2006-01-02 15:04:05"))
	fmt.Println(consoleRule)
	fmt.Printf("📊 ENTRY\n")
	fmt.Printf("  Side:        %s\n", pos.Side)
	fmt.Printf("  Shares:      %.2f @ %.4f\n", pos.Shares, pos.EntryPrice)
	fmt.Printf("  Capital:     $%.2f\n", pos.CapitalAllocated)
	fmt.Printf("  Stop Loss:   %.4f\n", pos.StopLoss)
	fmt.Printf("  Take Profit: %.4f\n", pos.TakeProfit)
	fmt.Printf("  Confidence:  %.2f\n", pos.Confidence)
	fmt.Println(consoleRule)

	return nil
}

// UpdatePosition pretty-prints the terminal state of a closed position.
func (c *ConsoleStorage) UpdatePosition(ctx context.Context, pos *portfolio.Position) error {
	fmt.Println("\n" + consoleRule)
	fmt.Printf("🏁 POSITION CLOSED (%s)\n", pos.Status)
	fmt.Println(consoleRule)
	fmt.Printf("ID:       %s\n", shortID(pos.ID))
	fmt.Printf("Market:   %s\n", pos.MarketID)
	fmt.Printf("Question: %s\n", pos.Question)
	fmt.Printf("Time:     %s\n", pos.ClosedAt.Format("2006-01-02 15:04:05"))
	fmt.Println(consoleRule)
	fmt.Printf("💰 RESULT\n")
	fmt.Printf("  Entry:       %.4f\n", pos.EntryPrice)
	fmt.Printf("  Exit:        %.4f\n", pos.CurrentPrice)
	fmt.Printf("  Realized:    $%.2f (%.1f%%)\n", pos.RealizedPnL, pos.PnLPercent())
	if pos.RealizedPnL >= 0 {
		fmt.Printf("  ✅ Profit\n")
	} else {
		fmt.Printf("  ❌ Loss\n")
	}
	fmt.Println(consoleRule)

	return nil
}

// StoreCycle pretty-prints a cycle summary.
func (c *ConsoleStorage) StoreCycle(ctx context.Context, rec *CycleRecord) error {
	fmt.Println("\n" + consoleRule)
	fmt.Printf("🔄 CYCLE COMPLETE\n")
	fmt.Println(consoleRule)
	fmt.Printf("  Scanned:     %d markets\n", rec.MarketsScanned)
	fmt.Printf("  Candidates:  %d ranked, %d accepted\n", rec.CandidatesRanked, rec.SignalsAccepted)
	fmt.Printf("  Positions:   %d opened, %d closed\n", rec.PositionsOpened, rec.PositionsClosed)
	fmt.Printf("  Equity:      $%.2f (available $%.2f)\n", rec.Equity, rec.AvailableCapital)
	fmt.Printf("  Drawdown:    %.1f%%\n", rec.Drawdown*100)
	fmt.Printf("  Duration:    %s\n", rec.Duration.Round(time.Millisecond))
	fmt.Println(consoleRule)

	return nil
}

// Close is a no-op for console storage.
func (c *ConsoleStorage) Close() error {
	c.logger.Info("closing-console-storage")
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
