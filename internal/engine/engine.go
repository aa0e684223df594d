package engine

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mselser95/polymarket-autopilot/internal/filter"
	"github.com/mselser95/polymarket-autopilot/internal/hedge"
	"github.com/mselser95/polymarket-autopilot/internal/history"
	"github.com/mselser95/polymarket-autopilot/internal/news"
	"github.com/mselser95/polymarket-autopilot/internal/patterns"
	"github.com/mselser95/polymarket-autopilot/internal/portfolio"
	"github.com/mselser95/polymarket-autopilot/internal/probability"
	"github.com/mselser95/polymarket-autopilot/internal/risk"
	"github.com/mselser95/polymarket-autopilot/internal/scorer"
	"github.com/mselser95/polymarket-autopilot/internal/storage"
	"github.com/mselser95/polymarket-autopilot/pkg/types"
)

// MarketSource provides market snapshots for scanning and price refreshes.
type MarketSource interface {
	ListMarkets(ctx context.Context) ([]*types.Market, error)
	GetMarket(ctx context.Context, marketID string) (*types.Market, error)
}

// OrderPlacer executes order requests.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, req *types.OrderRequest) (*types.OrderResult, error)
}

// NewsSource provides best-effort headlines for a market question.
type NewsSource interface {
	Headlines(ctx context.Context, question string) []news.Article
}

// ProbabilityEstimator asks an external model for a probability estimate.
type ProbabilityEstimator interface {
	Estimate(ctx context.Context, m *types.Market, newsSummary string) (types.Estimate, error)
}

// Config wires the engine's collaborators.
type Config struct {
	Source    MarketSource
	Filter    *filter.Filter
	Scorer    *scorer.Scorer
	Analyzer  *patterns.Analyzer
	History   *history.Tracker
	News      NewsSource           // optional
	Estimator ProbabilityEstimator // optional
	Blender   *probability.Blender
	Sizer     *risk.Sizer
	Hedger    *hedge.Manager
	Ledger    *portfolio.Ledger
	Executor  OrderPlacer
	Storage   storage.Storage
	Logger    *zap.Logger
}

// Engine runs the synchronous trading cycle: monitor open positions,
// scan for candidates, analyze, and open new positions.
type Engine struct {
	source    MarketSource
	filter    *filter.Filter
	scorer    *scorer.Scorer
	analyzer  *patterns.Analyzer
	history   *history.Tracker
	news      NewsSource
	estimator ProbabilityEstimator
	blender   *probability.Blender
	sizer     *risk.Sizer
	hedger    *hedge.Manager
	ledger    *portfolio.Ledger
	executor  OrderPlacer
	store     storage.Storage
	logger    *zap.Logger
	now       func() time.Time
}

// New creates the engine.
func New(cfg *Config) *Engine {
	return &Engine{
		source:    cfg.Source,
		filter:    cfg.Filter,
		scorer:    cfg.Scorer,
		analyzer:  cfg.Analyzer,
		history:   cfg.History,
		news:      cfg.News,
		estimator: cfg.Estimator,
		blender:   cfg.Blender,
		sizer:     cfg.Sizer,
		hedger:    cfg.Hedger,
		ledger:    cfg.Ledger,
		executor:  cfg.Executor,
		store:     cfg.Storage,
		logger:    cfg.Logger,
		now:       time.Now,
	}
}

// Run executes one cycle immediately, then one per interval until the
// context is canceled.
func (e *Engine) Run(ctx context.Context, interval time.Duration) error {
	e.logger.Info("engine-starting", zap.Duration("cycle-interval", interval))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := e.RunCycle(ctx); err != nil {
			e.logger.Error("cycle-failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			e.logger.Info("engine-stopping")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RunCycle executes a single monitor-then-scan cycle and returns its record.
func (e *Engine) RunCycle(ctx context.Context) (*storage.CycleRecord, error) {
	start := e.now()
	rec := &storage.CycleRecord{
		ID:        uuid.NewString(),
		StartedAt: start,
	}

	// Exits always come first so freed capital is visible to the scan.
	rec.PositionsClosed = e.monitorPositions(ctx)

	if len(e.ledger.OpenPositions()) >= e.ledger.Limits().MaxConcurrentPositions {
		e.logger.Info("scan-skipped-max-concurrency",
			zap.Int("open-positions", len(e.ledger.OpenPositions())))
	} else {
		events := e.scan(ctx, rec)
		rec.SignalsAccepted = len(events)
		rec.PositionsOpened = e.openPositions(ctx, events)
	}

	rec.Duration = e.now().Sub(start)
	rec.Equity = e.ledger.Equity()
	rec.AvailableCapital = e.ledger.AvailableCapital()
	rec.Drawdown = e.ledger.Drawdown()

	if err := e.store.StoreCycle(ctx, rec); err != nil {
		e.logger.Warn("cycle-store-failed", zap.Error(err))
	}

	CyclesTotal.Inc()
	CycleDurationSeconds.Observe(rec.Duration.Seconds())

	e.logger.Info("cycle-complete",
		zap.String("cycle-id", rec.ID),
		zap.Int("markets-scanned", rec.MarketsScanned),
		zap.Int("candidates-ranked", rec.CandidatesRanked),
		zap.Int("signals-accepted", rec.SignalsAccepted),
		zap.Int("positions-opened", rec.PositionsOpened),
		zap.Int("positions-closed", rec.PositionsClosed),
		zap.Float64("equity", rec.Equity),
		zap.Float64("available-capital", rec.AvailableCapital),
		zap.Duration("duration", rec.Duration))

	return rec, nil
}

// monitorPositions refreshes prices for open positions and executes exits.
// Stop-loss is checked before take-profit. Returns the number closed.
func (e *Engine) monitorPositions(ctx context.Context) int {
	open := e.ledger.OpenPositions()
	if len(open) == 0 {
		return 0
	}

	prices := make(map[string]float64, len(open))
	for _, p := range open {
		m, err := e.source.GetMarket(ctx, p.MarketID)
		if err != nil {
			e.logger.Warn("position-price-refresh-failed",
				zap.String("market-id", p.MarketID),
				zap.Error(err))
			continue
		}
		if price, ok := m.PriceBySide(p.Side); ok {
			prices[p.MarketID] = price
		}
	}
	e.ledger.UpdatePrices(prices)

	closed := 0
	for _, p := range e.ledger.OpenPositions() {
		var terminal types.Status
		var reason string
		switch {
		case p.CheckStopLoss():
			terminal, reason = types.StatusStopped, "stop_loss"
		case p.CheckTakeProfit():
			terminal, reason = types.StatusClosed, "take_profit"
		default:
			continue
		}

		order := &types.OrderRequest{
			MarketID: p.MarketID,
			TokenID:  p.TokenID,
			Side:     p.Side,
			Intent:   types.IntentSell,
			Shares:   p.Shares,
			Price:    p.CurrentPrice,
		}
		result, err := e.executor.PlaceOrder(ctx, order)
		if err != nil {
			// The position stays open and is retried next cycle.
			e.logger.Error("exit-order-failed",
				zap.String("position-id", p.ID),
				zap.String("market-id", p.MarketID),
				zap.Error(err))
			continue
		}

		pnl, err := e.ledger.ClosePosition(p.ID, result.FillPrice, terminal)
		if err != nil {
			e.logger.Warn("position-close-failed",
				zap.String("position-id", p.ID),
				zap.Error(err))
			continue
		}

		if err := e.store.UpdatePosition(ctx, p); err != nil {
			e.logger.Warn("position-persist-failed",
				zap.String("position-id", p.ID),
				zap.Error(err))
		}

		closed++
		PositionExitsTotal.WithLabelValues(reason).Inc()
		e.logger.Info("position-exited",
			zap.String("position-id", p.ID),
			zap.String("market-id", p.MarketID),
			zap.String("reason", reason),
			zap.Float64("exit-price", result.FillPrice),
			zap.Float64("realized-pnl", pnl))
	}
	return closed
}

// scan discovers, filters, ranks, and analyzes markets, returning accepted
// events ordered by edge times confidence, best first.
func (e *Engine) scan(ctx context.Context, rec *storage.CycleRecord) []types.Event {
	markets, err := e.source.ListMarkets(ctx)
	if err != nil {
		// A dead data source costs one cycle, not the process.
		e.logger.Warn("market-scan-failed", zap.Error(err))
		return nil
	}
	rec.MarketsScanned = len(markets)

	for _, m := range markets {
		e.history.Observe(m)
	}

	passed, stats := e.filter.Apply(markets)
	candidates := e.scorer.Rank(passed)
	rec.CandidatesRanked = len(candidates)

	e.logger.Debug("scan-funnel",
		zap.Int("markets", stats.Total),
		zap.Int("filtered", stats.Passed),
		zap.Int("ranked", len(candidates)))

	var events []types.Event
	for _, c := range candidates {
		m := c.Market
		if e.ledger.HasOpenPosition(m.ID) {
			e.logger.Debug("duplicate-position-skip", zap.String("market-id", m.ID))
			continue
		}

		var articles []news.Article
		if e.news != nil {
			articles = e.news.Headlines(ctx, m.Question)
		}
		summary := news.Summarize(articles)

		analysis := e.analyzer.Analyze(m, e.patternContext(m, markets, articles))

		// Only the mispricing and event-driven blend rules consume the
		// estimate, so skip the estimator call otherwise.
		var in probability.Inputs
		if analysis.TopPattern == patterns.PatternMispricing || analysis.TopPattern == patterns.PatternEventDriven {
			est := e.estimate(ctx, m, summary)
			in.Estimate = &est
		}
		event := e.blender.Blend(m, analysis, in)
		event.NewsSummary = summary
		event.AnalyzedAt = e.now()

		if e.blender.Accept(event) {
			events = append(events, event)
		}
	}

	// Best expected value first.
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Edge*events[i].Confidence > events[j].Edge*events[j].Confidence
	})
	return events
}

// patternContext assembles the evidence available to the detectors.
func (e *Engine) patternContext(m *types.Market, batch []*types.Market, articles []news.Article) patterns.Context {
	pctx := patterns.Context{
		Now:           e.now(),
		PriceHistory:  e.history.Prices(m.ID),
		VolumeHistory: e.history.Volumes(m.ID),
		VolumeSpike:   e.history.VolumeSpike(m.ID),
		FlatPrice:     e.history.FlatPrice(m.ID),
	}

	if age, ok := news.NewestAgeHours(articles, pctx.Now); ok {
		pctx.BreakingNews = true
		pctx.NewsAgeHours = age
	}

	// Same-category markets from this scan stand in for comparables.
	if m.Category != "" {
		for _, other := range batch {
			if other.ID == m.ID || other.Category != m.Category {
				continue
			}
			if p, ok := other.YesPrice(); ok {
				pctx.SimilarPrices = append(pctx.SimilarPrices, p)
			}
		}
	}

	return pctx
}

// estimate queries the external estimator, falling back to the neutral
// estimate so one flaky request never aborts the cycle.
func (e *Engine) estimate(ctx context.Context, m *types.Market, summary string) types.Estimate {
	if e.estimator == nil {
		price, _ := m.YesPrice()
		return types.NeutralEstimate(price)
	}

	est, err := e.estimator.Estimate(ctx, m, summary)
	if err != nil {
		e.logger.Warn("estimate-failed",
			zap.String("market-id", m.ID),
			zap.Error(err))
		price, _ := m.YesPrice()
		return types.NeutralEstimate(price)
	}
	return est
}

// openPositions sizes and executes entries for accepted events. The ledger
// is only mutated after the entry order succeeds.
func (e *Engine) openPositions(ctx context.Context, events []types.Event) int {
	opened := 0
	for _, ev := range events {
		sizing := e.sizer.Size(ev, e.ledger)
		if sizing == nil {
			continue
		}

		// Re-check admission with the actual allocation; the sizer's
		// probe uses a smaller placeholder fraction and earlier entries
		// in this loop may have consumed capital since.
		if !e.ledger.CanOpenPosition(sizing.Capital) {
			e.logger.Info("entry-rejected-insufficient-capital",
				zap.String("market-id", ev.Market.ID),
				zap.Float64("capital-required", sizing.Capital),
				zap.Float64("available", e.ledger.AvailableCapital()))
			continue
		}

		outcome, ok := ev.Market.OutcomeBySide(sizing.Side)
		if !ok {
			continue
		}

		order := &types.OrderRequest{
			MarketID: ev.Market.ID,
			TokenID:  outcome.ID,
			Side:     sizing.Side,
			Intent:   types.IntentBuy,
			Shares:   sizing.Shares,
			Price:    sizing.EntryPrice,
		}
		result, err := e.executor.PlaceOrder(ctx, order)
		if err != nil {
			e.logger.Error("entry-order-failed",
				zap.String("market-id", ev.Market.ID),
				zap.Error(err))
			continue
		}

		pos, err := e.sizer.BuildPosition(ev, sizing)
		if err != nil {
			e.logger.Error("position-build-failed",
				zap.String("market-id", ev.Market.ID),
				zap.Error(err))
			continue
		}
		e.ledger.AddPosition(pos)

		if err := e.store.StorePosition(ctx, pos); err != nil {
			e.logger.Warn("position-persist-failed",
				zap.String("position-id", pos.ID),
				zap.Error(err))
		}

		opened++
		PositionEntriesTotal.WithLabelValues(string(sizing.Side)).Inc()
		e.logger.Info("position-opened",
			zap.String("position-id", pos.ID),
			zap.String("market-id", ev.Market.ID),
			zap.String("side", string(sizing.Side)),
			zap.Float64("shares", sizing.Shares),
			zap.Float64("entry-price", sizing.EntryPrice),
			zap.Float64("fill-price", result.FillPrice),
			zap.String("top-pattern", ev.TopPattern))

		e.placeHedge(ctx, ev, sizing)
	}
	return opened
}

// placeHedge plans and places the hedge leg after a successful entry.
// A failed hedge leaves the main position in place.
func (e *Engine) placeHedge(ctx context.Context, ev types.Event, sizing *risk.Sizing) {
	if e.hedger == nil || !e.hedger.ShouldHedge(ev.Confidence, sizing.Capital) {
		return
	}

	plan := e.hedger.Calculate(sizing.Capital, ev.Confidence)
	order := e.hedger.Order(ev.Market, sizing.Side, plan)
	if order == nil {
		return
	}

	if _, err := e.executor.PlaceOrder(ctx, order); err != nil {
		e.logger.Warn("hedge-order-failed",
			zap.String("market-id", ev.Market.ID),
			zap.Error(err))
		return
	}

	HedgesPlacedTotal.Inc()
	e.logger.Info("hedge-placed",
		zap.String("market-id", ev.Market.ID),
		zap.String("side", string(order.Side)),
		zap.Float64("shares", order.Shares),
		zap.Float64("price", order.Price),
		zap.Float64("size-usd", plan.Size))
}
