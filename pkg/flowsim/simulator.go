package flowsim

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Stats accumulates what the simulator has pushed through the book
type Stats struct {
	Adds      uint64
	Cancels   uint64
	Modifies  uint64
	Trades    uint64
	TradedQty uint64
}

// Simulator feeds strategy-generated order flow into the book at a bounded
// rate. One simulator owns its book: submissions are strictly sequential,
// which is exactly the serialization the engine requires.
type Simulator struct {
	cfg      *Config
	logger   zerolog.Logger
	book     OrderSubmitter
	strategy Strategy
	limiter  *rate.Limiter
	stats    Stats
}

// NewSimulator creates a simulator around a book and a strategy
func NewSimulator(cfg *Config, logger zerolog.Logger, book OrderSubmitter, strategy Strategy) *Simulator {
	return &Simulator{
		cfg:      cfg,
		logger:   logger.With().Str("component", "flowsim").Str("symbol", cfg.Symbol).Logger(),
		book:     book,
		strategy: strategy,
		limiter:  rate.NewLimiter(rate.Limit(cfg.Rate), 1),
	}
}

// Stats returns a copy of the accumulated counters
func (s *Simulator) Stats() Stats {
	return s.stats
}

// Run submits order flow until the configured duration elapses or the
// context is cancelled. The first matching error aborts the run: it means
// the book state is corrupt and there is nothing sensible to continue with.
func (s *Simulator) Run(ctx context.Context) error {
	if s.cfg.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Duration)
		defer cancel()
	}

	s.logger.Info().
		Int64("mid_price", s.cfg.MidPrice).
		Float64("rate", s.cfg.Rate).
		Dur("duration", s.cfg.Duration).
		Msg("Starting order-flow simulation")

	for {
		if err := s.limiter.Wait(ctx); err != nil {
			// Deadline or cancellation ends the run normally.
			s.report()
			return nil
		}

		if err := s.step(ctx); err != nil {
			s.report()
			return err
		}
	}
}

// step submits a single action
func (s *Simulator) step(ctx context.Context) error {
	action := s.strategy.Next()

	switch action.Kind {
	case ActionAdd:
		trades, err := s.book.AddOrder(ctx, action.Order)
		if err != nil {
			return fmt.Errorf("add order %d: %w", action.Order.ID(), err)
		}
		s.stats.Adds++
		s.stats.Trades += uint64(len(trades))
		s.stats.TradedQty += trades.TotalQuantity()

	case ActionCancel:
		s.book.CancelOrder(ctx, action.CancelID)
		s.stats.Cancels++

	case ActionModify:
		trades, err := s.book.ModifyOrder(ctx, action.Modify)
		if err != nil {
			return fmt.Errorf("modify order %d: %w", action.Modify.ID(), err)
		}
		s.stats.Modifies++
		s.stats.Trades += uint64(len(trades))
		s.stats.TradedQty += trades.TotalQuantity()
	}

	return nil
}

func (s *Simulator) report() {
	s.logger.Info().
		Uint64("adds", s.stats.Adds).
		Uint64("cancels", s.stats.Cancels).
		Uint64("modifies", s.stats.Modifies).
		Uint64("trades", s.stats.Trades).
		Uint64("traded_qty", s.stats.TradedQty).
		Int("resting_orders", s.book.Size()).
		Msg("Simulation finished")
}
