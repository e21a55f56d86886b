package flowsim

import (
	"math/rand"

	"github.com/draakit/limitbook/pkg/core"
)

// recentWindow bounds how many of its own order ids the strategy keeps as
// cancel/modify targets. Targets that were filled or cancelled in the
// meantime simply become no-ops in the engine, which is part of the point:
// the tolerant paths get exercised too.
const recentWindow = 256

// RandomWalkStrategy generates order flow around a drifting mid price:
// passive good-till-cancel ladders on both sides, aggressive fill-and-kill
// orders through the spread, and cancels/modifies of recent orders.
// Deterministic for a fixed seed.
type RandomWalkStrategy struct {
	cfg    *Config
	rng    *rand.Rand
	mid    core.Price
	nextID core.OrderID
	recent []core.OrderID
}

// NewRandomWalkStrategy creates a strategy seeded from the config
func NewRandomWalkStrategy(cfg *Config) *RandomWalkStrategy {
	return &RandomWalkStrategy{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
		mid: cfg.MidPrice,
	}
}

// Next implements Strategy
func (s *RandomWalkStrategy) Next() Action {
	s.drift()

	roll := s.rng.Float64()
	switch {
	case roll < s.cfg.CancelRatio && len(s.recent) > 0:
		return Action{Kind: ActionCancel, CancelID: s.pickRecent()}
	case roll < s.cfg.CancelRatio+s.cfg.ModifyRatio && len(s.recent) > 0:
		return s.modifyAction()
	case roll < s.cfg.CancelRatio+s.cfg.ModifyRatio+s.cfg.CrossRatio:
		return s.crossAction()
	default:
		return s.ladderAction()
	}
}

// drift moves the mid price by at most WalkStep ticks in either direction,
// never at or below zero.
func (s *RandomWalkStrategy) drift() {
	step := s.rng.Int63n(2*s.cfg.WalkStep+1) - s.cfg.WalkStep
	if s.mid+step > 0 {
		s.mid += step
	}
}

// ladderAction places a passive GTC order a random number of levels away
// from the mid.
func (s *RandomWalkStrategy) ladderAction() Action {
	side := s.randomSide()
	offset := core.Price(1+s.rng.Intn(s.cfg.NumLevels)) * s.cfg.LevelStep

	price := s.mid - offset
	if side == core.Sell {
		price = s.mid + offset
	}

	order, _ := core.NewOrder(core.GoodTillCancel, s.issueID(), side, price, s.orderQty())
	return Action{Kind: ActionAdd, Order: order}
}

// crossAction places an aggressive FAK order through the spread.
func (s *RandomWalkStrategy) crossAction() Action {
	side := s.randomSide()
	offset := core.Price(1+s.rng.Intn(s.cfg.NumLevels)) * s.cfg.LevelStep

	// Priced beyond the far ladder so it sweeps whatever is resting.
	price := s.mid + offset
	if side == core.Sell {
		price = s.mid - offset
	}

	order, _ := core.NewOrder(core.FillAndKill, s.issueID(), side, price, s.orderQty())
	return Action{Kind: ActionAdd, Order: order}
}

// modifyAction reprices a recent order near the current mid.
func (s *RandomWalkStrategy) modifyAction() Action {
	side := s.randomSide()
	offset := core.Price(1+s.rng.Intn(s.cfg.NumLevels)) * s.cfg.LevelStep

	price := s.mid - offset
	if side == core.Sell {
		price = s.mid + offset
	}

	return Action{
		Kind:   ActionModify,
		Modify: core.NewOrderModify(s.pickRecent(), side, price, s.orderQty()),
	}
}

func (s *RandomWalkStrategy) randomSide() core.Side {
	if s.rng.Float64() < 0.5 {
		return core.Buy
	}
	return core.Sell
}

func (s *RandomWalkStrategy) orderQty() core.Quantity {
	// 1x to 2x the configured size.
	return s.cfg.OrderSize + core.Quantity(s.rng.Int63n(int64(s.cfg.OrderSize)+1))
}

func (s *RandomWalkStrategy) issueID() core.OrderID {
	s.nextID++
	id := s.nextID

	s.recent = append(s.recent, id)
	if len(s.recent) > recentWindow {
		s.recent = s.recent[1:]
	}
	return id
}

func (s *RandomWalkStrategy) pickRecent() core.OrderID {
	return s.recent[s.rng.Intn(len(s.recent))]
}

// Ensure RandomWalkStrategy implements Strategy
var _ Strategy = (*RandomWalkStrategy)(nil)
