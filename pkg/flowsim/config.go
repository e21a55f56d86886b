package flowsim

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the order-flow simulator
type Config struct {
	// Market settings
	Symbol   string // e.g., "BTC-USDT"
	MidPrice int64  // starting mid price, in ticks
	WalkStep int64  // max per-iteration drift of the mid price, in ticks

	// Flow shape
	NumLevels   int     // ladder depth on each side of the mid
	LevelStep   int64   // tick distance between ladder levels
	OrderSize   uint64  // quantity per generated order
	CrossRatio  float64 // share of aggressive fill-and-kill orders
	CancelRatio float64 // share of cancels of recently placed orders
	ModifyRatio float64 // share of modifies of recently placed orders

	// Run settings
	Rate     float64 // submissions per second
	Seed     int64
	Duration time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	v := viper.New()

	v.SetDefault("SIM_SYMBOL", "BTC-USDT")
	v.SetDefault("SIM_MID_PRICE", 50000)
	v.SetDefault("SIM_WALK_STEP", 5)
	v.SetDefault("SIM_NUM_LEVELS", 5)
	v.SetDefault("SIM_LEVEL_STEP", 10)
	v.SetDefault("SIM_ORDER_SIZE", 100)
	v.SetDefault("SIM_CROSS_RATIO", 0.2)
	v.SetDefault("SIM_CANCEL_RATIO", 0.1)
	v.SetDefault("SIM_MODIFY_RATIO", 0.05)
	v.SetDefault("SIM_RATE", 1000.0)
	v.SetDefault("SIM_SEED", 42)
	v.SetDefault("SIM_DURATION_SECONDS", 60)

	v.AutomaticEnv()

	cfg := &Config{
		Symbol:      v.GetString("SIM_SYMBOL"),
		MidPrice:    v.GetInt64("SIM_MID_PRICE"),
		WalkStep:    v.GetInt64("SIM_WALK_STEP"),
		NumLevels:   v.GetInt("SIM_NUM_LEVELS"),
		LevelStep:   v.GetInt64("SIM_LEVEL_STEP"),
		OrderSize:   v.GetUint64("SIM_ORDER_SIZE"),
		CrossRatio:  v.GetFloat64("SIM_CROSS_RATIO"),
		CancelRatio: v.GetFloat64("SIM_CANCEL_RATIO"),
		ModifyRatio: v.GetFloat64("SIM_MODIFY_RATIO"),
		Rate:        v.GetFloat64("SIM_RATE"),
		Seed:        v.GetInt64("SIM_SEED"),
		Duration:    time.Duration(v.GetInt("SIM_DURATION_SECONDS")) * time.Second,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for consistency
func (c *Config) Validate() error {
	if c.MidPrice <= 0 {
		return fmt.Errorf("mid price must be positive, got %d", c.MidPrice)
	}
	if c.NumLevels <= 0 {
		return fmt.Errorf("number of levels must be positive, got %d", c.NumLevels)
	}
	if c.LevelStep <= 0 {
		return fmt.Errorf("level step must be positive, got %d", c.LevelStep)
	}
	if c.OrderSize == 0 {
		return fmt.Errorf("order size must be positive")
	}
	if c.CrossRatio < 0 || c.CancelRatio < 0 || c.ModifyRatio < 0 ||
		c.CrossRatio+c.CancelRatio+c.ModifyRatio > 1 {
		return fmt.Errorf("cross/cancel/modify ratios must be non-negative and sum to at most 1")
	}
	if c.Rate <= 0 {
		return fmt.Errorf("rate must be positive, got %f", c.Rate)
	}
	return nil
}
