// Command loadtest measures in-process throughput and submission latency of
// the matching core under randomized order flow.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"golang.org/x/time/rate"

	"github.com/draakit/limitbook/pkg/backend/memory"
	"github.com/draakit/limitbook/pkg/core"
)

var (
	numOrders  = flag.Int("orders", 1_000_000, "Number of orders to submit")
	rateLimit  = flag.Float64("rate", 0, "Submissions per second, 0 for unlimited")
	midPrice   = flag.Int64("mid_price", 50000, "Mid price in ticks")
	spread     = flag.Int64("spread", 50, "Half-width of the price band in ticks")
	maxQty     = flag.Uint64("max_qty", 100, "Maximum order quantity")
	crossRatio = flag.Float64("cross_ratio", 0.3, "Share of orders priced through the mid")
	seed       = flag.Int64("seed", 1, "RNG seed")
)

func main() {
	flag.Parse()

	book := core.NewOrderBook(memory.NewMemoryBackend())
	rng := rand.New(rand.NewSource(*seed))

	// One histogram slot per microsecond up to 10s.
	hist := hdrhistogram.New(1, 10_000_000, 3)

	var limiter *rate.Limiter
	if *rateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(*rateLimit), 1)
	}

	ctx := context.Background()
	var trades, tradedQty uint64

	start := time.Now()
	for i := 0; i < *numOrders; i++ {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				break
			}
		}

		order := randomOrder(rng, core.OrderID(i+1))

		submitStart := time.Now()
		result, err := book.AddOrder(ctx, order)
		elapsed := time.Since(submitStart)

		if err != nil {
			fmt.Fprintf(os.Stderr, "order %d failed: %v\n", order.ID(), err)
			os.Exit(1)
		}

		hist.RecordValue(elapsed.Microseconds())
		trades += uint64(len(result))
		tradedQty += result.TotalQuantity()
	}
	total := time.Since(start)

	fmt.Printf("submitted %d orders in %s (%.0f orders/s)\n",
		*numOrders, total.Round(time.Millisecond), float64(*numOrders)/total.Seconds())
	fmt.Printf("trades: %d, traded quantity: %d, resting orders: %d\n",
		trades, tradedQty, book.Size())
	fmt.Printf("latency (us): mean=%.1f p50=%d p90=%d p99=%d p99.9=%d max=%d\n",
		hist.Mean(),
		hist.ValueAtQuantile(50),
		hist.ValueAtQuantile(90),
		hist.ValueAtQuantile(99),
		hist.ValueAtQuantile(99.9),
		hist.Max())
}

// randomOrder prices most orders passively inside the band around the mid
// and sends the rest through it as aggressive fill-and-kill orders.
func randomOrder(rng *rand.Rand, id core.OrderID) *core.Order {
	side := core.Buy
	if rng.Intn(2) == 0 {
		side = core.Sell
	}

	qty := core.Quantity(rng.Uint64()%(*maxQty) + 1)

	offset := rng.Int63n(*spread + 1)
	orderType := core.GoodTillCancel

	var price core.Price
	if rng.Float64() < *crossRatio {
		// Priced through the mid so it can sweep resting orders.
		orderType = core.FillAndKill
		if side == core.Buy {
			price = *midPrice + offset
		} else {
			price = *midPrice - offset
		}
	} else {
		if side == core.Buy {
			price = *midPrice - offset
		} else {
			price = *midPrice + offset
		}
	}

	order, err := core.NewOrder(orderType, id, side, price, qty)
	if err != nil {
		panic(err)
	}
	return order
}
