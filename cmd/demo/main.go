// Command demo walks the public order book surface through a fixed set of
// scenarios: resting and cancelling, exact matching, partial fills,
// fill-and-kill discard, and a multi-level sweep.
package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/nikolaydubina/fpdecimal"

	"github.com/draakit/limitbook/pkg/backend/memory"
	"github.com/draakit/limitbook/pkg/core"
)

var (
	cyan  = color.New(color.FgCyan).SprintfFunc()
	red   = color.New(color.FgRed).SprintfFunc()
	green = color.New(color.FgGreen).SprintfFunc()
)

func main() {
	color.NoColor = false

	tick, err := fpdecimal.FromString("0.001")
	if err != nil {
		fmt.Fprintf(os.Stderr, "bad tick size: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	restAndCancel(ctx, tick)
	exactMatch(ctx, tick)
	partialFill(ctx, tick)
	fillAndKill(ctx, tick)
	sweep(ctx, tick)
}

func newBook() *core.OrderBook {
	return core.NewOrderBook(memory.NewMemoryBackend())
}

func mustOrder(orderType core.OrderType, id core.OrderID, side core.Side, price core.Price, qty core.Quantity) *core.Order {
	order, err := core.NewOrder(orderType, id, side, price, qty)
	if err != nil {
		panic(err)
	}
	return order
}

func restAndCancel(ctx context.Context, tick fpdecimal.Decimal) {
	fmt.Println(cyan("\n== Rest and cancel =="))
	book := newBook()

	trades, _ := book.AddOrder(ctx, mustOrder(core.GoodTillCancel, 1, core.Buy, 100, 10))
	fmt.Printf("added buy 10@100: trades=%d, resting=%d\n", len(trades), book.Size())
	printBook(book, tick)

	book.CancelOrder(ctx, 1)
	fmt.Printf("cancelled id=1: resting=%d\n", book.Size())
}

func exactMatch(ctx context.Context, tick fpdecimal.Decimal) {
	fmt.Println(cyan("\n== Exact match =="))
	book := newBook()

	book.AddOrder(ctx, mustOrder(core.GoodTillCancel, 2, core.Buy, 100, 5))
	trades, _ := book.AddOrder(ctx, mustOrder(core.GoodTillCancel, 3, core.Sell, 100, 5))

	for _, t := range trades {
		printTrade(t, tick)
	}
	fmt.Printf("resting=%d\n", book.Size())
}

func partialFill(ctx context.Context, tick fpdecimal.Decimal) {
	fmt.Println(cyan("\n== Partial fill =="))
	book := newBook()

	book.AddOrder(ctx, mustOrder(core.GoodTillCancel, 4, core.Buy, 100, 10))
	trades, _ := book.AddOrder(ctx, mustOrder(core.GoodTillCancel, 5, core.Sell, 100, 6))

	for _, t := range trades {
		printTrade(t, tick)
	}
	fmt.Printf("resting=%d\n", book.Size())
	printBook(book, tick)
}

func fillAndKill(ctx context.Context, tick fpdecimal.Decimal) {
	fmt.Println(cyan("\n== Fill-and-kill =="))
	book := newBook()

	book.AddOrder(ctx, mustOrder(core.GoodTillCancel, 6, core.Sell, 100, 5))
	trades, _ := book.AddOrder(ctx, mustOrder(core.FillAndKill, 7, core.Buy, 100, 10))

	for _, t := range trades {
		printTrade(t, tick)
	}
	// The 5 unmatched lots of order 7 never rest.
	fmt.Printf("resting=%d\n", book.Size())
}

func sweep(ctx context.Context, tick fpdecimal.Decimal) {
	fmt.Println(cyan("\n== Multi-level sweep =="))
	book := newBook()

	book.AddOrder(ctx, mustOrder(core.GoodTillCancel, 10, core.Sell, 101, 3))
	book.AddOrder(ctx, mustOrder(core.GoodTillCancel, 11, core.Sell, 102, 3))
	book.AddOrder(ctx, mustOrder(core.GoodTillCancel, 12, core.Sell, 103, 3))
	printBook(book, tick)

	trades, _ := book.AddOrder(ctx, mustOrder(core.GoodTillCancel, 13, core.Buy, 103, 8))
	for _, t := range trades {
		printTrade(t, tick)
	}
	fmt.Printf("resting=%d\n", book.Size())
	printBook(book, tick)
}

func printTrade(t core.Trade, tick fpdecimal.Decimal) {
	fmt.Printf("trade: buy#%d @%s  x  sell#%d @%s  qty=%d\n",
		t.Bid.OrderID, renderPrice(t.Bid.Price, tick),
		t.Ask.OrderID, renderPrice(t.Ask.Price, tick),
		t.Quantity())
}

func printBook(book *core.OrderBook, tick fpdecimal.Decimal) {
	levels := book.GetLevels()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.AlignRight)
	fmt.Fprintf(w, "%s\t%s\t%s\t\n", cyan("Price"), cyan("Quantity"), cyan("Side"))

	// Asks worst-first so the best prices meet in the middle.
	for i := len(levels.Asks) - 1; i >= 0; i-- {
		lvl := levels.Asks[i]
		fmt.Fprintf(w, "%s\t%d\t%s\t\n", renderPrice(lvl.Price, tick), lvl.Quantity, red("ASK"))
	}
	for _, lvl := range levels.Bids {
		fmt.Fprintf(w, "%s\t%d\t%s\t\n", renderPrice(lvl.Price, tick), lvl.Quantity, green("BID"))
	}
	w.Flush()
}

// renderPrice converts a tick count to a human-readable decimal price
func renderPrice(price core.Price, tick fpdecimal.Decimal) string {
	return tick.Mul(fpdecimal.FromInt(price)).String()
}
