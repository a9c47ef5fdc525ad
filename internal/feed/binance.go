package feed

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/adshao/go-binance/v2"

	"github.com/yomariano/futurezxyback/internal/model"
)

// Binance streams aggregated trades over the combined stream endpoint.
// Configured symbols use the underscore contract form ("INJ_USDT"); the
// stream speaks the joined form ("INJUSDT"), so events are mapped back to
// the configured names before they enter the pipeline.
type Binance struct {
	symbols []string
	reverse map[string]string

	OnMalformed func()
	OnTickDrop  func()
}

// NewBinance builds a source for the given contract symbols.
func NewBinance(symbols []string) *Binance {
	b := &Binance{symbols: symbols, reverse: make(map[string]string, len(symbols))}
	for _, sym := range symbols {
		b.reverse[strings.ReplaceAll(sym, "_", "")] = sym
	}
	return b
}

func (b *Binance) Name() string { return "binance" }

// Run serves the combined aggTrade stream until it fails or ctx is
// cancelled.
func (b *Binance) Run(ctx context.Context, ticks chan<- model.Tick) error {
	streamSymbols := make([]string, 0, len(b.symbols))
	for _, sym := range b.symbols {
		streamSymbols = append(streamSymbols, strings.ReplaceAll(sym, "_", ""))
	}

	errCh := make(chan error, 1)
	handler := func(ev *binance.WsAggTradeEvent) {
		sym, ok := b.reverse[ev.Symbol]
		if !ok {
			return
		}
		price, err := strconv.ParseFloat(ev.Price, 64)
		if err != nil {
			if b.OnMalformed != nil {
				b.OnMalformed()
			}
			return
		}

		t := model.Tick{Symbol: sym, Timestamp: ev.Time, Price: price}
		select {
		case ticks <- t:
		default:
			if b.OnTickDrop != nil {
				b.OnTickDrop()
			}
		}
	}
	errHandler := func(err error) {
		select {
		case errCh <- err:
		default:
		}
	}

	doneC, stopC, err := binance.WsCombinedAggTradeServe(streamSymbols, handler, errHandler)
	if err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		close(stopC)
		<-doneC
		return ctx.Err()
	case err := <-errCh:
		close(stopC)
		<-doneC
		return err
	case <-doneC:
		return errors.New("binance stream closed")
	}
}
