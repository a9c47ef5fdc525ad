package feed

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/yomariano/futurezxyback/internal/model"
)

// edgeMessage is the contract websocket frame. Ticker frames carry the
// symbol and last trade data; keepalive responses come back with channel
// "pong" and no data.
type edgeMessage struct {
	Channel string `json:"channel"`
	Symbol  string `json:"symbol"`
	Data    struct {
		LastPrice json.Number `json:"lastPrice"`
		Timestamp int64       `json:"timestamp"`
	} `json:"data"`
}

type edgeRequest struct {
	Method string         `json:"method"`
	Param  map[string]any `json:"param,omitempty"`
}

// MEXC streams ticker updates from the contract edge websocket.
type MEXC struct {
	url          string
	symbols      []string
	pingInterval time.Duration

	// OnMalformed counts frames that failed to parse into a tick.
	OnMalformed func()
	// OnTickDrop counts ticks dropped on a full output channel.
	OnTickDrop func()
}

// NewMEXC builds a source subscribing to the given contract symbols
// (exchange form, e.g. "INJ_USDT").
func NewMEXC(url string, symbols []string, pingInterval time.Duration) *MEXC {
	return &MEXC{url: url, symbols: symbols, pingInterval: pingInterval}
}

func (m *MEXC) Name() string { return "mexc" }

// Run dials, subscribes, and pumps ticks until the connection drops or ctx
// is cancelled. After setup the ping goroutine is the sole writer.
func (m *MEXC) Run(ctx context.Context, ticks chan<- model.Tick) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, m.url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	for _, sym := range m.symbols {
		sub := edgeRequest{Method: "sub.ticker", Param: map[string]any{"symbol": sym}}
		if err := conn.WriteJSON(sub); err != nil {
			return err
		}
	}
	log.Printf("[feed] mexc connected, subscribed %d symbols", len(m.symbols))

	pingCtx, cancelPing := context.WithCancel(ctx)
	defer cancelPing()
	go m.pingLoop(pingCtx, conn)

	// Unblock ReadMessage when ctx is cancelled. Tied to pingCtx so the
	// watcher dies with this connection, not at process shutdown.
	go func() {
		<-pingCtx.Done()
		conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		var msg edgeMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			if m.OnMalformed != nil {
				m.OnMalformed()
			}
			continue
		}
		// Keepalive answers and "rs."-prefixed request acks carry no tick
		// data; they are protocol frames, not malformed input.
		if msg.Channel == "pong" || strings.HasPrefix(msg.Channel, "rs.") {
			continue
		}
		if msg.Symbol == "" || msg.Data.LastPrice == "" {
			if m.OnMalformed != nil {
				m.OnMalformed()
			}
			continue
		}
		price, err := msg.Data.LastPrice.Float64()
		if err != nil || msg.Data.Timestamp <= 0 {
			if m.OnMalformed != nil {
				m.OnMalformed()
			}
			continue
		}

		t := model.Tick{Symbol: msg.Symbol, Timestamp: msg.Data.Timestamp, Price: price}
		select {
		case ticks <- t:
		default:
			if m.OnTickDrop != nil {
				m.OnTickDrop()
			}
		}
	}
}

// pingLoop keeps the edge connection alive. The server answers each ping
// with a channel "pong" frame, which the read loop skips.
func (m *MEXC) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(m.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteJSON(edgeRequest{Method: "ping"}); err != nil {
				log.Printf("[feed] mexc ping: %v", err)
				conn.Close()
				return
			}
		}
	}
}
