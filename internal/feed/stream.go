package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/quantarc/alphabench/internal/core"
	"go.uber.org/zap"
)

// streamQuote is the wire format of one quote message.
type streamQuote struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
	Volume int64   `json:"volume"`
	Bid    float64 `json:"bid"`
	Ask    float64 `json:"ask"`
	Time   int64   `json:"time"` // unix millis
}

// subscribeMsg is sent after connecting to select symbols.
type subscribeMsg struct {
	Op      string   `json:"op"`
	Symbols []string `json:"symbols"`
}

// Stream consumes live quotes over a websocket and fans them into a
// channel. Reconnecting is left to the caller; Run returns on the first
// terminal error or context cancellation.
type Stream struct {
	url    string
	logger *zap.Logger

	readTimeout  time.Duration
	writeTimeout time.Duration
	pingInterval time.Duration

	mu   sync.Mutex
	conn *websocket.Conn

	quotes chan core.Quote
}

// NewStream creates a quote stream client for the given websocket URL.
func NewStream(url string, logger *zap.Logger) *Stream {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Stream{
		url:          url,
		logger:       logger,
		readTimeout:  60 * time.Second,
		writeTimeout: 10 * time.Second,
		pingInterval: 20 * time.Second,
		quotes:       make(chan core.Quote, 1024),
	}
}

// Quotes returns the channel live quotes are delivered on.
func (s *Stream) Quotes() <-chan core.Quote {
	return s.quotes
}

// Run dials the feed, subscribes the symbols and pumps quotes until the
// context is cancelled or the connection fails.
func (s *Stream) Run(ctx context.Context, symbols []string) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", s.url, err)
	}
	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()
	defer conn.Close()

	s.logger.Info("quote stream connected",
		zap.String("url", s.url),
		zap.Int("symbols", len(symbols)),
	)

	sub := subscribeMsg{Op: "subscribe", Symbols: symbols}
	conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
	if err := conn.WriteJSON(sub); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}

	// Ping loop keeps the connection alive while reads block.
	pingDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(s.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-pingDone:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.mu.Lock()
				conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
				err := conn.WriteMessage(websocket.PingMessage, nil)
				s.mu.Unlock()
				if err != nil {
					s.logger.Warn("ping failed", zap.Error(err))
					return
				}
			}
		}
	}()
	defer close(pingDone)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		conn.SetReadDeadline(time.Now().Add(s.readTimeout))
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read: %w", err)
		}

		var msg streamQuote
		if err := json.Unmarshal(payload, &msg); err != nil {
			s.logger.Debug("dropping malformed quote", zap.Error(err))
			continue
		}

		quote := core.Quote{
			Symbol: msg.Symbol,
			Price:  msg.Price,
			Volume: msg.Volume,
			Bid:    msg.Bid,
			Ask:    msg.Ask,
			Time:   time.UnixMilli(msg.Time),
			Source: "stream",
		}
		if !quote.IsValid() {
			continue
		}

		select {
		case s.quotes <- quote:
		default:
			// Slow consumer: drop the oldest quote to keep the feed current.
			select {
			case <-s.quotes:
			default:
			}
			s.quotes <- quote
		}
	}
}
