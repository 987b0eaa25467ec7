// Package subscriber maintains the gateway's persistent subscription to the
// consensus node's event stream and mirrors observed blocks and transaction
// hashes into the chain store.
package subscriber

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/dytallix/testnet-gateway/metrics"
	"github.com/dytallix/testnet-gateway/store"
)

// State describes the subscriber's connection lifecycle.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateSubscribed
	StateReconnecting
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateSubscribed:
		return "subscribed"
	case StateReconnecting:
		return "reconnecting"
	default:
		return "unknown"
	}
}

// Event queries sent to the node, each with its own request id so the node
// treats them as independent subscriptions.
const (
	newBlockQuery = "tm.event='NewBlock'"
	txQuery       = "tm.event='Tx'"

	newBlockSubID = 1
	txSubID       = 2
)

// Defaults.
const (
	DefaultReconnectDelay   = 3 * time.Second
	DefaultHandshakeTimeout = 10 * time.Second
)

// Errors.
var (
	ErrNilStore       = errors.New("chain store is nil")
	ErrEmptyEndpoint  = errors.New("websocket endpoint is empty")
	ErrAlreadyRunning = errors.New("subscriber is already running")
	ErrNotRunning     = errors.New("subscriber is not running")
)

// Config holds the subscriber's injected configuration.
type Config struct {
	// WSURL is the node's websocket event endpoint.
	WSURL string

	// ReconnectDelay is the fixed wait between reconnect attempts.
	ReconnectDelay time.Duration

	// HandshakeTimeout bounds the websocket dial.
	HandshakeTimeout time.Duration
}

func (c *Config) applyDefaults() {
	if c.ReconnectDelay == 0 {
		c.ReconnectDelay = DefaultReconnectDelay
	}
	if c.HandshakeTimeout == 0 {
		c.HandshakeTimeout = DefaultHandshakeTimeout
	}
}

// Subscriber is the single long-lived consumer of the node's event stream.
// Messages are processed one at a time in arrival order; the loop has no
// terminal state under normal operation and recovers every failure by
// reconnecting.
type Subscriber struct {
	cfg        Config
	chainStore *store.ChainStore
	logger     zerolog.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
	state   atomic.Int32
}

// New creates a subscriber over the given store and configuration.
func New(cfg Config, chainStore *store.ChainStore, logger zerolog.Logger) (*Subscriber, error) {
	if chainStore == nil {
		return nil, ErrNilStore
	}
	if cfg.WSURL == "" {
		return nil, ErrEmptyEndpoint
	}
	cfg.applyDefaults()

	return &Subscriber{
		cfg:        cfg,
		chainStore: chainStore,
		logger:     logger.With().Str("component", "event_subscriber").Logger(),
	}, nil
}

// State returns the current connection state.
func (s *Subscriber) State() State {
	return State(s.state.Load())
}

// Start launches the background subscription loop.
func (s *Subscriber) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return ErrAlreadyRunning
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.ctx, s.cancel = context.WithCancel(ctx)

	s.logger.Info().
		Str("endpoint", s.cfg.WSURL).
		Dur("reconnect_delay", s.cfg.ReconnectDelay).
		Msg("starting event subscriber")

	s.wg.Add(1)
	go s.run()
	return nil
}

// Stop closes the event-stream connection and waits for the loop to exit.
func (s *Subscriber) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return ErrNotRunning
	}

	s.logger.Info().Msg("stopping event subscriber")
	close(s.stopCh)
	s.cancel()
	s.wg.Wait()

	s.running = false
	s.state.Store(int32(StateDisconnected))
	s.logger.Info().Msg("event subscriber stopped")
	return nil
}

// run is the connect/subscribe/read/reconnect loop.
func (s *Subscriber) run() {
	defer s.wg.Done()

	for {
		s.state.Store(int32(StateConnecting))

		conn, err := s.dial()
		if err != nil {
			if s.stopping() {
				return
			}
			s.logger.Warn().Err(err).Msg("failed to connect to event stream")
			if !s.backoff() {
				return
			}
			continue
		}

		if err := s.subscribe(conn); err != nil {
			conn.Close()
			s.logger.Warn().Err(err).Msg("failed to send subscription requests")
			if !s.backoff() {
				return
			}
			continue
		}

		s.state.Store(int32(StateSubscribed))
		s.logger.Info().Msg("subscribed to block and transaction events")

		s.readLoop(conn)
		conn.Close()

		if s.stopping() {
			return
		}
		if !s.backoff() {
			return
		}
	}
}

func (s *Subscriber) dial() (*websocket.Conn, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: s.cfg.HandshakeTimeout,
	}
	conn, _, err := dialer.DialContext(s.ctx, s.cfg.WSURL, nil)
	return conn, err
}

type subscribeRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  struct {
		Query string `json:"query"`
	} `json:"params"`
}

// subscribe sends the new-block and transaction subscription requests, each
// with an independent request id.
func (s *Subscriber) subscribe(conn *websocket.Conn) error {
	for id, query := range map[int]string{
		newBlockSubID: newBlockQuery,
		txSubID:       txQuery,
	} {
		req := subscribeRequest{JSONRPC: "2.0", ID: id, Method: "subscribe"}
		req.Params.Query = query
		if err := conn.WriteJSON(req); err != nil {
			return err
		}
	}
	return nil
}

// readLoop processes inbound messages until the connection fails or the
// subscriber is stopped. A stop request closes the connection to unblock the
// pending read.
func (s *Subscriber) readLoop(conn *websocket.Conn) {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-s.ctx.Done():
			conn.Close()
		case <-s.stopCh:
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if !s.stopping() {
				s.logger.Warn().Err(err).Msg("event stream closed")
				s.state.Store(int32(StateReconnecting))
			}
			return
		}
		s.handleMessage(msg)
	}
}

// backoff waits the fixed reconnect delay. Returns false when the subscriber
// was stopped while waiting.
func (s *Subscriber) backoff() bool {
	s.state.Store(int32(StateReconnecting))
	metrics.SubscriberReconnectsTotal.Inc()

	select {
	case <-time.After(s.cfg.ReconnectDelay):
		return true
	case <-s.ctx.Done():
		return false
	case <-s.stopCh:
		return false
	}
}

func (s *Subscriber) stopping() bool {
	select {
	case <-s.ctx.Done():
		return true
	case <-s.stopCh:
		return true
	default:
		return false
	}
}
