package subscriber

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dytallix/testnet-gateway/db"
	"github.com/dytallix/testnet-gateway/store"
)

func TestNewValidation(t *testing.T) {
	database, err := db.OpenInMemoryDB(true)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	cs := store.NewChainStore(database.Client())

	t.Run("rejects nil store", func(t *testing.T) {
		_, err := New(Config{WSURL: "ws://x"}, nil, zerolog.Nop())
		assert.ErrorIs(t, err, ErrNilStore)
	})

	t.Run("rejects empty endpoint", func(t *testing.T) {
		_, err := New(Config{}, cs, zerolog.Nop())
		assert.ErrorIs(t, err, ErrEmptyEndpoint)
	})

	t.Run("applies defaults", func(t *testing.T) {
		sub, err := New(Config{WSURL: "ws://x"}, cs, zerolog.Nop())
		require.NoError(t, err)
		assert.Equal(t, DefaultReconnectDelay, sub.cfg.ReconnectDelay)
		assert.Equal(t, DefaultHandshakeTimeout, sub.cfg.HandshakeTimeout)
	})
}

// fakeEventNode is a websocket endpoint that records subscription requests
// and pushes canned event messages to each connection. Closing the current
// events channel ends the connection; a fresh channel serves the next one.
type fakeEventNode struct {
	srv      *httptest.Server
	upgrader websocket.Upgrader

	subscriptions chan subscribeRequest

	mu     sync.Mutex
	events chan []byte
}

func newFakeEventNode(t *testing.T) *fakeEventNode {
	t.Helper()
	n := &fakeEventNode{
		subscriptions: make(chan subscribeRequest, 16),
		events:        make(chan []byte, 16),
	}
	n.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := n.upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		go func() {
			for {
				var req subscribeRequest
				if err := conn.ReadJSON(&req); err != nil {
					return
				}
				n.subscriptions <- req
			}
		}()

		for msg := range n.eventChannel() {
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		}
	}))
	t.Cleanup(n.srv.Close)
	return n
}

func (n *fakeEventNode) eventChannel() chan []byte {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.events
}

func (n *fakeEventNode) push(msg []byte) {
	n.eventChannel() <- msg
}

// dropConnection closes the current connection server-side.
func (n *fakeEventNode) dropConnection() {
	n.mu.Lock()
	defer n.mu.Unlock()
	close(n.events)
	n.events = make(chan []byte, 16)
}

func (n *fakeEventNode) wsURL() string {
	return "ws" + strings.TrimPrefix(n.srv.URL, "http")
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestSubscriberLoop(t *testing.T) {
	node := newFakeEventNode(t)

	database, err := db.OpenInMemoryDB(true)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	cs := store.NewChainStore(database.Client())

	sub, err := New(Config{
		WSURL:          node.wsURL(),
		ReconnectDelay: 50 * time.Millisecond,
	}, cs, zerolog.Nop())
	require.NoError(t, err)

	require.NoError(t, sub.Start(context.Background()))

	t.Run("sends both subscription requests", func(t *testing.T) {
		got := map[int]string{}
		for i := 0; i < 2; i++ {
			select {
			case req := <-node.subscriptions:
				assert.Equal(t, "2.0", req.JSONRPC)
				assert.Equal(t, "subscribe", req.Method)
				got[req.ID] = req.Params.Query
			case <-time.After(5 * time.Second):
				t.Fatal("timed out waiting for subscription request")
			}
		}
		assert.Equal(t, map[int]string{
			newBlockSubID: newBlockQuery,
			txSubID:       txQuery,
		}, got)
	})

	t.Run("delivered events reach the store", func(t *testing.T) {
		waitFor(t, func() bool { return sub.State() == StateSubscribed }, "never subscribed")

		node.push(newBlockEvent(`"300"`, "LIVEHASH", 1))

		waitFor(t, func() bool {
			block, err := cs.GetBlock(300)
			return err == nil && block != nil
		}, "block event never indexed")
	})

	t.Run("double start is rejected", func(t *testing.T) {
		assert.ErrorIs(t, sub.Start(context.Background()), ErrAlreadyRunning)
	})

	t.Run("stop is clean and idempotent-checked", func(t *testing.T) {
		require.NoError(t, sub.Stop())
		assert.Equal(t, StateDisconnected, sub.State())
		assert.ErrorIs(t, sub.Stop(), ErrNotRunning)
	})
}

func TestSubscriberReconnects(t *testing.T) {
	node := newFakeEventNode(t)

	database, err := db.OpenInMemoryDB(true)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	cs := store.NewChainStore(database.Client())

	sub, err := New(Config{
		WSURL:          node.wsURL(),
		ReconnectDelay: 50 * time.Millisecond,
	}, cs, zerolog.Nop())
	require.NoError(t, err)

	require.NoError(t, sub.Start(context.Background()))
	t.Cleanup(func() { _ = sub.Stop() })

	// First connection subscribes.
	for i := 0; i < 2; i++ {
		select {
		case <-node.subscriptions:
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for first subscription")
		}
	}

	// Ending the server handler closes the connection; the subscriber must
	// dial and subscribe again.
	node.dropConnection()

	for i := 0; i < 2; i++ {
		select {
		case <-node.subscriptions:
		case <-time.After(5 * time.Second):
			t.Fatal("subscriber did not resubscribe after disconnect")
		}
	}
}
