// Package gossip is the node's peer-to-peer transport: a persistent
// websocket connection per known peer carrying two logical topics, new
// transactions and new blocks, multiplexed over a single tag byte.
// Each inbound message is handed to the engine; each locally produced
// transaction or block is broadcast to every peer.
package gossip

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ardanlabs/vaultchain/foundation/blockchain/database"
)

// envelope tags distinguish the two gossip topics sharing one socket.
type envelopeKind byte

const (
	kindNewTransaction envelopeKind = 0x01
	kindNewBlock       envelopeKind = 0x02
)

const pingInterval = 15 * time.Second

// Handler receives gossip messages decoded off the wire.
type Handler interface {
	HandleTransaction(tx database.Transaction)
	HandleBlock(block database.Block)
}

// Transport manages the websocket connections to every known peer and
// the inbound upgrader for peers connecting to this node.
type Transport struct {
	log      *zap.SugaredLogger
	upgrader websocket.Upgrader
	handler  Handler

	mu    sync.RWMutex
	conns map[string]*websocket.Conn
}

// New constructs a gossip transport that delivers decoded messages to
// handler.
func New(log *zap.SugaredLogger, handler Handler) *Transport {
	return &Transport{
		log:      log,
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		handler:  handler,
		conns:    make(map[string]*websocket.Conn),
	}
}

// ServeHTTP upgrades an inbound peer connection from host and starts
// reading gossip messages from it.
func (t *Transport) ServeHTTP(w http.ResponseWriter, r *http.Request, host string) error {
	conn, err := t.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("gossip: upgrade %s: %w", host, err)
	}

	t.adopt(host, conn)
	return nil
}

// Dial opens an outbound connection to a peer at host and starts reading
// gossip messages from it.
func (t *Transport) Dial(host string) error {
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(host), nil)
	if err != nil {
		return fmt.Errorf("gossip: dial %s: %w", host, err)
	}

	t.adopt(host, conn)
	return nil
}

func (t *Transport) adopt(host string, conn *websocket.Conn) {
	t.mu.Lock()
	t.conns[host] = conn
	t.mu.Unlock()

	go t.pingLoop(host, conn)
	go t.readLoop(host, conn)
}

// pingLoop keeps an idle connection from being reaped by an intervening
// proxy or load balancer.
func (t *Transport) pingLoop(host string, conn *websocket.Conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for range ticker.C {
		t.mu.RLock()
		_, ok := t.conns[host]
		t.mu.RUnlock()
		if !ok {
			return
		}

		if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
			return
		}
	}
}

func (t *Transport) readLoop(host string, conn *websocket.Conn) {
	defer func() {
		conn.Close()
		t.mu.Lock()
		delete(t.conns, host)
		t.mu.Unlock()
	}()

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			t.log.Infow("gossip: peer connection closed", "peer", host, "error", err)
			return
		}
		if msgType != websocket.BinaryMessage || len(data) == 0 {
			continue
		}

		if err := t.dispatch(data); err != nil {
			t.log.Warnw("gossip: bad message", "peer", host, "error", err)
		}
	}
}

func (t *Transport) dispatch(data []byte) error {
	switch envelopeKind(data[0]) {
	case kindNewTransaction:
		tx, err := database.DecodeTransaction(data[1:])
		if err != nil {
			return err
		}
		t.handler.HandleTransaction(tx)

	case kindNewBlock:
		block, err := database.DecodeBlock(data[1:])
		if err != nil {
			return err
		}
		t.handler.HandleBlock(block)

	default:
		return fmt.Errorf("gossip: unknown envelope kind %#x", data[0])
	}

	return nil
}

// BroadcastTransaction sends tx to every connected peer.
func (t *Transport) BroadcastTransaction(tx database.Transaction) {
	t.broadcast(append([]byte{byte(kindNewTransaction)}, tx.Encode()...))
}

// BroadcastBlock sends block to every connected peer.
func (t *Transport) BroadcastBlock(block database.Block) {
	t.broadcast(append([]byte{byte(kindNewBlock)}, block.Encode()...))
}

func (t *Transport) broadcast(payload []byte) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for host, conn := range t.conns {
		if err := conn.WriteMessage(websocket.BinaryMessage, payload); err != nil {
			t.log.Warnw("gossip: broadcast failed", "peer", host, "error", err)
		}
	}
}

// PeerCount reports how many peers are currently connected.
func (t *Transport) PeerCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return len(t.conns)
}

func wsURL(host string) string {
	return fmt.Sprintf("ws://%s/gossip", host)
}
