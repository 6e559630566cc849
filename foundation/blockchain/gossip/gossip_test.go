package gossip

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ardanlabs/vaultchain/foundation/blockchain/database"
)

type fakeHandler struct {
	mu     sync.Mutex
	txs    []database.Transaction
	blocks []database.Block
}

func (f *fakeHandler) HandleTransaction(tx database.Transaction) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.txs = append(f.txs, tx)
}

func (f *fakeHandler) HandleBlock(block database.Block) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blocks = append(f.blocks, block)
}

func (f *fakeHandler) txCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.txs)
}

func (f *fakeHandler) blockCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.blocks)
}

func noopLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

func Test_Dispatch_Transaction(t *testing.T) {
	sender, _ := database.AddressFromHex("aa")
	recipient, _ := database.AddressFromHex("bb")
	tx := database.NewTransfer(sender, recipient, 5, 1)

	handler := &fakeHandler{}
	transport := New(noopLogger(), handler)

	payload := append([]byte{byte(kindNewTransaction)}, tx.Encode()...)
	if err := transport.dispatch(payload); err != nil {
		t.Fatalf("dispatch: unexpected error: %v", err)
	}

	if handler.txCount() != 1 {
		t.Fatalf("got %d transactions delivered, want 1", handler.txCount())
	}
	if !handler.txs[0].Equals(tx) {
		t.Fatal("delivered transaction does not match the original")
	}
}

func Test_Dispatch_Block(t *testing.T) {
	block := database.NewGenesisBlock(1000, 4)

	handler := &fakeHandler{}
	transport := New(noopLogger(), handler)

	payload := append([]byte{byte(kindNewBlock)}, block.Encode()...)
	if err := transport.dispatch(payload); err != nil {
		t.Fatalf("dispatch: unexpected error: %v", err)
	}

	if handler.blockCount() != 1 {
		t.Fatalf("got %d blocks delivered, want 1", handler.blockCount())
	}
	if handler.blocks[0].Hash() != block.Hash() {
		t.Fatal("delivered block does not match the original")
	}
}

func Test_Dispatch_UnknownKind(t *testing.T) {
	transport := New(noopLogger(), &fakeHandler{})

	if err := transport.dispatch([]byte{0xff, 0x00}); err == nil {
		t.Fatal("dispatch: expected an error for an unknown envelope kind")
	}
}

func Test_PeerCount_TracksLiveConnections(t *testing.T) {
	handler := &fakeHandler{}
	server := New(noopLogger(), handler)

	mux := http.NewServeMux()
	mux.HandleFunc("/gossip", func(w http.ResponseWriter, r *http.Request) {
		if err := server.ServeHTTP(w, r, "client"); err != nil {
			t.Errorf("ServeHTTP: unexpected error: %v", err)
		}
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	client := New(noopLogger(), &fakeHandler{})
	host := strings.TrimPrefix(ts.URL, "http://")
	if err := client.Dial(host); err != nil {
		t.Fatalf("Dial: unexpected error: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if server.PeerCount() == 1 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if server.PeerCount() != 1 {
		t.Fatalf("PeerCount: got %d, want 1 after a client connected", server.PeerCount())
	}
}

func Test_BroadcastTransaction_DeliversToConnectedPeer(t *testing.T) {
	serverHandler := &fakeHandler{}
	server := New(noopLogger(), serverHandler)

	mux := http.NewServeMux()
	mux.HandleFunc("/gossip", func(w http.ResponseWriter, r *http.Request) {
		if err := server.ServeHTTP(w, r, "client"); err != nil {
			t.Errorf("ServeHTTP: unexpected error: %v", err)
		}
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	clientHandler := &fakeHandler{}
	client := New(noopLogger(), clientHandler)
	host := strings.TrimPrefix(ts.URL, "http://")
	if err := client.Dial(host); err != nil {
		t.Fatalf("Dial: unexpected error: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && server.PeerCount() == 0 {
		time.Sleep(10 * time.Millisecond)
	}

	sender, _ := database.AddressFromHex("aa")
	recipient, _ := database.AddressFromHex("bb")
	tx := database.NewTransfer(sender, recipient, 1, 1)
	server.BroadcastTransaction(tx)

	deadline = time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && clientHandler.txCount() == 0 {
		time.Sleep(10 * time.Millisecond)
	}

	if clientHandler.txCount() != 1 {
		t.Fatalf("got %d transactions delivered to the client, want 1", clientHandler.txCount())
	}
	if !clientHandler.txs[0].Equals(tx) {
		t.Fatal("delivered transaction does not match the broadcast one")
	}
}
