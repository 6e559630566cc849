package rpc_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/ardanlabs/vaultchain/app/services/node/handlers/rpc"
	"github.com/ardanlabs/vaultchain/business/web/errs"
	"github.com/ardanlabs/vaultchain/foundation/blockchain/engine"
	"github.com/ardanlabs/vaultchain/foundation/blockchain/genesis"
)

func newTestHandlers(t *testing.T) rpc.Handlers {
	t.Helper()

	g := genesis.Default()
	g.InitialDifficulty = 1
	g.MinDifficulty = 1

	eng, err := engine.New(engine.Config{
		Genesis:  g,
		ChainDir: t.TempDir(),
		BlobDir:  t.TempDir(),
	})
	if err != nil {
		t.Fatalf("engine.New: unexpected error: %v", err)
	}
	t.Cleanup(func() { eng.Close() })

	return rpc.New(zap.NewNop().Sugar(), eng)
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result"`
	Error   *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	ID json.RawMessage `json:"id"`
}

func call(t *testing.T, h rpc.Handlers, method string, params any) (rpcResponse, error) {
	t.Helper()

	body := map[string]any{
		"jsonrpc": "2.0",
		"method":  method,
		"id":      1,
	}
	if params != nil {
		raw, err := json.Marshal(params)
		if err != nil {
			t.Fatalf("marshal params: %v", err)
		}
		body["params"] = json.RawMessage(raw)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/rpc", bytes.NewReader(payload))
	w := httptest.NewRecorder()

	dispatchErr := h.Dispatch(context.Background(), w, req)
	if dispatchErr != nil {
		return rpcResponse{}, dispatchErr
	}

	var resp rpcResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}

	return resp, nil
}

func Test_GetChainHeight(t *testing.T) {
	h := newTestHandlers(t)

	resp, err := call(t, h, "get_chain_height", nil)
	if err != nil {
		t.Fatalf("Dispatch: unexpected error: %v", err)
	}
	if resp.Error != nil {
		t.Fatalf("get_chain_height: unexpected RPC error: %+v", resp.Error)
	}

	var result struct {
		Height uint64 `json:"height"`
	}
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
	if result.Height != 0 {
		t.Fatalf("Height: got %d, want 0 on a fresh chain", result.Height)
	}
}

func Test_UnknownMethod(t *testing.T) {
	h := newTestHandlers(t)

	resp, err := call(t, h, "not_a_real_method", nil)
	if err != nil {
		t.Fatalf("Dispatch: unexpected error: %v", err)
	}
	if resp.Error == nil {
		t.Fatal("expected a JSON-RPC error for an unknown method")
	}
	if resp.Error.Code != -32601 {
		t.Fatalf("Code: got %d, want -32601 (method not found)", resp.Error.Code)
	}
}

func Test_SendTransaction_InvalidParamsRejected(t *testing.T) {
	h := newTestHandlers(t)

	resp, err := call(t, h, "send_transaction", map[string]any{
		"sender": "not-hex",
		"kind":   "transfer",
	})
	if err != nil {
		t.Fatalf("Dispatch: unexpected error: %v", err)
	}
	if resp.Error == nil {
		t.Fatal("expected a JSON-RPC error for an invalid sender")
	}
	if resp.Error.Code != -32602 {
		t.Fatalf("Code: got %d, want -32602 (invalid params)", resp.Error.Code)
	}
}

func Test_SendTransaction_TransferSucceeds(t *testing.T) {
	h := newTestHandlers(t)

	resp, err := call(t, h, "send_transaction", map[string]any{
		"sender":    "aa",
		"kind":      "transfer",
		"recipient": "bb",
		"amount":    10,
	})
	if err != nil {
		t.Fatalf("Dispatch: unexpected error: %v", err)
	}
	if resp.Error != nil {
		t.Fatalf("send_transaction: unexpected RPC error: %+v", resp.Error)
	}

	var result struct {
		TransactionHash string `json:"transaction_hash"`
	}
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
	if result.TransactionHash == "" {
		t.Fatal("expected a non-empty transaction hash")
	}
}

func Test_GetBlockByHeight_NotFound(t *testing.T) {
	h := newTestHandlers(t)

	_, err := call(t, h, "get_block_by_height", map[string]any{"height": 99})
	if err == nil {
		t.Fatal("Dispatch: expected a Trusted error for a missing block")
	}
	trusted := errs.GetTrusted(err)
	if trusted == nil {
		t.Fatalf("Dispatch: got error %v, want an *errs.Trusted", err)
	}
	if trusted.Code != -32001 {
		t.Fatalf("Code: got %d, want -32001 (not found)", trusted.Code)
	}
}

func Test_CreateTokenAndListTokens(t *testing.T) {
	h := newTestHandlers(t)

	resp, err := call(t, h, "create_token", map[string]any{
		"creator_address": "aa",
		"token_name":      "Vault",
		"token_symbol":    "VLT",
		"initial_supply":  1000,
	})
	if err != nil {
		t.Fatalf("Dispatch: unexpected error: %v", err)
	}
	if resp.Error != nil {
		t.Fatalf("create_token: unexpected RPC error: %+v", resp.Error)
	}

	// Tokens are only reflected in the ledger once their creating
	// transaction is mined into a block.
	if _, err := h.Engine.MineBlock(context.Background()); err != nil {
		t.Fatalf("MineBlock: unexpected error: %v", err)
	}

	resp, err = call(t, h, "list_tokens", nil)
	if err != nil {
		t.Fatalf("Dispatch: unexpected error: %v", err)
	}
	if resp.Error != nil {
		t.Fatalf("list_tokens: unexpected RPC error: %+v", resp.Error)
	}

	var tokens []struct {
		Name   string `json:"name"`
		Symbol string `json:"symbol"`
	}
	if err := json.Unmarshal(resp.Result, &tokens); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
	if len(tokens) != 1 {
		t.Fatalf("list_tokens: got %d tokens, want 1", len(tokens))
	}
}

func Test_MalformedJSON(t *testing.T) {
	h := newTestHandlers(t)

	req := httptest.NewRequest(http.MethodPost, "/rpc", bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()

	if err := h.Dispatch(context.Background(), w, req); err != nil {
		t.Fatalf("Dispatch: unexpected error: %v", err)
	}

	var resp rpcResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Error == nil || resp.Error.Code != -32602 {
		t.Fatalf("expected an invalid-params error for malformed JSON, got %+v", resp.Error)
	}
}
