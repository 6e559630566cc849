// Package rpc implements the JSON-RPC 2.0 facade over the chain engine:
// a single HTTP endpoint dispatching on the envelope's method field.
package rpc

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ardanlabs/vaultchain/business/web/errs"
	"github.com/ardanlabs/vaultchain/foundation/blockchain/engine"
	"github.com/ardanlabs/vaultchain/foundation/web"
)

// Handlers answers every JSON-RPC method this node exposes.
type Handlers struct {
	Log      *zap.SugaredLogger
	Engine   *engine.Engine
	validate *validator.Validate
}

// New constructs an RPC Handlers value.
func New(log *zap.SugaredLogger, eng *engine.Engine) Handlers {
	return Handlers{
		Log:      log,
		Engine:   eng,
		validate: validator.New(),
	}
}

// Dispatch is the single POST handler serving every JSON-RPC method.
func (h Handlers) Dispatch(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return web.Respond(ctx, w, invalidParams(nil, err.Error()), http.StatusOK)
	}

	var (
		result any
		err    error
	)

	switch req.Method {
	case "send_transaction":
		result, err = h.sendTransaction(req.Params)
	case "get_chain_height":
		result, err = h.getChainHeight()
	case "get_block_by_hash":
		result, err = h.getBlockByHash(req.Params)
	case "get_block_by_height":
		result, err = h.getBlockByHeight(req.Params)
	case "get_offchain_data":
		result, err = h.getOffchainData(req.Params)
	case "create_token":
		result, err = h.createToken(req.Params)
	case "list_tokens":
		result, err = h.listTokens()
	case "get_balance":
		result, err = h.getBalance(req.Params)
	case "get_token_balance":
		result, err = h.getTokenBalance(req.Params)
	default:
		return web.Respond(ctx, w, methodNotFound(req.ID, req.Method), http.StatusOK)
	}

	if err != nil {
		if ve, ok := err.(*validationError); ok {
			return web.Respond(ctx, w, invalidParams(req.ID, ve.Error()), http.StatusOK)
		}
		return errs.NewTrusted(err)
	}

	return web.Respond(ctx, w, success(req.ID, result), http.StatusOK)
}

// validationError marks a params decode/validate failure as a JSON-RPC
// "invalid params" response rather than a Trusted engine error.
type validationError struct{ msg string }

func (e *validationError) Error() string { return e.msg }

func (h Handlers) decode(raw json.RawMessage, dst any) error {
	if err := json.Unmarshal(raw, dst); err != nil {
		return &validationError{msg: err.Error()}
	}
	if err := h.validate.Struct(dst); err != nil {
		return &validationError{msg: err.Error()}
	}
	return nil
}
