package rpc

import (
	"encoding/json"
	"time"

	"github.com/ardanlabs/vaultchain/foundation/blockchain/database"
)

// sendTransaction builds a Transaction from params, taking care of the
// inline-payload convenience path: when inline_payload is set, the
// engine stores it in the blob store first and the transaction commits
// to the resulting hash.
func (h Handlers) sendTransaction(raw json.RawMessage) (any, error) {
	var params sendTransactionParams
	if err := h.decode(raw, &params); err != nil {
		return nil, err
	}

	sender, err := database.AddressFromHex(params.Sender)
	if err != nil {
		return nil, &validationError{msg: "sender: " + err.Error()}
	}

	now := uint64(time.Now().Unix())

	var tx database.Transaction
	switch params.Kind {
	case "transfer":
		recipient, err := database.AddressFromHex(params.Recipient)
		if err != nil {
			return nil, &validationError{msg: "recipient: " + err.Error()}
		}
		tx = database.NewTransfer(sender, recipient, params.Amount, now)

	case "token_transfer":
		recipient, err := database.AddressFromHex(params.Recipient)
		if err != nil {
			return nil, &validationError{msg: "recipient: " + err.Error()}
		}
		tokenID, err := database.ParseHash(params.TokenID)
		if err != nil {
			return nil, &validationError{msg: "token_id: " + err.Error()}
		}
		tx = database.NewTokenTransfer(sender, recipient, tokenID, params.Amount, now)

	case "storage":
		payloadHash, err := h.resolvePayloadHash(params)
		if err != nil {
			return nil, err
		}
		tx = database.NewStorage(sender, payloadHash, now)
	}

	if err := h.Engine.SubmitTransaction(tx); err != nil {
		return nil, err
	}

	return map[string]string{"transaction_hash": tx.Hash().String()}, nil
}

// resolvePayloadHash stores params.InlinePayload in the blob store and
// returns its hash, or parses params.PayloadHash directly if no inline
// payload was supplied.
func (h Handlers) resolvePayloadHash(params sendTransactionParams) (database.Hash, error) {
	if params.InlinePayload != "" {
		return h.Engine.StoreOffchainData([]byte(params.InlinePayload))
	}
	if params.PayloadHash == "" {
		return database.Hash{}, &validationError{msg: "storage transaction requires inline_payload or payload_hash"}
	}
	return database.ParseHash(params.PayloadHash)
}
