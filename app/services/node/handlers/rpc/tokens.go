package rpc

import (
	"encoding/json"
	"time"

	"github.com/ardanlabs/vaultchain/foundation/blockchain/database"
)

// createToken submits a TokenCreate transaction on the creator's behalf.
// Unlike the JSON-metadata-in-a-storage-transaction approach an earlier
// iteration of this system used, TokenCreate is a first-class
// transaction kind here, so the token's name, symbol and supply are
// part of the canonical, hashed transaction rather than an off-chain
// blob the engine never inspects.
func (h Handlers) createToken(raw json.RawMessage) (any, error) {
	var params createTokenParams
	if err := h.decode(raw, &params); err != nil {
		return nil, err
	}

	creator, err := database.AddressFromHex(params.CreatorAddress)
	if err != nil {
		return nil, &validationError{msg: "creator_address: " + err.Error()}
	}

	tx := database.NewTokenCreate(creator, params.TokenName, params.TokenSymbol, params.InitialSupply, uint64(time.Now().Unix()))

	if err := h.Engine.SubmitTransaction(tx); err != nil {
		return nil, err
	}

	return map[string]string{
		"token_id":         tx.Hash().String(),
		"transaction_hash": tx.Hash().String(),
	}, nil
}

func (h Handlers) listTokens() (any, error) {
	tokens := h.Engine.Accounts().Tokens()

	views := make([]tokenView, len(tokens))
	for i, t := range tokens {
		views[i] = tokenView{
			ID:          t.ID.String(),
			Name:        t.Name,
			Symbol:      t.Symbol,
			TotalSupply: t.TotalSupply,
			Creator:     t.Creator.String(),
		}
	}

	return views, nil
}

func (h Handlers) getBalance(raw json.RawMessage) (any, error) {
	var params getBalanceParams
	if err := h.decode(raw, &params); err != nil {
		return nil, err
	}

	addr, err := database.AddressFromHex(params.Address)
	if err != nil {
		return nil, &validationError{msg: "address: " + err.Error()}
	}

	return map[string]uint64{"balance": h.Engine.Accounts().Balance(addr)}, nil
}

func (h Handlers) getTokenBalance(raw json.RawMessage) (any, error) {
	var params getTokenBalanceParams
	if err := h.decode(raw, &params); err != nil {
		return nil, err
	}

	addr, err := database.AddressFromHex(params.Address)
	if err != nil {
		return nil, &validationError{msg: "address: " + err.Error()}
	}

	tokenID, err := database.ParseHash(params.TokenID)
	if err != nil {
		return nil, &validationError{msg: "token_id: " + err.Error()}
	}

	return map[string]uint64{"balance": h.Engine.Accounts().TokenBalance(tokenID, addr)}, nil
}
