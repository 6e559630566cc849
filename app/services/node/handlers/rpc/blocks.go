package rpc

import (
	"encoding/base64"
	"encoding/json"

	"github.com/ardanlabs/vaultchain/foundation/blockchain/database"
)

func (h Handlers) getChainHeight() (any, error) {
	return map[string]uint64{"height": h.Engine.Height()}, nil
}

func (h Handlers) getBlockByHeight(raw json.RawMessage) (any, error) {
	var params getBlockByHeightParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, &validationError{msg: err.Error()}
	}

	block, err := h.Engine.GetBlockByHeight(params.Height)
	if err != nil {
		return nil, err
	}

	return toBlockView(block), nil
}

func (h Handlers) getBlockByHash(raw json.RawMessage) (any, error) {
	var params getBlockByHashParams
	if err := h.decode(raw, &params); err != nil {
		return nil, err
	}

	hash, err := database.ParseHash(params.Hash)
	if err != nil {
		return nil, &validationError{msg: err.Error()}
	}

	block, err := h.Engine.GetBlockByHash(hash)
	if err != nil {
		return nil, err
	}

	return toBlockView(block), nil
}

func (h Handlers) getOffchainData(raw json.RawMessage) (any, error) {
	var params getOffchainDataParams
	if err := h.decode(raw, &params); err != nil {
		return nil, err
	}

	hash, err := database.ParseHash(params.Hash)
	if err != nil {
		return nil, &validationError{msg: err.Error()}
	}

	payload, err := h.Engine.GetOffchainData(hash)
	if err != nil {
		return nil, err
	}

	return map[string]string{"payload_base64": base64.StdEncoding.EncodeToString(payload)}, nil
}

func toBlockView(block database.Block) blockView {
	txs := make([]transactionView, len(block.Transactions))
	for i, tx := range block.Transactions {
		txs[i] = toTransactionView(tx)
	}

	return blockView{
		Height:       block.Header.Height,
		Hash:         block.Hash().String(),
		PreviousHash: block.Header.PreviousHash.String(),
		MerkleRoot:   block.Header.MerkleRoot.String(),
		Timestamp:    block.Header.Timestamp,
		Difficulty:   block.Header.Difficulty,
		Nonce:        block.Header.Nonce,
		Transactions: txs,
	}
}

func toTransactionView(tx database.Transaction) transactionView {
	v := transactionView{
		Hash:      tx.Hash().String(),
		Sender:    tx.Sender.String(),
		Kind:      tx.Kind.String(),
		Timestamp: tx.Timestamp,
	}

	switch tx.Kind {
	case database.KindTransfer:
		v.Recipient = tx.Recipient.String()
		v.Amount = tx.Amount
	case database.KindStorage:
		v.PayloadHash = tx.PayloadHash.String()
	case database.KindTokenCreate:
		v.TokenName = tx.TokenName
		v.TokenSymbol = tx.TokenSymbol
		v.TotalSupply = tx.TotalSupply
	case database.KindTokenTransfer:
		v.Recipient = tx.Recipient.String()
		v.Amount = tx.Amount
		v.TokenID = tx.TokenID.String()
	}

	return v
}
