package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func heightCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "height",
		Short: "Print the current chain height",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := call(nodeAddr, "get_chain_height", nil)
			if err != nil {
				return err
			}
			return printResult(result)
		},
	}
}

func blockCmd() *cobra.Command {
	var hash string

	cmd := &cobra.Command{
		Use:   "block <height>",
		Short: "Fetch a block by height, or by --hash",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if hash != "" {
				result, err := call(nodeAddr, "get_block_by_hash", map[string]string{"hash": hash})
				if err != nil {
					return err
				}
				return printResult(result)
			}

			if len(args) != 1 {
				return fmt.Errorf("block requires a height argument or --hash")
			}
			height, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid height: %w", err)
			}

			result, err := call(nodeAddr, "get_block_by_height", map[string]uint64{"height": height})
			if err != nil {
				return err
			}
			return printResult(result)
		},
	}

	cmd.Flags().StringVar(&hash, "hash", "", "fetch by block hash instead of height")
	return cmd
}

func balanceCmd() *cobra.Command {
	var tokenID string

	cmd := &cobra.Command{
		Use:   "balance <address>",
		Short: "Print an address's native or token balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if tokenID != "" {
				result, err := call(nodeAddr, "get_token_balance", map[string]string{"token_id": tokenID, "address": args[0]})
				if err != nil {
					return err
				}
				return printResult(result)
			}

			result, err := call(nodeAddr, "get_balance", map[string]string{"address": args[0]})
			if err != nil {
				return err
			}
			return printResult(result)
		},
	}

	cmd.Flags().StringVar(&tokenID, "token", "", "query this token's balance instead of the native balance")
	return cmd
}

func sendCmd() *cobra.Command {
	var sender, recipient string
	var amount uint64

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Submit a transfer transaction",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := call(nodeAddr, "send_transaction", map[string]any{
				"sender":    sender,
				"kind":      "transfer",
				"recipient": recipient,
				"amount":    amount,
			})
			if err != nil {
				return err
			}
			return printResult(result)
		},
	}

	cmd.Flags().StringVar(&sender, "from", "", "sender address (hex)")
	cmd.Flags().StringVar(&recipient, "to", "", "recipient address (hex)")
	cmd.Flags().Uint64Var(&amount, "amount", 0, "amount to transfer")
	cmd.MarkFlagRequired("from")
	cmd.MarkFlagRequired("to")
	return cmd
}

func createTokenCmd() *cobra.Command {
	var creator, name, symbol string
	var supply uint64

	cmd := &cobra.Command{
		Use:   "create-token",
		Short: "Submit a token-create transaction",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := call(nodeAddr, "create_token", map[string]any{
				"creator_address": creator,
				"token_name":      name,
				"token_symbol":    symbol,
				"initial_supply":  supply,
			})
			if err != nil {
				return err
			}
			return printResult(result)
		},
	}

	cmd.Flags().StringVar(&creator, "creator", "", "creator address (hex)")
	cmd.Flags().StringVar(&name, "name", "", "token name")
	cmd.Flags().StringVar(&symbol, "symbol", "", "token symbol")
	cmd.Flags().Uint64Var(&supply, "supply", 0, "initial token supply")
	cmd.MarkFlagRequired("creator")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("symbol")
	cmd.MarkFlagRequired("supply")
	return cmd
}
