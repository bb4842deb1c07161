package core

import (
	"context"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/raid-guild/x402-agent-go/clients"
)

// BalanceConfig is the configuration for the balance read operation.
type BalanceConfig struct {
	RPCURL       string
	TokenAddress string
}

// Balance returns the token balance of the account as a decimal USD amount.
//
// The balance is advisory: any read failure returns zero and is logged rather
// than raised, so a flaky ledger node degrades the pre-flight check instead of
// aborting the whole flow.
func Balance(ctx context.Context, c BalanceConfig, account string) decimal.Decimal {

	// Verify the account is a valid address
	if !common.IsHexAddress(account) {
		log.Warn().Str("account", account).Msg("balance read skipped: invalid account address")
		return decimal.Zero
	}

	// Verify the token contract is a valid address
	if !common.IsHexAddress(c.TokenAddress) {
		log.Warn().Str("token", c.TokenAddress).Msg("balance read skipped: invalid token address")
		return decimal.Zero
	}

	// Convert the account and token contract addresses
	accountAddress := common.HexToAddress(account)
	tokenAddress := common.HexToAddress(c.TokenAddress)

	// Set the raw JSON for balanceOf
	balanceOfJSON := `[{
		"type": "function",
		"name": "balanceOf",
		"inputs": [
			{"name": "account", "type": "address"}
		],
		"outputs": [
			{"name": "", "type": "uint256"}
		],
		"constant": true
	}]`

	// Parse the contract ABI for balanceOf
	balanceOfABI, err := abi.JSON(strings.NewReader(balanceOfJSON))
	if err != nil {
		log.Warn().Err(err).Msg("balance read failed: balanceOf ABI")
		return decimal.Zero
	}

	// Pack the balanceOf function call data
	balanceOfData, err := balanceOfABI.Pack("balanceOf", accountAddress)
	if err != nil {
		log.Warn().Err(err).Msg("balance read failed: pack balanceOf call data")
		return decimal.Zero
	}

	// Dial the Ethereum RPC client
	client, err := clients.NewEthClient(c.RPCURL)
	if err != nil {
		log.Warn().Err(err).Msg("balance read failed: dial RPC client")
		return decimal.Zero
	}

	// Get the token balance of the account
	balanceResult, err := client.CallContract(ctx, ethereum.CallMsg{
		To:   &tokenAddress,
		Data: balanceOfData,
	}, nil)
	if err != nil {
		log.Warn().Err(err).Str("account", account).Msg("balance read failed: call contract")
		return decimal.Zero
	}

	// Verify the balance result is 32 bytes
	if len(balanceResult) != 32 {
		log.Warn().Int("len", len(balanceResult)).Msg("balance read failed: result is not 32 bytes")
		return decimal.Zero
	}

	// Convert the raw balance into a decimal amount
	return FromRawUnits(new(big.Int).SetBytes(balanceResult))
}
