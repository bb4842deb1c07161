package core

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/raid-guild/x402-agent-go/clients"
)

// TransferConfig is the configuration for the transfer submission operation.
type TransferConfig struct {
	ChainID      int64
	RPCURL       string
	PrivateKey   string
	TokenAddress string
}

// Transfer submits an ERC-20 transfer of rawAmount token units to the
// recipient and returns the transaction hash. It returns as soon as the
// transaction is accepted by the node; it does not wait for finality.
//
// A rejected submission is returned verbatim so the caller can surface the
// underlying message to the user.
func Transfer(ctx context.Context, c TransferConfig, to string, rawAmount *big.Int) (string, error) {

	// Verify the recipient is a valid address
	if !common.IsHexAddress(to) {
		return "", fmt.Errorf("invalid recipient address: %s", to)
	}

	// Verify the token contract is a valid address
	if !common.IsHexAddress(c.TokenAddress) {
		return "", fmt.Errorf("invalid token address: %s", c.TokenAddress)
	}

	// Set the chain ID
	chainID := big.NewInt(c.ChainID)

	// Set the token contract address
	contractAddress := common.HexToAddress(c.TokenAddress)

	// Set the raw JSON for transfer
	contractJSON := `[{
		"type": "function",
		"name": "transfer",
		"inputs": [
			{"name": "to", "type": "address"},
			{"name": "amount", "type": "uint256"}
		],
		"outputs": [
			{"name": "", "type": "bool"}
		],
		"constant": false
	}]`

	// Parse the contract ABI for transfer
	contractABI, err := abi.JSON(strings.NewReader(contractJSON))
	if err != nil {
		return "", fmt.Errorf("failed to parse contract ABI: %v", err)
	}

	// Pack the transfer function call data
	txData, err := contractABI.Pack("transfer", common.HexToAddress(to), rawAmount)
	if err != nil {
		return "", fmt.Errorf("failed to pack transfer call data: %v", err)
	}

	// Verify the RPC URL is configured
	if c.RPCURL == "" {
		return "", fmt.Errorf("RPC_URL is not set")
	}

	// Dial the Ethereum RPC client
	client, err := clients.NewEthClient(c.RPCURL)
	if err != nil {
		return "", fmt.Errorf("failed to dial RPC client: %v", err)
	}

	// Verify the agent private key is configured
	if c.PrivateKey == "" {
		return "", fmt.Errorf("PRIVATE_KEY is not set")
	}

	// Parse the agent private key
	agentPrivateKey, err := crypto.HexToECDSA(strings.TrimPrefix(c.PrivateKey, "0x"))
	if err != nil {
		return "", fmt.Errorf("failed to parse agent private key: %v", err)
	}

	// Get the agent address
	agentAddress := crypto.PubkeyToAddress(agentPrivateKey.PublicKey)

	// Get the pending nonce for the agent account
	txNonce, err := client.PendingNonceAt(ctx, agentAddress)
	if err != nil {
		return "", fmt.Errorf("failed to get pending nonce: %v", err)
	}

	// Get the suggested gas tip cap
	gasTipCap, err := client.SuggestGasTipCap(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to suggest gas tip cap: %v", err)
	}

	// Get the latest block header to get the base fee
	blockHeader, err := client.HeaderByNumber(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to get block header: %v", err)
	}

	// Verify the block header base fee is not nil
	if blockHeader.BaseFee == nil {
		return "", fmt.Errorf("block header missing base fee: network may not support EIP-1559")
	}

	// Determine the gas fee cap (2x base fee + gas tip cap)
	gasFeeCap := new(big.Int).Add(
		new(big.Int).Mul(blockHeader.BaseFee, big.NewInt(2)),
		gasTipCap,
	)

	// Get the estimated gas limit to set the gas amount
	gasLimit, err := client.EstimateGas(ctx, ethereum.CallMsg{
		From: agentAddress,
		To:   &contractAddress,
		Data: txData,
	})
	if err != nil {
		return "", fmt.Errorf("failed to estimate gas: %v", err)
	}

	// Add 20% buffer to the gas estimate for safety
	gasLimit = gasLimit * 120 / 100

	// Create the transaction using EIP-1559
	transaction := ethtypes.NewTx(&ethtypes.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     txNonce,
		GasTipCap: gasTipCap,
		GasFeeCap: gasFeeCap,
		Gas:       gasLimit,
		To:        &contractAddress,
		Value:     big.NewInt(0),
		Data:      txData,
	})

	// Create the signer using EIP-1559
	signer := ethtypes.NewLondonSigner(chainID)

	// Sign the transaction with the agent's private key
	signedTx, err := ethtypes.SignTx(transaction, signer, agentPrivateKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign transaction: %v", err)
	}

	// Send the signed transaction, returning a rejection verbatim
	err = client.SendTransaction(ctx, signedTx)
	if err != nil {
		return "", err
	}

	// Return the transaction hash
	return signedTx.Hash().Hex(), nil
}
