package verify

import (
	"context"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"

	"github.com/raid-guild/x402-agent-go/clients"
	"github.com/raid-guild/x402-agent-go/utils"
)

// LedgerVerifier checks the proof against ledger state: the proof must be the
// hash of a transaction with a successful receipt, and when a token contract
// is configured, the receipt must carry an event emitted by that contract
// (an ERC-20 transfer logs from the token contract, so a receipt without such
// an event cannot be a payment in the expected token).
type LedgerVerifier struct {
	RPCURL       string
	TokenAddress string
}

// Verify accepts the proof if its receipt is successful and token-scoped.
func (v *LedgerVerifier) Verify(ctx context.Context, proof string) error {

	// Reject anything that is not a transaction hash
	if !txHashPattern.MatchString(proof) {
		return rejected("not a transaction hash")
	}

	// Dial the Ethereum RPC client
	client, err := clients.NewEthClient(v.RPCURL)
	if err != nil {
		return utils.NewStatusError(err, http.StatusInternalServerError)
	}

	// Look up the receipt for the proof
	receipt, err := client.TransactionReceipt(ctx, common.HexToHash(proof))
	if err != nil || receipt == nil {
		// Not found and node errors both mean the payment cannot be shown
		return rejected("no receipt found")
	}

	// Reject a reverted transaction
	if receipt.Status != ethtypes.ReceiptStatusSuccessful {
		return rejected("transaction reverted")
	}

	// Require an event from the configured token contract
	if common.IsHexAddress(v.TokenAddress) {
		token := common.HexToAddress(v.TokenAddress)
		for _, eventLog := range receipt.Logs {
			if eventLog != nil && eventLog.Address == token {
				return nil
			}
		}
		return rejected("transaction did not touch the payment token")
	}

	return nil
}
