package core

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/rs/zerolog/log"

	"github.com/raid-guild/x402-agent-go/clients"
)

// Defaults for the confirmation poller. The attempt ceiling gives a total
// timeout budget of roughly 30 seconds, short enough that fixed-interval
// polling is preferred over backoff.
const (
	DefaultMaxAttempts  = 30
	DefaultPollInterval = time.Second
)

// ConfirmConfig is the configuration for the confirmation poller.
type ConfirmConfig struct {
	RPCURL      string
	MaxAttempts int
	Interval    time.Duration
}

// WaitForConfirmation polls the ledger for the receipt of a submitted
// transaction at a fixed interval and returns true only on a success receipt.
//
// It returns false once MaxAttempts polls found no receipt, or as soon as a
// failure receipt is observed. Transient read errors are treated exactly like
// "receipt not yet found" and polling continues. The timeout is an attempt
// ceiling, not wall clock. Cancelling the context stops the loop between
// polls.
func WaitForConfirmation(ctx context.Context, c ConfirmConfig, txHash string) bool {

	// Apply the poller defaults
	maxAttempts := c.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	interval := c.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	// Dial the Ethereum RPC client
	client, err := clients.NewEthClient(c.RPCURL)
	if err != nil {
		log.Warn().Err(err).Msg("confirmation poll aborted: dial RPC client")
		return false
	}

	// Convert the transaction hash
	hash := common.HexToHash(txHash)

	// Poll for the receipt up to the attempt ceiling
	for attempt := 1; attempt <= maxAttempts; attempt++ {

		// Check for a receipt, treating a read error the same as not found
		receipt, err := client.TransactionReceipt(ctx, hash)
		if err == nil && receipt != nil {
			// A terminal receipt ends the poll either way
			confirmed := receipt.Status == ethtypes.ReceiptStatusSuccessful
			log.Debug().Str("tx", txHash).Int("attempt", attempt).Bool("confirmed", confirmed).
				Msg("receipt found")
			return confirmed
		}
		log.Debug().Str("tx", txHash).Int("attempt", attempt).Msg("receipt not found yet")

		// Skip the final sleep once attempts are exhausted
		if attempt == maxAttempts {
			break
		}

		// Sleep until the next poll unless cancelled
		select {
		case <-ctx.Done():
			log.Debug().Str("tx", txHash).Msg("confirmation poll cancelled")
			return false
		case <-time.After(interval):
		}
	}

	return false
}
