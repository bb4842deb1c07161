package core

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/raid-guild/x402-agent-go/types"
)

// PayConfig is the configuration for the pay operation.
type PayConfig struct {
	ChainID      int64
	RPCURL       string
	PrivateKey   string
	TokenAddress string
	MaxAttempts  int
	PollInterval time.Duration
}

// Pay runs one payment end to end: balance check, transfer submission,
// confirmation polling. Every failure is converted into a terminal
// PayResponse here; nothing escapes to the caller as an error.
//
// The operation is a pure function of its inputs, so concurrent payments do
// not interfere: each gets its own transaction hash and poll loop.
func Pay(ctx context.Context, c PayConfig, req types.PaymentRequest) types.PayResponse {

	state := types.PayStateIdle

	// Verify the requested amount is positive
	if req.Amount <= 0 {
		return failed(state, types.FailureReasonInvalidAmount,
			fmt.Sprintf("invalid payment amount: %v", req.Amount))
	}

	// Verify the recipient is a valid address
	if !common.IsHexAddress(req.Recipient) {
		return failed(state, types.FailureReasonInvalidRecipient,
			fmt.Sprintf("invalid recipient address: %s", req.Recipient))
	}

	// Derive the agent address from the configured private key
	account, err := AgentAddress(c.PrivateKey)
	if err != nil {
		return failed(state, types.FailureReasonWalletNotConfigured, err.Error())
	}

	// Check the balance covers the requested amount before touching the ledger
	requested := decimal.NewFromFloat(req.Amount)
	balance := Balance(ctx, BalanceConfig{RPCURL: c.RPCURL, TokenAddress: c.TokenAddress}, account)
	if balance.LessThan(requested) {
		return failed(state, types.FailureReasonInsufficientBalance,
			fmt.Sprintf("insufficient balance: have %s, need %s", balance, requested))
	}
	state = types.PayStateBalanceChecked
	log.Debug().Str("state", string(state)).Str("balance", balance.String()).Msg("pay")

	// Submit the transfer, surfacing a rejection verbatim
	txHash, err := Transfer(ctx, TransferConfig{
		ChainID:      c.ChainID,
		RPCURL:       c.RPCURL,
		PrivateKey:   c.PrivateKey,
		TokenAddress: c.TokenAddress,
	}, req.Recipient, ToRawUnits(req.Amount))
	if err != nil {
		return failed(state, types.FailureReasonSubmissionRejected, err.Error())
	}
	state = types.PayStateSubmitted
	log.Debug().Str("state", string(state)).Str("tx", txHash).Msg("pay")

	// Record the submitted payment as pending
	result := &types.PaymentResult{
		TxHash:    txHash,
		Status:    types.StatusPending,
		Amount:    req.Amount,
		Timestamp: time.Now().UTC(),
	}

	// Poll for the confirmation of the submitted transfer
	state = types.PayStatePolling
	confirmed := WaitForConfirmation(ctx, ConfirmConfig{
		RPCURL:      c.RPCURL,
		MaxAttempts: c.MaxAttempts,
		Interval:    c.PollInterval,
	}, txHash)

	// A transfer that was sent but never confirmed is reported distinctly
	// from a rejected submission: the funds may still be in flight
	if !confirmed {
		result.Status = types.StatusFailed
		return types.PayResponse{
			State:         types.PayStateFailed,
			Result:        result,
			FailureReason: types.FailureReasonConfirmationFailed,
			Message:       "transaction failed to confirm",
		}
	}

	// Return the completed payment
	result.Status = types.StatusConfirmed
	log.Info().Str("tx", txHash).Float64("amount", req.Amount).Msg("payment confirmed")
	return types.PayResponse{
		Completed: true,
		State:     types.PayStateCompleted,
		Result:    result,
	}
}

// failed builds a terminal failure response from the state the operation
// reached before the failure.
func failed(reached types.PayState, reason types.FailureReason, message string) types.PayResponse {
	log.Debug().Str("reached", string(reached)).Str("reason", string(reason)).Msg("pay failed")
	return types.PayResponse{
		State:         types.PayStateFailed,
		FailureReason: reason,
		Message:       message,
	}
}
