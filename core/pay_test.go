package core

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raid-guild/x402-agent-go/types"
)

func testPayConfig() PayConfig {
	return PayConfig{
		ChainID:      8453,
		RPCURL:       testRPCURL,
		PrivateKey:   testPrivateKey,
		TokenAddress: testToken,
		MaxAttempts:  10,
		PollInterval: time.Millisecond,
	}
}

func testPayRequest(amount float64) types.PaymentRequest {
	return types.PaymentRequest{
		Amount:      amount,
		Recipient:   testRecipient,
		Description: "Weather API access",
	}
}

func TestPay(t *testing.T) {

	t.Run("insufficient balance never submits a transfer", func(t *testing.T) {
		transferCalled := false
		setupMockEthClient(t, &mockEthClient{
			callContract: func(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
				return rawBalance(100_000), nil // 0.10
			},
			sendTransaction: func(ctx context.Context, tx *ethtypes.Transaction) error {
				transferCalled = true
				return nil
			},
		})

		response := Pay(context.Background(), testPayConfig(), testPayRequest(0.12))

		assert.False(t, response.Completed)
		assert.Equal(t, types.PayStateFailed, response.State)
		assert.Equal(t, types.FailureReasonInsufficientBalance, response.FailureReason)
		assert.Contains(t, response.Message, "insufficient balance")
		assert.False(t, transferCalled)
		assert.Nil(t, response.Result)
	})

	t.Run("completes after pending polls and keeps the submitted hash", func(t *testing.T) {
		var submittedHash common.Hash
		polls := 0
		setupMockEthClient(t, &mockEthClient{
			callContract: func(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
				return rawBalance(1_000_000), nil // 1.00
			},
			sendTransaction: func(ctx context.Context, tx *ethtypes.Transaction) error {
				submittedHash = tx.Hash()
				return nil
			},
			transactionReceipt: func(ctx context.Context, txHash common.Hash) (*ethtypes.Receipt, error) {
				polls++
				assert.Equal(t, submittedHash, txHash)
				if polls < 6 {
					return nil, ethereum.NotFound
				}
				return &ethtypes.Receipt{Status: ethtypes.ReceiptStatusSuccessful}, nil
			},
		})

		response := Pay(context.Background(), testPayConfig(), testPayRequest(0.12))

		require.True(t, response.Completed)
		assert.Equal(t, types.PayStateCompleted, response.State)
		require.NotNil(t, response.Result)
		assert.Equal(t, submittedHash.Hex(), response.Result.TxHash)
		assert.Equal(t, types.StatusConfirmed, response.Result.Status)
		assert.Equal(t, 0.12, response.Result.Amount)
		assert.Equal(t, 6, polls)
	})

	t.Run("submission rejection surfaces the raised text and never polls", func(t *testing.T) {
		polled := false
		setupMockEthClient(t, &mockEthClient{
			sendTransaction: func(ctx context.Context, tx *ethtypes.Transaction) error {
				return errors.New("user denied")
			},
			transactionReceipt: func(ctx context.Context, txHash common.Hash) (*ethtypes.Receipt, error) {
				polled = true
				return nil, ethereum.NotFound
			},
		})

		response := Pay(context.Background(), testPayConfig(), testPayRequest(0.12))

		assert.False(t, response.Completed)
		assert.Equal(t, types.FailureReasonSubmissionRejected, response.FailureReason)
		assert.Equal(t, "user denied", response.Message)
		assert.False(t, polled)
		assert.Nil(t, response.Result)
	})

	t.Run("confirmation timeout is distinct from a rejection", func(t *testing.T) {
		setupMockEthClient(t, &mockEthClient{
			transactionReceipt: func(ctx context.Context, txHash common.Hash) (*ethtypes.Receipt, error) {
				return nil, ethereum.NotFound
			},
		})

		cfg := testPayConfig()
		cfg.MaxAttempts = 3
		response := Pay(context.Background(), cfg, testPayRequest(0.12))

		assert.False(t, response.Completed)
		assert.Equal(t, types.FailureReasonConfirmationFailed, response.FailureReason)
		assert.Equal(t, "transaction failed to confirm", response.Message)
		require.NotNil(t, response.Result)
		assert.Equal(t, types.StatusFailed, response.Result.Status)
		assert.NotEmpty(t, response.Result.TxHash)
	})

	t.Run("invalid recipient fails before any ledger call", func(t *testing.T) {
		setupFailingEthClient(t)

		response := Pay(context.Background(), testPayConfig(), types.PaymentRequest{
			Amount:    0.12,
			Recipient: "not-an-address",
		})

		assert.Equal(t, types.FailureReasonInvalidRecipient, response.FailureReason)
	})

	t.Run("non-positive amount fails", func(t *testing.T) {
		setupFailingEthClient(t)

		response := Pay(context.Background(), testPayConfig(), testPayRequest(0))
		assert.Equal(t, types.FailureReasonInvalidAmount, response.FailureReason)
	})

	t.Run("missing wallet key fails before any ledger call", func(t *testing.T) {
		setupFailingEthClient(t)

		cfg := testPayConfig()
		cfg.PrivateKey = ""
		response := Pay(context.Background(), cfg, testPayRequest(0.12))
		assert.Equal(t, types.FailureReasonWalletNotConfigured, response.FailureReason)
	})
}
