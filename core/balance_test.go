package core

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
)

func testBalanceConfig() BalanceConfig {
	return BalanceConfig{RPCURL: testRPCURL, TokenAddress: testToken}
}

func TestBalance(t *testing.T) {

	t.Run("reads and scales the token balance", func(t *testing.T) {
		setupMockEthClient(t, &mockEthClient{
			callContract: func(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
				assert.Equal(t, common.HexToAddress(testToken), *msg.To)
				return rawBalance(123456), nil
			},
		})

		balance := Balance(context.Background(), testBalanceConfig(), testAccount)
		assert.Equal(t, "0.123456", balance.String())
	})

	t.Run("read failure returns zero instead of raising", func(t *testing.T) {
		setupMockEthClient(t, &mockEthClient{
			callContract: func(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
				return nil, errors.New("node unavailable")
			},
		})

		balance := Balance(context.Background(), testBalanceConfig(), testAccount)
		assert.True(t, balance.IsZero())
	})

	t.Run("short result returns zero", func(t *testing.T) {
		setupMockEthClient(t, &mockEthClient{
			callContract: func(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
				return []byte{0x01}, nil
			},
		})

		balance := Balance(context.Background(), testBalanceConfig(), testAccount)
		assert.True(t, balance.IsZero())
	})

	t.Run("invalid account returns zero without a call", func(t *testing.T) {
		called := false
		setupMockEthClient(t, &mockEthClient{
			callContract: func(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
				called = true
				return rawBalance(1), nil
			},
		})

		balance := Balance(context.Background(), testBalanceConfig(), "not-an-address")
		assert.True(t, balance.IsZero())
		assert.False(t, called)
	})

	t.Run("dial failure returns zero", func(t *testing.T) {
		setupFailingEthClient(t)

		balance := Balance(context.Background(), testBalanceConfig(), testAccount)
		assert.True(t, balance.IsZero())
	})
}
