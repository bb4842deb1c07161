package core

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTransferConfig() TransferConfig {
	return TransferConfig{
		ChainID:      8453,
		RPCURL:       testRPCURL,
		PrivateKey:   testPrivateKey,
		TokenAddress: testToken,
	}
}

func TestTransfer(t *testing.T) {

	t.Run("submits a signed transfer and returns its hash", func(t *testing.T) {
		var sent *ethtypes.Transaction
		setupMockEthClient(t, &mockEthClient{
			sendTransaction: func(ctx context.Context, tx *ethtypes.Transaction) error {
				sent = tx
				return nil
			},
		})

		hash, err := Transfer(context.Background(), testTransferConfig(), testRecipient, big.NewInt(120000))

		require.NoError(t, err)
		require.NotNil(t, sent)
		assert.Equal(t, sent.Hash().Hex(), hash)
		assert.Equal(t, common.HexToAddress(testToken), *sent.To())
		assert.Equal(t, uint64(1200), sent.Gas()) // 1000 estimate plus 20% buffer
		assert.Equal(t, int64(0), sent.Value().Int64())
	})

	t.Run("rejection is returned verbatim", func(t *testing.T) {
		setupMockEthClient(t, &mockEthClient{
			sendTransaction: func(ctx context.Context, tx *ethtypes.Transaction) error {
				return errors.New("user denied transaction signature")
			},
		})

		hash, err := Transfer(context.Background(), testTransferConfig(), testRecipient, big.NewInt(120000))

		assert.Empty(t, hash)
		require.Error(t, err)
		assert.Equal(t, "user denied transaction signature", err.Error())
	})

	t.Run("invalid recipient fails before dialing", func(t *testing.T) {
		setupFailingEthClient(t)

		_, err := Transfer(context.Background(), testTransferConfig(), "nowhere", big.NewInt(1))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid recipient address")
	})

	t.Run("missing base fee fails", func(t *testing.T) {
		setupMockEthClient(t, &mockEthClient{
			headerByNumber: func(ctx context.Context, number *big.Int) (*ethtypes.Header, error) {
				return &ethtypes.Header{Number: big.NewInt(1)}, nil
			},
		})

		_, err := Transfer(context.Background(), testTransferConfig(), testRecipient, big.NewInt(1))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing base fee")
	})

	t.Run("missing private key fails", func(t *testing.T) {
		setupMockEthClient(t, &mockEthClient{})

		cfg := testTransferConfig()
		cfg.PrivateKey = ""
		_, err := Transfer(context.Background(), cfg, testRecipient, big.NewInt(1))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "PRIVATE_KEY is not set")
	})
}
