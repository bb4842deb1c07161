package core

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"

	"github.com/raid-guild/x402-agent-go/clients"
)

// Hardhat's first well-known dev key. Never holds real funds.
const (
	testPrivateKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	testAccount    = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
	testRecipient  = "0x742d35Cc6634C0532925a3b8D4c8c1f8b8A9d9b8"
	testToken      = "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"
	testRPCURL     = "http://localhost:8545"
)

type mockEthClient struct {
	callContract       func(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	pendingNonceAt     func(ctx context.Context, account common.Address) (uint64, error)
	suggestGasTipCap   func(ctx context.Context) (*big.Int, error)
	headerByNumber     func(ctx context.Context, number *big.Int) (*ethtypes.Header, error)
	estimateGas        func(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	sendTransaction    func(ctx context.Context, tx *ethtypes.Transaction) error
	transactionReceipt func(ctx context.Context, txHash common.Hash) (*ethtypes.Receipt, error)
}

func (m *mockEthClient) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	if m.callContract != nil {
		return m.callContract(ctx, msg, blockNumber)
	}
	return rawBalance(1_000_000), nil
}

func (m *mockEthClient) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	if m.pendingNonceAt != nil {
		return m.pendingNonceAt(ctx, account)
	}
	return 1, nil
}

func (m *mockEthClient) SuggestGasTipCap(ctx context.Context) (*big.Int, error) {
	if m.suggestGasTipCap != nil {
		return m.suggestGasTipCap(ctx)
	}
	return big.NewInt(1000), nil
}

func (m *mockEthClient) HeaderByNumber(ctx context.Context, number *big.Int) (*ethtypes.Header, error) {
	if m.headerByNumber != nil {
		return m.headerByNumber(ctx, number)
	}
	return &ethtypes.Header{Number: big.NewInt(1), BaseFee: big.NewInt(1000)}, nil
}

func (m *mockEthClient) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	if m.estimateGas != nil {
		return m.estimateGas(ctx, msg)
	}
	return 1000, nil
}

func (m *mockEthClient) SendTransaction(ctx context.Context, tx *ethtypes.Transaction) error {
	if m.sendTransaction != nil {
		return m.sendTransaction(ctx, tx)
	}
	return nil
}

func (m *mockEthClient) TransactionReceipt(ctx context.Context, txHash common.Hash) (*ethtypes.Receipt, error) {
	if m.transactionReceipt != nil {
		return m.transactionReceipt(ctx, txHash)
	}
	return &ethtypes.Receipt{Status: ethtypes.ReceiptStatusSuccessful}, nil
}

func setupMockEthClient(t *testing.T, client *mockEthClient) {
	t.Helper()

	original := clients.NewEthClient
	t.Cleanup(func() {
		clients.NewEthClient = original
	})

	clients.NewEthClient = func(rpcURL string) (clients.EthClientInterface, error) {
		return client, nil
	}
}

func setupFailingEthClient(t *testing.T) {
	t.Helper()

	original := clients.NewEthClient
	t.Cleanup(func() {
		clients.NewEthClient = original
	})

	clients.NewEthClient = func(rpcURL string) (clients.EthClientInterface, error) {
		return nil, errors.New("dial refused")
	}
}

// rawBalance encodes n raw token units as a 32-byte balanceOf result.
func rawBalance(n int64) []byte {
	return common.LeftPadBytes(big.NewInt(n).Bytes(), 32)
}
