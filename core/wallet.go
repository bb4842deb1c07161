package core

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
)

// AgentAddress derives the ledger address of the configured agent key.
func AgentAddress(privateKey string) (string, error) {

	// Verify the agent private key is configured
	if privateKey == "" {
		return "", fmt.Errorf("PRIVATE_KEY is not set")
	}

	// Parse the agent private key
	key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKey, "0x"))
	if err != nil {
		return "", fmt.Errorf("failed to parse agent private key: %v", err)
	}

	// Return the derived address
	return crypto.PubkeyToAddress(key.PublicKey).Hex(), nil
}
