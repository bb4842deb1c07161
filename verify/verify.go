// Package verify models payment-proof verification as a distinct, replaceable
// step behind the paid resources. The demo's presence check (any non-empty
// proof passes) is kept as an explicit mode; real deployments select the
// ledger or database mode instead.
package verify

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"regexp"

	"github.com/raid-guild/x402-agent-go/utils"
)

// Verifier checks a payment proof and reports whether it is acceptable.
// A rejected proof is returned as a StatusError carrying 402 so the resource
// can re-issue its challenge.
type Verifier interface {
	Verify(ctx context.Context, proof string) error
}

// Mode selects the proof verification strategy.
type Mode string

const (
	// ModePresence accepts any non-empty proof. Demo use only.
	ModePresence Mode = "presence"

	// ModeLedger requires the proof to resolve to a successful receipt of a
	// transaction that touched the configured token contract.
	ModeLedger Mode = "ledger"

	// ModeDatabase requires the proof to be recorded in a settled-payments
	// table, for deployments where a facilitator records settlements.
	ModeDatabase Mode = "database"
)

// Config is the configuration for the verifier.
type Config struct {
	Mode         Mode
	RPCURL       string
	TokenAddress string
	DatabaseURL  string
}

// New creates the verifier for the configured mode.
func New(c Config) (Verifier, error) {
	switch c.Mode {
	case ModePresence:
		return PresenceVerifier{}, nil
	case ModeLedger:
		if c.RPCURL == "" {
			return nil, errors.New("ledger verification requires RPC_URL")
		}
		return &LedgerVerifier{RPCURL: c.RPCURL, TokenAddress: c.TokenAddress}, nil
	case ModeDatabase:
		if c.DatabaseURL == "" {
			return nil, errors.New("database verification requires DATABASE_URL")
		}
		return &DatabaseVerifier{DatabaseURL: c.DatabaseURL}, nil
	default:
		return nil, fmt.Errorf("unknown proof verification mode: %q", c.Mode)
	}
}

// rejected builds the 402 error for a proof that did not verify.
func rejected(reason string) error {
	return utils.NewStatusError(
		fmt.Errorf("payment proof rejected: %s", reason),
		http.StatusPaymentRequired,
	)
}

// PresenceVerifier accepts any non-empty proof. This preserves the original
// demo behavior and must not be used where payment actually matters.
type PresenceVerifier struct{}

// Verify accepts the proof if it is non-empty.
func (PresenceVerifier) Verify(_ context.Context, proof string) error {
	if proof == "" {
		return rejected("empty proof")
	}
	return nil
}

var txHashPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{64}$`)

// DatabaseVerifier checks the proof against a settled-payments table.
type DatabaseVerifier struct {
	DatabaseURL string
}

// Verify accepts the proof if a settlement record exists for it.
func (v *DatabaseVerifier) Verify(ctx context.Context, proof string) error {

	// Reject anything that is not a transaction hash
	if !txHashPattern.MatchString(proof) {
		return rejected("not a transaction hash")
	}

	// Connect to the database
	db, err := sql.Open("postgres", v.DatabaseURL)
	if err != nil {
		return utils.NewStatusError(
			errors.New("failed to connect to database"),
			http.StatusInternalServerError,
		)
	}
	defer db.Close()

	// Check the proof exists in the settled payments table
	var recorded string
	err = db.QueryRowContext(ctx,
		"SELECT proof FROM settled_payments WHERE proof = $1",
		proof,
	).Scan(&recorded)

	// Check if the query returned a no rows error
	if err == sql.ErrNoRows {
		return rejected("no settlement recorded")
	}

	// Check if the query returned a different error
	if err != nil {
		return utils.NewStatusError(
			errors.New("failed to query settled payments"),
			http.StatusInternalServerError,
		)
	}

	return nil
}
