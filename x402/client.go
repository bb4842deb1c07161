// Package x402 implements the client half of the HTTP 402 payment convention:
// a request sender that answers a Payment-Required challenge by paying the
// declared terms and replaying the original request with a proof attached.
package x402

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/raid-guild/x402-agent-go/core"
	"github.com/raid-guild/x402-agent-go/types"
)

// Sender issues an HTTP request and returns its response.
type Sender func(*http.Request) (*http.Response, error)

// Payer executes a payment for the given terms and returns its outcome.
type Payer func(ctx context.Context, terms types.PaymentTerms) types.PayResponse

// ErrPaymentRequiredAfterRetry is returned when a server demands payment
// again on the replayed request. That indicates fraud or misconfiguration,
// so the flow stops rather than paying twice.
var ErrPaymentRequiredAfterRetry = errors.New("server demanded payment again after proof was attached")

// PaymentFailedError reports a payment that ended in a terminal failure
// before the original request could be replayed.
type PaymentFailedError struct {
	Reason  types.FailureReason
	Message string
}

// Error returns the underlying failure message for user display.
func (e *PaymentFailedError) Error() string {
	return fmt.Sprintf("payment failed (%s): %s", e.Reason, e.Message)
}

// NewSender adapts an http.Client into a Sender.
func NewSender(client *http.Client) Sender {
	return client.Do
}

// OrchestratorPayer builds a Payer that pays terms through the core pay
// operation with the given wallet configuration.
func OrchestratorPayer(c core.PayConfig) Payer {
	return func(ctx context.Context, terms types.PaymentTerms) types.PayResponse {
		return core.Pay(ctx, c, types.PaymentRequest{
			Amount:      terms.Amount,
			Recipient:   terms.Recipient,
			Description: terms.Description,
		})
	}
}

// WithPaymentRetry wraps a Sender with the 402 payment flow.
//
// The returned Sender forwards the request unchanged. If the response status
// is 402 it parses the body as payment terms, pays them, and replays the
// original request once with the x402-payment-proof header set to the
// transaction hash. It issues at most two HTTP calls per logical request: a
// 402 on the replay surfaces as ErrPaymentRequiredAfterRetry, never a loop.
func WithPaymentRetry(send Sender, pay Payer) Sender {
	return func(req *http.Request) (*http.Response, error) {

		// Issue the original request
		resp, err := send(req)
		if err != nil {
			return nil, err
		}

		// Pass through anything that is not a payment challenge
		if resp.StatusCode != http.StatusPaymentRequired {
			return resp, nil
		}

		// Parse the payment terms from the challenge body
		terms, err := ParseTerms(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to parse payment terms: %v", err)
		}
		log.Debug().Float64("amount", terms.Amount).Str("recipient", terms.Recipient).
			Str("url", req.URL.String()).Msg("payment required")

		// Pay the declared terms
		outcome := pay(req.Context(), terms)
		if !outcome.Completed {
			return nil, &PaymentFailedError{Reason: outcome.FailureReason, Message: outcome.Message}
		}

		// Rebuild the original request with the payment proof attached
		retry, err := cloneRequest(req)
		if err != nil {
			return nil, fmt.Errorf("failed to rebuild request for replay: %v", err)
		}
		retry.Header.Set(types.HeaderPaymentProof, outcome.Result.TxHash)

		// Replay the original request exactly once
		resp, err = send(retry)
		if err != nil {
			return nil, err
		}

		// A second challenge is a hard failure, never another payment
		if resp.StatusCode == http.StatusPaymentRequired {
			resp.Body.Close()
			return nil, ErrPaymentRequiredAfterRetry
		}

		return resp, nil
	}
}

// ParseTerms decodes and validates the payment terms of a 402 response body.
func ParseTerms(r io.Reader) (types.PaymentTerms, error) {

	// Decode the terms
	var terms types.PaymentTerms
	if err := json.NewDecoder(r).Decode(&terms); err != nil {
		return types.PaymentTerms{}, err
	}

	// Verify the declared amount is positive
	if terms.Amount <= 0 {
		return types.PaymentTerms{}, fmt.Errorf("non-positive amount: %v", terms.Amount)
	}

	// Verify a recipient is declared
	if terms.Recipient == "" {
		return types.PaymentTerms{}, fmt.Errorf("missing recipient")
	}

	return terms, nil
}

// Quote preflights a URL and returns the payment terms it declares, without
// paying. A response other than 402 means the endpoint is not demanding
// payment and is reported as an error.
func Quote(ctx context.Context, send Sender, url string) (types.PaymentTerms, error) {

	// Build the preflight request
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return types.PaymentTerms{}, err
	}

	// Issue the preflight request without a proof header
	resp, err := send(req)
	if err != nil {
		return types.PaymentTerms{}, err
	}
	defer resp.Body.Close()

	// Anything but a challenge carries no terms
	if resp.StatusCode != http.StatusPaymentRequired {
		return types.PaymentTerms{}, fmt.Errorf("expected 402 from %s, got %d", url, resp.StatusCode)
	}

	return ParseTerms(resp.Body)
}

// cloneRequest rebuilds a request so it can be sent a second time. Requests
// with a body must be constructed with a replayable body (GetBody set), which
// http.NewRequest does for the common buffer types.
func cloneRequest(req *http.Request) (*http.Request, error) {
	clone := req.Clone(req.Context())
	if req.Body != nil {
		if req.GetBody == nil {
			return nil, fmt.Errorf("request body is not replayable")
		}
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		clone.Body = body
	}
	return clone, nil
}
