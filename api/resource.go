package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/raid-guild/x402-agent-go/types"
	"github.com/raid-guild/x402-agent-go/utils"
)

// Prices of the demo resources in USD.
const (
	WeatherPrice = 0.12
	QueryPrice   = 0.15
)

// Weather is the handler of the paid weather resource.
func (s *Server) Weather(w http.ResponseWriter, r *http.Request) {

	// Declare the payment terms for this resource
	terms := types.PaymentTerms{
		Error:       "Payment required",
		Amount:      WeatherPrice,
		Recipient:   s.payTo,
		Description: "Weather API access",
		Currency:    types.CurrencyUSDC,
		Network:     types.NetworkBase,
	}

	// Demand payment unless a verified proof is attached
	proof, ok := s.requireProof(w, r, terms)
	if !ok {
		return
	}

	// Return the resource payload
	writeResourceResponse(w, types.ResourceResponse{
		Success: true,
		Data: types.WeatherData{
			Location:    "New York City",
			Temperature: "72°F",
			Condition:   "Sunny",
			Humidity:    "45%",
			WindSpeed:   "8 mph",
			Icon:        "☀️",
		},
		PaymentTx: proof,
	})
}

// Query is the handler of the paid query resource.
func (s *Server) Query(w http.ResponseWriter, r *http.Request) {

	// Decode the request body
	var request types.QueryRequest
	err := json.NewDecoder(r.Body).Decode(&request)
	if err != nil {
		// Write http error response and then exit handler
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if request.Query == "" {
		request.Query = "Custom query"
	}

	// Declare the payment terms for this resource
	terms := types.PaymentTerms{
		Error:       "Payment required",
		Amount:      QueryPrice,
		Recipient:   s.payTo,
		Description: fmt.Sprintf("API request: %s", request.Query),
		Currency:    types.CurrencyUSDC,
		Network:     types.NetworkBase,
	}

	// Demand payment unless a verified proof is attached
	proof, ok := s.requireProof(w, r, terms)
	if !ok {
		return
	}

	// Return the resource payload
	writeResourceResponse(w, types.ResourceResponse{
		Success: true,
		Data: types.QueryData{
			Query:     request.Query,
			Result:    fmt.Sprintf("Processed: %s", request.Query),
			Timestamp: time.Now().UTC(),
			Cost:      QueryPrice,
		},
		PaymentTx: proof,
	})
}

// requireProof enforces the payment step of a paid resource. It returns the
// verified proof, or writes the appropriate response and returns false: a 402
// challenge when the proof is absent or rejected, an error status when
// verification itself broke.
func (s *Server) requireProof(w http.ResponseWriter, r *http.Request, terms types.PaymentTerms) (string, bool) {

	// Demand payment when no proof is attached
	proof := r.Header.Get(types.HeaderPaymentProof)
	if proof == "" {
		writePaymentRequired(w, terms)
		return "", false
	}

	// Verify the attached proof
	err := s.verifier.Verify(r.Context(), proof)
	if err != nil {
		var se utils.StatusError
		if errors.As(err, &se) && se.Status() == http.StatusPaymentRequired {
			// A rejected proof gets the challenge again, not data
			writePaymentRequired(w, terms)
			return "", false
		}
		if errors.As(err, &se) {
			http.Error(w, err.Error(), se.Status())
			return "", false
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return "", false
	}

	return proof, true
}
