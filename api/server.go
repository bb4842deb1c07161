// Package api serves the demo paid resources: endpoints that demand payment
// via an HTTP 402 challenge and return mock data once a payment proof checks
// out.
package api

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	zlog "github.com/rs/zerolog/log"

	"github.com/raid-guild/x402-agent-go/types"
	"github.com/raid-guild/x402-agent-go/verify"
)

// Server hosts the demo paid resources.
type Server struct {
	verifier verify.Verifier
	payTo    string
}

// NewServer creates a server that demands payments to the payTo address and
// checks proofs with the given verifier.
func NewServer(verifier verify.Verifier, payTo string) *Server {
	return &Server{verifier: verifier, payTo: payTo}
}

// Router builds the route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(requestLog)
	r.HandleFunc("/api/weather", s.Weather).Methods(http.MethodGet)
	r.HandleFunc("/api/query", s.Query).Methods(http.MethodPost)
	return r
}

// requestLog logs one line per request with a request id.
func requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()
		next.ServeHTTP(w, r)
		zlog.Info().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

// writePaymentRequired writes the 402 challenge with the declared terms.
func writePaymentRequired(w http.ResponseWriter, terms types.PaymentTerms) {

	// Marshal the terms into JSON bytes
	termsBytes, err := json.Marshal(terms)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// Set the x402 challenge headers and write the status code
	w.Header().Set("Content-Type", types.ContentTypeX402)
	w.Header().Set(types.HeaderPaymentRequired, "true")
	w.WriteHeader(http.StatusPaymentRequired)

	// Write the terms to the response body
	_, err = w.Write(termsBytes)
	if err != nil {
		// Header already written so we log the error
		log.Printf("failed to write response: %v", err)
	}
}

// writeResourceResponse writes the paid resource payload.
func writeResourceResponse(w http.ResponseWriter, response types.ResourceResponse) {

	// Marshal the response into JSON bytes
	responseBytes, err := json.Marshal(response)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// Set the content type and write the status code
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	// Write the response bytes to the response body
	_, err = w.Write(responseBytes)
	if err != nil {
		// Header already written so we log the error
		log.Printf("failed to write response: %v", err)
	}
}
