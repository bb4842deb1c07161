package types

import "time"

// PaymentTerms are the payment terms a server declares in a 402 response body.
type PaymentTerms struct {
	Error       string   `json:"error"`
	Amount      float64  `json:"amount"`
	Recipient   string   `json:"recipient"`
	Description string   `json:"description"`
	Currency    Currency `json:"currency"`
	Network     Network  `json:"network"`
}

// PaymentRequest describes one user-initiated payment. Immutable once submitted.
type PaymentRequest struct {
	Amount      float64 `json:"amount"`
	Recipient   string  `json:"recipient"`
	Description string  `json:"description"`
	APIEndpoint string  `json:"apiEndpoint,omitempty"`
}

// PaymentResult is the record created when a transfer is submitted. Status is
// only ever updated from the ledger's view of the transaction, never guessed
// locally.
type PaymentResult struct {
	TxHash    string        `json:"txHash"`
	Status    PaymentStatus `json:"status"`
	Amount    float64       `json:"amount"`
	Timestamp time.Time     `json:"timestamp"`
}

// PayResponse is the response of the pay operation.
type PayResponse struct {
	Completed     bool           `json:"completed"`
	State         PayState       `json:"state"`
	Result        *PaymentResult `json:"result,omitempty"`
	FailureReason FailureReason  `json:"failureReason,omitempty"`
	Message       string         `json:"message,omitempty"`
}

// ResourceResponse is the envelope a paid resource returns once payment is proven.
type ResourceResponse struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data"`
	PaymentTx string `json:"paymentTx"`
}

// WeatherData is the mock payload of the weather resource.
type WeatherData struct {
	Location    string `json:"location"`
	Temperature string `json:"temperature"`
	Condition   string `json:"condition"`
	Humidity    string `json:"humidity"`
	WindSpeed   string `json:"windSpeed"`
	Icon        string `json:"icon"`
}

// QueryRequest is the request body of the query resource.
type QueryRequest struct {
	Query string `json:"query"`
}

// QueryData is the mock payload of the query resource.
type QueryData struct {
	Query     string    `json:"query"`
	Result    string    `json:"result"`
	Timestamp time.Time `json:"timestamp"`
	Cost      float64   `json:"cost"`
}
