// The agent command is the pay-and-fetch client: it requests a URL and, when
// the server answers with a 402 challenge, pays the declared terms from the
// configured wallet and replays the request with the payment proof.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/raid-guild/x402-agent-go/config"
	"github.com/raid-guild/x402-agent-go/core"
	"github.com/raid-guild/x402-agent-go/diag"
	"github.com/raid-guild/x402-agent-go/spend"
	"github.com/raid-guild/x402-agent-go/types"
	"github.com/raid-guild/x402-agent-go/x402"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	url := flag.String("url", "http://localhost:8402/api/weather", "resource URL to fetch")
	method := flag.String("method", http.MethodGet, "HTTP method")
	data := flag.String("data", "", "JSON request body for POST")
	quoteOnly := flag.Bool("quote", false, "preview the payment terms without paying")
	check := flag.Bool("check", false, "run diagnostics and exit")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	if !*verbose {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	cfg := config.LoadAgent()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	send := x402.NewSender(&http.Client{Timeout: 30 * time.Second})

	if *check {
		runDiagnostics(ctx, cfg)
		return
	}

	if *quoteOnly {
		terms, err := x402.Quote(ctx, send, *url)
		if err != nil {
			log.Fatal().Err(err).Msg("quote failed")
		}
		fmt.Printf("%s declares: %.2f %s on %s to %s (%s)\n",
			*url, terms.Amount, terms.Currency, terms.Network, terms.Recipient, terms.Description)
		return
	}

	payCfg := core.PayConfig{
		ChainID:      cfg.ChainID,
		RPCURL:       cfg.RPCURL,
		PrivateKey:   cfg.PrivateKey,
		TokenAddress: cfg.TokenAddress,
		MaxAttempts:  cfg.MaxAttempts,
		PollInterval: cfg.PollInterval,
	}
	tracker := spend.NewTracker(cfg.DailyCap, cfg.MonthlyCap)

	// Wrap the payer so confirmed payments land in the spending tally
	pay := x402.OrchestratorPayer(payCfg)
	paying := func(ctx context.Context, terms types.PaymentTerms) types.PayResponse {
		outcome := pay(ctx, terms)
		if outcome.Completed {
			for _, alert := range tracker.Record(outcome.Result.Amount, outcome.Result.Timestamp) {
				log.Warn().Str("alert", string(alert)).Msg("spending cap threshold crossed")
			}
		}
		return outcome
	}

	var body io.Reader
	if *data != "" {
		body = strings.NewReader(*data)
	}
	req, err := http.NewRequestWithContext(ctx, *method, *url, body)
	if err != nil {
		log.Fatal().Err(err).Msg("bad request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := x402.WithPaymentRetry(send, paying)(req)
	if err != nil {
		log.Fatal().Err(err).Msg("request failed")
	}
	defer resp.Body.Close()

	printResponse(resp.Body)

	snapshot := tracker.Snapshot(time.Now())
	log.Info().
		Str("daily", fmt.Sprintf("%s/%s", snapshot.DailySpent, snapshot.DailyCap)).
		Str("monthly", fmt.Sprintf("%s/%s", snapshot.MonthlySpent, snapshot.MonthlyCap)).
		Msg("spending")
}

func runDiagnostics(ctx context.Context, cfg config.AgentConfig) {
	account, err := core.AgentAddress(cfg.PrivateKey)
	if err != nil {
		log.Fatal().Err(err).Msg("wallet not configured")
	}
	results := diag.RunAll(ctx, diag.Config{
		RPCURL:       cfg.RPCURL,
		TokenAddress: cfg.TokenAddress,
		Account:      account,
		Amount:       0.12,
	})
	fmt.Println(diag.Format(results))
	for _, result := range results {
		if !result.Success {
			os.Exit(1)
		}
	}
}

func printResponse(r io.Reader) {
	raw, err := io.ReadAll(r)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read response")
	}
	var pretty map[string]any
	if json.Unmarshal(raw, &pretty) == nil {
		out, _ := json.MarshalIndent(pretty, "", "  ")
		fmt.Println(string(out))
		return
	}
	fmt.Println(string(raw))
}
