// Package config loads the environment-driven settings of the two binaries.
// A .env file in the working directory is honored when present.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Defaults for the Base network USDC deployment the demo targets.
const (
	DefaultChainID      = 8453
	DefaultTokenAddress = "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"
	DefaultPort         = "8402"
)

// AgentConfig holds the settings of the paying agent.
type AgentConfig struct {
	RPCURL       string
	ChainID      int64
	PrivateKey   string
	TokenAddress string
	MaxAttempts  int
	PollInterval time.Duration
	DailyCap     float64
	MonthlyCap   float64
}

// ServerConfig holds the settings of the demo paid API server.
type ServerConfig struct {
	Port         string
	PayTo        string
	ProofMode    string
	RPCURL       string
	TokenAddress string
	DatabaseURL  string
}

// LoadAgent loads the agent settings from the environment.
func LoadAgent() AgentConfig {
	loadDotEnv()
	return AgentConfig{
		RPCURL:       getRequiredEnv("RPC_URL"),
		ChainID:      getInt64Env("CHAIN_ID", DefaultChainID),
		PrivateKey:   getRequiredEnv("PRIVATE_KEY"),
		TokenAddress: getOptionalEnv("TOKEN_ADDRESS", DefaultTokenAddress),
		MaxAttempts:  int(getInt64Env("CONFIRM_MAX_ATTEMPTS", 30)),
		PollInterval: time.Duration(getInt64Env("CONFIRM_INTERVAL_MS", 1000)) * time.Millisecond,
		DailyCap:     getFloatEnv("SPENDING_CAP_DAILY", 5),
		MonthlyCap:   getFloatEnv("SPENDING_CAP_MONTHLY", 50),
	}
}

// LoadServer loads the server settings from the environment.
func LoadServer() ServerConfig {
	loadDotEnv()
	return ServerConfig{
		Port:         getOptionalEnv("PORT", DefaultPort),
		PayTo:        getRequiredEnv("PAY_TO"),
		ProofMode:    getOptionalEnv("PROOF_MODE", "ledger"),
		RPCURL:       getOptionalEnv("RPC_URL", ""),
		TokenAddress: getOptionalEnv("TOKEN_ADDRESS", DefaultTokenAddress),
		DatabaseURL:  getOptionalEnv("DATABASE_URL", ""),
	}
}

func loadDotEnv() {
	// Missing .env is fine; the environment itself takes precedence anyway
	_ = godotenv.Load()
}

func getRequiredEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		log.Fatal().Str("key", key).Msg("required environment variable is not set")
	}
	return value
}

func getOptionalEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getInt64Env(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		log.Fatal().Str("key", key).Str("value", value).Msg("environment variable is not an integer")
	}
	return parsed
}

func getFloatEnv(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.Fatal().Str("key", key).Str("value", value).Msg("environment variable is not a number")
	}
	return parsed
}
