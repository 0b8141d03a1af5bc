package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/amphora-protocol/aam/internal/types"
)

// AppConfig holds all application configuration loaded from environment variables.
// These are populated at startup by the LoadConfig function.
var (
	// ManagerAddress is the account this manager operates from. Claimed rewards
	// are held here until they are reinvested or converted.
	ManagerAddress string
	// PoolAddress is the account of the pooled-capital contract this manager serves.
	PoolAddress string

	// Currency is the pool's settlement token.
	Currency types.Token
	// Reward is the token the yield venue pays rewards in.
	Reward types.Token
)

// LoadConfig loads configuration from environment variables and sets the global config vars.
// All environment variables are required and must be set.
func LoadConfig() error {
	log.Info().Msg("Loading application configuration from environment variables...")

	var err error

	ManagerAddress, err = getEnv("AAM_MANAGER_ADDRESS")
	if err != nil {
		return err
	}

	PoolAddress, err = getEnv("AAM_POOL_ADDRESS")
	if err != nil {
		return err
	}

	Currency, err = loadToken("CURRENCY")
	if err != nil {
		return err
	}

	Reward, err = loadToken("REWARD")
	if err != nil {
		return err
	}

	// Load endpoint configuration
	if err := loadEndpointConfig(); err != nil {
		return err
	}

	log.Debug().
		Str("ManagerAddress", ManagerAddress).
		Str("PoolAddress", PoolAddress).
		Str("Currency", Currency.Denom).
		Str("Reward", Reward.Denom).
		Msg("Configuration loaded successfully.")

	return nil
}

// loadToken reads one token definition from SYMBOL, DENOM and DECIMALS
// variables under the given prefix, e.g. CURRENCY_DENOM.
func loadToken(prefix string) (types.Token, error) {
	symbol, err := getEnv(prefix + "_SYMBOL")
	if err != nil {
		return types.Token{}, err
	}
	denom, err := getEnv(prefix + "_DENOM")
	if err != nil {
		return types.Token{}, err
	}
	decimals, err := getEnvAsUint64(prefix + "_DECIMALS")
	if err != nil {
		return types.Token{}, err
	}

	token := types.Token{Symbol: symbol, Denom: denom, Decimals: int(decimals)}
	if err := token.Validate(); err != nil {
		return types.Token{}, err
	}
	return token, nil
}

// getEnv retrieves a string environment variable. Returns error if not set.
func getEnv(key string) (string, error) {
	if value, exists := os.LookupEnv(key); exists {
		return value, nil
	}
	return "", errors.New("environment variable " + key + " is required but not set")
}

// getEnvAsUint64 retrieves an environment variable as a uint64. Returns error if not set or invalid.
func getEnvAsUint64(key string) (uint64, error) {
	valueStr, err := getEnv(key)
	if err != nil {
		return 0, err
	}
	value, err := strconv.ParseUint(valueStr, 10, 64)
	if err != nil {
		return 0, errors.New("environment variable " + key + " must be a valid uint64, got: " + valueStr)
	}
	return value, nil
}
