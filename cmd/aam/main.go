package main

import (
	"context"
	"os"
	"strconv"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/amphora-protocol/aam/internal/config"
	"github.com/amphora-protocol/aam/internal/gateway"
	"github.com/amphora-protocol/aam/internal/governance"
	"github.com/amphora-protocol/aam/internal/logger"
	"github.com/amphora-protocol/aam/internal/manager"
	"github.com/amphora-protocol/aam/internal/oracle"
	"github.com/amphora-protocol/aam/internal/pool"
	"github.com/amphora-protocol/aam/internal/rewards"
	"github.com/amphora-protocol/aam/internal/sim"
	"github.com/amphora-protocol/aam/internal/state"
	"github.com/amphora-protocol/aam/internal/swap"
	"github.com/amphora-protocol/aam/internal/venue"
	"github.com/amphora-protocol/aam/internal/wad"
	"github.com/amphora-protocol/aam/internal/wallet"
	"github.com/amphora-protocol/aam/internal/web"
)

const (
	LOOP_INTERVAL = 10 * time.Minute

	// Paper-mode accrual ticks once a minute.
	PAPER_ACCRUAL_INTERVAL = 1 * time.Minute
)

// deployment bundles the venue-facing adapters one mode produces.
type deployment struct {
	venue   venue.YieldVenue
	swap    swap.SwapVenue
	pool    pool.Pool
	holding wallet.Account
	auth    governance.AccessController
}

// main is the entry point for the AAM system.
func main() {
	// --- 1. Initialization Phase ---
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("Warning: .env file not found. Relying on OS environment variables.")
	}

	// Load configuration from environment variables
	if err := config.LoadConfig(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger.Initialize(os.Getenv("LOG_LEVEL"))
	log.Info().Msg("AAM Core Logic Starting...")

	// Initialize Database Connection
	dbCfg := state.DBConfig{
		Host: os.Getenv("DB_HOST"), Port: mustAtoi(os.Getenv("DB_PORT"), 5432),
		User: os.Getenv("DB_USER"), Password: os.Getenv("DB_PASSWORD"),
		DBName: os.Getenv("DB_NAME"), SSLMode: os.Getenv("DB_SSLMODE"),
	}
	if err := state.InitDB(dbCfg); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer state.CloseDB()
	if err := state.EnsureSchema(); err != nil {
		log.Fatal().Err(err).Msg("Failed to ensure database schema")
	}

	// Load Manager Parameters
	managerParams, err := state.LoadActiveManagerParameters()
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load active manager parameters, using defaults and saving.")
		defaultParams := config.DefaultManagerParameters
		if _, err := state.SaveManagerParameters(defaultParams, "initial defaults", true); err != nil {
			log.Fatal().Err(err).Msg("Failed to save initial default manager parameters.")
		}
		managerParams = &defaultParams
	}
	log.Info().Msg("Manager parameters loaded successfully.")

	// Price oracle: both modes read real market data; paper mode only
	// simulates execution against it.
	rates := oracle.NewRateSource(oracle.NewLivePriceSource(config.PriceAPI))

	// --- 2. Adapter Initialization (with Safety Switch) ---
	var dep deployment
	aamMode := os.Getenv("AAM_MODE")

	switch aamMode {
	case "live":
		log.Warn().Msg("Initializing AAM in LIVE mode. Real transactions will be broadcast.")
		dep = liveDeployment()
	case "paper":
		log.Info().Msg("Initializing AAM in PAPER mode. Execution is simulated in memory.")
		dep = paperDeployment(rates)
	default:
		log.Fatal().Msg("AAM_MODE is not set to 'live' or 'paper'. Halting to prevent accidental execution.")
	}

	// --- 3. Governance and Core Wiring ---
	gov, err := governance.NewGovernance(governance.Config{
		Initial:   *managerParams,
		Auth:      dep.auth,
		Persister: state.GovernancePersister{},
		Journal:   state.Journal{},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create governance")
	}

	rewardManager, err := rewards.NewManager(rewards.Config{
		Venue:    dep.venue,
		Swap:     dep.swap,
		Rates:    rates,
		Holding:  dep.holding,
		Params:   gov,
		Currency: config.Currency,
		Reward:   config.Reward,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create reward manager")
	}

	log.Info().Msg("Creating manager instance with dependency injection...")

	managerInstance, err := manager.NewManager(manager.Config{
		Pool:      dep.pool,
		Venue:     dep.venue,
		Rewards:   rewardManager,
		Params:    gov,
		Auth:      dep.auth,
		Journal:   state.Journal{},
		Snapshots: state.Snapshots{},
		Currency:  config.Currency,
		Reward:    config.Reward,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create manager instance")
	}

	log.Info().Msg("Manager instance created successfully")

	// --- 4. Start Web Server ---
	webPort := os.Getenv("WEB_PORT")
	if webPort == "" {
		webPort = "8080"
	}

	webServer := web.NewWebServer(webPort, managerInstance)
	go func() {
		log.Info().Str("port", webPort).Str("url", "http://localhost:"+webPort).Msg("Starting AAM web API")
		if err := webServer.Start(); err != nil {
			log.Error().Err(err).Msg("Web server failed to start")
		}
	}()

	// --- 5. Start Manager Main Loop ---
	log.Info().Str("interval", LOOP_INTERVAL.String()).Msg("Starting manager main loop")

	// Create context for graceful shutdown
	ctx := context.Background()

	// Start the manager loop (this will run indefinitely)
	managerInstance.RunLoop(ctx, LOOP_INTERVAL)
}

// liveDeployment wires every adapter to the settlement node.
func liveDeployment() deployment {
	client := gateway.NewClient(config.NodeRPC)
	log.Info().Str("endpoint", config.NodeRPC).Msg("Settlement node gateway connected")

	return deployment{
		venue:   venue.NewLiveVenue(client, config.ManagerAddress),
		swap:    swap.NewLiveSwapVenue(client, config.ManagerAddress),
		pool:    pool.NewLivePool(client, config.PoolAddress),
		holding: wallet.NewLiveAccount(client, config.ManagerAddress),
		auth:    governance.NewLiveAccessController(client),
	}
}

// paperDeployment builds an in-memory deployment: a seeded pool, a venue that
// accrues rewards on a timer, and a role table granting the operator address
// everything. Real prices drive the simulated swaps.
func paperDeployment(rates *oracle.RateSource) deployment {
	ledger := sim.NewLedger()

	poolSeed := amountEnv("PAPER_POOL_SEED", defaultPoolSeed())
	ledger.Mint(config.PoolAddress, config.Currency.Denom, poolSeed)

	yieldVenue := sim.NewVenue(ledger, "paper-venue", config.ManagerAddress, config.Reward)
	swapVenue := sim.NewSwapVenue(ledger, "paper-amm", config.ManagerAddress, rates)
	simPool := sim.NewPool(ledger, config.PoolAddress, config.ManagerAddress, config.Currency, sdkmath.ZeroInt())
	holding := sim.NewAccount(ledger, config.ManagerAddress)

	roles := sim.NewRoles()
	for _, role := range []governance.Role{
		governance.RoleGuardian, governance.RoleLevel1, governance.RoleLevel2,
		governance.RoleLevel3, governance.RoleSwapOperator,
	} {
		roles.Grant(config.ManagerAddress, role)
	}

	accrual := amountEnv("PAPER_ACCRUAL_PER_MIN", sdkmath.ZeroInt())
	if accrual.IsPositive() {
		go func() {
			ticker := time.NewTicker(PAPER_ACCRUAL_INTERVAL)
			defer ticker.Stop()
			for range ticker.C {
				yieldVenue.Accrue(accrual)
			}
		}()
		log.Info().Str("per_minute", accrual.String()).Msg("Paper reward accrual enabled")
	}

	log.Info().
		Str("pool_seed", poolSeed.String()).
		Msg("Paper deployment ready")

	return deployment{
		venue:   yieldVenue,
		swap:    swapVenue,
		pool:    simPool,
		holding: holding,
		auth:    roles,
	}
}

// defaultPoolSeed is 500k settlement units in base denomination.
func defaultPoolSeed() sdkmath.Int {
	return sdkmath.NewInt(500_000).Mul(wad.Pow10(config.Currency.Decimals))
}

// amountEnv parses a base-unit amount from the environment, falling back to
// the default when unset or malformed.
func amountEnv(key string, defaultValue sdkmath.Int) sdkmath.Int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	parsed, ok := sdkmath.NewIntFromString(raw)
	if !ok || parsed.IsNegative() {
		log.Warn().Str("key", key).Str("value", raw).Msg("Ignoring invalid amount, using default")
		return defaultValue
	}
	return parsed
}

// Helper to convert string to int with a default value
func mustAtoi(s string, defaultValue int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}
	return i
}
