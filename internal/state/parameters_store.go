// ./internal/state/parameters_store.go
package state

import (
	"database/sql"
	"fmt"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog/log"

	"github.com/amphora-protocol/aam/internal/types"
)

// SaveManagerParameters saves a new version of the governed parameter set.
// The version number is assigned inside the transaction so concurrent saves
// cannot collide.
func SaveManagerParameters(params types.ManagerParameters, note string, makeActive bool) (int64, error) {
	if DB == nil {
		return 0, fmt.Errorf("database not initialized")
	}
	if err := params.Validate(); err != nil {
		return 0, fmt.Errorf("refusing to save invalid parameters: %w", err)
	}

	tx, err := DB.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p) // Re-panic after rollback
		} else if err != nil {
			tx.Rollback() // Rollback if error occurred
		}
	}()

	if makeActive {
		stmtDeactivate := `UPDATE manager_parameters SET is_active = FALSE WHERE is_active = TRUE;`
		_, err = tx.Exec(stmtDeactivate)
		if err != nil {
			return 0, fmt.Errorf("failed to deactivate existing active parameters: %w", err)
		}
	}

	var version int
	err = tx.QueryRow(`SELECT COALESCE(MAX(version), 0) + 1 FROM manager_parameters;`).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to determine next parameter version: %w", err)
	}

	stmt := `
        INSERT INTO manager_parameters (
            version, is_active, activated_at, created_at, note,
            liquidity_min, liquidity_middle, liquidity_max,
            claim_rewards_min, reinvest_rewards_min,
            max_slippage
        ) VALUES (
            $1, $2, $3, $4, $5,
            $6, $7, $8,
            $9, $10,
            $11
        ) RETURNING params_id;`

	var paramsID int64
	currentTime := time.Now()
	err = tx.QueryRow(
		stmt,
		version, makeActive, currentTime, currentTime, note,
		params.Bands.Min.String(), params.Bands.Middle.String(), params.Bands.Max.String(),
		params.Thresholds.ClaimMin.String(), params.Thresholds.ReinvestMin.String(),
		params.MaxSlippage.String(),
	).Scan(&paramsID)

	if err != nil {
		return 0, fmt.Errorf("failed to insert manager parameters: %w", err)
	}

	err = tx.Commit()
	if err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Info().
		Int("version", version).
		Int64("params_id", paramsID).
		Bool("active", makeActive).
		Str("note", note).
		Msg("Saved manager parameters")
	return paramsID, nil
}

// LoadActiveManagerParameters loads the currently active parameter set.
func LoadActiveManagerParameters() (*types.ManagerParameters, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	query := `
        SELECT
            liquidity_min, liquidity_middle, liquidity_max,
            claim_rewards_min, reinvest_rewards_min,
            max_slippage
        FROM manager_parameters
        WHERE is_active = TRUE
        ORDER BY activated_at DESC
        LIMIT 1;`

	var minStr, middleStr, maxStr, claimStr, reinvestStr, slippageStr string
	row := DB.QueryRow(query)
	err := row.Scan(&minStr, &middleStr, &maxStr, &claimStr, &reinvestStr, &slippageStr)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("no active manager parameters found")
		}
		return nil, fmt.Errorf("failed to scan active manager parameters: %w", err)
	}

	params := &types.ManagerParameters{}
	if params.Bands.Min, err = parseMoney("liquidity_min", minStr); err != nil {
		return nil, err
	}
	if params.Bands.Middle, err = parseMoney("liquidity_middle", middleStr); err != nil {
		return nil, err
	}
	if params.Bands.Max, err = parseMoney("liquidity_max", maxStr); err != nil {
		return nil, err
	}
	if params.Thresholds.ClaimMin, err = parseMoney("claim_rewards_min", claimStr); err != nil {
		return nil, err
	}
	if params.Thresholds.ReinvestMin, err = parseMoney("reinvest_rewards_min", reinvestStr); err != nil {
		return nil, err
	}
	params.MaxSlippage, err = sdkmath.LegacyNewDecFromStr(slippageStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse max_slippage %q: %w", slippageStr, err)
	}

	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("stored parameters failed validation: %w", err)
	}

	log.Info().Msg("Loaded active manager parameters")
	return params, nil
}

// GetActiveParametersID returns the params_id of the currently active row
func GetActiveParametersID() (*int64, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	query := `
        SELECT params_id
        FROM manager_parameters
        WHERE is_active = TRUE
        ORDER BY activated_at DESC
        LIMIT 1;`

	var paramsID int64
	row := DB.QueryRow(query)
	err := row.Scan(&paramsID)

	if err != nil {
		if err == sql.ErrNoRows {
			// No active parameters found - this is valid, return nil
			log.Debug().Msg("No active manager parameters found")
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get active manager parameters ID: %w", err)
	}

	log.Debug().
		Int64("params_id", paramsID).
		Msg("Retrieved active manager parameters ID")

	return &paramsID, nil
}

// GovernancePersister adapts the parameter store to the governance persister
// seam. Every successful setter call produces a new active version.
type GovernancePersister struct{}

func (GovernancePersister) SaveParameters(params types.ManagerParameters, note string) error {
	_, err := SaveManagerParameters(params, note, true)
	return err
}

func parseMoney(column, value string) (sdkmath.Int, error) {
	parsed, ok := sdkmath.NewIntFromString(value)
	if !ok {
		return sdkmath.ZeroInt(), fmt.Errorf("failed to parse %s %q as integer amount", column, value)
	}
	return parsed, nil
}
