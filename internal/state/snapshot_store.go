// ./internal/state/snapshot_store.go
package state

import (
	"database/sql"
	"fmt"

	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog/log"

	"github.com/amphora-protocol/aam/internal/types"
)

// SavePositionSnapshot saves an end-of-operation position snapshot.
func SavePositionSnapshot(snapshot types.PositionSnapshot) (int64, error) {
	if DB == nil {
		return 0, fmt.Errorf("database not initialized")
	}

	query := `
		INSERT INTO position_snapshots (
			operation_id,
			principal, reward_position, reward_held, unclaimed,
			exchange_rate, reward_value, total_value,
			snapshot_timestamp
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING snapshot_id;
	`

	var snapshotID int64
	err := DB.QueryRow(
		query,
		snapshot.OperationID,
		snapshot.Principal.String(), snapshot.RewardPosition.String(), snapshot.RewardHeld.String(), snapshot.Unclaimed.String(),
		snapshot.ExchangeRate.String(), snapshot.RewardValue.String(), snapshot.TotalValue.String(),
		snapshot.Timestamp,
	).Scan(&snapshotID)

	if err != nil {
		return 0, fmt.Errorf("failed to save position snapshot: %w", err)
	}

	log.Info().
		Int64("snapshot_id", snapshotID).
		Str("operation_id", snapshot.OperationID).
		Str("total_value", snapshot.TotalValue.String()).
		Msg("Position snapshot saved to database")

	return snapshotID, nil
}

// GetRecentPositionSnapshots retrieves recent snapshots, newest first.
func GetRecentPositionSnapshots(limit int) ([]types.PositionSnapshot, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	if limit <= 0 || limit > 100 {
		limit = 10 // Default limit
	}

	query := `
		SELECT snapshot_id, operation_id,
		       principal, reward_position, reward_held, unclaimed,
		       exchange_rate, reward_value, total_value,
		       snapshot_timestamp
		FROM position_snapshots
		ORDER BY snapshot_timestamp DESC
		LIMIT $1
	`

	rows, err := DB.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query position snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []types.PositionSnapshot
	for rows.Next() {
		snapshot, err := scanPositionSnapshot(rows.Scan)
		if err != nil {
			log.Error().Err(err).Msg("Failed to scan position snapshot row")
			continue // Skip this row and continue with others
		}
		snapshots = append(snapshots, snapshot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}

	log.Debug().Int("count", len(snapshots)).Int("limit", limit).Msg("Retrieved position snapshots")
	return snapshots, nil
}

// GetLatestPositionSnapshot returns the most recent snapshot, or nil when no
// operation has completed yet.
func GetLatestPositionSnapshot() (*types.PositionSnapshot, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	query := `
		SELECT snapshot_id, operation_id,
		       principal, reward_position, reward_held, unclaimed,
		       exchange_rate, reward_value, total_value,
		       snapshot_timestamp
		FROM position_snapshots
		ORDER BY snapshot_timestamp DESC
		LIMIT 1
	`

	row := DB.QueryRow(query)
	snapshot, err := scanPositionSnapshot(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest position snapshot: %w", err)
	}
	return &snapshot, nil
}

// scanPositionSnapshot decodes one row; NUMERIC columns arrive as strings.
func scanPositionSnapshot(scan func(dest ...any) error) (types.PositionSnapshot, error) {
	var snapshot types.PositionSnapshot
	var principalStr, rewardPositionStr, rewardHeldStr, unclaimedStr string
	var rateStr, rewardValueStr, totalValueStr string

	err := scan(
		&snapshot.SnapshotID, &snapshot.OperationID,
		&principalStr, &rewardPositionStr, &rewardHeldStr, &unclaimedStr,
		&rateStr, &rewardValueStr, &totalValueStr,
		&snapshot.Timestamp,
	)
	if err != nil {
		return types.PositionSnapshot{}, err
	}

	if snapshot.Principal, err = parseMoney("principal", principalStr); err != nil {
		return types.PositionSnapshot{}, err
	}
	if snapshot.RewardPosition, err = parseMoney("reward_position", rewardPositionStr); err != nil {
		return types.PositionSnapshot{}, err
	}
	if snapshot.RewardHeld, err = parseMoney("reward_held", rewardHeldStr); err != nil {
		return types.PositionSnapshot{}, err
	}
	if snapshot.Unclaimed, err = parseMoney("unclaimed", unclaimedStr); err != nil {
		return types.PositionSnapshot{}, err
	}
	if snapshot.RewardValue, err = parseMoney("reward_value", rewardValueStr); err != nil {
		return types.PositionSnapshot{}, err
	}
	if snapshot.TotalValue, err = parseMoney("total_value", totalValueStr); err != nil {
		return types.PositionSnapshot{}, err
	}
	snapshot.ExchangeRate, err = sdkmath.LegacyNewDecFromStr(rateStr)
	if err != nil {
		return types.PositionSnapshot{}, fmt.Errorf("failed to parse exchange_rate %q: %w", rateStr, err)
	}
	return snapshot, nil
}

// Snapshots is the database-backed snapshot sink handed to the manager.
type Snapshots struct{}

func (Snapshots) RecordSnapshot(snapshot types.PositionSnapshot) error {
	_, err := SavePositionSnapshot(snapshot)
	return err
}
