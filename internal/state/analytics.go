package state

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"
)

// OperationsSummary represents high-level journal statistics
type OperationsSummary struct {
	TotalOperations      int64  `json:"total_operations"`
	SuccessfulOperations int64  `json:"successful_operations"`
	FailedOperations     int64  `json:"failed_operations"`
	ActiveParametersID   *int64 `json:"active_parameters_id,omitempty"`
	LastOperationAt      string `json:"last_operation_at,omitempty"`
	LastOperationKind    string `json:"last_operation_kind,omitempty"`
}

// GetOperationsSummary retrieves aggregated journal statistics for the API
func GetOperationsSummary() (*OperationsSummary, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	summary := &OperationsSummary{}

	query := `
		SELECT
			COUNT(*) as total_operations,
			COUNT(CASE WHEN success THEN 1 END) as successful_operations,
			COUNT(CASE WHEN NOT success THEN 1 END) as failed_operations
		FROM operation_events
	`

	err := DB.QueryRow(query).Scan(
		&summary.TotalOperations,
		&summary.SuccessfulOperations,
		&summary.FailedOperations,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get operation counts: %w", err)
	}

	// Latest journal row, if any
	var lastAt sql.NullString
	var lastKind sql.NullString
	err = DB.QueryRow(`
		SELECT event_timestamp::TEXT, kind
		FROM operation_events
		ORDER BY event_timestamp DESC
		LIMIT 1
	`).Scan(&lastAt, &lastKind)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to get latest operation: %w", err)
	}
	if lastAt.Valid {
		summary.LastOperationAt = lastAt.String
	}
	if lastKind.Valid {
		summary.LastOperationKind = lastKind.String
	}

	paramsID, err := GetActiveParametersID()
	if err != nil {
		log.Error().Err(err).Msg("Failed to get active parameters ID for summary")
	} else {
		summary.ActiveParametersID = paramsID
	}

	log.Debug().
		Int64("totalOperations", summary.TotalOperations).
		Int64("failedOperations", summary.FailedOperations).
		Msg("Retrieved operations summary")

	return summary, nil
}

// GetOperationCountsByKind aggregates journal rows per operation kind
func GetOperationCountsByKind() (map[string]int64, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	rows, err := DB.Query(`
		SELECT kind, COUNT(*)
		FROM operation_events
		GROUP BY kind
		ORDER BY kind
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query operation counts by kind: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var kind string
		var count int64
		if err := rows.Scan(&kind, &count); err != nil {
			log.Error().Err(err).Msg("Failed to scan operation count row")
			continue
		}
		counts[kind] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}
	return counts, nil
}
