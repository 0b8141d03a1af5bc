// ./internal/state/events_store.go
package state

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/amphora-protocol/aam/internal/types"
)

// SaveOperationEvent saves one journal row to the database.
func SaveOperationEvent(event types.OperationEvent) (int64, error) {
	if DB == nil {
		return 0, fmt.Errorf("database not initialized")
	}

	var payloadJSON []byte
	if event.Payload != nil {
		var err error
		payloadJSON, err = json.Marshal(event.Payload)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal payload: %w", err)
		}
	}

	query := `
		INSERT INTO operation_events (
			sequence, operation_id, kind, success, message, payload, event_timestamp
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING event_id;
	`

	var eventID int64
	err := DB.QueryRow(
		query,
		event.Sequence, event.OperationID, string(event.Kind), event.Success, event.Message, payloadJSON, event.Timestamp,
	).Scan(&eventID)

	if err != nil {
		return 0, fmt.Errorf("failed to save operation event: %w", err)
	}

	log.Info().
		Int64("event_id", eventID).
		Int64("sequence", event.Sequence).
		Str("kind", string(event.Kind)).
		Bool("success", event.Success).
		Msg("Operation event saved to database")

	return eventID, nil
}

// GetRecentOperations retrieves recent journal rows, newest first.
func GetRecentOperations(limit int) ([]types.OperationEvent, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	if limit <= 0 || limit > 100 {
		limit = 10 // Default limit
	}

	query := `
		SELECT sequence, operation_id, kind, success, message, payload, event_timestamp
		FROM operation_events
		ORDER BY event_timestamp DESC
		LIMIT $1
	`

	rows, err := DB.Query(query, limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to query recent operations")
		return nil, fmt.Errorf("failed to query recent operations: %w", err)
	}
	defer rows.Close()

	var events []types.OperationEvent
	for rows.Next() {
		var event types.OperationEvent
		var kind string
		var payloadJSON []byte

		err := rows.Scan(
			&event.Sequence, &event.OperationID, &kind, &event.Success, &event.Message, &payloadJSON, &event.Timestamp,
		)
		if err != nil {
			log.Error().Err(err).Msg("Failed to scan operation event row")
			continue // Skip this row and continue with others
		}
		event.Kind = types.OperationKind(kind)

		if len(payloadJSON) > 0 {
			event.Payload = json.RawMessage(payloadJSON)
		}

		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		log.Error().Err(err).Msg("Error occurred during row iteration")
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}

	log.Debug().Int("count", len(events)).Int("limit", limit).Msg("Retrieved recent operations")
	return events, nil
}

// GetOperationsByKind retrieves recent journal rows of one kind, newest first.
func GetOperationsByKind(kind types.OperationKind, limit int) ([]types.OperationEvent, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	if limit <= 0 || limit > 100 {
		limit = 10
	}

	query := `
		SELECT sequence, operation_id, kind, success, message, payload, event_timestamp
		FROM operation_events
		WHERE kind = $1
		ORDER BY event_timestamp DESC
		LIMIT $2
	`

	rows, err := DB.Query(query, string(kind), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query operations by kind: %w", err)
	}
	defer rows.Close()

	var events []types.OperationEvent
	for rows.Next() {
		var event types.OperationEvent
		var kindStr string
		var payloadJSON []byte

		if err := rows.Scan(
			&event.Sequence, &event.OperationID, &kindStr, &event.Success, &event.Message, &payloadJSON, &event.Timestamp,
		); err != nil {
			log.Error().Err(err).Msg("Failed to scan operation event row")
			continue
		}
		event.Kind = types.OperationKind(kindStr)
		if len(payloadJSON) > 0 {
			event.Payload = json.RawMessage(payloadJSON)
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}
	return events, nil
}

// Journal is the database-backed operation journal handed to the manager.
type Journal struct{}

func (Journal) NextOperationSequence() (int64, error) {
	return IncrementOperationSequence()
}

func (Journal) RecordOperation(event types.OperationEvent) error {
	_, err := SaveOperationEvent(event)
	return err
}
