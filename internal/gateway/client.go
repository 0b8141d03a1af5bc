/*

This file contains the JSON-RPC client shared by every live adapter.

The settlement node speaks JSON-RPC 2.0 over HTTP. This client only moves
bytes; each adapter owns the typing and validation of its own calls.

*/

package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/amphora-protocol/aam/internal/logger"
)

var gatewayLogger = logger.GetForComponent("gateway")

var ErrRPCFailure = errors.New("rpc call failed")
var ErrEmptyResult = errors.New("empty rpc result")
var ErrInvalidResponse = errors.New("invalid response payload")

const (
	RPC_TIMEOUT_SECONDS = 20
)

// JSONRPCRequest defines the structure of a JSON-RPC request.
type JSONRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// JSONRPCResponse defines the structure of a JSON-RPC response.
type JSONRPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *JSONRPCError   `json:"error,omitempty"`
}

// JSONRPCError defines the structure of a JSON-RPC error.
type JSONRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    string `json:"data,omitempty"`
}

// Client is a JSON-RPC 2.0 client for the settlement node.
type Client struct {
	endpoint   string
	httpClient *http.Client
	nextID     atomic.Uint64
}

func NewClient(endpoint string) *Client {
	return &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: RPC_TIMEOUT_SECONDS * time.Second},
	}
}

// Call invokes method with params and unmarshals the response into result.
// Pass a nil result for calls whose outcome is only success or failure.
func (c *Client) Call(ctx context.Context, method string, params any, result any) error {
	var rawParams json.RawMessage
	if params != nil {
		encoded, err := json.Marshal(params)
		if err != nil {
			gatewayLogger.Error().Err(err).Str("method", method).Msg("Failed to marshal RPC params")
			return fmt.Errorf("failed to marshal params for %s: %w", method, err)
		}
		rawParams = encoded
	}

	request := JSONRPCRequest{
		JSONRPC: "2.0",
		ID:      c.nextID.Add(1),
		Method:  method,
		Params:  rawParams,
	}

	jsonData, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON-RPC request: %w", err)
	}

	gatewayLogger.Debug().
		Str("endpoint", c.endpoint).
		Str("method", method).
		Msg("Executing RPC call")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		gatewayLogger.Error().Err(err).Str("method", method).Msg("Failed to send HTTP request")
		return fmt.Errorf("failed to send HTTP request: %w", err)
	}
	defer resp.Body.Close()

	respBodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	var response JSONRPCResponse
	if err := json.Unmarshal(respBodyBytes, &response); err != nil {
		gatewayLogger.Error().Err(err).Str("body", string(respBodyBytes)).Msg("Failed to unmarshal JSON-RPC response")
		return fmt.Errorf("failed to unmarshal JSON-RPC response: %w", err)
	}

	if response.Error != nil {
		gatewayLogger.Error().
			Int("code", response.Error.Code).
			Str("message", response.Error.Message).
			Str("method", method).
			Msg("RPC error received")
		return fmt.Errorf("%w: %s: %s (code %d)", ErrRPCFailure, method, response.Error.Message, response.Error.Code)
	}

	if result == nil {
		return nil
	}

	if len(response.Result) == 0 {
		return fmt.Errorf("%w: %s", ErrEmptyResult, method)
	}

	if err := json.Unmarshal(response.Result, result); err != nil {
		return fmt.Errorf("failed to unmarshal %s result: %w", method, err)
	}

	return nil
}
