/*

This file fetches spot prices from the price API.

Reward conversions are sized off these quotes, so a stale or malformed quote
must fail the operation instead of slipping through into a swap.

*/

package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	sdkmath "cosmossdk.io/math"

	"github.com/amphora-protocol/aam/internal/logger"
	"github.com/amphora-protocol/aam/internal/types"
)

var priceLogger = logger.GetForComponent("price_client")

var (
	ErrPriceAPIStatus = errors.New("price API returned non-200 status")
	ErrPriceStale     = errors.New("price quote is stale")
	ErrPriceMalformed = errors.New("malformed price response")
)

const (
	MAX_RETRIES           = 3
	TIMEOUT_SECONDS       = 10
	MAX_PRICE_AGE_SECONDS = 300 // Reject quotes older than 5 minutes.
)

// LivePriceSource reads spot prices from the REST price API.
type LivePriceSource struct {
	baseURL string
	client  *http.Client
}

func NewLivePriceSource(baseURL string) *LivePriceSource {
	return &LivePriceSource{
		baseURL: baseURL,
		client:  &http.Client{Timeout: TIMEOUT_SECONDS * time.Second},
	}
}

type priceResponse struct {
	Denom     string `json:"denom"`
	Price     string `json:"price"`
	Timestamp int64  `json:"timestamp"`
}

// AssetPrice fetches the current quote for asset, retrying transient failures.
func (s *LivePriceSource) AssetPrice(ctx context.Context, asset types.Token) (sdkmath.LegacyDec, error) {
	url := fmt.Sprintf("%s/v1/prices/%s", s.baseURL, asset.Denom)

	var lastErr error
	for attempt := 1; attempt <= MAX_RETRIES; attempt++ {
		priceLogger.Debug().
			Str("denom", asset.Denom).
			Int("attempt", attempt).
			Int("maxRetries", MAX_RETRIES).
			Msg("Requesting spot price")

		price, err := s.fetchOnce(ctx, url, asset)
		if err == nil {
			return price, nil
		}
		lastErr = err

		priceLogger.Warn().
			Err(err).
			Str("denom", asset.Denom).
			Int("attempt", attempt).
			Msg("Price request failed, will retry if attempts remain")

		if attempt < MAX_RETRIES {
			time.Sleep(time.Duration(attempt) * time.Second)
		}
	}

	priceLogger.Error().
		Err(lastErr).
		Str("denom", asset.Denom).
		Int("maxRetries", MAX_RETRIES).
		Msg("All price request attempts failed")
	return sdkmath.LegacyZeroDec(), fmt.Errorf("failed to fetch price for %s after %d attempts: %w", asset.Denom, MAX_RETRIES, lastErr)
}

func (s *LivePriceSource) fetchOnce(ctx context.Context, url string, asset types.Token) (sdkmath.LegacyDec, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return sdkmath.LegacyZeroDec(), err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return sdkmath.LegacyZeroDec(), err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return sdkmath.LegacyZeroDec(), fmt.Errorf("%w: %d for %s", ErrPriceAPIStatus, resp.StatusCode, asset.Denom)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return sdkmath.LegacyZeroDec(), fmt.Errorf("failed to read response body for %s: %w", asset.Denom, err)
	}
	if len(body) == 0 {
		return sdkmath.LegacyZeroDec(), fmt.Errorf("%w: empty body for %s", ErrPriceMalformed, asset.Denom)
	}

	var pr priceResponse
	if err := json.Unmarshal(body, &pr); err != nil {
		return sdkmath.LegacyZeroDec(), fmt.Errorf("%w: %s: %w", ErrPriceMalformed, asset.Denom, err)
	}

	return validatePriceResponse(pr, asset)
}

// validatePriceResponse performs strict validation on a single quote.
func validatePriceResponse(pr priceResponse, asset types.Token) (sdkmath.LegacyDec, error) {
	if pr.Denom != asset.Denom {
		return sdkmath.LegacyZeroDec(), fmt.Errorf("%w: requested %s, got %s", ErrPriceMalformed, asset.Denom, pr.Denom)
	}
	if pr.Timestamp <= 0 {
		return sdkmath.LegacyZeroDec(), fmt.Errorf("%w: invalid timestamp %d for %s", ErrPriceMalformed, pr.Timestamp, asset.Denom)
	}

	age := time.Since(time.Unix(pr.Timestamp, 0))
	if age > MAX_PRICE_AGE_SECONDS*time.Second {
		return sdkmath.LegacyZeroDec(), fmt.Errorf("%w: %s quote is %s old", ErrPriceStale, asset.Denom, age.Round(time.Second))
	}

	price, err := sdkmath.LegacyNewDecFromStr(pr.Price)
	if err != nil {
		return sdkmath.LegacyZeroDec(), fmt.Errorf("%w: unparseable price %q for %s: %w", ErrPriceMalformed, pr.Price, asset.Denom, err)
	}
	if !price.IsPositive() {
		return sdkmath.LegacyZeroDec(), fmt.Errorf("%w: %s", ErrPriceNotPositive, asset.Denom)
	}

	return price, nil
}
