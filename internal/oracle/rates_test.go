package oracle

import (
	"context"
	"errors"
	"testing"
	"time"

	sdkmath "cosmossdk.io/math"

	"github.com/amphora-protocol/aam/internal/types"
)

var (
	usdc = types.Token{Symbol: "USDC", Denom: "uusdc", Decimals: 6}
	rwd  = types.Token{Symbol: "RWD", Denom: "arwd", Decimals: 18}
)

type staticPrices map[string]sdkmath.LegacyDec

func (s staticPrices) AssetPrice(_ context.Context, asset types.Token) (sdkmath.LegacyDec, error) {
	price, ok := s[asset.Denom]
	if !ok {
		return sdkmath.LegacyZeroDec(), errors.New("no quote for " + asset.Denom)
	}
	return price, nil
}

func dec(s string) sdkmath.LegacyDec { return sdkmath.LegacyMustNewDecFromStr(s) }

func TestExchangeRateSameDecimals(t *testing.T) {
	src := NewRateSource(staticPrices{
		"uusdc": dec("1.0"),
		"uusdt": dec("0.5"),
	})
	usdt := types.Token{Symbol: "USDT", Denom: "uusdt", Decimals: 6}

	rate, err := src.ExchangeRate(context.Background(), usdt, usdc)
	if err != nil {
		t.Fatalf("ExchangeRate: %v", err)
	}
	if !rate.Equal(dec("0.5")) {
		t.Errorf("rate = %s, want 0.5", rate)
	}
}

// Two whole reward tokens at half the settlement price are worth exactly one
// whole settlement token, across the 18 to 6 decimal gap.
func TestValueAcrossDecimals(t *testing.T) {
	src := NewRateSource(staticPrices{
		"uusdc": dec("1.0"),
		"arwd":  dec("0.5"),
	})

	twoRwd := sdkmath.NewIntWithDecimal(2, 18)
	got, err := src.Value(context.Background(), twoRwd, rwd, usdc)
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	if want := sdkmath.NewInt(1_000_000); !got.Equal(want) {
		t.Errorf("Value(%s arwd) = %s uusdc, want %s", twoRwd, got, want)
	}

	// And the reverse direction.
	oneUsdc := sdkmath.NewInt(1_000_000)
	back, err := src.Value(context.Background(), oneUsdc, usdc, rwd)
	if err != nil {
		t.Fatalf("Value reverse: %v", err)
	}
	if want := sdkmath.NewIntWithDecimal(2, 18); !back.Equal(want) {
		t.Errorf("Value(%s uusdc) = %s arwd, want %s", oneUsdc, back, want)
	}
}

func TestValueZeroAmountSkipsLookup(t *testing.T) {
	src := NewRateSource(staticPrices{})

	got, err := src.Value(context.Background(), sdkmath.ZeroInt(), rwd, usdc)
	if err != nil {
		t.Fatalf("Value(0): %v", err)
	}
	if !got.IsZero() {
		t.Errorf("Value(0) = %s, want 0", got)
	}
}

func TestExchangeRateMissingQuote(t *testing.T) {
	src := NewRateSource(staticPrices{"uusdc": dec("1.0")})

	if _, err := src.ExchangeRate(context.Background(), rwd, usdc); !errors.Is(err, ErrPriceUnavailable) {
		t.Errorf("missing quote error = %v, want %v", err, ErrPriceUnavailable)
	}
}

func TestExchangeRateZeroPrice(t *testing.T) {
	src := NewRateSource(staticPrices{
		"uusdc": dec("1.0"),
		"arwd":  dec("0"),
	})

	if _, err := src.ExchangeRate(context.Background(), rwd, usdc); !errors.Is(err, ErrPriceNotPositive) {
		t.Errorf("zero price error = %v, want %v", err, ErrPriceNotPositive)
	}
}

func TestValidatePriceResponse(t *testing.T) {
	now := time.Now().Unix()

	tests := []struct {
		name    string
		resp    priceResponse
		wantErr error
	}{
		{"valid", priceResponse{Denom: "uusdc", Price: "1.0", Timestamp: now}, nil},
		{"denom mismatch", priceResponse{Denom: "uatom", Price: "1.0", Timestamp: now}, ErrPriceMalformed},
		{"zero timestamp", priceResponse{Denom: "uusdc", Price: "1.0", Timestamp: 0}, ErrPriceMalformed},
		{"stale", priceResponse{Denom: "uusdc", Price: "1.0", Timestamp: now - 3600}, ErrPriceStale},
		{"unparseable price", priceResponse{Denom: "uusdc", Price: "one", Timestamp: now}, ErrPriceMalformed},
		{"negative price", priceResponse{Denom: "uusdc", Price: "-1.0", Timestamp: now}, ErrPriceNotPositive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := validatePriceResponse(tt.resp, usdc)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
