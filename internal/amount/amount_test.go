package amount

import (
	"math"
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vadiminshakov/seedfarm/internal/domain"
)

func raw(t *testing.T, s string) *big.Int {
	t.Helper()
	v, ok := new(big.Int).SetString(s, 10)
	require.True(t, ok, "bad test literal %s", s)
	return v
}

func TestToDisplay(t *testing.T) {
	tests := []struct {
		name     string
		raw      *big.Int
		places   int32
		expected string
	}{
		{name: "balance scenario", raw: raw(t, "1234500000000000000000"), places: BalancePlaces, expected: "1234.500"},
		{name: "zero", raw: big.NewInt(0), places: StakePlaces, expected: "0.00000"},
		{name: "nil is zero", raw: nil, places: BalancePlaces, expected: "0.000"},
		{name: "one wei", raw: big.NewInt(1), places: RewardPlaces, expected: "0.00000"},
		{name: "rounds half up", raw: raw(t, "1000500000000000000"), places: 3, expected: "1.001"},
		{name: "rounds down", raw: raw(t, "1000499999999999999"), places: 3, expected: "1.000"},
		{name: "huge supply keeps precision", raw: raw(t, "123456789012345678901234567890123456789"), places: 3, expected: "123456789012345678901.235"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ToDisplay(tt.raw, domain.TokenDecimals, tt.places))
		})
	}

	assert.Equal(t, "1234.500", Balance(raw(t, "1234500000000000000000")))
	assert.Equal(t, "1234.50000", Stake(raw(t, "1234500000000000000000")))
	assert.Equal(t, "0.00001", Reward(big.NewInt(10_000_000_000_000)))
}

func TestToRaw(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{input: "1", expected: "1000000000000000000"},
		{input: "0", expected: "0"},
		{input: " 2.5 ", expected: "2500000000000000000"},
		{input: ".5", expected: "500000000000000000"},
		{input: "5.", expected: "5000000000000000000"},
		{input: "0.0000000000000000019", expected: "1"},
		{input: "1000000000", expected: "1000000000000000000000000000"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ToRaw(tt.input, domain.TokenDecimals)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got.String())
		})
	}
}

func TestToRaw_InvalidAmount(t *testing.T) {
	for _, input := range []string{"abc", "", "-5", "   ", ".", "1.2.3", "1e18", "+3", "0x10", "NaN"} {
		t.Run(input, func(t *testing.T) {
			got, err := ToRaw(input, domain.TokenDecimals)
			assert.ErrorIs(t, err, domain.ErrInvalidAmount)
			assert.Nil(t, got)
		})
	}
}

func TestRoundTrip(t *testing.T) {
	inputs := []string{
		"0", "1", "1234.5", "0.0005", "0.00049999", "99.99951", "3.14159265358979323846",
		"0.0004999999999999999999", "18446744073709551616.123456789", "0.000000000000000001",
	}
	for _, places := range []int32{BalancePlaces, StakePlaces, APRPlaces} {
		for _, s := range inputs {
			r, err := ToRaw(s, domain.TokenDecimals)
			require.NoError(t, err)

			want := decimal.RequireFromString(s).StringFixed(places)
			assert.Equal(t, want, ToDisplay(r, domain.TokenDecimals, places), "input %s places %d", s, places)
		}
	}
}

func TestFloatFormatting(t *testing.T) {
	assert.Equal(t, "2.50000", Price(2.5))
	assert.Equal(t, "0.33333", Price(1.0/3.0))
	assert.Equal(t, "1.00002", Price(1.000025), "binary value is below the tie")
	assert.Equal(t, "1.00001", Price(1.000005), "binary value is above the tie")
	assert.Equal(t, "0.50000", Price(0.5))
	assert.Equal(t, "-", Price(math.Inf(1)))
	assert.Equal(t, "0", APR(6.048e-16))
	assert.Equal(t, "13", APR(12.5))
	assert.Equal(t, "-", APR(math.NaN()))
}

func TestShortenAddress(t *testing.T) {
	assert.Equal(t, "0x23D . . . fd391", ShortenAddress("0x23D50a056c5Dd62073600e1daDcE73D454Cfd391"))
	assert.Equal(t, "0xabc", ShortenAddress("0xabc"))
}
