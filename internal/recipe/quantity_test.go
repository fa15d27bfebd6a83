package recipe

import (
	"math"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		amount string
		kind   QuantityKind
		value  float64
	}{
		{"1 1/2", MixedNumber, 1.5},
		{"  2 3/4  ", MixedNumber, 2.75},
		{"3/4", Fraction, 0.75},
		{"10/4", Fraction, 2.5},
		{"2", Decimal, 2},
		{"0.5", Decimal, 0.5},
		{"2.25", Decimal, 2.25},
		{".5", Decimal, 0.5},
		{"2 eggs", Decimal, 2},
		{"1 1/2 cups", Decimal, 1},
		{"", Unparseable, 0},
		{"   ", Unparseable, 0},
		{"to taste", Unparseable, 0},
		{"a 2nd pinch", Unparseable, 0},
		{"1/0", Unparseable, 0},
		{"1 1/0", Unparseable, 0},
		{"Infinity", Unparseable, 0},
		{"1e999", Unparseable, 0},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			q := ParseQuantity(tt.amount)
			assert.Equal(t, tt.kind, q.Kind)
			assert.InDelta(t, tt.value, q.Value, 1e-9)
		})
	}
}

func TestParseQuantityStrict(t *testing.T) {
	s := NewScaler(WithStrictDecimals())

	assert.Equal(t, Decimal, s.Parse("2.5").Kind)
	assert.Equal(t, Fraction, s.Parse("1/3").Kind)
	assert.Equal(t, MixedNumber, s.Parse("1 1/3").Kind)
	assert.Equal(t, Unparseable, s.Parse("2 eggs").Kind)
	assert.Equal(t, Unparseable, s.Parse("1 1/2 cups").Kind)
}

func TestFormatQuantity(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		{0, "0"},
		{3, "3"},
		{12, "12"},
		{0.125, "1/8"},
		{0.25, "1/4"},
		{1.0 / 3, "1/3"},
		{0.375, "3/8"},
		{0.5, "1/2"},
		{0.625, "5/8"},
		{2.0 / 3, "2/3"},
		{0.75, "3/4"},
		{0.875, "7/8"},
		{1.5, "1 1/2"},
		{2.25, "2 1/4"},
		{3.875, "3 7/8"},
		{1 + 2.0/3, "1 2/3"},
		{0.3, "0.3"},
		{0.4375, "0.44"},
		{4.5, "4.5"},
		{10.25, "10.25"},
		{2.999, "3"},
		{4.125, "4.13"},
		{4.625, "4.63"},
		{5.375, "5.38"},
		{0.001, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatQuantity(tt.value))
		})
	}
}

func TestScaleAmount(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		scale  float64
		want   string
	}{
		{"mixed number doubled", "1 1/2", 2, "3"},
		{"fraction kept whole", "3/4", 1, "3/4"},
		{"fraction quadrupled", "1/2", 4, "2"},
		{"fraction tripled", "1/3", 3, "1"},
		{"fraction to mixed", "3/4", 3, "2 1/4"},
		{"integer", "2", 3, "6"},
		{"decimal halved", "0.5", 0.5, "1/4"},
		{"decimal off table", "0.3", 1, "0.3"},
		{"integer to fraction", "1", 0.5, "1/2"},
		{"beyond mixed range", "2 1/2", 2, "5"},
		{"large fractional", "2 1/4", 2, "4.5"},
		{"trailing zero stripped", "2.0", 1, "2"},
		{"half rounds up", "1 3/8", 3, "4.13"},
		{"half rounds up unscaled", "4.125", 1, "4.13"},
		{"above mixed range", "1 5/8", 3, "4.88"},
		{"leading number only", "2 eggs", 2, "4"},
		{"free text", "a pinch", 3, "a pinch"},
		{"empty", "", 2, ""},
		{"whitespace kept verbatim", "  ", 2, "  "},
		{"zero denominator", "3/0", 2, "3/0"},
		{"zero scale", "1/2", 0, "1/2"},
		{"negative scale", "1/2", -2, "1/2"},
		{"NaN scale", "1/2", math.NaN(), "1/2"},
		{"infinite scale", "1/2", math.Inf(1), "1/2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScaleAmount(tt.amount, tt.scale))
		})
	}
}

func TestScaleAmountFractionIsNotTruncated(t *testing.T) {
	got := ScaleAmount("3/4", 1)
	assert.Equal(t, "3/4", got)
	assert.NotEqual(t, "3", got)
}

func TestScaleAmountStrictKeepsTrailingText(t *testing.T) {
	s := NewScaler(WithStrictDecimals())
	assert.Equal(t, "2 eggs", s.ScaleAmount("2 eggs", 2))
	assert.Equal(t, "4", s.ScaleAmount("2", 2))
}

func TestScaleAmountIdentity(t *testing.T) {
	for _, amount := range []string{"1", "2", "1/8", "1/4", "1/3", "3/8", "1/2", "5/8", "2/3", "3/4", "7/8",
		"1 1/2", "2 1/3", "3 3/4", "0.5", "2.0", "0.3", "4.5", "12"} {
		t.Run(amount, func(t *testing.T) {
			want := ParseQuantity(amount)
			got := ParseQuantity(ScaleAmount(amount, 1))
			require.NotEqual(t, Unparseable, got.Kind)
			assert.InDelta(t, want.Value, got.Value, FractionTolerance)
		})
	}
}

func TestScaleAmountLinearity(t *testing.T) {
	scales := []float64{0.5, 1, 2, 3, 4}
	for _, f := range commonFractions {
		amount := FormatQuantity(f.value)
		base := ParseQuantity(amount).Value
		for _, s1 := range scales {
			for _, s2 := range scales {
				got := ParseQuantity(ScaleAmount(amount, s1*s2))
				require.NotEqual(t, Unparseable, got.Kind, "amount=%s scale=%g", amount, s1*s2)
				// two-decimal rounding bounds the error outside the fraction table
				assert.InDelta(t, base*s1*s2, got.Value, 0.005+FractionTolerance, "amount=%s scale=%g", amount, s1*s2)
			}
		}
	}
}

func TestScaleAmountPassThrough(t *testing.T) {
	for _, amount := range []string{"to taste", "", "  ", "a pinch", "some", "one", "½"} {
		for _, scale := range []float64{0.5, 1, 2, 3, 4, 7.25} {
			assert.Equal(t, amount, ScaleAmount(amount, scale), "scale=%g", scale)
		}
	}
}

func TestParseScaleFactor(t *testing.T) {
	tests := []struct {
		text    string
		want    float64
		wantErr bool
	}{
		{"2", 2, false},
		{"0.5", 0.5, false},
		{"1/2", 0.5, false},
		{"1 1/2", 1.5, false},
		{"0", 0, true},
		{"-1", 0, true},
		{"2x", 0, true},
		{"", 0, true},
		{"1/0", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, err := ParseScaleFactor(tt.text)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidScale)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestScalerConcurrentUse(t *testing.T) {
	s := NewScaler()
	var wg sync.WaitGroup
	for i := 1; i <= 8; i++ {
		wg.Add(1)
		go func(scale int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				got := s.ScaleAmount("1/2", float64(scale*2))
				if got != strconv.Itoa(scale) {
					t.Errorf("scale %d: got %q", scale, got)
					return
				}
			}
		}(i)
	}
	wg.Wait()
}
