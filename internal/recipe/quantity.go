package recipe

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

const (
	// FractionTolerance is the largest absolute difference at which a value
	// still renders as a common cooking fraction.
	FractionTolerance = 0.001

	// MaxWholeOffset is the largest whole part rendered as a mixed number.
	// Values beyond MaxWholeOffset + 7/8 fall back to decimals.
	MaxWholeOffset = 3

	decimalPlaces = 2
)

// commonFraction is a fraction that reads naturally in a recipe.
type commonFraction struct {
	value float64
	text  string
}

// commonFractions is scanned in order; the first match wins.
var commonFractions = []commonFraction{
	{0.125, "1/8"},
	{0.25, "1/4"},
	{0.333, "1/3"},
	{0.375, "3/8"},
	{0.5, "1/2"},
	{0.625, "5/8"},
	{0.667, "2/3"},
	{0.75, "3/4"},
	{0.875, "7/8"},
}

var (
	mixedNumberPattern = regexp.MustCompile(`^(\d+)\s+(\d+)/(\d+)$`)
	fractionPattern    = regexp.MustCompile(`^(\d+)/(\d+)$`)
	leadingFloat       = regexp.MustCompile(`^[+-]?(?:\d+(?:\.\d*)?|\.\d+)(?:[eE][+-]?\d+)?`)
	wholeFloat         = regexp.MustCompile(`^[+-]?(?:\d+(?:\.\d*)?|\.\d+)(?:[eE][+-]?\d+)?$`)
)

// QuantityKind identifies the shape of a parsed quantity.
type QuantityKind int

const (
	// Unparseable quantities are free text such as "to taste".
	Unparseable QuantityKind = iota
	// Decimal covers integers and decimals: "2", "0.5".
	Decimal
	// Fraction is a simple fraction: "3/4".
	Fraction
	// MixedNumber is a whole number followed by a fraction: "1 1/2".
	MixedNumber
)

func (k QuantityKind) String() string {
	switch k {
	case Decimal:
		return "decimal"
	case Fraction:
		return "fraction"
	case MixedNumber:
		return "mixed number"
	default:
		return "unparseable"
	}
}

// ParsedQuantity is the result of parsing an ingredient amount.
type ParsedQuantity struct {
	Kind  QuantityKind
	Value float64
}

// Scaler parses, scales and renders ingredient amounts. A Scaler holds no
// mutable state and is safe for concurrent use.
type Scaler struct {
	strict bool
}

// ScalerOption configures a Scaler.
type ScalerOption func(*Scaler)

// WithStrictDecimals makes the decimal fallback require the whole amount to
// be a number, so "2 eggs" is left untouched instead of scaling the 2.
func WithStrictDecimals() ScalerOption {
	return func(s *Scaler) {
		s.strict = true
	}
}

// NewScaler creates a Scaler. By default decimals are read from the leading
// numeric prefix of the amount.
func NewScaler(opts ...ScalerOption) *Scaler {
	s := &Scaler{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var defaultScaler = NewScaler()

// ParseQuantity parses amount with the default Scaler.
func ParseQuantity(amount string) ParsedQuantity {
	return defaultScaler.Parse(amount)
}

// ScaleAmount scales amount by factor with the default Scaler.
func ScaleAmount(amount string, factor float64) string {
	return defaultScaler.ScaleAmount(amount, factor)
}

// ScaleIngredients scales every amount in ingredients with the default Scaler.
func ScaleIngredients(ingredients []Ingredient, factor float64) []Ingredient {
	return defaultScaler.ScaleIngredients(ingredients, factor)
}

// Parse recognises, in order, a mixed number, a simple fraction and a
// decimal. The order matters: a decimal parser would read "3/4" as 3.
func (s *Scaler) Parse(amount string) ParsedQuantity {
	trimmed := strings.TrimSpace(amount)
	if trimmed == "" {
		return ParsedQuantity{}
	}

	if m := mixedNumberPattern.FindStringSubmatch(trimmed); m != nil {
		whole, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return ParsedQuantity{}
		}
		frac, ok := fractionValue(m[2], m[3])
		if !ok {
			return ParsedQuantity{}
		}
		return ParsedQuantity{Kind: MixedNumber, Value: whole + frac}
	}

	if m := fractionPattern.FindStringSubmatch(trimmed); m != nil {
		frac, ok := fractionValue(m[1], m[2])
		if !ok {
			return ParsedQuantity{}
		}
		return ParsedQuantity{Kind: Fraction, Value: frac}
	}

	pattern := leadingFloat
	if s.strict {
		pattern = wholeFloat
	}
	number := pattern.FindString(trimmed)
	if number == "" {
		return ParsedQuantity{}
	}
	v, err := strconv.ParseFloat(number, 64)
	if err != nil || !isFinite(v) {
		return ParsedQuantity{}
	}
	return ParsedQuantity{Kind: Decimal, Value: v}
}

// ScaleAmount returns amount multiplied by factor, rendered with
// FormatQuantity. Amounts that cannot be parsed are returned unchanged, as
// are all amounts when factor is not a finite positive number.
//
// A parseable amount is always re-rendered, even at a factor of 1: "2.0"
// becomes "2" and "0.5" becomes "1/2". ScaleIngredients differs here and
// keeps amounts as written when the factor is exactly 1.
func (s *Scaler) ScaleAmount(amount string, factor float64) string {
	if !validFactor(factor) {
		return amount
	}

	q := s.Parse(amount)
	switch q.Kind {
	case MixedNumber, Fraction, Decimal:
		scaled := q.Value * factor
		if !isFinite(scaled) {
			return amount
		}
		return FormatQuantity(scaled)
	default:
		return amount
	}
}

// ScaleIngredients returns a new slice in the same order with every amount
// scaled. Name, unit and notes are copied as is and the input is not
// modified, so callers should always scale from the original list. At a
// factor of exactly 1 the amounts are copied as written.
func (s *Scaler) ScaleIngredients(ingredients []Ingredient, factor float64) []Ingredient {
	if ingredients == nil {
		return nil
	}
	out := make([]Ingredient, len(ingredients))
	copy(out, ingredients)
	if factor == 1 {
		return out
	}
	for i := range out {
		out[i].Amount = s.ScaleAmount(out[i].Amount, factor)
	}
	return out
}

// ScaleRecipe returns a copy of r with its ingredients scaled by factor.
func (s *Scaler) ScaleRecipe(r *Recipe, factor float64) *Recipe {
	if r == nil {
		return nil
	}
	scaled := r.clone()
	scaled.Ingredients = s.ScaleIngredients(r.Ingredients, factor)
	return scaled
}

// Unscalable counts ingredients with a non-empty amount that Parse rejects.
func (s *Scaler) Unscalable(ingredients []Ingredient) int {
	n := 0
	for _, ing := range ingredients {
		if strings.TrimSpace(ing.Amount) == "" {
			continue
		}
		if s.Parse(ing.Amount).Kind == Unparseable {
			n++
		}
	}
	return n
}

// FormatQuantity renders value as a whole number, a common cooking fraction
// or mixed number, or a decimal rounded half away from zero to two places.
func FormatQuantity(value float64) string {
	if value == 0 {
		return "0"
	}
	if value == math.Trunc(value) {
		return strconv.FormatFloat(value, 'f', -1, 64)
	}

	for _, f := range commonFractions {
		for whole := 0; whole <= MaxWholeOffset; whole++ {
			if math.Abs(value-(float64(whole)+f.value)) < FractionTolerance {
				if whole == 0 {
					return f.text
				}
				return strconv.Itoa(whole) + " " + f.text
			}
		}
	}

	// halves round away from zero, so 4.125 reads 4.13
	scale := math.Pow10(decimalPlaces)
	rounded := math.Round(value*scale) / scale
	if rounded == 0 {
		return "0"
	}
	return strconv.FormatFloat(rounded, 'f', -1, 64)
}

// ParseScaleFactor reads a scale factor such as "2", "0.5", "1/2" or
// "1 1/2". The whole text must be numeric and the value positive.
func ParseScaleFactor(text string) (float64, error) {
	q := strictScaler.Parse(text)
	if q.Kind == Unparseable || !validFactor(q.Value) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidScale, text)
	}
	return q.Value, nil
}

var strictScaler = NewScaler(WithStrictDecimals())

func fractionValue(numerator, denominator string) (float64, bool) {
	num, err := strconv.ParseFloat(numerator, 64)
	if err != nil {
		return 0, false
	}
	den, err := strconv.ParseFloat(denominator, 64)
	if err != nil || den == 0 {
		return 0, false
	}
	v := num / den
	return v, isFinite(v)
}

func validFactor(f float64) bool {
	return f > 0 && isFinite(f)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
