// Package units classifies measurement units, converts quantities to
// canonical base units (grams, milliliters, pieces), and parses free-text
// package sizes like "ca. 400g" or "1,5 l".
package units

import (
	"regexp"
	"strconv"
	"strings"
)

// Type is the measurement dimension of a unit.
type Type string

const (
	Weight  Type = "weight"
	Volume  Type = "volume"
	Count   Type = "count"
	Unknown Type = "unknown"
)

// BaseWeight, BaseVolume and BaseCount are the canonical base units all
// known units convert to before any arithmetic.
const (
	BaseWeight = "g"
	BaseVolume = "ml"
	BaseCount  = "stk"
)

type unitInfo struct {
	factor float64
	base   string
	typ    Type
}

// unitTable maps every known unit synonym to its conversion factor, base
// unit and type. Danish count words (fed = garlic clove, bundt = bunch)
// come from the storefront's own vocabulary.
var unitTable = map[string]unitInfo{
	// weight -> grams
	"g":     {1, BaseWeight, Weight},
	"gram":  {1, BaseWeight, Weight},
	"gr":    {1, BaseWeight, Weight},
	"kg":    {1000, BaseWeight, Weight},
	"kilo":  {1000, BaseWeight, Weight},
	// volume -> milliliters
	"ml":    {1, BaseVolume, Volume},
	"cl":    {10, BaseVolume, Volume},
	"dl":    {100, BaseVolume, Volume},
	"l":     {1000, BaseVolume, Volume},
	"liter": {1000, BaseVolume, Volume},
	"litre": {1000, BaseVolume, Volume},
	// count -> pieces
	"stk":      {1, BaseCount, Count},
	"styk":     {1, BaseCount, Count},
	"pk":       {1, "pk", Count},
	"pakke":    {1, "pk", Count},
	"pack":     {1, "pk", Count},
	"piece":    {1, BaseCount, Count},
	"pieces":   {1, BaseCount, Count},
	"pcs":      {1, BaseCount, Count},
	"fed":      {1, BaseCount, Count},
	"bundt":    {1, BaseCount, Count},
	"håndfuld": {1, BaseCount, Count},
}

// recipeMeasures are non-metric cooking measures. They classify as volume
// so they consolidate with metric volume lines; they carry no metric
// factor, so ToBase passes their values through unchanged.
var recipeMeasures = map[string]bool{
	"cup": true, "cups": true,
	"tablespoon": true, "tablespoons": true, "tbsp": true, "tbs": true, "spsk": true,
	"teaspoon": true, "teaspoons": true, "tsp": true, "tsk": true,
}

// ParsedUnit is a package size normalized to its base unit.
type ParsedUnit struct {
	Value    float64 `json:"value"`
	Unit     string  `json:"unit"`
	Type     Type    `json:"type"`
	Original string  `json:"original"`
}

// Classify returns the unit's type. The lookup is case-insensitive and
// total: anything outside the synonym tables is Unknown.
func Classify(unit string) Type {
	u := strings.ToLower(strings.TrimSpace(unit))
	if u == "" {
		return Unknown
	}
	if info, ok := unitTable[u]; ok {
		return info.typ
	}
	if recipeMeasures[u] {
		return Volume
	}
	return Unknown
}

// ToBase converts a value to its base unit. Unknown units pass through
// unchanged with type Unknown, so the conversion preserves unit type for
// every known unit.
func ToBase(value float64, unit string) (float64, string, Type) {
	u := strings.ToLower(strings.TrimSpace(unit))
	if info, ok := unitTable[u]; ok {
		return value * info.factor, info.base, info.typ
	}
	return value, unit, Unknown
}

// Convertible reports whether two units share a known type.
func Convertible(from, to string) bool {
	ft, tt := Classify(from), Classify(to)
	if ft == Unknown || tt == Unknown {
		return false
	}
	return ft == tt
}

// approxPrefix strips leading approximation markers before the number.
var approxPrefix = regexp.MustCompile(`^(ca\.?|cirka|approximately|approx\.?|~)\s*`)

// sizePattern matches a decimal number (dot or comma separator) followed
// by a unit token, allowing Danish letters.
var sizePattern = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*([a-zæøå]+)`)

// ParsePackageSize parses a product package-size string such as "500g",
// "1,5 l" or "ca. 400g" into a base-unit ParsedUnit. The second return is
// false when no number+unit pattern is found.
func ParsePackageSize(text string) (ParsedUnit, bool) {
	original := strings.TrimSpace(text)
	if original == "" {
		return ParsedUnit{}, false
	}

	t := approxPrefix.ReplaceAllString(strings.ToLower(original), "")
	m := sizePattern.FindStringSubmatch(t)
	if m == nil {
		return ParsedUnit{}, false
	}

	value, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
	if err != nil {
		return ParsedUnit{}, false
	}

	baseValue, baseUnit, typ := ToBase(value, m[2])
	return ParsedUnit{Value: baseValue, Unit: baseUnit, Type: typ, Original: original}, true
}
