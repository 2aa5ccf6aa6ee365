package units

import "math"

// PackagesNeeded computes how many packages satisfy a needed quantity.
// The second return is false when the package count could not be derived
// (unparseable package size, or needed and package units are both known
// but of different types); callers must then fall back to a generic
// ceiling, typically CeilingFallback.
//
// A needed quantity with no unit against a package with a known type also
// signals fallback rather than assuming the number is in package units.
// That conservatism is deliberate product policy; do not silently change it.
func PackagesNeeded(needed *float64, neededUnit, packageSize string) (int, bool) {
	if needed == nil || *needed <= 0 {
		return 1, true
	}

	pkg, ok := ParsePackageSize(packageSize)
	if !ok {
		return 0, false
	}

	neededBase := *needed
	neededType := Unknown
	if neededUnit != "" {
		neededBase, _, neededType = ToBase(*needed, neededUnit)
	}

	if neededType != Unknown && pkg.Type != Unknown && neededType != pkg.Type {
		return 0, false
	}
	if neededType == Unknown && pkg.Type != Unknown {
		return 0, false
	}

	if pkg.Value <= 0 {
		return 1, true
	}

	n := int(math.Ceil(neededBase / pkg.Value))
	if n < 1 {
		n = 1
	}
	return n, true
}

// CeilingFallback is the generic package count used when PackagesNeeded
// signals fallback: buy at least one, and ceil the raw quantity when the
// ingredient looks countable.
func CeilingFallback(quantity *float64) int {
	if quantity == nil || *quantity <= 0 {
		return 1
	}
	n := int(math.Ceil(*quantity))
	if n < 1 {
		return 1
	}
	return n
}
