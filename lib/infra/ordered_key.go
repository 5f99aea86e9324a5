package infra

type Signed interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64
}

// Unsigned is a constraint that permits any unsigned integer type.
type Unsigned interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// Integer is a constraint that permits any integer type.
type Integer interface {
	Signed | Unsigned
}

// Float is a constraint that permits any floating-point type.
type Float interface {
	~float32 | ~float64
}

// OrderedKey
// byte => ~uint8
type OrderedKey interface {
	Integer | Float | ~string
}

// OrderedKeyComparator
// Assume i is the new key.
//  1. i == j, return 0
//  2. i > j, return 1, turn to right part.
//  3. i < j, return -1, turn to left part.
type OrderedKeyComparator[K OrderedKey] func(i, j K) int

// Compare is the ascending OrderedKeyComparator.
// Do not subtract keys to compare them, unsigned keys wrap around.
// NaN is ordered before every other float, so the order stays total.
func Compare[K OrderedKey](i, j K) int {
	iNaN, jNaN := isNaN(i), isNaN(j)
	switch {
	case iNaN && jNaN:
		return 0
	case iNaN:
		return -1
	case jNaN:
		return 1
	case i < j:
		return -1
	case i > j:
		return 1
	}
	return 0
}

// ReverseCompare is the descending OrderedKeyComparator.
func ReverseCompare[K OrderedKey](i, j K) int {
	return Compare[K](j, i)
}

func isNaN[K OrderedKey](k K) bool {
	// Only NaN is not equal to itself.
	return k != k
}
