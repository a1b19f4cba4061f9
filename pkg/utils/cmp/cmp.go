// Package cmp has shallow comparison helpers for slices and maps,
// mainly for tests.
package cmp

// SliceEq returns true when a and b have the same length and
// equal elements in the same order.
func SliceEq[T comparable](a, b []T) bool {
	return SliceEqWith(a, b, func(x, y T) bool { return x == y })
}

// SliceEqWith is SliceEq with a custom element predicate.
func SliceEqWith[T, U any](a []T, b []U, eq func(T, U) bool) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !eq(a[i], b[i]) {
			return false
		}
	}
	return true
}

// SliceContentEq returns true when a and b hold the same elements,
// ignoring order and multiplicity of duplicates.
func SliceContentEq[T comparable](a, b []T) bool {
	inB := map[T]struct{}{}
	for _, x := range b {
		inB[x] = struct{}{}
	}
	for _, x := range a {
		if _, ok := inB[x]; !ok {
			return false
		}
	}
	inA := map[T]struct{}{}
	for _, x := range a {
		inA[x] = struct{}{}
	}
	for _, x := range b {
		if _, ok := inA[x]; !ok {
			return false
		}
	}
	return true
}

// MapEq returns true when a and b have the same key set and equal values.
func MapEq[K, V comparable](a, b map[K]V) bool {
	return MapEqWith(a, b, func(x, y V) bool { return x == y })
}

// MapEqWith is MapEq with a custom value predicate.
func MapEqWith[K comparable, V, W any](a map[K]V, b map[K]W, eq func(V, W) bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k, va := range a {
		vb, ok := b[k]
		if !ok || !eq(va, vb) {
			return false
		}
	}
	return true
}
