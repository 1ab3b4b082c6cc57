package scale

import (
	"cmp"
	"slices"
)

// SortBy stable-sorts items in place, ascending by the extracted key.
// Equal keys keep their original relative order.
func SortBy[T any, K cmp.Ordered](items []T, key func(T) K) {
	slices.SortStableFunc(items, func(a, b T) int {
		return cmp.Compare(key(a), key(b))
	})
}

// SortByDesc stable-sorts items in place, descending by the extracted key.
func SortByDesc[T any, K cmp.Ordered](items []T, key func(T) K) {
	slices.SortStableFunc(items, func(a, b T) int {
		return cmp.Compare(key(b), key(a))
	})
}
