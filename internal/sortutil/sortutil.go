// Package sortutil holds the ordering helper that keeps document processing
// deterministic.
package sortutil

import "sort"

// ByKey sorts items in place by the lexicographic order of key. Items with
// equal keys keep their relative order.
func ByKey[T any](items []T, key func(T) string) {
	sort.SliceStable(items, func(i, j int) bool { return key(items[i]) < key(items[j]) })
}
