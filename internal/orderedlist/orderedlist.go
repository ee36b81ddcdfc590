// Package orderedlist provides a keyed collection kept sorted by a
// caller-supplied comparator.
package orderedlist

import (
	"slices"
)

// CmpFunc orders two values. It returns a negative number when a sorts
// before b, a positive number when a sorts after b, and zero otherwise.
type CmpFunc[T any] func(a, b T) int

// List is a sorted collection of values addressed by a unique key.
// Re-adding a key replaces the stored value and re-sorts it; that
// internal remove/insert is never reported to callers as a removal.
//
// List is not safe for concurrent use.
type List[K comparable, T any] struct {
	ordered []T
	byKey   map[K]T
	key     func(T) K
	cmp     CmpFunc[T]
}

// New creates an empty List that extracts keys with key and orders values
// with cmp.
func New[K comparable, T any](key func(T) K, cmp CmpFunc[T]) *List[K, T] {
	return &List[K, T]{
		ordered: []T{},
		byKey:   map[K]T{},
		key:     key,
		cmp:     cmp,
	}
}

// Len returns the number of stored values.
func (l *List[K, T]) Len() int {
	return len(l.ordered)
}

// Has reports whether a value with key k is stored.
func (l *List[K, T]) Has(k K) bool {
	_, ok := l.byKey[k]
	return ok
}

// Get returns the value stored under k.
func (l *List[K, T]) Get(k K) (T, bool) {
	v, ok := l.byKey[k]
	return v, ok
}

// Items returns the stored values in comparator order. The returned slice
// is a copy and is never nil.
func (l *List[K, T]) Items() []T {
	return slices.Clone(l.ordered)
}

// Keys returns the keys of the stored values in comparator order.
func (l *List[K, T]) Keys() []K {
	keys := make([]K, 0, len(l.ordered))
	for _, v := range l.ordered {
		keys = append(keys, l.key(v))
	}
	return keys
}

// At returns the value at position i in comparator order.
func (l *List[K, T]) At(i int) T {
	return l.ordered[i]
}

// IndexOf returns the position of the value stored under k, or -1.
func (l *List[K, T]) IndexOf(k K) int {
	v, ok := l.byKey[k]
	if !ok {
		return -1
	}
	return l.position(v)
}

// Add inserts values in sorted position. A value whose key is already
// stored replaces the old value.
func (l *List[K, T]) Add(values ...T) {
	for _, v := range values {
		k := l.key(v)
		if old, ok := l.byKey[k]; ok {
			l.detach(old)
		}
		l.insert(v)
		l.byKey[k] = v
	}
}

// Remove deletes the values stored under keys and returns the removed
// values in the order the keys were given. Unknown keys are skipped.
func (l *List[K, T]) Remove(keys ...K) []T {
	removed := make([]T, 0, len(keys))
	for _, k := range keys {
		v, ok := l.byKey[k]
		if !ok {
			continue
		}
		l.detach(v)
		delete(l.byKey, k)
		removed = append(removed, v)
	}
	return removed
}

// Resort moves the value stored under k to its sorted position. It is
// used after a field the comparator depends on has changed.
func (l *List[K, T]) Resort(k K) {
	v, ok := l.byKey[k]
	if !ok {
		return
	}
	if i := slices.IndexFunc(l.ordered, func(o T) bool { return l.key(o) == k }); i >= 0 {
		l.ordered = slices.Delete(l.ordered, i, i+1)
	}
	l.insert(v)
}

// Replace discards all stored values and stores values instead.
func (l *List[K, T]) Replace(values ...T) {
	l.Clear()
	l.Add(values...)
}

// Clear removes every stored value.
func (l *List[K, T]) Clear() {
	l.ordered = []T{}
	l.byKey = map[K]T{}
}

// insert places v after every value that compares less than or equal to
// it, so equal values keep insertion order.
func (l *List[K, T]) insert(v T) {
	i, _ := slices.BinarySearchFunc(l.ordered, v, func(e, t T) int {
		if c := l.cmp(e, t); c != 0 {
			return c
		}
		// treat equal as smaller so the search lands past the run
		return -1
	})
	l.ordered = slices.Insert(l.ordered, i, v)
}

func (l *List[K, T]) detach(v T) {
	if i := l.position(v); i >= 0 {
		l.ordered = slices.Delete(l.ordered, i, i+1)
	}
}

// position finds v by key, starting from its binary search slot.
func (l *List[K, T]) position(v T) int {
	k := l.key(v)
	i, _ := slices.BinarySearchFunc(l.ordered, v, l.cmp)
	for j := i; j < len(l.ordered); j++ {
		if l.key(l.ordered[j]) == k {
			return j
		}
		if l.cmp(l.ordered[j], v) != 0 {
			break
		}
	}
	// fall back to a scan when the stored value's sort key has drifted
	return slices.IndexFunc(l.ordered, func(o T) bool { return l.key(o) == k })
}
