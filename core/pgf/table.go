package pgf

// Table is an insertion-ordered association table keyed by name.
//
// Every decoded table that can be projected to JSON must preserve the
// grammar's declaration order, so the model never hands out a plain map.
// Iteration via Keys or ForEach always follows insertion order.
type Table[V any] struct {
	keys []string
	vals map[string]V
}

// NewTable creates an empty table.
func NewTable[V any]() *Table[V] {
	return &Table[V]{vals: make(map[string]V)}
}

// Set inserts or replaces the value for key. A new key is appended to the
// iteration order; replacing an existing key keeps its original position.
func (t *Table[V]) Set(key string, val V) {
	if _, ok := t.vals[key]; !ok {
		t.keys = append(t.keys, key)
	}
	t.vals[key] = val
}

// Get returns the value for key and whether it exists.
func (t *Table[V]) Get(key string) (V, bool) {
	v, ok := t.vals[key]
	return v, ok
}

// Has reports whether key exists.
func (t *Table[V]) Has(key string) bool {
	_, ok := t.vals[key]
	return ok
}

// Len returns the number of entries.
func (t *Table[V]) Len() int {
	return len(t.keys)
}

// Keys returns the keys in insertion order. The returned slice is shared;
// callers must not modify it.
func (t *Table[V]) Keys() []string {
	return t.keys
}

// ForEach calls fn for every entry in insertion order.
func (t *Table[V]) ForEach(fn func(key string, val V)) {
	for _, k := range t.keys {
		fn(k, t.vals[k])
	}
}
