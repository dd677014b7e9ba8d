// Package knowledge holds the topic→answer table the bots answer from, the key
// normalizer and the fuzzy resolver used to look answers up.
package knowledge

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Knowledge is the topic→answer mapping. Iteration follows insertion order,
// which is the order of keys in the persisted document.
type Knowledge struct {
	entries *orderedmap.OrderedMap[string, string]
}

// New returns an empty mapping.
func New() *Knowledge {
	return &Knowledge{entries: orderedmap.New[string, string]()}
}

// Len returns the number of entries.
func (k *Knowledge) Len() int {
	if k == nil || k.entries == nil {
		return 0
	}

	return k.entries.Len()
}

// Get returns the answer stored under exactly key.
func (k *Knowledge) Get(key string) (string, bool) {
	if k.Len() == 0 {
		return "", false
	}

	return k.entries.Get(key)
}

// Set stores value under key. Existing keys keep their position.
func (k *Knowledge) Set(key, value string) {
	if k.entries == nil {
		k.entries = orderedmap.New[string, string]()
	}

	k.entries.Set(key, value)
}

// Each calls fn for every entry in order until fn returns false.
func (k *Knowledge) Each(fn func(key, value string) bool) {
	if k.Len() == 0 {
		return
	}

	for pair := k.entries.Oldest(); pair != nil; pair = pair.Next() {
		if !fn(pair.Key, pair.Value) {
			return
		}
	}
}

// Keys returns the keys in order.
func (k *Knowledge) Keys() []string {
	keys := make([]string, 0, k.Len())

	k.Each(func(key, _ string) bool {
		keys = append(keys, key)

		return true
	})

	return keys
}

func (k *Knowledge) MarshalJSON() ([]byte, error) {
	if k.entries == nil {
		return []byte("{}"), nil
	}

	return k.entries.MarshalJSON()
}

func (k *Knowledge) UnmarshalJSON(data []byte) error {
	entries := orderedmap.New[string, string]()
	if err := entries.UnmarshalJSON(data); err != nil {
		return err //nolint:wrapcheck // surfaced through jsonfile.DecodeError
	}

	k.entries = entries

	return nil
}
