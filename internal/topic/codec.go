// Package topic encodes flat key/value state into a channel topic string.
//
// The wire format is `key:value` pairs joined by `|`. Decoding is total:
// segments without a `:` are dropped. Encoding refuses keys or values that
// contain either delimiter instead of silently producing a topic that would
// decode differently.
package topic

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

const (
	PairSeparator = "|"
	KeyValueSplit = ":"
)

// ErrInvalidStateEncoding is returned when a map cannot be represented.
var ErrInvalidStateEncoding = errors.New("topic: invalid state encoding")

// Encode joins m into a topic string. Keys listed in order come first, in
// that order; the remaining keys follow lexicographically.
func Encode(m map[string]string, order ...string) (string, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	rank := make(map[string]int, len(order))
	for i, k := range order {
		if _, seen := rank[k]; !seen {
			rank[k] = i
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		ri, iKnown := rank[keys[i]]
		rj, jKnown := rank[keys[j]]
		switch {
		case iKnown && jKnown:
			return ri < rj
		case iKnown != jKnown:
			return iKnown
		default:
			return keys[i] < keys[j]
		}
	})

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		v := m[k]
		if err := checkToken(k, true); err != nil {
			return "", err
		}
		if err := checkToken(v, false); err != nil {
			return "", fmt.Errorf("%w: value of %q", err, k)
		}
		parts = append(parts, k+KeyValueSplit+v)
	}
	return strings.Join(parts, PairSeparator), nil
}

// Decode splits a topic into its key/value pairs. Whitespace around keys
// and values is trimmed. Later duplicates win.
func Decode(s string) map[string]string {
	out := map[string]string{}
	if strings.TrimSpace(s) == "" {
		return out
	}
	for _, segment := range strings.Split(s, PairSeparator) {
		k, v, ok := strings.Cut(segment, KeyValueSplit)
		if !ok {
			continue
		}
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		out[k] = strings.TrimSpace(v)
	}
	return out
}

func checkToken(tok string, isKey bool) error {
	if isKey && strings.TrimSpace(tok) == "" {
		return fmt.Errorf("%w: empty key", ErrInvalidStateEncoding)
	}
	if strings.Contains(tok, PairSeparator) || strings.Contains(tok, KeyValueSplit) {
		return fmt.Errorf("%w: %q contains a delimiter", ErrInvalidStateEncoding, tok)
	}
	if tok != strings.TrimSpace(tok) {
		return fmt.Errorf("%w: %q has surrounding whitespace", ErrInvalidStateEncoding, tok)
	}
	return nil
}
