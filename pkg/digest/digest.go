// Package digest computes a stable change-detection hash over
// canonicalized JSON, used by the registries to decide whether a
// reloaded configuration entry actually changed.
package digest

import (
	"encoding/json"
	"sort"

	"github.com/cespare/xxhash/v2"
)

// Of returns the xxhash64 digest of v's canonical JSON encoding. Map keys
// are sorted (Go's encoding/json already does this) so the digest is
// stable across reloads that only reorder fields.
func Of(v any) (uint64, error) {
	b, err := canonicalJSON(v)
	if err != nil {
		return 0, err
	}
	return xxhash.Sum64(b), nil
}

// OfBytes hashes raw bytes directly, for callers that already have
// canonical JSON (e.g. a config file's contents).
func OfBytes(b []byte) uint64 {
	return xxhash.Sum64(b)
}

func canonicalJSON(v any) ([]byte, error) {
	// Round-trip through map[string]any where possible so key order is
	// deterministic regardless of the source struct's field order.
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		// Not JSON-object shaped (e.g. already a string); hash as-is.
		return raw, nil
	}
	return marshalSorted(generic)
}

func marshalSorted(v any) ([]byte, error) {
	switch t := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := []byte{'{'}
		for i, k := range keys {
			if i > 0 {
				out = append(out, ',')
			}
			kb, _ := json.Marshal(k)
			out = append(out, kb...)
			out = append(out, ':')
			vb, err := marshalSorted(t[k])
			if err != nil {
				return nil, err
			}
			out = append(out, vb...)
		}
		out = append(out, '}')
		return out, nil
	case []any:
		out := []byte{'['}
		for i, e := range t {
			if i > 0 {
				out = append(out, ',')
			}
			eb, err := marshalSorted(e)
			if err != nil {
				return nil, err
			}
			out = append(out, eb...)
		}
		out = append(out, ']')
		return out, nil
	default:
		return json.Marshal(t)
	}
}
