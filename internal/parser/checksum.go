package parser

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strconv"
)

// Checksum computes the SHA-256 checksum of the canonical form of raw
// JSON: keys sorted, no insignificant whitespace, numeric literals
// normalized. This drives the Repository's re-upload dedup, so
// re-serialization must be round-trip stable or dedup fails silently.
func Checksum(raw []byte) (string, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", err
	}
	canon := canonicalize(v)
	var buf bytes.Buffer
	writeCanonical(&buf, canon)
	sum := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(sum[:]), nil
}

// canonicalize walks json.Unmarshal's generic output (map[string]any,
// []any, float64, string, bool, nil), rebuilding arrays element by element;
// maps are returned as they are, since writeCanonical sorts their keys when
// it serializes them.
func canonicalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return t
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = canonicalize(e)
		}
		return out
	default:
		return v
	}
}

func writeCanonical(buf *bytes.Buffer, v any) {
	switch t := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			kb, _ := json.Marshal(k)
			buf.Write(kb)
			buf.WriteByte(':')
			writeCanonical(buf, canonicalize(t[k]))
		}
		buf.WriteByte('}')
	case []any:
		buf.WriteByte('[')
		for i, e := range t {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeCanonical(buf, canonicalize(e))
		}
		buf.WriteByte(']')
	case string:
		b, _ := json.Marshal(t)
		buf.Write(b)
	case float64:
		buf.WriteString(normalizeNumber(t))
	case bool:
		if t {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case nil:
		buf.WriteString("null")
	}
}

// normalizeNumber renders a float64 the same way regardless of how it was
// originally spelled in the source document (1, 1.0, 1e0 all collapse).
func normalizeNumber(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
