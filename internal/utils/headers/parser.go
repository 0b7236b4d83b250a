package headers

import (
	"fmt"
	"strings"
)

// ParseHeaders converts an array of header strings ("Key: Value") into a map.
// It returns nil when h is empty so callers can tell "no headers given" from
// an explicit set. Malformed entries are skipped.
func ParseHeaders(h []string) map[string]string {
	if len(h) == 0 {
		return nil
	}
	m := make(map[string]string)
	for _, hdr := range h {
		parts := strings.SplitN(hdr, ":", 2)
		if len(parts) == 2 && strings.TrimSpace(parts[0]) != "" {
			m[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
		}
	}
	return m
}

// ParseHeadersStrict is ParseHeaders but rejects malformed entries
func ParseHeadersStrict(h []string) (map[string]string, error) {
	for _, hdr := range h {
		key, _, ok := strings.Cut(hdr, ":")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("invalid header %q: expected \"Key: Value\"", hdr)
		}
	}
	return ParseHeaders(h), nil
}
