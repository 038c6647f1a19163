package transport

import "strings"

// OriginAllowed reports whether origin satisfies the allow-list. An entry
// ending in "*" matches by prefix (e.g. "http://localhost:*" matches any
// port on localhost); every other entry must match exactly. Grounded on
// the original Rust transport.rs validate_origin.
func OriginAllowed(origin string, allowed []string) bool {
	for _, candidate := range allowed {
		if strings.HasSuffix(candidate, "*") {
			prefix := candidate[:len(candidate)-1]
			if strings.HasPrefix(origin, prefix) {
				return true
			}
			continue
		}
		if origin == candidate {
			return true
		}
	}
	return false
}
