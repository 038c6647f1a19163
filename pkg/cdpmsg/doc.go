// Package cdpmsg implements the Chrome DevTools Protocol wire message model:
// the Request/Response/Event tagged union, the JSON-RPC error taxonomy, and
// the two-step decode-then-validate discipline required to produce correct
// error codes for malformed input.
package cdpmsg
