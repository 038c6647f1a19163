package cdpmsg

import "encoding/json"

// DecodeParams unmarshals raw into v, returning InvalidParams on failure.
// A nil/empty raw is treated as "no params supplied" and leaves v
// untouched (its zero value), which every handler method documents as the
// all-fields-optional case.
func DecodeParams(raw json.RawMessage, v any) *Error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return InvalidParams(err.Error())
	}
	return nil
}
