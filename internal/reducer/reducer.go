// Package reducer folds ordered event sequences into current-state snapshots.
//
// Reducers are total: unknown event types and payloads that fail to decode
// leave the state unchanged, so older binaries can replay logs written by
// newer ones. Every folded event advances Version and LastUpdated, including
// ones that change nothing.
package reducer

import "encoding/json"

func decode(data json.RawMessage, v any) bool {
	if len(data) == 0 {
		return true
	}
	return json.Unmarshal(data, v) == nil
}
