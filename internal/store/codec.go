package store

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"time"

	"seasonpass/internal/state"
)

type unlockRecordDoc struct {
	StartedAt      *int64 `json:"startedAt"`
	UnlockedByCode bool   `json:"unlockedByCode"`
}

func encodeProgress(p state.Progress, units int) map[string]bool {
	doc := make(map[string]bool, units)
	for unit := 1; unit <= units; unit++ {
		doc[strconv.Itoa(unit)] = p.Completed(unit)
	}
	return doc
}

// decodeProgress reads "<n>" keys, falling back to the legacy "season<n>"
// spelling. Anything that is not a JSON boolean reads as false.
func decodeProgress(doc map[string]json.RawMessage, units int) state.Progress {
	p := state.NewProgress(units)
	for unit := 1; unit <= units; unit++ {
		raw, ok := doc[strconv.Itoa(unit)]
		if !ok {
			raw, ok = doc["season"+strconv.Itoa(unit)]
		}
		if !ok {
			continue
		}
		var done bool
		if err := json.Unmarshal(raw, &done); err == nil {
			p[unit] = done
		}
	}
	return p
}

func encodeUnlockState(u state.UnlockState, gated []int) map[string]unlockRecordDoc {
	doc := make(map[string]unlockRecordDoc, len(gated))
	for _, unit := range gated {
		record := u.Record(unit)
		entry := unlockRecordDoc{UnlockedByCode: record.UnlockedByCode}
		if record.StartedAt != nil {
			ms := record.StartedAt.UnixMilli()
			entry.StartedAt = &ms
		}
		doc[strconv.Itoa(unit)] = entry
	}
	return doc
}

// decodeUnlockState validates each gated unit's record independently. A
// startedAt that is not a number within the int64 millisecond range reads as
// absent; an unlockedByCode that is not a boolean reads as false.
func decodeUnlockState(doc map[string]json.RawMessage, gated []int) state.UnlockState {
	u := state.NewUnlockState(gated)
	for _, unit := range gated {
		raw, ok := doc[strconv.Itoa(unit)]
		if !ok {
			continue
		}
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
			continue
		}
		var record state.UnlockRecord
		if rawStarted, ok := fields["startedAt"]; ok && !isNull(rawStarted) {
			var ms float64
			if err := json.Unmarshal(rawStarted, &ms); err == nil && validMillis(ms) {
				started := time.UnixMilli(int64(ms))
				record.StartedAt = &started
			}
		}
		if rawCode, ok := fields["unlockedByCode"]; ok {
			var byCode bool
			if err := json.Unmarshal(rawCode, &byCode); err == nil {
				record.UnlockedByCode = byCode
			}
		}
		u[unit] = record
	}
	return u
}

// validMillis reports whether ms converts to an int64 without overflow.
func validMillis(ms float64) bool {
	const limit = float64(1 << 63)
	return !math.IsNaN(ms) && ms >= -limit && ms < limit
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
