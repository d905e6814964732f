package wire

// NextBatchSize computes numberToReturn for a cursor's next refresh, per
// spec.md §4.2:
//   - limit == 0: request batchSize as-is (0 means "server default").
//   - limit < 0: request limit verbatim (a single hard-capped batch).
//   - otherwise: request max(0, limit-delivered), clamped by batchSize
//     if batchSize > 0; a non-positive result means the cursor is done
//     and ok reports false so the caller sends no request.
func NextBatchSize(limit, batchSize, delivered int32) (n int32, ok bool) {
	switch {
	case limit == 0:
		return batchSize, true
	case limit < 0:
		return limit, true
	default:
		remaining := limit - delivered
		if remaining < 0 {
			remaining = 0
		}
		if batchSize > 0 && remaining > batchSize {
			remaining = batchSize
		}
		if remaining <= 0 {
			return 0, false
		}
		return remaining, true
	}
}
