package repo

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Paginate returns the window of items selected by offset and limit. A nil
// offset starts at zero and a nil or non-positive limit runs to the end.
func Paginate[T any](items []T, offset, limit *int) []T {
	if offset != nil && *offset > len(items) {
		return []T{}
	}

	start := 0
	if offset != nil {
		start = clamp(*offset, 0, len(items))
	}

	end := len(items)
	if limit != nil && *limit > 0 {
		end = clamp(start+*limit, start, len(items))
	}

	return items[start:end]
}
