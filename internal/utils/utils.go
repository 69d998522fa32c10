package utils

// ArrayMove returns a copy of list with the element at fromIndex reinserted
// at toIndex. Both indices are clamped to [0, len-1]; equal indices return an
// unchanged copy. The input slice is never modified.
func ArrayMove[T any](list []T, fromIndex, toIndex int) []T {
	out := make([]T, len(list))
	copy(out, list)
	if fromIndex == toIndex || len(out) == 0 {
		return out
	}
	start := Clamp(fromIndex, 0, len(out)-1)
	end := Clamp(toIndex, 0, len(out)-1)
	if start == end {
		return out
	}
	moved := out[start]
	out = append(out[:start], out[start+1:]...)
	out = append(out[:end], append([]T{moved}, out[end:]...)...)
	return out
}

// Clamp bounds v to [lo, hi]
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ErrorMessage extracts a human-readable message from err, falling back to
// fallback when err is nil or carries no text.
func ErrorMessage(err error, fallback string) string {
	if err == nil || err.Error() == "" {
		return fallback
	}
	return err.Error()
}
