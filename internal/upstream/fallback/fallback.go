// Package fallback makes the ordered field-precedence policy of the
// normalizers explicit: the first present source wins.
package fallback

// First returns the first non-zero value, or the zero value when every
// candidate is absent.
func First[T comparable](candidates ...T) T {
	var zero T
	for _, c := range candidates {
		if c != zero {
			return c
		}
	}
	return zero
}
