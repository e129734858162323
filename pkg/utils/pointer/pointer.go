// Package pointer takes addresses of values, for literals in struct fields.
package pointer

func Ref[T any](t T) *T {
	return &t
}

// SafeDeref dereferences ptr, falling back to the zero value on nil.
func SafeDeref[T any](ptr *T) T {
	if ptr == nil {
		return *new(T)
	}
	return *ptr
}
