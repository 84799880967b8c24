package utils

func Value[T any](v *T) T {
	if v == nil {
		return *new(T)
	}
	return *v
}

func Ptr[T any](v T) *T {
	return &v
}

// NilIfEmpty returns nil for empty strings so optional form fields encode as JSON null.
func NilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
