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

// StringOrNil returns nil for an empty string.
func StringOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
