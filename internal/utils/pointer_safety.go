package utils

// Ptr returns a pointer to a copy of v.
func Ptr[T any](v T) *T {
	return &v
}

// Assign copies *src into *dst when src is set.
func Assign[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// AssignPtr is Assign for optional destination fields. dst never aliases src.
func AssignPtr[T any](dst **T, src *T) {
	if src != nil {
		*dst = Ptr(*src)
	}
}
