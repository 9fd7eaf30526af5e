package models

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}

// OptionalRef is a three-state update instruction for an optional
// relation: leave it untouched, point it at a new target, or clear it.
// It avoids overloading "absent" vs "null" at the API boundary.
type OptionalRef struct {
	set   bool
	clear bool
	value string
}

// Unchanged leaves the relation as it is.
func Unchanged() OptionalRef {
	return OptionalRef{}
}

// SetTo points the relation at the given id.
func SetTo(id string) OptionalRef {
	return OptionalRef{set: true, value: id}
}

// Clear removes the relation.
func Clear() OptionalRef {
	return OptionalRef{clear: true}
}

// IsUnchanged reports whether the field should be skipped on update.
func (r OptionalRef) IsUnchanged() bool {
	return !r.set && !r.clear
}

// Value returns the target id and whether the column should become
// NULL. Only meaningful when IsUnchanged is false.
func (r OptionalRef) Value() (id *string, ok bool) {
	if r.clear {
		return nil, true
	}
	if r.set {
		v := r.value
		return &v, true
	}
	return nil, false
}
