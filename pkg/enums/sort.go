package enums

import "fmt"

// SortField identifies the product attribute a search is ordered by.
type SortField string

const (
	SortFieldCreatedAt SortField = "createdAt"
	SortFieldPrice     SortField = "price"
	SortFieldName      SortField = "name"
	SortFieldFeatured  SortField = "featured"
)

var validSortFields = []SortField{
	SortFieldCreatedAt,
	SortFieldPrice,
	SortFieldName,
	SortFieldFeatured,
}

// String implements fmt.Stringer.
func (f SortField) String() string {
	return string(f)
}

// IsValid reports whether the value is a known SortField.
func (f SortField) IsValid() bool {
	for _, candidate := range validSortFields {
		if candidate == f {
			return true
		}
	}
	return false
}

// ParseSortField converts raw input into a SortField.
func ParseSortField(value string) (SortField, error) {
	for _, candidate := range validSortFields {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid sort field %q", value)
}

// SortOrder is the direction applied to the configured sort field.
type SortOrder string

const (
	SortOrderAsc  SortOrder = "asc"
	SortOrderDesc SortOrder = "desc"
)

// String implements fmt.Stringer.
func (o SortOrder) String() string {
	return string(o)
}

// IsValid reports whether the value is a known SortOrder.
func (o SortOrder) IsValid() bool {
	return o == SortOrderAsc || o == SortOrderDesc
}

// SQL returns the ORDER BY direction keyword.
func (o SortOrder) SQL() string {
	if o == SortOrderAsc {
		return "ASC"
	}
	return "DESC"
}

// ParseSortOrder converts raw input into a SortOrder.
func ParseSortOrder(value string) (SortOrder, error) {
	switch value {
	case string(SortOrderAsc):
		return SortOrderAsc, nil
	case string(SortOrderDesc):
		return SortOrderDesc, nil
	}
	return "", fmt.Errorf("invalid sort order %q", value)
}
