package models

// FieldRange holds the observed numeric bounds of a field. Only values that
// parse as finite numbers count toward the range.
type FieldRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// DatasetSchema is the inferred shape of one dataset's rows. It is a pure
// function of the row set: rebuilt per request, never persisted, and
// deterministic for identical input.
type DatasetSchema struct {
	// AllFields lists every column in first-seen order.
	AllFields []string `json:"all_fields"`

	// NumericFields and CategoricalFields partition AllFields. A field may
	// belong to neither (high-cardinality free text) but never to both.
	NumericFields     []string `json:"numeric_fields"`
	CategoricalFields []string `json:"categorical_fields"`

	// TitleField is the first field with an identifying name (title, name,
	// movie, ...), or empty if none exists.
	TitleField string `json:"title_field"`

	// Ranges holds min/max per numeric field.
	Ranges map[string]FieldRange `json:"ranges"`

	// TopValues holds up to 20 most frequent distinct values per categorical
	// field, descending by frequency.
	TopValues map[string][]string `json:"top_values"`

	// Aliases maps normalized natural-language tokens to actual field names.
	// Every value is a member of AllFields.
	Aliases map[string]string `json:"-"`
}

// HasField reports whether name is a known column.
func (s *DatasetSchema) HasField(name string) bool {
	for _, f := range s.AllFields {
		if f == name {
			return true
		}
	}
	return false
}

// IsNumeric reports whether name was classified numeric.
func (s *DatasetSchema) IsNumeric(name string) bool {
	for _, f := range s.NumericFields {
		if f == name {
			return true
		}
	}
	return false
}

// IsCategorical reports whether name was classified categorical.
func (s *DatasetSchema) IsCategorical(name string) bool {
	for _, f := range s.CategoricalFields {
		if f == name {
			return true
		}
	}
	return false
}

// IsEmpty reports whether the schema was built from zero rows.
func (s *DatasetSchema) IsEmpty() bool {
	return len(s.AllFields) == 0
}
