package dataset

// Classification partitions column names into numeric and categorical sets.
// Columns of any other type (bool, datetime) belong to neither.
type Classification struct {
	Numeric     []string `json:"numeric"`
	Categorical []string `json:"categorical"`

	numeric     map[string]struct{}
	categorical map[string]struct{}
}

func classify(schema []Field) Classification {
	c := Classification{
		numeric:     make(map[string]struct{}),
		categorical: make(map[string]struct{}),
	}
	for _, f := range schema {
		switch {
		case f.Type.IsNumeric():
			c.Numeric = append(c.Numeric, f.Name)
			c.numeric[f.Name] = struct{}{}
		case f.Type == TypeString:
			c.Categorical = append(c.Categorical, f.Name)
			c.categorical[f.Name] = struct{}{}
		}
	}
	return c
}

// IsNumeric reports whether the column is classified numeric
func (c Classification) IsNumeric(name string) bool {
	_, ok := c.numeric[name]
	return ok
}

// IsCategorical reports whether the column is classified categorical
func (c Classification) IsCategorical(name string) bool {
	_, ok := c.categorical[name]
	return ok
}
