package domain

// MemoryRecord is one row of the user memory profile.
type MemoryRecord struct {
	Category string `json:"category" db:"category" dynamodbav:"Category"`
	Key      string `json:"key" db:"key" dynamodbav:"Key"`
	Value    string `json:"value" db:"value" dynamodbav:"Value"`
}

// MemoryCategory holds the values of one category in store order.
type MemoryCategory struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// GroupMemories groups values by category. Categories keep the order in which
// they first appear in records and values keep their record order. Category
// names are compared case-sensitively.
func GroupMemories(records []MemoryRecord) []MemoryCategory {
	index := make(map[string]int)
	var groups []MemoryCategory
	for _, r := range records {
		i, ok := index[r.Category]
		if !ok {
			i = len(groups)
			index[r.Category] = i
			groups = append(groups, MemoryCategory{Name: r.Category})
		}
		groups[i].Values = append(groups[i].Values, r.Value)
	}
	return groups
}
