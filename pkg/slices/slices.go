package slices

// UniqueStringSlice returns list with duplicates removed, keeping first
// occurrence order.
func UniqueStringSlice(list []string) []string {
	result := make([]string, 0, len(list))
	seen := make(map[string]struct{}, len(list))
	for _, v := range list {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			result = append(result, v)
		}
	}
	return result
}

// FilterEmptyStrings returns list without empty values.
func FilterEmptyStrings(list []string) []string {
	result := make([]string, 0, len(list))
	for _, v := range list {
		if v == "" {
			continue
		}
		result = append(result, v)
	}
	return result
}
