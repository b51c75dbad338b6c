package twentycrm

// personIDStrategies is the ordered list of extraction strategies probed
// against a person-create response. Deployments differ in where they put the
// new record's id; the first strategy yielding a non-empty string wins.
var personIDStrategies = []func(Response) string{
	func(r Response) string { return stringField(r, "id") },
	func(r Response) string { return stringField(r, "personId") },
	func(r Response) string { return stringField(r, "person") },
	func(r Response) string {
		data, ok := r["data"].(map[string]any)
		if !ok {
			return ""
		}
		return stringField(data, "id")
	},
}

// ExtractPersonID probes a person-create response for the new person's id.
// Returns "" when no strategy matches; the caller decides whether that is
// fatal (it is not: the task is simply created unlinked).
func ExtractPersonID(resp Response) string {
	if resp == nil {
		return ""
	}
	for _, strategy := range personIDStrategies {
		if id := strategy(resp); id != "" {
			return id
		}
	}
	return ""
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}
