// Package report carries the counts a pipeline run produces, in the order
// they are shown to the user.
package report

// Count is one named counter of a run summary.
type Count struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value int64  `json:"value"`
	// Bytes renders Value as a size.
	Bytes bool `json:"bytes,omitempty"`
}

// Summary is implemented by every pipeline result.
type Summary interface {
	Pipeline() string
	OutputDir() string
	Counts() []Count
	Warnings() []string
}

// Map flattens counts into key/value pairs.
func Map(counts []Count) map[string]int64 {
	out := make(map[string]int64, len(counts))
	for _, c := range counts {
		out[c.Key] = c.Value
	}
	return out
}

// N is shorthand for a plain counter.
func N(key, label string, value int) Count {
	return Count{Key: key, Label: label, Value: int64(value)}
}
