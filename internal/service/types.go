package service

// Sample is one day's forecasted measurement.
type Sample struct {
	Temperature float64 `json:"temperature"`
}

func NewSample(temperature float64) Sample {
	return Sample{Temperature: temperature}
}

// Add returns the elementwise sum of s and o.
func (s Sample) Add(o Sample) Sample {
	return Sample{Temperature: s.Temperature + o.Temperature}
}

// Div divides every field of s by n.
func (s Sample) Div(n float64) Sample {
	return Sample{Temperature: s.Temperature / n}
}
