package notify

// Performance is the bucket a mean percentage falls in.
type Performance struct {
	Level string `json:"level"`
	Color string `json:"color"`
}

var (
	Excellent        = Performance{Level: "Excellent", Color: "#198754"}
	Good             = Performance{Level: "Good", Color: "#0dcaf0"}
	Fair             = Performance{Level: "Fair", Color: "#ffc107"}
	NeedsImprovement = Performance{Level: "Needs Improvement", Color: "#dc3545"}
)

// Classify maps a percentage to its bucket. Lower bounds are inclusive.
func Classify(pct float64) Performance {
	switch {
	case pct >= 90:
		return Excellent
	case pct >= 75:
		return Good
	case pct >= 60:
		return Fair
	default:
		return NeedsImprovement
	}
}
