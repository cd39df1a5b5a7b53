package schema

// MetricsFactor describes a single risk factor for display purposes.
type MetricsFactor struct {
	Key         string  `json:"key"`
	Description string  `json:"description"`
	Weight      float64 `json:"weight"`
}

// MetricsThreshold maps a risk level to its minimum score and recommendation.
type MetricsThreshold struct {
	Level          string `json:"level"`
	MinScore       int    `json:"min_score"`
	Recommendation string `json:"recommendation"`
}

// MetricsRenderModel contains all processed data needed for displaying scoring definitions.
type MetricsRenderModel struct {
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Factors     []MetricsFactor    `json:"factors"`
	Formula     string             `json:"formula"`
	Thresholds  []MetricsThreshold `json:"thresholds"`
	Rules       []string           `json:"prediction_rules"`
}
