package model

// Weights is a portable description of a fitted linear model.
type Weights struct {
	ModelType    string    `json:"model_type"`
	Version      string    `json:"version"`
	FeatureNames []string  `json:"feature_names,omitempty"`
	Coefficients []float64 `json:"coefficients"`
	Intercept    float64   `json:"intercept"`
	NFeatures    int       `json:"n_features"`
	NSamples     int       `json:"n_samples"`
	Rank         int       `json:"rank"`
}
