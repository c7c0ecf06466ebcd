// Package types contains the wire-level response shapes consumed by
// external collaborators (the CRUD backend and the CLI output).
package types

// Prediction is the inference response for a single record.
type Prediction struct {
	Probability     float64 `json:"probability"`
	Prediction      bool    `json:"prediction"`
	RiskLevel       string  `json:"risk_level"`
	ConfidenceScore float64 `json:"confidence_score"`
	ModelUsed       string  `json:"model_used"`
}

// FactorDetail explains one weighted rule of the risk score.
type FactorDetail struct {
	Value        float64 `json:"value"`
	Risk         float64 `json:"risk"`
	Weight       float64 `json:"weight"`
	Contribution float64 `json:"contribution"`
}

// Recommendation is a prioritized HR action derived from a risk factor.
type Recommendation struct {
	Category       string `json:"category"`
	Issue          string `json:"issue"`
	Recommendation string `json:"recommendation"`
	Priority       string `json:"priority"`
}

// Evaluation merges the model prediction with the optional risk assessment.
// Risk fields are present only when risk scoring was requested.
type Evaluation struct {
	Prediction
	OverallRiskScore *float64                `json:"overall_risk_score,omitempty"`
	RiskDetails      map[string]FactorDetail `json:"risk_details,omitempty"`
	Recommendations  []Recommendation        `json:"recommendations,omitempty"`
}
