package domain

import "time"

type ConfidenceLabel string

const (
	ConfidenceHigh    ConfidenceLabel = "high"
	ConfidenceMedium  ConfidenceLabel = "medium"
	ConfidenceLow     ConfidenceLabel = "low"
	ConfidenceVeryLow ConfidenceLabel = "very_low"
)

// ConfidenceBreakdown holds the reliability sub-scores of a generated
// answer. Overall is the weighted sum of the four sub-scores and Label
// is a pure function of Overall.
type ConfidenceBreakdown struct {
	Retrieval   float64         `json:"retrieval"`
	Grounding   float64         `json:"grounding"`
	Specificity float64         `json:"specificity"`
	Certainty   float64         `json:"certainty"`
	Overall     float64         `json:"overall"`
	Label       ConfidenceLabel `json:"label"`
	Explanation string          `json:"explanation"`
}

// AnswerRecord is a finished answer with its citations and reliability
// assessment. Immutable after creation.
type AnswerRecord struct {
	Answer     string              `json:"answer"`
	Sources    []Document          `json:"sources"`
	Confidence ConfidenceBreakdown `json:"confidence"`
	Duration   time.Duration       `json:"duration"`
}
