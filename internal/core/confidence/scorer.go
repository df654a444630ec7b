package confidence

import (
	"math"
	"regexp"
	"strings"

	"github.com/akozyrev/techdocs-qa/internal/core/domain"
)

// Weights of the convex combination. Retrieval quality and grounding
// dominate; the four values sum to 1.
const (
	weightRetrieval   = 0.40
	weightGrounding   = 0.35
	weightSpecificity = 0.15
	weightCertainty   = 0.10
)

// Overall score cap applied when the answer explicitly admits not
// knowing; keeps the label at low or below no matter how strong the
// other signals are.
const admissionCap = 0.65

var severeUncertaintyPhrases = []string{
	"i don't know",
	"do not know",
	"cannot find",
	"no information available",
	"not mentioned in",
	"insufficient information",
}

var mildHedgePhrases = []string{
	"may be",
	"might be",
	"possibly",
	"perhaps",
	"could be",
}

var groundingStopWords = map[string]struct{}{
	"that": {}, "this": {}, "with": {}, "from": {}, "have": {}, "been": {},
	"were": {}, "their": {}, "there": {}, "which": {}, "would": {}, "could": {},
	"should": {}, "about": {}, "when": {}, "what": {}, "where": {}, "your": {},
	"does": {}, "only": {},
}

var (
	salientTermPattern = regexp.MustCompile(`[a-z0-9_]{4,}`)
	modelNamePattern   = regexp.MustCompile(`[A-Z]{2,}[0-9]+|[A-Z]+-[0-9]+`)

	// Measurements with units signal an answer grounded in a spec sheet.
	unitPatterns = []*regexp.Regexp{
		regexp.MustCompile(`[0-9]+\s*(hz|khz|mhz|ghz)`),
		regexp.MustCompile(`[0-9]+\s*(db|dba|dbc)`),
		regexp.MustCompile(`[0-9]+\s*(ohm|ohms)`),
		regexp.MustCompile(`[0-9]+\s*(watt|watts|w|kw)`),
		regexp.MustCompile(`[0-9]+\s*(volt|volts|v|mv)`),
		regexp.MustCompile(`[0-9]+\s*(amp|amps|a|ma)`),
		regexp.MustCompile(`[0-9]+\s*(meter|meters|m|cm|mm|feet|ft|inch|in)`),
		regexp.MustCompile(`[0-9]+\s*(channel|channels|ch)`),
		regexp.MustCompile(`[0-9]+\s*(bit|kbps|mbps)`),
	}
)

// Scorer computes a normalized reliability assessment of a generated
// answer from four weak signals. Stateless and safe for concurrent use.
type Scorer struct{}

func NewScorer() *Scorer {
	return &Scorer{}
}

// Score never fails: missing or empty inputs degrade to zero sub-scores
// and a very_low label so the caller can always attach a confidence
// block to a response.
func (s *Scorer) Score(answer string, sources []domain.Document, retrievalScores []float64) domain.ConfidenceBreakdown {
	if strings.TrimSpace(answer) == "" {
		return domain.ConfidenceBreakdown{
			Label:       domain.ConfidenceVeryLow,
			Explanation: explanationFor(0),
		}
	}

	breakdown := domain.ConfidenceBreakdown{
		Retrieval:   scoreRetrieval(sources, retrievalScores),
		Grounding:   scoreGrounding(answer, sources),
		Specificity: scoreSpecificity(answer),
		Certainty:   scoreCertainty(answer),
	}

	overall := weightRetrieval*breakdown.Retrieval +
		weightGrounding*breakdown.Grounding +
		weightSpecificity*breakdown.Specificity +
		weightCertainty*breakdown.Certainty
	overall = math.Max(0, math.Min(1, overall))

	if hasSevereAdmission(answer) && overall > admissionCap {
		overall = admissionCap
	}

	breakdown.Overall = overall
	breakdown.Label = labelFor(overall)
	breakdown.Explanation = explanationFor(overall)
	return breakdown
}

func scoreRetrieval(sources []domain.Document, scores []float64) float64 {
	if len(sources) == 0 {
		return 0
	}

	if len(scores) > 0 {
		top := scores[0]
		for _, v := range scores[1:] {
			if v > top {
				top = v
			}
		}
		switch {
		case top > 0.7:
			return 0.95
		case top > 0.5:
			return 0.85
		case top > 0.3:
			return 0.75
		default:
			return 0.65
		}
	}

	// No similarity scores: the retrieval backend returning documents
	// at all is weaker but still positive evidence.
	switch {
	case len(sources) >= 3:
		return 0.90
	case len(sources) == 2:
		return 0.85
	default:
		return 0.80
	}
}

func scoreGrounding(answer string, sources []domain.Document) float64 {
	if len(sources) == 0 {
		return 0
	}

	terms := salientTerms(answer)
	if len(terms) == 0 {
		// Too short to judge; assume reasonable.
		return 0.7
	}

	var sb strings.Builder
	for _, src := range sources {
		sb.WriteString(strings.ToLower(src.Text))
		sb.WriteByte(' ')
	}
	sourceText := sb.String()

	matched := 0
	for term := range terms {
		if strings.Contains(sourceText, term) {
			matched++
		}
	}
	ratio := float64(matched) / float64(len(terms))

	switch {
	case ratio > 0.7:
		return 0.95
	case ratio > 0.5:
		return 0.85
	case ratio > 0.3:
		return 0.75
	default:
		return 0.60
	}
}

func scoreSpecificity(answer string) float64 {
	if len(strings.TrimSpace(answer)) < 10 {
		return 0.3
	}

	lower := strings.ToLower(answer)
	hits := 0
	for _, pattern := range unitPatterns {
		if pattern.MatchString(lower) {
			hits++
		}
	}

	switch {
	case hits >= 3:
		return 0.95
	case hits == 2:
		return 0.90
	case hits == 1:
		return 0.85
	case modelNamePattern.MatchString(answer):
		return 0.80
	default:
		return 0.5
	}
}

func scoreCertainty(answer string) float64 {
	if hasSevereAdmission(answer) {
		return 0.3
	}

	lower := strings.ToLower(answer)
	hedges := 0
	for _, phrase := range mildHedgePhrases {
		if strings.Contains(lower, phrase) {
			hedges++
		}
	}
	switch hedges {
	case 0:
		return 1.0
	case 1:
		return 0.90
	default:
		return 0.80
	}
}

func hasSevereAdmission(answer string) bool {
	lower := strings.ToLower(answer)
	for _, phrase := range severeUncertaintyPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

func salientTerms(answer string) map[string]struct{} {
	raw := salientTermPattern.FindAllString(strings.ToLower(answer), -1)
	out := make(map[string]struct{}, len(raw))
	for _, term := range raw {
		if _, stop := groundingStopWords[term]; stop {
			continue
		}
		out[term] = struct{}{}
	}
	return out
}

func labelFor(overall float64) domain.ConfidenceLabel {
	switch {
	case overall >= 0.85:
		return domain.ConfidenceHigh
	case overall >= 0.70:
		return domain.ConfidenceMedium
	case overall >= 0.50:
		return domain.ConfidenceLow
	default:
		return domain.ConfidenceVeryLow
	}
}

func explanationFor(overall float64) string {
	switch {
	case overall >= 0.85:
		return "High confidence. Answer is well-grounded in source documents with specific technical details."
	case overall >= 0.70:
		return "Medium confidence. Answer appears accurate but verify critical specifications."
	case overall >= 0.50:
		return "Low confidence. Answer may be incomplete or lack supporting details."
	default:
		return "Very low confidence. Limited information found. Consider rephrasing your question."
	}
}
