package domain

// Document is one retrievable snippet of a processed source file.
// Immutable once produced by a search backend.
type Document struct {
	ID          string  `json:"id"`
	Text        string  `json:"text"`
	Source      string  `json:"source"`
	Page        int     `json:"page,omitempty"`
	ContentType string  `json:"content_type,omitempty"`
	Score       float64 `json:"score,omitempty"`
}

// RankedList is an ordered candidate list, best first. Rank is implied
// by index: position 0 is rank 1.
type RankedList []Document

// FusedDocument pairs a document with its fused ranking score.
type FusedDocument struct {
	Document Document `json:"document"`
	Score    float64  `json:"score"`
}

// FusedResult is ordered by fused score, strictly non-increasing.
type FusedResult []FusedDocument

// Documents returns the fused documents in ranking order.
func (r FusedResult) Documents() []Document {
	out := make([]Document, 0, len(r))
	for _, fd := range r {
		out = append(out, fd.Document)
	}
	return out
}

// Scores returns the fused scores in ranking order.
func (r FusedResult) Scores() []float64 {
	out := make([]float64, 0, len(r))
	for _, fd := range r {
		out = append(out, fd.Score)
	}
	return out
}
