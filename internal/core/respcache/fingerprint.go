package respcache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Params are the request parameters that change the computed answer.
// Two configurations differing in any field must never share a key.
type Params struct {
	Depth int
	Alpha float64
}

// Fingerprint derives a deterministic cache key from the normalized
// query text and the answer-affecting parameters. Normalization
// lowercases and collapses whitespace so trivially reworded requests
// for the same question share an entry.
func Fingerprint(query string, params Params) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(query)), " ")
	material := fmt.Sprintf("%s|depth=%d|alpha=%.6f", normalized, params.Depth, params.Alpha)
	sum := sha256.Sum256([]byte(material))
	return hex.EncodeToString(sum[:])
}
