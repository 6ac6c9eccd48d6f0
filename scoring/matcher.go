package scoring

import "strings"

const (
	// fuzzyThreshold is the fraction of a feature's content tokens that must
	// appear in the document for a non-literal hit.
	fuzzyThreshold = 0.6

	// Long features get a relaxed threshold: demanding 60% of ten-plus tokens
	// punishes paraphrases that clearly cover the idea.
	longFeatureTokens = 10
	relaxedThreshold  = 0.5
)

// FeatureHit reports whether a feature is satisfied by a document given its
// normalized text and content token set. A literal substring match wins
// outright; otherwise the feature hits when enough of its tokens appear in
// the document. A feature with no content tokens never hits fuzzily.
func FeatureHit(featureText, normalizedDoc string, docTokens map[string]struct{}) bool {
	normalized := NormalizeForMatch(featureText)
	if normalized == "" {
		return false
	}
	if strings.Contains(normalizedDoc, normalized) {
		return true
	}

	tokens := Tokens(featureText)
	if len(tokens) == 0 {
		return false
	}

	hits := 0
	for _, tok := range tokens {
		if _, ok := docTokens[tok]; ok {
			hits++
		}
	}

	threshold := fuzzyThreshold
	if len(tokens) >= longFeatureTokens {
		threshold = relaxedThreshold
	}
	return float64(hits)/float64(len(tokens)) >= threshold
}
