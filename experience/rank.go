package experience

import (
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/dillycone/ai-tutorial-gen/core"
)

// Retrieval weight blend: similarity dominates, past score and recency
// refine, frequent reuse adds a small capped boost.
const (
	similarityWeight = 0.7
	scoreWeight      = 0.2
	recencyWeight    = 0.1
	usageBonusCap    = 0.1
	usageBonusScale  = 0.03
)

var bowToken = regexp.MustCompile(`[a-zA-Z0-9_]+`)

// bagOfWords counts tokens longer than two characters. Unlike feature
// matching, retrieval keeps stop words: they carry signal for phrase-level
// similarity between briefs.
func bagOfWords(text string) map[string]int {
	bow := make(map[string]int)
	for _, tok := range bowToken.FindAllString(strings.ToLower(text), -1) {
		if len(tok) > 2 {
			bow[tok]++
		}
	}
	return bow
}

func cosine(a, b map[string]int) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	numerator := 0.0
	for tok, av := range a {
		if bv, ok := b[tok]; ok {
			numerator += float64(av) * float64(bv)
		}
	}
	var na, nb float64
	for _, v := range a {
		na += float64(v) * float64(v)
	}
	for _, v := range b {
		nb += float64(v) * float64(v)
	}
	denominator := math.Sqrt(na) * math.Sqrt(nb)
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}

// rankWeight scores one record against a query bag of words.
func rankWeight(record core.ExperienceRecord, queryBow map[string]int, now time.Time) float64 {
	combined := record.ContextSummary + "\n" + record.Brief
	similarity := cosine(queryBow, bagOfWords(combined))

	ageSeconds := math.Max(1, core.UnixSeconds(now)-record.Ts)
	ageDays := ageSeconds / 86400
	recency := 1.0 / math.Max(1, ageDays)

	usage := record.UsageCount
	if usage < 0 {
		usage = 0
	}
	usageBonus := math.Min(usageBonusCap, usageBonusScale*math.Log1p(float64(usage)))

	return similarityWeight*similarity + scoreWeight*record.Score + recencyWeight*recency + usageBonus
}
