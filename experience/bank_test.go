package experience

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dillycone/ai-tutorial-gen/core"
	"github.com/dillycone/ai-tutorial-gen/storage"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestBank(t *testing.T) *Bank {
	t.Helper()
	b, err := New(filepath.Join(t.TempDir(), "experience.jsonl"),
		WithClock(func() time.Time { return testNow }))
	require.NoError(t, err)
	return b
}

func record(schemaType string, score float64, parsed bool, context string) core.ExperienceRecord {
	return core.ExperienceRecord{
		SchemaType:     schemaType,
		ContextSummary: context,
		Brief:          "improve coverage of the checklist",
		Score:          score,
		Parsed:         parsed,
		Ts:             core.UnixSeconds(testNow.Add(-time.Hour)),
	}
}

func TestAppend(t *testing.T) {
	b := newTestBank(t)

	stored, err := b.Append(record("tutorial", 0.9, true, "git rebase walkthrough"))
	require.NoError(t, err)
	assert.NotEmpty(t, stored.ID)
	assert.NotZero(t, stored.Ts)
	assert.Zero(t, stored.UsageCount)

	records, err := storage.ReadAll[core.ExperienceRecord](b.Path())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, stored.ID, records[0].ID)
}

func TestAppend_RejectsInvalidRecord(t *testing.T) {
	b := newTestBank(t)

	_, err := b.Append(core.ExperienceRecord{Score: 0.9, Parsed: true})
	assert.ErrorIs(t, err, core.ErrEmptySchemaType)

	_, err = b.Append(core.ExperienceRecord{SchemaType: "tutorial", Score: 1.5})
	assert.ErrorIs(t, err, core.ErrInvalidScore)
}

func TestRetrieve(t *testing.T) {
	b := newTestBank(t)

	onTopic, err := b.Append(record("tutorial", 0.9, true, "git rebase interactive walkthrough"))
	require.NoError(t, err)
	_, err = b.Append(record("tutorial", 0.4, true, "git rebase interactive walkthrough"))
	require.NoError(t, err)
	offTopic, err := b.Append(record("tutorial", 0.95, true, "spreadsheet pivot table basics"))
	require.NoError(t, err)
	_, err = b.Append(record("meetingSummary", 0.9, true, "git rebase interactive walkthrough"))
	require.NoError(t, err)
	_, err = b.Append(record("tutorial", 0.9, false, "git rebase interactive walkthrough"))
	require.NoError(t, err)

	got := b.Retrieve(Query{
		SchemaType: "tutorial",
		Text:       "walkthrough of interactive git rebase",
		TopK:       2,
		MinScore:   DefaultMinScore,
	})

	// The low-score, wrong-schema, and unparsed records are filtered out;
	// similarity outranks the off-topic record's higher score.
	require.Len(t, got, 2)
	assert.Equal(t, onTopic.ID, got[0].ID)
	assert.Equal(t, offTopic.ID, got[1].ID)
}

func TestRetrieve_TopKZero(t *testing.T) {
	b := newTestBank(t)
	_, err := b.Append(record("tutorial", 0.9, true, "anything"))
	require.NoError(t, err)

	assert.Empty(t, b.Retrieve(Query{SchemaType: "tutorial", Text: "anything", TopK: 0}))
}

func TestRankWeight_UsageAndRecency(t *testing.T) {
	queryBow := bagOfWords("git rebase walkthrough")

	t.Run("usage boosts rank", func(t *testing.T) {
		base := record("tutorial", 0.9, true, "git rebase walkthrough")
		used := base
		used.UsageCount = 5
		assert.Greater(t, rankWeight(used, queryBow, testNow), rankWeight(base, queryBow, testNow))
	})

	t.Run("usage bonus is capped", func(t *testing.T) {
		base := record("tutorial", 0.9, true, "git rebase walkthrough")
		heavy := base
		heavy.UsageCount = 1_000_000
		diff := rankWeight(heavy, queryBow, testNow) - rankWeight(base, queryBow, testNow)
		assert.LessOrEqual(t, diff, usageBonusCap)
	})

	t.Run("fresher records rank higher", func(t *testing.T) {
		fresh := record("tutorial", 0.9, true, "git rebase walkthrough")
		stale := fresh
		stale.Ts = core.UnixSeconds(testNow.Add(-10 * 24 * time.Hour))
		assert.Greater(t, rankWeight(fresh, queryBow, testNow), rankWeight(stale, queryBow, testNow))
	})
}

func TestBumpUsage(t *testing.T) {
	b := newTestBank(t)

	first, err := b.Append(record("tutorial", 0.9, true, "one"))
	require.NoError(t, err)
	second, err := b.Append(record("tutorial", 0.9, true, "two"))
	require.NoError(t, err)

	assert.Equal(t, 1, b.BumpUsage([]string{first.ID, "no-such-id"}))
	assert.Equal(t, 1, b.BumpUsage([]string{first.ID}))

	records, err := storage.ReadAll[core.ExperienceRecord](b.Path())
	require.NoError(t, err)
	byID := map[string]core.ExperienceRecord{}
	for _, r := range records {
		byID[r.ID] = r
	}
	assert.Equal(t, 2, byID[first.ID].UsageCount)
	assert.Equal(t, 0, byID[second.ID].UsageCount)
}

func TestBumpUsage_NoMatchesNoRewrite(t *testing.T) {
	b := newTestBank(t)
	assert.Zero(t, b.BumpUsage([]string{"missing"}))
	assert.Zero(t, b.BumpUsage(nil))
}

func TestPrune(t *testing.T) {
	b := newTestBank(t)

	_, err := b.Append(record("tutorial", 0.9, true, "keep"))
	require.NoError(t, err)
	_, err = b.Append(record("tutorial", 0.3, true, "low score"))
	require.NoError(t, err)

	old := record("tutorial", 0.9, true, "too old")
	old.Ts = core.UnixSeconds(testNow.Add(-40 * 24 * time.Hour))
	_, err = b.Append(old)
	require.NoError(t, err)

	stats := b.Prune(DefaultMinScore, DefaultMaxAge)
	assert.Equal(t, PruneStats{Before: 3, After: 1, Removed: 2}, stats)

	records, err := storage.ReadAll[core.ExperienceRecord](b.Path())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "keep", records[0].ContextSummary)
}

func TestPrune_ZeroMaxAgeDisablesAgeLimit(t *testing.T) {
	b := newTestBank(t)

	old := record("tutorial", 0.9, true, "ancient but strong")
	old.Ts = core.UnixSeconds(testNow.Add(-400 * 24 * time.Hour))
	_, err := b.Append(old)
	require.NoError(t, err)

	stats := b.Prune(DefaultMinScore, 0)
	assert.Equal(t, PruneStats{Before: 1, After: 1, Removed: 0}, stats)
}

func TestPrune_MissingFile(t *testing.T) {
	b := newTestBank(t)
	assert.Equal(t, PruneStats{}, b.Prune(DefaultMinScore, DefaultMaxAge))
}
