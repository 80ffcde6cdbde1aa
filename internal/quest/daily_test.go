package quest

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestGenerate_DeterministicForSameDay(t *testing.T) {
	morning := time.Date(2026, time.October, 19, 6, 0, 0, 0, time.UTC)
	evening := time.Date(2026, time.October, 19, 23, 59, 59, 0, time.UTC)

	a := Generate(morning)
	b := Generate(evening)
	assert.Equal(t, a, b)
	assert.Equal(t, "2026-9-19", a.ID)
}

func TestGenerate_TargetWithinTemplateRange(t *testing.T) {
	byCategory := map[Category]Template{}
	for _, tpl := range DefaultTemplates() {
		byCategory[tpl.Category] = tpl
	}

	day := time.Date(2026, time.January, 1, 12, 0, 0, 0, time.UTC)
	seen := map[Category]bool{}
	for i := 0; i < 400; i++ {
		q := Generate(day.AddDate(0, 0, i))
		tpl, ok := byCategory[q.Category]
		require.True(t, ok, "unknown category %q", q.Category)
		assert.GreaterOrEqual(t, q.Target, tpl.MinTarget)
		assert.LessOrEqual(t, q.Target, tpl.MaxTarget)
		assert.Contains(t, q.Description, strconv.Itoa(q.Target))
		assert.NotContains(t, q.Description, TargetPlaceholder)
		seen[q.Category] = true
	}
	assert.Len(t, seen, len(Categories))
}

func TestGenerate_DistinctIDsPerDay(t *testing.T) {
	day := time.Date(2026, time.December, 30, 12, 0, 0, 0, time.UTC)
	ids := map[string]bool{}
	for i := 0; i < 5; i++ {
		ids[Generate(day.AddDate(0, 0, i)).ID] = true
	}
	assert.Len(t, ids, 5)
	assert.True(t, ids["2027-0-1"])
}

func TestGenerator_CustomTemplates(t *testing.T) {
	g := Generator{Templates: []Template{
		{Category: CategoryFillContainers, Description: "Fill {n}", MinTarget: 4, MaxTarget: 4},
	}}
	q := g.Generate(time.Date(2026, time.May, 2, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, CategoryFillContainers, q.Category)
	assert.Equal(t, 4, q.Target)
	assert.Equal(t, "Fill 4", q.Description)
}

func TestSeedFromDay_MatchesStringHash(t *testing.T) {
	// h = h*31 + c over "1-0-1", computed by hand.
	var want int64
	for _, c := range "1-0-1" {
		want = want*31 + int64(c)
	}
	assert.Equal(t, want, seedFromDay("1-0-1"))
	assert.GreaterOrEqual(t, seedFromDay("2026-11-31"), int64(0))
}

func TestSeededFraction_UnitInterval(t *testing.T) {
	for seed := int64(0); seed < 1000; seed++ {
		f := seededFraction(seed)
		assert.GreaterOrEqual(t, f, 0.0)
		assert.Less(t, f, 1.0)
	}
}

func TestLocalized(t *testing.T) {
	q := DailyQuest{ID: "2026-0-1", Category: CategoryCraftContainers, Description: "Craft 6 bottles", Target: 6}
	assert.Equal(t, "Bygg 6 flaskor", q.Localized(language.Swedish))
	assert.Equal(t, "Craft 6 bottles", q.Localized(language.English))
	assert.Equal(t, "Craft 6 bottles", q.Localized(language.Japanese))

	unknown := DailyQuest{Category: "dance", Description: "Dance 3 times", Target: 3}
	assert.Equal(t, "Dance 3 times", unknown.Localized(language.Swedish))

	custom := DailyQuest{Category: CategoryCraftContainers, Description: "Build 6 eco bottles", Target: 6}
	assert.Equal(t, "Build 6 eco bottles", custom.Localized(language.Swedish))
}

func TestMatchLanguage(t *testing.T) {
	assert.Equal(t, language.Swedish, MatchLanguage("sv-SE"))
	assert.Equal(t, language.Swedish, MatchLanguage("", "sv;q=0.9, en;q=0.5"))
	assert.Equal(t, language.English, MatchLanguage("not a tag!!"))
	assert.Equal(t, language.English, MatchLanguage())
	assert.True(t, strings.HasPrefix(MatchLanguage("en-GB").String(), "en"))
}
