package quest

import (
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var supportedLanguages = []language.Tag{
	language.English,
	language.Swedish,
}

var languageMatcher = language.NewMatcher(supportedLanguages)

func init() {
	for _, m := range []struct {
		tag      language.Tag
		category Category
		text     string
	}{
		{language.English, CategoryCollectMaterial, "Collect %d pieces of plastic"},
		{language.English, CategoryDeliverContainers, "Give water to %d thirsty friends"},
		{language.English, CategoryCraftContainers, "Craft %d bottles"},
		{language.English, CategoryFillContainers, "Fill %d bottles with water"},
		{language.Swedish, CategoryCollectMaterial, "Samla %d plastbitar"},
		{language.Swedish, CategoryDeliverContainers, "Ge vatten till %d figurer"},
		{language.Swedish, CategoryCraftContainers, "Bygg %d flaskor"},
		{language.Swedish, CategoryFillContainers, "Fyll %d flaskor med vatten"},
	} {
		if err := message.SetString(m.tag, messageKey(m.category), m.text); err != nil {
			panic(err)
		}
	}
}

func messageKey(c Category) string {
	return "quest." + string(c)
}

// SupportedLanguages returns the tags quest descriptions are translated to.
func SupportedLanguages() []language.Tag {
	out := make([]language.Tag, len(supportedLanguages))
	copy(out, supportedLanguages)
	return out
}

// MatchLanguage picks the best supported tag for a ?lang value or an
// Accept-Language header. Unknown input falls back to English.
func MatchLanguage(preferences ...string) language.Tag {
	for _, pref := range preferences {
		pref = strings.TrimSpace(pref)
		if pref == "" {
			continue
		}
		tags, _, err := language.ParseAcceptLanguage(pref)
		if err != nil || len(tags) == 0 {
			continue
		}
		_, idx, conf := languageMatcher.Match(tags...)
		if conf == language.No {
			continue
		}
		return supportedLanguages[idx]
	}
	return supportedLanguages[0]
}

// Localized renders the quest description in the given language. Tags
// outside SupportedLanguages are matched to the closest one. Only the
// built-in descriptions are translated; a description from a configured
// template is returned as generated.
func (q DailyQuest) Localized(tag language.Tag) string {
	if !q.Category.Valid() || !q.hasBuiltinDescription() {
		return q.Description
	}
	_, idx, _ := languageMatcher.Match(tag)
	p := message.NewPrinter(supportedLanguages[idx])
	return p.Sprintf(messageKey(q.Category), q.Target)
}

func (q DailyQuest) hasBuiltinDescription() bool {
	for _, tpl := range DefaultTemplates() {
		if tpl.Category != q.Category {
			continue
		}
		return q.Description == strings.Replace(tpl.Description, TargetPlaceholder, strconv.Itoa(q.Target), 1)
	}
	return false
}
