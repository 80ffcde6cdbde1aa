package quest

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Category is the kind of action a daily quest counts.
type Category string

const (
	CategoryCollectMaterial   Category = "collect_material"
	CategoryDeliverContainers Category = "deliver_containers"
	CategoryCraftContainers   Category = "craft_containers"
	CategoryFillContainers    Category = "fill_containers"
)

// Categories lists every category in selection order.
var Categories = []Category{
	CategoryCollectMaterial,
	CategoryDeliverContainers,
	CategoryCraftContainers,
	CategoryFillContainers,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// TargetPlaceholder is replaced by the quest target in template descriptions.
const TargetPlaceholder = "{n}"

// Template describes how a quest of one category is rolled.
type Template struct {
	Category    Category `yaml:"category" json:"category"`
	Description string   `yaml:"description" json:"description"`
	MinTarget   int      `yaml:"min_target" json:"min_target"`
	MaxTarget   int      `yaml:"max_target" json:"max_target"`
}

// DefaultTemplates returns one template per category, in Categories order.
func DefaultTemplates() []Template {
	return []Template{
		{Category: CategoryCollectMaterial, Description: "Collect {n} pieces of plastic", MinTarget: 10, MaxTarget: 30},
		{Category: CategoryDeliverContainers, Description: "Give water to {n} thirsty friends", MinTarget: 3, MaxTarget: 8},
		{Category: CategoryCraftContainers, Description: "Craft {n} bottles", MinTarget: 3, MaxTarget: 8},
		{Category: CategoryFillContainers, Description: "Fill {n} bottles with water", MinTarget: 3, MaxTarget: 8},
	}
}

// DailyQuest is the objective for one calendar day. Values are immutable
// once generated.
type DailyQuest struct {
	ID          string   `json:"id"`
	Category    Category `json:"category"`
	Description string   `json:"description"`
	Target      int      `json:"target"`
}

// Generator rolls daily quests from a fixed template list.
type Generator struct {
	Templates []Template
}

// Generate returns the quest for the calendar day of now using the default
// templates.
func Generate(now time.Time) DailyQuest {
	return Generator{}.Generate(now)
}

// Generate is a pure function of the calendar day of now (in now's location).
//
// seed     = |int32 string hash of DayID|  (h = h*31 + c, wrapping)
// template = Templates[seed % len(Templates)]
// fraction = frac(sin(seed+1) * 10000)
// target   = min + floor(fraction * (max-min+1))
func (g Generator) Generate(now time.Time) DailyQuest {
	templates := g.Templates
	if len(templates) == 0 {
		templates = DefaultTemplates()
	}

	id := DayID(now)
	seed := seedFromDay(id)
	tpl := templates[seed%int64(len(templates))]

	lo, hi := tpl.MinTarget, tpl.MaxTarget
	if hi < lo {
		hi = lo
	}
	span := hi - lo + 1
	target := lo + int(math.Floor(seededFraction(seed+1)*float64(span)))
	if target > hi {
		target = hi
	}

	return DailyQuest{
		ID:          id,
		Category:    tpl.Category,
		Description: strings.Replace(tpl.Description, TargetPlaceholder, strconv.Itoa(target), 1),
		Target:      target,
	}
}

// DayID formats the calendar day as year-month-day with a zero-based month,
// e.g. 2026-9-19 for 19 October 2026.
func DayID(t time.Time) string {
	return fmt.Sprintf("%d-%d-%d", t.Year(), int(t.Month())-1, t.Day())
}

func seedFromDay(day string) int64 {
	var h int32
	for i := 0; i < len(day); i++ {
		h = (h << 5) - h + int32(day[i])
	}
	seed := int64(h)
	if seed < 0 {
		seed = -seed
	}
	return seed
}

func seededFraction(seed int64) float64 {
	x := math.Sin(float64(seed)) * 10000
	return x - math.Floor(x)
}
