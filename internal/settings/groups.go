package settings

import (
	"strings"

	"github.com/sadopc/actistats/internal/activity"
)

// Group maps an activity to a category key and describes how that key is
// drawn. Less orders keys for legends and breakdowns.
type Group struct {
	Key    string
	Label  string
	Fn     func(activity.Activity) string
	Color  func(key string) string
	Icon   func(key string) string
	Format func(key string) string
	Less   func(a, b string) bool
}

// Category is the display definition of a sport group.
type Category struct {
	Key   string
	Label string
	Color string
	Icon  string
}

// Categories in legend order.
var Categories = []Category{
	{Key: "run", Label: "Run", Color: "#FF6B6B", Icon: "person-running"},
	{Key: "ride", Label: "Ride", Color: "#2EC4B6", Icon: "person-biking"},
	{Key: "hike", Label: "Hike", Color: "#F39C12", Icon: "person-hiking"},
	{Key: "ski", Label: "Ski", Color: "#7AA2F7", Icon: "person-skiing"},
	{Key: "swim", Label: "Swim", Color: "#3498DB", Icon: "person-swimming"},
	{Key: "other", Label: "Other", Color: "#9B59B6", Icon: "heart-pulse"},
}

// aliasMap folds sport types into sport groups.
var aliasMap = map[string]string{
	"Run":              "run",
	"TrailRun":         "run",
	"VirtualRun":       "run",
	"Ride":             "ride",
	"GravelRide":       "ride",
	"MountainBikeRide": "ride",
	"EBikeRide":        "ride",
	"VirtualRide":      "ride",
	"Hike":             "hike",
	"Walk":             "hike",
	"AlpineSki":        "ski",
	"BackcountrySki":   "ski",
	"NordicSki":        "ski",
	"Snowboard":        "ski",
	"Swim":             "swim",
}

// SportGroup returns the sport group of a sport type.
func SportGroup(sportType string) string {
	if g, ok := aliasMap[sportType]; ok {
		return g
	}
	return "other"
}

func category(key string) (Category, int) {
	for i, c := range Categories {
		if c.Key == key {
			return c, i
		}
	}
	return Categories[len(Categories)-1], len(Categories)
}

func categoryColor(key string) string {
	c, _ := category(SportGroup(key))
	return c.Color
}

func categoryIcon(key string) string {
	c, _ := category(key)
	return c.Icon
}

func defaultGroups() *registry[Group] {
	r := newRegistry[Group]("group")
	r.add("sport_group", Group{
		Key:   "sport_group",
		Label: "Sport group",
		Fn:    func(a activity.Activity) string { return SportGroup(a.SportType) },
		Color: func(k string) string {
			c, _ := category(k)
			return c.Color
		},
		Icon: categoryIcon,
		Format: func(k string) string {
			c, i := category(k)
			if i == len(Categories) {
				return k
			}
			return c.Label
		},
		Less: func(a, b string) bool {
			_, ia := category(a)
			_, ib := category(b)
			if ia != ib {
				return ia < ib
			}
			return a < b
		},
	})
	r.add("sport_type", Group{
		Key:    "sport_type",
		Label:  "Sport type",
		Fn:     func(a activity.Activity) string { return a.SportType },
		Color:  categoryColor,
		Icon:   func(k string) string { return categoryIcon(SportGroup(k)) },
		Format: func(k string) string { return k },
		Less:   func(a, b string) bool { return strings.ToLower(a) < strings.ToLower(b) },
	})
	return r
}
