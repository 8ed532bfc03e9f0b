// Package regions is the static catalog of Nigerian states the game asks about.
package regions

import (
	"strings"

	"github.com/samber/lo"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type Zone string

const (
	ZoneNorthCentral Zone = "North Central"
	ZoneNorthEast    Zone = "North East"
	ZoneNorthWest    Zone = "North West"
	ZoneSouthEast    Zone = "South East"
	ZoneSouthSouth   Zone = "South South"
	ZoneSouthWest    Zone = "South West"
)

// Region is a single state of the federation.
type Region struct {
	Name    string `json:"name"`
	Capital string `json:"capital"`
	Zone    Zone   `json:"zone"`
}

var catalog = []Region{
	{"Abia", "Umuahia", ZoneSouthEast},
	{"Adamawa", "Yola", ZoneNorthEast},
	{"Akwa Ibom", "Uyo", ZoneSouthSouth},
	{"Anambra", "Awka", ZoneSouthEast},
	{"Bauchi", "Bauchi", ZoneNorthEast},
	{"Bayelsa", "Yenagoa", ZoneSouthSouth},
	{"Benue", "Makurdi", ZoneNorthCentral},
	{"Borno", "Maiduguri", ZoneNorthEast},
	{"Cross River", "Calabar", ZoneSouthSouth},
	{"Delta", "Asaba", ZoneSouthSouth},
	{"Ebonyi", "Abakaliki", ZoneSouthEast},
	{"Edo", "Benin City", ZoneSouthSouth},
	{"Ekiti", "Ado-Ekiti", ZoneSouthWest},
	{"Enugu", "Enugu", ZoneSouthEast},
	{"Federal Capital Territory", "Abuja", ZoneNorthCentral},
	{"Gombe", "Gombe", ZoneNorthEast},
	{"Imo", "Owerri", ZoneSouthEast},
	{"Jigawa", "Dutse", ZoneNorthWest},
	{"Kaduna", "Kaduna", ZoneNorthWest},
	{"Kano", "Kano", ZoneNorthWest},
	{"Katsina", "Katsina", ZoneNorthWest},
	{"Kebbi", "Birnin Kebbi", ZoneNorthWest},
	{"Kogi", "Lokoja", ZoneNorthCentral},
	{"Kwara", "Ilorin", ZoneNorthCentral},
	{"Lagos", "Ikeja", ZoneSouthWest},
	{"Nasarawa", "Lafia", ZoneNorthCentral},
	{"Niger", "Minna", ZoneNorthCentral},
	{"Ogun", "Abeokuta", ZoneSouthWest},
	{"Ondo", "Akure", ZoneSouthWest},
	{"Osun", "Osogbo", ZoneSouthWest},
	{"Oyo", "Ibadan", ZoneSouthWest},
	{"Plateau", "Jos", ZoneNorthCentral},
	{"Rivers", "Port Harcourt", ZoneSouthSouth},
	{"Sokoto", "Sokoto", ZoneNorthWest},
	{"Taraba", "Jalingo", ZoneNorthEast},
	{"Yobe", "Damaturu", ZoneNorthEast},
	{"Zamfara", "Gusau", ZoneNorthWest},
}

var aliases = map[string]string{
	"fct":   "Federal Capital Territory",
	"abuja": "Federal Capital Territory",
}

var byName = lo.KeyBy(catalog, func(r Region) string { return strings.ToLower(r.Name) })

// All returns the catalog in alphabetical order.
func All() []Region {
	out := make([]Region, len(catalog))
	copy(out, catalog)
	return out
}

// Names returns the names of all regions.
func Names() []string {
	return lo.Map(catalog, func(r Region, _ int) string { return r.Name })
}

// Normalize turns a path segment like "cross-river" or "LAGOS" into title case.
func Normalize(name string) string {
	name = strings.NewReplacer("-", " ", "_", " ").Replace(name)
	name = strings.Join(strings.Fields(name), " ")
	return cases.Title(language.English).String(name)
}

// Lookup finds a region by name, ignoring case and the usual separators.
func Lookup(name string) (Region, bool) {
	key := strings.ToLower(Normalize(name))
	if full, ok := aliases[key]; ok {
		key = strings.ToLower(full)
	}
	r, ok := byName[key]
	return r, ok
}

// IsKnown reports whether name is a region of the catalog.
func IsKnown(name string) bool {
	_, ok := Lookup(name)
	return ok
}

// CountKnown returns how many distinct catalog regions appear in guessed.
func CountKnown(guessed []string) int {
	known := lo.FilterMap(guessed, func(name string, _ int) (string, bool) {
		r, ok := Lookup(name)
		return r.Name, ok
	})
	return len(lo.Uniq(known))
}

// Total is the number of regions in the catalog.
func Total() int {
	return len(catalog)
}
