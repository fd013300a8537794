package teams

import (
	"sort"
	"strings"
)

type Team struct {
	Name         string // canonical, stored in the database
	Location     string
	Abbreviation string
}

func (t Team) FullName() string {
	return t.Location + " " + t.Name
}

// Catalog is the closed list of teams a guild may follow. It is immutable once
// built and safe for concurrent use.
type Catalog struct {
	teams []Team
	index map[string]Team
}

var nhl = []Team{
	{Name: "Ducks", Location: "Anaheim", Abbreviation: "ANA"},
	{Name: "Bruins", Location: "Boston", Abbreviation: "BOS"},
	{Name: "Sabres", Location: "Buffalo", Abbreviation: "BUF"},
	{Name: "Flames", Location: "Calgary", Abbreviation: "CGY"},
	{Name: "Hurricanes", Location: "Carolina", Abbreviation: "CAR"},
	{Name: "Blackhawks", Location: "Chicago", Abbreviation: "CHI"},
	{Name: "Avalanche", Location: "Colorado", Abbreviation: "COL"},
	{Name: "Blue Jackets", Location: "Columbus", Abbreviation: "CBJ"},
	{Name: "Stars", Location: "Dallas", Abbreviation: "DAL"},
	{Name: "Red Wings", Location: "Detroit", Abbreviation: "DET"},
	{Name: "Oilers", Location: "Edmonton", Abbreviation: "EDM"},
	{Name: "Panthers", Location: "Florida", Abbreviation: "FLA"},
	{Name: "Kings", Location: "Los Angeles", Abbreviation: "LAK"},
	{Name: "Wild", Location: "Minnesota", Abbreviation: "MIN"},
	{Name: "Canadiens", Location: "Montreal", Abbreviation: "MTL"},
	{Name: "Predators", Location: "Nashville", Abbreviation: "NSH"},
	{Name: "Devils", Location: "New Jersey", Abbreviation: "NJD"},
	{Name: "Islanders", Location: "New York", Abbreviation: "NYI"},
	{Name: "Rangers", Location: "New York", Abbreviation: "NYR"},
	{Name: "Senators", Location: "Ottawa", Abbreviation: "OTT"},
	{Name: "Flyers", Location: "Philadelphia", Abbreviation: "PHI"},
	{Name: "Penguins", Location: "Pittsburgh", Abbreviation: "PIT"},
	{Name: "Sharks", Location: "San Jose", Abbreviation: "SJS"},
	{Name: "Kraken", Location: "Seattle", Abbreviation: "SEA"},
	{Name: "Blues", Location: "St. Louis", Abbreviation: "STL"},
	{Name: "Lightning", Location: "Tampa Bay", Abbreviation: "TBL"},
	{Name: "Maple Leafs", Location: "Toronto", Abbreviation: "TOR"},
	{Name: "Mammoth", Location: "Utah", Abbreviation: "UTA"},
	{Name: "Canucks", Location: "Vancouver", Abbreviation: "VAN"},
	{Name: "Golden Knights", Location: "Vegas", Abbreviation: "VGK"},
	{Name: "Capitals", Location: "Washington", Abbreviation: "WSH"},
	{Name: "Jets", Location: "Winnipeg", Abbreviation: "WPG"},
}

// NHL returns the catalog of current NHL franchises.
func NHL() *Catalog {
	return New(nhl)
}

// New builds a catalog. A team is reachable by its name, its full name or its
// abbreviation, compared case-insensitively. Later entries never shadow
// earlier ones.
func New(list []Team) *Catalog {
	c := &Catalog{
		teams: make([]Team, len(list)),
		index: make(map[string]Team, len(list)*3),
	}
	copy(c.teams, list)
	sort.Slice(c.teams, func(i, j int) bool { return c.teams[i].Name < c.teams[j].Name })

	for _, t := range list {
		for _, key := range []string{t.Name, t.FullName(), t.Abbreviation} {
			key = Normalize(key)
			if key == "" {
				continue
			}
			if _, ok := c.index[key]; !ok {
				c.index[key] = t
			}
		}
	}
	return c
}

// Normalize folds case and collapses runs of whitespace.
func Normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// Lookup returns the team matching the user input.
func (c *Catalog) Lookup(input string) (Team, bool) {
	t, ok := c.index[Normalize(input)]
	return t, ok
}

// Teams returns the catalog sorted by team name.
func (c *Catalog) Teams() []Team {
	out := make([]Team, len(c.teams))
	copy(out, c.teams)
	return out
}
