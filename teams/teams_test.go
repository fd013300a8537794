package teams

import "testing"

func TestLookup(t *testing.T) {
	c := NHL()

	tests := []struct {
		input string
		want  string
		found bool
	}{
		{"Rangers", "Rangers", true},
		{"rangers", "Rangers", true},
		{"  RANGERS ", "Rangers", true},
		{"new york rangers", "Rangers", true},
		{"NYR", "Rangers", true},
		{"maple   leafs", "Maple Leafs", true},
		{"Toronto Maple Leafs", "Maple Leafs", true},
		{"st. louis blues", "Blues", true},
		{"Zzyzx", "", false},
		{"New York", "", false},
		{"", "", false},
	}

	for _, test := range tests {
		team, ok := c.Lookup(test.input)
		if ok != test.found {
			t.Errorf("Lookup(%q) found = %v, want %v", test.input, ok, test.found)
			continue
		}
		if team.Name != test.want {
			t.Errorf("Lookup(%q) = %q, want %q", test.input, team.Name, test.want)
		}
	}
}

func TestCatalogIsClosed(t *testing.T) {
	c := NHL()
	list := c.Teams()
	if len(list) != 32 {
		t.Fatalf("expected 32 teams, got %d", len(list))
	}

	for _, team := range list {
		got, ok := c.Lookup(team.Name)
		if !ok || got != team {
			t.Errorf("Lookup(%q) = %+v, %v", team.Name, got, ok)
		}
	}

	if _, ok := c.Lookup("Zzyzx"); ok {
		t.Error("Lookup accepted a name outside the catalog")
	}
}

func TestTeamsSortedCopy(t *testing.T) {
	c := New([]Team{
		{Name: "Wild", Location: "Minnesota", Abbreviation: "MIN"},
		{Name: "Bruins", Location: "Boston", Abbreviation: "BOS"},
	})

	list := c.Teams()
	if list[0].Name != "Bruins" || list[1].Name != "Wild" {
		t.Fatalf("unexpected order: %v", list)
	}

	list[0].Name = "changed"
	if c.Teams()[0].Name != "Bruins" {
		t.Fatal("Teams must return a copy")
	}
}
