package onegame_test

import (
	"math/rand"
	"testing"

	"romdex/internal/catalog"
	"romdex/internal/onegame"
)

func entry(seq int, title, parent string, regions, languages []string) *catalog.Entry {
	return &catalog.Entry{
		Seq:       seq,
		Name:      title + ".bin",
		Title:     title,
		Parent:    parent,
		Regions:   regions,
		Languages: languages,
	}
}

func defaultOpts() onegame.Options {
	return onegame.Options{
		RegionPriority:   []string{"USA", "Europe", "Japan"},
		LanguagePriority: []string{"En", "Ja"},
		PreferParent:     true,
	}
}

func TestResolveRegionPriorityWins(t *testing.T) {
	family := []*catalog.Entry{
		entry(0, "Game (Japan)", "", []string{"Japan"}, []string{"Ja"}),
		entry(1, "Game (USA)", "Game (Japan)", []string{"USA"}, []string{"En"}),
		entry(2, "Game (Europe)", "Game (Japan)", []string{"Europe"}, []string{"En"}),
	}

	chosen := onegame.Resolve(family, defaultOpts())
	if chosen == nil || chosen.Title != "Game (USA)" {
		t.Fatalf("expected USA release, got %+v", chosen)
	}
}

func TestResolveUnlistedRegionsRankLast(t *testing.T) {
	family := []*catalog.Entry{
		entry(0, "Game (Brazil)", "", []string{"Brazil"}, nil),
		entry(1, "Game (Europe)", "Game (Brazil)", []string{"Europe"}, nil),
	}

	chosen := onegame.Resolve(family, defaultOpts())
	if chosen == nil || chosen.Title != "Game (Europe)" {
		t.Fatalf("expected listed region to beat unlisted, got %+v", chosen)
	}
}

func TestResolveLanguageBreaksRegionTie(t *testing.T) {
	family := []*catalog.Entry{
		entry(0, "Game (Europe) (Fr)", "", []string{"Europe"}, []string{"Fr"}),
		entry(1, "Game (Europe) (En)", "Game (Europe) (Fr)", []string{"Europe"}, []string{"En"}),
	}

	chosen := onegame.Resolve(family, defaultOpts())
	if chosen == nil || chosen.Title != "Game (Europe) (En)" {
		t.Fatalf("expected English release, got %+v", chosen)
	}
}

func TestResolveLanguageTagsFoldAcrossSpellings(t *testing.T) {
	family := []*catalog.Entry{
		entry(0, "Game A", "", []string{"Europe"}, []string{"fr"}),
		entry(1, "Game B", "Game A", []string{"Europe"}, []string{"eng"}),
	}
	opts := defaultOpts()
	opts.LanguagePriority = []string{"En"}

	chosen := onegame.Resolve(family, opts)
	if chosen == nil || chosen.Title != "Game B" {
		t.Fatalf("expected 'eng' to match 'En' priority, got %+v", chosen)
	}
}

func TestResolvePreferParent(t *testing.T) {
	family := []*catalog.Entry{
		entry(0, "Game (USA) (Rev 1)", "Game (USA)", []string{"USA"}, []string{"En"}),
		entry(1, "Game (USA)", "", []string{"USA"}, []string{"En"}),
	}

	chosen := onegame.Resolve(family, defaultOpts())
	if chosen == nil || chosen.Title != "Game (USA)" {
		t.Fatalf("expected parent preferred, got %+v", chosen)
	}

	opts := defaultOpts()
	opts.PreferParent = false
	chosen = onegame.Resolve(family, opts)
	if chosen == nil || chosen.Title != "Game (USA)" {
		// Lexicographic title tie-break: "Game (USA)" < "Game (USA) (Rev 1)".
		t.Fatalf("expected lexicographic winner, got %+v", chosen)
	}
}

func TestResolveDeterministicAcrossOrderings(t *testing.T) {
	family := []*catalog.Entry{
		entry(0, "Game (Japan)", "", []string{"Japan"}, []string{"Ja"}),
		entry(1, "Game (USA)", "Game (Japan)", []string{"USA"}, []string{"En"}),
		entry(2, "Game (Europe)", "Game (Japan)", []string{"Europe"}, []string{"En"}),
		entry(3, "Game (World)", "Game (Japan)", []string{"World"}, []string{"En"}),
	}

	want := onegame.Resolve(family, defaultOpts())
	rng := rand.New(rand.NewSource(1))
	for range 20 {
		shuffled := append([]*catalog.Entry(nil), family...)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		if got := onegame.Resolve(shuffled, defaultOpts()); got != want {
			t.Fatalf("resolution depends on input order: %+v vs %+v", got, want)
		}
	}
}

func TestResolveAllOrdersByFamily(t *testing.T) {
	idx := catalog.Build([]catalog.Entry{
		{Seq: 0, Name: "zeta.bin", Title: "Zeta (USA)", Regions: []string{"USA"}},
		{Seq: 1, Name: "alpha-usa.bin", Title: "Alpha (USA)", Regions: []string{"USA"}},
		{Seq: 2, Name: "alpha-eur.bin", Title: "Alpha (Europe)", Parent: "Alpha (USA)", Regions: []string{"Europe"}},
	})

	selections := onegame.ResolveAll(idx, defaultOpts())
	if len(selections) != 2 {
		t.Fatalf("expected 2 families, got %d", len(selections))
	}
	if selections[0].Family != "Alpha (USA)" || selections[1].Family != "Zeta (USA)" {
		t.Fatalf("unexpected family order: %+v", selections)
	}
	if selections[0].Chosen.Title != "Alpha (USA)" {
		t.Fatalf("unexpected choice: %+v", selections[0].Chosen)
	}
	if len(selections[0].Others) != 1 {
		t.Fatalf("expected one unchosen clone, got %d", len(selections[0].Others))
	}
}

func TestResolveEmptyFamily(t *testing.T) {
	if chosen := onegame.Resolve(nil, defaultOpts()); chosen != nil {
		t.Fatalf("expected nil for empty family, got %+v", chosen)
	}
}
