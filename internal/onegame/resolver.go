package onegame

import (
	"sort"
	"strings"

	"golang.org/x/text/language"

	"romdex/internal/catalog"
)

// Options configure canonical release selection. Earlier priority entries
// win; releases matching nothing in a list rank after every listed value.
type Options struct {
	RegionPriority   []string
	LanguagePriority []string
	PreferParent     bool
}

// Selection is the resolution result for one parent/clone family.
type Selection struct {
	Family string
	Chosen *catalog.Entry
	Others []*catalog.Entry
}

// Resolve picks exactly one preferred release from a family. It is a pure
// function of (family, options): repeated runs with any input ordering
// return the same entry. Ranking applies region priority, then language
// priority, then the parent preference, then lexicographic title.
func Resolve(family []*catalog.Entry, opts Options) *catalog.Entry {
	if len(family) == 0 {
		return nil
	}

	regions := priorityRanks(opts.RegionPriority, normalizeToken)
	languages := priorityRanks(opts.LanguagePriority, normalizeLanguage)

	best := family[0]
	for _, candidate := range family[1:] {
		if lessPreferred(best, candidate, regions, languages, opts.PreferParent) {
			best = candidate
		}
	}
	return best
}

// ResolveAll resolves every family in the index, ordered by family title so
// output is reproducible.
func ResolveAll(idx *catalog.Index, opts Options) []Selection {
	families := idx.Families()
	titles := make([]string, 0, len(families))
	for title := range families {
		titles = append(titles, title)
	}
	sort.Strings(titles)

	selections := make([]Selection, 0, len(titles))
	for _, title := range titles {
		family := families[title]
		chosen := Resolve(family, opts)
		others := make([]*catalog.Entry, 0, len(family)-1)
		for _, entry := range family {
			if entry != chosen {
				others = append(others, entry)
			}
		}
		selections = append(selections, Selection{Family: title, Chosen: chosen, Others: others})
	}
	return selections
}

// lessPreferred reports whether challenger outranks current.
func lessPreferred(current, challenger *catalog.Entry, regions, languages map[string]int, preferParent bool) bool {
	if c, n := listRank(current.Regions, regions, normalizeToken), listRank(challenger.Regions, regions, normalizeToken); c != n {
		return n < c
	}
	if c, n := listRank(current.Languages, languages, normalizeLanguage), listRank(challenger.Languages, languages, normalizeLanguage); c != n {
		return n < c
	}
	if preferParent {
		if c, n := parentRank(current), parentRank(challenger); c != n {
			return n < c
		}
	}
	if current.Title != challenger.Title {
		return challenger.Title < current.Title
	}
	// Identical titles can only come from duplicate catalog rows; import
	// order settles it.
	return challenger.Seq < current.Seq
}

func parentRank(entry *catalog.Entry) int {
	if entry.IsParent() {
		return 0
	}
	return 1
}

func priorityRanks(priorities []string, normalize func(string) string) map[string]int {
	ranks := make(map[string]int, len(priorities))
	for i, value := range priorities {
		key := normalize(value)
		if _, seen := ranks[key]; !seen {
			ranks[key] = i
		}
	}
	return ranks
}

// listRank returns the best rank any of the entry's tags achieves in the
// priority map; unmatched tags rank after every listed one.
func listRank(tags []string, ranks map[string]int, normalize func(string) string) int {
	best := len(ranks)
	for _, tag := range tags {
		if rank, ok := ranks[normalize(tag)]; ok && rank < best {
			best = rank
		}
	}
	return best
}

func normalizeToken(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// normalizeLanguage folds language tags into a canonical base so "En",
// "en", and "eng" all compare equal between catalogs and configuration.
func normalizeLanguage(value string) string {
	trimmed := strings.TrimSpace(value)
	if tag, err := language.Parse(trimmed); err == nil {
		if base, conf := tag.Base(); conf > language.No {
			return base.String()
		}
	}
	return strings.ToLower(trimmed)
}
