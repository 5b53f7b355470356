package screening

import (
	"context"
	"strings"

	"onboard/internal/matching"
)

// StaticListProvider is an in-memory watchlist. It stands in for a commercial
// list feed in development and tests; production deployments inject a real
// provider behind the same interface.
type StaticListProvider struct {
	entries []ListedPerson
}

func NewStaticListProvider(entries []ListedPerson) *StaticListProvider {
	return &StaticListProvider{entries: entries}
}

// NewSeededListProvider returns a provider loaded with the built-in seed
// entries used by local environments.
func NewSeededListProvider() *StaticListProvider {
	return NewStaticListProvider(seedEntries())
}

// Find returns candidates sharing at least one name token with the query, so
// the matcher scores a shortlist instead of the whole list. An empty query
// returns nothing.
func (p *StaticListProvider) Find(_ context.Context, name string) ([]ListedPerson, error) {
	tokens := strings.Fields(matching.Normalize(name))
	if len(tokens) == 0 {
		return nil, nil
	}

	var out []ListedPerson
	for _, entry := range p.entries {
		if sharesToken(entry, tokens) {
			out = append(out, entry)
		}
	}
	return out, nil
}

func sharesToken(entry ListedPerson, tokens []string) bool {
	names := append([]string{entry.Name}, entry.Aliases...)
	for _, n := range names {
		for _, t := range strings.Fields(matching.Normalize(n)) {
			for _, q := range tokens {
				if t == q {
					return true
				}
			}
		}
	}
	return false
}

func seedEntries() []ListedPerson {
	return []ListedPerson{
		{
			Name:         "VIKTOR ABRAMOVICH KOZLOV",
			Aliases:      []string{"VICTOR KOZLOV", "V A KOZLOV"},
			IsSanctioned: true,
			RiskLevel:    "High",
		},
		{
			Name:         "AMARA DIALLO",
			Aliases:      []string{"AMARAH DIALLO"},
			IsSanctioned: true,
			RiskLevel:    "High",
		},
		{
			Name:      "JOSEPH MULENGA PHIRI",
			Aliases:   []string{"JOE PHIRI"},
			IsPep:     true,
			RiskLevel: "Medium",
		},
		{
			Name:      "GRACE NAKAMBA TEMBO",
			IsPep:     true,
			RiskLevel: "Medium",
		},
		{
			Name:         "HASSAN AL RASHID",
			Aliases:      []string{"HASAN ALRASHID", "H AL-RASHID"},
			IsPep:        true,
			IsSanctioned: true,
			RiskLevel:    "High",
		},
	}
}
