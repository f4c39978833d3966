// Package content holds the external data tables the engine depends on:
// keyword lists per action kind per language, narrative template pools,
// one-shot dilemmas, tactical cards, and daily intel. The engine depends
// only on the shapes here, never on the wording.
package content

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/tatianab/lone-garrison/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed data/keywords.yaml
var keywordsYAML []byte

//go:embed data/narrative.yaml
var narrativeYAML []byte

//go:embed data/events.yaml
var eventsYAML []byte

// ChatterRule matches off-pipeline conversational input to a canned
// response pool. Rules are checked in order; the last rule should have
// no keywords and acts as the fallback.
type ChatterRule struct {
	Category  string                       `yaml:"category"`
	Keywords  map[models.Language][]string `yaml:"keywords"`
	Responses []string                     `yaml:"responses"`
}

// Library is the full set of loaded content tables.
type Library struct {
	Actions   map[string]map[models.Language][]string
	Locations map[models.Location]map[models.Language][]string
	Pools     map[string][]string
	Chatter   []ChatterRule
	Dilemmas  []models.Dilemma
	Cards     []models.TacticalCard
	Intel     []string // indexed by day, last entry reused beyond it
}

// Load parses the embedded tables and validates their shape.
func Load() (*Library, error) {
	var kw struct {
		Actions   map[string]map[models.Language][]string          `yaml:"actions"`
		Locations map[models.Location]map[models.Language][]string `yaml:"locations"`
	}
	if err := yaml.Unmarshal(keywordsYAML, &kw); err != nil {
		return nil, fmt.Errorf("parse keywords: %w", err)
	}

	var nar struct {
		Pools map[string][]string `yaml:"pools"`
	}
	if err := yaml.Unmarshal(narrativeYAML, &nar); err != nil {
		return nil, fmt.Errorf("parse narrative: %w", err)
	}

	var ev struct {
		Dilemmas []models.Dilemma      `yaml:"dilemmas"`
		Cards    []models.TacticalCard `yaml:"cards"`
		Intel    []string              `yaml:"intel"`
		Chatter  []ChatterRule         `yaml:"chatter"`
	}
	if err := yaml.Unmarshal(eventsYAML, &ev); err != nil {
		return nil, fmt.Errorf("parse events: %w", err)
	}

	lib := &Library{
		Actions:   kw.Actions,
		Locations: kw.Locations,
		Pools:     nar.Pools,
		Chatter:   ev.Chatter,
		Dilemmas:  ev.Dilemmas,
		Cards:     ev.Cards,
		Intel:     ev.Intel,
	}
	if err := lib.validate(); err != nil {
		return nil, err
	}
	return lib, nil
}

func (l *Library) validate() error {
	if len(l.Actions) == 0 {
		return fmt.Errorf("content: no action keyword tables")
	}
	seen := map[string]bool{}
	for _, d := range l.Dilemmas {
		if d.ID == "" {
			return fmt.Errorf("content: dilemma with empty id")
		}
		if seen[d.ID] {
			return fmt.Errorf("content: duplicate dilemma id %q", d.ID)
		}
		seen[d.ID] = true
		if len(d.Options) == 0 {
			return fmt.Errorf("content: dilemma %q has no options", d.ID)
		}
	}
	seen = map[string]bool{}
	for _, c := range l.Cards {
		if c.ID == "" || seen[c.ID] {
			return fmt.Errorf("content: bad or duplicate card id %q", c.ID)
		}
		seen[c.ID] = true
	}
	if len(l.Intel) == 0 {
		return fmt.Errorf("content: no intel entries")
	}
	return nil
}

// ActionKeywords returns the keyword list for an action kind in the
// given language.
func (l *Library) ActionKeywords(action string, lang models.Language) []string {
	return l.Actions[action][lang]
}

// LocationFor scans the command for a location alias and returns the
// matched location, or ok=false when none matches.
func (l *Library) LocationFor(cmd string, lang models.Language) (models.Location, bool) {
	for _, loc := range models.AllLocations() {
		for _, alias := range l.Locations[loc][lang] {
			if alias != "" && contains(cmd, alias) {
				return loc, true
			}
		}
	}
	return "", false
}

// Pool returns a narrative template pool by name. A missing pool returns
// a single placeholder line rather than failing the turn.
func (l *Library) Pool(name string) []string {
	if pool, ok := l.Pools[name]; ok && len(pool) > 0 {
		return pool
	}
	return []string{"..."}
}

// IntelForDay returns the intel line for a day, clamping past the end.
func (l *Library) IntelForDay(day int) string {
	if day < 0 {
		day = 0
	}
	if day >= len(l.Intel) {
		day = len(l.Intel) - 1
	}
	return l.Intel[day]
}

// ChatterResponse returns a response pool for conversational input, in
// rule order, falling back to the keywordless final rule.
func (l *Library) ChatterResponse(cmd string, lang models.Language) []string {
	for _, rule := range l.Chatter {
		if len(rule.Keywords) == 0 {
			return rule.Responses
		}
		for _, k := range rule.Keywords[lang] {
			if contains(cmd, k) {
				return rule.Responses
			}
		}
	}
	return []string{"..."}
}

func contains(s, sub string) bool {
	return sub != "" && strings.Contains(s, sub)
}
