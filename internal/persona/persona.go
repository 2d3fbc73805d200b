// Package persona loads the nickname → team lead mapping and picks the
// persona a post is attributed to.
package persona

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"math/rand/v2"
	"os"
	"sort"
	"strings"

	"TransferCast/internal/model"
)

// Picker holds the read-only persona set for the process lifetime.
type Picker struct {
	personas []model.Persona
	rnd      *rand.Rand
}

// NewPicker creates a Picker over personas. Entries are copied.
func NewPicker(personas []model.Persona, rnd *rand.Rand) *Picker {
	cp := make([]model.Persona, len(personas))
	copy(cp, personas)
	return &Picker{personas: cp, rnd: rnd}
}

// LoadFile reads a name:team file. An unreadable file yields an empty set.
func LoadFile(path string) []model.Persona {
	f, err := os.Open(path)
	if err != nil {
		log.Printf("[WARN] load personas from %s: %v", path, err)
		return nil
	}
	defer f.Close()

	personas, err := Parse(f)
	if err != nil {
		log.Printf("[WARN] parse personas from %s: %v", path, err)
		return nil
	}
	log.Printf("[INFO] loaded %d personas from %s", len(personas), path)
	return personas
}

// Parse reads one name:team pair per line, split on the first colon.
// A later duplicate nickname replaces an earlier one. The result is sorted by
// nickname so picking is reproducible for a seeded source.
func Parse(r io.Reader) ([]model.Persona, error) {
	groups := make(map[string]string)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		name, team, ok := strings.Cut(sc.Text(), ":")
		if !ok {
			continue
		}
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if name == "" {
			continue
		}
		groups[name] = strings.TrimSpace(team)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan personas: %w", err)
	}

	personas := make([]model.Persona, 0, len(groups))
	for name, team := range groups {
		personas = append(personas, model.Persona{Nickname: name, Team: team})
	}
	sort.Slice(personas, func(i, j int) bool { return personas[i].Nickname < personas[j].Nickname })
	return personas, nil
}

// Len returns the number of loaded personas.
func (p *Picker) Len() int { return len(p.personas) }

// Pick returns a uniformly chosen persona, or false when none are loaded.
func (p *Picker) Pick() (model.Persona, bool) {
	if len(p.personas) == 0 {
		return model.Persona{}, false
	}
	return p.personas[p.rnd.IntN(len(p.personas))], true
}
