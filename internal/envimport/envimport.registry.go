package envimport

import (
	"strings"
	"time"
)

// Registry is an ordered list of parsers. The first parser accepting a header wins.
type Registry struct {
	parsers []Parser
}

func NewRegistry(parsers ...Parser) *Registry {
	return &Registry{parsers: parsers}
}

// DefaultRegistry registers, in priority order:
//  1. the current SwitchBot export
//  2. the legacy SwitchBot export
//  3. configured dialects, in file order
//
// The current SwitchBot scheme comes first so a header carrying both
// generations' columns is read with the current column names.
func DefaultRegistry(loc *time.Location, dialects ...Parser) *Registry {
	r := NewRegistry(NewSwitchBotParser(loc), NewSwitchBotLegacyParser(loc))
	for _, d := range dialects {
		r.Register(d)
	}
	return r
}

// Register appends p with the lowest priority
func (r *Registry) Register(p Parser) {
	r.parsers = append(r.parsers, p)
}

// SelectParser returns nil for a blank header or when nothing matches
func (r *Registry) SelectParser(header string) Parser {
	if strings.TrimSpace(stripBOM(header)) == "" {
		return nil
	}
	for _, p := range r.parsers {
		if p.CanParse(header) {
			return p
		}
	}
	return nil
}

// Names lists the registered parser names in priority order
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.parsers))
	for _, p := range r.parsers {
		names = append(names, p.Name())
	}
	return names
}
