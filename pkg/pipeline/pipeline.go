// Package pipeline implements the parse → align → compare → render
// flow shared by the CLI and the comparison server. Centralizing it
// keeps caching and option handling identical across entry points.
package pipeline

import (
	"fmt"

	"github.com/charmbracelet/log"
)

// Output format constants.
const (
	FormatDOT    = "dot"
	FormatSVG    = "svg"
	FormatPNG    = "png"
	FormatTables = "txt"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatDOT:    true,
	FormatSVG:    true,
	FormatPNG:    true,
	FormatTables: true,
}

// Reaction label modes accepted by Options.ReactionLabel.
var ValidLabelModes = map[string]bool{
	"name":      true,
	"none":      true,
	"rate":      true,
	"name+rate": true,
}

// Options configures a comparison run. The struct serializes to JSON
// for server requests; runtime-only fields are excluded.
type Options struct {
	// Compare options
	Cartoon    bool `json:"cartoon,omitempty"`
	ShowParams bool `json:"show_params,omitempty"`
	HideRules  bool `json:"hide_rules,omitempty"`
	Align      bool `json:"align,omitempty"`

	// Render options
	Formats           []string `json:"formats,omitempty"`
	Colors            []string `json:"colors,omitempty"`
	ReactionLabel     string   `json:"reaction_label,omitempty"`
	SelectedModel     int      `json:"selected_model,omitempty"`
	ShowStoichiometry bool     `json:"show_stoichiometry,omitempty"`
	RankDir           string   `json:"rankdir,omitempty"`

	// Refresh bypasses the artifact cache.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
}

// ValidateAndSetDefaults checks option values and applies defaults.
func (o *Options) ValidateAndSetDefaults() error {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatDOT}
	}
	for _, f := range o.Formats {
		if !ValidFormats[f] {
			return fmt.Errorf("invalid format: %q (must be one of: dot, svg, png, txt)", f)
		}
	}
	if o.ReactionLabel == "" {
		o.ReactionLabel = "name"
	}
	if !ValidLabelModes[o.ReactionLabel] {
		return fmt.Errorf("invalid reaction label mode: %q (must be one of: name, none, rate, name+rate)", o.ReactionLabel)
	}
	if o.RankDir == "" {
		o.RankDir = "TB"
	}
	if o.SelectedModel < 0 {
		return fmt.Errorf("invalid selected model: %d", o.SelectedModel)
	}
	return nil
}

// cacheFingerprint is the option subset that shapes rendered output,
// used for artifact cache keys.
func (o *Options) cacheFingerprint() map[string]any {
	return map[string]any{
		"cartoon":     o.Cartoon,
		"show_params": o.ShowParams,
		"hide_rules":  o.HideRules,
		"align":       o.Align,
		"colors":      o.Colors,
		"label":       o.ReactionLabel,
		"selected":    o.SelectedModel,
		"stoich":      o.ShowStoichiometry,
		"rankdir":     o.RankDir,
	}
}
