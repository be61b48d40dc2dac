package podds

import (
	"fmt"
	"math"
	"strings"
)

// PlayerRecord is one row of player statistics as delivered by a data source
// The optional columns are pointers so "absent" and "zero" can be told apart
type PlayerRecord struct {
	Player  string  `json:"player" yaml:"player"`
	Team    string  `json:"team" yaml:"team"`
	Role    string  `json:"role" yaml:"role"`
	Goals   float64 `json:"goals" yaml:"goals"`
	Assists float64 `json:"assists" yaml:"assists"`
	XG      float64 `json:"xg" yaml:"xg"`
	XA      float64 `json:"xa" yaml:"xa"`
	Minutes float64 `json:"minutes" yaml:"minutes"`

	NPXG               *float64 `json:"npxg,omitempty" yaml:"npxg,omitempty"`
	ProgressivePasses  *float64 `json:"progressivePasses,omitempty" yaml:"progressive_passes,omitempty"`
	ProgressiveCarries *float64 `json:"progressiveCarries,omitempty" yaml:"progressive_carries,omitempty"`
	Tackles            *float64 `json:"tackles,omitempty" yaml:"tackles,omitempty"`
	Interceptions      *float64 `json:"interceptions,omitempty" yaml:"interceptions,omitempty"`
	Clearances         *float64 `json:"clearances,omitempty" yaml:"clearances,omitempty"`
	Blocks             *float64 `json:"blocks,omitempty" yaml:"blocks,omitempty"`
	YellowCards        *float64 `json:"yellowCards,omitempty" yaml:"yellow_cards,omitempty"`
	RedCards           *float64 `json:"redCards,omitempty" yaml:"red_cards,omitempty"`
}

// ResolvedPlayer is a PlayerRecord with every optional column filled in
type ResolvedPlayer struct {
	Player             string
	Team               string
	Role               string
	Goals              float64
	Assists            float64
	XG                 float64
	XA                 float64
	Minutes            float64
	NPXG               float64
	ProgressivePasses  float64
	ProgressiveCarries float64
	Tackles            float64
	Interceptions      float64
	Clearances         float64
	Blocks             float64
	YellowCards        float64
	RedCards           float64

	// Defaulted lists the optional columns that were absent
	Defaulted []string
}

// optionalField describes how one optional column is read and what it defaults to
type optionalField struct {
	Name     string
	get      func(*PlayerRecord) *float64
	set      func(*ResolvedPlayer, float64)
	fallback func(*PlayerRecord) float64
}

func zero(*PlayerRecord) float64 { return 0 }

// optionalDefaults is the default-resolution table for the optional player columns
// npxG falls back to xG (no penalty share), everything else contributes nothing
var optionalDefaults = []optionalField{
	{"npxG", func(p *PlayerRecord) *float64 { return p.NPXG }, func(r *ResolvedPlayer, v float64) { r.NPXG = v }, func(p *PlayerRecord) float64 { return p.XG }},
	{"Progressive_Passes", func(p *PlayerRecord) *float64 { return p.ProgressivePasses }, func(r *ResolvedPlayer, v float64) { r.ProgressivePasses = v }, zero},
	{"Progressive_Carries", func(p *PlayerRecord) *float64 { return p.ProgressiveCarries }, func(r *ResolvedPlayer, v float64) { r.ProgressiveCarries = v }, zero},
	{"Tackles", func(p *PlayerRecord) *float64 { return p.Tackles }, func(r *ResolvedPlayer, v float64) { r.Tackles = v }, zero},
	{"Interceptions", func(p *PlayerRecord) *float64 { return p.Interceptions }, func(r *ResolvedPlayer, v float64) { r.Interceptions = v }, zero},
	{"Clearances", func(p *PlayerRecord) *float64 { return p.Clearances }, func(r *ResolvedPlayer, v float64) { r.Clearances = v }, zero},
	{"Blocks", func(p *PlayerRecord) *float64 { return p.Blocks }, func(r *ResolvedPlayer, v float64) { r.Blocks = v }, zero},
	{"Yellow_Cards", func(p *PlayerRecord) *float64 { return p.YellowCards }, func(r *ResolvedPlayer, v float64) { r.YellowCards = v }, zero},
	{"Red_Cards", func(p *PlayerRecord) *float64 { return p.RedCards }, func(r *ResolvedPlayer, v float64) { r.RedCards = v }, zero},
}

// Validate checks the required columns
func (p PlayerRecord) Validate() error {
	if strings.TrimSpace(p.Player) == "" {
		return fmt.Errorf("player name is required: %w", ErrInvalidInput)
	}
	if strings.TrimSpace(p.Team) == "" {
		return fmt.Errorf("player %s has no team: %w", p.Player, ErrInvalidInput)
	}
	required := []struct {
		name  string
		value float64
	}{
		{"Goals", p.Goals},
		{"Assists", p.Assists},
		{"xG", p.XG},
		{"xA", p.XA},
		{"Minutes", p.Minutes},
	}
	for _, r := range required {
		if math.IsNaN(r.value) || math.IsInf(r.value, 0) || r.value < 0 {
			return fmt.Errorf("player %s has invalid %s %v: %w", p.Player, r.name, r.value, ErrInvalidInput)
		}
	}
	return nil
}

// Resolve applies the default-resolution table
func (p PlayerRecord) Resolve() ResolvedPlayer {
	r := ResolvedPlayer{
		Player:  p.Player,
		Team:    p.Team,
		Role:    p.Role,
		Goals:   p.Goals,
		Assists: p.Assists,
		XG:      p.XG,
		XA:      p.XA,
		Minutes: p.Minutes,
	}
	for _, f := range optionalDefaults {
		if v := f.get(&p); v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0) {
			f.set(&r, *v)
			continue
		}
		f.set(&r, f.fallback(&p))
		r.Defaulted = append(r.Defaulted, f.Name)
	}
	return r
}

// DefensiveActions is tackles + interceptions + clearances + blocks
func (r ResolvedPlayer) DefensiveActions() float64 {
	return r.Tackles + r.Interceptions + r.Clearances + r.Blocks
}

// ProgressiveActions is progressive passes + carries
func (r ResolvedPlayer) ProgressiveActions() float64 {
	return r.ProgressivePasses + r.ProgressiveCarries
}

// Float is a helper for building records with optional columns
func Float(v float64) *float64 {
	return &v
}
