package datasource

import (
	"errors"
	"fmt"
	"strings"

	"github.com/richard-senior/matchodds/pkg/podds"
	"github.com/richard-senior/matchodds/pkg/util"
)

// ErrNoTable is returned when a page or file holds nothing that looks like the wanted table
var ErrNoTable = errors.New("no matching table found")

// columnSet maps the header spellings used by the stats sites and exports to one canonical column
type columnSet map[string]string

func newColumnSet(aliases map[string][]string) columnSet {
	set := columnSet{}
	for canonical, names := range aliases {
		set[canonical] = canonical
		for _, n := range names {
			set[n] = canonical
		}
	}
	return set
}

// canonical returns the column a header names, or "" when it is not one we read
func (c columnSet) canonical(header string) string {
	return c[strings.ToLower(strings.TrimSpace(header))]
}

var playerColumns = newColumnSet(map[string][]string{
	"player":              {"name"},
	"team":                {"squad"},
	"role":                {"pos", "position"},
	"goals":               {"gls"},
	"assists":             {"ast"},
	"xg":                  {"expected goals"},
	"xa":                  {"xag", "xg_assist", "expected assists"},
	"minutes":             {"min"},
	"npxg":                {"non-penalty xg"},
	"progressive_passes":  {"prgp", "progressive passes"},
	"progressive_carries": {"prgc", "progressive carries"},
	"tackles":             {"tkl"},
	"interceptions":       {"int"},
	"clearances":          {"clr"},
	"blocks":              {"blocked"},
	"yellow_cards":        {"crdy", "cards_yellow", "yellow"},
	"red_cards":           {"crdr", "cards_red", "red"},
})

var standingColumns = newColumnSet(map[string][]string{
	"team":          {"squad"},
	"position":      {"rank", "rk", "pos"},
	"played":        {"games", "gp", "mp"},
	"won":           {"wins", "w"},
	"drawn":         {"ties", "draws", "d"},
	"lost":          {"losses", "l"},
	"goals_for":     {"gf"},
	"goals_against": {"ga"},
	"points":        {"pts"},
})

var cornerColumns = newColumnSet(map[string][]string{
	"team":            {"squad"},
	"corners_for":     {"corners_for_per_match"},
	"corners_against": {"corners_against_per_match"},
	"corners_total":   {"total_corners", "total_corners_per_match"},
	"over_85":         {"over 8.5"},
	"over_95":         {"over 9.5"},
	"over_105":        {"over 10.5"},
})

var formColumns = newColumnSet(map[string][]string{
	"team":          {"squad"},
	"gp":            {"games", "played"},
	"pts":           {"points"},
	"gf":            {"goals_for"},
	"ga":            {"goals_against"},
	"opponents_ppg": {"opp_ppg", "sos"},
})

// row is one table row keyed by canonical column
type row map[string]string

func (r row) float(column string) (float64, bool, error) {
	text, ok := r[column]
	if !ok || strings.TrimSpace(text) == "" {
		return 0, false, nil
	}
	v, err := util.GetAsFloat(text)
	if err != nil {
		return 0, false, fmt.Errorf("column %s: %w", column, err)
	}
	return v, true, nil
}

// required reads a column that defaults to zero when blank
func (r row) required(column string) (float64, error) {
	v, _, err := r.float(column)
	return v, err
}

// optional reads a column that stays nil when blank or absent
func (r row) optional(column string) (*float64, error) {
	v, ok, err := r.float(column)
	if err != nil || !ok {
		return nil, err
	}
	return podds.Float(v), nil
}

func (r row) integer(column string) (int, error) {
	v, err := r.required(column)
	if err != nil {
		return 0, err
	}
	return int(v), nil
}

// playerFromRow builds a player record, defaultTeam fills in tables without a team column
func playerFromRow(r row, defaultTeam string) (podds.PlayerRecord, error) {
	p := podds.PlayerRecord{
		Player: strings.TrimSpace(r["player"]),
		Team:   strings.TrimSpace(r["team"]),
		Role:   strings.TrimSpace(r["role"]),
	}
	if p.Team == "" {
		p.Team = defaultTeam
	}
	if p.Player == "" || p.Team == "" {
		return p, fmt.Errorf("row has no player or team: %w", podds.ErrInvalidInput)
	}

	var errs []error
	for column, dst := range map[string]*float64{
		"goals":   &p.Goals,
		"assists": &p.Assists,
		"xg":      &p.XG,
		"xa":      &p.XA,
		"minutes": &p.Minutes,
	} {
		v, err := r.required(column)
		errs = append(errs, err)
		*dst = v
	}
	for column, dst := range map[string]**float64{
		"npxg":                &p.NPXG,
		"progressive_passes":  &p.ProgressivePasses,
		"progressive_carries": &p.ProgressiveCarries,
		"tackles":             &p.Tackles,
		"interceptions":       &p.Interceptions,
		"clearances":          &p.Clearances,
		"blocks":              &p.Blocks,
		"yellow_cards":        &p.YellowCards,
		"red_cards":           &p.RedCards,
	} {
		v, err := r.optional(column)
		errs = append(errs, err)
		*dst = v
	}
	if err := errors.Join(errs...); err != nil {
		return p, fmt.Errorf("player %s: %w", p.Player, err)
	}
	return p, nil
}

func standingFromRow(r row) (podds.Standing, error) {
	s := podds.Standing{Team: strings.TrimSpace(r["team"])}
	var errs []error
	for column, dst := range map[string]*int{
		"position": &s.Position,
		"played":   &s.Played,
		"won":      &s.Won,
		"drawn":    &s.Drawn,
		"lost":     &s.Lost,
	} {
		v, err := r.integer(column)
		errs = append(errs, err)
		*dst = v
	}
	for column, dst := range map[string]*float64{
		"goals_for":     &s.GoalsFor,
		"goals_against": &s.GoalsAgainst,
		"points":        &s.Points,
	} {
		v, err := r.required(column)
		errs = append(errs, err)
		*dst = v
	}
	if err := errors.Join(errs...); err != nil {
		return s, fmt.Errorf("standing %s: %w", s.Team, err)
	}
	return s, s.Validate()
}

// cornerFromRow applies the league-average defaults for blank cells
func cornerFromRow(r row) (podds.CornerProfile, error) {
	c := podds.DefaultCornerProfile(strings.TrimSpace(r["team"]))
	if c.Team == "" {
		return c, fmt.Errorf("corner row has no team: %w", podds.ErrInvalidInput)
	}
	var errs []error
	for column, dst := range map[string]*float64{
		"corners_for":     &c.CornersForPerMatch,
		"corners_against": &c.CornersAgainstPerMatch,
		"corners_total":   &c.TotalCornersPerMatch,
		"over_85":         &c.Over85,
		"over_95":         &c.Over95,
		"over_105":        &c.Over105,
	} {
		v, ok, err := r.float(column)
		errs = append(errs, err)
		if ok {
			*dst = v
		}
	}
	if err := errors.Join(errs...); err != nil {
		return c, fmt.Errorf("corners %s: %w", c.Team, err)
	}
	c = c.Normalize()
	return c, c.Validate()
}

func formFromRow(r row) (podds.FormRecord, error) {
	f := podds.FormRecord{Team: strings.TrimSpace(r["team"])}
	if f.Team == "" {
		return f, fmt.Errorf("form row has no team: %w", podds.ErrInvalidInput)
	}
	gp, err := r.integer("gp")
	if err != nil {
		return f, fmt.Errorf("form %s: %w", f.Team, err)
	}
	f.GamesPlayed = gp
	var errs []error
	for column, dst := range map[string]*float64{
		"pts":           &f.Points,
		"gf":            &f.GoalsFor,
		"ga":            &f.GoalsAgainst,
		"opponents_ppg": &f.OpponentsPPG,
	} {
		v, err := r.required(column)
		errs = append(errs, err)
		*dst = v
	}
	if err := errors.Join(errs...); err != nil {
		return f, fmt.Errorf("form %s: %w", f.Team, err)
	}
	return f, nil
}
