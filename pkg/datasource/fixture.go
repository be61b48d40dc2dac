package datasource

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/richard-senior/matchodds/internal/logger"
	"github.com/richard-senior/matchodds/pkg/podds"
	"gopkg.in/yaml.v3"
)

// Fixture is a season's worth of inputs in one YAML file
// Records can be inline or in CSV exports named relative to the fixture
type Fixture struct {
	Season string `yaml:"season"`
	League string `yaml:"league"`

	Players   []podds.PlayerRecord  `yaml:"players"`
	Standings []podds.Standing      `yaml:"standings"`
	Corners   []podds.CornerProfile `yaml:"corners"`
	Form      []podds.FormRecord    `yaml:"form"`

	PlayersCSV   []string `yaml:"players_csv"`
	StandingsCSV string   `yaml:"standings_csv"`
	CornersCSV   string   `yaml:"corners_csv"`
	FormCSV      string   `yaml:"form_csv"`

	// Odds is kept raw so prices can be written as "5/2" or "evens"
	Odds yaml.Node `yaml:"odds"`
}

// ParseFixture decodes a fixture without following its CSV references
func ParseFixture(data []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse fixture: %w", err)
	}
	if f.Season == "" {
		return nil, fmt.Errorf("fixture has no season: %w", podds.ErrInvalidInput)
	}
	return &f, nil
}

// LoadFixture reads a fixture and the CSV exports it names
// Rows that fail to parse are returned as errors, the rest of the fixture still loads
func LoadFixture(path string) (*Fixture, []error, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read fixture %s: %w", path, err)
	}
	f, err := ParseFixture(data)
	if err != nil {
		return nil, nil, err
	}

	dir := filepath.Dir(path)
	var rejected []error
	for _, name := range f.PlayersCSV {
		players, bad, err := readFile(dir, name, func(r io.Reader) ([]podds.PlayerRecord, []error, error) {
			return ReadPlayersCSV(r, "")
		})
		if err != nil {
			return nil, nil, err
		}
		f.Players = append(f.Players, players...)
		rejected = append(rejected, bad...)
	}
	if f.StandingsCSV != "" {
		standings, bad, err := readFile(dir, f.StandingsCSV, ReadStandingsCSV)
		if err != nil {
			return nil, nil, err
		}
		f.Standings = append(f.Standings, standings...)
		rejected = append(rejected, bad...)
	}
	if f.CornersCSV != "" {
		corners, bad, err := readFile(dir, f.CornersCSV, ReadCornersCSV)
		if err != nil {
			return nil, nil, err
		}
		f.Corners = append(f.Corners, corners...)
		rejected = append(rejected, bad...)
	}
	if f.FormCSV != "" {
		form, bad, err := readFile(dir, f.FormCSV, ReadFormCSV)
		if err != nil {
			return nil, nil, err
		}
		f.Form = append(f.Form, form...)
		rejected = append(rejected, bad...)
	}

	logger.Info("Loaded fixture", path, len(f.Players), len(f.Standings), len(rejected))
	return f, rejected, nil
}

func readFile[T any](dir, name string, read func(io.Reader) ([]T, []error, error)) ([]T, []error, error) {
	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, name)
	}
	file, err := openCSV(path)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()
	records, rejected, err := read(file)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, rejected, nil
}

// OddsQuote decodes the fixture's odds section, an absent section gives an empty quote
func (f *Fixture) OddsQuote() (podds.OddsQuote, error) {
	if f.Odds.Kind == 0 {
		return podds.OddsQuote{}, nil
	}
	data, err := yaml.Marshal(&f.Odds)
	if err != nil {
		return nil, fmt.Errorf("failed to re-encode odds: %w", err)
	}
	return podds.ParseOddsQuote(data)
}

// Teams lists every team that has player records, in first-seen order
func (f *Fixture) Teams() []string {
	seen := map[string]bool{}
	var teams []string
	for _, p := range f.Players {
		if !seen[p.Team] {
			seen[p.Team] = true
			teams = append(teams, p.Team)
		}
	}
	return teams
}
