package predictor

import (
	"errors"
	"fmt"

	"github.com/richard-senior/matchodds/internal/logger"
	"github.com/richard-senior/matchodds/pkg/podds"
)

// ErrNoStore is returned by operations that need a database when the service has none
var ErrNoStore = errors.New("no store configured")

// SeasonData is everything that can be imported for a season
type SeasonData struct {
	Players   []podds.PlayerRecord
	Standings []podds.Standing
	Corners   []podds.CornerProfile
	Form      []podds.FormRecord
}

// Import validates and stores a season's data, invalid rows are skipped and returned
func (s *Service) Import(season string, data SeasonData) ([]error, error) {
	if s.store == nil {
		return nil, ErrNoStore
	}
	if season == "" {
		return nil, fmt.Errorf("import needs a season: %w", podds.ErrInvalidInput)
	}

	var rejected []error
	keep := func(kind string, err error) bool {
		if err == nil {
			return true
		}
		rejected = append(rejected, err)
		if s.metrics != nil {
			s.metrics.RecordRejectedRows(kind, 1)
		}
		return false
	}

	var players []podds.PlayerRecord
	for _, p := range data.Players {
		if keep("players", p.Validate()) {
			players = append(players, p)
		}
	}
	var standings []podds.Standing
	for _, st := range data.Standings {
		if keep("standings", st.Validate()) {
			standings = append(standings, st)
		}
	}
	var corners []podds.CornerProfile
	for _, c := range data.Corners {
		c = c.Normalize()
		if keep("corners", c.Validate()) {
			corners = append(corners, c)
		}
	}

	saves := []struct {
		kind  string
		count int
		save  func() error
	}{
		{"players", len(players), func() error { return s.store.SavePlayers(season, players) }},
		{"standings", len(standings), func() error { return s.store.SaveStandings(season, standings) }},
		{"corners", len(corners), func() error { return s.store.SaveCorners(season, corners) }},
		{"form", len(data.Form), func() error { return s.store.SaveForm(season, data.Form) }},
	}
	for _, sv := range saves {
		if sv.count == 0 {
			continue
		}
		if err := sv.save(); err != nil {
			return rejected, fmt.Errorf("saving %s for %s: %w", sv.kind, season, err)
		}
		if s.metrics != nil {
			s.metrics.UpdateStored(sv.kind, sv.count)
		}
		logger.Info("Imported", sv.count, sv.kind, "for season", season)
	}
	return rejected, nil
}
