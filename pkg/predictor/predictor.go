// Package predictor runs match evaluations against stored season data
package predictor

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/richard-senior/matchodds/internal/logger"
	"github.com/richard-senior/matchodds/pkg/metrics"
	"github.com/richard-senior/matchodds/pkg/podds"
	"github.com/richard-senior/matchodds/pkg/store"
	"github.com/richard-senior/matchodds/pkg/util"
)

// ErrNoSeasonData is returned when a request carries no players and there is no store to read them from
var ErrNoSeasonData = errors.New("no season data")

// Request describes one match to evaluate
// Any of the data slices left empty is read from the store for Season
type Request struct {
	Season   string `json:"season,omitempty"`
	League   string `json:"league,omitempty"`
	HomeTeam string `json:"homeTeam"`
	AwayTeam string `json:"awayTeam"`
	// Neutral means neither side gets home advantage
	Neutral bool `json:"neutral,omitempty"`
	Venue   string `json:"venue,omitempty"`

	Players   []podds.PlayerRecord  `json:"players,omitempty"`
	Standings []podds.Standing      `json:"standings,omitempty"`
	Corners   []podds.CornerProfile `json:"corners,omitempty"`
	Form      []podds.FormRecord    `json:"form,omitempty"`
	Odds      podds.OddsQuote       `json:"odds,omitempty"`

	// Save stores the evaluation when the service has a store
	Save bool `json:"save,omitempty"`
}

// Result is an evaluation with its identifier
type Result struct {
	ID         string            `json:"id"`
	Saved      bool              `json:"saved"`
	Warnings   []string          `json:"warnings,omitempty"`
	Evaluation *podds.Evaluation `json:"evaluation"`
}

// Service evaluates matches, the store and metrics are optional
type Service struct {
	cfg     *podds.Config
	store   *store.Store
	metrics *metrics.EvaluationMetrics
}

// New creates a service, a nil config means the defaults
func New(cfg *podds.Config, st *store.Store, m *metrics.EvaluationMetrics) (*Service, error) {
	if cfg == nil {
		cfg = podds.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Service{cfg: cfg, store: st, metrics: m}, nil
}

// Config returns the base configuration
func (s *Service) Config() *podds.Config {
	return s.cfg
}

// Store returns the backing store, which may be nil
func (s *Service) Store() *store.Store {
	return s.store
}

func (s *Service) configFor(league string) (*podds.Config, error) {
	if league == "" {
		return s.cfg, nil
	}
	return s.cfg.ForLeague(league)
}

// seasonData fills the empty parts of a request from the store
func (s *Service) seasonData(req Request) (Request, error) {
	if len(req.Players) > 0 && len(req.Standings) > 0 && len(req.Corners) > 0 && len(req.Form) > 0 {
		return req, nil
	}
	if s.store == nil || req.Season == "" {
		if len(req.Players) == 0 {
			return req, fmt.Errorf("%s vs %s: %w", req.HomeTeam, req.AwayTeam, ErrNoSeasonData)
		}
		return req, nil
	}

	var err error
	if len(req.Players) == 0 {
		if req.Players, err = s.store.Players(req.Season); err != nil {
			return req, fmt.Errorf("loading players for %s: %w", req.Season, err)
		}
		if len(req.Players) == 0 {
			return req, fmt.Errorf("season %s has no players: %w", req.Season, ErrNoSeasonData)
		}
	}
	if len(req.Standings) == 0 {
		if req.Standings, err = s.store.Standings(req.Season); err != nil {
			return req, fmt.Errorf("loading standings for %s: %w", req.Season, err)
		}
	}
	if len(req.Corners) == 0 {
		corners, err := s.store.Corners(req.Season)
		if err != nil {
			return req, fmt.Errorf("loading corners for %s: %w", req.Season, err)
		}
		for _, c := range corners {
			req.Corners = append(req.Corners, c)
		}
		sort.Slice(req.Corners, func(i, j int) bool { return req.Corners[i].Team < req.Corners[j].Team })
	}
	if len(req.Form) == 0 {
		form, err := s.store.Form(req.Season)
		if err != nil {
			return req, fmt.Errorf("loading form for %s: %w", req.Season, err)
		}
		for _, f := range form {
			req.Form = append(req.Form, f)
		}
		sort.Slice(req.Form, func(i, j int) bool { return req.Form[i].Team < req.Form[j].Team })
	}
	return req, nil
}

func playerTeams(players []podds.PlayerRecord) []string {
	seen := make(map[string]bool)
	var teams []string
	for _, p := range players {
		if !seen[p.Team] {
			seen[p.Team] = true
			teams = append(teams, p.Team)
		}
	}
	return teams
}

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// lookup finds the entry for a team whose name may be spelled differently in the source
func lookup[V any](m map[string]V, team string) (V, bool) {
	if v, ok := m[team]; ok {
		return v, true
	}
	var zero V
	name, ok := util.ResolveTeamName(team, keys(m))
	if !ok {
		return zero, false
	}
	return m[name], true
}

// LeagueContext scores a table and attaches recent form, keyed by team
// Teams with form but no table row get neutral table signals
func LeagueContext(cfg *podds.Config, standings []podds.Standing, form []podds.FormRecord) (map[string]podds.ContextSignals, []error) {
	signals, errs := podds.BuildLeagueContext(cfg, standings)
	for _, f := range form {
		rating := podds.RateForm(f)
		team := f.Team
		if name, ok := util.ResolveTeamName(f.Team, keys(signals)); ok {
			team = name
		}
		sig, ok := signals[team]
		if !ok {
			sig = podds.ContextSignals{Team: team, Sentiment: 50, Pressure: podds.PressureNeutral}
		}
		sig.Form = &rating
		signals[team] = sig
	}
	return signals, errs
}

// Context resolves team names and builds the match context for a request
func (s *Service) Context(req Request) (podds.MatchContext, *podds.Config, []string, error) {
	cfg, err := s.configFor(req.League)
	if err != nil {
		return podds.MatchContext{}, nil, nil, err
	}
	req, err = s.seasonData(req)
	if err != nil {
		return podds.MatchContext{}, nil, nil, err
	}

	var warnings []string
	teams := playerTeams(req.Players)
	resolve := func(name string) string {
		resolved, ok := util.ResolveTeamName(name, teams)
		if !ok {
			logger.Warn("No players found for team", name)
			warnings = append(warnings, fmt.Sprintf("no players found for %s", name))
			return name
		}
		if !util.IsExactTeamName(name, resolved) {
			logger.Warn("Team name resolved by fuzzy match", name, resolved)
			warnings = append(warnings, fmt.Sprintf("%s resolved as %s", name, resolved))
		}
		return resolved
	}
	home, away := resolve(req.HomeTeam), resolve(req.AwayTeam)
	if home == away {
		return podds.MatchContext{}, nil, nil, fmt.Errorf("%s and %s both resolve to %s: %w",
			req.HomeTeam, req.AwayTeam, home, podds.ErrInvalidInput)
	}

	all, errs := LeagueContext(cfg, req.Standings, req.Form)
	for _, e := range errs {
		warnings = append(warnings, e.Error())
	}
	if s.metrics != nil {
		s.metrics.RecordRejectedRows("standings", len(errs))
	}
	signals := make(map[string]podds.ContextSignals, 2)
	for _, team := range []string{home, away} {
		if sig, ok := lookup(all, team); ok {
			signals[team] = sig
		}
	}

	ctx := podds.NewMatchContext(cfg, home, away, req.Players, signals, !req.Neutral)
	ctx.Venue = req.Venue

	corners := make(map[string]podds.CornerProfile, len(req.Corners))
	for _, c := range req.Corners {
		corners[c.Team] = c
	}
	if c, ok := lookup(corners, home); ok {
		ctx.Home.Corners = &c
	}
	if c, ok := lookup(corners, away); ok {
		ctx.Away.Corners = &c
	}

	for _, agg := range []podds.TeamAggregate{ctx.Home.Aggregate, ctx.Away.Aggregate} {
		if len(agg.Rejected) > 0 {
			warnings = append(warnings, fmt.Sprintf("%s: dropped invalid players %v", agg.Team, agg.Rejected))
			if s.metrics != nil {
				s.metrics.RecordRejectedRows("players", len(agg.Rejected))
			}
		}
	}
	return ctx, cfg, warnings, nil
}

// Evaluate runs one request through the engine and optionally stores it
func (s *Service) Evaluate(ctx context.Context, req Request) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	result, err := s.evaluate(req)
	if s.metrics != nil {
		var goals float64
		if err == nil {
			goals = result.Evaluation.Summary.ExpectedGoals
		}
		s.metrics.RecordEvaluation(time.Since(start), goals, err)
	}
	if err != nil {
		logger.Warn("Evaluation failed", req.HomeTeam, req.AwayTeam, err)
		return nil, err
	}
	logger.Info("Evaluated", result.Evaluation.Summary.HomeTeam, "vs", result.Evaluation.Summary.AwayTeam,
		"value bets:", len(result.Evaluation.ValueBets))
	return result, nil
}

func (s *Service) evaluate(req Request) (*Result, error) {
	match, cfg, warnings, err := s.Context(req)
	if err != nil {
		return nil, err
	}
	odds := req.Odds
	if odds == nil {
		odds = podds.OddsQuote{}
	}

	eval, err := podds.Evaluate(cfg, match, odds)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		for _, b := range eval.ValueBets {
			s.metrics.RecordValueBet(b.Market, b.Edge)
		}
		s.metrics.RecordRejectedOdds(len(eval.RejectedOdds))
	}

	result := &Result{Warnings: warnings, Evaluation: eval}
	if req.Save && s.store != nil {
		id, err := s.store.SaveEvaluation(req.Season, eval)
		if err != nil {
			return nil, fmt.Errorf("saving evaluation: %w", err)
		}
		result.ID, result.Saved = id, true
	} else {
		result.ID = uuid.NewString()
	}
	return result, nil
}

// EvaluateBatch evaluates independent requests concurrently
// Results and errors are returned in input order, a failed request leaves a nil result
func (s *Service) EvaluateBatch(ctx context.Context, reqs []Request) ([]*Result, []error) {
	results := make([]*Result, len(reqs))
	errs := make([]error, len(reqs))

	workers := s.cfg.Workers
	if workers < 1 {
		workers = 1
	}
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i, req := range reqs {
		wg.Add(1)
		go func(i int, req Request) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				errs[i] = ctx.Err()
				return
			}
			defer func() { <-sem }()
			results[i], errs[i] = s.Evaluate(ctx, req)
		}(i, req)
	}
	wg.Wait()
	return results, errs
}
