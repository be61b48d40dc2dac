// Package store keeps imported season data and finished evaluations in SQLite
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/richard-senior/matchodds/internal/logger"
	"github.com/richard-senior/matchodds/pkg/podds"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

// Store is a handle on one SQLite database
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the database at path and migrates it
// ":memory:" gives a private in-memory database
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one connection keeps an in-memory database alive and serialises writers
	db.SetMaxOpenConns(1)

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err = db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &Store{db: db, path: path}
	if err = s.Migrate(); err != nil {
		db.Close()
		return nil, err
	}
	logger.Info("Database initialized successfully", path)
	return s, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path is the location the store was opened with
func (s *Store) Path() string {
	return s.path
}

// Migrate creates all necessary database tables
func (s *Store) Migrate() error {
	logger.Debug("Creating database tables")
	tables := []Persistable{
		&PlayerRow{},
		&StandingRow{},
		&CornerRow{},
		&FormRow{},
		&EvaluationRow{},
		&ValueBetRow{},
	}
	for _, t := range tables {
		if err := s.CreateTable(t); err != nil {
			return err
		}
	}
	return nil
}

////// Season data

// SavePlayers upserts each player row for the season in one transaction
func (s *Store) SavePlayers(season string, players []podds.PlayerRecord) error {
	objects := make([]Persistable, 0, len(players))
	for _, p := range players {
		objects = append(objects, NewPlayerRow(season, p))
	}
	return s.BulkSave(objects)
}

// Players returns the season's player rows for the named teams, or every team when none are named
func (s *Store) Players(season string, teams ...string) ([]podds.PlayerRecord, error) {
	where, args := seasonTeamsClause(season, teams)
	rows, err := FindWhere[PlayerRow](s, where+" ORDER BY team, player", args...)
	if err != nil {
		return nil, err
	}
	out := make([]podds.PlayerRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Record())
	}
	return out, nil
}

func (s *Store) SaveStandings(season string, standings []podds.Standing) error {
	objects := make([]Persistable, 0, len(standings))
	for _, st := range standings {
		objects = append(objects, NewStandingRow(season, st))
	}
	return s.BulkSave(objects)
}

// Standings returns the season's table in position order
func (s *Store) Standings(season string) ([]podds.Standing, error) {
	rows, err := FindWhere[StandingRow](s, "season = ? ORDER BY position", season)
	if err != nil {
		return nil, err
	}
	out := make([]podds.Standing, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Standing())
	}
	return out, nil
}

func (s *Store) SaveCorners(season string, profiles []podds.CornerProfile) error {
	objects := make([]Persistable, 0, len(profiles))
	for _, c := range profiles {
		objects = append(objects, NewCornerRow(season, c))
	}
	return s.BulkSave(objects)
}

// Corners returns the season's corner profiles keyed by team
func (s *Store) Corners(season string, teams ...string) (map[string]podds.CornerProfile, error) {
	where, args := seasonTeamsClause(season, teams)
	rows, err := FindWhere[CornerRow](s, where, args...)
	if err != nil {
		return nil, err
	}
	out := make(map[string]podds.CornerProfile, len(rows))
	for _, r := range rows {
		out[r.Team] = r.Profile()
	}
	return out, nil
}

func (s *Store) SaveForm(season string, records []podds.FormRecord) error {
	objects := make([]Persistable, 0, len(records))
	for _, f := range records {
		objects = append(objects, NewFormRow(season, f))
	}
	return s.BulkSave(objects)
}

// Form returns the season's recent-form lines keyed by team
func (s *Store) Form(season string, teams ...string) (map[string]podds.FormRecord, error) {
	where, args := seasonTeamsClause(season, teams)
	rows, err := FindWhere[FormRow](s, where, args...)
	if err != nil {
		return nil, err
	}
	out := make(map[string]podds.FormRecord, len(rows))
	for _, r := range rows {
		out[r.Team] = r.Record()
	}
	return out, nil
}

func seasonTeamsClause(season string, teams []string) (string, []interface{}) {
	args := []interface{}{season}
	if len(teams) == 0 {
		return "season = ?", args
	}
	marks := make([]string, len(teams))
	for i, t := range teams {
		marks[i] = "?"
		args = append(args, t)
	}
	return fmt.Sprintf("season = ? AND team IN (%s)", strings.Join(marks, ", ")), args
}

////// Evaluations

// SaveEvaluation stores an evaluation and its value bets in one transaction and returns its id
func (s *Store) SaveEvaluation(season string, eval *podds.Evaluation) (string, error) {
	payload, err := json.Marshal(eval)
	if err != nil {
		return "", fmt.Errorf("failed to encode evaluation: %w", err)
	}
	row := &EvaluationRow{
		ID:         uuid.NewString(),
		Season:     season,
		HomeTeam:   eval.Summary.HomeTeam,
		AwayTeam:   eval.Summary.AwayTeam,
		LambdaHome: eval.Summary.LambdaHome,
		LambdaAway: eval.Summary.LambdaAway,
		HomeWin:    eval.Summary.HomeWin,
		Draw:       eval.Summary.Draw,
		AwayWin:    eval.Summary.AwayWin,
		Payload:    string(payload),
	}

	objects := []Persistable{row}
	for i, b := range eval.ValueBets {
		objects = append(objects, &ValueBetRow{
			EvaluationID:  row.ID,
			Rank:          i + 1,
			Market:        b.Market,
			Outcome:       b.Outcome,
			Odds:          b.Odds,
			Probability:   b.Probability,
			Edge:          b.Edge,
			ExpectedValue: b.ExpectedValue,
			Kelly:         b.Kelly,
			Stake:         b.Stake.String(),
		})
	}
	if err := s.BulkSave(objects); err != nil {
		return "", err
	}
	logger.Debug("Saved evaluation", row.ID, row.HomeTeam, row.AwayTeam)
	return row.ID, nil
}

// Evaluation loads a stored evaluation by id
func (s *Store) Evaluation(id string) (*podds.Evaluation, error) {
	row := &EvaluationRow{ID: id}
	if err := s.FindByPrimaryKey(row); err != nil {
		return nil, err
	}
	var eval podds.Evaluation
	if err := json.Unmarshal([]byte(row.Payload), &eval); err != nil {
		return nil, fmt.Errorf("failed to decode evaluation %s: %w", id, err)
	}
	return &eval, nil
}

// Evaluations lists the most recent evaluations, newest first
func (s *Store) Evaluations(limit int) ([]*EvaluationRow, error) {
	if limit <= 0 {
		limit = 20
	}
	return FindWhere[EvaluationRow](s, "1 = 1 ORDER BY created_at DESC, id LIMIT ?", limit)
}

// ValueBets returns the bets flagged by an evaluation in rank order
func (s *Store) ValueBets(evaluationID string) ([]podds.ValueBet, error) {
	rows, err := FindWhere[ValueBetRow](s, "evaluation_id = ? ORDER BY bet_rank", evaluationID)
	if err != nil {
		return nil, err
	}
	out := make([]podds.ValueBet, 0, len(rows))
	for _, r := range rows {
		stake, err := decimal.NewFromString(r.Stake)
		if err != nil {
			return nil, fmt.Errorf("value bet %s/%d has invalid stake %q: %w", r.EvaluationID, r.Rank, r.Stake, err)
		}
		out = append(out, podds.ValueBet{
			Market:             r.Market,
			Outcome:            r.Outcome,
			Odds:               r.Odds,
			Probability:        r.Probability,
			ImpliedProbability: 1 / r.Odds,
			Edge:               r.Edge,
			ExpectedValue:      r.ExpectedValue,
			Kelly:              r.Kelly,
			Stake:              stake,
		})
	}
	return out, nil
}

// DeleteEvaluation removes an evaluation, its value bets go with it
func (s *Store) DeleteEvaluation(id string) error {
	return s.Delete(&EvaluationRow{ID: id})
}
