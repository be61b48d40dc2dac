package store

import (
	"fmt"
	"time"

	"github.com/richard-senior/matchodds/pkg/podds"
)

// PlayerRow is one player's season line
type PlayerRow struct {
	Season  string  `json:"season" column:"season" dbtype:"TEXT NOT NULL" primary:"true"`
	Team    string  `json:"team" column:"team" dbtype:"TEXT NOT NULL" primary:"true" index:"true"`
	Player  string  `json:"player" column:"player" dbtype:"TEXT NOT NULL" primary:"true"`
	Role    string  `json:"role" column:"role" dbtype:"TEXT"`
	Goals   float64 `json:"goals" column:"goals" dbtype:"REAL DEFAULT 0"`
	Assists float64 `json:"assists" column:"assists" dbtype:"REAL DEFAULT 0"`
	XG      float64 `json:"xg" column:"xg" dbtype:"REAL DEFAULT 0"`
	XA      float64 `json:"xa" column:"xa" dbtype:"REAL DEFAULT 0"`
	Minutes float64 `json:"minutes" column:"minutes" dbtype:"REAL DEFAULT 0"`

	// Optional columns stay NULL when the source did not supply them
	NPXG               *float64 `json:"npxg" column:"npxg" dbtype:"REAL"`
	ProgressivePasses  *float64 `json:"progressivePasses" column:"progressive_passes" dbtype:"REAL"`
	ProgressiveCarries *float64 `json:"progressiveCarries" column:"progressive_carries" dbtype:"REAL"`
	Tackles            *float64 `json:"tackles" column:"tackles" dbtype:"REAL"`
	Interceptions      *float64 `json:"interceptions" column:"interceptions" dbtype:"REAL"`
	Clearances         *float64 `json:"clearances" column:"clearances" dbtype:"REAL"`
	Blocks             *float64 `json:"blocks" column:"blocks" dbtype:"REAL"`
	YellowCards        *float64 `json:"yellowCards" column:"yellow_cards" dbtype:"REAL"`
	RedCards           *float64 `json:"redCards" column:"red_cards" dbtype:"REAL"`

	UpdatedAt time.Time `json:"updatedAt" column:"updated_at" dbtype:"DATETIME"`
}

// NewPlayerRow wraps a record for the given season
func NewPlayerRow(season string, p podds.PlayerRecord) *PlayerRow {
	return &PlayerRow{
		Season:             season,
		Team:               p.Team,
		Player:             p.Player,
		Role:               p.Role,
		Goals:              p.Goals,
		Assists:            p.Assists,
		XG:                 p.XG,
		XA:                 p.XA,
		Minutes:            p.Minutes,
		NPXG:               p.NPXG,
		ProgressivePasses:  p.ProgressivePasses,
		ProgressiveCarries: p.ProgressiveCarries,
		Tackles:            p.Tackles,
		Interceptions:      p.Interceptions,
		Clearances:         p.Clearances,
		Blocks:             p.Blocks,
		YellowCards:        p.YellowCards,
		RedCards:           p.RedCards,
	}
}

// Record converts the row back into the model's input type
func (r *PlayerRow) Record() podds.PlayerRecord {
	return podds.PlayerRecord{
		Player:             r.Player,
		Team:               r.Team,
		Role:               r.Role,
		Goals:              r.Goals,
		Assists:            r.Assists,
		XG:                 r.XG,
		XA:                 r.XA,
		Minutes:            r.Minutes,
		NPXG:               r.NPXG,
		ProgressivePasses:  r.ProgressivePasses,
		ProgressiveCarries: r.ProgressiveCarries,
		Tackles:            r.Tackles,
		Interceptions:      r.Interceptions,
		Clearances:         r.Clearances,
		Blocks:             r.Blocks,
		YellowCards:        r.YellowCards,
		RedCards:           r.RedCards,
	}
}

func (r *PlayerRow) GetTableName() string { return "players" }

func (r *PlayerRow) GetPrimaryKey() map[string]interface{} {
	return map[string]interface{}{"season": r.Season, "team": r.Team, "player": r.Player}
}

func (r *PlayerRow) BeforeSave() error {
	if r.Season == "" || r.Team == "" || r.Player == "" {
		return fmt.Errorf("player row needs season, team and player")
	}
	r.UpdatedAt = time.Now()
	return nil
}

// StandingRow is one league table row
type StandingRow struct {
	Season       string    `json:"season" column:"season" dbtype:"TEXT NOT NULL" primary:"true"`
	Team         string    `json:"team" column:"team" dbtype:"TEXT NOT NULL" primary:"true"`
	Position     int       `json:"position" column:"position" dbtype:"INTEGER NOT NULL" index:"true"`
	Played       int       `json:"played" column:"played" dbtype:"INTEGER DEFAULT 0"`
	Won          int       `json:"won" column:"won" dbtype:"INTEGER DEFAULT 0"`
	Drawn        int       `json:"drawn" column:"drawn" dbtype:"INTEGER DEFAULT 0"`
	Lost         int       `json:"lost" column:"lost" dbtype:"INTEGER DEFAULT 0"`
	GoalsFor     float64   `json:"goalsFor" column:"goals_for" dbtype:"REAL DEFAULT 0"`
	GoalsAgainst float64   `json:"goalsAgainst" column:"goals_against" dbtype:"REAL DEFAULT 0"`
	Points       float64   `json:"points" column:"points" dbtype:"REAL DEFAULT 0"`
	UpdatedAt    time.Time `json:"updatedAt" column:"updated_at" dbtype:"DATETIME"`
}

func NewStandingRow(season string, s podds.Standing) *StandingRow {
	return &StandingRow{
		Season:       season,
		Team:         s.Team,
		Position:     s.Position,
		Played:       s.Played,
		Won:          s.Won,
		Drawn:        s.Drawn,
		Lost:         s.Lost,
		GoalsFor:     s.GoalsFor,
		GoalsAgainst: s.GoalsAgainst,
		Points:       s.Points,
	}
}

func (r *StandingRow) Standing() podds.Standing {
	return podds.Standing{
		Team:         r.Team,
		Position:     r.Position,
		Played:       r.Played,
		Won:          r.Won,
		Drawn:        r.Drawn,
		Lost:         r.Lost,
		GoalsFor:     r.GoalsFor,
		GoalsAgainst: r.GoalsAgainst,
		Points:       r.Points,
	}
}

func (r *StandingRow) GetTableName() string { return "standings" }

func (r *StandingRow) GetPrimaryKey() map[string]interface{} {
	return map[string]interface{}{"season": r.Season, "team": r.Team}
}

func (r *StandingRow) BeforeSave() error {
	if r.Season == "" || r.Team == "" {
		return fmt.Errorf("standing row needs season and team")
	}
	r.UpdatedAt = time.Now()
	return nil
}

// CornerRow is a team's season corner record
type CornerRow struct {
	Season                 string    `json:"season" column:"season" dbtype:"TEXT NOT NULL" primary:"true"`
	Team                   string    `json:"team" column:"team" dbtype:"TEXT NOT NULL" primary:"true"`
	CornersForPerMatch     float64   `json:"cornersForPerMatch" column:"corners_for" dbtype:"REAL DEFAULT 0"`
	CornersAgainstPerMatch float64   `json:"cornersAgainstPerMatch" column:"corners_against" dbtype:"REAL DEFAULT 0"`
	TotalCornersPerMatch   float64   `json:"totalCornersPerMatch" column:"corners_total" dbtype:"REAL DEFAULT 0"`
	Over85                 float64   `json:"over85" column:"over_85" dbtype:"REAL DEFAULT 0"`
	Over95                 float64   `json:"over95" column:"over_95" dbtype:"REAL DEFAULT 0"`
	Over105                float64   `json:"over105" column:"over_105" dbtype:"REAL DEFAULT 0"`
	UpdatedAt              time.Time `json:"updatedAt" column:"updated_at" dbtype:"DATETIME"`
}

func NewCornerRow(season string, c podds.CornerProfile) *CornerRow {
	c = c.Normalize()
	return &CornerRow{
		Season:                 season,
		Team:                   c.Team,
		CornersForPerMatch:     c.CornersForPerMatch,
		CornersAgainstPerMatch: c.CornersAgainstPerMatch,
		TotalCornersPerMatch:   c.TotalCornersPerMatch,
		Over85:                 c.Over85,
		Over95:                 c.Over95,
		Over105:                c.Over105,
	}
}

func (r *CornerRow) Profile() podds.CornerProfile {
	return podds.CornerProfile{
		Team:                   r.Team,
		CornersForPerMatch:     r.CornersForPerMatch,
		CornersAgainstPerMatch: r.CornersAgainstPerMatch,
		TotalCornersPerMatch:   r.TotalCornersPerMatch,
		Over85:                 r.Over85,
		Over95:                 r.Over95,
		Over105:                r.Over105,
	}
}

func (r *CornerRow) GetTableName() string { return "corners" }

func (r *CornerRow) GetPrimaryKey() map[string]interface{} {
	return map[string]interface{}{"season": r.Season, "team": r.Team}
}

func (r *CornerRow) BeforeSave() error {
	if r.Season == "" || r.Team == "" {
		return fmt.Errorf("corner row needs season and team")
	}
	r.UpdatedAt = time.Now()
	return nil
}

// FormRow is a team's recent results line
type FormRow struct {
	Season       string    `json:"season" column:"season" dbtype:"TEXT NOT NULL" primary:"true"`
	Team         string    `json:"team" column:"team" dbtype:"TEXT NOT NULL" primary:"true"`
	GamesPlayed  int       `json:"gp" column:"games_played" dbtype:"INTEGER DEFAULT 0"`
	Points       float64   `json:"pts" column:"points" dbtype:"REAL DEFAULT 0"`
	GoalsFor     float64   `json:"gf" column:"goals_for" dbtype:"REAL DEFAULT 0"`
	GoalsAgainst float64   `json:"ga" column:"goals_against" dbtype:"REAL DEFAULT 0"`
	OpponentsPPG float64   `json:"opponentsPpg" column:"opponents_ppg" dbtype:"REAL DEFAULT 0"`
	UpdatedAt    time.Time `json:"updatedAt" column:"updated_at" dbtype:"DATETIME"`
}

func NewFormRow(season string, f podds.FormRecord) *FormRow {
	return &FormRow{
		Season:       season,
		Team:         f.Team,
		GamesPlayed:  f.GamesPlayed,
		Points:       f.Points,
		GoalsFor:     f.GoalsFor,
		GoalsAgainst: f.GoalsAgainst,
		OpponentsPPG: f.OpponentsPPG,
	}
}

func (r *FormRow) Record() podds.FormRecord {
	return podds.FormRecord{
		Team:         r.Team,
		GamesPlayed:  r.GamesPlayed,
		Points:       r.Points,
		GoalsFor:     r.GoalsFor,
		GoalsAgainst: r.GoalsAgainst,
		OpponentsPPG: r.OpponentsPPG,
	}
}

func (r *FormRow) GetTableName() string { return "form" }

func (r *FormRow) GetPrimaryKey() map[string]interface{} {
	return map[string]interface{}{"season": r.Season, "team": r.Team}
}

func (r *FormRow) BeforeSave() error {
	if r.Season == "" || r.Team == "" {
		return fmt.Errorf("form row needs season and team")
	}
	r.UpdatedAt = time.Now()
	return nil
}

// EvaluationRow records one finished evaluation, Payload holds the full JSON result
type EvaluationRow struct {
	ID         string    `json:"id" column:"id" dbtype:"TEXT" primary:"true"`
	Season     string    `json:"season" column:"season" dbtype:"TEXT"`
	HomeTeam   string    `json:"homeTeam" column:"home_team" dbtype:"TEXT NOT NULL" index:"true"`
	AwayTeam   string    `json:"awayTeam" column:"away_team" dbtype:"TEXT NOT NULL" index:"true"`
	LambdaHome float64   `json:"lambdaHome" column:"lambda_home" dbtype:"REAL"`
	LambdaAway float64   `json:"lambdaAway" column:"lambda_away" dbtype:"REAL"`
	HomeWin    float64   `json:"homeWin" column:"home_win" dbtype:"REAL"`
	Draw       float64   `json:"draw" column:"draw" dbtype:"REAL"`
	AwayWin    float64   `json:"awayWin" column:"away_win" dbtype:"REAL"`
	Payload    string    `json:"-" column:"payload" dbtype:"TEXT"`
	CreatedAt  time.Time `json:"createdAt" column:"created_at" dbtype:"DATETIME"`
}

func (r *EvaluationRow) GetTableName() string { return "evaluations" }

func (r *EvaluationRow) GetPrimaryKey() map[string]interface{} {
	return map[string]interface{}{"id": r.ID}
}

func (r *EvaluationRow) BeforeSave() error {
	if r.ID == "" {
		return fmt.Errorf("evaluation row has no id")
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	return nil
}

// ValueBetRow is one flagged bet belonging to an evaluation
// Stake is kept as a decimal string so amounts survive exactly
type ValueBetRow struct {
	EvaluationID  string  `json:"evaluationId" column:"evaluation_id" dbtype:"TEXT NOT NULL" primary:"true" fk:"evaluations.id" fk_delete:"CASCADE"`
	Rank          int     `json:"rank" column:"bet_rank" dbtype:"INTEGER NOT NULL" primary:"true"`
	Market        string  `json:"market" column:"market" dbtype:"TEXT NOT NULL" index:"true"`
	Outcome       string  `json:"outcome" column:"outcome" dbtype:"TEXT NOT NULL"`
	Odds          float64 `json:"odds" column:"odds" dbtype:"REAL"`
	Probability   float64 `json:"probability" column:"probability" dbtype:"REAL"`
	Edge          float64 `json:"edge" column:"edge" dbtype:"REAL"`
	ExpectedValue float64 `json:"expectedValue" column:"expected_value" dbtype:"REAL"`
	Kelly         float64 `json:"kelly" column:"kelly" dbtype:"REAL"`
	Stake         string  `json:"stake" column:"stake" dbtype:"TEXT"`
}

func (r *ValueBetRow) GetTableName() string { return "value_bets" }

func (r *ValueBetRow) GetPrimaryKey() map[string]interface{} {
	return map[string]interface{}{"evaluation_id": r.EvaluationID, "bet_rank": r.Rank}
}

func (r *ValueBetRow) BeforeSave() error {
	if r.EvaluationID == "" {
		return fmt.Errorf("value bet row has no evaluation id")
	}
	return nil
}
