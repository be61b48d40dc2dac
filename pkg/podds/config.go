package podds

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// AttackWeights are the coefficients used to combine a squad's season totals into an attack index
type AttackWeights struct {
	Goals   float64 `yaml:"goals" json:"goals"`
	Assists float64 `yaml:"assists" json:"assists"`
	XG      float64 `yaml:"xg" json:"xg"`
	XA      float64 `yaml:"xa" json:"xa"`
}

// LeagueProfile holds the constants that differ between competitions
// Zero values mean "use the engine default"
type LeagueProfile struct {
	Name                  string  `yaml:"name" json:"name"`
	BaseHomeRate          float64 `yaml:"base_home_rate" json:"baseHomeRate"`
	BaseAwayRate          float64 `yaml:"base_away_rate" json:"baseAwayRate"`
	GamesPerSeason        int     `yaml:"games_per_season" json:"gamesPerSeason"`
	ChampionsLeagueSpots  int     `yaml:"champions_league_spots" json:"championsLeagueSpots"`
	EuropaLeagueSpots     int     `yaml:"europa_league_spots" json:"europaLeagueSpots"`
	EuropeanChaseTo       int     `yaml:"european_chase_to" json:"europeanChaseTo"`
	RelegationSpots       int     `yaml:"relegation_spots" json:"relegationSpots"`
	RelegationThreatSpots int     `yaml:"relegation_threat_spots" json:"relegationThreatSpots"`
}

// Config contains every tunable parameter of the prediction pipeline
// This centralizes all magic numbers so a league variant is configuration rather than code
type Config struct {
	// === CORE PREDICTION PARAMETERS ===

	BaseHomeRate   float64 `yaml:"base_home_rate"`   // league-average home goals (default: 1.6)
	BaseAwayRate   float64 `yaml:"base_away_rate"`   // league-average away goals (default: 1.2)
	MaxGoals       int     `yaml:"max_goals"`        // goal grid is 0..MaxGoals, must be >= 6 (default: 10)
	MinTotalAttack float64 `yaml:"min_total_attack"` // floor for the attack normaliser (default: 1e-6)
	TopScorelines  int     `yaml:"top_scorelines"`   // number of most likely scorelines reported (default: 5)

	// === STRENGTH AGGREGATION ===

	AttackWeights           AttackWeights `yaml:"attack_weights"`
	StyleThreshold          float64       `yaml:"style_threshold"`           // share of a role bucket that sets the style (default: 0.4)
	DefenseRateScale        float64       `yaml:"defense_rate_scale"`        // defense ratio -> dampening coefficient (default: 0.3)
	EmptyDefenseRatio       float64       `yaml:"empty_defense_ratio"`       // neutral defense ratio for an empty squad (default: 0.5)
	NeutralEfficiency       float64       `yaml:"neutral_efficiency"`        // efficiency when a squad has no xG (default: 0.5)
	MaxEfficiency           float64       `yaml:"max_efficiency"`            // cap on goals/xG (default: 2.0)
	ProgressiveThreatWeight float64       `yaml:"progressive_threat_weight"` // progressive actions -> creative threat (default: 0.05)
	CreativeThreatScale     float64       `yaml:"creative_threat_scale"`     // creative threat normaliser (default: 10)

	// === CONTEXT ADJUSTMENT ===

	StyleBonus                    float64 `yaml:"style_bonus"`                     // default: 0.2
	EfficiencyBonus               float64 `yaml:"efficiency_bonus"`                // default: 0.3
	FormBonus                     float64 `yaml:"form_bonus"`                      // default: 0.3
	MomentumBonus                 float64 `yaml:"momentum_bonus"`                  // default: 0.2
	DefenseFormBonus              float64 `yaml:"defense_form_bonus"`              // default: 0.4
	ChampionsLeagueBoost          float64 `yaml:"champions_league_boost"`          // default: 1.20
	EuropaLeagueBoost             float64 `yaml:"europa_league_boost"`             // default: 1.15
	RelegationBoost               float64 `yaml:"relegation_boost"`                // HIGH_RELEGATION (default: 1.15)
	CriticalRelegationBoost       float64 `yaml:"critical_relegation_boost"`       // CRITICAL_RELEGATION (default: 1.15)
	HomeAdvantage                 float64 `yaml:"home_advantage"`                  // default: 1.05
	HomeEuropeanBoost             float64 `yaml:"home_european_boost"`             // default: 1.10
	HomeRelegationBoost           float64 `yaml:"home_relegation_boost"`           // default: 1.08
	SentimentWeight               float64 `yaml:"sentiment_weight"`                // per sentiment point (default: 0.004)
	RelegationSentimentMultiplier float64 `yaml:"relegation_sentiment_multiplier"` // default: 1.5
	RoleAttackWeight              float64 `yaml:"role_attack_weight"`              // 0 disables (original: 0.3)
	RoleDefenseWeight             float64 `yaml:"role_defense_weight"`             // 0 disables (original: 0.5)
	MaxDefenseRate                float64 `yaml:"max_defense_rate"`                // must stay below 1 (default: 0.95)

	// === DERIVED MARKETS ===

	GoalLines                 []float64 `yaml:"goal_lines"`                   // over/under lines (default: 0.5..4.5)
	BTTSWeight                float64   `yaml:"btts_weight"`                  // default: 0.8
	BTTSMin                   float64   `yaml:"btts_min"`                     // default: 0.1
	BTTSMax                   float64   `yaml:"btts_max"`                     // default: 0.9
	FirstHalfShare            float64   `yaml:"first_half_share"`             // default: 0.43
	AttackingFirstHalfBonus   float64   `yaml:"attacking_first_half_bonus"`   // default: 0.05
	DefensiveFirstHalfPenalty float64   `yaml:"defensive_first_half_penalty"` // default: 0.03
	CorrectScoreMax           int       `yaml:"correct_score_max"`            // default: 3

	// === VALUE DETECTION ===

	EdgeThreshold float64 `yaml:"edge_threshold"` // minimum edge to report (default: 0.05)
	KellyFraction float64 `yaml:"kelly_fraction"` // fractional Kelly safety factor (default: 0.25)
	Bankroll      float64 `yaml:"bankroll"`       // optional, enables stake amounts (default: 0)

	// === LEAGUES ===

	League  LeagueProfile            `yaml:"league"`
	Leagues map[string]LeagueProfile `yaml:"leagues"`

	// === SERVICE ===

	Workers int `yaml:"workers"` // concurrent evaluations in a batch (default: 4)
}

// DefaultLeagueProfile is a 20 team, 38 game league with four Champions League places
func DefaultLeagueProfile() LeagueProfile {
	return LeagueProfile{
		Name:                  "default",
		GamesPerSeason:        38,
		ChampionsLeagueSpots:  4,
		EuropaLeagueSpots:     3,
		EuropeanChaseTo:       10,
		RelegationSpots:       3,
		RelegationThreatSpots: 6,
	}
}

// DefaultConfig returns the default configuration with all standard values
func DefaultConfig() *Config {
	eighteenTeam := DefaultLeagueProfile()
	eighteenTeam.GamesPerSeason = 34

	bundesliga := eighteenTeam
	bundesliga.Name = "bundesliga"
	ligue1 := eighteenTeam
	ligue1.Name = "ligue-1"
	ligue1.ChampionsLeagueSpots = 3

	premier := DefaultLeagueProfile()
	premier.Name = "premier-league"
	laliga := DefaultLeagueProfile()
	laliga.Name = "la-liga"
	seriea := DefaultLeagueProfile()
	seriea.Name = "serie-a"

	return &Config{
		// === CORE PREDICTION PARAMETERS ===
		BaseHomeRate:   1.6,
		BaseAwayRate:   1.2,
		MaxGoals:       10,
		MinTotalAttack: 1e-6,
		TopScorelines:  5,

		// === STRENGTH AGGREGATION ===
		AttackWeights: AttackWeights{
			Goals:   3.0,
			Assists: 2.5,
			XG:      2.0,
			XA:      1.5,
		},
		StyleThreshold:          0.4,
		DefenseRateScale:        0.3,
		EmptyDefenseRatio:       0.5,
		NeutralEfficiency:       0.5,
		MaxEfficiency:           2.0,
		ProgressiveThreatWeight: 0.05,
		CreativeThreatScale:     10,

		// === CONTEXT ADJUSTMENT ===
		StyleBonus:                    0.2,
		EfficiencyBonus:               0.3,
		FormBonus:                     0.3,
		MomentumBonus:                 0.2,
		DefenseFormBonus:              0.4,
		ChampionsLeagueBoost:          1.20,
		EuropaLeagueBoost:             1.15,
		RelegationBoost:               1.15,
		CriticalRelegationBoost:       1.15,
		HomeAdvantage:                 1.05,
		HomeEuropeanBoost:             1.10,
		HomeRelegationBoost:           1.08,
		SentimentWeight:               0.004,
		RelegationSentimentMultiplier: 1.5,
		RoleAttackWeight:              0,
		RoleDefenseWeight:             0,
		MaxDefenseRate:                0.95,

		// === DERIVED MARKETS ===
		GoalLines:                 []float64{0.5, 1.5, 2.5, 3.5, 4.5},
		BTTSWeight:                0.8,
		BTTSMin:                   0.1,
		BTTSMax:                   0.9,
		FirstHalfShare:            0.43,
		AttackingFirstHalfBonus:   0.05,
		DefensiveFirstHalfPenalty: 0.03,
		CorrectScoreMax:           3,

		// === VALUE DETECTION ===
		EdgeThreshold: 0.05,
		KellyFraction: 0.25,
		Bankroll:      0,

		// === LEAGUES ===
		League: DefaultLeagueProfile(),
		Leagues: map[string]LeagueProfile{
			premier.Name:    premier,
			laliga.Name:     laliga,
			seriea.Name:     seriea,
			bundesliga.Name: bundesliga,
			ligue1.Name:     ligue1,
		},

		// === SERVICE ===
		Workers: 4,
	}
}

// Clone returns a deep copy so callers can derive a variant without touching the original
func (c *Config) Clone() *Config {
	clone := *c
	clone.GoalLines = append([]float64(nil), c.GoalLines...)
	clone.Leagues = make(map[string]LeagueProfile, len(c.Leagues))
	for k, v := range c.Leagues {
		clone.Leagues[k] = v
	}
	return &clone
}

// ForLeague returns a copy of the config with the named league profile applied
// An empty name returns an unchanged copy
func (c *Config) ForLeague(name string) (*Config, error) {
	clone := c.Clone()
	if name == "" {
		return clone, nil
	}
	profile, ok := c.Leagues[name]
	if !ok {
		return nil, fmt.Errorf("unknown league %q: %w", name, ErrInvalidConfig)
	}
	clone.League = mergeProfile(DefaultLeagueProfile(), profile)
	if profile.BaseHomeRate > 0 {
		clone.BaseHomeRate = profile.BaseHomeRate
	}
	if profile.BaseAwayRate > 0 {
		clone.BaseAwayRate = profile.BaseAwayRate
	}
	return clone, nil
}

// mergeProfile overlays the non-zero fields of p onto base
func mergeProfile(base, p LeagueProfile) LeagueProfile {
	if p.Name != "" {
		base.Name = p.Name
	}
	if p.BaseHomeRate > 0 {
		base.BaseHomeRate = p.BaseHomeRate
	}
	if p.BaseAwayRate > 0 {
		base.BaseAwayRate = p.BaseAwayRate
	}
	if p.GamesPerSeason > 0 {
		base.GamesPerSeason = p.GamesPerSeason
	}
	if p.ChampionsLeagueSpots > 0 {
		base.ChampionsLeagueSpots = p.ChampionsLeagueSpots
	}
	if p.EuropaLeagueSpots > 0 {
		base.EuropaLeagueSpots = p.EuropaLeagueSpots
	}
	if p.EuropeanChaseTo > 0 {
		base.EuropeanChaseTo = p.EuropeanChaseTo
	}
	if p.RelegationSpots > 0 {
		base.RelegationSpots = p.RelegationSpots
	}
	if p.RelegationThreatSpots > 0 {
		base.RelegationThreatSpots = p.RelegationThreatSpots
	}
	return base
}

// === CONFIGURATION LOADING ===

// ParseConfig decodes YAML onto the defaults, so a file only needs the values it changes
func ParseConfig(data []byte) (*Config, error) {
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	config.League = mergeProfile(DefaultLeagueProfile(), config.League)
	for name, profile := range config.Leagues {
		if profile.Name == "" {
			profile.Name = name
		}
		config.Leagues[name] = mergeProfile(DefaultLeagueProfile(), profile)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// LoadConfig reads a YAML configuration file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return ParseConfig(data)
}

// === CONFIGURATION VALIDATION ===

// Validate ensures all configuration values are within reasonable ranges
func (c *Config) Validate() error {
	if c.MaxGoals < 6 {
		return fmt.Errorf("MaxGoals must be at least 6, got: %d: %w", c.MaxGoals, ErrInvalidConfig)
	}
	if c.BaseHomeRate <= 0 || c.BaseAwayRate <= 0 {
		return fmt.Errorf("base rates must be positive, got: %f/%f: %w", c.BaseHomeRate, c.BaseAwayRate, ErrInvalidConfig)
	}
	if c.MinTotalAttack <= 0 {
		return fmt.Errorf("MinTotalAttack must be positive, got: %g: %w", c.MinTotalAttack, ErrInvalidConfig)
	}
	if c.StyleThreshold <= 0 || c.StyleThreshold >= 1 {
		return fmt.Errorf("StyleThreshold must be between 0 and 1, got: %f: %w", c.StyleThreshold, ErrInvalidConfig)
	}
	if c.MaxEfficiency <= 0 {
		return fmt.Errorf("MaxEfficiency must be positive, got: %f: %w", c.MaxEfficiency, ErrInvalidConfig)
	}
	if c.MaxDefenseRate < 0 || c.MaxDefenseRate >= 1 {
		return fmt.Errorf("MaxDefenseRate must be in [0, 1), got: %f: %w", c.MaxDefenseRate, ErrInvalidConfig)
	}
	if c.EmptyDefenseRatio < 0 || c.EmptyDefenseRatio > 1 {
		return fmt.Errorf("EmptyDefenseRatio must be in [0, 1], got: %f: %w", c.EmptyDefenseRatio, ErrInvalidConfig)
	}

	boosts := []struct {
		name  string
		value float64
	}{
		{"ChampionsLeagueBoost", c.ChampionsLeagueBoost},
		{"EuropaLeagueBoost", c.EuropaLeagueBoost},
		{"RelegationBoost", c.RelegationBoost},
		{"CriticalRelegationBoost", c.CriticalRelegationBoost},
		{"HomeAdvantage", c.HomeAdvantage},
		{"HomeEuropeanBoost", c.HomeEuropeanBoost},
		{"HomeRelegationBoost", c.HomeRelegationBoost},
	}
	for _, b := range boosts {
		if b.value < 1.0 || b.value > 1.5 {
			return fmt.Errorf("%s should be between 1.0 and 1.5, got: %f: %w", b.name, b.value, ErrInvalidConfig)
		}
	}

	if c.BTTSMin < 0 || c.BTTSMax > 1 || c.BTTSMin > c.BTTSMax {
		return fmt.Errorf("BTTS bounds must satisfy 0 <= min <= max <= 1, got: %f/%f: %w", c.BTTSMin, c.BTTSMax, ErrInvalidConfig)
	}
	if c.FirstHalfShare <= 0 || c.FirstHalfShare >= 1 {
		return fmt.Errorf("FirstHalfShare must be between 0 and 1, got: %f: %w", c.FirstHalfShare, ErrInvalidConfig)
	}
	for _, line := range c.GoalLines {
		if line < 0 || math.Mod(line, 1) != 0.5 {
			return fmt.Errorf("goal lines must be half-lines such as 2.5, got: %v: %w", line, ErrInvalidConfig)
		}
	}
	if c.CorrectScoreMax < 0 || c.CorrectScoreMax > c.MaxGoals {
		return fmt.Errorf("CorrectScoreMax must be in [0, MaxGoals], got: %d: %w", c.CorrectScoreMax, ErrInvalidConfig)
	}
	if c.EdgeThreshold < 0 || c.EdgeThreshold >= 1 {
		return fmt.Errorf("EdgeThreshold must be in [0, 1), got: %f: %w", c.EdgeThreshold, ErrInvalidConfig)
	}
	if c.KellyFraction <= 0 || c.KellyFraction > 1 {
		return fmt.Errorf("KellyFraction must be in (0, 1], got: %f: %w", c.KellyFraction, ErrInvalidConfig)
	}
	if c.Bankroll < 0 {
		return fmt.Errorf("Bankroll cannot be negative, got: %f: %w", c.Bankroll, ErrInvalidConfig)
	}
	if c.League.GamesPerSeason <= 0 {
		return fmt.Errorf("GamesPerSeason must be positive, got: %d: %w", c.League.GamesPerSeason, ErrInvalidConfig)
	}
	return nil
}
