package podds

import (
	"fmt"
	"sort"
	"strings"
)

// Insight is one descriptive line of match analysis
type Insight struct {
	Category string `json:"category"`
	Text     string `json:"text"`
}

// Insight categories
const (
	InsightMatch       = "Match Analysis"
	InsightXG          = "xG Insights"
	InsightRoles       = "Role-Based Matchup"
	InsightForm        = "Form Analysis"
	InsightEuropean    = "European Qualification Analysis"
	InsightRelegation  = "Relegation Pressure Analysis"
	InsightCorners     = "Corner Markets"
	InsightHalfTime    = "Half-Time Scoring"
	InsightPrediction  = "Match Result"
	InsightLikelyScore = "Likely Scores"
)

// Confidence summarises how decisive the forecast is
type Confidence struct {
	// Margin is the gap between the most and second most likely 1X2 outcome
	Margin              float64 `json:"margin"`
	MatchType           string  `json:"matchType"`
	EfficiencyAdvantage string  `json:"efficiencyAdvantage"`
	GoalExpectation     string  `json:"goalExpectation"`
}

// EfficiencyAdvantage explains which side finishes its chances better
func EfficiencyAdvantage(homeEff, awayEff float64, home, away string) string {
	describe := func(team string, advantage float64) string {
		switch {
		case advantage > 0.3:
			return fmt.Sprintf("STRONG advantage to %s - much more clinical finishing", team)
		case advantage > 0.15:
			return fmt.Sprintf("Moderate advantage to %s - better finishing quality", team)
		default:
			return fmt.Sprintf("Slight advantage to %s - marginally better finishing", team)
		}
	}
	switch {
	case homeEff > awayEff && homeEff > 1.1:
		return describe(home, homeEff-awayEff)
	case awayEff > homeEff && awayEff > 1.1:
		return describe(away, awayEff-homeEff)
	case homeEff > 1.1 && awayEff > 1.1:
		return "Both teams efficient - expect clinical finishing from both sides"
	case homeEff < 0.9 && awayEff < 0.9:
		return "Both teams inefficient - may waste scoring opportunities"
	default:
		return "Similar finishing efficiency - no clear advantage"
	}
}

func finishingNote(side string, eff float64) string {
	switch {
	case eff > 1.2:
		return side + " team OVERPERFORMING xG by 20%+ (clinical finishers)"
	case eff > 1.1:
		return side + " team slightly overperforming xG (efficient finishing)"
	case eff < 0.8:
		return side + " team significantly underperforming xG (poor finishing)"
	case eff < 0.9:
		return side + " team UNDERPERFORMING xG (wasteful in front of goal)"
	}
	return ""
}

// GoalExpectation reads both efficiencies against their expected goals
func GoalExpectation(homeEff, awayEff float64) string {
	var notes []string
	for _, n := range []string{finishingNote("Home", homeEff), finishingNote("Away", awayEff)} {
		if n != "" {
			notes = append(notes, n)
		}
	}
	if len(notes) == 0 {
		return "Both teams converting chances as expected"
	}
	return strings.Join(notes, " | ")
}

// MatchType buckets the expected total goals
func MatchType(expectedGoals float64) string {
	switch {
	case expectedGoals < 2.0:
		return "Low-Scoring"
	case expectedGoals > 2.8:
		return "High-Scoring"
	default:
		return "Average-Scoring"
	}
}

// buildConfidence ranks the 1X2 outcomes and describes the finishing picture
func buildConfidence(outcomes Outcomes, expectedGoals float64, home, away TeamAggregate) Confidence {
	ranked := []float64{outcomes.HomeWin, outcomes.Draw, outcomes.AwayWin}
	sort.Sort(sort.Reverse(sort.Float64Slice(ranked)))
	return Confidence{
		Margin:              ranked[0] - ranked[1],
		MatchType:           MatchType(expectedGoals),
		EfficiencyAdvantage: EfficiencyAdvantage(home.Efficiency, away.Efficiency, home.Team, away.Team),
		GoalExpectation:     GoalExpectation(home.Efficiency, away.Efficiency),
	}
}

// BuildInsights turns an evaluation's numbers into analyst notes
func BuildInsights(ctx MatchContext, outcomes Outcomes, markets Markets, top []Scoreline) []Insight {
	home, away := ctx.Home.Aggregate, ctx.Away.Aggregate
	var out []Insight
	add := func(category, format string, args ...interface{}) {
		out = append(out, Insight{Category: category, Text: fmt.Sprintf(format, args...)})
	}

	best, bestP := "Home Win", outcomes.HomeWin
	if outcomes.Draw > bestP {
		best, bestP = "Draw", outcomes.Draw
	}
	if outcomes.AwayWin > bestP {
		best, bestP = "Away Win", outcomes.AwayWin
	}
	add(InsightPrediction, "Predicted: %s (P=%.2f)", best, bestP)

	switch {
	case home.Style == StyleDefensive && away.Style == StyleDefensive:
		add(InsightMatch, "Both teams are defensively oriented - expect fewer goals")
	case home.Style == StyleAttacking && away.Style == StyleAttacking:
		add(InsightMatch, "Both teams favor attacking football - expect more goals")
	case home.Style == StyleDefensive || away.Style == StyleDefensive:
		add(InsightMatch, "One team plays defensively - could be a tight match")
	}

	if home.Efficiency > 1.2 || away.Efficiency > 1.2 {
		add(InsightXG, "High xG efficiency detected - teams may overperform expectations")
	}
	if home.PenaltyReliance > 0.3 || away.PenaltyReliance > 0.3 {
		add(InsightXG, "High penalty reliance - results may be volatile")
	}

	out = append(out, roleMatchup(home, away)...)

	hf, af := formOf(ctx.Home), formOf(ctx.Away)
	if hf != nil && af != nil {
		switch {
		case hf.Rating > 0.7 && af.Rating < 0.4:
			add(InsightForm, "%s in EXCELLENT form vs %s in POOR form", home.Team, away.Team)
		case af.Rating > 0.7 && hf.Rating < 0.4:
			add(InsightForm, "%s in EXCELLENT form vs %s in POOR form", away.Team, home.Team)
		}
		for _, s := range []struct {
			team string
			f    *FormRating
		}{{home.Team, hf}, {away.Team, af}} {
			if s.f.StrengthOfSchedule > 0.7 && s.f.Rating > 0.6 {
				add(InsightForm, "%s's strong form came against TOUGH opponents", s.team)
			}
		}
		for _, s := range []struct {
			team string
			f    *FormRating
		}{{home.Team, hf}, {away.Team, af}} {
			if s.f.Momentum > 1.2 {
				add(InsightForm, "%s has STRONG positive momentum", s.team)
			}
		}
	}

	for _, side := range []TeamSide{ctx.Home, ctx.Away} {
		sig := side.Signals
		if sig == nil {
			continue
		}
		team := side.Aggregate.Team
		switch {
		case sig.ChampionsLeagueZone:
			add(InsightEuropean, "%s in CHAMPIONS LEAGUE spots - high motivation", team)
		case sig.EuropaLeagueZone:
			add(InsightEuropean, "%s in EUROPA LEAGUE spots - strong motivation", team)
		case sig.Pressure.IsEuropean():
			add(InsightEuropean, "%s chasing EUROPEAN qualification - motivated", team)
		}
	}
	for _, side := range []TeamSide{ctx.Home, ctx.Away} {
		sig := side.Signals
		if sig == nil || !sig.Pressure.IsRelegationFight() {
			continue
		}
		if sig.RelegationZone {
			add(InsightRelegation, "%s in RELEGATION ZONE - fighting for survival", side.Aggregate.Team)
		} else {
			add(InsightRelegation, "%s under HIGH pressure - need points", side.Aggregate.Team)
		}
	}

	corners := markets.Corners
	if corners.Estimated {
		add(InsightCorners, "Estimated corner data, expected total %.1f corners", corners.ExpectedTotal)
	} else {
		add(InsightCorners, "Measured corner data, expected total %.1f corners (%s %.1f, %s %.1f)",
			corners.ExpectedTotal, home.Team, corners.ExpectedHome, away.Team, corners.ExpectedAway)
	}
	if over := corners.Total["Over 8.5"]; over > 0.7 {
		add(InsightCorners, "STRONG OVER 8.5: %.1f%% probability", over*100)
	} else if over < 0.3 {
		add(InsightCorners, "STRONG UNDER 8.5: %.1f%% probability", (1-over)*100)
	}
	if over := corners.Total["Over 9.5"]; over > 0.65 {
		add(InsightCorners, "GOOD OVER 9.5: %.1f%% probability", over*100)
	} else if over < 0.35 {
		add(InsightCorners, "GOOD UNDER 9.5: %.1f%% probability", (1-over)*100)
	}
	if corners.ExpectedHome > 5.5 {
		add(InsightCorners, "%s HIGH corners: %.1f expected", home.Team, corners.ExpectedHome)
	}
	if corners.ExpectedAway > 4.5 {
		add(InsightCorners, "%s HIGH corners: %.1f expected", away.Team, corners.ExpectedAway)
	}

	ht := markets.HalfTime
	if ht.HomeScoresFirstHalf > 0.5 {
		add(InsightHalfTime, "Home team likely to score in 1st half (%.1f%%)", ht.HomeScoresFirstHalf*100)
	}
	if ht.HomeScoresSecondHalf > 0.6 {
		add(InsightHalfTime, "Home team very likely to score in 2nd half (%.1f%%)", ht.HomeScoresSecondHalf*100)
	}
	if ht.AwayScoresFirstHalf > 0.4 {
		add(InsightHalfTime, "Away team may score in 1st half (%.1f%%)", ht.AwayScoresFirstHalf*100)
	}
	if ht.AwayScoresSecondHalf > 0.5 {
		add(InsightHalfTime, "Away team likely to score in 2nd half (%.1f%%)", ht.AwayScoresSecondHalf*100)
	}

	if len(top) > 0 {
		labels := make([]string, len(top))
		for i, s := range top {
			labels[i] = s.Label()
		}
		add(InsightLikelyScore, "%s", strings.Join(labels, ", "))
	}
	return out
}

func formOf(side TeamSide) *FormRating {
	if side.Signals == nil {
		return nil
	}
	return side.Signals.Form
}

// roleMatchup compares role strengths, a 20% margin counts as an edge
func roleMatchup(home, away TeamAggregate) []Insight {
	var out []Insight
	compare := func(h, a float64, format string) {
		switch {
		case h > a*1.2:
			out = append(out, Insight{Category: InsightRoles, Text: fmt.Sprintf(format, home.Team)})
		case a > h*1.2:
			out = append(out, Insight{Category: InsightRoles, Text: fmt.Sprintf(format, away.Team)})
		}
	}
	hr, ar := home.Roles, away.Roles
	compare(hr.AttackerStrength, ar.AttackerStrength, "%s has significantly stronger attacking threat")
	compare(hr.MidfielderStrength, ar.MidfielderStrength, "%s should dominate midfield possession")
	compare(hr.DefenderStrength, ar.DefenderStrength, "%s has stronger defensive organization")

	switch {
	case hr.PlayingStyle == StyleAttacking && ar.PlayingStyle == StyleDefensive:
		out = append(out, Insight{Category: InsightRoles, Text: "Classic attack vs defense matchup expected"})
	case hr.PlayingStyle == StyleDefensive && ar.PlayingStyle == StyleAttacking:
		out = append(out, Insight{Category: InsightRoles, Text: "Classic defense vs attack matchup expected"})
	}
	return out
}
