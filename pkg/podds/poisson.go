package podds

import (
	"fmt"
	"math"
	"sort"
)

// MinMaxGoals is the smallest goal grid the model will build
const MinMaxGoals = 6

// Scoreline is one cell of the distribution
type Scoreline struct {
	Home        int     `json:"home"`
	Away        int     `json:"away"`
	Probability float64 `json:"probability"`
}

// Label formats the scoreline the way the odds sheets do, e.g. "2-1"
func (s Scoreline) Label() string {
	return fmt.Sprintf("%d-%d", s.Home, s.Away)
}

// Outcomes are the 1X2 probabilities
type Outcomes struct {
	HomeWin float64 `json:"homeWin"`
	Draw    float64 `json:"draw"`
	AwayWin float64 `json:"awayWin"`
}

// ScorelineDistribution is the joint probability of each (home, away) goal count
// Everything else the model reports is a view over Cells
type ScorelineDistribution struct {
	MaxGoals   int         `json:"maxGoals"`
	LambdaHome float64     `json:"lambdaHome"`
	LambdaAway float64     `json:"lambdaAway"`
	Cells      [][]float64 `json:"cells"`
	// TailMass is the probability lost beyond MaxGoals before renormalising
	TailMass float64 `json:"tailMass"`
}

// Lambdas turns adjusted rates into the two Poisson means
func Lambdas(cfg *Config, rates AdjustedRates) (lambdaHome, lambdaAway float64) {
	total := math.Max(rates.AttackHome+rates.AttackAway, cfg.MinTotalAttack)
	lambdaHome = cfg.BaseHomeRate * (rates.AttackHome / total) * (1 - rates.DefenseAway)
	lambdaAway = cfg.BaseAwayRate * (rates.AttackAway / total) * (1 - rates.DefenseHome)
	return math.Max(0, finiteOr(lambdaHome, 0)), math.Max(0, finiteOr(lambdaAway, 0))
}

// poissonPMF is computed in log space so large k does not overflow the factorial
func poissonPMF(k int, lambda float64) float64 {
	if lambda == 0 {
		if k == 0 {
			return 1
		}
		return 0
	}
	lg, _ := math.Lgamma(float64(k + 1))
	return math.Exp(float64(k)*math.Log(lambda) - lambda - lg)
}

// NewScorelineDistribution builds the renormalised joint matrix for two independent Poisson means
func NewScorelineDistribution(lambdaHome, lambdaAway float64, maxGoals int) (*ScorelineDistribution, error) {
	for _, l := range []float64{lambdaHome, lambdaAway} {
		if math.IsNaN(l) || math.IsInf(l, 0) || l < 0 {
			return nil, fmt.Errorf("lambda must be a finite non-negative number, got %v: %w", l, ErrInvalidInput)
		}
	}
	if maxGoals < MinMaxGoals {
		return nil, fmt.Errorf("max goals must be at least %d, got %d: %w", MinMaxGoals, maxGoals, ErrInvalidInput)
	}

	homeProbs := make([]float64, maxGoals+1)
	awayProbs := make([]float64, maxGoals+1)
	for k := 0; k <= maxGoals; k++ {
		homeProbs[k] = poissonPMF(k, lambdaHome)
		awayProbs[k] = poissonPMF(k, lambdaAway)
	}

	cells := outerProduct(homeProbs, awayProbs)
	total := sumCells(cells)
	d := &ScorelineDistribution{
		MaxGoals:   maxGoals,
		LambdaHome: lambdaHome,
		LambdaAway: lambdaAway,
		Cells:      renormalize(cells, total),
		TailMass:   math.Max(0, 1-total),
	}
	return d, nil
}

// outerProduct is np.outer(home, away)
func outerProduct(homeProbs, awayProbs []float64) [][]float64 {
	matrix := make([][]float64, len(homeProbs))
	for i := range homeProbs {
		matrix[i] = make([]float64, len(awayProbs))
		for j := range awayProbs {
			matrix[i][j] = homeProbs[i] * awayProbs[j]
		}
	}
	return matrix
}

func sumCells(matrix [][]float64) float64 {
	total := 0.0
	for i := range matrix {
		for j := range matrix[i] {
			total += matrix[i][j]
		}
	}
	return total
}

// renormalize scales the matrix to sum to 1, a zero total leaves it untouched
func renormalize(matrix [][]float64, total float64) [][]float64 {
	if total > 0 {
		for i := range matrix {
			for j := range matrix[i] {
				matrix[i][j] /= total
			}
		}
	}
	return matrix
}

// Cell returns P(home = i, away = j), zero outside the grid
func (d *ScorelineDistribution) Cell(i, j int) float64 {
	if i < 0 || j < 0 || i > d.MaxGoals || j > d.MaxGoals {
		return 0
	}
	return d.Cells[i][j]
}

// Sum is the total probability held in the matrix
func (d *ScorelineDistribution) Sum() float64 {
	return sumCells(d.Cells)
}

// Outcomes sums the lower triangle, diagonal and upper triangle
func (d *ScorelineDistribution) Outcomes() Outcomes {
	var o Outcomes
	for i := range d.Cells {
		for j, p := range d.Cells[i] {
			switch {
			case i > j:
				o.HomeWin += p
			case i == j:
				o.Draw += p
			default:
				o.AwayWin += p
			}
		}
	}
	return o
}

// ExpectedGoals is the mean total goals over the matrix
func (d *ScorelineDistribution) ExpectedGoals() float64 {
	total := 0.0
	for i := range d.Cells {
		for j, p := range d.Cells[i] {
			total += float64(i+j) * p
		}
	}
	return total
}

// OverProbability is the mass of cells whose total goals exceed the line
func (d *ScorelineDistribution) OverProbability(line float64) float64 {
	over := 0.0
	for i := range d.Cells {
		for j, p := range d.Cells[i] {
			if float64(i+j) > line {
				over += p
			}
		}
	}
	return math.Min(over, 1)
}

// BothScoreProbability is the mass of cells where both teams score
func (d *ScorelineDistribution) BothScoreProbability() float64 {
	both := 0.0
	for i := 1; i <= d.MaxGoals; i++ {
		for j := 1; j <= d.MaxGoals; j++ {
			both += d.Cells[i][j]
		}
	}
	return math.Min(both, 1)
}

// MostLikelyGoals returns the modal goal count for one side
func (d *ScorelineDistribution) MostLikelyGoals(side Side) int {
	maxProb := -1.0
	mostLikely := 0
	for g := 0; g <= d.MaxGoals; g++ {
		prob := 0.0
		for other := 0; other <= d.MaxGoals; other++ {
			if side == HomeSide {
				prob += d.Cells[g][other]
			} else {
				prob += d.Cells[other][g]
			}
		}
		if prob > maxProb {
			maxProb = prob
			mostLikely = g
		}
	}
	return mostLikely
}

// TopScorelines returns the k most likely cells
// Ties go to the lower total, then to the lower home score
func (d *ScorelineDistribution) TopScorelines(k int) []Scoreline {
	all := make([]Scoreline, 0, (d.MaxGoals+1)*(d.MaxGoals+1))
	for i := range d.Cells {
		for j, p := range d.Cells[i] {
			all = append(all, Scoreline{Home: i, Away: j, Probability: p})
		}
	}
	sort.SliceStable(all, func(a, b int) bool {
		x, y := all[a], all[b]
		if x.Probability != y.Probability {
			return x.Probability > y.Probability
		}
		if x.Home+x.Away != y.Home+y.Away {
			return x.Home+x.Away < y.Home+y.Away
		}
		if x.Home != y.Home {
			return x.Home < y.Home
		}
		return x.Away < y.Away
	})
	if k < 0 {
		k = 0
	}
	if k > len(all) {
		k = len(all)
	}
	return all[:k]
}
