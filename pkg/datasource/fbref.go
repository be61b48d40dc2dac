package datasource

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/richard-senior/matchodds/internal/logger"
	"github.com/richard-senior/matchodds/pkg/podds"
)

// Stats pages in the FBref layout mark every cell with a data-stat attribute
// and ship most secondary tables inside HTML comments that a script unwraps

// collectTables returns every table on the page, including those hidden in comments
func collectTables(doc *goquery.Document) []*goquery.Selection {
	var tables []*goquery.Selection
	doc.Find("table").Each(func(_ int, t *goquery.Selection) {
		tables = append(tables, t)
	})

	doc.Find("*").Contents().Each(func(_ int, s *goquery.Selection) {
		if goquery.NodeName(s) != "#comment" {
			return
		}
		text := s.Nodes[0].Data
		if !strings.Contains(text, "<table") {
			return
		}
		inner, err := goquery.NewDocumentFromReader(strings.NewReader(text))
		if err != nil {
			logger.Warn("Failed to parse commented table", err)
			return
		}
		inner.Find("table").Each(func(_ int, t *goquery.Selection) {
			tables = append(tables, t)
		})
	})
	return tables
}

// tableRows reads the body rows of a table keyed by canonical column
// Repeated header rows and spacers inside the body are skipped
func tableRows(table *goquery.Selection, columns columnSet) []row {
	var rows []row
	table.Find("tbody tr").Each(func(_ int, tr *goquery.Selection) {
		if tr.HasClass("thead") || tr.HasClass("over_header") || tr.HasClass("spacer") {
			return
		}
		r := row{}
		tr.Children().Each(func(_ int, cell *goquery.Selection) {
			stat, ok := cell.Attr("data-stat")
			if !ok {
				return
			}
			if column := columns.canonical(stat); column != "" {
				r[column] = strings.TrimSpace(cell.Text())
			}
		})
		if len(r) > 0 {
			rows = append(rows, r)
		}
	})
	return rows
}

// hasColumns reports whether a table carries every named data-stat column
func hasColumns(table *goquery.Selection, columns columnSet, names ...string) bool {
	found := map[string]bool{}
	table.Find("tbody tr").First().Children().Each(func(_ int, cell *goquery.Selection) {
		if stat, ok := cell.Attr("data-stat"); ok {
			found[columns.canonical(stat)] = true
		}
	})
	for _, n := range names {
		if !found[n] {
			return false
		}
	}
	return true
}

func parseDocument(html []byte) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("error parsing HTML: %w", err)
	}
	return doc, nil
}

// ParsePlayerStats reads every player table on a page and merges them by player
// Standard, shooting and defensive tables each contribute their own columns
// Rows that cannot be read are returned as errors alongside the good records
func ParsePlayerStats(html []byte, team string) ([]podds.PlayerRecord, []error, error) {
	doc, err := parseDocument(html)
	if err != nil {
		return nil, nil, err
	}

	merged := map[string]row{}
	var order []string
	for _, table := range collectTables(doc) {
		if !hasColumns(table, playerColumns, "player") {
			continue
		}
		for _, r := range tableRows(table, playerColumns) {
			if strings.TrimSpace(r["player"]) == "" {
				continue
			}
			key := r["player"] + "|" + r["team"]
			existing, ok := merged[key]
			if !ok {
				existing = row{}
				merged[key] = existing
				order = append(order, key)
			}
			for column, value := range r {
				if _, set := existing[column]; !set || existing[column] == "" {
					existing[column] = value
				}
			}
		}
	}
	if len(order) == 0 {
		return nil, nil, fmt.Errorf("player stats: %w", ErrNoTable)
	}

	var players []podds.PlayerRecord
	var rejected []error
	for _, key := range order {
		p, err := playerFromRow(merged[key], team)
		if err != nil {
			rejected = append(rejected, err)
			continue
		}
		players = append(players, p)
	}
	logger.Debug("Parsed player stats", len(players), len(rejected))
	return players, rejected, nil
}

// ParseStandings reads the first league table on a page
func ParseStandings(html []byte) ([]podds.Standing, []error, error) {
	doc, err := parseDocument(html)
	if err != nil {
		return nil, nil, err
	}
	for _, table := range collectTables(doc) {
		if !hasColumns(table, standingColumns, "team", "position", "points") {
			continue
		}
		var standings []podds.Standing
		var rejected []error
		for _, r := range tableRows(table, standingColumns) {
			s, err := standingFromRow(r)
			if err != nil {
				rejected = append(rejected, err)
				continue
			}
			standings = append(standings, s)
		}
		return standings, rejected, nil
	}
	return nil, nil, fmt.Errorf("league table: %w", ErrNoTable)
}
