package datasource

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/richard-senior/matchodds/pkg/podds"
)

// readCSV reads a headed CSV export, headers are matched case-insensitively against the column set
func readCSV(r io.Reader, columns columnSet) ([]row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty csv: %w", ErrNoTable)
		}
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	mapped := make([]string, len(header))
	known := 0
	for i, h := range header {
		// spreadsheet exports often lead with a byte order mark
		mapped[i] = columns.canonical(strings.TrimPrefix(h, "\ufeff"))
		if mapped[i] != "" {
			known++
		}
	}
	if known == 0 {
		return nil, fmt.Errorf("csv header %v: %w", header, ErrNoTable)
	}

	var rows []row
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv: %w", err)
		}
		r := row{}
		for i, value := range record {
			if i < len(mapped) && mapped[i] != "" {
				r[mapped[i]] = value
			}
		}
		rows = append(rows, r)
	}
	return rows, nil
}

// ReadPlayersCSV reads a player export, bad rows come back as errors
func ReadPlayersCSV(r io.Reader, defaultTeam string) ([]podds.PlayerRecord, []error, error) {
	rows, err := readCSV(r, playerColumns)
	if err != nil {
		return nil, nil, err
	}
	var players []podds.PlayerRecord
	var rejected []error
	for _, row := range rows {
		p, err := playerFromRow(row, defaultTeam)
		if err != nil {
			rejected = append(rejected, err)
			continue
		}
		players = append(players, p)
	}
	return players, rejected, nil
}

// ReadStandingsCSV reads a league table export
func ReadStandingsCSV(r io.Reader) ([]podds.Standing, []error, error) {
	rows, err := readCSV(r, standingColumns)
	if err != nil {
		return nil, nil, err
	}
	var standings []podds.Standing
	var rejected []error
	for _, row := range rows {
		s, err := standingFromRow(row)
		if err != nil {
			rejected = append(rejected, err)
			continue
		}
		standings = append(standings, s)
	}
	return standings, rejected, nil
}

// ReadCornersCSV reads a corner statistics export, summary rows without a team are skipped
func ReadCornersCSV(r io.Reader) ([]podds.CornerProfile, []error, error) {
	rows, err := readCSV(r, cornerColumns)
	if err != nil {
		return nil, nil, err
	}
	var profiles []podds.CornerProfile
	var rejected []error
	for _, row := range rows {
		team := strings.TrimSpace(row["team"])
		if team == "" || strings.EqualFold(team, "League average") {
			continue
		}
		c, err := cornerFromRow(row)
		if err != nil {
			rejected = append(rejected, err)
			continue
		}
		profiles = append(profiles, c)
	}
	return profiles, rejected, nil
}

// ReadFormCSV reads a recent form export
func ReadFormCSV(r io.Reader) ([]podds.FormRecord, []error, error) {
	rows, err := readCSV(r, formColumns)
	if err != nil {
		return nil, nil, err
	}
	var records []podds.FormRecord
	var rejected []error
	for _, row := range rows {
		f, err := formFromRow(row)
		if err != nil {
			rejected = append(rejected, err)
			continue
		}
		records = append(records, f)
	}
	return records, rejected, nil
}

// openCSV opens a file for one of the readers above
func openCSV(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return f, nil
}
