package datasource

import (
	"context"
	"fmt"

	"github.com/richard-senior/matchodds/internal/logger"
	"github.com/richard-senior/matchodds/pkg/podds"
)

// Scraper pulls squad and table pages through a Fetcher and parses them
type Scraper struct {
	fetcher Fetcher
}

func NewScraper(fetcher Fetcher) *Scraper {
	return &Scraper{fetcher: fetcher}
}

// Players fetches a squad stats page, team names the squad when the tables carry no team column
func (s *Scraper) Players(ctx context.Context, url, team string) ([]podds.PlayerRecord, error) {
	html, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch data from external source: %w", err)
	}
	players, rejected, err := ParsePlayerStats(html, team)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", url, err)
	}
	for _, r := range rejected {
		logger.Warn("Skipped player row", r)
	}
	return players, nil
}

// Standings fetches a league page and reads its table
func (s *Scraper) Standings(ctx context.Context, url string) ([]podds.Standing, error) {
	html, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch data from external source: %w", err)
	}
	standings, rejected, err := ParseStandings(html)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", url, err)
	}
	for _, r := range rejected {
		logger.Warn("Skipped standings row", r)
	}
	return standings, nil
}
