package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/richard-senior/matchodds/internal/logger"
	"github.com/richard-senior/matchodds/pkg/datasource"
	"github.com/richard-senior/matchodds/pkg/metrics"
	"github.com/richard-senior/matchodds/pkg/podds"
	"github.com/richard-senior/matchodds/pkg/predictor"
	"github.com/richard-senior/matchodds/pkg/report"
	"github.com/richard-senior/matchodds/pkg/server"
	"github.com/richard-senior/matchodds/pkg/store"
	"github.com/richard-senior/matchodds/pkg/tools"
	"github.com/richard-senior/matchodds/pkg/transport"
)

const usage = `usage: matchodds [serve|evaluate|import] [flags]

  serve     run the MCP server over stdin/stdout (default)
  evaluate  evaluate one match and print the result
  import    load a season into the database from a fixture file or stats pages
`

// options are the flags shared by every command
type options struct {
	dbPath      string
	configPath  string
	logFile     string
	level       string
	metricsAddr string
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func (o *options) register(fs *flag.FlagSet) {
	fs.StringVar(&o.dbPath, "db", envOr("MATCHODDS_DB", "matchodds.db"), "sqlite database path (env MATCHODDS_DB)")
	fs.StringVar(&o.configPath, "config", os.Getenv("MATCHODDS_CONFIG"), "YAML configuration file (env MATCHODDS_CONFIG)")
	fs.StringVar(&o.logFile, "log", envOr("MATCHODDS_LOG", "matchodds.log"), "log file path")
	fs.StringVar(&o.level, "level", "info", "log level: debug, info, inform, highlight, warn, error")
	fs.StringVar(&o.metricsAddr, "metrics", os.Getenv("MATCHODDS_METRICS_ADDR"), "address to serve prometheus metrics on, e.g. :9090")
}

// setup configures logging and builds the service shared by every command
func (o *options) setup(output rune) (*predictor.Service, *metrics.EvaluationMetrics, func(), error) {
	logger.SetShowDateTime(true)
	logger.SetLogFile(o.logFile)
	logger.SetLogOutput(output)
	level, err := logger.ParseLevel(o.level)
	if err != nil {
		return nil, nil, nil, err
	}
	logger.SetLevel(level)

	cfg := podds.DefaultConfig()
	if o.configPath != "" {
		if cfg, err = podds.LoadConfig(o.configPath); err != nil {
			return nil, nil, nil, err
		}
		logger.Info("Loaded configuration from", o.configPath)
	}

	st, err := store.Open(o.dbPath)
	if err != nil {
		return nil, nil, nil, err
	}
	m := metrics.New()
	svc, err := predictor.New(cfg, st, m)
	if err != nil {
		st.Close()
		return nil, nil, nil, err
	}

	var srv *http.Server
	if o.metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", m.Handler())
		srv = &http.Server{Addr: o.metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			logger.Info("Serving metrics on", o.metricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Metrics server stopped:", err)
			}
		}()
	}

	cleanup := func() {
		if srv != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			srv.Shutdown(ctx)
		}
		st.Close()
	}
	return svc, m, cleanup, nil
}

func main() {
	command, args := "serve", os.Args[1:]
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		command, args = args[0], args[1:]
	}

	var err error
	switch command {
	case "serve":
		err = serve(args)
	case "evaluate":
		err = evaluate(args)
	case "import":
		err = importSeason(args)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		logger.Error(command, "failed:", err)
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func serve(args []string) error {
	var o options
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	o.register(fs)
	fs.Parse(args)

	// stdout belongs to the protocol
	svc, _, cleanup, err := o.setup('f')
	if err != nil {
		return err
	}
	defer cleanup()

	logger.Info("Starting github.com/richard-senior/matchodds MCP server")
	s := server.InitInstance(transport.NewStdioTransport(), tools.NewToolbox(svc))
	if err := s.Start(); err != nil {
		return err
	}
	logger.Info("MCP server shutting down")
	return nil
}

func evaluate(args []string) error {
	var o options
	fs := flag.NewFlagSet("evaluate", flag.ExitOnError)
	o.register(fs)
	fixture := fs.String("fixture", "", "YAML fixture with the season data (otherwise the database is used)")
	season := fs.String("season", "", "season to read from the database")
	league := fs.String("league", "", "league profile from the configuration")
	home := fs.String("home", "", "home team")
	away := fs.String("away", "", "away team")
	neutral := fs.Bool("neutral", false, "neutral venue")
	oddsFile := fs.String("odds", "", "YAML odds sheet, market -> outcome -> price")
	format := fs.String("format", "markdown", "output format: markdown, html or json")
	save := fs.Bool("save", false, "store the evaluation")
	fs.Parse(args)

	svc, _, cleanup, err := o.setup('b')
	if err != nil {
		return err
	}
	defer cleanup()

	req := predictor.Request{
		Season:   *season,
		League:   *league,
		HomeTeam: *home,
		AwayTeam: *away,
		Neutral:  *neutral,
		Save:     *save,
	}
	if *fixture != "" {
		f, rejected, err := datasource.LoadFixture(*fixture)
		if err != nil {
			return err
		}
		for _, r := range rejected {
			logger.Warn("Skipped fixture row", r)
		}
		if req.Season == "" {
			req.Season = f.Season
		}
		if req.League == "" {
			req.League = f.League
		}
		req.Players, req.Standings, req.Corners, req.Form = f.Players, f.Standings, f.Corners, f.Form
		if req.Odds, err = f.OddsQuote(); err != nil {
			return err
		}
		teams := f.Teams()
		if req.HomeTeam == "" && len(teams) > 0 {
			req.HomeTeam = teams[0]
		}
		if req.AwayTeam == "" && len(teams) > 1 {
			req.AwayTeam = teams[1]
		}
	}
	if req.HomeTeam == "" || req.AwayTeam == "" {
		return fmt.Errorf("both -home and -away are needed: %w", podds.ErrInvalidInput)
	}
	if *oddsFile != "" {
		sheet, err := podds.LoadOddsQuote(*oddsFile)
		if err != nil {
			return err
		}
		req.Odds = req.Odds.Merge(sheet)
	}

	res, err := svc.Evaluate(context.Background(), req)
	if err != nil {
		return err
	}
	for _, w := range res.Warnings {
		logger.Warn(w)
	}

	var out string
	switch *format {
	case "json":
		b, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return err
		}
		out = string(b)
	case "html":
		out, err = report.HTML(res.Evaluation)
	default:
		out, err = report.Markdown(res.Evaluation)
	}
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}

// teamURLs collects repeated -players flags of the form "Team=https://..."
type teamURLs []string

func (t *teamURLs) String() string     { return strings.Join(*t, ",") }
func (t *teamURLs) Set(v string) error { *t = append(*t, v); return nil }

func importSeason(args []string) error {
	var o options
	var squads teamURLs
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	o.register(fs)
	fixture := fs.String("fixture", "", "YAML fixture to import")
	season := fs.String("season", "", "season key, required when scraping")
	fs.Var(&squads, "players", "squad stats page as Team=URL, may be repeated")
	standingsURL := fs.String("standings", "", "league table page")
	browser := fs.Bool("browser", false, "render pages in headless chromium")
	install := fs.Bool("install", false, "install the headless browser before fetching")
	cacheDir := fs.String("cache", "", "directory to cache fetched pages in")
	rps := fs.Float64("rps", 1.0/3, "requests per second to the stats site")
	fs.Parse(args)

	svc, m, cleanup, err := o.setup('b')
	if err != nil {
		return err
	}
	defer cleanup()

	var data predictor.SeasonData
	var rejected []error
	if *fixture != "" {
		f, bad, err := datasource.LoadFixture(*fixture)
		if err != nil {
			return err
		}
		rejected = append(rejected, bad...)
		if *season == "" {
			*season = f.Season
		}
		data = predictor.SeasonData{Players: f.Players, Standings: f.Standings, Corners: f.Corners, Form: f.Form}
	}

	if len(squads) > 0 || *standingsURL != "" {
		var fetcher datasource.Fetcher
		source := "http"
		if *browser {
			bf, err := datasource.NewBrowserFetcher(*install, 45*time.Second)
			if err != nil {
				return err
			}
			defer bf.Close()
			fetcher, source = bf, "browser"
		} else {
			fetcher = datasource.NewHTTPFetcher(transport.NewClient(transport.WithRateLimit(*rps, 1)))
		}
		fetcher = datasource.NewMeteredFetcher(fetcher, source, m)
		if *cacheDir != "" {
			fetcher = datasource.NewCachingFetcher(fetcher, *cacheDir)
		}
		scraper := datasource.NewScraper(fetcher)

		ctx := context.Background()
		for _, squad := range squads {
			team, url, ok := strings.Cut(squad, "=")
			if !ok {
				return fmt.Errorf("-players wants Team=URL, got %q: %w", squad, podds.ErrInvalidInput)
			}
			players, err := scraper.Players(ctx, url, strings.TrimSpace(team))
			if err != nil {
				return err
			}
			data.Players = append(data.Players, players...)
		}
		if *standingsURL != "" {
			standings, err := scraper.Standings(ctx, *standingsURL)
			if err != nil {
				return err
			}
			data.Standings = append(data.Standings, standings...)
		}
	}

	bad, err := svc.Import(*season, data)
	if err != nil {
		return err
	}
	rejected = append(rejected, bad...)
	for _, r := range rejected {
		logger.Warn("Skipped row", r)
	}
	fmt.Printf("imported %d players, %d standings, %d corner profiles, %d form lines for %s (%d rows skipped)\n",
		len(data.Players), len(data.Standings), len(data.Corners), len(data.Form), *season, len(rejected))
	return nil
}
