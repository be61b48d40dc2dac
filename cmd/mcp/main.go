package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/richard-senior/matchodds/internal/logger"
	"github.com/richard-senior/matchodds/internal/processor"
	"github.com/richard-senior/matchodds/pkg/podds"
	"github.com/richard-senior/matchodds/pkg/predictor"
	"github.com/richard-senior/matchodds/pkg/store"
)

func main() {
	// Parse command line flags
	debug := flag.Bool("debug", false, "Enable debug logging")
	inputFile := flag.String("input", "", "Input file path (if not provided, stdin will be used)")
	outputFile := flag.String("output", "", "Output file path (if not provided, stdout will be used)")
	dbPath := flag.String("db", os.Getenv("MATCHODDS_DB"), "sqlite database to read season data from (optional)")
	configPath := flag.String("config", os.Getenv("MATCHODDS_CONFIG"), "YAML configuration file (optional)")
	flag.Parse()

	// Configure logging, stdout carries the result
	logger.SetShowDateTime(true)
	logger.SetLogOutput('b')
	if *debug {
		logger.SetLevel(logger.DEBUG)
		logger.Debug("Debug logging enabled")
	}

	logger.Info("Starting matchodds CLI")

	cfg := podds.DefaultConfig()
	var err error
	if *configPath != "" {
		if cfg, err = podds.LoadConfig(*configPath); err != nil {
			logger.Fatal("Failed to load configuration", err)
		}
	}

	var st *store.Store
	if *dbPath != "" {
		if st, err = store.Open(*dbPath); err != nil {
			logger.Fatal("Failed to open database", err)
		}
		defer st.Close()
	}

	svc, err := predictor.New(cfg, st, nil)
	if err != nil {
		logger.Fatal("Invalid configuration", err)
	}

	// Determine input source
	var input []byte
	if *inputFile != "" {
		input, err = os.ReadFile(*inputFile)
		if err != nil {
			logger.Fatal("Failed to read input file", err)
		}
	} else {
		input, err = io.ReadAll(os.Stdin)
		if err != nil {
			logger.Fatal("Failed to read from stdin", err)
		}
	}

	result, err := processor.ProcessRequest(context.Background(), svc, input)
	if err != nil {
		logger.Error("Failed to process request", err)
		os.Exit(1)
	}

	// Determine output destination
	if *outputFile != "" {
		err = os.WriteFile(*outputFile, result, 0644)
		if err != nil {
			logger.Fatal("Failed to write to output file", err)
		}
	} else {
		fmt.Println(string(result))
	}

	logger.Info("matchodds CLI completed successfully")
}
