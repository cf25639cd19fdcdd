package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"cambio/assets"
	"cambio/internal/cli"
	"cambio/internal/core"
)

func main() {
	file := flag.String("file", "", "CSV file with base,target,rate rows (default: built-in starter set)")
	force := flag.Bool("force", false, "import rows even when the currency pair already exists")
	flag.Parse()

	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	var reader io.Reader
	var source string
	if *file != "" {
		f, err := os.Open(*file)
		if err != nil {
			logger.Error("Failed to open rates file", "error", err, "path", *file)
			os.Exit(1)
		}
		defer f.Close()
		reader = f
		source = *file
	} else {
		reader = bytes.NewReader(assets.StarterRatesCSV())
		source = "starter set"
	}

	table, err := core.ParseRatesCSV(reader)
	if err != nil {
		logger.Error("Failed to parse rates CSV", "error", err, "source", source)
		os.Exit(1)
	}
	if len(table) == 0 {
		logger.Warn("No rates found in CSV", "source", source)
		return
	}

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	ctx := context.Background()

	// The resolver scans in insertion order and the first match wins, so
	// re-importing an existing pair would be inert. Skip those unless forced.
	existing := map[string]bool{}
	if !*force {
		current, err := repo.ListRates(ctx)
		if err != nil {
			logger.Error("Failed to list existing rates", "error", err)
			os.Exit(1)
		}
		for _, rate := range current {
			existing[rate.Base+"/"+rate.Target] = true
		}
	}

	imported, skipped := 0, 0
	for _, rate := range table {
		if existing[rate.Base+"/"+rate.Target] {
			skipped++
			continue
		}
		if _, err := repo.CreateRate(ctx, rate); err != nil {
			logger.Error("Failed to import rate", "error", err, "base", rate.Base, "target", rate.Target)
			os.Exit(1)
		}
		imported++
	}

	logger.Info("Rates import complete",
		"source", source,
		"imported", imported,
		"skipped", skipped)
	fmt.Printf("Imported %d rates from %s (%d already present)\n", imported, source, skipped)
}
