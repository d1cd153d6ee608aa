package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"pledgecli/internal/config"
	"pledgecli/internal/exporter"
	"pledgecli/internal/infrastructure"
	"pledgecli/internal/services"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		outPath   = flag.String("out", "comparison.csv", "path for the comparison report")
		errPath   = flag.String("errors", "errors.csv", "path for the row error report")
		category  = flag.String("category", "", "override the transaction category keyword")
		mergeFlag = flag.String("merge", "", "merge policy for overlapping accounts (first-file-wins, last-file-wins)")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] file1 [file2 ...]\n\n", filepath.Base(os.Args[0]))
		fmt.Fprintln(flag.CommandLine.Output(), "Imports transaction export files (.csv, .tsv, .xlsx) and writes a")
		fmt.Fprintln(flag.CommandLine.Output(), "year-over-year comparison report per household account.")
		fmt.Fprintln(flag.CommandLine.Output(), "\nFlags:")
		flag.PrintDefaults()
	}
	flag.Parse()

	inputs := flag.Args()
	if len(inputs) == 0 {
		flag.Usage()
		return fmt.Errorf("no input files given")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if *category != "" {
		cfg.Import.CategoryKeyword = *category
	}
	if *mergeFlag != "" {
		cfg.Import.MergePolicy = *mergeFlag
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer infrastructure.CloseLogFile()

	service, err := services.NewImportService(cfg.Import, logger)
	if err != nil {
		return err
	}

	files := make([]services.UploadedFile, 0, len(inputs))
	for _, path := range inputs {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		files = append(files, services.UploadedFile{
			Name: filepath.Base(path),
			Data: data,
		})
	}

	result, err := service.ImportFiles(context.Background(), files)
	if err != nil {
		return err
	}

	writer := exporter.NewCSVWriter(logger)
	if err := writer.WriteComparison(*outPath, result.Rows); err != nil {
		return err
	}
	if err := writer.WriteErrors(*errPath, result.Errors); err != nil {
		return err
	}

	fmt.Printf("Imported %d account(s) comparing FY%d to FY%d\n",
		len(result.Rows), result.Stats.CurrentYear, result.Stats.PriorYear)
	fmt.Printf("Rows: %d accepted, %d skipped, %d rejected\n",
		result.Stats.RowsAccepted, result.Stats.RowsSkipped, result.Stats.RowsRejected)
	fmt.Printf("Reports written to %s and %s\n", *outPath, *errPath)
	return nil
}
