// Command ingest extracts structured records from financial planning
// workbooks and writes the canonical CSV outputs. It processes a single
// workbook with -in, or every workbook in a directory with -dir.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"finetl/internal/config"
	"finetl/internal/exporter"
	"finetl/internal/files"
	"finetl/internal/infrastructure"
	"finetl/internal/ingest"
	"finetl/internal/workbook"
)

func main() {
	inFile := flag.String("in", "", "input .xlsx workbook")
	inDir := flag.String("dir", "", "directory of workbooks to ingest in batch")
	outDir := flag.String("out", "", "output directory for CSV files (defaults to configured output dir)")
	client := flag.String("client", "", "client name (defaults to metadata from the plan sheet)")
	title := flag.String("title", "", "project title (defaults to metadata from the plan sheet)")
	flag.Parse()

	if *inFile == "" && *inDir == "" {
		fmt.Fprintln(os.Stderr, "usage: ingest -in workbook.xlsx | -dir workbooks/ [-out dir] [-client name] [-title name]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := infrastructure.MustInitializeLogger(cfg.Logging)
	defer infrastructure.CloseLogFile()

	if *outDir == "" {
		*outDir = cfg.Paths.OutputDir
	}

	ctx := context.Background()
	pipeline := ingest.NewPipeline(cfg, config.DefaultRules(), logger)

	if *inDir != "" {
		if err := runBatch(ctx, pipeline, logger, *inDir, *outDir, *client); err != nil {
			logger.Error("batch ingest failed", "error", err)
			os.Exit(1)
		}
		return
	}

	if _, err := runOne(ctx, pipeline, logger, *inFile, *outDir, *client, *title); err != nil {
		logger.Error("ingest failed", "error", err)
		os.Exit(1)
	}
}

func runOne(ctx context.Context, pipeline *ingest.Pipeline, logger *slog.Logger, inFile, outDir, client, title string) (*ingest.ResultSet, error) {
	wb, err := workbook.Open(inFile)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	// Fall back to the file name for the project title so the derived
	// project id is never built from empty strings.
	if title == "" {
		base := filepath.Base(inFile)
		title = strings.TrimSuffix(base, filepath.Ext(base))
	}

	rs, err := pipeline.ProcessWorkbook(ctx, wb, ingest.Options{
		ClientName:   client,
		ProjectTitle: title,
		SourceFile:   filepath.Base(inFile),
	})
	if err != nil {
		return nil, fmt.Errorf("process workbook: %w", err)
	}

	writer := exporter.NewCSVWriter(outDir, logger)
	if err := writer.ExportResultSet(rs); err != nil {
		return nil, fmt.Errorf("export results: %w", err)
	}

	sum := rs.Summarize()
	logger.Info("ingest complete",
		"run_id", rs.RunID,
		"project_id", rs.ProjectID,
		"allocations", sum.Allocations,
		"total_hours", sum.TotalHours,
		"errors", sum.Errors,
		"unmatched", rs.Unmatched,
		"output_dir", outDir)
	return rs, nil
}

// runBatch ingests every workbook in dir, writing each run's outputs to a
// subdirectory of outDir named after the workbook. The batch also collects
// every run's costed allocations into one combined CSV and streams a
// per-workbook summary. One failing workbook does not stop the batch.
func runBatch(ctx context.Context, pipeline *ingest.Pipeline, logger *slog.Logger, dir, outDir, client string) error {
	found, err := files.NewDiscovery(".").FindWorkbooks(dir)
	if err != nil {
		return err
	}
	if len(found) == 0 {
		return fmt.Errorf("no workbooks found in %s", dir)
	}

	combined := exporter.NewCSVWriter(outDir, logger)
	summary, err := combined.CreateStreamWriter("batch_summary.csv", []string{
		"workbook", "status", "sheets", "allocations", "total_hours", "errors", "unmatched",
	})
	if err != nil {
		return fmt.Errorf("create batch summary: %w", err)
	}
	defer summary.Close()

	failures := 0
	for _, f := range found {
		stem := strings.TrimSuffix(f.Name, filepath.Ext(f.Name))
		target := filepath.Join(outDir, stem)
		rs, err := runOne(ctx, pipeline, logger, f.Path, target, client, "")
		if err != nil {
			logger.Error("workbook failed", "file", f.Name, "error", err)
			failures++
			_ = summary.WriteRecord([]string{f.Name, "error", "0", "0", "0", "0", "0"})
			continue
		}

		if err := combined.AppendAllocations(exporter.AllocationsFile, rs.Costed); err != nil {
			return fmt.Errorf("append allocations: %w", err)
		}

		sum := rs.Summarize()
		if err := summary.WriteRecord([]string{
			f.Name, "ok",
			strconv.Itoa(sum.Sheets), strconv.Itoa(sum.Allocations),
			strconv.FormatFloat(sum.TotalHours, 'f', -1, 64),
			strconv.Itoa(sum.Errors), strconv.Itoa(rs.Unmatched),
		}); err != nil {
			return fmt.Errorf("write batch summary: %w", err)
		}
	}

	logger.Info("batch complete", "workbooks", len(found), "failures", failures)
	if failures == len(found) {
		return fmt.Errorf("all %d workbooks failed", failures)
	}
	return nil
}
