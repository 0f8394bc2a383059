package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"alumnipulse/internal/config"
	"alumnipulse/internal/exporter"
	"alumnipulse/internal/infrastructure"
	"alumnipulse/internal/services"
	"alumnipulse/pkg/contracts/domain"
)

func main() {
	input := flag.String("input", "", "survey export file (.csv or .xlsx)")
	questions := flag.String("questions", "", "question set JSON (defaults to configs/questions.json relative to executable)")
	program := flag.String("program", domain.AllPrograms, "program filter")
	year := flag.String("year", domain.AllYears, "graduation year filter")
	out := flag.String("out", "", "output csv path, relative paths land under data/reports (default informe.csv)")
	flag.Parse()

	if *input == "" {
		fmt.Fprintln(os.Stderr, "usage: reportcsv -input <file> [-questions <file>] [-program <name>] [-year <year>] [-out <file>]")
		os.Exit(2)
	}

	paths, err := config.GetPaths()
	if err != nil {
		slog.Error("Failed to initialize paths", "error", err)
		os.Exit(1)
	}
	if *questions == "" {
		*questions = paths.QuestionsFile
	}
	if *out == "" {
		*out = config.ReportFilePrefix + ".csv"
	}
	if err := paths.EnsureDirectories(); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Warn("Failed to load config, using defaults", "error", err)
		cfg = config.Default()
		cfg.Logging.FilePath = paths.GetLogPath("reportcsv.log")
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}

	ctx := infrastructure.EnsureTraceID(context.Background())
	logger.InfoContext(ctx, "Starting report export",
		slog.String("input", *input),
		slog.String("questions", *questions),
		slog.String("program", *program),
		slog.String("year", *year),
		slog.String("output", *out))

	set, err := config.LoadQuestionSet(*questions)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to load question set",
			slog.String("path", *questions),
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	f, err := os.Open(*input)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to open survey file",
			slog.String("path", *input),
			slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer f.Close()

	svc := services.NewSurveyService(*set, cfg.Report.MaxUploadBytes, 1, nil, logger)
	info, err := svc.Ingest(ctx, filepath.Base(*input), f)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to parse survey file",
			slog.String("path", *input),
			slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.InfoContext(ctx, "Survey file parsed",
		slog.Int("rows", info.Rows),
		slog.Int("header_row", info.HeaderRow),
		slog.Bool("header_fallback", info.Fallback))

	rep, err := svc.Render(ctx, info.ID, domain.FilterSelection{Program: *program, Year: *year})
	if err != nil {
		logger.ErrorContext(ctx, "Failed to render report", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if rep.Warning != "" {
		fmt.Fprintln(os.Stderr, rep.Warning)
		logger.WarnContext(ctx, "Report has no responses for filter",
			slog.String("program", *program),
			slog.String("year", *year))
		os.Exit(1)
	}

	if err := exporter.NewCSVWriter(paths).WriteReportFile(*out, *rep); err != nil {
		logger.ErrorContext(ctx, "Failed to write report CSV",
			slog.String("path", *out),
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	outPath := *out
	if !filepath.IsAbs(outPath) {
		outPath = paths.GetReportPath(outPath)
	}
	logger.InfoContext(ctx, "Report export completed",
		slog.Int("responses", rep.Responses),
		slog.Int("sections", len(rep.Sections)),
		slog.String("output", outPath))
	fmt.Printf("Report written: %s (%d responses)\n", outPath, rep.Responses)
}
