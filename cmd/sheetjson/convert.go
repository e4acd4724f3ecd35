package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ukaji3/sheetjson-go/pkg/sheetjson"
	"github.com/ukaji3/sheetjson-go/pkg/sheetjson/models"
	"github.com/ukaji3/sheetjson-go/pkg/sheetjson/output"
)

type convertFlags struct {
	outputPath    string
	pretty        bool
	format        string
	naming        string
	ignoreSheets  []string
	ignoreColumns []string
	maxRows       int
	sheetsDir     string
	title         string
	link          string
	timestamp     int64
}

func newConvertCmd() *cobra.Command {
	var f convertFlags
	cmd := &cobra.Command{
		Use:   "convert [input.xlsx]",
		Short: "Convert a workbook to JSON",
		Long: `Convert a workbook to JSON. Reads stdin when the input is "-".
With --title, --link or --timestamp the data is wrapped in a metadata envelope.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, args[0], f)
		},
	}

	cmd.Flags().StringVarP(&f.outputPath, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().BoolVar(&f.pretty, "pretty", false, "Pretty-print JSON output")
	cmd.Flags().StringVar(&f.format, "format", string(sheetjson.FormatArrayOfSheets), "Output format: array_of_sheets, object_by_sheet_name, array_of_named_sheets")
	cmd.Flags().StringVar(&f.naming, "naming", string(sheetjson.NamingRaw), "Key naming: raw, camel, snake, kebab (camel splits on underscores and folds acronyms: userID -> userId)")
	cmd.Flags().StringArrayVar(&f.ignoreSheets, "ignore-sheet", nil, "Regexp of sheet names to skip (repeatable)")
	cmd.Flags().StringArrayVar(&f.ignoreColumns, "ignore-column", nil, "Regexp of column headers to skip (repeatable)")
	cmd.Flags().IntVar(&f.maxRows, "max-rows", 0, "Maximum rows per sheet (0: no limit)")
	cmd.Flags().StringVar(&f.sheetsDir, "sheets-dir", "", "Directory for per-sheet output files")
	cmd.Flags().StringVar(&f.title, "title", "", "Envelope metadata title")
	cmd.Flags().StringVar(&f.link, "link", "", "Envelope metadata link")
	cmd.Flags().Int64Var(&f.timestamp, "timestamp", 0, "Envelope metadata timestamp (microseconds)")
	return cmd
}

func runConvert(cmd *cobra.Command, inputPath string, f convertFlags) error {
	format, err := sheetjson.ParseOutputFormat(f.format)
	if err != nil {
		return err
	}
	naming, err := sheetjson.ParseNamingConvention(f.naming)
	if err != nil {
		return err
	}

	opts := sheetjson.Options{
		IgnoreSheetPatterns:  f.ignoreSheets,
		IgnoreColumnPatterns: f.ignoreColumns,
		Format:               format,
		Naming:               naming,
		MaxRows:              f.maxRows,
		Logger:               logger.WithField("input", inputPath),
	}

	wb, err := openWorkbook(cmd.InOrStdin(), inputPath, opts)
	if err != nil {
		return err
	}
	defer wb.Close()

	results, err := wb.ExportSheets()
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	if f.sheetsDir != "" {
		written, err := output.WriteSheetFiles(results, f.sheetsDir, f.pretty)
		if err != nil {
			return fmt.Errorf("failed to write sheet files: %w", err)
		}
		logger.WithField("files", len(written)).Info("Wrote sheet files")
		if f.outputPath == "" {
			return nil
		}
	}

	data, err := sheetjson.Combine(results, format)
	if err != nil {
		return err
	}
	var payload any = data
	if cmd.Flags().Changed("title") || cmd.Flags().Changed("link") || cmd.Flags().Changed("timestamp") {
		payload = &models.Envelope{
			Metadata: models.DocumentMetadata{Title: f.title, Link: f.link, Timestamp: f.timestamp},
			Data:     data,
		}
	}

	jsonData, err := output.ToJSON(payload, f.pretty)
	if err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}

	if f.outputPath != "" {
		if err := os.WriteFile(f.outputPath, jsonData, 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(jsonData))
	return err
}

func openWorkbook(stdin io.Reader, inputPath string, opts sheetjson.Options) (*sheetjson.Workbook, error) {
	if inputPath == "-" {
		return sheetjson.Open(stdin, opts)
	}
	return sheetjson.OpenFile(inputPath, opts)
}
