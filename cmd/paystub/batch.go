package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/paystubs/internal/core"
	"github.com/joseph-ayodele/paystubs/internal/export"
	"github.com/joseph-ayodele/paystubs/internal/ingest"
)

var xlsxOut string

func init() {
	batchCmd.Flags().StringVar(&xlsxOut, "xlsx", "", "write a Summary/Line Items workbook to this path instead of JSON")
}

var batchCmd = &cobra.Command{
	Use:   "batch <file|dir>...",
	Short: "Extract up to 10 paystubs in one run",
	Long: `Extract several paystubs independently. Directories are scanned for
supported documents. One failing document does not fail the batch.

Examples:
  paystub batch jan.pdf feb.pdf
  paystub batch ./stubs --xlsx stubs.xlsx`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBatch,
}

func runBatch(cmd *cobra.Command, args []string) error {
	paths, err := expandPaths(args)
	if err != nil {
		return err
	}
	docs := make([]core.Document, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("read %s: %w", p, err)
		}
		docs = append(docs, core.Document{Filename: filepath.Base(p), Data: data})
	}

	proc := core.NewProcessorFromConfig(cfg, logger, nil)
	entries, err := proc.ProcessBatch(cmd.Context(), docs)
	if err != nil {
		return err
	}

	if xlsxOut == "" {
		return writeJSON(cmd.OutOrStdout(), entries, true)
	}
	b, err := export.BatchXLSX(entries)
	if err != nil {
		return err
	}
	if err := os.WriteFile(xlsxOut, b, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", xlsxOut, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d documents to %s\n", len(entries), xlsxOut)
	return nil
}

func expandPaths(args []string) ([]string, error) {
	var out []string
	for _, a := range args {
		fi, err := os.Stat(a)
		if err != nil {
			return nil, err
		}
		if !fi.IsDir() {
			out = append(out, a)
			continue
		}
		found, _, err := ingest.ScanDirectory(a)
		if err != nil {
			return nil, err
		}
		out = append(out, found...)
	}
	return out, nil
}
