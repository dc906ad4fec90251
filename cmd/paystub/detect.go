package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/paystubs/internal/core"
	"github.com/joseph-ayodele/paystubs/internal/core/ocr"
	"github.com/joseph-ayodele/paystubs/internal/core/patterns"
)

var detectCmd = &cobra.Command{
	Use:   "detect <file>",
	Short: "Print the payroll provider detected for a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDetect,
}

func runDetect(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	acq := ocr.NewExtractor(core.OCRConfig(cfg.OCR), logger)
	txt, err := acq.Extract(cmd.Context(), data)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	provider := patterns.DefaultLibrary().Detect(txt.Text)
	fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", provider, txt.Method, args[0])
	return nil
}
