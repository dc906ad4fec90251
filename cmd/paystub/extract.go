package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/paystubs/internal/core"
)

var pretty bool

func init() {
	extractCmd.Flags().BoolVar(&pretty, "pretty", false, "indent JSON output")
}

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Extract one paystub and print it as JSON",
	Long: `Extract one paystub and print the result as JSON.

Examples:
  # Native or scanned PDF
  paystub extract stub.pdf --pretty

  # Text layer only, no OCR
  paystub extract stub.pdf --no-ocr`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func runExtract(cmd *cobra.Command, args []string) error {
	proc := core.NewProcessorFromConfig(cfg, logger, nil)
	res, err := proc.ProcessFile(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	return writeJSON(cmd.OutOrStdout(), res, pretty)
}

func writeJSON(w io.Writer, v any, indent bool) error {
	enc := json.NewEncoder(w)
	if indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
