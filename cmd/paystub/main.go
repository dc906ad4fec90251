// Command paystub extracts structured paystub data from local documents.
package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/paystubs/internal/common"
)

var (
	configPath string
	logLevel   string
	noOCR      bool
	languages  []string

	cfg    *common.Config
	logger *slog.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "paystub",
	Short: "Extract structured data from paystub documents",
	Long: `paystub reads PDF, image or text paystubs and prints the extracted
pay amounts, dates, earnings, deductions, taxes and year-to-date totals.

External tools (pdftotext, pdftoppm or ImageMagick, tesseract) are used when
they are installed; configuration comes from paystub.yaml and PAYSTUB_*
environment variables.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&noOCR, "no-ocr", false, "disable OCR of scanned pages")
	rootCmd.PersistentFlags().StringSliceVar(&languages, "lang", nil, "tesseract languages, e.g. --lang eng,spa")
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(detectCmd)
}

func setup(cmd *cobra.Command, _ []string) error {
	c, err := common.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if logLevel != "" {
		c.Logging.Level = logLevel
	}
	if noOCR {
		c.OCR.Enabled = false
	}
	if len(languages) > 0 {
		c.OCR.Languages = languages
	}
	cfg = c
	logger = common.NewLoggerTo(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)
	logger.Debug("config loaded", "ocr", cfg.OCR.Enabled, "languages", strings.Join(cfg.OCR.Languages, "+"))
	return nil
}
