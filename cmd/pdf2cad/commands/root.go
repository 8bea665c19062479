package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/spherical/pdf2cad/cmd/pdf2cad/ui"
	"github.com/spherical/pdf2cad/internal/config"
	"github.com/spherical/pdf2cad/internal/observability"
)

var (
	cfgFile string
	verbose bool
	noColor bool

	cfg    *config.Config
	logger *observability.Logger
)

var rootCmd = &cobra.Command{
	Use:   "pdf2cad",
	Short: "Convert PDF drawings into DXF files",
	Long: `pdf2cad reads the text and page geometry of PDF documents and writes them
as AutoCAD R2000 DXF drawings that any CAD package can open.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		ui.InitUI(noColor, verbose)

		loaded, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		cfg = loaded

		level := cfg.Observability.LogLevel
		if verbose {
			level = "debug"
		} else if cfg.Observability.LogFormat == "console" && os.Getenv("LOG_LEVEL") == "" {
			// keep console diagnostics below the spinner unless asked
			level = "warn"
		}
		logger = observability.NewLogger(observability.LogConfig{
			Level:       level,
			Format:      cfg.Observability.LogFormat,
			Output:      os.Stderr,
			ServiceName: "pdf2cad",
		})
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
