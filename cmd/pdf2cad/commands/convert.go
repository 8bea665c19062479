package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/spherical/pdf2cad/cmd/pdf2cad/ui"
	"github.com/spherical/pdf2cad/internal/config"
	"github.com/spherical/pdf2cad/internal/domain"
	"github.com/spherical/pdf2cad/pkg/converter"
)

var (
	convertOutputPath string
	convertOutputDir  string
)

var convertCmd = &cobra.Command{
	Use:   "convert <pdf-file>...",
	Short: "Convert one or more PDF files to DXF",
	Long: `Convert reads each PDF and writes a DXF drawing containing the page frames
as lines and the page text as stacked annotations.

With a single input, --output names the drawing. With several inputs the
drawings are written next to each input, or into --output-dir.`,
	Example: `  pdf2cad convert plan.pdf
  pdf2cad convert -o sheet.dxf plan.pdf
  pdf2cad convert --output-dir drawings/ *.pdf`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringVarP(&convertOutputPath, "output", "o", "", "Output file path (default: <input-name> with the configured format extension)")
	convertCmd.Flags().StringVarP(&convertOutputDir, "output-dir", "d", "", "Directory for output files")
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	if convertOutputPath != "" && len(args) > 1 {
		return fmt.Errorf("--output can only be used with a single input; use --output-dir")
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case <-sigCh:
			ui.Warning("Received interrupt signal, shutting down...")
			cancel()
		case <-ctx.Done():
		}
	}()

	client, err := converter.NewClient(cfg, logger)
	if err != nil {
		return err
	}

	outDir := convertOutputDir
	if outDir == "" {
		outDir = config.ResolveRelativePath(cfgFile, cfg.Output.Directory)
	}

	if len(args) == 1 {
		out := convertOutputPath
		if out == "" {
			out = client.OutputPath(args[0], outDir)
		}
		return convertOne(ctx, client, args[0], out)
	}

	jobs := make([]converter.Job, 0, len(args))
	for _, in := range args {
		jobs = append(jobs, converter.Job{Input: in, Output: client.OutputPath(in, outDir)})
	}
	return convertBatch(ctx, client, jobs)
}

func convertOne(ctx context.Context, client *converter.Client, in, out string) error {
	ui.Section("PDF to DXF")
	ui.Info("PDF file: %s", in)
	ui.Info("Output file: %s", out)
	ui.Newline()

	events, err := client.Process(ctx, in, out)
	if err != nil {
		return err
	}

	startTime := time.Now()
	spin := ui.NewSpinner("Loading PDF...")
	spin.Start()

	var report *converter.Report
	var failure string
	for event := range events {
		switch event.Type {
		case converter.EventExtracted:
			if stats, ok := event.Payload.(domain.ExtractionStats); ok {
				spin.UpdateMessage(fmt.Sprintf("Writing %d vectors and %d text elements...", stats.Vectors, stats.Texts))
			}
		case converter.EventSkipped:
			if skipped, ok := event.Payload.(domain.SkipStats); ok {
				spin.Stop()
				for kind, n := range skipped.Unsupported {
					ui.Warning("Skipped %d unsupported %s primitives", n, kind)
				}
				if skipped.Malformed > 0 {
					ui.Warning("Skipped %d malformed primitives", skipped.Malformed)
				}
				spin.Start()
			}
		case converter.EventError:
			failure = fmt.Sprint(event.Payload)
		case converter.EventComplete:
			report, _ = event.Payload.(*converter.Report)
		}
	}
	spin.Stop()

	if report == nil {
		if failure == "" {
			failure = "conversion did not complete"
		}
		return fmt.Errorf("conversion failed: %s", failure)
	}

	ui.Success("Conversion completed successfully!")
	ui.Newline()
	ui.Section("Conversion Summary")
	ui.Table([]string{"Metric", "Value"}, [][]string{
		{"Output File", out},
		{"Lines", fmt.Sprint(report.Lines)},
		{"Text Elements", fmt.Sprint(report.Texts)},
		{"Skipped", fmt.Sprint(report.Skipped)},
		{"Handles", fmt.Sprint(report.Handles)},
		{"Size", fmt.Sprintf("%d bytes", report.Bytes)},
		{"Duration", ui.FormatDuration(time.Since(startTime))},
	})
	ui.Newline()
	ui.Success("DXF saved to: %s", out)
	return nil
}

func convertBatch(ctx context.Context, client *converter.Client, jobs []converter.Job) error {
	ui.Section(fmt.Sprintf("Converting %d PDF files", len(jobs)))

	startTime := time.Now()
	bar := ui.NewProgressBar(int64(len(jobs)), "Converting")
	results, err := client.ConvertAll(ctx, jobs, func(converter.Result) {
		bar.Add(1)
	})
	bar.Finish()

	rows := make([][]string, 0, len(results))
	for _, r := range results {
		status := "ok"
		detail := ""
		if r.Err != nil {
			status = "failed"
			detail = r.Err.Error()
		} else if r.Report != nil {
			detail = r.Report.String()
		}
		rows = append(rows, []string{r.Job.Input, r.Job.Output, status, detail})
	}
	ui.Newline()
	ui.Table([]string{"Input", "Output", "Status", "Detail"}, rows)
	ui.Newline()
	ui.Info("Total time: %s", ui.FormatDuration(time.Since(startTime)))

	if err != nil {
		return err
	}
	ui.Success("Converted %d files", len(jobs))
	return nil
}
