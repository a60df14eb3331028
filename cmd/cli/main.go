package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"goeda/adapters/excel"
	"goeda/domain/dataset"
	"goeda/domain/eda"
	"goeda/internal"
	"goeda/internal/config"
	"goeda/internal/container"
	apperrors "goeda/internal/errors"
	"goeda/internal/overview"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error [%s]: %v\n", apperrors.GetCode(err), err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var logLevel string

	rootCmd := &cobra.Command{
		Use:           "goeda",
		Short:         "Automated exploratory data analysis reports for CSV and XLSX datasets",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", os.Getenv("LOG_LEVEL"), "Log level: ERROR, WARN, INFO, DEBUG, TRACE")

	logger := func() *internal.Logger {
		return internal.NewLogger(internal.ParseLogLevel(logLevel))
	}

	rootCmd.AddCommand(
		newRunCmd(logger),
		newOverviewCmd(logger),
		newInitCmd(),
		newColumnsCmd(logger),
		newCatalogCmd(),
	)
	return rootCmd
}

func newRunCmd(logger func() *internal.Logger) *cobra.Command {
	var configPath string
	var skipOverview bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the configured analyses and write the report",
		Long: `Load the configuration, read and sample the dataset, print the basic
overview, run every enabled analysis and persist plots and insights.

The configuration is read from --config or discovered as config/config.{yml,yaml,toml}.

Example: goeda run --config config/config.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd.Context(), cmd.OutOrStdout(), logger(), configPath, skipOverview)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to the configuration file")
	cmd.Flags().BoolVar(&skipOverview, "no-overview", false, "Do not print the basic dataset overview")
	return cmd
}

func newOverviewCmd(logger func() *internal.Logger) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "overview",
		Short: "Print shape, schema, head and describe statistics of the configured dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger()
			defer log.Sync()

			c, rc, table, err := load(cmd.Context(), log, configPath)
			if err != nil {
				return err
			}
			defer c.Close()
			_, err = overview.Print(cmd.OutOrStdout(), table.Sample(rc.Sample, rc.Seed), rc.RepresentativeColumns, rc.NullThreshold, log)
			return err
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to the configuration file")
	return cmd
}

func newInitCmd() *cobra.Command {
	var path string
	var force bool

	cmd := &cobra.Command{
		Use:   "init [input-path]",
		Short: "Write a starter configuration file",
		Long: `Write a complete configuration with every analysis enabled and defaulted columns.

Example: goeda init data/sales.csv --path config/config.yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := "data/input.csv"
			if len(args) == 1 {
				input = args[0]
			}
			if err := config.WriteTemplate(config.Template(input), path, force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "path", filepath.Join(config.DefaultDir, "config.yaml"), "Where to write the configuration")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}

func newColumnsCmd(logger func() *internal.Logger) *cobra.Command {
	readerCfg := excel.ReaderConfig{}

	cmd := &cobra.Command{
		Use:   "columns [file]",
		Short: "List the typed schema of a CSV or XLSX file",
		Long: `Read a file and show how each column is typed and classified. Numeric
columns feed outliers and correlation; categorical columns feed category dominance.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger()
			defer log.Sync()

			if !excel.SupportedExtension(args[0]) {
				return apperrors.InvalidInput("only CSV and XLSX files are supported")
			}
			readerCfg.FilePath = args[0]
			table, err := excel.NewDataReader(readerCfg, log).Read(cmd.Context())
			if err != nil {
				return err
			}
			printColumns(cmd.OutOrStdout(), table)
			return nil
		},
	}

	cmd.Flags().StringVar(&readerCfg.Encoding, "encoding", excel.EncodingUTF8, "CSV encoding: utf-8, ascii or latin-1")
	cmd.Flags().StringVar(&readerCfg.Sheet, "sheet", "", "XLSX sheet, defaults to the first one")
	cmd.Flags().BoolVar(&readerCfg.ParseDates, "parse-dates", false, "Type ISO date columns as datetime")
	cmd.Flags().BoolVar(&readerCfg.LenientNumbers, "lenient-numbers", false, "Accept currency, percent and thousands separators in numbers")
	return cmd
}

func newCatalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List analysis ids, outlier methods, palettes and plot templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := container.New(internal.NewLoggerWithZap(internal.LogLevelError, nil))
			if err != nil {
				return err
			}
			ids := make([]string, len(eda.AnalysisIDs))
			for i, id := range eda.AnalysisIDs {
				ids[i] = string(id)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Analyses:        %s\n", strings.Join(ids, ", "))
			fmt.Fprintf(w, "Outlier methods: %s\n", strings.Join(c.Registry.Methods(), ", "))
			fmt.Fprintf(w, "Palettes:        %s\n", strings.Join(eda.Palettes(), ", "))
			fmt.Fprintf(w, "Templates:       %s\n", strings.Join(eda.Templates(), ", "))
			fmt.Fprintf(w, "Plot formats:    %s, %s\n", config.FormatPNG, config.FormatXLSX)
			return nil
		},
	}
}

// load resolves the configuration and reads the dataset it points at
func load(ctx context.Context, log *internal.Logger, configPath string) (*container.Container, *config.RunConfig, *dataset.Table, error) {
	path, err := config.Discover(configPath, config.DefaultDir)
	if err != nil {
		return nil, nil, nil, err
	}
	f, err := config.Load(path)
	if err != nil {
		return nil, nil, nil, err
	}
	rc, err := config.Validate(f, time.Now())
	if err != nil {
		return nil, nil, nil, err
	}
	log.Debug("configuration %s validated", path)

	c, err := container.New(log)
	if err != nil {
		return nil, nil, nil, err
	}
	table, err := c.FileReader(rc).Read(ctx)
	if err != nil {
		c.Close()
		return nil, nil, nil, err
	}
	return c, rc, table, nil
}

func runReport(ctx context.Context, w io.Writer, log *internal.Logger, configPath string, skipOverview bool) error {
	defer log.Sync()

	c, rc, table, err := load(ctx, log, configPath)
	if err != nil {
		return err
	}
	defer c.Close()

	if !skipOverview {
		if _, err := overview.Print(w, table.Sample(rc.Sample, rc.Seed), rc.RepresentativeColumns, rc.NullThreshold, log); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}

	res, err := c.Pipeline.Run(ctx, rc, table, log)
	if err != nil {
		return err
	}

	report := res.Report
	fmt.Fprintf(w, "Report %s: %d analyses over %s (%d rows) in %s\n",
		report.RunID, len(report.Order()), report.Dataset, report.Rows, res.Elapsed.Round(time.Millisecond))
	for _, f := range res.Artifacts.Files() {
		fmt.Fprintf(w, "  wrote %s\n", f)
	}
	if rc.Settings.Toggles.SavePlots {
		fmt.Fprintf(w, "  plots under %s\n", rc.ReportDir)
	}
	return nil
}

func printColumns(w io.Writer, table *dataset.Table) {
	class := table.Classification()
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "column\ttype\tclass\tnulls\n")
	for _, f := range table.Schema() {
		role := "other"
		switch {
		case class.IsNumeric(f.Name):
			role = "numeric"
		case class.IsCategorical(f.Name):
			role = "categorical"
		}
		col, _ := table.Column(f.Name)
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", f.Name, f.Type, role, col.NullCount())
	}
	tw.Flush()
	fmt.Fprintf(w, "%d rows, %d numeric, %d categorical\n", table.Rows(), len(class.Numeric), len(class.Categorical))
}
