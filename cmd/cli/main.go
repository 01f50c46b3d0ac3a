package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"lora/adapters/excel"
	"lora/adapters/goslin"
	"lora/adapters/report"
	"lora/app"
	"lora/domain/analysis"
	"lora/domain/enrichment"
	"lora/domain/lipid"
	"lora/internal"
	"lora/internal/config"
	"lora/internal/container"
	"lora/ports"
)

func main() {
	if err := newRootCmd(goslin.ExecRunner).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(run goslin.CommandRunner) *cobra.Command {
	var logLevel string

	rootCmd := &cobra.Command{
		Use:           "lora",
		Short:         "Lipid over-representation analysis",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (error, warn, info, debug, trace)")

	logger := func() *internal.Logger {
		return internal.NewLogger(internal.ParseLogLevel(logLevel))
	}

	rootCmd.AddCommand(
		newEnrichCmd(logger),
		newNormalizeCmd(logger, run),
		newServeCmd(logger),
	)
	return rootCmd
}

func newEnrichCmd(logger func() *internal.Logger) *cobra.Command {
	var (
		queryPath, referencePath  string
		workbookPath, summaryPath string
		submitted                 int
		levels, subsetLevels      []string
		withinParams              []string
		testType, alternative     string
		correctionMethod          string
		alpha                     float64
		filterCount               int
		significantOnly           bool
	)
	defaults := enrichment.DefaultParams()

	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Test a query lipid table for enriched terms against a reference",
		Long: `Run the enrichment pipeline on parser output tables (tsv, csv or xlsx) and
print the report as JSON.

Example: lora enrich --query q.tsv --reference ref.tsv --levels category,class --workbook out.xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger()
			reader := excel.NewDataReader(log)

			var query, reference []lipid.Record
			g, _ := errgroup.WithContext(cmd.Context())
			g.Go(func() (err error) {
				query, err = reader.ReadRecordsFile(queryPath)
				return err
			})
			g.Go(func() (err error) {
				reference, err = reader.ReadRecordsFile(referencePath)
				return err
			})
			if err := g.Wait(); err != nil {
				return err
			}

			params := enrichment.Params{
				TestType:        enrichment.TestType(testType),
				Alternative:     enrichment.Alternative(alternative),
				Correction:      enrichment.CorrectionMethod(correctionMethod),
				Alpha:           alpha,
				FilterCount:     filterCount,
				SignificantOnly: significantOnly,
				Selection: enrichment.Selection{
					Levels:       levels,
					SubsetLevels: subsetLevels,
					WithinParams: withinParams,
				},
			}

			service := app.NewEnrichmentService(nil, 0, log)
			rep, err := service.Analyze(app.EnrichmentRequest{
				Query:     query,
				Reference: reference,
				Params:    params,
				Submitted: submitted,
			})
			if err != nil {
				return err
			}

			if workbookPath != "" {
				if err := renderFile(workbookPath, report.WorkbookRenderer{}, rep); err != nil {
					return err
				}
			}
			if summaryPath != "" {
				if err := renderFile(summaryPath, report.SummaryRenderer{}, rep); err != nil {
					return err
				}
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(rep)
		},
	}

	cmd.Flags().StringVar(&queryPath, "query", "", "query lipid table")
	cmd.Flags().StringVar(&referencePath, "reference", "", "reference lipid table")
	cmd.Flags().StringVar(&workbookPath, "workbook", "", "also write an xlsx workbook to this path")
	cmd.Flags().StringVar(&summaryPath, "summary", "", "also write an HTML summary to this path")
	cmd.Flags().IntVar(&submitted, "submitted", 0, "number of names originally submitted (defaults to the query size)")
	cmd.Flags().StringSliceVar(&levels, "levels", nil, "levels to test (category, class, acyls or a column name)")
	cmd.Flags().StringSliceVar(&subsetLevels, "subset-levels", nil, "levels to split into subsets")
	cmd.Flags().StringSliceVar(&withinParams, "within", nil, "parameters tested within each subset")
	cmd.Flags().StringVar(&testType, "test", string(defaults.TestType), "fisher or hypergeometric")
	cmd.Flags().StringVar(&alternative, "alternative", string(defaults.Alternative), "greater, less or two-sided")
	cmd.Flags().StringVar(&correctionMethod, "correction", string(defaults.Correction), "fdr_bh, bonferroni or holm")
	cmd.Flags().Float64Var(&alpha, "alpha", defaults.Alpha, "significance level")
	cmd.Flags().IntVar(&filterCount, "filter-count", defaults.FilterCount, "minimum query count for a term to be tested")
	cmd.Flags().BoolVar(&significantOnly, "significant-only", defaults.SignificantOnly, "only list significant terms in the table")
	_ = cmd.MarkFlagRequired("query")
	_ = cmd.MarkFlagRequired("reference")

	return cmd
}

func renderFile(path string, renderer ports.ReportRenderer, rep *analysis.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := renderer.Render(f, rep); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func newNormalizeCmd(logger func() *internal.Logger, run goslin.CommandRunner) *cobra.Command {
	var (
		jarPath, javaBin string
		grammar          string
		timeout          time.Duration
	)

	cmd := &cobra.Command{
		Use:   "normalize [names-file]",
		Short: "Normalize lipid names with the goslin parser",
		Long: `Read one lipid name per line (or the first column of a csv/xlsx file), run
the goslin parser and print the parsed records as tab separated values.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger()

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			names, err := excel.NewDataReader(log).ReadNames(f, excel.DetectFormat(args[0]))
			if err != nil {
				return err
			}

			normalizer := goslin.NewNormalizer(goslin.Config{
				JavaBin: javaBin,
				JarPath: jarPath,
				Timeout: timeout,
			}, run, log)
			records, err := normalizer.Normalize(cmd.Context(), names, grammar)
			if err != nil {
				return err
			}
			return writeRecords(cmd.OutOrStdout(), records)
		},
	}

	cmd.Flags().StringVar(&jarPath, "jar", os.Getenv("GOSLIN_JAR"), "goslin command line jar")
	cmd.Flags().StringVar(&javaBin, "java", "java", "java executable")
	cmd.Flags().StringVar(&grammar, "grammar", ports.GrammarLipid, "parser grammar")
	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "parser timeout")

	return cmd
}

// writeRecords prints records as TSV, name columns first.
func writeRecords(w io.Writer, records []lipid.Record) error {
	columns := []string{lipid.ColumnOriginalName, lipid.ColumnNormalizedName}
	for _, c := range lipid.Columns(records) {
		if c != lipid.ColumnOriginalName && c != lipid.ColumnNormalizedName {
			columns = append(columns, c)
		}
	}

	tw := csv.NewWriter(w)
	tw.Comma = '\t'
	if err := tw.Write(columns); err != nil {
		return err
	}
	row := make([]string, len(columns))
	for _, r := range records {
		for i, c := range columns {
			row[i] = r.Value(c)
		}
		if err := tw.Write(row); err != nil {
			return err
		}
	}
	tw.Flush()
	return tw.Error()
}

func newServeCmd(logger func() *internal.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			log := logger()
			c, err := container.New(ctx, cfg, log)
			if err != nil {
				return err
			}
			runErr := c.Server.Run(ctx)
			if err := c.Shutdown(context.Background()); err != nil {
				log.Error("shutdown: %v", err)
			}
			return runErr
		},
	}
}
