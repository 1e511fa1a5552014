package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kasparro/contentpipe-go/pipeline"
	"github.com/kasparro/contentpipe-go/pipeline/agent"
	"github.com/kasparro/contentpipe-go/pipeline/content"
	"github.com/kasparro/contentpipe-go/pipeline/emit"
	"github.com/kasparro/contentpipe-go/pipeline/source"
	"github.com/kasparro/contentpipe-go/pipeline/store"
)

func newRunCmd() *cobra.Command {
	var (
		inputPath    string
		inputURL     string
		topologyPath string
		outDir       string
		storeKind    string
		dsn          string
		parallel     int
		stepTimeout  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the content pipeline once",
		Long: `Run the full pipeline against a single product input.

The input comes from --input (a JSON file), --input-url (an HTTP
endpoint returning JSON), or, when neither is given, a built-in sample
product. Generated pages are reported per step and persisted to the
store chosen with --store.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if inputPath != "" && inputURL != "" {
				return fmt.Errorf("--input and --input-url are mutually exclusive")
			}
			if outDir != "" && cmd.Flags().Changed("store") && storeKind != "file" {
				return fmt.Errorf("--out implies --store file, not %s", storeKind)
			}
			resolveStoreFlags(cmd, &storeKind, &dsn, outDir)

			return runPipeline(runConfig{
				inputPath:    inputPath,
				inputURL:     inputURL,
				topologyPath: topologyPath,
				storeKind:    storeKind,
				dsn:          dsn,
				parallel:     parallel,
				stepTimeout:  stepTimeout,
			})
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "JSON file with raw product data")
	cmd.Flags().StringVar(&inputURL, "input-url", "", "HTTP endpoint returning raw product data")
	cmd.Flags().StringVarP(&topologyPath, "topology", "t", "", "YAML file describing a custom pipeline topology")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "directory to export pages into (shorthand for --store file --dsn DIR)")
	cmd.Flags().StringVar(&storeKind, "store", "mem", "artifact store (mem, file, sqlite, mysql, postgres)")
	cmd.Flags().StringVar(&dsn, "dsn", "", "store target (directory, sqlite file, or database DSN)")
	cmd.Flags().IntVar(&parallel, "parallel", 0, "max steps executed concurrently (0 = sequential)")
	cmd.Flags().DurationVar(&stepTimeout, "step-timeout", 0, "per-step timeout (0 = none)")

	return cmd
}

type runConfig struct {
	inputPath    string
	inputURL     string
	topologyPath string
	storeKind    string
	dsn          string
	parallel     int
	stepTimeout  time.Duration
}

// resolveStoreFlags layers the store settings: explicit flags win, then
// config file and CONTENTPIPE_* environment via viper, then the flag
// defaults. --out is shorthand for a file store rooted at the given
// directory.
func resolveStoreFlags(cmd *cobra.Command, storeKind, dsn *string, outDir string) {
	if !cmd.Flags().Changed("store") && viper.IsSet("store") {
		*storeKind = viper.GetString("store")
	}
	if !cmd.Flags().Changed("dsn") && viper.IsSet("dsn") {
		*dsn = viper.GetString("dsn")
	}
	if outDir != "" {
		*storeKind = "file"
		*dsn = outDir
	}
}

func runPipeline(cfg runConfig) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	raw, err := chooseSource(cfg.inputPath, cfg.inputURL).Fetch(ctx)
	if err != nil {
		return err
	}

	st, err := buildStore(ctx, cfg.storeKind, cfg.dsn)
	if err != nil {
		return err
	}
	defer st.Close()

	orch := pipeline.New(buildOptions(st, cfg.parallel, cfg.stepTimeout)...)
	for _, a := range agent.Defaults() {
		orch.RegisterAgent(a)
	}

	if cfg.topologyPath != "" {
		p, err := loadTopology(cfg.topologyPath, orch)
		if err != nil {
			return err
		}
		orch.SetPipeline(p)
		printInfo(fmt.Sprintf("using topology %s (%d steps)", p.Name, p.Len()))
	}

	start := time.Now()
	outputs, err := orch.ExecutePipeline(ctx, raw)
	if err != nil {
		return fmt.Errorf("pipeline aborted: %w", err)
	}

	summary, err := orch.PipelineSummary()
	if err != nil {
		return err
	}

	printStepTable(orch.BuildPipeline())
	printOutputs(outputs)

	if summary.HasFailures {
		return fmt.Errorf("pipeline finished with failures: %d of %d steps completed",
			summary.StatusCounts[pipeline.StatusCompleted], summary.TotalSteps)
	}

	printSuccess(fmt.Sprintf("%d steps completed in %s",
		summary.TotalSteps, time.Since(start).Round(time.Millisecond)))
	return nil
}

// chooseSource picks the product source for a run: a JSON file, an HTTP
// endpoint, or the built-in sample product.
func chooseSource(path, url string) source.Source {
	switch {
	case path != "":
		return source.NewFile(path)
	case url != "":
		return source.NewHTTP(url)
	default:
		return source.NewStatic(sampleProduct())
	}
}

// buildStore constructs the artifact store named by kind. The dsn is
// interpreted per store: a directory for file, a database file for
// sqlite, and a connection string for mysql and postgres.
func buildStore(ctx context.Context, kind, dsn string) (store.Store, error) {
	switch kind {
	case "", "mem":
		return store.NewMemStore(), nil
	case "file":
		if dsn == "" {
			dsn = "contentpipe-output"
		}
		return store.NewFileStore(dsn)
	case "sqlite":
		if dsn == "" {
			dsn = "contentpipe.db"
		}
		return store.NewSQLiteStore(dsn)
	case "mysql":
		if dsn == "" {
			return nil, fmt.Errorf("--store mysql requires --dsn")
		}
		return store.NewMySQLStore(dsn)
	case "postgres":
		if dsn == "" {
			return nil, fmt.Errorf("--store postgres requires --dsn")
		}
		return store.NewPostgresStore(ctx, dsn)
	default:
		return nil, fmt.Errorf("unknown store %q (want mem, file, sqlite, mysql or postgres)", kind)
	}
}

func buildOptions(st store.Store, parallel int, stepTimeout time.Duration) []pipeline.Option {
	opts := []pipeline.Option{pipeline.WithStore(st)}
	if quiet {
		opts = append(opts, pipeline.WithEmitter(emit.NewNullEmitter()))
	} else {
		opts = append(opts, pipeline.WithEmitter(emit.NewLogEmitter(os.Stdout, logFormat == "json")))
	}
	if parallel > 0 {
		opts = append(opts, pipeline.WithMaxConcurrent(parallel))
	}
	if stepTimeout > 0 {
		opts = append(opts, pipeline.WithStepTimeout(stepTimeout))
	}
	return opts
}

// sampleProduct is the built-in demo input used when neither --input
// nor --input-url is given, field names as they arrive from upstream.
func sampleProduct() map[string]interface{} {
	return map[string]interface{}{
		"Product Name":    "GlowBoost Vitamin C Serum",
		"Concentration":   "10% Vitamin C",
		"Skin Type":       "Oily, Combination",
		"Key Ingredients": "Vitamin C, Hyaluronic Acid",
		"Benefits":        "Brightening, Fades dark spots",
		"How to Use":      "Apply 2–3 drops in the morning before sunscreen",
		"Side Effects":    "Mild tingling for sensitive skin",
		"Price":           "₹699",
	}
}

func printStepTable(p *pipeline.Pipeline) {
	fmt.Println()
	fmt.Printf("  %-24s %-30s %-10s %s\n", "STEP", "NAME", "STATUS", "DURATION")
	for _, step := range p.Steps() {
		fmt.Printf("  %-24s %-30s %s %s\n",
			step.ID, step.Name, formatStatus(step.Status()), formatStepDuration(step))
		if msg := step.Err(); msg != "" {
			fmt.Printf("  %-24s %s\n", "", color.RedString(msg))
		}
	}
	fmt.Println()
}

// formatStatus pads before coloring; ANSI codes count into printf
// widths.
func formatStatus(s pipeline.Status) string {
	padded := fmt.Sprintf("%-10s", strings.ToUpper(string(s)))
	switch s {
	case pipeline.StatusCompleted:
		return color.GreenString(padded)
	case pipeline.StatusFailed:
		return color.RedString(padded)
	case pipeline.StatusRunning:
		return color.CyanString(padded)
	default:
		return color.YellowString(padded)
	}
}

func formatStepDuration(step *pipeline.Step) string {
	if step.StartedAt() == nil || step.FinishedAt() == nil {
		return "-"
	}
	return step.Duration().Round(time.Millisecond).String()
}

func printOutputs(outputs map[string]interface{}) {
	keys := make([]string, 0, len(outputs))
	for k := range outputs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		switch v := outputs[k].(type) {
		case content.GeneratedPage:
			printInfo(fmt.Sprintf("%s: %q (%d blocks)", k, v.Title, len(v.BlocksUsed)))
		case *content.QuestionSet:
			printInfo(fmt.Sprintf("%s: %d questions for %s", k, len(v.Questions), v.ProductName))
		case content.Product:
			printInfo(fmt.Sprintf("%s: %s (%s)", k, v.Name, v.Category))
		default:
			printInfo(fmt.Sprintf("%s: %T", k, v))
		}
	}
}
