package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/kasparro/contentpipe-go/pipeline"
	"github.com/kasparro/contentpipe-go/pipeline/agent"
	"github.com/kasparro/contentpipe-go/pipeline/source"
)

func newWatchCmd() *cobra.Command {
	var (
		dir          string
		topologyPath string
		storeKind    string
		dsn          string
		parallel     int
		stepTimeout  time.Duration
		debounce     time.Duration
		metricsAddr  string
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch a directory and run the pipeline on product files",
		Long: `Watch a directory for JSON product files and run the pipeline once
per created or changed file. Every run persists to the configured
store. With --metrics-addr, run and step metrics are served on
/metrics in Prometheus format.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			resolveStoreFlags(cmd, &storeKind, &dsn, "")

			return runWatch(watchConfig{
				dir:          dir,
				topologyPath: topologyPath,
				storeKind:    storeKind,
				dsn:          dsn,
				parallel:     parallel,
				stepTimeout:  stepTimeout,
				debounce:     debounce,
				metricsAddr:  metricsAddr,
			})
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "directory to watch for *.json product files")
	cmd.Flags().StringVarP(&topologyPath, "topology", "t", "", "YAML file describing a custom pipeline topology")
	cmd.Flags().StringVar(&storeKind, "store", "mem", "artifact store (mem, file, sqlite, mysql, postgres)")
	cmd.Flags().StringVar(&dsn, "dsn", "", "store target (directory, sqlite file, or database DSN)")
	cmd.Flags().IntVar(&parallel, "parallel", 0, "max steps executed concurrently (0 = sequential)")
	cmd.Flags().DurationVar(&stepTimeout, "step-timeout", 0, "per-step timeout (0 = none)")
	cmd.Flags().DurationVar(&debounce, "debounce", 500*time.Millisecond, "quiet period before a changed file triggers a run")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "address to serve /metrics and /healthz on (empty = disabled)")

	return cmd
}

type watchConfig struct {
	dir          string
	topologyPath string
	storeKind    string
	dsn          string
	parallel     int
	stepTimeout  time.Duration
	debounce     time.Duration
	metricsAddr  string
}

func runWatch(cfg watchConfig) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := buildStore(ctx, cfg.storeKind, cfg.dsn)
	if err != nil {
		return err
	}
	defer st.Close()

	opts := buildOptions(st, cfg.parallel, cfg.stepTimeout)
	if cfg.metricsAddr != "" {
		opts = append(opts, pipeline.WithMetrics(pipeline.NewPrometheusMetrics(prometheus.DefaultRegisterer)))
		go serveMetrics(cfg.metricsAddr)
	}

	orch := pipeline.New(opts...)
	for _, a := range agent.Defaults() {
		orch.RegisterAgent(a)
	}
	if cfg.topologyPath != "" {
		p, err := loadTopology(cfg.topologyPath, orch)
		if err != nil {
			return err
		}
		orch.SetPipeline(p)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(cfg.dir); err != nil {
		return fmt.Errorf("watch %s: %w", cfg.dir, err)
	}

	printInfo(fmt.Sprintf("watching %s for product files", cfg.dir))

	// Editors fire several events per save; collapse them into one run
	// per file after a quiet period.
	runs := make(chan string)
	var mu sync.Mutex
	pending := make(map[string]*time.Timer)

	schedule := func(path string) {
		mu.Lock()
		defer mu.Unlock()

		if t, ok := pending[path]; ok {
			t.Stop()
		}
		pending[path] = time.AfterFunc(cfg.debounce, func() {
			mu.Lock()
			delete(pending, path)
			mu.Unlock()

			select {
			case runs <- path:
			case <-ctx.Done():
			}
		})
	}

	for {
		select {
		case <-ctx.Done():
			printInfo("shutting down")
			return nil

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			printWarning(fmt.Sprintf("watch error: %v", err))

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if strings.ToLower(filepath.Ext(event.Name)) != ".json" {
				continue
			}
			schedule(event.Name)

		case path := <-runs:
			runOne(ctx, orch, path)
		}
	}
}

// runOne executes the pipeline for a single product file. Failures are
// reported and swallowed so the watch loop keeps serving later files.
func runOne(ctx context.Context, orch *pipeline.Orchestrator, path string) {
	printInfo(fmt.Sprintf("running pipeline for %s", path))

	raw, err := source.NewFile(path).Fetch(ctx)
	if err != nil {
		printError(err.Error())
		return
	}

	if _, err := orch.ExecutePipeline(ctx, raw); err != nil {
		printError(fmt.Sprintf("run aborted: %v", err))
		return
	}

	summary, err := orch.PipelineSummary()
	if err != nil {
		printError(err.Error())
		return
	}
	if summary.HasFailures {
		printWarning(fmt.Sprintf("%s: %d of %d steps completed", filepath.Base(path),
			summary.StatusCounts[pipeline.StatusCompleted], summary.TotalSteps))
		return
	}
	printSuccess(fmt.Sprintf("%s: all %d steps completed", filepath.Base(path), summary.TotalSteps))
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	printInfo(fmt.Sprintf("metrics listening on %s", addr))
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		printError(fmt.Sprintf("metrics server: %v", err))
	}
}
