package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/toyz/bindgraph/internal/cli"
	"github.com/toyz/bindgraph/internal/server"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	config := cli.DefaultConfig()
	flags := flag.NewFlagSet("bindgraph", flag.ContinueOnError)

	flags.BoolVar(&config.Verbose, "verbose", false, "Enable verbose output and detailed error reporting")
	flags.BoolVar(&config.Quiet, "quiet", false, "Only show errors and final results")
	flags.IntVar(&config.Rounds, "rounds", config.Rounds, "Rounds a component may wait for pending declarations")
	flags.BoolVar(&config.FullGraph, "full-graph", false, "Also validate every module and component as a full binding graph")
	flags.BoolVar(&config.StrictSingleton, "strict-singleton", false, "Reject @Singleton components that depend on scoped components")
	flags.StringVar(&config.Serve, "serve", "", "Serve the validation HTTP API on this address instead of validating manifests")
	help := flags.Bool("help", false, "Show help information")

	flags.Usage = func() {
		out := flags.Output()
		fmt.Fprintf(out, "Usage: bindgraph [options] <manifest...>\n\n")
		fmt.Fprintf(out, "Dependency graph validator\n")
		fmt.Fprintf(out, "Resolves the components declared in YAML manifests and reports every binding problem.\n\n")
		fmt.Fprintf(out, "Options:\n")
		flags.PrintDefaults()
		fmt.Fprintf(out, "\nArguments:\n")
		fmt.Fprintf(out, "  manifest    Declaration manifests, processed one per round in order\n")
		fmt.Fprintf(out, "\nExamples:\n")
		fmt.Fprintf(out, "  bindgraph app.yaml                      # Validate one manifest\n")
		fmt.Fprintf(out, "  bindgraph round1.yaml round2.yaml       # Declarations arriving over two rounds\n")
		fmt.Fprintf(out, "  bindgraph --full-graph app.yaml         # Also validate modules on their own\n")
		fmt.Fprintf(out, "  bindgraph --serve :8080                 # Start the HTTP API\n")
	}

	if err := flags.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if *help {
		flags.Usage()
		return 0
	}
	config.Manifests = flags.Args()

	reporter := cli.NewDiagnosticReporter(config.Verbose)
	if err := config.Validate(); err != nil {
		reporter.ReportError(err)
		flags.Usage()
		return 1
	}
	diagnostics := config.Diagnostics()

	if config.Serve != "" {
		srv := server.New(config.ProcessorConfig(), diagnostics)
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() { errCh <- srv.Start(config.Serve) }()

		select {
		case err := <-errCh:
			if err != nil {
				diagnostics.Error("Server failed: %v", err)
				return 1
			}
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				diagnostics.Error("Shutdown failed: %v", err)
				return 1
			}
		}
		return 0
	}

	diagnostics.Section("bindgraph")
	if config.Verbose {
		diagnostics.Subsection("Configuration")
		diagnostics.List("Manifests: %s", strings.Join(config.Manifests, ", "))
		diagnostics.List("Max rounds: %d", config.Rounds)
		diagnostics.List("Full binding graph: %t", config.FullGraph)
	}

	runner := cli.NewRunner(config, reporter, diagnostics)
	if err := runner.Run(); err != nil {
		reporter.ReportError(err)
		return 1
	}

	summary := runner.Summary()
	diagnostics.Summary("Validation Complete", map[string]interface{}{
		"Rounds":            summary.Rounds,
		"Components":        summary.Components,
		"Clean components":  len(summary.Clean),
		"Implicit bindings": summary.ImplicitBindings,
		"Errors":            summary.Errors,
		"Warnings":          summary.Warnings,
	})
	if summary.Errors > 0 {
		diagnostics.Error("%d error(s) found", summary.Errors)
		return 1
	}
	diagnostics.Success("All components resolved cleanly")
	return 0
}
