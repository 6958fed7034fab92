package cli

import (
	"fmt"
	"time"

	"github.com/toyz/bindgraph/internal/graph"
	"github.com/toyz/bindgraph/internal/models"
	"github.com/toyz/bindgraph/internal/session"
	"github.com/toyz/bindgraph/internal/source"
	"github.com/toyz/bindgraph/internal/utils"
)

// RunSummary describes a completed run
type RunSummary struct {
	Rounds           int
	Manifests        int
	Components       int
	Clean            []string
	Failed           []string
	ImplicitBindings int
	Errors           int
	Warnings         int
}

// Runner coordinates a CLI run: each manifest is added to the declaration
// source and processed as one round
type Runner struct {
	config      Config
	reporter    *DiagnosticReporter
	diagnostics *utils.DiagnosticSystem
	summary     RunSummary
}

// NewRunner creates a runner. A nil diagnostics system is derived from the
// config.
func NewRunner(config Config, reporter *DiagnosticReporter, diagnostics *utils.DiagnosticSystem) *Runner {
	if reporter == nil {
		reporter = NewDiagnosticReporter(config.Verbose)
	}
	if diagnostics == nil {
		diagnostics = config.Diagnostics()
	}
	return &Runner{
		config:      config,
		reporter:    reporter,
		diagnostics: diagnostics,
	}
}

// Summary returns the summary of the last run
func (r *Runner) Summary() RunSummary {
	return r.summary
}

// Run loads and processes the configured manifests. Validation problems are
// reported as diagnostics and counted in the summary; the returned error is
// reserved for manifests that cannot be loaded.
func (r *Runner) Run() error {
	manifests := make([]*source.Manifest, 0, len(r.config.Manifests))
	for _, path := range r.config.Manifests {
		r.diagnostics.Debug("Loading manifest %s", path)
		m, err := source.Load(path)
		if err != nil {
			return err
		}
		manifests = append(manifests, m)
	}
	return r.Process(manifests)
}

// Process runs one round per manifest and reports whatever is still deferred
// after the last one
func (r *Runner) Process(manifests []*source.Manifest) error {
	start := time.Now()
	r.summary = RunSummary{Manifests: len(manifests)}

	trigger := &summaryTrigger{runner: r}
	processor := session.NewProcessor(r.config.ProcessorConfig(), r.reporter, trigger, r.diagnostics)
	src := source.NewMemorySource()

	for i, m := range manifests {
		if err := src.Add(m); err != nil {
			return err
		}
		r.diagnostics.Subsection(fmt.Sprintf("Round %d", i+1))
		r.diagnostics.Indent()
		result := processor.Round(src)
		r.summary.Components += len(result.Processed)
		r.summary.Clean = append(r.summary.Clean, result.Clean...)
		r.summary.Failed = append(r.summary.Failed, result.Failed...)
		for _, name := range result.Deferred {
			r.diagnostics.Verbose("%s deferred", name)
		}
		r.diagnostics.Unindent()
	}

	if n := processor.Finish(); n > 0 {
		r.diagnostics.Warn("%d unit(s) were still waiting for declarations after the last round", n)
	}

	r.summary.Rounds = processor.Rounds()
	r.summary.Errors, r.summary.Warnings = r.reporter.Counts()
	r.diagnostics.Verbose("Run took %s", time.Since(start).Round(time.Millisecond))
	return nil
}

// summaryTrigger counts the output of clean components
type summaryTrigger struct {
	runner *Runner
}

func (t *summaryTrigger) ImplicitBinding(b *models.Binding) {
	t.runner.summary.ImplicitBindings++
	t.runner.diagnostics.Debug("Implicit binding %s", b.Describe())
}

func (t *summaryTrigger) GraphReady(g *graph.BindingGraph) {
	t.runner.diagnostics.Verbose("%s resolved: %d bindings, %d components",
		g.RootComponent().Name, len(g.BindingNodes()), len(g.ComponentPaths()))
}
