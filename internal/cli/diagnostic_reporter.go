package cli

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/fatih/color"

	"github.com/toyz/bindgraph/internal/errors"
	"github.com/toyz/bindgraph/internal/validation"
)

// DiagnosticReporter prints validation diagnostics and run failures in a
// user-friendly format. It implements validation.Sink.
type DiagnosticReporter struct {
	mu       sync.Mutex
	verbose  bool
	out      io.Writer
	errors   int
	warnings int
	notes    int
}

// NewDiagnosticReporter creates a reporter writing to stderr
func NewDiagnosticReporter(verbose bool) *DiagnosticReporter {
	return &DiagnosticReporter{
		verbose: verbose,
		out:     os.Stderr,
	}
}

// SetOutput redirects the reporter
func (r *DiagnosticReporter) SetOutput(w io.Writer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.out = w
}

// Report implements validation.Sink
func (r *DiagnosticReporter) Report(d validation.Diagnostic) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var marker *color.Color
	switch d.Severity {
	case validation.Error:
		r.errors++
		marker = color.New(color.FgRed, color.Bold)
	case validation.Warning:
		r.warnings++
		marker = color.New(color.FgYellow, color.Bold)
	default:
		r.notes++
		if !r.verbose {
			return
		}
		marker = color.New(color.FgCyan)
	}

	marker.Fprintf(r.out, "%s: ", d.Severity)
	if d.Element != "" {
		fmt.Fprintf(r.out, "[%s] ", d.Element)
	}
	lines := strings.Split(d.Message, "\n")
	fmt.Fprintln(r.out, lines[0])
	for _, line := range lines[1:] {
		fmt.Fprintf(r.out, "  %s\n", line)
	}
	if r.verbose && d.Annotation != "" {
		fmt.Fprintf(r.out, "  on annotation %s\n", d.Annotation)
	}
}

// ReportWarning prints a warning that did not come from validation
func (r *DiagnosticReporter) ReportWarning(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warnings++
	color.New(color.FgYellow, color.Bold).Fprint(r.out, "! ")
	fmt.Fprintf(r.out, "%s\n", message)
}

// ReportError prints a run failure with its location, context and
// suggestions
func (r *DiagnosticReporter) ReportError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintf(r.out, "\nERROR: Validation Failed\n")
	fmt.Fprintf(r.out, "========================\n\n")

	var multi *errors.MultipleErrors
	var bgErr errors.BindgraphError
	switch {
	case stderrors.As(err, &multi):
		r.reportMultipleErrors(multi)
	case stderrors.As(err, &bgErr):
		r.reportStructuredError(bgErr)
	default:
		fmt.Fprintf(r.out, "Message: %s\n", err.Error())
	}
	fmt.Fprintf(r.out, "\n")
}

func (r *DiagnosticReporter) reportStructuredError(err errors.BindgraphError) {
	title := err.ErrorCode().String()
	fmt.Fprintf(r.out, "Type: %s\n", title)
	fmt.Fprintf(r.out, "%s\n\n", strings.Repeat("-", len(title)+6))

	fmt.Fprintf(r.out, "Message: %s\n\n", err.Error())

	if ctx := err.Context(); len(ctx) > 0 && r.verbose {
		r.printContext(ctx)
	}
	if hints := err.Suggestions(); len(hints) > 0 {
		fmt.Fprintf(r.out, "Suggestions:\n")
		for i, hint := range hints {
			fmt.Fprintf(r.out, "   %d. %s\n", i+1, hint)
		}
	}
}

func (r *DiagnosticReporter) reportMultipleErrors(multi *errors.MultipleErrors) {
	fmt.Fprintf(r.out, "%d problems found:\n", multi.Count())
	for i, e := range multi.Errors {
		fmt.Fprintf(r.out, "   %d. %s\n", i+1, e.Error())
	}
	if hints := multi.Suggestions(); len(hints) > 0 {
		fmt.Fprintf(r.out, "\nSuggestions:\n")
		for i, hint := range hints {
			fmt.Fprintf(r.out, "   %d. %s\n", i+1, hint)
		}
	}
}

func (r *DiagnosticReporter) printContext(ctx map[string]interface{}) {
	keys := make([]string, 0, len(ctx))
	for k := range ctx {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Fprintf(r.out, "Context:\n")
	for _, k := range keys {
		fmt.Fprintf(r.out, "   %s: %v\n", formatContextKey(k), ctx[k])
	}
	fmt.Fprintf(r.out, "\n")
}

// formatContextKey converts snake_case context keys to Title Case
func formatContextKey(key string) string {
	parts := strings.Split(key, "_")
	for i, part := range parts {
		if len(part) > 0 {
			parts[i] = strings.ToUpper(part[:1]) + part[1:]
		}
	}
	return strings.Join(parts, " ")
}

// Counts returns the number of errors and warnings reported so far
func (r *DiagnosticReporter) Counts() (errs, warnings int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.errors, r.warnings
}

// HasErrors reports whether any error was reported
func (r *DiagnosticReporter) HasErrors() bool {
	errs, _ := r.Counts()
	return errs > 0
}
