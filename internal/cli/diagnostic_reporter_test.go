package cli

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"github.com/toyz/bindgraph/internal/errors"
	"github.com/toyz/bindgraph/internal/validation"
)

func newTestReporter(verbose bool) (*DiagnosticReporter, *bytes.Buffer) {
	color.NoColor = true
	var buf bytes.Buffer
	r := NewDiagnosticReporter(verbose)
	r.SetOutput(&buf)
	return r, &buf
}

func TestDiagnosticReporter_Report(t *testing.T) {
	r, buf := newTestReporter(false)

	r.Report(validation.Diagnostic{
		Severity: validation.Error,
		Message:  "app.Foo cannot be provided without an @Inject constructor or an @Provides-annotated method.\n    app.Foo is requested at\n        app.AppComponent#foo",
		Element:  "app.AppComponent",
	})
	r.Report(validation.Diagnostic{Severity: validation.Warning, Message: "unused module"})
	r.Report(validation.Diagnostic{Severity: validation.Note, Message: "hidden note"})

	output := buf.String()
	assert.Contains(t, output, "error: [app.AppComponent] app.Foo cannot be provided")
	assert.Contains(t, output, "  app.Foo is requested at")
	assert.Contains(t, output, "warning: unused module")
	assert.NotContains(t, output, "hidden note")

	errs, warnings := r.Counts()
	assert.Equal(t, 1, errs)
	assert.Equal(t, 1, warnings)
	assert.True(t, r.HasErrors())
}

func TestDiagnosticReporter_VerboseShowsNotesAndAnnotations(t *testing.T) {
	r, buf := newTestReporter(true)

	r.Report(validation.Diagnostic{Severity: validation.Note, Message: "visible note"})
	r.Report(validation.Diagnostic{
		Severity:   validation.Error,
		Message:    "may not use more than one qualifier",
		Element:    "app.M#provide",
		Annotation: `@Named("b")`,
	})

	output := buf.String()
	assert.Contains(t, output, "note: visible note")
	assert.Contains(t, output, `on annotation @Named("b")`)
}

func TestDiagnosticReporter_ReportWarning(t *testing.T) {
	r, buf := newTestReporter(false)

	r.ReportWarning("This is a test warning")

	assert.Contains(t, buf.String(), "! This is a test warning")
	_, warnings := r.Counts()
	assert.Equal(t, 1, warnings)
	assert.False(t, r.HasErrors())
}

func TestDiagnosticReporter_ReportError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		verbose  bool
		contains []string
	}{
		{
			name: "structured error",
			err: errors.New(errors.VersionErrorCode, "manifest version is missing").
				WithSuggestion("add 'version: v1' at the top of the manifest"),
			contains: []string{
				"ERROR: Validation Failed",
				"Type: VersionError",
				"Message: manifest version is missing",
				"1. add 'version: v1' at the top of the manifest",
			},
		},
		{
			name:     "wrapped structured error",
			err:      fmt.Errorf("loading: %w", errors.WrapFileSystemError("open", "a.yaml", fmt.Errorf("no such file"))),
			verbose:  true,
			contains: []string{"Type: FileSystemError", "Context:", "Operation: open", "Path: a.yaml"},
		},
		{
			name: "multiple errors",
			err: func() error {
				m := errors.NewMultipleErrors()
				m.Add(errors.New(errors.SyntaxErrorCode, "bad type"))
				m.Add(errors.New(errors.RegistrationErrorCode, "duplicate qualifier"))
				return m
			}(),
			contains: []string{"2 problems found:", "1. bad type", "2. duplicate qualifier"},
		},
		{
			name:     "plain error",
			err:      fmt.Errorf("something broke"),
			contains: []string{"Message: something broke"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, buf := newTestReporter(tt.verbose)
			r.ReportError(tt.err)
			for _, s := range tt.contains {
				assert.Contains(t, buf.String(), s)
			}
		})
	}
}

func TestFormatContextKey(t *testing.T) {
	assert.Equal(t, "Pending", formatContextKey("pending"))
	assert.Equal(t, "Error 0 Trace", formatContextKey("error_0_trace"))
}
