package validation

import (
	"fmt"
	"sync"
)

// Severity is the severity of a diagnostic
type Severity int

const (
	Note Severity = iota
	Warning
	Error
)

// String returns the string representation of the severity
func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	default:
		return "note"
	}
}

// Item is one diagnostic of a report, anchored to a declaration and,
// optionally, one of its annotations
type Item struct {
	Severity   Severity
	Message    string
	Element    string
	Annotation string
}

// Report collects the diagnostics of one unit and of its nested
// declarations. A report is clean when neither it nor any subreport holds an
// error and it was not marked dirty.
type Report struct {
	Subject    string
	Items      []Item
	Subreports []*Report
	dirty      bool
}

// NewReport creates an empty report for subject
func NewReport(subject string) *Report {
	return &Report{Subject: subject}
}

// Error adds an error anchored to element
func (r *Report) Error(element, format string, args ...interface{}) {
	r.add(Error, element, "", format, args...)
}

// ErrorOn adds an error anchored to an annotation of element
func (r *Report) ErrorOn(element, annotation, format string, args ...interface{}) {
	r.add(Error, element, annotation, format, args...)
}

// Warning adds a warning anchored to element
func (r *Report) Warning(element, format string, args ...interface{}) {
	r.add(Warning, element, "", format, args...)
}

// Note adds a note anchored to element
func (r *Report) Note(element, format string, args ...interface{}) {
	r.add(Note, element, "", format, args...)
}

func (r *Report) add(s Severity, element, annotation, format string, args ...interface{}) {
	r.Items = append(r.Items, Item{
		Severity:   s,
		Message:    fmt.Sprintf(format, args...),
		Element:    element,
		Annotation: annotation,
	})
}

// AddSubreport nests sub under r. Nil and empty subreports are dropped.
func (r *Report) AddSubreport(sub *Report) {
	if sub == nil || (len(sub.Items) == 0 && len(sub.Subreports) == 0 && !sub.dirty) {
		return
	}
	r.Subreports = append(r.Subreports, sub)
}

// MarkDirty forces the report unclean, for errors reported elsewhere
func (r *Report) MarkDirty() {
	r.dirty = true
}

// IsClean reports whether the report and its subreports hold no error
func (r *Report) IsClean() bool {
	if r.dirty {
		return false
	}
	for _, item := range r.Items {
		if item.Severity == Error {
			return false
		}
	}
	for _, sub := range r.Subreports {
		if !sub.IsClean() {
			return false
		}
	}
	return true
}

// AllItems returns the items of the report tree, depth first
func (r *Report) AllItems() []Item {
	out := append([]Item(nil), r.Items...)
	for _, sub := range r.Subreports {
		out = append(out, sub.AllItems()...)
	}
	return out
}

// ErrorCount returns the number of errors in the report tree
func (r *Report) ErrorCount() int {
	n := 0
	for _, item := range r.AllItems() {
		if item.Severity == Error {
			n++
		}
	}
	return n
}

// Errors returns the error messages of the report tree
func (r *Report) Errors() []string {
	var out []string
	for _, item := range r.AllItems() {
		if item.Severity == Error {
			out = append(out, item.Message)
		}
	}
	return out
}

// Diagnostic is an item as delivered to a sink
type Diagnostic struct {
	Severity   Severity `json:"-"`
	Level      string   `json:"severity"`
	Message    string   `json:"message"`
	Element    string   `json:"element,omitempty"`
	Annotation string   `json:"annotation,omitempty"`
}

// Sink receives diagnostics
type Sink interface {
	Report(d Diagnostic)
}

// Emit delivers every item of the report tree to sink
func Emit(sink Sink, r *Report) {
	for _, item := range r.AllItems() {
		sink.Report(Diagnostic{
			Severity:   item.Severity,
			Level:      item.Severity.String(),
			Message:    item.Message,
			Element:    item.Element,
			Annotation: item.Annotation,
		})
	}
}

// DedupSink forwards each distinct diagnostic once per batch. Repeated
// validation passes over the same declaration report through it safely.
type DedupSink struct {
	mu   sync.Mutex
	next Sink
	seen map[string]bool
}

// NewDedupSink wraps next
func NewDedupSink(next Sink) *DedupSink {
	return &DedupSink{next: next, seen: make(map[string]bool)}
}

// Report implements Sink
func (s *DedupSink) Report(d Diagnostic) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := d.Severity.String() + "\x00" + d.Element + "\x00" + d.Annotation + "\x00" + d.Message
	if s.seen[id] {
		return
	}
	s.seen[id] = true
	s.next.Report(d)
}

// Reset forgets every delivered diagnostic, starting a new batch
func (s *DedupSink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen = make(map[string]bool)
}

// CollectingSink keeps every diagnostic it receives
type CollectingSink struct {
	mu          sync.Mutex
	Diagnostics []Diagnostic
}

// Report implements Sink
func (s *CollectingSink) Report(d Diagnostic) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Diagnostics = append(s.Diagnostics, d)
}

// Errors returns the collected error diagnostics
func (s *CollectingSink) Errors() []Diagnostic {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Diagnostic
	for _, d := range s.Diagnostics {
		if d.Severity == Error {
			out = append(out, d)
		}
	}
	return out
}

// HasErrors reports whether any error was collected
func (s *CollectingSink) HasErrors() bool {
	return len(s.Errors()) > 0
}
