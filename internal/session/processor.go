package session

import (
	"fmt"
	"sort"
	"strings"

	"github.com/toyz/bindgraph/internal/descriptors"
	"github.com/toyz/bindgraph/internal/errors"
	"github.com/toyz/bindgraph/internal/graph"
	"github.com/toyz/bindgraph/internal/models"
	"github.com/toyz/bindgraph/internal/source"
	"github.com/toyz/bindgraph/internal/utils"
	"github.com/toyz/bindgraph/internal/validation"
)

// DefaultMaxRounds is the number of rounds a unit may be deferred before it
// is reported as unresolvable
const DefaultMaxRounds = 3

// Config holds the processor settings
type Config struct {
	MaxRounds        int
	FullBindingGraph bool
	StrictSingleton  bool
}

// DefaultConfig returns the default processor settings
func DefaultConfig() Config {
	return Config{MaxRounds: DefaultMaxRounds}
}

// RoundResult summarizes one round
type RoundResult struct {
	Round     int
	Processed []string
	Deferred  []string
	Clean     []string
	Failed    []string
}

type deferredUnit struct {
	attempts int
	pending  []string
}

// Processor drives resolution and validation over successive rounds of
// declarations. Units whose declarations are not complete yet are deferred
// and retried in the next round, up to MaxRounds times.
type Processor struct {
	config  Config
	session *Session
	sink    *validation.DedupSink
	trigger GenerationTrigger
	log     *utils.DiagnosticSystem

	round          int
	classesDone    map[string]bool
	modulesDone    map[string]bool
	componentsDone map[string]bool
	deferred       map[string]*deferredUnit
	implicitSeen   map[models.Key]bool
}

// NewProcessor creates a processor delivering diagnostics to sink and clean
// results to trigger. A nil trigger discards results; a nil log is silent.
func NewProcessor(config Config, sink validation.Sink, trigger GenerationTrigger, log *utils.DiagnosticSystem) *Processor {
	if config.MaxRounds <= 0 {
		config.MaxRounds = DefaultMaxRounds
	}
	if trigger == nil {
		trigger = NopTrigger{}
	}
	if log == nil {
		log = utils.NewSilentDiagnostics()
	}
	return &Processor{
		config:         config,
		sink:           validation.NewDedupSink(sink),
		trigger:        trigger,
		log:            log,
		classesDone:    make(map[string]bool),
		modulesDone:    make(map[string]bool),
		componentsDone: make(map[string]bool),
		deferred:       make(map[string]*deferredUnit),
		implicitSeen:   make(map[models.Key]bool),
	}
}

// Round processes every unit of src that is not done yet. Caches from the
// previous round are discarded first.
func (p *Processor) Round(src source.Source) RoundResult {
	p.round++
	result := RoundResult{Round: p.round}

	if p.session == nil {
		p.session = New(src, validation.Config{StrictSingleton: p.config.StrictSingleton})
	} else {
		p.session.Reset(src)
	}
	p.sink.Reset()

	p.log.Verbose("Round %d", p.round)

	for _, c := range src.Classes() {
		if p.classesDone[c.Name] {
			continue
		}
		p.classesDone[c.Name] = true
		p.emit(p.session.Validator.ValidateClass(c))
	}

	for _, m := range src.Modules() {
		if p.modulesDone[m.Name] {
			continue
		}
		p.modulesDone[m.Name] = true
		p.guard("module "+m.Name, func() {
			if !p.processModule(m) {
				p.modulesDone[m.Name] = false
				return
			}
			delete(p.deferred, "module "+m.Name)
		}, &result)
	}

	for _, c := range src.RootComponents() {
		if p.componentsDone[c.Name] {
			continue
		}
		unit := "component " + c.Name
		result.Processed = append(result.Processed, c.Name)
		p.componentsDone[c.Name] = true
		p.guard(unit, func() {
			outcome := p.processComponent(c)
			switch outcome.Status {
			case models.Deferred:
				p.componentsDone[c.Name] = false
				p.deferUnit(unit, c.Name, outcome.Pending, &result)
				return
			case models.Failed:
				result.Failed = append(result.Failed, c.Name)
			default:
				result.Clean = append(result.Clean, c.Name)
			}
			delete(p.deferred, unit)
		}, &result)
	}

	p.log.Verbose("Round %d: %d processed, %d clean, %d deferred, %d failed",
		p.round, len(result.Processed), len(result.Clean), len(result.Deferred), len(result.Failed))
	return result
}

// Finish reports every unit still deferred as an error. It returns the
// number of units reported.
func (p *Processor) Finish() int {
	units := p.Deferred()
	for _, unit := range units {
		d := p.deferred[unit]
		err := errors.NewDeferralError(unit, p.round, d.pending)
		p.sink.Report(errorDiagnostic(err))
		delete(p.deferred, unit)
	}
	return len(units)
}

// Deferred returns the units currently waiting for a later round, sorted
func (p *Processor) Deferred() []string {
	out := make([]string, 0, len(p.deferred))
	for unit := range p.deferred {
		out = append(out, unit)
	}
	sort.Strings(out)
	return out
}

// Rounds returns the number of rounds run so far
func (p *Processor) Rounds() int {
	return p.round
}

func (p *Processor) deferUnit(unit, name string, pending []string, result *RoundResult) {
	d, ok := p.deferred[unit]
	if !ok {
		d = &deferredUnit{}
		p.deferred[unit] = d
	}
	d.attempts++
	d.pending = pending
	if d.attempts < p.config.MaxRounds {
		p.log.Verbose("Deferring %s, waiting for %v", unit, pending)
		result.Deferred = append(result.Deferred, name)
		return
	}
	p.sink.Report(errorDiagnostic(errors.NewDeferralError(unit, d.attempts, pending)))
	delete(p.deferred, unit)
	p.componentsDone[name] = true
	result.Failed = append(result.Failed, name)
}

// processModule validates a module on its own. It reports false when the
// module is waiting on declarations from a later round.
func (p *Processor) processModule(m *models.Module) bool {
	report := validation.NewReport(m.Name)
	report.AddSubreport(p.session.Validator.ValidateModule(m))
	if !p.config.FullBindingGraph || !report.IsClean() {
		p.emit(report)
		return true
	}

	desc := p.session.Components.ForModule(m.Name)
	switch desc.Status {
	case models.Deferred:
		d, ok := p.deferred["module "+m.Name]
		if !ok {
			d = &deferredUnit{}
			p.deferred["module "+m.Name] = d
		}
		d.attempts++
		d.pending = desc.Pending
		if d.attempts < p.config.MaxRounds {
			return false
		}
		p.sink.Report(errorDiagnostic(errors.NewDeferralError("module "+m.Name, d.attempts, desc.Pending)))
		return true
	case models.Failed:
		report.Error(m.Name, "%v", desc.Err)
		p.emit(report)
		return true
	}

	g := p.session.Graphs.Create(desc.Value, true)
	if g.IsResolved() {
		report.AddSubreport(p.session.Validator.ValidateGraph(g.Value))
	}
	p.emit(report)
	return !g.IsDeferred()
}

// processComponent validates the tree of one root component, builds its
// binding graph and validates it
func (p *Processor) processComponent(c *models.Component) models.Result[*graph.BindingGraph] {
	desc := p.session.Components.ForComponent(c.Name)
	switch desc.Status {
	case models.Deferred:
		return models.Propagate[*descriptors.ComponentDescriptor, *graph.BindingGraph](desc)
	case models.Failed:
		report := validation.NewReport(c.Name)
		report.Error(c.Name, "%v", desc.Err)
		p.emit(report)
		return models.Fail[*graph.BindingGraph](desc.Err)
	}

	report := validation.NewReport(c.Name)
	report.AddSubreport(p.session.Validator.ValidateComponent(desc.Value))
	for _, mod := range desc.Value.Modules {
		p.modulesDone[mod.Name] = true
		report.AddSubreport(p.session.Validator.ValidateModule(mod.Module))
	}
	if !report.IsClean() {
		p.emit(report)
		return models.Fail[*graph.BindingGraph](fmt.Errorf("component %s has errors", c.Name))
	}

	created := p.session.Graphs.Create(desc.Value, false)
	if created.IsDeferred() {
		return created
	}
	g := created.Value

	classReports := validation.NewReport(c.Name)
	for _, b := range g.SynthesizedBindings() {
		name, _, _ := strings.Cut(b.Element, "#")
		if cls, status := p.session.Source().Class(name); status == source.Found {
			p.classesDone[cls.Name] = true
			classReports.AddSubreport(p.session.Validator.ValidateClass(cls))
		}
	}
	report.AddSubreport(classReports)
	if classReports.IsClean() {
		report.AddSubreport(p.session.Validator.ValidateGraph(g))
	}

	if p.config.FullBindingGraph {
		full := p.session.Graphs.Create(desc.Value, true)
		if full.IsResolved() {
			side := p.session.Validator.ValidateGraph(full.Value)
			p.emit(side)
			if !side.IsClean() {
				report.MarkDirty()
			}
		}
	}

	p.emit(report)
	if !report.IsClean() {
		return models.Fail[*graph.BindingGraph](fmt.Errorf("component %s has errors", c.Name))
	}

	for _, b := range g.SynthesizedBindings() {
		if p.implicitSeen[b.Key] {
			continue
		}
		p.implicitSeen[b.Key] = true
		p.trigger.ImplicitBinding(b)
	}
	p.trigger.GraphReady(g)
	p.log.Success("%s: %d bindings", c.Name, len(g.BindingNodes()))
	return created
}

// guard runs fn, converting a panic into an internal error diagnostic that
// names the unit being processed
func (p *Processor) guard(unit string, fn func(), result *RoundResult) {
	defer func() {
		if rec := recover(); rec != nil {
			err := errors.NewInternalError([]string{unit}, rec)
			p.log.Debug("%v", err)
			p.sink.Report(errorDiagnostic(err))
			result.Failed = append(result.Failed, unit)
		}
	}()
	fn()
}

func (p *Processor) emit(r *validation.Report) {
	validation.Emit(p.sink, r)
}

func errorDiagnostic(err *errors.BaseError) validation.Diagnostic {
	msg := err.Message
	if err.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, err.Cause)
	}
	return validation.Diagnostic{
		Severity: validation.Error,
		Level:    validation.Error.String(),
		Message:  msg,
		Element:  err.Loc.Element,
	}
}
