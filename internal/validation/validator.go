package validation

import (
	"github.com/toyz/bindgraph/internal/bindings"
	"github.com/toyz/bindgraph/internal/registry"
	"github.com/toyz/bindgraph/internal/source"
	"github.com/toyz/bindgraph/internal/utils"
)

// Config selects optional checks
type Config struct {
	// StrictSingleton forbids singleton components from depending on any
	// scoped component
	StrictSingleton bool
}

// Validator runs the shape, component and graph checks. Class and module
// reports are memoized for the batch, since the same declaration is
// validated once per component that uses it.
type Validator struct {
	bindings *bindings.Factory
	config   Config
	classes  *utils.Cache[string, *Report]
	modules  *utils.Cache[string, *Report]
}

// New creates a validator over the declarations read by b
func New(b *bindings.Factory, config Config) *Validator {
	return &Validator{
		bindings: b,
		config:   config,
		classes:  utils.NewCache[string, *Report](),
		modules:  utils.NewCache[string, *Report](),
	}
}

// Reset drops memoized reports between batches
func (v *Validator) Reset() {
	v.classes.Clear()
	v.modules.Clear()
}

// Config returns the validator configuration
func (v *Validator) Config() Config {
	return v.config
}

func (v *Validator) src() source.Source {
	return v.bindings.Source()
}

func (v *Validator) registry() *registry.AnnotationRegistry {
	return v.bindings.Source().Registry()
}
