package source

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/toyz/bindgraph/internal/annotations"
	"github.com/toyz/bindgraph/internal/errors"
	"github.com/toyz/bindgraph/internal/models"
	"github.com/toyz/bindgraph/internal/registry"
	"github.com/toyz/bindgraph/internal/types"
	"github.com/toyz/bindgraph/internal/utils"
)

// MemorySource is a Source built from manifests. Declarations accumulate as
// manifests are added, one per round; a type promised as pending stays
// pending until some manifest declares it.
type MemorySource struct {
	registry   *registry.AnnotationRegistry
	aliases    types.Aliases
	pending    map[string]bool
	classes    map[string]*models.Class
	modules    map[string]*models.Module
	components map[string]*models.Component
	creators   map[string]string

	classOrder     []string
	moduleOrder    []string
	componentOrder []string
}

// NewMemorySource creates an empty source
func NewMemorySource() *MemorySource {
	return &MemorySource{
		registry:   registry.NewAnnotationRegistry(),
		aliases:    make(types.Aliases),
		pending:    make(map[string]bool),
		classes:    make(map[string]*models.Class),
		modules:    make(map[string]*models.Module),
		components: make(map[string]*models.Component),
		creators:   make(map[string]string),
	}
}

// FromManifests builds a source from one or more manifests
func FromManifests(manifests ...*Manifest) (*MemorySource, error) {
	s := NewMemorySource()
	for _, m := range manifests {
		if err := s.Add(m); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Class implements Source
func (s *MemorySource) Class(name string) (*models.Class, Status) {
	if c, ok := s.classes[name]; ok {
		return c, Found
	}
	return nil, s.missing(name)
}

// Module implements Source
func (s *MemorySource) Module(name string) (*models.Module, Status) {
	if m, ok := s.modules[name]; ok {
		return m, Found
	}
	return nil, s.missing(name)
}

// Component implements Source
func (s *MemorySource) Component(name string) (*models.Component, Status) {
	if c, ok := s.components[name]; ok {
		return c, Found
	}
	return nil, s.missing(name)
}

// CreatorOwner implements Source
func (s *MemorySource) CreatorOwner(creator string) (*models.Component, Status) {
	if owner, ok := s.creators[creator]; ok {
		return s.components[owner], Found
	}
	return nil, s.missing(creator)
}

// Registry implements Source
func (s *MemorySource) Registry() *registry.AnnotationRegistry {
	return s.registry
}

// RootComponents implements Source
func (s *MemorySource) RootComponents() []*models.Component {
	var out []*models.Component
	for _, name := range s.componentOrder {
		if c := s.components[name]; c.Kind == models.RootComponent {
			out = append(out, c)
		}
	}
	return out
}

// Modules implements Source
func (s *MemorySource) Modules() []*models.Module {
	out := make([]*models.Module, 0, len(s.moduleOrder))
	for _, name := range s.moduleOrder {
		out = append(out, s.modules[name])
	}
	return out
}

// Classes implements Source
func (s *MemorySource) Classes() []*models.Class {
	out := make([]*models.Class, 0, len(s.classOrder))
	for _, name := range s.classOrder {
		out = append(out, s.classes[name])
	}
	return out
}

// PendingTypes returns the types still promised by a later round, sorted
func (s *MemorySource) PendingTypes() []string {
	return utils.SortedKeys(s.pending)
}

func (s *MemorySource) missing(name string) Status {
	if s.pending[name] {
		return Pending
	}
	return Absent
}

// Add merges a manifest into the source. Declarations of the manifest replace
// earlier declarations with the same name.
func (s *MemorySource) Add(m *Manifest) error {
	errs := errors.NewMultipleErrors()
	record := func(err error) {
		if err == nil {
			return
		}
		if be, ok := err.(errors.BindgraphError); ok {
			errs.Add(be)
			return
		}
		errs.Add(errors.Wrap(errors.ManifestErrorCode, "invalid declaration", err))
	}

	for _, name := range m.Annotations.Qualifiers {
		record(s.registry.RegisterQualifier(name))
	}
	for _, name := range m.Annotations.Scopes {
		record(s.registry.RegisterScope(name))
	}
	for _, name := range m.Annotations.MapKeys {
		record(s.registry.RegisterMapKey(name))
	}
	for alias, target := range m.Aliases {
		t, err := types.Parse(target)
		if err != nil {
			record(errors.WrapParseError("alias target", target, err).WithElement(alias))
			continue
		}
		s.aliases[alias] = t
	}
	for _, name := range m.Pending {
		s.pending[name] = true
	}

	for _, spec := range m.Classes {
		c, err := s.convertClass(spec)
		if err != nil {
			record(err)
			continue
		}
		if _, exists := s.classes[c.Name]; !exists {
			s.classOrder = append(s.classOrder, c.Name)
		}
		s.classes[c.Name] = c
		delete(s.pending, c.Name)
	}
	for _, spec := range m.Modules {
		mod, err := s.convertModule(spec)
		if err != nil {
			record(err)
			continue
		}
		if _, exists := s.modules[mod.Name]; !exists {
			s.moduleOrder = append(s.moduleOrder, mod.Name)
		}
		s.modules[mod.Name] = mod
		delete(s.pending, mod.Name)
	}
	for _, spec := range m.Components {
		c, err := s.convertComponent(spec)
		if err != nil {
			record(err)
			continue
		}
		if _, exists := s.components[c.Name]; !exists {
			s.componentOrder = append(s.componentOrder, c.Name)
		}
		s.components[c.Name] = c
		delete(s.pending, c.Name)
		if c.Creator != nil {
			s.creators[c.Creator.Name] = c.Name
			delete(s.pending, c.Creator.Name)
		}
	}
	return errs.ErrOrNil()
}

// converter carries the type-variable scope of the declaration being read
type converter struct {
	src      *MemorySource
	element  string
	typeVars []string
}

func (s *MemorySource) conv(element string, typeVars []string) *converter {
	return &converter{src: s, element: element, typeVars: typeVars}
}

func (c *converter) with(element string, typeVars []string) *converter {
	vars := append(append([]string(nil), c.typeVars...), typeVars...)
	return &converter{src: c.src, element: element, typeVars: vars}
}

func (c *converter) typ(s string) (types.TypeRef, error) {
	if strings.TrimSpace(s) == "" {
		return types.TypeRef{Kind: types.Void}, nil
	}
	t, err := types.Parse(s, c.typeVars...)
	if err != nil {
		return types.TypeRef{}, errors.WrapParseError("type", s, err).WithElement(c.element)
	}
	t, err = c.src.aliases.Canonicalize(t)
	if err != nil {
		return types.TypeRef{}, errors.Wrap(errors.SyntaxErrorCode, "invalid alias", err).WithElement(c.element)
	}
	return t, nil
}

func (c *converter) typs(list []string) ([]types.TypeRef, error) {
	out := make([]types.TypeRef, 0, len(list))
	for _, s := range list {
		t, err := c.typ(s)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (c *converter) annotation(s string) (annotations.AnnotationRef, error) {
	text := strings.TrimSpace(s)
	if !strings.HasPrefix(text, "@") {
		text = "@" + text
	}
	a, err := annotations.Parse(text)
	if err != nil {
		return annotations.AnnotationRef{}, errors.WrapParseError("annotation", s, err).WithElement(c.element)
	}
	a, err = a.Canonicalize(c.src.aliases)
	if err != nil {
		return annotations.AnnotationRef{}, errors.Wrap(errors.SyntaxErrorCode, "invalid alias", err).WithElement(c.element)
	}
	return a, nil
}

func (c *converter) annotationList(list []string) ([]annotations.AnnotationRef, error) {
	out := make([]annotations.AnnotationRef, 0, len(list))
	for _, s := range list {
		a, err := c.annotation(s)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func (c *converter) param(spec ParamSpec) (models.Parameter, error) {
	p := models.Parameter{Name: spec.Name, Assisted: spec.Assisted, AssistedID: spec.AssistedID}
	var err error
	if p.Type, err = c.typ(spec.Type); err != nil {
		return p, err
	}
	if p.Annotations, err = c.annotationList(spec.Annotations); err != nil {
		return p, err
	}
	if a, ok := annotations.Find(p.Annotations, annotations.Assisted); ok {
		p.Assisted = true
		if v, ok := a.Element("value"); ok && v.Kind == annotations.StringValue && p.AssistedID == "" {
			if id, err := strconv.Unquote(v.Text); err == nil {
				p.AssistedID = id
			}
		}
	}
	return p, nil
}

func (c *converter) params(specs []ParamSpec) ([]models.Parameter, error) {
	out := make([]models.Parameter, 0, len(specs))
	for i, spec := range specs {
		if spec.Name == "" {
			spec.Name = fmt.Sprintf("arg%d", i)
		}
		p, err := c.param(spec)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func modifiers(list []string) []models.Modifier {
	out := make([]models.Modifier, 0, len(list))
	for _, m := range list {
		out = append(out, models.Modifier(strings.ToLower(strings.TrimSpace(m))))
	}
	return out
}

func (c *converter) method(owner string, spec MethodSpec, ownerIsInterface bool) (models.Method, error) {
	mc := c.with(owner+"#"+spec.Name, spec.TypeParams)
	m := models.Method{
		Owner:      owner,
		Name:       spec.Name,
		Modifiers:  modifiers(spec.Modifiers),
		TypeParams: spec.TypeParams,
		Overrides:  spec.Overrides,
	}
	if spec.Name == "" {
		return m, errors.New(errors.ManifestErrorCode, "method name is required").WithElement(owner)
	}
	var err error
	if m.Returns, err = mc.typ(spec.Returns); err != nil {
		return m, err
	}
	if m.Params, err = mc.params(spec.Params); err != nil {
		return m, err
	}
	if m.Annotations, err = mc.annotationList(spec.Annotations); err != nil {
		return m, err
	}
	if ownerIsInterface && !m.Has(models.Static) && !m.Has(models.Default) && !m.IsAbstract() {
		m.Modifiers = append(m.Modifiers, models.Abstract)
	}
	return m, nil
}

func (c *converter) methods(owner string, specs []MethodSpec, ownerIsInterface bool) ([]models.Method, error) {
	out := make([]models.Method, 0, len(specs))
	for _, spec := range specs {
		m, err := c.method(owner, spec, ownerIsInterface)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func (c *converter) constructors(owner string, specs []ConstructorSpec) ([]models.Constructor, error) {
	out := make([]models.Constructor, 0, len(specs))
	for _, spec := range specs {
		ctor := models.Constructor{Owner: owner, Modifiers: modifiers(spec.Modifiers)}
		cc := c.with(ctor.Element(), nil)
		var err error
		if ctor.Params, err = cc.params(spec.Params); err != nil {
			return nil, err
		}
		if ctor.Annotations, err = cc.annotationList(spec.Annotations); err != nil {
			return nil, err
		}
		out = append(out, ctor)
	}
	return out, nil
}

func requireName(kind, name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.Newf(errors.ManifestErrorCode, "%s name is required", kind)
	}
	return nil
}

func (s *MemorySource) convertClass(spec ClassSpec) (*models.Class, error) {
	if err := requireName("class", spec.Name); err != nil {
		return nil, err
	}
	c := s.conv(spec.Name, spec.TypeParams)
	class := &models.Class{
		Name:       spec.Name,
		Abstract:   spec.Abstract,
		Interface:  spec.Interface,
		TypeParams: spec.TypeParams,
	}
	var err error
	if class.Supertypes, err = c.typs(spec.Supertypes); err != nil {
		return nil, err
	}
	if class.Annotations, err = c.annotationList(spec.Annotations); err != nil {
		return nil, err
	}
	if class.Constructors, err = c.constructors(spec.Name, spec.Constructors); err != nil {
		return nil, err
	}
	if class.Methods, err = c.methods(spec.Name, spec.Methods, spec.Interface); err != nil {
		return nil, err
	}
	return class, nil
}

func (s *MemorySource) convertModule(spec ModuleSpec) (*models.Module, error) {
	if err := requireName("module", spec.Name); err != nil {
		return nil, err
	}
	c := s.conv(spec.Name, spec.TypeParams)
	mod := &models.Module{
		Name:       spec.Name,
		Abstract:   spec.Abstract,
		Interface:  spec.Interface,
		TypeParams: spec.TypeParams,
	}
	var err error
	if mod.Includes, err = c.typs(spec.Includes); err != nil {
		return nil, err
	}
	if mod.Subcomponents, err = c.typs(spec.Subcomponents); err != nil {
		return nil, err
	}
	if mod.Annotations, err = c.annotationList(spec.Annotations); err != nil {
		return nil, err
	}
	if mod.Constructors, err = c.constructors(spec.Name, spec.Constructors); err != nil {
		return nil, err
	}
	if mod.Methods, err = c.methods(spec.Name, spec.Methods, spec.Interface); err != nil {
		return nil, err
	}
	return mod, nil
}

func (s *MemorySource) convertComponent(spec ComponentSpec) (*models.Component, error) {
	if err := requireName("component", spec.Name); err != nil {
		return nil, err
	}
	c := s.conv(spec.Name, nil)
	comp := &models.Component{Name: spec.Name, Interface: !spec.Class}
	switch strings.ToLower(spec.Kind) {
	case "", "component":
		comp.Kind = models.RootComponent
	case "subcomponent":
		comp.Kind = models.Subcomponent
	default:
		return nil, errors.Newf(errors.ManifestErrorCode, "unknown component kind %q", spec.Kind).
			WithElement(spec.Name).
			WithSuggestion("use 'component' or 'subcomponent'")
	}
	var err error
	if comp.Scopes, err = c.annotationList(spec.Scopes); err != nil {
		return nil, err
	}
	if comp.Modules, err = c.typs(spec.Modules); err != nil {
		return nil, err
	}
	if comp.Dependencies, err = c.typs(spec.Dependencies); err != nil {
		return nil, err
	}
	if comp.Annotations, err = c.annotationList(spec.Annotations); err != nil {
		return nil, err
	}
	if comp.Methods, err = c.methods(spec.Name, spec.Methods, comp.Interface); err != nil {
		return nil, err
	}
	if spec.Creator != nil {
		if comp.Creator, err = s.convertCreator(spec.Name, *spec.Creator); err != nil {
			return nil, err
		}
	}
	return comp, nil
}

func (s *MemorySource) convertCreator(owner string, spec CreatorSpec) (*models.Creator, error) {
	name := spec.Name
	if name == "" {
		name = owner + ".Builder"
		if strings.EqualFold(spec.Kind, "factory") {
			name = owner + ".Factory"
		}
	}
	c := s.conv(name, spec.TypeParams)
	creator := &models.Creator{Name: name, IsClass: spec.Class, TypeParams: spec.TypeParams}
	switch strings.ToLower(spec.Kind) {
	case "", "builder":
		creator.Kind = models.Builder
	case "factory":
		creator.Kind = models.Factory
	default:
		return nil, errors.Newf(errors.ManifestErrorCode, "unknown creator kind %q", spec.Kind).
			WithElement(name).
			WithSuggestion("use 'builder' or 'factory'")
	}
	var err error
	if creator.Constructors, err = c.constructors(name, spec.Constructors); err != nil {
		return nil, err
	}
	if creator.Methods, err = c.methods(name, spec.Methods, !spec.Class); err != nil {
		return nil, err
	}
	return creator, nil
}
