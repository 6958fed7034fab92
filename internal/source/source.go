package source

import (
	"github.com/toyz/bindgraph/internal/models"
	"github.com/toyz/bindgraph/internal/registry"
)

// Status is the outcome of looking up a declaration
type Status int

const (
	// Found means the declaration is available
	Found Status = iota
	// Absent means no such declaration exists
	Absent
	// Pending means the declaration is promised by a later round
	Pending
)

// String returns the string representation of the status
func (s Status) String() string {
	switch s {
	case Found:
		return "found"
	case Pending:
		return "pending"
	default:
		return "absent"
	}
}

// Source supplies already-extracted declarations to the resolution engine.
// Every lookup distinguishes a declaration that does not exist from one that
// is not available yet.
type Source interface {
	Class(name string) (*models.Class, Status)
	Module(name string) (*models.Module, Status)
	Component(name string) (*models.Component, Status)
	// CreatorOwner returns the component whose builder or factory is named
	CreatorOwner(creator string) (*models.Component, Status)
	Registry() *registry.AnnotationRegistry
	RootComponents() []*models.Component
	Modules() []*models.Module
	Classes() []*models.Class
}

// Declared reports whether name resolves to any kind of declaration. The
// status is Pending if any lookup is pending and none is found.
func Declared(src Source, name string) Status {
	status := Absent
	check := func(s Status) {
		if s == Found {
			status = Found
		} else if s == Pending && status == Absent {
			status = Pending
		}
	}
	_, s := src.Class(name)
	check(s)
	_, s = src.Module(name)
	check(s)
	_, s = src.Component(name)
	check(s)
	return status
}
