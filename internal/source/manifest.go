package source

import (
	"bytes"
	"io"
	"os"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/toyz/bindgraph/internal/errors"
)

// SupportedMajor is the manifest format major version understood by this
// release
const SupportedMajor = "v1"

// Manifest is the YAML realization of a declaration batch
type Manifest struct {
	Version     string            `yaml:"version"`
	Annotations AnnotationKinds   `yaml:"annotations"`
	Aliases     map[string]string `yaml:"aliases"`
	Pending     []string          `yaml:"pending"`
	Classes     []ClassSpec       `yaml:"classes"`
	Modules     []ModuleSpec      `yaml:"modules"`
	Components  []ComponentSpec   `yaml:"components"`
}

// AnnotationKinds lists user annotation types by role
type AnnotationKinds struct {
	Qualifiers []string `yaml:"qualifiers"`
	Scopes     []string `yaml:"scopes"`
	MapKeys    []string `yaml:"mapKeys"`
}

// ParamSpec describes a parameter
type ParamSpec struct {
	Name        string   `yaml:"name"`
	Type        string   `yaml:"type"`
	Annotations []string `yaml:"annotations"`
	Assisted    bool     `yaml:"assisted"`
	AssistedID  string   `yaml:"assistedId"`
}

// MethodSpec describes a method
type MethodSpec struct {
	Name        string      `yaml:"name"`
	Params      []ParamSpec `yaml:"params"`
	Returns     string      `yaml:"returns"`
	Annotations []string    `yaml:"annotations"`
	Modifiers   []string    `yaml:"modifiers"`
	TypeParams  []string    `yaml:"typeParams"`
	Overrides   bool        `yaml:"overrides"`
}

// ConstructorSpec describes a constructor
type ConstructorSpec struct {
	Params      []ParamSpec `yaml:"params"`
	Annotations []string    `yaml:"annotations"`
	Modifiers   []string    `yaml:"modifiers"`
}

// ClassSpec describes a class or interface
type ClassSpec struct {
	Name         string            `yaml:"name"`
	Abstract     bool              `yaml:"abstract"`
	Interface    bool              `yaml:"interface"`
	TypeParams   []string          `yaml:"typeParams"`
	Supertypes   []string          `yaml:"supertypes"`
	Annotations  []string          `yaml:"annotations"`
	Constructors []ConstructorSpec `yaml:"constructors"`
	Methods      []MethodSpec      `yaml:"methods"`
}

// ModuleSpec describes a module
type ModuleSpec struct {
	Name          string            `yaml:"name"`
	Abstract      bool              `yaml:"abstract"`
	Interface     bool              `yaml:"interface"`
	TypeParams    []string          `yaml:"typeParams"`
	Includes      []string          `yaml:"includes"`
	Subcomponents []string          `yaml:"subcomponents"`
	Annotations   []string          `yaml:"annotations"`
	Constructors  []ConstructorSpec `yaml:"constructors"`
	Methods       []MethodSpec      `yaml:"methods"`
}

// ComponentSpec describes a component or subcomponent
type ComponentSpec struct {
	Name         string       `yaml:"name"`
	Kind         string       `yaml:"kind"`
	Class        bool         `yaml:"class"`
	Scopes       []string     `yaml:"scopes"`
	Modules      []string     `yaml:"modules"`
	Dependencies []string     `yaml:"dependencies"`
	Annotations  []string     `yaml:"annotations"`
	Methods      []MethodSpec `yaml:"methods"`
	Creator      *CreatorSpec `yaml:"creator"`
}

// CreatorSpec describes a builder or factory nested in a component
type CreatorSpec struct {
	Name         string            `yaml:"name"`
	Kind         string            `yaml:"kind"`
	Class        bool              `yaml:"class"`
	TypeParams   []string          `yaml:"typeParams"`
	Constructors []ConstructorSpec `yaml:"constructors"`
	Methods      []MethodSpec      `yaml:"methods"`
}

// Parse decodes a manifest and checks its version
func Parse(data []byte) (*Manifest, error) {
	return Decode(bytes.NewReader(data), "")
}

// Load reads and decodes a manifest file
func Load(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapFileSystemError("open", path, err)
	}
	defer f.Close()
	return Decode(f, path)
}

// Decode decodes a manifest from r. Unknown fields are rejected.
func Decode(r io.Reader, path string) (*Manifest, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var m Manifest
	if err := dec.Decode(&m); err != nil {
		if err == io.EOF {
			return nil, errors.New(errors.ManifestErrorCode, "manifest is empty").
				WithLocation(errors.SourceLocation{File: path})
		}
		return nil, errors.WrapManifestError(path, err)
	}
	if err := checkVersion(m.Version); err != nil {
		return nil, err.WithLocation(errors.SourceLocation{File: path})
	}
	return &m, nil
}

func checkVersion(v string) *errors.BaseError {
	if v == "" {
		return errors.New(errors.VersionErrorCode, "manifest version is missing").
			WithSuggestion("add 'version: " + SupportedMajor + "' at the top of the manifest")
	}
	if !semver.IsValid(v) {
		return errors.Newf(errors.VersionErrorCode, "manifest version %q is not a valid semantic version", v)
	}
	if semver.Major(v) != SupportedMajor {
		return errors.Newf(errors.VersionErrorCode, "manifest version %s is not supported", v).
			WithSuggestion("this release reads " + SupportedMajor + ".x manifests")
	}
	return nil
}
