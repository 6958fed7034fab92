package models

import (
	"strings"

	"github.com/google/uuid"

	"github.com/toyz/bindgraph/internal/annotations"
	"github.com/toyz/bindgraph/internal/types"
)

// contributionNamespace seeds name-based contribution IDs so the same
// contributing element always yields the same discriminator.
var contributionNamespace = uuid.MustParse("6f1c3a52-8d0e-4b5f-9a36-2e7d1c4b9f80")

// ContributionID distinguishes one multibinding contribution from the others
// contributing to the same collection. The zero value means "not a
// contribution".
type ContributionID string

// NewContributionID derives a deterministic discriminator from the
// contributing element
func NewContributionID(element string) ContributionID {
	return ContributionID(uuid.NewSHA1(contributionNamespace, []byte(element)).String())
}

// Key is the lookup identity of a dependency. All fields hold canonical
// renderings, so two keys built from structurally identical types and
// qualifiers compare equal with == and can be used as map keys.
type Key struct {
	Type         string
	Qualifier    string
	Contribution ContributionID
}

// NewKey builds a key from a canonical type and an optional qualifier
func NewKey(t types.TypeRef, qualifier *annotations.AnnotationRef) Key {
	k := Key{Type: t.String()}
	if qualifier != nil {
		k.Qualifier = qualifier.String()
	}
	return k
}

// KeyOf builds an unqualified key
func KeyOf(t types.TypeRef) Key {
	return NewKey(t, nil)
}

// TypeRef returns the structured form of the key's type
func (k Key) TypeRef() types.TypeRef {
	t, err := types.Parse(k.Type)
	if err != nil {
		return types.TypeRef{}
	}
	return t
}

// QualifierRef returns the structured qualifier, if any
func (k Key) QualifierRef() (annotations.AnnotationRef, bool) {
	if k.Qualifier == "" {
		return annotations.AnnotationRef{}, false
	}
	a, err := annotations.Parse(k.Qualifier)
	if err != nil {
		return annotations.AnnotationRef{}, false
	}
	return a, true
}

// IsQualified reports whether the key carries a qualifier
func (k Key) IsQualified() bool {
	return k.Qualifier != ""
}

// WithContribution returns a copy of the key carrying id
func (k Key) WithContribution(id ContributionID) Key {
	k.Contribution = id
	return k
}

// WithoutContribution returns the collection key a contribution belongs to
func (k Key) WithoutContribution() Key {
	k.Contribution = ""
	return k
}

// WithType returns a copy of the key with a different type
func (k Key) WithType(t types.TypeRef) Key {
	k.Type = t.String()
	return k
}

// String renders the key the way diagnostics show it
func (k Key) String() string {
	var b strings.Builder
	if k.Qualifier != "" {
		b.WriteString(k.Qualifier)
		b.WriteByte(' ')
	}
	b.WriteString(k.Type)
	if k.Contribution != "" {
		id := string(k.Contribution)
		if len(id) > 8 {
			id = id[:8]
		}
		b.WriteString(" [contribution " + id + "]")
	}
	return b.String()
}

// Less orders keys for deterministic iteration
func (k Key) Less(other Key) bool {
	if k.Type != other.Type {
		return k.Type < other.Type
	}
	if k.Qualifier != other.Qualifier {
		return k.Qualifier < other.Qualifier
	}
	return k.Contribution < other.Contribution
}
