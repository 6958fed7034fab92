package validation

import (
	"strings"

	"github.com/toyz/bindgraph/internal/annotations"
	"github.com/toyz/bindgraph/internal/models"
	"github.com/toyz/bindgraph/internal/types"
)

// checkRequest validates a dependency request site: an injected parameter,
// a provision method's parameter or a component entry point
func (v *Validator) checkRequest(r *Report, element string, t types.TypeRef, list []annotations.AnnotationRef) {
	v.checkQualifiers(r, element, list)

	if t.IsRawFramework() {
		r.Error(element, "%s cannot be requested without a type argument", t)
		return
	}
	_, key := models.RequestForType(t)
	if key.IsRawFramework() {
		r.Error(element, "%s cannot be requested without a type argument", t)
		return
	}
	if !key.IsValidBindingType() {
		r.Error(element, "%s is not a valid dependency type", t)
		return
	}
	if key.HasWildcardArgs() {
		r.Error(element, "dependency requests may not use wildcard type arguments: %s", t)
	}
}

// checkQualifiers reports elements carrying more than one qualifier
func (v *Validator) checkQualifiers(r *Report, element string, list []annotations.AnnotationRef) {
	qs := v.registry().Qualifiers(list)
	if len(qs) > 1 {
		r.ErrorOn(element, qs[1].String(), "%s may not use more than one qualifier: %s", element, joinAnnotations(qs))
	}
}

func joinAnnotations(list []annotations.AnnotationRef) string {
	names := make([]string, len(list))
	for i, a := range list {
		names[i] = a.String()
	}
	return strings.Join(names, ", ")
}
