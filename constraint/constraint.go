package constraint

import (
	"strings"

	"github.com/albertocavalcante/go-jsonschema/jsonvalue"
)

// Constraint is a compiled validation rule.
type Constraint interface {
	// Keyword returns the schema keyword the constraint was built from.
	Keyword() string
	// Validate checks instance, found at location inside the validated
	// document. A nil result means the instance satisfies the constraint.
	Validate(instance jsonvalue.Value, location string) Errors
}

// Empty accepts every instance. It is the compiled form of a schema with no
// recognised keywords.
type Empty struct{}

func (Empty) Keyword() string { return "" }

func (Empty) Validate(jsonvalue.Value, string) Errors { return nil }

// All requires every child constraint to hold and reports the failures of
// each, in order.
type All struct {
	Children []Constraint
}

func (a *All) Keyword() string { return "" }

func (a *All) Validate(instance jsonvalue.Value, location string) Errors {
	var errs Errors
	for _, c := range a.Children {
		errs = append(errs, c.Validate(instance, location)...)
	}
	return errs
}

// OneOf requires at least one child to hold. When none does, it reports a
// single error summarising the alternatives.
type OneOf struct {
	Name     string
	Children []Constraint
}

func (o *OneOf) Keyword() string { return o.Name }

func (o *OneOf) Validate(instance jsonvalue.Value, location string) Errors {
	msgs := make([]string, 0, len(o.Children))
	for _, c := range o.Children {
		errs := c.Validate(instance, location)
		if len(errs) == 0 {
			return nil
		}
		for _, e := range errs {
			msgs = append(msgs, e.Message)
		}
	}
	return Errors{{
		Constraint: o,
		Keyword:    o.Name,
		Message:    "matches none of the alternatives: " + strings.Join(msgs, "; "),
		Location:   location,
	}}
}

func fail(c Constraint, location, message string) Errors {
	return Errors{{Constraint: c, Keyword: c.Keyword(), Message: message, Location: location}}
}

// deref follows a reference handle. A broken handle is reported as a
// failure of c at location.
func deref(c Constraint, v jsonvalue.Value, location string) (jsonvalue.Value, Errors) {
	out, err := jsonvalue.Deref(v)
	if err != nil {
		return nil, fail(c, location, "unresolvable reference: "+err.Error())
	}
	return out, nil
}
