package graph

import "fmt"

// Reference points at another service. It renders as a container lookup,
// asserted to the target's type when that is known.
type Reference struct {
	Service string
	Type    string
}

// GoExpr returns the lookup expression for the generated container.
func (r Reference) GoExpr() string {
	if r.Type == "" {
		return fmt.Sprintf("c.GetService(%q)", r.Service)
	}
	return fmt.Sprintf("c.GetService(%q).(%s)", r.Service, r.Type)
}
