// Package predicate models boolean/range expression trees over record
// metadata fields, composable with And/Or.
package predicate

import (
	"fmt"
	"time"
)

// Op is a comparison operator over a metadata field.
type Op string

const (
	// Eq matches fields equal to the value.
	Eq Op = "=="
	// NotEq matches fields not equal to the value.
	NotEq Op = "!="
	// Gt matches fields greater than the value.
	Gt Op = ">"
	// Gte matches fields greater than or equal to the value.
	Gte Op = ">="
	// Lt matches fields less than the value.
	Lt Op = "<"
	// Lte matches fields less than or equal to the value.
	Lte Op = "<="
)

var validOps = map[Op]bool{Eq: true, NotEq: true, Gt: true, Gte: true, Lt: true, Lte: true}

// Combinator joins child predicates.
type Combinator string

const (
	// CombineAnd requires all children to hold.
	CombineAnd Combinator = "AND"
	// CombineOr requires at least one child to hold.
	CombineOr Combinator = "OR"
)

// Predicate is a node in the expression tree: either a single comparison or a
// combination of child predicates.
type Predicate struct {
	field    string
	op       Op
	value    any
	combine  Combinator
	children []*Predicate
}

// Compare creates a leaf comparison over a metadata field. Values may be
// strings, booleans, numbers, or time.Time.
func Compare(field string, op Op, value any) (*Predicate, error) {
	if field == "" {
		return nil, fmt.Errorf("predicate field is required")
	}
	if !validOps[op] {
		return nil, fmt.Errorf("invalid predicate operator %q", op)
	}
	switch value.(type) {
	case string, bool, int, int32, int64, float32, float64, time.Time:
	default:
		return nil, fmt.Errorf("unsupported predicate value type %T for field %q", value, field)
	}
	return &Predicate{field: field, op: op, value: value}, nil
}

// MustCompare calls Compare and panics on error. For statically known predicates.
func MustCompare(field string, op Op, value any) *Predicate {
	p, err := Compare(field, op, value)
	if err != nil {
		panic(err)
	}
	return p
}

// And combines predicates so that all must hold.
func And(preds ...*Predicate) *Predicate {
	return combine(CombineAnd, preds)
}

// Or combines predicates so that at least one must hold.
func Or(preds ...*Predicate) *Predicate {
	return combine(CombineOr, preds)
}

func combine(c Combinator, preds []*Predicate) *Predicate {
	if len(preds) == 1 {
		return preds[0]
	}
	return &Predicate{combine: c, children: preds}
}

// IsLeaf reports whether the node is a single comparison.
func (p *Predicate) IsLeaf() bool { return len(p.children) == 0 }

// Field returns the metadata field of a leaf node.
func (p *Predicate) Field() string { return p.field }

// Op returns the comparison operator of a leaf node.
func (p *Predicate) Op() Op { return p.op }

// Value returns the comparison value of a leaf node.
func (p *Predicate) Value() any { return p.value }

// Combinator returns how children are joined on a branch node.
func (p *Predicate) Combinator() Combinator { return p.combine }

// Children returns the child predicates of a branch node.
func (p *Predicate) Children() []*Predicate { return p.children }

// Validate checks the whole tree: branches need at least one child, leaves a
// valid operator.
func (p *Predicate) Validate() error {
	if p == nil {
		return nil
	}
	if p.IsLeaf() {
		if p.field == "" {
			return fmt.Errorf("predicate field is required")
		}
		if !validOps[p.op] {
			return fmt.Errorf("invalid predicate operator %q", p.op)
		}
		return nil
	}
	if len(p.children) == 0 {
		return fmt.Errorf("predicate group has no children")
	}
	for _, c := range p.children {
		if err := c.Validate(); err != nil {
			return err
		}
	}
	return nil
}
