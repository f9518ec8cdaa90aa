package signal

import (
	"errors"
	"fmt"
	"sort"
)

// ErrSchema is returned when an event payload does not match its declaration.
var ErrSchema = errors.New("event does not match schema")

// Kind describes the type of a field value.
type Kind int

const (
	KindAny Kind = iota
	KindString
	KindInt
	KindBool
	KindStrings
	KindTable
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	case KindStrings:
		return "[]string"
	case KindTable:
		return "[][]string"
	default:
		return "any"
	}
}

// Accepts reports whether v is a valid value of kind k. Nil is accepted for
// every kind so that "no selection" can be expressed.
func (k Kind) Accepts(v any) bool {
	if v == nil {
		return true
	}
	switch k {
	case KindString:
		_, ok := v.(string)
		return ok
	case KindInt:
		_, ok := v.(int)
		return ok
	case KindBool:
		_, ok := v.(bool)
		return ok
	case KindStrings:
		_, ok := v.([]string)
		return ok
	case KindTable:
		_, ok := v.([][]string)
		return ok
	default:
		return true
	}
}

// Coerce converts a decoded transport value (JSON numbers, generic slices)
// back to kind k.
func (k Kind) Coerce(v any) (any, bool) {
	if k.Accepts(v) {
		return v, true
	}
	switch k {
	case KindInt:
		if f, ok := v.(float64); ok {
			return int(f), true
		}
	case KindStrings:
		if items, ok := v.([]any); ok {
			out := make([]string, 0, len(items))
			for _, item := range items {
				s, ok := item.(string)
				if !ok {
					return nil, false
				}
				out = append(out, s)
			}
			return out, true
		}
	case KindTable:
		if rows, ok := v.([]any); ok {
			out := make([][]string, 0, len(rows))
			for _, row := range rows {
				row, ok := KindStrings.Coerce(row)
				if !ok {
					return nil, false
				}
				out = append(out, row.([]string))
			}
			return out, true
		}
	}
	return nil, false
}

// Spec declares one field of an event payload.
type Spec struct {
	Name string
	Kind Kind
}

type schema struct {
	fields map[string]Kind
	order  []string
	open   bool
	extra  Kind
}

// Catalog declares the payload of every known event name. Undeclared names
// are not checked.
type Catalog struct {
	schemas map[string]*schema
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{schemas: make(map[string]*schema)}
}

// Declare registers a closed payload: only the listed fields are allowed.
func (c *Catalog) Declare(name string, specs ...Spec) {
	c.schemas[name] = newSchema(specs, false, KindAny)
}

// DeclareOpen registers a payload that also allows undeclared fields of kind extra.
func (c *Catalog) DeclareOpen(name string, extra Kind, specs ...Spec) {
	c.schemas[name] = newSchema(specs, true, extra)
}

func newSchema(specs []Spec, open bool, extra Kind) *schema {
	s := &schema{fields: make(map[string]Kind, len(specs)), open: open, extra: extra}
	for _, spec := range specs {
		s.fields[spec.Name] = spec.Kind
		s.order = append(s.order, spec.Name)
	}
	return s
}

// Known reports whether name has been declared.
func (c *Catalog) Known(name string) bool {
	_, ok := c.schemas[name]
	return ok
}

// Names returns declared event names in sorted order.
func (c *Catalog) Names() []string {
	out := make([]string, 0, len(c.schemas))
	for name := range c.schemas {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// FieldNames returns the declared fields of name in declaration order.
func (c *Catalog) FieldNames(name string) []string {
	s, ok := c.schemas[name]
	if !ok {
		return nil
	}
	return append([]string(nil), s.order...)
}

func (s *schema) kindOf(field string) (Kind, bool) {
	if k, ok := s.fields[field]; ok {
		return k, true
	}
	if s.open {
		return s.extra, true
	}
	return KindAny, false
}

// Validate checks an event payload against its declaration.
func (c *Catalog) Validate(name string, fields Fields) error {
	s, ok := c.schemas[name]
	if !ok {
		return nil
	}
	var err error
	fields.Each(func(field string, value any) {
		if err != nil {
			return
		}
		kind, ok := s.kindOf(field)
		if !ok {
			err = fmt.Errorf("%w: %s has no field %q", ErrSchema, name, field)
			return
		}
		if !kind.Accepts(value) {
			err = fmt.Errorf("%w: %s.%s must be %s, got %T", ErrSchema, name, field, kind, value)
		}
	})
	return err
}

// Coerce converts every field of a decoded payload to its declared kind.
func (c *Catalog) Coerce(name string, fields Fields) (Fields, error) {
	s, ok := c.schemas[name]
	if !ok {
		return fields, nil
	}
	var out Fields
	var err error
	fields.Each(func(field string, value any) {
		if err != nil {
			return
		}
		kind, ok := s.kindOf(field)
		if !ok {
			err = fmt.Errorf("%w: %s has no field %q", ErrSchema, name, field)
			return
		}
		v, ok := kind.Coerce(value)
		if !ok {
			err = fmt.Errorf("%w: %s.%s must be %s, got %T", ErrSchema, name, field, kind, value)
			return
		}
		out.Set(field, v)
	})
	if err != nil {
		return Fields{}, err
	}
	return out, nil
}
