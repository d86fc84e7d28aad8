package mapping

import (
	"github.com/beevik/etree"

	"brpgateway/internal/stuf"
)

// Evaluator maps elements of one parsed answer message.
type Evaluator struct {
	doc        *stuf.Document
	reg        *Registry
	answerCode string
}

func NewEvaluator(doc *stuf.Document, reg *Registry, answerCode string) *Evaluator {
	return &Evaluator{doc: doc, reg: reg, answerCode: answerCode}
}

// Lookup resolves the mapping for an element through its reserved entity
// type attribute.
func (e *Evaluator) Lookup(el *etree.Element) (Mapping, error) {
	entityType, _ := e.doc.Attribute(el, stuf.EntityTypeAttribute)
	return e.reg.Get(e.answerCode, entityType)
}

// Mapped pairs a mapped object with the mapping that produced it.
type Mapped struct {
	Object  map[string]any
	Mapping Mapping
	Element *etree.Element
}

// MappedObject evaluates the element's mapping spec. For related mappings
// the inner entity is resolved first; a suppressed or absent inner entity
// suppresses the whole object (nil Mapped, nil error).
func (e *Evaluator) MappedObject(el *etree.Element, params FilterParams, ctx LinkContext) (*Mapped, error) {
	m, err := e.Lookup(el)
	if err != nil {
		return nil, err
	}

	obj := map[string]any{}
	if rm, ok := m.(RelatedMapping); ok {
		innerEl := e.doc.FindIn(el, rm.Wrapper())
		if innerEl == nil {
			return nil, nil
		}
		inner, err := e.FilteredObject(innerEl, rm.OverrideParams(params), ctx)
		if err != nil {
			return nil, err
		}
		if inner == nil {
			return nil, nil
		}
		// The wrapper exposes its own links, not the inner entity's.
		delete(inner, "_links")
		for k, v := range inner {
			obj[k] = v
		}
	}

	own := e.Eval(m.Spec(), el)
	if ownObj, ok := own.(map[string]any); ok {
		for k, v := range ownObj {
			obj[k] = v
		}
	}
	return &Mapped{Object: obj, Mapping: m, Element: el}, nil
}

// FilteredObject maps, links and filters an element. Links are built from
// the pre-filter object because filtering may remove the data they need.
// A nil result without error means the object is suppressed.
func (e *Evaluator) FilteredObject(el *etree.Element, params FilterParams, ctx LinkContext) (map[string]any, error) {
	mapped, err := e.MappedObject(el, params, ctx)
	if err != nil || mapped == nil {
		return nil, err
	}

	links := mapped.Mapping.Links(mapped.Object, ctx)
	filtered := mapped.Mapping.Filter(mapped.Object, params)
	if filtered == nil {
		return nil, nil
	}
	if len(links) > 0 {
		filtered["_links"] = links
	}
	return filtered, nil
}

// Eval resolves a spec node against a scope element.
func (e *Evaluator) Eval(spec Spec, scope *etree.Element) any {
	switch s := spec.(type) {
	case Literal:
		return s.Value
	case Element:
		if v, ok := e.doc.GetValue(scope, s.Path); ok && v != "" {
			return v
		}
		return nil
	case ElementAttr:
		if v, ok := e.doc.GetAttribute(scope, s.Path, s.Attr); ok && v != "" {
			return v
		}
		return nil
	case SubPath:
		el := e.doc.FindIn(scope, s.Path)
		found := e.doc.FindByExpression(el, s.Expr)
		if found == nil || found.Text() == "" {
			return nil
		}
		return found.Text()
	case Transform:
		args := make([]any, len(s.Args))
		for i, a := range s.Args {
			args[i] = e.Eval(a, scope)
		}
		return s.Fn(args)
	case Repeat:
		elems := e.doc.FindAll(scope, s.Path)
		out := make([]any, 0, len(elems))
		for _, el := range elems {
			out = append(out, e.Eval(s.Sub, el))
		}
		return out
	case Object:
		out := make(map[string]any, len(s))
		for k, member := range s {
			out[k] = e.Eval(member, scope)
		}
		return out
	}
	return nil
}

// Document exposes the underlying message for path lookups outside specs.
func (e *Evaluator) Document() *stuf.Document { return e.doc }
