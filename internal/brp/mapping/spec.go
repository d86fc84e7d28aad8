// Package mapping turns StUF answer objects into the nested field structure
// of the REST responses. Every entity type (NPS, NPSNPSHUW, ...) has a
// Mapping that declares a spec tree, a filter and its HAL links; a Registry
// dispatches on the answer code and the StUF:entiteittype attribute.
package mapping

// Spec is one node of a mapping declaration. A spec tree mirrors the JSON
// shape of the response; the leaves name where in the StUF message each
// value comes from.
type Spec interface {
	isSpec()
}

// Literal yields a fixed value.
type Literal struct{ Value any }

// Element yields the text content at a space-delimited path, nil when the
// path does not resolve or the element is empty.
type Element struct{ Path string }

// ElementAttr yields an attribute value of the element at Path.
type ElementAttr struct{ Path, Attr string }

// SubPath resolves Path first, then evaluates an expression relative to the
// found element and yields that element's text.
type SubPath struct{ Path, Expr string }

// Transform applies Fn to the evaluated argument specs.
type Transform struct {
	Fn   func(args []any) any
	Args []Spec
}

// Repeat evaluates Sub once for every element matching Path, yielding a
// list.
type Repeat struct {
	Path string
	Sub  Spec
}

// Object evaluates each member spec, yielding a nested object.
type Object map[string]Spec

func (Literal) isSpec()     {}
func (Element) isSpec()     {}
func (ElementAttr) isSpec() {}
func (SubPath) isSpec()     {}
func (Transform) isSpec()   {}
func (Repeat) isSpec()      {}
func (Object) isSpec()      {}

// Shorthand constructors keep the mapping declarations close to the shape
// of the response they produce.

func El(path string) Element { return Element{Path: path} }

func At(path, attr string) ElementAttr { return ElementAttr{Path: path, Attr: attr} }

func Lit(v any) Literal { return Literal{Value: v} }

func Sub(path, expr string) SubPath { return SubPath{Path: path, Expr: expr} }

func Rep(path string, sub Spec) Repeat { return Repeat{Path: path, Sub: sub} }

func Tr(fn func(args []any) any, args ...Spec) Transform {
	return Transform{Fn: fn, Args: args}
}

// Adapters lift typed converter methods into transform functions.

func fn1(f func(any) any) func([]any) any {
	return func(args []any) any { return f(arg(args, 0)) }
}

func fn2(f func(any, any) any) func([]any) any {
	return func(args []any) any { return f(arg(args, 0), arg(args, 1)) }
}

func fn3(f func(any, any, any) any) func([]any) any {
	return func(args []any) any { return f(arg(args, 0), arg(args, 1), arg(args, 2)) }
}

func fnN(f func(...any) any) func([]any) any {
	return func(args []any) any { return f(args...) }
}

func arg(args []any, i int) any {
	if i < len(args) {
		return args[i]
	}
	return nil
}
