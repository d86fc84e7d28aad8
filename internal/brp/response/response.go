// Package response assembles REST response bodies from parsed StUF answer
// messages: answer-object location, relation expansion with HAL links, the
// relation-scoped detail and list views and the residence-history shape.
package response

import (
	"strconv"

	"github.com/beevik/etree"

	"brpgateway/internal/brp/mapping"
	"brpgateway/internal/stuf"
)

// Builder creates Answer values over a shared mapping registry.
type Builder struct {
	reg *mapping.Registry
}

func NewBuilder(reg *mapping.Registry) *Builder {
	return &Builder{reg: reg}
}

// Options steer one response assembly.
type Options struct {
	Params mapping.FilterParams

	// Expand lists the relations to embed (partners, ouders, kinderen).
	Expand []string

	Links mapping.LinkContext

	// RequestURL is the self link of relation-scoped and history views.
	RequestURL string
}

// Answer is a parsed answer message positioned at one answer code.
type Answer struct {
	doc  *stuf.Document
	eval *mapping.Evaluator
	code string
}

// Parse reads a backend response body. A SOAP fault is returned as a
// *Fault error.
func (b *Builder) Parse(body []byte, answerCode string) (*Answer, error) {
	doc, err := stuf.Parse(body)
	if err != nil {
		return nil, err
	}
	if fault := ParseFault(doc); fault != nil {
		return nil, fault
	}
	return &Answer{
		doc:  doc,
		eval: mapping.NewEvaluator(doc, b.reg, answerCode),
		code: answerCode,
	}, nil
}

func (a *Answer) section() string {
	return "soapenv:Envelope soapenv:Body BG:" + a.code + " BG:antwoord"
}

// AnswerObject maps the first answer object. stuf.ErrNoAnswer covers all
// empty outcomes: no answer section, no object, or an object suppressed by
// its filter.
func (a *Answer) AnswerObject(opts Options) (map[string]any, error) {
	sect := a.doc.Find(a.section())
	if sect == nil {
		return nil, stuf.ErrNoAnswer
	}
	el := a.doc.FindIn(sect, "BG:object")
	if el == nil {
		return nil, stuf.ErrNoAnswer
	}
	obj, err := a.buildObject(el, opts)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, stuf.ErrNoAnswer
	}
	return obj, nil
}

// AllAnswerObjects maps every answer object, dropping suppressed ones. An
// empty answer yields an empty slice, not an error.
func (a *Answer) AllAnswerObjects(opts Options) ([]map[string]any, error) {
	sect := a.doc.Find(a.section())
	if sect == nil {
		return nil, nil
	}
	var out []map[string]any
	for _, el := range a.doc.FindAll(sect, "BG:object") {
		obj, err := a.buildObject(el, opts)
		if err != nil {
			return nil, err
		}
		if obj != nil {
			out = append(out, obj)
		}
	}
	return out, nil
}

// buildObject maps and filters one object element and attaches its relation
// links and requested embeddings.
func (a *Answer) buildObject(el *etree.Element, opts Options) (map[string]any, error) {
	m, err := a.eval.Lookup(el)
	if err != nil {
		return nil, err
	}
	obj, err := a.eval.FilteredObject(el, opts.Params, opts.Links)
	if err != nil || obj == nil {
		return nil, err
	}
	if err := a.addRelations(el, m, obj, opts); err != nil {
		return nil, err
	}
	return obj, nil
}

// addRelations resolves each relation's wrapper elements. Detail links are
// numbered by pre-filter position, so an item that is filtered out still
// consumes an index and existing detail URLs stay stable.
func (a *Answer) addRelations(el *etree.Element, m mapping.Mapping, obj map[string]any, opts Options) error {
	self := linkHref(obj, "self")
	sorter, _ := m.(mapping.EmbeddedSorter)

	for relation, path := range m.Related() {
		elems := a.doc.FindAll(el, path)
		if len(elems) == 0 {
			continue
		}

		var links []any
		var items []map[string]any
		for i, wrapperEl := range elems {
			item, err := a.eval.FilteredObject(wrapperEl, opts.Params, opts.Links)
			if err != nil {
				return err
			}
			if item == nil {
				continue
			}
			href := self + "/" + relation + "/" + strconv.Itoa(i+1)
			links = append(links, map[string]any{"href": href})
			setLink(item, "self", href)
			items = append(items, item)
		}

		if self != "" && len(links) > 0 {
			ensureMap(obj, "_links")[relation] = links
		}
		if contains(opts.Expand, relation) {
			if sorter != nil {
				items = sorter.SortEmbedded(relation, items)
			}
			embedded := make([]any, len(items))
			for i, item := range items {
				embedded[i] = item
			}
			ensureMap(obj, "_embedded")[relation] = embedded
		}
	}
	return nil
}

// RelatedDetail replaces the response body with the Nth embedded item of a
// relation (1-based). A missing index is an empty answer.
func RelatedDetail(obj map[string]any, relation string, id int, selfURL string) (map[string]any, error) {
	items, _ := getAny(obj, "_embedded", relation).([]any)
	if id < 1 || id > len(items) {
		return nil, stuf.ErrNoAnswer
	}
	item, ok := items[id-1].(map[string]any)
	if !ok {
		return nil, stuf.ErrNoAnswer
	}
	setLink(item, "self", selfURL)
	return item, nil
}

// RelatedList replaces the response body with only the relation's embedded
// list.
func RelatedList(obj map[string]any, relation, selfURL string) map[string]any {
	items, _ := getAny(obj, "_embedded", relation).([]any)
	if items == nil {
		items = []any{}
	}
	return map[string]any{
		"_embedded": map[string]any{relation: items},
		"_links":    map[string]any{"self": map[string]any{"href": selfURL}},
	}
}

// HistorieObject shapes the npsLa07 answer: the current residence followed
// by the materiele historie, as one embedded list.
func (a *Answer) HistorieObject(opts Options) (map[string]any, error) {
	objs, err := a.AllAnswerObjects(opts)
	if err != nil {
		return nil, err
	}
	if len(objs) == 0 {
		return nil, stuf.ErrNoAnswer
	}
	first := objs[0]

	list := []any{}
	if vp, ok := first["verblijfplaats"].(map[string]any); ok {
		list = append(list, vp)
	}
	if entries, ok := first["historieMaterieel"].([]any); ok {
		list = append(list, entries...)
	}
	return map[string]any{
		"_links":    map[string]any{"self": map[string]any{"href": opts.RequestURL}},
		"_embedded": map[string]any{"verblijfplaatshistorie": list},
	}, nil
}

func ensureMap(obj map[string]any, key string) map[string]any {
	if m, ok := obj[key].(map[string]any); ok {
		return m
	}
	m := map[string]any{}
	obj[key] = m
	return m
}

func setLink(obj map[string]any, name, href string) {
	ensureMap(obj, "_links")[name] = map[string]any{"href": href}
}

func linkHref(obj map[string]any, name string) string {
	link, _ := getAny(obj, "_links", name).(map[string]any)
	if link == nil {
		return ""
	}
	href, _ := link["href"].(string)
	return href
}

func getAny(obj map[string]any, keys ...string) any {
	var cur any = obj
	for _, key := range keys {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = m[key]
	}
	return cur
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
