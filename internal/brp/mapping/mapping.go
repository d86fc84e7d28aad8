package mapping

import (
	"time"
)

// FilterParams steer object filtering. Today is the reference date for the
// relation-window checks; the caller takes it from the request context so
// tests stay reproducible.
type FilterParams struct {
	IncludeDeceased bool
	Today           time.Time
}

// Mapping declares how one StUF entity type maps onto a response object.
type Mapping interface {
	AnswerCode() string
	EntityType() string

	// Spec is the declaration evaluated against the entity's element.
	Spec() Object

	// Related names the relation attributes that can be expanded, with the
	// wrapper path holding each related entity.
	Related() map[string]string

	// Filter applies the entity's suppression and reshaping rules to the
	// mapped object. A nil result drops the object entirely. Every
	// implementation ends with PruneNil.
	Filter(obj map[string]any, p FilterParams) map[string]any

	// Links builds the entity's own HAL links from the pre-filter object.
	Links(obj map[string]any, ctx LinkContext) map[string]any
}

// RelatedMapping wraps an inner entity: the mapped result starts from the
// inner entity's filtered object restricted to an allow-list, overlaid with
// the wrapper's own attributes.
type RelatedMapping interface {
	Mapping

	// Wrapper is the path of the inner entity element.
	Wrapper() string

	// IncludeRelated lists the inner attributes that survive the merge.
	IncludeRelated() []string

	// OverrideParams adjusts the filter parameters for the inner entity.
	OverrideParams(FilterParams) FilterParams
}

// EmbeddedSorter orders a relation's embedded objects before they are
// numbered and exposed.
type EmbeddedSorter interface {
	SortEmbedded(relation string, items []map[string]any) []map[string]any
}

// PruneNil recursively removes nil values, empty objects and empty list
// items. Booleans survive, including false.
func PruneNil(obj map[string]any) map[string]any {
	out := map[string]any{}
	for k, v := range obj {
		switch tv := v.(type) {
		case map[string]any:
			if pruned := PruneNil(tv); len(pruned) > 0 {
				out[k] = pruned
			}
		case []any:
			kept := make([]any, 0, len(tv))
			for _, item := range tv {
				if m, ok := item.(map[string]any); ok {
					if pruned := PruneNil(m); len(pruned) > 0 {
						kept = append(kept, pruned)
					}
					continue
				}
				if item != nil {
					kept = append(kept, item)
				}
			}
			out[k] = kept
		default:
			if v != nil {
				out[k] = v
			}
		}
	}
	return out
}

// LinkContext carries everything link synthesis needs: where this service
// is reachable and where the BAG resources live.
type LinkContext struct {
	// APIRoot is the absolute base of the BRP resources, e.g.
	// https://host/brp, derived from the incoming request.
	APIRoot string

	BAG BAGEndpoints
}

// PersonURL returns the canonical URL of a person resource.
func (ctx LinkContext) PersonURL(bsn string) string {
	return ctx.APIRoot + "/ingeschrevenpersonen/" + bsn
}

// BAGEndpoints are the address-register resource collections linked from
// residence data.
type BAGEndpoints struct {
	Nummeraanduidingen string
	Verblijfsobjecten  string
	Ligplaatsen        string
	Standplaatsen      string
}

// DefaultBAGEndpoints points at the public Amsterdam BAG API.
func DefaultBAGEndpoints() BAGEndpoints {
	const base = "https://api.data.amsterdam.nl/v1/bag"
	return BAGEndpoints{
		Nummeraanduidingen: base + "/nummeraanduidingen",
		Verblijfsobjecten:  base + "/verblijfsobjecten",
		Ligplaatsen:        base + "/ligplaatsen",
		Standplaatsen:      base + "/standplaatsen",
	}
}

func getMap(obj map[string]any, keys ...string) map[string]any {
	cur := obj
	for _, key := range keys {
		next, _ := cur[key].(map[string]any)
		if next == nil {
			return nil
		}
		cur = next
	}
	return cur
}

func getString(obj map[string]any, keys ...string) string {
	if len(keys) > 1 {
		obj = getMap(obj, keys[:len(keys)-1]...)
	}
	if obj == nil {
		return ""
	}
	s, _ := obj[keys[len(keys)-1]].(string)
	return s
}
