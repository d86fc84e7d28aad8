package mapping

import (
	"brpgateway/internal/brp/convert"
)

// npsnpshuwMapping maps a marriage or registered partnership wrapper
// (NPSNPSHUW). The partner's person data comes from the wrapped NPS entity;
// the wrapper itself carries the union's own attributes.
type npsnpshuwMapping struct {
	conv *convert.Converter
}

func NewNPSNPSHUWMapping(conv *convert.Converter) Mapping {
	return &npsnpshuwMapping{conv: conv}
}

func (m *npsnpshuwMapping) AnswerCode() string { return "npsLa01" }

func (m *npsnpshuwMapping) EntityType() string { return "NPSNPSHUW" }

func (m *npsnpshuwMapping) Wrapper() string { return "BG:gerelateerde" }

func (m *npsnpshuwMapping) IncludeRelated() []string {
	return []string{
		"burgerservicenummer",
		"geslachtsaanduiding",
		"geboorte",
		"naam",
		"adellijkeTitelPredikaat",
		"geheimhoudingPersoonsgegevens",
	}
}

// OverrideParams always maps a deceased partner; a marriage does not
// disappear because the partner died.
func (m *npsnpshuwMapping) OverrideParams(p FilterParams) FilterParams {
	p.IncludeDeceased = true
	return p
}

func (m *npsnpshuwMapping) Related() map[string]string { return map[string]string{} }

func (m *npsnpshuwMapping) Spec() Object {
	c := m.conv
	return Object{
		"soortVerbintenis": Tr(fn1(c.SoortVerbintenis), El("BG:soortVerbintenis")),
		"aangaanHuwelijkPartnerschap": Object{
			"datum": Tr(fn2(c.DatumBrokenDown),
				El("BG:datumSluiting"),
				At("BG:datumSluiting", "StUF:indOnvolledigeDatum")),
			"plaats": Object{
				"code":         Tr(fn1(c.GemeenteCode), El("BG:plaatsSluiting")),
				"omschrijving": Tr(fn1(c.GemeenteOmschrijving), El("BG:plaatsSluiting")),
			},
			"land": Object{
				"code":         Tr(fn1(c.Code(4)), El("BG:landSluiting")),
				"omschrijving": Tr(fn1(c.LandOmschrijving), El("BG:landSluiting")),
			},
		},
		// Used only to suppress dissolved unions; never exposed.
		"datumOntbinding": El("BG:datumOntbinding"),
	}
}

func (m *npsnpshuwMapping) Filter(obj map[string]any, p FilterParams) map[string]any {
	if obj["datumOntbinding"] != nil {
		return nil
	}
	delete(obj, "datumOntbinding")
	obj = restrictKeys(obj, m.IncludeRelated(), m.Spec())
	return PruneNil(obj)
}

func (m *npsnpshuwMapping) Links(obj map[string]any, ctx LinkContext) map[string]any {
	return personLink(obj, ctx)
}

// familieMapping holds what parent and child relations (NPSNPSOUD and
// NPSNPSKND) share: the legal family-relationship window and the rule that
// a relation without usable person data is suppressed.
type familieMapping struct {
	conv       *convert.Converter
	entityType string
	include    []string
	extra      Object
}

func (m *familieMapping) AnswerCode() string { return "npsLa01" }

func (m *familieMapping) EntityType() string { return m.entityType }

func (m *familieMapping) Wrapper() string { return "BG:gerelateerde" }

func (m *familieMapping) IncludeRelated() []string { return m.include }

func (m *familieMapping) OverrideParams(p FilterParams) FilterParams {
	p.IncludeDeceased = true
	return p
}

func (m *familieMapping) Related() map[string]string { return map[string]string{} }

func (m *familieMapping) Spec() Object {
	c := m.conv
	spec := Object{
		"aanduidingStrijdigheidNietigheid": El("BG:aanduidingStrijdigheidNietigheid"),
		"datumIngangFamilierechtelijkeBetrekking": Tr(fn2(c.DatumBrokenDown),
			El("BG:datumIngangFamilierechtelijkeBetrekking"),
			At("BG:datumIngangFamilierechtelijkeBetrekking", "StUF:indOnvolledigeDatum")),
		// Raw dates carry the window checks; possibly incomplete, compared
		// by prefix.
		"datumIngangFamilierechtelijkeBetrekkingRaw": El("BG:datumIngangFamilierechtelijkeBetrekking"),
		"datumEindeFamilierechtelijkeBetrekking":     El("BG:datumEindeFamilierechtelijkeBetrekking"),
	}
	for k, v := range m.extra {
		spec[k] = v
	}
	return spec
}

func (m *familieMapping) Filter(obj map[string]any, p FilterParams) map[string]any {
	today := p.Today
	if today.IsZero() {
		today = m.conv.Now()
	}
	ref := today.Format("20060102")

	if s, _ := obj["aanduidingStrijdigheidNietigheid"].(string); s == "true" {
		return nil
	}
	if begin, ok := obj["datumIngangFamilierechtelijkeBetrekkingRaw"].(string); ok && begin != "" {
		if begin > ref[:min(len(begin), len(ref))] {
			return nil
		}
	}
	if einde, ok := obj["datumEindeFamilierechtelijkeBetrekking"].(string); ok && einde != "" {
		if einde < ref[:min(len(einde), len(ref))] {
			return nil
		}
	}

	// A relation is suppressed only when it carries nothing identifiable
	// at all. Any single name part, any birth detail or a BSN keeps it;
	// partial parent records with just a geslachtsnaam do occur.
	naam := getMap(obj, "naam")
	hasGeboorte := hasAnyValue(flatten(getMap(obj, "geboorte")))
	if naam["geslachtsnaam"] == nil && naam["voornamen"] == nil && !hasGeboorte &&
		obj["burgerservicenummer"] == nil {
		return nil
	}

	delete(obj, "aanduidingStrijdigheidNietigheid")
	delete(obj, "datumIngangFamilierechtelijkeBetrekkingRaw")
	delete(obj, "datumEindeFamilierechtelijkeBetrekking")
	obj = restrictKeys(obj, m.include, m.Spec())
	return PruneNil(obj)
}

func (m *familieMapping) Links(obj map[string]any, ctx LinkContext) map[string]any {
	return personLink(obj, ctx)
}

func NewNPSNPSOUDMapping(conv *convert.Converter) Mapping {
	return &familieMapping{
		conv:       conv,
		entityType: "NPSNPSOUD",
		include: []string{
			"burgerservicenummer",
			"naam",
			"geboorte",
			"adellijkeTitelPredikaat",
			"geheimhoudingPersoonsgegevens",
			"geslachtsaanduiding",
		},
		extra: Object{
			"ouderAanduiding": El("BG:ouderAanduiding"),
		},
	}
}

func NewNPSNPSKNDMapping(conv *convert.Converter) Mapping {
	return &familieMapping{
		conv:       conv,
		entityType: "NPSNPSKND",
		include: []string{
			"burgerservicenummer",
			"naam",
			"geboorte",
			"adellijkeTitelPredikaat",
			"geheimhoudingPersoonsgegevens",
			"leeftijd",
		},
	}
}

// restrictKeys keeps only the inner attributes on the allow-list plus the
// wrapper's own spec keys.
func restrictKeys(obj map[string]any, include []string, own Object) map[string]any {
	allowed := make(map[string]bool, len(include)+len(own))
	for _, k := range include {
		allowed[k] = true
	}
	for k := range own {
		allowed[k] = true
	}
	out := make(map[string]any, len(allowed))
	for k, v := range obj {
		if allowed[k] {
			out[k] = v
		}
	}
	return out
}

func personLink(obj map[string]any, ctx LinkContext) map[string]any {
	links := map[string]any{}
	if bsn := getString(obj, "burgerservicenummer"); bsn != "" {
		links["ingeschrevenPersoon"] = map[string]any{"href": ctx.PersonURL(bsn)}
	}
	return links
}

// flatten collapses a nested object to its leaf values so presence checks
// can ignore structure.
func flatten(obj map[string]any) map[string]any {
	out := map[string]any{}
	var walk func(prefix string, m map[string]any)
	walk = func(prefix string, m map[string]any) {
		for k, v := range m {
			if nested, ok := v.(map[string]any); ok {
				walk(prefix+k+".", nested)
				continue
			}
			out[prefix+k] = v
		}
	}
	if obj != nil {
		walk("", obj)
	}
	return out
}
