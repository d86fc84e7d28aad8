package mapping

import (
	"brpgateway/internal/brp/convert"
)

// historieMapping maps the npsLa07 answer of a residence-history request.
// It reuses the residence spec of the person mapping, extended with the
// validity interval of each entry, and emits the current residence followed
// by the materiele historie.
type historieMapping struct {
	nps *npsMapping
	bag BAGEndpoints
}

func NewVerblijfplaatsHistorieMapping(conv *convert.Converter, bag BAGEndpoints) Mapping {
	return &historieMapping{nps: &npsMapping{conv: conv}, bag: bag}
}

func (m *historieMapping) AnswerCode() string { return "npsLa07" }

func (m *historieMapping) EntityType() string { return "NPS" }

func (m *historieMapping) Related() map[string]string { return map[string]string{} }

func (m *historieMapping) verblijfplaatsSpec() Object {
	c := m.nps.conv
	spec := m.nps.verblijfplaatsSpec()
	spec["datumIngangGeldigheid"] = Tr(fnN(c.FirstDateFromVarious),
		El("StUF:tijdvakGeldigheid StUF:beginGeldigheid"),
		El("BG:verblijfsadres BG:begindatumVerblijf"),
		El("BG:inp.verblijftIn StUF:tijdvakRelatie StUF:beginRelatie"),
		El("BG:inp.datumInschrijving"))
	spec["datumTot"] = Tr(fn2(c.DatumBrokenDown),
		El("StUF:tijdvakGeldigheid StUF:eindGeldigheid"))
	return spec
}

func (m *historieMapping) Spec() Object {
	c := m.nps.conv
	return Object{
		// Probed by the deceased filter and removed afterwards.
		"overlijden": Object{
			"indicatieOverleden": Tr(fn1(c.TrueIfExists), El("BG:overlijdensdatum")),
		},
		"verblijfplaats":    m.verblijfplaatsSpec(),
		"historieMaterieel": Rep("BG:historieMaterieel", m.verblijfplaatsSpec()),
	}
}

func (m *historieMapping) Filter(obj map[string]any, p FilterParams) map[string]any {
	if entries, ok := obj["historieMaterieel"].([]any); ok {
		for i, entry := range entries {
			if vp, ok := entry.(map[string]any); ok {
				entries[i] = filterVerblijfplaats(vp)
			}
		}
	}
	obj = m.nps.Filter(obj, p)
	if obj == nil {
		return nil
	}
	delete(obj, "overlijden")

	if vp, ok := obj["verblijfplaats"].(map[string]any); ok {
		m.addAddressLinks(vp)
	}
	if entries, ok := obj["historieMaterieel"].([]any); ok {
		for _, entry := range entries {
			if vp, ok := entry.(map[string]any); ok {
				m.addAddressLinks(vp)
			}
		}
	}
	return obj
}

func (m *historieMapping) Links(obj map[string]any, ctx LinkContext) map[string]any {
	return map[string]any{}
}

// addAddressLinks attaches the BAG resources of one residence entry.
func (m *historieMapping) addAddressLinks(vp map[string]any) {
	links := map[string]any{}
	if nr := getString(vp, "nummeraanduidingIdentificatie"); nr != "" {
		links["adres"] = map[string]any{"href": m.bag.Nummeraanduidingen + "/" + nr}
	}
	if id := getString(vp, "adresseerbaarObjectIdentificatie"); id != "" {
		if href := m.addressableObjectURL(id); href != "" {
			links["adresseerbaarObject"] = map[string]any{"href": href}
		}
	}
	if len(links) > 0 {
		vp["_links"] = links
	}
}

// addressableObjectURL picks the BAG collection from the object-type digits
// of a BAG identifier.
func (m *historieMapping) addressableObjectURL(id string) string {
	if len(id) < 6 {
		return ""
	}
	switch id[4:6] {
	case "01":
		return m.bag.Verblijfsobjecten + "/" + id
	case "02":
		return m.bag.Ligplaatsen + "/" + id
	case "03":
		return m.bag.Standplaatsen + "/" + id
	}
	return ""
}
