package mapping

import (
	"fmt"
	"time"

	"brpgateway/internal/brp/convert"
)

// npsMapping maps the NPS entity (natuurlijke personen) of an npsLa01
// answer onto the ingeschrevenpersonen resource.
type npsMapping struct {
	conv *convert.Converter
}

func NewNPSMapping(conv *convert.Converter) Mapping {
	return &npsMapping{conv: conv}
}

func (m *npsMapping) AnswerCode() string { return "npsLa01" }

func (m *npsMapping) EntityType() string { return "NPS" }

func (m *npsMapping) Related() map[string]string {
	return map[string]string{
		"partners": "BG:inp.heeftAlsEchtgenootPartner",
		"ouders":   "BG:inp.heeftAlsOuders",
		"kinderen": "BG:inp.heeftAlsKinderen",
	}
}

// communicatieSpec collects the inputs for the salutation: the person's own
// name data plus every marriage, current and dissolved.
func (m *npsMapping) communicatieSpec() Object {
	c := m.conv
	return Object{
		"persoon": Object{
			"geslachtsaanduiding": Tr(fn2(c.Geslachtsaanduiding),
				El("BG:geslachtsaanduiding"),
				At("BG:geslachtsaanduiding", "StUF:noValue")),
			"naam": Object{
				"aanduidingNaamgebruik": Tr(fn1(c.AanduidingNaamgebruik), El("BG:aanduidingNaamgebruik")),
				"voorletters":           El("BG:voorletters"),
				"geslachtsnaam":         El("BG:geslachtsnaam"),
				"voorvoegsel":           El("BG:voorvoegselGeslachtsnaam"),
			},
		},
		"partners": Rep("BG:inp.heeftAlsEchtgenootPartner", Object{
			"naam": Object{
				"geslachtsnaam": El("BG:gerelateerde BG:geslachtsnaam"),
				"voorvoegsel":   El("BG:gerelateerde BG:voorvoegselGeslachtsnaam"),
			},
			"aangaanHuwelijkPartnerschap": Object{
				"datum": Tr(fn2(c.DatumBrokenDown), El("BG:datumSluiting")),
			},
			"ontbindingHuwelijkPartnerschap": Object{
				"datum": Tr(fn2(c.DatumBrokenDown), El("BG:datumOntbinding")),
			},
		}),
	}
}

func (m *npsMapping) nationaliteitSpec() Object {
	c := m.conv
	return Object{
		"aanduidingBijzonderNederlanderschap": Tr(fn2(c.AanduidingBijzonderNederlanderschap),
			El("BG:inp.aanduidingBijzonderNederlanderschap")),
		"nationaliteiten": Rep("BG:inp.heeftAlsNationaliteit", Object{
			"datumIngangGeldigheid": Tr(fn2(c.DatumBrokenDown),
				El("BG:inp.datumVerkrijging"),
				At("BG:inp.datumVerkrijging", "StUF:indOnvolledigeDatum")),
			"datumVerlies": El("BG:inp.datumVerlies"),
			"nationaliteit": Object{
				"code":         Tr(fn1(c.Code(4)), El("BG:gerelateerde BG:code")),
				"omschrijving": El("BG:gerelateerde BG:omschrijving"),
			},
			"inOnderzoek": El("BG:inOnderzoek"),
		}),
	}
}

// verblijfplaatsSpec is shared with the residence-history mapping, which
// extends it with the validity interval of each historic address.
func (m *npsMapping) verblijfplaatsSpec() Object {
	c := m.conv
	return Object{
		"adresseerbaarObjectIdentificatie": El("BG:inp.verblijftIn BG:gerelateerde BG:identificatie"),
		"woonadres": Object{
			"naamOpenbareRuimte":            El("BG:verblijfsadres BG:gor.openbareRuimteNaam"),
			"straat":                        El("BG:verblijfsadres BG:gor.straatnaam"),
			"huisnummer":                    El("BG:verblijfsadres BG:aoa.huisnummer"),
			"huisletter":                    El("BG:verblijfsadres BG:aoa.huisletter"),
			"huisnummertoevoeging":          El("BG:verblijfsadres BG:aoa.huisnummertoevoeging"),
			"postcode":                      El("BG:verblijfsadres BG:aoa.postcode"),
			"woonplaats":                    El("BG:verblijfsadres BG:wpl.woonplaatsNaam"),
			"nummeraanduidingIdentificatie": El("BG:verblijfsadres BG:aoa.identificatie"),
			"locatiebeschrijving":           El("BG:verblijfsadres BG:inp.locatiebeschrijving"),
		},
		"briefadres": Object{
			"naamOpenbareRuimte":            El("BG:sub.correspondentieAdres BG:gor.openbareRuimteNaam"),
			"straat":                        El("BG:sub.correspondentieAdres BG:gor.straatnaam"),
			"huisnummer":                    El("BG:sub.correspondentieAdres BG:aoa.huisnummer"),
			"huisletter":                    El("BG:sub.correspondentieAdres BG:aoa.huisletter"),
			"huisnummertoevoeging":          El("BG:sub.correspondentieAdres BG:aoa.huisnummertoevoeging"),
			"postcode":                      El("BG:sub.correspondentieAdres BG:postcode"),
			"woonplaats":                    El("BG:sub.correspondentieAdres BG:wpl.woonplaatsNaam"),
			"nummeraanduidingIdentificatie": El("BG:sub.correspondentieAdres BG:aoa.identificatie"),
			"locatiebeschrijving":           El("BG:sub.correspondentieAdres BG:inp.locatiebeschrijving"),
		},
		"indicatieVestigingVanuitBuitenland": Tr(fn1(c.TrueIfExists), El("BG:inp.datumVestigingInNederland")),
		"vanuitVertrokkenOnbekendWaarheen": Tr(fn1(c.TrueIfEquals("0000")),
			Tr(fn1(c.Code(4)), El("BG:inp.immigratieLand"))),
		"datumAanvangAdreshouding": Tr(fnN(c.FirstDateFromVarious),
			El("BG:verblijfsadres BG:begindatumVerblijf"),
			El("BG:inp.verblijftIn StUF:tijdvakRelatie StUF:beginRelatie")),
		"datumInschrijvingInGemeente": Tr(fn2(c.DatumBrokenDown), El("BG:inp.datumInschrijving")),
		"datumVestigingInNederland": Tr(fn2(c.DatumBrokenDown),
			El("BG:inp.datumVestigingInNederland"),
			At("BG:inp.datumVestigingInNederland", "StUF:indOnvolledigeDatum")),
		"gemeenteVanInschrijving": Object{
			"code":         Tr(fn1(c.GemeenteCode), El("BG:inp.gemeenteVanInschrijving")),
			"omschrijving": Tr(fn1(c.GemeenteOmschrijving), El("BG:inp.gemeenteVanInschrijving")),
		},
		"landVanwaarIngeschreven": Object{
			"code":         Tr(fn1(c.Code(4)), El("BG:inp.immigratieLand")),
			"omschrijving": Tr(fn1(c.LandOmschrijving), El("BG:inp.immigratieLand")),
		},
		"verblijfBuitenland": Tr(fn1(c.VerblijfBuitenland), Object{
			"adresRegel1": El("BG:sub.verblijfBuitenland BG:sub.adresBuitenland1"),
			"adresRegel2": El("BG:sub.verblijfBuitenland BG:sub.adresBuitenland2"),
			"adresRegel3": El("BG:sub.verblijfBuitenland BG:sub.adresBuitenland3"),
			"land": Object{
				"code":         Tr(fn1(c.Code(4)), El("BG:sub.verblijfBuitenland BG:lnd.landcode")),
				"omschrijving": Tr(fn1(c.LandOmschrijving), El("BG:sub.verblijfBuitenland BG:lnd.landcode")),
			},
		}),
		// BG:inOnderzoek repeats with different group attributes; only the
		// Verblijfsplaats group counts here.
		"inOnderzoek": Tr(m.inOnderzoekVerblijfplaats,
			Rep("BG:inOnderzoek", Sub(".", ".[@groepsnaam='Verblijfsplaats']"))),
	}
}

func (m *npsMapping) Spec() Object {
	c := m.conv
	return Object{
		"burgerservicenummer": El("BG:inp.bsn"),
		"aNummer":             El("BG:inp.a-nummer"),
		"geheimhoudingPersoonsgegevens": Tr(fn1(c.TrueIfIn("1", "2", "3", "4", "5", "6", "7")),
			El("BG:inp.indicatieGeheim")),
		"geslachtsaanduiding": Tr(fn2(c.Geslachtsaanduiding),
			El("BG:geslachtsaanduiding"),
			At("BG:geslachtsaanduiding", "StUF:noValue")),
		"leeftijd": Tr(fn3(c.Leeftijd),
			El("BG:geboortedatum"),
			At("BG:geboortedatum", "StUF:indOnvolledigeDatum"),
			El("BG:overlijdensdatum")),
		"naam": Object{
			"geslachtsnaam": El("BG:geslachtsnaam"),
			"voorletters":   El("BG:voorletters"),
			"voornamen":     El("BG:voornamen"),
			"voorvoegsel":   El("BG:voorvoegselGeslachtsnaam"),
			"adellijkeTitelPredikaat": Object{
				"code":         Tr(fn1(c.AdellijkeTitelCode), El("BG:adellijkeTitelPredikaat")),
				"omschrijving": El("BG:adellijkeTitelPredikaat"),
			},
			"aanhef":                Tr(fn1(c.Aanhef), m.communicatieSpec()),
			"aanschrijfwijze":       Tr(fn1(c.Aanschrijfwijze), m.communicatieSpec()),
			"aanduidingNaamgebruik": Tr(fn1(c.AanduidingNaamgebruik), El("BG:aanduidingNaamgebruik")),
		},
		"nationaliteiten": Tr(fn1(c.Nationaliteiten), m.nationaliteitSpec()),
		"geboorte": Object{
			"datum": Tr(fn2(c.DatumBrokenDown),
				El("BG:geboortedatum"),
				At("BG:geboortedatum", "StUF:indOnvolledigeDatum")),
			"land": Object{
				"code":         Tr(fn1(c.Code(4)), El("BG:inp.geboorteLand")),
				"omschrijving": Tr(fn1(c.LandOmschrijving), El("BG:inp.geboorteLand")),
			},
			"plaats": Object{
				"code":         Tr(fn1(c.GemeenteCode), El("BG:inp.geboorteplaats")),
				"omschrijving": Tr(fn1(c.GemeenteOmschrijving), El("BG:inp.geboorteplaats")),
			},
		},
		"overlijden": Object{
			"indicatieOverleden": Tr(fn1(c.TrueIfExists), El("BG:overlijdensdatum")),
			"datum": Tr(fn2(c.DatumBrokenDown),
				El("BG:overlijdensdatum"),
				At("BG:overlijdensdatum", "StUF:indOnvolledigeDatum")),
			"land": Object{
				"code":         Tr(fn1(c.Code(4)), El("BG:inp.overlijdenLand")),
				"omschrijving": Tr(fn1(c.LandOmschrijving), El("BG:inp.overlijdenLand")),
			},
			"plaats": Object{
				"code":         Tr(fn1(c.GemeenteCode), El("BG:inp.overlijdenplaats")),
				"omschrijving": Tr(fn1(c.GemeenteOmschrijving), El("BG:inp.overlijdenplaats")),
			},
		},
		"verblijfplaats": m.verblijfplaatsSpec(),
		"verblijfstitel": Tr(m.verblijfstitel,
			El("BG:vbt.aanduidingVerblijfstitel"),
			El("BG:ing.datumVerkrijgingVerblijfstitel"),
			El("BG:ing.datumVerliesVerblijfstitel"),
			Rep("BG:inOnderzoek", Sub(".", ".[@elementnaam='aanduidingVerblijfstitel']")),
			Rep("StUF:extraElementen", Sub(".", ".//StUF:extraElement[@naam='omschrijvingVerblijfstitel']"))),
	}
}

// inOnderzoekVerblijfplaats marks every residence field as under
// investigation when any Verblijfsplaats group carries a J value.
func (m *npsMapping) inOnderzoekVerblijfplaats(args []any) any {
	values, _ := arg(args, 0).([]any)
	found := false
	for _, v := range values {
		if v == "J" {
			found = true
			break
		}
	}
	if !found {
		return nil
	}
	fields := []string{
		"aanduidingBijHuisnummer",
		"datumAanvangAdreshouding",
		"datumIngangGeldigheid",
		"datumInschrijvingInGemeente",
		"datumVestigingInNederland",
		"functieAdres",
		"gemeenteVanInschrijving",
		"huisletter",
		"huisnummer",
		"huisnummertoevoeging",
		"nummeraanduidingIdentificatie",
		"adresseerbaarObjectIdentificatie",
		"landVanwaarIngeschreven",
		"locatiebeschrijving",
		"straat",
		"postcode",
		"korteNaam",
		"verblijfBuitenland",
		"woonplaats",
	}
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		out[f] = true
	}
	return out
}

// verblijfstitel builds the residence-permit object. A permit that already
// expired is not reported, and both the code and the acquisition date are
// required.
func (m *npsMapping) verblijfstitel(args []any) any {
	code := arg(args, 0)
	verkrijging := arg(args, 1)
	verlies := arg(args, 2)
	inOnderzoek, _ := arg(args, 3).([]any)
	omschrijving, _ := arg(args, 4).([]any)

	if s, ok := verlies.(string); ok {
		if d, err := time.Parse("20060102", s); err == nil {
			today := m.conv.Now()
			if d.Before(time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())) {
				return nil
			}
		}
	}
	if code == nil || verkrijging == nil {
		return nil
	}

	var oms any
	if len(omschrijving) > 0 {
		oms = omschrijving[0]
	}
	out := map[string]any{
		"aanduiding": map[string]any{
			"code":         fmt.Sprintf("%v", code),
			"omschrijving": oms,
		},
		"datumIngang": m.conv.DatumBrokenDown(verkrijging, nil),
		"datumEinde":  m.conv.DatumBrokenDown(verlies, nil),
	}

	var present []any
	for _, io := range inOnderzoek {
		if io != nil {
			present = append(present, io)
		}
	}
	if len(present) == 1 && present[0] == "J" {
		out["inOnderzoek"] = map[string]any{
			"aanduiding":  true,
			"datumIngang": true,
			"datumEinde":  true,
		}
	}
	return out
}

// filterVerblijfplaats flattens the address shape. When both a residence
// and a correspondence address carry values the correspondence address
// wins; functieAdres records which one was used. Addresses registered as
// non-resident (RNI) lose their meaningless start date.
func filterVerblijfplaats(vp map[string]any) map[string]any {
	var adres map[string]any
	var functie any
	for _, functieAdres := range []string{"woonadres", "briefadres"} {
		cur, _ := vp[functieAdres].(map[string]any)
		delete(vp, functieAdres)
		if hasAnyValue(cur) {
			adres = cur
			functie = functieAdres
		}
	}
	if adres == nil {
		adres = map[string]any{}
	}

	reordered := map[string]any{
		"adresseerbaarObjectIdentificatie":   take(vp, "adresseerbaarObjectIdentificatie"),
		"nummeraanduidingIdentificatie":      take(adres, "nummeraanduidingIdentificatie"),
		"functieAdres":                       functie,
		"indicatieVestigingVanuitBuitenland": take(vp, "indicatieVestigingVanuitBuitenland"),
		"locatiebeschrijving":                take(adres, "locatiebeschrijving"),
	}

	if getString(vp, "gemeenteVanInschrijving", "code") == "1999" {
		delete(vp, "datumAanvangAdreshouding")
	}

	out := map[string]any{}
	for k, v := range adres {
		out[k] = v
	}
	for k, v := range reordered {
		out[k] = v
	}
	for k, v := range vp {
		out[k] = v
	}
	return out
}

func hasAnyValue(obj map[string]any) bool {
	for _, v := range obj {
		if v != nil {
			return true
		}
	}
	return false
}

func take(obj map[string]any, key string) any {
	v := obj[key]
	delete(obj, key)
	return v
}

func (m *npsMapping) Filter(obj map[string]any, p FilterParams) map[string]any {
	if ov := getMap(obj, "overlijden"); ov != nil {
		if deceased, _ := ov["indicatieOverleden"].(bool); deceased && !p.IncludeDeceased {
			return nil
		}
	}
	if vp, ok := obj["verblijfplaats"].(map[string]any); ok {
		obj["verblijfplaats"] = filterVerblijfplaats(vp)
	}
	return PruneNil(obj)
}

func (m *npsMapping) Links(obj map[string]any, ctx LinkContext) map[string]any {
	links := map[string]any{}
	if bsn := getString(obj, "burgerservicenummer"); bsn != "" {
		self := ctx.PersonURL(bsn)
		links["self"] = map[string]any{"href": self}
		links["verblijfplaatshistorie"] = map[string]any{"href": self + "/verblijfplaatshistorie"}
	}
	if nr := getString(obj, "verblijfplaats", "woonadres", "nummeraanduidingIdentificatie"); nr != "" {
		links["verblijfplaatsNummeraanduiding"] = map[string]any{
			"href": ctx.BAG.Nummeraanduidingen + "/" + nr,
		}
	}
	return links
}

// SortEmbedded orders parents and children deterministically before they
// are numbered.
func (m *npsMapping) SortEmbedded(relation string, items []map[string]any) []map[string]any {
	switch relation {
	case "ouders":
		return sortOuders(items)
	case "kinderen":
		return sortKinderen(items)
	}
	return items
}
