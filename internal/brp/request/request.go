// Package request declares the outgoing MKS message types and their typed
// constructors. Each resource route builds exactly one of these.
package request

import (
	"brpgateway/internal/stuf"
)

const npsContentRoot = "soapenv:Body BG:npsLv01"

// bsnTemplate asks for one person by burgerservicenummer with full scope.
var bsnTemplate = stuf.Template{
	File:        "ingeschrevenpersonen.xml",
	ContentRoot: npsContentRoot,
	Action:      "npsLv01Integraal",
	Paths: map[string]string{
		"bsn": "BG:gelijk BG:inp.bsn",
	},
}

// filterTemplate searches persons on a combination of match criteria. All
// keys are optional; unused criteria are removed from the message so MKS
// does not match on empty strings.
var filterTemplate = stuf.Template{
	File:        "ingeschrevenpersonen_filter.xml",
	ContentRoot: npsContentRoot,
	Action:      "npsLv01Integraal",
	Paths: map[string]string{
		"burgerservicenummer":               "BG:gelijk BG:inp.bsn",
		"geslachtsnaam":                     "BG:gelijk BG:geslachtsnaam",
		"voornamen":                         "BG:gelijk BG:voornamen",
		"voorvoegsel":                       "BG:gelijk BG:voorvoegselGeslachtsnaam",
		"geboortedatum":                     "BG:gelijk BG:geboortedatum",
		"gemeentevaninschrijving":           "BG:gelijk BG:inp.gemeenteVanInschrijving",
		"identificatiecodenummeraanduiding": "BG:gelijk BG:verblijfsadres BG:aoa.identificatie",
		"postcode":                          "BG:gelijk BG:verblijfsadres BG:aoa.postcode",
		"huisnummer":                        "BG:gelijk BG:verblijfsadres BG:aoa.huisnummer",
		"huisletter":                        "BG:gelijk BG:verblijfsadres BG:aoa.huisletter",
		"huisnummertoevoeging":              "BG:gelijk BG:verblijfsadres BG:aoa.huisnummertoevoeging",
		"naamopenbareruimte":                "BG:gelijk BG:verblijfsadres BG:gor.openbareRuimteNaam",
	},
	Optional: []string{
		"burgerservicenummer",
		"geslachtsnaam",
		"voornamen",
		"voorvoegsel",
		"geboortedatum",
		"gemeentevaninschrijving",
		"identificatiecodenummeraanduiding",
		"postcode",
		"huisnummer",
		"huisletter",
		"huisnummertoevoeging",
		"naamopenbareruimte",
	},
}

// historieTemplate asks for the residence history of one person, optionally
// restricted to a reference date or a material period.
var historieTemplate = stuf.Template{
	File:        "verblijfplaatshistorie.xml",
	ContentRoot: "soapenv:Body BG:npsLv07",
	Action:      "npsLv07",
	Paths: map[string]string{
		"bsn":           "BG:gelijk BG:inp.bsn",
		"peildatum":     "BG:parameters StUF:peiltijdstipMaterieel",
		"datumVan":      "BG:parameters StUF:beginPeriodeMaterieel",
		"datumTotEnMet": "BG:parameters StUF:eindePeriodeMaterieel",
	},
	Optional: []string{"peildatum", "datumVan", "datumTotEnMet"},
}

// IngeschrevenpersonenBsn builds the person-by-bsn request.
func IngeschrevenpersonenBsn(gebruiker, applicatie, bsn string) (*stuf.Request, error) {
	return stuf.NewRequest(bsnTemplate, gebruiker, applicatie, map[string]string{"bsn": bsn})
}

// IngeschrevenpersonenFilter builds the parameterised search request. The
// criteria keys follow filterTemplate.Paths; values must already be in MKS
// wire format (dates as yyyymmdd).
func IngeschrevenpersonenFilter(gebruiker, applicatie string, criteria map[string]string) (*stuf.Request, error) {
	return stuf.NewRequest(filterTemplate, gebruiker, applicatie, criteria)
}

// HistorieParams restrict the residence history period. All fields are MKS
// wire format dates (yyyymmdd); zero values leave the period unbounded.
type HistorieParams struct {
	Peildatum     string
	DatumVan      string
	DatumTotEnMet string
}

// VerblijfplaatsHistorie builds the residence-history request.
func VerblijfplaatsHistorie(gebruiker, applicatie, bsn string, p HistorieParams) (*stuf.Request, error) {
	values := map[string]string{"bsn": bsn}
	if p.Peildatum != "" {
		values["peildatum"] = p.Peildatum
	}
	if p.DatumVan != "" {
		values["datumVan"] = p.DatumVan
	}
	if p.DatumTotEnMet != "" {
		values["datumTotEnMet"] = p.DatumTotEnMet
	}
	return stuf.NewRequest(historieTemplate, gebruiker, applicatie, values)
}
