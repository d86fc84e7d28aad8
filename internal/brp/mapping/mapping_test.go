package mapping

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brpgateway/internal/brp/convert"
	"brpgateway/internal/brp/refdata"
	"brpgateway/internal/stuf"
)

const answerMessage = `<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/">
  <soapenv:Body>
    <BG:npsLa01 xmlns:BG="http://www.egem.nl/StUF/sector/bg/0310" xmlns:StUF="http://www.egem.nl/StUF/StUF0301">
      <BG:antwoord>
        <BG:object StUF:entiteittype="NPS">
          <BG:inp.bsn>999993653</BG:inp.bsn>
          <BG:geslachtsnaam>Velzen</BG:geslachtsnaam>
          <BG:voornamen>Suzanne</BG:voornamen>
          <BG:voorletters>S.</BG:voorletters>
          <BG:voorvoegselGeslachtsnaam>van</BG:voorvoegselGeslachtsnaam>
          <BG:geslachtsaanduiding>V</BG:geslachtsaanduiding>
          <BG:aanduidingNaamgebruik>E</BG:aanduidingNaamgebruik>
          <BG:geboortedatum>19850101</BG:geboortedatum>
          <BG:inp.geboorteplaats>0518</BG:inp.geboorteplaats>
          <BG:inp.geboorteLand>6030</BG:inp.geboorteLand>
          <BG:inp.gemeenteVanInschrijving>0518</BG:inp.gemeenteVanInschrijving>
          <BG:inp.datumInschrijving>20100101</BG:inp.datumInschrijving>
          <BG:inp.verblijftIn>
            <BG:gerelateerde>
              <BG:identificatie>0518010000784987</BG:identificatie>
            </BG:gerelateerde>
          </BG:inp.verblijftIn>
          <BG:verblijfsadres>
            <BG:aoa.identificatie>0518200000784987</BG:aoa.identificatie>
            <BG:wpl.woonplaatsNaam>&#39;s-Gravenhage</BG:wpl.woonplaatsNaam>
            <BG:gor.openbareRuimteNaam>Kneuterdijk</BG:gor.openbareRuimteNaam>
            <BG:gor.straatnaam>Kneuterdijk</BG:gor.straatnaam>
            <BG:aoa.postcode>2514EN</BG:aoa.postcode>
            <BG:aoa.huisnummer>20</BG:aoa.huisnummer>
            <BG:begindatumVerblijf>20100101</BG:begindatumVerblijf>
          </BG:verblijfsadres>
          <BG:inp.heeftAlsEchtgenootPartner StUF:entiteittype="NPSNPSHUW">
            <BG:gerelateerde StUF:entiteittype="NPS">
              <BG:inp.bsn>999990421</BG:inp.bsn>
              <BG:geslachtsnaam>Veld</BG:geslachtsnaam>
              <BG:voorvoegselGeslachtsnaam>in het</BG:voorvoegselGeslachtsnaam>
              <BG:geslachtsaanduiding>M</BG:geslachtsaanduiding>
              <BG:geboortedatum>19830515</BG:geboortedatum>
            </BG:gerelateerde>
            <BG:datumSluiting>20120505</BG:datumSluiting>
            <BG:soortVerbintenis>H</BG:soortVerbintenis>
          </BG:inp.heeftAlsEchtgenootPartner>
        </BG:object>
      </BG:antwoord>
    </BG:npsLa01>
  </soapenv:Body>
</soapenv:Envelope>`

func newTestConverter(t *testing.T) *convert.Converter {
	t.Helper()
	codes, err := refdata.New()
	require.NoError(t, err)
	return convert.New(codes).WithClock(func() time.Time {
		return time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)
	})
}

func newTestEvaluator(t *testing.T, message, answerCode string) *Evaluator {
	t.Helper()
	doc, err := stuf.Parse([]byte(message))
	require.NoError(t, err)
	reg, err := NewDefaultRegistry(newTestConverter(t), DefaultBAGEndpoints())
	require.NoError(t, err)
	return NewEvaluator(doc, reg, answerCode)
}

func testLinkContext() LinkContext {
	return LinkContext{APIRoot: "https://api.example.org/brp", BAG: DefaultBAGEndpoints()}
}

func TestRegistryDuplicateRegistration(t *testing.T) {
	conv := newTestConverter(t)
	r := NewRegistry()
	require.NoError(t, r.Register(NewNPSMapping(conv)))
	assert.Error(t, r.Register(NewNPSMapping(conv)))
}

func TestRegistryUnknownCombination(t *testing.T) {
	r := NewRegistry()
	_, err := r.Get("npsLa01", "NPS")
	var unknownErr *UnknownMappingError
	require.ErrorAs(t, err, &unknownErr)
	assert.Equal(t, "NPS", unknownErr.EntityType)
}

func TestMappedPerson(t *testing.T) {
	e := newTestEvaluator(t, answerMessage, "npsLa01")
	el := e.Document().Find("soapenv:Envelope soapenv:Body BG:npsLa01 BG:antwoord BG:object")
	require.NotNil(t, el)

	obj, err := e.FilteredObject(el, FilterParams{}, testLinkContext())
	require.NoError(t, err)
	require.NotNil(t, obj)

	assert.Equal(t, "999993653", obj["burgerservicenummer"])

	naam := obj["naam"].(map[string]any)
	assert.Equal(t, "Velzen", naam["geslachtsnaam"])
	assert.Equal(t, "eigen", naam["aanduidingNaamgebruik"])
	assert.Equal(t, "S. van Velzen", naam["aanschrijfwijze"])
	assert.Equal(t, "Geachte mevrouw van Velzen", naam["aanhef"])

	geboorte := obj["geboorte"].(map[string]any)
	assert.Equal(t, "'s-Gravenhage", geboorte["plaats"].(map[string]any)["omschrijving"])
	assert.Equal(t, "Nederland", geboorte["land"].(map[string]any)["omschrijving"])

	vp := obj["verblijfplaats"].(map[string]any)
	assert.Equal(t, "0518010000784987", vp["adresseerbaarObjectIdentificatie"])
	assert.Equal(t, "0518200000784987", vp["nummeraanduidingIdentificatie"])
	assert.Equal(t, "woonadres", vp["functieAdres"])
	assert.Equal(t, "2514EN", vp["postcode"])
	assert.Equal(t, false, vp["vanuitVertrokkenOnbekendWaarheen"])

	assert.Equal(t, 38, obj["leeftijd"])
}

func TestMappedPersonLinks(t *testing.T) {
	e := newTestEvaluator(t, answerMessage, "npsLa01")
	el := e.Document().Find("soapenv:Envelope soapenv:Body BG:npsLa01 BG:antwoord BG:object")
	require.NotNil(t, el)

	obj, err := e.FilteredObject(el, FilterParams{}, testLinkContext())
	require.NoError(t, err)

	links := obj["_links"].(map[string]any)
	self := "https://api.example.org/brp/ingeschrevenpersonen/999993653"
	assert.Equal(t, map[string]any{"href": self}, links["self"])
	assert.Equal(t, map[string]any{"href": self + "/verblijfplaatshistorie"}, links["verblijfplaatshistorie"])
	assert.Equal(t,
		map[string]any{"href": "https://api.data.amsterdam.nl/v1/bag/nummeraanduidingen/0518200000784987"},
		links["verblijfplaatsNummeraanduiding"])
}

func TestMappedPartner(t *testing.T) {
	e := newTestEvaluator(t, answerMessage, "npsLa01")
	el := e.Document().Find("soapenv:Envelope soapenv:Body BG:npsLa01 BG:antwoord BG:object BG:inp.heeftAlsEchtgenootPartner")
	require.NotNil(t, el)

	obj, err := e.FilteredObject(el, FilterParams{}, testLinkContext())
	require.NoError(t, err)
	require.NotNil(t, obj)

	assert.Equal(t, "huwelijk", obj["soortVerbintenis"])
	assert.Equal(t, "999990421", obj["burgerservicenummer"])
	naam := obj["naam"].(map[string]any)
	assert.Equal(t, "Veld", naam["geslachtsnaam"])
	assert.Equal(t, "in het", naam["voorvoegsel"])

	huw := obj["aangaanHuwelijkPartnerschap"].(map[string]any)
	assert.Equal(t, "2012-05-05", huw["datum"].(map[string]any)["datum"])

	// The inner person's residence does not leak through the wrapper.
	assert.NotContains(t, obj, "verblijfplaats")
	assert.NotContains(t, obj, "datumOntbinding")

	links := obj["_links"].(map[string]any)
	assert.Equal(t,
		map[string]any{"href": "https://api.example.org/brp/ingeschrevenpersonen/999990421"},
		links["ingeschrevenPersoon"])
}

const dissolvedPartnerMessage = `<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/">
  <soapenv:Body>
    <BG:npsLa01 xmlns:BG="http://www.egem.nl/StUF/sector/bg/0310" xmlns:StUF="http://www.egem.nl/StUF/StUF0301">
      <BG:antwoord>
        <BG:object StUF:entiteittype="NPS">
          <BG:inp.bsn>999993653</BG:inp.bsn>
          <BG:inp.heeftAlsEchtgenootPartner StUF:entiteittype="NPSNPSHUW">
            <BG:gerelateerde StUF:entiteittype="NPS">
              <BG:inp.bsn>999990421</BG:inp.bsn>
            </BG:gerelateerde>
            <BG:datumSluiting>20120505</BG:datumSluiting>
            <BG:datumOntbinding>20200101</BG:datumOntbinding>
          </BG:inp.heeftAlsEchtgenootPartner>
        </BG:object>
      </BG:antwoord>
    </BG:npsLa01>
  </soapenv:Body>
</soapenv:Envelope>`

func TestDissolvedPartnerSuppressed(t *testing.T) {
	e := newTestEvaluator(t, dissolvedPartnerMessage, "npsLa01")
	el := e.Document().Find("soapenv:Envelope soapenv:Body BG:npsLa01 BG:antwoord BG:object BG:inp.heeftAlsEchtgenootPartner")
	require.NotNil(t, el)

	obj, err := e.FilteredObject(el, FilterParams{}, testLinkContext())
	require.NoError(t, err)
	assert.Nil(t, obj)
}

const deceasedMessage = `<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/">
  <soapenv:Body>
    <BG:npsLa01 xmlns:BG="http://www.egem.nl/StUF/sector/bg/0310" xmlns:StUF="http://www.egem.nl/StUF/StUF0301">
      <BG:antwoord>
        <BG:object StUF:entiteittype="NPS">
          <BG:inp.bsn>999993653</BG:inp.bsn>
          <BG:geboortedatum>19400101</BG:geboortedatum>
          <BG:overlijdensdatum>20200315</BG:overlijdensdatum>
        </BG:object>
      </BG:antwoord>
    </BG:npsLa01>
  </soapenv:Body>
</soapenv:Envelope>`

func TestDeceasedPerson(t *testing.T) {
	e := newTestEvaluator(t, deceasedMessage, "npsLa01")
	el := e.Document().Find("soapenv:Envelope soapenv:Body BG:npsLa01 BG:antwoord BG:object")
	require.NotNil(t, el)

	t.Run("suppressed by default", func(t *testing.T) {
		obj, err := e.FilteredObject(el, FilterParams{}, testLinkContext())
		require.NoError(t, err)
		assert.Nil(t, obj)
	})

	t.Run("included on request, without an age", func(t *testing.T) {
		obj, err := e.FilteredObject(el, FilterParams{IncludeDeceased: true}, testLinkContext())
		require.NoError(t, err)
		require.NotNil(t, obj)

		overlijden := obj["overlijden"].(map[string]any)
		assert.Equal(t, true, overlijden["indicatieOverleden"])
		assert.Equal(t, "2020-03-15", overlijden["datum"].(map[string]any)["datum"])
		assert.NotContains(t, obj, "leeftijd")
	})
}

func TestFilterVerblijfplaats(t *testing.T) {
	t.Run("correspondence address wins", func(t *testing.T) {
		vp := map[string]any{
			"adresseerbaarObjectIdentificatie": "0518010000784987",
			"woonadres": map[string]any{
				"postcode":                      "2514EN",
				"nummeraanduidingIdentificatie": "0518200000784987",
			},
			"briefadres": map[string]any{
				"postcode":                      "1011PN",
				"nummeraanduidingIdentificatie": "0363200000006110",
				"locatiebeschrijving":           nil,
			},
		}
		got := filterVerblijfplaats(vp)
		assert.Equal(t, "briefadres", got["functieAdres"])
		assert.Equal(t, "1011PN", got["postcode"])
		assert.Equal(t, "0363200000006110", got["nummeraanduidingIdentificatie"])
		assert.NotContains(t, got, "woonadres")
		assert.NotContains(t, got, "briefadres")
	})

	t.Run("no address values", func(t *testing.T) {
		got := filterVerblijfplaats(map[string]any{
			"woonadres":  map[string]any{"postcode": nil},
			"briefadres": map[string]any{"postcode": nil},
		})
		assert.Nil(t, got["functieAdres"])
	})

	t.Run("non-resident registration drops the start date", func(t *testing.T) {
		got := filterVerblijfplaats(map[string]any{
			"woonadres":                map[string]any{"postcode": "2514EN"},
			"datumAanvangAdreshouding": "2010-01-01",
			"gemeenteVanInschrijving":  map[string]any{"code": "1999"},
		})
		assert.NotContains(t, got, "datumAanvangAdreshouding")
	})
}

func TestFamilieFilter(t *testing.T) {
	conv := newTestConverter(t)
	m := NewNPSNPSOUDMapping(conv).(*familieMapping)
	p := FilterParams{Today: time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)}

	base := func() map[string]any {
		return map[string]any{
			"burgerservicenummer": "999990421",
			"naam": map[string]any{
				"geslachtsnaam": "Veld",
				"voornamen":     "Thomas",
			},
			"geboorte": map[string]any{
				"datum": map[string]any{"datum": "1955-03-01"},
			},
			"datumIngangFamilierechtelijkeBetrekkingRaw": "19850101",
		}
	}

	t.Run("valid relation kept", func(t *testing.T) {
		got := m.Filter(base(), p)
		require.NotNil(t, got)
		assert.NotContains(t, got, "datumIngangFamilierechtelijkeBetrekkingRaw")
		assert.NotContains(t, got, "datumEindeFamilierechtelijkeBetrekking")
	})

	t.Run("voided relation suppressed", func(t *testing.T) {
		obj := base()
		obj["aanduidingStrijdigheidNietigheid"] = "true"
		assert.Nil(t, m.Filter(obj, p))
	})

	t.Run("future start suppressed", func(t *testing.T) {
		obj := base()
		obj["datumIngangFamilierechtelijkeBetrekkingRaw"] = "20240101"
		assert.Nil(t, m.Filter(obj, p))
	})

	t.Run("incomplete future start compared by prefix", func(t *testing.T) {
		obj := base()
		obj["datumIngangFamilierechtelijkeBetrekkingRaw"] = "2024"
		assert.Nil(t, m.Filter(obj, p))
	})

	t.Run("ended relation suppressed", func(t *testing.T) {
		obj := base()
		obj["datumEindeFamilierechtelijkeBetrekking"] = "20200101"
		assert.Nil(t, m.Filter(obj, p))
	})

	t.Run("no person data suppressed", func(t *testing.T) {
		obj := base()
		delete(obj, "burgerservicenummer")
		obj["naam"] = map[string]any{}
		obj["geboorte"] = map[string]any{}
		assert.Nil(t, m.Filter(obj, p))
	})

	t.Run("geslachtsnaam alone keeps the relation", func(t *testing.T) {
		obj := base()
		delete(obj, "burgerservicenummer")
		obj["naam"] = map[string]any{"geslachtsnaam": "Veld"}
		obj["geboorte"] = map[string]any{}
		assert.NotNil(t, m.Filter(obj, p))
	})

	t.Run("birth data alone keeps the relation", func(t *testing.T) {
		obj := base()
		delete(obj, "burgerservicenummer")
		obj["naam"] = map[string]any{}
		assert.NotNil(t, m.Filter(obj, p))
	})

	t.Run("name and birth without bsn kept", func(t *testing.T) {
		obj := base()
		delete(obj, "burgerservicenummer")
		assert.NotNil(t, m.Filter(obj, p))
	})
}

func TestSortOuders(t *testing.T) {
	ouder := func(datum, geslacht, naam string) map[string]any {
		obj := map[string]any{
			"naam": map[string]any{"geslachtsnaam": naam},
		}
		if datum != "" {
			obj["geboorte"] = map[string]any{"datum": map[string]any{"datum": datum}}
		}
		if geslacht != "" {
			obj["geslachtsaanduiding"] = geslacht
		}
		return obj
	}

	items := []map[string]any{
		ouder("", "man", "Zonder"),
		ouder("1960-05-01", "man", "Jansen"),
		ouder("1955-03-01", "vrouw", "Pietersen"),
		ouder("1955-03-01", "man", "Aalders"),
	}
	got := sortOuders(items)

	require.Len(t, got, 4)
	assert.Equal(t, "Pietersen", got[0]["naam"].(map[string]any)["geslachtsnaam"], "same date, women first")
	assert.Equal(t, "Aalders", got[1]["naam"].(map[string]any)["geslachtsnaam"])
	assert.Equal(t, "Jansen", got[2]["naam"].(map[string]any)["geslachtsnaam"])
	assert.Equal(t, "Zonder", got[3]["naam"].(map[string]any)["geslachtsnaam"], "unknown birth date last")

	assert.Equal(t, "ouder1", got[0]["ouderAanduiding"])
	assert.Equal(t, "ouder2", got[1]["ouderAanduiding"])
	assert.Equal(t, "ouder3", got[2]["ouderAanduiding"])
	assert.Equal(t, "ouder4", got[3]["ouderAanduiding"])
}

func TestSortKinderen(t *testing.T) {
	kind := func(datum, naam, voornamen string) map[string]any {
		obj := map[string]any{
			"naam": map[string]any{"geslachtsnaam": naam, "voornamen": voornamen},
		}
		if datum != "" {
			obj["geboorte"] = map[string]any{"datum": map[string]any{"datum": datum}}
		}
		return obj
	}

	got := sortKinderen([]map[string]any{
		kind("2010-01-01", "Veld", "Bram"),
		kind("2008-06-15", "Veld", "Anna"),
		kind("2010-01-01", "Veld", "Aline"),
		kind("", "Veld", "Chris"),
	})

	require.Len(t, got, 4)
	assert.Equal(t, "Anna", got[0]["naam"].(map[string]any)["voornamen"])
	assert.Equal(t, "Aline", got[1]["naam"].(map[string]any)["voornamen"], "same date sorts on first names")
	assert.Equal(t, "Bram", got[2]["naam"].(map[string]any)["voornamen"])
	assert.Equal(t, "Chris", got[3]["naam"].(map[string]any)["voornamen"])
	assert.NotContains(t, got[0], "ouderAanduiding")
}

const historieMessage = `<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/">
  <soapenv:Body>
    <BG:npsLa07 xmlns:BG="http://www.egem.nl/StUF/sector/bg/0310" xmlns:StUF="http://www.egem.nl/StUF/StUF0301">
      <BG:antwoord>
        <BG:object StUF:entiteittype="NPS">
          <BG:inp.bsn>999993653</BG:inp.bsn>
          <BG:inp.verblijftIn>
            <BG:gerelateerde>
              <BG:identificatie>0518010000784987</BG:identificatie>
            </BG:gerelateerde>
          </BG:inp.verblijftIn>
          <BG:verblijfsadres>
            <BG:aoa.identificatie>0518200000784987</BG:aoa.identificatie>
            <BG:aoa.postcode>2514EN</BG:aoa.postcode>
            <BG:begindatumVerblijf>20150401</BG:begindatumVerblijf>
          </BG:verblijfsadres>
          <BG:inp.gemeenteVanInschrijving>0518</BG:inp.gemeenteVanInschrijving>
          <BG:historieMaterieel>
            <StUF:tijdvakGeldigheid>
              <StUF:beginGeldigheid>20100101</StUF:beginGeldigheid>
              <StUF:eindGeldigheid>20150401</StUF:eindGeldigheid>
            </StUF:tijdvakGeldigheid>
            <BG:verblijfsadres>
              <BG:aoa.identificatie>0363200000006110</BG:aoa.identificatie>
              <BG:aoa.postcode>1011PN</BG:aoa.postcode>
            </BG:verblijfsadres>
            <BG:inp.verblijftIn>
              <BG:gerelateerde>
                <BG:identificatie>0363020000006111</BG:identificatie>
              </BG:gerelateerde>
            </BG:inp.verblijftIn>
          </BG:historieMaterieel>
        </BG:object>
      </BG:antwoord>
    </BG:npsLa07>
  </soapenv:Body>
</soapenv:Envelope>`

func TestVerblijfplaatsHistorie(t *testing.T) {
	e := newTestEvaluator(t, historieMessage, "npsLa07")
	el := e.Document().Find("soapenv:Envelope soapenv:Body BG:npsLa07 BG:antwoord BG:object")
	require.NotNil(t, el)

	obj, err := e.FilteredObject(el, FilterParams{}, testLinkContext())
	require.NoError(t, err)
	require.NotNil(t, obj)
	assert.NotContains(t, obj, "overlijden")

	vp := obj["verblijfplaats"].(map[string]any)
	assert.Equal(t, "2015-04-01", vp["datumIngangGeldigheid"].(map[string]any)["datum"])
	assert.NotContains(t, vp, "datumTot")
	links := vp["_links"].(map[string]any)
	assert.Equal(t,
		map[string]any{"href": "https://api.data.amsterdam.nl/v1/bag/nummeraanduidingen/0518200000784987"},
		links["adres"])
	assert.Equal(t,
		map[string]any{"href": "https://api.data.amsterdam.nl/v1/bag/verblijfsobjecten/0518010000784987"},
		links["adresseerbaarObject"])

	entries := obj["historieMaterieel"].([]any)
	require.Len(t, entries, 1)
	entry := entries[0].(map[string]any)
	assert.Equal(t, "2010-01-01", entry["datumIngangGeldigheid"].(map[string]any)["datum"])
	assert.Equal(t, "2015-04-01", entry["datumTot"].(map[string]any)["datum"])
	assert.Equal(t, "1011PN", entry["postcode"])
	entryLinks := entry["_links"].(map[string]any)
	assert.Equal(t,
		map[string]any{"href": "https://api.data.amsterdam.nl/v1/bag/ligplaatsen/0363020000006111"},
		entryLinks["adresseerbaarObject"])
}
