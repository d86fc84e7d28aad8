package stuf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMessage = `<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/">
  <soapenv:Body>
    <BG:npsLa01 xmlns:BG="http://www.egem.nl/StUF/sector/bg/0310" xmlns:StUF="http://www.egem.nl/StUF/StUF0301">
      <BG:antwoord>
        <BG:object StUF:entiteittype="NPS">
          <BG:inp.bsn>123456789</BG:inp.bsn>
          <BG:geslachtsnaam>Jansen</BG:geslachtsnaam>
          <BG:inOnderzoek groepsnaam="Verblijfsplaats">J</BG:inOnderzoek>
          <BG:inOnderzoek groepsnaam="Persoon">J</BG:inOnderzoek>
          <StUF:extraElementen>
            <StUF:extraElement naam="opschortingBijhouding">O</StUF:extraElement>
            <StUF:extraElement naam="aanduidingNaamgebruik">E</StUF:extraElement>
          </StUF:extraElementen>
        </BG:object>
      </BG:antwoord>
    </BG:npsLa01>
  </soapenv:Body>
</soapenv:Envelope>`

func TestDocumentFind(t *testing.T) {
	doc, err := Parse([]byte(testMessage))
	require.NoError(t, err)

	t.Run("absolute path including the envelope", func(t *testing.T) {
		el := doc.Find("soapenv:Envelope soapenv:Body BG:npsLa01 BG:antwoord BG:object")
		require.NotNil(t, el)
		assert.Equal(t, "object", el.Tag)
	})

	t.Run("value below a scope element", func(t *testing.T) {
		obj := doc.Find("soapenv:Envelope soapenv:Body BG:npsLa01 BG:antwoord BG:object")
		v, ok := doc.GetValue(obj, "BG:inp.bsn")
		require.True(t, ok)
		assert.Equal(t, "123456789", v)
	})

	t.Run("missing path resolves to nothing", func(t *testing.T) {
		assert.Nil(t, doc.Find("soapenv:Envelope soapenv:Body BG:npsLa01 BG:nope"))
		_, ok := doc.GetValue(doc.Root(), "soapenv:Body BG:nope")
		assert.False(t, ok)
	})

	t.Run("first match wins", func(t *testing.T) {
		obj := doc.Find("soapenv:Envelope soapenv:Body BG:npsLa01 BG:antwoord BG:object")
		el := doc.FindIn(obj, "BG:inOnderzoek")
		require.NotNil(t, el)
		got, _ := doc.Attribute(el, "groepsnaam")
		assert.Equal(t, "Verblijfsplaats", got)
	})
}

func TestDocumentFindAll(t *testing.T) {
	doc, err := Parse([]byte(testMessage))
	require.NoError(t, err)
	obj := doc.Find("soapenv:Envelope soapenv:Body BG:npsLa01 BG:antwoord BG:object")
	require.NotNil(t, obj)

	all := doc.FindAll(obj, "BG:inOnderzoek")
	assert.Len(t, all, 2)

	nested := doc.FindAll(obj, "StUF:extraElementen StUF:extraElement")
	assert.Len(t, nested, 2)

	assert.Empty(t, doc.FindAll(obj, "BG:nationaliteit"))
}

func TestDocumentAttributes(t *testing.T) {
	doc, err := Parse([]byte(testMessage))
	require.NoError(t, err)
	obj := doc.Find("soapenv:Envelope soapenv:Body BG:npsLa01 BG:antwoord BG:object")
	require.NotNil(t, obj)

	v, ok := doc.Attribute(obj, EntityTypeAttribute)
	require.True(t, ok)
	assert.Equal(t, "NPS", v)

	_, ok = doc.Attribute(obj, "StUF:noValue")
	assert.False(t, ok)
}

func TestDocumentNamespacePrefixIndependence(t *testing.T) {
	// Same message with foreign prefixes must still resolve through the
	// canonical BG/StUF prefixes in paths.
	msg := `<env:Envelope xmlns:env="http://schemas.xmlsoap.org/soap/envelope/">
	  <env:Body>
	    <x:npsLa01 xmlns:x="http://www.egem.nl/StUF/sector/bg/0310">
	      <x:antwoord><x:object><x:inp.bsn>987654321</x:inp.bsn></x:object></x:antwoord>
	    </x:npsLa01>
	  </env:Body>
	</env:Envelope>`
	doc, err := Parse([]byte(msg))
	require.NoError(t, err)

	v, ok := doc.GetValue(doc.Root(), "soapenv:Envelope soapenv:Body BG:npsLa01 BG:antwoord BG:object BG:inp.bsn")
	require.True(t, ok)
	assert.Equal(t, "987654321", v)
}

func TestDocumentSetValueAndSerialize(t *testing.T) {
	doc, err := Parse([]byte(testMessage))
	require.NoError(t, err)

	err = doc.SetValue("soapenv:Envelope soapenv:Body BG:npsLa01 BG:antwoord BG:object BG:inp.bsn", "111222333")
	require.NoError(t, err)

	out, err := doc.String()
	require.NoError(t, err)
	assert.Contains(t, out, "111222333")

	err = doc.SetValue("soapenv:Envelope soapenv:Body BG:bestaatNiet", "x")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDocumentSubExpressions(t *testing.T) {
	doc, err := Parse([]byte(testMessage))
	require.NoError(t, err)
	obj := doc.Find("soapenv:Envelope soapenv:Body BG:npsLa01 BG:antwoord BG:object")
	require.NotNil(t, obj)

	t.Run("self filter keeps matching element", func(t *testing.T) {
		el := doc.FindIn(obj, "BG:inOnderzoek")
		assert.NotNil(t, doc.FindByExpression(el, ".[@groepsnaam='Verblijfsplaats']"))
		assert.Nil(t, doc.FindByExpression(el, ".[@groepsnaam='Overlijden']"))
	})

	t.Run("descendant search by attribute", func(t *testing.T) {
		el := doc.FindByExpression(obj, ".//StUF:extraElement[@naam='aanduidingNaamgebruik']")
		require.NotNil(t, el)
		assert.Equal(t, "E", el.Text())
	})

	t.Run("descendant search without match", func(t *testing.T) {
		assert.Nil(t, doc.FindByExpression(obj, ".//StUF:extraElement[@naam='niets']"))
	})
}

func TestParseErrors(t *testing.T) {
	_, err := Parse([]byte("<not-closed>"))
	require.Error(t, err)
	var perr *ParseError
	assert.ErrorAs(t, err, &perr)
}
