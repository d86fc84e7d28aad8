package convert

// IncompleteDateIndicator is the StUF:indOnvolledigeDatum attribute value.
// It marks which parts of a yyyymmdd value are actually known.
type IncompleteDateIndicator string

const (
	DatumVolledig      IncompleteDateIndicator = "V"
	DagOnbekend        IncompleteDateIndicator = "D"
	MaandDagOnbekend   IncompleteDateIndicator = "M"
	JaarOnbekend       IncompleteDateIndicator = "J"
	indicatorAfwezig   IncompleteDateIndicator = ""
)

// ParseIncompleteDateIndicator reads the indicator off a raw attribute
// value; absence means the date is complete.
func ParseIncompleteDateIndicator(v any) IncompleteDateIndicator {
	if s, ok := v.(string); ok {
		return IncompleteDateIndicator(s)
	}
	return indicatorAfwezig
}

func (i IncompleteDateIndicator) JaarKnown() bool {
	return i != JaarOnbekend
}

func (i IncompleteDateIndicator) MaandKnown() bool {
	return i != JaarOnbekend && i != MaandDagOnbekend
}

func (i IncompleteDateIndicator) DagKnown() bool {
	return i == DatumVolledig || i == indicatorAfwezig
}

func (i IncompleteDateIndicator) DatumKnown() bool {
	return i.JaarKnown() && i.MaandKnown() && i.DagKnown()
}

// Geslachtsaanduiding translates the M/V/O gender indication. A StUF
// noValue attribute (geenWaarde, nietGeautoriseerd) voids the value.
func (c *Converter) Geslachtsaanduiding(v, noValue any) any {
	if noValue != nil {
		return nil
	}
	switch v {
	case "M":
		return "man"
	case "V":
		return "vrouw"
	case "O":
		return "onbekend"
	}
	return nil
}

// AanduidingNaamgebruik translates the name-usage indication.
func (c *Converter) AanduidingNaamgebruik(v any) any {
	switch v {
	case "E":
		return "eigen"
	case "N":
		return "eigen_partner"
	case "P":
		return "partner"
	case "V":
		return "partner_eigen"
	}
	return nil
}

// SoortVerbintenis translates the relationship kind of a marriage or
// registered partnership.
func (c *Converter) SoortVerbintenis(v any) any {
	switch v {
	case "H":
		return "huwelijk"
	case "P":
		return "geregistreerd_partnerschap"
	}
	return nil
}

// AanduidingBijzonderNederlanderschap translates the special citizenship
// indication.
func (c *Converter) AanduidingBijzonderNederlanderschap(v, noValue any) any {
	if noValue != nil {
		return nil
	}
	switch v {
	case "B":
		return "behandeld_als_nederlander"
	case "V":
		return "vastgesteld_niet_nederlander"
	}
	return nil
}
