// Package convert translates raw MKS answer values (yyyymmdd dates, single
// letter indications, numeric codes) into the field values the REST
// responses expose. All converters treat a missing input as nil output;
// downstream null pruning removes those fields.
package convert

import (
	"fmt"
	"strings"
	"time"

	"brpgateway/internal/brp/refdata"
)

// Converter converts MKS values. The clock is injectable so age
// calculations are reproducible in tests.
type Converter struct {
	codes *refdata.Resolver
	clock func() time.Time
}

func New(codes *refdata.Resolver) *Converter {
	return &Converter{codes: codes, clock: time.Now}
}

// WithClock pins the time source used for age calculations.
func (c *Converter) WithClock(clock func() time.Time) *Converter {
	c.clock = clock
	return c
}

// Now exposes the converter's clock for callers that must share it.
func (c *Converter) Now() time.Time { return c.clock() }

func asString(v any) (string, bool) {
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// parseDatum accepts only calendar-valid yyyymmdd values. Zeroed or
// impossible components make the whole value unusable; incompleteness is
// expressed through the StUF:indOnvolledigeDatum indicator on a valid
// date, never through zeroed digits.
func parseDatum(v any) (jaar, maand, dag int, ok bool) {
	s, sok := asString(v)
	if !sok || len(s) != 8 {
		return 0, 0, 0, false
	}
	t, err := time.Parse("20060102", s)
	if err != nil {
		return 0, 0, 0, false
	}
	return t.Year(), int(t.Month()), t.Day(), true
}

// Datum renders a yyyymmdd value as yyyy-mm-dd, but only when the
// incomplete-date indicator marks the full date as known.
func (c *Converter) Datum(datum, indicator any) any {
	jaar, maand, dag, ok := parseDatum(datum)
	if !ok {
		return nil
	}
	ind := ParseIncompleteDateIndicator(indicator)
	if !ind.DatumKnown() {
		return nil
	}
	return fmt.Sprintf("%04d-%02d-%02d", jaar, maand, dag)
}

// DatumBrokenDown renders a yyyymmdd value as the broken-down date object
// with datum, jaar, maand and dag fields. The incomplete-date indicator
// suppresses the parts MKS marked as unknown; the combined datum field only
// appears when the date is fully known.
func (c *Converter) DatumBrokenDown(datum, indicator any) any {
	jaar, maand, dag, ok := parseDatum(datum)
	if !ok {
		return nil
	}
	ind := ParseIncompleteDateIndicator(indicator)
	out := map[string]any{}
	if ind.JaarKnown() {
		out["jaar"] = jaar
	}
	if ind.MaandKnown() {
		out["maand"] = maand
	}
	if ind.DagKnown() {
		out["dag"] = dag
	}
	if ind.DatumKnown() {
		out["datum"] = fmt.Sprintf("%04d-%02d-%02d", jaar, maand, dag)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// FirstDateFromVarious returns the broken-down form of the first value that
// is actually present. MKS spreads the same logical date over several
// elements depending on the record's history.
func (c *Converter) FirstDateFromVarious(values ...any) any {
	for _, v := range values {
		if _, ok := asString(v); ok {
			return c.DatumBrokenDown(v, nil)
		}
	}
	return nil
}

// Leeftijd computes the age in whole years for a yyyymmdd birth date.
// Deceased persons have no age. Unknown year or month makes the age
// unknowable; an unknown day only matters during the birth month itself.
// A February 29 birthday counts March 1 as the birthday in non-leap years.
func (c *Converter) Leeftijd(geboortedatum, indicator, overlijdensdatum any) any {
	if overlijdensdatum != nil {
		return nil
	}
	jaar, maand, dag, ok := parseDatum(geboortedatum)
	if !ok {
		return nil
	}
	ind := ParseIncompleteDateIndicator(indicator)
	if !ind.JaarKnown() || !ind.MaandKnown() {
		return nil
	}
	now := c.clock()
	if !ind.DagKnown() && int(now.Month()) == maand {
		return nil
	}
	bm, bd := maand, dag
	if bm == 2 && bd == 29 && !isLeapYear(now.Year()) {
		bm, bd = 3, 1
	}
	age := now.Year() - jaar
	if int(now.Month()) < bm || (int(now.Month()) == bm && now.Day() < bd) {
		age--
	}
	return age
}

func isLeapYear(y int) bool {
	return y%4 == 0 && (y%100 != 0 || y%400 == 0)
}

// Code zero-pads a numeric code to the given width.
func (c *Converter) Code(width int) func(any) any {
	return func(v any) any {
		s, ok := asString(v)
		if !ok {
			return nil
		}
		for len(s) < width {
			s = "0" + s
		}
		return s
	}
}

// GemeenteCode returns the padded gemeente code, or nil when the code is
// not in the reference table. GemeenteOmschrijving then carries the raw
// code, so the information is not lost.
func (c *Converter) GemeenteCode(v any) any {
	s, ok := asString(v)
	if !ok {
		return nil
	}
	if _, known := c.codes.Gemeente(s); !known {
		return nil
	}
	return refdata.Pad(s)
}

// GemeenteOmschrijving resolves a gemeente code to its name. Unknown codes
// fall back to the raw code itself; foreign birth places arrive this way.
func (c *Converter) GemeenteOmschrijving(v any) any {
	s, ok := asString(v)
	if !ok {
		return nil
	}
	if name, known := c.codes.Gemeente(s); known {
		return name
	}
	return s
}

// LandOmschrijving resolves a landcode to the country name.
func (c *Converter) LandOmschrijving(v any) any {
	s, ok := asString(v)
	if !ok {
		return nil
	}
	if name, known := c.codes.Land(s); known {
		return name
	}
	return nil
}

// AdellijkeTitelCode resolves a title description back to its code. MKS
// returns the description; the REST response carries both.
func (c *Converter) AdellijkeTitelCode(v any) any {
	s, ok := asString(v)
	if !ok {
		return nil
	}
	if code, known := c.codes.AdellijkeTitelCode(s); known {
		return code
	}
	return nil
}

// TrueIfExists maps any present value to true, absence to nil.
func (c *Converter) TrueIfExists(v any) any {
	if v == nil {
		return nil
	}
	if s, ok := v.(string); ok && s == "" {
		return nil
	}
	return true
}

// TrueIfEquals reports whether the raw value equals the expectation. The
// result is a real boolean either way, so the field survives null pruning.
func (c *Converter) TrueIfEquals(expected string) func(any) any {
	return func(v any) any {
		s, _ := v.(string)
		return s == expected
	}
}

// TrueIfIn maps membership of a raw value set to true, anything else to nil.
func (c *Converter) TrueIfIn(expected ...string) func(any) any {
	return func(v any) any {
		s, ok := asString(v)
		if !ok {
			return nil
		}
		for _, e := range expected {
			if s == e {
				return true
			}
		}
		return nil
	}
}

// Nationaliteiten shapes the nationality list from its mapped parameters.
// Entries without an authorized code and entries with a loss date are
// dropped; each kept entry carries the shared special-citizenship
// indication. An empty result collapses to nil.
func (c *Converter) Nationaliteiten(v any) any {
	params, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	list, _ := params["nationaliteiten"].([]any)
	var out []any
	for _, item := range list {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		nat, _ := entry["nationaliteit"].(map[string]any)
		if nat == nil || nat["code"] == nil {
			continue
		}
		if entry["datumVerlies"] != nil {
			continue
		}
		out = append(out, map[string]any{
			"aanduidingBijzonderNederlanderschap": params["aanduidingBijzonderNederlanderschap"],
			"datumIngangGeldigheid":               entry["datumIngangGeldigheid"],
			"nationaliteit":                       nat,
		})
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// VerblijfBuitenland shapes a foreign residence. No landcode means no
// foreign residence; the reserved landcode 0000 means the person left for
// an unknown destination.
func (c *Converter) VerblijfBuitenland(v any) any {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	land, _ := obj["land"].(map[string]any)
	if land == nil || land["code"] == nil {
		return nil
	}
	if code, ok := land["code"].(string); ok && code == "0000" {
		return map[string]any{"vertrokkenOnbekendWaarheen": true}
	}
	return obj
}

// joinNonEmpty joins the non-empty parts with single spaces.
func joinNonEmpty(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}
