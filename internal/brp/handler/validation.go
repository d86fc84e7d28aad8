package handler

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	platformstrings "brpgateway/pkg/platform/strings"
)

// The checks mirror the Haal Centraal parameter rules: each failing check
// yields one invalid-params entry with a fixed code and Dutch reason.

var validate = validator.New()

var (
	postcodePattern = regexp.MustCompile(`^[1-9]{1}[0-9]{3}[A-Z]{2}$`)
	datePattern     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	positivePattern = regexp.MustCompile(`^[1-9][0-9]*$`)
)

func passes(value, tag string) bool {
	return validate.Var(value, tag) == nil
}

func checkBoolean(name, value string) *InvalidParam {
	if passes(value, "oneof=true false") {
		return nil
	}
	return &InvalidParam{Name: name, Code: "boolean", Reason: "Waarde is geen geldige boolean."}
}

func checkPostcode(name, value string) *InvalidParam {
	if postcodePattern.MatchString(value) {
		return nil
	}
	return &InvalidParam{
		Name:   name,
		Code:   "pattern",
		Reason: "Waarde voldoet niet aan patroon ^[1-9]{1}[0-9]{3}[A-Z]{2}$.",
	}
}

func checkPositiveInteger(name, value string) *InvalidParam {
	if !passes(value, "number") {
		return &InvalidParam{Name: name, Code: "integer", Reason: "Waarde is geen geldige integer."}
	}
	if !positivePattern.MatchString(value) {
		return &InvalidParam{Name: name, Code: "minimum", Reason: "Waarde is lager dan minimum 1."}
	}
	return nil
}

// checkDate validates the yyyy-mm-dd format first and the calendar validity
// second, so 20005-02-01 reports invalidFormat and 2005-13-13 invalidDate.
func checkDate(name, value string) *InvalidParam {
	if !datePattern.MatchString(value) {
		return &InvalidParam{
			Name:   name,
			Code:   "invalidFormat",
			Reason: "Waarde voldoet niet aan het formaat yyyy-mm-dd.",
		}
	}
	if !passes(value, "datetime=2006-01-02") {
		return &InvalidParam{Name: name, Code: "invalidDate", Reason: "Waarde is geen geldige datum."}
	}
	return nil
}

func checkBSN(value string) []InvalidParam {
	var invalid []InvalidParam
	if len(value) < 9 {
		invalid = append(invalid, InvalidParam{
			Name: "burgerservicenummer", Code: "minLength",
			Reason: "Waarde is korter dan minimale lengte 9.",
		})
	}
	if len(value) > 9 {
		invalid = append(invalid, InvalidParam{
			Name: "burgerservicenummer", Code: "maxLength",
			Reason: "Waarde is langer dan maximale lengte 9.",
		})
	}
	if !passes(value, "number") {
		invalid = append(invalid, InvalidParam{
			Name: "burgerservicenummer", Code: "integer",
			Reason: "Waarde is geen geldige integer.",
		})
	}
	return invalid
}

var expandOptions = []string{"partners", "ouders", "kinderen"}

func parseExpand(value string) ([]string, *InvalidParam) {
	if value == "" {
		return nil, nil
	}
	var expand []string
	for _, opt := range platformstrings.DedupeAndTrim(strings.Split(value, ",")) {
		valid := false
		for _, known := range expandOptions {
			if opt == known {
				valid = true
			}
		}
		if !valid {
			return nil, &InvalidParam{
				Name: "expand", Code: "invalidParam",
				Reason: "Waarde bevat een niet toegestane optie: " + opt + ".",
			}
		}
		expand = append(expand, opt)
	}
	return expand, nil
}

// toWireDate converts a validated yyyy-mm-dd parameter to MKS wire format.
func toWireDate(value string) string {
	return strings.ReplaceAll(value, "-", "")
}

// searchParams maps the REST query parameter names onto the match-criteria
// keys of the search request template.
var searchParams = map[string]string{
	"burgerservicenummer":                               "burgerservicenummer",
	"naam__geslachtsnaam":                               "geslachtsnaam",
	"naam__voornamen":                                   "voornamen",
	"naam__voorvoegsel":                                 "voorvoegsel",
	"geboorte__datum":                                   "geboortedatum",
	"verblijfplaats__gemeentevaninschrijving":           "gemeentevaninschrijving",
	"verblijfplaats__identificatiecodenummeraanduiding": "identificatiecodenummeraanduiding",
	"verblijfplaats__postcode":                          "postcode",
	"verblijfplaats__huisnummer":                        "huisnummer",
	"verblijfplaats__huisletter":                        "huisletter",
	"verblijfplaats__huisnummertoevoeging":              "huisnummertoevoeging",
	"verblijfplaats__naamopenbareruimte":                "naamopenbareruimte",
}

// searchCombinations lists the minimal parameter sets that select a valid
// search. optionalSearchParams may accompany any of them.
var searchCombinations = [][]string{
	{"burgerservicenummer"},
	{"verblijfplaats__postcode", "verblijfplaats__huisnummer"},
	{"verblijfplaats__gemeentevaninschrijving", "verblijfplaats__naamopenbareruimte", "verblijfplaats__huisnummer"},
	{"verblijfplaats__identificatiecodenummeraanduiding"},
	{"geboorte__datum", "naam__geslachtsnaam"},
}

var optionalSearchParams = []string{
	"naam__voornamen",
	"naam__voorvoegsel",
	"verblijfplaats__huisletter",
	"verblijfplaats__huisnummertoevoeging",
}

func checkSearchParam(name, value string) *InvalidParam {
	switch name {
	case "burgerservicenummer":
		if invalid := checkBSN(value); len(invalid) > 0 {
			return &invalid[0]
		}
	case "verblijfplaats__postcode":
		return checkPostcode(name, value)
	case "verblijfplaats__huisnummer":
		return checkPositiveInteger(name, value)
	case "geboorte__datum":
		return checkDate(name, value)
	}
	return nil
}

// searchQuery is a validated search request: criteria in template keys with
// dates already in wire format.
type searchQuery struct {
	criteria        map[string]string
	expand          []string
	includeDeceased bool
}

// parseSearchQuery validates the query string of the search endpoint. The
// second return lists per-parameter failures; the third reports whether the
// provided parameters form an allowed combination.
func parseSearchQuery(q url.Values) (searchQuery, []InvalidParam, bool) {
	out := searchQuery{criteria: map[string]string{}}
	var invalid []InvalidParam

	if v := q.Get("inclusiefoverledenpersonen"); v != "" {
		if p := checkBoolean("inclusiefoverledenpersonen", v); p != nil {
			invalid = append(invalid, *p)
		} else {
			out.includeDeceased = v == "true"
		}
	}
	expand, p := parseExpand(q.Get("expand"))
	if p != nil {
		invalid = append(invalid, *p)
	}
	out.expand = expand

	var provided []string
	for name, key := range searchParams {
		v := q.Get(name)
		if v == "" {
			continue
		}
		provided = append(provided, name)
		if p := checkSearchParam(name, v); p != nil {
			invalid = append(invalid, *p)
			continue
		}
		if name == "geboorte__datum" {
			v = toWireDate(v)
		}
		out.criteria[key] = v
	}

	return out, invalid, matchesCombination(provided)
}

func matchesCombination(provided []string) bool {
	has := func(name string) bool {
		for _, p := range provided {
			if p == name {
				return true
			}
		}
		return false
	}
	optional := func(name string) bool {
		for _, o := range optionalSearchParams {
			if o == name {
				return true
			}
		}
		return false
	}

	for _, combo := range searchCombinations {
		complete := true
		for _, required := range combo {
			if !has(required) {
				complete = false
				break
			}
		}
		if !complete {
			continue
		}
		extras := false
		for _, p := range provided {
			inCombo := false
			for _, required := range combo {
				if p == required {
					inCombo = true
				}
			}
			if !inCombo && !optional(p) {
				extras = true
				break
			}
		}
		if !extras {
			return true
		}
	}
	return false
}
