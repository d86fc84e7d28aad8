package mapping

import (
	"fmt"
	"sort"
	"strings"
)

// Parents and children are returned by MKS in message order, which is not
// stable across requests. They are sorted on birth date, then (for parents)
// gender, then name, with missing values ordering last.

func sortOuders(items []map[string]any) []map[string]any {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if c := compareMissingLast(birthDate(a), birthDate(b)); c != 0 {
			return c < 0
		}
		if c := genderRank(a) - genderRank(b); c != 0 {
			return c < 0
		}
		if c := compareMissingLast(lowerName(a, "geslachtsnaam"), lowerName(b, "geslachtsnaam")); c != 0 {
			return c < 0
		}
		return compareMissingLast(lowerName(a, "voornamen"), lowerName(b, "voornamen")) < 0
	})
	for i, ouder := range items {
		ouder["ouderAanduiding"] = fmt.Sprintf("ouder%d", i+1)
	}
	return items
}

func sortKinderen(items []map[string]any) []map[string]any {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if c := compareMissingLast(birthDate(a), birthDate(b)); c != 0 {
			return c < 0
		}
		if c := compareMissingLast(lowerName(a, "geslachtsnaam"), lowerName(b, "geslachtsnaam")); c != 0 {
			return c < 0
		}
		return compareMissingLast(lowerName(a, "voornamen"), lowerName(b, "voornamen")) < 0
	})
	return items
}

// compareMissingLast orders two optional strings ascending with absent
// values after every present value.
func compareMissingLast(a, b string) int {
	switch {
	case a == "" && b == "":
		return 0
	case a == "":
		return 1
	case b == "":
		return -1
	}
	return strings.Compare(a, b)
}

// birthDate reads the broken-down birth date as yyyy-mm-dd, which compares
// chronologically as a string.
func birthDate(obj map[string]any) string {
	return getString(obj, "geboorte", "datum", "datum")
}

func genderRank(obj map[string]any) int {
	switch getString(obj, "geslachtsaanduiding") {
	case "vrouw":
		return 0
	case "man":
		return 1
	case "onbekend":
		return 2
	}
	return 3
}

func lowerName(obj map[string]any, key string) string {
	return strings.ToLower(getString(obj, "naam", key))
}
