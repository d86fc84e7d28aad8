// Package refdata resolves BRP reference codes (landen, gemeenten,
// adellijke titels) to their descriptions. The tables ship embedded so the
// service has no runtime dependency for lookups.
package refdata

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
)

//go:embed data/*.json
var dataFS embed.FS

// Resolver holds the code tables. Codes are normalized to four digits with
// leading zeros before lookup, matching how MKS pads them.
type Resolver struct {
	landen    map[string]string
	gemeenten map[string]string
	titels    map[string]string
}

// New loads the embedded tables.
func New() (*Resolver, error) {
	r := &Resolver{}
	for _, t := range []struct {
		file string
		dst  *map[string]string
	}{
		{"data/landen.json", &r.landen},
		{"data/gemeenten.json", &r.gemeenten},
		{"data/adellijke_titels.json", &r.titels},
	} {
		raw, err := dataFS.ReadFile(t.file)
		if err != nil {
			return nil, fmt.Errorf("refdata: read %s: %w", t.file, err)
		}
		if err := json.Unmarshal(raw, t.dst); err != nil {
			return nil, fmt.Errorf("refdata: parse %s: %w", t.file, err)
		}
	}
	return r, nil
}

// Pad normalizes a numeric code to the four-digit form used by the tables.
func Pad(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}
	for len(code) < 4 {
		code = "0" + code
	}
	return code
}

// Land resolves a landcode (BRP tabel 34) to its name.
func (r *Resolver) Land(code string) (string, bool) {
	v, ok := r.landen[Pad(code)]
	return v, ok
}

// Gemeente resolves a gemeentecode (BRP tabel 33) to its name.
func (r *Resolver) Gemeente(code string) (string, bool) {
	v, ok := r.gemeenten[Pad(code)]
	return v, ok
}

// AdellijkeTitel resolves an adellijke titel or predicaat code to its
// lowercase description.
func (r *Resolver) AdellijkeTitel(code string) (string, bool) {
	v, ok := r.titels[strings.TrimSpace(code)]
	return v, ok
}

// AdellijkeTitelCode resolves a title description back to its code. MKS
// answers carry the description, the REST response also wants the code.
func (r *Resolver) AdellijkeTitelCode(omschrijving string) (string, bool) {
	want := strings.ToLower(strings.TrimSpace(omschrijving))
	for code, desc := range r.titels {
		if strings.ToLower(desc) == want {
			return code, true
		}
	}
	return "", false
}
