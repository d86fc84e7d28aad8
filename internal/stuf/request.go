package stuf

import (
	"embed"
	"fmt"
	"sort"
	"time"
)

//go:embed templates/*.xml
var templateFS embed.FS

// SOAPActionBase prefixes every BG 03.10 action name.
const SOAPActionBase = "http://www.egem.nl/StUF/sector/bg/0310/"

// Stuurgegevens paths, relative to a template's content root. Every outgoing
// message carries operator identity and a fresh timestamp and reference.
const (
	applicatiePath       = "BG:stuurgegevens StUF:zender StUF:applicatie"
	gebruikerPath        = "BG:stuurgegevens StUF:zender StUF:gebruiker"
	tijdstipBerichtPath  = "BG:stuurgegevens StUF:tijdstipBericht"
	referentienummerPath = "BG:stuurgegevens StUF:referentienummer"
)

// referencePrefix marks reference numbers issued by this gateway.
const referencePrefix = "GOB"

// Template declares an outgoing message type: which embedded skeleton to
// load, where its content root sits, the SOAP action, and the logical
// parameter keys with their paths relative to the content root. Keys listed
// in Optional may be left out of the populate call; their elements are then
// removed from the message instead of sent empty.
type Template struct {
	File        string
	ContentRoot string
	Action      string
	Paths       map[string]string
	Optional    []string
}

// SOAPAction returns the full action URI for the HTTP header.
func (t Template) SOAPAction() string { return SOAPActionBase + t.Action }

// Request is a populated outgoing message, ready to serialize.
type Request struct {
	Template Template
	doc      *Document
	clock    func() time.Time
}

// ContractError reports a mismatch between a template's declared parameter
// keys and the keys supplied by the caller. This is a programming defect in
// the calling handler, never client input.
type ContractError struct {
	Template string
	Missing  []string
	Extra    []string
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("stuf: template %s parameter mismatch (missing %v, extra %v)",
		e.Template, e.Missing, e.Extra)
}

// NewRequest loads a template, stamps the operator identity into the
// stuurgegevens and fills the declared parameter paths from values.
func NewRequest(tpl Template, gebruiker, applicatie string, values map[string]string) (*Request, error) {
	if err := checkContract(tpl, values); err != nil {
		return nil, err
	}
	raw, err := templateFS.ReadFile("templates/" + tpl.File)
	if err != nil {
		return nil, fmt.Errorf("stuf: load template %s: %w", tpl.File, err)
	}
	doc, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("stuf: template %s: %w", tpl.File, err)
	}

	set := func(rel, value string) error {
		return doc.SetValue(tpl.ContentRoot+" "+rel, value)
	}
	if err := set(applicatiePath, applicatie); err != nil {
		return nil, err
	}
	if err := set(gebruikerPath, gebruiker); err != nil {
		return nil, err
	}
	for key, rel := range tpl.Paths {
		value, ok := values[key]
		if !ok {
			doc.Remove(tpl.ContentRoot + " " + rel)
			continue
		}
		if err := set(rel, value); err != nil {
			return nil, err
		}
	}
	return &Request{Template: tpl, doc: doc, clock: time.Now}, nil
}

func checkContract(tpl Template, values map[string]string) error {
	optional := make(map[string]bool, len(tpl.Optional))
	for _, key := range tpl.Optional {
		optional[key] = true
	}
	var missing, extra []string
	for key := range tpl.Paths {
		if _, ok := values[key]; !ok && !optional[key] {
			missing = append(missing, key)
		}
	}
	for key := range values {
		if _, ok := tpl.Paths[key]; !ok {
			extra = append(extra, key)
		}
	}
	if len(missing) == 0 && len(extra) == 0 {
		return nil
	}
	sort.Strings(missing)
	sort.Strings(extra)
	return &ContractError{Template: tpl.File, Missing: missing, Extra: extra}
}

// WithClock replaces the timestamp source. Tests use this to pin the
// stuurgegevens stamps.
func (r *Request) WithClock(clock func() time.Time) *Request {
	r.clock = clock
	return r
}

// Serialize stamps tijdstipBericht and a fresh referentienummer and returns
// the message bytes. Each call issues a new reference.
func (r *Request) Serialize() ([]byte, error) {
	stamp := timestamp(r.clock())
	if err := r.doc.SetValue(r.Template.ContentRoot+" "+tijdstipBerichtPath, stamp[:17]); err != nil {
		return nil, err
	}
	if err := r.doc.SetValue(r.Template.ContentRoot+" "+referentienummerPath, referencePrefix+stamp); err != nil {
		return nil, err
	}
	out, err := r.doc.String()
	if err != nil {
		return nil, err
	}
	return []byte(out), nil
}

// Pretty renders the populated message indented, for debug logging.
func (r *Request) Pretty() (string, error) { return r.doc.Pretty() }

var amsterdam = func() *time.Location {
	loc, err := time.LoadLocation("Europe/Amsterdam")
	if err != nil {
		return time.UTC
	}
	return loc
}()

// timestamp renders local wall time as yyyymmddhhmmss plus six microsecond
// digits, 20 characters total. The first 17 form the tijdstipBericht.
func timestamp(t time.Time) string {
	t = t.In(amsterdam)
	return t.Format("20060102150405") + fmt.Sprintf("%06d", t.Nanosecond()/1000)
}
