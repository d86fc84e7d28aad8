package response

import (
	"fmt"

	"brpgateway/internal/stuf"
)

// Fault is a parsed SOAP fault of an MKS error response. MKS answers every
// error with HTTP 500 and a fault carrying a StUF Fo-bericht; the berichtcode
// decides how the error maps onto the REST API.
type Fault struct {
	// Code is the StUF berichtcode, e.g. Fo02 for a sender that MKS does
	// not recognize.
	Code string

	// Omschrijving is the human-readable description from the fault body.
	Omschrijving string
}

func (f *Fault) Error() string {
	return fmt.Sprintf("mks fault %s: %s", f.Code, f.Omschrijving)
}

// Unauthorized reports whether the fault means the configured applicatie and
// gebruiker are not known to MKS.
func (f *Fault) Unauthorized() bool { return f.Code == "Fo02" }

const faultSection = "soapenv:Envelope soapenv:Body soapenv:Fault"

// ParseFault extracts the fault from a response document, or nil when the
// message is not a fault.
func ParseFault(doc *stuf.Document) *Fault {
	el := doc.Find(faultSection)
	if el == nil {
		return nil
	}
	f := &Fault{}
	// The detail wraps a foutbericht with the regular stuurgegevens. The
	// element name varies with the code, so search by descendant.
	if detail := doc.FindIn(el, "detail"); detail != nil {
		if code := doc.FindByExpression(detail, ".//StUF:berichtcode"); code != nil {
			f.Code = code.Text()
		}
		if oms := doc.FindByExpression(detail, ".//StUF:omschrijving"); oms != nil {
			f.Omschrijving = oms.Text()
		}
	}
	if f.Omschrijving == "" {
		if fs, ok := doc.GetValue(el, "faultstring"); ok {
			f.Omschrijving = fs
		}
	}
	return f
}
