// Package stuf implements reading, writing and templating of StUF 03.01
// SOAP messages. A Document wraps a parsed XML tree and resolves
// space-delimited, namespace-prefixed paths ("soapenv:Body BG:npsLa01")
// against it. A Template produces outgoing request messages from embedded
// XML skeletons.
package stuf

import (
	"errors"
	"fmt"
)

// Namespace prefixes used throughout the BG 03.10 message set. Documents may
// declare additional prefixes; these are merged in during parsing.
var DefaultNamespaces = map[string]string{
	"soapenv": "http://schemas.xmlsoap.org/soap/envelope/",
	"BG":      "http://www.egem.nl/StUF/sector/bg/0310",
	"StUF":    "http://www.egem.nl/StUF/StUF0301",
	"xsi":     "http://www.w3.org/2001/XMLSchema-instance",
}

// EntityTypeAttribute marks every StUF object element with its entity type
// (NPS, NPSNPSHUW, ...). Mapping dispatch keys on it.
const EntityTypeAttribute = "StUF:entiteittype"

var (
	// ErrNotFound is returned when a path resolves to no element.
	ErrNotFound = errors.New("stuf: element not found")

	// ErrNoAnswer is returned when a response contains no answer object.
	// Callers translate this to a 404 for the requested resource.
	ErrNoAnswer = errors.New("stuf: no answer object in response")
)

// ParseError wraps an XML syntax failure from an inbound message.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return fmt.Sprintf("stuf: malformed message: %v", e.Err) }

func (e *ParseError) Unwrap() error { return e.Err }

// PathError reports a path that could not be resolved within a document,
// keeping the full path for the log line.
type PathError struct {
	Path string
}

func (e *PathError) Error() string { return fmt.Sprintf("stuf: path %q not found", e.Path) }

func (e *PathError) Is(target error) bool { return target == ErrNotFound }
