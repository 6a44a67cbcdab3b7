// SPDX-License-Identifier: MIT

// Package upnp holds the SOAP envelope plumbing shared by the UPnP
// services: the control error type, fault rendering and the response
// envelope frame.
package upnp

import (
	"fmt"
	"strings"
)

// Error is a UPnP control fault. The HTTP layer renders it as a SOAP
// fault envelope with status 500.
type Error struct {
	Code int
	Desc string
}

func (e *Error) Error() string {
	return fmt.Sprintf("upnp error %d: %s", e.Code, e.Desc)
}

// The control error vocabulary. 709 is reserved: sort criteria are
// never advertised, so an unsupported-sort fault cannot arise.
var (
	ErrInvalidArgs   = &Error{Code: 402, Desc: "Invalid Args"}
	ErrActionFailed  = &Error{Code: 501, Desc: "Action Failed"}
	ErrNoSuchObject  = &Error{Code: 701, Desc: "No such object"}
	ErrCannotProcess = &Error{Code: 720, Desc: "Cannot process the request"}
)

// EnvelopeOpen and EnvelopeClose frame every control response body.
const (
	EnvelopeOpen  = `<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/" s:encodingStyle="http://schemas.xmlsoap.org/soap/encoding/"><s:Body>`
	EnvelopeClose = `</s:Body></s:Envelope>`
)

var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"'", "&apos;",
	`"`, "&quot;",
)

// Escape XML-escapes text for embedding in element content or
// attribute values.
func Escape(s string) string { return escaper.Replace(s) }

// FaultEnvelope renders a control error as a SOAP fault envelope.
func FaultEnvelope(e *Error) string {
	return EnvelopeOpen +
		`<s:Fault><faultcode>s:Client</faultcode><faultstring>UPnPError</faultstring><detail>` +
		`<UPnPError xmlns="urn:schemas-upnp-org:control-1-0">` +
		fmt.Sprintf("<errorCode>%d</errorCode><errorDescription>%s</errorDescription>", e.Code, Escape(e.Desc)) +
		`</UPnPError></detail></s:Fault>` +
		EnvelopeClose
}
