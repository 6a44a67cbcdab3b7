// SPDX-License-Identifier: MIT

package cds

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/yadaserver/yada/internal/upnp"
)

const (
	envelopeOpen  = upnp.EnvelopeOpen
	envelopeClose = upnp.EnvelopeClose
)

// SystemUpdateID is fixed: the tree only changes on rescans and no
// events are published, so any constant satisfies the monotonicity
// contract.
const SystemUpdateID = "1"

// soapEnvelope captures the raw body of an incoming request; action
// handlers decode the inner XML themselves.
type soapEnvelope struct {
	XMLName xml.Name `xml:"Envelope"`
	Body    struct {
		Inner []byte `xml:",innerxml"`
	} `xml:"Body"`
}

func soapBody(request []byte) ([]byte, *upnp.Error) {
	var env soapEnvelope
	if err := xml.Unmarshal(request, &env); err != nil || len(env.Body.Inner) == 0 {
		return nil, upnp.ErrInvalidArgs
	}
	return env.Body.Inner, nil
}

// atoi mirrors the lenient C conversion the protocol grew up with: a
// leading decimal run counts, anything else is zero.
func atoi(s string) int {
	s = strings.TrimSpace(s)
	n := 0
	for i := 0; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		if n > (1<<31-1-int(s[i]-'0'))/10 {
			return n
		}
		n = n*10 + int(s[i]-'0')
	}
	return n
}

// Handle dispatches a ContentDirectory control request. The action is
// chosen by substring match on the SOAPACTION header value; the return
// is a complete SOAP response envelope.
func (s *Service) Handle(soapAction string, body []byte) (string, *upnp.Error) {
	switch {
	case strings.Contains(soapAction, "#Browse"):
		return s.browse(body)
	case strings.Contains(soapAction, "#GetSortCapabilities"):
		return envelopeOpen +
			`<u:GetSortCapabilitiesResponse xmlns:u="urn:schemas-upnp-org:service:ContentDirectory:1"><SortCaps></SortCaps></u:GetSortCapabilitiesResponse>` +
			envelopeClose, nil
	case strings.Contains(soapAction, "#GetSearchCapabilities"):
		return envelopeOpen +
			`<u:GetSearchCapabilitiesResponse xmlns:u="urn:schemas-upnp-org:service:ContentDirectory:1"><SearchCaps></SearchCaps></u:GetSearchCapabilitiesResponse>` +
			envelopeClose, nil
	case strings.Contains(soapAction, "#GetSystemUpdateID"):
		return envelopeOpen +
			`<u:GetSystemUpdateIDResponse xmlns:u="urn:schemas-upnp-org:service:ContentDirectory:1"><Id>` + SystemUpdateID + `</Id></u:GetSystemUpdateIDResponse>` +
			envelopeClose, nil
	case s.SamsungExtensions && strings.Contains(soapAction, "#X_GetObjectIDfromIndex"):
		return s.objectIDFromIndex(body)
	default:
		s.logger.Warn().
			Str("event", "cds.unknown_action").
			Str("soap_action", soapAction).
			Msg("unknown control action")
		return "", upnp.ErrCannotProcess
	}
}

type browseRequest struct {
	XMLName        xml.Name `xml:"Browse"`
	ObjectID       *string  `xml:"ObjectID"`
	BrowseFlag     *string  `xml:"BrowseFlag"`
	Filter         *string  `xml:"Filter"`
	StartingIndex  *string  `xml:"StartingIndex"`
	RequestedCount *string  `xml:"RequestedCount"`
	SortCriteria   *string  `xml:"SortCriteria"`
}

func (s *Service) browse(body []byte) (string, *upnp.Error) {
	inner, uerr := soapBody(body)
	if uerr != nil {
		return "", uerr
	}
	var req browseRequest
	if err := xml.Unmarshal(inner, &req); err != nil {
		return "", upnp.ErrInvalidArgs
	}
	// Every argument must be present, even the ignored ones.
	if req.ObjectID == nil || req.BrowseFlag == nil || req.Filter == nil ||
		req.StartingIndex == nil || req.RequestedCount == nil || req.SortCriteria == nil {
		return "", upnp.ErrInvalidArgs
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	obj := s.find(*req.ObjectID)
	if obj == nil {
		return "", upnp.ErrNoSuchObject
	}

	var objects []*Object
	total := 0
	switch *req.BrowseFlag {
	case "BrowseMetadata":
		objects = []*Object{obj}
		total = 1

	case "BrowseDirectChildren":
		start := atoi(*req.StartingIndex)
		count := atoi(*req.RequestedCount)
		total = obj.ChildCount()
		idx := 0
		for c := obj.FirstChild(); c != nil; c = c.Next() {
			if idx >= start && (count == 0 || len(objects) < count) {
				objects = append(objects, c)
			}
			idx++
		}

	default:
		return "", upnp.ErrCannotProcess
	}

	didl := buildDIDL(objects, s.baseURL)
	resp := envelopeOpen +
		`<u:BrowseResponse xmlns:u="urn:schemas-upnp-org:service:ContentDirectory:1">` +
		"<Result>" + escapeXML(didl) + "</Result>" +
		fmt.Sprintf("<NumberReturned>%d</NumberReturned><TotalMatches>%d</TotalMatches><UpdateID>0</UpdateID>", len(objects), total) +
		`</u:BrowseResponse>` +
		envelopeClose
	return resp, nil
}

type objectIDFromIndexRequest struct {
	XMLName      xml.Name `xml:"X_GetObjectIDfromIndex"`
	CategoryType *string  `xml:"CategoryType"`
	Index        *string  `xml:"Index"`
}

// objectIDFromIndex serves the Samsung renderer's index-to-id lookup: the
// CategoryType's tens digit selects a virtual subtree and Index is the
// zero based position among its direct children.
func (s *Service) objectIDFromIndex(body []byte) (string, *upnp.Error) {
	inner, uerr := soapBody(body)
	if uerr != nil {
		return "", uerr
	}
	var req objectIDFromIndexRequest
	if err := xml.Unmarshal(inner, &req); err != nil {
		return "", upnp.ErrInvalidArgs
	}
	if req.CategoryType == nil || req.Index == nil {
		return "", upnp.ErrInvalidArgs
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var top *Object
	switch atoi(*req.CategoryType) / 10 {
	case 1:
		top = s.photo
	case 2:
		top = s.music
	case 3:
		top = s.video
	default:
		return "", upnp.ErrInvalidArgs
	}

	idx := atoi(*req.Index)
	c := top.FirstChild()
	for i := 0; c != nil && i < idx; i++ {
		c = c.Next()
	}
	if c == nil {
		return "", upnp.ErrNoSuchObject
	}

	return envelopeOpen +
		`<u:X_GetObjectIDfromIndexResponse xmlns:u="urn:schemas-upnp-org:service:ContentDirectory:1"><ObjectID>` +
		c.ID + `</ObjectID></u:X_GetObjectIDfromIndexResponse>` +
		envelopeClose, nil
}
