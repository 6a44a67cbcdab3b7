// SPDX-License-Identifier: MIT

// Package cms implements the ConnectionManager service. The service
// exists because the MediaServer device type requires it; every
// response is constant shaped.
package cms

import (
	"strings"

	"github.com/yadaserver/yada/internal/upnp"
)

// Service endpoints, fixed by the device description.
const (
	ServiceType = "urn:schemas-upnp-org:service:ConnectionManager:1"
	ServiceID   = "urn:upnp-org:serviceId:ConnectionManager"
	ControlPath = "/cms/control/ConnectionManager1"
	EventPath   = "/cms/event/ConnectionManager1"
	SCPDPath    = "/cms.xml"
)

// sourceProtocolInfo enumerates the conformance points the server can
// hand out, one protocolInfo entry per supported profile.
const sourceProtocolInfo = "http-get:*:audio/mpeg:DLNA.ORG_PN=MP3," +
	"http-get:*:audio/L16:DLNA.ORG_PN=LPCM," +
	"http-get:*:image/jpeg:DLNA.ORG_PN=JPEG_LRG," +
	"http-get:*:image/png:DLNA.ORG_PN=PNG_LRG," +
	"http-get:*:video/mpeg:DLNA.ORG_PN=MPEG_PS_PAL," +
	"http-get:*:video/mp4:DLNA.ORG_PN=AVC_MP4_MP_SD_AAC_MULT5"

// Handle dispatches a ConnectionManager control request by substring
// match on the SOAPACTION header value. No request argument matters:
// the server models a single stateless HTTP connection.
func Handle(soapAction string) (string, *upnp.Error) {
	switch {
	case strings.Contains(soapAction, "#GetProtocolInfo"):
		return upnp.EnvelopeOpen +
			`<u:GetProtocolInfoResponse xmlns:u="` + ServiceType + `">` +
			"<Source>" + sourceProtocolInfo + "</Source><Sink></Sink>" +
			`</u:GetProtocolInfoResponse>` +
			upnp.EnvelopeClose, nil

	case strings.Contains(soapAction, "#GetCurrentConnectionIDs"):
		return upnp.EnvelopeOpen +
			`<u:GetCurrentConnectionIDsResponse xmlns:u="` + ServiceType + `">` +
			"<ConnectionIDs>0</ConnectionIDs>" +
			`</u:GetCurrentConnectionIDsResponse>` +
			upnp.EnvelopeClose, nil

	case strings.Contains(soapAction, "#GetCurrentConnectionInfo"):
		return upnp.EnvelopeOpen +
			`<u:GetCurrentConnectionInfoResponse xmlns:u="` + ServiceType + `">` +
			"<RcsID>-1</RcsID><AVTransportID>-1</AVTransportID><ProtocolInfo></ProtocolInfo>" +
			"<PeerConnectionManager></PeerConnectionManager><PeerConnectionID>-1</PeerConnectionID>" +
			"<Direction>Output</Direction><Status>OK</Status>" +
			`</u:GetCurrentConnectionInfoResponse>` +
			upnp.EnvelopeClose, nil

	default:
		return "", upnp.ErrCannotProcess
	}
}

// SCPD is the ConnectionManager service description served at SCPDPath.
const SCPD = `<?xml version="1.0" encoding="utf-8"?>` +
	`<scpd xmlns="urn:schemas-upnp-org:service-1-0">` +
	`<specVersion><major>1</major><minor>0</minor></specVersion>` +
	`<actionList>` +
	`<action><name>GetProtocolInfo</name><argumentList>` +
	`<argument><name>Source</name><direction>out</direction><relatedStateVariable>SourceProtocolInfo</relatedStateVariable></argument>` +
	`<argument><name>Sink</name><direction>out</direction><relatedStateVariable>SinkProtocolInfo</relatedStateVariable></argument>` +
	`</argumentList></action>` +
	`<action><name>GetCurrentConnectionIDs</name><argumentList>` +
	`<argument><name>ConnectionIDs</name><direction>out</direction><relatedStateVariable>CurrentConnectionIDs</relatedStateVariable></argument>` +
	`</argumentList></action>` +
	`<action><name>GetCurrentConnectionInfo</name><argumentList>` +
	`<argument><name>ConnectionID</name><direction>in</direction><relatedStateVariable>A_ARG_TYPE_ConnectionID</relatedStateVariable></argument>` +
	`<argument><name>RcsID</name><direction>out</direction><relatedStateVariable>A_ARG_TYPE_RcsID</relatedStateVariable></argument>` +
	`<argument><name>AVTransportID</name><direction>out</direction><relatedStateVariable>A_ARG_TYPE_AVTransportID</relatedStateVariable></argument>` +
	`<argument><name>ProtocolInfo</name><direction>out</direction><relatedStateVariable>A_ARG_TYPE_ProtocolInfo</relatedStateVariable></argument>` +
	`<argument><name>PeerConnectionManager</name><direction>out</direction><relatedStateVariable>A_ARG_TYPE_ConnectionManager</relatedStateVariable></argument>` +
	`<argument><name>PeerConnectionID</name><direction>out</direction><relatedStateVariable>A_ARG_TYPE_ConnectionID</relatedStateVariable></argument>` +
	`<argument><name>Direction</name><direction>out</direction><relatedStateVariable>A_ARG_TYPE_Direction</relatedStateVariable></argument>` +
	`<argument><name>Status</name><direction>out</direction><relatedStateVariable>A_ARG_TYPE_ConnectionStatus</relatedStateVariable></argument>` +
	`</argumentList></action>` +
	`</actionList>` +
	`<serviceStateTable>` +
	`<stateVariable sendEvents="yes"><name>SourceProtocolInfo</name><dataType>string</dataType></stateVariable>` +
	`<stateVariable sendEvents="yes"><name>SinkProtocolInfo</name><dataType>string</dataType></stateVariable>` +
	`<stateVariable sendEvents="yes"><name>CurrentConnectionIDs</name><dataType>string</dataType></stateVariable>` +
	`<stateVariable sendEvents="no"><name>A_ARG_TYPE_ConnectionStatus</name><dataType>string</dataType>` +
	`<allowedValueList><allowedValue>OK</allowedValue><allowedValue>ContentFormatMismatch</allowedValue>` +
	`<allowedValue>InsufficientBandwidth</allowedValue><allowedValue>UnreliableChannel</allowedValue>` +
	`<allowedValue>Unknown</allowedValue></allowedValueList></stateVariable>` +
	`<stateVariable sendEvents="no"><name>A_ARG_TYPE_ConnectionManager</name><dataType>string</dataType></stateVariable>` +
	`<stateVariable sendEvents="no"><name>A_ARG_TYPE_Direction</name><dataType>string</dataType>` +
	`<allowedValueList><allowedValue>Input</allowedValue><allowedValue>Output</allowedValue></allowedValueList></stateVariable>` +
	`<stateVariable sendEvents="no"><name>A_ARG_TYPE_ProtocolInfo</name><dataType>string</dataType></stateVariable>` +
	`<stateVariable sendEvents="no"><name>A_ARG_TYPE_ConnectionID</name><dataType>i4</dataType></stateVariable>` +
	`<stateVariable sendEvents="no"><name>A_ARG_TYPE_AVTransportID</name><dataType>i4</dataType></stateVariable>` +
	`<stateVariable sendEvents="no"><name>A_ARG_TYPE_RcsID</name><dataType>i4</dataType></stateVariable>` +
	`</serviceStateTable>` +
	`</scpd>`
