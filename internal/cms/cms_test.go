// SPDX-License-Identifier: MIT

package cms

import (
	"encoding/xml"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetProtocolInfo(t *testing.T) {
	body, uerr := Handle(`"` + ServiceType + `#GetProtocolInfo"`)
	require.Nil(t, uerr)

	assert.Contains(t, body, "<Source>")
	assert.Contains(t, body, "<Sink></Sink>")
	assert.Contains(t, body, "http-get:*:audio/mpeg:DLNA.ORG_PN=MP3")
	assert.Contains(t, body, "http-get:*:video/mp4:DLNA.ORG_PN=AVC_MP4_MP_SD_AAC_MULT5")
	assert.NoError(t, xml.Unmarshal([]byte(body), new(struct{})))
}

func TestGetCurrentConnectionIDs(t *testing.T) {
	body, uerr := Handle(`"` + ServiceType + `#GetCurrentConnectionIDs"`)
	require.Nil(t, uerr)
	assert.Contains(t, body, "<ConnectionIDs>0</ConnectionIDs>")
}

func TestGetCurrentConnectionInfo(t *testing.T) {
	body, uerr := Handle(`"` + ServiceType + `#GetCurrentConnectionInfo"`)
	require.Nil(t, uerr)

	assert.Contains(t, body, "<RcsID>-1</RcsID>")
	assert.Contains(t, body, "<AVTransportID>-1</AVTransportID>")
	assert.Contains(t, body, "<Direction>Output</Direction>")
	assert.Contains(t, body, "<Status>OK</Status>")
}

func TestUnknownAction(t *testing.T) {
	body, uerr := Handle(`"` + ServiceType + `#PrepareForConnection"`)
	require.NotNil(t, uerr)
	assert.Equal(t, 720, uerr.Code)
	assert.Empty(t, body)
}

func TestSCPDWellFormed(t *testing.T) {
	assert.NoError(t, xml.Unmarshal([]byte(SCPD), new(struct{})))
}
