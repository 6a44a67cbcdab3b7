// SPDX-License-Identifier: MIT

package cds

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yadaserver/yada/internal/media"
)

const browseAction = `"urn:schemas-upnp-org:service:ContentDirectory:1#Browse"`

func browseBody(objectID, flag string, start, count int) []byte {
	return []byte(fmt.Sprintf(
		`<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/" s:encodingStyle="http://schemas.xmlsoap.org/soap/encoding/">`+
			`<s:Body><u:Browse xmlns:u="urn:schemas-upnp-org:service:ContentDirectory:1">`+
			`<ObjectID>%s</ObjectID><BrowseFlag>%s</BrowseFlag><Filter>*</Filter>`+
			`<StartingIndex>%d</StartingIndex><RequestedCount>%d</RequestedCount><SortCriteria></SortCriteria>`+
			`</u:Browse></s:Body></s:Envelope>`,
		objectID, flag, start, count))
}

func TestBrowseRootDirectChildren(t *testing.T) {
	s := newTestService(t)
	s.SetBaseURL("192.168.1.10", 53235)

	resp, uerr := s.Handle(browseAction, browseBody(RootID, "BrowseDirectChildren", 0, 0))
	require.Nil(t, uerr)

	assert.Contains(t, resp, "<NumberReturned>3</NumberReturned>")
	assert.Contains(t, resp, "<TotalMatches>3</TotalMatches>")
	assert.Contains(t, resp, "<UpdateID>0</UpdateID>")

	// The DIDL fragment is escaped inside Result.
	assert.Contains(t, resp, "&lt;DIDL-Lite")
	assert.Contains(t, resp, "&lt;dc:title&gt;Music&lt;/dc:title&gt;")
	assert.Contains(t, resp, "&lt;dc:title&gt;Photo&lt;/dc:title&gt;")
	assert.Contains(t, resp, "&lt;dc:title&gt;Video&lt;/dc:title&gt;")
	assert.Contains(t, resp, MusicID)
	assert.Contains(t, resp, PhotoID)
	assert.Contains(t, resp, VideoID)
	assert.NotContains(t, resp, "<DIDL-Lite")
}

func TestBrowseMetadataItem(t *testing.T) {
	s := newTestService(t)
	s.SetBaseURL("192.168.1.10", 53235)

	res := &media.Resource{
		Path:     "/share/music/o sole mio.mp3",
		Size:     3673383,
		Duration: 183 * time.Second,
		Profile:  "MP3",
		Kind:     media.KindAudio,
	}
	obj, err := s.AddItem(res, RootID)
	require.NoError(t, err)

	resp, uerr := s.Handle(browseAction, browseBody(obj.ID, "BrowseMetadata", 0, 0))
	require.Nil(t, uerr)

	assert.Contains(t, resp, "<NumberReturned>1</NumberReturned>")
	assert.Contains(t, resp, "<TotalMatches>1</TotalMatches>")
	assert.Contains(t, resp, "object.item.audioItem.musicTrack")
	assert.Contains(t, resp, "DLNA.ORG_PN=MP3;DLNA.ORG_OP=01;DLNA.ORG_CI=0;DLNA.ORG_FLAGS=01500000000000000000000000000000")
	assert.Contains(t, resp, "size=&quot;3673383&quot;")
	assert.Contains(t, resp, "duration=&quot;0:03:03&quot;")
	assert.Contains(t, resp, "http://192.168.1.10:53235/"+obj.ID+".mp3")
}

func TestBrowsePaging(t *testing.T) {
	s := newTestService(t)

	folder, err := s.AddFolder("/share/music", "music", RootID)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		_, err := s.AddItem(audioRes(fmt.Sprintf("/share/music/%d.mp3", i)), folder)
		require.NoError(t, err)
	}

	resp, uerr := s.Handle(browseAction, browseBody(folder, "BrowseDirectChildren", 1, 2))
	require.Nil(t, uerr)
	assert.Contains(t, resp, "<NumberReturned>2</NumberReturned>")
	assert.Contains(t, resp, "<TotalMatches>5</TotalMatches>")

	// RequestedCount 0 means everything from StartingIndex.
	resp, uerr = s.Handle(browseAction, browseBody(folder, "BrowseDirectChildren", 2, 0))
	require.Nil(t, uerr)
	assert.Contains(t, resp, "<NumberReturned>3</NumberReturned>")
	assert.Contains(t, resp, "<TotalMatches>5</TotalMatches>")

	// StartingIndex beyond the end still reports the true size.
	resp, uerr = s.Handle(browseAction, browseBody(folder, "BrowseDirectChildren", 99, 0))
	require.Nil(t, uerr)
	assert.Contains(t, resp, "<NumberReturned>0</NumberReturned>")
	assert.Contains(t, resp, "<TotalMatches>5</TotalMatches>")
}

func TestBrowseErrors(t *testing.T) {
	s := newTestService(t)

	_, uerr := s.Handle(browseAction, browseBody("deadbeefdeadbeefdeadbeefdeadbeef", "BrowseMetadata", 0, 0))
	require.NotNil(t, uerr)
	assert.Equal(t, 701, uerr.Code)

	_, uerr = s.Handle(browseAction, browseBody(RootID, "BrowseEverything", 0, 0))
	require.NotNil(t, uerr)
	assert.Equal(t, 720, uerr.Code)

	// Missing required argument.
	body := []byte(`<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/"><s:Body>` +
		`<u:Browse xmlns:u="urn:schemas-upnp-org:service:ContentDirectory:1"><ObjectID>0</ObjectID></u:Browse>` +
		`</s:Body></s:Envelope>`)
	_, uerr = s.Handle(browseAction, body)
	require.NotNil(t, uerr)
	assert.Equal(t, 402, uerr.Code)

	// Malformed XML.
	_, uerr = s.Handle(browseAction, []byte("this is not xml"))
	require.NotNil(t, uerr)
	assert.Equal(t, 402, uerr.Code)
}

func TestCapabilityActions(t *testing.T) {
	s := newTestService(t)

	resp, uerr := s.Handle(`"urn:...#GetSystemUpdateID"`, nil)
	require.Nil(t, uerr)
	assert.Contains(t, resp, "<Id>1</Id>")

	resp, uerr = s.Handle(`"urn:...#GetSortCapabilities"`, nil)
	require.Nil(t, uerr)
	assert.Contains(t, resp, "<SortCaps></SortCaps>")

	resp, uerr = s.Handle(`"urn:...#GetSearchCapabilities"`, nil)
	require.Nil(t, uerr)
	assert.Contains(t, resp, "<SearchCaps></SearchCaps>")
}

func TestUnknownAction(t *testing.T) {
	s := newTestService(t)

	_, uerr := s.Handle(`"urn:...#Search"`, nil)
	require.NotNil(t, uerr)
	assert.Equal(t, 720, uerr.Code)
}

func objectIDFromIndexBody(category, index int) []byte {
	return []byte(fmt.Sprintf(
		`<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/"><s:Body>`+
			`<u:X_GetObjectIDfromIndex xmlns:u="urn:schemas-upnp-org:service:ContentDirectory:1">`+
			`<CategoryType>%d</CategoryType><Index>%d</Index>`+
			`</u:X_GetObjectIDfromIndex></s:Body></s:Envelope>`,
		category, index))
}

func TestObjectIDFromIndex(t *testing.T) {
	s := newTestService(t)

	first, err := s.AddItem(audioRes("/share/a.mp3"), RootID)
	require.NoError(t, err)
	second, err := s.AddItem(audioRes("/share/b.mp3"), RootID)
	require.NoError(t, err)

	const action = `"urn:schemas-upnp-org:service:ContentDirectory:1#X_GetObjectIDfromIndex"`

	resp, uerr := s.Handle(action, objectIDFromIndexBody(22, 0))
	require.Nil(t, uerr)
	assert.Contains(t, resp, "<ObjectID>"+first.ID+"</ObjectID>")

	resp, uerr = s.Handle(action, objectIDFromIndexBody(22, 1))
	require.Nil(t, uerr)
	assert.Contains(t, resp, "<ObjectID>"+second.ID+"</ObjectID>")

	_, uerr = s.Handle(action, objectIDFromIndexBody(22, 5))
	require.NotNil(t, uerr)
	assert.Equal(t, 701, uerr.Code)

	_, uerr = s.Handle(action, objectIDFromIndexBody(99, 0))
	require.NotNil(t, uerr)
	assert.Equal(t, 402, uerr.Code)

	// Feature gate off: the action is no longer recognized.
	s.SamsungExtensions = false
	_, uerr = s.Handle(action, objectIDFromIndexBody(22, 0))
	require.NotNil(t, uerr)
	assert.Equal(t, 720, uerr.Code)
}

func TestEscapeXML(t *testing.T) {
	assert.Equal(t, "a &amp;&lt;&gt;&apos;&quot; b", escapeXML(`a &<>'" b`))
}
