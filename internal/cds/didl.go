// SPDX-License-Identifier: MIT

package cds

import (
	"fmt"
	"strings"
	"time"

	"github.com/yadaserver/yada/internal/media"
)

const didlHeader = `<DIDL-Lite xmlns="urn:schemas-upnp-org:metadata-1-0/DIDL-Lite/"` +
	` xmlns:dc="http://purl.org/dc/elements/1.1/"` +
	` xmlns:upnp="urn:schemas-upnp-org:metadata-1-0/upnp/"` +
	` xmlns:dlna="urn:schemas-dlna-org:metadata-1-0/"` +
	` xmlns:sec="http://www.sec.co.kr/">`

// The server never transcodes and always supports both seek modes, so
// the fourth protocolInfo field is constant apart from the profile.
const protocolInfoTail = "DLNA.ORG_OP=01;DLNA.ORG_CI=0;DLNA.ORG_FLAGS=01500000000000000000000000000000"

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"'", "&apos;",
	`"`, "&quot;",
)

func escapeXML(s string) string { return xmlEscaper.Replace(s) }

// buildDIDL renders the unescaped DIDL-Lite fragment for the given
// objects. baseURL is the "http://host:port" prefix of item resource
// URLs. The caller escapes the fragment before embedding it in a SOAP
// Result element.
func buildDIDL(objects []*Object, baseURL string) string {
	var b strings.Builder
	b.WriteString(didlHeader)
	for _, o := range objects {
		if o.IsFolder() {
			writeContainer(&b, o)
		} else {
			writeItem(&b, o, baseURL)
		}
	}
	b.WriteString("</DIDL-Lite>")
	return b.String()
}

// parentRef is "-1" for the root per the ContentDirectory convention.
func parentRef(o *Object) string {
	if o.Parent() == nil {
		return "-1"
	}
	return o.Parent().ID
}

func writeContainer(b *strings.Builder, o *Object) {
	fmt.Fprintf(b, `<container id="%s" parentID="%s" childCount="%d" restricted="1">`,
		o.ID, parentRef(o), o.ChildCount())
	fmt.Fprintf(b, "<dc:title>%s</dc:title>", escapeXML(o.Name))
	b.WriteString("<upnp:class>object.container</upnp:class>")
	b.WriteString("</container>")
}

func writeItem(b *strings.Builder, o *Object, baseURL string) {
	res := o.Res
	fmt.Fprintf(b, `<item id="%s" parentID="%s" restricted="1">`, o.ID, parentRef(o))
	fmt.Fprintf(b, "<dc:title>%s</dc:title>", escapeXML(o.Name))
	fmt.Fprintf(b, "<upnp:class>%s</upnp:class>", res.Kind.Class())

	profile, ok := media.ProfileByName(res.Profile)
	if !ok {
		// Unknown profile: still expose the bytes with a generic MIME.
		profile = media.Profile{Name: res.Profile, MIME: "application/octet-stream", Ext: "bin"}
	}
	fmt.Fprintf(b, `<res protocolInfo="http-get:*:%s:DLNA.ORG_PN=%s;%s"`,
		profile.MIME, profile.Name, protocolInfoTail)
	if res.Size > 0 {
		fmt.Fprintf(b, ` size="%d"`, res.Size)
	}
	if res.Duration > 0 {
		fmt.Fprintf(b, ` duration="%s"`, didlDuration(res.Duration))
	}
	if res.Bitrate > 0 {
		fmt.Fprintf(b, ` bitrate="%d"`, res.Bitrate)
	}
	if res.SampleRate > 0 {
		fmt.Fprintf(b, ` sampleFrequency="%d"`, res.SampleRate)
	}
	if res.Channels > 0 {
		fmt.Fprintf(b, ` nrAudioChannels="%d"`, res.Channels)
	}
	if res.Width > 0 && res.Height > 0 {
		fmt.Fprintf(b, ` resolution="%dx%d"`, res.Width, res.Height)
	}
	fmt.Fprintf(b, ">%s/%s.%s</res>", baseURL, o.ID, profile.Ext)
	b.WriteString("</item>")
}

// didlDuration renders a duration in the H:MM:SS form DIDL res
// attributes use.
func didlDuration(d time.Duration) string {
	total := int64(d / time.Second)
	return fmt.Sprintf("%d:%02d:%02d", total/3600, (total/60)%60, total%60)
}
