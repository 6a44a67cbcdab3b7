// SPDX-License-Identifier: MIT

package ssdp

import (
	"fmt"
	"runtime"

	"github.com/yadaserver/yada/internal/device"
)

const (
	multicastAddr = "239.255.255.250"
	ssdpPort      = 1900

	// CACHE-CONTROL max-age, at least 1800 per DLNA 7.2.4.6.
	maxAge = 1800

	productToken = "YADA-UPNP/1.0"
)

// Notification types advertised by a MediaServer device.
const (
	ntRootDevice  = "upnp:rootdevice"
	ntMediaServer = "urn:schemas-upnp-org:device:MediaServer:1"
	ntCDS         = "urn:schemas-upnp-org:service:ContentDirectory:1"
	ntCMS         = "urn:schemas-upnp-org:service:ConnectionManager:1"
)

// coreNTs is the byebye set and the ssdp:all search target set.
var coreNTs = []string{ntRootDevice, ntMediaServer, ntCDS, ntCMS}

func serverToken() string {
	return fmt.Sprintf("%s UPnP/1.0 %s", runtime.GOOS, productToken)
}

// endpoint carries everything the message templates interpolate.
type endpoint struct {
	IP   string
	Port int
	UUID string
}

func (e endpoint) location() string {
	return fmt.Sprintf("http://%s:%d%s", e.IP, e.Port, device.DescriptionPath)
}

// aliveMessage renders one ssdp:alive NOTIFY. An empty nt selects the
// bare-device form whose NT and USN are the uuid itself.
func (e endpoint) aliveMessage(nt string) string {
	usn := "uuid:" + e.UUID
	if nt == "" {
		nt = usn
	} else {
		usn += "::" + nt
	}
	return "NOTIFY * HTTP/1.1\r\n" +
		fmt.Sprintf("HOST: %s:%d\r\n", multicastAddr, ssdpPort) +
		fmt.Sprintf("CACHE-CONTROL: max-age=%d\r\n", maxAge) +
		fmt.Sprintf("LOCATION: %s\r\n", e.location()) +
		fmt.Sprintf("NT: %s\r\n", nt) +
		"NTS: ssdp:alive\r\n" +
		fmt.Sprintf("USN: %s\r\n", usn) +
		fmt.Sprintf("SERVER: %s\r\n", serverToken()) +
		"CONTENT-LENGTH: 0\r\n\r\n"
}

// byebyeMessage renders one ssdp:byebye NOTIFY.
func (e endpoint) byebyeMessage(nt string) string {
	return "NOTIFY * HTTP/1.1\r\n" +
		fmt.Sprintf("HOST: %s:%d\r\n", multicastAddr, ssdpPort) +
		fmt.Sprintf("NT: %s\r\n", nt) +
		"NTS: ssdp:byebye\r\n" +
		fmt.Sprintf("USN: uuid:%s::%s\r\n", e.UUID, nt) +
		"CONTENT-LENGTH: 0\r\n\r\n"
}

// searchReply renders the unicast 200 answering an M-SEARCH for st.
func (e endpoint) searchReply(st string) string {
	return "HTTP/1.1 200 OK\r\n" +
		fmt.Sprintf("CACHE-CONTROL: max-age=%d\r\n", maxAge) +
		"EXT:\r\n" +
		fmt.Sprintf("LOCATION: %s\r\n", e.location()) +
		fmt.Sprintf("ST: %s\r\n", st) +
		fmt.Sprintf("USN: uuid:%s::%s\r\n", e.UUID, st) +
		fmt.Sprintf("SERVER: %s\r\n", serverToken()) +
		"CONTENT-LENGTH: 0\r\n\r\n"
}

// aliveSet is a single copy of the advertisement burst, in the
// mandated order. The uuid message is the second entry.
func (e endpoint) aliveSet() []string {
	return []string{
		e.aliveMessage(ntRootDevice),
		e.aliveMessage(""),
		e.aliveMessage(ntMediaServer),
		e.aliveMessage(ntCDS),
		e.aliveMessage(ntCMS),
	}
}

// byebyeSet covers the four core notification types.
func (e endpoint) byebyeSet() []string {
	out := make([]string, 0, len(coreNTs))
	for _, nt := range coreNTs {
		out = append(out, e.byebyeMessage(nt))
	}
	return out
}

// searchTargets maps an M-SEARCH ST value to the reply targets.
// Unknown targets yield nothing; the datagram is dropped.
func searchTargets(st string) []string {
	if st == "ssdp:all" {
		return coreNTs
	}
	for _, nt := range coreNTs {
		if st == nt {
			return []string{nt}
		}
	}
	return nil
}
