// SPDX-License-Identifier: MIT

// Package device renders the root device description announced over
// SSDP and fetched by control points before anything else works.
package device

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
	"github.com/rs/zerolog"

	"github.com/yadaserver/yada/internal/cds"
	"github.com/yadaserver/yada/internal/cms"
)

const (
	// RootAlias is the path segment that fronts static documents.
	RootAlias = "Web"

	// FileName is the device description document name.
	FileName = "yada.xml"

	// DescriptionPath is where the description is served.
	DescriptionPath = "/" + RootAlias + "/" + FileName
)

// Description holds the fields that vary between installations.
// Everything else in the document is fixed.
type Description struct {
	FriendlyName      string
	UUID              string
	SamsungExtensions bool
}

// Render produces the full root device description XML.
func (d Description) Render() string {
	attrs := `xmlns="urn:schemas-upnp-org:device-1-0" xmlns:dlna="urn:schemas-dlna-org:device-1-0"`
	productCap := ""
	if d.SamsungExtensions {
		attrs = `xmlns="urn:schemas-upnp-org:device-1-0" xmlns:sec="http://www.sec.co.kr/dlna" xmlns:dlna="urn:schemas-dlna-org:device-1-0"`
		productCap = "<sec:ProductCap>smi,DCM10,getMediaInfo.sec,getCaptionInfo.sec</sec:ProductCap>\n"
	}

	return fmt.Sprintf(`<?xml version="1.0"?>
<root %s>
<specVersion>
<major>1</major>
<minor>0</minor>
</specVersion>
<device>
<dlna:X_DLNADOC>DMS-1.50</dlna:X_DLNADOC>
<deviceType>urn:schemas-upnp-org:device:MediaServer:1</deviceType>
<friendlyName>%s</friendlyName>
<manufacturer>YADA project</manufacturer>
<modelDescription>DLNA MediaServer</modelDescription>
<modelName>YADA</modelName>
<modelNumber>1.0</modelNumber>
<serialNumber>YADA-10</serialNumber>
%s<UDN>uuid:%s</UDN>
<serviceList>
<service>
<serviceType>%s</serviceType>
<serviceId>%s</serviceId>
<controlURL>%s</controlURL>
<eventSubURL>%s</eventSubURL>
<SCPDURL>%s</SCPDURL>
</service>
<service>
<serviceType>%s</serviceType>
<serviceId>%s</serviceId>
<controlURL>%s</controlURL>
<eventSubURL>%s</eventSubURL>
<SCPDURL>%s</SCPDURL>
</service>
</serviceList>
</device>
</root>
`,
		attrs, d.FriendlyName, productCap, d.UUID,
		cds.ServiceType, cds.ServiceID, cds.ControlPath, cds.EventPath, cds.SCPDPath,
		cms.ServiceType, cms.ServiceID, cms.ControlPath, cms.EventPath, cms.SCPDPath)
}

// WriteIfAbsent materializes the description under docRoot for
// inspection. An existing file is left untouched; the document served
// at DescriptionPath is always the rendered one.
func (d Description) WriteIfAbsent(docRoot string, logger zerolog.Logger) error {
	path := filepath.Join(docRoot, FileName)
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	if err := renameio.WriteFile(path, []byte(d.Render()), 0o644); err != nil {
		return fmt.Errorf("write device description: %w", err)
	}
	logger.Info().Str("event", "device.description_written").Str("path", path).Msg("device description created")
	return nil
}
