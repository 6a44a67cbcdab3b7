// SPDX-License-Identifier: MIT

package media

import (
	"path/filepath"
	"strings"
)

// Profile is one DLNA media format conformance point. Name goes on the
// wire as DLNA.ORG_PN, Ext is the canonical URL extension for item
// resources.
type Profile struct {
	Name string
	MIME string
	Ext  string
	Kind Kind
}

// The supported conformance points. Extensions are matched lowercase.
var profilesByExt = map[string]Profile{
	".mp3":  {Name: "MP3", MIME: "audio/mpeg", Ext: "mp3", Kind: KindAudio},
	".wav":  {Name: "LPCM", MIME: "audio/L16", Ext: "wav", Kind: KindAudio},
	".pcm":  {Name: "LPCM", MIME: "audio/L16", Ext: "pcm", Kind: KindAudio},
	".jpg":  {Name: "JPEG_LRG", MIME: "image/jpeg", Ext: "jpg", Kind: KindPhoto},
	".jpeg": {Name: "JPEG_LRG", MIME: "image/jpeg", Ext: "jpg", Kind: KindPhoto},
	".png":  {Name: "PNG_LRG", MIME: "image/png", Ext: "png", Kind: KindPhoto},
	".mpg":  {Name: "MPEG_PS_PAL", MIME: "video/mpeg", Ext: "mpg", Kind: KindAudioVideo},
	".mpeg": {Name: "MPEG_PS_PAL", MIME: "video/mpeg", Ext: "mpg", Kind: KindAudioVideo},
	".mp4":  {Name: "AVC_MP4_MP_SD_AAC_MULT5", MIME: "video/mp4", Ext: "mp4", Kind: KindAudioVideo},
}

var profilesByName = func() map[string]Profile {
	m := make(map[string]Profile, len(profilesByExt))
	for _, p := range profilesByExt {
		m[p.Name] = p
	}
	return m
}()

// ProfileForPath resolves a profile from a file path's extension.
func ProfileForPath(path string) (Profile, bool) {
	p, ok := profilesByExt[strings.ToLower(filepath.Ext(path))]
	return p, ok
}

// ProfileByName resolves a profile from its symbolic DLNA.ORG_PN name.
func ProfileByName(name string) (Profile, bool) {
	p, ok := profilesByName[name]
	return p, ok
}
