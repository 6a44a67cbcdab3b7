// SPDX-License-Identifier: MIT

// Package media defines the probed resource record the content
// directory serves from, the item kind taxonomy, and the DLNA profile
// registry that binds kinds to MIME types and wire names.
package media

import (
	"context"
	"time"
)

// Kind classifies an item by its media type. It drives both the
// subtree an item lands in and the UPnP class emitted for it.
type Kind uint8

const (
	KindUndefined Kind = iota
	KindAudio
	KindVideo
	KindAudioVideo
	KindPhoto
)

func (k Kind) String() string {
	switch k {
	case KindAudio:
		return "audio"
	case KindVideo:
		return "video"
	case KindAudioVideo:
		return "audiovideo"
	case KindPhoto:
		return "photo"
	default:
		return "undefined"
	}
}

// Class returns the UPnP item class for the kind.
func (k Kind) Class() string {
	switch k {
	case KindAudio:
		return "object.item.audioItem.musicTrack"
	case KindPhoto:
		return "object.item.imageItem.photo"
	case KindVideo, KindAudioVideo:
		return "object.item.videoItem.movie"
	default:
		return "object.item"
	}
}

// Resource is the probed description of a shareable file. Everything
// the directory and the streamer need is captured here once at ingest
// time; the record is immutable afterwards.
type Resource struct {
	Path       string
	Size       int64
	Duration   time.Duration
	Bitrate    int
	SampleRate int
	Channels   int
	Width      int
	Height     int
	Profile    string // symbolic DLNA profile name, see ProfileByName
	Kind       Kind
}

// Prober turns a file path into a Resource record. Implementations may
// inspect the container and codecs; the default one goes by extension
// and file size only.
type Prober interface {
	Probe(ctx context.Context, path string) (*Resource, error)
}
