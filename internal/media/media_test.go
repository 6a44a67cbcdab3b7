// SPDX-License-Identifier: MIT

package media

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileForPath(t *testing.T) {
	tests := []struct {
		path     string
		name     string
		mime     string
		kind     Kind
		resolved bool
	}{
		{"/share/music/track.mp3", "MP3", "audio/mpeg", KindAudio, true},
		{"/share/music/TRACK.MP3", "MP3", "audio/mpeg", KindAudio, true},
		{"/share/photos/cat.jpeg", "JPEG_LRG", "image/jpeg", KindPhoto, true},
		{"/share/video/movie.mpg", "MPEG_PS_PAL", "video/mpeg", KindAudioVideo, true},
		{"/share/video/movie.mp4", "AVC_MP4_MP_SD_AAC_MULT5", "video/mp4", KindAudioVideo, true},
		{"/share/docs/readme.txt", "", "", KindUndefined, false},
		{"/share/noext", "", "", KindUndefined, false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			p, ok := ProfileForPath(tt.path)
			require.Equal(t, tt.resolved, ok)
			if ok {
				assert.Equal(t, tt.name, p.Name)
				assert.Equal(t, tt.mime, p.MIME)
				assert.Equal(t, tt.kind, p.Kind)
			}
		})
	}
}

func TestProfileByName(t *testing.T) {
	p, ok := ProfileByName("MP3")
	require.True(t, ok)
	assert.Equal(t, "mp3", p.Ext)

	_, ok = ProfileByName("NO_SUCH_PROFILE")
	assert.False(t, ok)
}

func TestKindClass(t *testing.T) {
	assert.Equal(t, "object.item.audioItem.musicTrack", KindAudio.Class())
	assert.Equal(t, "object.item.imageItem.photo", KindPhoto.Class())
	assert.Equal(t, "object.item.videoItem.movie", KindVideo.Class())
	assert.Equal(t, "object.item.videoItem.movie", KindAudioVideo.Class())
}

func TestStatProber(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "track.mp3")
	require.NoError(t, os.WriteFile(path, make([]byte, 4096), 0o600))

	var p StatProber
	res, err := p.Probe(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, int64(4096), res.Size)
	assert.Equal(t, "MP3", res.Profile)
	assert.Equal(t, KindAudio, res.Kind)

	_, err = p.Probe(context.Background(), filepath.Join(dir, "missing.mp3"))
	assert.Error(t, err)

	_, err = p.Probe(context.Background(), filepath.Join(dir, "notes.txt"))
	assert.ErrorIs(t, err, ErrUnsupported)
}
