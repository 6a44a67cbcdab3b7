// SPDX-License-Identifier: MIT

// Package cds implements the UPnP ContentDirectory service: the in
// memory content tree, the Browse family of SOAP actions, and the
// DIDL-Lite serialization of results.
package cds

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/yadaserver/yada/internal/hash"
	"github.com/yadaserver/yada/internal/media"
)

// Fixed identities for the root and the three virtual top folders.
// Control points cache object references, so these must never change
// across restarts.
const (
	RootID  = "2673a016ad6e08603d7aea0e4fed596b"
	MusicID = "e7d5184e4366142787fa4a153bcd3c6a"
	PhotoID = "9007afba8fdf31332b36c8e5afb440d1"
	VideoID = "d97685b624d6c12778e7080e76b3fb3f"
)

var (
	ErrEmptyArgument  = errors.New("cds: empty argument")
	ErrParentNotFound = errors.New("cds: parent not found")
)

// Object is one content tree node, either a folder or an item. Items
// carry the probed resource record; folders have Res == nil. Siblings
// form a doubly linked chain owned by the parent.
type Object struct {
	ID   string
	Name string
	Res  *media.Resource

	parent      *Object
	firstChild  *Object
	lastChild   *Object
	prev, next  *Object
	numChildren int
}

// IsFolder reports whether the object is a container.
func (o *Object) IsFolder() bool { return o.Res == nil }

// Parent returns the containing folder, nil for the root.
func (o *Object) Parent() *Object { return o.parent }

// FirstChild returns the head of the child chain.
func (o *Object) FirstChild() *Object { return o.firstChild }

// Next returns the following sibling.
func (o *Object) Next() *Object { return o.next }

// ChildCount returns the maintained direct child count.
func (o *Object) ChildCount() int { return o.numChildren }

// Kind returns the media kind for items and KindUndefined for folders.
func (o *Object) Kind() media.Kind {
	if o.Res == nil {
		return media.KindUndefined
	}
	return o.Res.Kind
}

func (o *Object) appendChild(c *Object) {
	c.parent = o
	c.next = nil
	c.prev = o.lastChild
	if o.lastChild != nil {
		o.lastChild.next = c
	} else {
		o.firstChild = c
	}
	o.lastChild = c
	o.numChildren++
}

func (o *Object) removeChild(c *Object) {
	if c.prev != nil {
		c.prev.next = c.next
	} else {
		o.firstChild = c.next
	}
	if c.next != nil {
		c.next.prev = c.prev
	} else {
		o.lastChild = c.prev
	}
	c.parent, c.prev, c.next = nil, nil, nil
	o.numChildren--
}

// Service is the content directory. A single writer ingests content
// while any number of Browse evaluations read concurrently.
type Service struct {
	mu     sync.RWMutex
	root   *Object
	music  *Object
	photo  *Object
	video  *Object
	hasher hash.Provider
	logger zerolog.Logger

	baseURL string // res URL prefix, "http://host:port"

	// SamsungExtensions gates the vendor X_GetObjectIDfromIndex action.
	SamsungExtensions bool
}

// New builds a directory holding only the root and the three virtual
// top folders.
func New(hasher hash.Provider, logger zerolog.Logger) *Service {
	s := &Service{
		hasher:            hasher,
		logger:            logger,
		SamsungExtensions: true,
	}
	s.root = &Object{ID: RootID, Name: "Root"}
	s.music = &Object{ID: MusicID, Name: "Music"}
	s.photo = &Object{ID: PhotoID, Name: "Photo"}
	s.video = &Object{ID: VideoID, Name: "Video"}
	s.root.appendChild(s.music)
	s.root.appendChild(s.photo)
	s.root.appendChild(s.video)
	return s
}

// SetBaseURL publishes the address item resource URLs are built from.
// Called once the HTTP server knows its bound host and port.
func (s *Service) SetBaseURL(host string, port int) {
	s.mu.Lock()
	s.baseURL = fmt.Sprintf("http://%s:%d", host, port)
	s.mu.Unlock()
}

// subtreeFor maps an item kind to the virtual top folder its items
// live under.
func (s *Service) subtreeFor(kind media.Kind) *Object {
	switch kind {
	case media.KindAudio:
		return s.music
	case media.KindPhoto:
		return s.photo
	case media.KindVideo, media.KindAudioVideo:
		return s.video
	default:
		return nil
	}
}

// findInSubtree searches depth first for id under top, top included.
func findInSubtree(top *Object, id string) *Object {
	if top.ID == id {
		return top
	}
	for c := top.firstChild; c != nil; c = c.next {
		if found := findInSubtree(c, id); found != nil {
			return found
		}
	}
	return nil
}

// find resolves an object id anywhere in the tree. Folder ids resolve
// to the copy in the music subtree, which is as good as any: the three
// replicas share identity and child structure for folders.
func (s *Service) find(id string) *Object {
	if id == s.root.ID {
		return s.root
	}
	for _, top := range []*Object{s.music, s.photo, s.video} {
		if found := findInSubtree(top, id); found != nil {
			return found
		}
	}
	return nil
}

// ResourceByID resolves an item id to its media resource. Folders
// have no resource and report false.
func (s *Service) ResourceByID(id string) (*media.Resource, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj := s.find(id)
	if obj == nil || obj.Res == nil {
		return nil, false
	}
	return obj.Res, true
}

// AddItem inserts a probed resource below parentID. The subtree comes
// from the resource kind; parentID equal to the root id selects the
// subtree's virtual top folder.
func (s *Service) AddItem(res *media.Resource, parentID string) (*Object, error) {
	if res == nil || parentID == "" {
		return nil, ErrEmptyArgument
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	top := s.subtreeFor(res.Kind)
	if top == nil {
		return nil, fmt.Errorf("cds: no subtree for kind %s", res.Kind)
	}
	parent := top
	if parentID != s.root.ID {
		if parent = findInSubtree(top, parentID); parent == nil {
			return nil, fmt.Errorf("%w: %s", ErrParentNotFound, parentID)
		}
	}

	obj := &Object{
		ID:   s.hasher.Sum(res.Path),
		Name: displayName(res.Path),
		Res:  res,
	}
	parent.appendChild(obj)
	s.logger.Debug().
		Str("event", "cds.item_added").
		Str("id", obj.ID).
		Str("path", res.Path).
		Str("kind", res.Kind.String()).
		Msg("item added")
	return obj, nil
}

// AddFolder creates a folder named displayName below parentID in all
// three virtual subtrees. The returned identity is shared by the three
// replicas and derived from the physical path.
func (s *Service) AddFolder(physicalPath, displayName, parentID string) (string, error) {
	if physicalPath == "" || displayName == "" || parentID == "" {
		return "", ErrEmptyArgument
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.hasher.Sum(physicalPath)

	parents := make([]*Object, 0, 3)
	for _, top := range []*Object{s.music, s.photo, s.video} {
		parent := top
		if parentID != s.root.ID {
			if parent = findInSubtree(top, parentID); parent == nil {
				return "", fmt.Errorf("%w: %s", ErrParentNotFound, parentID)
			}
		}
		parents = append(parents, parent)
	}
	for _, parent := range parents {
		parent.appendChild(&Object{ID: id, Name: displayName})
	}
	s.logger.Debug().
		Str("event", "cds.folder_added").
		Str("id", id).
		Str("path", physicalPath).
		Msg("folder added")
	return id, nil
}

// Reset empties the three virtual subtrees, keeping the fixed top
// level in place.
func (s *Service) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, top := range []*Object{s.music, s.photo, s.video} {
		for top.firstChild != nil {
			top.removeChild(top.firstChild)
		}
	}
	s.logger.Info().Str("event", "cds.reset").Msg("content tree reset")
}

// CountChildren counts children of the object named by id. Without
// recursion it counts direct children matching kind, where
// KindUndefined matches every child. With recursion it counts matching
// items in the whole subtree, descending into folders unconditionally.
func (s *Service) CountChildren(id string, kind media.Kind, recurse bool) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj := s.find(id)
	if obj == nil {
		return 0, false
	}
	return countChildren(obj, kind, recurse), true
}

func countChildren(o *Object, kind media.Kind, recurse bool) int {
	n := 0
	for c := o.firstChild; c != nil; c = c.next {
		if recurse {
			if c.IsFolder() {
				n += countChildren(c, kind, true)
			} else if kind == media.KindUndefined || c.Kind() == kind {
				n++
			}
			continue
		}
		if kind == media.KindUndefined || c.Kind() == kind {
			n++
		}
	}
	return n
}

// displayName derives an item title from the final path element,
// extension stripped.
func displayName(path string) string {
	base := path
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' || path[i] == '\\' {
			base = path[i+1:]
			break
		}
	}
	for i := len(base) - 1; i >= 0; i-- {
		if base[i] == '.' {
			return base[:i]
		}
	}
	return base
}
