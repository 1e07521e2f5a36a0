// Package domain defines the core entities shared across the repost pipeline:
// wall posts, their attachment union, and audio match candidates.
package domain

import (
	"fmt"
	"time"
)

// AttachmentKind discriminates the Attachment union.
type AttachmentKind string

const (
	KindPhoto    AttachmentKind = "photo"
	KindAudio    AttachmentKind = "audio"
	KindVideo    AttachmentKind = "video"
	KindLink     AttachmentKind = "link"
	KindDocument AttachmentKind = "doc"
)

// Post is one unit of content from the source wall.
// Identity is the (OwnerID, ID) pair; posts are immutable once fetched.
type Post struct {
	ID          int64
	OwnerID     int64
	Date        time.Time
	Text        string
	Pinned      bool
	Attachments []Attachment
}

// Key returns the dedup ledger key for the post.
func (p Post) Key() string {
	return fmt.Sprintf("%d_%d", p.OwnerID, p.ID)
}

// SourceURL returns the public permalink to the post.
func (p Post) SourceURL() string {
	return fmt.Sprintf("https://vk.com/wall%d_%d", p.OwnerID, p.ID)
}

// Attachment is a tagged union over the attachment kinds the feed can carry.
// Exactly the payload matching Kind is non-nil; the union is validated at the
// feed-client boundary, not downstream.
type Attachment struct {
	Kind  AttachmentKind
	Photo *Photo
	Audio *AudioRef
	Video *Video
	Link  *Link
	Doc   *Doc
}

// Photo carries every rendition the feed offers for one image.
type Photo struct {
	Sizes []PhotoSize
}

// PhotoSize is a single rendition of a photo.
type PhotoSize struct {
	Type   string
	URL    string
	Width  int
	Height int
}

// AudioRef references an audio track. URL may be empty; the pipeline then
// attempts a best-effort resolution via artist+title, and if that fails the
// ref is carried forward as plain text rather than dropped.
type AudioRef struct {
	Artist   string
	Title    string
	URL      string
	Duration int
}

// Video references a video attachment. Videos have no directly retrievable
// URL, so only the permalink components are kept.
type Video struct {
	OwnerID   int64
	ID        int64
	AccessKey string
}

// Link is an external link attachment.
type Link struct {
	URL   string
	Title string
}

// Doc is a generic document attachment. Type is the provider's numeric
// subtype marker (3 means GIF).
type Doc struct {
	URL   string
	Title string
	Ext   string
	Type  int
}

// DocRef is the reduced document record the extractor hands to dispatch.
type DocRef struct {
	URL   string
	Title string
	Ext   string
}

// MatchCandidate is one result of an audio lookup, scored by the fuzzy
// matcher. Ephemeral, never persisted.
type MatchCandidate struct {
	Artist   string
	Title    string
	URL      string
	Duration int
	Score    float64
}
