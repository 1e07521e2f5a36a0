package vk

import (
	"encoding/json"
	"time"

	"github.com/Temm4ancki/VK-to-TG-post/internal/core/domain"
)

// Wire types for the VK API JSON envelope. The heterogeneous attachment
// union is converted into the tagged domain.Attachment variant here, at the
// client boundary.

type apiEnvelope struct {
	Error    *apiError       `json:"error"`
	Response json.RawMessage `json:"response"`
}

type apiError struct {
	Code    int    `json:"error_code"`
	Message string `json:"error_msg"`
}

type wallGetResponse struct {
	Count int        `json:"count"`
	Items []wallPost `json:"items"`
}

type wallPost struct {
	ID          int64            `json:"id"`
	OwnerID     int64            `json:"owner_id"`
	Date        int64            `json:"date"`
	Text        string           `json:"text"`
	IsPinned    int              `json:"is_pinned"`
	Attachments []wireAttachment `json:"attachments"`
}

type wireAttachment struct {
	Type  string        `json:"type"`
	Photo *wirePhoto    `json:"photo"`
	Audio *wireAudio    `json:"audio"`
	Video *wireVideo    `json:"video"`
	Link  *wireLink     `json:"link"`
	Doc   *wireDocument `json:"doc"`
}

type wirePhoto struct {
	Sizes []wirePhotoSize `json:"sizes"`
}

type wirePhotoSize struct {
	Type   string `json:"type"`
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type wireAudio struct {
	Artist   string `json:"artist"`
	Title    string `json:"title"`
	URL      string `json:"url"`
	Duration int    `json:"duration"`
}

type wireVideo struct {
	ID        int64  `json:"id"`
	OwnerID   int64  `json:"owner_id"`
	AccessKey string `json:"access_key"`
}

type wireLink struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

type wireDocument struct {
	URL   string `json:"url"`
	Title string `json:"title"`
	Ext   string `json:"ext"`
	Type  int    `json:"type"`
}

type audioSearchResponse struct {
	Count int         `json:"count"`
	Items []wireAudio `json:"items"`
}

// toDomain converts the wire post and reports how many attachments were
// dropped for payload/type mismatches, so the caller can log the loss.
func (p wallPost) toDomain() (domain.Post, int) {
	post := domain.Post{
		ID:      p.ID,
		OwnerID: p.OwnerID,
		Date:    time.Unix(p.Date, 0).UTC(),
		Text:    p.Text,
		Pinned:  p.IsPinned == 1,
	}

	dropped := 0

	for _, a := range p.Attachments {
		att, ok := a.toDomain()
		if !ok {
			dropped++

			continue
		}

		post.Attachments = append(post.Attachments, att)
	}

	return post, dropped
}

// toDomain validates that the payload matches the declared type. A mismatch
// drops that single attachment, never the whole post.
func (a wireAttachment) toDomain() (domain.Attachment, bool) {
	switch a.Type {
	case "photo":
		if a.Photo == nil {
			return domain.Attachment{}, false
		}

		photo := &domain.Photo{Sizes: make([]domain.PhotoSize, 0, len(a.Photo.Sizes))}
		for _, s := range a.Photo.Sizes {
			photo.Sizes = append(photo.Sizes, domain.PhotoSize(s))
		}

		return domain.Attachment{Kind: domain.KindPhoto, Photo: photo}, true
	case "audio":
		if a.Audio == nil {
			return domain.Attachment{}, false
		}

		audio := domain.AudioRef(*a.Audio)

		return domain.Attachment{Kind: domain.KindAudio, Audio: &audio}, true
	case "video":
		if a.Video == nil {
			return domain.Attachment{}, false
		}

		return domain.Attachment{Kind: domain.KindVideo, Video: &domain.Video{
			ID:        a.Video.ID,
			OwnerID:   a.Video.OwnerID,
			AccessKey: a.Video.AccessKey,
		}}, true
	case "link":
		if a.Link == nil {
			return domain.Attachment{}, false
		}

		return domain.Attachment{Kind: domain.KindLink, Link: &domain.Link{
			URL:   a.Link.URL,
			Title: a.Link.Title,
		}}, true
	case "doc":
		if a.Doc == nil {
			return domain.Attachment{}, false
		}

		return domain.Attachment{Kind: domain.KindDocument, Doc: &domain.Doc{
			URL:   a.Doc.URL,
			Title: a.Doc.Title,
			Ext:   a.Doc.Ext,
			Type:  a.Doc.Type,
		}}, true
	default:
		return domain.Attachment{}, false
	}
}
