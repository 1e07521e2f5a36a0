// Package extract classifies a post's heterogeneous attachment list into
// typed buckets for dispatch.
package extract

import (
	"strings"

	"github.com/Temm4ancki/VK-to-TG-post/internal/core/domain"
)

// docTypeGIF is the provider's numeric subtype marker for GIF documents.
const docTypeGIF = 3

// Result holds the five independent derived lists for one post. Each list
// preserves source attachment order.
type Result struct {
	Photos     []string
	Animations []string
	Audios     []domain.AudioRef
	Links      []string
	Docs       []domain.DocRef
}

// FromPost extracts the typed attachment lists from a post. Pure and
// order-preserving; an empty attachment list yields empty buckets.
// Attachments whose payload does not match their declared kind are skipped
// individually, never failing the whole post.
func FromPost(p domain.Post) Result {
	var res Result

	for _, a := range p.Attachments {
		switch a.Kind {
		case domain.KindPhoto:
			if a.Photo == nil {
				continue
			}

			if url := largestRendition(*a.Photo); url != "" {
				res.Photos = append(res.Photos, url)
			}
		case domain.KindAudio:
			if a.Audio == nil {
				continue
			}

			res.Audios = append(res.Audios, *a.Audio)
		case domain.KindLink:
			if a.Link == nil || a.Link.URL == "" {
				continue
			}

			res.Links = append(res.Links, a.Link.URL)
		case domain.KindDocument:
			if a.Doc == nil {
				continue
			}

			if IsAnimation(*a.Doc) {
				res.Animations = append(res.Animations, a.Doc.URL)
			} else {
				res.Docs = append(res.Docs, domain.DocRef{
					URL:   a.Doc.URL,
					Title: a.Doc.Title,
					Ext:   a.Doc.Ext,
				})
			}
		case domain.KindVideo:
			// Videos carry no retrievable URL and are not dispatched.
		}
	}

	return res
}

// IsAnimation reports whether a document attachment is a GIF animation:
// extension "gif", the provider's GIF subtype marker, or a title ending in
// ".gif" (case-insensitive).
func IsAnimation(d domain.Doc) bool {
	if strings.EqualFold(d.Ext, "gif") {
		return true
	}

	if d.Type == docTypeGIF {
		return true
	}

	return strings.HasSuffix(strings.ToLower(d.Title), ".gif")
}

// largestRendition picks the rendition with the maximum pixel area; ties keep
// the earliest rendition in source order.
func largestRendition(p domain.Photo) string {
	var (
		bestURL  string
		bestArea int
	)

	for _, s := range p.Sizes {
		area := s.Width * s.Height
		if bestURL == "" || area > bestArea {
			bestURL = s.URL
			bestArea = area
		}
	}

	return bestURL
}
