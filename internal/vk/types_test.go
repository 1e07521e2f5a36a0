package vk

import (
	"testing"
	"time"

	"github.com/Temm4ancki/VK-to-TG-post/internal/core/domain"
)

func TestWallPostToDomain(t *testing.T) {
	p := wallPost{
		ID:       42,
		OwnerID:  -100,
		Date:     1700000000,
		Text:     "hello",
		IsPinned: 1,
		Attachments: []wireAttachment{
			{Type: "photo", Photo: &wirePhoto{Sizes: []wirePhotoSize{{Type: "x", URL: "u", Width: 1, Height: 1}}}},
			{Type: "audio", Audio: &wireAudio{Artist: "A", Title: "T"}},
		},
	}

	got, dropped := p.toDomain()

	if dropped != 0 {
		t.Errorf("dropped = %d, want 0", dropped)
	}

	if got.Key() != "-100_42" {
		t.Errorf("Key() = %q, want %q", got.Key(), "-100_42")
	}

	if !got.Pinned {
		t.Error("Pinned = false, want true")
	}

	if want := time.Unix(1700000000, 0).UTC(); !got.Date.Equal(want) {
		t.Errorf("Date = %v, want %v", got.Date, want)
	}

	if len(got.Attachments) != 2 {
		t.Fatalf("len(Attachments) = %d, want 2", len(got.Attachments))
	}

	if got.Attachments[0].Kind != domain.KindPhoto || got.Attachments[1].Kind != domain.KindAudio {
		t.Errorf("attachment kinds = %v, %v", got.Attachments[0].Kind, got.Attachments[1].Kind)
	}
}

func TestWireAttachmentToDomainDropsMalformed(t *testing.T) {
	tests := []struct {
		name string
		att  wireAttachment
	}{
		{
			name: "declared photo with nil payload",
			att:  wireAttachment{Type: "photo"},
		},
		{
			name: "declared audio with only a doc payload",
			att:  wireAttachment{Type: "audio", Doc: &wireDocument{URL: "u"}},
		},
		{
			name: "unknown type",
			att:  wireAttachment{Type: "poll"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := tt.att.toDomain(); ok {
				t.Errorf("toDomain(%+v) accepted a malformed attachment", tt.att)
			}
		})
	}
}

// One malformed attachment must not drop its siblings or the post.
func TestWallPostToDomainKeepsSiblings(t *testing.T) {
	p := wallPost{
		ID:      1,
		OwnerID: -1,
		Attachments: []wireAttachment{
			{Type: "photo"},
			{Type: "link", Link: &wireLink{URL: "https://example.com"}},
		},
	}

	got, dropped := p.toDomain()

	if len(got.Attachments) != 1 || got.Attachments[0].Kind != domain.KindLink {
		t.Errorf("Attachments = %+v, want the link only", got.Attachments)
	}

	if dropped != 1 {
		t.Errorf("dropped = %d, want 1 so the client can log the loss", dropped)
	}
}
