package pipeline

// Post processing outcomes, used as the status label on processed-post metrics.
const (
	StatusSent          = "sent"
	StatusSkippedSeen   = "skipped_seen"
	StatusSkippedPinned = "skipped_pinned"
	StatusFailed        = "failed"
)

// Outbound unit kinds.
const (
	unitKindText      = "text"
	unitKindPhoto     = "photo"
	unitKindAlbum     = "album"
	unitKindAnimation = "animation"
	unitKindAudio     = "audio"
	unitKindDocument  = "document"
)

// Audio resolution outcomes.
const (
	matchResultResolved    = "resolved"
	matchResultUnmatched   = "unmatched"
	matchResultLookupError = "lookup_error"
)

const (
	errorMarker = "⚠️"

	logFieldCorrelationID = "correlation_id"
	logFieldPostKey       = "post_key"
	logFieldUnitKind      = "kind"
)
