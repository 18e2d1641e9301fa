// Package query implements the archive's read-only query layer: cursor
// paginated thread/message listings, full-text search, reactions, media
// listings, tag CRUD, and the scrapbook view with discontinuity detection.
// Grounded on original_source/core/src/query.rs and models.rs; scrapbook
// semantics grounded on original_source/core/tests/tag_tests.rs since no
// scrapbook query function was captured in query.rs.
package query

// ThreadSummary is one row of list_threads.
type ThreadSummary struct {
	ID             string
	Name           *string
	LastMessageAt  *int64
	MessageCount   int64
}

// MessageRow is one archived message.
type MessageRow struct {
	ID              string
	ThreadID        string
	SenderID        *string
	SentAt          *int64
	ReceivedAt      *int64
	Type            string
	Body            *string
	IsOutgoing      bool
	IsViewOnce      bool
	QuoteMessageID  *string
	MetadataJSON    *string
	SortTs          int64
}

// SearchHit is one full-text search result.
type SearchHit struct {
	Message MessageRow
	Rank    float64
}

// ReactionSummary aggregates one emoji's reaction count on one message.
type ReactionSummary struct {
	MessageID string
	Emoji     string
	Count     int64
}

// MediaRow is one attachment, independent of thread context.
type MediaRow struct {
	ID               string
	MessageID        string
	SHA256           string
	Mime             *string
	SizeBytes        *int64
	OriginalFilename *string
	Kind             *string
	Width            *int64
	Height           *int64
	DurationMs       *int64
}

// ThreadMediaRow is a MediaRow augmented with thread and timing context.
type ThreadMediaRow struct {
	MediaRow
	ThreadID   string
	SentAt     *int64
	ReceivedAt *int64
}

// ArchiveStats is the archive's aggregate counters.
type ArchiveStats struct {
	Threads     int64
	Messages    int64
	Recipients  int64
	Attachments int64
}

// Tag is a user-defined label applicable to messages.
type Tag struct {
	ID           string
	Name         string
	Color        string
	CreatedAt    int64
	DisplayOrder int64
}

// MessageTags is the set of tags applied to one message.
type MessageTags struct {
	MessageID string
	Tags      []Tag
}

// ScrapbookMessage is one scrapbook entry: a tagged message plus its thread
// name and whether it is discontinuous with the previous same-thread entry.
type ScrapbookMessage struct {
	Message         MessageRow
	ThreadName      *string
	IsDiscontinuous bool
}
