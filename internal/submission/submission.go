// Package submission tracks each user's in-flight sticker request
// through its multi-step conversation: media received, emoji confirmed,
// pack chosen, then committed or cancelled.
package submission

// MediaKind distinguishes static images from animations.
type MediaKind string

const (
	KindImage     MediaKind = "image"
	KindAnimation MediaKind = "animation"
)

// Stage is the conversational step a pending submission is waiting on.
// Committed and cancelled submissions have no stage; their map entry is
// removed outright.
type Stage int

const (
	// StageAwaitingEmoji means media was accepted and the bot is waiting
	// for a single-emoji tag.
	StageAwaitingEmoji Stage = iota

	// StageAwaitingPack means the emoji is set and the bot is waiting
	// for a pack-selection button press.
	StageAwaitingPack
)

func (s Stage) String() string {
	switch s {
	case StageAwaitingEmoji:
		return "awaiting_emoji"
	case StageAwaitingPack:
		return "awaiting_pack"
	default:
		return "unknown"
	}
}

// Pending is one user's in-flight submission. At most one exists per
// user; a newer media message replaces it unconditionally.
type Pending struct {
	// ID correlates every log line for this submission's lifecycle.
	ID string

	// OwnerID is the submitting user; it keys the store.
	OwnerID int64

	// ChatID and MessageID locate the conversation for replies.
	ChatID    int64
	MessageID int

	// FileID is the opaque platform handle to the raw media. Bytes are
	// fetched lazily at commit time, never stored here.
	FileID string

	Kind MediaKind

	// DurationSeconds is meaningful only when Kind is KindAnimation.
	DurationSeconds float64

	// Emoji is set once the user confirms the tag.
	Emoji string

	Stage Stage
}
