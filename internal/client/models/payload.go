package models

import (
	"encoding/json"
	"time"
)

// Kind classifies a record's domain collection.
type Kind string

const (
	KindSession     Kind = "session"
	KindProgress    Kind = "progress"
	KindPreference  Kind = "preference"
	KindJournal     Kind = "journal"
	KindAudio       Kind = "audio"
	KindAchievement Kind = "achievement"
)

// Kinds lists every collection mirrored locally, in pull order.
func Kinds() []Kind {
	return []Kind{KindSession, KindProgress, KindPreference, KindJournal, KindAudio, KindAchievement}
}

func (k Kind) Valid() bool {
	switch k {
	case KindSession, KindProgress, KindPreference, KindJournal, KindAudio, KindAchievement:
		return true
	}
	return false
}

// Envelope is the JSON shape stored in Record.Payload: the kind tag plus the
// kind-specific details. The sync layer never looks inside Details.
type Envelope struct {
	Kind    Kind            `json:"kind"`
	Details json.RawMessage `json:"details"`
}

// TypedPayload is implemented by every concrete payload variant.
type TypedPayload interface {
	GetKind() Kind
}

// Wrap encodes a typed payload into an Envelope.
func Wrap[T TypedPayload](v T) (Envelope, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Kind: v.GetKind(), Details: b}, nil
}

// Unwrap decodes the envelope into its concrete variant based on the kind
// tag. Unknown kinds decode into a generic map.
func (e Envelope) Unwrap() (any, error) {
	switch e.Kind {
	case KindSession:
		var v Session
		return v, json.Unmarshal(e.Details, &v)
	case KindProgress:
		var v Progress
		return v, json.Unmarshal(e.Details, &v)
	case KindPreference:
		var v Preference
		return v, json.Unmarshal(e.Details, &v)
	case KindJournal:
		var v JournalEntry
		return v, json.Unmarshal(e.Details, &v)
	case KindAudio:
		var v Audio
		return v, json.Unmarshal(e.Details, &v)
	case KindAchievement:
		var v Achievement
		return v, json.Unmarshal(e.Details, &v)
	default:
		var m map[string]any
		if err := json.Unmarshal(e.Details, &m); err != nil {
			return nil, err
		}
		return m, nil
	}
}

// Session records one completed guided or unguided meditation session.
type Session struct {
	Technique   string    `json:"technique"`
	DurationMin int       `json:"duration_min"`
	CompletedAt time.Time `json:"completed_at"`
	MoodBefore  int       `json:"mood_before,omitempty"`
	MoodAfter   int       `json:"mood_after,omitempty"`
}

func (x Session) GetKind() Kind { return KindSession }

// Progress aggregates per-user practice statistics shown on the dashboard.
type Progress struct {
	TotalSessions int       `json:"total_sessions"`
	TotalMinutes  int       `json:"total_minutes"`
	CurrentStreak int       `json:"current_streak"`
	LongestStreak int       `json:"longest_streak"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (x Progress) GetKind() Kind { return KindProgress }

// Preference stores one user setting (reminder times, theme, voice).
type Preference struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func (x Preference) GetKind() Kind { return KindPreference }

// JournalEntry stores a free-form mood/journal note.
type JournalEntry struct {
	Mood      int       `json:"mood"`
	Text      string    `json:"text"`
	WrittenAt time.Time `json:"written_at"`
}

func (x JournalEntry) GetKind() Kind { return KindJournal }

// Audio references a downloadable guided-session asset by its storage key.
// The blob itself lives in the cached_content store, not in the record.
type Audio struct {
	Title      string `json:"title"`
	ContentKey string `json:"content_key"`
	SizeBytes  int64  `json:"size_bytes"`
}

func (x Audio) GetKind() Kind { return KindAudio }

// Achievement marks an unlocked badge.
type Achievement struct {
	Code       string    `json:"code"`
	UnlockedAt time.Time `json:"unlocked_at"`
}

func (x Achievement) GetKind() Kind { return KindAchievement }
