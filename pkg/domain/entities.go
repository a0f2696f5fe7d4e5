package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// MatchType describes how the resolver matched a link to this device.
type MatchType string

const (
	MatchDeterministic MatchType = "deterministic"
	MatchProbabilistic MatchType = "probabilistic"
)

// ParseMatchType maps a raw value onto the closed match-type set. Anything
// outside the two valid literals reports false.
func ParseMatchType(raw string) (MatchType, bool) {
	switch MatchType(raw) {
	case MatchDeterministic:
		return MatchDeterministic, true
	case MatchProbabilistic:
		return MatchProbabilistic, true
	}
	return "", false
}

// ResolvedLink is a link the application should act on. Instances are
// transient: built per call from resolver responses and owned by the caller.
type ResolvedLink struct {
	LinkID       string  `json:"linkId"`
	Destination  string  `json:"destination"`
	DeepLinkURL  string  `json:"deepLinkUrl,omitempty"`
	CustomParams JSONMap `json:"customParams"`
	IsDeferred   bool    `json:"isDeferred"`
	// MatchType is empty when the resolver reported no usable value.
	MatchType MatchType `json:"matchType,omitempty"`
	// MatchConfidence is nil when unknown. A non-nil zero is a legitimate
	// score and must stay distinguishable from nil.
	MatchConfidence *float64 `json:"matchConfidence,omitempty"`
}

// AttributionResult is the install-level attribution view. Unlike
// ResolvedLink it is all-or-nothing: match type and confidence are required.
type AttributionResult struct {
	LinkID          string    `json:"linkId"`
	InstallID       string    `json:"installId,omitempty"`
	IsDeferred      bool      `json:"isDeferred"`
	MatchType       MatchType `json:"matchType"`
	MatchConfidence float64   `json:"matchConfidence"`
}

// DeepLinkEvent is the value fanned out to subscribers: a resolved link or a
// typed error, never both and never neither. The zero value is not valid;
// use NewLinkEvent or NewErrorEvent.
type DeepLinkEvent struct {
	link *ResolvedLink
	err  *Error
}

// NewLinkEvent wraps a successfully resolved link.
func NewLinkEvent(link *ResolvedLink) DeepLinkEvent {
	return DeepLinkEvent{link: link}
}

// NewErrorEvent wraps a resolution failure.
func NewErrorEvent(err *Error) DeepLinkEvent {
	return DeepLinkEvent{err: err}
}

// Link returns the success arm of the event.
func (e DeepLinkEvent) Link() (*ResolvedLink, bool) {
	return e.link, e.link != nil
}

// Err returns the failure arm of the event.
func (e DeepLinkEvent) Err() (*Error, bool) {
	return e.err, e.err != nil
}

// MarshalJSON renders whichever arm is populated.
func (e DeepLinkEvent) MarshalJSON() ([]byte, error) {
	if e.err != nil {
		return json.Marshal(map[string]any{"error": e.err})
	}
	return json.Marshal(map[string]any{"link": e.link})
}

// RecordMeta captures identifiers and audit fields shared across entities.
type RecordMeta struct {
	ID        uuid.UUID `bun:",pk,type:uuid" json:"id"`
	CreatedAt time.Time `bun:",nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:",nullzero,notnull,default:current_timestamp" json:"updated_at"`
	DeletedAt time.Time `bun:",soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// EnsureID assigns a UUID when the struct is about to be persisted.
func (m *RecordMeta) EnsureID() {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
}

// JSONMap persists arbitrary parameter maps as JSON.
type JSONMap map[string]any

// Value implements driver.Valuer.
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return []byte("null"), nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner.
func (m *JSONMap) Scan(value any) error {
	if m == nil {
		return errors.New("JSONMap: Scan on nil pointer")
	}
	switch v := value.(type) {
	case nil:
		*m = nil
		return nil
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("JSONMap: unsupported type %T", value)
	}
}

// LinkActivity is the journal row written for each delivered deep-link
// event. It is an on-device log, never part of the delivery path.
type LinkActivity struct {
	bun.BaseModel `bun:"table:link_activities"`
	RecordMeta

	Source      string `bun:",nullzero,notnull" json:"source"`
	URL         string `bun:",nullzero" json:"url"`
	LinkID      string `bun:",nullzero" json:"link_id"`
	Destination string `bun:",nullzero" json:"destination"`
	DeepLinkURL string `bun:",nullzero" json:"deep_link_url"`
	Deferred    bool   `bun:",nullzero" json:"deferred"`
	MatchType   string `bun:",nullzero" json:"match_type"`
	// MatchConfidence is nil when the resolver reported none.
	MatchConfidence *float64  `bun:",nullzero" json:"match_confidence,omitempty"`
	Params          JSONMap   `bun:"type:jsonb,nullzero" json:"params,omitempty"`
	Status          string    `bun:",nullzero" json:"status"`
	ErrorKind       string    `bun:",nullzero" json:"error_kind,omitempty"`
	ErrorText       string    `bun:",nullzero" json:"error_text,omitempty"`
	HandledAt       time.Time `bun:",nullzero" json:"handled_at,omitempty"`
}

// Activity sources.
const (
	ActivitySourcePush     = "push"
	ActivitySourceInitial  = "initial"
	ActivitySourceManual   = "manual"
	ActivitySourceDeferred = "deferred"
)

// Activity statuses.
const (
	ActivityStatusResolved = "resolved"
	ActivityStatusFailed   = "failed"
	ActivityStatusHandled  = "handled"
)

// ActivityFromEvent builds a journal row from a settled event.
func ActivityFromEvent(source, url string, event DeepLinkEvent) *LinkActivity {
	activity := &LinkActivity{Source: source, URL: url}
	if link, ok := event.Link(); ok {
		activity.Status = ActivityStatusResolved
		activity.LinkID = link.LinkID
		activity.Destination = link.Destination
		activity.DeepLinkURL = link.DeepLinkURL
		activity.Deferred = link.IsDeferred
		activity.MatchType = string(link.MatchType)
		activity.MatchConfidence = link.MatchConfidence
		if len(link.CustomParams) > 0 {
			activity.Params = link.CustomParams
		}
		return activity
	}
	if err, ok := event.Err(); ok {
		activity.Status = ActivityStatusFailed
		activity.ErrorKind = string(err.Kind)
		activity.ErrorText = err.Message
	}
	return activity
}
