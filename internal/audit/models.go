package audit

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	id "licensio/pkg/domain"
)

// EventName is the channel name monitoring sessions receive live events on.
const EventName = "security_log"

// SnapshotSize is the number of recent events delivered to a monitoring
// session on connect, and the cap a consumer is expected to display. The
// store itself retains everything.
const SnapshotSize = 50

// Result is the binary outcome of a validation attempt.
type Result string

const (
	ResultAllow Result = "allow"
	ResultDeny  Result = "deny"
)

// Code identifies which check decided a validation attempt. These are data,
// not errors: a deny completes normally and is recorded like any success.
type Code string

const (
	CodeOK               Code = "OK"
	CodeNotFound         Code = "NOT_FOUND"
	CodeRevoked          Code = "REVOKED"
	CodeExpired          Code = "EXPIRED"
	CodeDomainNotAllowed Code = "DOMAIN_NOT_ALLOWED"
	CodeBadSignature     Code = "BAD_SIGNATURE"
)

// Event is the immutable audit record of one validation attempt. Exactly one
// is produced per attempt, success or failure; none are ever updated or
// deleted. CredentialID is the nil UUID when the presented key matched no
// credential; the key string itself is kept for forensics.
type Event struct {
	ID           id.EventID
	CredentialID id.CredentialID
	KeyString    string
	IPAddress    string
	Domain       string
	UserAgent    string
	Result       Result
	ErrorCode    Code
	Timestamp    time.Time
}

// wireEvent controls the JSON shape on the wire, where IDs travel as strings.
type wireEvent struct {
	ID           string    `json:"id"`
	CredentialID string    `json:"credential_id,omitempty"`
	KeyString    string    `json:"api_key"`
	IPAddress    string    `json:"ip_address"`
	Domain       string    `json:"domain"`
	UserAgent    string    `json:"user_agent,omitempty"`
	Result       Result    `json:"result"`
	ErrorCode    Code      `json:"error_code"`
	Timestamp    time.Time `json:"timestamp"`
}

// MarshalJSON renders the event in its wire shape.
func (e Event) MarshalJSON() ([]byte, error) {
	w := wireEvent{
		ID:        e.ID.String(),
		KeyString: e.KeyString,
		IPAddress: e.IPAddress,
		Domain:    e.Domain,
		UserAgent: e.UserAgent,
		Result:    e.Result,
		ErrorCode: e.ErrorCode,
		Timestamp: e.Timestamp,
	}
	if !e.CredentialID.IsNil() {
		w.CredentialID = e.CredentialID.String()
	}
	return json.Marshal(w)
}

// UnmarshalJSON parses the wire shape back into an Event.
func (e *Event) UnmarshalJSON(data []byte) error {
	var w wireEvent
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	eventID, err := uuid.Parse(w.ID)
	if err != nil {
		return err
	}
	*e = Event{
		ID:        id.EventID(eventID),
		KeyString: w.KeyString,
		IPAddress: w.IPAddress,
		Domain:    w.Domain,
		UserAgent: w.UserAgent,
		Result:    w.Result,
		ErrorCode: w.ErrorCode,
		Timestamp: w.Timestamp,
	}
	if w.CredentialID != "" {
		credentialID, err := uuid.Parse(w.CredentialID)
		if err != nil {
			return err
		}
		e.CredentialID = id.CredentialID(credentialID)
	}
	return nil
}
