package meetings

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// VoteType enumerates the stances a participant can take on an option.
type VoteType string

const (
	VoteTypeYes   VoteType = "yes"
	VoteTypeNo    VoteType = "no"
	VoteTypeMaybe VoteType = "maybe"
)

const maxNameLength = 255

var (
	// ErrValidation is the root of all input validation failures.
	ErrValidation = errors.New("meetings: invalid input")
	// ErrMeetingNotFound indicates that no meeting carries the requested link or id.
	ErrMeetingNotFound = errors.New("meetings: meeting not found")
	// ErrInvalidVoteType indicates an unrecognized vote stance.
	ErrInvalidVoteType = fmt.Errorf("%w: unknown vote type", ErrValidation)
)

// ParseVoteType validates raw input and returns a VoteType.
func ParseVoteType(rawInput string) (VoteType, error) {
	switch strings.ToLower(strings.TrimSpace(rawInput)) {
	case string(VoteTypeYes):
		return VoteTypeYes, nil
	case string(VoteTypeNo):
		return VoteTypeNo, nil
	case string(VoteTypeMaybe):
		return VoteTypeMaybe, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidVoteType, rawInput)
	}
}

// Meeting is the poll aggregate root, addressed publicly by its unique link.
type Meeting struct {
	ID            string    `gorm:"column:id;primaryKey;size:36;not null" json:"id"`
	UniqueLink    string    `gorm:"column:unique_link;size:64;not null;uniqueIndex" json:"unique_link"`
	Title         string    `gorm:"column:title;size:255;not null" json:"title"`
	Description   string    `gorm:"column:description;type:text;not null;default:''" json:"description"`
	OrganizerName string    `gorm:"column:organizer_name;size:255;not null" json:"organizer_name"`
	CreatedAt     time.Time `gorm:"column:created_at;not null" json:"created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at;not null" json:"updated_at"`
}

// TableName provides the explicit table binding for GORM.
func (Meeting) TableName() string {
	return "meetings"
}

// TimeOption is a candidate datetime attached to one meeting.
type TimeOption struct {
	ID        string    `gorm:"column:id;primaryKey;size:36;not null" json:"id"`
	MeetingID string    `gorm:"column:meeting_id;size:36;not null;index" json:"meeting_id"`
	Datetime  time.Time `gorm:"column:datetime;not null" json:"datetime"`
	CreatedAt time.Time `gorm:"column:created_at;not null" json:"created_at"`
}

// TableName provides the explicit table binding for GORM.
func (TimeOption) TableName() string {
	return "time_options"
}

// LocationOption is a candidate location attached to one meeting.
type LocationOption struct {
	ID        string    `gorm:"column:id;primaryKey;size:36;not null" json:"id"`
	MeetingID string    `gorm:"column:meeting_id;size:36;not null;index" json:"meeting_id"`
	Location  string    `gorm:"column:location;size:255;not null" json:"location"`
	CreatedAt time.Time `gorm:"column:created_at;not null" json:"created_at"`
}

// TableName provides the explicit table binding for GORM.
func (LocationOption) TableName() string {
	return "location_options"
}

// Vote records one participant's stance on exactly one option. Either
// TimeOptionID or LocationOptionID is set, never both and never neither.
type Vote struct {
	ID               string    `gorm:"column:id;primaryKey;size:36;not null" json:"id"`
	MeetingID        string    `gorm:"column:meeting_id;size:36;not null;index" json:"meeting_id"`
	ParticipantName  string    `gorm:"column:participant_name;size:255;not null" json:"participant_name"`
	TimeOptionID     *string   `gorm:"column:time_option_id;size:36" json:"time_option_id"`
	LocationOptionID *string   `gorm:"column:location_option_id;size:36" json:"location_option_id"`
	VoteType         VoteType  `gorm:"column:vote_type;size:8;not null" json:"vote_type"`
	CreatedAt        time.Time `gorm:"column:created_at;not null" json:"created_at"`
}

// TableName provides the explicit table binding for GORM.
func (Vote) TableName() string {
	return "votes"
}

// OptionID returns whichever option the vote references.
func (v Vote) OptionID() string {
	if v.TimeOptionID != nil {
		return *v.TimeOptionID
	}
	if v.LocationOptionID != nil {
		return *v.LocationOptionID
	}
	return ""
}

// MeetingDetails bundles a meeting with its options and votes for read paths.
type MeetingDetails struct {
	Meeting         Meeting
	TimeOptions     []TimeOption
	LocationOptions []LocationOption
	Votes           []Vote
}

func validateName(field, rawInput string) (string, error) {
	trimmed := strings.TrimSpace(rawInput)
	if trimmed == "" {
		return "", fmt.Errorf("%w: %s is required", ErrValidation, field)
	}
	if len(trimmed) > maxNameLength {
		return "", fmt.Errorf("%w: %s exceeds %d characters", ErrValidation, field, maxNameLength)
	}
	return trimmed, nil
}
