package meetings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const opSubmitVotes = "meetings.submit_votes"

var errAmbiguousOption = fmt.Errorf("%w: a vote must reference exactly one option", ErrValidation)

// VoteEntry is one stance submitted by a participant. Exactly one of
// TimeOptionID and LocationOptionID must be set.
type VoteEntry struct {
	TimeOptionID     string
	LocationOptionID string
	VoteType         VoteType
}

// VoteServiceConfig describes the dependencies of the vote service.
type VoteServiceConfig struct {
	Database *gorm.DB
	Clock    func() time.Time
	IDs      IDProvider
	Logger   *zap.Logger
}

// VoteService replaces a participant's full vote set for a meeting.
type VoteService struct {
	db     *gorm.DB
	clock  func() time.Time
	ids    IDProvider
	logger *zap.Logger
}

// NewVoteService validates the configuration and constructs the vote service.
func NewVoteService(cfg VoteServiceConfig) (*VoteService, error) {
	if cfg.Database == nil {
		return nil, newServiceError(opSubmitVotes, "missing_database", errMissingDatabase)
	}
	if cfg.IDs == nil {
		return nil, newServiceError(opSubmitVotes, "missing_id_provider", errMissingIDProvider)
	}

	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}

	return &VoteService{
		db:     cfg.Database,
		clock:  clock,
		ids:    cfg.IDs,
		logger: logger,
	}, nil
}

// SubmitVotes replaces every vote the participant holds in the meeting with
// the submitted set. The delete and the batch insert run in one transaction,
// so concurrent readers never observe the participant's votes half-gone.
// Entries repeating an option id collapse to the last occurrence.
func (s *VoteService) SubmitVotes(ctx context.Context, meetingID, participantName string, entries []VoteEntry) error {
	if meetingID == "" {
		return fmt.Errorf("%w: meeting_id is required", ErrValidation)
	}
	participant, err := validateName("participant_name", participantName)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return fmt.Errorf("%w: votes are required", ErrValidation)
	}
	entries, err = dedupeEntries(entries)
	if err != nil {
		return err
	}

	var meeting Meeting
	err = s.db.WithContext(ctx).Where("id = ?", meetingID).Take(&meeting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: id %q", ErrMeetingNotFound, meetingID)
	}
	if err != nil {
		s.logError(opSubmitVotes, "meeting_select_failed", err, zap.String("meeting_id", meetingID))
		return newServiceError(opSubmitVotes, "meeting_select_failed", err)
	}

	now := s.clock().UTC()
	votes := make([]Vote, 0, len(entries))
	for _, entry := range entries {
		id, err := s.ids.NewID()
		if err != nil {
			s.logError(opSubmitVotes, "id_generation_failed", err)
			return newServiceError(opSubmitVotes, "id_generation_failed", err)
		}
		vote := Vote{
			ID:              id,
			MeetingID:       meetingID,
			ParticipantName: participant,
			VoteType:        entry.VoteType,
			CreatedAt:       now,
		}
		if entry.TimeOptionID != "" {
			timeOptionID := entry.TimeOptionID
			vote.TimeOptionID = &timeOptionID
		} else {
			locationOptionID := entry.LocationOptionID
			vote.LocationOptionID = &locationOptionID
		}
		votes = append(votes, vote)
	}

	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("meeting_id = ? AND participant_name = ?", meetingID, participant).
			Delete(&Vote{}).Error; err != nil {
			return newServiceError(opSubmitVotes, "votes_delete_failed", err)
		}
		if err := tx.Create(&votes).Error; err != nil {
			return newServiceError(opSubmitVotes, "votes_insert_failed", err)
		}
		return nil
	})
	if txErr != nil {
		s.logError(opSubmitVotes, "transaction_failed", txErr,
			zap.String("meeting_id", meetingID),
			zap.String("participant", participant))
		return txErr
	}

	s.logger.Info("votes submitted",
		zap.String("meeting_id", meetingID),
		zap.String("participant", participant),
		zap.Int("votes", len(votes)))
	return nil
}

// dedupeEntries validates each entry and collapses repeated option ids,
// keeping the last submitted stance per option.
func dedupeEntries(entries []VoteEntry) ([]VoteEntry, error) {
	position := make(map[string]int, len(entries))
	deduped := make([]VoteEntry, 0, len(entries))
	for _, entry := range entries {
		if (entry.TimeOptionID == "") == (entry.LocationOptionID == "") {
			return nil, errAmbiguousOption
		}
		if _, err := ParseVoteType(string(entry.VoteType)); err != nil {
			return nil, err
		}

		optionID := entry.TimeOptionID
		if optionID == "" {
			optionID = entry.LocationOptionID
		}
		if index, seen := position[optionID]; seen {
			deduped[index] = entry
			continue
		}
		position[optionID] = len(deduped)
		deduped = append(deduped, entry)
	}
	return deduped, nil
}

func (s *VoteService) logError(operation, reason string, err error, fields ...zap.Field) {
	attrs := []zap.Field{
		zap.String("operation", operation),
		zap.String("reason", reason),
	}
	if err != nil {
		attrs = append(attrs, zap.Error(err))
	}
	attrs = append(attrs, fields...)
	s.logger.Error("vote service error", attrs...)
}
