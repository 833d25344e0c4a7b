package meetings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	errMissingDatabase     = errors.New("database handle is required")
	errMissingIDProvider   = errors.New("id provider is required")
	errMissingLinkProvider = errors.New("link provider is required")
	noOpLogger             = zap.NewNop()
)

// ServiceError wraps a failure with a stable operation.reason code.
type ServiceError struct {
	code string
	err  error
}

func (e *ServiceError) Error() string {
	if e.err == nil {
		return e.code
	}
	return fmt.Sprintf("%s: %v", e.code, e.err)
}

func (e *ServiceError) Unwrap() error {
	return e.err
}

func (e *ServiceError) Code() string {
	return e.code
}

const (
	opServiceNew    = "meetings.service.new"
	opCreateMeeting = "meetings.create"
	opGetMeeting    = "meetings.get"
	opUpdateMeeting = "meetings.update"
	opDeleteMeeting = "meetings.delete"
)

func newServiceError(operation, reason string, cause error) error {
	code := fmt.Sprintf("%s.%s", operation, reason)
	return &ServiceError{code: code, err: cause}
}

// ServiceConfig describes the dependencies of the meeting service.
type ServiceConfig struct {
	Database *gorm.DB
	Clock    func() time.Time
	IDs      IDProvider
	Links    LinkProvider
	Logger   *zap.Logger
}

// Service manages the meeting aggregate: the meeting row plus its candidate
// time and location options.
type Service struct {
	db     *gorm.DB
	clock  func() time.Time
	ids    IDProvider
	links  LinkProvider
	logger *zap.Logger
}

// NewService validates the configuration and constructs the meeting service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, newServiceError(opServiceNew, "missing_database", errMissingDatabase)
	}
	if cfg.IDs == nil {
		return nil, newServiceError(opServiceNew, "missing_id_provider", errMissingIDProvider)
	}
	if cfg.Links == nil {
		return nil, newServiceError(opServiceNew, "missing_link_provider", errMissingLinkProvider)
	}

	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}

	return &Service{
		db:     cfg.Database,
		clock:  clock,
		ids:    cfg.IDs,
		links:  cfg.Links,
		logger: logger,
	}, nil
}

// CreateRequest carries the inputs for a new meeting poll.
type CreateRequest struct {
	Title           string
	Description     string
	OrganizerName   string
	TimeOptions     []time.Time
	LocationOptions []string
}

// Create persists a meeting together with its option sets and returns the
// stored aggregate, including the generated public link. The meeting row and
// every option row are written in one transaction so a failed option insert
// never leaves a half-created poll behind.
func (s *Service) Create(ctx context.Context, request CreateRequest) (MeetingDetails, error) {
	title, err := validateName("title", request.Title)
	if err != nil {
		return MeetingDetails{}, err
	}
	organizer, err := validateName("organizer_name", request.OrganizerName)
	if err != nil {
		return MeetingDetails{}, err
	}

	link, err := s.links.NewLink()
	if err != nil {
		s.logError(opCreateMeeting, "link_generation_failed", err)
		return MeetingDetails{}, newServiceError(opCreateMeeting, "link_generation_failed", err)
	}
	meetingID, err := s.ids.NewID()
	if err != nil {
		s.logError(opCreateMeeting, "id_generation_failed", err)
		return MeetingDetails{}, newServiceError(opCreateMeeting, "id_generation_failed", err)
	}

	now := s.clock().UTC()
	meeting := Meeting{
		ID:            meetingID,
		UniqueLink:    link,
		Title:         title,
		Description:   request.Description,
		OrganizerName: organizer,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	timeOptions, err := s.buildTimeOptions(opCreateMeeting, meetingID, request.TimeOptions, now)
	if err != nil {
		return MeetingDetails{}, err
	}
	locationOptions, err := s.buildLocationOptions(opCreateMeeting, meetingID, request.LocationOptions, now)
	if err != nil {
		return MeetingDetails{}, err
	}

	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&meeting).Error; err != nil {
			return newServiceError(opCreateMeeting, "meeting_insert_failed", err)
		}
		if len(timeOptions) > 0 {
			if err := tx.Create(&timeOptions).Error; err != nil {
				return newServiceError(opCreateMeeting, "time_options_insert_failed", err)
			}
		}
		if len(locationOptions) > 0 {
			if err := tx.Create(&locationOptions).Error; err != nil {
				return newServiceError(opCreateMeeting, "location_options_insert_failed", err)
			}
		}
		return nil
	})
	if txErr != nil {
		s.logError(opCreateMeeting, "transaction_failed", txErr, zap.String("link", link))
		return MeetingDetails{}, txErr
	}

	s.logger.Info("meeting created",
		zap.String("meeting_id", meetingID),
		zap.String("link", link),
		zap.Int("time_options", len(timeOptions)),
		zap.Int("location_options", len(locationOptions)))

	return MeetingDetails{
		Meeting:         meeting,
		TimeOptions:     timeOptions,
		LocationOptions: locationOptions,
		Votes:           []Vote{},
	}, nil
}

// Get loads the meeting behind a public link along with its time options
// (datetime ascending), location options (creation order) and all votes.
func (s *Service) Get(ctx context.Context, link string) (MeetingDetails, error) {
	meeting, err := s.findByLink(ctx, opGetMeeting, link)
	if err != nil {
		return MeetingDetails{}, err
	}

	details := MeetingDetails{Meeting: meeting}
	db := s.db.WithContext(ctx)

	if err := db.Where("meeting_id = ?", meeting.ID).
		Order("datetime ASC").
		Find(&details.TimeOptions).Error; err != nil {
		s.logError(opGetMeeting, "time_options_query_failed", err, zap.String("link", link))
		return MeetingDetails{}, newServiceError(opGetMeeting, "time_options_query_failed", err)
	}
	if err := db.Where("meeting_id = ?", meeting.ID).
		Order("created_at ASC").
		Find(&details.LocationOptions).Error; err != nil {
		s.logError(opGetMeeting, "location_options_query_failed", err, zap.String("link", link))
		return MeetingDetails{}, newServiceError(opGetMeeting, "location_options_query_failed", err)
	}
	if err := db.Where("meeting_id = ?", meeting.ID).
		Find(&details.Votes).Error; err != nil {
		s.logError(opGetMeeting, "votes_query_failed", err, zap.String("link", link))
		return MeetingDetails{}, newServiceError(opGetMeeting, "votes_query_failed", err)
	}

	return details, nil
}

// UpdateRequest carries a partial meeting update. Nil fields are left
// untouched; a non-nil option slice, even an empty one, replaces the whole
// existing set of that kind.
type UpdateRequest struct {
	Title           *string
	Description     *string
	TimeOptions     []time.Time
	HasTimeOptions  bool
	LocationOptions []string
	HasLocations    bool
}

// Update applies a partial update to the meeting behind the link. Option
// replacement is delete-all-then-insert inside one transaction, so readers
// never observe the transient empty set.
func (s *Service) Update(ctx context.Context, link string, request UpdateRequest) error {
	if request.Title != nil {
		if _, err := validateName("title", *request.Title); err != nil {
			return err
		}
	}

	meeting, err := s.findByLink(ctx, opUpdateMeeting, link)
	if err != nil {
		return err
	}

	now := s.clock().UTC()

	var timeOptions []TimeOption
	if request.HasTimeOptions {
		timeOptions, err = s.buildTimeOptions(opUpdateMeeting, meeting.ID, request.TimeOptions, now)
		if err != nil {
			return err
		}
	}
	var locationOptions []LocationOption
	if request.HasLocations {
		locationOptions, err = s.buildLocationOptions(opUpdateMeeting, meeting.ID, request.LocationOptions, now)
		if err != nil {
			return err
		}
	}

	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{"updated_at": now}
		if request.Title != nil {
			updates["title"] = *request.Title
		}
		if request.Description != nil {
			updates["description"] = *request.Description
		}
		if err := tx.Model(&Meeting{}).Where("id = ?", meeting.ID).Updates(updates).Error; err != nil {
			return newServiceError(opUpdateMeeting, "meeting_update_failed", err)
		}

		if request.HasTimeOptions {
			if err := tx.Where("meeting_id = ?", meeting.ID).Delete(&TimeOption{}).Error; err != nil {
				return newServiceError(opUpdateMeeting, "time_options_delete_failed", err)
			}
			if len(timeOptions) > 0 {
				if err := tx.Create(&timeOptions).Error; err != nil {
					return newServiceError(opUpdateMeeting, "time_options_insert_failed", err)
				}
			}
		}
		if request.HasLocations {
			if err := tx.Where("meeting_id = ?", meeting.ID).Delete(&LocationOption{}).Error; err != nil {
				return newServiceError(opUpdateMeeting, "location_options_delete_failed", err)
			}
			if len(locationOptions) > 0 {
				if err := tx.Create(&locationOptions).Error; err != nil {
					return newServiceError(opUpdateMeeting, "location_options_insert_failed", err)
				}
			}
		}
		return nil
	})
	if txErr != nil {
		s.logError(opUpdateMeeting, "transaction_failed", txErr, zap.String("link", link))
		return txErr
	}

	return nil
}

// Delete removes the meeting behind the link together with its options and
// votes, in one transaction.
func (s *Service) Delete(ctx context.Context, link string) error {
	meeting, err := s.findByLink(ctx, opDeleteMeeting, link)
	if err != nil {
		return err
	}

	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("meeting_id = ?", meeting.ID).Delete(&Vote{}).Error; err != nil {
			return newServiceError(opDeleteMeeting, "votes_delete_failed", err)
		}
		if err := tx.Where("meeting_id = ?", meeting.ID).Delete(&TimeOption{}).Error; err != nil {
			return newServiceError(opDeleteMeeting, "time_options_delete_failed", err)
		}
		if err := tx.Where("meeting_id = ?", meeting.ID).Delete(&LocationOption{}).Error; err != nil {
			return newServiceError(opDeleteMeeting, "location_options_delete_failed", err)
		}
		if err := tx.Where("id = ?", meeting.ID).Delete(&Meeting{}).Error; err != nil {
			return newServiceError(opDeleteMeeting, "meeting_delete_failed", err)
		}
		return nil
	})
	if txErr != nil {
		s.logError(opDeleteMeeting, "transaction_failed", txErr, zap.String("link", link))
		return txErr
	}

	s.logger.Info("meeting deleted", zap.String("meeting_id", meeting.ID), zap.String("link", link))
	return nil
}

func (s *Service) findByLink(ctx context.Context, operation, link string) (Meeting, error) {
	var meeting Meeting
	err := s.db.WithContext(ctx).Where("unique_link = ?", link).Take(&meeting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Meeting{}, fmt.Errorf("%w: link %q", ErrMeetingNotFound, link)
	}
	if err != nil {
		s.logError(operation, "meeting_select_failed", err, zap.String("link", link))
		return Meeting{}, newServiceError(operation, "meeting_select_failed", err)
	}
	return meeting, nil
}

func (s *Service) buildTimeOptions(operation, meetingID string, values []time.Time, now time.Time) ([]TimeOption, error) {
	options := make([]TimeOption, 0, len(values))
	for _, value := range values {
		id, err := s.ids.NewID()
		if err != nil {
			s.logError(operation, "id_generation_failed", err)
			return nil, newServiceError(operation, "id_generation_failed", err)
		}
		options = append(options, TimeOption{
			ID:        id,
			MeetingID: meetingID,
			Datetime:  value.UTC(),
			CreatedAt: now,
		})
	}
	return options, nil
}

func (s *Service) buildLocationOptions(operation, meetingID string, values []string, now time.Time) ([]LocationOption, error) {
	options := make([]LocationOption, 0, len(values))
	for _, value := range values {
		id, err := s.ids.NewID()
		if err != nil {
			s.logError(operation, "id_generation_failed", err)
			return nil, newServiceError(operation, "id_generation_failed", err)
		}
		options = append(options, LocationOption{
			ID:        id,
			MeetingID: meetingID,
			Location:  value,
			CreatedAt: now,
		})
	}
	return options, nil
}

func (s *Service) logError(operation, reason string, err error, fields ...zap.Field) {
	attrs := []zap.Field{
		zap.String("operation", operation),
		zap.String("reason", reason),
	}
	if err != nil {
		attrs = append(attrs, zap.Error(err))
	}
	attrs = append(attrs, fields...)
	s.logger.Error("meeting service error", attrs...)
}
