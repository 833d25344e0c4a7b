package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/zaplanuj/backend/internal/meetings"
	"github.com/zaplanuj/backend/internal/suggestions"
	"go.uber.org/zap"
)

var (
	errMissingMeetingService    = errors.New("meeting service dependency required")
	errMissingVoteService       = errors.New("vote service dependency required")
	errMissingSuggestionService = errors.New("suggestion generator dependency required")
)

// Dependencies wires the domain services into the HTTP surface.
type Dependencies struct {
	Meetings    *meetings.Service
	Votes       *meetings.VoteService
	Suggestions *suggestions.Generator
	Logger      *zap.Logger
}

// NewHTTPHandler assembles the gin router for the meeting poll API.
func NewHTTPHandler(deps Dependencies) (http.Handler, error) {
	if deps.Meetings == nil {
		return nil, errMissingMeetingService
	}
	if deps.Votes == nil {
		return nil, errMissingVoteService
	}
	if deps.Suggestions == nil {
		return nil, errMissingSuggestionService
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))

	handler := &httpHandler{
		meetings:    deps.Meetings,
		votes:       deps.Votes,
		suggestions: deps.Suggestions,
		logger:      logger,
	}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	router.POST("/meetings", handler.handleCreateMeeting)
	router.GET("/meetings/:link", handler.handleGetMeeting)
	router.PUT("/meetings/:link", handler.handleUpdateMeeting)
	router.DELETE("/meetings/:link", handler.handleDeleteMeeting)
	router.GET("/meetings/:link/results", handler.handleMeetingResults)
	router.POST("/votes", handler.handleSubmitVotes)
	router.POST("/ai/suggestions", handler.handleSuggestions)

	return router, nil
}

type httpHandler struct {
	meetings    *meetings.Service
	votes       *meetings.VoteService
	suggestions *suggestions.Generator
	logger      *zap.Logger
}

type createMeetingPayload struct {
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	OrganizerName   string   `json:"organizer_name"`
	TimeOptions     []string `json:"time_options"`
	LocationOptions []string `json:"location_options"`
}

type meetingDetailsPayload struct {
	Meeting         meetings.Meeting          `json:"meeting"`
	TimeOptions     []meetings.TimeOption     `json:"timeOptions"`
	LocationOptions []meetings.LocationOption `json:"locationOptions"`
	Votes           []meetings.Vote           `json:"votes"`
}

func (h *httpHandler) handleCreateMeeting(c *gin.Context) {
	var request createMeetingPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	timeOptions, err := parseDatetimes(request.TimeOptions)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_datetime", "message": err.Error()})
		return
	}

	details, err := h.meetings.Create(c.Request.Context(), meetings.CreateRequest{
		Title:           request.Title,
		Description:     request.Description,
		OrganizerName:   request.OrganizerName,
		TimeOptions:     timeOptions,
		LocationOptions: request.LocationOptions,
	})
	if err != nil {
		h.respondError(c, "failed to create meeting", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"meeting":    details.Meeting,
		"uniqueLink": details.Meeting.UniqueLink,
	})
}

func (h *httpHandler) handleGetMeeting(c *gin.Context) {
	details, err := h.meetings.Get(c.Request.Context(), c.Param("link"))
	if err != nil {
		h.respondError(c, "failed to fetch meeting", err)
		return
	}

	c.JSON(http.StatusOK, meetingDetailsPayload{
		Meeting:         details.Meeting,
		TimeOptions:     details.TimeOptions,
		LocationOptions: details.LocationOptions,
		Votes:           details.Votes,
	})
}

type updateMeetingPayload struct {
	Title           *string   `json:"title"`
	Description     *string   `json:"description"`
	TimeOptions     *[]string `json:"time_options"`
	LocationOptions *[]string `json:"location_options"`
}

func (h *httpHandler) handleUpdateMeeting(c *gin.Context) {
	var request updateMeetingPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	update := meetings.UpdateRequest{
		Title:       request.Title,
		Description: request.Description,
	}
	if request.TimeOptions != nil {
		timeOptions, err := parseDatetimes(*request.TimeOptions)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_datetime", "message": err.Error()})
			return
		}
		update.TimeOptions = timeOptions
		update.HasTimeOptions = true
	}
	if request.LocationOptions != nil {
		update.LocationOptions = *request.LocationOptions
		update.HasLocations = true
	}

	if err := h.meetings.Update(c.Request.Context(), c.Param("link"), update); err != nil {
		h.respondError(c, "failed to update meeting", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *httpHandler) handleDeleteMeeting(c *gin.Context) {
	if err := h.meetings.Delete(c.Request.Context(), c.Param("link")); err != nil {
		h.respondError(c, "failed to delete meeting", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type voteEntryPayload struct {
	TimeOptionID     string `json:"time_option_id"`
	LocationOptionID string `json:"location_option_id"`
	VoteType         string `json:"vote_type"`
}

type submitVotesPayload struct {
	MeetingID       string             `json:"meeting_id"`
	ParticipantName string             `json:"participant_name"`
	Votes           []voteEntryPayload `json:"votes"`
}

func (h *httpHandler) handleSubmitVotes(c *gin.Context) {
	var request submitVotesPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	entries := make([]meetings.VoteEntry, 0, len(request.Votes))
	for _, vote := range request.Votes {
		entries = append(entries, meetings.VoteEntry{
			TimeOptionID:     vote.TimeOptionID,
			LocationOptionID: vote.LocationOptionID,
			VoteType:         meetings.VoteType(vote.VoteType),
		})
	}

	err := h.votes.SubmitVotes(c.Request.Context(), request.MeetingID, request.ParticipantName, entries)
	if err != nil {
		h.respondError(c, "failed to submit votes", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

type optionVotersPayload struct {
	Yes   []string `json:"yes"`
	Maybe []string `json:"maybe"`
	No    []string `json:"no"`
}

type timeOptionResultPayload struct {
	Option meetings.TimeOption `json:"option"`
	Yes    int                 `json:"yes"`
	Maybe  int                 `json:"maybe"`
	No     int                 `json:"no"`
	Total  int                 `json:"total"`
	Voters optionVotersPayload `json:"voters"`
}

type locationOptionResultPayload struct {
	Option meetings.LocationOption `json:"option"`
	Yes    int                     `json:"yes"`
	Maybe  int                     `json:"maybe"`
	No     int                     `json:"no"`
	Total  int                     `json:"total"`
	Voters optionVotersPayload     `json:"voters"`
}

func (h *httpHandler) handleMeetingResults(c *gin.Context) {
	details, err := h.meetings.Get(c.Request.Context(), c.Param("link"))
	if err != nil {
		h.respondError(c, "failed to fetch meeting results", err)
		return
	}

	timeResults := make([]timeOptionResultPayload, 0, len(details.TimeOptions))
	for _, option := range details.TimeOptions {
		yes, maybe, no, total, voters := tallyOption(details.Votes, option.ID)
		timeResults = append(timeResults, timeOptionResultPayload{
			Option: option, Yes: yes, Maybe: maybe, No: no, Total: total, Voters: voters,
		})
	}
	locationResults := make([]locationOptionResultPayload, 0, len(details.LocationOptions))
	for _, option := range details.LocationOptions {
		yes, maybe, no, total, voters := tallyOption(details.Votes, option.ID)
		locationResults = append(locationResults, locationOptionResultPayload{
			Option: option, Yes: yes, Maybe: maybe, No: no, Total: total, Voters: voters,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"participants":    meetings.Participants(details.Votes),
		"timeOptions":     timeResults,
		"locationOptions": locationResults,
	})
}

func tallyOption(votes []meetings.Vote, optionID string) (yes, maybe, no, total int, voters optionVotersPayload) {
	yes = meetings.CountVotes(votes, optionID, meetings.VoteTypeYes)
	maybe = meetings.CountVotes(votes, optionID, meetings.VoteTypeMaybe)
	no = meetings.CountVotes(votes, optionID, meetings.VoteTypeNo)
	total = meetings.TotalVotes(votes, optionID)
	voters = optionVotersPayload{
		Yes:   meetings.VotersForOption(votes, optionID, meetings.VoteTypeYes),
		Maybe: meetings.VotersForOption(votes, optionID, meetings.VoteTypeMaybe),
		No:    meetings.VotersForOption(votes, optionID, meetings.VoteTypeNo),
	}
	return yes, maybe, no, total, voters
}

type suggestionContextPayload struct {
	Title       string                     `json:"title"`
	Description string                     `json:"description"`
	Link        string                     `json:"link"`
	Votes       []suggestions.VoteSnapshot `json:"votes"`
}

type suggestionRequestPayload struct {
	Type    string                   `json:"type"`
	Context suggestionContextPayload `json:"context"`
}

// handleSuggestions always answers 200: an AI outage must never break the
// planning flow, so internal failures surface as fallback suggestions.
func (h *httpHandler) handleSuggestions(c *gin.Context) {
	var request suggestionRequestPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	ctx := c.Request.Context()
	var payload any
	var aiGenerated bool
	switch request.Type {
	case "dates":
		payload, aiGenerated = h.suggestions.SuggestDates(ctx, request.Context.Title)
	case "locations":
		payload, aiGenerated = h.suggestions.SuggestLocations(ctx, request.Context.Title, request.Context.Description)
	case "best-option":
		payload, aiGenerated = h.suggestions.RecommendBestOption(ctx, request.Context.Votes)
	case "invitation":
		payload, aiGenerated = h.suggestions.DraftInvitation(ctx, request.Context.Title, request.Context.Description, request.Context.Link)
	default:
		payload, aiGenerated = []string{}, false
	}

	c.JSON(http.StatusOK, gin.H{"suggestions": payload, "isAiGenerated": aiGenerated})
}

func (h *httpHandler) respondError(c *gin.Context, message string, err error) {
	switch {
	case errors.Is(err, meetings.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": err.Error()})
	case errors.Is(err, meetings.ErrMeetingNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
	default:
		h.logger.Error(message, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
	}
}

func parseDatetimes(values []string) ([]time.Time, error) {
	parsed := make([]time.Time, 0, len(values))
	for _, value := range values {
		datetime, err := time.Parse(time.RFC3339, value)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, datetime)
	}
	return parsed, nil
}
