package server

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/gin-gonic/gin"
	"github.com/zaplanuj/backend/internal/meetings"
	"github.com/zaplanuj/backend/internal/suggestions"
	"gorm.io/gorm"
)

func newTestHandler(t *testing.T) (http.Handler, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:router_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&meetings.Meeting{},
		&meetings.TimeOption{},
		&meetings.LocationOption{},
		&meetings.Vote{},
	); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	meetingService, err := meetings.NewService(meetings.ServiceConfig{
		Database: db,
		IDs:      meetings.NewUUIDProvider(),
		Links:    meetings.NewRandomLinkProvider(),
	})
	if err != nil {
		t.Fatalf("failed to build meeting service: %v", err)
	}
	voteService, err := meetings.NewVoteService(meetings.VoteServiceConfig{
		Database: db,
		IDs:      meetings.NewUUIDProvider(),
	})
	if err != nil {
		t.Fatalf("failed to build vote service: %v", err)
	}
	generator := suggestions.NewGenerator(suggestions.GeneratorConfig{})

	handler, err := NewHTTPHandler(Dependencies{
		Meetings:    meetingService,
		Votes:       voteService,
		Suggestions: generator,
	})
	if err != nil {
		t.Fatalf("failed to build handler: %v", err)
	}
	return handler, db
}
