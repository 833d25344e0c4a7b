package meetings

import (
	"errors"
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type sequenceIDGenerator struct {
	prefix string
	next   int
}

func (g *sequenceIDGenerator) NewID() (string, error) {
	g.next++
	return fmt.Sprintf("%s-%d", g.prefix, g.next), nil
}

type staticLinkProvider struct {
	links []string
	index int
}

func (p *staticLinkProvider) NewLink() (string, error) {
	if p.index >= len(p.links) {
		return "", errors.New("exhausted links")
	}
	link := p.links[p.index]
	p.index++
	return link, nil
}

func newTestDatabase(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:zaplanuj_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&Meeting{}, &TimeOption{}, &LocationOption{}, &Vote{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func newTestService(t *testing.T, links ...string) (*Service, *gorm.DB) {
	t.Helper()

	db := newTestDatabase(t)
	if len(links) == 0 {
		links = []string{"link-1", "link-2", "link-3"}
	}
	clock := func() time.Time { return time.Unix(1750000000, 0).UTC() }

	service, err := NewService(ServiceConfig{
		Database: db,
		Clock:    clock,
		IDs:      &sequenceIDGenerator{prefix: "id"},
		Links:    &staticLinkProvider{links: links},
	})
	if err != nil {
		t.Fatalf("failed to construct meeting service: %v", err)
	}
	return service, db
}

func newTestVoteService(t *testing.T, db *gorm.DB) *VoteService {
	t.Helper()

	clock := func() time.Time { return time.Unix(1750000600, 0).UTC() }
	service, err := NewVoteService(VoteServiceConfig{
		Database: db,
		Clock:    clock,
		IDs:      &sequenceIDGenerator{prefix: "vote"},
	})
	if err != nil {
		t.Fatalf("failed to construct vote service: %v", err)
	}
	return service
}

func strptr(value string) *string {
	return &value
}
