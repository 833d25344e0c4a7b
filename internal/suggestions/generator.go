// Package suggestions produces AI-assisted planning hints for meeting polls:
// candidate dates, candidate locations, a best-option recommendation and an
// invitation text. Every call degrades to a deterministic canned suggestion
// when the text-generation service is unconfigured, unreachable or returns
// something unusable; callers never see an error.
package suggestions

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const (
	fallbackBestOption = `Na podstawie głosów, zalecamy wybranie opcji z największą liczbą głosów "Tak".`

	promptDates      = `Suggest 3 good meeting dates for the next 2 weeks. Consider that the meeting is about: "%s". Return only a JSON array of ISO datetime strings.`
	promptLocations  = `Suggest 3 good meeting locations for: "%s". Consider the context: "%s". Return only a JSON array of location names as strings.`
	promptBestOption = `Based on these votes: %s, suggest the best meeting time and location. Consider 'yes' votes as 3 points, 'maybe' as 1 point, and 'no' as 0 points. Return a brief recommendation in Polish.`
	promptInvitation = `Generate a friendly invitation message in Polish for a meeting titled "%s" with description "%s". Include the link: %s. Keep it concise and professional.`
)

var fallbackLocations = []string{"Kawiarnia w centrum", "Sala konferencyjna", "Online (Zoom/Meet)"}

// VoteSnapshot is the raw vote data embedded into the best-option prompt.
type VoteSnapshot struct {
	ParticipantName  string `json:"participant_name"`
	TimeOptionID     string `json:"time_option_id,omitempty"`
	LocationOptionID string `json:"location_option_id,omitempty"`
	VoteType         string `json:"vote_type"`
}

// GeneratorConfig describes the dependencies of the suggestion generator.
// An empty APIKey is a normal condition: the generator then serves fallbacks
// only.
type GeneratorConfig struct {
	Completions CompletionClient
	Clock       func() time.Time
	Logger      *zap.Logger
}

// CompletionClient produces a free-text completion for a prompt. A nil
// client means no text-generation service is configured.
type CompletionClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Generator builds type-specific prompts, calls the text-generation service
// and parses its responses, falling back to static suggestions on any
// failure.
type Generator struct {
	completions CompletionClient
	clock       func() time.Time
	logger      *zap.Logger
}

// NewGenerator constructs the suggestion generator.
func NewGenerator(cfg GeneratorConfig) *Generator {
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		completions: cfg.Completions,
		clock:       clock,
		logger:      logger,
	}
}

// SuggestDates proposes 3 candidate meeting datetimes for the next two
// weeks. The boolean reports whether the suggestions came from the
// text-generation service.
func (g *Generator) SuggestDates(ctx context.Context, title string) ([]string, bool) {
	prompt := fmt.Sprintf(promptDates, title)
	if values, ok := g.completeList(ctx, "dates", prompt); ok {
		return values, true
	}
	return g.fallbackDates(), false
}

// SuggestLocations proposes 3 candidate meeting locations.
func (g *Generator) SuggestLocations(ctx context.Context, title, description string) ([]string, bool) {
	prompt := fmt.Sprintf(promptLocations, title, description)
	if values, ok := g.completeList(ctx, "locations", prompt); ok {
		return values, true
	}
	return append([]string(nil), fallbackLocations...), false
}

// RecommendBestOption asks for a recommendation over the supplied votes,
// weighting yes=3, maybe=1, no=0. The fallback text is static boilerplate
// rather than a computed winner, matching the behavior this service
// replaces.
func (g *Generator) RecommendBestOption(ctx context.Context, votes []VoteSnapshot) (string, bool) {
	encoded, err := json.Marshal(votes)
	if err != nil {
		encoded = []byte("[]")
	}
	prompt := fmt.Sprintf(promptBestOption, string(encoded))
	if text, ok := g.completeText(ctx, "best-option", prompt); ok {
		return text, true
	}
	return fallbackBestOption, false
}

// DraftInvitation writes a short Polish invitation for the meeting link.
func (g *Generator) DraftInvitation(ctx context.Context, title, description, link string) (string, bool) {
	prompt := fmt.Sprintf(promptInvitation, title, description, link)
	if text, ok := g.completeText(ctx, "invitation", prompt); ok {
		return text, true
	}
	return fallbackInvitation(title, link), false
}

func (g *Generator) completeText(ctx context.Context, kind, prompt string) (string, bool) {
	if g.completions == nil {
		return "", false
	}
	content, err := g.completions.Complete(ctx, prompt)
	if err != nil {
		g.logger.Warn("suggestion completion failed, serving fallback",
			zap.String("kind", kind), zap.Error(err))
		return "", false
	}
	return content, true
}

func (g *Generator) completeList(ctx context.Context, kind, prompt string) ([]string, bool) {
	content, ok := g.completeText(ctx, kind, prompt)
	if !ok {
		return nil, false
	}
	values, err := extractStringList(content)
	if err != nil {
		g.logger.Warn("suggestion response unparseable, serving fallback",
			zap.String("kind", kind), zap.Error(err))
		return nil, false
	}
	return values, true
}

// fallbackDates yields now + 3, 6 and 9 days, each normalized to 14:00 local
// time.
func (g *Generator) fallbackDates() []string {
	now := g.clock()
	dates := make([]string, 0, 3)
	for i := 1; i <= 3; i++ {
		day := now.AddDate(0, 0, 3*i)
		at := time.Date(day.Year(), day.Month(), day.Day(), 14, 0, 0, 0, day.Location())
		dates = append(dates, at.Format(time.RFC3339))
	}
	return dates
}

func fallbackInvitation(title, link string) string {
	return fmt.Sprintf(
		`Witaj! Zapraszam Cię do udziału w planowaniu spotkania "%s". Kliknij w link i zagłosuj na swoje preferowane terminy i lokalizacje: %s`,
		title, link)
}
