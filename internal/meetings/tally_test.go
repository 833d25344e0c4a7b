package meetings

import (
	"reflect"
	"testing"
)

func voteFor(participant, timeOptionID, locationOptionID string, voteType VoteType) Vote {
	vote := Vote{ParticipantName: participant, VoteType: voteType}
	if timeOptionID != "" {
		vote.TimeOptionID = &timeOptionID
	}
	if locationOptionID != "" {
		vote.LocationOptionID = &locationOptionID
	}
	return vote
}

func TestCountVotesAndTotal(t *testing.T) {
	votes := []Vote{
		voteFor("Ann", "optA", "", VoteTypeYes),
		voteFor("Bob", "optA", "", VoteTypeYes),
		voteFor("Celina", "optA", "", VoteTypeMaybe),
		voteFor("Darek", "optA", "", VoteTypeNo),
	}

	if got := CountVotes(votes, "optA", VoteTypeYes); got != 2 {
		t.Fatalf("expected 2 yes votes, got %d", got)
	}
	if got := CountVotes(votes, "optA", VoteTypeMaybe); got != 1 {
		t.Fatalf("expected 1 maybe vote, got %d", got)
	}
	if got := CountVotes(votes, "optA", VoteTypeNo); got != 1 {
		t.Fatalf("expected 1 no vote, got %d", got)
	}
	if got := TotalVotes(votes, "optA"); got != 4 {
		t.Fatalf("expected total 4, got %d", got)
	}
	if got := CountVotes(votes, "optB", VoteTypeYes); got != 0 {
		t.Fatalf("expected 0 votes for unknown option, got %d", got)
	}
}

func TestCountVotesMatchesEitherOptionKind(t *testing.T) {
	votes := []Vote{
		voteFor("Ann", "shared", "", VoteTypeYes),
		voteFor("Bob", "", "shared", VoteTypeYes),
	}

	if got := CountVotes(votes, "shared", VoteTypeYes); got != 2 {
		t.Fatalf("expected votes from both kinds to count, got %d", got)
	}
}

func TestParticipantsCollapsesDuplicatesInFirstAppearanceOrder(t *testing.T) {
	votes := []Vote{
		voteFor("Bob", "optA", "", VoteTypeYes),
		voteFor("Ann", "optB", "", VoteTypeMaybe),
		voteFor("Bob", "optB", "", VoteTypeNo),
		voteFor("Ann", "optA", "", VoteTypeYes),
	}

	got := Participants(votes)
	want := []string{"Bob", "Ann"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestParticipantsOfEmptyVoteSet(t *testing.T) {
	if got := Participants(nil); len(got) != 0 {
		t.Fatalf("expected empty roster, got %v", got)
	}
}

func TestVotersForOption(t *testing.T) {
	votes := []Vote{
		voteFor("Ann", "optA", "", VoteTypeYes),
		voteFor("Bob", "optA", "", VoteTypeNo),
		voteFor("Celina", "optA", "", VoteTypeYes),
		voteFor("Darek", "optB", "", VoteTypeYes),
	}

	got := VotersForOption(votes, "optA", VoteTypeYes)
	want := []string{"Ann", "Celina"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}
