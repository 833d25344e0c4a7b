package meetings

// Tally helpers are pure functions over the vote set already fetched for a
// meeting; they never touch the store.

// CountVotes returns how many votes of the given type reference the option.
func CountVotes(votes []Vote, optionID string, voteType VoteType) int {
	count := 0
	for _, vote := range votes {
		if vote.OptionID() == optionID && vote.VoteType == voteType {
			count++
		}
	}
	return count
}

// TotalVotes returns how many votes reference the option across all vote
// types. Used as the percentage-bar denominator, never stored.
func TotalVotes(votes []Vote, optionID string) int {
	count := 0
	for _, vote := range votes {
		if vote.OptionID() == optionID {
			count++
		}
	}
	return count
}

// Participants returns the distinct participant names across the votes in
// order of first appearance.
func Participants(votes []Vote) []string {
	seen := make(map[string]bool, len(votes))
	names := make([]string, 0, len(votes))
	for _, vote := range votes {
		if seen[vote.ParticipantName] {
			continue
		}
		seen[vote.ParticipantName] = true
		names = append(names, vote.ParticipantName)
	}
	return names
}

// VotersForOption returns the participant names behind one tally cell.
func VotersForOption(votes []Vote, optionID string, voteType VoteType) []string {
	names := make([]string, 0, len(votes))
	for _, vote := range votes {
		if vote.OptionID() == optionID && vote.VoteType == voteType {
			names = append(names, vote.ParticipantName)
		}
	}
	return names
}
