package bot

import (
	"encoding/json"

	"github.com/efreeman/hitler-xl/api/pkg/hitler"
)

// HardStrategy extends MediumStrategy's allegiance heuristics with
// board-state awareness: it won't risk a third failed election to
// chaos/anarchist-policy territory, and it recognizes a late-game
// fascist win is close enough to stop bluffing.
type HardStrategy struct{}

func (HardStrategy) Decide(seat int, player hitler.PlayerUpdate, board hitler.BoardUpdate) (string, json.RawMessage) {
	switch player.Prompt.Kind {
	case hitler.PlayerPromptVote:
		if board.ElectionTracker >= 2 {
			// A third failed vote forces the top policy through
			// unchecked; nobody wants that, so fall in line.
			return "CastVote", marshal(actionPayload{Ja: true})
		}
		return "CastVote", marshal(actionPayload{Ja: voteHeuristic(seat, player, board)})
	case hitler.PlayerPromptFilterCards:
		return filterCardsOp(len(player.Prompt.Cards)), marshal(actionPayload{Card: pickCardEndgameAware(seat, player, board)})
	default:
		return MediumStrategy{}.Decide(seat, player, board)
	}
}

// pickCardEndgameAware plays MediumStrategy's card choice, except a
// fascist holding the deciding vote near a fascist win pushes the
// winning policy through instead of stalling for cover.
func pickCardEndgameAware(seat int, player hitler.PlayerUpdate, board hitler.BoardUpdate) int {
	if player.Role.Party() == hitler.PartyFascist && board.FascistCards >= 4 {
		cards := player.Prompt.Cards
		discarding := len(cards) == 3
		for i, c := range cards {
			// Enacting: take a fascist card. Discarding: drop a non-fascist one.
			if (c == hitler.PartyFascist) != discarding {
				return i
			}
		}
	}
	return pickCard(seat, player)
}
