package bot

import (
	"encoding/json"

	"github.com/efreeman/hitler-xl/api/pkg/hitler"
)

// MediumStrategy weighs votes and nominations by party allegiance and
// whatever investigation knowledge the seat has accumulated, the way the
// teacher's strategy_medium.go scores orders instead of picking them
// uniformly.
type MediumStrategy struct{}

func (MediumStrategy) Decide(seat int, player hitler.PlayerUpdate, board hitler.BoardUpdate) (string, json.RawMessage) {
	switch player.Prompt.Kind {
	case hitler.PlayerPromptVote:
		return "CastVote", marshal(actionPayload{Ja: voteHeuristic(seat, player, board)})
	case hitler.PlayerPromptNominate:
		choices := player.Prompt.Eligible.Indices()
		if len(choices) == 0 {
			return "", nil
		}
		return "Nominate", marshal(actionPayload{Chancellor: pickNominee(seat, player, choices)})
	case hitler.PlayerPromptFilterCards:
		return filterCardsOp(len(player.Prompt.Cards)), marshal(actionPayload{Card: pickCard(seat, player)})
	case hitler.PlayerPromptChoosePlayer:
		choices := player.Prompt.Eligible.Indices()
		if len(choices) == 0 {
			return "", nil
		}
		return "ChoosePlayer", marshal(actionPayload{Target: pickTarget(seat, player, choices)})
	default:
		return EasyStrategy{}.Decide(seat, player, board)
	}
}

// suspicion scores how fascist a seat looks to the deciding player:
// known role/party beats no information, and fascists/Hitler trust
// other fascists they recognize as such.
func suspicion(player hitler.PlayerUpdate, target int) int {
	if target < 0 || target >= hitler.MaxPlayers {
		return 0
	}
	known := player.Others[target]
	switch known.Kind {
	case hitler.KnowledgeRole:
		if known.Role == hitler.RoleLiberal {
			return -2
		}
		return 2
	case hitler.KnowledgeParty:
		if known.Party == hitler.PartyLiberal {
			return -1
		}
		return 1
	default:
		return 0
	}
}

// voteHeuristic implements the liberal-distrust / fascist-solidarity
// split the bot strategy section describes: liberals vote down anyone
// they have reason to believe is fascist, fascists vote up anyone they
// recognize as a teammate.
func voteHeuristic(seat int, player hitler.PlayerUpdate, board hitler.BoardUpdate) bool {
	score := suspicion(player, board.Prompt.President) + suspicion(player, board.Prompt.Chancellor)
	if player.Role.Party() != hitler.PartyLiberal {
		return score >= 0 || botFloat64() < 0.85
	}
	if score > 0 {
		return botFloat64() < 0.1
	}
	return botFloat64() < 0.7
}

// pickNominee favors a seat the nominator trusts: liberals look for the
// least suspicious candidate, fascists for a known ally.
func pickNominee(seat int, player hitler.PlayerUpdate, choices []int) int {
	best := choices[0]
	bestScore := suspicion(player, best)
	want := -1
	if player.Role.Party() != hitler.PartyLiberal {
		want = 1
	}
	for _, c := range choices[1:] {
		s := suspicion(player, c)
		if want < 0 && s < bestScore {
			best, bestScore = c, s
		} else if want > 0 && s > bestScore {
			best, bestScore = c, s
		}
	}
	return best
}

// pickCard chooses which policy to discard (president, 3 cards) or
// enact (chancellor, 2 cards): liberals keep liberal cards in play,
// fascists keep fascist ones.
func pickCard(seat int, player hitler.PlayerUpdate) int {
	cards := player.Prompt.Cards
	liberal := player.Role.Party() == hitler.PartyLiberal
	discarding := len(cards) == 3

	for i, c := range cards {
		wantDiscard := c != hitler.PartyLiberal
		if !liberal {
			wantDiscard = c == hitler.PartyLiberal
		}
		if discarding == wantDiscard {
			return i
		}
	}
	return botIntn(len(cards))
}

// pickTarget chooses a ChoosePlayer response (investigation, execution,
// special election, bullet, radicalisation): liberals aim at whoever
// looks most fascist, fascists protect allies by aiming at liberals.
func pickTarget(seat int, player hitler.PlayerUpdate, choices []int) int {
	best := choices[0]
	bestScore := suspicion(player, best)
	liberal := player.Role.Party() == hitler.PartyLiberal
	for _, c := range choices[1:] {
		s := suspicion(player, c)
		if liberal && s > bestScore {
			best, bestScore = c, s
		} else if !liberal && s < bestScore {
			best, bestScore = c, s
		}
	}
	return best
}
