package bot

import (
	"encoding/json"

	"github.com/efreeman/hitler-xl/api/pkg/hitler"
)

// EasyStrategy picks uniformly among legal responses, with no regard for
// role or board state. A baseline opponent, not a convincing one.
type EasyStrategy struct{}

func (EasyStrategy) Decide(seat int, player hitler.PlayerUpdate, board hitler.BoardUpdate) (string, json.RawMessage) {
	switch player.Prompt.Kind {
	case hitler.PlayerPromptConfirmNight:
		return "ConfirmNight", nil
	case hitler.PlayerPromptNominate:
		choices := player.Prompt.Eligible.Indices()
		if len(choices) == 0 {
			return "", nil
		}
		return "Nominate", marshal(actionPayload{Chancellor: choices[botIntn(len(choices))]})
	case hitler.PlayerPromptVote:
		return "CastVote", marshal(actionPayload{Ja: botFloat64() < 0.5})
	case hitler.PlayerPromptFilterCards:
		return filterCardsOp(len(player.Prompt.Cards)), marshal(actionPayload{Card: botIntn(len(player.Prompt.Cards))})
	case hitler.PlayerPromptVetoApproval:
		if botFloat64() < 0.5 {
			return "ApproveVeto", nil
		}
		return "RejectVeto", nil
	case hitler.PlayerPromptChoosePlayer:
		choices := player.Prompt.Eligible.Indices()
		if len(choices) == 0 {
			return "", nil
		}
		return "ChoosePlayer", marshal(actionPayload{Target: choices[botIntn(len(choices))]})
	case hitler.PlayerPromptCallMonarchistElection:
		// The engine exposes no eligibility list for this prompt, so
		// guessing a chancellor risks an illegal nomination; decline is
		// always legal.
		return "DeclineMonarchist", nil
	case hitler.PlayerPromptConfirm:
		return confirmOp(board), nil
	default:
		return "", nil
	}
}
