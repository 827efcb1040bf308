package bot

import (
	"encoding/json"

	"github.com/efreeman/hitler-xl/api/pkg/hitler"
)

// Strategy picks a response to whatever a seat is currently being asked
// to do, the way the teacher's strategy_easy.go/strategy_medium.go pick
// orders from a diplomacy.GameState. Decide returns an empty operation
// when the seat has nothing to do (player.Prompt.Kind is
// PlayerPromptNone, or the prompt kind isn't one a bot answers).
type Strategy interface {
	Decide(seat int, player hitler.PlayerUpdate, board hitler.BoardUpdate) (operation string, payload json.RawMessage)
}

// ForDifficulty resolves the named difficulty tier to a Strategy,
// defaulting unknown values to the easy tier.
func ForDifficulty(difficulty string) Strategy {
	switch difficulty {
	case "hard":
		return HardStrategy{}
	case "medium":
		return MediumStrategy{}
	default:
		return EasyStrategy{}
	}
}

type actionPayload struct {
	Chancellor int  `json:"chancellor"`
	Ja         bool `json:"ja"`
	Card       int  `json:"card"`
	Target     int  `json:"target"`
}

func marshal(p actionPayload) json.RawMessage {
	b, _ := json.Marshal(p)
	return b
}

// confirmOp resolves the zero-argument confirmation call for whichever
// phase is showing, since PlayerPromptConfirm is shared by five
// distinct board-wide prompts.
func confirmOp(board hitler.BoardUpdate) string {
	switch board.Prompt.Kind {
	case hitler.PromptCardReveal:
		return "EndCardReveal"
	case hitler.PromptCommunistStart:
		return "EndCommunistStart"
	case hitler.PromptCongress:
		return "EndCongress"
	case hitler.PromptCommunistEnd:
		return "EndCommunistEnd"
	case hitler.PromptActionReveal:
		return "EndExecutiveAction"
	default:
		return "EndCardReveal"
	}
}

// filterCardsOp tells apart the president's three-card discard from the
// chancellor's two-card enactment; both share PlayerPromptFilterCards.
func filterCardsOp(numCards int) string {
	if numCards == 3 {
		return "DiscardPolicy"
	}
	return "EnactPolicy"
}
