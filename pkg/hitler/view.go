package hitler

// BoardUpdate is the public, game-wide projection sent to every
// observer: nothing in it varies by who is asking (contrast
// PlayerUpdate, which does). Grounded on the original implementation's
// get_board_update/BoardUpdate.
type BoardUpdate struct {
	NumPlayers      int
	LiberalCards    int
	FascistCards    int
	CommunistCards  int
	ElectionTracker int
	DeckCount       int
	Players         []PublicPlayer
	Prompt          BoardPrompt
}

// PublicPlayer is everything about a seat visible to every observer
// regardless of role: name and life/death status, never the role itself.
type PublicPlayer struct {
	Name  string
	Alive bool
	// NotHitler is revealed once a non-Hitler player dies (§4.9 item 1);
	// it is the only role information ever made globally public.
	NotHitler bool
}

// BoardPromptKind tags which, if any, table-wide prompt is showing.
type BoardPromptKind int

const (
	PromptNone BoardPromptKind = iota
	PromptNightWait
	PromptNominate
	PromptVote
	PromptLegislativePresident
	PromptLegislativeChancellor
	PromptVetoApproval
	PromptCardReveal
	PromptMonarchistChoice
	PromptCommunistStart
	PromptChoosePlayer
	PromptCongress
	PromptCommunistEnd
	PromptActionReveal
	PromptAssassination
	PromptGameOver
)

// BoardPrompt describes what the table is waiting on, parallel to the
// original implementation's BoardPrompt enum.
type BoardPrompt struct {
	Kind       BoardPromptKind
	President  int
	Chancellor int
	Win        WinCondition
}

// GetBoardUpdate projects g into the observer-independent board view.
func (g *Game) GetBoardUpdate() BoardUpdate {
	players := make([]PublicPlayer, len(g.Players))
	for i, p := range g.Players {
		players[i] = PublicPlayer{Name: p.Name, Alive: p.Alive, NotHitler: p.NotHitler}
	}
	return BoardUpdate{
		NumPlayers:      len(g.Players),
		LiberalCards:    g.Board.LiberalCards,
		FascistCards:    g.Board.FascistCards,
		CommunistCards:  g.Board.CommunistCards,
		ElectionTracker: g.ElectionTracker,
		DeckCount:       g.Deck.Count(),
		Players:         players,
		Prompt:          g.getBoardPrompt(),
	}
}

func (g *Game) getBoardPrompt() BoardPrompt {
	switch ph := g.Phase.(type) {
	case NightPhase:
		return BoardPrompt{Kind: PromptNightWait}
	case ElectionPhase:
		if ph.Nominating {
			return BoardPrompt{Kind: PromptNominate, President: ph.President}
		}
		return BoardPrompt{Kind: PromptVote, President: ph.President, Chancellor: ph.Chancellor}
	case MonarchistElectionPhase:
		if ph.Nominating {
			return BoardPrompt{Kind: PromptNominate, President: ph.Monarchist}
		}
		return BoardPrompt{Kind: PromptVote, President: ph.Monarchist, Chancellor: ph.Chancellor}
	case LegislativeSessionPhase:
		switch ph.Turn.(type) {
		case TurnPresident:
			return BoardPrompt{Kind: PromptLegislativePresident, President: ph.Government.President}
		case TurnChancellor:
			return BoardPrompt{Kind: PromptLegislativeChancellor, Chancellor: ph.Government.Chancellor}
		case TurnVetoRequested:
			return BoardPrompt{Kind: PromptVetoApproval, President: ph.Government.President}
		}
	case CardRevealPhase:
		return BoardPrompt{Kind: PromptCardReveal}
	case PromptMonarchistPhase:
		return BoardPrompt{Kind: PromptMonarchistChoice, President: ph.Monarchist}
	case CommunistStartPhase:
		return BoardPrompt{Kind: PromptCommunistStart}
	case ChoosePlayerPhase:
		return BoardPrompt{Kind: PromptChoosePlayer, President: ph.Chooser}
	case CongressPhase:
		return BoardPrompt{Kind: PromptCongress}
	case CommunistEndPhase:
		return BoardPrompt{Kind: PromptCommunistEnd}
	case ActionRevealPhase:
		return BoardPrompt{Kind: PromptActionReveal}
	case AssassinationPhase:
		return BoardPrompt{Kind: PromptAssassination, President: ph.Anarchist}
	case GameOverPhase:
		return BoardPrompt{Kind: PromptGameOver, Win: ph.Win}
	}
	return BoardPrompt{Kind: PromptNone}
}

// PlayerPromptKind tags what, if anything, a specific seat is being
// asked to do right now.
type PlayerPromptKind int

const (
	PlayerPromptNone PlayerPromptKind = iota
	PlayerPromptConfirmNight
	PlayerPromptNominate
	PlayerPromptVote
	PlayerPromptFilterCards
	PlayerPromptChoosePlayer
	PlayerPromptVetoApproval
	PlayerPromptConfirm
	PlayerPromptCallMonarchistElection
)

// PlayerPrompt is what seat `for` specifically is being asked to do,
// which may differ from every other seat's prompt even within the same
// phase (only the president sees FilterCards during TurnPresident).
type PlayerPrompt struct {
	Kind     PlayerPromptKind
	Cards    []Party
	Eligible EligiblePlayers
}

// PlayerUpdate is the full observer-specific projection for seat `for`:
// their own role, their others-view, and whatever the table-wide prompt
// resolves to for their seat specifically. Grounded on the original
// implementation's get_player_update.
type PlayerUpdate struct {
	Role   Role
	Others [MaxPlayers]InvestigationResult
	Prompt PlayerPrompt
}

// GetPlayerUpdate projects g into the view seat `for` should receive.
func (g *Game) GetPlayerUpdate(forSeat int) PlayerUpdate {
	p := g.Players[forSeat]
	return PlayerUpdate{
		Role:   p.Role,
		Others: p.Others,
		Prompt: g.getPlayerPrompt(forSeat),
	}
}

func (g *Game) getPlayerPrompt(seat int) PlayerPrompt {
	if !g.Players[seat].Alive {
		return PlayerPrompt{Kind: PlayerPromptNone}
	}
	switch ph := g.Phase.(type) {
	case NightPhase:
		return PlayerPrompt{Kind: PlayerPromptConfirmNight}
	case ElectionPhase:
		if ph.Nominating && seat == ph.President {
			return PlayerPrompt{Kind: PlayerPromptNominate, Eligible: ph.Eligible}
		}
		if !ph.Nominating {
			return PlayerPrompt{Kind: PlayerPromptVote}
		}
	case MonarchistElectionPhase:
		if ph.Nominating && seat == ph.Monarchist {
			return PlayerPrompt{Kind: PlayerPromptNominate, Eligible: ph.Eligible}
		}
		if !ph.Nominating {
			return PlayerPrompt{Kind: PlayerPromptVote}
		}
	case LegislativeSessionPhase:
		switch turn := ph.Turn.(type) {
		case TurnPresident:
			if seat == ph.Government.President {
				return PlayerPrompt{Kind: PlayerPromptFilterCards, Cards: turn.Cards[:]}
			}
		case TurnChancellor:
			if seat == ph.Government.Chancellor {
				return PlayerPrompt{Kind: PlayerPromptFilterCards, Cards: turn.Cards[:]}
			}
		case TurnVetoRequested:
			if seat == ph.Government.President {
				return PlayerPrompt{Kind: PlayerPromptVetoApproval}
			}
		}
	case CardRevealPhase:
		return PlayerPrompt{Kind: PlayerPromptConfirm}
	case PromptMonarchistPhase:
		if seat == ph.Monarchist {
			return PlayerPrompt{Kind: PlayerPromptCallMonarchistElection}
		}
	case CommunistStartPhase:
		return PlayerPrompt{Kind: PlayerPromptConfirm}
	case ChoosePlayerPhase:
		if seat == ph.Chooser {
			return PlayerPrompt{Kind: PlayerPromptChoosePlayer, Eligible: ph.Eligible}
		}
	case CongressPhase:
		return PlayerPrompt{Kind: PlayerPromptConfirm}
	case CommunistEndPhase:
		return PlayerPrompt{Kind: PlayerPromptConfirm}
	case ActionRevealPhase:
		return PlayerPrompt{Kind: PlayerPromptConfirm}
	case AssassinationPhase:
		if seat == ph.Anarchist {
			return PlayerPrompt{Kind: PlayerPromptChoosePlayer, Eligible: ph.Eligible}
		}
	}
	return PlayerPrompt{Kind: PlayerPromptNone}
}
