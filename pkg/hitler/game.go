package hitler

import "math/rand"

// Game is the full state of one Secret Hitler XL match: a
// deterministic, I/O-free state machine advanced by the methods below.
// Every operation either commits a full (old state, event) -> new state
// transition or returns a sentinel error with the receiver left
// untouched, mirroring pkg/diplomacy's GameState contract. The random
// source and the term-limit, special-role and pending-power bookkeeping
// are unexported, so a Game does not round-trip through encoding/json.
type Game struct {
	Options        Options
	Distribution   Distribution
	Board          Board
	Deck           Deck
	Players        []Player
	Government        Government
	lastGovernment    Government
	hasLastGovernment bool
	termLimited       int // seat ineligible as chancellor by term limit, -1 if none

	ElectionTracker int
	Phase           Phase

	anarchistSeat      int // -1 if no Anarchist in play
	monarchistSeat     int
	capitalistUsed     bool
	pendingCommunistGo bool // set when a communist reveal should gate a capitalist execution (§4.9)

	pendingAction     *ExecutiveAction // power unlocked by the card currently on CardRevealPhase, if any
	pendingGovernment Government

	rng  *rand.Rand
	seed int64
}

// New constructs a fresh game: assigns roles, seeds player knowledge,
// builds the board and deck for the configured player count, and enters
// NightPhase. The same (options, playerNames, seed) always produces an
// identical initial Game (§5 replay-equivalence).
func New(options Options, playerNames []string, seed int64) (*Game, error) {
	dist, err := NewDistribution(options, len(playerNames))
	if err != nil {
		return nil, err
	}

	rng := newRandSource(seed)
	roles := assignRoles(dist, rng)

	players := make([]Player, len(playerNames))
	anarchistSeat := -1
	monarchistSeat := -1
	for i, name := range playerNames {
		players[i] = newPlayer(name, roles[i])
		switch roles[i] {
		case RoleAnarchist:
			anarchistSeat = i
		case RoleMonarchist:
			monarchistSeat = i
		}
	}
	seedKnowledge(players)

	g := &Game{
		Options:        options,
		Distribution:   dist,
		Board:          newBoard(len(players)),
		Deck:           newDeck(options.Communists),
		Players:        players,
		termLimited:    -1,
		anarchistSeat:  anarchistSeat,
		monarchistSeat: monarchistSeat,
		rng:            rng,
		seed:           seed,
	}
	g.Deck.Shuffle(&g.Board, g.rng)
	g.Phase = NightPhase{Confirmations: newConfirmations(options.FastConsensus)}
	return g, nil
}

func (g *Game) livingCount() int {
	n := 0
	for i := range g.Players {
		if g.Players[i].Alive {
			n++
		}
	}
	return n
}

func (g *Game) nextPresident(from int) int {
	n := len(g.Players)
	for i := 1; i <= n; i++ {
		idx := (from + i) % n
		if g.Players[idx].Alive {
			return idx
		}
	}
	return from
}

func (g *Game) eligibleChancellors(president int) EligiblePlayers {
	b := newEligibleBuilder(g.Players).exclude(president)
	if g.termLimited >= 0 {
		b.exclude(g.termLimited)
	}
	if g.hasLastGovernment {
		b.exclude(g.lastGovernment.Chancellor)
		if g.livingCount() > 5 {
			b.exclude(g.lastGovernment.President)
		}
	}
	return b.make()
}

// ConfirmNight records that seat i has acknowledged their role reveal,
// transitioning to the first ElectionPhase once enough players have
// confirmed.
func (g *Game) ConfirmNight(seat int) error {
	night, ok := g.Phase.(NightPhase)
	if !ok {
		return ErrInvalidAction
	}
	night.Confirmations.Confirm(seat)
	if !night.Confirmations.CanProceed(g.Players) {
		g.Phase = night
		return nil
	}
	g.startElection(g.nextPresident(len(g.Players) - 1))
	return nil
}

func (g *Game) startElection(president int) {
	g.Phase = ElectionPhase{
		President:  president,
		Chancellor: -1,
		Nominating: true,
		Votes:      newVotes(),
		Eligible:   g.eligibleChancellors(president),
	}
}

// Nominate is called by the sitting president to propose a chancellor.
func (g *Game) Nominate(chancellor int) error {
	switch ph := g.Phase.(type) {
	case ElectionPhase:
		if !ph.Nominating || !ph.Eligible.Contains(chancellor) {
			return ErrInvalidPlayerChoice
		}
		ph.Chancellor = chancellor
		ph.Nominating = false
		g.Phase = ph
		return nil
	case MonarchistElectionPhase:
		if !ph.Nominating || !ph.Eligible.Contains(chancellor) {
			return ErrInvalidPlayerChoice
		}
		ph.Chancellor = chancellor
		ph.Nominating = false
		g.Phase = ph
		return nil
	default:
		return ErrInvalidAction
	}
}

// CastVote records seat i's ja/nein vote on the current nomination.
func (g *Game) CastVote(seat int, ja bool) error {
	switch ph := g.Phase.(type) {
	case ElectionPhase:
		if ph.Nominating || !g.Players[seat].Alive {
			return ErrInvalidAction
		}
		ph.Votes.Cast(seat, ja)
		g.Phase = ph
		return nil
	case MonarchistElectionPhase:
		if ph.Nominating || !g.Players[seat].Alive {
			return ErrInvalidAction
		}
		ph.Votes.Cast(seat, ja)
		g.Phase = ph
		return nil
	default:
		return ErrInvalidAction
	}
}

// EndVoting tallies the current election's ballots once every living
// player has voted, either seating the government or advancing the
// election tracker (and enacting the top deck card on chaos at 3).
func (g *Game) EndVoting() error {
	switch ph := g.Phase.(type) {
	case ElectionPhase:
		if !ph.Votes.AllCast(g.Players) {
			return ErrInvalidAction
		}
		if ph.Votes.Passed(g.Players) {
			g.seatGovernment(ph.President, ph.Chancellor)
			return nil
		}
		return g.failElection(ph.President)
	case MonarchistElectionPhase:
		if !ph.Votes.AllCast(g.Players) {
			return ErrInvalidAction
		}
		if ph.Votes.Passed(g.Players) {
			g.seatGovernment(ph.Monarchist, ph.Chancellor)
			return nil
		}
		return g.failElection(ph.President)
	default:
		return ErrInvalidAction
	}
}

func (g *Game) seatGovernment(president, chancellor int) {
	if chancellor == g.hitlerSeat() && g.Board.FascistCards >= 3 {
		g.Phase = GameOverPhase{Win: WinHitlerElected}
		return
	}
	g.lastGovernment = Government{President: president, Chancellor: chancellor}
	g.hasLastGovernment = true
	g.Government = g.lastGovernment
	g.ElectionTracker = 0
	cards := g.Deck.DrawThree()
	g.Phase = LegislativeSessionPhase{
		Government: g.Government,
		Turn:       TurnPresident{Cards: cards},
	}
}

func (g *Game) failElection(president int) error {
	g.ElectionTracker++
	if g.ElectionTracker >= 3 {
		g.ElectionTracker = 0
		g.lastGovernment = Government{}
		g.hasLastGovernment = false
		card := g.Deck.DrawOne()
		g.enactCard(card)
		if win, over := g.checkVictory(); over {
			g.Phase = GameOverPhase{Win: win}
			return nil
		}
		g.Phase = CardRevealPhase{
			Enacted:       card,
			Chaos:         true,
			Confirmations: newConfirmations(g.Options.FastConsensus),
		}
		return nil
	}
	g.startElection(g.nextPresident(president))
	return nil
}

func (g *Game) hitlerSeat() int {
	for i := range g.Players {
		if g.Players[i].Role == RoleHitler {
			return i
		}
	}
	return -1
}

// enactCard records one card of party p on the board and returns
// whether it was the track-completing card (informational only; the
// caller checks victory separately since chaos-enacted cards skip the
// executive-power trigger per §4.6).
func (g *Game) enactCard(p Party) bool {
	won := g.Board.IsWinningCard(p)
	g.Board.Play(p)
	return won
}

func (g *Game) checkVictory() (WinCondition, bool) {
	if party, ok := g.Board.CheckTracks(); ok {
		switch party {
		case PartyLiberal:
			return WinLiberalTrack, true
		case PartyFascist:
			return WinFascistTrack, true
		case PartyCommunist:
			return WinCommunistTrack, true
		}
	}
	return winNone, false
}

// DiscardPolicy is the president's action of discarding one of their
// three held cards. The chancellor never discards through it, not even
// after a rejected veto; they act through EnactPolicy.
func (g *Game) DiscardPolicy(card int) error {
	ls, ok := g.Phase.(LegislativeSessionPhase)
	if !ok {
		return ErrInvalidAction
	}
	switch turn := ls.Turn.(type) {
	case TurnPresident:
		if card < 0 || card > 2 {
			return ErrInvalidCard
		}
		remaining := [2]Party{}
		j := 0
		for i, c := range turn.Cards {
			if i == card {
				continue
			}
			remaining[j] = c
			j++
		}
		ls.Turn = TurnChancellor{Cards: remaining}
		g.Phase = ls
		return nil
	default:
		return ErrInvalidAction
	}
}

// EnactPolicy is the chancellor's action of enacting one of their two
// held cards (the other is discarded face down).
func (g *Game) EnactPolicy(card int) error {
	ls, ok := g.Phase.(LegislativeSessionPhase)
	if !ok {
		return ErrInvalidAction
	}
	turn, ok := ls.Turn.(TurnChancellor)
	if !ok || card < 0 || card > 1 {
		return ErrInvalidCard
	}
	enacted := turn.Cards[card]
	return g.finishLegislativeSession(enacted, ls.Government)
}

func (g *Game) finishLegislativeSession(enacted Party, gov Government) error {
	action, hasPower := g.Board.ExecutivePower(enacted)
	g.Board.Play(enacted)
	g.Deck.CheckShuffle(&g.Board, g.rng)

	if win, over := g.checkVictory(); over {
		g.Phase = GameOverPhase{Win: win}
		return nil
	}

	if !hasPower {
		g.Phase = CardRevealPhase{
			Enacted:       enacted,
			Confirmations: newConfirmations(g.Options.FastConsensus),
		}
		return nil
	}
	g.Phase = CardRevealPhase{
		Enacted:       enacted,
		Confirmations: newConfirmations(g.Options.FastConsensus),
	}
	g.pendingAction = &action
	g.pendingGovernment = gov
	return nil
}

// VetoAgenda lets the chancellor request a veto once the fascist track
// has unlocked it.
func (g *Game) VetoAgenda() error {
	ls, ok := g.Phase.(LegislativeSessionPhase)
	if !ok {
		return ErrInvalidAction
	}
	turn, ok := ls.Turn.(TurnChancellor)
	if !ok || !g.Board.VetoUnlocked() {
		return ErrInvalidAction
	}
	ls.Turn = TurnVetoRequested{Cards: turn.Cards}
	g.Phase = ls
	return nil
}

// ApproveVeto is the president's agreement to a requested veto: both
// cards are discarded and the election tracker advances as a failed
// government.
func (g *Game) ApproveVeto() error {
	ls, ok := g.Phase.(LegislativeSessionPhase)
	if !ok {
		return ErrInvalidAction
	}
	if _, ok := ls.Turn.(TurnVetoRequested); !ok {
		return ErrInvalidAction
	}
	return g.failElection(ls.Government.President)
}

// RejectVeto is the president's refusal of a requested veto: control
// reverts to the chancellor, who must enact one of the two cards.
func (g *Game) RejectVeto() error {
	ls, ok := g.Phase.(LegislativeSessionPhase)
	if !ok {
		return ErrInvalidAction
	}
	turn, ok := ls.Turn.(TurnVetoRequested)
	if !ok {
		return ErrInvalidAction
	}
	ls.Turn = TurnChancellor{Cards: turn.Cards}
	g.Phase = ls
	return nil
}

// pendingAction/pendingGovernment carry the executive power (if any)
// unlocked by the just-revealed card across CardReveal's confirmation
// gate, since CardRevealPhase itself only needs to show the card.
//
// (kept on Game rather than the phase so CardRevealPhase stays a pure
// display of the enacted card, matching the original implementation's
// separate BoardAction queue.)

// EndCardReveal advances past the reveal screen once confirmed. If a
// power was unlocked it starts that power; otherwise play returns to a
// new election (or the Monarchist prompt, if seated and eligible).
func (g *Game) EndCardReveal(seat int) error {
	cr, ok := g.Phase.(CardRevealPhase)
	if !ok {
		return ErrInvalidAction
	}
	cr.Confirmations.Confirm(seat)
	if !cr.Confirmations.CanProceed(g.Players) {
		g.Phase = cr
		return nil
	}
	if g.pendingAction != nil {
		action := *g.pendingAction
		gov := g.pendingGovernment
		g.pendingAction = nil
		return g.startExecutiveAction(action, gov)
	}
	g.advanceToNextElection()
	return nil
}

func (g *Game) advanceToNextElection() {
	if g.monarchistSeat >= 0 && g.Players[g.monarchistSeat].Alive {
		g.Phase = PromptMonarchistPhase{
			Monarchist: g.monarchistSeat,
			President:  g.nextPresident(g.Government.President),
		}
		return
	}
	g.startElection(g.nextPresident(g.Government.President))
}

// DeclineMonarchist lets the Monarchist pass on calling a special
// election, proceeding to a regular election instead.
func (g *Game) DeclineMonarchist() error {
	pm, ok := g.Phase.(PromptMonarchistPhase)
	if !ok {
		return ErrInvalidAction
	}
	g.startElection(pm.President)
	return nil
}

// CallMonarchistElection lets the Monarchist nominate their own
// chancellor to run against the sitting president.
func (g *Game) CallMonarchistElection(chancellor int) error {
	pm, ok := g.Phase.(PromptMonarchistPhase)
	if !ok {
		return ErrInvalidAction
	}
	eligible := g.eligibleChancellors(pm.President)
	if !eligible.Contains(chancellor) {
		return ErrInvalidPlayerChoice
	}
	g.Phase = MonarchistElectionPhase{
		Monarchist: pm.Monarchist,
		President:  pm.President,
		Chancellor: chancellor,
		Nominating: false,
		Votes:      newMonarchistVotes(pm.Monarchist),
		Eligible:   eligible,
	}
	return nil
}

func (g *Game) startExecutiveAction(action ExecutiveAction, gov Government) error {
	if action.isCommunistAction() {
		g.Phase = CommunistStartPhase{
			Action:        action,
			Confirmations: newConfirmations(g.Options.FastConsensus),
		}
		return nil
	}
	switch action {
	case ActionPolicyPeak, ActionBugging:
		g.Phase = ActionRevealPhase{
			Action:        action,
			Confirmations: newConfirmations(g.Options.FastConsensus),
		}
		return nil
	case ActionInvestigatePlayer:
		g.Phase = ChoosePlayerPhase{
			Kind:     ChooseInvestigate,
			Chooser:  gov.President,
			Eligible: newEligibleBuilder(g.Players).exclude(gov.President).notInvestigated().make(),
		}
		return nil
	case ActionSpecialElection:
		g.Phase = ChoosePlayerPhase{
			Kind:     ChooseSpecialElection,
			Chooser:  gov.President,
			Eligible: newEligibleBuilder(g.Players).exclude(gov.President).make(),
		}
		return nil
	case ActionExecution:
		g.Phase = ChoosePlayerPhase{
			Kind:     ChooseExecution,
			Chooser:  gov.President,
			Eligible: newEligibleBuilder(g.Players).exclude(gov.President).make(),
		}
		return nil
	case ActionConfession:
		g.Phase = ActionRevealPhase{
			Action:        action,
			Target:        gov.Chancellor,
			Confirmations: newConfirmations(g.Options.FastConsensus),
		}
		return nil
	default:
		g.advanceToNextElection()
		return nil
	}
}

// ChoosePlayer resolves a ChoosePlayerPhase by applying the choice's
// effect and moving to the appropriate follow-up phase.
func (g *Game) ChoosePlayer(target int) error {
	cp, ok := g.Phase.(ChoosePlayerPhase)
	if !ok {
		return ErrInvalidAction
	}
	if !cp.Eligible.Contains(target) {
		return ErrInvalidPlayerChoice
	}
	switch cp.Kind {
	case ChooseInvestigate:
		g.Players[target].Investigated = true
		investigator := cp.Chooser
		if g.Players[target].Role.Party() == PartyCommunist {
			g.Players[investigator].Others[target] = KnownParty(PartyCommunist)
		} else {
			g.Players[investigator].Others[target] = KnownParty(g.Players[target].Role.Party())
		}
		g.Phase = ActionRevealPhase{
			Action:        ActionInvestigatePlayer,
			Target:        target,
			Confirmations: newConfirmations(g.Options.FastConsensus),
		}
		return nil
	case ChooseSpecialElection:
		g.Phase = ActionRevealPhase{
			Action:        ActionSpecialElection,
			Target:        target,
			Confirmations: newConfirmations(g.Options.FastConsensus),
		}
		return nil
	case ChooseExecution:
		g.Players[target].kill()
		win, over := g.checkHitlerExecuted(target)
		if over {
			g.Phase = GameOverPhase{Win: win}
			return nil
		}
		g.Phase = ActionRevealPhase{
			Action:        ActionExecution,
			Target:        target,
			Confirmations: newConfirmations(g.Options.FastConsensus),
		}
		return nil
	case ChooseRadicalisation:
		g.Players[target].radicalise()
		g.Phase = CommunistEndPhase{
			Action:        ActionRadicalisation,
			Confirmations: newConfirmations(g.Options.FastConsensus),
		}
		return nil
	case ChooseAssassinationTarget:
		g.Players[target].kill()
		if g.Players[target].Role == RoleCapitalist {
			g.Phase = GameOverPhase{Win: WinCapitalistExecuted}
			return nil
		}
		g.advanceToNextElection()
		return nil
	default:
		return ErrInvalidAction
	}
}

func (g *Game) checkHitlerExecuted(target int) (WinCondition, bool) {
	if g.Players[target].Role == RoleHitler {
		return WinHitlerExecuted, true
	}
	return winNone, false
}

// EndExecutiveAction advances past an ActionRevealPhase once confirmed.
func (g *Game) EndExecutiveAction(seat int) error {
	ar, ok := g.Phase.(ActionRevealPhase)
	if !ok {
		return ErrInvalidAction
	}
	ar.Confirmations.Confirm(seat)
	if !ar.Confirmations.CanProceed(g.Players) {
		g.Phase = ar
		return nil
	}
	if ar.Action == ActionSpecialElection {
		g.startSpecialElectionFor(ar.Target)
		return nil
	}
	g.advanceToNextElection()
	return nil
}

func (g *Game) startSpecialElectionFor(president int) {
	g.Government.President = president
	g.startElection(president)
}

// StartSpecialElection is the alias entry point named directly in the
// operation list; it is equivalent to resolving the pending
// ActionRevealPhase for ActionSpecialElection.
func (g *Game) StartSpecialElection(seat int) error {
	return g.EndExecutiveAction(seat)
}

// EndCommunistStart advances past a CommunistStartPhase once confirmed,
// entering the phase that resolves the specific communist power.
func (g *Game) EndCommunistStart(seat int) error {
	cs, ok := g.Phase.(CommunistStartPhase)
	if !ok {
		return ErrInvalidAction
	}
	cs.Confirmations.Confirm(seat)
	if !cs.Confirmations.CanProceed(g.Players) {
		g.Phase = cs
		return nil
	}
	switch cs.Action {
	case ActionRadicalisation:
		g.Phase = ChoosePlayerPhase{
			Kind:     ChooseRadicalisation,
			Chooser:  g.Government.President,
			Eligible: newEligibleBuilder(g.Players).exclude(g.Government.President).canRadicalise().make(),
		}
	case ActionFiveYearPlan:
		g.Deck.FiveYearPlan(g.rng)
		g.Phase = CommunistEndPhase{
			Action:        ActionFiveYearPlan,
			Confirmations: newConfirmations(g.Options.FastConsensus),
		}
	case ActionCongress:
		g.Phase = CongressPhase{
			Eligible:      newEligibleBuilder(g.Players).ordinaryCommunist().make(),
			Confirmations: newConfirmations(g.Options.FastConsensus),
		}
	default:
		g.advanceToNextElection()
	}
	return nil
}

// EndCongress advances past a CongressPhase once confirmed.
func (g *Game) EndCongress(seat int) error {
	c, ok := g.Phase.(CongressPhase)
	if !ok {
		return ErrInvalidAction
	}
	c.Confirmations.Confirm(seat)
	if !c.Confirmations.CanProceed(g.Players) {
		g.Phase = c
		return nil
	}
	g.Phase = CommunistEndPhase{
		Action:        ActionCongress,
		Confirmations: newConfirmations(g.Options.FastConsensus),
	}
	return nil
}

// EndCommunistEnd advances past a CommunistEndPhase once confirmed,
// returning control to the next election.
func (g *Game) EndCommunistEnd(seat int) error {
	ce, ok := g.Phase.(CommunistEndPhase)
	if !ok {
		return ErrInvalidAction
	}
	ce.Confirmations.Confirm(seat)
	if !ce.Confirmations.CanProceed(g.Players) {
		g.Phase = ce
		return nil
	}
	g.advanceToNextElection()
	return nil
}

// StartAssassination lets the seated Anarchist open their assassination
// choice, available independently of the board's policy thresholds
// (§4.8). It is accepted whenever the Anarchist is alive, in any phase;
// earlier uses are not tracked, so it is not limited to once per game.
func (g *Game) StartAssassination() error {
	if g.anarchistSeat < 0 || !g.Players[g.anarchistSeat].Alive {
		return ErrInvalidAction
	}
	g.Phase = AssassinationPhase{
		Anarchist: g.anarchistSeat,
		Eligible:  newEligibleBuilder(g.Players).exclude(g.anarchistSeat).make(),
	}
	return nil
}

// HijackSpecialElection resolves an AssassinationPhase: the chosen target
// dies (the game ends if it was the Capitalist), then play moves on to
// the next election. It does not touch any special election nomination.
func (g *Game) HijackSpecialElection(target int) error {
	ap, ok := g.Phase.(AssassinationPhase)
	if !ok {
		return ErrInvalidAction
	}
	if !ap.Eligible.Contains(target) {
		return ErrInvalidPlayerChoice
	}
	g.Players[target].kill()
	if g.Players[target].Role == RoleCapitalist {
		g.Phase = GameOverPhase{Win: WinCapitalistExecuted}
		return nil
	}
	g.advanceToNextElection()
	return nil
}
