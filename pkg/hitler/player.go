package hitler

// InvestigationKind distinguishes what, if anything, a player knows about
// another player.
type InvestigationKind int

const (
	KnowledgeUnknown InvestigationKind = iota
	KnowledgeParty
	KnowledgeRole
)

// InvestigationResult is one entry of a player's others-view: what that
// player currently knows about one other seat. Never regresses — once a
// living player's view of another becomes Party or Role, it is never
// overwritten with Unknown (see §8 Invariants).
type InvestigationResult struct {
	Kind  InvestigationKind
	Party Party
	Role  Role
}

// Unknown is the zero-knowledge InvestigationResult.
var Unknown = InvestigationResult{Kind: KnowledgeUnknown}

// Known reports full role knowledge of r.
func Known(r Role) InvestigationResult {
	return InvestigationResult{Kind: KnowledgeRole, Role: r, Party: r.Party()}
}

// KnownParty reports party-only knowledge.
func KnownParty(p Party) InvestigationResult {
	return InvestigationResult{Kind: KnowledgeParty, Party: p}
}

// Player is a single seat in the game: its name, role, and the mutable
// knowledge/status flags spec.md §3 describes.
type Player struct {
	Name              string
	Role              Role
	Others            [MaxPlayers]InvestigationResult
	Alive             bool
	NotHitler         bool // set true on death when role != Hitler; visible to all
	Investigated      bool // one-shot: true once InvestigatePlayer has targeted this player
	TriedToRadicalise bool // one-shot: true once a Radicalisation choice targeted this player; Congress never sets it
}

func newPlayer(name string, role Role) Player {
	return Player{
		Name:  name,
		Role:  role,
		Alive: true,
	}
}

// radicalise attempts to convert p to Communist. Always marks
// TriedToRadicalise; only flips the role for Liberal/Centrist targets.
// Returns true iff the conversion happened.
func (p *Player) radicalise() bool {
	p.TriedToRadicalise = true
	if p.Role == RoleLiberal || p.Role == RoleCentrist {
		p.Role = RoleCommunist
		return true
	}
	return false
}

// kill transitions p from alive to dead, applying the on-death side
// effect common to every cause (§4.9 item 1).
func (p *Player) kill() {
	p.Alive = false
	p.NotHitler = p.Role != RoleHitler
}
