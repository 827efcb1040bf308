package hitler

// MaxPlayers bounds every fixed-capacity per-player array in the engine
// (confirmations, eligibility, ballots, others-views). Sized to exactly
// the largest supported game (16 players with communists enabled) so
// transitions never allocate and equality/serialization stay trivial.
const MaxPlayers = 16

// Party is the closed set of political alignments. Every Role maps to
// exactly one Party.
type Party int

const (
	PartyLiberal Party = iota
	PartyFascist
	PartyCommunist
)

func (p Party) String() string {
	switch p {
	case PartyLiberal:
		return "liberal"
	case PartyFascist:
		return "fascist"
	case PartyCommunist:
		return "communist"
	default:
		return "unknown"
	}
}

// Role is the closed set of roles a player may be dealt.
type Role int

const (
	RoleLiberal Role = iota
	RoleFascist
	RoleCommunist
	RoleHitler
	RoleMonarchist
	RoleAnarchist
	RoleCapitalist
	RoleCentrist
)

func (r Role) String() string {
	switch r {
	case RoleLiberal:
		return "liberal"
	case RoleFascist:
		return "fascist"
	case RoleCommunist:
		return "communist"
	case RoleHitler:
		return "hitler"
	case RoleMonarchist:
		return "monarchist"
	case RoleAnarchist:
		return "anarchist"
	case RoleCapitalist:
		return "capitalist"
	case RoleCentrist:
		return "centrist"
	default:
		return "unknown"
	}
}

// Party returns the political alignment of a role.
func (r Role) Party() Party {
	switch r {
	case RoleLiberal, RoleCapitalist, RoleCentrist:
		return PartyLiberal
	case RoleCommunist, RoleAnarchist:
		return PartyCommunist
	default:
		return PartyFascist
	}
}

// Options configures an optional feature set and behavioural flags for a
// new Game.
type Options struct {
	Communists bool
	Monarchist bool
	Anarchist  bool
	Capitalist bool
	Centrists  bool

	// FastConsensus shortens confirmation thresholds to "any single
	// player" instead of "all alive players", for development and tests.
	// Vote tallies do not consult it.
	// Replaces the original implementation's QUICK_MODE environment
	// variable with an explicit, engine-scoped option (see §9 DESIGN NOTES).
	FastConsensus bool
}

// Distribution is the computed role headcount for a given Options and
// player count.
type Distribution struct {
	NumPlayers int
	Liberals   int
	Fascists   int
	Communists int
	Hitler     bool
	Monarchist bool
	Anarchist  bool
	Capitalist bool
	Centrists  bool
}

// NewDistribution computes the role headcount for opts and numPlayers,
// or an error if the combination is not playable. Mirrors the arithmetic
// of the original PlayerDistribution::new.
func NewDistribution(opts Options, numPlayers int) (Distribution, error) {
	var fascists, communists, liberals int

	if opts.Communists {
		switch {
		case numPlayers < 6:
			return Distribution{}, ErrTooFewPlayers
		case numPlayers <= 7:
			fascists = 2
		case numPlayers <= 10:
			fascists = 3
		case numPlayers <= 14:
			fascists = 4
		case numPlayers <= 16:
			fascists = 5
		default:
			return Distribution{}, ErrTooManyPlayers
		}
		switch {
		case numPlayers <= 8:
			communists = 1
		case numPlayers <= 12:
			communists = 2
		case numPlayers <= 15:
			communists = 3
		case numPlayers == 16:
			communists = 4
		default:
			return Distribution{}, ErrTooManyPlayers
		}
	} else {
		switch {
		case numPlayers < 5:
			return Distribution{}, ErrTooFewPlayers
		case numPlayers <= 10:
			fascists = (numPlayers - 1) / 2
		default:
			return Distribution{}, ErrTooManyPlayers
		}
		communists = 0
	}
	liberals = numPlayers - (fascists + communists)

	// Subtract the special roles from their party's ordinary pool.
	fascists--          // Hitler
	if opts.Monarchist {
		fascists--
	}
	if opts.Anarchist {
		communists--
	}
	if opts.Capitalist {
		liberals--
	}
	if opts.Centrists {
		liberals -= 2
	}

	minCommunists := 0
	if opts.Communists {
		minCommunists = 1
	}
	if fascists < 1 || communists < minCommunists || liberals < 0 {
		return Distribution{}, ErrTooFewPlayers
	}

	return Distribution{
		NumPlayers: numPlayers,
		Liberals:   liberals,
		Fascists:   fascists,
		Communists: communists,
		Hitler:     true,
		Monarchist: opts.Monarchist,
		Anarchist:  opts.Anarchist,
		Capitalist: opts.Capitalist,
		Centrists:  opts.Centrists,
	}, nil
}

// assignRoles builds the shuffled role-per-seat assignment for a
// distribution using rng.
func assignRoles(d Distribution, rng randSource) []Role {
	roles := make([]Role, 0, d.NumPlayers)
	for i := 0; i < d.Fascists; i++ {
		roles = append(roles, RoleFascist)
	}
	for i := 0; i < d.Communists; i++ {
		roles = append(roles, RoleCommunist)
	}
	for i := 0; i < d.Liberals; i++ {
		roles = append(roles, RoleLiberal)
	}
	if d.Hitler {
		roles = append(roles, RoleHitler)
	}
	if d.Monarchist {
		roles = append(roles, RoleMonarchist)
	}
	if d.Anarchist {
		roles = append(roles, RoleAnarchist)
	}
	if d.Capitalist {
		roles = append(roles, RoleCapitalist)
	}
	if d.Centrists {
		roles = append(roles, RoleCentrist, RoleCentrist)
	}
	if len(roles) != d.NumPlayers {
		panic("hitler: role distribution does not sum to player count")
	}
	rng.Shuffle(len(roles), func(i, j int) { roles[i], roles[j] = roles[j], roles[i] })
	return roles
}

// seedKnowledge populates the initial others-view of every player
// following the frozen knowledge rules of §4.1. This is called once at
// setup; later radicalisation never rewrites it retroactively.
func seedKnowledge(players []Player) {
	n := len(players)

	fascistsKnowEachOther := n < 7
	var fascistIdx, hitlerIdx, monarchistIdx []int
	var communistIdx []int
	var centristIdx []int
	for i, p := range players {
		switch p.Role {
		case RoleFascist:
			fascistIdx = append(fascistIdx, i)
		case RoleHitler:
			hitlerIdx = append(hitlerIdx, i)
		case RoleMonarchist:
			monarchistIdx = append(monarchistIdx, i)
		case RoleCommunist, RoleAnarchist:
			communistIdx = append(communistIdx, i)
		case RoleCentrist:
			centristIdx = append(centristIdx, i)
		}
	}

	fascistTeam := append(append([]int{}, fascistIdx...), monarchistIdx...)
	for _, i := range fascistTeam {
		for _, j := range fascistTeam {
			if i == j {
				continue
			}
			players[i].Others[j] = Known(players[j].Role)
		}
		for _, h := range hitlerIdx {
			players[i].Others[h] = Known(RoleHitler)
		}
	}
	if fascistsKnowEachOther {
		for _, h := range hitlerIdx {
			for _, i := range fascistTeam {
				players[h].Others[i] = Known(players[i].Role)
			}
		}
	}

	if n >= 11 {
		for _, i := range communistIdx {
			for _, j := range communistIdx {
				if i != j {
					players[i].Others[j] = Known(players[j].Role)
				}
			}
		}
	}

	for _, i := range centristIdx {
		for _, j := range centristIdx {
			if i != j {
				players[i].Others[j] = Known(players[j].Role)
			}
		}
	}

	for i, p := range players {
		if p.Role != RoleCapitalist {
			continue
		}
		left := (i - 1 + n) % n
		right := (i + 1) % n
		players[i].Others[left] = KnownParty(players[left].Role.Party())
		players[i].Others[right] = KnownParty(players[right].Role.Party())
	}
}
