package hitler

// Confirmations tracks which living players have acknowledged a reveal
// screen (card reveal, executive action result, and so on) before the
// engine advances past it. With Options.FastConsensus set, a single
// confirmation from any player is sufficient — this replaces the
// original implementation's environment-variable "quick mode" switch
// with an explicit, per-game option (§9 REDESIGN FLAGS).
type Confirmations struct {
	confirmed [MaxPlayers]bool
	fast      bool
}

func newConfirmations(fast bool) Confirmations {
	return Confirmations{fast: fast}
}

// Confirm records that seat i has acknowledged.
func (c *Confirmations) Confirm(i int) {
	if i >= 0 && i < len(c.confirmed) {
		c.confirmed[i] = true
	}
}

// CanProceed reports whether enough players have confirmed to advance,
// given the set of players still alive.
func (c *Confirmations) CanProceed(players []Player) bool {
	if c.fast {
		for i := range c.confirmed {
			if c.confirmed[i] {
				return true
			}
		}
		return false
	}
	for i := range players {
		if players[i].Alive && !c.confirmed[i] {
			return false
		}
	}
	return true
}

// Votes tallies a ja/nein vote from every living player.
type Votes struct {
	cast [MaxPlayers]*bool
}

func newVotes() Votes {
	return Votes{}
}

// Cast records seat i's vote, overwriting any prior vote from that seat.
func (v *Votes) Cast(i int, ja bool) {
	if i >= 0 && i < len(v.cast) {
		b := ja
		v.cast[i] = &b
	}
}

// AllCast reports whether every living player has voted.
func (v *Votes) AllCast(players []Player) bool {
	for i := range players {
		if players[i].Alive && v.cast[i] == nil {
			return false
		}
	}
	return true
}

// Tally returns the ja and nein counts among living players.
func (v *Votes) Tally(players []Player) (ja, nein int) {
	for i := range players {
		if !players[i].Alive || v.cast[i] == nil {
			continue
		}
		if *v.cast[i] {
			ja++
		} else {
			nein++
		}
	}
	return ja, nein
}

// Passed reports whether the vote passed (strict ja majority).
func (v *Votes) Passed(players []Player) bool {
	ja, nein := v.Tally(players)
	return ja > nein
}

// MonarchistVotes is the tie-break variant used when a Monarchist is in
// play: on an exact tie, the Monarchist's own vote decides the outcome
// instead of the government failing, per the original implementation.
type MonarchistVotes struct {
	Votes
	monarchist int
}

func newMonarchistVotes(monarchistSeat int) MonarchistVotes {
	return MonarchistVotes{Votes: newVotes(), monarchist: monarchistSeat}
}

// Passed reports the vote outcome, breaking an exact tie using the
// Monarchist's own cast vote (treated as failing if the Monarchist
// abstained or is no longer alive to have voted).
func (v *MonarchistVotes) Passed(players []Player) bool {
	ja, nein := v.Tally(players)
	if ja != nein {
		return ja > nein
	}
	if v.monarchist < 0 || v.monarchist >= len(v.cast) || v.cast[v.monarchist] == nil {
		return false
	}
	return *v.cast[v.monarchist]
}
