package hitler

import "math/rand"

// Deck is a finite ordered sequence of party cards plus the pool totals
// used to rebuild it on reshuffle (§4.2). The top of the deck is the end
// of the slice, matching the original implementation's pop-from-end draw.
type Deck struct {
	liberalPool   int
	fascistPool   int
	communistPool int
	cards         []Party
}

func newDeck(communists bool) Deck {
	if communists {
		return Deck{liberalPool: 6, fascistPool: 14, communistPool: 8}
	}
	return Deck{liberalPool: 6, fascistPool: 11}
}

// Count returns the number of cards remaining in the draw pile.
func (d *Deck) Count() int { return len(d.cards) }

// CheckShuffle reshuffles the deck from pool totals when fewer than three
// cards remain.
func (d *Deck) CheckShuffle(b *Board, rng *rand.Rand) {
	if len(d.cards) < 3 {
		d.Shuffle(b, rng)
	}
}

// Shuffle rebuilds the deck from (pool totals - cards already enacted on
// the board) and shuffles with rng. Cards currently held in a legislative
// hand are, by construction, never passed to Shuffle while still held
// (they are re-added to the board or discard accounting by the caller
// before the next shuffle can occur), so invariant 5 holds.
func (d *Deck) Shuffle(b *Board, rng *rand.Rand) {
	liberal := d.liberalPool - b.LiberalCards
	fascist := d.fascistPool - b.FascistCards
	communist := d.communistPool - b.CommunistCards

	d.cards = d.cards[:0]
	for i := 0; i < liberal; i++ {
		d.cards = append(d.cards, PartyLiberal)
	}
	for i := 0; i < fascist; i++ {
		d.cards = append(d.cards, PartyFascist)
	}
	for i := 0; i < communist; i++ {
		d.cards = append(d.cards, PartyCommunist)
	}
	rng.Shuffle(len(d.cards), func(i, j int) { d.cards[i], d.cards[j] = d.cards[j], d.cards[i] })
}

// FiveYearPlan increases the pool by two communist and one liberal card
// and shuffles them into the current deck (§4.7).
func (d *Deck) FiveYearPlan(rng *rand.Rand) {
	d.communistPool += 2
	d.liberalPool++
	d.cards = append(d.cards, PartyCommunist, PartyCommunist, PartyLiberal)
	rng.Shuffle(len(d.cards), func(i, j int) { d.cards[i], d.cards[j] = d.cards[j], d.cards[i] })
}

// DrawOne removes and returns the top card.
func (d *Deck) DrawOne() Party {
	top := d.cards[len(d.cards)-1]
	d.cards = d.cards[:len(d.cards)-1]
	return top
}

// DrawThree removes the top three cards, returning them top-first.
func (d *Deck) DrawThree() [3]Party {
	var out [3]Party
	for i := 0; i < 3; i++ {
		out[i] = d.cards[len(d.cards)-1]
		d.cards = d.cards[:len(d.cards)-1]
	}
	return out
}

// PeekThree observes the top three cards without mutating the deck.
func (d *Deck) PeekThree() [3]Party {
	var out [3]Party
	n := len(d.cards)
	out[0], out[1], out[2] = d.cards[n-1], d.cards[n-2], d.cards[n-3]
	return out
}
