package hitler

// WinCondition is the closed set of ways a game can end (§4.10). Exactly
// one is recorded even when the enacting card completes one track while
// also satisfying another victory check; precedence is resolved by the
// order checkVictory evaluates them in, matching the original
// implementation's match arm ordering.
type WinCondition int

const (
	winNone WinCondition = iota
	WinLiberalTrack
	WinFascistTrack
	WinCommunistTrack
	WinHitlerElected
	WinHitlerExecuted
	WinCapitalistExecuted
)

func (w WinCondition) String() string {
	switch w {
	case WinLiberalTrack:
		return "liberalTrack"
	case WinFascistTrack:
		return "fascistTrack"
	case WinCommunistTrack:
		return "communistTrack"
	case WinHitlerElected:
		return "hitlerElected"
	case WinHitlerExecuted:
		return "hitlerExecuted"
	case WinCapitalistExecuted:
		return "capitalistExecuted"
	default:
		return "none"
	}
}

// Winners reports the party credited with the win. Every condition
// credits exactly one party: liberal track and Hitler executed credit
// the liberals, communist track and Capitalist executed the communists.
func (w WinCondition) Winners() []Party {
	switch w {
	case WinLiberalTrack, WinHitlerExecuted:
		return []Party{PartyLiberal}
	case WinFascistTrack, WinHitlerElected:
		return []Party{PartyFascist}
	case WinCommunistTrack, WinCapitalistExecuted:
		return []Party{PartyCommunist}
	default:
		return nil
	}
}
