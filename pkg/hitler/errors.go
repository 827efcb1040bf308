package hitler

import "errors"

// The closed set of rejections an engine operation can return. Every
// operation either commits fully or returns one of these with state
// unchanged; none are retried by the engine and none are logged here.
var (
	ErrInvalidGameOptions  = errors.New("hitler: invalid combination of game options")
	ErrGameNotFound        = errors.New("hitler: game does not exist")
	ErrTooFewPlayers       = errors.New("hitler: too few players for this configuration")
	ErrTooManyPlayers      = errors.New("hitler: too many players for this configuration")
	ErrPlayerNotFound      = errors.New("hitler: no player exists with the given name")
	ErrCannotJoinStarted   = errors.New("hitler: cannot join a game in progress")
	ErrInvalidPlayerChoice = errors.New("hitler: this player cannot be chosen for this action")
	ErrInvalidPlayerIndex  = errors.New("hitler: invalid player index")
	ErrInvalidAction       = errors.New("hitler: this action cannot be performed during this phase of the game")
	ErrInvalidCard         = errors.New("hitler: an invalid card was chosen")
)
