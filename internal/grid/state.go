// Package grid holds the marker's position, facing and timing, and the
// snapshot format used to carry them across a suspension.
package grid

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// DefaultMoveDelay is the time between advances unless configured otherwise.
const DefaultMoveDelay = 600 * time.Millisecond

// MaxMoveDelayMs is the largest delay in milliseconds a time.Duration holds.
const MaxMoveDelayMs = int64(math.MaxInt64 / time.Millisecond)

// Snapshot keys. Their order is the order of the persisted mapping.
const (
	KeyDirection   = "direction"
	KeyMoveDelay   = "moveDelayMs"
	KeyPositionCol = "positionCol"
	KeyPositionRow = "positionRow"
)

// Keys lists every key a snapshot must carry, in order.
var Keys = []string{KeyDirection, KeyMoveDelay, KeyPositionCol, KeyPositionRow}

var (
	ErrMissingField = errors.New("snapshot field missing")
	ErrInvalidField = errors.New("snapshot field invalid")
)

// MissingFieldError reports a snapshot without one of the required keys.
type MissingFieldError struct {
	Key string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("grid: snapshot field %q missing", e.Key)
}

func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingField
}

// InvalidFieldError reports a snapshot value that would break a state invariant.
type InvalidFieldError struct {
	Key   string
	Value int64
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("grid: snapshot field %q has invalid value %d", e.Key, e.Value)
}

func (e *InvalidFieldError) Is(target error) bool {
	return target == ErrInvalidField
}

// Snapshot is the persisted form of a State. Encoded as JSON it produces
// exactly the interchange object {"direction", "moveDelayMs", "positionCol", "positionRow"}.
type Snapshot map[string]int64

// State is the marker's grid state.
type State struct {
	Direction Direction
	Position  Position
	MoveDelay time.Duration
	LastMove  time.Time // zero until the first committed advance
}

// New returns a state with the default move delay.
func New() *State {
	return &State{MoveDelay: DefaultMoveDelay}
}

// Initialize places the marker on the start tile facing up and forgets the last move.
func (s *State) Initialize(startCol, startRow int) {
	s.Position = Position{Col: startCol, Row: startRow}
	s.Direction = Ascending
	s.LastMove = time.Time{}
}

// Due reports whether enough time has passed since the last advance.
func (s *State) Due(now time.Time) bool {
	if s.LastMove.IsZero() {
		return true
	}
	return now.Sub(s.LastMove) > s.MoveDelay
}

// Serialize captures the persisted fields.
func (s *State) Serialize() Snapshot {
	return Snapshot{
		KeyDirection:   int64(s.Direction),
		KeyMoveDelay:   s.MoveDelay.Milliseconds(),
		KeyPositionCol: int64(s.Position.Col),
		KeyPositionRow: int64(s.Position.Row),
	}
}

// Deserialize overwrites direction, delay and position from snap.
// Every key is checked before anything is written, so on error s is unchanged.
func (s *State) Deserialize(snap Snapshot) error {
	for _, key := range Keys {
		if _, ok := snap[key]; !ok {
			return &MissingFieldError{Key: key}
		}
	}
	dir := snap[KeyDirection]
	if dir != int64(Ascending) && dir != int64(Descending) {
		return &InvalidFieldError{Key: KeyDirection, Value: dir}
	}
	delay := snap[KeyMoveDelay]
	if delay <= 0 || delay > MaxMoveDelayMs {
		return &InvalidFieldError{Key: KeyMoveDelay, Value: delay}
	}
	for _, key := range []string{KeyPositionCol, KeyPositionRow} {
		if v := snap[key]; v < math.MinInt || v > math.MaxInt {
			return &InvalidFieldError{Key: key, Value: v}
		}
	}

	s.Direction = Direction(dir)
	s.MoveDelay = time.Duration(delay) * time.Millisecond
	s.Position = Position{
		Col: int(snap[KeyPositionCol]),
		Row: int(snap[KeyPositionRow]),
	}
	return nil
}
