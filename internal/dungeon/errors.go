package dungeon

import "fmt"

// InvalidParameterError reports a bad generation parameter. It is returned
// before any randomness is consumed, so a rejected call never perturbs
// deterministic replay of later calls.
type InvalidParameterError struct {
	// Param is the offending parameter name.
	Param string
	// Reason describes the violation.
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s: %s", e.Param, e.Reason)
}

// GenerationTimeoutError reports that the BSP generator hit its depth bound
// without producing the minimum room count.
type GenerationTimeoutError struct {
	// MaxDepth is the configured recursion bound.
	MaxDepth int
	// RoomsPlaced is how many rooms were produced before giving up.
	RoomsPlaced int
	// RoomsRequired is the configured minimum.
	RoomsRequired int
}

func (e *GenerationTimeoutError) Error() string {
	return fmt.Sprintf("bsp generation exhausted depth %d with %d of %d required rooms",
		e.MaxDepth, e.RoomsPlaced, e.RoomsRequired)
}

// DisconnectedMapError reports that the cellular automata generator could not
// produce a playable connected floor area within its retry budget.
type DisconnectedMapError struct {
	// Attempts is the number of full generation attempts made.
	Attempts int
	// MinArea is the playable-area threshold that was never reached.
	MinArea int
}

func (e *DisconnectedMapError) Error() string {
	return fmt.Sprintf("cellular generation produced no playable area of at least %d tiles in %d attempts",
		e.MinArea, e.Attempts)
}

// PartialGenerationWarning signals that the simple random generator placed
// fewer rooms than requested before exhausting its attempt budget. It is not
// an error: the returned map is valid and connected, just sparser than asked.
type PartialGenerationWarning struct {
	// Requested is the target room count.
	Requested int
	// Placed is how many rooms were actually placed.
	Placed int
}

func (w PartialGenerationWarning) String() string {
	return fmt.Sprintf("placed %d of %d requested rooms before exhausting attempts", w.Placed, w.Requested)
}
