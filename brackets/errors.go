package brackets

import (
	"errors"
	"fmt"
	"strings"
)

// Code is a named engine error. Codes are compared by identity, so callers
// use errors.Is(err, brackets.ErrInvalidDrawSize).
type Code struct {
	name string
}

func (c *Code) Error() string { return c.name }

// Name returns the upper-case error name, e.g. "INVALID_DRAW_SIZE".
func (c *Code) Name() string { return c.name }

func newCode(name string) *Code { return &Code{name: name} }

var (
	// Отсутствуют обязательные входные данные
	ErrMissingDrawDefinition = newCode("MISSING_DRAW_DEFINITION")
	ErrMissingStructureID    = newCode("MISSING_STRUCTURE_ID")
	ErrMissingMatchUpID      = newCode("MISSING_MATCHUP_ID")
	ErrMissingMatchUps       = newCode("MISSING_MATCHUPS")
	ErrMissingValue          = newCode("MISSING_VALUE")
	ErrMissingDrawSize       = newCode("MISSING_DRAW_SIZE")
	ErrMissingTargetLink     = newCode("MISSING_TARGET_LINK")

	// Invalid shape or value
	ErrInvalidValues          = newCode("INVALID_VALUES")
	ErrInvalidDrawSize        = newCode("INVALID_DRAW_SIZE")
	ErrInvalidDrawType        = newCode("INVALID_DRAW_TYPE")
	ErrInvalidStructure       = newCode("INVALID_STRUCTURE")
	ErrInvalidTieFormat       = newCode("INVALID_TIE_FORMAT")
	ErrUnrecognizedDrawType   = newCode("UNRECOGNIZED_DRAW_TYPE")
	ErrInvalidMatchUpStatus   = newCode("INVALID_MATCHUP_STATUS")
	ErrInvalidWinningSide     = newCode("INVALID_WINNING_SIDE")
	ErrInvalidMatchUpFormat   = newCode("INVALID_MATCHUP_FORMAT")
	ErrDrawPositionAssigned   = newCode("DRAW_POSITION_ASSIGNED")
	ErrInvalidPlayoffPosition = newCode("INVALID_PLAYOFF_POSITION")

	// Not found
	ErrStructureNotFound = newCode("STRUCTURE_NOT_FOUND")
	ErrMatchUpNotFound   = newCode("MATCHUP_NOT_FOUND")

	// State conflicts
	ErrExistingStage               = newCode("EXISTING_STAGE")
	ErrScoresPresent               = newCode("SCORES_PRESENT")
	ErrIncompatibleMatchUpStatus   = newCode("INCOMPATIBLE_MATCHUP_STATUS")
	ErrIncompleteSourceStructure   = newCode("INCOMPLETE_SOURCE_STRUCTURE")
	ErrExistingPlayoffStructure    = newCode("EXISTING_PLAYOFF_STRUCTURE")
	ErrNoAvailableLuckyLoserTarget = newCode("NO_LUCKY_LOSER_TARGET")
)

// DrawError carries a Code with diagnostic detail. Stack lists the
// orchestration phases the error passed through, innermost first.
type DrawError struct {
	Code    *Code
	Info    string
	Context map[string]interface{}
	Stack   []string
}

func (e *DrawError) Error() string {
	var b strings.Builder
	b.WriteString(e.Code.name)
	if e.Info != "" {
		b.WriteString(": ")
		b.WriteString(e.Info)
	}
	if len(e.Stack) > 0 {
		fmt.Fprintf(&b, " [%s]", strings.Join(e.Stack, " > "))
	}
	return b.String()
}

func (e *DrawError) Unwrap() error { return e.Code }

func newError(code *Code, info string, kv ...interface{}) *DrawError {
	e := &DrawError{Code: code, Info: info}
	if len(kv) > 1 {
		e.Context = make(map[string]interface{}, len(kv)/2)
		for i := 0; i+1 < len(kv); i += 2 {
			key, ok := kv[i].(string)
			if !ok {
				continue
			}
			e.Context[key] = kv[i+1]
		}
	}
	return e
}

// Decorate attaches a stack label to err without changing its code. Non
// engine errors are wrapped in a DrawError with ErrInvalidValues.
func Decorate(err error, stack string) error {
	if err == nil {
		return nil
	}
	var de *DrawError
	if errors.As(err, &de) {
		de.Stack = append(de.Stack, stack)
		return de
	}
	var code *Code
	if errors.As(err, &code) {
		return &DrawError{Code: code, Stack: []string{stack}}
	}
	return &DrawError{Code: ErrInvalidValues, Info: err.Error(), Stack: []string{stack}}
}

// ErrorCode returns the engine code name carried by err, or "".
func ErrorCode(err error) string {
	var code *Code
	if errors.As(err, &code) {
		return code.name
	}
	return ""
}
