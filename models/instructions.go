package models

// InstructionSource records which path produced an instruction set
type InstructionSource string

const (
	InstructionSourceGenerated InstructionSource = "generated"
	InstructionSourceFallback  InstructionSource = "fallback"
)

// InstructionSet represents the guidance returned to the user.
// Steps is never empty and holds at most MaxInstructionSteps entries.
type InstructionSet struct {
	Summary string            `json:"summary"`
	Steps   []string          `json:"steps"`
	Source  InstructionSource `json:"source"`
}

// MaxInstructionSteps caps the number of steps in a single instruction set
const MaxInstructionSteps = 8
