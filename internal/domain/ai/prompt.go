package ai

// Prompt is a versioned instruction. The text is configuration; swapping it
// must not change the reply contract beyond WithConfidence.
type Prompt struct {
	Version     string
	System      string
	Instruction string
	// WithConfidence asks the model for the optional confidence field.
	WithConfidence bool
}
