package petmoji

import "errors"

var (
	// ErrNoInput means no photo was supplied.
	ErrNoInput = errors.New("no photo supplied")
	// ErrInvalidInput means the upload is not an accepted image.
	ErrInvalidInput = errors.New("not an accepted image")
	// ErrNoOutput means the model replied with nothing usable.
	ErrNoOutput = errors.New("model returned no valid output")
	// ErrProvider means the call to the model failed.
	ErrProvider = errors.New("model call failed")
)

const (
	// ErrorTitle is the banner title for every failure.
	ErrorTitle = "Analysis failed"

	msgNoInput      = "No photo data provided."
	msgInvalidInput = "Please select an image file."
	msgAnalysis     = "Could not analyze the photo. Please try another one."
)

// ErrorKind is the short machine name of a failure, used in logs and audit rows.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNoInput):
		return "no_input"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrNoOutput):
		return "no_output"
	default:
		return "provider_error"
	}
}

// UserMessage maps any failure to the text shown to the user. Analysis
// failures all collapse into one message.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNoInput):
		return msgNoInput
	case errors.Is(err, ErrInvalidInput):
		return msgInvalidInput
	default:
		return msgAnalysis
	}
}

// IsInputError reports failures detected before the model is contacted.
func IsInputError(err error) bool {
	return errors.Is(err, ErrNoInput) || errors.Is(err, ErrInvalidInput)
}
