package engine

import "errors"

// Failure taxonomy of the editing and onboarding engines. Generation-class
// failures are always caught at the engine boundary: the document and the
// token ledger are left exactly as before the attempt, the busy flag is
// cleared, and one of these typed errors is returned for user messaging.
var (
	// ErrInsufficientTokens is a pre-flight policy rejection; no collaborator
	// call is made and nothing is debited.
	ErrInsufficientTokens = errors.New("insufficient tokens")

	// ErrGenerationFailed means the collaborator returned no usable result.
	// The same action can be retried; the engine never retries internally.
	ErrGenerationFailed = errors.New("generation failed")

	// ErrQuotaExceeded and ErrInvalidCredentials are collaborator-reported.
	// They are distinguished for user messaging but handled identically:
	// document and ledger unchanged.
	ErrQuotaExceeded      = errors.New("generation quota exceeded")
	ErrInvalidCredentials = errors.New("invalid generation credentials")

	// ErrUploadFailed is returned when storing a file failed and no inline
	// fallback was possible.
	ErrUploadFailed = errors.New("upload failed")

	// ErrStorageFailed marks persistence problems. Auto-save only logs it;
	// it never interrupts the user.
	ErrStorageFailed = errors.New("storage failed")

	// ErrBusy rejects a second generation/translation/image request while
	// one is already in flight.
	ErrBusy = errors.New("a generation request is already in flight")

	// ErrStaleResult marks a collaborator response that arrived after the
	// document it targeted was replaced; the result is discarded.
	ErrStaleResult = errors.New("stale generation result discarded")
)

// classifyGenerationError keeps collaborator-reported quota and credential
// failures distinguishable and folds everything else into
// ErrGenerationFailed.
func classifyGenerationError(err error) error {
	if errors.Is(err, ErrQuotaExceeded) || errors.Is(err, ErrInvalidCredentials) {
		return err
	}
	if errors.Is(err, ErrGenerationFailed) {
		return err
	}
	return errors.Join(ErrGenerationFailed, err)
}
