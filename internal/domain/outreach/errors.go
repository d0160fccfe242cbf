package outreach

import "errors"

var (
	ErrImportJobNotFound   = errors.New("import job not found")
	ErrInstitutionNotFound = errors.New("institution not found")
	ErrInvitationNotFound  = errors.New("invitation not found")
	// ErrConcurrentUpdate means a guarded write found the row in a different
	// state than the caller observed; nothing was applied.
	ErrConcurrentUpdate = errors.New("concurrent update detected")
)
