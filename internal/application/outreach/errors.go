package outreach

import "errors"

var (
	ErrInvalidImportSource  = errors.New("invalid import source")
	ErrEnqueueImportJob     = errors.New("failed to enqueue import job")
	ErrInvalidJobID         = errors.New("invalid import job id")
	ErrInvalidAction        = errors.New("invalid import action")
	ErrInvalidItemStatus    = errors.New("invalid import item status")
	ErrImportJobNotFound    = errors.New("import job not found")
	ErrImportJobBusy        = errors.New("import job is being advanced by another caller")
	ErrValidationIncomplete = errors.New("import job validation is not complete")
	ErrAdvanceImportJob     = errors.New("failed to advance import job")
	ErrGetImportJob         = errors.New("failed to get import job")
	ErrListImportJobItems   = errors.New("failed to list import job items")
)
