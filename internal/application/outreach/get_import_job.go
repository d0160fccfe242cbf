package outreach

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	domain "github.com/mohammadpnp/outreach-import/internal/domain/outreach"
)

var jobIDPattern = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[1-5][0-9a-fA-F]{3}-[89abAB][0-9a-fA-F]{3}-[0-9a-fA-F]{12}$`)

type GetImportJobInput struct {
	ID string
}

type ImportJobOutput struct {
	ID                   string     `json:"id"`
	Status               string     `json:"status"`
	SourceKey            string     `json:"source_key"`
	TotalRows            int64      `json:"total_rows"`
	ProcessedRows        int64      `json:"processed_rows"`
	ValidEmails          int64      `json:"valid_emails"`
	InvalidEmails        int64      `json:"invalid_emails"`
	DuplicateInFile      int64      `json:"duplicate_in_file"`
	AlreadyExistsInDB    int64      `json:"already_exists_in_db"`
	TotalEmailsExtracted int64      `json:"total_emails_extracted"`
	CreatedInvites       int64      `json:"created_invites"`
	FailedCreates        int64      `json:"failed_creates"`
	ProcessedEmails      int64      `json:"processed_emails"`
	ValidationProgress   int        `json:"validation_progress"`
	ImportProgress       int        `json:"import_progress"`
	CompletedAt          *time.Time `json:"completed_at,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

func newImportJobOutput(job domain.ImportJob) ImportJobOutput {
	return ImportJobOutput{
		ID:                   job.ID,
		Status:               string(job.Status),
		SourceKey:            job.SourceKey,
		TotalRows:            job.TotalRows,
		ProcessedRows:        job.ProcessedRows,
		ValidEmails:          job.Counters.ValidEmails,
		InvalidEmails:        job.Counters.InvalidEmails,
		DuplicateInFile:      job.Counters.DuplicateInFile,
		AlreadyExistsInDB:    job.Counters.AlreadyExistsInDB,
		TotalEmailsExtracted: job.Counters.TotalEmailsExtracted,
		CreatedInvites:       job.Counters.CreatedInvites,
		FailedCreates:        job.Counters.FailedCreates,
		ProcessedEmails:      job.Counters.ProcessedEmails,
		ValidationProgress:   job.ValidationProgress(),
		ImportProgress:       job.ImportProgress(),
		CompletedAt:          job.CompletedAt,
		CreatedAt:            job.CreatedAt,
		UpdatedAt:            job.UpdatedAt,
	}
}

type GetImportJob interface {
	Execute(ctx context.Context, in GetImportJobInput) (ImportJobOutput, error)
}

type importJobGetter interface {
	Get(ctx context.Context, jobID string) (domain.ImportJob, error)
}

type getImportJob struct {
	repo importJobGetter
}

func NewGetImportJob(repo importJobGetter) GetImportJob {
	return &getImportJob{repo: repo}
}

func (uc *getImportJob) Execute(ctx context.Context, in GetImportJobInput) (ImportJobOutput, error) {
	jobID, err := parseJobID(in.ID)
	if err != nil {
		return ImportJobOutput{}, err
	}

	job, err := uc.repo.Get(ctx, jobID)
	if err != nil {
		if errors.Is(err, domain.ErrImportJobNotFound) {
			return ImportJobOutput{}, ErrImportJobNotFound
		}
		return ImportJobOutput{}, fmt.Errorf("%w: %v", ErrGetImportJob, err)
	}

	return newImportJobOutput(job), nil
}

func parseJobID(raw string) (string, error) {
	id := strings.TrimSpace(raw)
	if !jobIDPattern.MatchString(id) {
		return "", ErrInvalidJobID
	}
	return strings.ToLower(id), nil
}
