package outreach

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	domain "github.com/mohammadpnp/outreach-import/internal/domain/outreach"
)

var supportedSourceExtensions = map[string]struct{}{
	".csv":  {},
	".xlsx": {},
}

type StartOutreachImportInput struct {
	SourceKey string
}

type StartOutreachImportOutput struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

type StartOutreachImport interface {
	Execute(ctx context.Context, in StartOutreachImportInput) (StartOutreachImportOutput, error)
}

type importJobCreator interface {
	Create(ctx context.Context, sourceKey string) (domain.ImportJob, error)
}

type startOutreachImport struct {
	importJobRepo importJobCreator
}

func NewStartOutreachImport(importJobRepo importJobCreator) StartOutreachImport {
	return &startOutreachImport{importJobRepo: importJobRepo}
}

func (uc *startOutreachImport) Execute(ctx context.Context, in StartOutreachImportInput) (StartOutreachImportOutput, error) {
	sourceKey := strings.TrimSpace(in.SourceKey)
	if sourceKey == "" {
		return StartOutreachImportOutput{}, ErrInvalidImportSource
	}
	if _, ok := supportedSourceExtensions[strings.ToLower(filepath.Ext(sourceKey))]; !ok {
		return StartOutreachImportOutput{}, ErrInvalidImportSource
	}

	job, err := uc.importJobRepo.Create(ctx, sourceKey)
	if err != nil {
		return StartOutreachImportOutput{}, fmt.Errorf("%w: %v", ErrEnqueueImportJob, err)
	}

	return StartOutreachImportOutput{
		JobID:  job.ID,
		Status: string(job.Status),
	}, nil
}
