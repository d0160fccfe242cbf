package outreach

import (
	"context"
	"fmt"
	"io"

	domain "github.com/mohammadpnp/outreach-import/internal/domain/outreach"
)

type ImportSource interface {
	Open(ctx context.Context, sourceKey string) (io.ReadCloser, error)
}

// SheetParser turns uploaded content into rows. Parsing must be
// deterministic because every VALIDATE invocation parses the file again.
type SheetParser interface {
	Parse(ctx context.Context, sourceKey string, r io.Reader) (domain.Sheet, error)
}

func loadSheet(ctx context.Context, source ImportSource, parser SheetParser, sourceKey string) (domain.Sheet, error) {
	reader, err := source.Open(ctx, sourceKey)
	if err != nil {
		return domain.Sheet{}, fmt.Errorf("open import source: %w", err)
	}
	defer reader.Close()

	sheet, err := parser.Parse(ctx, sourceKey, reader)
	if err != nil {
		return domain.Sheet{}, fmt.Errorf("parse import source: %w", err)
	}
	return sheet, nil
}
