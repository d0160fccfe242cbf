// Package tabular turns uploaded CSV and XLSX files into header-keyed rows.
package tabular

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	domain "github.com/mohammadpnp/outreach-import/internal/domain/outreach"
)

var ErrMalformedSource = errors.New("malformed import source")

// Parser picks the format from the source key extension. Anything that is
// not .xlsx is read as CSV.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(ctx context.Context, sourceKey string, r io.Reader) (domain.Sheet, error) {
	if strings.EqualFold(filepath.Ext(sourceKey), ".xlsx") {
		return ParseXLSX(ctx, r)
	}
	return ParseCSV(ctx, r)
}

// ParseCSV reads a header row followed by data rows. A leading UTF-8 BOM is
// dropped and rows may have any number of cells.
func ParseCSV(ctx context.Context, r io.Reader) (domain.Sheet, error) {
	br := stripUTF8BOM(bufio.NewReader(r))

	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return domain.Sheet{}, nil
		}
		return domain.Sheet{}, fmt.Errorf("%w: read header: %v", ErrMalformedSource, err)
	}

	var records [][]string
	for {
		if len(records)%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return domain.Sheet{}, err
			}
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return domain.Sheet{}, fmt.Errorf("%w: %v", ErrMalformedSource, err)
		}
		records = append(records, record)
	}

	return domain.NewSheet(header, records), nil
}

// ParseXLSX reads the first worksheet of a workbook.
func ParseXLSX(ctx context.Context, r io.Reader) (domain.Sheet, error) {
	file, err := excelize.OpenReader(r)
	if err != nil {
		return domain.Sheet{}, fmt.Errorf("%w: open workbook: %v", ErrMalformedSource, err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return domain.Sheet{}, fmt.Errorf("%w: workbook has no sheets", ErrMalformedSource)
	}

	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return domain.Sheet{}, fmt.Errorf("%w: read rows: %v", ErrMalformedSource, err)
	}
	if err := ctx.Err(); err != nil {
		return domain.Sheet{}, err
	}
	if len(rows) == 0 {
		return domain.Sheet{}, nil
	}

	return domain.NewSheet(rows[0], rows[1:]), nil
}

func stripUTF8BOM(r *bufio.Reader) *bufio.Reader {
	b, err := r.Peek(3)
	if err == nil && len(b) == 3 && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		_, _ = r.Discard(3)
	}
	return r
}
