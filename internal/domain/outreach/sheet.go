package outreach

import (
	"fmt"
	"strings"
)

// Row is one data row keyed by header label. Labels keeps header order.
type Row struct {
	Number int
	Labels []string
	Values map[string]string
}

// Sheet is a parsed source file. Row numbers are 1-based and exclude the header.
type Sheet struct {
	Labels []string
	Rows   []Row
}

// NewRow maps ragged cells onto labels. Missing cells read as empty, extra
// cells beyond the header are dropped. Repeated labels are renamed with
// UniqueLabels so no cell is lost.
func NewRow(number int, labels []string, cells []string) Row {
	return newRow(number, UniqueLabels(labels), cells)
}

func newRow(number int, labels []string, cells []string) Row {
	values := make(map[string]string, len(labels))
	for i, label := range labels {
		var cell string
		if i < len(cells) {
			cell = cells[i]
		}
		values[label] = cell
	}
	return Row{Number: number, Labels: labels, Values: values}
}

// NewSheet builds a sheet from a header and raw records.
func NewSheet(header []string, records [][]string) Sheet {
	trimmed := make([]string, len(header))
	for i, h := range header {
		trimmed[i] = strings.TrimSpace(h)
	}
	labels := UniqueLabels(trimmed)

	rows := make([]Row, 0, len(records))
	for i, record := range records {
		rows = append(rows, newRow(i+1, labels, record))
	}
	return Sheet{Labels: labels, Rows: rows}
}

// UniqueLabels suffixes repeated labels in order: Email, Email_2, Email_3.
func UniqueLabels(labels []string) []string {
	out := make([]string, len(labels))
	taken := make(map[string]struct{}, len(labels))
	for _, label := range labels {
		taken[label] = struct{}{}
	}

	used := make(map[string]struct{}, len(labels))
	for i, label := range labels {
		name := label
		if _, dup := used[name]; dup {
			for n := 2; ; n++ {
				name = fmt.Sprintf("%s_%d", label, n)
				_, isUsed := used[name]
				_, isTaken := taken[name]
				if !isUsed && !isTaken {
					break
				}
			}
		}
		used[name] = struct{}{}
		out[i] = name
	}
	return out
}

// Window returns rows in [from, to) by zero-based offset, clamped to the sheet.
func (s Sheet) Window(from, to int64) []Row {
	n := int64(len(s.Rows))
	if from < 0 {
		from = 0
	}
	if to > n {
		to = n
	}
	if from >= to {
		return nil
	}
	return s.Rows[from:to]
}
