package outreach

import "fmt"

const (
	reasonNoEmail       = "No valid email address found in row"
	reasonAlreadyExists = "Invitation already exists for this email"
)

type ClassifiedItem struct {
	RowNumber          int
	EmailRaw           string
	EmailNormalized    string
	InstitutionNameRaw string
	Status             ItemStatus
	Reason             string
}

// UniqueEmails returns every normalized email in rows, in first-seen order.
func UniqueEmails(rows []NormalizedRow) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, row := range rows {
		for _, email := range row.Emails {
			if _, ok := seen[email.Normalized]; ok {
				continue
			}
			seen[email.Normalized] = struct{}{}
			out = append(out, email.Normalized)
		}
	}
	return out
}

// Classify emits one item per (row, email) occurrence and one INVALID_EMAIL
// item per row without emails. rows must be in ascending row order.
//
// Precedence per occurrence: earlier chunk, earlier row of this chunk,
// existing invitation, otherwise VALID. The first unknown occurrence of an
// email takes the VALID slot.
func Classify(rows []NormalizedRow, priorRowOf map[string]int, existsInStore map[string]struct{}) []ClassifiedItem {
	seenInChunk := make(map[string]int)
	items := make([]ClassifiedItem, 0, len(rows))

	for _, row := range rows {
		if len(row.Emails) == 0 {
			items = append(items, ClassifiedItem{
				RowNumber:          row.RowNumber,
				InstitutionNameRaw: row.InstitutionName,
				Status:             ItemStatusInvalidEmail,
				Reason:             reasonNoEmail,
			})
			continue
		}

		for _, email := range row.Emails {
			item := ClassifiedItem{
				RowNumber:          row.RowNumber,
				EmailRaw:           email.Raw,
				EmailNormalized:    email.Normalized,
				InstitutionNameRaw: row.InstitutionName,
			}

			if prior, ok := priorRowOf[email.Normalized]; ok {
				item.Status = ItemStatusDuplicateInFile
				item.Reason = fmt.Sprintf("Duplicate of row %d", prior)
			} else if first, ok := seenInChunk[email.Normalized]; ok {
				item.Status = ItemStatusDuplicateInFile
				item.Reason = fmt.Sprintf("Duplicate of row %d in current batch", first)
			} else if _, ok := existsInStore[email.Normalized]; ok {
				item.Status = ItemStatusAlreadyExistsDB
				item.Reason = reasonAlreadyExists
				seenInChunk[email.Normalized] = row.RowNumber
			} else {
				item.Status = ItemStatusValid
				seenInChunk[email.Normalized] = row.RowNumber
			}

			items = append(items, item)
		}
	}

	return items
}

// TallyItems returns the counter increments a classified slice accounts for.
func TallyItems(items []ClassifiedItem) ImportCounters {
	var c ImportCounters
	for _, item := range items {
		switch item.Status {
		case ItemStatusValid:
			c.ValidEmails++
		case ItemStatusInvalidEmail:
			c.InvalidEmails++
		case ItemStatusDuplicateInFile:
			c.DuplicateInFile++
		case ItemStatusAlreadyExistsDB:
			c.AlreadyExistsInDB++
		}
		if item.EmailNormalized != "" {
			c.TotalEmailsExtracted++
		}
	}
	return c
}
