// Package export serializes lead lists for download and spreadsheet paste.
// Both formatters are pure: identical input yields byte-identical output, and
// row order follows input order.
package export

import (
	"strings"

	"github.com/DeepakChander/leadmaster-ai-web/internal/model"
)

// Filename is the suggested download name for CSV exports.
const Filename = "leadmaster-leads.csv"

// SheetURL is the blank spreadsheet creation page opened after a TSV export.
const SheetURL = "https://sheet.new"

var headers = []string{"Name", "Address", "Phone", "Website", "Email", "Rating"}

// ToCSV renders leads as CSV. The header row is unquoted; every data field is
// double-quoted with embedded quotes doubled. Missing values render as empty
// strings. An empty list yields just the header row.
//
// The fixed always-quote-data format is part of the export contract, which is
// why this does not go through encoding/csv (that writer quotes minimally).
func ToCSV(leads []model.Lead) []byte {
	var b strings.Builder
	b.WriteString(strings.Join(headers, ","))
	for _, l := range leads {
		b.WriteByte('\n')
		for i, field := range fields(l) {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteByte('"')
			b.WriteString(strings.ReplaceAll(field, `"`, `""`))
			b.WriteByte('"')
		}
	}
	return []byte(b.String())
}

// ToTSV renders leads as tab-separated text for spreadsheet paste. No quoting
// is applied. An empty list yields just the header row.
func ToTSV(leads []model.Lead) string {
	var b strings.Builder
	b.WriteString(strings.Join(headers, "\t"))
	for _, l := range leads {
		b.WriteByte('\n')
		b.WriteString(strings.Join(fields(l), "\t"))
	}
	return b.String()
}

func fields(l model.Lead) []string {
	return []string{l.Name, l.Address, l.Phone, l.Website, l.Email, l.Rating}
}
