// Package export assembles the CSV download of the prospect list.
package export

import (
	"bytes"
	"encoding/csv"
	"time"

	"github.com/brickgo/crm-bfa-go/internal/domain"
	"github.com/brickgo/crm-bfa-go/internal/format"
)

// Header columns, in the order the dashboard export always used.
var csvHeader = []string{
	"Prénom", "Nom", "Entreprise", "Email", "Téléphone",
	"Statut", "Besoin", "Date", "Commercial",
}

// Filename returns the download name for an export generated at t.
func Filename(t time.Time) string {
	return "prospects_export_" + format.ISODate(t) + ".csv"
}

// ProspectsCSV renders the list as CSV. encoding/csv quotes per RFC 4180,
// so fields with embedded commas or quotes survive a round-trip.
func ProspectsCSV(prospects []domain.Prospect) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for i := range prospects {
		p := &prospects[i]
		row := []string{
			p.FirstName,
			p.LastName,
			p.Company,
			p.Email,
			p.Phone,
			p.Status,
			p.Need,
			format.Date(p.CreatedAt),
			p.AssigneeName(),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
