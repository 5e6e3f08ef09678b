// Package stats derives the dashboard aggregates from the full contact set.
// There is no caching: callers re-read the table and recompute per request,
// which is fine for the low-tens-of-thousands row counts this CRM holds.
package stats

import (
	"regexp"
	"strings"

	"github.com/sereniteo/crm/internal/model"
)

// SCPI product names are stored per contact as one delimited string.
const scpiSeparator = " - "

var yearPattern = regexp.MustCompile(`\d{4}`)

type Stats struct {
	Total       int            `json:"total"`
	Clients     int            `json:"clients"`
	Prospects   int            `json:"prospects"`
	Consultants map[string]int `json:"consultants"`
	SCPI        map[string]int `json:"scpi"`
	Annees      map[string]int `json:"annees"`
}

// Compute builds the dashboard statistics in a single pass. A contact listing
// three SCPI products contributes to three product counters; contacts whose
// date_creation has no 4-digit year are excluded from the annees breakdown
// but still count toward the total.
func Compute(contacts []model.Contact) Stats {
	s := Stats{
		Total:       len(contacts),
		Consultants: make(map[string]int),
		SCPI:        make(map[string]int),
		Annees:      make(map[string]int),
	}

	for i := range contacts {
		c := &contacts[i]

		if c.Statut != nil {
			switch *c.Statut {
			case "Client":
				s.Clients++
			case "Prospect":
				s.Prospects++
			}
		}

		if c.Consultant != nil && *c.Consultant != "" {
			s.Consultants[*c.Consultant]++
		}

		if c.SCPI != nil && *c.SCPI != "" {
			for _, name := range strings.Split(*c.SCPI, scpiSeparator) {
				name = strings.TrimSpace(name)
				if name != "" {
					s.SCPI[name]++
				}
			}
		}

		if c.DateCreation != nil {
			if year := yearPattern.FindString(*c.DateCreation); year != "" {
				s.Annees[year]++
			}
		}
	}

	return s
}
