// Package card renders contributor records as B2 identity cards and exports
// them as PDF documents.
package card

import (
	"strings"

	"github.com/jules-12/card-creator-pro/internal/extract"
)

// Card dimensions in millimetres (ID-1 format).
const (
	WidthMM  = 85.6
	HeightMM = 54.0
)

// Payload returns the text encoded in a card's QR code: one labeled line per
// card row, in the order the rows are printed.
func Payload(rec extract.ContributorRecord) string {
	lines := []string{
		"N° NPC: " + rec.NPC,
		"Nom & Prénoms: " + rec.Nom + " " + rec.Prenoms,
		"Tél conducteur: " + rec.Telephone,
		"Personne à contacter: " + rec.PersonneContact,
		"Tél contact: " + rec.TelephoneContact,
		"Propriétaire: " + rec.Proprietaire,
		"Tél propriétaire: " + rec.TelephoneProprietaire,
		"Résidence: " + rec.Residence,
		"Caract. Moto: " + rec.CaracteristiquesMoto,
	}
	return strings.Join(lines, "\n")
}

// FileName is the name of a single-card PDF: the NPC when known, the record
// ID otherwise.
func FileName(rec extract.ContributorRecord) string {
	key := rec.ID
	if rec.Present(extract.FieldNPC) {
		key = rec.NPC
	}
	return "carte-b2-" + sanitizeName(key) + ".pdf"
}

func sanitizeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "sans-id"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		if r < 0x20 {
			return -1
		}
		return r
	}, s)
}

type row struct {
	label string
	value string
}

func rows(rec extract.ContributorRecord) []row {
	return []row{
		{"N° NPC", rec.NPC},
		{"Nom Prénoms conducteur", rec.FullName()},
		{"Tél", rec.Telephone},
		{"Personne à contacter", rec.PersonneContact},
		{"Tél", rec.TelephoneContact},
		{"Propriétaire", rec.Proprietaire},
		{"Tél", rec.TelephoneProprietaire},
		{"Résidence", rec.Residence},
		{"Caractéristiques Moto", rec.CaracteristiquesMoto},
	}
}
