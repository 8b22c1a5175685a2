package notice

import (
	"strings"

	"github.com/sells-group/siren-cli/internal/model"
)

// DefaultCountry is printed when the establishment has no foreign country.
const DefaultCountry = "France"

// FormatAddress renders a full postal address:
// "[complement, ]numero indice type libelle, cp commune, pays".
// Empty parts are skipped. A nil establishment yields the country alone.
func FormatAddress(e *model.EstablishmentRecord) string {
	if e == nil {
		return DefaultCountry
	}
	parts := streetParts(e)
	if cp := joinNonEmpty(" ", e.CodePostal, e.LibelleCommune); cp != "" {
		parts = append(parts, cp)
	}
	if e.LibellePaysEtranger != "" {
		parts = append(parts, e.LibellePaysEtranger)
	} else {
		parts = append(parts, DefaultCountry)
	}
	return strings.Join(parts, ", ")
}

// FormatStreet renders the street part of the address only, without postal
// code, city or country.
func FormatStreet(e *model.EstablishmentRecord) string {
	if e == nil {
		return ""
	}
	return strings.Join(streetParts(e), ", ")
}

func streetParts(e *model.EstablishmentRecord) []string {
	var parts []string
	if e.ComplementAdresse != "" {
		parts = append(parts, e.ComplementAdresse)
	}
	if voie := joinNonEmpty(" ", e.NumeroVoie, e.IndiceRepetition, e.TypeVoie, e.LibelleVoie); voie != "" {
		parts = append(parts, voie)
	}
	return parts
}

func joinNonEmpty(sep string, elems ...string) string {
	var kept []string
	for _, s := range elems {
		if s != "" {
			kept = append(kept, s)
		}
	}
	return strings.Join(kept, sep)
}
