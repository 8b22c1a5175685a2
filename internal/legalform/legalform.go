// Package legalform classifies registry legal entities and maps legal
// category codes to the forms and officer titles used in legal notices.
package legalform

import (
	"regexp"
	"slices"

	"github.com/sells-group/siren-cli/internal/model"
)

// OtherForm is the label for any category code outside the known table.
const OtherForm = "Autre forme juridique"

// TitlePlaceholder stands in for the officer title when the form has none.
const TitlePlaceholder = "{TITRE}"

var labels = map[string]string{
	"5710": "SAS",
	"5720": "SASU",
	"5499": "SA",
	"5410": "SARL",
	"5422": "EURL",
	"5498": "SELARL",
	"5306": "SCI",
	"5385": "SNC",
	"5370": "SCOP",
	"1000": "Entrepreneur individuel",
}

var capitalCompanies = []string{"SARL", "EURL", "SELARL", "SAS", "SASU", "SA"}

var titles = map[string]string{
	"SARL":   "Gérant",
	"EURL":   "Gérant",
	"SELARL": "Gérant",
	"SAS":    "Président",
	"SASU":   "Président",
	"SA":     "Directeur Général",
}

var (
	soleProprietorCode = regexp.MustCompile(`^1[1-4]`)
	legalPersonCode    = regexp.MustCompile(`^[2-9]`)
)

// ClassifyEntityType decides whether u is a legal person or a sole
// proprietor. A denomination wins, then a natural-person name, then the
// leading digits of the legal category code.
func ClassifyEntityType(u *model.LegalEntityRecord) model.EntityType {
	if u == nil {
		return model.EntityUnknown
	}
	if u.Denomination != "" {
		return model.EntityLegalPerson
	}
	if u.Nom != "" && (u.Prenom1 != "" || u.PrenomUsuel != "") {
		return model.EntitySoleProprietor
	}
	switch code := u.CategorieJuridique; {
	case soleProprietorCode.MatchString(code):
		return model.EntitySoleProprietor
	case legalPersonCode.MatchString(code):
		return model.EntityLegalPerson
	}
	return model.EntityUnknown
}

// Label returns the short legal form for a category code.
func Label(code string) string {
	if l, ok := labels[code]; ok {
		return l
	}
	return OtherForm
}

// IsCapitalCompany reports whether the form is a capital company whose
// notice names a legal representative.
func IsCapitalCompany(label string) bool {
	return slices.Contains(capitalCompanies, label)
}

// RepresentativeTitle returns the statutory officer title for label.
func RepresentativeTitle(label string) string {
	if t, ok := titles[label]; ok {
		return t
	}
	return TitlePlaceholder
}
