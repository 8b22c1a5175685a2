// Package notice renders the French legal notice (mentions légales) for a
// company record.
package notice

import (
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/siren-cli/internal/legalform"
	"github.com/sells-group/siren-cli/internal/model"
	"github.com/sells-group/siren-cli/internal/siret"
)

// RepresentativePlaceholder stands in for the representative's name when
// none was supplied.
const RepresentativePlaceholder = "{REPRESENTANT}"

// Option configures a single Generate call.
type Option func(*options)

type options struct {
	includeTitle bool
}

// WithTitle appends the representative's title ("en tant que Gérant") to
// capital-company notices.
func WithTitle() Option {
	return func(o *options) {
		o.includeTitle = true
	}
}

// Generator renders legal notices.
type Generator struct {
	logger *zap.Logger
}

// NewGenerator creates a Generator. A nil logger discards output.
func NewGenerator(logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{logger: logger}
}

// Generate returns the notice text for rec. rep is only used for capital
// companies and may be nil. A nil record yields "".
func (g *Generator) Generate(rec *model.CompanyRecord, rep *model.Representative, opts ...Option) string {
	if rec == nil {
		g.logger.Error("notice: no company data")
		return ""
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var text string
	switch rec.EntityType {
	case model.EntityLegalPerson:
		text = g.legalPerson(rec, rep, o)
	case model.EntitySoleProprietor:
		text = soleProprietor(rec)
	default:
		g.logger.Warn("notice: unknown entity type, using fallback",
			zap.String("siret", rec.SIRET),
			zap.String("type", string(rec.EntityType)),
		)
		text = fallback(rec)
	}

	g.logger.Info("notice: generated", zap.String("siret", rec.SIRET), zap.String("type", string(rec.EntityType)))
	return text
}

func (g *Generator) legalPerson(rec *model.CompanyRecord, rep *model.Representative, o options) string {
	code := ""
	if rec.UniteLegale != nil {
		code = rec.UniteLegale.CategorieJuridique
	}
	form := legalform.Label(code)
	g.logger.Debug("notice: legal form detected", zap.String("form", form), zap.String("code", code))

	var b strings.Builder
	writeRegisteredOffice(&b, rec)
	if !legalform.IsCapitalCompany(form) {
		b.WriteString(".")
		return b.String()
	}

	name := RepresentativePlaceholder
	if rep.Complete() {
		name = rep.Surname + " " + rep.GivenName
	}
	b.WriteString(" représentée par ")
	b.WriteString(name)
	b.WriteString(" agissant et ayant les pouvoirs nécessaires")

	if o.includeTitle {
		title := legalform.RepresentativeTitle(form)
		if rep != nil && rep.Title != "" {
			title = rep.Title
		}
		b.WriteString(" en tant que ")
		b.WriteString(title)
	}
	b.WriteString(".")
	return b.String()
}

// writeRegisteredOffice writes the opening shared by legal-person notices,
// up to and including the SIREN.
func writeRegisteredOffice(b *strings.Builder, rec *model.CompanyRecord) {
	siege := rec.EtablissementSiege

	b.WriteString(legalName(rec))
	b.WriteString(", dont le siège social est situé au ")
	if sign := siege.TradeName(); sign != "" {
		b.WriteString(sign)
		b.WriteString(" ")
	}
	b.WriteString(FormatAddress(siege))
	b.WriteString(", immatriculée au Registre du Commerce et des Sociétés de ")
	b.WriteString(siege.City())
	b.WriteString(" sous le numéro ")
	b.WriteString(siret.FormatSIREN(rec.SIREN))
}

func soleProprietor(rec *model.CompanyRecord) string {
	u := rec.UniteLegale
	nom, prenom := "", ""
	if u != nil {
		nom, prenom = u.Nom, u.GivenName()
	}
	etab := rec.Etablissement

	var b strings.Builder
	b.WriteString(strings.ToUpper(nom))
	b.WriteString(" ")
	b.WriteString(prenom)
	b.WriteString(", ")
	if sign := etab.TradeName(); sign != "" {
		b.WriteString("sous le nom commercial ")
		b.WriteString(sign)
		b.WriteString(", ")
	}
	b.WriteString("demeurant au ")
	b.WriteString(FormatAddress(etab))
	b.WriteString(", immatriculé au répertoire des entreprises et établissements de l'INSEE sous le numéro ")
	b.WriteString(siret.FormatSIRET(rec.SIRET))
	b.WriteString(", agissant en sa qualité d'Entrepreneur individuel.")
	return b.String()
}

func fallback(rec *model.CompanyRecord) string {
	name := legalName(rec)
	if name == "" && rec.UniteLegale != nil {
		name = strings.TrimSpace(rec.UniteLegale.Prenom1 + " " + rec.UniteLegale.Nom)
	}
	return name + ", situé au " + FormatAddress(rec.EtablissementSiege) +
		", immatriculé sous le numéro SIRET " + siret.FormatSIRET(rec.SIRET) + "."
}

// legalName is the entity denomination, falling back to the record's
// display name when the registry left it blank.
func legalName(rec *model.CompanyRecord) string {
	if rec.UniteLegale != nil && rec.UniteLegale.Denomination != "" {
		return rec.UniteLegale.Denomination
	}
	return rec.Denomination
}
