// Package model holds the registry records shared by the lookup, cache and
// notice packages.
package model

import (
	"strings"
	"time"
)

// EntityType classifies the legal nature of a company.
type EntityType string

const (
	EntityLegalPerson    EntityType = "PERSONNE_MORALE"
	EntitySoleProprietor EntityType = "ENTREPRENEUR_INDIVIDUEL"
	EntityUnknown        EntityType = "INCONNU"
)

// Valid reports whether t is one of the known entity types.
func (t EntityType) Valid() bool {
	switch t {
	case EntityLegalPerson, EntitySoleProprietor, EntityUnknown:
		return true
	default:
		return false
	}
}

// AdministrativeStatusActive is the registry's etat_administratif value for
// an active legal entity. Anything else (including absent) is inactive.
const AdministrativeStatusActive = "A"

// EstablishmentRecord is one place of business (établissement).
type EstablishmentRecord struct {
	SIRET               string `json:"siret,omitempty"`
	NumeroVoie          string `json:"numero_voie,omitempty"`
	IndiceRepetition    string `json:"indice_repetition,omitempty"`
	TypeVoie            string `json:"type_voie,omitempty"`
	LibelleVoie         string `json:"libelle_voie,omitempty"`
	ComplementAdresse   string `json:"complement_adresse,omitempty"`
	CodePostal          string `json:"code_postal,omitempty"`
	LibelleCommune      string `json:"libelle_commune,omitempty"`
	LibellePaysEtranger string `json:"libelle_pays_etranger,omitempty"`
	Enseigne            string `json:"enseigne_1,omitempty"`
	DenominationUsuelle string `json:"denomination_usuelle,omitempty"`
}

// TradeName returns the establishment sign, falling back to its usual name.
func (e *EstablishmentRecord) TradeName() string {
	if e == nil {
		return ""
	}
	if e.Enseigne != "" {
		return e.Enseigne
	}
	return e.DenominationUsuelle
}

// City returns the establishment's commune, or "" for a nil record.
func (e *EstablishmentRecord) City() string {
	if e == nil {
		return ""
	}
	return e.LibelleCommune
}

// LegalEntityRecord is the registry's record for the owning entity (unité légale).
type LegalEntityRecord struct {
	SIREN              string               `json:"siren,omitempty"`
	Denomination       string               `json:"denomination,omitempty"`
	Nom                string               `json:"nom,omitempty"`
	Prenom1            string               `json:"prenom_1,omitempty"`
	PrenomUsuel        string               `json:"prenom_usuel,omitempty"`
	CategorieJuridique string               `json:"categorie_juridique,omitempty"`
	EtatAdministratif  string               `json:"etat_administratif,omitempty"`
	EtablissementSiege *EstablishmentRecord `json:"etablissement_siege,omitempty"`
}

// GivenName returns the usual first name if set, otherwise the first civil one.
func (u *LegalEntityRecord) GivenName() string {
	if u == nil {
		return ""
	}
	if u.PrenomUsuel != "" {
		return u.PrenomUsuel
	}
	return u.Prenom1
}

// IsActive reports whether the entity's administrative status is active.
func (u *LegalEntityRecord) IsActive() bool {
	return u != nil && u.EtatAdministratif == AdministrativeStatusActive
}

// CompanyRecord is the merged result of an establishment and a legal entity
// lookup. It is the unit cached and returned to callers and must not be
// mutated once built.
type CompanyRecord struct {
	SIRET              string               `json:"siret"`
	SIREN              string               `json:"siren"`
	Denomination       string               `json:"denomination"`
	Etablissement      *EstablishmentRecord `json:"etablissement"`
	UniteLegale        *LegalEntityRecord   `json:"unite_legale"`
	EtablissementSiege *EstablishmentRecord `json:"etablissement_siege"`
	EntityType         EntityType           `json:"type_entreprise"`
	Active             bool                 `json:"est_actif"`
	FetchedAt          time.Time            `json:"fetched_at"`
}

// DisplayName returns the entity denomination, or "prenom nom" for natural
// persons. The first civil name is preferred, as the registry prints it.
func DisplayName(u *LegalEntityRecord) string {
	if u == nil {
		return ""
	}
	if u.Denomination != "" {
		return u.Denomination
	}
	prenom := u.Prenom1
	if prenom == "" {
		prenom = u.PrenomUsuel
	}
	return strings.TrimSpace(prenom + " " + u.Nom)
}

// Representative is the natural person signing on behalf of a legal person.
// It is supplied per request and never cached with the company.
type Representative struct {
	GivenName string `json:"prenom"`
	Surname   string `json:"nom"`
	// Title overrides the statutory title derived from the legal form.
	Title string `json:"titre,omitempty"`
}

// Complete reports whether both names are present.
func (r *Representative) Complete() bool {
	return r != nil && r.GivenName != "" && r.Surname != ""
}
