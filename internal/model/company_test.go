package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name string
		in   *LegalEntityRecord
		want string
	}{
		{"nil", nil, ""},
		{"denomination wins", &LegalEntityRecord{Denomination: "ACME", Nom: "DUPONT", Prenom1: "Jean"}, "ACME"},
		{"natural person", &LegalEntityRecord{Nom: "DUPONT", Prenom1: "Jean"}, "Jean DUPONT"},
		{"usual first name fallback", &LegalEntityRecord{Nom: "MARTIN", PrenomUsuel: "Marie"}, "Marie MARTIN"},
		{"surname only", &LegalEntityRecord{Nom: "MARTIN"}, "MARTIN"},
		{"empty", &LegalEntityRecord{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DisplayName(tt.in))
		})
	}
}

func TestLegalEntityRecord_GivenName(t *testing.T) {
	u := &LegalEntityRecord{Prenom1: "Marie-Claude", PrenomUsuel: "Marie"}
	assert.Equal(t, "Marie", u.GivenName())

	u.PrenomUsuel = ""
	assert.Equal(t, "Marie-Claude", u.GivenName())

	var nilRec *LegalEntityRecord
	assert.Equal(t, "", nilRec.GivenName())
}

func TestLegalEntityRecord_IsActive(t *testing.T) {
	assert.True(t, (&LegalEntityRecord{EtatAdministratif: "A"}).IsActive())
	assert.False(t, (&LegalEntityRecord{EtatAdministratif: "C"}).IsActive())
	assert.False(t, (&LegalEntityRecord{}).IsActive())

	var nilRec *LegalEntityRecord
	assert.False(t, nilRec.IsActive())
}

func TestEstablishmentRecord_TradeName(t *testing.T) {
	e := &EstablishmentRecord{Enseigne: "MON MAGASIN", DenominationUsuelle: "USUEL"}
	assert.Equal(t, "MON MAGASIN", e.TradeName())

	e.Enseigne = ""
	assert.Equal(t, "USUEL", e.TradeName())

	var nilRec *EstablishmentRecord
	assert.Equal(t, "", nilRec.TradeName())
	assert.Equal(t, "", nilRec.City())
}

func TestEntityType_Valid(t *testing.T) {
	assert.True(t, EntityLegalPerson.Valid())
	assert.True(t, EntitySoleProprietor.Valid())
	assert.True(t, EntityUnknown.Valid())
	assert.False(t, EntityType("ASSOCIATION").Valid())
}

func TestRepresentative_Complete(t *testing.T) {
	assert.True(t, (&Representative{GivenName: "Jean", Surname: "DUPONT"}).Complete())
	assert.False(t, (&Representative{GivenName: "Jean"}).Complete())

	var nilRep *Representative
	assert.False(t, nilRep.Complete())
}

func TestCompanyRecord_JSONUsesRegistryFieldNames(t *testing.T) {
	rec := CompanyRecord{
		SIRET:        "73282932000074",
		SIREN:        "732829320",
		Denomination: "TEST COMPANY SARL",
		UniteLegale: &LegalEntityRecord{
			CategorieJuridique: "5410",
			EtablissementSiege: &EstablishmentRecord{LibelleCommune: "PARIS"},
		},
		EntityType: EntityLegalPerson,
		Active:     true,
		FetchedAt:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	data, err := json.Marshal(rec)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "PERSONNE_MORALE", raw["type_entreprise"])
	assert.Equal(t, true, raw["est_actif"])

	ul, ok := raw["unite_legale"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "5410", ul["categorie_juridique"])
	siege, ok := ul["etablissement_siege"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "PARIS", siege["libelle_commune"])
}
