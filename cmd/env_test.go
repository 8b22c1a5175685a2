package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/sells-group/siren-cli/internal/config"
	"github.com/sells-group/siren-cli/internal/model"
	"github.com/sells-group/siren-cli/pkg/sirene"
)

const (
	etabBody  = `{"etablissement":{"siret":"73282932000074","numero_voie":"12","type_voie":"RUE","libelle_voie":"DE LA PAIX","code_postal":"75002","libelle_commune":"PARIS"}}`
	uniteBody = `{"unite_legale":{"siren":"732829320","denomination":"ACME SARL","categorie_juridique":"5410","etat_administratif":"A"}}`
)

func fakeRegistry(t *testing.T, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.Header.Get("X-Client-Secret") != "test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasPrefix(r.URL.Path, "/v3/etablissements/"):
			_, _ = w.Write([]byte(etabBody))
		case strings.HasPrefix(r.URL.Path, "/v3/unites_legales/"):
			_, _ = w.Write([]byte(uniteBody))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		API: config.APIConfig{
			Key:             "test-key",
			BaseURL:         baseURL,
			TimeoutSecs:     5,
			MaxAttempts:     1,
			BackoffBaseSecs: 1,
			TestSIRET:       sirene.DefaultTestSIRET,
		},
		Cache: config.CacheConfig{Driver: "memory", TTLSecs: 60, Prefix: "siren_data_"},
	}
}

func TestInitEnv_LookupUsesCache(t *testing.T) {
	var calls atomic.Int32
	srv := fakeRegistry(t, &calls)

	env, err := initEnv(context.Background(), testConfig(srv.URL), zap.NewNop())
	require.NoError(t, err)
	defer env.Close()

	rec, err := env.Service.GetCompanyData(context.Background(), "732 829 320 00074")
	require.NoError(t, err)
	assert.Equal(t, "ACME SARL", rec.Denomination)
	assert.Equal(t, model.EntityLegalPerson, rec.EntityType)
	assert.Equal(t, int32(2), calls.Load())

	_, err = env.Service.GetCompanyData(context.Background(), "73282932000074")
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load(), "second lookup should be served from cache")

	n, err := env.Service.CacheSize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestInitEnv_UnknownDriver(t *testing.T) {
	c := testConfig("http://127.0.0.1:0")
	c.Cache.Driver = "redis"

	_, err := initEnv(context.Background(), c, zap.NewNop())
	assert.Error(t, err)
}

func TestInitEnv_WarnsWithoutKey(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	c := testConfig("http://127.0.0.1:0")
	c.API.Key = ""

	env, err := initEnv(context.Background(), c, zap.New(core))
	require.NoError(t, err)
	defer env.Close()

	assert.Equal(t, 1, logs.FilterMessageSnippet("SIREN_API_KEY").Len())

	_, err = env.Service.GetCompanyData(context.Background(), "73282932000074")
	assert.Equal(t, sirene.KindConfiguration, sirene.KindOf(err))
}

func TestNewRegistryClient_TestConnection(t *testing.T) {
	var calls atomic.Int32
	srv := fakeRegistry(t, &calls)

	client := newRegistryClient(testConfig(srv.URL).API, zap.NewNop())
	res := client.TestConnection(context.Background(), sirene.DefaultTestSIRET)
	assert.True(t, res.Success)
	assert.Equal(t, int32(1), calls.Load())
}

func TestUserError(t *testing.T) {
	err := userError(sirene.NewError(sirene.KindNotFound, nil))
	assert.Contains(t, err.Error(), sirene.MsgNotFound)

	plain := assert.AnError
	assert.Same(t, plain, userError(plain))
}

func TestPrintCompany(t *testing.T) {
	rec := &model.CompanyRecord{
		SIRET:        "73282932000074",
		SIREN:        "732829320",
		Denomination: "ACME SARL",
		UniteLegale:  &model.LegalEntityRecord{CategorieJuridique: "5410"},
		EtablissementSiege: &model.EstablishmentRecord{
			NumeroVoie: "12", TypeVoie: "RUE", LibelleVoie: "DE LA PAIX",
			CodePostal: "75002", LibelleCommune: "PARIS",
		},
		EntityType: model.EntityLegalPerson,
		Active:     true,
	}

	var buf bytes.Buffer
	printCompany(&buf, rec)
	out := buf.String()

	assert.Contains(t, out, "732 829 320 00074")
	assert.Contains(t, out, "732 829 320\n")
	assert.Contains(t, out, "SARL (5410)")
	assert.Contains(t, out, "12 RUE DE LA PAIX")
	assert.Contains(t, out, "75002")
	assert.Contains(t, out, "actif")
}

func TestRepresentativeFromFlags(t *testing.T) {
	t.Cleanup(func() {
		noticeGivenName, noticeSurname, noticeTitle = "", "", ""
	})

	rep, err := representativeFromFlags()
	require.NoError(t, err)
	assert.Nil(t, rep)

	noticeGivenName, noticeSurname, noticeTitle = "jean-pierre", "DUPONT", "Co-gérant"
	rep, err = representativeFromFlags()
	require.NoError(t, err)
	assert.Equal(t, "Jean-Pierre", rep.GivenName)
	assert.Equal(t, "Dupont", rep.Surname)
	assert.Equal(t, "Co-gérant", rep.Title)

	noticeGivenName = "j3an"
	_, err = representativeFromFlags()
	assert.Error(t, err)
}
