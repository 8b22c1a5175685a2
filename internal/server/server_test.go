package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/siren-cli/internal/cache"
	"github.com/sells-group/siren-cli/internal/lookup"
	"github.com/sells-group/siren-cli/internal/model"
	"github.com/sells-group/siren-cli/pkg/sirene"
	"github.com/sells-group/siren-cli/pkg/sirene/mocks"
)

const testSIRET = "73282932000074"

func sarlEntity() *model.LegalEntityRecord {
	return &model.LegalEntityRecord{
		SIREN:              "732829320",
		Denomination:       "TEST COMPANY SARL",
		CategorieJuridique: "5410",
		EtatAdministratif:  "A",
		EtablissementSiege: &model.EstablishmentRecord{
			NumeroVoie:     "10",
			TypeVoie:       "RUE",
			LibelleVoie:    "DE LA PAIX",
			CodePostal:     "75001",
			LibelleCommune: "PARIS",
		},
	}
}

type fixture struct {
	client *mocks.MockClient
	cache  *cache.Memory
	srv    *httptest.Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	client := mocks.NewMockClient(t)
	c := cache.NewMemory()
	svc := lookup.NewService(client, c, nil)
	s := New(svc, nil, Config{TestSIRET: testSIRET}, nil)

	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return &fixture{client: client, cache: c, srv: srv}
}

func (f *fixture) expectSARL() {
	f.client.On("FetchEstablishment", mock.Anything, testSIRET).
		Return(&model.EstablishmentRecord{SIRET: testSIRET}, nil).Once()
	f.client.On("FetchLegalEntity", mock.Anything, "732829320").Return(sarlEntity(), nil).Once()
}

func do(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), method, url, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestHealth(t *testing.T) {
	f := newFixture(t)

	resp := do(t, http.MethodGet, f.srv.URL+"/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
	assert.Equal(t, map[string]string{"status": "ok"}, decode[map[string]string](t, resp))
}

func TestRequestIDIsEchoed(t *testing.T) {
	f := newFixture(t)

	req, err := http.NewRequest(http.MethodGet, f.srv.URL+"/health", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-ID", "abc-123")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "abc-123", resp.Header.Get("X-Request-ID"))
}

func TestGetCompany(t *testing.T) {
	f := newFixture(t)
	f.expectSARL()

	resp := do(t, http.MethodGet, f.srv.URL+"/v1/companies/"+testSIRET, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	rec := decode[model.CompanyRecord](t, resp)
	assert.Equal(t, "TEST COMPANY SARL", rec.Denomination)
	assert.Equal(t, model.EntityLegalPerson, rec.EntityType)
}

func TestGetCompany_ErrorMapping(t *testing.T) {
	tests := []struct {
		kind   sirene.Kind
		status int
	}{
		{sirene.KindNotFound, http.StatusNotFound},
		{sirene.KindConfiguration, http.StatusServiceUnavailable},
		{sirene.KindTransport, http.StatusServiceUnavailable},
		{sirene.KindServer, http.StatusServiceUnavailable},
		{sirene.KindDecode, http.StatusBadGateway},
		{sirene.KindAPI, http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			f := newFixture(t)
			f.client.On("FetchEstablishment", mock.Anything, testSIRET).Return(nil, sirene.NewError(tt.kind, nil))

			resp := do(t, http.MethodGet, f.srv.URL+"/v1/companies/"+testSIRET, "")
			assert.Equal(t, tt.status, resp.StatusCode)

			body := decode[errorResponse](t, resp)
			assert.Equal(t, string(tt.kind), body.Error)
			assert.NotEmpty(t, body.Message)
		})
	}
}

func TestGetCompany_InvalidSIRET(t *testing.T) {
	f := newFixture(t)

	resp := do(t, http.MethodGet, f.srv.URL+"/v1/companies/12345", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decode[errorResponse](t, resp)
	assert.Equal(t, "invalid_input", body.Error)
	assert.Contains(t, body.Message, "14 digits")
	f.client.AssertNotCalled(t, "FetchEstablishment", mock.Anything, mock.Anything)
}

func TestNotice(t *testing.T) {
	f := newFixture(t)
	f.expectSARL()

	resp := do(t, http.MethodPost, f.srv.URL+"/v1/notices",
		`{"siret":"732 829 320 00074","prenom":"jean","nom":"DUPONT","include_titre":true}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[noticeResponse](t, resp)
	assert.Equal(t, "TEST COMPANY SARL", body.Company.Denomination)
	assert.Contains(t, body.MentionsLegales, "TEST COMPANY SARL")
	assert.Contains(t, body.MentionsLegales, "732 829 320")
	assert.Contains(t, body.MentionsLegales, "PARIS")
	assert.Contains(t, body.MentionsLegales, "représentée par Dupont Jean")
	assert.Contains(t, body.MentionsLegales, "en tant que Gérant.")
}

func TestNotice_WithoutRepresentative(t *testing.T) {
	f := newFixture(t)
	f.expectSARL()

	resp := do(t, http.MethodPost, f.srv.URL+"/v1/notices", `{"siret":"73282932000074"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[noticeResponse](t, resp)
	assert.Contains(t, body.MentionsLegales, "{REPRESENTANT}")
	assert.NotContains(t, body.MentionsLegales, "en tant que")
}

func TestNotice_BadRequests(t *testing.T) {
	f := newFixture(t)

	resp := do(t, http.MethodPost, f.srv.URL+"/v1/notices", `{not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, http.MethodPost, f.srv.URL+"/v1/notices", `{"siret":"73282932000074","prenom":"Jean2","nom":"DUPONT"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decode[errorResponse](t, resp)
	assert.Contains(t, body.Message, "chiffres")

	f.client.AssertNotCalled(t, "FetchEstablishment", mock.Anything, mock.Anything)
}

func TestRegistryTest(t *testing.T) {
	f := newFixture(t)
	f.client.On("TestConnection", mock.Anything, testSIRET).
		Return(&sirene.ConnectionResult{Success: true, Message: "ok"}).Once()
	f.client.On("TestConnection", mock.Anything, "55203253400646").
		Return(&sirene.ConnectionResult{Success: false, Message: sirene.MsgNotFound}).Once()

	resp := do(t, http.MethodPost, f.srv.URL+"/v1/registry/test", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, decode[sirene.ConnectionResult](t, resp).Success)

	resp = do(t, http.MethodPost, f.srv.URL+"/v1/registry/test", `{"siret":"55203253400646"}`)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, sirene.MsgNotFound, decode[sirene.ConnectionResult](t, resp).Message)
}

func TestCacheEndpoints(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, s := range []string{testSIRET, "55203253400646"} {
		require.NoError(t, f.cache.Set(ctx, s, &model.CompanyRecord{SIRET: s}, time.Hour))
	}

	resp := do(t, http.MethodGet, f.srv.URL+"/v1/cache/count", "")
	assert.Equal(t, 2, decode[countResponse](t, resp).Count)

	resp = do(t, http.MethodDelete, f.srv.URL+"/v1/cache/"+testSIRET, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, http.MethodDelete, f.srv.URL+"/v1/cache/123", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, http.MethodDelete, f.srv.URL+"/v1/cache", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[countResponse](t, resp)
	assert.Equal(t, 1, body.Count)
	assert.Contains(t, body.Message, "1 entrée(s)")
}

func TestCORSPreflight(t *testing.T) {
	f := newFixture(t)

	req, err := http.NewRequest(http.MethodOptions, f.srv.URL+"/v1/notices", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://forms.example.fr")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(sirene.KindInvalidInput))
	assert.Equal(t, http.StatusInternalServerError, statusFor(""))
}
