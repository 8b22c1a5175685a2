package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sells-group/siren-cli/internal/model"
	"github.com/sells-group/siren-cli/internal/notice"
	"github.com/sells-group/siren-cli/pkg/sirene"
)

// errorResponse is the body of every non-2xx reply.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type noticeRequest struct {
	SIRET        string `json:"siret"`
	Prenom       string `json:"prenom"`
	Nom          string `json:"nom"`
	IncludeTitre bool   `json:"include_titre"`
	Titre        string `json:"titre,omitempty"`
}

type noticeResponse struct {
	Company         *model.CompanyRecord `json:"company"`
	MentionsLegales string               `json:"mentions_legales"`
}

type registryTestRequest struct {
	SIRET string `json:"siret"`
}

type countResponse struct {
	Count   int    `json:"count"`
	Message string `json:"message,omitempty"`
}

// statusFor maps an error kind onto an HTTP status.
func statusFor(kind sirene.Kind) int {
	switch kind {
	case sirene.KindInvalidInput:
		return http.StatusBadRequest
	case sirene.KindNotFound:
		return http.StatusNotFound
	case sirene.KindConfiguration, sirene.KindTransport, sirene.KindServer:
		return http.StatusServiceUnavailable
	case sirene.KindDecode, sirene.KindAPI:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := sirene.KindOf(err)
	status := statusFor(kind)
	if kind == "" {
		kind = "internal"
	}
	level := s.logger.Warn
	if status >= http.StatusInternalServerError {
		level = s.logger.Error
	}
	level("http request failed",
		zap.String("path", r.URL.Path),
		zap.String("kind", string(kind)),
		zap.Error(err),
	)
	writeJSON(w, status, errorResponse{Error: string(kind), Message: sirene.UserMessage(err)})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGetCompany(w http.ResponseWriter, r *http.Request) {
	rec, err := s.svc.GetCompanyData(r.Context(), chi.URLParam(r, "siret"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleNotice(w http.ResponseWriter, r *http.Request) {
	var req noticeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: string(sirene.KindInvalidInput), Message: "Corps de requête invalide."})
		return
	}

	var rep *model.Representative
	if req.Prenom != "" || req.Nom != "" {
		formatted, err := notice.FormatRepresentative(req.Prenom, req.Nom)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: string(sirene.KindInvalidInput), Message: err.Error()})
			return
		}
		formatted.Title = req.Titre
		rep = formatted
	}

	rec, err := s.svc.GetCompanyData(r.Context(), req.SIRET)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var opts []notice.Option
	if req.IncludeTitre {
		opts = append(opts, notice.WithTitle())
	}
	writeJSON(w, http.StatusOK, noticeResponse{
		Company:         rec,
		MentionsLegales: s.generator.Generate(rec, rep, opts...),
	})
}

func (s *Server) handleRegistryTest(w http.ResponseWriter, r *http.Request) {
	var req registryTestRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: string(sirene.KindInvalidInput), Message: "Corps de requête invalide."})
			return
		}
	}
	sample := req.SIRET
	if sample == "" {
		sample = s.cfg.TestSIRET
	}

	res := s.svc.TestConnection(r.Context(), sample)
	status := http.StatusOK
	if !res.Success {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, res)
}

func (s *Server) handleCacheCount(w http.ResponseWriter, r *http.Request) {
	n, err := s.svc.CacheSize(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, countResponse{Count: n})
}

func (s *Server) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	n, err := s.svc.ClearCache(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, countResponse{
		Count:   n,
		Message: fmt.Sprintf("Cache vidé avec succès. %d entrée(s) supprimée(s).", n),
	})
}

func (s *Server) handleCacheDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Invalidate(r.Context(), chi.URLParam(r, "siret")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
