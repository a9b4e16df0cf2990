package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kealys/nw-war-backend/internal/engine"
	"github.com/kealys/nw-war-backend/internal/registry"
	"github.com/kealys/nw-war-backend/internal/war"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// lookupWar resolves the {id} URL param to a live war, writing the 404/400
// itself so handlers can just bail on nil.
func lookupWar(reg *registry.Registry, w http.ResponseWriter, r *http.Request) *war.War {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad war id")
		return nil
	}

	reply := make(chan *war.War, 1)
	reg.Inbox() <- registry.GetWar{ID: id, Reply: reply}
	wr := <-reply
	if wr == nil {
		writeError(w, http.StatusNotFound, engine.ErrEventNotFound.Error())
		return nil
	}
	return wr
}

// CreateWar handles POST /wars. Title is optional; the registry defaults it
// from the new id.
func CreateWar(reg *registry.Registry, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Title string `json:"title"`
		}
		if r.ContentLength > 0 {
			if err := decodeJSON(r, &req); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
				return
			}
		}

		reply := make(chan *war.War, 1)
		reg.Inbox() <- registry.CreateWar{
			Name:     req.Title,
			Taxonomy: engine.DefaultTaxonomy(),
			Reply:    reply,
		}
		wr := <-reply

		log.Info("war created", zap.Int("war_id", wr.ID()), zap.String("name", wr.Name()))

		writeJSON(w, http.StatusCreated, struct {
			ID   int    `json:"id"`
			Name string `json:"name"`
		}{ID: wr.ID(), Name: wr.Name()})
	}
}

// ExportWar handles GET /wars/{id}/export and hands the JSON document
// straight to the caller; nothing is persisted server-side.
func ExportWar(reg *registry.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wr := lookupWar(reg, w, r)
		if wr == nil {
			return
		}

		reply := make(chan engine.ExportDoc, 1)
		wr.Inbox() <- war.ExportReq{Reply: reply}
		writeJSON(w, http.StatusOK, <-reply)
	}
}

// Unregistered handles POST /wars/{id}/unregistered. The caller supplies the
// candidate ids (platform role membership lives outside this service).
func Unregistered(reg *registry.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wr := lookupWar(reg, w, r)
		if wr == nil {
			return
		}

		var req struct {
			CandidateIDs []string `json:"candidate_ids"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}

		reply := make(chan []string, 1)
		wr.Inbox() <- war.UnregisteredReq{Candidates: req.CandidateIDs, Reply: reply}
		writeJSON(w, http.StatusOK, struct {
			Unregistered []string `json:"unregistered"`
		}{Unregistered: <-reply})
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
