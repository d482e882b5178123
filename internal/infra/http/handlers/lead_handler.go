package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/overseaspath/crm-backend/internal/entity"
	"github.com/overseaspath/crm-backend/internal/infra/http/middleware"
	"github.com/overseaspath/crm-backend/internal/usecase"
)

type LeadHandler struct {
	CreateUC   *usecase.CreateLeadUseCase
	UpdateUC   *usecase.UpdateLeadUseCase
	DeleteUC   *usecase.DeleteLeadUseCase
	RegisterUC *usecase.CompleteRegistrationUseCase
	Repo       usecase.LeadRepositoryInterface
}

func NewLeadHandler(
	createUC *usecase.CreateLeadUseCase,
	updateUC *usecase.UpdateLeadUseCase,
	deleteUC *usecase.DeleteLeadUseCase,
	registerUC *usecase.CompleteRegistrationUseCase,
	repo usecase.LeadRepositoryInterface,
) *LeadHandler {
	return &LeadHandler{
		CreateUC:   createUC,
		UpdateUC:   updateUC,
		DeleteUC:   deleteUC,
		RegisterUC: registerUC,
		Repo:       repo,
	}
}

func (h *LeadHandler) Create(w http.ResponseWriter, r *http.Request) {
	requester, ok := middleware.UserFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Code: "UNAUTHORIZED", Message: "missing requester"})
		return
	}

	var input usecase.CreateLeadInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: "BAD_JSON", Message: "invalid JSON: " + err.Error()})
		return
	}

	lead, err := h.CreateUC.Execute(r.Context(), input, requester)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, lead)
}

func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := usecase.LeadFilter{Search: r.URL.Query().Get("search")}

	if s := r.URL.Query().Get("status"); s != "" {
		status := entity.LeadStatus(s)
		if !status.Valid() {
			writeJSON(w, http.StatusBadRequest, errorResponse{Code: "BAD_FILTER", Message: "unknown status: " + s})
			return
		}
		filter.Status = &status
	}

	if s := r.URL.Query().Get("assigned_staff_id"); s != "" {
		staffID, err := strconv.Atoi(s)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Code: "BAD_FILTER", Message: "assigned_staff_id must be an integer"})
			return
		}
		filter.AssignedStaffID = &staffID
	}

	leads, err := h.Repo.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	if leads == nil {
		leads = []*entity.Lead{}
	}

	writeJSON(w, http.StatusOK, leads)
}

func (h *LeadHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: "BAD_ID", Message: "id must be an integer"})
		return
	}

	lead, err := h.Repo.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			writeError(w, usecase.ErrNotFound("lead not found"))
			return
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, lead)
}

func (h *LeadHandler) Patch(w http.ResponseWriter, r *http.Request) {
	requester, ok := middleware.UserFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Code: "UNAUTHORIZED", Message: "missing requester"})
		return
	}

	id, err := urlID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: "BAD_ID", Message: "id must be an integer"})
		return
	}

	var input usecase.UpdateLeadInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: "BAD_JSON", Message: "invalid JSON: " + err.Error()})
		return
	}

	lead, err := h.UpdateUC.Execute(r.Context(), id, input, requester)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, lead)
}

func (h *LeadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	requester, ok := middleware.UserFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Code: "UNAUTHORIZED", Message: "missing requester"})
		return
	}

	id, err := urlID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: "BAD_ID", Message: "id must be an integer"})
		return
	}

	if err := h.DeleteUC.Execute(r.Context(), id, requester); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CompleteRegistration converts the lead into a client. POST, not PATCH:
// this is the one transition that spans two entities.
func (h *LeadHandler) CompleteRegistration(w http.ResponseWriter, r *http.Request) {
	requester, ok := middleware.UserFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Code: "UNAUTHORIZED", Message: "missing requester"})
		return
	}

	id, err := urlID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: "BAD_ID", Message: "id must be an integer"})
		return
	}

	var input usecase.CompleteRegistrationInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: "BAD_JSON", Message: "invalid JSON: " + err.Error()})
		return
	}

	output, err := h.RegisterUC.Execute(r.Context(), id, input, requester)
	if err != nil {
		if tErr, ok := err.(*usecase.TechnicalError); ok && tErr.Code == usecase.CodeConsistency {
			middleware.RecordConsistencyFault()
		}
		writeError(w, err)
		return
	}

	middleware.RecordConversion()
	writeJSON(w, http.StatusCreated, output)
}

func urlID(r *http.Request) (int, error) {
	return strconv.Atoi(chi.URLParam(r, "id"))
}
