package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/overseaspath/crm-backend/internal/entity"
	"github.com/overseaspath/crm-backend/internal/infra/http/middleware"
	"github.com/overseaspath/crm-backend/internal/usecase"
)

type ClientHandler struct {
	UpdateUC    *usecase.UpdateClientUseCase
	HandoffUC   *usecase.HandoffUseCase
	MilestoneUC *usecase.RecordMilestoneUseCase
	DeleteUC    *usecase.DeleteClientUseCase
	Repo        usecase.ClientRepositoryInterface
}

func NewClientHandler(
	updateUC *usecase.UpdateClientUseCase,
	handoffUC *usecase.HandoffUseCase,
	milestoneUC *usecase.RecordMilestoneUseCase,
	deleteUC *usecase.DeleteClientUseCase,
	repo usecase.ClientRepositoryInterface,
) *ClientHandler {
	return &ClientHandler{
		UpdateUC:    updateUC,
		HandoffUC:   handoffUC,
		MilestoneUC: milestoneUC,
		DeleteUC:    deleteUC,
		Repo:        repo,
	}
}

func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := usecase.ClientFilter{Search: r.URL.Query().Get("search")}

	if s := r.URL.Query().Get("assigned_staff_id"); s != "" {
		staffID, err := strconv.Atoi(s)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Code: "BAD_FILTER", Message: "assigned_staff_id must be an integer"})
			return
		}
		filter.AssignedStaffID = &staffID
	}

	if s := r.URL.Query().Get("processing_staff_id"); s != "" {
		staffID, err := strconv.Atoi(s)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Code: "BAD_FILTER", Message: "processing_staff_id must be an integer"})
			return
		}
		filter.ProcessingStaffID = &staffID
	}

	clients, err := h.Repo.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	if clients == nil {
		clients = []*entity.Client{}
	}

	writeJSON(w, http.StatusOK, clients)
}

func (h *ClientHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: "BAD_ID", Message: "id must be an integer"})
		return
	}

	client, err := h.Repo.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			writeError(w, usecase.ErrNotFound("client not found"))
			return
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, client)
}

func (h *ClientHandler) Patch(w http.ResponseWriter, r *http.Request) {
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

	var input usecase.UpdateClientInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: "BAD_JSON", Message: "invalid JSON: " + err.Error()})
		return
	}

	client, err := h.UpdateUC.Execute(r.Context(), id, input, requester)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, client)
}

// Handoff is idempotent: the second call returns 200 with handed_off=false
// instead of erroring, so a double-clicked button stays harmless.
func (h *ClientHandler) Handoff(w http.ResponseWriter, r *http.Request) {
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

	output, err := h.HandoffUC.Execute(r.Context(), id, requester)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, output)
}

func (h *ClientHandler) RecordMilestone(w http.ResponseWriter, r *http.Request) {
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

	var input usecase.RecordMilestoneInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: "BAD_JSON", Message: "invalid JSON: " + err.Error()})
		return
	}

	client, err := h.MilestoneUC.Execute(r.Context(), id, input, requester)
	if err != nil {
		writeError(w, err)
		return
	}

	middleware.RecordMilestone(input.Action)
	writeJSON(w, http.StatusOK, client)
}

func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
