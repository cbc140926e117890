package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/rejoanahmed/starter-template-sub001/internal/application/tracker"
	"github.com/rejoanahmed/starter-template-sub001/internal/infrastructure/http/middleware"
)

// LabelsHandler serves /organizations/{orgID}/teams/{teamID}/labels.
type LabelsHandler struct {
	svc *tracker.Service
	log zerolog.Logger
}

func NewLabelsHandler(svc *tracker.Service, log zerolog.Logger) *LabelsHandler {
	return &LabelsHandler{svc: svc, log: log}
}

type createLabelRequest struct {
	Name  string  `json:"name" validate:"max=100"`
	Color *string `json:"color" validate:"omitempty,max=32"`
}

func (h *LabelsHandler) List(w http.ResponseWriter, r *http.Request) {
	labels, err := h.svc.ListLabels(r.Context(), middleware.UserIDFromContext(r.Context()),
		chi.URLParam(r, "orgID"), chi.URLParam(r, "teamID"))
	middleware.RecordOperation("list_labels", err)
	if err != nil {
		writeError(w, r, h.log, "list_labels", err)
		return
	}
	out := make([]LabelResponse, 0, len(labels))
	for _, l := range labels {
		out = append(out, labelResponse(l))
	}
	writeJSON(w, http.StatusOK, dataResponse{Data: out})
}

func (h *LabelsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createLabelRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	if err := validateStruct(req); err != nil {
		writeError(w, r, h.log, "create_label", err)
		return
	}
	label, err := h.svc.CreateLabel(r.Context(), middleware.UserIDFromContext(r.Context()),
		chi.URLParam(r, "orgID"), chi.URLParam(r, "teamID"),
		tracker.CreateLabelInput{Name: req.Name, Color: req.Color})
	middleware.RecordOperation("create_label", err)
	if err != nil {
		writeError(w, r, h.log, "create_label", err)
		return
	}
	writeJSON(w, http.StatusCreated, labelResponse(label))
}
