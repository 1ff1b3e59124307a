package httpapi

import (
	"net/http"
	"time"

	"github.com/MrMangoye/Project/internal/service"

	"go.uber.org/zap"
)

// FamilyHandler 家族接口
type FamilyHandler struct {
	families  *service.FamilyService
	analytics *service.AnalyticsService
	logger    *zap.Logger
}

func NewFamilyHandler(families *service.FamilyService, analytics *service.AnalyticsService, logger *zap.Logger) *FamilyHandler {
	return &FamilyHandler{families: families, analytics: analytics, logger: logger}
}

func (h *FamilyHandler) CreateFamily(w http.ResponseWriter, r *http.Request) {
	var req service.CreateFamilyRequest
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
		return
	}
	req.ActingUserID = actingUserID(r)
	resp, err := h.families.CreateFamily(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, Ok(resp))
}

func (h *FamilyHandler) JoinFamily(w http.ResponseWriter, r *http.Request) {
	var req service.JoinFamilyRequest
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
		return
	}
	req.ActingUserID = actingUserID(r)
	resp, err := h.families.JoinFamily(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(resp))
}

func (h *FamilyHandler) GetFamily(w http.ResponseWriter, r *http.Request) {
	f, err := h.families.GetFamily(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(f))
}

func (h *FamilyHandler) UpdateFamily(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateFamilyRequest
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
		return
	}
	req.FamilyID = r.PathValue("id")
	f, err := h.families.UpdateFamily(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(f))
}

func (h *FamilyHandler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	a, err := h.analytics.FamilyAnalytics(r.Context(), r.PathValue("id"), time.Now().UTC())
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(a))
}
