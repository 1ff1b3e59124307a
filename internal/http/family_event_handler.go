package httpapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/MrMangoye/Project/internal/domain"
	"github.com/MrMangoye/Project/internal/service"

	"go.uber.org/zap"
)

// FamilyEventHandler 家族活动 + 时间线接口
type FamilyEventHandler struct {
	events *service.FamilyEventService
	logger *zap.Logger
}

func NewFamilyEventHandler(events *service.FamilyEventService, logger *zap.Logger) *FamilyEventHandler {
	return &FamilyEventHandler{events: events, logger: logger}
}

func (h *FamilyEventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req service.CreateEventRequest
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
		return
	}
	req.FamilyID = r.PathValue("id")
	req.ActingUserID = actingUserID(r)
	ev, err := h.events.CreateEvent(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, Ok(ev))
}

// GetTimeline ?year= 缺省为当前年份
func (h *FamilyEventHandler) GetTimeline(w http.ResponseWriter, r *http.Request) {
	year := time.Now().UTC().Year()
	if s := strings.TrimSpace(r.URL.Query().Get("year")); s != "" {
		y, err := strconv.Atoi(s)
		if err != nil {
			writeError(w, h.logger, r, domain.NewValidationError("year", "must be a number"))
			return
		}
		year = y
	}
	tl, err := h.events.Timeline(r.Context(), r.PathValue("id"), year)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(tl))
}
