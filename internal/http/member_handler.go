package httpapi

import (
	"fmt"
	"net/http"

	"github.com/MrMangoye/Project/internal/domain"
	"github.com/MrMangoye/Project/internal/repository"
	"github.com/MrMangoye/Project/internal/service"

	"go.uber.org/zap"
)

// MemberHandler 成员与关系接口
type MemberHandler struct {
	members *service.MemberService
	rels    *service.RelationshipService
	loader  *repository.FamilyMembersLoader
	logger  *zap.Logger
}

func NewMemberHandler(members *service.MemberService, rels *service.RelationshipService, loader *repository.FamilyMembersLoader, logger *zap.Logger) *MemberHandler {
	return &MemberHandler{members: members, rels: rels, loader: loader, logger: logger}
}

// ListMembers X-Person-Id 存在时附带称谓
func (h *MemberHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	list, err := h.members.ListMembers(r.Context(), r.PathValue("id"), actingPersonID(r))
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"items": list, "total": len(list)}))
}

func (h *MemberHandler) CreateMember(w http.ResponseWriter, r *http.Request) {
	var req service.CreateMemberRequest
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
		return
	}
	req.FamilyID = r.PathValue("id")
	req.ActingUserID = actingUserID(r)
	v, err := h.members.CreateMember(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, Ok(v))
}

func (h *MemberHandler) GetMember(w http.ResponseWriter, r *http.Request) {
	v, err := h.members.GetMember(r.Context(), domain.PersonID(r.PathValue("id")))
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(v))
}

func (h *MemberHandler) UpdateMember(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateMemberRequest
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
		return
	}
	req.PersonID = domain.PersonID(r.PathValue("id"))
	v, err := h.members.UpdateMember(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(v))
}

func (h *MemberHandler) DeleteMember(w http.ResponseWriter, r *http.Request) {
	id := domain.PersonID(r.PathValue("id"))
	if err := h.members.DeleteMember(r.Context(), id); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"id": id}))
}

func (h *MemberHandler) GetRelationships(w http.ResponseWriter, r *http.Request) {
	v, err := h.rels.GetRelationships(r.Context(), domain.PersonID(r.PathValue("id")))
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(v))
}

func (h *MemberHandler) GetRelationshipBetween(w http.ResponseWriter, r *http.Request) {
	v, err := h.rels.GetRelationshipBetween(r.Context(),
		domain.PersonID(r.PathValue("a")), domain.PersonID(r.PathValue("b")))
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(v))
}

// ExportMembers 成员名录 xlsx
func (h *MemberHandler) ExportMembers(w http.ResponseWriter, r *http.Request) {
	familyID := r.PathValue("id")
	members, err := h.loader.LoadFamilyMembers(r.Context(), familyID)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	data, err := GenerateMemberDirectory(members, h.logger)
	if err != nil {
		writeError(w, h.logger, r, fmt.Errorf("failed to generate export: %w", err))
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=family-members.xlsx")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
