package httpapi

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Router 使用标准库 http.ServeMux（方法 + 路径参数模式）
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	r := &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
	r.Handle("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, Ok(map[string]string{"status": "ok"}))
	})
	r.HandleHandler("GET /metrics", promhttp.Handler())
	return r
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

// HandleHandler 支持 http.Handler 接口（/metrics 等）
func (r *Router) HandleHandler(pattern string, h http.Handler) {
	r.mux.Handle(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// RegisterFamilyRoutes 家族 + 家族成员列表/导出/统计
func (r *Router) RegisterFamilyRoutes(h *FamilyHandler) {
	r.Handle("POST /api/v1/families", h.CreateFamily)
	r.Handle("POST /api/v1/families/join", h.JoinFamily)
	r.Handle("GET /api/v1/families/{id}", h.GetFamily)
	r.Handle("PUT /api/v1/families/{id}", h.UpdateFamily)
	r.Handle("GET /api/v1/families/{id}/analytics", h.GetAnalytics)
}

// RegisterMemberRoutes 成员增删改查 + 关系查询
func (r *Router) RegisterMemberRoutes(h *MemberHandler) {
	r.Handle("GET /api/v1/families/{id}/members", h.ListMembers)
	r.Handle("POST /api/v1/families/{id}/members", h.CreateMember)
	r.Handle("GET /api/v1/families/{id}/members/export", h.ExportMembers)
	r.Handle("GET /api/v1/members/{id}", h.GetMember)
	r.Handle("PUT /api/v1/members/{id}", h.UpdateMember)
	r.Handle("DELETE /api/v1/members/{id}", h.DeleteMember)
	r.Handle("GET /api/v1/members/{id}/relationships", h.GetRelationships)
	r.Handle("GET /api/v1/relationships/between/{a}/{b}", h.GetRelationshipBetween)
}

// RegisterFamilyEventRoutes 家族活动 + 时间线
func (r *Router) RegisterFamilyEventRoutes(h *FamilyEventHandler) {
	r.Handle("POST /api/v1/families/{id}/events", h.CreateEvent)
	r.Handle("GET /api/v1/families/{id}/timeline", h.GetTimeline)
}
