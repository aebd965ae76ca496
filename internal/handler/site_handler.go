package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/weiwangfds/keepsake/internal/response"
	"github.com/weiwangfds/keepsake/internal/site"
)

// SiteHandler 站点信息接口
type SiteHandler struct {
	site *site.Site
	now  func() time.Time
}

// NewSiteHandler 创建站点处理器实例
func NewSiteHandler(s *site.Site) *SiteHandler {
	return &SiteHandler{site: s, now: time.Now}
}

type siteResponse struct {
	Name           string         `json:"name"`
	Greeting       string         `json:"greeting"`
	Countdown      site.Countdown `json:"countdown"`
	HeroBackground string         `json:"heroBackground"`
	Moods          []string       `json:"moods"`
}

// Get 获取站点信息与倒计时
// @Summary 站点信息
// @Tags 站点
// @Produce json
// @Success 200 {object} response.Response{data=siteResponse} "获取成功"
// @Router /api/v1/site [get]
func (h *SiteHandler) Get(c *gin.Context) {
	now := h.now()
	response.Success(c, siteResponse{
		Name:           h.site.Name(),
		Greeting:       h.site.Greeting(now),
		Countdown:      h.site.Countdown(now),
		HeroBackground: h.site.HeroBackground(),
		Moods:          site.Moods,
	})
}

// Countdown 只返回倒计时
// @Summary 生日倒计时
// @Tags 站点
// @Produce json
// @Success 200 {object} response.Response{data=site.Countdown} "获取成功"
// @Router /api/v1/site/countdown [get]
func (h *SiteHandler) Countdown(c *gin.Context) {
	response.Success(c, h.site.Countdown(h.now()))
}
