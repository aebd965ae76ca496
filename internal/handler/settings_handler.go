package handler

import (
	"github.com/gin-gonic/gin"
	apperrors "github.com/weiwangfds/keepsake/internal/errors"
	"github.com/weiwangfds/keepsake/internal/response"
	"github.com/weiwangfds/keepsake/internal/settings"
)

// SettingsHandler 界面设置接口
type SettingsHandler struct {
	store *settings.Store
}

// NewSettingsHandler 创建设置处理器实例
func NewSettingsHandler(store *settings.Store) *SettingsHandler {
	return &SettingsHandler{store: store}
}

// settingsPatch 只修改传入的字段
type settingsPatch struct {
	DarkMode *bool          `json:"darkMode"`
	View     *settings.View `json:"view"`
}

// Get 获取当前设置
// @Summary 获取界面设置
// @Tags 设置
// @Produce json
// @Success 200 {object} response.Response{data=settings.Settings} "获取成功"
// @Router /api/v1/settings [get]
func (h *SettingsHandler) Get(c *gin.Context) {
	response.Success(c, h.store.Get())
}

// Put 修改设置并写回文件
// @Summary 修改界面设置
// @Description 未知视图回退为 birthday
// @Tags 设置
// @Accept json
// @Produce json
// @Param settings body settingsPatch true "要修改的字段"
// @Success 200 {object} response.Response{data=settings.Settings} "修改成功"
// @Router /api/v1/settings [put]
func (h *SettingsHandler) Put(c *gin.Context) {
	var patch settingsPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	updated, err := h.store.Update(func(s *settings.Settings) {
		if patch.DarkMode != nil {
			s.DarkMode = *patch.DarkMode
		}
		if patch.View != nil {
			s.View = patch.View.Normalize()
		}
	})
	if err != nil {
		response.Error(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}
	response.Success(c, updated)
}
