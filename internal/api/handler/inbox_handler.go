package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/quote-inbox/internal/api/middleware"
	"github.com/d60-Lab/quote-inbox/internal/service"
	"github.com/d60-Lab/quote-inbox/pkg/response"
)

type inboxQuery struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=200"`
}

type inboxPage struct {
	Page     int                `json:"page"`
	PageSize int                `json:"page_size"`
	Total    int                `json:"total"`
	List     []service.InboxRow `json:"list"`
}

// GetInbox 当前登录用户的收件箱
// @Summary 查询跨角色收件箱
// @Tags 收件箱
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(50)
// @Success 200 {object} response.Response{data=inboxPage}
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /api/v1/inbox [get]
func (h *Handler) GetInbox(c *gin.Context) {
	var q inboxQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if q.Page == 0 {
		q.Page = 1
	}
	if q.PageSize == 0 {
		q.PageSize = 50
	}

	viewer, ok := middleware.ViewerFrom(c)
	if !ok {
		response.Unauthorized(c, "missing viewer")
		return
	}

	rows, err := h.inboxService.Load(c.Request.Context(), viewer)
	if err != nil {
		if errors.Is(err, service.ErrInvalidViewer) {
			response.BadRequest(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}

	// 行已排序，这里只做切片
	start := min((q.Page-1)*q.PageSize, len(rows))
	end := min(start+q.PageSize, len(rows))
	response.Success(c, inboxPage{
		Page:     q.Page,
		PageSize: q.PageSize,
		Total:    len(rows),
		List:     rows[start:end],
	})
}

// Healthz 存活探针
func (h *Handler) Healthz(c *gin.Context) {
	response.Success(c, gin.H{"status": "ok"})
}
