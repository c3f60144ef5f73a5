package handler

import "github.com/d60-Lab/quote-inbox/internal/service"

// Handler HTTP 处理器集合
type Handler struct {
	inboxService service.InboxService
}

func NewHandler(inboxService service.InboxService) *Handler {
	return &Handler{inboxService: inboxService}
}
