package handler

import (
	"strconv"

	"analyzer-entitlement-system/internal/service"

	"github.com/gofiber/fiber/v2"
)

// LogHandler 管理员操作日志查询
type LogHandler struct {
	oplog *service.OpLogService
}

func NewLogHandler(oplog *service.OpLogService) *LogHandler {
	return &LogHandler{oplog: oplog}
}

func (h *LogHandler) HandleGetLogs(c *fiber.Ctx) error {
	// 获取分页参数
	page, _ := strconv.Atoi(c.Query("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("page_size", "10"))

	// 限制页面大小
	if pageSize > 100 {
		pageSize = 100
	}

	logs, total, err := h.oplog.List(page, pageSize)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "获取日志失败",
		})
	}

	return c.JSON(fiber.Map{
		"logs":  logs,
		"total": total,
		"page":  page,
	})
}
