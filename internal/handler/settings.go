package handler

import (
	"log/slog"

	"analyzer-entitlement-system/internal/service"

	"github.com/gofiber/fiber/v2"
)

// SettingsHandler 全局开关
type SettingsHandler struct {
	entitlement *service.EntitlementService
	oplog       *service.OpLogService
}

func NewSettingsHandler(entitlement *service.EntitlementService, oplog *service.OpLogService) *SettingsHandler {
	return &SettingsHandler{entitlement: entitlement, oplog: oplog}
}

// HandleGetGlobal 读取全局停用状态
func (h *SettingsHandler) HandleGetGlobal(c *fiber.Ctx) error {
	disabled, err := h.entitlement.GetGlobalDisabled()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "获取全局状态失败",
		})
	}
	return c.JSON(fiber.Map{
		"globalDisabled": disabled,
	})
}

// HandleUpdateGlobal 设置全局停用状态
func (h *SettingsHandler) HandleUpdateGlobal(c *fiber.Ctx) error {
	type GlobalInput struct {
		GlobalDisabled *bool `json:"globalDisabled"`
	}
	input := new(GlobalInput)
	if err := c.BodyParser(input); err != nil || input.GlobalDisabled == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "无效的输入数据",
		})
	}

	disabled, err := h.entitlement.SetGlobalDisabled(*input.GlobalDisabled)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "更新全局状态失败",
		})
	}

	if err := h.oplog.Record(c.Locals("userID").(uint), "toggle", "setting", "global", fiber.Map{"globalDisabled": disabled}); err != nil {
		slog.Warn("写入操作日志失败", "action", "toggle", "error", err)
	}
	return c.JSON(fiber.Map{
		"globalDisabled": disabled,
	})
}
