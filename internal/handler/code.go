package handler

import (
	"errors"
	"log/slog"
	"strconv"

	"analyzer-entitlement-system/internal/model"
	"analyzer-entitlement-system/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CodeHandler 激活码管理与分析器验证
type CodeHandler struct {
	entitlement *service.EntitlementService
	oplog       *service.OpLogService
}

func NewCodeHandler(entitlement *service.EntitlementService, oplog *service.OpLogService) *CodeHandler {
	return &CodeHandler{entitlement: entitlement, oplog: oplog}
}

// HandleListCodes 管理员获取全部激活码，新的在前
func (h *CodeHandler) HandleListCodes(c *fiber.Ctx) error {
	codes, err := h.entitlement.ListCodes()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "获取激活码失败",
		})
	}
	return c.JSON(codes)
}

// HandleGenerateCode 生成新激活码，无需输入
func (h *CodeHandler) HandleGenerateCode(c *fiber.Ctx) error {
	code, err := h.entitlement.GenerateCode()
	if err != nil {
		if errors.Is(err, model.ErrGenerationConflict) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "激活码生成冲突，请重试",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "激活码生成失败",
		})
	}

	if err := h.oplog.Record(c.Locals("userID").(uint), "generate", "code", code.Code, nil); err != nil {
		slog.Warn("写入操作日志失败", "action", "generate", "error", err)
	}
	return c.Status(fiber.StatusCreated).JSON(code)
}

// HandleUpdateCode 启用或停用激活码
func (h *CodeHandler) HandleUpdateCode(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "无效的激活码ID",
		})
	}

	type UpdateInput struct {
		IsActive *bool `json:"isActive"`
	}
	input := new(UpdateInput)
	if err := c.BodyParser(input); err != nil || input.IsActive == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "无效的输入数据",
		})
	}

	code, err := h.entitlement.SetCodeActive(id, *input.IsActive)
	if err != nil {
		if errors.Is(err, model.ErrCodeNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "激活码不存在",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "更新激活码失败",
		})
	}

	if err := h.oplog.Record(c.Locals("userID").(uint), "toggle", "code", code.Code, fiber.Map{"isActive": *input.IsActive}); err != nil {
		slog.Warn("写入操作日志失败", "action", "toggle", "error", err)
	}
	return c.JSON(code)
}

// HandleDeleteCode 删除激活码
func (h *CodeHandler) HandleDeleteCode(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "无效的激活码ID",
		})
	}

	if err := h.entitlement.DeleteCode(id); err != nil {
		if errors.Is(err, model.ErrCodeNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "激活码不存在",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "删除激活码失败",
		})
	}

	if err := h.oplog.Record(c.Locals("userID").(uint), "delete", "code", c.Params("id"), nil); err != nil {
		slog.Warn("写入操作日志失败", "action", "delete", "error", err)
	}
	return c.JSON(fiber.Map{
		"message": "激活码删除成功",
	})
}

// HandleCodeUsage 查询激活码最近的验证记录
func (h *CodeHandler) HandleCodeUsage(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "无效的激活码ID",
		})
	}

	usages, err := h.entitlement.CodeUsage(id, 20)
	if err != nil {
		if errors.Is(err, model.ErrCodeNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "激活码不存在",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "查询使用记录失败",
		})
	}

	return c.JSON(fiber.Map{
		"usages": usages,
	})
}

// HandleValidate 分析器验证并消费激活码
func (h *CodeHandler) HandleValidate(c *fiber.Ctx) error {
	type ValidateInput struct {
		Code string `json:"code"`
	}
	input := new(ValidateInput)
	if err := c.BodyParser(input); err != nil || input.Code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "激活码不能为空",
		})
	}

	code, err := h.entitlement.ValidateAndConsume(input.Code, c.IP(), c.Get("User-Agent"))
	if err != nil {
		reason := service.RejectionReason(err)
		if reason == "" {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "验证失败",
			})
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"valid":  false,
			"reason": reason,
		})
	}

	return c.JSON(fiber.Map{
		"valid":      true,
		"usageCount": code.UsageCount,
	})
}

func parseID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
