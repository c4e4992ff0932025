package handler

import (
	"errors"

	"analyzer-entitlement-system/internal/model"
	"analyzer-entitlement-system/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ReportHandler 性能报告的提交与公开查询
type ReportHandler struct {
	reports *service.ReportService
}

func NewReportHandler(reports *service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// HandleCreateReport 分析器提交报告
func (h *ReportHandler) HandleCreateReport(c *fiber.Ctx) error {
	payload := new(service.ReportPayload)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "无效的报告数据",
		})
	}

	report, err := h.reports.Create(*payload)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "报告保存失败",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(report)
}

// HandleGetReport 通过分享链接查询报告
// 不存在与已过期统一返回404，避免泄露任意ID是否存在过
func (h *ReportHandler) HandleGetReport(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "报告ID不能为空",
		})
	}

	report, err := h.reports.Get(id)
	if err != nil {
		if errors.Is(err, model.ErrReportNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "报告不存在或已过期",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "获取报告失败",
		})
	}

	return c.JSON(report)
}
