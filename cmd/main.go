package main

import (
	"log/slog"
	"os"

	"analyzer-entitlement-system/internal/config"
	"analyzer-entitlement-system/internal/database"
	"analyzer-entitlement-system/internal/handler"
	"analyzer-entitlement-system/internal/middleware"
	"analyzer-entitlement-system/internal/service"
	"analyzer-entitlement-system/internal/store"
	"analyzer-entitlement-system/internal/util"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/lmittmann/tint"
)

func main() {
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, nil)))

	cfg := config.Load()
	util.SetJWTSecret(cfg.JWTSecret)

	// 初始化数据库
	db, err := database.InitDB(cfg.DBPath, cfg.AdminUsername, cfg.AdminPassword)
	if err != nil {
		slog.Error("数据库初始化失败", "error", err)
		os.Exit(1)
	}

	// Google Sheets 同步（可选）
	sheetSync, err := service.NewSheetSyncService(cfg.SheetSyncEnabled, cfg.CredentialPath, cfg.SpreadsheetID, cfg.SheetName)
	if err != nil {
		slog.Error("Sheet同步初始化失败", "error", err)
		os.Exit(1)
	}

	codeStore := store.NewCodeStore(db)
	switchStore := store.NewSwitchStore(db)
	reportStore := store.NewReportStore(db)

	entitlement := service.NewEntitlementService(db, codeStore, switchStore, sheetSync)
	reports := service.NewReportService(reportStore, cfg.ReportTTL)
	oplog := service.NewOpLogService(db)

	// 后台清理过期报告
	stopJanitor := reports.StartJanitor(cfg.JanitorInterval)
	defer stopJanitor()

	authHandler := handler.NewAuthHandler(db)
	codeHandler := handler.NewCodeHandler(entitlement, oplog)
	settingsHandler := handler.NewSettingsHandler(entitlement, oplog)
	reportHandler := handler.NewReportHandler(reports)
	logHandler := handler.NewLogHandler(oplog)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// 中间件
	app.Use(logger.New())
	app.Use(cors.New())

	// 路由组
	api := app.Group("/api")

	// 健康检查，前端启动时探测后端可用性
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// 认证路由
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.HandleLogin)
	auth.Post("/logout", middleware.Auth(), authHandler.HandleLogout)
	auth.Get("/me", middleware.Auth(), authHandler.HandleMe)

	// 管理员专用路由
	codes := api.Group("/codes", middleware.Auth(), middleware.AdminOnly(db))
	codes.Get("/", codeHandler.HandleListCodes)
	codes.Post("/", codeHandler.HandleGenerateCode)
	codes.Patch("/:id", codeHandler.HandleUpdateCode)
	codes.Delete("/:id", codeHandler.HandleDeleteCode)
	codes.Get("/:id/usage", codeHandler.HandleCodeUsage)

	settings := api.Group("/settings", middleware.Auth(), middleware.AdminOnly(db))
	settings.Get("/global", settingsHandler.HandleGetGlobal)
	settings.Patch("/global", settingsHandler.HandleUpdateGlobal)

	api.Get("/logs", middleware.Auth(), middleware.AdminOnly(db), logHandler.HandleGetLogs)

	// 分析器与公开路由
	api.Post("/validate", codeHandler.HandleValidate)
	api.Post("/reports", reportHandler.HandleCreateReport)
	api.Get("/reports/:id", reportHandler.HandleGetReport)

	slog.Info("服务启动", "port", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		slog.Error("服务退出", "error", err)
		os.Exit(1)
	}
}
