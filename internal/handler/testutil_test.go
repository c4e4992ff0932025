package handler

import (
	"testing"
	"time"

	"analyzer-entitlement-system/internal/database"
	"analyzer-entitlement-system/internal/middleware"
	"analyzer-entitlement-system/internal/model"
	"analyzer-entitlement-system/internal/service"
	"analyzer-entitlement-system/internal/store"
	"analyzer-entitlement-system/internal/util"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// setupTestApp 初始化测试环境：内存库、管理员账户与完整路由
// 返回管理员令牌供需要认证的用例使用
func setupTestApp(t *testing.T) (*fiber.App, *gorm.DB, string) {
	t.Helper()

	db := database.InitTestDB()
	t.Cleanup(func() { database.CleanTestDB(db) })

	util.SetJWTSecret("test-secret")

	// 创建测试管理员用户
	hashed, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	require.NoError(t, err)
	admin := &model.User{
		Username: "admin",
		Password: string(hashed),
		Role:     "admin",
	}
	require.NoError(t, db.Create(admin).Error)

	token, err := util.GenerateToken(admin.ID)
	require.NoError(t, err)

	entitlement := service.NewEntitlementService(db, store.NewCodeStore(db), store.NewSwitchStore(db), nil)
	reports := service.NewReportService(store.NewReportStore(db), 3*24*time.Hour)
	oplog := service.NewOpLogService(db)

	authHandler := NewAuthHandler(db)
	codeHandler := NewCodeHandler(entitlement, oplog)
	settingsHandler := NewSettingsHandler(entitlement, oplog)
	reportHandler := NewReportHandler(reports)
	logHandler := NewLogHandler(oplog)

	app := fiber.New()
	api := app.Group("/api")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	auth := api.Group("/auth")
	auth.Post("/login", authHandler.HandleLogin)
	auth.Post("/logout", middleware.Auth(), authHandler.HandleLogout)
	auth.Get("/me", middleware.Auth(), authHandler.HandleMe)

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

	api.Post("/validate", codeHandler.HandleValidate)
	api.Post("/reports", reportHandler.HandleCreateReport)
	api.Get("/reports/:id", reportHandler.HandleGetReport)

	return app, db, token
}
