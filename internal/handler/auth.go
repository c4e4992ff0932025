package handler

import (
	"time"

	"analyzer-entitlement-system/internal/model"
	"analyzer-entitlement-system/internal/util"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthHandler 管理员登录与身份查询
type AuthHandler struct {
	db *gorm.DB
}

func NewAuthHandler(db *gorm.DB) *AuthHandler {
	return &AuthHandler{db: db}
}

func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	input := new(LoginInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "无效的输入数据",
		})
	}

	var user model.User
	result := h.db.Where("username = ?", input.Username).First(&user)
	if result.Error != nil {
		h.logLogin(0, input.Username, c, "failed")
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "用户名或密码错误",
		})
	}

	// 验证密码
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		h.logLogin(user.ID, user.Username, c, "failed")
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "用户名或密码错误",
		})
	}

	// 记录登录日志并更新最后登录时间
	h.logLogin(user.ID, user.Username, c, "success")
	user.LastLogin = time.Now()
	h.db.Save(&user)

	// 生成JWT令牌
	token, err := util.GenerateToken(user.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "令牌生成失败",
		})
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user": fiber.Map{
			"id":       user.ID,
			"username": user.Username,
			"role":     user.Role,
		},
	})
}

// HandleLogout 退出登录
// 令牌无服务端状态，这里只记录退出日志，由前端丢弃令牌
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var user model.User
	if err := h.db.First(&user, userID).Error; err == nil {
		h.logLogin(user.ID, user.Username, c, "logout")
	}

	return c.JSON(fiber.Map{
		"message": "已退出登录",
	})
}

// HandleMe 返回当前登录管理员信息
func (h *AuthHandler) HandleMe(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var user model.User
	if err := h.db.First(&user, userID).Error; err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "用户不存在",
		})
	}

	return c.JSON(fiber.Map{
		"id":       user.ID,
		"username": user.Username,
		"role":     user.Role,
	})
}

func (h *AuthHandler) logLogin(userID uint, username string, c *fiber.Ctx, status string) {
	entry := &model.LoginLog{
		UserID:    userID,
		Username:  username,
		IP:        c.IP(),
		UserAgent: c.Get("User-Agent"),
		Status:    status,
		CreatedAt: time.Now(),
	}
	h.db.Create(entry)
}
