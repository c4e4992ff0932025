package database

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"analyzer-entitlement-system/internal/model"

	"github.com/glebarez/sqlite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// InitDB 打开数据库并完成迁移与初始数据
func InitDB(dbPath, adminUsername, adminPassword string) (*gorm.DB, error) {
	// 创建数据目录
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("创建数据目录失败: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("数据库连接失败: %w", err)
	}

	if err := migrate(db); err != nil {
		return nil, err
	}

	if err := seedAdmin(db, adminUsername, adminPassword); err != nil {
		return nil, err
	}

	return db, nil
}

func migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.User{},
		&model.ActivationCode{},
		&model.GlobalSetting{},
		&model.Report{},
		&model.UsageLog{},
		&model.OperationLog{},
		&model.LoginLog{},
	)
	if err != nil {
		return fmt.Errorf("数据库迁移失败: %w", err)
	}
	return nil
}

// seedAdmin 首次启动时创建管理员账户
func seedAdmin(db *gorm.DB, username, password string) error {
	var count int64
	db.Model(&model.User{}).Where("username = ?", username).Count(&count)
	if count > 0 {
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("生成密码哈希失败: %w", err)
	}

	admin := &model.User{
		Username:  username,
		Password:  string(hashed),
		Role:      "admin",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := db.Create(admin).Error; err != nil {
		return fmt.Errorf("创建管理员账户失败: %w", err)
	}
	return nil
}
