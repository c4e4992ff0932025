package service

import (
	"encoding/json"
	"time"

	"analyzer-entitlement-system/internal/model"

	"gorm.io/gorm"
)

// OpLogService 管理员操作日志
type OpLogService struct {
	db *gorm.DB
}

func NewOpLogService(db *gorm.DB) *OpLogService {
	return &OpLogService{db: db}
}

// Record 记录一次管理操作
func (s *OpLogService) Record(userID uint, action, target, targetID string, details interface{}) error {
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		return err
	}

	entry := &model.OperationLog{
		UserID:    userID,
		Action:    action,
		Target:    target,
		TargetID:  targetID,
		Details:   string(detailsJSON),
		CreatedAt: time.Now(),
	}
	return s.db.Create(entry).Error
}

// List 获取操作日志列表
func (s *OpLogService) List(page, pageSize int) ([]model.OperationLog, int64, error) {
	var logs []model.OperationLog
	var total int64

	if err := s.db.Model(&model.OperationLog{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := s.db.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&logs).Error; err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}
