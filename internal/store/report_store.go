package store

import (
	"errors"
	"time"

	"analyzer-entitlement-system/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReportStore 性能报告持久化，按不可猜测的 UUID 公开查询
type ReportStore struct {
	db *gorm.DB
}

func NewReportStore(db *gorm.DB) *ReportStore {
	return &ReportStore{db: db}
}

// Create 写入报告并分配新的报告ID
// UUID 碰撞概率可忽略，但与激活码生成同样做有限重试兜底
func (s *ReportStore) Create(report *model.Report) error {
	for attempt := 0; attempt < maxGenerateAttempts; attempt++ {
		report.ID = uuid.NewString()
		err := s.db.Create(report).Error
		if err == nil {
			return nil
		}
		if isUniqueViolation(err) {
			continue
		}
		return err
	}
	return model.ErrGenerationConflict
}

// Get 读取报告，过期检查在读取时完成
// 不存在与已过期返回同一错误，调用方无法借此探测任意ID是否存在过
func (s *ReportStore) Get(id string, now time.Time) (*model.Report, error) {
	var report model.Report
	err := s.db.Where("id = ?", id).First(&report).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrReportNotFound
	}
	if err != nil {
		return nil, err
	}
	if report.Expired(now) {
		return nil, model.ErrReportNotFound
	}
	return &report, nil
}

// PurgeExpired 物理清除已过期的报告，仅为回收存储，不影响读取语义
func (s *ReportStore) PurgeExpired(now time.Time) (int64, error) {
	res := s.db.Where("expires_at <= ?", now).Delete(&model.Report{})
	return res.RowsAffected, res.Error
}
