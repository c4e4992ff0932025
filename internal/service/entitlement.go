package service

import (
	"errors"
	"log/slog"
	"time"

	"analyzer-entitlement-system/internal/model"
	"analyzer-entitlement-system/internal/store"

	"gorm.io/gorm"
)

// 分析器验证的拒绝原因，随响应下发
const (
	ResultOK               = "ok"
	ReasonGloballyDisabled = "globally_disabled"
	ReasonUnknownCode      = "unknown_code"
	ReasonCodeDisabled     = "code_disabled"
)

// EntitlementService 授权判定的唯一入口：
// 组合激活码存储与全局开关，回答"此刻该码能否使用"
type EntitlementService struct {
	codes     *store.CodeStore
	sw        *store.SwitchStore
	db        *gorm.DB
	sheetSync *SheetSyncService
}

func NewEntitlementService(db *gorm.DB, codes *store.CodeStore, sw *store.SwitchStore, sheetSync *SheetSyncService) *EntitlementService {
	return &EntitlementService{
		codes:     codes,
		sw:        sw,
		db:        db,
		sheetSync: sheetSync,
	}
}

// ValidateAndConsume 验证激活码并记一次使用
// 全局开关必须在查询激活码之前检查：开关关闭时即使码本身有效、
// 甚至码不存在，也一律以 globally_disabled 拒绝，且不产生任何状态变更
func (s *EntitlementService) ValidateAndConsume(value, ip, userAgent string) (*model.ActivationCode, error) {
	disabled, err := s.sw.Get()
	if err != nil {
		return nil, err
	}
	if disabled {
		s.logUsage(value, ReasonGloballyDisabled, ip, userAgent)
		return nil, model.ErrGloballyDisabled
	}

	code, err := s.codes.RecordUsage(value)
	if err != nil {
		s.logUsage(value, RejectionReason(err), ip, userAgent)
		return nil, err
	}

	s.logUsage(value, ResultOK, ip, userAgent)
	return code, nil
}

// RejectionReason 业务错误到拒绝原因的映射，其他错误视为内部故障
func RejectionReason(err error) string {
	switch {
	case errors.Is(err, model.ErrGloballyDisabled):
		return ReasonGloballyDisabled
	case errors.Is(err, model.ErrCodeNotFound):
		return ReasonUnknownCode
	case errors.Is(err, model.ErrCodeInactive):
		return ReasonCodeDisabled
	}
	return ""
}

// logUsage 验证审计记录，写入失败只记日志，不影响判定结果
func (s *EntitlementService) logUsage(value, result, ip, userAgent string) {
	usage := &model.UsageLog{
		Code:      value,
		Result:    result,
		IPAddress: ip,
		UserAgent: userAgent,
		CreatedAt: time.Now(),
	}
	if err := s.db.Create(usage).Error; err != nil {
		slog.Warn("写入使用记录失败", "code", value, "error", err)
	}
}

// GenerateCode 生成新激活码
func (s *EntitlementService) GenerateCode() (*model.ActivationCode, error) {
	code, err := s.codes.Create()
	if err != nil {
		return nil, err
	}
	s.syncCode(code)
	return code, nil
}

// ListCodes 全部激活码，新的在前
func (s *EntitlementService) ListCodes() ([]model.ActivationCode, error) {
	return s.codes.List()
}

// SetCodeActive 启用或停用单个激活码
func (s *EntitlementService) SetCodeActive(id uint, isActive bool) (*model.ActivationCode, error) {
	code, err := s.codes.SetActive(id, isActive)
	if err != nil {
		return nil, err
	}
	s.syncCode(code)
	return code, nil
}

// DeleteCode 删除激活码
func (s *EntitlementService) DeleteCode(id uint) error {
	code, err := s.codes.GetByID(id)
	if err != nil {
		return err
	}
	if err := s.codes.Delete(id); err != nil {
		return err
	}
	if s.sheetSync != nil {
		go s.sheetSync.MarkDeleted(code.Code)
	}
	return nil
}

// CodeUsage 某个激活码最近的验证记录
func (s *EntitlementService) CodeUsage(id uint, limit int) ([]model.UsageLog, error) {
	code, err := s.codes.GetByID(id)
	if err != nil {
		return nil, err
	}

	var usages []model.UsageLog
	err = s.db.Where("code = ?", code.Code).Order("created_at DESC").Limit(limit).Find(&usages).Error
	if err != nil {
		return nil, err
	}
	return usages, nil
}

// GetGlobalDisabled 读取全局开关
func (s *EntitlementService) GetGlobalDisabled() (bool, error) {
	return s.sw.Get()
}

// SetGlobalDisabled 设置全局开关并返回新值
func (s *EntitlementService) SetGlobalDisabled(disabled bool) (bool, error) {
	return s.sw.Set(disabled)
}

func (s *EntitlementService) syncCode(code *model.ActivationCode) {
	if s.sheetSync != nil {
		go s.sheetSync.SyncCode(code)
	}
}
