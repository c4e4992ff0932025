package store

import (
	"time"

	"analyzer-entitlement-system/internal/model"

	"gorm.io/gorm"
)

// 单例记录固定主键
const settingID = 1

// SwitchStore 全局停用开关，单例记录，首次访问时创建
type SwitchStore struct {
	db *gorm.DB
}

func NewSwitchStore(db *gorm.DB) *SwitchStore {
	return &SwitchStore{db: db}
}

// Get 读取全局停用状态
func (s *SwitchStore) Get() (bool, error) {
	setting, err := s.ensure()
	if err != nil {
		return false, err
	}
	return setting.GlobalDisabled, nil
}

// Set 写入全局停用状态并返回新值，重复设置同一值视为成功
func (s *SwitchStore) Set(disabled bool) (bool, error) {
	if _, err := s.ensure(); err != nil {
		return false, err
	}

	err := s.db.Model(&model.GlobalSetting{}).Where("id = ?", settingID).Updates(map[string]interface{}{
		"global_disabled": disabled,
		"updated_at":      time.Now(),
	}).Error
	if err != nil {
		return false, err
	}
	return disabled, nil
}

func (s *SwitchStore) ensure() (*model.GlobalSetting, error) {
	var setting model.GlobalSetting
	err := s.db.Where(model.GlobalSetting{ID: settingID}).
		Attrs(model.GlobalSetting{GlobalDisabled: false}).
		FirstOrCreate(&setting).Error
	if err != nil {
		return nil, err
	}
	return &setting, nil
}
