package store

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"analyzer-entitlement-system/internal/model"

	"gorm.io/gorm"
)

const (
	// 激活码字母表，去掉易混淆的 0/O/1/I，便于口头传达与手工输入
	codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	codeLength   = 8

	// 唯一性冲突时的重试上限
	maxGenerateAttempts = 5
)

// CodeStore 激活码持久化
type CodeStore struct {
	db *gorm.DB
}

func NewCodeStore(db *gorm.DB) *CodeStore {
	return &CodeStore{db: db}
}

// Create 生成一个新激活码，默认启用、使用次数为0
// 码值撞库时换新候选重试，重试耗尽返回 ErrGenerationConflict
func (s *CodeStore) Create() (*model.ActivationCode, error) {
	for attempt := 0; attempt < maxGenerateAttempts; attempt++ {
		value, err := randomCode(codeLength)
		if err != nil {
			return nil, err
		}

		code := &model.ActivationCode{
			Code:     value,
			IsActive: true,
		}
		err = s.db.Create(code).Error
		if err == nil {
			return code, nil
		}
		if isUniqueViolation(err) {
			continue
		}
		return nil, err
	}
	return nil, model.ErrGenerationConflict
}

// List 返回全部激活码，新的在前
func (s *CodeStore) List() ([]model.ActivationCode, error) {
	var codes []model.ActivationCode
	err := s.db.Order("created_at DESC, id DESC").Find(&codes).Error
	if err != nil {
		return nil, err
	}
	return codes, nil
}

// SetActive 启用或停用激活码
func (s *CodeStore) SetActive(id uint, isActive bool) (*model.ActivationCode, error) {
	var code model.ActivationCode
	err := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.ActivationCode{}).Where("id = ?", id).Updates(map[string]interface{}{
			"is_active":  isActive,
			"updated_at": time.Now(),
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return model.ErrCodeNotFound
		}

		err := tx.First(&code, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 更新与回读之间被并发删除
			return model.ErrCodeNotFound
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return &code, nil
}

// Delete 物理删除激活码，删除后验证该码值返回"不存在"而非"已停用"
func (s *CodeStore) Delete(id uint) error {
	res := s.db.Delete(&model.ActivationCode{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return model.ErrCodeNotFound
	}
	return nil
}

// GetByID 按主键查询
func (s *CodeStore) GetByID(id uint) (*model.ActivationCode, error) {
	var code model.ActivationCode
	err := s.db.First(&code, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrCodeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &code, nil
}

// RecordUsage 按码值消费一次使用额度
// 停用检查与计数自增由同一条条件 UPDATE 完成，并发消费不丢计数，
// 也不会与并发停用操作竞争出"停用后仍计数"的结果
func (s *CodeStore) RecordUsage(value string) (*model.ActivationCode, error) {
	var code model.ActivationCode
	err := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.ActivationCode{}).
			Where("code = ? AND is_active = ?", value, true).
			Updates(map[string]interface{}{
				"usage_count": gorm.Expr("usage_count + 1"),
				"updated_at":  time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// 区分不存在与已停用
			var count int64
			if err := tx.Model(&model.ActivationCode{}).Where("code = ?", value).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return model.ErrCodeNotFound
			}
			return model.ErrCodeInactive
		}
		return tx.Where("code = ?", value).First(&code).Error
	})
	if err != nil {
		return nil, err
	}
	return &code, nil
}

// randomCode 从固定字母表生成加密随机码值
func randomCode(length int) (string, error) {
	result := make([]byte, length)
	alphabetLen := big.NewInt(int64(len(codeAlphabet)))
	for i := range result {
		n, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", fmt.Errorf("生成随机数失败: %w", err)
		}
		result[i] = codeAlphabet[n.Int64()]
	}
	return string(result), nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
