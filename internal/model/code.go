package model

import "time"

// ActivationCode 分析器激活码，可被多个分析器实例重复使用
type ActivationCode struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	Code       string    `json:"code" gorm:"uniqueIndex;not null"`
	IsActive   bool      `json:"isActive" gorm:"not null;default:true"`
	UsageCount uint      `json:"usageCount" gorm:"not null;default:0"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
