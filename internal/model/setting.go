package model

import "time"

// GlobalSetting 全局设置单例记录，globalDisabled 为全局停用开关
// 与单个激活码的 isActive 相互独立
type GlobalSetting struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	GlobalDisabled bool      `json:"globalDisabled" gorm:"not null;default:false"`
	UpdatedAt      time.Time `json:"updatedAt"`
}
