package model

import "time"

// UsageLog 激活码验证记录，仅用于审计，不参与授权判定
type UsageLog struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Code      string    `json:"code" gorm:"index"`
	Result    string    `json:"result"` // ok, unknown_code, code_disabled, globally_disabled
	IPAddress string    `json:"ip_address"`
	UserAgent string    `json:"user_agent"`
	CreatedAt time.Time `json:"created_at"`
}
