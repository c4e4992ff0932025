package model

import (
	"time"

	"gorm.io/datatypes"
)

// Report 分析器单次运行的性能报告，通过不可猜测的 id 公开访问
// 三个负载字段由分析器整体提交，后端原样存取，不解析内部结构
type Report struct {
	ID                string         `json:"id" gorm:"primaryKey;type:varchar(36)"`
	SpeedTestResult   datatypes.JSON `json:"speedTestResult"`
	HardwareInfo      datatypes.JSON `json:"hardwareInfo"`
	StreamingAnalysis datatypes.JSON `json:"streamingAnalysis"`
	CreatedAt         time.Time      `json:"createdAt"`
	ExpiresAt         time.Time      `json:"expiresAt" gorm:"index"`
}

// Expired 报告是否已过期，过期后即视为不存在
func (r *Report) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}
