package service

import (
	"log/slog"
	"time"

	"analyzer-entitlement-system/internal/model"
	"analyzer-entitlement-system/internal/store"

	"gorm.io/datatypes"
)

// ReportPayload 分析器提交的报告负载，各字段原样存储
type ReportPayload struct {
	SpeedTestResult   datatypes.JSON `json:"speedTestResult"`
	HardwareInfo      datatypes.JSON `json:"hardwareInfo"`
	StreamingAnalysis datatypes.JSON `json:"streamingAnalysis"`
}

// ReportService 报告的创建、读取与过期
type ReportService struct {
	reports *store.ReportStore
	ttl     time.Duration
	now     func() time.Time
}

func NewReportService(reports *store.ReportStore, ttl time.Duration) *ReportService {
	return &ReportService{
		reports: reports,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Create 存储报告并返回含ID与过期时间的完整记录
func (s *ReportService) Create(payload ReportPayload) (*model.Report, error) {
	now := s.now()
	report := &model.Report{
		SpeedTestResult:   payload.SpeedTestResult,
		HardwareInfo:      payload.HardwareInfo,
		StreamingAnalysis: payload.StreamingAnalysis,
		CreatedAt:         now,
		ExpiresAt:         now.Add(s.ttl),
	}
	if err := s.reports.Create(report); err != nil {
		return nil, err
	}
	return report, nil
}

// Get 读取报告，不存在与已过期不作区分
func (s *ReportService) Get(id string) (*model.Report, error) {
	return s.reports.Get(id, s.now())
}

// StartJanitor 启动后台清理，周期性物理删除过期报告
// 清理只负责回收存储，过期语义由读取路径保证
// 返回的函数用于停止清理
func (s *ReportService) StartJanitor(interval time.Duration) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ticker.C:
				purged, err := s.reports.PurgeExpired(s.now())
				if err != nil {
					slog.Error("清理过期报告失败", "error", err)
					continue
				}
				if purged > 0 {
					slog.Info("已清理过期报告", "count", purged)
				}
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()

	return func() { close(done) }
}
