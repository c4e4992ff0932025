package service

import (
	"testing"
	"time"

	"analyzer-entitlement-system/internal/database"
	"analyzer-entitlement-system/internal/model"
	"analyzer-entitlement-system/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func newTestReportService(t *testing.T, ttl time.Duration) *ReportService {
	t.Helper()
	db := database.InitTestDB()
	t.Cleanup(func() { database.CleanTestDB(db) })
	return NewReportService(store.NewReportStore(db), ttl)
}

func testPayload() ReportPayload {
	return ReportPayload{
		SpeedTestResult:   datatypes.JSON(`{"download":250.1,"upload":42.7,"ping":12}`),
		HardwareInfo:      datatypes.JSON(`{"cpu":{"brand":"Ryzen 7","cores_physical":8}}`),
		StreamingAnalysis: datatypes.JSON(`{"overall_score":92,"overall_rating":"EXCELENTE"}`),
	}
}

func TestReportServiceCreate(t *testing.T) {
	svc := newTestReportService(t, 3*24*time.Hour)

	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return t0 }

	report, err := svc.Create(testPayload())
	require.NoError(t, err)

	assert.NotEmpty(t, report.ID)
	assert.Equal(t, t0, report.CreatedAt)
	assert.Equal(t, t0.Add(3*24*time.Hour), report.ExpiresAt)
}

// 保留窗口3天：2天后可读，4天后与不存在无异
func TestReportServiceExpiry(t *testing.T) {
	svc := newTestReportService(t, 3*24*time.Hour)

	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return t0 }

	report, err := svc.Create(testPayload())
	require.NoError(t, err)

	svc.now = func() time.Time { return t0.Add(2 * 24 * time.Hour) }
	got, err := svc.Get(report.ID)
	require.NoError(t, err)
	assert.JSONEq(t, `{"download":250.1,"upload":42.7,"ping":12}`, string(got.SpeedTestResult))

	svc.now = func() time.Time { return t0.Add(4 * 24 * time.Hour) }
	_, err = svc.Get(report.ID)
	assert.ErrorIs(t, err, model.ErrReportNotFound)

	// 从未存在的ID返回同一错误
	_, err = svc.Get("ffffffff-ffff-ffff-ffff-ffffffffffff")
	assert.ErrorIs(t, err, model.ErrReportNotFound)
}

// 清理只回收存储，不影响读取语义；未过期的报告不受影响
func TestReportServiceJanitor(t *testing.T) {
	db := database.InitTestDB()
	defer database.CleanTestDB(db)
	reportStore := store.NewReportStore(db)
	svc := NewReportService(reportStore, 3*24*time.Hour)

	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return t0 }
	report, err := svc.Create(testPayload())
	require.NoError(t, err)

	svc.now = func() time.Time { return t0.Add(5 * 24 * time.Hour) }
	purged, err := reportStore.PurgeExpired(svc.now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	_, err = svc.Get(report.ID)
	assert.ErrorIs(t, err, model.ErrReportNotFound)
}

func TestReportServiceJanitorStop(t *testing.T) {
	svc := newTestReportService(t, 3*24*time.Hour)

	stop := svc.StartJanitor(10 * time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	stop()
}
