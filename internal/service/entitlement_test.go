package service

import (
	"testing"

	"analyzer-entitlement-system/internal/database"
	"analyzer-entitlement-system/internal/model"
	"analyzer-entitlement-system/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestEntitlement(t *testing.T) (*EntitlementService, *gorm.DB) {
	t.Helper()
	db := database.InitTestDB()
	t.Cleanup(func() { database.CleanTestDB(db) })
	return NewEntitlementService(db, store.NewCodeStore(db), store.NewSwitchStore(db), nil), db
}

func TestValidateAndConsume(t *testing.T) {
	svc, _ := newTestEntitlement(t)

	code, err := svc.GenerateCode()
	require.NoError(t, err)

	used, err := svc.ValidateAndConsume(code.Code, "127.0.0.1", "analyzer/1.0")
	require.NoError(t, err)
	assert.Equal(t, uint(1), used.UsageCount)
}

func TestValidateAndConsumeUnknownCode(t *testing.T) {
	svc, _ := newTestEntitlement(t)

	_, err := svc.ValidateAndConsume("NOSUCH99", "127.0.0.1", "analyzer/1.0")
	assert.ErrorIs(t, err, model.ErrCodeNotFound)
	assert.Equal(t, ReasonUnknownCode, RejectionReason(err))
}

func TestValidateAndConsumeInactive(t *testing.T) {
	svc, _ := newTestEntitlement(t)

	code, err := svc.GenerateCode()
	require.NoError(t, err)
	_, err = svc.SetCodeActive(code.ID, false)
	require.NoError(t, err)

	_, err = svc.ValidateAndConsume(code.Code, "127.0.0.1", "analyzer/1.0")
	assert.ErrorIs(t, err, model.ErrCodeInactive)
	assert.Equal(t, ReasonCodeDisabled, RejectionReason(err))

	// 被拒绝的验证不产生计数
	codes, err := svc.ListCodes()
	require.NoError(t, err)
	require.Len(t, codes, 1)
	assert.Equal(t, uint(0), codes[0].UsageCount)
}

// 全局开关先于激活码检查，对不存在的码值同样生效
func TestValidateAndConsumeGloballyDisabled(t *testing.T) {
	svc, _ := newTestEntitlement(t)

	_, err := svc.SetGlobalDisabled(true)
	require.NoError(t, err)

	code, err := svc.GenerateCode()
	require.NoError(t, err)

	_, err = svc.ValidateAndConsume(code.Code, "127.0.0.1", "analyzer/1.0")
	assert.ErrorIs(t, err, model.ErrGloballyDisabled)
	assert.Equal(t, ReasonGloballyDisabled, RejectionReason(err))

	_, err = svc.ValidateAndConsume("NOSUCH99", "127.0.0.1", "analyzer/1.0")
	assert.ErrorIs(t, err, model.ErrGloballyDisabled)
}

// 全局开关切换前后，单个激活码的状态与计数不受影响
func TestGlobalSwitchRoundTrip(t *testing.T) {
	svc, _ := newTestEntitlement(t)

	code, err := svc.GenerateCode()
	require.NoError(t, err)

	used, err := svc.ValidateAndConsume(code.Code, "127.0.0.1", "analyzer/1.0")
	require.NoError(t, err)
	assert.Equal(t, uint(1), used.UsageCount)

	_, err = svc.SetGlobalDisabled(true)
	require.NoError(t, err)

	_, err = svc.ValidateAndConsume(code.Code, "127.0.0.1", "analyzer/1.0")
	assert.ErrorIs(t, err, model.ErrGloballyDisabled)

	// 拒绝期间计数不变
	reloaded, err := svc.ListCodes()
	require.NoError(t, err)
	assert.Equal(t, uint(1), reloaded[0].UsageCount)

	_, err = svc.SetGlobalDisabled(false)
	require.NoError(t, err)

	used, err = svc.ValidateAndConsume(code.Code, "127.0.0.1", "analyzer/1.0")
	require.NoError(t, err)
	assert.Equal(t, uint(2), used.UsageCount)
}

func TestValidateAndConsumeWritesUsageLog(t *testing.T) {
	svc, db := newTestEntitlement(t)

	code, err := svc.GenerateCode()
	require.NoError(t, err)

	_, err = svc.ValidateAndConsume(code.Code, "10.0.0.1", "analyzer/1.0")
	require.NoError(t, err)
	_, err = svc.SetCodeActive(code.ID, false)
	require.NoError(t, err)
	_, err = svc.ValidateAndConsume(code.Code, "10.0.0.1", "analyzer/1.0")
	require.Error(t, err)

	var logs []model.UsageLog
	require.NoError(t, db.Where("code = ?", code.Code).Order("id").Find(&logs).Error)
	require.Len(t, logs, 2)
	assert.Equal(t, ResultOK, logs[0].Result)
	assert.Equal(t, ReasonCodeDisabled, logs[1].Result)
	assert.Equal(t, "10.0.0.1", logs[0].IPAddress)
}

func TestCodeUsage(t *testing.T) {
	svc, _ := newTestEntitlement(t)

	code, err := svc.GenerateCode()
	require.NoError(t, err)

	_, err = svc.ValidateAndConsume(code.Code, "127.0.0.1", "analyzer/1.0")
	require.NoError(t, err)

	usages, err := svc.CodeUsage(code.ID, 20)
	require.NoError(t, err)
	assert.Len(t, usages, 1)

	_, err = svc.CodeUsage(99999, 20)
	assert.ErrorIs(t, err, model.ErrCodeNotFound)
}

func TestDeleteCode(t *testing.T) {
	svc, _ := newTestEntitlement(t)

	code, err := svc.GenerateCode()
	require.NoError(t, err)

	require.NoError(t, svc.DeleteCode(code.ID))
	assert.ErrorIs(t, svc.DeleteCode(code.ID), model.ErrCodeNotFound)

	_, err = svc.ValidateAndConsume(code.Code, "127.0.0.1", "analyzer/1.0")
	assert.ErrorIs(t, err, model.ErrCodeNotFound)
}
