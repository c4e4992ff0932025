package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"analyzer-entitlement-system/internal/model"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetSyncService 将激活码表镜像到 Google Sheet，供运营查看
// 同步是尽力而为的旁路操作，失败不影响激活码状态
type SheetSyncService struct {
	service       *sheets.Service
	spreadsheetID string
	sheetName     string
}

func NewSheetSyncService(enableSync bool, credentialPath, spreadsheetID, sheetName string) (*SheetSyncService, error) {
	if !enableSync {
		return nil, nil
	}

	ctx := context.Background()

	// 读取凭证文件
	b, err := os.ReadFile(credentialPath)
	if err != nil {
		return nil, err
	}

	// 使用服务账号授权
	creds, err := google.CredentialsFromJSON(ctx, b, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("无法加载凭证: %v", err)
	}

	srv, err := sheets.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, err
	}

	return &SheetSyncService{
		service:       srv,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// SyncCode 同步单个激活码到表格，已存在则更新整行，否则追加
func (s *SheetSyncService) SyncCode(code *model.ActivationCode) error {
	if s == nil {
		return nil
	}

	rowIndex, found, err := s.findRow(code.Code)
	if err != nil {
		slog.Warn("查询Sheet数据失败", "error", err)
		return err
	}

	status := "启用"
	if !code.IsActive {
		status = "停用"
	}

	values := [][]interface{}{{
		code.Code,
		status,
		strconv.FormatUint(uint64(code.UsageCount), 10),
		code.CreatedAt.Format(time.RFC3339),
		code.UpdatedAt.Format(time.RFC3339),
	}}

	if found {
		// 更新现有行
		rangeData := fmt.Sprintf("%s!A%d:E%d", s.sheetName, rowIndex, rowIndex)
		_, err = s.service.Spreadsheets.Values.Update(
			s.spreadsheetID,
			rangeData,
			&sheets.ValueRange{Values: values},
		).ValueInputOption("USER_ENTERED").Do()
	} else {
		// 追加新行
		_, err = s.service.Spreadsheets.Values.Append(
			s.spreadsheetID,
			s.sheetName+"!A2:E",
			&sheets.ValueRange{Values: values},
		).ValueInputOption("USER_ENTERED").Do()
	}

	if err != nil {
		slog.Warn("同步到Google Sheet失败", "code", code.Code, "error", err)
		return fmt.Errorf("同步到Google Sheet失败: %v", err)
	}
	return nil
}

// MarkDeleted 在表格中标记激活码已删除
func (s *SheetSyncService) MarkDeleted(value string) error {
	if s == nil {
		return nil
	}

	rowIndex, found, err := s.findRow(value)
	if err != nil || !found {
		return err
	}

	rangeData := fmt.Sprintf("%s!B%d", s.sheetName, rowIndex)
	_, err = s.service.Spreadsheets.Values.Update(
		s.spreadsheetID,
		rangeData,
		&sheets.ValueRange{Values: [][]interface{}{{"已删除"}}},
	).ValueInputOption("USER_ENTERED").Do()
	if err != nil {
		slog.Warn("标记删除失败", "code", value, "error", err)
	}
	return err
}

// findRow 在A列中查找码值所在行号（从1开始）
func (s *SheetSyncService) findRow(value string) (int, bool, error) {
	rangeToSearch := fmt.Sprintf("%s!A2:A", s.sheetName)
	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, rangeToSearch).Do()
	if err != nil {
		return 0, false, err
	}

	for i, row := range resp.Values {
		if len(row) > 0 && row[0] == value {
			return i + 2, true, nil // +2因为A2开始且数组从0开始
		}
	}
	return 0, false, nil
}
