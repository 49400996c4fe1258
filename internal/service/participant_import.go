package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"swim-admin/internal/dto"
	"swim-admin/internal/model"
)

// ── 学员导入业务错误 ──

var (
	ErrImportNoData      = errors.New("导入内容中没有数据")
	ErrImportBadHeader   = errors.New("表头缺少 Name 列")
	ErrImportTooManyRows = errors.New("单次导入不能超过 200 行")
)

const maxImportRows = 200

// ParticipantImportRow 解析后的单行学员数据
type ParticipantImportRow struct {
	Row          int
	Name         string
	DateOfBirth  string
	GuardianName string
	Phone        string
	Email        string
	Paid         bool
}

// ParseParticipantLines 解析文本批量导入：
// 每行 "Name, Geburtsdatum, Erziehungsberechtigte:r, Telefon, E-Mail"，缺失字段留空。
func ParseParticipantLines(text string) ([]ParticipantImportRow, error) {
	var rows []ParticipantImportRow
	for i, line := range strings.Split(strings.TrimSpace(text), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.Split(line, ",")
		field := func(n int) string {
			if n < len(parts) {
				return strings.TrimSpace(parts[n])
			}
			return ""
		}
		rows = append(rows, ParticipantImportRow{
			Row:          i + 1,
			Name:         field(0),
			DateOfBirth:  field(1),
			GuardianName: field(2),
			Phone:        field(3),
			Email:        field(4),
		})
	}
	return checkImportSize(rows)
}

// ParseParticipantSheet 解析 Excel 的第一个工作表，表头列序不限
func ParseParticipantSheet(reader io.Reader) ([]ParticipantImportRow, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("无法解析Excel文件: %w", err)
	}
	defer f.Close()

	excelRows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("读取工作表失败: %w", err)
	}
	if len(excelRows) < 2 {
		return nil, ErrImportNoData
	}

	col := parseHeaderIndex(excelRows[0])
	if col["name"] < 0 {
		return nil, ErrImportBadHeader
	}

	var rows []ParticipantImportRow
	for i := 1; i < len(excelRows); i++ {
		r := excelRows[i]
		get := func(key string) string {
			if idx := col[key]; idx >= 0 && idx < len(r) {
				return strings.TrimSpace(r[idx])
			}
			return ""
		}
		item := ParticipantImportRow{
			Row:          i + 1,
			Name:         get("name"),
			DateOfBirth:  get("birth"),
			GuardianName: get("guardian"),
			Phone:        get("phone"),
			Email:        get("email"),
			Paid:         isYes(get("paid")),
		}
		if item.Name == "" && item.Email == "" && item.Phone == "" {
			continue
		}
		rows = append(rows, item)
	}
	return checkImportSize(rows)
}

func checkImportSize(rows []ParticipantImportRow) ([]ParticipantImportRow, error) {
	if len(rows) == 0 {
		return nil, ErrImportNoData
	}
	if len(rows) > maxImportRows {
		return nil, ErrImportTooManyRows
	}
	return rows, nil
}

// parseHeaderIndex 表头 → 列索引，兼容导出表格的德语列名
func parseHeaderIndex(header []string) map[string]int {
	idx := map[string]int{"name": -1, "birth": -1, "guardian": -1, "phone": -1, "email": -1, "paid": -1}
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "name", "teilnehmer":
			idx["name"] = i
		case "geburtstag", "geburtsdatum", "date_of_birth":
			idx["birth"] = i
		case "eb", "erziehungsberechtigte:r", "guardian":
			idx["guardian"] = i
		case "telefon", "phone":
			idx["phone"] = i
		case "e-mail", "email":
			idx["email"] = i
		case "bezahlt", "paid":
			idx["paid"] = i
		}
	}
	return idx
}

func isYes(s string) bool {
	switch strings.ToLower(s) {
	case "ja", "yes", "true", "1", "x":
		return true
	}
	return false
}

// ImportParticipants 追加学员到课程。
// 缺少姓名的行记为失败，其余行一次性写入。
func (s *courseService) ImportParticipants(ctx context.Context, courseID string, rows []ParticipantImportRow) (*dto.ImportResult, error) {
	course, ok := s.store.Snapshot().CourseByID(courseID)
	if !ok {
		return nil, ErrCourseNotFound
	}

	resp := &dto.ImportResult{Total: len(rows)}
	for _, r := range rows {
		if r.Name == "" {
			resp.Failed++
			resp.Errors = append(resp.Errors, dto.ImportError{Row: r.Row, Reason: "Name fehlt"})
			continue
		}
		course.Participants = append(course.Participants, model.Participant{
			ParticipantID: s.newID(),
			CourseID:      courseID,
			Name:          r.Name,
			DateOfBirth:   r.DateOfBirth,
			Phone:         r.Phone,
			Email:         r.Email,
			GuardianName:  r.GuardianName,
			Paid:          r.Paid,
		})
		resp.Success++
	}

	if resp.Success > 0 {
		if _, err := s.save(ctx, course); err != nil {
			return nil, err
		}
		s.logger.Info("学员已导入", zap.String("course_id", courseID), zap.Int("count", resp.Success))
	}
	return resp, nil
}
