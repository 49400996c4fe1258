package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"swim-admin/internal/model"
)

// ── 导出模块业务错误 ──

var ErrExportGenerateFail = errors.New("生成导出文件失败")

// ExportService 导出业务接口
//
//   - 日历导出为 ICS，可按人员过滤
//   - 出勤表导出为 Excel：打印版（A4 横向、按宽度缩放）、表格版、人员配置汇总
//   - 导出以字节返回，由 Handler 层设置响应头后写入
type ExportService interface {
	CalendarICS(ctx context.Context, instructorID string) ([]byte, string, error)
	AttendanceWorkbook(ctx context.Context, courseID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	*base
	calendarName string
}

// NewExportService 创建 ExportService 实例
func NewExportService(b *base, calendarName string) ExportService {
	if calendarName == "" {
		calendarName = "SwimAdmin Einsätze"
	}
	return &exportService{base: b, calendarName: calendarName}
}

func (s *exportService) CalendarICS(ctx context.Context, instructorID string) ([]byte, string, error) {
	courses := s.store.Snapshot().Courses
	doc, err := CalendarICS(courses, instructorID, CalendarOptions{
		Name:     s.calendarName,
		Location: s.loc,
		Now:      s.now(),
	})
	if err != nil {
		s.logger.Error("生成日历失败", zap.Error(err))
		return nil, "", err
	}
	who := instructorID
	if who == "" {
		who = "all"
	}
	return []byte(doc), fmt.Sprintf("swim_termine_%s.ics", who), nil
}

// ═══════════════════════════════════════════════════════════
// AttendanceWorkbook 出勤表
// ═══════════════════════════════════════════════════════════
//
// Sheet "Anwesenheit"：标题、课程信息、课时团队表、学员 × 日期签到格
// Sheet "Tabelle"：   平铺的学员数据，便于二次处理
// Sheet "Personal"：  每个课时的人员配置评估

const (
	sheetPrint    = "Anwesenheit"
	sheetFlat     = "Tabelle"
	sheetStaffing = "Personal"
)

func (s *exportService) AttendanceWorkbook(ctx context.Context, courseID string) (*bytes.Buffer, string, error) {
	snap := s.store.Snapshot()
	course, ok := snap.CourseByID(courseID)
	if !ok {
		return nil, "", ErrCourseNotFound
	}
	users := snap.UserMap()
	sessions := SortedSessions(course.Sessions)

	f := excelize.NewFile()
	defer f.Close()

	idx, _ := f.NewSheet(sheetPrint)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	if err := writePrintSheet(f, &course, sessions, users); err != nil {
		s.logger.Error("写入打印版失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	if err := writeFlatSheet(f, &course, sessions); err != nil {
		s.logger.Error("写入表格版失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	if err := writeStaffingSheet(f, &course, sessions, users); err != nil {
		s.logger.Error("写入人员配置失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	return buf, AttendanceFilename(&course), nil
}

// AttendanceFilename Anwesenheit_<title>.xlsx
func AttendanceFilename(course *model.Course) string {
	return fmt.Sprintf("Anwesenheit_%s.xlsx", fileSafe(course.Title))
}

func writePrintSheet(f *excelize.File, course *model.Course, sessions []model.Session, users map[string]model.User) error {
	sh := sheetPrint

	landscape, a4, one, zero, fit := "landscape", 9, 1, 0, true
	if err := f.SetPageLayout(sh, &excelize.PageLayoutOptions{
		Orientation: &landscape,
		Size:        &a4,
		FitToWidth:  &one,
		FitToHeight: &zero,
	}); err != nil {
		return err
	}
	if err := f.SetSheetProps(sh, &excelize.SheetPropsOptions{FitToPage: &fit}); err != nil {
		return err
	}

	titleStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 18}})
	infoStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Size: 10, Color: "#505050"}})
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 9, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#475569"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
		Border:    gridBorder(),
	})
	gridStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Size: 9},
		Alignment: &excelize.Alignment{Vertical: "center", WrapText: true},
		Border:    gridBorder(),
	})

	lastCol := colName(3 + max(len(sessions), 1))

	f.SetCellValue(sh, "A1", course.Title)
	f.MergeCell(sh, "A1", cell(lastCol, 1))
	f.SetCellStyle(sh, "A1", "A1", titleStyle)

	info := fmt.Sprintf("Kategorie: %s | Ort: %s | Preis: %s EUR", course.Category, course.Location, germanAmount(course.Price))
	if course.CourseNumber != "" {
		info += " | Kursnummer: " + course.CourseNumber
	}
	f.SetCellValue(sh, "A2", info)
	f.MergeCell(sh, "A2", cell(lastCol, 2))
	f.SetCellStyle(sh, "A2", "A2", infoStyle)

	row := 3
	if course.Notes != "" {
		f.SetCellValue(sh, "A3", "Kurs-Notizen: "+course.Notes)
		f.MergeCell(sh, "A3", cell(lastCol, 3))
		f.SetCellStyle(sh, "A3", "A3", infoStyle)
		row = 4
	}

	// 团队表
	row++
	f.SetSheetRow(sh, cell("A", row), &[]interface{}{"Einheit", "Datum / Uhrzeit", "Eingeteiltes Team"})
	f.MergeCell(sh, cell("C", row), cell(lastCol, row))
	f.SetCellStyle(sh, cell("A", row), cell(lastCol, row), headerStyle)
	row++
	for _, s := range sessions {
		team := teamLabel(s.InstructorIDs, users)
		if team == "" {
			team = "Noch niemand eingeteilt"
		}
		numbering := SessionNumbering(course, s.SessionID)
		if !s.IsReplacement {
			numbering = strings.SplitN(numbering, "/", 2)[0]
		}
		f.SetSheetRow(sh, cell("A", row), &[]interface{}{
			numbering,
			fmt.Sprintf("%s, %s Uhr", GermanDate(s.Date), s.StartTime),
			team,
		})
		f.MergeCell(sh, cell("C", row), cell(lastCol, row))
		f.SetCellStyle(sh, cell("A", row), cell(lastCol, row), gridStyle)
		row++
	}

	// 学员签到表
	row++
	header := []interface{}{"Name / EB", "Geburtstag", "Kontakt", "Zahl."}
	for _, s := range sessions {
		label := GermanDayMonth(s.Date)
		if s.IsReplacement {
			label = "Ersatz " + label
		}
		header = append(header, label)
	}
	f.SetSheetRow(sh, cell("A", row), &header)
	f.SetCellStyle(sh, cell("A", row), cell(colName(len(header)-1), row), headerStyle)
	row++

	for _, p := range course.Participants {
		guardian := p.GuardianName
		if guardian == "" {
			guardian = "-"
		}
		birth := "-"
		if p.DateOfBirth != "" {
			birth = GermanDate(p.DateOfBirth)
		}
		paid := "NEIN"
		if p.Paid {
			paid = "JA"
		}
		values := []interface{}{
			fmt.Sprintf("%s\nEB: %s", p.Name, guardian),
			birth,
			fmt.Sprintf("%s\n%s", dash(p.Phone), dash(p.Email)),
			paid,
		}
		for range sessions {
			values = append(values, "")
		}
		f.SetSheetRow(sh, cell("A", row), &values)
		f.SetCellStyle(sh, cell("A", row), cell(colName(len(values)-1), row), gridStyle)
		f.SetRowHeight(sh, row, 28)
		row++
	}

	f.SetColWidth(sh, "A", "A", 26)
	f.SetColWidth(sh, "B", "B", 16)
	f.SetColWidth(sh, "C", "C", 26)
	f.SetColWidth(sh, "D", "D", 7)
	if len(sessions) > 0 {
		f.SetColWidth(sh, "E", colName(3+len(sessions)), 9)
	}
	return nil
}

func writeFlatSheet(f *excelize.File, course *model.Course, sessions []model.Session) error {
	if _, err := f.NewSheet(sheetFlat); err != nil {
		return err
	}
	header := []interface{}{"Name", "Geburtstag", "EB", "Bezahlt"}
	for _, s := range sessions {
		header = append(header, GermanDate(s.Date))
	}
	if err := f.SetSheetRow(sheetFlat, "A1", &header); err != nil {
		return err
	}
	for i, p := range course.Participants {
		paid := "Nein"
		if p.Paid {
			paid = "Ja"
		}
		row := []interface{}{p.Name, p.DateOfBirth, p.GuardianName, paid}
		if err := f.SetSheetRow(sheetFlat, cell("A", i+2), &row); err != nil {
			return err
		}
	}
	return nil
}

func writeStaffingSheet(f *excelize.File, course *model.Course, sessions []model.Session, users map[string]model.User) error {
	if _, err := f.NewSheet(sheetStaffing); err != nil {
		return err
	}
	header := []interface{}{"Datum", "Uhrzeit", "Einheit", "Team", "Lehrer:innen", "Helfer:innen", "Fehlt L", "Fehlt H", "Status"}
	if err := f.SetSheetRow(sheetStaffing, "A1", &header); err != nil {
		return err
	}
	for i, s := range sessions {
		res := EvaluateStaffing(course, &s, users)
		status := "OK"
		if res.IsUnderstaffed {
			status = "Unterbesetzt"
		}
		row := []interface{}{
			GermanDate(s.Date), s.StartTime, SessionNumbering(course, s.SessionID),
			teamLabel(s.InstructorIDs, users),
			res.CountCategoryA, res.CountCategoryB, res.MissingA, res.MissingB, status,
		}
		if err := f.SetSheetRow(sheetStaffing, cell("A", i+2), &row); err != nil {
			return err
		}
	}
	return f.SetColWidth(sheetStaffing, "D", "D", 40)
}

// teamLabel "Name (L), Name (H)"，无法解析的 ID 显示为 "?"
func teamLabel(ids model.StringArray, users map[string]model.User) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		u, ok := users[id]
		if !ok {
			parts = append(parts, "?")
			continue
		}
		tag := "H"
		if u.Category == model.CategoryInstructor {
			tag = "L"
		}
		parts = append(parts, fmt.Sprintf("%s (%s)", u.Name, tag))
	}
	return strings.Join(parts, ", ")
}

func gridBorder() []excelize.Border {
	return []excelize.Border{
		{Type: "left", Color: "#CBD5E1", Style: 1},
		{Type: "right", Color: "#CBD5E1", Style: 1},
		{Type: "top", Color: "#CBD5E1", Style: 1},
		{Type: "bottom", Color: "#CBD5E1", Style: 1},
	}
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
