package httpapi

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/MrMangoye/Project/internal/domain"
	"github.com/MrMangoye/Project/internal/relationship"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const memberSheetName = "Members"

// MemberDirectoryHeader 成员名录表头
var MemberDirectoryHeader = []string{
	"Name",
	"Gender",
	"Date of Birth",
	"Occupation",
	"Email",
	"Business",
	"Parents",
	"Spouses",
	"Children",
	"Siblings",
}

var memberColumnWidths = []float64{24, 12, 14, 20, 28, 24, 30, 30, 30, 30}

// GenerateMemberDirectory 生成家族成员名录（关系列为成员姓名，悬空边不输出）
func GenerateMemberDirectory(members []*domain.Person, logger *zap.Logger) ([]byte, error) {
	g := relationship.NewGraph(members, logger)
	derived := g.DeriveAll()

	f := excelize.NewFile()
	// Note: WriteTo 需要文件处于打开状态，不能 defer Close

	index, err := f.NewSheet(memberSheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, header := range MemberDirectoryHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(memberSheetName, cell, header); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(memberSheetName, cell, cell, headerStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header style: %w", err)
		}
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(memberSheetName, name, name, memberColumnWidths[col]); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	names := func(ids domain.EdgeSet) string {
		out := make([]string, 0, len(ids))
		for _, id := range ids {
			if m, ok := g.Member(id); ok {
				out = append(out, m.Name)
			}
		}
		return strings.Join(out, ", ")
	}

	for i, m := range g.Members() {
		row := i + 2
		d := derived[m.ID]
		dob := ""
		if m.DateOfBirth != nil {
			dob = m.DateOfBirth.Format("2006-01-02")
		}
		values := []string{
			m.Name,
			string(m.Gender),
			dob,
			m.Occupation,
			m.Email,
			m.Business.Name,
			names(d.Parents),
			names(d.Spouses),
			names(d.Children),
			names(d.Siblings),
		}
		for col, v := range values {
			if v == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				f.Close()
				return nil, err
			}
			if err := f.SetCellValue(memberSheetName, cell, v); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to set cell %s: %w", cell, err)
			}
		}
	}

	// 冻结表头
	if err := f.SetPanes(memberSheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to freeze panes: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write to buffer: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close file: %w", err)
	}
	return buf.Bytes(), nil
}
