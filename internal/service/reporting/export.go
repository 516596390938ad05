package reporting

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/mamadbah2/farmhub/internal/domain/models"
)

const (
	cropsSheet = "Crops"
	tasksSheet = "Tasks"
)

var (
	cropHeaders = []string{"Crop", "Variety", "Planting date", "Expected harvest", "Duration (days)", "Stage", "Health", "Area", "Notes"}
	taskHeaders = []string{"Crop", "Task", "Due date", "Priority", "Completed", "Source"}
)

// ExportCrops writes a workbook of the user's active crops and their tasks.
func (s *Service) ExportCrops(ctx context.Context, uid string, w io.Writer) error {
	if strings.TrimSpace(uid) == "" {
		return fmt.Errorf("%w: uid is required", models.ErrInvalidInput)
	}

	crops, err := s.crops.ListActiveByUser(ctx, uid)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", cropsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(tasksSheet); err != nil {
		return fmt.Errorf("create tasks sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#2E7D32"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	if err := writeHeader(f, cropsSheet, cropHeaders, headerStyle); err != nil {
		return err
	}
	if err := writeHeader(f, tasksSheet, taskHeaders, headerStyle); err != nil {
		return err
	}

	taskRow := 2
	for i, c := range crops {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []interface{}{
			c.Name, c.Variety, c.PlantingDate.Format(dateLayout), c.ExpectedHarvestDate.Format(dateLayout),
			c.Duration, string(c.CurrentStage), c.HealthScore, c.Area, c.Notes,
		}
		if err := f.SetSheetRow(cropsSheet, cell, &row); err != nil {
			return fmt.Errorf("write crop row: %w", err)
		}

		tasks, err := s.tasks.ListByCrop(ctx, c.ID)
		if err != nil {
			return err
		}
		for _, t := range tasks {
			cell, _ := excelize.CoordinatesToCellName(1, taskRow)
			row := []interface{}{c.Name, t.Title, t.DueDate.Format(dateLayout), string(t.Priority), yesNo(t.IsCompleted), t.Source}
			if err := f.SetSheetRow(tasksSheet, cell, &row); err != nil {
				return fmt.Errorf("write task row: %w", err)
			}
			taskRow++
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// ExportFilename names the workbook for a download.
func ExportFilename(uid string, now time.Time) string {
	return fmt.Sprintf("crops_%s_%s.xlsx", sanitize(uid), now.Format("20060102"))
}

func writeHeader(f *excelize.File, sheet string, headers []string, style int) error {
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return fmt.Errorf("style header: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	return f.SetColWidth(sheet, "A", lastCol, 18)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, s)
}
