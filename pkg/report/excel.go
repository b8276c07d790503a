package report

import (
	"fmt"
	"math"

	"github.com/xuri/excelize/v2"

	"github.com/DeaganAnalytics/automation-and-ml-portfolio/pkg/model"
)

// ElbowSheet is the worksheet holding the WCSS curve.
const ElbowSheet = "elbow"

// WriteExcel saves one worksheet per variable, in summary order, plus an
// elbow sheet when points is non-empty.
func WriteExcel(path string, s *Summary, points []model.ElbowPoint) error {
	f := excelize.NewFile()
	defer f.Close()

	for _, name := range s.Order {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
		if err := writeTable(f, name, s.Tables[name]); err != nil {
			return err
		}
	}

	if len(points) > 0 {
		if _, err := f.NewSheet(ElbowSheet); err != nil {
			return fmt.Errorf("create sheet %s: %w", ElbowSheet, err)
		}
		if err := f.SetSheetRow(ElbowSheet, "A1", &[]interface{}{"k", "tot_withinss"}); err != nil {
			return err
		}
		for i, p := range points {
			cell, err := excelize.CoordinatesToCellName(1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(ElbowSheet, cell, &[]interface{}{p.K, p.TotalWithinSS}); err != nil {
				return err
			}
		}
	}

	if len(s.Order) > 0 || len(points) > 0 {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return err
		}
		// Indexes shift once Sheet1 is gone; look the first sheet up again.
		first := ElbowSheet
		if len(s.Order) > 0 {
			first = s.Order[0]
		}
		idx, err := f.GetSheetIndex(first)
		if err != nil {
			return err
		}
		f.SetActiveSheet(idx)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func writeTable(f *excelize.File, sheet string, t *Table) error {
	header := make([]interface{}, 0, len(t.Columns)+1)
	header = append(header, "cluster")
	for _, c := range t.Columns {
		header = append(header, c)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("sheet %s: %w", sheet, err)
	}

	for i, row := range t.Cells {
		cells := make([]interface{}, 0, len(row)+1)
		cells = append(cells, t.Labels[i])
		for _, v := range row {
			if math.IsNaN(v) {
				cells = append(cells, nil)
				continue
			}
			cells = append(cells, v)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return fmt.Errorf("sheet %s: %w", sheet, err)
		}
	}
	return nil
}
