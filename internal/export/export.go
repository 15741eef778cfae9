// internal/export/export.go
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/andresuchdata/stocksense/internal/domain"
	"github.com/xuri/excelize/v2"
)

var columns = []string{
	"product_id",
	"product_name",
	"current_stock",
	"avg_daily_sales",
	"days_of_cover",
	"decision",
	"risk",
	"recommended_qty",
	"confidence",
	"explanation",
}

func row(rec domain.ReplenishmentRecommendation) []string {
	cover := ""
	if rec.DaysOfCover != nil {
		cover = strconv.FormatFloat(*rec.DaysOfCover, 'f', -1, 64)
	}
	return []string{
		strconv.Itoa(rec.ProductID),
		rec.ProductName,
		strconv.FormatFloat(rec.CurrentStock, 'f', -1, 64),
		strconv.FormatFloat(rec.AvgDailySales, 'f', -1, 64),
		cover,
		rec.Decision,
		rec.RiskLevel,
		strconv.Itoa(rec.RecommendedQty),
		strconv.FormatFloat(rec.ConfidenceScore, 'f', -1, 64),
		rec.Explanation,
	}
}

// WriteRecommendationsCSV writes one header row plus one row per
// recommendation, in the order given.
func WriteRecommendationsCSV(w io.Writer, recs []domain.ReplenishmentRecommendation) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, rec := range recs {
		if err := cw.Write(row(rec)); err != nil {
			return fmt.Errorf("write row for product %d: %w", rec.ProductID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteRecommendationsXLSX writes the recommendations to a single-sheet
// workbook named Replenishment.
func WriteRecommendationsXLSX(w io.Writer, recs []domain.ReplenishmentRecommendation) error {
	const sheet = "Replenishment"

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheet)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("delete default sheet: %w", err)
	}

	for col, name := range columns {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return err
		}
	}

	for i, rec := range recs {
		values := []interface{}{
			rec.ProductID,
			rec.ProductName,
			rec.CurrentStock,
			rec.AvgDailySales,
			nil,
			rec.Decision,
			rec.RiskLevel,
			rec.RecommendedQty,
			rec.ConfidenceScore,
			rec.Explanation,
		}
		if rec.DaysOfCover != nil {
			values[4] = *rec.DaysOfCover
		}
		for col, v := range values {
			if v == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}

	return f.Write(w)
}
