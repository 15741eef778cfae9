// internal/export/export_test.go
package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/andresuchdata/stocksense/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleRecs() []domain.ReplenishmentRecommendation {
	cover := 3.5
	return []domain.ReplenishmentRecommendation{
		{
			ProductID:       1,
			ProductName:     "Widget",
			CurrentStock:    35,
			AvgDailySales:   10,
			DaysOfCover:     &cover,
			RecommendedQty:  200,
			Decision:        domain.DecisionReorder,
			RiskLevel:       domain.RiskHigh,
			ConfidenceScore: 0.95,
			Explanation:     "Critical stock level: only 3.5 days of inventory available. Immediate replenishment required.",
		},
		{
			ProductID:       2,
			ProductName:     "Shelf Warmer",
			CurrentStock:    50,
			AvgDailySales:   0,
			DaysOfCover:     nil,
			RecommendedQty:  0,
			Decision:        domain.DecisionOK,
			RiskLevel:       domain.RiskLow,
			ConfidenceScore: 0,
			Explanation:     "Stock analysis: inventory position appears adequate.",
		},
	}
}

func TestWriteRecommendationsCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRecommendationsCSV(&buf, sampleRecs()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, columns, rows[0])
	assert.Equal(t, "1", rows[1][0])
	assert.Equal(t, "Widget", rows[1][1])
	assert.Equal(t, "3.5", rows[1][4])
	assert.Equal(t, "REORDER", rows[1][5])
	assert.Equal(t, "200", rows[1][7])

	// Infinite cover renders as an empty cell.
	assert.Equal(t, "", rows[2][4])
	assert.Equal(t, "OK", rows[2][5])
}

func TestWriteRecommendationsCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRecommendationsCSV(&buf, nil))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, columns, rows[0])
}

func TestWriteRecommendationsXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRecommendationsXLSX(&buf, sampleRecs()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	require.Equal(t, []string{"Replenishment"}, f.GetSheetList())

	header, err := f.GetCellValue("Replenishment", "A1")
	require.NoError(t, err)
	assert.Equal(t, "product_id", header)

	name, err := f.GetCellValue("Replenishment", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Widget", name)

	decision, err := f.GetCellValue("Replenishment", "F3")
	require.NoError(t, err)
	assert.Equal(t, "OK", decision)

	// Infinite cover leaves the cell blank.
	cover, err := f.GetCellValue("Replenishment", "E3")
	require.NoError(t, err)
	assert.Equal(t, "", cover)
}
