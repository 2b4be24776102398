package ingest

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"finetl/internal/config"
	"finetl/internal/infrastructure"
	"finetl/internal/workbook"
	"finetl/pkg/contracts/domain"
)

func testPipeline(t *testing.T) *Pipeline {
	t.Helper()
	cfg := &config.Config{Ingest: testIngestCfg()}
	return NewPipeline(cfg, config.DefaultRules(), nil)
}

// buildTestWorkbook assembles an in-memory workbook shaped like the real
// planning templates: metadata zone, plan grid, rate card, actuals, costs
// and a couple of helper tabs that must be skipped.
func buildTestWorkbook(t *testing.T) *workbook.File {
	t.Helper()
	f := excelize.NewFile()

	require.NoError(t, f.SetSheetName("Sheet1", "2025 Plan"))
	planRows := [][]interface{}{
		{"Client", "Acme Corp"},
		{"Project Title", "Website Redesign"},
		{"Market", "AMER"},
		{"Total Project Fee", 250000},
		{},
		{"Category", "Market", "Department", "Role", "01", "02"},
		{"Staffing", "AMER", "Eng", "Dev", 10, 0},
		{"Staffing", "AMER", "Eng", "QA", 0, 4},
	}
	writeRows(t, f, "2025 Plan", planRows)

	_, err := f.NewSheet("Rate Card")
	require.NoError(t, err)
	writeRows(t, f, "Rate Card", [][]interface{}{
		{"Market", "Craft", "Role", "Cost Rate", "Bill Rate"},
		{"AMER", "Eng", "Dev", 50, 120},
		{"AMER", "Eng", "QA", 40, 90},
	})

	_, err = f.NewSheet("Actuals")
	require.NoError(t, err)
	writeRows(t, f, "Actuals", [][]interface{}{
		{"Employee Name", "Market", "Role", "Total Hours"},
		{"Jo Smith", "AMER", "Dev", 38},
	})

	_, err = f.NewSheet("Costs")
	require.NoError(t, err)
	writeRows(t, f, "Costs", [][]interface{}{
		{"Item", "Category", "Vendor", "Total Cost"},
		{"Hosting", "Infra", "AWS", 1200},
	})

	_, err = f.NewSheet("_Helper")
	require.NoError(t, err)
	_, err = f.NewSheet("Info")
	require.NoError(t, err)

	return workbook.FromExcelize(f)
}

func writeRows(t *testing.T, f *excelize.File, sheet string, rows [][]interface{}) {
	t.Helper()
	for i := range rows {
		if len(rows[i]) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &rows[i]))
	}
}

func TestPipeline_ProcessWorkbook(t *testing.T) {
	p := testPipeline(t)
	wb := buildTestWorkbook(t)

	rs, err := p.ProcessWorkbook(context.Background(), wb, Options{
		ClientName:   "Acme Corp",
		ProjectTitle: "Website Redesign",
		SourceFile:   "acme_2025.xlsx",
	})
	require.NoError(t, err)
	require.NotNil(t, rs)

	assert.NotEmpty(t, rs.RunID)
	assert.Len(t, rs.ProjectID, 16)

	// One melted record per non-zero (row, period) cell.
	require.Len(t, rs.Allocations, 2)
	assert.Equal(t, 1, rs.Allocations[0].Period)
	assert.Equal(t, 10.0, rs.Allocations[0].Hours)
	assert.Equal(t, 2, rs.Allocations[1].Period)
	assert.Equal(t, 4.0, rs.Allocations[1].Hours)

	require.Len(t, rs.RateCards, 2)
	require.Len(t, rs.Actuals, 1)
	require.Len(t, rs.Costs, 1)

	// Every allocation matched a rate entry.
	require.Len(t, rs.Costed, 2)
	assert.Zero(t, rs.Unmatched)
	assert.Equal(t, 500.0, rs.Costed[0].ForecastedCost)
	assert.Equal(t, 1200.0, rs.Costed[0].ForecastedRevenue)
	assert.Equal(t, 160.0, rs.Costed[1].ForecastedCost)
	assert.Equal(t, 360.0, rs.Costed[1].ForecastedRevenue)
}

func TestPipeline_ProjectRecordFromMetadata(t *testing.T) {
	p := testPipeline(t)
	wb := buildTestWorkbook(t)

	rs, err := p.ProcessWorkbook(context.Background(), wb, Options{
		ClientName:   "Fallback Client",
		ProjectTitle: "Fallback Title",
		SourceFile:   "acme_2025.xlsx",
	})
	require.NoError(t, err)

	project := rs.Project
	require.NotNil(t, project)
	// Metadata from the sheet wins over caller-supplied identity.
	assert.Equal(t, "Acme Corp", project.ClientName)
	assert.Equal(t, "Website Redesign", project.ProjectTitle)
	assert.Equal(t, "AMER", project.Market)
	assert.Equal(t, 250000.0, project.TotalProjectFee)
	assert.Equal(t, "2025 Plan", project.SourceSheet)
	assert.Equal(t, "acme_2025.xlsx", project.SourceFile)
	assert.NotEmpty(t, project.SheetMetadata)
}

func TestPipeline_LogCoversEverySheet(t *testing.T) {
	p := testPipeline(t)
	wb := buildTestWorkbook(t)

	rs, err := p.ProcessWorkbook(context.Background(), wb, Options{SourceFile: "wb.xlsx"})
	require.NoError(t, err)

	require.Len(t, rs.Log, len(wb.SheetNames()))

	byName := map[string]domain.ProcessingLogEntry{}
	for _, e := range rs.Log {
		byName[e.Sheet] = e
	}

	assert.Equal(t, domain.StatusSuccess, byName["2025 Plan"].Status)
	assert.Equal(t, domain.StatusSuccess, byName["Rate Card"].Status)
	assert.Equal(t, domain.StatusSkipped, byName["_Helper"].Status)
	assert.Equal(t, domain.StatusSkipped, byName["Info"].Status)
}

func TestPipeline_HeaderlessDataSheetIsError(t *testing.T) {
	p := testPipeline(t)
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", "Costs"))
	writeRows(t, f, "Costs", [][]interface{}{
		{"just", "random", "words"},
	})

	rs, err := p.ProcessWorkbook(context.Background(), workbook.FromExcelize(f), Options{SourceFile: "x.xlsx"})
	require.NoError(t, err)

	require.Len(t, rs.Log, 1)
	assert.Equal(t, domain.StatusError, rs.Log[0].Status)
	assert.Equal(t, "no header row detected", rs.Log[0].Message)
	assert.Empty(t, rs.Costs)
}

// runIDRecorder records the run id carried by the context of every log
// record, surviving With/WithGroup derivations.
type runIDRecorder struct {
	inner slog.Handler
	ids   *[]string
}

func (h *runIDRecorder) Enabled(context.Context, slog.Level) bool { return true }

func (h *runIDRecorder) Handle(ctx context.Context, r slog.Record) error {
	*h.ids = append(*h.ids, infrastructure.GetRunID(ctx))
	return h.inner.Handle(ctx, r)
}

func (h *runIDRecorder) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &runIDRecorder{inner: h.inner.WithAttrs(attrs), ids: h.ids}
}

func (h *runIDRecorder) WithGroup(name string) slog.Handler {
	return &runIDRecorder{inner: h.inner.WithGroup(name), ids: h.ids}
}

func TestPipeline_RunIDCarriedInContext(t *testing.T) {
	var ids []string
	logger := slog.New(&runIDRecorder{
		inner: slog.NewJSONHandler(io.Discard, nil),
		ids:   &ids,
	})
	cfg := &config.Config{Ingest: testIngestCfg()}
	p := NewPipeline(cfg, config.DefaultRules(), logger)

	rs, err := p.ProcessWorkbook(context.Background(), buildTestWorkbook(t), Options{
		ClientName:   "Acme",
		ProjectTitle: "Build",
		SourceFile:   "plan.xlsx",
	})
	require.NoError(t, err)

	require.NotEmpty(t, ids)
	for _, id := range ids {
		assert.Equal(t, rs.RunID, id)
	}
}

func TestResultSet_Summarize(t *testing.T) {
	p := testPipeline(t)

	rs, err := p.ProcessWorkbook(context.Background(), buildTestWorkbook(t), Options{
		ClientName:   "Acme",
		ProjectTitle: "Build",
		SourceFile:   "plan.xlsx",
	})
	require.NoError(t, err)

	sum := rs.Summarize()
	assert.Equal(t, len(rs.Sheets), sum.Sheets)
	assert.Equal(t, len(rs.Allocations), sum.Allocations)
	assert.Equal(t, len(rs.RateCards), sum.RateCards)
	assert.Equal(t, len(rs.Actuals), sum.Actuals)
	assert.Equal(t, len(rs.Costs), sum.Costs)
	assert.Equal(t, 2, sum.Skipped)
	assert.Equal(t, 0, sum.Errors)

	var hours float64
	for _, a := range rs.Allocations {
		hours += a.Hours
	}
	assert.Equal(t, hours, sum.TotalHours)
	assert.Greater(t, sum.TotalHours, 0.0)
}

func TestPipeline_ProjectIDStableAcrossRuns(t *testing.T) {
	p := testPipeline(t)

	opts := Options{ClientName: "Acme", ProjectTitle: "Build", SourceFile: "a.xlsx"}
	rs1, err := p.ProcessWorkbook(context.Background(), buildTestWorkbook(t), opts)
	require.NoError(t, err)
	rs2, err := p.ProcessWorkbook(context.Background(), buildTestWorkbook(t), opts)
	require.NoError(t, err)

	assert.Equal(t, rs1.ProjectID, rs2.ProjectID)
	assert.NotEqual(t, rs1.RunID, rs2.RunID)
}
