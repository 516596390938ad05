package reporting

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/mamadbah2/farmhub/internal/domain/models"
	"github.com/mamadbah2/farmhub/internal/repository/memory"
)

type fakeSheet struct {
	existing [][]interface{}
	appended [][]interface{}
	ranges   []string
	err      error
}

func (f *fakeSheet) AppendRows(_ context.Context, sheetRange string, rows [][]interface{}) error {
	if f.err != nil {
		return f.err
	}
	f.ranges = append(f.ranges, sheetRange)
	f.appended = append(f.appended, rows...)
	return nil
}

func (f *fakeSheet) ReadRange(context.Context, string) ([][]interface{}, error) {
	return f.existing, nil
}

var (
	ist = time.FixedZone("IST", 19800)
	// 21:00 IST on 2024-06-10 is 15:30 UTC the same day.
	runAt = time.Date(2024, 6, 10, 21, 0, 0, 0, ist)
)

func day(v string) time.Time {
	t, _ := time.Parse(dateLayout, v)
	return t
}

func seed(t *testing.T) *memory.Repository {
	t.Helper()
	ctx := context.Background()
	repo := memory.New()

	crops := []*models.Crop{
		{UserID: "u1", Name: "Okra", ExpectedHarvestDate: day("2024-06-14"), HealthScore: 90, IsActive: true},
		{UserID: "u1", Name: "Rice", ExpectedHarvestDate: day("2024-09-01"), HealthScore: 75, IsActive: true},
		{UserID: "u2", Name: "Wheat", ExpectedHarvestDate: day("2024-06-17"), HealthScore: 60, IsActive: true},
		{UserID: "u2", Name: "Gram", ExpectedHarvestDate: day("2024-06-18"), HealthScore: 100, IsActive: true},
		{UserID: "u3", Name: "Old", ExpectedHarvestDate: day("2024-05-01"), HealthScore: 50, IsActive: true, IsHarvested: true},
	}
	for _, c := range crops {
		require.NoError(t, repo.Crops().Insert(ctx, c))
	}

	tasks := []*models.Task{
		{CropID: crops[0].ID, UserID: "u1", Title: "Pick", DueDate: day("2024-06-09")},
		{CropID: crops[0].ID, UserID: "u1", Title: "Spray", DueDate: day("2024-06-10")},
		{CropID: crops[1].ID, UserID: "u1", Title: "Done", DueDate: day("2024-06-01"), IsCompleted: true},
	}
	for _, task := range tasks {
		require.NoError(t, repo.Tasks().Insert(ctx, task))
	}

	require.NoError(t, repo.Diseases().Insert(ctx, &models.Disease{CropID: crops[2].ID, UserID: "u2", Status: models.StatusTreating}))
	require.NoError(t, repo.Diseases().Insert(ctx, &models.Disease{CropID: crops[2].ID, UserID: "u2", Status: models.StatusResolved}))
	return repo
}

func newService(repo *memory.Repository, sheet SheetWriter) *Service {
	return NewService(repo.Crops(), repo.Tasks(), repo.Diseases(), sheet, ist, nil)
}

func TestBuildDigest(t *testing.T) {
	svc := newService(seed(t), nil)

	rows, err := svc.BuildDigest(context.Background(), runAt)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	u1 := rows[0]
	assert.Equal(t, "2024-06-10", u1.Date)
	assert.Equal(t, "u1", u1.UserID)
	assert.Equal(t, 2, u1.ActiveCrops)
	assert.Equal(t, 1, u1.HarvestDue)
	assert.Equal(t, 2, u1.OpenTasks)
	assert.Equal(t, 1, u1.OverdueTasks)
	assert.Equal(t, 0, u1.ActiveDiseases)
	assert.Equal(t, 82.5, u1.AverageHealth)

	u2 := rows[1]
	assert.Equal(t, 1, u2.HarvestDue)
	assert.Equal(t, 1, u2.ActiveDiseases)
	assert.Equal(t, 80.0, u2.AverageHealth)
}

func TestBuildDigestUsesLocalDay(t *testing.T) {
	svc := newService(seed(t), nil)

	// 00:30 IST on the 11th is still the 10th in UTC.
	rows, err := svc.BuildDigest(context.Background(), time.Date(2024, 6, 11, 0, 30, 0, 0, ist))
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	assert.Equal(t, "2024-06-11", rows[0].Date)
	assert.Equal(t, 2, rows[0].OverdueTasks)
}

func TestPublishDigest(t *testing.T) {
	ctx := context.Background()
	sheet := &fakeSheet{existing: [][]interface{}{{"date", "uid"}, {"2024-06-10", "u2"}}}
	svc := newService(seed(t), sheet)

	n, err := svc.PublishDigest(ctx, runAt)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, sheet.appended, 1)
	assert.Equal(t, []string{digestRange}, sheet.ranges)
	assert.Equal(t, "u1", sheet.appended[0][1])
	assert.Len(t, sheet.appended[0], 9)

	sheet.existing = append(sheet.existing, []interface{}{"2024-06-10", "u1"})
	n, err = svc.PublishDigest(ctx, runAt)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPublishDigestSkippedWithoutSheet(t *testing.T) {
	n, err := newService(seed(t), nil).PublishDigest(context.Background(), runAt)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPublishDigestAppendError(t *testing.T) {
	sheet := &fakeSheet{err: errors.New("quota exceeded")}
	_, err := newService(seed(t), sheet).PublishDigest(context.Background(), runAt)
	assert.ErrorContains(t, err, "quota exceeded")
}

func TestExportCrops(t *testing.T) {
	svc := newService(seed(t), nil)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportCrops(context.Background(), "u1", &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	crops, err := f.GetRows(cropsSheet)
	require.NoError(t, err)
	require.Len(t, crops, 3)
	assert.Equal(t, cropHeaders[0], crops[0][0])

	tasks, err := f.GetRows(tasksSheet)
	require.NoError(t, err)
	assert.Len(t, tasks, 4)

	assert.ErrorIs(t, svc.ExportCrops(context.Background(), " ", &buf), models.ErrInvalidInput)
}

func TestExportFilename(t *testing.T) {
	assert.Equal(t, "crops_abc_1_20240610.xlsx", ExportFilename("abc/1", runAt))
}
