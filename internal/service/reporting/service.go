package reporting

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/mamadbah2/farmhub/internal/domain/models"
)

const (
	dateLayout  = "2006-01-02"
	digestRange = "Digest!A:I"
	digestKeys  = "Digest!A:B"
	// HarvestHorizonDays is how far ahead a harvest counts as due.
	HarvestHorizonDays = 7
)

// CropLister reads crops for reports.
type CropLister interface {
	ListActive(ctx context.Context) ([]models.Crop, error)
	ListActiveByUser(ctx context.Context, uid string) ([]models.Crop, error)
}

// TaskLister reads a user's tasks.
type TaskLister interface {
	ListByUser(ctx context.Context, uid string, completed *bool) ([]models.Task, error)
	ListByCrop(ctx context.Context, cropID primitive.ObjectID) ([]models.Task, error)
}

// DiseaseCounter counts unresolved diseases per user.
type DiseaseCounter interface {
	CountActiveByUser(ctx context.Context) (map[string]int, error)
}

// SheetWriter is the spreadsheet the digest is appended to.
type SheetWriter interface {
	AppendRows(ctx context.Context, sheetRange string, rows [][]interface{}) error
	ReadRange(ctx context.Context, sheetRange string) ([][]interface{}, error)
}

// DigestRow summarises one farmer's day.
type DigestRow struct {
	Date           string
	UserID         string
	ActiveCrops    int
	HarvestDue     int
	OpenTasks      int
	OverdueTasks   int
	ActiveDiseases int
	AverageHealth  float64
	GeneratedAt    time.Time
}

func (r DigestRow) values() []interface{} {
	return []interface{}{
		r.Date, r.UserID, r.ActiveCrops, r.HarvestDue, r.OpenTasks,
		r.OverdueTasks, r.ActiveDiseases, r.AverageHealth, r.GeneratedAt.Format(time.RFC3339),
	}
}

// Service builds the nightly digest and spreadsheet exports.
type Service struct {
	crops    CropLister
	tasks    TaskLister
	diseases DiseaseCounter
	sheet    SheetWriter
	loc      *time.Location
	logger   *zap.Logger
}

// NewService wires a reporting service. sheet may be nil, in which case
// PublishDigest is a no-op.
func NewService(crops CropLister, tasks TaskLister, diseases DiseaseCounter, sheet SheetWriter, loc *time.Location, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{crops: crops, tasks: tasks, diseases: diseases, sheet: sheet, loc: loc, logger: logger}
}

// localDay returns the calendar day of now in the service timezone, as UTC midnight.
func (s *Service) localDay(now time.Time) time.Time {
	l := now.In(s.loc)
	return time.Date(l.Year(), l.Month(), l.Day(), 0, 0, 0, 0, time.UTC)
}

// BuildDigest computes one row per user with at least one growing crop.
func (s *Service) BuildDigest(ctx context.Context, now time.Time) ([]DigestRow, error) {
	crops, err := s.crops.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("load active crops: %w", err)
	}
	diseases, err := s.diseases.CountActiveByUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("count active diseases: %w", err)
	}

	today := s.localDay(now)
	horizon := today.AddDate(0, 0, HarvestHorizonDays)

	byUser := make(map[string][]models.Crop)
	for _, c := range crops {
		byUser[c.UserID] = append(byUser[c.UserID], c)
	}

	uids := make([]string, 0, len(byUser))
	for uid := range byUser {
		uids = append(uids, uid)
	}
	sort.Strings(uids)

	open := false
	rows := make([]DigestRow, 0, len(uids))
	for _, uid := range uids {
		userCrops := byUser[uid]
		row := DigestRow{
			Date:           today.Format(dateLayout),
			UserID:         uid,
			ActiveCrops:    len(userCrops),
			ActiveDiseases: diseases[uid],
			GeneratedAt:    now.UTC(),
		}

		health := 0
		for _, c := range userCrops {
			health += c.HealthScore
			due := models.StartOfDay(c.ExpectedHarvestDate)
			if !due.Before(today) && !due.After(horizon) {
				row.HarvestDue++
			}
		}
		row.AverageHealth = math.Round(float64(health)/float64(len(userCrops))*10) / 10

		tasks, err := s.tasks.ListByUser(ctx, uid, &open)
		if err != nil {
			return nil, fmt.Errorf("load tasks for %s: %w", uid, err)
		}
		row.OpenTasks = len(tasks)
		for _, t := range tasks {
			if models.StartOfDay(t.DueDate).Before(today) {
				row.OverdueTasks++
			}
		}

		rows = append(rows, row)
	}
	return rows, nil
}

// PublishDigest appends today's rows to the digest sheet, skipping users
// already reported for the same day. It returns the number of rows written.
func (s *Service) PublishDigest(ctx context.Context, now time.Time) (int, error) {
	if s.sheet == nil {
		s.logger.Debug("digest sheet not configured, skipping")
		return 0, nil
	}

	rows, err := s.BuildDigest(ctx, now)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}

	existing, err := s.sheet.ReadRange(ctx, digestKeys)
	if err != nil {
		return 0, fmt.Errorf("load digest keys: %w", err)
	}
	seen := make(map[string]bool, len(existing))
	for _, r := range existing {
		if len(r) < 2 {
			continue
		}
		day, err := parseDate(r[0])
		if err != nil {
			continue
		}
		seen[day.Format(dateLayout)+"|"+fmt.Sprint(r[1])] = true
	}

	values := make([][]interface{}, 0, len(rows))
	for _, r := range rows {
		if seen[r.Date+"|"+r.UserID] {
			continue
		}
		values = append(values, r.values())
	}
	if len(values) == 0 {
		s.logger.Info("digest already published", zap.String("date", rows[0].Date))
		return 0, nil
	}

	if err := s.sheet.AppendRows(ctx, digestRange, values); err != nil {
		return 0, fmt.Errorf("append digest: %w", err)
	}

	s.logger.Info("digest published", zap.String("date", rows[0].Date), zap.Int("rows", len(values)))
	return len(values), nil
}

func parseDate(value interface{}) (time.Time, error) {
	str := fmt.Sprint(value)
	if str == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if len(str) > 10 {
		str = str[:10]
	}
	return time.Parse(dateLayout, str)
}
