// Package memory is a map-backed repository with the same method sets as the
// MongoDB stores. It backs service and handler tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mamadbah2/farmhub/internal/domain/models"
)

// Repository holds every collection in memory.
type Repository struct {
	mu       sync.RWMutex
	users    map[string]models.User
	lands    map[primitive.ObjectID]models.Land
	plots    map[primitive.ObjectID]models.Plot
	crops    map[primitive.ObjectID]models.Crop
	tasks    map[primitive.ObjectID]models.Task
	diseases map[primitive.ObjectID]models.Disease
	prices   []models.MarketPrice
}

// New returns an empty repository.
func New() *Repository {
	return &Repository{
		users:    make(map[string]models.User),
		lands:    make(map[primitive.ObjectID]models.Land),
		plots:    make(map[primitive.ObjectID]models.Plot),
		crops:    make(map[primitive.ObjectID]models.Crop),
		tasks:    make(map[primitive.ObjectID]models.Task),
		diseases: make(map[primitive.ObjectID]models.Disease),
	}
}

// Users returns the users store.
func (r *Repository) Users() *UserStore { return &UserStore{r} }

// Lands returns the lands store.
func (r *Repository) Lands() *LandStore { return &LandStore{r} }

// Plots returns the plots store.
func (r *Repository) Plots() *PlotStore { return &PlotStore{r} }

// Crops returns the crops store.
func (r *Repository) Crops() *CropStore { return &CropStore{r} }

// Tasks returns the tasks store.
func (r *Repository) Tasks() *TaskStore { return &TaskStore{r} }

// Diseases returns the diseases store.
func (r *Repository) Diseases() *DiseaseStore { return &DiseaseStore{r} }

// MarketPrices returns the market price store.
func (r *Repository) MarketPrices() *MarketStore { return &MarketStore{r} }

// AddPrices seeds market prices.
func (r *Repository) AddPrices(prices ...models.MarketPrice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range prices {
		if p.ID.IsZero() {
			p.ID = primitive.NewObjectID()
		}
		r.prices = append(r.prices, p)
	}
}

func notFound(what string) error {
	return fmt.Errorf("%w: %s", models.ErrNotFound, what)
}

// UserStore persists users.
type UserStore struct{ r *Repository }

func (s *UserStore) Insert(_ context.Context, user *models.User) error {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	if _, ok := s.r.users[user.FirebaseUID]; ok {
		return fmt.Errorf("%w: user %s already exists", models.ErrConflict, user.FirebaseUID)
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	s.r.users[user.FirebaseUID] = *user
	return nil
}

func (s *UserStore) FindByUID(_ context.Context, uid string) (*models.User, error) {
	s.r.mu.RLock()
	defer s.r.mu.RUnlock()
	u, ok := s.r.users[uid]
	if !ok {
		return nil, notFound("user")
	}
	return &u, nil
}

func (s *UserStore) Replace(_ context.Context, user *models.User) error {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	if _, ok := s.r.users[user.FirebaseUID]; !ok {
		return notFound("user")
	}
	s.r.users[user.FirebaseUID] = *user
	return nil
}

// LandStore persists lands.
type LandStore struct{ r *Repository }

func (s *LandStore) Insert(_ context.Context, land *models.Land) error {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	if land.ID.IsZero() {
		land.ID = primitive.NewObjectID()
	}
	s.r.lands[land.ID] = *land
	return nil
}

func (s *LandStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Land, error) {
	s.r.mu.RLock()
	defer s.r.mu.RUnlock()
	l, ok := s.r.lands[id]
	if !ok {
		return nil, notFound("land")
	}
	return &l, nil
}

func (s *LandStore) ListActiveByUser(_ context.Context, uid string) ([]models.Land, error) {
	s.r.mu.RLock()
	defer s.r.mu.RUnlock()
	out := make([]models.Land, 0)
	for _, l := range s.r.lands {
		if l.UserID == uid && l.IsActive {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *LandStore) Replace(_ context.Context, land *models.Land) error {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	if _, ok := s.r.lands[land.ID]; !ok {
		return notFound("land")
	}
	s.r.lands[land.ID] = *land
	return nil
}

func (s *LandStore) AddPlots(_ context.Context, id primitive.ObjectID, delta int) error {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	l, ok := s.r.lands[id]
	if !ok {
		return notFound("land")
	}
	l.TotalPlots += delta
	if l.TotalPlots < 0 {
		l.TotalPlots = 0
	}
	s.r.lands[id] = l
	return nil
}

// PlotStore persists plots.
type PlotStore struct{ r *Repository }

func (s *PlotStore) ReplaceForLand(_ context.Context, landID primitive.ObjectID, plots []models.Plot) error {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	for id, p := range s.r.plots {
		if p.LandID == landID {
			delete(s.r.plots, id)
		}
	}
	for i := range plots {
		if plots[i].ID.IsZero() {
			plots[i].ID = primitive.NewObjectID()
		}
		s.r.plots[plots[i].ID] = plots[i]
	}
	if l, ok := s.r.lands[landID]; ok {
		l.TotalPlots = len(plots)
		s.r.lands[landID] = l
	}
	return nil
}

func (s *PlotStore) ListByLand(_ context.Context, landID primitive.ObjectID) ([]models.Plot, error) {
	s.r.mu.RLock()
	defer s.r.mu.RUnlock()
	out := make([]models.Plot, 0)
	for _, p := range s.r.plots {
		if p.LandID == landID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Hex() < out[j].ID.Hex() })
	return out, nil
}

func (s *PlotStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Plot, error) {
	s.r.mu.RLock()
	defer s.r.mu.RUnlock()
	p, ok := s.r.plots[id]
	if !ok {
		return nil, notFound("plot")
	}
	return &p, nil
}

func (s *PlotStore) Replace(_ context.Context, plot *models.Plot) error {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	if _, ok := s.r.plots[plot.ID]; !ok {
		return notFound("plot")
	}
	s.r.plots[plot.ID] = *plot
	return nil
}

func (s *PlotStore) Delete(_ context.Context, id primitive.ObjectID) error {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	if _, ok := s.r.plots[id]; !ok {
		return notFound("plot")
	}
	delete(s.r.plots, id)
	return nil
}

func (s *PlotStore) AssignCrop(_ context.Context, plotID, cropID primitive.ObjectID, cropName string) error {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	p, ok := s.r.plots[plotID]
	if !ok {
		return notFound("plot")
	}
	p.CropID = &cropID
	p.CropName = cropName
	s.r.plots[plotID] = p
	return nil
}

// CropStore persists crops.
type CropStore struct{ r *Repository }

func (s *CropStore) Insert(_ context.Context, crop *models.Crop) error {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	if crop.ID.IsZero() {
		crop.ID = primitive.NewObjectID()
	}
	s.r.crops[crop.ID] = *crop
	return nil
}

func (s *CropStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Crop, error) {
	s.r.mu.RLock()
	defer s.r.mu.RUnlock()
	c, ok := s.r.crops[id]
	if !ok {
		return nil, notFound("crop")
	}
	return &c, nil
}

func (s *CropStore) list(keep func(models.Crop) bool) []models.Crop {
	s.r.mu.RLock()
	defer s.r.mu.RUnlock()
	out := make([]models.Crop, 0)
	for _, c := range s.r.crops {
		if keep(c) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (s *CropStore) ListActiveByUser(_ context.Context, uid string) ([]models.Crop, error) {
	return s.list(func(c models.Crop) bool { return c.UserID == uid && c.IsActive }), nil
}

func (s *CropStore) ListActiveByLand(_ context.Context, landID primitive.ObjectID) ([]models.Crop, error) {
	return s.list(func(c models.Crop) bool { return c.LandID != nil && *c.LandID == landID && c.IsActive }), nil
}

func (s *CropStore) ListActive(_ context.Context) ([]models.Crop, error) {
	out := s.list(func(c models.Crop) bool { return c.IsActive && !c.IsHarvested })
	sort.SliceStable(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (s *CropStore) Replace(_ context.Context, crop *models.Crop) error {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	stored, ok := s.r.crops[crop.ID]
	if !ok {
		return notFound("crop")
	}
	if stored.Version != crop.Version {
		return fmt.Errorf("%w: crop was modified concurrently", models.ErrConflict)
	}
	crop.Version++
	s.r.crops[crop.ID] = *crop
	return nil
}

func (s *CropStore) AdjustHealth(_ context.Context, id primitive.ObjectID, delta int) (*models.Crop, error) {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	c, ok := s.r.crops[id]
	if !ok {
		return nil, notFound("crop")
	}
	c.HealthScore = models.ClampHealth(c.HealthScore + delta)
	c.Version++
	c.UpdatedAt = time.Now().UTC()
	s.r.crops[id] = c
	return &c, nil
}

// TaskStore persists tasks.
type TaskStore struct{ r *Repository }

func (s *TaskStore) Insert(_ context.Context, task *models.Task) error {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	if task.ID.IsZero() {
		task.ID = primitive.NewObjectID()
	}
	s.r.tasks[task.ID] = *task
	return nil
}

func (s *TaskStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Task, error) {
	s.r.mu.RLock()
	defer s.r.mu.RUnlock()
	t, ok := s.r.tasks[id]
	if !ok {
		return nil, notFound("task")
	}
	return &t, nil
}

func (s *TaskStore) list(keep func(models.Task) bool) []models.Task {
	s.r.mu.RLock()
	defer s.r.mu.RUnlock()
	out := make([]models.Task, 0)
	for _, t := range s.r.tasks {
		if keep(t) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	return out
}

func (s *TaskStore) ListByCrop(_ context.Context, cropID primitive.ObjectID) ([]models.Task, error) {
	return s.list(func(t models.Task) bool { return t.CropID == cropID }), nil
}

func (s *TaskStore) ListByUser(_ context.Context, uid string, completed *bool) ([]models.Task, error) {
	return s.list(func(t models.Task) bool {
		return t.UserID == uid && (completed == nil || t.IsCompleted == *completed)
	}), nil
}

func (s *TaskStore) Replace(_ context.Context, task *models.Task) error {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	if _, ok := s.r.tasks[task.ID]; !ok {
		return notFound("task")
	}
	s.r.tasks[task.ID] = *task
	return nil
}

func (s *TaskStore) Delete(_ context.Context, id primitive.ObjectID) error {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	if _, ok := s.r.tasks[id]; !ok {
		return notFound("task")
	}
	delete(s.r.tasks, id)
	return nil
}

// DiseaseStore persists disease records.
type DiseaseStore struct{ r *Repository }

func (s *DiseaseStore) Insert(_ context.Context, disease *models.Disease) error {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	if disease.ID.IsZero() {
		disease.ID = primitive.NewObjectID()
	}
	s.r.diseases[disease.ID] = *disease
	return nil
}

func (s *DiseaseStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Disease, error) {
	s.r.mu.RLock()
	defer s.r.mu.RUnlock()
	d, ok := s.r.diseases[id]
	if !ok {
		return nil, notFound("disease")
	}
	return &d, nil
}

func (s *DiseaseStore) list(keep func(models.Disease) bool) []models.Disease {
	s.r.mu.RLock()
	defer s.r.mu.RUnlock()
	out := make([]models.Disease, 0)
	for _, d := range s.r.diseases {
		if keep(d) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DetectedAt.After(out[j].DetectedAt) })
	return out
}

func (s *DiseaseStore) ListByCrop(_ context.Context, cropID primitive.ObjectID) ([]models.Disease, error) {
	return s.list(func(d models.Disease) bool { return d.CropID == cropID }), nil
}

func (s *DiseaseStore) ListByUser(_ context.Context, uid string) ([]models.Disease, error) {
	return s.list(func(d models.Disease) bool { return d.UserID == uid }), nil
}

func (s *DiseaseStore) Replace(_ context.Context, disease *models.Disease) error {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	if _, ok := s.r.diseases[disease.ID]; !ok {
		return notFound("disease")
	}
	s.r.diseases[disease.ID] = *disease
	return nil
}

func (s *DiseaseStore) TransitionStatus(_ context.Context, id primitive.ObjectID, from, to models.DiseaseStatus, at time.Time) (*models.Disease, error) {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	d, ok := s.r.diseases[id]
	if !ok {
		return nil, notFound("disease")
	}
	if d.Status != from {
		return nil, fmt.Errorf("%w: disease status changed concurrently", models.ErrConflict)
	}
	d.Status = to
	d.UpdatedAt = at
	if to == models.StatusResolved {
		d.ResolvedAt = &at
	} else {
		d.ResolvedAt = nil
	}
	s.r.diseases[id] = d
	return &d, nil
}

func (s *DiseaseStore) Delete(_ context.Context, id primitive.ObjectID) error {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	if _, ok := s.r.diseases[id]; !ok {
		return notFound("disease")
	}
	delete(s.r.diseases, id)
	return nil
}

func (s *DiseaseStore) CountActiveByUser(_ context.Context) (map[string]int, error) {
	s.r.mu.RLock()
	defer s.r.mu.RUnlock()
	out := make(map[string]int)
	for _, d := range s.r.diseases {
		if d.Status != models.StatusResolved {
			out[d.UserID]++
		}
	}
	return out, nil
}

// MarketStore reads seeded market prices.
type MarketStore struct{ r *Repository }

func (s *MarketStore) ListSince(_ context.Context, cropName string, since time.Time) ([]models.MarketPrice, error) {
	s.r.mu.RLock()
	defer s.r.mu.RUnlock()
	out := make([]models.MarketPrice, 0)
	for _, p := range s.r.prices {
		if strings.EqualFold(p.CropName, strings.TrimSpace(cropName)) && !p.Date.Before(since) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].Market < out[j].Market
		}
		return out[i].Date.After(out[j].Date)
	})
	return out, nil
}

func (s *MarketStore) LatestPerMarket(_ context.Context, cropName string) ([]models.MarketPrice, error) {
	s.r.mu.RLock()
	defer s.r.mu.RUnlock()
	latest := make(map[string]models.MarketPrice)
	for _, p := range s.r.prices {
		if !strings.EqualFold(p.CropName, strings.TrimSpace(cropName)) {
			continue
		}
		if cur, ok := latest[p.Market]; !ok || p.Date.After(cur.Date) {
			latest[p.Market] = p
		}
	}
	out := make([]models.MarketPrice, 0, len(latest))
	for _, p := range latest {
		out = append(out, p)
	}
	return out, nil
}
