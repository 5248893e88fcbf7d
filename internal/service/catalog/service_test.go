package catalog

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careflow/clinic-api/internal/model"
	"github.com/careflow/clinic-api/internal/repository"
	apperrors "github.com/careflow/clinic-api/pkg/errors"
)

type fakeSpecialtyRepo struct {
	mu        sync.Mutex
	nextID    int64
	rows      map[int64]*model.Specialty
	listCalls int
}

func newFakeSpecialtyRepo() *fakeSpecialtyRepo {
	return &fakeSpecialtyRepo{rows: make(map[int64]*model.Specialty)}
}

func (f *fakeSpecialtyRepo) List(_ context.Context) ([]*model.Specialty, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	out := make([]*model.Specialty, 0, len(f.rows))
	for _, s := range f.rows {
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeSpecialtyRepo) Get(_ context.Context, id int64) (*model.Specialty, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return s, nil
}

func (f *fakeSpecialtyRepo) Create(_ context.Context, s *model.Specialty) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	s.ID = f.nextID
	f.rows[s.ID] = s
	return nil
}

func (f *fakeSpecialtyRepo) Update(_ context.Context, s *model.Specialty) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[s.ID]; !ok {
		return repository.ErrNotFound
	}
	f.rows[s.ID] = s
	return nil
}

func (f *fakeSpecialtyRepo) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

type fakeServiceRepo struct{}

func (fakeServiceRepo) List(_ context.Context) ([]*model.Service, error) { return nil, nil }
func (fakeServiceRepo) Get(_ context.Context, _ int64) (*model.Service, error) {
	return nil, repository.ErrNotFound
}
func (fakeServiceRepo) Create(_ context.Context, _ *model.Service) (int64, error) { return 1, nil }
func (fakeServiceRepo) Update(_ context.Context, _ *model.Service) error          { return nil }
func (fakeServiceRepo) Delete(_ context.Context, _ int64) error                   { return nil }

type fakeMedicineRepo struct{}

func (fakeMedicineRepo) List(_ context.Context) ([]*model.Medicine, error) { return nil, nil }
func (fakeMedicineRepo) Get(_ context.Context, _ int64) (*model.Medicine, error) {
	return nil, repository.ErrNotFound
}
func (fakeMedicineRepo) Create(_ context.Context, _ *model.Medicine) error { return nil }
func (fakeMedicineRepo) Update(_ context.Context, _ *model.Medicine) error { return nil }
func (fakeMedicineRepo) Delete(_ context.Context, _ int64) error           { return nil }
func (fakeMedicineRepo) ListPrescriptions(_ context.Context, _ int64) ([]*model.Prescription, error) {
	return nil, nil
}
func (fakeMedicineRepo) CreatePrescription(_ context.Context, _ *model.Prescription) error {
	return nil
}

func TestListSpecialtiesIsCached(t *testing.T) {
	repo := newFakeSpecialtyRepo()
	svc := NewService(repo, fakeServiceRepo{}, fakeMedicineRepo{})

	_, err := svc.CreateSpecialty(context.Background(), &model.SpecialtyRequest{Name: "Cardiology"})
	require.NoError(t, err)
	callsAfterCreate := repo.listCalls

	_, err = svc.ListSpecialties(context.Background())
	require.NoError(t, err)
	_, err = svc.ListSpecialties(context.Background())
	require.NoError(t, err)

	assert.Equal(t, callsAfterCreate+1, repo.listCalls, "second list should hit the cache")
}

func TestSpecialtyMutationsInvalidateCache(t *testing.T) {
	repo := newFakeSpecialtyRepo()
	svc := NewService(repo, fakeServiceRepo{}, fakeMedicineRepo{})

	created, err := svc.CreateSpecialty(context.Background(), &model.SpecialtyRequest{Name: "Cardiology"})
	require.NoError(t, err)

	list, err := svc.ListSpecialties(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)

	_, err = svc.UpdateSpecialty(context.Background(), created.ID, &model.SpecialtyRequest{Name: "Cardiac Care"})
	require.NoError(t, err)

	list, err = svc.ListSpecialties(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Cardiac Care", list[0].Name)

	require.NoError(t, svc.DeleteSpecialty(context.Background(), created.ID))
	list, err = svc.ListSpecialties(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestGetSpecialtyNotFound(t *testing.T) {
	svc := NewService(newFakeSpecialtyRepo(), fakeServiceRepo{}, fakeMedicineRepo{})

	_, err := svc.GetSpecialty(context.Background(), 99)
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
}
