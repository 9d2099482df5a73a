package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/ngmvpwd/pakaya-sub001/internal/event"
	"github.com/ngmvpwd/pakaya-sub001/internal/model"
	"github.com/ngmvpwd/pakaya-sub001/internal/repository"
)

// DepartmentService owns the department directory.
type DepartmentService struct {
	repo *repository.DepartmentRepository
	bus  publisher
	log  zerolog.Logger
}

// NewDepartmentService creates a new DepartmentService.
func NewDepartmentService(repo *repository.DepartmentRepository, bus publisher, log zerolog.Logger) *DepartmentService {
	return &DepartmentService{
		repo: repo,
		bus:  bus,
		log:  log.With().Str("component", "department_service").Logger(),
	}
}

// List retrieves all departments.
func (s *DepartmentService) List(ctx context.Context) ([]model.Department, error) {
	departments, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if departments == nil {
		departments = []model.Department{}
	}
	return departments, nil
}

// Create adds a department.
func (s *DepartmentService) Create(ctx context.Context, req model.DepartmentRequest) (*model.Department, error) {
	d := &model.Department{Name: req.Name}
	if err := s.repo.Create(ctx, d); err != nil {
		return nil, err
	}
	s.bus.Publish(event.New(event.DepartmentUpdated, nil))
	return d, nil
}

// Update renames a department.
func (s *DepartmentService) Update(ctx context.Context, id int, req model.DepartmentRequest) (*model.Department, error) {
	d := &model.Department{ID: id, Name: req.Name}
	if err := s.repo.Update(ctx, d); err != nil {
		return nil, err
	}
	s.bus.Publish(event.New(event.DepartmentUpdated, nil))
	return s.repo.GetByID(ctx, id)
}

// Delete removes an empty department.
func (s *DepartmentService) Delete(ctx context.Context, id int) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.bus.Publish(event.New(event.DepartmentUpdated, nil))
	return nil
}
