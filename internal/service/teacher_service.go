package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/ngmvpwd/pakaya-sub001/internal/event"
	"github.com/ngmvpwd/pakaya-sub001/internal/model"
	"github.com/ngmvpwd/pakaya-sub001/internal/repository"
)

// TeacherService owns the teacher directory. Mutations publish
// teacher_updated so open dashboards refresh their rosters.
type TeacherService struct {
	repo *repository.TeacherRepository
	auth *AuthService
	bus  publisher
	log  zerolog.Logger
}

// NewTeacherService creates a new TeacherService.
func NewTeacherService(repo *repository.TeacherRepository, auth *AuthService, bus publisher, log zerolog.Logger) *TeacherService {
	return &TeacherService{
		repo: repo,
		auth: auth,
		bus:  bus,
		log:  log.With().Str("component", "teacher_service").Logger(),
	}
}

// List retrieves teachers with pagination and an optional department filter.
func (s *TeacherService) List(ctx context.Context, departmentID *int, limit, offset int) ([]model.Teacher, int, error) {
	return s.repo.ListPaginated(ctx, departmentID, limit, offset)
}

// Get retrieves one teacher by internal ID.
func (s *TeacherService) Get(ctx context.Context, id int) (*model.Teacher, error) {
	return s.repo.GetByID(ctx, id)
}

// Create registers a teacher, hashing the optional portal password.
func (s *TeacherService) Create(ctx context.Context, req model.CreateTeacherRequest) (*model.Teacher, error) {
	teacher := &model.Teacher{
		TeacherID:     req.TeacherID,
		Name:          req.Name,
		DepartmentID:  req.DepartmentID,
		Email:         req.Email,
		Phone:         req.Phone,
		PortalEnabled: req.PortalEnabled,
	}

	if req.Password != "" {
		hash, err := s.auth.HashPassword(req.Password)
		if err != nil {
			return nil, err
		}
		teacher.PasswordHash = &hash
	}

	if err := s.repo.Create(ctx, teacher); err != nil {
		return nil, err
	}

	s.bus.Publish(event.New(event.TeacherUpdated, nil))
	return teacher, nil
}

// Update modifies a teacher. An empty password keeps the stored hash.
func (s *TeacherService) Update(ctx context.Context, id int, req model.UpdateTeacherRequest) (*model.Teacher, error) {
	teacher, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	teacher.TeacherID = req.TeacherID
	teacher.Name = req.Name
	teacher.DepartmentID = req.DepartmentID
	teacher.Email = req.Email
	teacher.Phone = req.Phone
	teacher.PortalEnabled = req.PortalEnabled
	teacher.PasswordHash = nil

	if req.Password != "" {
		hash, err := s.auth.HashPassword(req.Password)
		if err != nil {
			return nil, err
		}
		teacher.PasswordHash = &hash
	}

	if err := s.repo.Update(ctx, teacher); err != nil {
		return nil, err
	}

	s.bus.Publish(event.New(event.TeacherUpdated, nil))
	return s.repo.GetByID(ctx, id)
}

// Delete removes a teacher and their attendance history (FK cascade).
func (s *TeacherService) Delete(ctx context.Context, id int) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.bus.Publish(event.New(event.TeacherUpdated, nil))
	return nil
}
