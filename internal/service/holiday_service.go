package service

import (
	"context"

	"github.com/ngmvpwd/pakaya-sub001/internal/model"
	"github.com/ngmvpwd/pakaya-sub001/internal/repository"
)

// HolidayService owns the holiday calendar.
type HolidayService struct {
	repo *repository.HolidayRepository
}

// NewHolidayService creates a new HolidayService.
func NewHolidayService(repo *repository.HolidayRepository) *HolidayService {
	return &HolidayService{repo: repo}
}

// List retrieves all declared holidays.
func (s *HolidayService) List(ctx context.Context) ([]model.Holiday, error) {
	holidays, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if holidays == nil {
		holidays = []model.Holiday{}
	}
	return holidays, nil
}

// Create declares a holiday.
func (s *HolidayService) Create(ctx context.Context, req model.HolidayRequest) (*model.Holiday, error) {
	h := &model.Holiday{Date: req.Date, Name: req.Name}
	if err := s.repo.Create(ctx, h); err != nil {
		return nil, err
	}
	return h, nil
}

// Delete removes a declared holiday.
func (s *HolidayService) Delete(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}
