package services

import (
	"context"
	"strings"

	"catering-backend/internal/models"
	"catering-backend/internal/repositories"
	"catering-backend/internal/validation"
)

type MenuService struct {
	Repo *repositories.MenuItemRepository
}

func NewMenuService(repo *repositories.MenuItemRepository) *MenuService {
	return &MenuService{Repo: repo}
}

func menuItemFromRequest(m *models.MenuItem, req *models.MenuItemRequest) error {
	var errs validation.Errors
	errs.Require("name", req.Name)
	errs.Check(req.Price >= 0, "price cannot be negative")
	if err := invalidErrs(errs); err != nil {
		return err
	}
	m.Name = strings.TrimSpace(req.Name)
	m.Category = strings.TrimSpace(req.Category)
	m.Unit = strings.TrimSpace(req.Unit)
	if m.Unit == "" {
		m.Unit = "plate"
	}
	m.Price = req.Price
	m.Description = req.Description
	if req.IsActive != nil {
		m.IsActive = *req.IsActive
	}
	return nil
}

func (s *MenuService) Create(ctx context.Context, req *models.MenuItemRequest) (*models.MenuItem, error) {
	m := &models.MenuItem{IsActive: true}
	if err := menuItemFromRequest(m, req); err != nil {
		return nil, err
	}
	if err := s.Repo.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *MenuService) Get(ctx context.Context, id int) (*models.MenuItem, error) {
	m, err := s.Repo.Get(ctx, id)
	return m, lookup(err, "menu item")
}

func (s *MenuService) List(ctx context.Context, category string, activeOnly bool) ([]*models.MenuItem, error) {
	return s.Repo.List(ctx, category, activeOnly)
}

func (s *MenuService) Update(ctx context.Context, id int, req *models.MenuItemRequest) (*models.MenuItem, error) {
	m, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, lookup(err, "menu item")
	}
	if err := menuItemFromRequest(m, req); err != nil {
		return nil, err
	}
	if err := s.Repo.Update(ctx, m); err != nil {
		return nil, lookup(err, "menu item")
	}
	return m, nil
}

func (s *MenuService) Delete(ctx context.Context, id int) error {
	return lookup(s.Repo.Delete(ctx, id), "menu item")
}
