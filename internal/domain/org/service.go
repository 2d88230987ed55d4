package org

import (
	"context"
	"errors"
	"strings"

	"rrhh/internal/domain/audit"
	"rrhh/internal/domain/auth"
	"rrhh/internal/platform/querier"
)

var (
	ErrDepartmentNotFound = errors.New("department not found")
	ErrPositionNotFound   = errors.New("position not found")
	ErrDuplicateName      = errors.New("name already exists")
	ErrNameRequired       = errors.New("name is required")
	ErrHasEmployees       = errors.New("employees are still assigned")
)

type Service struct {
	Store StoreAPI
	Audit audit.Recorder
}

func NewService(store StoreAPI, recorder audit.Recorder) *Service {
	return &Service{Store: store, Audit: recorder}
}

func (s *Service) ListDepartments(ctx context.Context) ([]Department, error) {
	return s.Store.ListDepartments(ctx)
}

func (s *Service) GetDepartment(ctx context.Context, id int64) (Department, error) {
	return s.Store.GetDepartment(ctx, id)
}

func (s *Service) CreateDepartment(ctx context.Context, user auth.UserContext, in DepartmentInput) (Department, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return Department{}, ErrNameRequired
	}
	id, err := s.Store.CreateDepartment(ctx, strings.TrimSpace(*in.Name), in.Description)
	if querier.IsUniqueViolation(err) {
		return Department{}, ErrDuplicateName
	}
	if err != nil {
		return Department{}, err
	}
	audit.Log(ctx, s.Audit, user.UserID, "department.create", "department", id, nil, in)
	return s.Store.GetDepartment(ctx, id)
}

func (s *Service) UpdateDepartment(ctx context.Context, user auth.UserContext, id int64, in DepartmentInput) (Department, error) {
	ok, err := s.Store.UpdateDepartment(ctx, id, in)
	if querier.IsUniqueViolation(err) {
		return Department{}, ErrDuplicateName
	}
	if err != nil {
		return Department{}, err
	}
	if !ok {
		return Department{}, ErrDepartmentNotFound
	}
	audit.Log(ctx, s.Audit, user.UserID, "department.update", "department", id, nil, in)
	return s.Store.GetDepartment(ctx, id)
}

func (s *Service) DeleteDepartment(ctx context.Context, user auth.UserContext, id int64) error {
	count, err := s.Store.DepartmentEmployeeCount(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrHasEmployees
	}
	ok, err := s.Store.DeleteDepartment(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrDepartmentNotFound
	}
	audit.Log(ctx, s.Audit, user.UserID, "department.delete", "department", id, nil, nil)
	return nil
}

func (s *Service) ListPositions(ctx context.Context) ([]Position, error) {
	return s.Store.ListPositions(ctx)
}

func (s *Service) GetPosition(ctx context.Context, id int64) (Position, error) {
	return s.Store.GetPosition(ctx, id)
}

func (s *Service) CreatePosition(ctx context.Context, user auth.UserContext, in PositionInput) (Position, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return Position{}, ErrNameRequired
	}
	name := strings.TrimSpace(*in.Name)
	in.Name = &name
	id, err := s.Store.CreatePosition(ctx, in)
	if querier.IsUniqueViolation(err) {
		return Position{}, ErrDuplicateName
	}
	if err != nil {
		return Position{}, err
	}
	audit.Log(ctx, s.Audit, user.UserID, "position.create", "position", id, nil, in)
	return s.Store.GetPosition(ctx, id)
}

func (s *Service) UpdatePosition(ctx context.Context, user auth.UserContext, id int64, in PositionInput) (Position, error) {
	ok, err := s.Store.UpdatePosition(ctx, id, in)
	if querier.IsUniqueViolation(err) {
		return Position{}, ErrDuplicateName
	}
	if err != nil {
		return Position{}, err
	}
	if !ok {
		return Position{}, ErrPositionNotFound
	}
	audit.Log(ctx, s.Audit, user.UserID, "position.update", "position", id, nil, in)
	return s.Store.GetPosition(ctx, id)
}

func (s *Service) DeletePosition(ctx context.Context, user auth.UserContext, id int64) error {
	count, err := s.Store.PositionEmployeeCount(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrHasEmployees
	}
	ok, err := s.Store.DeletePosition(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrPositionNotFound
	}
	audit.Log(ctx, s.Audit, user.UserID, "position.delete", "position", id, nil, nil)
	return nil
}
