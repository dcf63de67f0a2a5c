package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/dashboard/internal/common"
	"github.com/dmitrijs2005/dashboard/internal/logging"
	"github.com/dmitrijs2005/dashboard/internal/server/auth"
	"github.com/dmitrijs2005/dashboard/internal/server/models"
	"github.com/dmitrijs2005/dashboard/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/dashboard/internal/server/validation"
	"github.com/dmitrijs2005/dashboard/internal/server/viewcache"
)

type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      auth.Hasher
	cache       viewcache.Invalidator
	logger      logging.Logger
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, hasher auth.Hasher, cache viewcache.Invalidator, logger logging.Logger) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		hasher:      hasher,
		cache:       cache,
		logger:      logger.With("module", "users"),
	}
}

// CreateUser hashes the password and stores the user. A hashing failure is
// returned as an error.
func (s *UserService) CreateUser(ctx context.Context, prev State, form validation.Form) (Result, error) {
	in, errs := validation.ValidateCreateUser(form)
	if !errs.Empty() {
		return validationFailed(errs, actionCreate, entityUser), nil
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return Result{}, fmt.Errorf("hash password: %w", err)
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.Create(ctx, &models.User{Name: in.Name, Email: in.Email, PasswordHash: hash})
	if err != nil {
		s.logger.Error(ctx, "create user failed", "error", err)
		return persistenceFailed(actionCreate, entityUser), nil
	}

	s.logger.Info(ctx, "user created", "id", user.ID)
	s.cache.Invalidate(common.UsersPath)
	return redirect(common.UsersPath), nil
}

// UpdateUser re-hashes the submitted password on every update.
func (s *UserService) UpdateUser(ctx context.Context, prev State, form validation.Form) (Result, error) {
	in, errs := validation.ValidateUpdateUser(form)
	if !errs.Empty() {
		return validationFailed(errs, actionUpdate, entityUser), nil
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return Result{}, fmt.Errorf("hash password: %w", err)
	}

	repo := s.repomanager.Users(s.db)
	user := &models.User{ID: in.ID, Name: in.Name, Email: in.Email, PasswordHash: hash}
	if err := repo.Update(ctx, user); err != nil {
		s.logger.Error(ctx, "update user failed", "id", in.ID, "error", err)
		return persistenceFailed(actionUpdate, entityUser), nil
	}

	s.logger.Info(ctx, "user updated", "id", in.ID)
	s.cache.Invalidate(common.UsersPath)
	return redirect(common.UsersPath), nil
}

// DeleteUser reports a store failure in the Result like every other action.
func (s *UserService) DeleteUser(ctx context.Context, id string) (Result, error) {
	repo := s.repomanager.Users(s.db)
	if err := repo.Delete(ctx, id); err != nil {
		s.logger.Error(ctx, "delete user failed", "id", id, "error", err)
		return persistenceFailed(actionDelete, entityUser), nil
	}

	s.logger.Info(ctx, "user deleted", "id", id)
	s.cache.Invalidate(common.UsersPath)
	return redirect(common.UsersPath), nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]*models.User, error) {
	return s.repomanager.Users(s.db).List(ctx)
}

func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	return s.repomanager.Users(s.db).Get(ctx, id)
}
