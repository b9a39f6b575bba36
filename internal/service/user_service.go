package service

import (
	"context"

	"github.com/juju/errors"
	"github.com/juju/loggo"

	"service-mesh/internal/model"
	"service-mesh/internal/repository"
	"service-mesh/internal/schema"
)

var logger = loggo.GetLogger("servicemesh.service")

const (
	msgEmailRegistered = "Email already registered"
	msgEmailTaken      = "Email already exist"
	msgUserNotFound    = "User not found"
	msgUserMissing     = "User does not exist"
)

// PasswordHasher turns a plaintext password into a storable hash and
// checks a plaintext against one.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, stored string) bool
}

// Signup is a validated user creation request.
type Signup struct {
	Email    string
	Name     string
	Lastname string
	Password string
}

// UserService wraps user-related business logic. Every mutation runs in its
// own unit of work.
type UserService struct {
	uow    *repository.UnitOfWork
	users  *repository.UserRepository
	hasher PasswordHasher
}

// NewUserService builds a UserService; users serves the read-only lookups.
func NewUserService(uow *repository.UnitOfWork, users *repository.UserRepository, hasher PasswordHasher) *UserService {
	return &UserService{uow: uow, users: users, hasher: hasher}
}

// Create registers a user. The email pre-check is best effort; the unique
// index settles concurrent signups and both paths report AlreadyExists.
func (s *UserService) Create(ctx context.Context, in Signup) (*model.User, error) {
	hashed, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, errors.Trace(err)
	}

	var created *model.User
	err = s.uow.Do(ctx, func(tx repository.Tx) error {
		users := tx.Users()
		taken, err := users.Exists(ctx, in.Email)
		if err != nil {
			return err
		}
		if taken {
			return errors.NewAlreadyExists(nil, msgEmailRegistered)
		}
		created, err = users.Create(ctx, model.NewUser{
			Email:          in.Email,
			Name:           in.Name,
			Lastname:       in.Lastname,
			HashedPassword: hashed,
		})
		if errors.Is(err, repository.ErrDuplicateKey) {
			logger.Debugf("signup for %q lost the race on the unique index", in.Email)
			return errors.NewAlreadyExists(nil, msgEmailRegistered)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	logger.Infof("created user %d", created.ID)
	return created, nil
}

func (s *UserService) Get(ctx context.Context, id uint) (*model.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if u == nil {
		return nil, errors.NewNotFound(nil, msgUserNotFound)
	}
	return u, nil
}

// Update applies a partial update. Changing the email to one held by
// another user is rejected with AlreadyExists.
func (s *UserService) Update(ctx context.Context, id uint, changes model.UserChanges) (*model.User, error) {
	if changes.Empty() {
		return nil, schema.ErrNoData
	}

	var updated *model.User
	err := s.uow.Do(ctx, func(tx repository.Tx) error {
		users := tx.Users()
		current, err := users.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return errors.NewNotFound(nil, msgUserMissing)
		}
		if changes.Email != nil && *changes.Email != current.Email {
			holder, err := users.GetByEmail(ctx, *changes.Email)
			if err != nil {
				return err
			}
			if holder != nil {
				return errors.NewAlreadyExists(nil, msgEmailTaken)
			}
		}
		updated, err = users.Update(ctx, id, changes)
		if errors.Is(err, repository.ErrDuplicateKey) {
			return errors.NewAlreadyExists(nil, msgEmailTaken)
		}
		if err != nil {
			return err
		}
		if updated == nil {
			return errors.NewNotFound(nil, msgUserNotFound)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *UserService) Delete(ctx context.Context, id uint) error {
	return s.uow.Do(ctx, func(tx repository.Tx) error {
		removed, err := tx.Users().Delete(ctx, id)
		if err != nil {
			return err
		}
		if !removed {
			return errors.NewNotFound(nil, msgUserNotFound)
		}
		logger.Infof("deleted user %d", id)
		return nil
	})
}
