package user

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"telebill/internal/config"
	"telebill/internal/models"
	"telebill/internal/repositories"
)

type Service interface {
	// Register creates the user together with its bill; the bill opens
	// with the configured default balance and tariff.
	Register(input *models.CreateUserInput) (*models.User, error)

	// Get returns one user by id.
	Get(id uint) (*models.User, error)

	// List returns users, optionally filtered by an email/username search.
	List(search string, offset, limit int) ([]models.User, int64, error)

	// Update patches the user profile.
	Update(id uint, input *models.UpdateUserInput) (*models.User, error)

	// Delete removes the user and, by cascade, its bill, payments and calls.
	Delete(id uint) error
}

type service struct {
	userRepo repositories.UserRepository
}

func NewService(userRepo repositories.UserRepository) Service {
	return &service{
		userRepo: userRepo,
	}
}

func (s *service) Register(input *models.CreateUserInput) (*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:    input.Email,
		Username: input.Username,
		Password: string(hashed),
	}
	bill := &models.Bill{
		Balance: config.DefaultBalance(),
		Tariff:  config.DefaultTariff(),
	}

	if err := s.userRepo.CreateWithBill(user, bill); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *service) Get(id uint) (*models.User, error) {
	return s.userRepo.GetByID(id)
}

func (s *service) List(search string, offset, limit int) ([]models.User, int64, error) {
	return s.userRepo.List(search, offset, limit)
}

func (s *service) Update(id uint, input *models.UpdateUserInput) (*models.User, error) {
	if input.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		h := string(hashed)
		input.Password = &h
	}
	return s.userRepo.Update(id, input)
}

func (s *service) Delete(id uint) error {
	return s.userRepo.Delete(id)
}
