package auth

import (
	"errors"
	"log"

	"golang.org/x/crypto/bcrypt"

	"telebill/internal/models"
	"telebill/internal/repositories"
	"telebill/internal/utils"
)

var ErrInvalidCredentials = errors.New("unable to log in with provided credentials")

type Service interface {
	// Login verifies the credentials and returns the user with a fresh
	// token pair. The error does not reveal whether the email exists.
	Login(email, password string) (*models.User, string, string, error)

	// RefreshTokens exchanges a valid refresh token for a new pair.
	RefreshTokens(refreshToken string) (string, string, error)
}

type service struct {
	userRepo repositories.UserRepository
}

func NewService(userRepo repositories.UserRepository) Service {
	return &service{
		userRepo: userRepo,
	}
}

func (s *service) Login(email, password string) (*models.User, string, string, error) {
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return nil, "", "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", "", ErrInvalidCredentials
	}

	accessToken, refreshToken, err := utils.GenerateTokens(&models.UserClaims{
		UserID:   user.ID,
		Email:    user.Email,
		Username: user.Username,
	})
	if err != nil {
		log.Printf("error generating tokens: %v", err)
		return nil, "", "", errors.New("error generating tokens")
	}

	return user, accessToken, refreshToken, nil
}

func (s *service) RefreshTokens(refreshToken string) (string, string, error) {
	_, claims, err := utils.ParseToken(refreshToken)
	if err != nil {
		return "", "", errors.New("invalid refresh token")
	}

	user, err := s.userRepo.GetByID(claims.UserID)
	if err != nil {
		return "", "", errors.New("user not found")
	}

	return utils.GenerateTokens(&models.UserClaims{
		UserID:   user.ID,
		Email:    user.Email,
		Username: user.Username,
	})
}
