package repositories

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"telebill/internal/models"
	"telebill/internal/repositories/cache"
)

type userRepository struct {
	db    *gorm.DB
	cache *cache.CacheService
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *gorm.DB, cache *cache.CacheService) UserRepository {
	return &userRepository{
		db:    db,
		cache: cache,
	}
}

func (r *userRepository) CreateWithBill(user *models.User, bill *models.Bill) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return r.translateDuplicate(tx, err, user)
		}
		bill.UserID = user.ID
		if err := tx.Create(bill).Error; err != nil {
			return fmt.Errorf("failed to create bill: %w", err)
		}
		user.Bill = bill
		return nil
	})
}

func (r *userRepository) GetByID(id uint) (*models.User, error) {
	key := r.cache.GenerateKey("user", "id", id)
	if user, err := r.cache.GetUser(context.Background(), key); err == nil {
		return user, nil
	}

	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := r.cache.CacheUser(context.Background(), &user); err != nil {
		log.Printf("failed to cache user %d: %v", user.ID, err)
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (r *userRepository) Exists(id uint) (bool, error) {
	var count int64
	if err := r.db.Model(&models.User{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return count > 0, nil
}

// Update locks the user row for the duration of the transaction so two
// concurrent patches of the same user cannot interleave their
// read-modify-write cycles.
func (r *userRepository) Update(id uint, input *models.UpdateUserInput) (*models.User, error) {
	var user models.User
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("failed to lock user: %w", err)
		}

		if input.Email != nil {
			user.Email = *input.Email
		}
		if input.Username != nil {
			user.Username = *input.Username
		}
		if input.Password != nil {
			user.Password = *input.Password
		}

		if err := tx.Save(&user).Error; err != nil {
			return r.translateDuplicate(tx, err, &user)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.invalidate(&user)
	return &user, nil
}

func (r *userRepository) Delete(id uint) error {
	user, err := r.GetByID(id)
	if err != nil {
		return err
	}

	result := r.db.Select(clause.Associations).Delete(&models.User{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}

	r.invalidate(user)
	return nil
}

func (r *userRepository) List(search string, offset, limit int) ([]models.User, int64, error) {
	query := r.db.Model(&models.User{})
	if search != "" {
		pattern := "%" + search + "%"
		query = query.Where("email ILIKE ? OR username ILIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	var users []models.User
	if err := query.Order("id").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

// translateDuplicate maps a unique violation onto the field-specific
// error by probing which of the two unique columns is taken. When the
// probe itself fails the conflict is still reported, just without
// naming the field.
func (r *userRepository) translateDuplicate(tx *gorm.DB, err error, user *models.User) error {
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("failed to save user: %w", err)
	}

	var count int64
	probeErr := tx.Session(&gorm.Session{NewDB: true}).
		Model(&models.User{}).
		Where("email = ? AND id <> ?", user.Email, user.ID).
		Count(&count).Error
	if probeErr != nil {
		return ErrDuplicateUser
	}
	if count > 0 {
		return ErrEmailTaken
	}
	return ErrUsernameTaken
}

func (r *userRepository) invalidate(user *models.User) {
	if err := r.cache.InvalidateUser(context.Background(), user); err != nil {
		log.Printf("failed to invalidate user cache %d: %v", user.ID, err)
	}
}
