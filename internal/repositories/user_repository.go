package repositories

import (
	"errors"

	"telebill/internal/models"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrBillNotFound      = errors.New("bill not found")
	ErrEmailTaken        = errors.New("user with this email already exists")
	ErrUsernameTaken     = errors.New("user with this username already exists")
	ErrDuplicateUser     = errors.New("user with this email or username already exists")
	ErrDatabaseOperation = errors.New("database operation failed")
)

// UserRepository defines the user-related database operations.
type UserRepository interface {
	// CreateWithBill inserts the user and its bill in one transaction.
	// Either both rows exist afterwards or neither does.
	CreateWithBill(user *models.User, bill *models.Bill) error

	// GetByID retrieves a user by primary key.
	GetByID(id uint) (*models.User, error)

	// GetByEmail retrieves a user by email address.
	GetByEmail(email string) (*models.User, error)

	// Exists reports whether a user row with the given id is present.
	Exists(id uint) (bool, error)

	// Update applies the patch to the user row. Concurrent updates of
	// the same user are serialized on the row lock.
	Update(id uint, input *models.UpdateUserInput) (*models.User, error)

	// Delete removes the user; the bill, payments and calls cascade.
	Delete(id uint) error

	// List retrieves users with pagination, optionally filtered by a
	// case-insensitive match against email or username.
	List(search string, offset, limit int) ([]models.User, int64, error)
}
