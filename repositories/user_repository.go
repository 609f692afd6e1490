// File: /repositories/user_repository.go
package repositories

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"wavelink-api/models"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByID retrieves a user by id
func (r *UserRepository) FindByID(userID string) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail retrieves a user by email address
func (r *UserRepository) FindByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Create inserts a new user record
func (r *UserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// UpdateFields applies a partial update to a user record
func (r *UserRepository) UpdateFields(userID string, fields map[string]interface{}) error {
	return r.db.Model(&models.User{}).Where("id = ?", userID).Updates(fields).Error
}

// UpdateLocked applies fn to the user's record under a row lock and
// persists the result in the same transaction. Guards checked inside fn
// therefore see current state: each single-record mutation is an atomic
// compare-and-set on set membership. The caller is responsible for the
// fact that a sequence of UpdateLocked calls on two records is NOT
// atomic as a whole.
func (r *UserRepository) UpdateLocked(userID string, fn func(*models.User) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&user, "id = ?", userID).Error; err != nil {
			return err
		}
		if err := fn(&user); err != nil {
			return err
		}
		return tx.Save(&user).Error
	})
}

// FindAllByIDs retrieves users for the given ids; missing ids are skipped
func (r *UserRepository) FindAllByIDs(ids []string) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	var users []models.User
	if err := r.db.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// ListOthers retrieves every user except viewerID, for the sidebar
func (r *UserRepository) ListOthers(viewerID string) ([]models.User, error) {
	var users []models.User
	if err := r.db.Where("id <> ?", viewerID).Order("full_name ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Search finds users whose name or email contains query,
// case-insensitive, excluding the viewer and their existing friends.
func (r *UserRepository) Search(viewerID string, query string, excludeIDs []string) ([]models.User, error) {
	pattern := "%" + strings.ToLower(query) + "%"

	q := r.db.Where("id <> ?", viewerID).
		Where("LOWER(full_name) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern)
	if len(excludeIDs) > 0 {
		q = q.Where("id NOT IN ?", excludeIDs)
	}

	var users []models.User
	if err := q.Order("full_name ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
