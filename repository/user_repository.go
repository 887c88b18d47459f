package repository

import (
	"github.com/mukhammadalimk/natours/entity"
	"github.com/mukhammadalimk/natours/utils"

	"gorm.io/gorm"
)

var UserFields = utils.FieldMap{
	"name":      "name",
	"email":     "email",
	"role":      "role",
	"createdAt": "created_at",
}

// UserRepository only talks to the users table. Inactive users are never returned.
type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) active() *gorm.DB {
	return r.DB.Where("active = ?", true)
}

// FindByEmail looks up an active user by (lower-cased) email.
func (r *UserRepository) FindByEmail(email string) (*entity.User, error) {
	var user entity.User
	if err := r.active().Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) CountByEmail(email string) (int64, error) {
	var count int64
	if err := r.DB.Model(&entity.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *UserRepository) Create(user *entity.User) error {
	return r.DB.Create(user).Error
}

// Update applies column updates to an active user.
func (r *UserRepository) Update(userID uint, updates map[string]any) error {
	res := r.DB.Model(&entity.User{}).Where("id = ? AND active = ?", userID, true).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *UserRepository) FindByID(id uint) (*entity.User, error) {
	var user entity.User
	if err := r.active().First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByIDs returns the active users among ids, in no particular order.
func (r *UserRepository) FindByIDs(ids []uint) ([]entity.User, error) {
	var users []entity.User
	if len(ids) == 0 {
		return users, nil
	}
	err := r.active().Where("id IN ?", ids).Find(&users).Error
	return users, err
}

func (r *UserRepository) List(f *utils.APIFeatures) ([]entity.User, error) {
	var users []entity.User
	err := f.Apply(r.active().Model(&entity.User{})).Find(&users).Error
	return users, err
}

func (r *UserRepository) Deactivate(userID uint) error {
	return r.Update(userID, map[string]any{"active": false})
}

// Delete removes the user and everything that references it.
func (r *UserRepository) Delete(userID uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&entity.Review{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&entity.Booking{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM tour_guides WHERE user_id = ?", userID).Error; err != nil {
			return err
		}
		res := tx.Delete(&entity.User{}, userID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
