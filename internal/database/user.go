package database

import (
	"github.com/google/uuid"

	"github.com/mahendra/quickchat/internal/models"
)

func (d *Database) CreateUser(user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	return d.db.Create(user).Error
}

func (d *Database) UpdateUser(user *models.User) error {
	return d.db.Save(user).Error
}

func (d *Database) GetUser(id uuid.UUID) (*models.User, error) {
	user := models.User{}
	if err := d.db.First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (d *Database) FindUserByEmail(email string) (*models.User, error) {
	user := models.User{}
	if err := d.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// ListOtherUsers returns every user except the caller, for the sidebar.
func (d *Database) ListOtherUsers(excludeID uuid.UUID) ([]models.User, error) {
	var users []models.User
	err := d.db.
		Where("id != ?", excludeID).
		Order("created_at ASC").
		Find(&users).Error
	return users, err
}
