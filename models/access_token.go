package models

import "gorm.io/gorm"

type AccessToken struct {
	Generic

	RoleID uint `gorm:"index;not null" json:"role_id"`
	Role   Role `json:"role"`

	Token string `gorm:"uniqueIndex" json:"token"`
}

func CreateAccessToken(db *gorm.DB, roleID uint, token string) (*AccessToken, error) {
	accessToken := &AccessToken{
		RoleID: roleID,
		Token:  token,
	}

	if err := db.Create(accessToken).Error; err != nil {
		return nil, err
	}

	return accessToken, nil
}
