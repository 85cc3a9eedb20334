package mapper

import (
	"github.com/rvemuri2/helix-backend/internal/entity"
	"github.com/rvemuri2/helix-backend/internal/model"
)

type UserMapper struct{}

func NewUserMapper() *UserMapper {
	return &UserMapper{}
}

func (m *UserMapper) ToEntity(u *model.User) *entity.User {
	if u == nil {
		return nil
	}
	return &entity.User{
		Id:        u.Id,
		CreatedAt: u.CreatedAt,
	}
}

func (m *UserMapper) ToModel(u *entity.User) *model.User {
	if u == nil {
		return nil
	}
	return &model.User{
		Id:        u.Id,
		CreatedAt: u.CreatedAt,
	}
}
