package models

import (
	"github.com/go-playground/validator/v10"
)

const (
	RoleStudent  = "student"
	RoleTeacher  = "teacher"
	RoleAdminEdu = "admin_edu"
	RoleSysadmin = "sysadmin"
	RoleGuest    = "guest"
)

const (
	UserActive   = "active"
	UserInactive = "inactive"
	UserLocked   = "locked"
)

type User struct {
	ID           string `json:"id" validate:"required"`
	Username     string `json:"username" validate:"required,min=3,max=32"`
	PasswordHash string `json:"password_hash"`
	Salt         string `json:"salt"`
	Role         string `json:"role" validate:"required,oneof=student teacher admin_edu sysadmin guest"`
	Status       string `json:"status" validate:"required,oneof=active inactive locked"`
	FullName     string `json:"full_name"`
	Email        string `json:"email" validate:"omitempty,email"`
	ClassID      string `json:"class_id,omitempty"`
	IsFirstLogin bool   `json:"is_first_login"`
}

type Class struct {
	ID   string `json:"id" validate:"required"`
	Name string `json:"name" validate:"required"`
}

func (u *User) Validate() error {
	validate := validator.New()
	return validate.Struct(u)
}

func (c *Class) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}
