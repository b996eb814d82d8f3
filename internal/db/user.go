package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ErrInvalidCredentials 表示用户名不存在或密码不匹配，两种情况不做区分
var ErrInvalidCredentials = errors.New("invalid credentials")

// User 是唯一的登录账号，密码只保存 bcrypt 哈希
type User struct {
	gorm.Model
	Username string `gorm:"unique;not null"`
	Password string `gorm:"not null"`
}

// EnsureUser 在账号不存在时创建它，已存在时不改动密码。
// 用户名或密码为空时什么都不做，返回值表示本次是否新建了账号。
func EnsureUser(ctx context.Context, gdb *gorm.DB, username, password string) (bool, error) {
	name := strings.TrimSpace(username)
	secret := strings.TrimSpace(password)
	if name == "" || secret == "" {
		return false, nil
	}

	var existing User
	err := gdb.WithContext(ctx).Where("username = ?", name).First(&existing).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("ensure user %s: %w", name, err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}
	if err := gdb.WithContext(ctx).Create(&User{Username: name, Password: string(hashed)}).Error; err != nil {
		return false, fmt.Errorf("ensure user %s: %w", name, err)
	}
	return true, nil
}

// Authenticate 校验用户名和密码，失败统一返回 ErrInvalidCredentials
func Authenticate(ctx context.Context, gdb *gorm.DB, username, password string) (*User, error) {
	var user User
	err := gdb.WithContext(ctx).Where("username = ?", strings.TrimSpace(username)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}
