package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/inklog/internal/config"
	"github.com/inklog/internal/db"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// 初始化或重置管理员账号。服务启动时 EnsureUser 只会创建不存在的账号，
// 忘记密码时用本工具带 -reset 重设。
func main() {
	username := flag.String("username", "admin", "admin username")
	password := flag.String("password", "", "admin password (required)")
	reset := flag.Bool("reset", false, "overwrite the password if the user already exists")
	flag.Parse()

	if *password == "" {
		log.Fatal("a password is required, pass -password")
	}

	_ = godotenv.Load()
	cfg := config.Load()

	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	var existing db.User
	err := db.DB.Where("username = ?", *username).First(&existing).Error
	if err == nil && !*reset {
		fmt.Printf("user %q already exists, pass -reset to overwrite the password\n", *username)
		return
	}

	hashed, hashErr := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if hashErr != nil {
		log.Fatalf("failed to hash password: %v", hashErr)
	}

	if err == nil {
		existing.Password = string(hashed)
		if err := db.DB.Save(&existing).Error; err != nil {
			log.Fatalf("failed to reset password: %v", err)
		}
		fmt.Printf("password for %q has been reset\n", *username)
		return
	}

	user := db.User{Username: *username, Password: string(hashed)}
	if err := db.DB.Create(&user).Error; err != nil {
		log.Fatalf("failed to create user: %v", err)
	}
	fmt.Printf("admin user %q created\n", *username)
}
