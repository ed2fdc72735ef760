package main

import (
	"flag"
	"fmt"
	"os"

	"campusfeedback/backend/internal/auth"
	"campusfeedback/backend/internal/config"
	"campusfeedback/backend/internal/domain"
	sqlstore "campusfeedback/backend/internal/storage/sql"
)

// create-admin 向数据库写入一个管理账号。
//
// 数据库连接从 CAMPUSFEEDBACK_DATABASE_* 环境变量读取，
// 内存存储模式下无法使用本工具（进程退出即丢失）。
func main() {
	email := flag.String("email", "", "管理员邮箱")
	username := flag.String("username", "", "登录用户名")
	password := flag.String("password", "", "初始密码（至少 8 字符）")
	roleStr := flag.String("role", "admin", "角色: admin 或 super")
	department := flag.String("department", "", "所属院系 ID，超级管理员留空")
	flag.Parse()

	if *email == "" || *username == "" || *password == "" {
		fmt.Println("用法:")
		fmt.Println("  create-admin -email=admin@example.edu -username=admin -password=... [-role=super] [-department=...]")
		os.Exit(1)
	}

	var role domain.UserRole
	switch *roleStr {
	case "admin":
		role = domain.RoleAdmin
	case "super":
		role = domain.RoleSuper
	default:
		fmt.Printf("错误: 未知角色 '%s'（支持 admin、super）\n", *roleStr)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("错误: 加载配置失败: %v\n", err)
		os.Exit(1)
	}

	if cfg.Database.Type == "" || cfg.Database.DSN == "" {
		fmt.Println("错误: 未配置数据库，请设置 CAMPUSFEEDBACK_DATABASE_TYPE 和 CAMPUSFEEDBACK_DATABASE_DSN")
		os.Exit(1)
	}

	store, err := sqlstore.NewStore(
		cfg.Database.Type,
		cfg.Database.DSN,
		cfg.Database.MaxOpenConns,
		cfg.Database.MaxIdleConns,
		cfg.Database.ConnMaxLifetime,
	)
	if err != nil {
		fmt.Printf("错误: 连接数据库失败: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	var departmentID *string
	if *department != "" {
		departmentID = department
	}

	authService := auth.NewService(store)
	user, err := authService.CreateAdmin(auth.CreateAdminInput{
		Email:        *email,
		Username:     *username,
		Password:     *password,
		Role:         role,
		DepartmentID: departmentID,
	})
	if err != nil {
		fmt.Printf("错误: 创建管理员失败: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("✓ 管理员账号创建成功")
	fmt.Printf("  ID:     %s\n", user.ID)
	fmt.Printf("  邮箱:   %s\n", user.Email)
	fmt.Printf("  用户名: %s\n", user.Username)
	fmt.Printf("  角色:   %s\n", user.Role)
}
