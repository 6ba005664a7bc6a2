package main

import (
	"fmt"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"eventsite/internal/domains"
	"eventsite/internal/service"
	"eventsite/internal/storage/providers"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "User management commands",
}

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new user",
	RunE:  runUserCreate,
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all users",
	RunE:  runUserList,
}

var (
	userEmail    string
	userPassword string
	userName     string
	userRole     string
)

func init() {
	userCreateCmd.Flags().StringVar(&userEmail, "email", "", "User email")
	userCreateCmd.Flags().StringVar(&userPassword, "password", "", "User password (will prompt if not provided)")
	userCreateCmd.Flags().StringVar(&userName, "name", "", "User name")
	userCreateCmd.Flags().StringVar(&userRole, "role", string(domains.RoleEditor), "admin or editor")
	_ = userCreateCmd.MarkFlagRequired("email")

	userCmd.AddCommand(userCreateCmd)
	userCmd.AddCommand(userListCmd)
}

func promptPassword() (string, error) {
	fmt.Print("Enter password: ")
	pw, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	fmt.Println()

	fmt.Print("Confirm password: ")
	confirm, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	fmt.Println()

	if string(pw) != string(confirm) {
		return "", fmt.Errorf("passwords do not match")
	}
	return string(pw), nil
}

func runUserCreate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, db, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	password := userPassword
	if password == "" {
		if password, err = promptPassword(); err != nil {
			return err
		}
	}

	auth := service.NewAuthService(providers.NewAuthProvider(db), cfg.JWT.Secret, cfg.JWT.TTL)
	user, err := auth.CreateUser(ctx, domains.UserCreate{Email: userEmail, Password: password, Name: userName}, domains.Role(userRole))
	if err != nil {
		return err
	}

	fmt.Printf("User %s created with role %s (id %s)\n", user.Email, user.Role, user.ID)
	return nil
}

func runUserList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	_, db, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	users, err := service.NewUserService(providers.NewUserProvider(db)).ListUsers(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("%-36s  %-30s  %-20s  %-6s  %s\n", "ID", "Email", "Name", "Role", "Created")
	fmt.Println(strings.Repeat("-", 110))
	for _, u := range users {
		fmt.Printf("%-36s  %-30s  %-20s  %-6s  %s\n", u.ID, u.Email, u.Name, u.Role, u.CreatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}
