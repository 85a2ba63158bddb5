package main

import (
	"context"
	"fmt"
	"os"

	"github.com/cmlabs-hris/intern-attendance/internal/config"
	"github.com/cmlabs-hris/intern-attendance/internal/domain/user"
	appHTTP "github.com/cmlabs-hris/intern-attendance/internal/handler/http"
	"github.com/cmlabs-hris/intern-attendance/internal/repository"
	userService "github.com/cmlabs-hris/intern-attendance/internal/service/user"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// withUsers opens the configured store for the duration of fn.
func withUsers(ctx context.Context, fn func(svc user.UserService) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	store, err := repository.Open(ctx, cfg.Database, cfg.DatabaseURL())
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	logger := appHTTP.NewLogger(os.Stderr, cfg.App)
	return fn(userService.NewUserService(store.Users, logger, cfg.Attendance.DefaultWorkHours))
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "admin",
		Short:        "Administrative tasks for the intern attendance service",
		SilenceUsage: true,
	}
	root.AddCommand(newCreateAdminCmd(), newResetPasswordCmd())
	return root
}

func newCreateAdminCmd() *cobra.Command {
	var req user.CreateUserRequest

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an administrator account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if req.Password == "" {
				req.Password = os.Getenv("ADMIN_PASSWORD")
			}
			req.Role = user.RoleAdmin

			return withUsers(cmd.Context(), func(svc user.UserService) error {
				created, err := svc.Create(cmd.Context(), req)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created admin %s (%s)\n", created.Username, created.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&req.Username, "username", "admin", "Login name")
	cmd.Flags().StringVar(&req.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&req.Password, "password", "", "Password (defaults to $ADMIN_PASSWORD)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newResetPasswordCmd() *cobra.Command {
	var req user.ResetPasswordRequest

	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Set a new password for any user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if req.Password == "" {
				req.Password = os.Getenv("ADMIN_PASSWORD")
			}

			return withUsers(cmd.Context(), func(svc user.UserService) error {
				if err := svc.ResetPassword(cmd.Context(), req); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "password updated for %s\n", req.Username)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&req.Username, "username", "", "Login name")
	cmd.Flags().StringVar(&req.Password, "password", "", "New password (defaults to $ADMIN_PASSWORD)")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}
