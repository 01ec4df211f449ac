package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/octobees/wa-validator/internal/database"
	"github.com/octobees/wa-validator/internal/dto"
	"github.com/octobees/wa-validator/internal/repository"
	"github.com/octobees/wa-validator/internal/service"
)

// openUserService connects to the database and returns the user service with
// a cleanup func. Tests replace it.
var openUserService = func(ctx context.Context) (*service.UserService, func(), error) {
	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := database.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return service.NewUserService(repository.NewPGXUsersRepository(pool)), pool.Close, nil
}

var (
	userEmail    string
	userName     string
	userPassword string
	userRole     string
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage dashboard operators",
}

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an operator account",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		users, closeFn, err := openUserService(ctx)
		if err != nil {
			return err
		}
		defer closeFn()

		created, err := users.CreateUser(ctx, dto.CreateUserRequest{
			Email:    userEmail,
			Name:     userName,
			Password: userPassword,
			Role:     userRole,
		})
		if err != nil {
			var weak service.PasswordError
			if errors.As(err, &weak) {
				for _, problem := range weak.Problems {
					fmt.Fprintf(cmd.ErrOrStderr(), "  - %s\n", problem)
				}
			}
			return eris.Wrap(err, "user create")
		}

		fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s) with role %s\n", created.Email, created.ID, created.Role)
		return nil
	},
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List operator accounts",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		users, closeFn, err := openUserService(ctx)
		if err != nil {
			return err
		}
		defer closeFn()

		records, err := users.ListUsers(ctx)
		if err != nil {
			return eris.Wrap(err, "user list")
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tEMAIL\tNAME\tROLE")
		for _, u := range records {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", u.ID, u.Email, u.Name, u.Role)
		}
		return w.Flush()
	},
}

var userDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an operator account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		users, closeFn, err := openUserService(ctx)
		if err != nil {
			return err
		}
		defer closeFn()

		if err := users.DeleteUser(ctx, args[0]); err != nil {
			return eris.Wrapf(err, "user delete %s", args[0])
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
		return nil
	},
}

func init() {
	userCreateCmd.Flags().StringVar(&userEmail, "email", "", "operator email")
	userCreateCmd.Flags().StringVar(&userName, "name", "", "display name")
	userCreateCmd.Flags().StringVar(&userPassword, "password", "", "initial password")
	userCreateCmd.Flags().StringVar(&userRole, "role", "user", "role (admin or user)")
	_ = userCreateCmd.MarkFlagRequired("email")
	_ = userCreateCmd.MarkFlagRequired("password")

	userCmd.AddCommand(userCreateCmd, userListCmd, userDeleteCmd)
	rootCmd.AddCommand(userCmd)
}
