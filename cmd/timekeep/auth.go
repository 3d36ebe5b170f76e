package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"timekeep/internal/api"
	"timekeep/internal/utils"
)

func newLoginCmd(app **App) *cobra.Command {
	return &cobra.Command{
		Use:   "login [email]",
		Short: "Log in to a timekeep server",
		Long: `Log in and adopt the account's cloud data. Guest edits made in this
session are not carried over; register a new account to keep them.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			email := ""
			if len(args) > 0 {
				email = args[0]
			} else {
				email = utils.PromptLine("Email")
			}
			password, err := utils.PromptPassword("Password")
			if err != nil {
				return err
			}

			if err := (*app).engine.Login(cmd.Context(), email, password); err != nil {
				var apiErr *api.APIError
				if errors.As(err, &apiErr) {
					return utils.ErrAuthenticationFailed(apiErr.Message)
				}
				return utils.ErrServerUnreachable((*app).cfg.ServerURL, err.Error())
			}

			auth := (*app).engine.Auth()
			fmt.Printf("Logged in as %s <%s>\n", auth.User.Name, auth.User.Email)
			return nil
		},
	}
}

func newRegisterCmd(app **App) *cobra.Command {
	return &cobra.Command{
		Use:   "register",
		Short: "Create an account, seeding it with your local data",
		RunE: func(cmd *cobra.Command, args []string) error {
			name := utils.PromptLine("Name")
			email := utils.PromptLine("Email")
			password, err := utils.PromptPassword("Password")
			if err != nil {
				return err
			}
			if name == "" || email == "" || password == "" {
				return fmt.Errorf("name, email and password are required")
			}

			if err := (*app).engine.Register(cmd.Context(), name, email, password); err != nil {
				return err
			}

			auth := (*app).engine.Auth()
			fmt.Printf("Registered %s <%s>; local data uploaded\n", auth.User.Name, auth.User.Email)
			return nil
		},
	}
}

func newLogoutCmd(app **App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Return to guest mode",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !(*app).engine.Auth().IsAuthenticated() {
				fmt.Println("Already in guest mode")
				return nil
			}
			(*app).engine.Logout()
			fmt.Println("Logged out; back to guest data")
			return nil
		},
	}
}

func newAccountCmd(app **App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage the signed-in account",
	}

	nameCmd := &cobra.Command{
		Use:   "name <new-name>",
		Short: "Change the display name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := (*app).engine.UpdateName(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Println("Name updated")
			return nil
		},
	}

	passwordCmd := &cobra.Command{
		Use:   "password",
		Short: "Change the password",
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := utils.PromptPassword("New password")
			if err != nil {
				return err
			}
			if password == "" {
				return fmt.Errorf("password cannot be empty")
			}
			if err := (*app).engine.UpdatePassword(cmd.Context(), password); err != nil {
				return err
			}
			fmt.Println("Password updated")
			return nil
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete",
		Short: "Permanently delete the account and its cloud data",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !utils.PromptYesNo("Permanently delete the account and all cloud data?") {
				return nil
			}
			if err := (*app).engine.DeleteAccount(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("Account deleted; back to guest data")
			return nil
		},
	}

	cmd.AddCommand(nameCmd, passwordCmd, deleteCmd)
	return cmd
}

func newSyncCmd(app **App) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Push local data to the server now",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !(*app).engine.Auth().IsAuthenticated() {
				return utils.ErrNotLoggedIn()
			}
			(*app).engine.Commit()
			(*app).engine.Flush(cmd.Context())
			fmt.Println("Synced")
			return nil
		},
	}
}
