package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/frahmantamala/store-management/internal/auth"
	"github.com/frahmantamala/store-management/internal/user"
	"github.com/spf13/cobra"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage user accounts",
}

var (
	userPassword string
	userRole     string
)

func init() {
	createCmd := &cobra.Command{
		Use:   "create <email>",
		Short: "Create a user",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, app *App, args []string) error {
			resp, err := app.Users.CreateUser(ctx, user.CreateUserDTO{Email: args[0], Password: userPassword, Role: userRole})
			if err != nil {
				return err
			}
			return outcome(resp.Success, resp.Message)
		}),
	}
	createCmd.Flags().StringVarP(&userPassword, "password", "p", "", "password")
	createCmd.Flags().StringVar(&userRole, "role", string(user.RoleUser), "role (USER or ADMIN)")

	userCmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List every user",
			RunE: withApp(func(ctx context.Context, app *App, _ []string) error {
				users, err := app.Users.GetAllUsers(ctx)
				if err != nil {
					return err
				}
				return printJSON(user.ToResponses(users))
			}),
		},
		&cobra.Command{
			Use:   "search <text>",
			Short: "Find users whose email contains text",
			Args:  cobra.ExactArgs(1),
			RunE: withApp(func(ctx context.Context, app *App, args []string) error {
				users, err := app.Users.SearchUsers(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSON(user.ToResponses(users))
			}),
		},
		createCmd,
		&cobra.Command{
			Use:   "verify <email>",
			Short: "Mark a user as verified",
			Args:  cobra.ExactArgs(1),
			RunE: withUser(func(ctx context.Context, app *App, u *user.User) (bool, string, error) {
				resp, err := app.Users.VerifyUser(ctx, u)
				return resp.Success, resp.Message, err
			}),
		},
		&cobra.Command{
			Use:   "delete <email>",
			Short: "Delete a user and its store relations",
			Args:  cobra.ExactArgs(1),
			RunE: withUser(func(ctx context.Context, app *App, u *user.User) (bool, string, error) {
				resp, err := app.Users.DeleteUser(ctx, u)
				return resp.Success, resp.Message, err
			}),
		},
		&cobra.Command{
			Use:   "login <email> <password>",
			Short: "Check credentials and print an access token",
			Args:  cobra.ExactArgs(2),
			RunE: withApp(func(ctx context.Context, app *App, args []string) error {
				resp, err := app.Auth.Login(ctx, auth.LoginDTO{Email: args[0], Password: args[1]})
				if err != nil {
					return err
				}
				if !resp.Success {
					return outcome(false, resp.Message)
				}
				tokens, err := app.Auth.IssueToken(resp.Session)
				if err != nil {
					return err
				}
				return printJSON(tokens)
			}),
		},
	)
}

// withApp builds the App for a single command and always releases it.
func withApp(fn func(ctx context.Context, app *App, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		app := mustApp(ctx)
		defer app.Close()
		if err := app.Repo.EnsureSchema(ctx); err != nil {
			return err
		}
		return fn(ctx, app, args)
	}
}

func withUser(fn func(ctx context.Context, app *App, u *user.User) (bool, string, error)) func(*cobra.Command, []string) error {
	return withApp(func(ctx context.Context, app *App, args []string) error {
		u, err := app.Users.GetUser(ctx, args[0])
		if err != nil {
			return err
		}
		if u == nil {
			return outcome(false, user.MsgUserNotFound)
		}
		success, message, err := fn(ctx, app, u)
		if err != nil {
			return err
		}
		return outcome(success, message)
	})
}

func outcome(success bool, message string) error {
	if !success {
		return fmt.Errorf("%s", message)
	}
	fmt.Println(message)
	return nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
