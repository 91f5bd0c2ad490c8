package cmd

import (
	"context"
	"fmt"

	"github.com/frahmantamala/store-management/internal/inventory"
	"github.com/frahmantamala/store-management/internal/store"
	"github.com/frahmantamala/store-management/internal/user"
	"github.com/spf13/cobra"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage stores, their employees and inventory",
}

var (
	itemPrice    int64
	itemQuantity int64
)

func init() {
	addItemCmd := &cobra.Command{
		Use:   "add-item <store> <item>",
		Short: "Add an item to a store's inventory",
		Args:  cobra.ExactArgs(2),
		RunE: withStore(func(ctx context.Context, app *App, st *store.Store, args []string) (store.Response, error) {
			return app.Stores.CreateInventoryItem(ctx, st, args[1], itemPrice, itemQuantity)
		}),
	}
	addItemCmd.Flags().Int64Var(&itemPrice, "price", 0, "unit price")
	addItemCmd.Flags().Int64Var(&itemQuantity, "quantity", 0, "quantity in stock")

	updateItemCmd := &cobra.Command{
		Use:   "update-item <store> <item>",
		Short: "Set the quantity of an inventory item",
		Args:  cobra.ExactArgs(2),
		RunE: withStore(func(ctx context.Context, app *App, st *store.Store, args []string) (store.Response, error) {
			return app.Stores.UpdateInventoryItem(ctx, st, &inventory.Item{Name: args[1]}, itemQuantity)
		}),
	}
	updateItemCmd.Flags().Int64Var(&itemQuantity, "quantity", 0, "quantity in stock")

	storeCmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List every store",
			RunE: withApp(func(ctx context.Context, app *App, _ []string) error {
				stores, err := app.Stores.GetAllStores(ctx)
				if err != nil {
					return err
				}
				return printJSON(store.ToResponses(stores))
			}),
		},
		&cobra.Command{
			Use:   "search <text>",
			Short: "Find stores whose name contains text",
			Args:  cobra.ExactArgs(1),
			RunE: withApp(func(ctx context.Context, app *App, args []string) error {
				stores, err := app.Stores.SearchStores(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSON(store.ToResponses(stores))
			}),
		},
		&cobra.Command{
			Use:   "create <name>",
			Short: "Create a store with an empty inventory",
			Args:  cobra.ExactArgs(1),
			RunE: withApp(func(ctx context.Context, app *App, args []string) error {
				resp, err := app.Stores.CreateStore(ctx, args[0])
				if err != nil {
					return err
				}
				return outcome(resp.Success, resp.Message)
			}),
		},
		&cobra.Command{
			Use:   "delete <name>",
			Short: "Delete a store, its relations and its inventory",
			Args:  cobra.ExactArgs(1),
			RunE: withStore(func(ctx context.Context, app *App, st *store.Store, _ []string) (store.Response, error) {
				return app.Stores.DeleteStore(ctx, st)
			}),
		},
		&cobra.Command{
			Use:   "employees <store>",
			Short: "List a store's employees",
			Args:  cobra.ExactArgs(1),
			RunE: withApp(func(ctx context.Context, app *App, args []string) error {
				st, err := findStore(ctx, app, args[0])
				if err != nil {
					return err
				}
				employees, err := app.Stores.GetEmployees(ctx, st)
				if err != nil {
					return err
				}
				return printJSON(user.ToResponses(employees))
			}),
		},
		&cobra.Command{
			Use:   "add-employee <store> <email>",
			Short: "Employ a user at a store",
			Args:  cobra.ExactArgs(2),
			RunE: withStore(func(ctx context.Context, app *App, st *store.Store, args []string) (store.Response, error) {
				return app.Stores.AddEmployee(ctx, st, args[1])
			}),
		},
		&cobra.Command{
			Use:   "remove-employee <store> <email>",
			Short: "Remove a user from a store's employees",
			Args:  cobra.ExactArgs(2),
			RunE: withStore(func(ctx context.Context, app *App, st *store.Store, args []string) (store.Response, error) {
				return app.Stores.RemoveEmployee(ctx, st, &user.User{Email: args[1]})
			}),
		},
		&cobra.Command{
			Use:   "inventory <store>",
			Short: "Show a store's inventory",
			Args:  cobra.ExactArgs(1),
			RunE: withApp(func(ctx context.Context, app *App, args []string) error {
				st, err := findStore(ctx, app, args[0])
				if err != nil {
					return err
				}
				inv, err := app.Stores.GetInventory(ctx, st)
				if err != nil {
					return err
				}
				if inv == nil {
					return outcome(false, store.MsgInventoryNotFound)
				}
				return printJSON(inv.ToResponse())
			}),
		},
		addItemCmd,
		updateItemCmd,
		&cobra.Command{
			Use:   "remove-item <store> <item>",
			Short: "Remove an item from a store's inventory",
			Args:  cobra.ExactArgs(2),
			RunE: withStore(func(ctx context.Context, app *App, st *store.Store, args []string) (store.Response, error) {
				return app.Stores.RemoveInventoryItem(ctx, st, &inventory.Item{Name: args[1]})
			}),
		},
		&cobra.Command{
			Use:   "grant <store> <email>",
			Short: "Let a user manage a store",
			Args:  cobra.ExactArgs(2),
			RunE: withStore(func(ctx context.Context, app *App, st *store.Store, args []string) (store.Response, error) {
				return permissionChange(ctx, app, st, args[1], app.Stores.AddPermission)
			}),
		},
		&cobra.Command{
			Use:   "revoke <store> <email>",
			Short: "Take back a user's management permission",
			Args:  cobra.ExactArgs(2),
			RunE: withStore(func(ctx context.Context, app *App, st *store.Store, args []string) (store.Response, error) {
				return permissionChange(ctx, app, st, args[1], app.Stores.RemovePermission)
			}),
		},
	)
}

func findStore(ctx context.Context, app *App, name string) (*store.Store, error) {
	st, err := app.Stores.GetStore(ctx, name)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, fmt.Errorf("%s", store.MsgStoreNotFound)
	}
	return st, nil
}

func withStore(fn func(ctx context.Context, app *App, st *store.Store, args []string) (store.Response, error)) func(*cobra.Command, []string) error {
	return withApp(func(ctx context.Context, app *App, args []string) error {
		st, err := findStore(ctx, app, args[0])
		if err != nil {
			return err
		}
		resp, err := fn(ctx, app, st, args)
		if err != nil {
			return err
		}
		return outcome(resp.Success, resp.Message)
	})
}

func permissionChange(ctx context.Context, app *App, st *store.Store, email string, change func(context.Context, *store.Store, *user.User) (store.Response, error)) (store.Response, error) {
	u, err := app.Users.GetUser(ctx, email)
	if err != nil {
		return store.Response{}, err
	}
	if u == nil {
		return store.Response{Message: store.MsgUserNotFound}, nil
	}
	return change(ctx, st, u)
}
