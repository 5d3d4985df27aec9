package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/eleven-am/inventory/internal/inventory"
)

var (
	itemDescription string
	itemContainer   bool
	itemParent      string
	itemTags        map[string]string
)

func newItemCommand() *cobra.Command {
	itemCmd := &cobra.Command{
		Use:   "item",
		Short: "Create, inspect and update items",
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new item",
		Example: `  inventory item create --description "Cordless drill" --tag brand=makita
  inventory item create --description "Garage shelf" --container`,
		Args: cobra.NoArgs,
		RunE: runItemCreate,
	}
	createCmd.Flags().StringVarP(&itemDescription, "description", "d", "", "item description")
	createCmd.Flags().BoolVar(&itemContainer, "container", false, "item can hold other items")
	createCmd.Flags().StringVar(&itemParent, "parent", "", "id of the containing item")
	createCmd.Flags().StringToStringVarP(&itemTags, "tag", "t", nil, "tag as key=value (repeatable)")
	_ = createCmd.MarkFlagRequired("description")

	getCmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one item with its tags",
		Args:  cobra.ExactArgs(1),
		RunE: withStore(func(ctx context.Context, cmd *cobra.Command, store *inventory.Store, args []string) (interface{}, error) {
			return store.Get(ctx, args[0])
		}),
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List every item",
		Args:  cobra.NoArgs,
		RunE: withStore(func(ctx context.Context, cmd *cobra.Command, store *inventory.Store, args []string) (interface{}, error) {
			return store.GetAll(ctx)
		}),
	}

	childrenCmd := &cobra.Command{
		Use:   "children <container-id>",
		Short: "List items inside a container",
		Args:  cobra.ExactArgs(1),
		RunE: withStore(func(ctx context.Context, cmd *cobra.Command, store *inventory.Store, args []string) (interface{}, error) {
			return store.GetBy(ctx, inventory.ItemsInContainer{ContainerID: args[0]})
		}),
	}

	taggedCmd := &cobra.Command{
		Use:   "tagged <key>",
		Short: "List items carrying a tag key",
		Args:  cobra.ExactArgs(1),
		RunE: withStore(func(ctx context.Context, cmd *cobra.Command, store *inventory.Store, args []string) (interface{}, error) {
			return store.GetBy(ctx, inventory.ItemsWithTag{Key: args[0]})
		}),
	}

	checkedOutCmd := &cobra.Command{
		Use:   "checked-out",
		Short: "List items that are checked out",
		Args:  cobra.NoArgs,
		RunE: withStore(func(ctx context.Context, cmd *cobra.Command, store *inventory.Store, args []string) (interface{}, error) {
			return store.GetBy(ctx, inventory.ItemsCheckedOut{})
		}),
	}

	overdueCmd := &cobra.Command{
		Use:   "overdue <date>",
		Short: "List items checked out before a date (YYYY-MM-DD)",
		Args:  cobra.ExactArgs(1),
		RunE:  runItemOverdue,
	}

	containersCmd := &cobra.Command{
		Use:   "containers",
		Short: "List items that can hold other items",
		Args:  cobra.NoArgs,
		RunE: withStore(func(ctx context.Context, cmd *cobra.Command, store *inventory.Store, args []string) (interface{}, error) {
			return store.GetBy(ctx, inventory.ItemsContainers{})
		}),
	}

	activeCmd := &cobra.Command{
		Use:   "active",
		Short: "List items that have not been destroyed",
		Args:  cobra.NoArgs,
		RunE: withStore(func(ctx context.Context, cmd *cobra.Command, store *inventory.Store, args []string) (interface{}, error) {
			return store.GetBy(ctx, inventory.ItemsNotDestroyed{})
		}),
	}

	searchCmd := &cobra.Command{
		Use:   "search <text>",
		Short: "List items whose description contains text",
		Args:  cobra.ExactArgs(1),
		RunE: withStore(func(ctx context.Context, cmd *cobra.Command, store *inventory.Store, args []string) (interface{}, error) {
			return store.GetBy(ctx, inventory.ItemsDescribedAs{Text: args[0]})
		}),
	}

	tagCmd := &cobra.Command{
		Use:   "tag <id> <key> <value>",
		Short: "Set a tag on an item",
		Args:  cobra.ExactArgs(3),
		RunE: withStore(func(ctx context.Context, cmd *cobra.Command, store *inventory.Store, args []string) (interface{}, error) {
			return store.SetTag(ctx, args[0], args[1], args[2])
		}),
	}

	checkoutCmd := &cobra.Command{
		Use:   "checkout <id>",
		Short: "Mark an item as checked out now",
		Args:  cobra.ExactArgs(1),
		RunE: withStore(func(ctx context.Context, cmd *cobra.Command, store *inventory.Store, args []string) (interface{}, error) {
			return store.CheckOut(ctx, args[0], time.Now())
		}),
	}

	checkinCmd := &cobra.Command{
		Use:   "checkin <id>",
		Short: "Return a checked-out item",
		Args:  cobra.ExactArgs(1),
		RunE: withStore(func(ctx context.Context, cmd *cobra.Command, store *inventory.Store, args []string) (interface{}, error) {
			return store.CheckIn(ctx, args[0])
		}),
	}

	destroyCmd := &cobra.Command{
		Use:   "destroy <id>",
		Short: "Mark an item as destroyed now",
		Args:  cobra.ExactArgs(1),
		RunE: withStore(func(ctx context.Context, cmd *cobra.Command, store *inventory.Store, args []string) (interface{}, error) {
			return store.Destroy(ctx, args[0], time.Now())
		}),
	}

	itemCmd.AddCommand(createCmd, getCmd, listCmd, childrenCmd, taggedCmd, checkedOutCmd,
		overdueCmd, containersCmd, activeCmd, searchCmd, tagCmd, checkoutCmd, checkinCmd, destroyCmd)
	return itemCmd
}

func runItemCreate(cmd *cobra.Command, args []string) error {
	return withStore(func(ctx context.Context, cmd *cobra.Command, store *inventory.Store, args []string) (interface{}, error) {
		var parent *string
		if itemParent != "" {
			p := itemParent
			parent = &p
		}
		return store.Create(ctx, itemDescription, itemContainer, parent, itemTags)
	})(cmd, args)
}

func runItemOverdue(cmd *cobra.Command, args []string) error {
	before, err := time.Parse(time.DateOnly, args[0])
	if err != nil {
		return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", args[0])
	}
	return withStore(func(ctx context.Context, cmd *cobra.Command, store *inventory.Store, args []string) (interface{}, error) {
		return store.GetBy(ctx, inventory.ItemsCheckedOutBefore{Time: before})
	})(cmd, args)
}

type storeAction func(ctx context.Context, cmd *cobra.Command, store *inventory.Store, args []string) (interface{}, error)

// withStore opens the store, runs action and prints its result as JSON
func withStore(action storeAction) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		store, closeStore, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer closeStore()

		result, err := action(ctx, cmd, store, args)
		if err != nil {
			return storageError(err)
		}
		return printJSON(cmd.OutOrStdout(), result)
	}
}
