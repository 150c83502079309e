package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/five82/shopsync/internal/app"
	"github.com/five82/shopsync/internal/basket"
)

// basketOutput is the printed form of the basket and its line items.
type basketOutput struct {
	ID            string             `json:"id"`
	CustomerName  string             `json:"customerName,omitempty"`
	TotalItems    int                `json:"totalItems"`
	TotalQuantity int                `json:"totalQuantity"`
	SubTotal      float64            `json:"subTotal"`
	Items         []basketItemOutput `json:"items"`
}

type basketItemOutput struct {
	ID          string  `json:"id"`
	ProductID   string  `json:"productId"`
	ProductName string  `json:"productName"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	SubTotal    float64 `json:"subTotal"`
}

func newBasketOutput(s *app.Session) basketOutput {
	st, _ := s.Basket.Basket()
	out := basketOutput{
		ID:            st.ID,
		CustomerName:  st.CustomerName,
		TotalItems:    st.TotalItems,
		TotalQuantity: st.TotalQuantity,
		SubTotal:      st.SubTotal,
		Items:         []basketItemOutput{},
	}
	for _, item := range s.Basket.Items() {
		out.Items = append(out.Items, basketItemOutput{
			ID:          item.ItemID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Price:       item.EffectivePrice(),
			Quantity:    item.Quantity,
			SubTotal:    item.SubTotal(),
		})
	}
	return out
}

func (b basketOutput) writeText(w io.Writer) error {
	title := "Basket " + b.ID
	if b.CustomerName != "" {
		title += " (" + b.CustomerName + ")"
	}
	if _, err := fmt.Fprintln(w, title); err != nil {
		return err
	}
	if len(b.Items) == 0 {
		_, err := fmt.Fprintln(w, "  (empty)")
		return err
	}

	t := table.New().
		Border(lipgloss.HiddenBorder()).
		Headers("ITEM", "PRODUCT", "NAME", "QTY", "PRICE", "SUBTOTAL")
	for _, item := range b.Items {
		t.Row(item.ID, item.ProductID, item.ProductName,
			fmt.Sprintf("%d", item.Quantity), money(item.Price), money(item.SubTotal))
	}
	if _, err := fmt.Fprintln(w, t.Render()); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Lines: %d  Units: %d  Subtotal: %s\n", b.TotalItems, b.TotalQuantity, money(b.SubTotal))
	return err
}

func money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// NewBasketCommand creates the basket command.
func NewBasketCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "basket",
		Short: "Refresh and print the basket",
		Long: `Refresh the basket from the backend and print it with its line items.
A basket is initiated on first use and its id is remembered in the data dir.`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBasket(cmd, rootOpts, "refresh basket", func(*app.Session) error {
				return nil
			})
		},
	}
}

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	var quantity int

	cmd := &cobra.Command{
		Use:     "add <productId>",
		Short:   "Add a product to the basket",
		Example: `  shopsync add 3f1c2a --quantity 2`,
		Args:    exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if quantity < 1 {
				return NewExitError(ExitCommandError, "--quantity must be at least 1")
			}
			return withSession(cmd, rootOpts, "add item", func(s *app.Session) error {
				return s.Basket.AddItem(cmd.Context(), args[0], quantity)
			})
		},
	}

	cmd.Flags().IntVarP(&quantity, "quantity", "n", 1, "units to add")
	return cmd
}

// NewRemoveCommand creates the remove command.
func NewRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <itemId>",
		Short: "Remove a line item from the basket",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBasket(cmd, rootOpts, "remove item", func(s *app.Session) error {
				return s.Basket.RemoveItem(cmd.Context(), args[0])
			})
		},
	}
}

// NewQuantityCommand creates the quantity command.
func NewQuantityCommand(rootOpts *RootOptions) *cobra.Command {
	var inc, dec bool

	cmd := &cobra.Command{
		Use:   "quantity <itemId> --inc|--dec",
		Short: "Add or remove one unit of a line item",
		Long: `Add or remove one unit of a line item. Decreasing below one unit is
refused; use remove instead.`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if inc == dec {
				return NewExitError(ExitCommandError, "exactly one of --inc or --dec is required")
			}
			return withBasket(cmd, rootOpts, "change quantity", func(s *app.Session) error {
				item, ok := s.Basket.Item(args[0])
				if !ok {
					return fmt.Errorf("%w: %s", basket.ErrUnknownItem, args[0])
				}
				change := item.IncreaseQuantity()
				if dec {
					var err error
					if change, err = item.DecreaseQuantity(); err != nil {
						return err
					}
				}
				return s.Basket.ChangeQuantity(cmd.Context(), change)
			})
		},
	}

	cmd.Flags().BoolVar(&inc, "inc", false, "add one unit")
	cmd.Flags().BoolVar(&dec, "dec", false, "remove one unit")
	return cmd
}

// withBasket refreshes the basket, runs fn and prints the result.
func withBasket(cmd *cobra.Command, opts *RootOptions, message string, fn func(*app.Session) error) error {
	return withSession(cmd, opts, message, func(s *app.Session) error {
		if err := s.Basket.Get(cmd.Context()); err != nil {
			return err
		}
		return fn(s)
	})
}

// withSession opens a session, runs fn and prints the basket on success.
func withSession(cmd *cobra.Command, opts *RootOptions, message string, fn func(*app.Session) error) error {
	out := newFormatter(cmd, opts)
	s, err := openSession(cmd, opts)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := fn(s); err != nil {
		return out.Fail(message, err)
	}
	out.VerboseLog("basket %s at %s", s.Basket.Document().BasketID, s.Config.DatabasePath())
	return out.Success(newBasketOutput(s))
}
