package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/five82/shopsync/internal/model"
	"github.com/five82/shopsync/internal/orders"
)

// OrdersOptions holds flags for the orders command.
type OrdersOptions struct {
	*RootOptions
	Status string
	Period string
	Items  bool
}

type ordersOutput struct {
	Status string        `json:"status,omitempty"`
	Period string        `json:"period"`
	Orders []orderOutput `json:"orders"`
}

type orderOutput struct {
	ID       string            `json:"id"`
	Status   string            `json:"status"`
	Created  time.Time         `json:"created"`
	SubTotal float64           `json:"subTotal"`
	Total    float64           `json:"total"`
	Items    []orderItemOutput `json:"items,omitempty"`
}

type orderItemOutput struct {
	ProductID   string  `json:"productId"`
	ProductName string  `json:"productName"`
	Quantity    int     `json:"quantity"`
	Total       float64 `json:"total"`
}

func newOrdersOutput(f orders.Filter, list []model.Order) ordersOutput {
	out := ordersOutput{Status: f.Status, Period: string(f.Period), Orders: []orderOutput{}}
	for _, o := range list {
		row := orderOutput{
			ID:       o.OrderID,
			Status:   o.Status,
			Created:  o.Created,
			SubTotal: o.SubTotal(),
			Total:    o.Total(),
		}
		for _, item := range o.Items {
			row.Items = append(row.Items, orderItemOutput{
				ProductID:   item.ProductID,
				ProductName: item.ProductName,
				Quantity:    item.Quantity,
				Total:       item.Total(),
			})
		}
		out.Orders = append(out.Orders, row)
	}
	return out
}

func (o ordersOutput) writeText(w io.Writer) error {
	if len(o.Orders) == 0 {
		_, err := fmt.Fprintln(w, "No orders.")
		return err
	}

	t := table.New().
		Border(lipgloss.HiddenBorder()).
		Headers("ORDER", "CREATED", "STATUS", "TOTAL")
	for _, order := range o.Orders {
		created := "-"
		if !order.Created.IsZero() {
			created = order.Created.Local().Format("2006-01-02 15:04")
		}
		t.Row(order.ID, created, order.Status, money(order.Total))
	}
	if _, err := fmt.Fprintln(w, t.Render()); err != nil {
		return err
	}

	for _, order := range o.Orders {
		if len(order.Items) == 0 {
			continue
		}
		if _, err := fmt.Fprintf(w, "%s:\n", order.ID); err != nil {
			return err
		}
		for _, item := range order.Items {
			if _, err := fmt.Fprintf(w, "  %3d x %-30s %10s\n", item.Quantity, item.ProductName, money(item.Total)); err != nil {
				return err
			}
		}
	}
	return nil
}

// NewOrdersCommand creates the orders command.
func NewOrdersCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &OrdersOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "orders",
		Short: "List the buyer's orders",
		Long: `List the orders of the configured buyer, newest first.

Without flags the status and period filters come from the preferences file,
so the CLI shows what the TUI last showed.`,
		Example: `  shopsync orders --status Shipped --period month
  shopsync orders --items --format json`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return listOrders(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Status, "status", "", "order status filter (Submitted, Paid, Shipped, ...)")
	cmd.Flags().StringVar(&opts.Period, "period", "", "created within: day, week, month, year or all")
	cmd.Flags().BoolVar(&opts.Items, "items", false, "also fetch the line items of every order")

	return cmd
}

func listOrders(cmd *cobra.Command, opts *OrdersOptions) error {
	out := newFormatter(cmd, opts.RootOptions)
	s, err := openSession(cmd, opts.RootOptions)
	if err != nil {
		return err
	}
	defer s.Close()

	f := s.Orders.Filter()
	if cmd.Flags().Changed("status") {
		f.Status = opts.Status
	}
	if cmd.Flags().Changed("period") {
		period, err := orders.ParsePeriod(opts.Period)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid --period", err)
		}
		f.Period = period
	}

	ctx := cmd.Context()
	if err := s.Orders.List(ctx, f); err != nil {
		return out.Fail("list orders", err)
	}
	if opts.Items {
		for _, o := range s.Orders.Orders() {
			if err := s.Orders.LoadItems(ctx, o.OrderID); err != nil {
				return out.Fail("load order items", err)
			}
		}
	}
	out.VerboseLog("%d orders for %q", len(s.Orders.Orders()), s.Config.Buyer)
	return out.Success(newOrdersOutput(s.Orders.Filter(), s.Orders.Orders()))
}
