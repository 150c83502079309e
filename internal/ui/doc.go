// Package ui provides the terminal user interface for shopsync.
//
// # Architecture Overview
//
// The UI is a Bubble Tea program. It renders state owned by the basket and
// orders controllers and never talks to the backend itself: every network
// action runs inside a tea.Cmd that calls a controller method and reports the
// outcome as an actionMsg.
//
// # Package Structure
//
//   - app.go: Model, Update loop, messages and Run
//   - router.go: Router, the bridge from controller callbacks into the program
//   - basket_view.go: line item table, summary and checkout confirmation
//   - orders_view.go: order list, filters and order detail
//   - header.go: status line and command bar
//   - help.go, keys.go: key bindings and the help overlay
//   - theme.go, style_helpers.go: palettes and background-safe rendering
//
// # Event Flow
//
//  1. Run attaches the Router to the program
//  2. Controllers call Router.Notify after each cycle and Router.Navigate on checkout
//  3. Update copies controller state into the tables on changedMsg
//  4. Keys become tea.Cmds that call controller methods off the Update goroutine
//
// The Router sends from a separate goroutine so a controller notifying while
// it holds its cycle lock never waits on the Update loop.
//
// # Views
//
//   - Basket (b): line items with quantity and subtotal
//   - Orders (o): buyer orders filtered by status (f) and period (p)
//   - Checkout: shown when the basket controller navigates to /checkout
package ui
