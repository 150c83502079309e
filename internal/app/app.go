package app

import (
	"context"

	"github.com/five82/shopsync/internal/ui"
)

// Run boots the shopsync TUI until the user quits or the context is
// cancelled.
func Run(ctx context.Context, opts Options) error {
	router := ui.NewRouter()
	opts.Navigator = router
	opts.Background = true
	opts.LogToFile = true

	s, err := Open(ctx, opts)
	if err != nil {
		return err
	}
	defer s.Close()

	unsubscribeBasket := s.Basket.Subscribe(router.Notify)
	defer unsubscribeBasket()
	unsubscribeOrders := s.Orders.Subscribe(router.Notify)
	defer unsubscribeOrders()

	s.Logger.Info("tui starting", "api_base", s.Config.APIBase, "buyer", s.Config.Buyer)
	defer s.Logger.Info("tui stopped")

	return ui.Run(ui.Options{
		Context:   ctx,
		Basket:    s.Basket,
		Orders:    s.Orders,
		Router:    router,
		Prefs:     s.Prefs,
		PrefsPath: opts.PrefsPath,
		LogPath:   s.Config.LogPath(),
	})
}
