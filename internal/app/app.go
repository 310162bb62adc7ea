// Package app wires the client-side state components to one API client,
// one storage and one notifier, and owns the signed-in session.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"teakspice-storefront/internal/cart"
	"teakspice-storefront/internal/catalog"
	"teakspice-storefront/internal/checkout"
	"teakspice-storefront/internal/client"
	"teakspice-storefront/internal/models"
	"teakspice-storefront/internal/notice"
	"teakspice-storefront/internal/storage"
	"teakspice-storefront/internal/wishlist"
)

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

type Options struct {
	Client   *client.Client
	Storage  storage.Storage
	Notifier notice.Notifier
	Logger   *slog.Logger
	PageSize int
}

type App struct {
	Client   *client.Client
	Cart     *cart.Cart
	Catalog  *catalog.Store
	Wishlist *wishlist.Service
	Checkout *checkout.Service

	storage  storage.Storage
	notifier notice.Notifier
	logger   *slog.Logger

	mu    sync.RWMutex
	user  *models.User
	theme Theme
}

// New builds the components and restores the persisted session, cart,
// wishlist and theme.
func New(ctx context.Context, opts Options) (*App, error) {
	a := &App{
		Client:   opts.Client,
		storage:  opts.Storage,
		notifier: opts.Notifier,
		logger:   opts.Logger,
		theme:    ThemeLight,
	}

	var err error
	if a.Cart, err = cart.New(opts.Storage, opts.Notifier, opts.Logger); err != nil {
		return nil, err
	}
	a.Catalog = catalog.New(opts.Client, opts.Notifier, opts.Logger, opts.PageSize)
	if a.Wishlist, err = wishlist.New(opts.Client, opts.Storage, opts.Notifier, opts.Logger); err != nil {
		return nil, err
	}
	a.Checkout = checkout.NewService(opts.Client, a.Cart, a.Catalog, opts.Notifier, opts.Logger)

	if _, err := opts.Storage.Load(storage.KeyTheme, &a.theme); err != nil {
		return nil, fmt.Errorf("restore theme: %w", err)
	}
	if err := a.restoreSession(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *App) restoreSession(ctx context.Context) error {
	var token string
	var user models.User
	hasToken, err := a.storage.Load(storage.KeyToken, &token)
	if err != nil {
		return fmt.Errorf("restore token: %w", err)
	}
	hasUser, err := a.storage.Load(storage.KeyCurrentUser, &user)
	if err != nil {
		return fmt.Errorf("restore user: %w", err)
	}
	if !hasToken || !hasUser || token == "" {
		return nil
	}

	a.Client.SetToken(token)
	a.mu.Lock()
	a.user = &user
	a.mu.Unlock()
	// a failed refetch already produced a notice; the session stays valid
	_ = a.Wishlist.SetUser(ctx, user.ID.Hex())
	return nil
}

// Login authenticates, persists the session and switches the wishlist to
// the account's server list.
func (a *App) Login(ctx context.Context, email, password string) (models.User, error) {
	session, err := a.Client.Login(ctx, email, password)
	if err != nil {
		a.logger.Warn("login failed", slog.String("error", err.Error()))
		a.notifier.Notify(notice.Notice{Kind: notice.Error, Message: loginMessage(err)})
		return models.User{}, err
	}

	a.Client.SetToken(session.Token)
	if err := a.storage.Save(storage.KeyToken, session.Token); err != nil {
		a.logger.Warn("persist token", slog.String("error", err.Error()))
	}
	if err := a.storage.Save(storage.KeyCurrentUser, session.User); err != nil {
		a.logger.Warn("persist user", slog.String("error", err.Error()))
	}
	a.mu.Lock()
	a.user = &session.User
	a.mu.Unlock()

	_ = a.Wishlist.SetUser(ctx, session.User.ID.Hex())
	a.notifier.Notify(notice.Notice{Kind: notice.Success, Message: "Welcome back, " + session.User.Name + "."})
	return session.User, nil
}

func loginMessage(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Status < 500 {
		return apiErr.Message
	}
	return "Login failed. Please try again."
}

// Logout forgets the session. The cart is kept.
func (a *App) Logout(ctx context.Context) error {
	a.Client.SetToken("")
	a.mu.Lock()
	a.user = nil
	a.mu.Unlock()

	for _, key := range []string{storage.KeyToken, storage.KeyCurrentUser} {
		if err := a.storage.Remove(key); err != nil {
			return err
		}
	}
	return a.Wishlist.SetUser(ctx, "")
}

func (a *App) CurrentUser() (models.User, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.user == nil {
		return models.User{}, false
	}
	return *a.user, true
}

func (a *App) IsAdmin() bool {
	u, ok := a.CurrentUser()
	return ok && u.IsAdmin()
}

func (a *App) Theme() Theme {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.theme
}

// ToggleTheme flips between light and dark and persists the choice.
func (a *App) ToggleTheme() Theme {
	a.mu.Lock()
	if a.theme == ThemeDark {
		a.theme = ThemeLight
	} else {
		a.theme = ThemeDark
	}
	theme := a.theme
	a.mu.Unlock()

	if err := a.storage.Save(storage.KeyTheme, theme); err != nil {
		a.logger.Warn("persist theme", slog.String("error", err.Error()))
	}
	return theme
}
