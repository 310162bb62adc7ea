// Package wishlist keeps the shopper's saved products. Without a signed-in
// user the list lives in client storage only; with one, every change is
// applied locally first and undone if the server rejects it.
package wishlist

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"teakspice-storefront/internal/client"
	"teakspice-storefront/internal/notice"
	"teakspice-storefront/internal/storage"
)

const (
	MsgUpdateFailed = "Failed to update wishlist."
	MsgAlreadyAdded = "Product already in wishlist."
)

type API interface {
	Wishlist(ctx context.Context, userID string) ([]primitive.ObjectID, error)
	AddToWishlist(ctx context.Context, userID, productID string) error
	RemoveFromWishlist(ctx context.Context, userID, productID string) error
	ClearWishlist(ctx context.Context, userID string) error
}

type Service struct {
	api      API
	store    storage.Storage
	notifier notice.Notifier
	logger   *slog.Logger

	mu     sync.Mutex
	userID string
	ids    []primitive.ObjectID
}

// New starts in anonymous mode with the ids persisted in store.
func New(api API, store storage.Storage, notifier notice.Notifier, logger *slog.Logger) (*Service, error) {
	s := &Service{api: api, store: store, notifier: notifier, logger: logger}
	if err := s.loadLocal(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Service) loadLocal() error {
	var ids []primitive.ObjectID
	if _, err := s.store.Load(storage.KeyWishlist, &ids); err != nil {
		return fmt.Errorf("restore wishlist: %w", err)
	}
	s.mu.Lock()
	s.ids = ids
	s.mu.Unlock()
	return nil
}

// SetUser switches mode. An empty id returns to the locally stored list;
// otherwise the server list is fetched. Anonymous ids are not merged into
// the account.
func (s *Service) SetUser(ctx context.Context, userID string) error {
	s.mu.Lock()
	s.userID = userID
	s.mu.Unlock()
	if userID == "" {
		return s.loadLocal()
	}
	return s.Sync(ctx)
}

func (s *Service) authenticated() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID, s.userID != ""
}

// Sync replaces the local list with the server's. Anonymous mode has
// nothing to sync.
func (s *Service) Sync(ctx context.Context) error {
	userID, ok := s.authenticated()
	if !ok {
		return nil
	}
	ids, err := s.api.Wishlist(ctx, userID)
	if err != nil {
		s.logger.Warn("fetch wishlist", slog.String("error", err.Error()))
		s.notifier.Notify(notice.Notice{Kind: notice.Error, Message: "Failed to load wishlist."})
		return err
	}
	s.mu.Lock()
	if s.userID == userID {
		s.ids = ids
	}
	s.mu.Unlock()
	return nil
}

func (s *Service) Contains(id primitive.ObjectID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexOf(id) >= 0
}

func (s *Service) Items() []primitive.ObjectID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]primitive.ObjectID(nil), s.ids...)
}

func (s *Service) indexOf(id primitive.ObjectID) int {
	for i, v := range s.ids {
		if v == id {
			return i
		}
	}
	return -1
}

// Add is a no-op when the product is already in the local list.
func (s *Service) Add(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	if s.indexOf(id) >= 0 {
		s.mu.Unlock()
		return nil
	}
	s.ids = append(s.ids, id)
	userID := s.userID
	s.mu.Unlock()

	if userID == "" {
		s.persist()
		s.notifier.Notify(notice.Notice{Kind: notice.Success, Message: "Added to wishlist."})
		return nil
	}
	err := s.api.AddToWishlist(ctx, userID, id.Hex())
	if err != nil {
		s.undo(func() {
			if i := s.indexOf(id); i >= 0 {
				s.ids = append(s.ids[:i], s.ids[i+1:]...)
			}
		}, err)
		return err
	}
	s.notifier.Notify(notice.Notice{Kind: notice.Success, Message: "Added to wishlist."})
	return nil
}

func (s *Service) Remove(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	at := s.indexOf(id)
	if at < 0 {
		s.mu.Unlock()
		return nil
	}
	s.ids = append(s.ids[:at], s.ids[at+1:]...)
	userID := s.userID
	s.mu.Unlock()

	if userID == "" {
		s.persist()
		return nil
	}
	err := s.api.RemoveFromWishlist(ctx, userID, id.Hex())
	if err != nil {
		s.undo(func() {
			if s.indexOf(id) >= 0 {
				return
			}
			if at > len(s.ids) {
				at = len(s.ids)
			}
			s.ids = append(s.ids[:at], append([]primitive.ObjectID{id}, s.ids[at:]...)...)
		}, err)
		return err
	}
	return nil
}

// Toggle adds id when it is absent from the local list and removes it
// otherwise. It reports whether id is in the list afterwards.
func (s *Service) Toggle(ctx context.Context, id primitive.ObjectID) (bool, error) {
	if s.Contains(id) {
		err := s.Remove(ctx, id)
		return err != nil, err
	}
	err := s.Add(ctx, id)
	return err == nil, err
}

func (s *Service) Clear(ctx context.Context) error {
	s.mu.Lock()
	snapshot := s.ids
	s.ids = nil
	userID := s.userID
	s.mu.Unlock()

	if userID == "" {
		s.persist()
		return nil
	}
	if err := s.api.ClearWishlist(ctx, userID); err != nil {
		s.undo(func() { s.ids = snapshot }, err)
		return err
	}
	return nil
}

// undo reverts a tentative change after the server rejected it.
func (s *Service) undo(revert func(), err error) {
	s.mu.Lock()
	revert()
	s.mu.Unlock()

	msg := MsgUpdateFailed
	if client.IsStatus(err, http.StatusConflict) {
		msg = MsgAlreadyAdded
	}
	s.logger.Warn("wishlist change rejected", slog.String("error", err.Error()))
	s.notifier.Notify(notice.Notice{Kind: notice.Error, Message: msg})
}

func (s *Service) persist() {
	s.mu.Lock()
	ids := append([]primitive.ObjectID(nil), s.ids...)
	s.mu.Unlock()
	if err := s.store.Save(storage.KeyWishlist, ids); err != nil {
		s.logger.Warn("persist wishlist", slog.String("error", err.Error()))
	}
}
