package contact

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kishorebabuysk/VF-Backend/internal/events"
	"github.com/kishorebabuysk/VF-Backend/internal/validation"
)

var (
	ErrContactNotFound = errors.New("contact not found")
	ErrInvalidInput    = validation.ErrInvalidInput
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Contact, error)
	List(ctx context.Context) ([]Contact, error)
	Delete(ctx context.Context, id int) error
	DeleteMany(ctx context.Context, ids []int) (int, error)
}

type service struct {
	repo      Repository
	publisher events.Publisher
	logger    *slog.Logger
}

func NewService(repo Repository, publisher events.Publisher, logger *slog.Logger) Service {
	return &service{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Contact, error) {
	contact := &Contact{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.ToLower(strings.TrimSpace(req.Email)),
		Mobile:  strings.TrimSpace(req.Mobile),
		Message: strings.TrimSpace(req.Message),
	}
	if err := s.repo.Create(ctx, contact); err != nil {
		return nil, err
	}

	events.Notify(ctx, s.publisher, s.logger, events.ContactReceived, fmt.Sprint(contact.ID), ReceivedEvent{
		ContactID: contact.ID,
		Name:      contact.Name,
		Email:     contact.Email,
		Mobile:    contact.Mobile,
	})
	return contact, nil
}

func (s *service) List(ctx context.Context) ([]Contact, error) {
	return s.repo.List(ctx)
}

func (s *service) Delete(ctx context.Context, id int) error {
	found, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return ErrContactNotFound
	}
	return nil
}

// DeleteMany ignores unknown ids and reports how many rows went away.
func (s *service) DeleteMany(ctx context.Context, ids []int) (int, error) {
	if len(ids) == 0 {
		return 0, validation.Invalid("contact_ids", "at least one id is required")
	}
	return s.repo.DeleteMany(ctx, ids)
}
