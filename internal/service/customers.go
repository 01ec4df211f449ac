package service

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/octobees/wa-validator/internal/entity"
)

// CustomerService reads and edits stored contacts.
type CustomerService struct {
	store ContactStore
}

// NewCustomerService wires the contact store.
func NewCustomerService(store ContactStore) *CustomerService {
	return &CustomerService{store: store}
}

// List returns every stored contact.
func (s *CustomerService) List(ctx context.Context) ([]entity.Contact, error) {
	contacts, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "read contacts")
	}
	return contacts, nil
}

// Update writes c back to the store. A contact sent without its sheet row is
// matched to the stored contact with the same id.
func (s *CustomerService) Update(ctx context.Context, c entity.Contact) (*entity.Contact, error) {
	c.ID = strings.TrimSpace(c.ID)
	if c.Row <= 0 {
		contacts, err := s.store.GetAll(ctx)
		if err != nil {
			return nil, eris.Wrap(err, "read contacts")
		}
		found := false
		for _, existing := range contacts {
			if existing.ID == c.ID {
				c.Row = existing.Row
				found = true
				break
			}
		}
		if !found {
			return nil, ErrCustomerNotFound
		}
	}

	if err := s.store.Update(ctx, c); err != nil {
		return nil, eris.Wrapf(err, "update contact %s", c.ID)
	}
	return &c, nil
}
