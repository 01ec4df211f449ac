package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/octobees/wa-validator/internal/entity"
)

func TestCustomerServiceUpdateResolvesRow(t *testing.T) {
	store := &stubStore{contacts: fakeContacts(3)}
	svc := NewCustomerService(store)

	target := store.contacts[1]
	edit := entity.Contact{ID: target.ID, ClientID: target.ClientID, Mobile: "+351911111111"}

	got, err := svc.Update(context.Background(), edit)
	require.NoError(t, err)
	assert.Equal(t, target.Row, got.Row)
	require.Len(t, store.updated, 1)
	assert.Equal(t, "+351911111111", store.updated[0].Mobile)
}

func TestCustomerServiceUpdateUnknown(t *testing.T) {
	store := &stubStore{contacts: fakeContacts(2)}
	_, err := NewCustomerService(store).Update(context.Background(), entity.Contact{ID: "customer-99"})
	assert.ErrorIs(t, err, ErrCustomerNotFound)
	assert.Empty(t, store.updated)
}

func TestCustomerServiceList(t *testing.T) {
	store := &stubStore{contacts: fakeContacts(4)}
	contacts, err := NewCustomerService(store).List(context.Background())
	require.NoError(t, err)
	assert.Len(t, contacts, 4)

	store.getErr = errors.New("sheets down")
	_, err = NewCustomerService(store).List(context.Background())
	assert.ErrorContains(t, err, "sheets down")
}
