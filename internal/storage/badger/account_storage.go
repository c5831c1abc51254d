package badger

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/folio/internal/interfaces"
	"github.com/ternarybob/folio/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// AccountStorage implements the AccountStorage interface for Badger
type AccountStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewAccountStorage creates a new AccountStorage instance
func NewAccountStorage(db *BadgerDB, logger arbor.ILogger) interfaces.AccountStorage {
	return &AccountStorage{
		db:     db,
		logger: logger,
	}
}

// Save inserts or updates an account
func (s *AccountStorage) Save(ctx context.Context, account *models.Account) error {
	if err := s.db.Store().Upsert(account.ID, account); err != nil {
		return fmt.Errorf("failed to save account: %w", err)
	}
	return nil
}

// Get retrieves an account by ID
func (s *AccountStorage) Get(ctx context.Context, id string) (*models.Account, error) {
	var account models.Account
	err := s.db.Store().Get(id, &account)
	if err == badgerhold.ErrNotFound {
		return nil, interfaces.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

// GetAll returns all accounts ordered by name
func (s *AccountStorage) GetAll(ctx context.Context) ([]*models.Account, error) {
	var accounts []*models.Account
	err := s.db.Store().Find(&accounts, badgerhold.Where("ID").Ne("").SortBy("Name"))
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

// Delete removes an account by ID
func (s *AccountStorage) Delete(ctx context.Context, id string) error {
	err := s.db.Store().Delete(id, &models.Account{})
	if err == badgerhold.ErrNotFound {
		return interfaces.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	return nil
}
