// ABOUTME: Entity store for accounts, contacts, and tasks as versioned JSON documents
// ABOUTME: Persists through any KV collaborator keyed by "<kind>:<id>"
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/bannerbook/charm"
	"github.com/harperreed/bannerbook/models"
)

var (
	ErrNotFound        = errors.New("document not found")
	ErrInvalidAccount  = errors.New("account name is required")
	ErrInvalidContact  = errors.New("contact requires first name and account id")
	ErrInvalidTask     = errors.New("task requires title and related entity")
	ErrDuplicateBanner = errors.New("duplicate banner id in account")
)

const (
	accountPrefix = "account:"
	contactPrefix = "contact:"
	taskPrefix    = "task:"
)

// KV is the persistence collaborator. *charm.Client satisfies it.
type KV interface {
	Get(key []byte) ([]byte, error)
	Set(key, value []byte) error
	Delete(key []byte) error
	KeysWithPrefix(prefix []byte) ([][]byte, error)
}

// Store reads and writes entity documents.
type Store struct {
	kv  KV
	now func() time.Time
}

// New creates a store over kv.
func New(kv KV) *Store {
	return &Store{kv: kv, now: func() time.Time { return time.Now().UTC() }}
}

func getDoc[T any](kv KV, key string) (*T, error) {
	data, err := kv.Get([]byte(key))
	if errors.Is(err, charm.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return &v, nil
}

func putDoc(kv KV, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := kv.Set([]byte(key), data); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func listDocs[T any](kv KV, prefix string) ([]T, error) {
	keys, err := kv.KeysWithPrefix([]byte(prefix))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s documents: %w", prefix, err)
	}
	out := make([]T, 0, len(keys))
	for _, k := range keys {
		v, err := getDoc[T](kv, string(k))
		if errors.Is(err, ErrNotFound) {
			// deleted between listing and reading
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, nil
}

// SaveAccount creates or replaces an account, bumping its version.
// Banners and customer events without an id get one.
func (s *Store) SaveAccount(a *models.Account) error {
	if a == nil || a.Name == "" {
		return ErrInvalidAccount
	}
	seen := make(map[string]bool, len(a.BannerBuyingOffices))
	for _, b := range a.BannerBuyingOffices {
		if b.ID == "" {
			continue
		}
		if seen[b.ID] {
			return fmt.Errorf("%w: %q", ErrDuplicateBanner, b.ID)
		}
		seen[b.ID] = true
	}
	now := s.now()
	if a.ID == "" {
		a.ID = uuid.New().String()
		a.CreatedAt = now
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	for i := range a.BannerBuyingOffices {
		if a.BannerBuyingOffices[i].ID == "" {
			a.BannerBuyingOffices[i].ID = uuid.New().String()
		}
	}
	for i := range a.CustomerEvents {
		if a.CustomerEvents[i].ID == "" {
			a.CustomerEvents[i].ID = uuid.New().String()
		}
		a.CustomerEvents[i].AlertOptions = models.NormalizeAlertOptions(a.CustomerEvents[i].AlertOptions)
	}
	version, updated := a.Version, a.UpdatedAt
	a.Version++
	a.UpdatedAt = now
	if err := putDoc(s.kv, accountPrefix+a.ID, a); err != nil {
		a.Version, a.UpdatedAt = version, updated
		return err
	}
	return nil
}

// GetAccount loads one account.
func (s *Store) GetAccount(id string) (*models.Account, error) {
	return getDoc[models.Account](s.kv, accountPrefix+id)
}

// ListAccounts returns all accounts ordered by creation time, then id.
func (s *Store) ListAccounts() ([]models.Account, error) {
	accounts, err := listDocs[models.Account](s.kv, accountPrefix)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(accounts, func(i, j int) bool {
		return createdBefore(accounts[i].CreatedAt, accounts[i].ID, accounts[j].CreatedAt, accounts[j].ID)
	})
	return accounts, nil
}

// DeleteAccount removes an account and, with it, its banners. Contacts and
// tasks referencing it are left in place as dangling references.
func (s *Store) DeleteAccount(id string) error {
	if _, err := s.GetAccount(id); err != nil {
		return err
	}
	if err := s.kv.Delete([]byte(accountPrefix + id)); err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	return nil
}

// SaveContact creates or replaces a contact, bumping its version.
func (s *Store) SaveContact(c *models.Contact) error {
	if c == nil || c.FirstName == "" || c.AccountID == "" {
		return ErrInvalidContact
	}
	now := s.now()
	if c.ID == "" {
		c.ID = uuid.New().String()
		c.CreatedAt = now
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	for i := range c.Events {
		if c.Events[i].ID == "" {
			c.Events[i].ID = uuid.New().String()
		}
		c.Events[i].AlertOptions = models.NormalizeAlertOptions(c.Events[i].AlertOptions)
	}
	c.BirthdayAlertOptions = models.NormalizeAlertOptions(c.BirthdayAlertOptions)
	c.NextContactAlertOptions = models.NormalizeAlertOptions(c.NextContactAlertOptions)
	c.LastContactAlertOptions = models.NormalizeAlertOptions(c.LastContactAlertOptions)
	version, updated := c.Version, c.UpdatedAt
	c.Version++
	c.UpdatedAt = now
	if err := putDoc(s.kv, contactPrefix+c.ID, c); err != nil {
		c.Version, c.UpdatedAt = version, updated
		return err
	}
	return nil
}

// GetContact loads one contact.
func (s *Store) GetContact(id string) (*models.Contact, error) {
	return getDoc[models.Contact](s.kv, contactPrefix+id)
}

// ListContacts returns all contacts ordered by creation time, then id.
func (s *Store) ListContacts() ([]models.Contact, error) {
	contacts, err := listDocs[models.Contact](s.kv, contactPrefix)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(contacts, func(i, j int) bool {
		return createdBefore(contacts[i].CreatedAt, contacts[i].ID, contacts[j].CreatedAt, contacts[j].ID)
	})
	return contacts, nil
}

// DeleteContact removes a contact. Tasks and manager links pointing at it dangle.
func (s *Store) DeleteContact(id string) error {
	if _, err := s.GetContact(id); err != nil {
		return err
	}
	if err := s.kv.Delete([]byte(contactPrefix + id)); err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}
	return nil
}

// SaveTask creates or replaces a task, bumping its version.
func (s *Store) SaveTask(t *models.Task) error {
	if t == nil || t.Title == "" || t.RelatedID == "" {
		return ErrInvalidTask
	}
	if t.RelatedType != models.RelatedAccount && t.RelatedType != models.RelatedContact {
		return fmt.Errorf("%w: unknown related type %q", ErrInvalidTask, t.RelatedType)
	}
	now := s.now()
	if t.ID == "" {
		t.ID = uuid.New().String()
		t.CreatedAt = now
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.Status == "" {
		t.Status = models.TaskStatusPending
	}
	version, updated := t.Version, t.UpdatedAt
	t.Version++
	t.UpdatedAt = now
	if err := putDoc(s.kv, taskPrefix+t.ID, t); err != nil {
		t.Version, t.UpdatedAt = version, updated
		return err
	}
	return nil
}

// GetTask loads one task.
func (s *Store) GetTask(id string) (*models.Task, error) {
	return getDoc[models.Task](s.kv, taskPrefix+id)
}

// ListTasks returns all tasks ordered by creation time, then id.
func (s *Store) ListTasks() ([]models.Task, error) {
	tasks, err := listDocs[models.Task](s.kv, taskPrefix)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		return createdBefore(tasks[i].CreatedAt, tasks[i].ID, tasks[j].CreatedAt, tasks[j].ID)
	})
	return tasks, nil
}

// DeleteTask removes a task.
func (s *Store) DeleteTask(id string) error {
	if _, err := s.GetTask(id); err != nil {
		return err
	}
	if err := s.kv.Delete([]byte(taskPrefix + id)); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// Snapshot materializes every document for an evaluation pass.
func (s *Store) Snapshot() (*models.Snapshot, error) {
	accounts, err := s.ListAccounts()
	if err != nil {
		return nil, err
	}
	contacts, err := s.ListContacts()
	if err != nil {
		return nil, err
	}
	tasks, err := s.ListTasks()
	if err != nil {
		return nil, err
	}
	return &models.Snapshot{Accounts: accounts, Contacts: contacts, Tasks: tasks}, nil
}

func createdBefore(a time.Time, aID string, b time.Time, bID string) bool {
	if !a.Equal(b) {
		return a.Before(b)
	}
	return aID < bID
}
