package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/peterbourgon/diskv/v3"

	"tableflip.dev/flip/pkg/card"
)

var (
	// ErrNotFound is returned for a card id the user does not own.
	ErrNotFound = errors.New("server: card not found")
	// ErrUserExists is returned when registering a taken username.
	ErrUserExists = errors.New("server: user already exists")
	// ErrUnknownUser is returned for credentials that match no account.
	ErrUnknownUser = errors.New("server: unknown user")
)

const usersIndexFile = ".users.json"

// record is a stored card plus the creation time that fixes the
// default listing order.
type record struct {
	card.Card
	Created time.Time `json:"created"`
}

// account is a registered user with a bcrypt password hash.
type account struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Hash string `json:"hash"`
}

// Storage keeps each user's cards as one document per card under
// <data>/<userID>/<cardID>, plus a users index written atomically.
type Storage struct {
	d        *diskv.Diskv
	basePath string
}

// OpenStorage creates or reopens the data directory.
func OpenStorage(basePath string) (*Storage, error) {
	if basePath == "" {
		return nil, errors.New("server: data directory required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("server: ensure data directory: %w", err)
	}
	return &Storage{
		d: diskv.New(diskv.Options{
			BasePath:          basePath,
			AdvancedTransform: keyToPathTransform,
			InverseTransform:  pathToKeyTransform,
			CacheSizeMax:      1024 * 1024, // 1MB
		}),
		basePath: basePath,
	}, nil
}

func keyToPathTransform(s string) *diskv.PathKey {
	parts := strings.SplitN(s, "-", 2)
	if len(parts) == 1 {
		return &diskv.PathKey{FileName: parts[0]}
	}
	return &diskv.PathKey{Path: []string{parts[0]}, FileName: parts[1]}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	if len(pathKey.Path) == 0 {
		return pathKey.FileName
	}
	return fmt.Sprintf("%s-%s", strings.Join(pathKey.Path, "-"), pathKey.FileName)
}

// toKey makes `userID-cardID`. User IDs are uuids, so the first dash
// group is unambiguous for SplitN.
func toKey(userID, cardID string) string {
	return fmt.Sprintf("%s-%s", encodeOwner(userID), cardID)
}

// encodeOwner keeps the owner segment free of the key separator.
func encodeOwner(userID string) string {
	return strings.ReplaceAll(userID, "-", "_")
}

// ListCards returns the user's cards in creation order.
func (s *Storage) ListCards(ctx context.Context, userID string) ([]card.Card, error) {
	owner := encodeOwner(userID)
	records := make([]record, 0)
	for key := range s.d.Keys(ctx.Done()) {
		pk := keyToPathTransform(key)
		if len(pk.Path) == 0 || pk.Path[0] != owner {
			continue
		}
		rec, err := s.read(key)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %s\n", key, err)
			continue
		}
		records = append(records, *rec)
	}
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Created.Equal(records[j].Created) {
			return records[i].ID < records[j].ID
		}
		return records[i].Created.Before(records[j].Created)
	})
	cards := make([]card.Card, len(records))
	for i, rec := range records {
		cards[i] = rec.Card
	}
	return cards, nil
}

// CreateCard stores a new card and returns it with its assigned id.
func (s *Storage) CreateCard(userID string, draft card.Draft) (*card.Card, error) {
	rec := record{
		Card: card.Card{
			ID:    uuid.NewString(),
			Front: draft.Front,
			Back:  draft.Back,
		},
		Created: time.Now().UTC(),
	}
	if err := s.write(userID, rec); err != nil {
		return nil, err
	}
	c := rec.Card
	return &c, nil
}

// UpdateCard replaces the front/back of an existing card.
func (s *Storage) UpdateCard(userID, cardID string, draft card.Draft) error {
	key := toKey(userID, cardID)
	rec, err := s.read(key)
	if err != nil {
		return ErrNotFound
	}
	rec.Front = draft.Front
	rec.Back = draft.Back
	return s.write(userID, *rec)
}

// DeleteCard removes a card permanently.
func (s *Storage) DeleteCard(userID, cardID string) error {
	key := toKey(userID, cardID)
	if !s.d.Has(key) {
		return ErrNotFound
	}
	return s.d.Erase(key)
}

func (s *Storage) read(key string) (*record, error) {
	val, err := s.d.Read(key)
	if err != nil {
		return nil, err
	}
	rec := &record{}
	if err := json.Unmarshal(val, rec); err != nil {
		return nil, err
	}
	if rec.ID == "" {
		rec.ID = keyToPathTransform(key).FileName
	}
	return rec, nil
}

func (s *Storage) write(userID string, rec record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.d.Write(toKey(userID, rec.ID), data)
}

// Register creates an account with the given bcrypt hash.
func (s *Storage) Register(username, hash string) (*account, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, errors.New("server: username required")
	}
	index, err := s.loadUsersIndex()
	if err != nil {
		return nil, fmt.Errorf("server: load users index: %w", err)
	}
	if _, ok := index[username]; ok {
		return nil, ErrUserExists
	}
	acct := account{ID: uuid.NewString(), Name: username, Hash: hash}
	index[username] = acct
	if err := s.saveUsersIndex(index); err != nil {
		return nil, fmt.Errorf("server: save users index: %w", err)
	}
	return &acct, nil
}

// Lookup finds an account by username.
func (s *Storage) Lookup(username string) (*account, error) {
	index, err := s.loadUsersIndex()
	if err != nil {
		return nil, fmt.Errorf("server: load users index: %w", err)
	}
	acct, ok := index[username]
	if !ok {
		return nil, ErrUnknownUser
	}
	return &acct, nil
}

func (s *Storage) usersIndexPath() string {
	return filepath.Join(s.basePath, usersIndexFile)
}

func (s *Storage) loadUsersIndex() (map[string]account, error) {
	data, err := os.ReadFile(s.usersIndexPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return make(map[string]account), nil
		}
		return nil, err
	}
	if len(data) == 0 {
		return make(map[string]account), nil
	}
	index := make(map[string]account)
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, err
	}
	return index, nil
}

func (s *Storage) saveUsersIndex(index map[string]account) error {
	data, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		return err
	}
	path := s.usersIndexPath()
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
