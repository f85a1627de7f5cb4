// Package sessions provides the cookie-session store backing
// authentication. Sessions live in a Badger keyspace with a TTL, so
// expiry needs no sweeper.
package sessions

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
)

var ErrNoSession = errors.New("session not found")

const tokenLength = 32

// Store maps opaque session tokens to user IDs.
type Store struct {
	db       *badger.DB
	ttl      time.Duration
	path     string
	isTestDB bool
}

// NewStore opens the session database at path. An empty path creates a
// throwaway store in a temp directory for tests.
func NewStore(path string, ttl time.Duration) (*Store, error) {
	isTest := false
	if path == "" {
		tempPath, err := os.MkdirTemp("", "pressroom_test_sessions_")
		if err != nil {
			return nil, fmt.Errorf("error creating temp dir: %v", err)
		}
		path = tempPath
		isTest = true
	}

	opts := badger.DefaultOptions(path).
		WithLogger(nil).
		WithSyncWrites(false).
		WithNumVersionsToKeep(1).
		WithNumGoroutines(1)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	if isTest {
		if err := db.DropAll(); err != nil {
			return nil, fmt.Errorf("failed to drop all keys: %v", err)
		}
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Store{db: db, ttl: ttl, path: path, isTestDB: isTest}, nil
}

func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return err
	}
	if s.isTestDB {
		if err := os.RemoveAll(s.path); err != nil {
			return fmt.Errorf("failed to cleanup test session store: %v", err)
		}
	}
	return nil
}

// Create issues a fresh token bound to the user.
func (s *Store) Create(userID int) (string, error) {
	raw := make([]byte, tokenLength)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	token := hex.EncodeToString(raw)

	val := make([]byte, 8)
	binary.BigEndian.PutUint64(val, uint64(userID))

	err := s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(sessionKey(token), val).WithTTL(s.ttl)
		return txn.SetEntry(entry)
	})
	if err != nil {
		return "", err
	}
	return token, nil
}

// Get resolves a token to its user ID. Expired entries vanish from
// Badger on their own and read back as ErrNoSession.
func (s *Store) Get(token string) (int, error) {
	var userID int
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(sessionKey(token))
		if err == badger.ErrKeyNotFound {
			return ErrNoSession
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			userID = int(binary.BigEndian.Uint64(val))
			return nil
		})
	})
	if err != nil {
		return 0, err
	}
	return userID, nil
}

// Delete drops the session, logging the user out.
func (s *Store) Delete(token string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(sessionKey(token))
	})
}

func sessionKey(token string) []byte {
	return []byte("session:" + token)
}
