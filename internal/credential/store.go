package credential

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"
)

type storeFile struct {
	Version int    `json:"version"`
	Salt    []byte `json:"salt"`
	Data    []byte `json:"data"`
}

const storeVersion = 1

// FileStore implements Provider with XChaCha20-Poly1305 encrypted file persistence.
type FileStore struct {
	mu          sync.RWMutex
	path        string
	key         []byte
	salt        []byte
	credentials map[string]Credential
	now         func() time.Time
}

// NewFileStore opens or creates an encrypted credential store at the given path.
// If the file does not exist, a new store is created with a fresh salt.
// If the file exists, it is decrypted using the provided password.
func NewFileStore(path string, password []byte) (*FileStore, error) {
	s := &FileStore{
		path:        path,
		credentials: make(map[string]Credential),
		now:         time.Now,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			salt, err := GenerateSalt()
			if err != nil {
				return nil, err
			}
			s.salt = salt
			s.key = DeriveKey(password, salt)
			return s, s.save()
		}
		return nil, err
	}

	var sf storeFile
	if err := json.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("corrupt credential store: %w", err)
	}
	if sf.Version > storeVersion {
		return nil, fmt.Errorf("credential store version %d is newer than supported version %d", sf.Version, storeVersion)
	}

	s.salt = sf.Salt
	s.key = DeriveKey(password, sf.Salt)

	plaintext, err := Decrypt(s.key, sf.Data)
	if err != nil {
		return nil, ErrDecrypt
	}

	if err := json.Unmarshal(plaintext, &s.credentials); err != nil {
		return nil, fmt.Errorf("corrupt credential data: %w", err)
	}
	return s, nil
}

// Open opens the store at path, first with an empty password and then, if
// that fails to decrypt, with the password returned by prompt.
func Open(path string, prompt func() ([]byte, error)) (*FileStore, error) {
	s, err := NewFileStore(path, nil)
	if err == nil || !errors.Is(err, ErrDecrypt) || prompt == nil {
		return s, err
	}
	password, err := prompt()
	if err != nil {
		return nil, fmt.Errorf("reading master password: %w", err)
	}
	return NewFileStore(path, password)
}

// Path returns the store's file path.
func (s *FileStore) Path() string { return s.path }

// save encrypts and writes the credential map to disk.
func (s *FileStore) save() error {
	plaintext, err := json.Marshal(s.credentials)
	if err != nil {
		return err
	}
	encrypted, err := Encrypt(s.key, plaintext)
	if err != nil {
		return err
	}
	sf := storeFile{Version: storeVersion, Salt: s.salt, Data: encrypted}
	data, err := json.Marshal(sf)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0600)
}

// List returns summaries of all stored credentials sorted by name.
func (s *FileStore) List() ([]Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	summaries := make([]Summary, 0, len(s.credentials))
	for _, c := range s.credentials {
		summaries = append(summaries, c.Summarize())
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Name < summaries[j].Name })
	return summaries, nil
}

// Get returns the credential with the given name, or ErrNotFound.
func (s *FileStore) Get(name string) (*Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.credentials[name]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

// Token returns the bearer token stored under name.
func (s *FileStore) Token(name string) (string, error) {
	c, err := s.Get(name)
	if err != nil {
		return "", err
	}
	return c.Token, nil
}

// Add stores a new credential. Returns ErrDuplicate if the name already exists.
func (s *FileStore) Add(c Credential) error {
	if c.Token == "" {
		return ErrEmpty
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.credentials[c.Name]; exists {
		return ErrDuplicate
	}
	if c.Created.IsZero() {
		c.Created = s.now()
	}
	s.credentials[c.Name] = c
	return s.save()
}

// Update replaces an existing credential. Returns ErrNotFound if the name does not exist.
func (s *FileStore) Update(name string, c Credential) error {
	if c.Token == "" {
		return ErrEmpty
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	old, exists := s.credentials[name]
	if !exists {
		return ErrNotFound
	}
	if name != c.Name {
		if _, taken := s.credentials[c.Name]; taken {
			return ErrDuplicate
		}
		delete(s.credentials, name)
	}
	if c.Created.IsZero() {
		c.Created = old.Created
	}
	s.credentials[c.Name] = c
	return s.save()
}

// Remove deletes a credential by name. Returns ErrNotFound if it does not exist.
func (s *FileStore) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.credentials[name]; !exists {
		return ErrNotFound
	}
	delete(s.credentials, name)
	return s.save()
}
