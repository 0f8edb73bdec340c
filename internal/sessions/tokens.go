package sessions

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// ErrNoToken is returned by TokenStore.Load when the slot is empty.
var ErrNoToken = errors.New("no credential token stored")

const tokenFileVersion = "1.0"

// TokenStore is the single durable slot holding the credential token.
type TokenStore interface {
	Load() (string, error)
	Save(token string) error
	Delete() error
}

// tokenFile is the document written to disk for each API host.
type tokenFile struct {
	Version   string    `yaml:"version"`
	Timestamp time.Time `yaml:"timestamp"`
	Endpoint  string    `yaml:"endpoint"`
	Token     string    `yaml:"token"`
}

// FileTokenStore keeps the token in <dir>/<api-host>.yaml, readable by the
// owner only.
type FileTokenStore struct {
	lock     sync.Mutex
	dir      string
	endpoint string
	hostname string
}

func NewFileTokenStore(dir, endpoint, hostname string) *FileTokenStore {
	return &FileTokenStore{
		dir:      dir,
		endpoint: endpoint,
		hostname: hostname,
	}
}

// Path returns the location of the token file.
func (s *FileTokenStore) Path() string {
	// colons are not valid in windows file names
	name := strings.NewReplacer(":", "_", "/", "_", "\\", "_").Replace(s.hostname)
	if len(name) == 0 {
		name = "default"
	}
	return filepath.Join(s.dir, fmt.Sprintf("%s.yaml", name))
}

func (s *FileTokenStore) Load() (string, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	path := s.Path()

	logrus.WithFields(logrus.Fields{
		"path": path,
	}).Debugln("Loading credential token")

	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNoToken
	} else if err != nil {
		return "", fmt.Errorf("open token file: %w", err)
	}
	defer file.Close()

	fileInfo, err := file.Stat()
	if err != nil {
		return "", fmt.Errorf("stat token file: %w", err)
	}

	if fileInfo.Size() == 0 {
		return "", ErrNoToken
	}

	var stored tokenFile
	if err := yaml.NewDecoder(file).Decode(&stored); err != nil {
		// A corrupt file is treated as an empty slot
		logrus.WithError(err).Warnf("Failed to parse token file %s, ignoring it", path)
		return "", ErrNoToken
	}

	token := strings.TrimSpace(stored.Token)
	if len(token) == 0 {
		return "", ErrNoToken
	}

	return token, nil
}

func (s *FileTokenStore) Save(token string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if len(strings.TrimSpace(token)) == 0 {
		return errors.New("refusing to persist an empty token")
	}

	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}

	// Only allow read/write access to the owner
	file, err := os.OpenFile(s.Path(), os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return fmt.Errorf("open token file: %w", err)
	}
	defer file.Close()

	if err := file.Chmod(0o600); err != nil {
		return fmt.Errorf("restrict token file: %w", err)
	}

	// Truncate the file to ensure clean write
	if err := file.Truncate(0); err != nil {
		return err
	}

	if _, err := file.Seek(0, 0); err != nil {
		return err
	}

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)
	defer encoder.Close()

	return encoder.Encode(tokenFile{
		Version:   tokenFileVersion,
		Timestamp: time.Now().UTC(),
		Endpoint:  s.endpoint,
		Token:     token,
	})
}

func (s *FileTokenStore) Delete() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	err := os.Remove(s.Path())
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove token file: %w", err)
	}
	return nil
}

// MemoryTokenStore keeps the token for the lifetime of the process only.
type MemoryTokenStore struct {
	lock  sync.Mutex
	token string
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{}
}

func (s *MemoryTokenStore) Load() (string, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if len(s.token) == 0 {
		return "", ErrNoToken
	}
	return s.token, nil
}

func (s *MemoryTokenStore) Save(token string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if len(strings.TrimSpace(token)) == 0 {
		return errors.New("refusing to persist an empty token")
	}
	s.token = token
	return nil
}

func (s *MemoryTokenStore) Delete() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.token = ""
	return nil
}
