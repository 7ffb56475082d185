package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a requested profile does not exist.
var ErrNotFound = errors.New("profile not found")

// ErrInvalidUserID is returned for empty ids or ids that cannot name a file.
var ErrInvalidUserID = errors.New("invalid user id")

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

// Store persists one JSON file per user id under <dataDir>/profiles.
// It is safe for use from a single process; there is no cross-process
// locking (last writer wins).
type Store struct {
	dir   string
	clock Clock
	rng   *rand.Rand

	mu sync.Mutex
}

// NewStore creates (if needed) the profile directory and returns a Store.
func NewStore(dataDir string) (*Store, error) {
	dir := filepath.Join(dataDir, "profiles")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating profile directory: %w", err)
	}
	return &Store{
		dir:   dir,
		clock: realClock{},
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// NewStoreWithSeed creates a Store with a fixed clock and rand seed (for testing).
func NewStoreWithSeed(dataDir string, clock Clock, seed int64) (*Store, error) {
	s, err := NewStore(dataDir)
	if err != nil {
		return nil, err
	}
	s.clock = clock
	s.rng = rand.New(rand.NewSource(seed))
	return s, nil
}

// GetOrCreate returns the stored profile for userID, creating one with mock
// defaults if none exists. An empty userID generates a fresh short id.
// A file that exists but does not parse as JSON is treated as absent and
// replaced with a fresh default; a warning is logged since this discards
// whatever was in the file.
func (s *Store) GetOrCreate(userID string) (Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if userID == "" {
		userID = uuid.New().String()[:8]
	}

	path, err := s.path(userID)
	if err != nil {
		return Profile{}, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s.createDefault(userID, path)
	}
	if err != nil {
		return Profile{}, fmt.Errorf("reading profile %s: %w", userID, err)
	}

	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		slog.Warn("malformed profile file, replacing with defaults", "user_id", userID, "error", err)
		return s.createDefault(userID, path)
	}
	p.UserID = userID
	return p, nil
}

// Get returns the stored profile for userID without creating one.
// Malformed files are reported as absent.
func (s *Store) Get(userID string) (Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(userID)
}

// Update rewrites a single profile field and persists the record.
// List fields (interests, preferred_topics) accept comma-separated values.
func (s *Store) Update(userID, field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.read(userID)
	if err != nil {
		return err
	}

	switch field {
	case "name":
		p.Name = value
	case "city":
		p.City = value
	case "profession":
		p.Profession = value
	case "expertise_level":
		p.ExpertiseLevel = value
	case "interests":
		p.Interests = splitList(value)
	case "preferred_topics":
		p.PreferredTopics = splitList(value)
	default:
		return fmt.Errorf("unknown profile field %q (valid: name, city, profession, expertise_level, interests, preferred_topics)", field)
	}

	p.LastUpdated = s.clock.Now()
	return s.write(p)
}

// IncrementInteraction bumps the interaction counter and persists.
func (s *Store) IncrementInteraction(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.read(userID)
	if err != nil {
		return err
	}
	p.InteractionCount++
	p.LastUpdated = s.clock.Now()
	return s.write(p)
}

// List returns the stored user ids in sorted order.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("listing profiles: %w", err)
	}

	var ids []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(ids)
	return ids, nil
}

// Delete removes a stored profile.
func (s *Store) Delete(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path, err := s.path(userID)
	if err != nil {
		return err
	}
	if err := os.Remove(path); os.IsNotExist(err) {
		return ErrNotFound
	} else if err != nil {
		return fmt.Errorf("deleting profile %s: %w", userID, err)
	}
	return nil
}

func (s *Store) createDefault(userID, path string) (Profile, error) {
	p := s.newDefault(userID)
	if err := s.write(p); err != nil {
		return Profile{}, err
	}
	return p, nil
}

func (s *Store) read(userID string) (Profile, error) {
	path, err := s.path(userID)
	if err != nil {
		return Profile{}, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Profile{}, ErrNotFound
	}
	if err != nil {
		return Profile{}, fmt.Errorf("reading profile %s: %w", userID, err)
	}

	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return Profile{}, ErrNotFound
	}
	p.UserID = userID
	return p, nil
}

func (s *Store) write(p Profile) error {
	path, err := s.path(p.UserID)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling profile %s: %w", p.UserID, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing profile %s: %w", p.UserID, err)
	}
	return nil
}

// path maps a user id to its file, rejecting ids that would escape the
// profile directory.
func (s *Store) path(userID string) (string, error) {
	if userID == "" || userID != filepath.Base(userID) || strings.HasPrefix(userID, ".") {
		return "", fmt.Errorf("%w: %q", ErrInvalidUserID, userID)
	}
	return filepath.Join(s.dir, userID+".json"), nil
}

func splitList(value string) []string {
	var out []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
