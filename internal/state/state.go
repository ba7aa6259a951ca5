package state

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"hash/crc32"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/denisbrodbeck/machineid"
	"github.com/vinser/bounce/internal/board"
	"github.com/vinser/bounce/internal/daylight"
	"github.com/vinser/bounce/internal/grid"
)

const appID = "bounce"

// Defaults
const (
	DefaultWidth    = 21
	DefaultHeight   = 15
	DefaultStartCol = 7
	DefaultStartRow = 7
)

var (
	ErrCorrupt     = errors.New("state: file corrupt")
	ErrChecksum    = errors.New("state: checksum mismatch")
	ErrNoSavePath  = errors.New("state: no save path")
	ErrCipherShort = errors.New("ciphertext too short")
)

// State holds persistent settings and the last captured grid snapshot.
type State struct {
	MoveDelayMs int64             `json:"move_delay_ms"` // Milliseconds between advances
	Width       int               `json:"width"`         // Grid width in tiles
	Height      int               `json:"height"`        // Grid height in tiles
	StartCol    int               `json:"start_col"`     // Start tile column for a new run
	StartRow    int               `json:"start_row"`     // Start tile row for a new run
	SpriteSize  string            `json:"sprite_size"`   // Sprite size: small, medium, large
	Theme       string            `json:"theme"`         // Board light: day, night or real
	Mute        bool              `json:"mute"`          // Mute all sounds
	Location    daylight.Location `json:"location"`      // Where the real theme measures light
	Snapshot    grid.Snapshot     `json:"snapshot,omitempty"`

	path string
}

var encryptionKey = generateKey()

// generateKey creates a 32-byte AES key from system-specific data.
func generateKey() []byte {
	id, err := machineid.ProtectedID(appID)
	if err != nil {
		id = "default-bounce-id" // Fallback if machine ID fails
	}
	sum := sha256.Sum256([]byte(id))
	return sum[:]
}

// New returns default settings that save to path.
func New(path string) *State {
	return &State{
		MoveDelayMs: grid.DefaultMoveDelay.Milliseconds(),
		Width:       DefaultWidth,
		Height:      DefaultHeight,
		StartCol:    DefaultStartCol,
		StartRow:    DefaultStartRow,
		SpriteSize:  board.SpriteDefault,
		Theme:       daylight.ThemeDefault,
		path:        path,
	}
}

// Load reads the state at path. A missing file yields defaults and no error.
// Any other failure yields defaults together with the error, so callers can
// log it and carry on.
func Load(path string) (*State, error) {
	encrypted, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return New(path), nil
	}
	if err != nil {
		return New(path), err
	}

	decrypted, err := decrypt(encrypted)
	if err != nil {
		return New(path), fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if len(decrypted) < 5 {
		return New(path), ErrCorrupt
	}
	crcStored := binary.LittleEndian.Uint32(decrypted[:4])
	payload := decrypted[4:]
	if crc32.ChecksumIEEE(payload) != crcStored {
		return New(path), ErrChecksum
	}

	s := New(path)
	if err := json.Unmarshal(payload, s); err != nil {
		return New(path), fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	s.Normalize()
	return s, nil
}

// Save persists the state to its path, encrypted with an integrity check.
func (s *State) Save() error {
	if s.path == "" {
		return ErrNoSavePath
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}

	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}

	// Prepend CRC32 checksum
	crc := crc32.ChecksumIEEE(raw)
	data := make([]byte, 4+len(raw))
	binary.LittleEndian.PutUint32(data[:4], crc)
	copy(data[4:], raw)

	encrypted, err := encrypt(data)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, encrypted, 0644)
}

// Path returns where the state is saved.
func (s *State) Path() string {
	return s.path
}

// SaveSnapshot stores snap and persists the state.
func (s *State) SaveSnapshot(snap grid.Snapshot) error {
	s.Snapshot = snap
	return s.Save()
}

// Normalize replaces out of range settings with defaults.
func (s *State) Normalize() {
	d := New(s.path)
	if s.MoveDelayMs <= 0 || s.MoveDelayMs > grid.MaxMoveDelayMs {
		s.MoveDelayMs = d.MoveDelayMs
	}
	if s.Width < 3 || s.Height < 3 {
		s.Width, s.Height = d.Width, d.Height
	}
	if s.StartCol < 0 || s.StartCol >= s.Width || s.StartRow < 0 || s.StartRow >= s.Height {
		s.StartCol, s.StartRow = min(d.StartCol, s.Width-1), min(d.StartRow, s.Height-1)
	}
	switch s.SpriteSize {
	case board.SpriteSmall, board.SpriteMedium, board.SpriteLarge:
	default:
		s.SpriteSize = d.SpriteSize
	}
	switch s.Theme {
	case daylight.ThemeDay, daylight.ThemeNight, daylight.ThemeReal:
	default:
		s.Theme = d.Theme
	}
}

// DefaultPath returns the save file inside the user config directory.
func DefaultPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, appID, "state.dat"), nil
}

// ======================
// 🔐 AES Encryption
// ======================

func encrypt(plain []byte) ([]byte, error) {
	block, err := aes.NewCipher(encryptionKey)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plain, nil), nil
}

func decrypt(ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(encryptionKey)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, ErrCipherShort
	}
	return gcm.Open(nil, ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():], nil)
}
