// Package upload implements the presigned upload scheme: the server hands
// out short-lived signed PUT URLs so clients can push image bytes without
// carrying their auth token into the upload path.
package upload

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// DefaultTTL is how long a presigned URL stays valid.
const DefaultTTL = 15 * time.Minute

// Errors callers branch on when verifying a signed request.
var (
	ErrExpired    = errors.New("upload url expired")
	ErrBadSig     = errors.New("invalid upload signature")
	ErrInvalidKey = errors.New("invalid upload key")
)

// keyPattern matches server-generated keys only: a UUID plus the .jpg
// extension. Anything else is rejected before touching the filesystem.
var keyPattern = regexp.MustCompile(`^[a-f0-9-]+\.jpg$`)

// Service signs and verifies upload URLs and stores the uploaded files.
type Service struct {
	Dir     string
	BaseURL string
	TTL     time.Duration

	secret []byte
}

// NewService creates an upload service. baseURL is the public prefix
// clients will resolve upload and image URLs against. A zero ttl falls
// back to DefaultTTL.
func NewService(dir, baseURL, secret string, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{
		Dir:     dir,
		BaseURL: baseURL,
		TTL:     ttl,
		secret:  []byte(secret),
	}
}

// Target is one presigned upload slot: where to PUT the bytes and the
// stable URL the image will be served from afterwards.
type Target struct {
	Key       string `json:"-"`
	UploadURL string `json:"uploadUrl"`
	ImageURL  string `json:"imageUrl"`
}

// Presign allocates a fresh key and returns a signed upload slot. The
// original file name is ignored beyond existing at all; every stored
// image is re-encoded to JPEG, so the key always carries .jpg.
func (s *Service) Presign(fileName string, now time.Time) (Target, error) {
	if fileName == "" {
		return Target{}, errors.New("file name required")
	}

	key := uuid.NewString() + ".jpg"
	exp := now.Add(s.TTL).Unix()
	sig := s.sign(key, exp)

	query := url.Values{}
	query.Set("exp", strconv.FormatInt(exp, 10))
	query.Set("sig", sig)

	return Target{
		Key:       key,
		UploadURL: s.BaseURL + "/uploads/" + key + "?" + query.Encode(),
		ImageURL:  s.BaseURL + "/uploads/" + key,
	}, nil
}

// Verify checks a signed upload request. The signature covers the key and
// expiry, so neither can be swapped after signing.
func (s *Service) Verify(key string, exp int64, sig string, now time.Time) error {
	if !keyPattern.MatchString(key) {
		return ErrInvalidKey
	}
	if !hmac.Equal([]byte(s.sign(key, exp)), []byte(sig)) {
		return ErrBadSig
	}
	if now.Unix() > exp {
		return ErrExpired
	}
	return nil
}

// Store writes processed image bytes under the given key.
func (s *Service) Store(key string, data []byte) error {
	if !keyPattern.MatchString(key) {
		return ErrInvalidKey
	}
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return fmt.Errorf("creating upload directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.Dir, key), data, 0644); err != nil {
		return fmt.Errorf("storing upload: %w", err)
	}
	return nil
}

// FilePath returns the on-disk path for a stored key, for serving.
func (s *Service) FilePath(key string) (string, error) {
	if !keyPattern.MatchString(key) {
		return "", ErrInvalidKey
	}
	return filepath.Join(s.Dir, key), nil
}

func (s *Service) sign(key string, exp int64) string {
	mac := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(mac, "%s\n%d", key, exp)
	return hex.EncodeToString(mac.Sum(nil))
}
