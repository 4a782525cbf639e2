// Package media addresses product photos in object storage and issues read URLs for them.
package media

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/fekuna/omnipos-retail-service/internal/apperr"
	"github.com/golang-jwt/jwt/v4"
)

const DefaultSignedTTL = 3600 * time.Second

var (
	ErrInvalidToken = apperr.Unauthorized("InvalidMediaToken", "invalid or expired media link")
	ErrForeignURL   = apperr.Validation("InvalidMediaToken", "url does not point to the media bucket")
)

type Config struct {
	BaseURL   string
	Bucket    string
	Public    bool
	SignedTTL time.Duration
	SecretKey string
}

type Signer struct {
	cfg Config
	now func() time.Time
}

func NewSigner(cfg Config) *Signer {
	if cfg.SignedTTL <= 0 {
		cfg.SignedTTL = DefaultSignedTTL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Signer{cfg: cfg, now: time.Now}
}

// ObjectPath names a photo "<product>_<variant>_<unix-ms>.<ext>". The variant part is
// omitted for product-level photos.
func ObjectPath(productID, variantID, ext string, now time.Time) string {
	ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
	if ext == "" {
		ext = "jpg"
	}
	if variantID == "" {
		return fmt.Sprintf("%s_%d.%s", productID, now.UnixMilli(), ext)
	}
	return fmt.Sprintf("%s_%s_%d.%s", productID, variantID, now.UnixMilli(), ext)
}

type claims struct {
	jwt.RegisteredClaims
}

// URL returns a read URL for path: a public URL with a cache-busting ?v= when the bucket is
// public, otherwise a URL carrying a signed token that expires after SignedTTL.
func (s *Signer) URL(path string) (string, error) {
	now := s.now()
	base := s.objectURL(path)
	if s.cfg.Public {
		return fmt.Sprintf("%s?v=%d", base, now.UnixMilli()), nil
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   path,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.SignedTTL)),
		},
	}).SignedString([]byte(s.cfg.SecretKey))
	if err != nil {
		return "", apperr.Internal(err, "failed to sign media url")
	}
	return fmt.Sprintf("%s?token=%s", base, url.QueryEscape(token)), nil
}

// Verify checks that token was issued for path and has not expired.
func (s *Signer) Verify(path, token string) error {
	parsed, err := jwt.ParseWithClaims(token, &claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.cfg.SecretKey), nil
	})
	if err != nil {
		return apperr.Wrap(err, apperr.KindUnauthorized, "InvalidMediaToken", "invalid or expired media link")
	}
	c, ok := parsed.Claims.(*claims)
	if !ok || !parsed.Valid || c.Subject != path {
		return ErrInvalidToken
	}
	return nil
}

// ExtractPath recovers the object path from a URL issued by URL, ignoring its query.
func (s *Signer) ExtractPath(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", ErrForeignURL
	}
	marker := "/" + s.cfg.Bucket + "/"
	idx := strings.Index(u.Path, marker)
	if idx < 0 {
		return "", ErrForeignURL
	}
	path := u.Path[idx+len(marker):]
	if path == "" {
		return "", ErrForeignURL
	}
	return path, nil
}

func (s *Signer) objectURL(path string) string {
	return fmt.Sprintf("%s/%s/%s", s.cfg.BaseURL, s.cfg.Bucket, strings.TrimLeft(path, "/"))
}
