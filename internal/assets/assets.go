// Package assets stores uploaded images and hands out the URLs they are served from.
package assets

import (
	"bytes"
	"context"
	"encoding/base64"
	"image/jpeg"
	"image/png"
	"log/slog"
	"path"
	"strings"

	"github.com/WingsGames/Neve-Or/internal/errors"
	"github.com/WingsGames/Neve-Or/internal/models"
)

var (
	ErrNotDataURL  = errors.NewSentinel("not a base64 data URL")
	ErrInvalidPath = errors.NewSentinel("invalid asset path")
)

const jpegQuality = 85

// Uploader stores an inline image and returns its remote URL.
type Uploader interface {
	Upload(ctx context.Context, dataURL string, path string) (string, error)
}

type Repository interface {
	Put(ctx context.Context, asset models.Asset) error
	Get(ctx context.Context, path string) (*models.Asset, error)
}

type Store struct {
	repo    Repository
	baseURL string
	logger  *slog.Logger
}

func NewStore(repo Repository, baseURL string, logger *slog.Logger) *Store {
	return &Store{
		repo:    repo,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  logger.With("source", "AssetStore"),
	}
}

// IsInline reports whether url embeds the image instead of pointing to an uploaded asset.
func IsInline(url string) bool {
	return strings.HasPrefix(url, "data:")
}

// ParseDataURL decodes a data:<type>;base64,<payload> URL.
func ParseDataURL(url string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(url, "data:")
	if !ok {
		return "", nil, ErrNotDataURL
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, ErrNotDataURL
	}
	contentType, ok := strings.CutSuffix(meta, ";base64")
	if !ok {
		return "", nil, ErrNotDataURL
	}
	if contentType == "" {
		contentType = "text/plain"
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, errors.Wrap(ErrNotDataURL, "decode base64 payload")
	}
	return contentType, data, nil
}

func cleanPath(p string) (string, error) {
	cleaned := path.Clean(p)
	if p == "" || cleaned != p || strings.HasPrefix(cleaned, "/") || strings.HasPrefix(cleaned, "..") {
		return "", errors.Wrap(ErrInvalidPath, "clean path", slog.String("path", p))
	}
	return cleaned, nil
}

// Upload stores the image at p. PNG images stored under a .jpg name are re-encoded as JPEG.
func (s *Store) Upload(ctx context.Context, dataURL string, p string) (string, error) {
	var (
		contentType string
		data        []byte
		err         error
	)
	if p, err = cleanPath(p); err != nil {
		return "", err
	}
	if contentType, data, err = ParseDataURL(dataURL); err != nil {
		return "", errors.Wrap(err, "parse upload")
	}
	if contentType == "image/png" && (strings.HasSuffix(p, ".jpg") || strings.HasSuffix(p, ".jpeg")) {
		if data, err = pngToJPEG(data); err != nil {
			return "", errors.Wrap(err, "convert to jpeg", slog.String("path", p))
		}
		contentType = "image/jpeg"
	}
	if err = s.repo.Put(ctx, models.Asset{Path: p, ContentType: contentType, Data: data}); err != nil {
		return "", errors.Wrap(err, "store asset")
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "uploaded asset", slog.String("path", p), slog.Int("bytes", len(data)))
	return s.baseURL + "/" + p, nil
}

// Get returns the stored asset at p.
func (s *Store) Get(ctx context.Context, p string) (*models.Asset, error) {
	var err error
	if p, err = cleanPath(p); err != nil {
		return nil, err
	}
	asset, err := s.repo.Get(ctx, p)
	if err != nil {
		return nil, errors.Wrap(err, "get asset")
	}
	return asset, nil
}

func pngToJPEG(data []byte) ([]byte, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "decode png")
	}
	var buf bytes.Buffer
	if err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, errors.Wrap(err, "encode jpeg")
	}
	return buf.Bytes(), nil
}
