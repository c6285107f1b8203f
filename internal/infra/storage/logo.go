package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/chai2010/webp"
	"github.com/google/uuid"
	"golang.org/x/image/draw"
)

const (
	MaxLogoBytes = 5 << 20
	MaxLogoWidth = 512
)

var ErrInvalidImage = errors.New("invalid_image")

// LogoStore normalises uploaded logos to webp and stores them under
// logos/<barbershop>/<uuid>.webp.
type LogoStore struct {
	store ObjectStore
}

func NewLogoStore(store ObjectStore) *LogoStore {
	return &LogoStore{store: store}
}

func (l *LogoStore) Upload(ctx context.Context, barbershopID uint, r io.Reader) (string, error) {
	raw, err := io.ReadAll(io.LimitReader(r, MaxLogoBytes+1))
	if err != nil {
		return "", err
	}
	if len(raw) > MaxLogoBytes {
		return "", ErrInvalidImage
	}

	body, err := NormalizeLogo(raw)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("logos/%d/%s.webp", barbershopID, uuid.NewString())
	if err := l.store.Put(ctx, key, "image/webp", body); err != nil {
		return "", err
	}
	return key, nil
}

func (l *LogoStore) URL(key string) string {
	return l.store.URL(key)
}

// NormalizeLogo decodes any supported image, scales it down to
// MaxLogoWidth keeping the aspect ratio and re-encodes it as webp.
func NormalizeLogo(raw []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, ErrInvalidImage
	}

	b := img.Bounds()
	if b.Dx() > MaxLogoWidth {
		h := b.Dy() * MaxLogoWidth / b.Dx()
		if h < 1 {
			h = 1
		}
		dst := image.NewRGBA(image.Rect(0, 0, MaxLogoWidth, h))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("encode webp: %w", err)
	}
	return buf.Bytes(), nil
}
