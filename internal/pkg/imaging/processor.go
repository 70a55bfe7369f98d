package imaging

import (
	"bytes"
	"fmt"
	"image/jpeg"
	"io"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
)

// Config for thumbnail generation
type Config struct {
	Width   int // thumbnail width in pixels
	Height  int // thumbnail height in pixels
	Quality int // JPEG quality 1-100
}

// DefaultConfig returns default processing config
func DefaultConfig() Config {
	return Config{
		Width:   300,
		Height:  400,
		Quality: 85,
	}
}

// Processor generates thumbnails from uploaded originals
type Processor struct {
	config Config
}

// NewProcessor creates image processor
func NewProcessor(config Config) *Processor {
	if config.Width <= 0 || config.Height <= 0 {
		config = DefaultConfig()
	}
	if config.Quality <= 0 || config.Quality > 100 {
		config.Quality = DefaultConfig().Quality
	}
	return &Processor{config: config}
}

// Thumbnail decodes reader, center-crops to the configured aspect ratio,
// resizes to the configured dimensions with Lanczos resampling and returns
// the result encoded as JPEG.
func (p *Processor) Thumbnail(reader io.Reader) ([]byte, error) {
	img, err := imaging.Decode(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	thumb := imaging.Fill(img, p.config.Width, p.config.Height, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: p.config.Quality}); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

// MakeThumbnail reads the image at srcPath and writes its thumbnail to
// dstPath, creating parent directories.
func (p *Processor) MakeThumbnail(srcPath, dstPath string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", srcPath, err)
	}
	defer src.Close()

	data, err := p.Thumbnail(src)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dstPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(dstPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write thumbnail: %w", err)
	}
	return nil
}
