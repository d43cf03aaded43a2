// Package ocr extracts text from uploaded medical document images.
package ocr

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	lru "github.com/hashicorp/golang-lru"
	"github.com/otiai10/gosseract/v2"
	"github.com/sirupsen/logrus"

	"github.com/glucoscholar-server/internal/domain"
)

const defaultCacheSize = 128

// Extractor runs Tesseract OCR over image files, caching results by
// image content so re-submitted documents are not re-processed. The
// cache key is a digest of the file bytes, not the path; upload
// handlers write each request to a fresh temp file and still hit.
type Extractor struct {
	log       *logrus.Logger
	languages []string
	cache     *lru.Cache

	// run performs the actual OCR pass. Swappable in tests.
	run func(imagePath string) (string, error)
}

// NewExtractor creates a Tesseract-backed text extractor.
func NewExtractor(logger *logrus.Logger, languages []string, cacheSize int) (*Extractor, error) {
	if cacheSize <= 0 {
		cacheSize = defaultCacheSize
	}
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating OCR cache: %w", err)
	}

	e := &Extractor{
		log:       logger,
		languages: languages,
		cache:     cache,
	}
	e.run = e.runTesseract
	return e, nil
}

// ExtractText runs OCR over the image at the given path and returns the
// recognized text.
func (e *Extractor) ExtractText(ctx context.Context, imagePath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	image, err := os.ReadFile(imagePath)
	if err != nil {
		return "", domain.NewAppError(domain.ErrExternalService,
			"image file not accessible", err.Error(), "")
	}

	digest := sha256.Sum256(image)
	key := hex.EncodeToString(digest[:])
	if cached, ok := e.cache.Get(key); ok {
		e.log.WithField("image", imagePath).Debug("OCR cache hit")
		return cached.(string), nil
	}

	text, err := e.run(imagePath)
	if err != nil {
		return "", domain.NewAppError(domain.ErrExternalService,
			"OCR processing failed", err.Error(), "")
	}

	text = strings.TrimSpace(text)
	e.cache.Add(key, text)

	e.log.WithFields(logrus.Fields{
		"image": imagePath,
		"chars": len(text),
	}).Info("Extracted text from image")

	return text, nil
}

// runTesseract performs one OCR pass with a fresh client. gosseract
// clients are not safe for concurrent use, so one is created per call.
func (e *Extractor) runTesseract(imagePath string) (string, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if len(e.languages) > 0 {
		if err := client.SetLanguage(e.languages...); err != nil {
			return "", fmt.Errorf("setting OCR languages: %w", err)
		}
	}
	if err := client.SetImage(imagePath); err != nil {
		return "", fmt.Errorf("loading image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("recognizing text: %w", err)
	}
	return text, nil
}
