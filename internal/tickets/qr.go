package tickets

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/skip2/go-qrcode"
)

const defaultQRSize = 256

type QRGenerator struct {
	publicBaseURL string
	size          int
}

func NewQRGenerator(publicBaseURL string, size int) *QRGenerator {
	if size <= 0 {
		size = defaultQRSize
	}
	return &QRGenerator{
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		size:          size,
	}
}

// Encode renders content as a PNG QR code.
func (g *QRGenerator) Encode(content string) ([]byte, error) {
	png, err := qrcode.Encode(content, qrcode.Medium, g.size)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR code: %w", err)
	}
	return png, nil
}

// URL is the public address that serves the QR image for content.
func (g *QRGenerator) URL(content string) string {
	return g.publicBaseURL + "/api/tickets/qr/" + url.PathEscape(content)
}

// GenerateQRCodes renders every content string and returns the PNG bytes and
// public URL of each, keyed by content.
func (g *QRGenerator) GenerateQRCodes(contents []string) (map[string][]byte, map[string]string, error) {
	images := make(map[string][]byte, len(contents))
	urls := make(map[string]string, len(contents))

	for _, content := range contents {
		png, err := g.Encode(content)
		if err != nil {
			return nil, nil, err
		}
		images[content] = png
		urls[content] = g.URL(content)
	}

	return images, urls, nil
}
