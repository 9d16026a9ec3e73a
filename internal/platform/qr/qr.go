// Package qr renders shareable links as QR images. Pure encoding: no
// authorization or audit state is touched here.
package qr

import (
	"encoding/base64"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

const defaultSize = 256

// Encoder renders URLs into PNG data URLs suitable for inline <img> use.
type Encoder struct {
	size int
}

// NewEncoder builds an encoder with the default image size.
func NewEncoder() *Encoder {
	return &Encoder{size: defaultSize}
}

// DataURL encodes url as a PNG QR code and returns it as a base64 data URL.
func (e *Encoder) DataURL(url string) (string, error) {
	png, err := qrcode.Encode(url, qrcode.Medium, e.size)
	if err != nil {
		return "", fmt.Errorf("encode qr: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
