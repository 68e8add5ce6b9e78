package render

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

const defaultQRSize = 256

// QR encodes the public verification link as a PNG image.
func (r *Renderer) QR(certID int64, size int) ([]byte, error) {
	if size <= 0 {
		size = defaultQRSize
	}
	png, err := qrcode.Encode(r.ShareURL(certID), qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return png, nil
}
