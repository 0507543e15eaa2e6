package totp

import (
	"encoding/base64"
	"errors"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// defaultQRSize is the image size in pixels used when no size is specified.
const defaultQRSize = 256

// ProvisioningQRCode renders the otpauth provisioning URI for the given
// parameters as a PNG QR code, ready to be scanned by authenticator apps.
func ProvisioningQRCode(params Params, size int) ([]byte, error) {
	uri, err := ProvisioningURI(params)
	if err != nil {
		return nil, err
	}
	if size <= 0 {
		size = defaultQRSize
	}

	png, err := qrcode.Encode(uri, qrcode.Medium, size)
	if err != nil {
		return nil, errors.Join(ErrFailedToGenerateQRCode, err)
	}
	return png, nil
}

// ProvisioningQRCodeBase64 renders the provisioning QR code as a data URI for
// direct embedding in an <img> tag.
func ProvisioningQRCodeBase64(params Params, size int) (string, error) {
	png, err := ProvisioningQRCode(params, size)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("data:image/png;base64,%s", base64.StdEncoding.EncodeToString(png)), nil
}
