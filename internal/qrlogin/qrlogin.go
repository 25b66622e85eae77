// Package qrlogin generates the "scan to sign in" QR codes offered next to
// the credential form.
package qrlogin

import (
	"encoding/json"

	"storefront/config"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/skip2/go-qrcode"
)

const (
	defaultSize = 200

	payloadType = "sign_in"
)

// Payload is the JSON content encoded into a sign-in QR code. The mobile app
// scans it and completes the sign-in against the API.
type Payload struct {
	Nonce string `json:"nonce"`
	Type  string `json:"type"`
}

// Generator renders sign-in QR codes as PNGs.
type Generator struct {
	size  int
	level qrcode.RecoveryLevel
}

// New creates a Generator from config; nil config falls back to defaults.
func New(cfg *config.QRCodeConfig) *Generator {
	size := defaultSize
	level := qrcode.Medium

	if cfg != nil {
		if cfg.Size > 0 {
			size = cfg.Size
		}
		switch cfg.ErrorCorrectionLevel {
		case "L":
			level = qrcode.Low
		case "M":
			level = qrcode.Medium
		case "Q":
			level = qrcode.High
		case "H":
			level = qrcode.Highest
		}
	}

	return &Generator{size: size, level: level}
}

// Generate produces a PNG QR code carrying a fresh sign-in payload, and
// returns the payload so the caller can correlate the eventual sign-in.
func (g *Generator) Generate() ([]byte, *Payload, error) {
	payload := &Payload{
		Nonce: uuid.New().String(),
		Type:  payloadType,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to marshal QR payload")
	}

	code, err := qrcode.New(string(data), g.level)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to create QR code")
	}

	png, err := code.PNG(g.size)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to render QR PNG")
	}

	return png, payload, nil
}

// Parse decodes a scanned QR payload and validates its type.
func Parse(raw string) (*Payload, error) {
	var payload Payload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, errors.Wrap(err, "failed to decode QR payload")
	}
	if payload.Type != payloadType {
		return nil, errors.Errorf("unexpected QR payload type: %s", payload.Type)
	}

	return &payload, nil
}
