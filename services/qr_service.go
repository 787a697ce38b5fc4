package services

import (
	"encoding/base64"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// Taille en pixels du PNG généré
const qrSize = 256

// QRService encode les identifiants d'inscription en QR code
type QRService struct {
	size int
}

// NewQRService crée une nouvelle instance de QRService
func NewQRService() *QRService {
	return &QRService{size: qrSize}
}

// DataURL retourne le QR code de content sous forme de data URL PNG
func (s *QRService) DataURL(content string) (string, error) {
	png, err := qrcode.Encode(content, qrcode.Medium, s.size)
	if err != nil {
		return "", fmt.Errorf("erreur lors de la génération du QR code: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
