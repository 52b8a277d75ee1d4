package ocr

import (
	"context"
	"errors"
)

var (
	ErrMissingCredential = errors.New("ocr credential not configured")
	ErrQuotaExceeded     = errors.New("ocr quota exceeded")
	ErrUnauthorized      = errors.New("ocr unauthorized")
	ErrUpstream          = errors.New("ocr upstream error")
)

// Image es la foto de la receta tal como llega del cliente.
type Image struct {
	Data     []byte
	MimeType string
}

// Extractor envía imagen + prompt a un modelo de visión y devuelve el texto crudo.
// Errores: ErrMissingCredential, ErrQuotaExceeded, ErrUnauthorized o ErrUpstream (envueltos).
type Extractor interface {
	Extract(ctx context.Context, img Image, prompt string) (string, error)
}

// DefaultPrompt es el prompt fijo que acompaña cada imagen.
const DefaultPrompt = `Extract every medicine from this prescription image.
For each medicine output a block exactly like:

**<Medicine name and strength>**
  * Dosage: <dosage as written, e.g. 1-0-1 tablet>
  * Duration: <duration as written, e.g. 5 days>

Output only the blocks, no commentary. If no medicine is readable, output nothing.`
