package scans

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"prescription-reminder/internal/domain/medicines"
	"prescription-reminder/internal/platform/logger"
	"prescription-reminder/internal/platform/metrics"
	ocrport "prescription-reminder/internal/ports/ocr"

	"github.com/google/uuid"
)

var (
	ErrMissingImage      = errors.New("missing image")
	ErrMissingCredential = errors.New("missing ocr credential")
	ErrInvalidCredential = errors.New("invalid ocr credential")
	ErrOCRFailed         = errors.New("ocr failed")
	ErrEmptyText         = errors.New("empty extracted text")
)

const (
	SourceOCR    = "ocr"
	SourceSample = "sample"
	SourceText   = "text"
)

// Result del scan. Empty + OfferManualEntry cuando el OCR leyó algo pero no hubo medicinas.
type Result struct {
	ScanID           string                      `json:"scanId"`
	Source           string                      `json:"source"`
	RawText          string                      `json:"rawText,omitempty"`
	Strategy         string                      `json:"strategy,omitempty"`
	Medicines        []medicines.MedicineDetails `json:"medicines"`
	QuotaExceeded    bool                        `json:"quotaExceeded"`
	Empty            bool                        `json:"empty"`
	OfferManualEntry bool                        `json:"offerManualEntry"`
	CreatedAt        time.Time                   `json:"createdAt"`
}

type Service struct {
	ocr     ocrport.Extractor
	parser  *medicines.Parser
	prompt  string
	log     logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewService(ocr ocrport.Extractor, parser *medicines.Parser, log logger.Logger, m *metrics.Metrics) *Service {
	if parser == nil {
		parser = medicines.NewParser()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		ocr:     ocr,
		parser:  parser,
		prompt:  ocrport.DefaultPrompt,
		log:     log,
		metrics: m,
		now:     time.Now,
	}
}

// Scan: imagen -> OCR -> parser.
// Cuota agotada no es error: devuelve las medicinas de ejemplo marcadas como tales.
func (s *Service) Scan(ctx context.Context, img ocrport.Image) (Result, error) {
	if len(img.Data) == 0 {
		return Result{}, ErrMissingImage
	}
	if s.ocr == nil {
		s.metrics.OCR("missing_credential")
		return Result{}, ErrMissingCredential
	}

	text, err := s.ocr.Extract(ctx, img, s.prompt)
	if err != nil {
		return s.ocrFailure(err)
	}
	s.metrics.OCR("ok")

	text = strings.TrimSpace(text)
	if text == "" {
		return Result{}, ErrEmptyText
	}

	res := s.parse(text)
	res.Source = SourceOCR
	return res, nil
}

// ParseText corre solo el parser sobre texto ya extraído (pegado por el usuario).
func (s *Service) ParseText(text string) (Result, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Result{}, ErrEmptyText
	}
	res := s.parse(text)
	res.Source = SourceText
	return res, nil
}

func (s *Service) parse(text string) Result {
	meds, strategy := s.parser.ParseWithStrategy(text)
	s.metrics.Parsed(strategy)

	res := s.newResult()
	res.RawText = text
	res.Strategy = strategy
	res.Medicines = meds
	if len(meds) == 0 {
		res.Empty = true
		res.OfferManualEntry = true
		s.log.Info("scan parsed no medicines", map[string]any{"scan_id": res.ScanID, "chars": len(text)})
	} else {
		s.log.Info("scan parsed", map[string]any{"scan_id": res.ScanID, "strategy": strategy, "medicines": len(meds)})
	}
	return res
}

func (s *Service) ocrFailure(err error) (Result, error) {
	switch {
	case errors.Is(err, ocrport.ErrQuotaExceeded):
		s.metrics.OCR("quota")
		s.log.Warn("ocr quota exceeded, returning sample data", map[string]any{"error": err.Error()})

		res := s.newResult()
		res.Source = SourceSample
		res.QuotaExceeded = true
		res.Medicines = medicines.SampleMedicines()
		return res, nil
	case errors.Is(err, ocrport.ErrMissingCredential):
		s.metrics.OCR("missing_credential")
		return Result{}, ErrMissingCredential
	case errors.Is(err, ocrport.ErrUnauthorized):
		s.metrics.OCR("unauthorized")
		s.log.Warn("ocr rejected credential", map[string]any{"error": err.Error()})
		return Result{}, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	default:
		s.metrics.OCR("error")
		s.log.Error("ocr failed", map[string]any{"error": err.Error()})
		return Result{}, fmt.Errorf("%w: %v", ErrOCRFailed, err)
	}
}

func (s *Service) newResult() Result {
	return Result{
		ScanID:    uuid.NewString(),
		Medicines: []medicines.MedicineDetails{},
		CreatedAt: s.now().UTC(),
	}
}

// UserMessage traduce un error del scan a un mensaje corto para el usuario.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingImage):
		return "Please choose a photo of your prescription first."
	case errors.Is(err, ErrMissingCredential):
		return "Text recognition is not set up yet. Add an OCR API key and try again."
	case errors.Is(err, ErrInvalidCredential):
		return "The OCR API key was rejected. Check the key and try again."
	case errors.Is(err, ErrEmptyText):
		return "No text could be read from the image. Try a clearer, well-lit photo."
	case errors.Is(err, ErrOCRFailed):
		return "Could not reach the text recognition service. Please try again."
	default:
		return "Something went wrong while scanning. Please try again."
	}
}

// Retryable indica si conviene ofrecer "reintentar".
func Retryable(err error) bool {
	return errors.Is(err, ErrOCRFailed)
}
