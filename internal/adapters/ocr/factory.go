package ocr

import (
	"fmt"

	"prescription-reminder/internal/adapters/ocr/gemini"
	"prescription-reminder/internal/adapters/ocr/vlm"
	"prescription-reminder/internal/platform/config"
	"prescription-reminder/internal/platform/logger"
	ocrport "prescription-reminder/internal/ports/ocr"
)

// New arma el extractor según OCR_PROVIDER: proveedor -> rate limit -> cache.
// Sin API key devuelve igual un extractor: cada llamada falla con ErrMissingCredential.
func New(cfg *config.Config, log logger.Logger) (ocrport.Extractor, error) {
	var (
		base ocrport.Extractor
		err  error
	)

	switch cfg.OCRProvider {
	case config.OCRProviderGemini:
		base = gemini.NewClient(gemini.Config{
			APIKey:  cfg.OCRAPIKey,
			Model:   cfg.OCRModel,
			BaseURL: cfg.OCRBaseURL,
			Timeout: cfg.OCRTimeout,
		})
	case config.OCRProviderHTTP, "":
		base, err = vlm.NewClient(vlm.Config{
			BaseURL: cfg.OCRBaseURL,
			APIKey:  cfg.OCRAPIKey,
			Model:   cfg.OCRModel,
			Timeout: cfg.OCRTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("ocr: %w", err)
		}
	default:
		return nil, fmt.Errorf("ocr: unknown provider %q", cfg.OCRProvider)
	}

	ex := base
	if cfg.OCRRatePerMin > 0 {
		ex = NewRateLimited(ex, cfg.OCRRatePerMin, 1)
	}
	if cfg.OCRCacheSize > 0 {
		if ex, err = NewCached(ex, cfg.OCRCacheSize); err != nil {
			return nil, err
		}
	}

	if cfg.OCRAPIKey == "" {
		log.Warn("OCR_API_KEY not set: scans will ask for a credential", map[string]any{"provider": cfg.OCRProvider})
	} else {
		log.Info("ocr configured", map[string]any{
			"provider":     cfg.OCRProvider,
			"model":        cfg.OCRModel,
			"rate_per_min": cfg.OCRRatePerMin,
			"cache_size":   cfg.OCRCacheSize,
		})
	}
	return ex, nil
}
