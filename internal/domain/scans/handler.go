package scans

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	ocrport "prescription-reminder/internal/ports/ocr"

	"github.com/go-chi/chi/v5"
)

// MaxImageSize limita el upload de la foto.
const MaxImageSize = 10 << 20

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/scans", func(rr chi.Router) {
		rr.Post("/", scanHandler(svc))
		rr.Post("/text", parseTextHandler(svc))
	})
}

type parseTextRequest struct {
	Text string `json:"text"`
}

type errorResponse struct {
	Error     string `json:"error"`
	Retryable bool   `json:"retryable"`
}

// scanHandler godoc
// @Summary Escanear receta
// @Description Sube la foto (campo multipart "image"), extrae el texto y lo convierte en medicinas.
// @Description Con cuota agotada devuelve medicinas de ejemplo con quotaExceeded=true.
// @Tags scans
// @Accept multipart/form-data
// @Produce json
// @Param image formData file true "Foto de la receta"
// @Success 200 {object} Result
// @Failure 400 {object} errorResponse
// @Failure 413 {object} errorResponse
// @Failure 422 {object} errorResponse
// @Failure 502 {object} errorResponse
// @Router /scans [post]
func scanHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, MaxImageSize+(1<<20))

		img, err := readImage(r)
		if err != nil {
			var tooBig *http.MaxBytesError
			if errors.As(err, &tooBig) {
				writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "The photo is too large. Please use an image under 10 MB."})
				return
			}
			writeError(w, ErrMissingImage)
			return
		}

		res, err := svc.Scan(r.Context(), img)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// parseTextHandler godoc
// @Summary Interpretar texto de receta
// @Description Corre solo el parser sobre texto ya extraído.
// @Tags scans
// @Accept json
// @Produce json
// @Param payload body parseTextRequest true "Texto"
// @Success 200 {object} Result
// @Failure 400 {object} errorResponse
// @Failure 422 {object} errorResponse
// @Router /scans/text [post]
func parseTextHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req parseTextRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid json"})
			return
		}
		res, err := svc.ParseText(req.Text)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func readImage(r *http.Request) (ocrport.Image, error) {
	if err := r.ParseMultipartForm(MaxImageSize); err != nil {
		return ocrport.Image{}, err
	}
	f, hdr, err := r.FormFile("image")
	if err != nil {
		return ocrport.Image{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxImageSize+1))
	if err != nil {
		return ocrport.Image{}, err
	}
	if len(data) > MaxImageSize {
		return ocrport.Image{}, &http.MaxBytesError{Limit: MaxImageSize}
	}

	mime := hdr.Header.Get("Content-Type")
	if mime == "" || mime == "application/octet-stream" {
		mime = http.DetectContentType(data)
	}
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	return ocrport.Image{Data: data, MimeType: mime}, nil
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrMissingImage),
		errors.Is(err, ErrMissingCredential),
		errors.Is(err, ErrInvalidCredential):
		status = http.StatusBadRequest
	case errors.Is(err, ErrEmptyText):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, ErrOCRFailed):
		status = http.StatusBadGateway
	}
	writeJSON(w, status, errorResponse{Error: UserMessage(err), Retryable: Retryable(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
