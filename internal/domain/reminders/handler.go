package reminders

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"prescription-reminder/internal/domain/medicines"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/reminders", func(rr chi.Router) {
		rr.Get("/", listRemindersHandler(svc))
		rr.Post("/", createReminderHandler(svc))
		rr.Delete("/", deleteAllRemindersHandler(svc))

		// Confirmación del resultado de un scan
		rr.Post("/batch", createBatchHandler(svc))

		rr.Get("/{reminderID}", getReminderHandler(svc))
		rr.Patch("/{reminderID}", updateReminderHandler(svc))
		rr.Delete("/{reminderID}", deleteReminderHandler(svc))
	})
}

type createReminderRequest struct {
	MedicineName string  `json:"medicineName"`
	Dosage       string  `json:"dosage"`
	Frequency    int     `json:"frequency"` // horas
	Duration     int     `json:"duration"`  // días
	Notes        *string `json:"notes"`
}

type createBatchRequest struct {
	// scanId del resultado; repetir el mismo id no duplica reminders
	ScanID    string                      `json:"scanId"`
	Medicines []medicines.MedicineDetails `json:"medicines"`
}

type updateReminderRequest struct {
	MedicineName *string    `json:"medicineName"`
	Dosage       *string    `json:"dosage"`
	Frequency    *int       `json:"frequency"`
	Duration     *int       `json:"duration"`
	Notes        *string    `json:"notes"`
	NextDue      *time.Time `json:"nextDue"` // RFC3339; si falta se recalcula
}

// listRemindersHandler godoc
// @Summary Listar recordatorios
// @Description Devuelve todos los recordatorios ordenados por próxima toma.
// @Tags reminders
// @Produce json
// @Success 200 {array} Reminder
// @Failure 500 {string} string "could not load reminders"
// @Router /reminders [get]
func listRemindersHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.List(r.Context())
		if err != nil {
			http.Error(w, "could not load reminders, please try again", http.StatusInternalServerError)
			return
		}
		if items == nil {
			items = []Reminder{}
		}
		writeJSON(w, http.StatusOK, items)
	}
}

// createReminderHandler godoc
// @Summary Crear recordatorio manual
// @Description Alta manual. nextDue = ahora + frequency horas.
// @Tags reminders
// @Accept json
// @Produce json
// @Param payload body createReminderRequest true "Datos del recordatorio"
// @Success 201 {object} Reminder
// @Failure 400 {string} string "invalid json / reglas de negocio"
// @Failure 500 {string} string "could not save reminder"
// @Router /reminders [post]
func createReminderHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createReminderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		rem, err := svc.CreateManual(r.Context(), CreateInput{
			MedicineName: req.MedicineName,
			Dosage:       req.Dosage,
			Frequency:    req.Frequency,
			Duration:     req.Duration,
			Notes:        req.Notes,
		})
		if err != nil {
			writeError(w, err, "could not save reminder, please try again")
			return
		}

		writeJSON(w, http.StatusCreated, rem)
	}
}

// createBatchHandler godoc
// @Summary Confirmar medicamentos de un scan
// @Description Crea un recordatorio por medicamento. Idempotente por scanId: reintentos o envíos dobles devuelven el mismo set.
// @Tags reminders
// @Accept json
// @Produce json
// @Param payload body createBatchRequest true "Medicamentos (posiblemente editados) y scanId"
// @Success 201 {array} Reminder
// @Failure 400 {string} string "invalid json / lista vacía / reglas de negocio"
// @Failure 500 {string} string "could not save reminders"
// @Router /reminders/batch [post]
func createBatchHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createBatchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		items, err := svc.CreateFromDetails(r.Context(), req.ScanID, req.Medicines)
		if err != nil {
			writeError(w, err, "could not save reminders, please try again")
			return
		}

		writeJSON(w, http.StatusCreated, items)
	}
}

// getReminderHandler godoc
// @Summary Detalle de recordatorio
// @Tags reminders
// @Produce json
// @Param reminderID path string true "ID del recordatorio"
// @Success 200 {object} Reminder
// @Failure 404 {string} string "reminder not found"
// @Router /reminders/{reminderID} [get]
func getReminderHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rem, err := svc.GetByID(r.Context(), chi.URLParam(r, "reminderID"))
		if err != nil {
			writeError(w, err, "could not load reminder, please try again")
			return
		}
		writeJSON(w, http.StatusOK, rem)
	}
}

// updateReminderHandler godoc
// @Summary Editar recordatorio
// @Description PATCH: sólo se tocan los campos enviados. nextDue se recalcula (ahora + frequency) salvo que venga en el body.
// @Tags reminders
// @Accept json
// @Produce json
// @Param reminderID path string true "ID del recordatorio"
// @Param payload body updateReminderRequest true "Campos a modificar"
// @Success 200 {object} Reminder
// @Failure 400 {string} string "invalid json / reglas de negocio"
// @Failure 404 {string} string "reminder not found"
// @Router /reminders/{reminderID} [patch]
func updateReminderHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()

		var req updateReminderRequest
		if err := dec.Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		rem, err := svc.Update(r.Context(), chi.URLParam(r, "reminderID"), UpdateInput{
			MedicineName: req.MedicineName,
			Dosage:       req.Dosage,
			Frequency:    req.Frequency,
			Duration:     req.Duration,
			Notes:        req.Notes,
			NextDue:      req.NextDue,
		})
		if err != nil {
			writeError(w, err, "could not save reminder, please try again")
			return
		}
		writeJSON(w, http.StatusOK, rem)
	}
}

// deleteReminderHandler godoc
// @Summary Borrar recordatorio
// @Tags reminders
// @Param reminderID path string true "ID del recordatorio"
// @Success 204
// @Failure 404 {string} string "reminder not found"
// @Router /reminders/{reminderID} [delete]
func deleteReminderHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), chi.URLParam(r, "reminderID")); err != nil {
			writeError(w, err, "could not delete reminder, please try again")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// deleteAllRemindersHandler godoc
// @Summary Borrar todos los recordatorios
// @Tags reminders
// @Success 204
// @Failure 500 {string} string "could not delete reminders"
// @Router /reminders [delete]
func deleteAllRemindersHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.DeleteAll(r.Context()); err != nil {
			writeError(w, err, "could not delete reminders, please try again")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// writeError traduce errores del servicio a mensajes cortos para el usuario.
// failed es el mensaje de la operación cuando falla el storage.
func writeError(w http.ResponseWriter, err error, failed string) {
	switch {
	case errors.Is(err, ErrNotFound):
		http.Error(w, "reminder not found, it may have been deleted", http.StatusNotFound)
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, invalidInputMessage, http.StatusBadRequest)
	default:
		http.Error(w, failed, http.StatusInternalServerError)
	}
}

var invalidInputMessage = fmt.Sprintf(
	"medicine name and dosage are required; frequency must be between 1 and %d hours and duration at least 1 day",
	MaxFrequencyHours,
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
