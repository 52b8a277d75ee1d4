package notify

import (
	"fmt"
	"strings"

	"prescription-reminder/internal/domain/reminders"
)

// Message es lo que ven (u oyen) todos los canales.
type Message struct {
	ReminderID string `json:"reminderId"`
	Title      string `json:"title"`
	Body       string `json:"body"`
	Link       string `json:"link"` // vista de detalle del reminder
}

// BuildMessage arma título/cuerpo/link. baseURL vacío => link relativo.
func BuildMessage(r reminders.Reminder, baseURL string) Message {
	body := fmt.Sprintf("Take %s: %s", r.MedicineName, r.Dosage)
	if r.Notes != nil && strings.TrimSpace(*r.Notes) != "" {
		body += " (" + strings.TrimSpace(*r.Notes) + ")"
	}
	return Message{
		ReminderID: r.ID,
		Title:      "Time for " + r.MedicineName,
		Body:       body,
		Link:       strings.TrimRight(baseURL, "/") + "/reminders/" + r.ID,
	}
}

// SpeechText es la versión hablada, sin link.
func (m Message) SpeechText() string {
	return "Reminder. " + m.Body
}
