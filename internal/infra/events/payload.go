package events

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// payload формат сообщения в топике для нотификатора
type payload struct {
	Type              string        `json:"type"`
	AppointmentID     int64         `json:"appointmentId"`
	StylistID         int64         `json:"stylistId"`
	ServiceID         int64         `json:"serviceId"`
	Date              string        `json:"date"`
	StartTime         string        `json:"startTime"`
	EndTime           string        `json:"endTime"`
	Status            string        `json:"status"`
	Client            clientPayload `json:"client"`
	ModificationToken string        `json:"modificationToken,omitempty"`
	Reason            *string       `json:"reason,omitempty"`
	OccurredAt        time.Time     `json:"occurredAt"`
}

type clientPayload struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

func newPayload(e domain.AppointmentEvent) payload {
	return payload{
		Type:          string(e.Type),
		AppointmentID: e.AppointmentID,
		StylistID:     e.StylistID,
		ServiceID:     e.ServiceID,
		Date:          e.Date.Format(domain.DateFormat),
		StartTime:     e.StartTime.String(),
		EndTime:       e.EndTime.String(),
		Status:        string(e.Status),
		Client: clientPayload{
			FirstName: e.Client.FirstName,
			LastName:  e.Client.LastName,
			Email:     e.Client.Email,
			Phone:     e.Client.Phone,
		},
		ModificationToken: e.ModificationToken,
		Reason:            e.Reason,
		OccurredAt:        e.OccurredAt,
	}
}
