// Package classroom issues meeting rooms on the embeddable conferencing
// service and describes them to booking participants.
package classroom

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Room struct {
	Name string
	Link string
}

// Issuer names rooms as <prefix>-<uuid> under a single base URL.
type Issuer struct {
	baseURL string
	prefix  string
	newID   func() string
}

func NewIssuer(baseURL, prefix string) *Issuer {
	return &Issuer{
		baseURL: strings.TrimRight(baseURL, "/"),
		prefix:  prefix,
		newID:   uuid.NewString,
	}
}

func (i *Issuer) NewRoom() Room {
	name := fmt.Sprintf("%s-%s", i.prefix, i.newID())
	return Room{Name: name, Link: i.baseURL + "/" + name}
}

// RoomName extracts the room name from a meeting link.
func RoomName(link string) string {
	link = strings.TrimRight(link, "/")
	if idx := strings.LastIndex(link, "/"); idx >= 0 {
		return link[idx+1:]
	}
	return link
}

// Session is what a participant needs to join the classroom of a booking.
type Session struct {
	BookingID    int       `json:"bookingId"`
	RoomName     string    `json:"roomName"`
	MeetingLink  string    `json:"meetingLink"`
	ScheduledFor time.Time `json:"scheduledFor"`
	Duration     int       `json:"duration"`
	SubjectName  string    `json:"subjectName"`
	StudentName  string    `json:"studentName"`
	TutorName    string    `json:"tutorName"`
}
