package notification

import (
	"context"
	"fmt"
	"strings"

	"tutorconnect/internal/booking"
	"tutorconnect/internal/logger"
	"tutorconnect/internal/tutor"
	"tutorconnect/internal/user"
)

const timeLayout = "Jan 2, 2006 at 3:04 PM MST"

type Enqueuer interface {
	Enqueue(ctx context.Context, to, name, subject, body string) error
}

// Notifier turns domain events into queued e-mails. Failures are logged
// and never returned to the caller.
type Notifier struct {
	queue    Enqueuer
	teamName string
}

func NewNotifier(queue Enqueuer, teamName string) *Notifier {
	return &Notifier{queue: queue, teamName: teamName}
}

type recipient struct {
	email string
	name  string
}

func (n *Notifier) send(ctx context.Context, to recipient, subject string, lines ...string) {
	if to.email == "" {
		return
	}
	body := fmt.Sprintf("Hi %s,\n\n%s\n\n- %s Team", to.name, strings.Join(lines, "\n"), n.teamName)
	if err := n.queue.Enqueue(ctx, to.email, to.name, subject, body); err != nil {
		logger.Error("failed to queue notification", "to", to.email, "subject", subject, "error", err)
	}
}

func sessionLines(d *booking.Details) []string {
	return []string{
		"Subject: " + d.SubjectName,
		"Time: " + d.ScheduledFor.UTC().Format(timeLayout),
		fmt.Sprintf("Duration: %d minutes", d.DurationMinutes),
	}
}

func (n *Notifier) BookingRequested(ctx context.Context, d *booking.Details) {
	lines := append([]string{d.StudentName + " has requested a session with you.", ""}, sessionLines(d)...)
	lines = append(lines, "", "Please accept or reject the request from your dashboard.")
	n.send(ctx, recipient{d.TutorEmail, d.TutorName}, "New booking request - "+d.SubjectName, lines...)
}

// BookingStatusChanged notifies whoever did not make the change.
func (n *Notifier) BookingStatusChanged(ctx context.Context, d *booking.Details, actorUserID int) {
	student := recipient{d.StudentEmail, d.StudentName}
	tutorR := recipient{d.TutorEmail, d.TutorName}

	to, actorName := student, d.TutorName
	if actorUserID == d.StudentUserID {
		to, actorName = tutorR, d.StudentName
	}

	var subject, headline string
	var extra []string
	switch d.Status {
	case booking.StatusAccepted:
		subject = "Booking accepted - " + d.SubjectName
		headline = actorName + " accepted your booking."
		if d.MeetingLink != nil {
			extra = append(extra, "", "Join the classroom: "+*d.MeetingLink)
		}
	case booking.StatusRejected:
		subject = "Booking rejected - " + d.SubjectName
		headline = actorName + " could not take this session. The full amount has been refunded to your wallet."
	case booking.StatusCancelled:
		subject = "Booking cancelled - " + d.SubjectName
		headline = actorName + " cancelled this session."
		if to == student {
			headline += " The full amount has been refunded to your wallet."
		}
	case booking.StatusCompleted:
		subject = "Session completed - " + d.SubjectName
		headline = actorName + " marked this session as completed."
		if to == tutorR {
			headline += " Your earning has been added to your wallet."
		}
	default:
		return
	}

	lines := append([]string{headline, ""}, sessionLines(d)...)
	n.send(ctx, to, subject, append(lines, extra...)...)
}

func (n *Notifier) TutorVerified(ctx context.Context, v *tutor.Verified) {
	to := recipient{v.Email, v.FullName}
	switch v.Status {
	case user.VerificationApproved:
		n.send(ctx, to, "Your tutor profile is approved",
			"Your profile has been verified. Students can now find and book you.")
	case user.VerificationRejected:
		n.send(ctx, to, "Your tutor profile was not approved",
			"Your profile did not pass verification. Please update it and contact support.")
	}
}
