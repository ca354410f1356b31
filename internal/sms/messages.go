package sms

import (
	"fmt"
	"math"
	"strings"
	"time"

	"geoguard-backend/internal/model"
)

// Status is the outcome tag returned to the webhook caller.
type Status string

const (
	StatusLocationRequested  Status = "location_requested"
	StatusAlreadyCheckedIn   Status = "already_checked_in"
	StatusNotCheckedIn       Status = "not_checked_in"
	StatusAlreadyCheckedOut  Status = "already_checked_out"
	StatusStatusSent         Status = "status_sent"
	StatusHelpSent           Status = "help_sent"
	StatusInvalidCommand     Status = "invalid_command"
	StatusNotRegistered      Status = "not_registered"
	StatusNotAssigned        Status = "not_assigned"
	StatusInvalidFormat      Status = "invalid_format"
	StatusAttendanceRecorded Status = "attendance_recorded"
	StatusLocationUnresolved Status = "location_unresolved"
	StatusSessionInvalid     Status = "session_invalid"
	StatusSessionExpired     Status = "session_expired"
	StatusSessionUsed        Status = "session_used"
	StatusError              Status = "error"
)

const (
	msgNotRegistered     = "You are not registered in the system. Please contact your manager."
	msgNotAssigned       = "You are not assigned to a work site. Please contact your manager."
	msgAlreadyCheckedIn  = "You have already checked in today. Use CHECKOUT when leaving."
	msgNotCheckedIn      = "You must check in first before checking out."
	msgAlreadyCheckedOut = "You have already checked out today."
	msgInvalidFormat     = "Invalid format. Please send: ATT CID:xxxx LAC:yyyy"
	msgUnresolved        = "We could not find your location from the tower data. Please try again or use the location link."
	msgError             = "Error recording attendance. Please try again or contact your manager."
	msgLinkExpired       = "Your location link has expired. Send CHECKIN or CHECKOUT again to get a new link."
	msgLinkUsed          = "This location link was already used. Reply STATUS to see today's attendance."

	msgHelp = "Available commands:\n" +
		"CHECKIN - Mark your arrival\n" +
		"CHECKOUT - Mark your departure\n" +
		"STATUS - Check today's status\n" +
		"HELP - Show this message"

	msgInvalidCommand = "Invalid command.\n" +
		"Available commands: CHECKIN, CHECKOUT, STATUS, HELP\n" +
		"Reply HELP for more info."
)

func locationRequestMessage(cmd model.Command, link string, ttl time.Duration) string {
	return fmt.Sprintf("Open this link to share your location for %s:\n%s\n\n"+
		"Link valid for %d minutes. Without internet, reply: ATT CID:xxxx LAC:yyyy",
		cmd, link, int(ttl.Minutes()))
}

// sessionRejectedMessage is sent when a known session link can no longer be used.
func sessionRejectedMessage(status Status) string {
	if status == StatusSessionUsed {
		return msgLinkUsed
	}
	return msgLinkExpired
}

func statusMessage(day DayStatus) string {
	var b strings.Builder
	b.WriteString("Today's attendance:\n")
	fmt.Fprintf(&b, "Check-in: %s\n", doneOrPending(day.CheckedIn))
	fmt.Fprintf(&b, "Check-out: %s\n\n", doneOrPending(day.CheckedOut))
	b.WriteString("Reply with:\nCHECKIN - to mark arrival\nCHECKOUT - to mark departure")
	return b.String()
}

func doneOrPending(done bool) string {
	if done {
		return "Done"
	}
	return "Pending"
}

func recordedMessage(cmd model.Command, inside bool, distance float64) string {
	where := "OUTSIDE"
	if inside {
		where = "INSIDE"
	}
	what := "Attendance"
	if cmd != model.CommandNone {
		what = string(cmd)
	}
	return fmt.Sprintf("%s recorded. Status: %s geofence (%dm from site)", what, where, int(math.Round(distance)))
}
