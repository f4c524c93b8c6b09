// Package notifier builds companion notifications and hands them to the
// external delivery infrastructure. Delivery itself (push/email providers,
// retries, receipts) lives outside this backend; the contract here is
// fire-and-forget with logged failures.
package notifier

import (
	"context"
	"fmt"
	"strings"
)

// Delivery channels understood by the external transport.
const (
	ChannelPush  = "push"
	ChannelEmail = "email"
)

// DefaultTitle is the notification title for companion announcements.
const DefaultTitle = "Teman Muraja'ah Hari Ini"

// Transport dispatches one message to one student. Implementations must not
// block publish: errors are reported back for logging only.
type Transport interface {
	Send(ctx context.Context, studentID int, title, message, channel string) error
}

// BuildMessage formats the per-student companion announcement. Companions is
// the display names of the other members of the student's group; link and
// password are the published snapshot values and are appended only when
// present.
func BuildMessage(companions []string, room int, link, password *string) string {
	var b strings.Builder

	if len(companions) == 0 {
		fmt.Fprintf(&b, "Hari ini kamu muraja'ah mandiri di Ruang %d.", room)
	} else {
		fmt.Fprintf(&b, "Teman muraja'ah kamu hari ini: %s. Silakan bergabung di Ruang %d.", joinNames(companions), room)
	}

	if link != nil && *link != "" {
		fmt.Fprintf(&b, " Link: %s", *link)
	}
	if password != nil && *password != "" {
		fmt.Fprintf(&b, " Password: %s", *password)
	}
	return b.String()
}

// joinNames joins display names with the Indonesian conjunction:
// "A", "A dan B", "A, B dan C".
func joinNames(names []string) string {
	switch len(names) {
	case 1:
		return names[0]
	case 2:
		return names[0] + " dan " + names[1]
	default:
		return strings.Join(names[:len(names)-1], ", ") + " dan " + names[len(names)-1]
	}
}
