package notify

import (
	"fmt"
	"time"
)

// ToastDuration is how long a toast stays in the status bar.
const ToastDuration = 3 * time.Second

// Messages shown after each action.
const (
	MsgMarkedRead       = "Notification marked as read"
	MsgMarkReadFailed   = "Failed to mark notification as read"
	MsgAllAlreadyRead   = "All notifications are already read"
	MsgDeleted          = "Notification deleted"
	MsgDeleteFailed     = "Failed to delete notification"
	MsgLoadFailed       = "Could not load notifications"
	MsgSessionExpired   = "Session expired. Press 'c' to update your token."
	msgMarkedAllFmt     = "Marked %d notifications as read"
	msgMarkAllFailedFmt = "Failed to mark %d notifications as read"
	msgMarkAllPartFmt   = "Marked %d of %d as read, %d failed"
)

// Toast is a transient status message.
type Toast struct {
	Text  string
	Error bool
}

// ReadToast describes the outcome of a single mark-as-read.
func ReadToast(err error) Toast {
	if err != nil {
		return Toast{Text: MsgMarkReadFailed, Error: true}
	}
	return Toast{Text: MsgMarkedRead}
}

// ReadAllToast describes the outcome of MarkAllAsRead.
func ReadAllToast(r BatchResult) Toast {
	total := len(r.Attempted)
	switch {
	case total == 0:
		return Toast{Text: MsgAllAlreadyRead}
	case len(r.Failed) == 0:
		return Toast{Text: fmt.Sprintf(msgMarkedAllFmt, total)}
	case r.Partial():
		return Toast{
			Text:  fmt.Sprintf(msgMarkAllPartFmt, len(r.Succeeded), total, len(r.Failed)),
			Error: true,
		}
	default:
		return Toast{Text: fmt.Sprintf(msgMarkAllFailedFmt, total), Error: true}
	}
}

// DeleteToast describes the outcome of Delete.
func DeleteToast(err error) Toast {
	if err != nil {
		return Toast{Text: MsgDeleteFailed, Error: true}
	}
	return Toast{Text: MsgDeleted}
}
