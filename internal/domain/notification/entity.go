package notification

import "time"

// RecipientAll addresses a notification to every user.
const RecipientAll = "all"

// Notification is an admin message to one user or to everyone.
type Notification struct {
	ID       string
	SenderID string
	// RecipientID is nil for a broadcast.
	RecipientID *string
	Message     string
	CreatedAt   time.Time
	Replies     []Reply

	// Join
	SenderUsername    *string
	RecipientUsername *string
}

// VisibleTo reports whether userID is an addressee.
func (n Notification) VisibleTo(userID string) bool {
	return n.RecipientID == nil || *n.RecipientID == userID
}

// Reply is one answer in a notification's thread.
type Reply struct {
	ID             string
	NotificationID string
	UserID         string
	Text           string
	CreatedAt      time.Time

	// Join
	Username *string
}

// Filter selects notifications. A nil RecipientID lists every notification;
// otherwise broadcasts plus those addressed to RecipientID.
type Filter struct {
	RecipientID *string
}
