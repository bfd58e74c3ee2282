package model

import (
	"sort"
	"time"
)

// NotificationType tags the marketplace event that produced a notification.
type NotificationType string

const (
	TypeBookingCreated   NotificationType = "BOOKING_CREATED"
	TypeBookingConfirmed NotificationType = "BOOKING_CONFIRMED"
	TypeBookingRejected  NotificationType = "BOOKING_REJECTED"
	TypeBookingCancelled NotificationType = "BOOKING_CANCELLED"
	TypeBookingCompleted NotificationType = "BOOKING_COMPLETED"

	TypePaymentSuccess  NotificationType = "PAYMENT_SUCCESS"
	TypePaymentFailed   NotificationType = "PAYMENT_FAILED"
	TypeRefundProcessed NotificationType = "REFUND_PROCESSED"

	TypeReturnRequestCreated  NotificationType = "RETURN_REQUEST_CREATED"
	TypeReturnRequestPending  NotificationType = "RETURN_REQUEST_PENDING"
	TypeReturnRequestApproved NotificationType = "RETURN_REQUEST_APPROVED"
	TypeReturnRequestRejected NotificationType = "RETURN_REQUEST_REJECTED"

	TypeExtensionRequestCreated  NotificationType = "EXTENSION_REQUEST_CREATED"
	TypeExtensionRequestApproved NotificationType = "EXTENSION_REQUEST_APPROVED"
	TypeExtensionRequestRejected NotificationType = "EXTENSION_REQUEST_REJECTED"

	TypeDisputeCreated  NotificationType = "DISPUTE_CREATED"
	TypeDisputeResolved NotificationType = "DISPUTE_RESOLVED"
	TypeDisputeRejected NotificationType = "DISPUTE_REJECTED"

	TypeItemPendingApproval NotificationType = "ITEM_PENDING_APPROVAL"
	TypeItemApproved        NotificationType = "ITEM_APPROVED"
	TypeItemRejected        NotificationType = "ITEM_REJECTED"

	TypeReviewReceived       NotificationType = "REVIEW_RECEIVED"
	TypeTransactionCompleted NotificationType = "TRANSACTION_COMPLETED"
	TypeSystemAnnouncement   NotificationType = "SYSTEM_ANNOUNCEMENT"
)

// NotificationTypes lists every known notification type.
var NotificationTypes = []NotificationType{
	TypeBookingCreated, TypeBookingConfirmed, TypeBookingRejected,
	TypeBookingCancelled, TypeBookingCompleted,
	TypePaymentSuccess, TypePaymentFailed, TypeRefundProcessed,
	TypeReturnRequestCreated, TypeReturnRequestPending,
	TypeReturnRequestApproved, TypeReturnRequestRejected,
	TypeExtensionRequestCreated, TypeExtensionRequestApproved,
	TypeExtensionRequestRejected,
	TypeDisputeCreated, TypeDisputeResolved, TypeDisputeRejected,
	TypeItemPendingApproval, TypeItemApproved, TypeItemRejected,
	TypeReviewReceived, TypeTransactionCompleted, TypeSystemAnnouncement,
}

// ReferenceType identifies the kind of entity a notification points back to.
type ReferenceType string

const (
	RefBooking          ReferenceType = "BOOKING"
	RefReturnRequest    ReferenceType = "RETURN_REQUEST"
	RefExtensionRequest ReferenceType = "EXTENSION_REQUEST"
	RefDispute          ReferenceType = "DISPUTE"
	RefItem             ReferenceType = "ITEM"
	RefReview           ReferenceType = "REVIEW"
	RefTransaction      ReferenceType = "TRANSACTION"
	RefSystem           ReferenceType = "SYSTEM"
)

// ReferenceTypes lists every known reference type.
var ReferenceTypes = []ReferenceType{
	RefBooking, RefReturnRequest, RefExtensionRequest, RefDispute,
	RefItem, RefReview, RefTransaction, RefSystem,
}

// Notification is a single event surfaced to a marketplace user. The
// backend owns it; the client only flips IsRead and deletes.
type Notification struct {
	// ID is the backend identifier.
	ID string `json:"id" db:"id"`

	// RecipientID is the user the notification was addressed to.
	RecipientID string `json:"recipientId" db:"recipient_id"`

	// SenderID is the user whose action caused the notification, if any.
	SenderID string `json:"senderId,omitempty" db:"sender_id"`

	// Type is the business event tag.
	Type NotificationType `json:"type" db:"type"`

	// ReferenceType and ReferenceID point at the entity behind the event.
	ReferenceType ReferenceType `json:"referenceType" db:"reference_type"`
	ReferenceID   string        `json:"referenceId,omitempty" db:"reference_id"`

	// Title and Content are the human-readable text.
	Title   string `json:"title" db:"title"`
	Content string `json:"content" db:"content"`

	// IsRead only ever moves from false to true.
	IsRead bool `json:"isRead" db:"is_read"`

	// CreatedAt is when the backend created the notification.
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// CountUnread returns the number of notifications with IsRead == false.
func CountUnread(list []Notification) int {
	n := 0
	for _, item := range list {
		if !item.IsRead {
			n++
		}
	}
	return n
}

// SortNewestFirst orders notifications by CreatedAt descending. Ties are
// broken by ID so the order is stable across fetches.
func SortNewestFirst(list []Notification) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID > list[j].ID
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
}
