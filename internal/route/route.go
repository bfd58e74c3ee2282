// Package route maps a notification to the in-app location it should open.
package route

import (
	"net/url"
	"strings"

	"github.com/nhle/camphub/internal/model"
)

// ProfilePath is the default destination for any notification that has no
// more specific target.
const ProfilePath = "/CampHub/profile"

// target is a destination path plus the query parameter that carries the
// reference id.
type target struct {
	path    string
	idParam string
}

// adminTypeTargets are admin-only destinations keyed by notification type.
// They take precedence over reference-type routing.
var adminTypeTargets = map[model.NotificationType]target{
	model.TypeItemPendingApproval:  {"/admin/items?status=pending", "itemId"},
	model.TypeDisputeCreated:       {"/admin/disputes", "disputeId"},
	model.TypeReturnRequestPending: {"/admin/return-requests", "returnRequestId"},
}

// adminRefTargets are the back-office list pages per reference type.
var adminRefTargets = map[model.ReferenceType]target{
	model.RefBooking:          {"/admin/bookings", "bookingId"},
	model.RefDispute:          {"/admin/disputes", "disputeId"},
	model.RefReturnRequest:    {"/admin/return-requests", "returnRequestId"},
	model.RefExtensionRequest: {"/admin/extension-requests", "extensionRequestId"},
	model.RefTransaction:      {"/admin/transactions", "transactionId"},
	model.RefItem:             {"/admin/items", "itemId"},
}

// userRoute is a profile tab reachable only from the listed types.
type userRoute struct {
	target
	allowed map[model.NotificationType]bool
}

func allow(types ...model.NotificationType) map[model.NotificationType]bool {
	m := make(map[model.NotificationType]bool, len(types))
	for _, t := range types {
		m[t] = true
	}
	return m
}

var userRoutes = map[model.ReferenceType]userRoute{
	model.RefBooking: {
		target{ProfilePath + "?tab=rental-orders", "bookingId"},
		allow(
			model.TypeBookingCreated, model.TypeBookingConfirmed,
			model.TypeBookingRejected, model.TypeBookingCancelled,
			model.TypeBookingCompleted, model.TypePaymentSuccess,
			model.TypePaymentFailed, model.TypeRefundProcessed,
		),
	},
	model.RefReturnRequest: {
		target{ProfilePath + "?tab=return-requests", "returnRequestId"},
		allow(
			model.TypeReturnRequestCreated, model.TypeReturnRequestPending,
			model.TypeReturnRequestApproved, model.TypeReturnRequestRejected,
		),
	},
	model.RefExtensionRequest: {
		target{ProfilePath + "?tab=extension-requests", "extensionRequestId"},
		allow(
			model.TypeExtensionRequestCreated,
			model.TypeExtensionRequestApproved,
			model.TypeExtensionRequestRejected,
		),
	},
	model.RefDispute: {
		target{ProfilePath + "?tab=disputes", "disputeId"},
		allow(
			model.TypeDisputeCreated, model.TypeDisputeResolved,
			model.TypeDisputeRejected,
		),
	},
	model.RefItem: {
		target{ProfilePath + "?tab=my-items", "itemId"},
		allow(
			model.TypeItemPendingApproval, model.TypeItemApproved,
			model.TypeItemRejected,
		),
	},
	model.RefReview: {
		target{ProfilePath + "?tab=reviews", "reviewId"},
		allow(model.TypeReviewReceived),
	},
	model.RefTransaction: {
		target{ProfilePath + "?tab=transactions", "transactionId"},
		allow(
			model.TypeTransactionCompleted, model.TypePaymentSuccess,
			model.TypeRefundProcessed,
		),
	},
}

// Resolve returns the path a click on n should navigate to. It never
// returns an empty string: anything unrecognised lands on the profile page.
func Resolve(n model.Notification, isAdmin bool) string {
	if isAdmin {
		if t, ok := adminTypeTargets[n.Type]; ok {
			return t.build(n.ReferenceID)
		}
		if t, ok := adminRefTargets[n.ReferenceType]; ok {
			return t.build(n.ReferenceID)
		}
	}

	if r, ok := userRoutes[n.ReferenceType]; ok && r.allowed[n.Type] {
		return r.build(n.ReferenceID)
	}

	return ProfilePath
}

// build appends the id parameter when an id is present, keeping any query
// the path already carries first.
func (t target) build(id string) string {
	if id == "" {
		return t.path
	}
	sep := "?"
	if strings.Contains(t.path, "?") {
		sep = "&"
	}
	return t.path + sep + t.idParam + "=" + url.QueryEscape(id)
}
