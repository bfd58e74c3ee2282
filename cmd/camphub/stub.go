package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nhle/camphub/internal/auth"
	"github.com/nhle/camphub/internal/model"
	"github.com/nhle/camphub/internal/stubapi"
)

const (
	stubUserID  = "u1"
	stubAdminID = "admin1"
)

var (
	stubAddr     string
	stubSecret   string
	stubTokenTTL time.Duration
	stubNoSeed   bool
)

var stubServerCmd = &cobra.Command{
	Use:   "stub-server",
	Short: "Run an in-memory CampHub notification backend",
	Long: `Serves the notification endpoints from memory for local development.
Prints a user token and an admin token on start-up; pass either to
` + "`camphub login --base-url http://localhost:8089 --token ...`" + `.`,
	Args: cobra.NoArgs,
	RunE: runStubServer,
}

func init() {
	stubServerCmd.Flags().StringVar(&stubAddr, "addr", ":8089", "Listen address")
	stubServerCmd.Flags().StringVar(&stubSecret, "secret", "camphub-dev-secret", "HMAC secret for tokens")
	stubServerCmd.Flags().DurationVar(&stubTokenTTL, "token-ttl", 24*time.Hour, "Lifetime of the printed tokens")
	stubServerCmd.Flags().BoolVar(&stubNoSeed, "no-seed", false, "Start with no notifications")
}

func runStubServer(cmd *cobra.Command, args []string) error {
	if !verbose {
		gin.SetMode(gin.ReleaseMode)
	}

	m := auth.NewManager(stubSecret, stubTokenTTL)
	api := stubapi.New(m, logger)
	if !stubNoSeed {
		api.Seed(demoNotifications(time.Now().UTC())...)
	}

	userToken, err := m.GenerateToken(stubUserID, "camper@camphub.local", auth.RoleUser)
	if err != nil {
		return fmt.Errorf("signing user token: %w", err)
	}
	adminToken, err := m.GenerateToken(stubAdminID, "admin@camphub.local", auth.RoleAdmin)
	if err != nil {
		return fmt.Errorf("signing admin token: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "CampHub stub listening on %s\n\n", stubAddr)
	fmt.Fprintf(out, "user token:\n%s\n\n", userToken)
	fmt.Fprintf(out, "admin token:\n%s\n", adminToken)

	srv := &http.Server{
		Addr:              stubAddr,
		Handler:           api.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-cmd.Context().Done():
	}

	logger.Info("shutting down stub server")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("stub server forced to shut down", zap.Error(err))
	}
	return nil
}

// demoNotifications covers every routing family for the user and a few
// admin-only reference types.
func demoNotifications(now time.Time) []model.Notification {
	at := func(d time.Duration) time.Time { return now.Add(-d) }

	return []model.Notification{
		{ID: "n1", RecipientID: stubUserID, SenderID: "u7", Type: model.TypeBookingCreated,
			ReferenceType: model.RefBooking, ReferenceID: "b101",
			Title: "New booking request", Content: "Dome tent for 3 nights", CreatedAt: at(2 * time.Minute)},
		{ID: "n2", RecipientID: stubUserID, Type: model.TypePaymentSuccess,
			ReferenceType: model.RefTransaction, ReferenceID: "t55",
			Title: "Payment received", Content: "Your payment was confirmed", CreatedAt: at(20 * time.Minute)},
		{ID: "n3", RecipientID: stubUserID, SenderID: "u7", Type: model.TypeReturnRequestCreated,
			ReferenceType: model.RefReturnRequest, ReferenceID: "r9",
			Title: "Return requested", Content: "The renter started a return", CreatedAt: at(time.Hour)},
		{ID: "n4", RecipientID: stubUserID, Type: model.TypeExtensionRequestApproved,
			ReferenceType: model.RefExtensionRequest, ReferenceID: "e4",
			Title: "Extension approved", Content: "Two extra days granted", CreatedAt: at(3 * time.Hour), IsRead: true},
		{ID: "n5", RecipientID: stubUserID, Type: model.TypeItemApproved,
			ReferenceType: model.RefItem, ReferenceID: "i12",
			Title: "Listing approved", Content: "Your camping stove is live", CreatedAt: at(26 * time.Hour)},
		{ID: "n6", RecipientID: stubUserID, SenderID: "u8", Type: model.TypeReviewReceived,
			ReferenceType: model.RefReview, ReferenceID: "rv3",
			Title: "New review", Content: "5 stars for your tent", CreatedAt: at(50 * time.Hour), IsRead: true},
		{ID: "n7", RecipientID: stubUserID, Type: model.TypeSystemAnnouncement,
			ReferenceType: model.RefSystem,
			Title: "Maintenance tonight", Content: "Short downtime at 02:00", CreatedAt: at(72 * time.Hour)},

		{ID: "a1", RecipientID: stubAdminID, SenderID: stubUserID, Type: model.TypeDisputeCreated,
			ReferenceType: model.RefDispute, ReferenceID: "d9",
			Title: "Dispute opened", Content: "Damage claim on booking b88", CreatedAt: at(5 * time.Minute)},
		{ID: "a2", RecipientID: stubAdminID, SenderID: "u7", Type: model.TypeItemPendingApproval,
			ReferenceType: model.RefItem, ReferenceID: "i13",
			Title: "Listing awaiting review", Content: "Kayak, two seats", CreatedAt: at(40 * time.Minute)},
		{ID: "a3", RecipientID: stubAdminID, Type: model.TypeBookingCreated,
			ReferenceType: model.RefBooking, ReferenceID: "b102",
			Title: "Booking created", Content: "Hammock for 1 night", CreatedAt: at(2 * time.Hour)},
	}
}
