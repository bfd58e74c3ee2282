package main

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nhle/camphub/internal/auth"
	"github.com/nhle/camphub/internal/model"
	"github.com/nhle/camphub/internal/notify"
	"github.com/nhle/camphub/internal/source"
	"github.com/nhle/camphub/internal/store"
)

// metaPrincipal records whose notifications the snapshot holds.
const metaPrincipal = "principal"

var (
	listUnread  bool
	listOffline bool
	listLimit   int
	listOffset  int
	listType    string
	listFormat  string
	watchOnce   bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print your notifications, newest first",
	Long: `Fetches your notifications and prints them with the page each one
opens. --offline prints the snapshot from the last successful sync
without contacting the backend.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

var readCmd = &cobra.Command{
	Use:   "read [id...]",
	Short: "Mark notifications as read",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRead,
}

var readAllCmd = &cobra.Command{
	Use:   "read-all",
	Short: "Mark every unread notification as read",
	Args:  cobra.NoArgs,
	RunE:  runReadAll,
}

var deleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a notification",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

var openCmd = &cobra.Command{
	Use:   "open [id]",
	Short: "Mark a notification as read and print the page it opens",
	Args:  cobra.ExactArgs(1),
	RunE:  runOpen,
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll for notifications and print the unread count",
	Long: `Polls the backend on the configured interval (poll.interval_sec)
and prints the unread count after every attempt. Failed polls keep the
last known count. Stop with Ctrl+C.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func addNotificationCommands(root *cobra.Command) {
	listCmd.Flags().BoolVar(&listUnread, "unread", false, "Only unread notifications")
	listCmd.Flags().BoolVar(&listOffline, "offline", false, "Print the cached snapshot")
	listCmd.Flags().IntVar(&listLimit, "limit", 0, "Maximum number of notifications (0 = all)")
	listCmd.Flags().IntVar(&listOffset, "offset", 0, "Skip this many notifications (with --limit)")
	listCmd.Flags().StringVar(&listType, "type", "", "Only this notification type, e.g. BOOKING_CREATED")
	listCmd.Flags().StringVar(&listFormat, "format", "", "Output format: table or json (default depends on terminal)")
	root.Flags().AddFlagSet(listCmd.Flags())

	watchCmd.Flags().BoolVar(&watchOnce, "once", false, "Exit after the first poll")

	root.AddCommand(listCmd)
	root.AddCommand(readCmd)
	root.AddCommand(readAllCmd)
	root.AddCommand(deleteCmd)
	root.AddCommand(openCmd)
	root.AddCommand(watchCmd)
}

// requestContext bounds a one-shot command by the request timeout.
func requestContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), cfg.RequestTimeout())
}

// explain rewrites auth and not-found failures into something actionable.
func explain(err error) error {
	switch {
	case source.IsAuthError(err):
		return fmt.Errorf("session expired, run `camphub login`: %w", err)
	case source.IsNotFound(err):
		return fmt.Errorf("no such notification for this account: %w", err)
	}
	return err
}

// listFilter builds the filter shared by the online and offline listings.
func listFilter() (store.NotificationFilter, error) {
	f := store.NotificationFilter{
		UnreadOnly: listUnread,
		Limit:      listLimit,
		Offset:     listOffset,
	}
	if listType == "" {
		return f, nil
	}
	typ := model.NotificationType(strings.ToUpper(strings.TrimSpace(listType)))
	if !slices.Contains(model.NotificationTypes, typ) {
		return f, fmt.Errorf("unknown notification type %q", listType)
	}
	f.Type = &typ
	return f, nil
}

func runList(cmd *cobra.Command, args []string) error {
	filter, err := listFilter()
	if err != nil {
		return err
	}

	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.close()

	ctx, cancel := requestContext(cmd)
	defer cancel()

	if listOffline {
		return listCached(ctx, cmd, e, filter)
	}

	sess, err := e.connect()
	if err != nil {
		return err
	}
	defer sess.Close()

	if err := sess.Inbox.Load(ctx); err != nil {
		return explain(err)
	}
	items := sess.Inbox.Items()
	if err := e.store.ReplaceNotifications(ctx, items, time.Now()); err != nil {
		logger.Warn("saving notification snapshot", zap.Error(err))
	} else if err := e.store.SetMeta(ctx, metaPrincipal, sess.Principal); err != nil {
		logger.Warn("saving snapshot principal", zap.Error(err))
	}

	items = filterList(items, filter)
	return printNotifications(cmd.OutOrStdout(), items, sess.IsAdmin, listFormat, time.Now())
}

func listCached(ctx context.Context, cmd *cobra.Command, e *env, filter store.NotificationFilter) error {
	items, err := e.store.GetNotifications(ctx, filter)
	if err != nil {
		return err
	}
	last, err := e.store.LastSync(ctx)
	if err != nil {
		return err
	}
	unread, err := e.store.CountUnread(ctx)
	if err != nil {
		return err
	}
	owner, err := e.store.GetMeta(ctx, metaPrincipal)
	if err != nil {
		return err
	}

	claims, _ := auth.ParseUnverified(e.token)
	switch {
	case last.IsZero():
		cmd.PrintErrln("No cached notifications yet")
	case owner != "" && claims != nil && owner != claims.Principal():
		cmd.PrintErrf("Cached %s for %s, not the current token; %d unread\n", humanize.Time(last), owner, unread)
	default:
		cmd.PrintErrf("Cached %s, %d unread\n", humanize.Time(last), unread)
	}

	return printNotifications(cmd.OutOrStdout(), items, claims.IsAdmin(), listFormat, time.Now())
}

// filterList applies f to an already sorted list the way the snapshot
// query does.
func filterList(list []model.Notification, f store.NotificationFilter) []model.Notification {
	out := make([]model.Notification, 0, len(list))
	skipped := 0
	for _, n := range list {
		if f.UnreadOnly && n.IsRead {
			continue
		}
		if f.Type != nil && n.Type != *f.Type {
			continue
		}
		if f.Limit > 0 && skipped < f.Offset {
			skipped++
			continue
		}
		out = append(out, n)
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out
}

func runRead(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.close()

	sess, err := e.connect()
	if err != nil {
		return err
	}
	defer sess.Close()

	ctx, cancel := requestContext(cmd)
	defer cancel()

	var errs []error
	for _, id := range args {
		err := sess.Inbox.MarkAsRead(ctx, id)
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", id, notify.ReadToast(err).Text)
		if err != nil {
			errs = append(errs, explain(err))
		}
	}
	return errors.Join(errs...)
}

func runReadAll(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.close()

	sess, err := e.connect()
	if err != nil {
		return err
	}
	defer sess.Close()

	ctx, cancel := requestContext(cmd)
	defer cancel()

	if err := sess.Inbox.Load(ctx); err != nil {
		return explain(err)
	}
	res, err := sess.Inbox.MarkAllAsRead(ctx)
	fmt.Fprintln(cmd.OutOrStdout(), notify.ReadAllToast(res).Text)
	return explain(err)
}

func runDelete(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.close()

	sess, err := e.connect()
	if err != nil {
		return err
	}
	defer sess.Close()

	ctx, cancel := requestContext(cmd)
	defer cancel()

	err = sess.Inbox.Delete(ctx, args[0])
	fmt.Fprintln(cmd.OutOrStdout(), notify.DeleteToast(err).Text)
	return explain(err)
}

func runOpen(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.close()

	sess, err := e.connect()
	if err != nil {
		return err
	}
	defer sess.Close()

	ctx, cancel := requestContext(cmd)
	defer cancel()

	if err := sess.Inbox.Load(ctx); err != nil {
		return explain(err)
	}
	for _, n := range sess.Inbox.Items() {
		if n.ID != args[0] {
			continue
		}
		path, err := sess.Inbox.Open(ctx, n)
		if err != nil {
			return explain(err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	}
	return fmt.Errorf("notification %s not found", args[0])
}

func runWatch(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.close()

	sess, err := e.connect()
	if err != nil {
		return err
	}
	defer sess.Close()

	ctx := cmd.Context()
	sess.Poller.Start()

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-sess.Poller.Results():
			if !ok {
				return nil
			}
			stamp := msg.At.Format(time.TimeOnly)
			switch {
			case msg.AuthError:
				fmt.Fprintf(cmd.OutOrStdout(), "%s  unread %d  (session expired, run `camphub login`)\n", stamp, msg.Unread)
			case msg.Err != nil:
				fmt.Fprintf(cmd.OutOrStdout(), "%s  unread %d  (offline: %v)\n", stamp, msg.Unread, msg.Err)
			default:
				fmt.Fprintf(cmd.OutOrStdout(), "%s  unread %d\n", stamp, msg.Unread)
			}
			if watchOnce {
				return nil
			}
		}
	}
}
