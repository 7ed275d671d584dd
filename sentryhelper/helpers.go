// Package sentryhelper provides utilities for Sentry transaction and scope management.
// It keeps breadcrumbs and context isolated per HTTP request.
package sentryhelper

import (
	"context"
	"fmt"

	sentry "github.com/getsentry/sentry-go"
)

// contextKey is used to store the cloned hub in context
type contextKey string

const hubContextKey contextKey = "sentry_hub"

// StartRequestTransaction creates a new transaction with a cloned hub for one request.
// The cloned hub keeps breadcrumbs and scope local to the request.
// Returns the context with the transaction and hub, plus the transaction span.
func StartRequestTransaction(ctx context.Context, operation string, tags map[string]string) (context.Context, *sentry.Span) {
	hub := sentry.CurrentHub().Clone()
	ctx = context.WithValue(ctx, hubContextKey, hub)

	transaction := sentry.StartTransaction(ctx, fmt.Sprintf("http.%s", operation),
		sentry.WithOpName("http.server"),
		sentry.WithTransactionSource(sentry.SourceRoute),
	)

	transaction.SetTag("operation", operation)
	for k, v := range tags {
		transaction.SetTag(k, v)
	}

	// Bind the transaction to the cloned hub's scope
	hub.Scope().SetSpan(transaction)

	return transaction.Context(), transaction
}

// HubFromContext retrieves the cloned hub from context.
// Falls back to CurrentHub if no cloned hub is found.
func HubFromContext(ctx context.Context) *sentry.Hub {
	if ctx == nil {
		return sentry.CurrentHub()
	}
	if hub, ok := ctx.Value(hubContextKey).(*sentry.Hub); ok && hub != nil {
		return hub
	}
	return sentry.CurrentHub()
}

// AddBreadcrumb adds a breadcrumb to the hub in context.
func AddBreadcrumb(ctx context.Context, breadcrumb *sentry.Breadcrumb) {
	HubFromContext(ctx).AddBreadcrumb(breadcrumb, nil)
}

// CaptureException captures an exception on the hub in context.
func CaptureException(ctx context.Context, err error) *sentry.EventID {
	return HubFromContext(ctx).CaptureException(err)
}
