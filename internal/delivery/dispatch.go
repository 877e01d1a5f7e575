package delivery

import (
	"context"
	"strings"
	"time"

	"firstscoop-backend/internal/components/assert"
	"firstscoop-backend/internal/components/chrono"
	"firstscoop-backend/internal/components/telemetry"
	"firstscoop-backend/internal/render"
	"firstscoop-backend/internal/subscribers"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

var tracer = otel.Tracer("firstscoop/delivery")

const (
	report_dispatcher_send  = "dispatcher.send"
	report_dispatcher_log   = "dispatcher.log"
	report_dispatcher_sent  = "dispatcher.sent"
	report_dispatcher_fails = "dispatcher.failed"
)

const (
	DefaultSubject = "Daily Menu"
	DefaultSpacing = 3 * time.Second
)

// Attempt is one send as kept in the delivery log, the recipient is only stored as a hash.
type Attempt struct {
	RecipientHash string
	Provider      string
	Err           error
	At            time.Time
}

// AttemptLog persists send attempts.
type AttemptLog interface {
	LogAttempt(ctx context.Context, attempt Attempt) error
}

type Report struct {
	Attempted int
	Sent      int
	Failed    int
}

type DispatcherOptions struct {
	Subject string
	// UnsubscribeEndpoint is the unsubscribe page, the recipient's hash is appended as a
	// query parameter.
	UnsubscribeEndpoint string
	// Spacing is the minimum time between two sends, email apis throttle bursts.
	Spacing time.Duration
	// Log is optional.
	Log AttemptLog
}

type Dispatcher struct {
	provider Provider
	options  DispatcherOptions
	clock    chrono.TimeAPI
	tel      telemetry.API
}

func NewDispatcher(provider Provider, options DispatcherOptions, clock chrono.TimeAPI, tel telemetry.API) Dispatcher {
	assert.NotNil(provider)
	assert.NotNil(clock)
	assert.NotNil(tel)

	if options.Subject == "" {
		options.Subject = DefaultSubject
	}
	if options.Spacing < 0 {
		options.Spacing = 0
	}

	return Dispatcher{
		provider: provider,
		options:  options,
		clock:    clock,
		tel:      telemetry.NewScopedAPI("delivery", tel),
	}
}

// Personalize replaces the unsubscribe placeholder with the recipient's own link.
func (d Dispatcher) Personalize(html, email string) string {
	return strings.ReplaceAll(
		html,
		render.UnsubscribePlaceholder,
		subscribers.UnsubscribeURL(d.options.UnsubscribeEndpoint, email),
	)
}

// Dispatch sends the document to each recipient in order. A failed send is reported and
// counted but does not stop the remaining sends, only a cancelled context does.
func (d Dispatcher) Dispatch(ctx context.Context, html string, recipients []subscribers.Subscriber) Report {
	ctx, span := tracer.Start(ctx, "delivery:dispatch", trace.WithAttributes(
		attribute.String("provider", d.provider.Name()),
		attribute.Int("recipients", len(recipients)),
	))
	defer span.End()

	limit := rate.Inf
	if d.options.Spacing > 0 {
		limit = rate.Every(d.options.Spacing)
	}
	limiter := rate.NewLimiter(limit, 1)

	var report Report
	for _, recipient := range recipients {
		if err := limiter.Wait(ctx); err != nil {
			d.tel.ReportWarning(report_dispatcher_send, "dispatch interrupted", err)
			break
		}

		report.Attempted++
		err := d.provider.Send(ctx, Message{
			To:      recipient.Email,
			Subject: d.options.Subject,
			HTML:    d.Personalize(html, recipient.Email),
		})
		if err != nil {
			report.Failed++
			d.tel.ReportBroken(report_dispatcher_send, err, subscribers.HashEmail(recipient.Email))
		} else {
			report.Sent++
		}

		if d.options.Log != nil {
			logErr := d.options.Log.LogAttempt(ctx, Attempt{
				RecipientHash: subscribers.HashEmail(recipient.Email),
				Provider:      d.provider.Name(),
				Err:           err,
				At:            d.clock.Now(),
			})
			if logErr != nil {
				d.tel.ReportBroken(report_dispatcher_log, logErr)
			}
		}
	}

	d.tel.ReportCount(report_dispatcher_sent, int64(report.Sent))
	d.tel.ReportCount(report_dispatcher_fails, int64(report.Failed))
	return report
}
