package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when a nil meter is supplied.
var ErrMeterNil = errors.New("NewCheckoutMetrics: meter cannot be nil")

// CheckoutMetrics records the activity of one checkout terminal.
type CheckoutMetrics struct {
	salesCompleted     *Counter
	submissionsFailed  *Counter
	submissionDuration *Histogram
	saleAmount         *Histogram
	tenders            *Counter
	scans              *Counter
	suspends           *Counter
	resumes            *Counter
	snapshots          *Counter
}

// NewCheckoutMetrics creates the checkout instruments on meter.
func NewCheckoutMetrics(meter metric.Meter) (*CheckoutMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	cm := &CheckoutMetrics{}
	var err error

	if cm.salesCompleted, err = NewCounter(meter, "pos_sales_completed_total",
		"Sales confirmed by the backend", "{sales}"); err != nil {
		return nil, err
	}
	if cm.submissionsFailed, err = NewCounter(meter, "pos_sale_submissions_failed_total",
		"Sale submissions that failed and were left for manual retry", "{submissions}"); err != nil {
		return nil, err
	}
	if cm.submissionDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "pos_sale_submission_duration_seconds",
		Description: "Round trip of completed-sale submissions",
		Unit:        "s",
		Boundaries:  SubmissionDurationBuckets,
	}); err != nil {
		return nil, err
	}
	if cm.saleAmount, err = NewHistogram(meter, HistogramOpts{
		Name:        "pos_sale_amount",
		Description: "Total of completed sales",
		Unit:        "{currency}",
		Boundaries:  SaleAmountBuckets,
	}); err != nil {
		return nil, err
	}
	if cm.tenders, err = NewCounter(meter, "pos_tenders_total",
		"Tenders applied to completed sales", "{tenders}"); err != nil {
		return nil, err
	}
	if cm.scans, err = NewCounter(meter, "pos_barcode_lookups_total",
		"Barcode lookups by outcome", "{lookups}"); err != nil {
		return nil, err
	}
	if cm.suspends, err = NewCounter(meter, "pos_sales_suspended_total",
		"Sales suspended as drafts", "{sales}"); err != nil {
		return nil, err
	}
	if cm.resumes, err = NewCounter(meter, "pos_sales_resumed_total",
		"Drafts resumed into the cart", "{sales}"); err != nil {
		return nil, err
	}
	if cm.snapshots, err = NewCounter(meter, "pos_recovery_snapshots_total",
		"Recovery snapshot writes by outcome", "{writes}"); err != nil {
		return nil, err
	}

	return cm, nil
}

// SaleCompleted records a confirmed sale and its tenders.
func (cm *CheckoutMetrics) SaleCompleted(ctx context.Context, total decimal.Decimal, tenderMethods []string, took time.Duration) {
	cm.salesCompleted.Inc(ctx)
	cm.submissionDuration.RecordDuration(ctx, took, AttrOutcome.String("ok"))
	cm.saleAmount.Record(ctx, total.InexactFloat64())
	for _, m := range tenderMethods {
		cm.tenders.Inc(ctx, AttrTenderMethod.String(m))
	}
}

// SubmissionFailed records a failed sale submission.
func (cm *CheckoutMetrics) SubmissionFailed(ctx context.Context, errorKind string, took time.Duration) {
	cm.submissionsFailed.Inc(ctx, AttrErrorKind.String(errorKind))
	cm.submissionDuration.RecordDuration(ctx, took, AttrOutcome.String("failed"))
}

// BarcodeLookup records a scan lookup; outcome is found, not_found or error.
func (cm *CheckoutMetrics) BarcodeLookup(ctx context.Context, outcome string) {
	cm.scans.Inc(ctx, AttrOutcome.String(outcome))
}

// SaleSuspended records a suspend.
func (cm *CheckoutMetrics) SaleSuspended(ctx context.Context) {
	cm.suspends.Inc(ctx)
}

// SaleResumed records a resume.
func (cm *CheckoutMetrics) SaleResumed(ctx context.Context) {
	cm.resumes.Inc(ctx)
}

// SnapshotWritten records a recovery snapshot write.
func (cm *CheckoutMetrics) SnapshotWritten(ctx context.Context, ok bool) {
	outcome := "ok"
	if !ok {
		outcome = "failed"
	}
	cm.snapshots.Inc(ctx, AttrOutcome.String(outcome))
}
