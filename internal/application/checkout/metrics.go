package checkout

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Barcode lookup outcomes reported to Metrics
const (
	LookupFound    = "found"
	LookupNotFound = "not_found"
	LookupInactive = "inactive"
	LookupError    = "error"
)

// Metrics receives checkout business events. telemetry.CheckoutMetrics implements it.
type Metrics interface {
	SaleCompleted(ctx context.Context, total decimal.Decimal, tenderMethods []string, took time.Duration)
	SubmissionFailed(ctx context.Context, errorKind string, took time.Duration)
	BarcodeLookup(ctx context.Context, outcome string)
	SaleSuspended(ctx context.Context)
	SaleResumed(ctx context.Context)
	SnapshotWritten(ctx context.Context, ok bool)
}

type nopMetrics struct{}

func (nopMetrics) SaleCompleted(context.Context, decimal.Decimal, []string, time.Duration) {}
func (nopMetrics) SubmissionFailed(context.Context, string, time.Duration)                {}
func (nopMetrics) BarcodeLookup(context.Context, string)                                   {}
func (nopMetrics) SaleSuspended(context.Context)                                           {}
func (nopMetrics) SaleResumed(context.Context)                                             {}
func (nopMetrics) SnapshotWritten(context.Context, bool)                                   {}
