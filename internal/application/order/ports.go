package order

import (
	"context"
	"time"
)

// ImageStorage issues presigned uploads for before/after photos
type ImageStorage interface {
	PresignUpload(ctx context.Context, key, contentType string) (url string, expiresAt time.Time, err error)
	PresignDownload(ctx context.Context, key string) (url string, expiresAt time.Time, err error)
}

// PDFRenderer turns a standalone HTML document into a PDF
type PDFRenderer interface {
	RenderPDF(ctx context.Context, html string) ([]byte, error)
}

// Metrics records order counters. Implementations must be safe for concurrent use.
type Metrics interface {
	RecordIntake(ctx context.Context, branchID string, pairs int, amount float64)
	RecordPayment(ctx context.Context, branchID, mode string, amount float64)
	RecordStatusTransition(ctx context.Context, branchID, from, to string)
}

type noopMetrics struct{}

func (noopMetrics) RecordIntake(context.Context, string, int, float64)             {}
func (noopMetrics) RecordPayment(context.Context, string, string, float64)         {}
func (noopMetrics) RecordStatusTransition(context.Context, string, string, string) {}
