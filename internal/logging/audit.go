package logging

import (
	"time"

	"go.uber.org/zap"
)

// AuditEventType names a user-visible action worth keeping a trail of.
type AuditEventType string

const (
	AuditSearchStart    AuditEventType = "search_start"
	AuditSearchComplete AuditEventType = "search_complete"
	AuditSearchError    AuditEventType = "search_error"
	AuditFilterSet      AuditEventType = "filter_set"
	AuditLeadSelected   AuditEventType = "lead_selected"
	AuditExport         AuditEventType = "export"
)

// AuditLogger writes audit events as typed zap entries in the "audit"
// category. Entries are info level, so they are only kept in debug mode.
type AuditLogger struct {
	z *zap.Logger
}

// CategoryAudit carries the audit trail.
const CategoryAudit Category = "audit"

// Audit returns the audit logger.
func Audit() *AuditLogger {
	return &AuditLogger{z: Get(CategoryAudit).Zap()}
}

// AuditWithRequest returns an audit logger tagged with a search correlation id.
func AuditWithRequest(requestID string) *AuditLogger {
	return &AuditLogger{z: Get(CategoryAudit).Zap().With(zap.String("req", requestID))}
}

func (a *AuditLogger) log(event AuditEventType, fields ...zap.Field) {
	a.z.Info(string(event), append([]zap.Field{zap.String("event", string(event))}, fields...)...)
}

// SearchStart records a submitted search.
func (a *AuditLogger) SearchStart(industry, city string) {
	a.log(AuditSearchStart, zap.String("industry", industry), zap.String("city", city))
}

// SearchComplete records a successful search.
func (a *AuditLogger) SearchComplete(count int, took time.Duration) {
	a.log(AuditSearchComplete, zap.Int("count", count), zap.Int64("duration_ms", took.Milliseconds()))
}

// SearchError records a failed search.
func (a *AuditLogger) SearchError(err error, took time.Duration) {
	a.log(AuditSearchError, zap.Error(err), zap.Int64("duration_ms", took.Milliseconds()))
}

// FilterSet records a rating filter change and how many leads remain visible.
func (a *AuditLogger) FilterSet(minRating float64, visible int) {
	a.log(AuditFilterSet, zap.Float64("min_rating", minRating), zap.Int("visible", visible))
}

// LeadSelected records a selection and where it came from (list or map).
func (a *AuditLogger) LeadSelected(id, source string) {
	a.log(AuditLeadSelected, zap.String("id", id), zap.String("source", source))
}

// Export records an export attempt.
func (a *AuditLogger) Export(path string, count int, err error) {
	fields := []zap.Field{zap.String("path", path), zap.Int("count", count), zap.Bool("success", err == nil)}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	a.log(AuditExport, fields...)
}
