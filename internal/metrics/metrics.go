package metrics

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type Metrics struct {
	applicationsSubmitted metric.Int64Counter
	applicationStatus     metric.Int64Counter
	applicationsDeleted   metric.Int64Counter
	onboardingSubmitted   metric.Int64Counter
	documentsUploaded     metric.Int64Counter
	jobsCreated           metric.Int64Counter
	jobSearches           metric.Int64Counter
	contactsReceived      metric.Int64Counter
	csrSectionsCreated    metric.Int64Counter
	logins                metric.Int64Counter
	passwordResets        metric.Int64Counter
}

func New(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	counters := []struct {
		target      *metric.Int64Counter
		name        string
		description string
		unit        string
	}{
		{&m.applicationsSubmitted, "portal.applications.submitted", "Total number of job applications submitted", "{application}"},
		{&m.applicationStatus, "portal.applications.status_changed", "Total number of application status changes", "{change}"},
		{&m.applicationsDeleted, "portal.applications.deleted", "Total number of applications deleted", "{application}"},
		{&m.onboardingSubmitted, "portal.onboarding.submitted", "Total number of onboarding records created", "{onboarding}"},
		{&m.documentsUploaded, "portal.onboarding.documents_uploaded", "Total number of onboarding documents stored", "{document}"},
		{&m.jobsCreated, "portal.jobs.created", "Total number of job postings created", "{job}"},
		{&m.jobSearches, "portal.jobs.searches", "Total number of public job searches", "{search}"},
		{&m.contactsReceived, "portal.contacts.received", "Total number of contact form submissions", "{contact}"},
		{&m.csrSectionsCreated, "portal.csr.sections_created", "Total number of CSR sections created", "{section}"},
		{&m.logins, "portal.auth.logins", "Admin login attempts by outcome", "{attempt}"},
		{&m.passwordResets, "portal.auth.password_resets", "Completed admin password resets", "{reset}"},
	}

	for _, c := range counters {
		counter, err := meter.Int64Counter(c.name,
			metric.WithDescription(c.description),
			metric.WithUnit(c.unit),
		)
		if err != nil {
			return nil, err
		}
		*c.target = counter
	}

	return m, nil
}

func add(ctx context.Context, c metric.Int64Counter, n int64, attrs ...attribute.KeyValue) {
	if c == nil || n == 0 {
		return
	}
	c.Add(ctx, n, metric.WithAttributes(attrs...))
}

func (m *Metrics) RecordApplicationSubmitted(ctx context.Context, experienceLevel string) {
	if m != nil {
		add(ctx, m.applicationsSubmitted, 1, attribute.String("experience_level", experienceLevel))
	}
}

func (m *Metrics) RecordApplicationStatusChanged(ctx context.Context, status string) {
	if m != nil {
		add(ctx, m.applicationStatus, 1, attribute.String("status", status))
	}
}

func (m *Metrics) RecordApplicationsDeleted(ctx context.Context, n int) {
	if m != nil {
		add(ctx, m.applicationsDeleted, int64(n))
	}
}

func (m *Metrics) RecordOnboardingSubmitted(ctx context.Context, experienceType string) {
	if m != nil {
		add(ctx, m.onboardingSubmitted, 1, attribute.String("experience_type", experienceType))
	}
}

func (m *Metrics) RecordDocumentsUploaded(ctx context.Context, n int) {
	if m != nil {
		add(ctx, m.documentsUploaded, int64(n))
	}
}

func (m *Metrics) RecordJobCreated(ctx context.Context) {
	if m != nil {
		add(ctx, m.jobsCreated, 1)
	}
}

func (m *Metrics) RecordJobSearch(ctx context.Context, hasQuery bool) {
	if m != nil {
		add(ctx, m.jobSearches, 1, attribute.Bool("has_query", hasQuery))
	}
}

func (m *Metrics) RecordContactReceived(ctx context.Context) {
	if m != nil {
		add(ctx, m.contactsReceived, 1)
	}
}

func (m *Metrics) RecordCSRSectionsCreated(ctx context.Context, n int) {
	if m != nil {
		add(ctx, m.csrSectionsCreated, int64(n))
	}
}

func (m *Metrics) RecordLogin(ctx context.Context, success bool) {
	if m != nil {
		outcome := "success"
		if !success {
			outcome = "failure"
		}
		add(ctx, m.logins, 1, attribute.String("outcome", outcome))
	}
}

func (m *Metrics) RecordPasswordReset(ctx context.Context) {
	if m != nil {
		add(ctx, m.passwordResets, 1)
	}
}

// NewMock creates a no-op Metrics instance for testing
// The returned Metrics will safely ignore all Record* calls
func NewMock() *Metrics {
	return &Metrics{}
}
