package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments for the gatekeeping flows. All
// increment methods are nil-safe so tests can wire services without a
// registry.
type Metrics struct {
	UsersRegistered  prometheus.Counter
	UsersApproved    prometheus.Counter
	UsersRejected    prometheus.Counter
	OTPIssued        prometheus.Counter
	OTPVerified      prometheus.Counter
	OTPFailed        prometheus.Counter
	DocumentsUploaded prometheus.Counter
	DocumentsScored  prometheus.Counter
	DocumentVerdicts *prometheus.CounterVec
}

// New registers all instruments on the default registry.
func New() *Metrics {
	return &Metrics{
		UsersRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "docgate_users_registered_total",
			Help: "Total registrations accepted into pending state",
		}),
		UsersApproved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "docgate_users_approved_total",
			Help: "Total admin approvals",
		}),
		UsersRejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "docgate_users_rejected_total",
			Help: "Total admin rejections",
		}),
		OTPIssued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "docgate_otp_issued_total",
			Help: "Total one-time passcodes issued",
		}),
		OTPVerified: promauto.NewCounter(prometheus.CounterOpts{
			Name: "docgate_otp_verified_total",
			Help: "Total successful OTP verifications",
		}),
		OTPFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "docgate_otp_failed_total",
			Help: "Total rejected OTP verification attempts",
		}),
		DocumentsUploaded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "docgate_documents_uploaded_total",
			Help: "Total documents accepted for verification",
		}),
		DocumentsScored: promauto.NewCounter(prometheus.CounterOpts{
			Name: "docgate_documents_scored_total",
			Help: "Total scoring updates written by the external scorer",
		}),
		DocumentVerdicts: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "docgate_document_verdicts_total",
			Help: "Total admin verdicts by outcome",
		}, []string{"verdict"}),
	}
}

func (m *Metrics) IncUsersRegistered() {
	if m != nil {
		m.UsersRegistered.Inc()
	}
}

func (m *Metrics) IncUsersApproved() {
	if m != nil {
		m.UsersApproved.Inc()
	}
}

func (m *Metrics) IncUsersRejected() {
	if m != nil {
		m.UsersRejected.Inc()
	}
}

func (m *Metrics) IncOTPIssued() {
	if m != nil {
		m.OTPIssued.Inc()
	}
}

func (m *Metrics) IncOTPVerified() {
	if m != nil {
		m.OTPVerified.Inc()
	}
}

func (m *Metrics) IncOTPFailed() {
	if m != nil {
		m.OTPFailed.Inc()
	}
}

func (m *Metrics) IncDocumentsUploaded() {
	if m != nil {
		m.DocumentsUploaded.Inc()
	}
}

func (m *Metrics) IncDocumentsScored() {
	if m != nil {
		m.DocumentsScored.Inc()
	}
}

func (m *Metrics) IncDocumentVerdict(verdict string) {
	if m != nil {
		m.DocumentVerdicts.WithLabelValues(verdict).Inc()
	}
}
