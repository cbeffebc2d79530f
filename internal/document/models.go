package document

import "time"

// Type classifies the uploaded artifact.
type Type string

const (
	TypePassport       Type = "passport"
	TypeAadhar         Type = "aadhar"
	TypeDrivingLicense Type = "driving_license"
	TypeCertificate    Type = "certificate"
	TypeDegree         Type = "degree"
	TypeOther          Type = "other"
)

func (t Type) Valid() bool {
	switch t {
	case TypePassport, TypeAadhar, TypeDrivingLicense, TypeCertificate, TypeDegree, TypeOther:
		return true
	}
	return false
}

// VerificationStatus tracks a document through scoring and review. Rejected
// is reachable only through an admin verdict; the scorer writes the other
// non-pending states.
type VerificationStatus string

const (
	StatusPending     VerificationStatus = "pending"
	StatusVerified    VerificationStatus = "verified"
	StatusFake        VerificationStatus = "fake"
	StatusUnderReview VerificationStatus = "under_review"
	StatusRejected    VerificationStatus = "rejected"
)

// ValidScoringStatus reports whether s may be written by a scoring update.
func ValidScoringStatus(s VerificationStatus) bool {
	switch s {
	case StatusPending, StatusVerified, StatusFake, StatusUnderReview:
		return true
	}
	return false
}

// Known verdict values. The stored verdict is whatever the admin sent; only
// the status mapping cares whether it equals VerdictApproved.
const (
	VerdictApproved      = "approved"
	VerdictRejected      = "rejected"
	VerdictNeedsMoreInfo = "needs_more_info"
)

// VerificationResult is the scorer's preliminary finding. IsFake is
// tri-state: nil means the scorer has not decided.
type VerificationResult struct {
	IsFake     *bool  `json:"isFake"`
	Confidence int    `json:"confidence"`
	Details    string `json:"details,omitempty"`
}

// AdminReview is the terminal admin decision. ReviewedBy is attribution
// only; the admin guard does not identify individual admins, so it is empty
// unless a credentialed admin session supplied one.
type AdminReview struct {
	ReviewedBy   string     `json:"reviewedBy,omitempty"`
	ReviewedAt   *time.Time `json:"reviewedAt,omitempty"`
	AdminNotes   string     `json:"adminNotes,omitempty"`
	FinalVerdict string     `json:"finalVerdict,omitempty"`
}

// Document is an uploaded artifact owned by exactly one user. Ownership is
// fixed at creation.
type Document struct {
	ID                 string
	UserID             string
	DocumentName       string
	DocumentType       Type
	FilePath           string
	FileSize           int64
	MimeType           string
	UploadDate         time.Time
	VerificationStatus VerificationStatus
	VerificationResult VerificationResult
	AdminReview        AdminReview
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Summary is the view returned on upload.
type Summary struct {
	ID                 string             `json:"id"`
	DocumentName       string             `json:"documentName"`
	DocumentType       Type               `json:"documentType"`
	UploadDate         time.Time          `json:"uploadDate"`
	VerificationStatus VerificationStatus `json:"verificationStatus"`
}

// Owned is the owner-facing listing entry. The stored-file path never leaves
// the server.
type Owned struct {
	ID                 string             `json:"id"`
	DocumentName       string             `json:"documentName"`
	DocumentType       Type               `json:"documentType"`
	FileSize           int64              `json:"fileSize"`
	MimeType           string             `json:"mimeType"`
	UploadDate         time.Time          `json:"uploadDate"`
	VerificationStatus VerificationStatus `json:"verificationStatus"`
	VerificationResult VerificationResult `json:"verificationResult"`
	AdminReview        AdminReview        `json:"adminReview"`
}

// Uploader is the profile joined onto admin listings.
type Uploader struct {
	ID           string `json:"id"`
	FirstName    string `json:"firstname"`
	LastName     string `json:"lastname"`
	Email        string `json:"email"`
	Organization string `json:"organization,omitempty"`
}

// Reviewed is the admin-facing view: the full record plus who uploaded it.
type Reviewed struct {
	Owned
	FilePath string    `json:"filePath,omitempty"`
	Uploader *Uploader `json:"user,omitempty"`
}
