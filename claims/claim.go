// Package claims defines the claim document model and the synthetic generator
// used to seed the claims collection.
package claims

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FieldProviderID is the dotted path used to filter claims by billing provider.
const FieldProviderID = "billingProvider.providerId"

// Claim is one insurance-claim document. The pagination engine only interprets
// billingProvider.providerId, the two service dates, and _id; the remaining
// fields ride along untouched.
type Claim struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RenderingProvider  RenderingProvider  `bson:"renderingProvider" json:"renderingProvider"`
	BillingProvider    BillingProvider    `bson:"billingProvider" json:"billingProvider"`
	ServiceBeginDate   time.Time          `bson:"serviceBeginDate" json:"serviceBeginDate"`
	ServiceEndDate     time.Time          `bson:"serviceEndDate" json:"serviceEndDate"`
	PatientInformation PatientInformation `bson:"patientInformation" json:"patientInformation"`
	Identifiers        Identifiers        `bson:"identifiers" json:"identifiers"`
	LastUpdatedTs      time.Time          `bson:"lastUpdatedTs" json:"lastUpdatedTs"`
	ProcessedAmounts   ProcessedAmounts   `bson:"processedAmounts" json:"processedAmounts"`
	RecoveryMethod     string             `bson:"recoveryMethod" json:"recoveryMethod"`
}

// BillingProvider identifies the provider that submitted the claim.
// ProviderID is the partition key for all paginated queries.
type BillingProvider struct {
	ProviderTin          string `bson:"providerTin" json:"providerTin"`
	PatientAccountNumber string `bson:"patientAccountNumber" json:"patientAccountNumber"`
	ProviderID           string `bson:"providerId" json:"providerId"`
	ProviderNpi          string `bson:"providerNpi" json:"providerNpi"`
	ProviderName         string `bson:"providerName" json:"providerName"`
}

// RenderingProvider is the provider that performed the service.
type RenderingProvider struct {
	ProviderName string `bson:"providerName" json:"providerName"`
}

// PatientInformation carries patient display data.
type PatientInformation struct {
	FullName string `bson:"fullName" json:"fullName"`
}

// Identifiers links the claim back to its source claim system.
type Identifiers struct {
	ClaimSystemCode    string `bson:"claimSystemCode" json:"claimSystemCode"`
	ClaimSystemClaimID string `bson:"claimSystemClaimId" json:"claimSystemClaimId"`
}

// Amount is a single monetary value.
type Amount struct {
	Amount float64 `bson:"amount" json:"amount"`
}

// ProcessedAmounts holds the recovery accounting for the claim.
type ProcessedAmounts struct {
	OverpaymentBalance Amount `bson:"overpaymentBalance" json:"overpaymentBalance"`
	OverpaymentAmount  Amount `bson:"overpaymentAmount" json:"overpaymentAmount"`
	RecoupedAmount     Amount `bson:"recoupedAmount" json:"recoupedAmount"`
}
