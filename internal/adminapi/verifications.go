package adminapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// PathVerifications is the verification collection path.
const PathVerifications = "/api/admin/verifications"

// VerificationStatus is the review state of a supplier verification.
type VerificationStatus string

// Verification statuses.
const (
	VerificationPending  VerificationStatus = "pending"
	VerificationApproved VerificationStatus = "approved"
	VerificationRejected VerificationStatus = "rejected"
)

// ParseVerificationStatus parses a status filter. "all" and "" mean no filter.
func ParseVerificationStatus(s string) (VerificationStatus, error) {
	switch v := VerificationStatus(strings.ToLower(strings.TrimSpace(s))); v {
	case VerificationPending, VerificationApproved, VerificationRejected:
		return v, nil
	case "", "all":
		return "", nil
	default:
		return "", fmt.Errorf("unknown verification status %q (want pending, approved, rejected or all)", s)
	}
}

// Verification is one supplier verification request.
type Verification struct {
	ID              string             `json:"id"`
	UserID          string             `json:"userId"`
	CompanyName     string             `json:"companyName"`
	Email           string             `json:"email"`
	DocumentType    string             `json:"documentType"`
	Status          VerificationStatus `json:"status"`
	SubmittedAt     time.Time          `json:"submittedAt"`
	ReviewedAt      *time.Time         `json:"reviewedAt,omitempty"`
	RejectionReason string             `json:"rejectionReason,omitempty"`
}

// ListOptions filters ListVerifications.
type ListOptions struct {
	Status VerificationStatus
	Limit  int
	// Sort is a field name, prefixed with "-" for descending order.
	Sort string
}

func (o ListOptions) query() url.Values {
	q := url.Values{}
	if o.Status != "" {
		q.Set("status", string(o.Status))
	}
	if o.Limit > 0 {
		q.Set("limit", strconv.Itoa(o.Limit))
	}
	if o.Sort != "" {
		q.Set("sort", o.Sort)
	}
	return q
}

// ListVerifications returns verification requests matching opts. An empty
// list is not an error.
func (c *Client) ListVerifications(ctx context.Context, opts ListOptions) ([]Verification, error) {
	var out []Verification
	err := c.do(ctx, http.MethodGet, PathVerifications, opts.query(), nil, &out)
	if err != nil {
		if errors.Is(err, ErrEmptyResponse) {
			return []Verification{}, nil
		}
		return nil, err
	}
	return out, nil
}

// ApproveVerification approves the verification with id.
func (c *Client) ApproveVerification(ctx context.Context, id string) (Verification, error) {
	if strings.TrimSpace(id) == "" {
		return Verification{}, fmt.Errorf("verification id is required")
	}
	var out Verification
	path := PathVerifications + "/" + url.PathEscape(id) + "/approve"
	if err := c.do(ctx, http.MethodPost, path, nil, struct{}{}, &out); err != nil {
		return Verification{}, err
	}
	return out, nil
}

// RejectVerification rejects the verification with id for reason.
func (c *Client) RejectVerification(ctx context.Context, id, reason string) (Verification, error) {
	if strings.TrimSpace(id) == "" {
		return Verification{}, fmt.Errorf("verification id is required")
	}
	if strings.TrimSpace(reason) == "" {
		return Verification{}, ErrReasonRequired
	}
	var out Verification
	path := PathVerifications + "/" + url.PathEscape(id) + "/reject"
	body := struct {
		Reason string `json:"reason"`
	}{Reason: reason}
	if err := c.do(ctx, http.MethodPost, path, nil, body, &out); err != nil {
		return Verification{}, err
	}
	return out, nil
}
