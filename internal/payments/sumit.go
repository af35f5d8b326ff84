// Package payments runs premium checkout through the SUMIT gateway and settles
// its payment notifications.
package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"smartstudio/internal/domain"
)

const (
	DefaultSumitBaseURL = "https://api.sumit.co.il"
	beginRedirectPath   = "/billing/payments/beginredirect/"
)

type SumitOptions struct {
	APIKey     string
	CompanyID  int64
	BaseURL    string
	HTTPClient *http.Client
	Logger     *zerolog.Logger
}

// SumitClient calls the SUMIT billing API.
type SumitClient struct {
	apiKey     string
	companyID  int64
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

type sumitCredentials struct {
	CompanyID int64  `json:"CompanyID"`
	APIKey    string `json:"APIKey"`
}

type SumitCustomer struct {
	Name               string `json:"Name"`
	EmailAddress       string `json:"EmailAddress,omitempty"`
	ExternalIdentifier string `json:"ExternalIdentifier"`
}

type SumitItemDetails struct {
	Name        string `json:"Name"`
	Description string `json:"Description,omitempty"`
}

type SumitItem struct {
	Item      SumitItemDetails `json:"Item"`
	Quantity  int              `json:"Quantity"`
	UnitPrice float64          `json:"UnitPrice"`
}

// BeginRedirectRequest is the hosted payment page request, minus credentials.
type BeginRedirectRequest struct {
	Customer                 SumitCustomer `json:"Customer"`
	Items                    []SumitItem   `json:"Items"`
	VATIncluded              bool          `json:"VATIncluded"`
	RedirectURL              string        `json:"RedirectURL"`
	CancelRedirectURL        string        `json:"CancelRedirectURL"`
	IPNURL                   string        `json:"IPNURL"`
	ExternalIdentifier       string        `json:"ExternalIdentifier"`
	MaximumPayments          int           `json:"MaximumPayments"`
	SendUpdateByEmailAddress string        `json:"SendUpdateByEmailAddress,omitempty"`
	Language                 string        `json:"Language"`
}

type beginRedirectPayload struct {
	Credentials sumitCredentials `json:"Credentials"`
	BeginRedirectRequest
}

type beginRedirectResponse struct {
	Status                string `json:"Status"`
	UserErrorMessage      string `json:"UserErrorMessage"`
	TechnicalErrorDetails string `json:"TechnicalErrorDetails"`
	Data                  *struct {
		PaymentURL string `json:"PaymentURL"`
	} `json:"Data"`
}

// GatewayError is a request the gateway answered but rejected.
type GatewayError struct {
	Status  string
	Details string
}

func (e *GatewayError) Error() string {
	if e.Details == "" {
		return fmt.Sprintf("sumit rejected request: %s", e.Status)
	}
	return fmt.Sprintf("sumit rejected request: %s: %s", e.Status, e.Details)
}

func NewSumitClient(opts SumitOptions) (*SumitClient, error) {
	key := strings.TrimSpace(opts.APIKey)
	if key == "" || opts.CompanyID == 0 {
		return nil, fmt.Errorf("sumit credentials: %w", domain.ErrNotConfigured)
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultSumitBaseURL
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &SumitClient{apiKey: key, companyID: opts.CompanyID, baseURL: baseURL, httpClient: client, logger: logger}, nil
}

// BeginRedirect creates a hosted payment page and returns its URL.
func (c *SumitClient) BeginRedirect(ctx context.Context, req BeginRedirectRequest) (string, error) {
	payload := beginRedirectPayload{
		Credentials:          sumitCredentials{CompanyID: c.companyID, APIKey: c.apiKey},
		BeginRedirectRequest: req,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+beginRedirectPath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: sumit: %v", domain.ErrProviderFailure, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read sumit response: %w", err)
	}
	var out beginRedirectResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("%w: sumit status %d: undecodable response", domain.ErrProviderFailure, resp.StatusCode)
	}

	if !strings.HasPrefix(out.Status, "Success") {
		details := out.UserErrorMessage
		if details == "" {
			details = out.TechnicalErrorDetails
		}
		c.logger.Warn().
			Str("status", out.Status).
			Str("order_id", req.ExternalIdentifier).
			Str("technical", out.TechnicalErrorDetails).
			Msg("sumit: beginredirect rejected")
		return "", &GatewayError{Status: out.Status, Details: details}
	}
	if out.Data == nil || out.Data.PaymentURL == "" {
		return "", &GatewayError{Status: out.Status, Details: "missing payment url"}
	}
	return out.Data.PaymentURL, nil
}
