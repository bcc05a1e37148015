package payment_gateway

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"consultation-service/internal/app/config"
	"consultation-service/internal/app/contracts"
	"consultation-service/internal/pkg/constvars"
	"consultation-service/internal/pkg/dto/requests"
	"consultation-service/internal/pkg/dto/responses"
	"consultation-service/internal/pkg/exceptions"
	"consultation-service/internal/pkg/utils"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	authorizationsPath = "/v1/authorizations"
	defaultTimeout     = 10 * time.Second
)

var (
	paymentGatewayServiceInstance contracts.PaymentGatewayService
	oncePaymentGatewayService     sync.Once
)

type paymentGatewayService struct {
	BaseUrl    string
	Username   string
	ApiKey     string
	Timeout    time.Duration
	Limiter    *rate.Limiter
	HTTPClient *http.Client
	Log        *zap.Logger
}

type gatewayFailure struct {
	FailureCode    string `json:"failure_code"`
	FailureMessage string `json:"failure_message"`
}

func NewPaymentGatewayService(internalConfig *config.InternalConfig, logger *zap.Logger) contracts.PaymentGatewayService {
	oncePaymentGatewayService.Do(func() {
		cfg := internalConfig.PaymentGateway

		timeout := time.Duration(cfg.RequestTimeoutInSeconds) * time.Second
		if timeout <= 0 {
			timeout = defaultTimeout
		}

		limit := rate.Inf
		if cfg.RateLimitPerSecond > 0 {
			limit = rate.Limit(cfg.RateLimitPerSecond)
		}
		burst := cfg.RateLimitBurst
		if burst <= 0 {
			burst = 1
		}

		paymentGatewayServiceInstance = &paymentGatewayService{
			BaseUrl:    strings.TrimRight(cfg.BaseUrl, "/"),
			Username:   cfg.Username,
			ApiKey:     cfg.ApiKey,
			Timeout:    timeout,
			Limiter:    rate.NewLimiter(limit, burst),
			HTTPClient: &http.Client{},
			Log:        logger,
		}
	})
	return paymentGatewayServiceInstance
}

func (s *paymentGatewayService) CreateAuthorization(ctx context.Context, request *requests.GatewayAuthorization) (*responses.GatewayAuthorization, error) {
	requestID := utils.RequestIDFromContext(ctx)
	s.Log.Info("paymentGatewayService.CreateAuthorization called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingAmountKey, request.Amount),
	)

	var authorization responses.GatewayAuthorization
	err := s.send(ctx, constvars.GatewayOperationAuthorize, authorizationsPath, request.IdempotencyKey, request, &authorization)
	if err != nil {
		return nil, err
	}
	if authorization.FailureCode != "" {
		return nil, fmt.Errorf("authorization declined: %s: %s", authorization.FailureCode, authorization.FailureMessage)
	}

	s.Log.Info("paymentGatewayService.CreateAuthorization succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingAuthorizationIDKey, authorization.ID),
	)
	return &authorization, nil
}

func (s *paymentGatewayService) Capture(ctx context.Context, authorizationID string) (*responses.GatewayAuthorizationStatus, error) {
	return s.resolve(ctx, constvars.GatewayOperationCapture, authorizationID)
}

func (s *paymentGatewayService) Cancel(ctx context.Context, authorizationID string) (*responses.GatewayAuthorizationStatus, error) {
	return s.resolve(ctx, constvars.GatewayOperationCancel, authorizationID)
}

func (s *paymentGatewayService) resolve(ctx context.Context, operation, authorizationID string) (*responses.GatewayAuthorizationStatus, error) {
	requestID := utils.RequestIDFromContext(ctx)
	s.Log.Info("paymentGatewayService.resolve called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String("operation", operation),
		zap.String(constvars.LoggingAuthorizationIDKey, authorizationID),
	)

	path := fmt.Sprintf("%s/%s/%s", authorizationsPath, authorizationID, operation)
	idempotencyKey := fmt.Sprintf("%s-%s", operation, authorizationID)

	var status responses.GatewayAuthorizationStatus
	if err := s.send(ctx, operation, path, idempotencyKey, struct{}{}, &status); err != nil {
		return nil, err
	}
	if status.FailureCode != "" {
		return nil, fmt.Errorf("%s declined: %s: %s", operation, status.FailureCode, status.FailureMessage)
	}
	return &status, nil
}

// send posts payload to the gateway and decodes the response into out. Timeouts, including gateway
// side ones, are reported as GatewayTimeout so callers never advance state on an unknown outcome.
func (s *paymentGatewayService) send(ctx context.Context, operation, path, idempotencyKey string, payload, out interface{}) error {
	requestID := utils.RequestIDFromContext(ctx)
	url := s.BaseUrl + path

	body, err := json.Marshal(payload)
	if err != nil {
		return exceptions.ErrCannotMarshalJSON(err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	if err := s.Limiter.Wait(ctx); err != nil {
		s.Log.Warn("paymentGatewayService.send rate limit wait aborted",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingGatewayURLKey, url),
			zap.Error(err),
		)
		return exceptions.ErrSendHTTPRequest(err, url)
	}

	req, err := http.NewRequestWithContext(ctx, constvars.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return exceptions.ErrCreateHTTPRequest(err)
	}
	req.SetBasicAuth(s.Username, s.ApiKey)
	req.Header.Set(constvars.HeaderContentType, constvars.MIMEApplicationJSON)
	if idempotencyKey != "" {
		req.Header.Set(constvars.HeaderIdempotencyKey, idempotencyKey)
	}
	if requestID != "" {
		req.Header.Set(constvars.HeaderXRequestID, requestID)
	}

	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		s.Log.Error("paymentGatewayService.send error sending HTTP request",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingGatewayURLKey, url),
			zap.Error(err),
		)
		if isTimeout(err) {
			return exceptions.ErrGatewayTimeout(err, operation)
		}
		return exceptions.ErrSendHTTPRequest(err, url)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(err) {
			return exceptions.ErrGatewayTimeout(err, operation)
		}
		return exceptions.ErrDecodeHTTPResponse(err, url)
	}

	if resp.StatusCode == http.StatusGatewayTimeout || resp.StatusCode == http.StatusRequestTimeout {
		return exceptions.ErrGatewayTimeout(fmt.Errorf("gateway responded %d", resp.StatusCode), operation)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var failure gatewayFailure
		_ = json.Unmarshal(bodyBytes, &failure)
		s.Log.Error("paymentGatewayService.send unexpected HTTP status",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingGatewayURLKey, url),
			zap.Int(constvars.LoggingStatusCodeKey, resp.StatusCode),
			zap.String("failure_code", failure.FailureCode),
		)
		return exceptions.ErrUnexpectedHTTPStatus(fmt.Errorf("%s: %s", failure.FailureCode, failure.FailureMessage), resp.StatusCode, url)
	}

	if err := json.Unmarshal(bodyBytes, out); err != nil {
		return exceptions.ErrDecodeHTTPResponse(err, url)
	}
	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
