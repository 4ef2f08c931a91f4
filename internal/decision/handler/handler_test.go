package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"remitguard/internal/audit"
	"remitguard/internal/decision"
	"remitguard/internal/decision/handler/mocks"
	"remitguard/pkg/domain"
	dErrors "remitguard/pkg/domain-errors"
)

const validPrecheckBody = `{
	"sender": {"id": "11111111-1111-4111-8111-111111111111", "name": "Alice", "country": "US"},
	"receiver": {"id": "22222222-2222-4222-8222-222222222222", "wallet": "0xabc"},
	"amount": {"value": 500, "currency": "USD"},
	"corridor": {"fromCountry": "US", "toCountry": "US"},
	"metadata": {"purpose": "rent"}
}`

type DecisionHandlerSuite struct {
	suite.Suite
	ctx context.Context
}

func TestDecisionHandlerSuite(t *testing.T) {
	suite.Run(t, new(DecisionHandlerSuite))
}

func (s *DecisionHandlerSuite) SetupSuite() {
	s.ctx = context.Background()
}

func (s *DecisionHandlerSuite) newHandler(t *testing.T) (*mocks.MockService, *chi.Mux) {
	ctrl := gomock.NewController(t)
	mockService := mocks.NewMockService(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := New(mockService, logger)
	r := chi.NewRouter()
	h.Register(r)
	return mockService, r
}

func (s *DecisionHandlerSuite) do(t *testing.T, router http.Handler, method, path, body string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequestWithContext(s.ctx, method, path, reader)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec.Code, out
}

func (s *DecisionHandlerSuite) TestHandlePrecheck() {
	s.T().Run("valid request returns decision - 200", func(t *testing.T) {
		mockService, router := s.newHandler(t)
		id := domain.NewDecisionID()
		issued := time.Date(2026, 1, 2, 3, 4, 5, 678_000_000, time.UTC)

		mockService.EXPECT().Precheck(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, input decision.PrecheckInput) (*decision.PrecheckResult, error) {
				assert.Equal(t, "11111111-1111-4111-8111-111111111111", input.Sender.ID)
				assert.Equal(t, "0xabc", input.Receiver.WalletAddress())
				assert.Equal(t, 500.0, input.Amount.Value)
				require.NotNil(t, input.Metadata)
				require.NotNil(t, input.Metadata.Purpose)
				assert.Equal(t, "rent", *input.Metadata.Purpose)
				return &decision.PrecheckResult{
					DecisionID:          id,
					Status:              decision.StatusAllow,
					Reasons:             nil,
					SignedDecisionToken: "tok",
					IssuedAt:            issued,
				}, nil
			})

		status, body := s.do(t, router, http.MethodPost, "/v1/precheck", validPrecheckBody)

		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, id.String(), body["decisionId"])
		assert.Equal(t, "ALLOW", body["status"])
		assert.Equal(t, []any{}, body["reasons"])
		assert.Equal(t, "tok", body["signedDecisionToken"])
		assert.Equal(t, "2026-01-02T03:04:05.678Z", body["issuedAt"])
	})

	s.T().Run("invalid json - 400", func(t *testing.T) {
		mockService, router := s.newHandler(t)
		mockService.EXPECT().Precheck(gomock.Any(), gomock.Any()).Times(0)

		status, body := s.do(t, router, http.MethodPost, "/v1/precheck", "{bad-json")

		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "Validation failed", body["error"])
	})

	s.T().Run("field errors are reported - 400", func(t *testing.T) {
		mockService, router := s.newHandler(t)
		mockService.EXPECT().Precheck(gomock.Any(), gomock.Any()).Times(0)

		status, body := s.do(t, router, http.MethodPost, "/v1/precheck", `{
			"sender": {"id": "not-a-uuid"},
			"amount": {"value": -1, "currency": "US"},
			"corridor": {"fromCountry": "US"}
		}`)

		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "Validation failed", body["error"])
		details := body["details"].(map[string]any)
		fields := details["fieldErrors"].(map[string]any)
		assert.Equal(t, []any{"Invalid uuid"}, fields["sender.id"])
		assert.Equal(t, []any{"Required"}, fields["receiver"])
		assert.Equal(t, []any{"Number must be greater than or equal to 0"}, fields["amount.value"])
		assert.Equal(t, []any{"String must contain exactly 3 character(s)"}, fields["amount.currency"])
		assert.Equal(t, []any{"Required"}, fields["corridor.toCountry"])
		assert.Equal(t, []any{}, details["formErrors"])
	})

	s.T().Run("currency with non-letters is rejected - 400", func(t *testing.T) {
		mockService, router := s.newHandler(t)
		mockService.EXPECT().Precheck(gomock.Any(), gomock.Any()).Times(0)

		body := strings.Replace(validPrecheckBody, `"currency": "USD"`, `"currency": "U$1"`, 1)
		status, resp := s.do(t, router, http.MethodPost, "/v1/precheck", body)

		assert.Equal(t, http.StatusBadRequest, status)
		fields := resp["details"].(map[string]any)["fieldErrors"].(map[string]any)
		assert.Equal(t, []any{"Currency must be a 3-letter code"}, fields["amount.currency"])
	})

	s.T().Run("explicit empty optional fields are kept", func(t *testing.T) {
		mockService, router := s.newHandler(t)
		mockService.EXPECT().Precheck(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, input decision.PrecheckInput) (*decision.PrecheckResult, error) {
				require.NotNil(t, input.Sender.Name)
				assert.Equal(t, "", *input.Sender.Name)
				assert.Nil(t, input.Sender.Wallet)
				assert.Nil(t, input.Receiver.Name)
				return &decision.PrecheckResult{DecisionID: domain.NewDecisionID(), Status: decision.StatusAllow}, nil
			})

		body := strings.Replace(validPrecheckBody, `"name": "Alice"`, `"name": ""`, 1)
		status, _ := s.do(t, router, http.MethodPost, "/v1/precheck", body)

		assert.Equal(t, http.StatusOK, status)
	})

	s.T().Run("service failure is generic - 500", func(t *testing.T) {
		mockService, router := s.newHandler(t)
		mockService.EXPECT().Precheck(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.Wrap(errors.New("pq: connection reset"), dErrors.CodeInternal, "failed to record decision"))

		status, body := s.do(t, router, http.MethodPost, "/v1/precheck", validPrecheckBody)

		assert.Equal(t, http.StatusInternalServerError, status)
		assert.Equal(t, "internal_error", body["error"])
		assert.NotContains(t, body, "error_description")
	})
}

func (s *DecisionHandlerSuite) TestHandleVerifyToken() {
	s.T().Run("valid token - 200", func(t *testing.T) {
		mockService, router := s.newHandler(t)
		dbStatus := decision.StatusReview
		mockService.EXPECT().VerifyToken(gomock.Any(), "tok").Return(&decision.VerifyResult{
			Claims: decision.TokenClaims{
				DecisionID: "7c9e6679-7425-40de-944b-e07fc1f90ae7",
				Status:     decision.StatusBlock,
				SenderID:   "s",
				ReceiverID: "r",
				Amount:     15000,
				Currency:   "EUR",
				IssuedAt:   time.Unix(1767225600, 0).UTC(),
			},
			DBCheck: decision.TokenCheck{Found: true, StatusMatch: false, DBStatus: &dbStatus},
		}, nil)

		status, body := s.do(t, router, http.MethodPost, "/v1/verify-decision-token", `{"token":"tok"}`)

		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, true, body["valid"])
		decoded := body["decoded"].(map[string]any)
		assert.Equal(t, "BLOCK", decoded["status"])
		assert.Equal(t, 15000.0, decoded["amount"])
		assert.Equal(t, "2026-01-01T00:00:00.000Z", decoded["issuedAt"])
		check := body["dbCheck"].(map[string]any)
		assert.Equal(t, true, check["found"])
		assert.Equal(t, false, check["statusMatch"])
		assert.Equal(t, "REVIEW", check["dbStatus"])
	})

	s.T().Run("unknown decision reports null db status - 200", func(t *testing.T) {
		mockService, router := s.newHandler(t)
		mockService.EXPECT().VerifyToken(gomock.Any(), "tok").Return(&decision.VerifyResult{
			Claims: decision.TokenClaims{DecisionID: "x", Status: decision.StatusAllow},
		}, nil)

		status, body := s.do(t, router, http.MethodPost, "/v1/verify-decision-token", `{"token":"tok"}`)

		assert.Equal(t, http.StatusOK, status)
		check := body["dbCheck"].(map[string]any)
		assert.Equal(t, false, check["found"])
		assert.Contains(t, check, "dbStatus")
		assert.Nil(t, check["dbStatus"])
	})

	s.T().Run("invalid token - 401", func(t *testing.T) {
		mockService, router := s.newHandler(t)
		mockService.EXPECT().VerifyToken(gomock.Any(), "bad").Return(nil, decision.ErrInvalidToken)

		status, body := s.do(t, router, http.MethodPost, "/v1/verify-decision-token", `{"token":"bad"}`)

		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, false, body["valid"])
		assert.Equal(t, "Invalid or expired token", body["error"])
	})

	s.T().Run("empty token - 400", func(t *testing.T) {
		mockService, router := s.newHandler(t)
		mockService.EXPECT().VerifyToken(gomock.Any(), gomock.Any()).Times(0)

		status, body := s.do(t, router, http.MethodPost, "/v1/verify-decision-token", `{"token":""}`)

		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "Validation failed", body["error"])
	})
}

func (s *DecisionHandlerSuite) TestHandleGetDecision() {
	s.T().Run("found - 200 with audit logs", func(t *testing.T) {
		mockService, router := s.newHandler(t)
		id := domain.NewDecisionID()
		created := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
		mockService.EXPECT().Get(gomock.Any(), id).Return(
			&decision.Record{
				ID: id, Status: decision.StatusReview, Reasons: []string{"High-risk corridor: US -> XX"},
				Sender: "s", Receiver: "r", Amount: "12.5", Currency: "USD",
				InputSnapshotHash: "abc", CreatedAt: created,
			},
			[]*audit.Entry{
				{ID: domain.NewAuditEntryID(), DecisionID: id, RuleName: "blacklistWhitelist", Outcome: "ALLOW",
					Reasons: nil, Type: "rule:blacklistWhitelist", InputSnapshotHash: "abc", CreatedAt: created},
				{ID: domain.NewAuditEntryID(), DecisionID: id, Seq: 1, RuleName: "corridor", Outcome: "REVIEW",
					Reasons: []string{"High-risk corridor: US -> XX"}, Type: "rule:corridor", InputSnapshotHash: "abc", CreatedAt: created},
			}, nil)

		status, body := s.do(t, router, http.MethodGet, "/v1/decisions/"+id.String(), "")

		assert.Equal(t, http.StatusOK, status)
		d := body["decision"].(map[string]any)
		assert.Equal(t, id.String(), d["id"])
		assert.Equal(t, "12.5", d["amount"])
		assert.Equal(t, "2026-02-03T04:05:06.000Z", d["createdAt"])
		logs := body["auditLogs"].([]any)
		require.Len(t, logs, 2)
		first := logs[0].(map[string]any)
		assert.Equal(t, "blacklistWhitelist", first["ruleName"])
		assert.Equal(t, []any{}, first["reasons"])
		assert.Equal(t, "2026-02-03T04:05:06.000Z", first["timestamp"])
	})

	s.T().Run("not found - 404", func(t *testing.T) {
		mockService, router := s.newHandler(t)
		id := domain.NewDecisionID()
		mockService.EXPECT().Get(gomock.Any(), id).Return(nil, nil, decision.ErrDecisionNotFound)

		status, body := s.do(t, router, http.MethodGet, "/v1/decisions/"+id.String(), "")

		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, "Decision not found", body["error"])
		assert.Equal(t, id.String(), body["id"])
	})

	s.T().Run("malformed id - 400", func(t *testing.T) {
		mockService, router := s.newHandler(t)
		mockService.EXPECT().Get(gomock.Any(), gomock.Any()).Times(0)

		status, body := s.do(t, router, http.MethodGet, "/v1/decisions/nope", "")

		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "Validation failed", body["error"])
	})
}
