package decision

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mssola/useragent"

	"remitguard/internal/audit"
	"remitguard/internal/decision/metrics"
	"remitguard/internal/decision/ports"
	"remitguard/pkg/canonhash"
	"remitguard/pkg/domain"
	dErrors "remitguard/pkg/domain-errors"
	"remitguard/pkg/platform/sentinel"
	"remitguard/pkg/requestcontext"
)

// ErrInvalidToken is returned by VerifyToken for any token that fails
// verification. Callers must not distinguish expiry from forgery.
var ErrInvalidToken = dErrors.New(dErrors.CodeUnauthorized, "Invalid or expired token")

// ErrDecisionNotFound is returned by Get for unknown decision IDs.
var ErrDecisionNotFound = dErrors.New(dErrors.CodeNotFound, "Decision not found")

// TokenSigner issues and verifies decision tokens.
type TokenSigner interface {
	Sign(claims TokenClaims) (token string, issuedAt time.Time, err error)
	// Verify returns ErrInvalidToken for every failure.
	Verify(token string) (TokenClaims, error)
}

// AuditReader reads the audit trail of a decision.
type AuditReader interface {
	ListByDecision(ctx context.Context, decisionID domain.DecisionID) ([]*audit.Entry, error)
}

// Service orchestrates a precheck: snapshot, evaluate, record, sign.
type Service struct {
	engine    *Engine
	tx        StoreTx
	decisions Store
	auditLog  AuditReader
	signer    TokenSigner
	events    ports.EventPublisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	newID     func() domain.DecisionID
}

// Option configures a Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithEvents publishes a decision_made event after each committed decision.
func WithEvents(events ports.EventPublisher) Option {
	return func(s *Service) {
		s.events = events
	}
}

// WithIDGenerator overrides decision ID generation.
func WithIDGenerator(fn func() domain.DecisionID) Option {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

func New(engine *Engine, tx StoreTx, decisions Store, auditLog AuditReader, signer TokenSigner, opts ...Option) (*Service, error) {
	switch {
	case engine == nil:
		return nil, errors.New("engine is required")
	case tx == nil:
		return nil, errors.New("transaction boundary is required")
	case decisions == nil:
		return nil, errors.New("decision store is required")
	case auditLog == nil:
		return nil, errors.New("audit reader is required")
	case signer == nil:
		return nil, errors.New("token signer is required")
	}

	s := &Service{
		engine:    engine,
		tx:        tx,
		decisions: decisions,
		auditLog:  auditLog,
		signer:    signer,
		logger:    slog.Default(),
		newID:     domain.NewDecisionID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Precheck evaluates input, records the decision with one audit row per rule
// inside one transaction, and returns a signed token attesting to it. Nothing
// is recorded when evaluation fails.
func (s *Service) Precheck(ctx context.Context, input PrecheckInput) (*PrecheckResult, error) {
	start := time.Now()
	defer func() {
		s.metrics.ObservePrecheckLatency(time.Since(start))
	}()

	hash, err := canonhash.SnapshotHash(input)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash precheck input")
	}

	decision, results, err := s.engine.Evaluate(ctx, input)
	if err != nil {
		s.logger.ErrorContext(ctx, "policy evaluation failed",
			"request_id", requestcontext.RequestID(ctx),
			"input_snapshot_hash", hash,
			"error", err,
		)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "policy evaluation failed")
	}

	now := requestcontext.Now(ctx)
	record := &Record{
		ID:                s.newID(),
		Status:            decision.Status,
		Reasons:           decision.Reasons,
		Sender:            input.Sender.ID,
		Receiver:          input.Receiver.ID,
		Amount:            FormatNumber(input.Amount.Value),
		Currency:          input.Amount.Currency,
		InputSnapshotHash: hash,
		CreatedAt:         now,
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context, stores TxStores) error {
		if err := stores.Decisions.Save(txCtx, record); err != nil {
			return fmt.Errorf("save decision: %w", err)
		}
		for i, result := range results {
			entry, err := newAuditEntry(record, i, result)
			if err != nil {
				return err
			}
			if err := stores.Audit.Append(txCtx, entry); err != nil {
				return fmt.Errorf("append audit entry %s: %w", result.RuleName, err)
			}
		}
		return nil
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to record decision",
			"request_id", requestcontext.RequestID(ctx),
			"decision_id", record.ID,
			"error", err,
		)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record decision")
	}

	token, _, err := s.signer.Sign(TokenClaims{
		DecisionID: record.ID.String(),
		Status:     decision.Status,
		SenderID:   input.Sender.ID,
		ReceiverID: input.Receiver.ID,
		Amount:     input.Amount.Value,
		Currency:   input.Amount.Currency,
		IssuedAt:   now,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to sign decision token",
			"request_id", requestcontext.RequestID(ctx),
			"decision_id", record.ID,
			"error", err,
		)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign decision token")
	}

	s.metrics.IncrementOutcome(string(decision.Status))
	s.logger.InfoContext(ctx, "precheck decision recorded",
		"request_id", requestcontext.RequestID(ctx),
		"decision_id", record.ID,
		"status", decision.Status,
		"reasons", len(decision.Reasons),
		"input_snapshot_hash", hash,
	)
	s.emit(ctx, record, input)

	return &PrecheckResult{
		DecisionID:          record.ID,
		Status:              decision.Status,
		Reasons:             decision.Reasons,
		SignedDecisionToken: token,
		IssuedAt:            now,
	}, nil
}

// VerifyToken verifies a decision token and cross-checks it against the
// stored decision. The storage check is informational: a valid token for an
// unknown decision still verifies, with Found=false.
func (s *Service) VerifyToken(ctx context.Context, token string) (*VerifyResult, error) {
	claims, err := s.signer.Verify(token)
	if err != nil {
		s.metrics.IncrementTokenVerification(false)
		return nil, ErrInvalidToken
	}
	s.metrics.IncrementTokenVerification(true)

	check := TokenCheck{}
	id, err := domain.ParseDecisionID(claims.DecisionID)
	if err != nil {
		return &VerifyResult{Claims: claims, DBCheck: check}, nil
	}

	record, err := s.decisions.FindByID(ctx, id)
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
	case err != nil:
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load decision")
	default:
		status := record.Status
		check = TokenCheck{
			Found:       true,
			StatusMatch: record.Status == claims.Status,
			DBStatus:    &status,
		}
	}
	return &VerifyResult{Claims: claims, DBCheck: check}, nil
}

// Get returns a decision and its audit rows in evaluation order.
func (s *Service) Get(ctx context.Context, id domain.DecisionID) (*Record, []*audit.Entry, error) {
	record, err := s.decisions.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil, ErrDecisionNotFound
		}
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load decision")
	}
	entries, err := s.auditLog.ListByDecision(ctx, id)
	if err != nil {
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load audit log")
	}
	return record, entries, nil
}

type auditPayload struct {
	RuleName string  `json:"ruleName"`
	Outcome  Status  `json:"outcome"`
	Reason   *string `json:"reason"`
}

func newAuditEntry(record *Record, seq int, result RuleResult) (*audit.Entry, error) {
	reasons := []string{}
	var reason *string
	if result.Reason != "" {
		reasons = append(reasons, result.Reason)
		reason = &result.Reason
	}
	payload, err := json.Marshal(auditPayload{
		RuleName: result.RuleName,
		Outcome:  result.Outcome,
		Reason:   reason,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal audit payload: %w", err)
	}
	return &audit.Entry{
		ID:                domain.NewAuditEntryID(),
		DecisionID:        record.ID,
		Seq:               seq,
		RuleName:          result.RuleName,
		InputSnapshotHash: record.InputSnapshotHash,
		Outcome:           string(result.Outcome),
		Reasons:           reasons,
		Type:              "rule:" + result.RuleName,
		Payload:           payload,
		CreatedAt:         record.CreatedAt,
	}, nil
}

func (s *Service) emit(ctx context.Context, record *Record, input PrecheckInput) {
	if s.events == nil {
		return
	}
	event := audit.Event{
		Action:            audit.EventDecisionMade,
		Timestamp:         record.CreatedAt,
		DecisionID:        record.ID.String(),
		Status:            string(record.Status),
		Reasons:           record.Reasons,
		SenderID:          input.Sender.ID,
		ReceiverID:        input.Receiver.ID,
		Amount:            input.Amount.Value,
		Currency:          input.Amount.Currency,
		InputSnapshotHash: record.InputSnapshotHash,
		RequestID:         requestcontext.RequestID(ctx),
		ClientIP:          requestcontext.ClientIP(ctx),
		Client:            clientName(requestcontext.UserAgent(ctx)),
	}
	if err := s.events.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit decision event",
			"decision_id", record.ID,
			"error", err,
		)
	}
}

// clientName reduces a User-Agent to "browser/version" or the raw product name.
func clientName(raw string) string {
	if raw == "" {
		return ""
	}
	ua := useragent.New(raw)
	if name, version := ua.Browser(); name != "" {
		if version != "" {
			return name + "/" + version
		}
		return name
	}
	return raw
}
