// Package access decides who gets into the lounge: it enrolls members and
// verifies face captures against them.
package access

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"aerogate/internal/accesslog"
	"aerogate/internal/biometric"
	"aerogate/internal/models"
	"aerogate/internal/registry"
)

// DefaultTerminal identifies the lounge terminal in log rows.
const DefaultTerminal = "LNG-04"

// Store is the persistence the service needs.
type Store interface {
	CreateMember(ctx context.Context, m models.Member) (models.Member, error)
	MemberByPassport(ctx context.Context, passport string) (models.Member, error)
	Members(ctx context.Context) ([]models.Member, error)
	AccessRecorder
}

// AccessRecorder appends rows to the access log.
type AccessRecorder interface {
	AppendAccess(ctx context.Context, rec models.AccessRecord) (models.AccessRecord, error)
}

// Verifier checks a face capture.
type Verifier interface {
	Verify(ctx context.Context, image []byte) (VerifyResult, error)
}

// RegisterRequest is an enrollment form with its capture.
type RegisterRequest struct {
	Name     string
	Email    string
	Passport string
	Expiry   string
	Image    []byte
}

// RegisterResult is the enrollment outcome.
type RegisterResult struct {
	Status   models.RegistrationStatus `json:"status"`
	MemberID string                    `json:"member_id,omitempty"`
	Reason   string                    `json:"reason,omitempty"`
}

// VerifyResult is the verification outcome.
type VerifyResult struct {
	Status     models.Status `json:"status"`
	Name       string        `json:"name,omitempty"`
	Confidence float64       `json:"confidence"`
	Reason     string        `json:"reason,omitempty"`
}

// Granted reports whether access was granted.
func (r VerifyResult) Granted() bool { return r.Status == models.StatusGranted }

// Options tune a Service. Zero fields take defaults.
type Options struct {
	Threshold float64
	Terminal  string
	Now       func() time.Time
	NewID     func() string
}

// Service enrolls and verifies members.
type Service struct {
	store     Store
	embedder  biometric.Embedder
	threshold float64
	terminal  string
	now       func() time.Time
	newID     func() string
	log       *zap.Logger
}

// NewService wires a Service.
func NewService(store Store, embedder biometric.Embedder, logger *zap.Logger, opts Options) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		store:     store,
		embedder:  embedder,
		threshold: opts.Threshold,
		terminal:  opts.Terminal,
		now:       opts.Now,
		newID:     opts.NewID,
		log:       logger.Named("access"),
	}
	if s.threshold <= 0 {
		s.threshold = biometric.DefaultThreshold
	}
	if s.terminal == "" {
		s.terminal = DefaultTerminal
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = func() string { return "m--" + uuid.New().String() }
	}
	return s
}

// Register enrolls a new member. Malformed requests return a *ValidationError;
// every other failure is reported in the result.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (RegisterResult, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Passport = strings.TrimSpace(req.Passport)
	if err := validate(req); err != nil {
		return RegisterResult{}, err
	}

	log := s.log.With(zap.String("passport", req.Passport))
	log.Info("registration requested", zap.String("name", req.Name))

	template, err := s.embedder.Embed(req.Image)
	if err != nil {
		log.Info("registration rejected", zap.Error(err))
		return failed(ReasonNoFace), nil
	}

	expiry, err := ParseExpiry(req.Expiry)
	if err != nil {
		log.Info("registration rejected", zap.String("expiry", req.Expiry), zap.Error(err))
		return failed(ReasonInvalidExpiry), nil
	}
	now := s.now()
	if expiry.Before(models.Day(now)) {
		log.Info("registration rejected, membership expired", zap.Time("expiry", expiry))
		return failed(ReasonAlreadyExpired), nil
	}

	switch _, err := s.store.MemberByPassport(ctx, req.Passport); {
	case err == nil:
		log.Info("registration rejected, duplicate passport")
		return failed(ReasonDuplicate), nil
	case !errors.Is(err, registry.ErrNotFound):
		log.Error("failed to look up passport", zap.Error(err))
		return failed(ReasonDatabase), nil
	}

	m, err := s.store.CreateMember(ctx, models.Member{
		ID:        s.newID(),
		Name:      req.Name,
		Email:     req.Email,
		Passport:  req.Passport,
		Expiry:    expiry,
		Template:  template,
		CreatedAt: now,
	})
	switch {
	case errors.Is(err, registry.ErrDuplicatePassport):
		log.Info("registration rejected, duplicate passport")
		return failed(ReasonDuplicate), nil
	case err != nil:
		log.Error("failed to save member", zap.Error(err))
		return failed(ReasonDatabase), nil
	}

	log.Info("member saved", zap.String("member_id", m.ID))
	return RegisterResult{Status: models.RegistrationSuccess, MemberID: m.ID}, nil
}

// Verify matches a capture against every member. Scans without a usable face,
// or made before anyone enrolled, are denied without a log row.
func (s *Service) Verify(ctx context.Context, image []byte) (VerifyResult, error) {
	query, err := s.embedder.Embed(image)
	if err != nil {
		s.log.Info("verification denied", zap.Error(err))
		return VerifyResult{Status: models.StatusDenied, Reason: ReasonNoFace}, nil
	}

	members, err := s.store.Members(ctx)
	if err != nil {
		return VerifyResult{}, err
	}
	if len(members) == 0 {
		return VerifyResult{Status: models.StatusDenied, Reason: ReasonNoMembers}, nil
	}

	templates := make([][]float64, len(members))
	for i, m := range members {
		templates[i] = m.Template
	}
	idx, score := biometric.BestMatch(query, templates)

	now := s.now()
	res := VerifyResult{
		Status:     models.StatusDenied,
		Name:       models.UnknownName,
		Confidence: accesslog.Round2(score * 100),
	}
	rec := models.AccessRecord{
		Name:       models.UnknownName,
		Status:     models.StatusDenied,
		Confidence: score * 100,
		Terminal:   s.terminal,
		Timestamp:  now,
	}

	switch {
	case idx < 0:
		res.Reason = ReasonNoMatch
	default:
		best := members[idx]
		res.Name, rec.Name, rec.Passport = best.Name, best.Name, best.Passport
		switch {
		case score < s.threshold:
			res.Reason = ReasonNoMatch
		case !best.Active(now):
			res.Reason = ReasonExpired
		default:
			res.Status, rec.Status = models.StatusGranted, models.StatusGranted
		}
	}

	if _, err := s.store.AppendAccess(ctx, rec); err != nil {
		return VerifyResult{}, err
	}

	s.log.Info("verification complete",
		zap.String("status", string(res.Status)),
		zap.String("name", res.Name),
		zap.Float64("confidence", res.Confidence),
		zap.String("reason", res.Reason))
	return res, nil
}

func failed(reason string) RegisterResult {
	return RegisterResult{Status: models.RegistrationFailed, Reason: reason}
}

func validate(req RegisterRequest) error {
	switch {
	case req.Name == "":
		return &ValidationError{Field: "name", Message: "required"}
	case req.Email == "":
		return &ValidationError{Field: "email", Message: "required"}
	case !strings.Contains(req.Email, "@"):
		return &ValidationError{Field: "email", Message: "must be an email address"}
	case req.Passport == "":
		return &ValidationError{Field: "passport", Message: "required"}
	case strings.TrimSpace(req.Expiry) == "":
		return &ValidationError{Field: "expiry", Message: "required"}
	case len(req.Image) == 0:
		return &ValidationError{Field: "file", Message: "required"}
	}
	return nil
}
