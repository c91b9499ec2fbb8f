package service

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"dukaan/backend/internal/cache"
	"dukaan/backend/internal/domain"
	"dukaan/backend/internal/events"
	"dukaan/backend/internal/inventory"
	"dukaan/backend/internal/store"
)

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

type Options struct {
	ReceiptCache cache.ReceiptCache
	ReceiptTTL   time.Duration
	Locker       cache.Locker
	LockTTL      time.Duration
	Publisher    events.Publisher
	Logger       zerolog.Logger
	PhoneRegion  string
	Now          func() time.Time
}

type Service struct {
	repo        store.Repository
	receipts    cache.ReceiptCache
	receiptTTL  time.Duration
	locker      cache.Locker
	lockTTL     time.Duration
	publisher   events.Publisher
	validator   *validator.Validate
	log         zerolog.Logger
	phoneRegion string
	now         func() time.Time
}

func New(repo store.Repository, opts Options) *Service {
	if opts.ReceiptCache == nil {
		opts.ReceiptCache = cache.NoopReceiptCache{}
	}
	if opts.ReceiptTTL <= 0 {
		opts.ReceiptTTL = 5 * time.Minute
	}
	if opts.Locker == nil {
		opts.Locker = cache.NewLocalLocker()
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = 10 * time.Second
	}
	if opts.Publisher == nil {
		opts.Publisher = events.NoopPublisher{}
	}
	if opts.PhoneRegion == "" {
		opts.PhoneRegion = "PK"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Service{
		repo:        repo,
		receipts:    opts.ReceiptCache,
		receiptTTL:  opts.ReceiptTTL,
		locker:      opts.Locker,
		lockTTL:     opts.LockTTL,
		publisher:   opts.Publisher,
		validator:   newValidator(),
		log:         opts.Logger.With().Str("component", "service").Logger(),
		phoneRegion: strings.ToUpper(opts.PhoneRegion),
		now:         opts.Now,
	}
}

// requireRole returns the actor when it holds one of roles. With no roles
// any authenticated actor passes.
func requireRole(ctx context.Context, roles ...domain.Role) (domain.Actor, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.UserID == 0 {
		return domain.Actor{}, ErrUnauthorized
	}
	if len(roles) > 0 && !slices.Contains(roles, actor.Role) {
		return domain.Actor{}, ErrForbidden
	}
	return actor, nil
}

var (
	catalogWriters = []domain.Role{domain.RoleAdmin, domain.RoleManager, domain.RoleStockKeeper}
	managers       = []domain.Role{domain.RoleAdmin, domain.RoleManager}
	sellers        = []domain.Role{domain.RoleAdmin, domain.RoleManager, domain.RoleCashier}
)

func (s *Service) logAudit(ctx context.Context, action string, entity string, entityID int64, detail string) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		actor = domain.Actor{Username: "system"}
	}
	evt := s.log.Info().
		Str("action", action).
		Str("entity", entity).
		Int64("entity_id", entityID).
		Str("actor", actor.Username).
		Str("actor_role", string(actor.Role))
	if detail != "" {
		evt = evt.Str("detail", detail)
	}
	evt.Msg("audit")
}

// commit writes uow and publishes its stock events. A failed publish is
// logged and does not undo the committed work.
func (s *Service) commit(ctx context.Context, uow *inventory.UnitOfWork) (*inventory.UnitOfWork, error) {
	committed, err := s.repo.Commit(ctx, uow)
	if err != nil {
		return nil, err
	}
	if err := s.publisher.PublishStockEvents(ctx, committed.Events()); err != nil {
		s.log.Warn().Err(err).
			Str("kind", string(committed.Kind)).
			Int64("reference_id", committed.ReferenceID()).
			Msg("failed to publish stock events")
	}
	return committed, nil
}

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func verifyPassword(stored string, input string) bool {
	if stored == "" || strings.TrimSpace(input) == "" || !isPasswordHash(stored) {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(input)) == nil
}

func isPasswordHash(value string) bool {
	return strings.HasPrefix(value, "$2a$") || strings.HasPrefix(value, "$2b$") || strings.HasPrefix(value, "$2y$")
}

func trimmed(value *string) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(*value)
}

func setString(dst *string, value *string) {
	if value != nil {
		*dst = strings.TrimSpace(*value)
	}
}
