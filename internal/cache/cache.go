package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"dukaan/backend/internal/domain"
)

var (
	ErrLockNotObtained = errors.New("lock not obtained")
	ErrLockNotHeld     = errors.New("lock not held")
)

type ReceiptCache interface {
	Get(ctx context.Context, saleID int64) (*domain.Receipt, bool, error)
	Set(ctx context.Context, saleID int64, value *domain.Receipt, ttl time.Duration) error
}

// Locker serializes work on a key across processes.
type Locker interface {
	Obtain(ctx context.Context, key string, ttl time.Duration) (Lock, error)
}

type Lock interface {
	Release(ctx context.Context) error
}

func ReceiptKey(saleID int64) string {
	return fmt.Sprintf("receipt:%d", saleID)
}

func SaleLockKey(branchID int64, invoiceNo string) string {
	return fmt.Sprintf("sale:%d:%s", branchID, invoiceNo)
}

type NoopReceiptCache struct{}

func (NoopReceiptCache) Get(_ context.Context, _ int64) (*domain.Receipt, bool, error) {
	return nil, false, nil
}

func (NoopReceiptCache) Set(_ context.Context, _ int64, _ *domain.Receipt, _ time.Duration) error {
	return nil
}

// LocalLocker is the single process fallback used when Redis is not configured.
// Release frees a key only while the lock's owner token still holds it.
type LocalLocker struct {
	mu   sync.Mutex
	held map[string]heldLock
}

type heldLock struct {
	token   string
	expires time.Time
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: make(map[string]heldLock)}
}

func (l *LocalLocker) Obtain(_ context.Context, key string, ttl time.Duration) (Lock, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if current, ok := l.held[key]; ok && now.Before(current.expires) {
		return nil, ErrLockNotObtained
	}
	token := uuid.NewString()
	l.held[key] = heldLock{token: token, expires: now.Add(ttl)}
	return &localLock{owner: l, key: key, token: token}, nil
}

type localLock struct {
	owner *LocalLocker
	key   string
	token string
}

func (l *localLock) Release(_ context.Context) error {
	l.owner.mu.Lock()
	defer l.owner.mu.Unlock()
	current, ok := l.owner.held[l.key]
	if !ok || current.token != l.token {
		return ErrLockNotHeld
	}
	delete(l.owner.held, l.key)
	return nil
}
