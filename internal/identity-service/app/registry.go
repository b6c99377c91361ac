package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/jcmexdev/purchase-sagas/internal/identity-service/domain"
	"github.com/jcmexdev/purchase-sagas/internal/pkg/apperrors"
	"github.com/jcmexdev/purchase-sagas/internal/pkg/storage"
)

const (
	identityPrefix = "identity"
	emailPrefix    = "identity-email/"
)

// Registry owns identity records. Creation is serialized so the email
// uniqueness check and the id allocation happen as one step.
type Registry struct {
	mu    sync.Mutex
	store storage.Store
	seq   storage.Sequence
}

func NewRegistry(store storage.Store, seq storage.Sequence) *Registry {
	return &Registry{store: store, seq: seq}
}

// NewRegistryFromBackend builds a Registry whose sequence lives in backend.
func NewRegistryFromBackend(backend storage.Backend) (*Registry, error) {
	seq, err := backend.Sequence(identityPrefix, domain.FirstIdentityID)
	if err != nil {
		return nil, fmt.Errorf("identity sequence: %w", err)
	}
	return NewRegistry(backend, seq), nil
}

func (r *Registry) Create(ctx context.Context, name, email string) (*domain.Identity, error) {
	name = strings.TrimSpace(name)
	email = domain.NormalizeEmail(email)
	if err := domain.ValidateNew(name, email); err != nil {
		return nil, apperrors.NewCoded(apperrors.ErrInvalidInput, apperrors.CodeInvalidRequest, "invalid identity: %v", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.lookupEmail(ctx, email); err == nil {
		slog.WarnContext(ctx, "email already registered", "email", email)
		return nil, apperrors.NewCoded(apperrors.ErrConflict, apperrors.CodeDuplicateEmail, "email %s is already registered", email)
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	id, err := r.seq.Next(ctx)
	if err != nil {
		return nil, fmt.Errorf("allocate identity id: %w", err)
	}

	// The index is written first. An index left without its record is stale
	// and lookupEmail ignores it, so a failed create never blocks the email.
	if err := r.store.Put(ctx, emailPrefix+email, []byte(strconv.FormatInt(id, 10))); err != nil {
		return nil, fmt.Errorf("index email %s: %w", email, err)
	}
	identity := &domain.Identity{ID: id, Name: name, Email: email}
	if err := storage.PutJSON(ctx, r.store, storage.Key(identityPrefix, id), identity); err != nil {
		return nil, fmt.Errorf("store identity %d: %w", id, err)
	}

	slog.InfoContext(ctx, "identity created", "user_id", id)
	return identity, nil
}

func (r *Registry) Fetch(ctx context.Context, id int64) (*domain.Identity, error) {
	identity, err := storage.GetJSON[domain.Identity](ctx, r.store, storage.Key(identityPrefix, id))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperrors.NewCoded(apperrors.ErrNotFound, apperrors.CodeNotFound, "user %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &identity, nil
}

func (r *Registry) FindByEmail(ctx context.Context, email string) (*domain.Identity, error) {
	email = domain.NormalizeEmail(email)
	identity, err := r.lookupEmail(ctx, email)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperrors.NewCoded(apperrors.ErrNotFound, apperrors.CodeNotFound, "user with email %s not found", email)
	}
	if err != nil {
		return nil, err
	}
	return identity, nil
}

// lookupEmail resolves the email index. It returns storage.ErrNotFound when
// there is no index entry or the entry points at a missing record.
func (r *Registry) lookupEmail(ctx context.Context, email string) (*domain.Identity, error) {
	raw, err := r.store.Get(ctx, emailPrefix+email)
	if err != nil {
		return nil, err
	}
	id, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("corrupt email index for %s: %w", email, err)
	}
	identity, err := storage.GetJSON[domain.Identity](ctx, r.store, storage.Key(identityPrefix, id))
	if err != nil {
		return nil, err
	}
	return &identity, nil
}

func (r *Registry) List(ctx context.Context) ([]domain.Identity, error) {
	return storage.ScanJSON[domain.Identity](ctx, r.store, identityPrefix+"/")
}
