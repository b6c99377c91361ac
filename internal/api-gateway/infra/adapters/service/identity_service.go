package service

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jcmexdev/purchase-sagas/internal/api-gateway/core/domain/entity"
	"github.com/jcmexdev/purchase-sagas/internal/api-gateway/core/ports"
	"github.com/jcmexdev/purchase-sagas/internal/pkg/apperrors"
)

var _ ports.IdentityService = (*HTTPIdentityService)(nil)

// HTTPIdentityService talks to the identity registry.
type HTTPIdentityService struct {
	client  Invoker
	baseURL string
}

func NewHTTPIdentityService(client Invoker, baseURL string) *HTTPIdentityService {
	return &HTTPIdentityService{client: client, baseURL: baseURL}
}

func (s *HTTPIdentityService) Register(ctx context.Context, name, email string) (*entity.User, error) {
	var user entity.User
	body := map[string]string{"name": name, "email": email}
	if err := s.client.Invoke(ctx, http.MethodPost, joinURL(s.baseURL, "/users/create"), body, &user); err != nil {
		return nil, apperrors.FromRemote(err)
	}
	return &user, nil
}

func (s *HTTPIdentityService) Login(ctx context.Context, email string) (*entity.User, error) {
	var user entity.User
	body := map[string]string{"email": email}
	if err := s.client.Invoke(ctx, http.MethodPost, joinURL(s.baseURL, "/users/login"), body, &user); err != nil {
		return nil, apperrors.FromRemote(err)
	}
	return &user, nil
}

func (s *HTTPIdentityService) GetUser(ctx context.Context, id int64) (*entity.User, error) {
	var user entity.User
	if err := s.client.Invoke(ctx, http.MethodGet, joinURL(s.baseURL, fmt.Sprintf("/users/%d", id)), nil, &user); err != nil {
		return nil, apperrors.FromRemote(err)
	}
	return &user, nil
}
