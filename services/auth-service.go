package services

import (
	"context"
	"fmt"

	"team-project/dashboard/apperrors"
	"team-project/dashboard/logging"
	"team-project/dashboard/models"
)

type AuthService struct {
	authenticator Authenticator
}

func NewAuthService(authenticator Authenticator) *AuthService {
	return &AuthService{authenticator: authenticator}
}

// Login verifies the credentials against the backend. Identities with a role
// outside the dashboard table are refused like bad credentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (models.Identity, error) {
	var missing []apperrors.FieldError
	if username == "" {
		missing = append(missing, apperrors.FieldError{Field: "username", Message: requiredText})
	}
	if password == "" {
		missing = append(missing, apperrors.FieldError{Field: "password", Message: requiredText})
	}
	if len(missing) > 0 {
		return models.Identity{}, apperrors.NewValidationError(missing...)
	}

	identity, err := s.authenticator.Login(ctx, username, password)
	if err != nil {
		logging.Logger.Warnf("Event ID: LOGIN_FAILED, Description: login for %s failed: %v", username, err)
		return models.Identity{}, err
	}
	if !identity.Role.Valid() {
		logging.Logger.Warnf("Event ID: LOGIN_UNKNOWN_ROLE, Description: %s has role %q", identity.Username, identity.Role)
		return models.Identity{}, fmt.Errorf("role %q: %w", identity.Role, apperrors.ErrInvalidCredentials)
	}

	logging.Logger.Infof("Event ID: LOGIN_SUCCESS, Description: %s signed in as %s", identity.Username, identity.Role)
	return identity, nil
}
