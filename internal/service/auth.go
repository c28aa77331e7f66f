package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sigapp/backend/internal/client"
	"github.com/sigapp/backend/internal/dto"
	"github.com/sigapp/backend/internal/model"
	"github.com/sigapp/backend/internal/repository"
)

type AuthService interface {
	ValidateToken(ctx context.Context, token string) (model.User, error)
}

type authService struct {
	userRepository      repository.UserRepository
	authClient          client.AuthClient
	tokenExpireVerifier client.TokenExpireVerifier
}

func newAuthService(userRepository repository.UserRepository, authClient client.AuthClient, verifier client.TokenExpireVerifier) AuthService {
	return &authService{userRepository: userRepository, authClient: authClient, tokenExpireVerifier: verifier}
}

// ValidateToken verifies a Firebase ID token and resolves it to a user,
// creating the user row on first sign-in. Identity is the phone number.
func (a *authService) ValidateToken(ctx context.Context, token string) (model.User, error) {
	response, err := a.authClient.VerifyIDToken(ctx, token)
	if err != nil {
		if a.tokenExpireVerifier(err) {
			return model.User{}, fmt.Errorf("%w: %v", dto.ErrNotAuthorized, err)
		}
		return model.User{}, fmt.Errorf("%w: %v", dto.ErrInternalFailure, err)
	}

	claim, ok := response.Claims["phone_number"]
	if !ok {
		return model.User{}, fmt.Errorf("%w: %v", dto.ErrInternalFailure, "phone_number claim not found")
	}
	phoneNumber, ok := claim.(string)
	if !ok {
		return model.User{}, fmt.Errorf("%w: %v", dto.ErrInternalFailure, "phone_number claim is not a string")
	}

	user, err := a.userRepository.GetByID(response.UID)
	if err != nil {
		if errors.Is(err, dto.ErrNotFound) {
			newUser, err := a.userRepository.Create(model.User{
				ID:          response.UID,
				PhoneNumber: phoneNumber,
			})
			if err != nil {
				return model.User{}, err // internal error
			}
			return newUser, nil
		}
		return model.User{}, err
	}

	if user.PhoneNumber != phoneNumber {
		user.PhoneNumber = phoneNumber

		_, err = a.userRepository.Save(user)
		if err != nil {
			return model.User{}, err
		}
	}

	return user, nil
}
