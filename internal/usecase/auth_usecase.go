package usecase

import (
	"context"
	"errors"
	"log"
	"time"

	"carpool/infrastructure/cache"
	"carpool/internal/entity"
	"carpool/internal/repository"
	"carpool/pkg/jwt"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrEmailAlreadyTaken   = errors.New("email already registered")
	ErrInvalidRole         = errors.New("role must be parent or admin")
	ErrWeakPassword        = errors.New("password must be at least 6 characters")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrExpiredRefreshToken = errors.New("refresh token has expired")
	ErrRevokedRefreshToken = errors.New("refresh token has been revoked")
	ErrInvalidResetToken   = errors.New("invalid or expired reset token")
	ErrInvalidAccessToken  = errors.New("invalid or expired access token")
	ErrEntraTokenInvalid   = errors.New("invalid Entra access token")
)

// EntraVerifier validates a federated access token and extracts identity
// claims. Implemented by pkg/jwt.EntraVerifier.
type EntraVerifier interface {
	Verify(ctx context.Context, accessToken string) (entity.EntraClaims, error)
}

// AdminPolicy decides which emails get the admin role on federated login.
type AdminPolicy interface {
	IsAdmin(email string) bool
}

type AuthUsecase interface {
	Register(ctx context.Context, req entity.RegisterRequest) (entity.AuthResponse, error)
	Authenticate(ctx context.Context, req entity.LoginRequest) (entity.AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (entity.AuthResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	RequestPasswordReset(ctx context.Context, email string) (entity.PasswordResetTicket, error)
	ResetPassword(ctx context.Context, token, newPassword string) error
	ChangePassword(ctx context.Context, accessToken, currentPassword, newPassword string) error
	EntraLogin(ctx context.Context, accessToken string) (entity.AuthResponse, error)
	ValidateAccessToken(token string) (*entity.TokenClaims, error)
}

type authUsecase struct {
	userRepo         repository.UserRepository
	refreshTokenRepo repository.RefreshTokenRepository
	familyRepo       repository.FamilyRepository
	resetTokens      cache.TokenStore
	jwtManager       *jwt.JWTManager
	entraVerifier    EntraVerifier
	adminPolicy      AdminPolicy
	resetTokenTTL    time.Duration
}

func NewAuthUsecase(
	userRepo repository.UserRepository,
	refreshTokenRepo repository.RefreshTokenRepository,
	familyRepo repository.FamilyRepository,
	resetTokens cache.TokenStore,
	jwtManager *jwt.JWTManager,
	entraVerifier EntraVerifier,
	adminPolicy AdminPolicy,
	resetTokenTTL time.Duration,
) AuthUsecase {
	return &authUsecase{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		familyRepo:       familyRepo,
		resetTokens:      resetTokens,
		jwtManager:       jwtManager,
		entraVerifier:    entraVerifier,
		adminPolicy:      adminPolicy,
		resetTokenTTL:    resetTokenTTL,
	}
}

func (u *authUsecase) Register(ctx context.Context, req entity.RegisterRequest) (entity.AuthResponse, error) {
	if !entity.ValidRole(req.Role) {
		return entity.AuthResponse{}, ErrInvalidRole
	}
	if len(req.Password) < 6 {
		return entity.AuthResponse{}, ErrWeakPassword
	}

	emailExists, err := u.userRepo.EmailExists(ctx, req.Email)
	if err != nil {
		return entity.AuthResponse{}, err
	}
	if emailExists {
		return entity.AuthResponse{}, ErrEmailAlreadyTaken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return entity.AuthResponse{}, err
	}

	user := entity.User{
		Email:        req.Email,
		PasswordHash: string(hashedPassword),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         req.Role,
		Phone:        req.Phone,
	}

	userId, err := u.userRepo.Create(ctx, user)
	if err != nil {
		return entity.AuthResponse{}, err
	}
	user.Id = userId

	// A family is created when the registration names one; members added
	// later join through the family endpoints. The account already exists at
	// this point, so a family failure degrades to a family-less registration
	// instead of failing the whole call.
	if req.FamilyName != "" {
		familyId, err := u.familyRepo.Create(ctx, entity.Family{
			Name:      req.FamilyName,
			MemberIds: []string{userId},
		})
		if err != nil {
			log.Printf("Register: family create error for %s: %v", userId, err)
		} else {
			user.FamilyId = familyId
			if err := u.userRepo.Update(ctx, user); err != nil {
				log.Printf("Register: family link error for %s: %v", userId, err)
				user.FamilyId = ""
			}
		}
	}

	return u.issueTokens(ctx, user)
}

func (u *authUsecase) Authenticate(ctx context.Context, req entity.LoginRequest) (entity.AuthResponse, error) {
	user, err := u.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if err == repository.ErrUserNotFound {
			return entity.AuthResponse{}, ErrInvalidCredentials
		}
		return entity.AuthResponse{}, err
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password))
	if err != nil {
		return entity.AuthResponse{}, ErrInvalidCredentials
	}

	return u.issueTokens(ctx, user)
}

func (u *authUsecase) Refresh(ctx context.Context, refreshTokenString string) (entity.AuthResponse, error) {
	refreshToken, err := u.refreshTokenRepo.GetByToken(ctx, refreshTokenString)
	if err != nil {
		return entity.AuthResponse{}, ErrInvalidRefreshToken
	}

	if refreshToken.IsRevoked {
		return entity.AuthResponse{}, ErrRevokedRefreshToken
	}

	if time.Now().After(refreshToken.ExpiresAt) {
		return entity.AuthResponse{}, ErrExpiredRefreshToken
	}

	user, err := u.userRepo.Get(ctx, refreshToken.UserId)
	if err != nil {
		// The account behind the token is gone; the token is dead too.
		if err == repository.ErrUserNotFound {
			return entity.AuthResponse{}, ErrInvalidRefreshToken
		}
		return entity.AuthResponse{}, err
	}

	// Rotation: the presented token is revoked before a new pair is issued.
	if err := u.refreshTokenRepo.Revoke(ctx, refreshTokenString); err != nil {
		return entity.AuthResponse{}, err
	}

	return u.issueTokens(ctx, user)
}

func (u *authUsecase) Logout(ctx context.Context, refreshToken string) error {
	return u.refreshTokenRepo.Revoke(ctx, refreshToken)
}

func (u *authUsecase) RequestPasswordReset(ctx context.Context, email string) (entity.PasswordResetTicket, error) {
	user, err := u.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if err == repository.ErrUserNotFound {
			// Don't reveal whether the email is registered.
			return entity.PasswordResetTicket{Email: email}, nil
		}
		return entity.PasswordResetTicket{}, err
	}

	token, err := u.jwtManager.GenerateRefreshToken()
	if err != nil {
		return entity.PasswordResetTicket{}, err
	}

	if err := u.resetTokens.Put(ctx, token, user.Id, u.resetTokenTTL); err != nil {
		return entity.PasswordResetTicket{}, err
	}

	return entity.PasswordResetTicket{
		Email:     email,
		Token:     token,
		ExpiresIn: int64(u.resetTokenTTL.Seconds()),
	}, nil
}

func (u *authUsecase) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < 6 {
		return ErrWeakPassword
	}

	userId, err := u.resetTokens.Consume(ctx, token)
	if err != nil {
		if err == cache.ErrTokenNotFound {
			return ErrInvalidResetToken
		}
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	if err := u.userRepo.UpdatePassword(ctx, userId, string(hashedPassword)); err != nil {
		return err
	}

	// All sessions are invalidated after a reset.
	return u.refreshTokenRepo.RevokeAllByUserId(ctx, userId)
}

func (u *authUsecase) ChangePassword(ctx context.Context, accessToken, currentPassword, newPassword string) error {
	claims, err := u.jwtManager.ValidateAccessToken(accessToken)
	if err != nil {
		return ErrInvalidAccessToken
	}

	if len(newPassword) < 6 {
		return ErrWeakPassword
	}

	user, err := u.userRepo.Get(ctx, claims.UserId)
	if err != nil {
		return err
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword))
	if err != nil {
		return ErrInvalidCredentials
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	if err := u.userRepo.UpdatePassword(ctx, user.Id, string(hashedPassword)); err != nil {
		return err
	}

	return u.refreshTokenRepo.RevokeAllByUserId(ctx, user.Id)
}

func (u *authUsecase) EntraLogin(ctx context.Context, accessToken string) (entity.AuthResponse, error) {
	claims, err := u.entraVerifier.Verify(ctx, accessToken)
	if err != nil {
		return entity.AuthResponse{}, ErrEntraTokenInvalid
	}

	user, err := u.userRepo.GetByEmail(ctx, claims.Email)
	if err != nil {
		if err != repository.ErrUserNotFound {
			return entity.AuthResponse{}, err
		}

		// First federated login provisions a local account. Role comes from
		// the injected policy, never from the token.
		role := entity.RoleParent
		if u.adminPolicy != nil && u.adminPolicy.IsAdmin(claims.Email) {
			role = entity.RoleAdmin
		}

		user = entity.User{
			Email:     claims.Email,
			FirstName: claims.FirstName,
			LastName:  claims.LastName,
			Role:      role,
		}
		userId, err := u.userRepo.Create(ctx, user)
		if err != nil {
			return entity.AuthResponse{}, err
		}
		user.Id = userId
	}

	return u.issueTokens(ctx, user)
}

func (u *authUsecase) ValidateAccessToken(token string) (*entity.TokenClaims, error) {
	claims, err := u.jwtManager.ValidateAccessToken(token)
	if err != nil {
		return nil, ErrInvalidAccessToken
	}
	return claims, nil
}

func (u *authUsecase) issueTokens(ctx context.Context, user entity.User) (entity.AuthResponse, error) {
	accessToken, err := u.jwtManager.GenerateAccessToken(user)
	if err != nil {
		return entity.AuthResponse{}, err
	}

	refreshTokenString, err := u.jwtManager.GenerateRefreshToken()
	if err != nil {
		return entity.AuthResponse{}, err
	}

	refreshToken := entity.RefreshToken{
		UserId:    user.Id,
		Token:     refreshTokenString,
		ExpiresAt: u.jwtManager.GetRefreshTokenExpiration(),
	}

	if err := u.refreshTokenRepo.Create(ctx, refreshToken); err != nil {
		return entity.AuthResponse{}, err
	}

	user.PasswordHash = ""

	return entity.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshTokenString,
		User:         user,
	}, nil
}
