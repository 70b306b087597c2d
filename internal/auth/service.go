package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/frahmantamala/performance-evaluation/internal"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Repository is the identity store the auth service reads and writes.
type Repository interface {
	// FindByIdentifier matches username OR email, active or not.
	FindByIdentifier(identifier string) (*Account, error)
	FindByID(userID int64) (*Account, error)
	ExistsByUsernameOrEmail(username, email string) (bool, error)
	RoleIDByName(name string) (int64, error)
	CreateUser(account *Account, passwordHash string) (int64, error)
}

type Service struct {
	repo       Repository
	tokenGen   TokenGenerator
	bcryptCost int
}

func NewService(repo Repository, tokenGen TokenGenerator, bcryptCost int) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		repo:       repo,
		tokenGen:   tokenGen,
		bcryptCost: bcryptCost,
	}
}

// Authenticate validates credentials and issues a token pair. The access
// token embeds the role and the granted permission set computed now.
func (s *Service) Authenticate(dto LoginDTO) (*Account, AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return nil, AuthTokens{}, err
	}

	account, err := s.repo.FindByIdentifier(dto.Identifier)
	if err != nil {
		return nil, AuthTokens{}, internal.ErrInvalidCredentials
	}

	if !account.IsActive {
		return nil, AuthTokens{}, internal.ErrAccountInactive
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(dto.Password)); err != nil {
		return nil, AuthTokens{}, internal.ErrInvalidCredentials
	}

	tokens, err := s.issueTokens(account)
	if err != nil {
		return nil, AuthTokens{}, err
	}
	return account, tokens, nil
}

// RefreshTokens validates the refresh token and re-derives the user's current
// role and permission set before issuing a new pair.
func (s *Service) RefreshTokens(refreshToken string) (AuthTokens, error) {
	claims, err := s.tokenGen.ValidateRefreshToken(refreshToken)
	if err != nil {
		return AuthTokens{}, internal.ErrInvalidRefreshToken
	}

	userID, err := strconv.ParseInt(claims.UserID, 10, 64)
	if err != nil {
		return AuthTokens{}, internal.ErrInvalidRefreshToken
	}

	account, err := s.repo.FindByID(userID)
	if err != nil || !account.IsActive {
		return AuthTokens{}, internal.ErrUserNotFound
	}

	return s.issueTokens(account)
}

// Register creates a user with the default employee role unless an admin
// caller supplies an explicit role.
func (s *Service) Register(dto RegisterDTO, actor *User) (*Account, AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return nil, AuthTokens{}, err
	}

	exists, err := s.repo.ExistsByUsernameOrEmail(dto.Username, dto.Email)
	if err != nil {
		return nil, AuthTokens{}, internal.NewInternalError("failed to check existing users", err)
	}
	if exists {
		return nil, AuthTokens{}, internal.ErrDuplicateUser
	}

	roleID := dto.RoleID
	if roleID == 0 || actor == nil || !actor.IsAdmin() {
		roleID, err = s.repo.RoleIDByName(RoleEmployee)
		if err != nil {
			return nil, AuthTokens{}, internal.NewInternalError("default role missing", err)
		}
	}

	hash, err := s.HashPassword(dto.Password)
	if err != nil {
		return nil, AuthTokens{}, internal.NewInternalError("failed to hash password", err)
	}

	account := &Account{
		Username:   dto.Username,
		Email:      dto.Email,
		FirstName:  dto.FirstName,
		LastName:   dto.LastName,
		Department: dto.Department,
		Position:   dto.Position,
		IsActive:   true,
		RoleID:     roleID,
	}

	id, err := s.repo.CreateUser(account, hash)
	if err != nil {
		return nil, AuthTokens{}, internal.NewInternalError("failed to create user", err)
	}

	created, err := s.repo.FindByID(id)
	if err != nil {
		return nil, AuthTokens{}, internal.NewInternalError("failed to load created user", err)
	}

	tokens, err := s.issueTokens(created)
	if err != nil {
		return nil, AuthTokens{}, err
	}
	return created, tokens, nil
}

// Me returns the caller's fresh identity and role from the store.
func (s *Service) Me(userID int64) (*Account, error) {
	account, err := s.repo.FindByID(userID)
	if err != nil {
		return nil, internal.ErrUserNotFound
	}
	return account, nil
}

func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokenGen.ValidateAccessToken(tokenString)
}

func (s *Service) issueTokens(account *Account) (AuthTokens, error) {
	actor := account.ToActor()

	accessToken, err := s.tokenGen.GenerateAccessToken(actor)
	if err != nil {
		return AuthTokens{}, internal.NewInternalError("failed to sign access token", err)
	}

	refreshToken, err := s.tokenGen.GenerateRefreshToken(account.ID)
	if err != nil {
		return AuthTokens{}, internal.NewInternalError("failed to sign refresh token", err)
	}

	return AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// HashPassword creates a bcrypt hash of the password.
func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

type JWTTokenGenerator struct {
	AccessTokenSecret  []byte
	RefreshTokenSecret []byte
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
}

func NewJWTTokenGenerator(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *JWTTokenGenerator {
	return &JWTTokenGenerator{
		AccessTokenSecret:  []byte(accessSecret),
		RefreshTokenSecret: []byte(refreshSecret),
		AccessTokenTTL:     accessTTL,
		RefreshTokenTTL:    refreshTTL,
	}
}

func (j *JWTTokenGenerator) GenerateAccessToken(user *User) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:      strconv.FormatInt(user.ID, 10),
		Username:    user.Username,
		Email:       user.Email,
		Role:        user.Role,
		Permissions: user.Permissions,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(j.AccessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   strconv.FormatInt(user.ID, 10),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.AccessTokenSecret)
}

func (j *JWTTokenGenerator) GenerateRefreshToken(userID int64) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: strconv.FormatInt(userID, 10),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(j.RefreshTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   strconv.FormatInt(userID, 10),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.RefreshTokenSecret)
}

func (j *JWTTokenGenerator) ValidateAccessToken(tokenString string) (*Claims, error) {
	return j.validate(tokenString, j.AccessTokenSecret)
}

func (j *JWTTokenGenerator) ValidateRefreshToken(tokenString string) (*Claims, error) {
	return j.validate(tokenString, j.RefreshTokenSecret)
}

func (j *JWTTokenGenerator) validate(tokenString string, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, internal.ErrTokenExpired
		}
		return nil, internal.ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, internal.ErrInvalidToken
}
