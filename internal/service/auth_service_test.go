package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"crmbridge/internal/auth"
	apperrors "crmbridge/internal/errors"
	"crmbridge/internal/model"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

// MockTokenStore is a mock implementation of TokenStoreInterface.
type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name          string
		input         RegisterInput
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:  "successful registration",
			input: RegisterInput{Username: "alice", Email: "a@x.com", Password: "pw"},
			setupMock: func(m *MockUserRepository) {
				m.On("FindByUsername", mock.Anything, "alice").Return(nil, gorm.ErrRecordNotFound)
				m.On("FindByEmail", mock.Anything, "a@x.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
		},
		{
			name:  "username taken",
			input: RegisterInput{Username: "alice", Email: "new@x.com", Password: "pw"},
			setupMock: func(m *MockUserRepository) {
				m.On("FindByUsername", mock.Anything, "alice").Return(&model.User{ID: 1, Username: "alice"}, nil)
			},
			expectedError: apperrors.ErrDuplicateUsername,
		},
		{
			name:  "email taken",
			input: RegisterInput{Username: "bob", Email: "a@x.com", Password: "pw"},
			setupMock: func(m *MockUserRepository) {
				m.On("FindByUsername", mock.Anything, "bob").Return(nil, gorm.ErrRecordNotFound)
				m.On("FindByEmail", mock.Anything, "a@x.com").Return(&model.User{ID: 1, Email: "a@x.com"}, nil)
			},
			expectedError: apperrors.ErrDuplicateEmail,
		},
		{
			name:  "lost race on unique index",
			input: RegisterInput{Username: "carol", Email: "c@x.com", Password: "pw"},
			setupMock: func(m *MockUserRepository) {
				m.On("FindByUsername", mock.Anything, "carol").Return(nil, gorm.ErrRecordNotFound).Once()
				m.On("FindByEmail", mock.Anything, "c@x.com").Return(nil, gorm.ErrRecordNotFound).Once()
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(gorm.ErrDuplicatedKey)
				m.On("FindByUsername", mock.Anything, "carol").Return(nil, gorm.ErrRecordNotFound).Once()
				m.On("FindByEmail", mock.Anything, "c@x.com").Return(&model.User{ID: 2}, nil).Once()
			},
			expectedError: apperrors.ErrDuplicateEmail,
		},
		{
			name:          "missing username",
			input:         RegisterInput{Email: "a@x.com", Password: "pw"},
			setupMock:     func(m *MockUserRepository) {},
			expectedError: apperrors.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			jwtService := auth.NewJWTService("test-secret", time.Hour)
			mockTokenStore := new(MockTokenStore)

			service := NewAuthService(mockRepo, jwtService, mockTokenStore)
			user, err := service.Register(context.Background(), tt.input)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				require.NotNil(t, user)
				assert.Equal(t, tt.input.Username, user.Username)
				assert.True(t, user.IsActive)
				assert.NotEqual(t, tt.input.Password, user.PasswordHash)
				assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(tt.input.Password)))
				cost, err := bcrypt.Cost([]byte(user.PasswordHash))
				require.NoError(t, err)
				assert.Equal(t, bcryptCost, cost)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	require.NoError(t, err)

	tests := []struct {
		name          string
		username      string
		password      string
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:     "successful login",
			username: "alice",
			password: "pw",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByUsername", mock.Anything, "alice").Return(&model.User{
					ID: 5, Username: "alice", PasswordHash: string(hashedPassword), IsActive: true,
				}, nil)
			},
		},
		{
			name:     "unknown user",
			username: "nobody",
			password: "pw",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByUsername", mock.Anything, "nobody").Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrInvalidCredentials,
		},
		{
			name:     "wrong password",
			username: "alice",
			password: "nope",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByUsername", mock.Anything, "alice").Return(&model.User{
					ID: 5, Username: "alice", PasswordHash: string(hashedPassword), IsActive: true,
				}, nil)
			},
			expectedError: apperrors.ErrInvalidCredentials,
		},
		{
			name:     "inactive user",
			username: "alice",
			password: "pw",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByUsername", mock.Anything, "alice").Return(&model.User{
					ID: 5, Username: "alice", PasswordHash: string(hashedPassword), IsActive: false,
				}, nil)
			},
			expectedError: apperrors.ErrInvalidCredentials,
		},
		{
			name:     "database failure",
			username: "alice",
			password: "pw",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByUsername", mock.Anything, "alice").Return(nil, errors.New("connection reset"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			jwtService := auth.NewJWTService("test-secret", time.Hour)
			service := NewAuthService(mockRepo, jwtService, new(MockTokenStore))

			token, expiresAt, user, err := service.Login(context.Background(), tt.username, tt.password)

			switch {
			case tt.expectedError != nil:
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Empty(t, token)
				assert.Nil(t, user)
			case tt.name == "database failure":
				assert.Error(t, err)
				assert.NotErrorIs(t, err, apperrors.ErrInvalidCredentials)
			default:
				require.NoError(t, err)
				assert.Equal(t, uint(5), user.ID)
				claims, err := jwtService.Verify(token)
				require.NoError(t, err)
				assert.Equal(t, uint(5), claims.UserID)
				assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Logout(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret", time.Hour)
	_, claims, err := jwtService.Issue(5)
	require.NoError(t, err)

	mockTokenStore := new(MockTokenStore)
	mockTokenStore.On("RevokeToken", mock.Anything, claims.ID, mock.MatchedBy(func(ttl time.Duration) bool {
		return ttl > 59*time.Minute && ttl <= time.Hour
	})).Return(nil)

	service := NewAuthService(new(MockUserRepository), jwtService, mockTokenStore)
	require.NoError(t, service.Logout(context.Background(), claims))
	mockTokenStore.AssertExpectations(t)

	assert.ErrorIs(t, service.Logout(context.Background(), nil), apperrors.ErrTokenMalformed)
}
