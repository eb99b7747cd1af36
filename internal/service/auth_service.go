package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/clubselect/clubselect-api/internal/dto"
	"github.com/clubselect/clubselect-api/internal/models"
	appErrors "github.com/clubselect/clubselect-api/pkg/errors"
	"github.com/clubselect/clubselect-api/pkg/token"
)

type authAdminRepository interface {
	FindByUsername(ctx context.Context, username string) (*models.Admin, error)
	FindByID(ctx context.Context, id string) (*models.Admin, error)
}

type authStudentRepository interface {
	FindByToken(ctx context.Context, token string) (*models.Student, error)
}

type authProjectRepository interface {
	ListForStudent(ctx context.Context, studentID string) ([]models.Project, error)
}

// AuthConfig defines configuration for session issuance.
type AuthConfig struct {
	Secret     string
	Issuer     string
	Expiration time.Duration
}

// AuthService handles admin login and student token validation. Both
// flows end in the same JWT shape so one middleware covers the API.
type AuthService struct {
	admins    authAdminRepository
	students  authStudentRepository
	projects  authProjectRepository
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(admins authAdminRepository, students authStudentRepository, projects authProjectRepository, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AuthService{admins: admins, students: students, projects: projects, validator: validate, logger: logger, config: config}
}

// Login authenticates an admin and returns a signed session token.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	admin, err := s.admins.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid username or password")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch admin")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid username or password")
	}

	signed, err := s.issueToken(admin.ID, models.RoleAdmin, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign session token")
	}

	s.logger.Info("admin logged in", zap.String("admin_id", admin.ID))
	return &models.LoginResponse{Token: signed, Admin: *admin}, nil
}

// ValidateStudentIdentifier resolves a plain identifier to a roster
// token and, when the student exists, issues a student session. The
// resolver here and the one used at roster import must stay in lockstep
// or validation silently breaks.
func (s *AuthService) ValidateStudentIdentifier(ctx context.Context, req dto.ValidateTokenRequest) (*dto.ValidateTokenResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "identifier is required")
	}

	tok := token.Resolve(req.Identifier)
	student, err := s.students.FindByToken(ctx, tok)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "unknown identifier")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch student")
	}

	projects, err := s.projects.ListForStudent(ctx, student.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assigned projects")
	}

	signed, err := s.issueToken(student.ID, models.RoleStudent, student.Token)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign session token")
	}

	briefs := make([]dto.ProjectBrief, 0, len(projects))
	for _, p := range projects {
		briefs = append(briefs, dto.ProjectBrief{ID: p.ID, Name: p.Name, Description: p.Description})
	}

	return &dto.ValidateTokenResponse{
		Token:    signed,
		Student:  dto.StudentInfo{ID: student.ID, Name: student.Name, Token: student.Token},
		Projects: briefs,
	}, nil
}

// ParseToken verifies a signed session token and returns its claims.
func (s *AuthService) ParseToken(tokenString string) (*models.JWTClaims, error) {
	claims := &models.JWTClaims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.config.Secret), nil
	})
	if err != nil || !parsed.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired token")
	}
	return claims, nil
}

func (s *AuthService) issueToken(subjectID string, role models.UserRole, studentToken string) (string, error) {
	now := time.Now().UTC()
	claims := models.JWTClaims{
		SubjectID:    subjectID,
		Role:         role,
		StudentToken: studentToken,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.Expiration)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.Secret))
}
