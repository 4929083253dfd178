package services

import (
	"context"
	"errors"
	"strings"

	"advisory-backend/internal/auth"
	"advisory-backend/internal/models"
	"advisory-backend/internal/repositories"

	"github.com/jackc/pgx/v5"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type UserService struct {
	UserRepo *repositories.UserRepository
	TeamRepo *repositories.TeamRepository
	JWT      *auth.JWTManager
}

func NewUserService(userRepo *repositories.UserRepository, teamRepo *repositories.TeamRepository, jwt *auth.JWTManager) *UserService {
	return &UserService{UserRepo: userRepo, TeamRepo: teamRepo, JWT: jwt}
}

func (s *UserService) Signup(ctx context.Context, req *models.SignupRequest) (*models.User, error) {
	var missing []string
	if req.Name == "" {
		missing = append(missing, "name")
	}
	if req.Email == "" {
		missing = append(missing, "email")
	}
	if len(req.Password) < 8 {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return nil, &models.ValidationError{MissingFields: missing}
	}

	role := req.Role
	if role == "" {
		role = "member"
	}
	if role != "admin" && role != "member" {
		return nil, &models.ValidationError{MissingFields: []string{"role"}}
	}
	if role == "member" && req.TeamID == nil {
		return nil, &models.ValidationError{MissingFields: []string{"team_id"}}
	}
	if req.TeamID != nil {
		if _, err := s.TeamRepo.Get(ctx, *req.TeamID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, &models.NotFoundError{Resource: "team", ID: *req.TeamID}
			}
			return nil, err
		}
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Name:         req.Name,
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		Role:         role,
		TeamID:       req.TeamID,
		IsActive:     true,
	}
	if err := s.UserRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	user, err := s.UserRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive || !auth.VerifyPassword(user.PasswordHash, req.Password) {
		return nil, ErrInvalidCredentials
	}
	token, err := s.JWT.GenerateToken(user)
	if err != nil {
		return nil, err
	}
	return &models.LoginResponse{Token: token, User: user}, nil
}

func (s *UserService) GetUser(ctx context.Context, id int) (*models.User, error) {
	user, err := s.UserRepo.Get(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &models.NotFoundError{Resource: "user", ID: id}
	}
	return user, err
}

func (s *UserService) ListTeams(ctx context.Context) ([]*models.Team, error) {
	return s.TeamRepo.List(ctx)
}
