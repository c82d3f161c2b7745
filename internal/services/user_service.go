package services

import (
	"context"
	"strings"

	"catering-backend/internal/auth"
	"catering-backend/internal/logging"
	"catering-backend/internal/models"
	"catering-backend/internal/repositories"
	"catering-backend/internal/validation"
)

type UserService struct {
	Repo          *repositories.UserRepository
	LoginLogRepo  *repositories.LoginLogRepository
	ActionLogRepo *repositories.AdminActionLogRepository
	JWTManager    *auth.JWTManager
	TOTP          *TOTPService
}

func NewUserService(
	repo *repositories.UserRepository,
	loginLogRepo *repositories.LoginLogRepository,
	actionLogRepo *repositories.AdminActionLogRepository,
	jwtManager *auth.JWTManager,
	totpService *TOTPService,
) *UserService {
	return &UserService{
		Repo:          repo,
		LoginLogRepo:  loginLogRepo,
		ActionLogRepo: actionLogRepo,
		JWTManager:    jwtManager,
		TOTP:          totpService,
	}
}

// Session is a completed login: the response body plus the refresh token
// the handler puts in a cookie.
type Session struct {
	Response     *models.AuthResponse
	RefreshToken string
}

func (s *UserService) issue(ctx context.Context, user *models.User, ip, userAgent string) (*Session, error) {
	access, err := s.JWTManager.GenerateToken(user)
	if err != nil {
		return nil, err
	}
	refresh, err := s.JWTManager.GenerateRefreshToken(user)
	if err != nil {
		return nil, err
	}
	if s.LoginLogRepo != nil && ip != "" {
		if _, err := s.LoginLogRepo.CreateLoginLog(ctx, user.ID, ip, userAgent); err != nil {
			logging.For("Auth").WithError(err).Warn("failed to write login log")
		}
	}
	return &Session{
		Response:     &models.AuthResponse{User: user, AccessToken: access},
		RefreshToken: refresh,
	}, nil
}

// Login checks credentials. Users with 2FA get a temp token instead of a session.
func (s *UserService) Login(ctx context.Context, req *models.LoginRequest, ip, userAgent string) (*Session, error) {
	if req.Email == "" || req.Password == "" {
		return nil, invalid("email and password are required")
	}

	user, err := s.Repo.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		return nil, unauthorized("invalid email or password")
	}
	if !auth.VerifyPassword(user.PasswordHash, req.Password) {
		return nil, unauthorized("invalid email or password")
	}
	if !user.IsActive {
		return nil, forbidden("account suspended, contact an administrator")
	}

	if user.TOTPEnabled {
		temp, err := s.JWTManager.GenerateTempToken(user)
		if err != nil {
			return nil, err
		}
		return &Session{Response: &models.AuthResponse{Requires2FA: true, TempToken: temp}}, nil
	}

	return s.issue(ctx, user, ip, userAgent)
}

// Complete2FA exchanges a temp token and a TOTP code for a session.
func (s *UserService) Complete2FA(ctx context.Context, req *models.TOTPVerifyRequest, ip, userAgent string) (*Session, error) {
	claims, err := s.JWTManager.ValidateTempToken(req.TempToken)
	if err != nil {
		return nil, unauthorized("invalid or expired verification token")
	}
	if err := s.TOTP.Verify(ctx, claims.UserID, req.Code); err != nil {
		return nil, err
	}
	user, err := s.Repo.Get(ctx, claims.UserID)
	if err != nil {
		return nil, lookup(err, "user")
	}
	return s.issue(ctx, user, ip, userAgent)
}

// Refresh rotates the session. Tokens minted before the last logout or
// password change carry a stale version and are rejected.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	if refreshToken == "" {
		return nil, unauthorized("refresh token required")
	}
	claims, err := s.JWTManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, unauthorized("invalid or expired refresh token")
	}
	user, err := s.Repo.Get(ctx, claims.UserID)
	if err != nil {
		return nil, unauthorized("user not found")
	}
	if !user.IsActive {
		return nil, forbidden("account suspended, contact an administrator")
	}
	if user.TokenVersion != claims.TokenVersion {
		return nil, unauthorized("session revoked")
	}
	return s.issue(ctx, user, "", "")
}

// Logout revokes every refresh token of the user.
func (s *UserService) Logout(ctx context.Context, userID int) error {
	if err := s.Repo.BumpTokenVersion(ctx, userID); err != nil {
		return err
	}
	if s.LoginLogRepo != nil {
		if err := s.LoginLogRepo.UpdateLogoutTimeByUser(ctx, userID); err != nil {
			logging.For("Auth").WithError(err).Warn("failed to record logout")
		}
	}
	return nil
}

func (s *UserService) ChangePassword(ctx context.Context, userID int, req *models.ChangePasswordRequest) error {
	user, err := s.Repo.Get(ctx, userID)
	if err != nil {
		return lookup(err, "user")
	}
	if !auth.VerifyPassword(user.PasswordHash, req.CurrentPassword) {
		return unauthorized("current password is incorrect")
	}
	if !validation.ValidPassword(req.NewPassword) {
		return invalid("new password must be at least %d characters", validation.MinPasswordLength)
	}
	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	if err := s.Repo.Update(ctx, user); err != nil {
		return err
	}
	return s.Repo.BumpTokenVersion(ctx, userID)
}

func validateUser(name, email, phone, role string) validation.Errors {
	var errs validation.Errors
	errs.Require("name", name)
	errs.Check(validation.ValidEmail(email), "a valid email is required")
	errs.Check(phone == "" || validation.ValidPhone(phone), "phone number is invalid")
	errs.Check(models.ValidRole(role), "role must be admin, manager or staff")
	return errs
}

func (s *UserService) CreateUser(ctx context.Context, actor Actor, req *models.CreateUserRequest) (*models.User, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Role == "" {
		req.Role = models.RoleStaff
	}
	errs := validateUser(req.Name, req.Email, req.Phone, req.Role)
	errs.Check(validation.ValidPassword(req.Password),
		"password must be at least 8 characters")
	if err := invalidErrs(errs); err != nil {
		return nil, err
	}

	if existing, _ := s.Repo.GetByEmail(ctx, req.Email); existing != nil {
		return nil, conflict("a user with email %s already exists", req.Email)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        req.Email,
		Phone:        validation.NormalizePhone(req.Phone),
		PasswordHash: hash,
		Role:         req.Role,
		IsActive:     true,
	}
	if err := s.Repo.Create(ctx, user); err != nil {
		return nil, err
	}

	recordAction(ctx, s.ActionLogRepo, actor, models.ActionUserCreate, "user", user.ID,
		"Created user "+user.Email, nil, map[string]string{"email": user.Email, "role": user.Role})
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, id int) (*models.User, error) {
	u, err := s.Repo.Get(ctx, id)
	return u, lookup(err, "user")
}

func (s *UserService) ListUsers(ctx context.Context) ([]*models.User, error) {
	return s.Repo.List(ctx)
}

func (s *UserService) UpdateUser(ctx context.Context, actor Actor, id int, req *models.UpdateUserRequest) (*models.User, error) {
	user, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, lookup(err, "user")
	}
	before := map[string]any{"email": user.Email, "role": user.Role, "is_active": user.IsActive}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	errs := validateUser(req.Name, req.Email, req.Phone, req.Role)
	errs.Check(req.Password == "" || validation.ValidPassword(req.Password),
		"password must be at least 8 characters")
	if err := invalidErrs(errs); err != nil {
		return nil, err
	}

	if req.Email != user.Email {
		if existing, _ := s.Repo.GetByEmail(ctx, req.Email); existing != nil && existing.ID != id {
			return nil, conflict("a user with email %s already exists", req.Email)
		}
	}

	demoting := user.Role == models.RoleAdmin && user.IsActive &&
		(req.Role != models.RoleAdmin || (req.IsActive != nil && !*req.IsActive))
	if demoting {
		if err := s.ensureAnotherAdmin(ctx); err != nil {
			return nil, err
		}
	}

	revoke := false
	user.Name = strings.TrimSpace(req.Name)
	user.Email = req.Email
	user.Phone = validation.NormalizePhone(req.Phone)
	user.Role = req.Role
	if req.IsActive != nil {
		revoke = user.IsActive && !*req.IsActive
		user.IsActive = *req.IsActive
	}
	if req.Password != "" {
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
		revoke = true
	}

	if err := s.Repo.Update(ctx, user); err != nil {
		return nil, err
	}
	if revoke {
		if err := s.Repo.BumpTokenVersion(ctx, id); err != nil {
			return nil, err
		}
	}

	recordAction(ctx, s.ActionLogRepo, actor, models.ActionUserUpdate, "user", id,
		"Updated user "+user.Email, before,
		map[string]any{"email": user.Email, "role": user.Role, "is_active": user.IsActive})
	return user, nil
}

func (s *UserService) DeleteUser(ctx context.Context, actor Actor, id int) error {
	if actor.UserID == id {
		return invalid("you cannot delete your own account")
	}
	user, err := s.Repo.Get(ctx, id)
	if err != nil {
		return lookup(err, "user")
	}
	if user.Role == models.RoleAdmin && user.IsActive {
		if err := s.ensureAnotherAdmin(ctx); err != nil {
			return err
		}
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	recordAction(ctx, s.ActionLogRepo, actor, models.ActionUserDelete, "user", id,
		"Deleted user "+user.Email, map[string]string{"email": user.Email, "role": user.Role}, nil)
	return nil
}

func (s *UserService) ensureAnotherAdmin(ctx context.Context) error {
	n, err := s.Repo.CountAdmins(ctx)
	if err != nil {
		return err
	}
	if n <= 1 {
		return invalid("at least one active admin must remain")
	}
	return nil
}

// EnsureAdmin creates the first admin account when no active admin exists.
func (s *UserService) EnsureAdmin(ctx context.Context, name, email, password string) error {
	log := logging.For("Bootstrap")
	n, err := s.Repo.CountAdmins(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	if email == "" || password == "" {
		log.Warn("No admin user exists; set ADMIN_EMAIL and ADMIN_PASSWORD to create one")
		return nil
	}
	if _, err := s.CreateUser(ctx, Actor{}, &models.CreateUserRequest{
		Name:     name,
		Email:    email,
		Password: password,
		Role:     models.RoleAdmin,
	}); err != nil {
		return err
	}
	log.Infof("Created initial admin %s", email)
	return nil
}

func (s *UserService) ListLoginLogs(ctx context.Context, limit int) ([]*models.LoginLog, error) {
	return s.LoginLogRepo.List(ctx, limit)
}

func (s *UserService) ListActionLogs(ctx context.Context, actionType string, limit int) ([]*models.AdminActionLog, error) {
	return s.ActionLogRepo.List(ctx, actionType, limit)
}
