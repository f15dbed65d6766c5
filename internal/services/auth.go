package services

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/clinica-dental-api/internal/config"
	"github.com/harentsoaR/clinica-dental-api/internal/errs"
	"github.com/harentsoaR/clinica-dental-api/internal/models"
	"github.com/harentsoaR/clinica-dental-api/internal/store"
	"github.com/harentsoaR/clinica-dental-api/internal/utils"
)

// BootstrapAdminID identifies the administrator configured through the
// environment. It has no stored document.
const BootstrapAdminID = "admin"

type SessionUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Session is the result of a successful login.
type Session struct {
	Token string      `json:"token"`
	User  SessionUser `json:"user"`
}

// credential is what a probe found for an email.
type credential struct {
	id           primitive.ObjectID
	passwordHash string
	verified     bool
}

// credentialProbe looks an email up in one role's collection.
type credentialProbe struct {
	role   string
	lookup func(ctx context.Context, email string) (*credential, error)
}

// AuthService resolves an email/password pair to exactly one role. Probes run
// in order and the first collection holding the email decides the outcome.
type AuthService struct {
	admin  config.AdminCredentials
	repos  store.Repositories
	hasher *utils.PasswordHasher
	tokens *utils.TokenManager
	log    logrus.FieldLogger
	probes []credentialProbe
}

func NewAuthService(admin config.AdminCredentials, repos store.Repositories, hasher *utils.PasswordHasher, tokens *utils.TokenManager, log logrus.FieldLogger) *AuthService {
	s := &AuthService{admin: admin, repos: repos, hasher: hasher, tokens: tokens, log: log}
	s.probes = []credentialProbe{
		{role: models.RoleDoctor, lookup: func(ctx context.Context, email string) (*credential, error) {
			d, err := repos.Doctors.FindByEmail(ctx, email)
			if err != nil {
				return nil, err
			}
			return &credential{id: d.ID, passwordHash: d.Password, verified: true}, nil
		}},
		{role: models.RoleAssistant, lookup: accountLookup(repos.Assistants)},
		{role: models.RolePatient, lookup: func(ctx context.Context, email string) (*credential, error) {
			p, err := repos.Patients.FindByEmail(ctx, email)
			if err != nil {
				return nil, err
			}
			return &credential{id: p.ID, passwordHash: p.Password, verified: p.IsVerified}, nil
		}},
		{role: models.RoleAdmin, lookup: accountLookup(repos.Admins)},
	}
	return s
}

func accountLookup(repo store.AccountRepository) func(context.Context, string) (*credential, error) {
	return func(ctx context.Context, email string) (*credential, error) {
		a, err := repo.FindByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		return &credential{id: a.ID, passwordHash: a.Password, verified: true}, nil
	}
}

// Login authenticates email/password and issues a role-tagged session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, errs.Validation("email and password are required")
	}
	log := s.log.WithField("email", email)

	if s.admin.Configured() && email == s.admin.Email && password == s.admin.Password {
		log.Info("Login: bootstrap administrator matched")
		return s.IssueSession(BootstrapAdminID, email, models.RoleAdmin)
	}

	for _, probe := range s.probes {
		cred, err := probe.lookup(ctx, email)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, errs.Internal("failed to look up credentials", err)
		}
		if !cred.verified {
			log.Info("Login: patient has not verified the account email")
			return nil, errs.NeedsVerification()
		}
		if !s.hasher.Matches(password, cred.passwordHash) {
			log.Info("Login: password mismatch")
			return nil, errs.Unauthorized("invalid credentials")
		}
		log.WithField("role", probe.role).Info("Login: credentials accepted")
		return s.IssueSession(cred.id.Hex(), email, probe.role)
	}

	log.Info("Login: no account for email")
	return nil, errs.NotFound("user not found")
}

// IssueSession mints a session token for an already authenticated identity.
func (s *AuthService) IssueSession(id, email, role string) (*Session, error) {
	token, err := s.tokens.IssueSession(id, role)
	if err != nil {
		return nil, errs.Internal("could not generate token", err)
	}
	return &Session{Token: token, User: SessionUser{ID: id, Email: email, Role: role}}, nil
}

// Profile returns the stored record behind a session, or the bare identity
// for the bootstrap administrator.
func (s *AuthService) Profile(ctx context.Context, userID, role string) (any, error) {
	if role == models.RoleAdmin && userID == BootstrapAdminID {
		return SessionUser{ID: BootstrapAdminID, Email: s.admin.Email, Role: role}, nil
	}
	id, err := ParseID(userID, "user")
	if err != nil {
		return nil, err
	}

	var profile any
	switch role {
	case models.RoleDoctor:
		profile, err = s.repos.Doctors.FindByID(ctx, id)
	case models.RoleAssistant:
		profile, err = s.repos.Assistants.FindByID(ctx, id)
	case models.RolePatient:
		profile, err = s.repos.Patients.FindByID(ctx, id)
	case models.RoleAdmin:
		profile, err = s.repos.Admins.FindByID(ctx, id)
	default:
		return nil, errs.Forbidden("unknown role %q", role)
	}
	if err != nil {
		return nil, storeError(err, "user", "load")
	}
	return profile, nil
}
