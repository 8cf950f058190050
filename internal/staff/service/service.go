// Package service is the staff and permission registry.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"refurb/internal/staff/metrics"
	"refurb/internal/staff/models"
	"refurb/internal/staff/secrets"
	id "refurb/pkg/domain"
	dErrors "refurb/pkg/domain-errors"
	"refurb/pkg/platform/audit"
	"refurb/pkg/platform/sentinel"
	"refurb/pkg/requestcontext"
)

const (
	msgRequiredFields = "Please fill in all required fields"
	msgInvalidEmail   = "Please enter a valid email address"
	msgInvalidRole    = "Please select a valid role"
	msgInvalidStatus  = "Please select a valid status"
	msgEmailTaken     = "A staff member with this email already exists"
	msgNotFound       = "Staff member not found"
	msgNoChanges      = "No changes to save"
)

// CreateInput is the add-staff form. Empty Permissions means the role's
// defaults.
type CreateInput struct {
	Name            string
	Email           string
	Phone           string
	Role            string
	Permissions     []string
	Password        string
	ConfirmPassword string
}

// Patch is the edit-staff form. Nil fields are left unchanged; a
// non-empty Password replaces the current one. Permissions are edited
// through SetPermissions.
type Patch struct {
	Name            *string
	Email           *string
	Phone           *string
	Role            *string
	Password        string
	ConfirmPassword string
}

func (p Patch) isEmpty() bool {
	return p.Name == nil && p.Email == nil && p.Phone == nil && p.Role == nil && p.Password == "" && p.ConfirmPassword == ""
}

// Service owns staff accounts. Every failure is returned and reported as
// one error notification.
type Service struct {
	store    Store
	notifier Notifier
	auditor  AuditPublisher
	logger   *slog.Logger
	metrics  *metrics.Metrics
	hasher   secrets.Hasher
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditor = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithHashCost sets the bcrypt cost for new passwords.
func WithHashCost(cost int) Option {
	return func(s *Service) {
		s.hasher = secrets.NewHasher(cost)
	}
}

func New(store Store, notifier Notifier, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("staff store is required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier is required")
	}
	s := &Service{
		store:    store,
		notifier: notifier,
		logger:   slog.Default(),
		hasher:   secrets.NewHasher(0),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Create adds an active account. The role supplies permissions only when
// none are given.
func (s *Service) Create(ctx context.Context, in CreateInput) (models.Account, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)
	if name == "" || email == "" {
		return models.Account{}, s.reject(ctx, dErrors.New(dErrors.CodeValidation, msgRequiredFields))
	}
	if !models.ValidEmail(email) {
		return models.Account{}, s.reject(ctx, dErrors.New(dErrors.CodeValidation, msgInvalidEmail))
	}
	role := models.RoleStaff
	if r := strings.TrimSpace(in.Role); r != "" {
		role = models.Role(r)
	}
	if !role.IsValid() {
		return models.Account{}, s.reject(ctx, dErrors.New(dErrors.CodeValidation, msgInvalidRole))
	}
	if err := secrets.CheckPassword(in.Password, in.ConfirmPassword); err != nil {
		return models.Account{}, s.reject(ctx, err)
	}
	permissions := role.DefaultPermissions()
	if len(in.Permissions) > 0 {
		var err error
		if permissions, err = models.NormalizePermissions(in.Permissions); err != nil {
			return models.Account{}, s.reject(ctx, err)
		}
	}
	hash, err := s.hash(in.Password)
	if err != nil {
		return models.Account{}, s.reject(ctx, err)
	}

	now := requestcontext.Now(ctx)
	account := models.Account{
		ID:           id.NewStaffID(),
		Name:         name,
		Email:        email,
		Phone:        strings.TrimSpace(in.Phone),
		Role:         role,
		Status:       models.StatusActive,
		Permissions:  permissions,
		CreatedBy:    requestcontext.ActorName(ctx),
		CreatedAt:    now,
		UpdatedAt:    now,
		PasswordHash: hash,
	}
	if err := account.Validate(); err != nil {
		return models.Account{}, s.reject(ctx, dErrors.Wrap(err, dErrors.CodeInternal, "failed to build staff account"))
	}
	if err := s.store.CreateIfEmailAvailable(ctx, account); err != nil {
		return models.Account{}, s.reject(ctx, wrapStoreErr(err, "failed to create staff account"))
	}

	s.notifier.Success(fmt.Sprintf("%s has been added as %s", account.Name, account.Role))
	s.emitAudit(ctx, audit.EventStaffCreated, account.ID, string(account.Role))
	s.changed(ctx, "create")
	s.logger.InfoContext(ctx, "staff account created",
		"request_id", requestcontext.RequestID(ctx),
		"staff_id", account.ID,
		"role", account.Role,
		"created_by", account.CreatedBy,
	)
	return account, nil
}

// Update edits profile fields and optionally the password. Role changes
// never touch permissions.
func (s *Service) Update(ctx context.Context, staffID id.StaffID, patch Patch) (models.Account, error) {
	if patch.isEmpty() {
		return models.Account{}, s.reject(ctx, dErrors.New(dErrors.CodeValidation, msgNoChanges))
	}
	if err := validatePatch(patch); err != nil {
		return models.Account{}, s.reject(ctx, err)
	}
	var hash string
	if patch.Password != "" || patch.ConfirmPassword != "" {
		if err := secrets.CheckPassword(patch.Password, patch.ConfirmPassword); err != nil {
			return models.Account{}, s.reject(ctx, err)
		}
		var err error
		if hash, err = s.hash(patch.Password); err != nil {
			return models.Account{}, s.reject(ctx, err)
		}
	}

	now := requestcontext.Now(ctx)
	updated, err := s.store.Execute(ctx, staffID, func(a models.Account) (models.Account, error) {
		if patch.Name != nil {
			a.Name = strings.TrimSpace(*patch.Name)
		}
		if patch.Email != nil {
			a.Email = strings.TrimSpace(*patch.Email)
		}
		if patch.Phone != nil {
			a.Phone = strings.TrimSpace(*patch.Phone)
		}
		if patch.Role != nil {
			a.Role = models.Role(strings.TrimSpace(*patch.Role))
		}
		if hash != "" {
			a.PasswordHash = hash
		}
		a.UpdatedAt = now
		return a, a.Validate()
	})
	if err != nil {
		return models.Account{}, s.reject(ctx, wrapStoreErr(err, "failed to update staff account"))
	}

	s.notifier.Success(fmt.Sprintf("%s's details have been updated", updated.Name))
	s.emitAudit(ctx, audit.EventStaffUpdated, updated.ID, changedFields(patch))
	s.changed(ctx, "update")
	s.logger.InfoContext(ctx, "staff account updated",
		"request_id", requestcontext.RequestID(ctx),
		"staff_id", updated.ID,
		"fields", changedFields(patch),
	)
	return updated, nil
}

func validatePatch(p Patch) error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return dErrors.New(dErrors.CodeValidation, msgRequiredFields)
	}
	if p.Email != nil {
		email := strings.TrimSpace(*p.Email)
		if email == "" {
			return dErrors.New(dErrors.CodeValidation, msgRequiredFields)
		}
		if !models.ValidEmail(email) {
			return dErrors.New(dErrors.CodeValidation, msgInvalidEmail)
		}
	}
	if p.Role != nil && !models.Role(strings.TrimSpace(*p.Role)).IsValid() {
		return dErrors.New(dErrors.CodeValidation, msgInvalidRole)
	}
	return nil
}

func changedFields(p Patch) string {
	var fields []string
	if p.Name != nil {
		fields = append(fields, "name")
	}
	if p.Email != nil {
		fields = append(fields, "email")
	}
	if p.Phone != nil {
		fields = append(fields, "phone")
	}
	if p.Role != nil {
		fields = append(fields, "role")
	}
	if p.Password != "" {
		fields = append(fields, "password")
	}
	return strings.Join(fields, ",")
}

// SetStatus activates or deactivates an account. Setting the current status
// is a conflict.
func (s *Service) SetStatus(ctx context.Context, staffID id.StaffID, status models.Status) (models.Account, error) {
	if !status.IsValid() {
		return models.Account{}, s.reject(ctx, dErrors.New(dErrors.CodeValidation, msgInvalidStatus))
	}
	return s.applyStatus(ctx, staffID, func(models.Status) models.Status { return status })
}

// ToggleStatus flips active and inactive.
func (s *Service) ToggleStatus(ctx context.Context, staffID id.StaffID) (models.Account, error) {
	return s.applyStatus(ctx, staffID, func(current models.Status) models.Status {
		if current == models.StatusActive {
			return models.StatusInactive
		}
		return models.StatusActive
	})
}

func (s *Service) applyStatus(ctx context.Context, staffID id.StaffID, target func(models.Status) models.Status) (models.Account, error) {
	now := requestcontext.Now(ctx)
	updated, err := s.store.Execute(ctx, staffID, func(a models.Account) (models.Account, error) {
		next := target(a.Status)
		if a.Status == next {
			return a, dErrors.New(dErrors.CodeConflict, fmt.Sprintf("%s is already %s", a.Name, next))
		}
		a.Status = next
		a.UpdatedAt = now
		return a, nil
	})
	if err != nil {
		return models.Account{}, s.reject(ctx, wrapStoreErr(err, "failed to change staff status"))
	}

	verb, event := "activated", audit.EventStaffActivated
	if !updated.IsActive() {
		verb, event = "deactivated", audit.EventStaffDeactivated
	}
	s.notifier.Success(fmt.Sprintf("%s has been %s", updated.Name, verb))
	s.emitAudit(ctx, event, updated.ID, "")
	s.changed(ctx, string(updated.Status))
	return updated, nil
}

// Remove deletes an account.
func (s *Service) Remove(ctx context.Context, staffID id.StaffID) error {
	removed, err := s.store.Delete(ctx, staffID)
	if err != nil {
		return s.reject(ctx, wrapStoreErr(err, "failed to remove staff account"))
	}
	s.notifier.Success(fmt.Sprintf("%s has been removed from staff", removed.Name))
	s.emitAudit(ctx, audit.EventStaffRemoved, staffID, removed.Email)
	s.changed(ctx, "remove")
	s.logger.InfoContext(ctx, "staff account removed",
		"request_id", requestcontext.RequestID(ctx),
		"staff_id", staffID,
	)
	return nil
}

// SetPermissions replaces the account's permission set. An empty set is
// allowed.
func (s *Service) SetPermissions(ctx context.Context, staffID id.StaffID, keys []string) (models.Account, error) {
	permissions, err := models.NormalizePermissions(keys)
	if err != nil {
		return models.Account{}, s.reject(ctx, err)
	}
	now := requestcontext.Now(ctx)
	updated, err := s.store.Execute(ctx, staffID, func(a models.Account) (models.Account, error) {
		a.Permissions = permissions
		a.UpdatedAt = now
		return a, nil
	})
	if err != nil {
		return models.Account{}, s.reject(ctx, wrapStoreErr(err, "failed to update permissions"))
	}

	s.notifier.Success(fmt.Sprintf("%s's permissions have been updated", updated.Name))
	s.emitAudit(ctx, audit.EventPermissionsReplaced, updated.ID, strings.Join(permissions, ","))
	s.changed(ctx, "permissions")
	return updated, nil
}

func (s *Service) Get(ctx context.Context, staffID id.StaffID) (models.Account, error) {
	a, err := s.store.FindByID(ctx, staffID)
	if err != nil {
		return models.Account{}, wrapStoreErr(err, "failed to load staff account")
	}
	return a, nil
}

// List returns accounts matching f in creation order.
func (s *Service) List(ctx context.Context, f models.Filter) ([]models.Account, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list staff")
	}
	out := make([]models.Account, 0, len(all))
	for _, a := range all {
		if f.Matches(a) {
			out = append(out, a)
		}
	}
	return out, nil
}

// Summary counts accounts for the dashboard.
type Summary struct {
	Active   int
	Inactive int
	ByRole   map[models.Role]int
}

func (s *Service) Summarize(ctx context.Context) (Summary, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return Summary{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list staff")
	}
	sum := Summary{ByRole: make(map[models.Role]int, 3)}
	for _, a := range all {
		if a.IsActive() {
			sum.Active++
		} else {
			sum.Inactive++
		}
		sum.ByRole[a.Role]++
	}
	return sum, nil
}

func (s *Service) hash(password string) (string, error) {
	start := time.Now()
	hash, err := s.hasher.Hash(password)
	if s.metrics != nil {
		s.metrics.ObserveHash(start)
	}
	return hash, err
}

func wrapStoreErr(err error, msg string) error {
	var de *dErrors.Error
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, msgNotFound)
	case errors.Is(err, sentinel.ErrAlreadyUsed):
		return dErrors.New(dErrors.CodeConflict, msgEmailTaken)
	case errors.As(err, &de):
		return err
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, msg)
	}
}

func (s *Service) reject(ctx context.Context, err error) error {
	msg := dErrors.Message(err)
	if dErrors.HasCode(err, dErrors.CodeInternal) || dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
		s.logger.ErrorContext(ctx, "staff operation failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	} else {
		s.logger.InfoContext(ctx, "staff operation rejected",
			"request_id", requestcontext.RequestID(ctx),
			"reason", msg,
		)
	}
	if s.metrics != nil && dErrors.HasCode(err, dErrors.CodeValidation) {
		s.metrics.IncrementValidationFailure()
	}
	s.notifier.Error(msg)
	return err
}

// changed records a mutation and refreshes the account gauges.
func (s *Service) changed(ctx context.Context, action string) {
	if s.metrics == nil {
		return
	}
	s.metrics.IncrementChange(action)
	if sum, err := s.Summarize(ctx); err == nil {
		s.metrics.SetAccounts(sum.Active, sum.Inactive)
	}
}

func (s *Service) emitAudit(ctx context.Context, action audit.AuditEvent, staffID id.StaffID, detail string) {
	if s.auditor == nil {
		return
	}
	event := audit.New(action, audit.SubjectStaff, staffID.String())
	event.Timestamp = requestcontext.Now(ctx)
	event.Detail = detail
	event.RequestID = requestcontext.RequestID(ctx)
	event.ActorName = requestcontext.ActorName(ctx)
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"action", action,
			"staff_id", staffID,
			"error", err,
		)
	}
}
