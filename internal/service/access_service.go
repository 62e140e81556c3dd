package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"medrec-llm/internal/domain"
	"medrec-llm/internal/repository"
)

// AccessService administra los permisos de lectura que un paciente otorga
// a medicos.
type AccessService struct {
	grants repository.AccessRepository
	users  repository.UserRepository
	logger *zap.Logger
}

var (
	ErrGrantNotFound  = errors.New("access grant not found")
	ErrNotADoctor     = errors.New("grantee is not a doctor")
	ErrSelfGrant      = errors.New("cannot grant access to yourself")
	ErrAccessDenied   = errors.New("access denied")
	ErrDoctorNotFound = errors.New("doctor not found")
)

func NewAccessService(grants repository.AccessRepository, users repository.UserRepository, logger *zap.Logger) *AccessService {
	return &AccessService{
		grants: grants,
		users:  users,
		logger: logger,
	}
}

func (s *AccessService) Grant(ctx context.Context, patientID, doctorID string) (domain.AccessGrant, error) {
	if patientID == doctorID {
		return domain.AccessGrant{}, ErrSelfGrant
	}

	doctor, err := s.users.GetByID(ctx, doctorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.AccessGrant{}, ErrDoctorNotFound
		}
		return domain.AccessGrant{}, fmt.Errorf("get doctor: %w", err)
	}
	if doctor.Role != domain.RoleDoctor {
		return domain.AccessGrant{}, ErrNotADoctor
	}

	grant := domain.AccessGrant{
		ID:        uuid.NewString(),
		PatientID: patientID,
		DoctorID:  doctorID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.grants.Create(ctx, grant); err != nil {
		return domain.AccessGrant{}, fmt.Errorf("create grant: %w", err)
	}

	s.logger.Info("access granted",
		zap.String("patient_id", patientID),
		zap.String("doctor_id", doctorID),
	)
	return grant, nil
}

func (s *AccessService) Revoke(ctx context.Context, patientID, doctorID string) error {
	err := s.grants.Revoke(ctx, patientID, doctorID, time.Now().UTC())
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrGrantNotFound
	}
	if err != nil {
		return fmt.Errorf("revoke grant: %w", err)
	}
	s.logger.Info("access revoked",
		zap.String("patient_id", patientID),
		zap.String("doctor_id", doctorID),
	)
	return nil
}

func (s *AccessService) ListGrants(ctx context.Context, patientID string) ([]domain.AccessGrant, error) {
	return s.grants.ListByPatient(ctx, patientID)
}

// Authorize responde si requesterID puede leer los datos de patientID: o es
// el propio paciente o es un medico con permiso vigente.
func (s *AccessService) Authorize(ctx context.Context, requesterID, patientID string) error {
	if requesterID == patientID {
		return nil
	}
	ok, err := s.grants.HasAccess(ctx, patientID, requesterID)
	if err != nil {
		return fmt.Errorf("check access: %w", err)
	}
	if !ok {
		return ErrAccessDenied
	}
	return nil
}
