package patient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/medicare/pharmacy-api/internal/model"
	"github.com/medicare/pharmacy-api/internal/repository"
	"github.com/medicare/pharmacy-api/internal/service/audit"
	apperrors "github.com/medicare/pharmacy-api/pkg/errors"
)

const (
	codePrefix            = "P"
	codeRetries           = 3
	initialDiagnosis      = "Initial consultation"
	initialRecommendation = "Follow up as needed"
)

type PatientService interface {
	CreatePatient(ctx context.Context, caller *model.Caller, req *model.CreatePatientRequest) (*model.Patient, error)
	ListForDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.PatientSummary, error)
	GetForDoctor(ctx context.Context, id, doctorID uuid.UUID) (*model.Patient, []*model.Prescription, error)
}

type Service struct {
	repo             repository.PatientRepository
	prescriptionRepo repository.PrescriptionRepository
	auditor          *audit.Service
}

func NewService(repo repository.PatientRepository, prescriptionRepo repository.PrescriptionRepository, auditor *audit.Service) *Service {
	return &Service{
		repo:             repo,
		prescriptionRepo: prescriptionRepo,
		auditor:          auditor,
	}
}

// CreatePatient registers a patient with its PII record and links the
// creating doctor via a zero-item draft, so the patient appears in that
// doctor's authorship-derived list immediately.
func (s *Service) CreatePatient(ctx context.Context, caller *model.Caller, req *model.CreatePatientRequest) (*model.Patient, error) {
	patient, err := s.insertWithFreshCode(ctx, req)
	if err != nil {
		return nil, err
	}

	link := &model.Prescription{
		Base:           model.Base{ID: uuid.New()},
		PatientID:      patient.ID,
		DoctorID:       caller.ID,
		Diagnosis:      initialDiagnosis,
		Recommendation: initialRecommendation,
		Status:         model.StatusDraft,
		IssuedOn:       time.Now(),
	}
	if err := s.prescriptionRepo.Create(ctx, link); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to link patient to doctor: %w", err))
	}

	s.auditor.Record(ctx, caller.ID, model.AuditCreatePatient, model.AuditResourcePatient, patient.ID, map[string]interface{}{
		"patientCode": patient.PatientCode,
		"fullName":    req.FullName,
		"createdBy":   caller.DisplayName,
	})

	return patient, nil
}

// insertWithFreshCode generates the yearly sequential code and inserts,
// retrying on a patient_code collision. The unique constraint is the
// arbiter; count-then-format alone would race under concurrent creation.
func (s *Service) insertWithFreshCode(ctx context.Context, req *model.CreatePatientRequest) (*model.Patient, error) {
	for attempt := 0; attempt < codeRetries; attempt++ {
		code, err := s.nextPatientCode(ctx)
		if err != nil {
			return nil, apperrors.Internal(err)
		}

		patient := &model.Patient{
			Base:        model.Base{ID: uuid.New()},
			PatientCode: code,
			AgeBand:     req.AgeBand,
		}
		pii := &model.PatientPII{
			FullName: req.FullName,
			Phone:    req.Phone,
			Address:  req.Address,
			CNIC:     req.CNIC,
		}

		err = s.repo.Create(ctx, patient, pii)
		if err == nil {
			patient.PII = pii
			return patient, nil
		}
		if errors.Is(err, repository.ErrDuplicate) {
			continue
		}
		return nil, apperrors.Internal(err)
	}
	return nil, apperrors.Internal(fmt.Errorf("failed to allocate patient code after %d attempts", codeRetries))
}

// nextPatientCode yields P + 2-digit year + zero-padded sequence, where the
// sequence counts patients created since Jan 1 of the current year.
func (s *Service) nextPatientCode(ctx context.Context) (string, error) {
	now := time.Now()
	startOfYear := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())

	count, err := s.repo.CountCreatedSince(ctx, startOfYear)
	if err != nil {
		return "", err
	}
	return FormatPatientCode(now.Year(), count+1), nil
}

// FormatPatientCode renders the P{yy}{seq} code for a given year and sequence.
func FormatPatientCode(year, sequence int) string {
	return fmt.Sprintf("%s%02d%04d", codePrefix, year%100, sequence)
}

func (s *Service) ListForDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.PatientSummary, error) {
	patients, err := s.repo.ListForDoctor(ctx, doctorID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return patients, nil
}

// GetForDoctor returns the patient (doctor projection) together with the
// caller's own prescriptions for it. A patient this doctor never treated is
// reported not found, same as a nonexistent id.
func (s *Service) GetForDoctor(ctx context.Context, id, doctorID uuid.UUID) (*model.Patient, []*model.Prescription, error) {
	prescriptions, err := s.prescriptionRepo.ListForDoctor(ctx, doctorID)
	if err != nil {
		return nil, nil, apperrors.Internal(err)
	}

	var own []*model.Prescription
	for _, p := range prescriptions {
		if p.PatientID == id {
			own = append(own, p)
		}
	}
	if len(own) == 0 {
		return nil, nil, apperrors.NotFound("patient not found")
	}

	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, apperrors.NotFound("patient not found")
		}
		return nil, nil, apperrors.Internal(err)
	}
	return patient, own, nil
}
