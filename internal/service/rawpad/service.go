package rawpad

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/medicare/pharmacy-api/internal/model"
	"github.com/medicare/pharmacy-api/internal/repository"
	apperrors "github.com/medicare/pharmacy-api/pkg/errors"
)

const (
	defaultLimit = 10
	maxLimit     = 100
)

type RawPadService interface {
	Create(ctx context.Context, caller *model.Caller, req *model.CreateRawPrescriptionRequest) (*model.RawPrescription, error)
	Get(ctx context.Context, id, doctorID uuid.UUID) (*model.RawPrescription, error)
	List(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*model.RawPrescription, int64, error)
}

// Service handles the free-form prescription pad. Pad entries never touch the
// patient registry or the lifecycle engine.
type Service struct {
	repo repository.RawPrescriptionRepository
}

func NewService(repo repository.RawPrescriptionRepository) *Service {
	return &Service{repo: repo}
}

// Create saves a pad capture. Medicine rows with a blank name are dropped;
// the remaining rows keep their submitted order.
func (s *Service) Create(ctx context.Context, caller *model.Caller, req *model.CreateRawPrescriptionRequest) (*model.RawPrescription, error) {
	p := &model.RawPrescription{
		Base:            model.Base{ID: uuid.New()},
		DoctorID:        caller.ID,
		PatientName:     req.PatientName,
		PatientAge:      req.PatientAge,
		PatientGender:   req.PatientGender,
		PatientCNIC:     req.PatientCNIC,
		PatientPhone:    req.PatientPhone,
		PatientAddress:  req.PatientAddress,
		Diagnosis:       req.Diagnosis,
		Tests:           req.Tests,
		Recommendations: req.Recommendations,
	}

	order := 0
	for _, med := range req.Medicines {
		name := strings.TrimSpace(med.Name)
		if name == "" {
			continue
		}
		if len(med.Frequencies) != 3 {
			return nil, apperrors.Validation("validation failed", map[string]string{
				"medicines": "each medicine needs exactly 3 frequency flags",
			})
		}
		order++
		p.Medicines = append(p.Medicines, &model.RawPadMedicine{
			MedicineOrder: order,
			MedicineName:  name,
			Frequency1:    med.Frequencies[0],
			Frequency2:    med.Frequencies[1],
			Frequency3:    med.Frequencies[2],
		})
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, apperrors.Internal(err)
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, id, doctorID uuid.UUID) (*model.RawPrescription, error) {
	p, err := s.repo.GetForDoctor(ctx, id, doctorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("prescription not found")
		}
		return nil, apperrors.Internal(err)
	}
	return p, nil
}

// ClampPage normalizes caller-supplied pagination to the bounds List actually
// serves, so response metadata can echo the effective values.
func ClampPage(limit, offset int) (int, int) {
	if limit <= 0 || limit > maxLimit {
		limit = defaultLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func (s *Service) List(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*model.RawPrescription, int64, error) {
	limit, offset = ClampPage(limit, offset)
	list, total, err := s.repo.ListForDoctor(ctx, doctorID, limit, offset)
	if err != nil {
		return nil, 0, apperrors.Internal(err)
	}
	return list, total, nil
}
