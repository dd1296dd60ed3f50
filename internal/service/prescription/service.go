package prescription

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/medicare/pharmacy-api/internal/model"
	"github.com/medicare/pharmacy-api/internal/repository"
	"github.com/medicare/pharmacy-api/internal/service/audit"
	"github.com/medicare/pharmacy-api/internal/service/medicine"
	apperrors "github.com/medicare/pharmacy-api/pkg/errors"
)

// Renderer turns a finalized prescription document into PDF bytes. It has no
// side effects on the prescription itself.
type Renderer interface {
	Render(doc *model.PrescriptionDocument) ([]byte, error)
}

type PrescriptionService interface {
	Create(ctx context.Context, caller *model.Caller, req *model.CreatePrescriptionRequest) (*model.Prescription, error)
	Get(ctx context.Context, id, doctorID uuid.UUID) (*model.Prescription, error)
	ListForDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.Prescription, error)
	Update(ctx context.Context, caller *model.Caller, id uuid.UUID, req *model.UpdatePrescriptionRequest) (*model.Prescription, error)
	Finalize(ctx context.Context, caller *model.Caller, id uuid.UUID) (*model.Prescription, error)
	Dispense(ctx context.Context, caller *model.Caller, id uuid.UUID) (*model.DispenserPrescription, error)
	GeneratePDF(ctx context.Context, caller *model.Caller, id uuid.UUID) ([]byte, error)
	ListForDispenser(ctx context.Context, undispensedOnly bool) ([]*model.DispenserPrescription, error)
	GetForDispenser(ctx context.Context, id uuid.UUID) (*model.DispenserPrescription, error)
}

// Service is the prescription lifecycle engine. Every mutator relies on the
// repository's predicate writes, so a failed ownership or state precondition
// is indistinguishable from a missing record.
type Service struct {
	repo        repository.PrescriptionRepository
	patientRepo repository.PatientRepository
	catalog     medicine.MedicineService
	renderer    Renderer
	auditor     *audit.Service
}

func NewService(
	repo repository.PrescriptionRepository,
	patientRepo repository.PatientRepository,
	catalog medicine.MedicineService,
	renderer Renderer,
	auditor *audit.Service,
) *Service {
	return &Service{
		repo:        repo,
		patientRepo: patientRepo,
		catalog:     catalog,
		renderer:    renderer,
		auditor:     auditor,
	}
}

func (s *Service) Create(ctx context.Context, caller *model.Caller, req *model.CreatePrescriptionRequest) (*model.Prescription, error) {
	if err := s.ensurePatientExists(ctx, req.PatientID); err != nil {
		return nil, err
	}

	items, medicineNames, err := s.resolveItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	p := &model.Prescription{
		Base:           model.Base{ID: uuid.New()},
		PatientID:      req.PatientID,
		DoctorID:       caller.ID,
		Diagnosis:      req.Diagnosis,
		Recommendation: req.Recommendation,
		Notes:          req.Notes,
		Status:         model.StatusDraft,
		IssuedOn:       time.Now(),
		Items:          items,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, apperrors.Internal(err)
	}

	s.auditor.Record(ctx, caller.ID, model.AuditCreatePrescription, model.AuditResourcePrescription, p.ID, map[string]interface{}{
		"patientId": p.PatientID,
		"diagnosis": p.Diagnosis,
		"itemCount": len(p.Items),
		"medicines": medicineNames,
	})

	return p, nil
}

func (s *Service) Get(ctx context.Context, id, doctorID uuid.UUID) (*model.Prescription, error) {
	p, err := s.repo.GetForDoctor(ctx, id, doctorID)
	if err != nil {
		return nil, translate(err)
	}
	return p, nil
}

func (s *Service) ListForDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.Prescription, error) {
	list, err := s.repo.ListForDoctor(ctx, doctorID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return list, nil
}

// Update replaces the draft's fields and its full item set. The DRAFT and
// ownership preconditions travel inside the repository's conditional update.
func (s *Service) Update(ctx context.Context, caller *model.Caller, id uuid.UUID, req *model.UpdatePrescriptionRequest) (*model.Prescription, error) {
	if err := s.ensurePatientExists(ctx, req.PatientID); err != nil {
		return nil, err
	}

	items, medicineNames, err := s.resolveItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	p := &model.Prescription{
		Base:           model.Base{ID: id},
		PatientID:      req.PatientID,
		DoctorID:       caller.ID,
		Diagnosis:      req.Diagnosis,
		Recommendation: req.Recommendation,
		Notes:          req.Notes,
		Items:          items,
	}

	if err := s.repo.UpdateDraft(ctx, p); err != nil {
		return nil, translate(err)
	}

	s.auditor.Record(ctx, caller.ID, model.AuditUpdatePrescription, model.AuditResourcePrescription, id, map[string]interface{}{
		"patientId": req.PatientID,
		"itemCount": len(items),
		"medicines": medicineNames,
	})

	return s.repo.GetForDoctor(ctx, id, caller.ID)
}

func (s *Service) Finalize(ctx context.Context, caller *model.Caller, id uuid.UUID) (*model.Prescription, error) {
	if err := s.repo.Finalize(ctx, id, caller.ID); err != nil {
		return nil, translate(err)
	}

	s.auditor.Record(ctx, caller.ID, model.AuditFinalizePrescription, model.AuditResourcePrescription, id, map[string]interface{}{
		"previousStatus": model.StatusDraft,
		"newStatus":      model.StatusFinal,
	})

	return s.repo.GetForDoctor(ctx, id, caller.ID)
}

// Dispense marks a FINAL, undispensed prescription as dispensed. A repeat
// call fails the conditional update and surfaces the same not-found as a
// missing record, so double-dispense cannot happen and is not distinguishable.
func (s *Service) Dispense(ctx context.Context, caller *model.Caller, id uuid.UUID) (*model.DispenserPrescription, error) {
	now := time.Now()
	if err := s.repo.Dispense(ctx, id, caller.ID, now); err != nil {
		return nil, translate(err)
	}

	s.auditor.Record(ctx, caller.ID, model.AuditDispensePrescription, model.AuditResourcePrescription, id, map[string]interface{}{
		"dispensedAt":   now.Format(time.RFC3339),
		"dispenserName": caller.DisplayName,
	})

	return s.repo.GetForDispenser(ctx, id)
}

// GeneratePDF renders the finalized prescription owned by the caller. It is
// read-only with respect to the prescription row.
func (s *Service) GeneratePDF(ctx context.Context, caller *model.Caller, id uuid.UUID) ([]byte, error) {
	doc, err := s.repo.GetDocument(ctx, id, caller.ID)
	if err != nil {
		return nil, translate(err)
	}

	pdf, err := s.renderer.Render(doc)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	s.auditor.Record(ctx, caller.ID, model.AuditGeneratePDF, model.AuditResourcePrescription, id, map[string]interface{}{
		"patientCode": doc.Patient.PatientCode,
		"generatedAt": time.Now().Format(time.RFC3339),
	})

	return pdf, nil
}

func (s *Service) ListForDispenser(ctx context.Context, undispensedOnly bool) ([]*model.DispenserPrescription, error) {
	list, err := s.repo.ListForDispenser(ctx, undispensedOnly)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return list, nil
}

func (s *Service) GetForDispenser(ctx context.Context, id uuid.UUID) (*model.DispenserPrescription, error) {
	p, err := s.repo.GetForDispenser(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	return p, nil
}

// ensurePatientExists rejects a patient id that is not in the registry before
// it can hit the foreign key; a bad reference is the caller's input error.
func (s *Service) ensurePatientExists(ctx context.Context, patientID uuid.UUID) error {
	exists, err := s.patientRepo.Exists(ctx, patientID)
	if err != nil {
		return apperrors.Internal(err)
	}
	if !exists {
		return apperrors.Validation("validation failed", map[string]string{
			"patient_id": "patient does not exist",
		})
	}
	return nil
}

// resolveItems runs every submitted line through the catalog's find-or-create
// and returns the persistable items plus the medicine names for auditing.
func (s *Service) resolveItems(ctx context.Context, reqs []*model.PrescriptionItemRequest) ([]*model.PrescriptionItem, []string, error) {
	items := make([]*model.PrescriptionItem, 0, len(reqs))
	names := make([]string, 0, len(reqs))

	for _, req := range reqs {
		med, err := s.catalog.Resolve(ctx, req.MedicineName, req.Strength, req.Form)
		if err != nil {
			return nil, nil, apperrors.Internal(err)
		}
		items = append(items, &model.PrescriptionItem{
			MedicineID: med.ID,
			Dosage:     req.Dosage,
			Frequency:  req.Frequency,
			Duration:   req.Duration,
			Remarks:    req.Remarks,
			Medicine:   med,
		})
		names = append(names, med.Name)
	}
	return items, names, nil
}

func translate(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound("prescription not found")
	}
	return apperrors.Internal(err)
}
