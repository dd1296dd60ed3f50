package prescription

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medicare/pharmacy-api/internal/model"
	"github.com/medicare/pharmacy-api/internal/repository"
	"github.com/medicare/pharmacy-api/internal/service/audit"
	apperrors "github.com/medicare/pharmacy-api/pkg/errors"
)

// fakeRxRepo mimics the predicate-write semantics of the postgres
// implementation: every mutation checks ownership and state in the same
// operation and reports ErrNotFound when the predicate fails.
type fakeRxRepo struct {
	rows map[uuid.UUID]*model.Prescription
}

func newFakeRxRepo() *fakeRxRepo {
	return &fakeRxRepo{rows: make(map[uuid.UUID]*model.Prescription)}
}

func (f *fakeRxRepo) Create(_ context.Context, p *model.Prescription) error {
	cp := *p
	f.rows[p.ID] = &cp
	return nil
}

func (f *fakeRxRepo) GetForDoctor(_ context.Context, id, doctorID uuid.UUID) (*model.Prescription, error) {
	p, ok := f.rows[id]
	if !ok || p.DoctorID != doctorID {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeRxRepo) ListForDoctor(_ context.Context, doctorID uuid.UUID) ([]*model.Prescription, error) {
	var out []*model.Prescription
	for _, p := range f.rows {
		if p.DoctorID == doctorID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeRxRepo) UpdateDraft(_ context.Context, p *model.Prescription) error {
	row, ok := f.rows[p.ID]
	if !ok || row.DoctorID != p.DoctorID || row.Status != model.StatusDraft {
		return repository.ErrNotFound
	}
	row.Diagnosis = p.Diagnosis
	row.Recommendation = p.Recommendation
	row.Notes = p.Notes
	row.Items = p.Items
	return nil
}

func (f *fakeRxRepo) Finalize(_ context.Context, id, doctorID uuid.UUID) error {
	row, ok := f.rows[id]
	if !ok || row.DoctorID != doctorID || row.Status != model.StatusDraft {
		return repository.ErrNotFound
	}
	row.Status = model.StatusFinal
	return nil
}

func (f *fakeRxRepo) Dispense(_ context.Context, id, dispenserID uuid.UUID, at time.Time) error {
	row, ok := f.rows[id]
	if !ok || row.Status != model.StatusFinal || row.DispensedAt != nil {
		return repository.ErrNotFound
	}
	row.DispensedAt = &at
	row.DispensedBy = &dispenserID
	return nil
}

func (f *fakeRxRepo) GetDocument(_ context.Context, id, doctorID uuid.UUID) (*model.PrescriptionDocument, error) {
	row, ok := f.rows[id]
	if !ok || row.DoctorID != doctorID || row.Status != model.StatusFinal {
		return nil, repository.ErrNotFound
	}
	return &model.PrescriptionDocument{
		Prescription: row,
		Patient: &model.Patient{
			Base:        model.Base{ID: row.PatientID},
			PatientCode: "P260001",
			AgeBand:     "19-40",
			PII:         &model.PatientPII{FullName: "Jane Doe"},
		},
		DoctorName:  "Dr. Test",
		DoctorEmail: "doctor@example.com",
	}, nil
}

func (f *fakeRxRepo) ListForDispenser(_ context.Context, undispensedOnly bool) ([]*model.DispenserPrescription, error) {
	var out []*model.DispenserPrescription
	for _, p := range f.rows {
		if p.Status != model.StatusFinal {
			continue
		}
		if undispensedOnly && p.DispensedAt != nil {
			continue
		}
		out = append(out, f.project(p))
	}
	return out, nil
}

func (f *fakeRxRepo) GetForDispenser(_ context.Context, id uuid.UUID) (*model.DispenserPrescription, error) {
	p, ok := f.rows[id]
	if !ok || p.Status != model.StatusFinal {
		return nil, repository.ErrNotFound
	}
	return f.project(p), nil
}

func (f *fakeRxRepo) project(p *model.Prescription) *model.DispenserPrescription {
	return &model.DispenserPrescription{
		ID:             p.ID,
		Diagnosis:      p.Diagnosis,
		Recommendation: p.Recommendation,
		Status:         p.Status,
		IssuedOn:       p.IssuedOn,
		DispensedAt:    p.DispensedAt,
		DispensedBy:    p.DispensedBy,
		PatientCode:    "P260001",
		AgeBand:        "19-40",
		Items:          p.Items,
	}
}

type fakePatientRepo struct {
	known map[uuid.UUID]bool
}

func (f *fakePatientRepo) Create(_ context.Context, _ *model.Patient, _ *model.PatientPII) error {
	return nil
}

func (f *fakePatientRepo) Get(_ context.Context, _ uuid.UUID) (*model.Patient, error) {
	return nil, repository.ErrNotFound
}

func (f *fakePatientRepo) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	return f.known[id], nil
}

func (f *fakePatientRepo) CountCreatedSince(_ context.Context, _ time.Time) (int, error) {
	return 0, nil
}

func (f *fakePatientRepo) ListForDoctor(_ context.Context, _ uuid.UUID) ([]*model.PatientSummary, error) {
	return nil, nil
}

type fakeCatalog struct{}

func (f *fakeCatalog) Resolve(_ context.Context, name, strength, form string) (*model.Medicine, error) {
	return &model.Medicine{
		Base:     model.Base{ID: uuid.New()},
		Name:     name,
		Strength: strength,
		Form:     form,
		IsActive: true,
	}, nil
}

func (f *fakeCatalog) ListActive(_ context.Context) ([]*model.Medicine, error) {
	return nil, nil
}

type fakeRenderer struct{ rendered int }

func (f *fakeRenderer) Render(_ *model.PrescriptionDocument) ([]byte, error) {
	f.rendered++
	return []byte("%PDF-1.4"), nil
}

type fakeAuditRepo struct {
	entries []*model.AuditLog
}

func (f *fakeAuditRepo) Create(_ context.Context, log *model.AuditLog) error {
	f.entries = append(f.entries, log)
	return nil
}

func (f *fakeAuditRepo) List(_ context.Context, _ *model.AuditFilters) ([]*model.AuditLog, int64, error) {
	return f.entries, int64(len(f.entries)), nil
}

func (f *fakeAuditRepo) actions() []string {
	out := make([]string, len(f.entries))
	for i, e := range f.entries {
		out[i] = e.Action
	}
	return out
}

type fixture struct {
	svc     *Service
	repo    *fakeRxRepo
	patient *fakePatientRepo
	auditor *fakeAuditRepo
	render  *fakeRenderer
	doctor  *model.Caller
}

func newFixture() *fixture {
	repo := newFakeRxRepo()
	patientRepo := &fakePatientRepo{known: make(map[uuid.UUID]bool)}
	auditRepo := &fakeAuditRepo{}
	renderer := &fakeRenderer{}
	return &fixture{
		svc:     NewService(repo, patientRepo, &fakeCatalog{}, renderer, audit.NewService(auditRepo)),
		repo:    repo,
		patient: patientRepo,
		auditor: auditRepo,
		render:  renderer,
		doctor: &model.Caller{
			ID:          uuid.New(),
			DisplayName: "Dr. Test",
			Roles:       model.NewRoleSet(model.RoleDoctor),
		},
	}
}

func (fx *fixture) createRequest() *model.CreatePrescriptionRequest {
	patientID := uuid.New()
	fx.patient.known[patientID] = true
	return &model.CreatePrescriptionRequest{
		PatientID:      patientID,
		Diagnosis:      "Seasonal flu",
		Recommendation: "Rest and fluids",
		Items: []*model.PrescriptionItemRequest{
			{MedicineName: "Paracetamol", Strength: "500mg", Form: "Tablet", Dosage: "1 tablet", Frequency: "TDS", Duration: "5 days"},
		},
	}
}

func (fx *fixture) createDraft(t *testing.T) *model.Prescription {
	t.Helper()
	p, err := fx.svc.Create(context.Background(), fx.doctor, fx.createRequest())
	require.NoError(t, err)
	return p
}

func TestCreateStartsAsDraft(t *testing.T) {
	fx := newFixture()

	p := fx.createDraft(t)
	assert.Equal(t, model.StatusDraft, p.Status)
	assert.Equal(t, fx.doctor.ID, p.DoctorID)
	require.Len(t, p.Items, 1)
	assert.Equal(t, []string{model.AuditCreatePrescription}, fx.auditor.actions())
}

func TestCreateRejectsUnknownPatient(t *testing.T) {
	fx := newFixture()
	req := fx.createRequest()
	req.PatientID = uuid.New()

	_, err := fx.svc.Create(context.Background(), fx.doctor, req)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeValidation, apperrors.Code(err))
	assert.Empty(t, fx.auditor.entries)
}

func TestUpdateReplacesDraftItems(t *testing.T) {
	fx := newFixture()
	p := fx.createDraft(t)

	req := &model.UpdatePrescriptionRequest{
		PatientID:      p.PatientID,
		Diagnosis:      "Bacterial infection",
		Recommendation: "Complete the full course",
		Items: []*model.PrescriptionItemRequest{
			{MedicineName: "Amoxicillin", Strength: "250mg", Form: "Capsule", Dosage: "1 capsule", Frequency: "BD", Duration: "7 days"},
			{MedicineName: "Paracetamol", Strength: "500mg", Form: "Tablet", Dosage: "1 tablet", Frequency: "PRN", Duration: "3 days"},
		},
	}

	updated, err := fx.svc.Update(context.Background(), fx.doctor, p.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "Bacterial infection", updated.Diagnosis)
	require.Len(t, updated.Items, 2)
}

// A replacement patient id must exist, same as on create; otherwise the bad
// reference would only surface as a foreign key failure.
func TestUpdateRejectsUnknownPatient(t *testing.T) {
	fx := newFixture()
	p := fx.createDraft(t)

	req := &model.UpdatePrescriptionRequest{
		PatientID:      uuid.New(),
		Diagnosis:      "Changed diagnosis",
		Recommendation: "Rest and fluids",
		Items: []*model.PrescriptionItemRequest{
			{MedicineName: "Paracetamol", Strength: "500mg", Form: "Tablet", Dosage: "1 tablet", Frequency: "TDS", Duration: "5 days"},
		},
	}

	_, err := fx.svc.Update(context.Background(), fx.doctor, p.ID, req)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeValidation, apperrors.Code(err))

	// The draft is untouched.
	got, err := fx.svc.Get(context.Background(), p.ID, fx.doctor.ID)
	require.NoError(t, err)
	assert.Equal(t, "Seasonal flu", got.Diagnosis)
}

func TestUpdateAfterFinalizeIsNotFound(t *testing.T) {
	fx := newFixture()
	p := fx.createDraft(t)

	_, err := fx.svc.Finalize(context.Background(), fx.doctor, p.ID)
	require.NoError(t, err)

	req := fx.createRequest()
	req.PatientID = p.PatientID
	_, err = fx.svc.Update(context.Background(), fx.doctor, p.ID, req)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.Code(err))
}

func TestFinalizeIsOneWay(t *testing.T) {
	fx := newFixture()
	p := fx.createDraft(t)

	finalized, err := fx.svc.Finalize(context.Background(), fx.doctor, p.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusFinal, finalized.Status)

	// A second finalize fails the DRAFT predicate.
	_, err = fx.svc.Finalize(context.Background(), fx.doctor, p.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.Code(err))
}

func TestFinalizeForeignPrescriptionIsNotFound(t *testing.T) {
	fx := newFixture()
	p := fx.createDraft(t)

	other := &model.Caller{ID: uuid.New(), DisplayName: "Dr. Other", Roles: model.NewRoleSet(model.RoleDoctor)}
	_, err := fx.svc.Finalize(context.Background(), other, p.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.Code(err))

	// The record remains a draft for its owner.
	got, err := fx.svc.Get(context.Background(), p.ID, fx.doctor.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusDraft, got.Status)
}

func TestDispenseOnlyOnce(t *testing.T) {
	fx := newFixture()
	p := fx.createDraft(t)
	_, err := fx.svc.Finalize(context.Background(), fx.doctor, p.ID)
	require.NoError(t, err)

	dispenser := &model.Caller{ID: uuid.New(), DisplayName: "Bilal Ahmed", Roles: model.NewRoleSet(model.RoleDispenser)}

	dispensed, err := fx.svc.Dispense(context.Background(), dispenser, p.ID)
	require.NoError(t, err)
	require.NotNil(t, dispensed.DispensedAt)
	assert.Equal(t, dispenser.ID, *dispensed.DispensedBy)

	_, err = fx.svc.Dispense(context.Background(), dispenser, p.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.Code(err))
}

func TestDispenseDraftIsNotFound(t *testing.T) {
	fx := newFixture()
	p := fx.createDraft(t)

	dispenser := &model.Caller{ID: uuid.New(), DisplayName: "Bilal Ahmed", Roles: model.NewRoleSet(model.RoleDispenser)}
	_, err := fx.svc.Dispense(context.Background(), dispenser, p.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.Code(err))
}

func TestGeneratePDFRequiresFinal(t *testing.T) {
	fx := newFixture()
	p := fx.createDraft(t)

	_, err := fx.svc.GeneratePDF(context.Background(), fx.doctor, p.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.Code(err))
	assert.Zero(t, fx.render.rendered)

	_, err = fx.svc.Finalize(context.Background(), fx.doctor, p.ID)
	require.NoError(t, err)

	data, err := fx.svc.GeneratePDF(context.Background(), fx.doctor, p.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	assert.Equal(t, 1, fx.render.rendered)
}

func TestDispenserListFiltersWorkQueue(t *testing.T) {
	fx := newFixture()
	draft := fx.createDraft(t)
	finalized := fx.createDraft(t)
	done := fx.createDraft(t)

	_, err := fx.svc.Finalize(context.Background(), fx.doctor, finalized.ID)
	require.NoError(t, err)
	_, err = fx.svc.Finalize(context.Background(), fx.doctor, done.ID)
	require.NoError(t, err)

	dispenser := &model.Caller{ID: uuid.New(), DisplayName: "Bilal Ahmed", Roles: model.NewRoleSet(model.RoleDispenser)}
	_, err = fx.svc.Dispense(context.Background(), dispenser, done.ID)
	require.NoError(t, err)

	queue, err := fx.svc.ListForDispenser(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, queue, 1)
	assert.Equal(t, finalized.ID, queue[0].ID)

	all, err := fx.svc.ListForDispenser(context.Background(), false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	// Drafts never surface through the gateway.
	_, err = fx.svc.GetForDispenser(context.Background(), draft.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.Code(err))
}

func TestLifecycleAuditTrail(t *testing.T) {
	fx := newFixture()
	p := fx.createDraft(t)

	_, err := fx.svc.Finalize(context.Background(), fx.doctor, p.ID)
	require.NoError(t, err)

	dispenser := &model.Caller{ID: uuid.New(), DisplayName: "Bilal Ahmed", Roles: model.NewRoleSet(model.RoleDispenser)}
	_, err = fx.svc.Dispense(context.Background(), dispenser, p.ID)
	require.NoError(t, err)

	_, err = fx.svc.GeneratePDF(context.Background(), fx.doctor, p.ID)
	require.NoError(t, err)

	assert.Equal(t, []string{
		model.AuditCreatePrescription,
		model.AuditFinalizePrescription,
		model.AuditDispensePrescription,
		model.AuditGeneratePDF,
	}, fx.auditor.actions())

	dispenseEntry := fx.auditor.entries[2]
	assert.Contains(t, string(dispenseEntry.Details), "Bilal Ahmed")
	pdfEntry := fx.auditor.entries[3]
	assert.Contains(t, string(pdfEntry.Details), "P260001")
}
