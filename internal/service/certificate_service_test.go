package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/avolkov/cert-registry-api/internal/directory"
	"github.com/avolkov/cert-registry-api/internal/models"
	"github.com/avolkov/cert-registry-api/internal/workflow"
	"github.com/avolkov/cert-registry-api/pkg/config"
	appErrors "github.com/avolkov/cert-registry-api/pkg/errors"
)

const testModule = "Модуль Сертификации"

var fixedNow = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

type mockCertStore struct {
	items  map[int64]*models.Certificate
	nextID int64

	lastModule   string
	lastOwnerIDs []int
	listCalls    int
	backfilled   []int64
}

func newMockCertStore() *mockCertStore {
	return &mockCertStore{items: map[int64]*models.Certificate{}, nextID: 1}
}

func (m *mockCertStore) put(cert models.Certificate) *models.Certificate {
	if cert.ID == 0 {
		cert.ID = m.nextID
		m.nextID++
	}
	cp := cert
	m.items[cp.ID] = &cp
	return &cp
}

func (m *mockCertStore) Create(ctx context.Context, cert *models.Certificate) (*models.Certificate, error) {
	cert.CreatedAt = fixedNow
	stored := m.put(*cert)
	cp := *stored
	return &cp, nil
}

func (m *mockCertStore) FindByID(ctx context.Context, id int64) (*models.Certificate, error) {
	if cert, ok := m.items[id]; ok {
		cp := *cert
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockCertStore) ListByOwner(ctx context.Context, ownerID int) ([]models.Certificate, error) {
	var out []models.Certificate
	for _, cert := range m.items {
		if cert.OwnerID == ownerID {
			out = append(out, *cert)
		}
	}
	return out, nil
}

func (m *mockCertStore) ListByOwners(ctx context.Context, ownerIDs []int) ([]models.Certificate, error) {
	m.listCalls++
	m.lastOwnerIDs = ownerIDs
	var out []models.Certificate
	for _, id := range ownerIDs {
		certs, _ := m.ListByOwner(ctx, id)
		out = append(out, certs...)
	}
	return out, nil
}

func (m *mockCertStore) ListByModule(ctx context.Context, module string) ([]models.Certificate, error) {
	m.listCalls++
	m.lastModule = module
	var out []models.Certificate
	for _, cert := range m.items {
		if cert.EffectiveModule(testModule) == module {
			out = append(out, *cert)
		}
	}
	return out, nil
}

func (m *mockCertStore) ListExamRequests(ctx context.Context, examinerID int) ([]models.Certificate, error) {
	var out []models.Certificate
	for _, cert := range m.items {
		if cert.CertType == models.CertTypeInternal &&
			cert.WorkflowStatus == models.StatusPendingExam &&
			cert.RequiredExaminerID != nil && *cert.RequiredExaminerID == examinerID {
			out = append(out, *cert)
		}
	}
	return out, nil
}

func (m *mockCertStore) SetExamResult(ctx context.Context, certID int64, examinerID int, grade, examDate string, status models.WorkflowStatus) (*models.Certificate, error) {
	cert, ok := m.items[certID]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "certificate not found")
	}
	cert.ExamGrade = &grade
	cert.ExamDate = &examDate
	cert.WorkflowStatus = status
	cp := *cert
	return &cp, nil
}

func (m *mockCertStore) Revoke(ctx context.Context, certID int64, hrID int, hrName, reason, allowedModule string) (*models.Certificate, error) {
	cert, ok := m.items[certID]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "certificate not found")
	}
	if allowedModule != "" && cert.EffectiveModule(testModule) != allowedModule {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "certificate outside the controlled module")
	}
	now := fixedNow
	cert.WorkflowStatus = models.StatusRevoked
	cert.RevokedByID = &hrID
	cert.RevokedByName = &hrName
	cert.RevokedReason = &reason
	cert.RevokedAt = &now
	cp := *cert
	return &cp, nil
}

func (m *mockCertStore) Unrevoke(ctx context.Context, certID int64, hrID int, allowedModule string) (*models.Certificate, error) {
	cert, ok := m.items[certID]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "certificate not found")
	}
	if !cert.Revoked() {
		cp := *cert
		return &cp, nil
	}
	cert.WorkflowStatus = workflow.UnrevokeStatus(*cert)
	cert.RevokedByID = nil
	cert.RevokedByName = nil
	cert.RevokedReason = nil
	cert.RevokedAt = nil
	cp := *cert
	return &cp, nil
}

func (m *mockCertStore) Update(ctx context.Context, certID int64, name, issuedAt, expiresAt string, topic *string, allowedModule string) (*models.Certificate, error) {
	cert, ok := m.items[certID]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "certificate not found")
	}
	cert.Name = name
	cert.IssuedAt = issuedAt
	cert.ExpiresAt = expiresAt
	if cert.CertType == models.CertTypeInternal {
		cert.Topic = topic
	}
	cp := *cert
	return &cp, nil
}

func (m *mockCertStore) Delete(ctx context.Context, certID int64, allowedModule string) error {
	if _, ok := m.items[certID]; !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "certificate not found")
	}
	delete(m.items, certID)
	return nil
}

func (m *mockCertStore) BackfillSnapshot(ctx context.Context, certID int64, fullName, position, module string, managerID *int, managerName *string) error {
	m.backfilled = append(m.backfilled, certID)
	if cert, ok := m.items[certID]; ok {
		cert.SnapshotFullName = &fullName
		cert.SnapshotPosition = &position
		cert.SnapshotModule = &module
		cert.SnapshotManagerID = managerID
		cert.SnapshotManagerName = managerName
	}
	return nil
}

type mockProfileStore struct {
	profiles map[int]*models.Profile
}

func newMockProfileStore() *mockProfileStore {
	return &mockProfileStore{profiles: map[int]*models.Profile{}}
}

func (m *mockProfileStore) Get(ctx context.Context, userID int) (*models.Profile, error) {
	if p, ok := m.profiles[userID]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockProfileStore) List(ctx context.Context) ([]models.Profile, error) {
	var out []models.Profile
	for _, p := range m.profiles {
		out = append(out, *p)
	}
	return out, nil
}

func (m *mockProfileStore) Upsert(ctx context.Context, profile *models.Profile) error {
	cp := *profile
	m.profiles[profile.UserID] = &cp
	return nil
}

func (m *mockProfileStore) Seed(ctx context.Context, users []models.User, defaultModule string) error {
	for _, u := range users {
		if _, ok := m.profiles[u.ID]; ok {
			continue
		}
		var controlled *string
		if u.Role == models.RoleHR {
			c := defaultModule
			controlled = &c
		}
		m.profiles[u.ID] = &models.Profile{
			UserID:           u.ID,
			FullName:         u.FullName,
			Position:         u.Role.Label(),
			Module:           defaultModule,
			ManagerID:        u.ManagerID,
			ControlledModule: controlled,
		}
	}
	return nil
}

type mockCache struct {
	store       map[string][]byte
	invalidated int
}

func newMockCache() *mockCache {
	return &mockCache{store: map[string][]byte{}}
}

func (m *mockCache) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *mockCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.store[key] = raw
	return nil
}

func (m *mockCache) DeleteByPattern(ctx context.Context, pattern string) error {
	m.invalidated++
	m.store = map[string][]byte{}
	return nil
}

func newTestService() (*CertificateService, *mockCertStore, *mockProfileStore, *mockCache) {
	store := newMockCertStore()
	profiles := newMockProfileStore()
	cache := newMockCache()
	svc := NewCertificateService(store, profiles, cache, directory.Default(), config.RegistryConfig{
		DefaultModule: testModule,
		TeamCacheTTL:  time.Minute,
	}, zap.NewNop())
	svc.now = func() time.Time { return fixedNow }
	return svc, store, profiles, cache
}

func viewerFor(t *testing.T, svc *CertificateService, userID int) models.DisplayUser {
	t.Helper()
	viewer, err := svc.Resolve(context.Background(), userID)
	require.NoError(t, err)
	return *viewer
}

func TestCreateExternalCapturesSnapshot(t *testing.T) {
	svc, _, profiles, cache := newTestService()
	profiles.profiles[20] = &models.Profile{
		UserID: 20, FullName: "Иванов Иван Сергеевич", Position: "Инженер", Module: "Модуль А", ManagerID: intPtr(10),
	}
	viewer := viewerFor(t, svc, 20)

	created, err := svc.Create(context.Background(), viewer, models.CreateCertificateRequest{
		Name:     "AWS Certified",
		CertType: models.CertTypeExternal,
		IssuedAt: "2026-01-01",
	})
	require.NoError(t, err)

	assert.Equal(t, models.StatusActive, created.WorkflowStatus)
	require.NotNil(t, created.SnapshotFullName)
	assert.Equal(t, "Иванов Иван Сергеевич", *created.SnapshotFullName)
	assert.Equal(t, "Инженер", *created.SnapshotPosition)
	assert.Equal(t, "Модуль А", *created.SnapshotModule)
	require.NotNil(t, created.SnapshotManagerName)
	assert.Equal(t, "Петров Александр Николаевич", *created.SnapshotManagerName)
	assert.Equal(t, 1, cache.invalidated)
}

func TestCreateInternalRequiresTopic(t *testing.T) {
	svc, _, _, _ := newTestService()
	viewer := viewerFor(t, svc, 20)

	_, err := svc.Create(context.Background(), viewer, models.CreateCertificateRequest{
		Name:     "Внутренняя сертификация",
		CertType: models.CertTypeInternal,
		IssuedAt: "2026-01-01",
	})
	requireAppError(t, err, appErrors.ErrValidation.Code)
}

func TestCreateInternalAssignsManagerAsExaminer(t *testing.T) {
	svc, _, _, _ := newTestService()
	viewer := viewerFor(t, svc, 20)

	topic := "Go и архитектура"
	created, err := svc.Create(context.Background(), viewer, models.CreateCertificateRequest{
		Name:     "Внутренняя сертификация",
		CertType: models.CertTypeInternal,
		Topic:    &topic,
		IssuedAt: "2026-01-01",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPendingExam, created.WorkflowStatus)
	require.NotNil(t, created.RequiredExaminerID)
	assert.Equal(t, 10, *created.RequiredExaminerID)
	require.NotNil(t, created.RequiredExaminerName)
	assert.Equal(t, "Петров Александр Николаевич", *created.RequiredExaminerName)
	require.NotNil(t, created.Topic)
}

func TestCreatePerpetualClearsExpiry(t *testing.T) {
	svc, _, _, _ := newTestService()
	viewer := viewerFor(t, svc, 20)

	created, err := svc.Create(context.Background(), viewer, models.CreateCertificateRequest{
		Name:        "AWS Certified",
		CertType:    models.CertTypeExternal,
		IssuedAt:    "2026-01-01",
		ExpiresAt:   "2027-01-01",
		IsPerpetual: true,
	})
	require.NoError(t, err)
	assert.Empty(t, created.ExpiresAt)
	assert.Equal(t, workflow.DisplayValid, created.Status)
}

func TestCreateRejectsBadDate(t *testing.T) {
	svc, _, _, _ := newTestService()
	viewer := viewerFor(t, svc, 20)

	_, err := svc.Create(context.Background(), viewer, models.CreateCertificateRequest{
		Name:     "AWS Certified",
		CertType: models.CertTypeExternal,
		IssuedAt: "01.01.2026",
	})
	requireAppError(t, err, appErrors.ErrValidation.Code)
}

func pendingInternalCert(store *mockCertStore, ownerID, examinerID int) *models.Certificate {
	examinerName := "Петров Александр Николаевич"
	return store.put(models.Certificate{
		OwnerID:              ownerID,
		Name:                 "Внутренняя сертификация",
		CertType:             models.CertTypeInternal,
		IssuedAt:             "2026-01-01",
		WorkflowStatus:       models.StatusPendingExam,
		RequiredExaminerID:   &examinerID,
		RequiredExaminerName: &examinerName,
	})
}

func TestSubmitExamNormalizesGrade(t *testing.T) {
	svc, store, _, _ := newTestService()
	cert := pendingInternalCert(store, 20, 10)
	examiner := viewerFor(t, svc, 10)

	updated, err := svc.SubmitExam(context.Background(), examiner, cert.ID, models.ExamResultRequest{Grade: "5"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPassed, updated.WorkflowStatus)
	require.NotNil(t, updated.ExamGrade)
	assert.Equal(t, "Hard", *updated.ExamGrade)
	require.NotNil(t, updated.ExamDate)
	assert.Equal(t, "2026-06-15", *updated.ExamDate)
}

func TestSubmitExamFailSentinel(t *testing.T) {
	svc, store, _, _ := newTestService()
	cert := pendingInternalCert(store, 20, 10)
	examiner := viewerFor(t, svc, 10)

	updated, err := svc.SubmitExam(context.Background(), examiner, cert.ID, models.ExamResultRequest{Grade: "не сдал"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, updated.WorkflowStatus)
	assert.Equal(t, workflow.FailSentinel, *updated.ExamGrade)
}

func TestSubmitExamUnrecognizedGrade(t *testing.T) {
	svc, store, _, _ := newTestService()
	cert := pendingInternalCert(store, 20, 10)
	examiner := viewerFor(t, svc, 10)

	_, err := svc.SubmitExam(context.Background(), examiner, cert.ID, models.ExamResultRequest{Grade: "отлично"})
	requireAppError(t, err, appErrors.ErrValidation.Code)
	assert.Equal(t, models.StatusPendingExam, store.items[cert.ID].WorkflowStatus)
}

func TestSubmitExamOnlyAssignedExaminer(t *testing.T) {
	svc, store, _, _ := newTestService()
	cert := pendingInternalCert(store, 20, 10)
	other := viewerFor(t, svc, 11)

	_, err := svc.SubmitExam(context.Background(), other, cert.ID, models.ExamResultRequest{Grade: "5"})
	requireAppError(t, err, appErrors.ErrForbidden.Code)
}

func TestSubmitExamAllowsRegrading(t *testing.T) {
	svc, store, _, _ := newTestService()
	cert := pendingInternalCert(store, 20, 10)
	examiner := viewerFor(t, svc, 10)

	_, err := svc.SubmitExam(context.Background(), examiner, cert.ID, models.ExamResultRequest{Grade: "не сдан"})
	require.NoError(t, err)

	updated, err := svc.SubmitExam(context.Background(), examiner, cert.ID, models.ExamResultRequest{Grade: "Light"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPassed, updated.WorkflowStatus)
	assert.Equal(t, "Light", *updated.ExamGrade)
}

func TestGetAuthorization(t *testing.T) {
	svc, store, _, _ := newTestService()
	module := testModule
	cert := store.put(models.Certificate{
		OwnerID: 20, Name: "AWS Certified", CertType: models.CertTypeExternal,
		IssuedAt: "2026-01-01", WorkflowStatus: models.StatusActive,
		SnapshotFullName: strPtr("Иванов Иван Сергеевич"), SnapshotModule: &module,
	})

	// owner
	_, err := svc.Get(context.Background(), viewerFor(t, svc, 20), cert.ID)
	require.NoError(t, err)

	// transitive manager (lead 2 over specialist 10 over junior 20)
	_, err = svc.Get(context.Background(), viewerFor(t, svc, 2), cert.ID)
	require.NoError(t, err)

	// unrelated junior
	_, err = svc.Get(context.Background(), viewerFor(t, svc, 27), cert.ID)
	requireAppError(t, err, appErrors.ErrForbidden.Code)

	// HR over the default module
	_, err = svc.Get(context.Background(), viewerFor(t, svc, 100), cert.ID)
	require.NoError(t, err)
}

func TestGetBackfillsLegacySnapshot(t *testing.T) {
	svc, store, profiles, _ := newTestService()
	profiles.profiles[20] = &models.Profile{
		UserID: 20, FullName: "Иванов Иван Сергеевич", Position: "Инженер", Module: "Модуль А", ManagerID: intPtr(10),
	}
	cert := store.put(models.Certificate{
		OwnerID: 20, Name: "Старый сертификат", CertType: models.CertTypeExternal,
		IssuedAt: "2020-01-01", WorkflowStatus: models.StatusActive,
	})

	got, err := svc.Get(context.Background(), viewerFor(t, svc, 20), cert.ID)
	require.NoError(t, err)
	require.NotNil(t, got.SnapshotFullName)
	assert.Equal(t, "Иванов Иван Сергеевич", *got.SnapshotFullName)
	assert.Equal(t, "Модуль А", *got.SnapshotModule)
	assert.Equal(t, []int64{cert.ID}, store.backfilled)
}

func TestListTeamHRUsesControlledModule(t *testing.T) {
	svc, store, profiles, _ := newTestService()
	controlled := "Модуль А"
	profiles.profiles[100] = &models.Profile{
		UserID: 100, FullName: "Беляева Наталья Константиновна", Position: "Курирующий HR",
		Module: testModule, ControlledModule: &controlled,
	}

	_, err := svc.ListTeam(context.Background(), viewerFor(t, svc, 100))
	require.NoError(t, err)
	assert.Equal(t, "Модуль А", store.lastModule)
}

func TestListTeamManagerUsesDescendants(t *testing.T) {
	svc, store, _, _ := newTestService()

	_, err := svc.ListTeam(context.Background(), viewerFor(t, svc, 2))
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{10, 11, 20, 21, 22, 23}, store.lastOwnerIDs)
}

func TestListTeamServedFromCache(t *testing.T) {
	svc, store, _, _ := newTestService()
	viewer := viewerFor(t, svc, 2)

	_, err := svc.ListTeam(context.Background(), viewer)
	require.NoError(t, err)
	require.Equal(t, 1, store.listCalls)

	_, err = svc.ListTeam(context.Background(), viewer)
	require.NoError(t, err)
	assert.Equal(t, 1, store.listCalls)
}

func TestRevokeRequiresHR(t *testing.T) {
	svc, store, _, cache := newTestService()
	module := testModule
	cert := store.put(models.Certificate{
		OwnerID: 20, CertType: models.CertTypeExternal, WorkflowStatus: models.StatusActive,
		SnapshotModule: &module,
	})

	_, err := svc.Revoke(context.Background(), viewerFor(t, svc, 2), cert.ID, models.RevokeRequest{Reason: "нарушение"})
	requireAppError(t, err, appErrors.ErrForbidden.Code)

	updated, err := svc.Revoke(context.Background(), viewerFor(t, svc, 100), cert.ID, models.RevokeRequest{Reason: "нарушение"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusRevoked, updated.WorkflowStatus)
	require.NotNil(t, updated.RevokedReason)
	assert.Equal(t, "нарушение", *updated.RevokedReason)
	assert.Equal(t, 1, cache.invalidated)
}

func TestUnrevokeRestoresComputedState(t *testing.T) {
	svc, store, _, _ := newTestService()
	module := testModule
	grade := workflow.FailSentinel
	cert := store.put(models.Certificate{
		OwnerID: 20, CertType: models.CertTypeInternal, WorkflowStatus: models.StatusRevoked,
		ExamGrade: &grade, SnapshotModule: &module,
		RevokedByID: intPtr(100), RevokedReason: strPtr("нарушение"),
	})

	updated, err := svc.Unrevoke(context.Background(), viewerFor(t, svc, 100), cert.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, updated.WorkflowStatus)
	assert.Nil(t, updated.RevokedByID)
	assert.Nil(t, updated.RevokedReason)
}

func TestPublicStatus(t *testing.T) {
	svc, store, _, _ := newTestService()
	cert := store.put(models.Certificate{
		OwnerID: 20, CertType: models.CertTypeExternal, WorkflowStatus: models.StatusRevoked,
	})

	status, err := svc.PublicStatus(context.Background(), cert.ID)
	require.NoError(t, err)
	assert.Equal(t, "invalid", status.Code)

	_, err = svc.PublicStatus(context.Background(), 404)
	requireAppError(t, err, appErrors.ErrNotFound.Code)
}

func requireAppError(t *testing.T, err error, code string) {
	t.Helper()
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, code, appErr.Code)
}

func intPtr(i int) *int       { return &i }
func strPtr(s string) *string { return &s }
