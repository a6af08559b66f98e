package service

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"costedge/backend/internal/model"
	"costedge/backend/internal/repository"
)

var errMockStorage = errors.New("mock storage failure")

// ── Mock BomChangeRepository ──

type mockBomChangeRepo struct {
	recs   map[uint64]*model.BomChange
	nextID uint64

	// failPart makes Create fail for this part number.
	failPart string
}

func newMockBomChangeRepo() *mockBomChangeRepo {
	return &mockBomChangeRepo{recs: make(map[uint64]*model.BomChange)}
}

func (m *mockBomChangeRepo) Create(_ context.Context, rec *model.BomChange) error {
	if m.failPart != "" && rec.PartNumber == m.failPart {
		return errMockStorage
	}
	m.nextID++
	rec.ID = m.nextID
	now := time.Now()
	rec.CreatedAt, rec.UpdatedAt = now, now
	cp := *rec
	m.recs[rec.ID] = &cp
	return nil
}

func (m *mockBomChangeRepo) GetByID(_ context.Context, id uint64) (*model.BomChange, error) {
	if r, ok := m.recs[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockBomChangeRepo) GetByPartNumber(_ context.Context, partNumber string) (*model.BomChange, error) {
	for _, r := range m.sorted() {
		if r.PartNumber == partNumber {
			cp := r
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockBomChangeRepo) ExistsByPartNumber(ctx context.Context, partNumber string) (bool, error) {
	_, err := m.GetByPartNumber(ctx, partNumber)
	return err == nil, nil
}

func (m *mockBomChangeRepo) List(_ context.Context) ([]model.BomChange, error) {
	return m.sorted(), nil
}

func (m *mockBomChangeRepo) Update(_ context.Context, rec *model.BomChange) error {
	rec.UpdatedAt = time.Now()
	cp := *rec
	m.recs[rec.ID] = &cp
	return nil
}

func (m *mockBomChangeRepo) Delete(_ context.Context, id uint64) error {
	if _, ok := m.recs[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.recs, id)
	return nil
}

func (m *mockBomChangeRepo) ListByStatus(_ context.Context, status model.BomStatus) ([]model.BomChange, error) {
	return m.filter(func(r model.BomChange) bool { return r.Status == status }), nil
}

func (m *mockBomChangeRepo) ListByDepartment(_ context.Context, department string) ([]model.BomChange, error) {
	return m.filter(func(r model.BomChange) bool { return r.Department == department }), nil
}

func (m *mockBomChangeRepo) ListByModel(_ context.Context, modelName string) ([]model.BomChange, error) {
	return m.filter(func(r model.BomChange) bool { return r.Model == modelName }), nil
}

func (m *mockBomChangeRepo) ListBySupplier(_ context.Context, supplier string) ([]model.BomChange, error) {
	return m.filter(func(r model.BomChange) bool { return r.Supplier == supplier }), nil
}

func (m *mockBomChangeRepo) ListByChangeType(_ context.Context, changeType model.ChangeType) ([]model.BomChange, error) {
	return m.filter(func(r model.BomChange) bool { return r.ChangeType == changeType }), nil
}

func (m *mockBomChangeRepo) ListByEffectiveDateRange(_ context.Context, start, end datatypes.Date) ([]model.BomChange, error) {
	return m.filter(func(r model.BomChange) bool {
		d := time.Time(r.EffectiveDate)
		return !d.Before(time.Time(start)) && !d.After(time.Time(end))
	}), nil
}

func (m *mockBomChangeRepo) ListByModelAndStatus(_ context.Context, modelName string, status model.BomStatus) ([]model.BomChange, error) {
	return m.filter(func(r model.BomChange) bool { return r.Model == modelName && r.Status == status }), nil
}

func (m *mockBomChangeRepo) ListBySupplierAndChangeType(_ context.Context, supplier string, changeType model.ChangeType) ([]model.BomChange, error) {
	return m.filter(func(r model.BomChange) bool { return r.Supplier == supplier && r.ChangeType == changeType }), nil
}

func (m *mockBomChangeRepo) Search(_ context.Context, query string) ([]model.BomChange, error) {
	q := strings.ToLower(query)
	return m.filter(func(r model.BomChange) bool {
		for _, f := range []string{r.PartName, r.PartNumber, r.Supplier, r.Model} {
			if strings.Contains(strings.ToLower(f), q) {
				return true
			}
		}
		return false
	}), nil
}

func (m *mockBomChangeRepo) ListByImpactAbove(_ context.Context, threshold decimal.Decimal) ([]model.BomChange, error) {
	return m.filter(func(r model.BomChange) bool { return r.Impact.Valid && r.Impact.Decimal.GreaterThan(threshold) }), nil
}

func (m *mockBomChangeRepo) ListByImpactBelow(_ context.Context, threshold decimal.Decimal) ([]model.BomChange, error) {
	return m.filter(func(r model.BomChange) bool { return r.Impact.Valid && r.Impact.Decimal.LessThan(threshold) }), nil
}

func (m *mockBomChangeRepo) SummaryByModel(_ context.Context) ([]repository.GroupSummary, error) {
	return m.summary(func(r model.BomChange) string { return r.Model }), nil
}

func (m *mockBomChangeRepo) SummaryByChangeType(_ context.Context) ([]repository.GroupSummary, error) {
	return m.summary(func(r model.BomChange) string { return string(r.ChangeType) }), nil
}

func (m *mockBomChangeRepo) sorted() []model.BomChange {
	out := make([]model.BomChange, 0, len(m.recs))
	for _, r := range m.recs {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool {
		di, dj := time.Time(out[i].EffectiveDate), time.Time(out[j].EffectiveDate)
		if !di.Equal(dj) {
			return di.After(dj)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (m *mockBomChangeRepo) filter(keep func(model.BomChange) bool) []model.BomChange {
	var out []model.BomChange
	for _, r := range m.sorted() {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func (m *mockBomChangeRepo) summary(key func(model.BomChange) string) []repository.GroupSummary {
	idx := make(map[string]int)
	var out []repository.GroupSummary
	for _, r := range m.sorted() {
		k := key(r)
		i, ok := idx[k]
		if !ok {
			i = len(out)
			idx[k] = i
			out = append(out, repository.GroupSummary{GroupKey: k})
		}
		out[i].Changes++
		if r.Impact.Valid {
			out[i].Impact = decimal.NewNullDecimal(out[i].Impact.Decimal.Add(r.Impact.Decimal))
		}
	}
	return out
}

// ── Mock MilestoneCostRepository ──

type mockMilestoneRepo struct {
	items     map[uint64]*model.MilestoneCost
	nextID    uint64
	updateErr error
	updates   int
}

func newMockMilestoneRepo() *mockMilestoneRepo {
	return &mockMilestoneRepo{items: make(map[uint64]*model.MilestoneCost)}
}

func (m *mockMilestoneRepo) Create(_ context.Context, mc *model.MilestoneCost) error {
	m.nextID++
	mc.ID = m.nextID
	cp := *mc
	m.items[mc.ID] = &cp
	return nil
}

func (m *mockMilestoneRepo) GetByID(_ context.Context, id uint64) (*model.MilestoneCost, error) {
	if mc, ok := m.items[id]; ok {
		cp := *mc
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockMilestoneRepo) List(_ context.Context) ([]model.MilestoneCost, error) {
	return m.filter(func(model.MilestoneCost) bool { return true }), nil
}

func (m *mockMilestoneRepo) ListByProjectID(_ context.Context, projectID int) ([]model.MilestoneCost, error) {
	return m.filter(func(mc model.MilestoneCost) bool { return mc.ProjectID == projectID }), nil
}

func (m *mockMilestoneRepo) ListByProjectName(_ context.Context, projectName string) ([]model.MilestoneCost, error) {
	return m.filter(func(mc model.MilestoneCost) bool { return mc.ProjectName == projectName }), nil
}

func (m *mockMilestoneRepo) ListByMilestone(_ context.Context, milestone string) ([]model.MilestoneCost, error) {
	return m.filter(func(mc model.MilestoneCost) bool { return mc.Milestone == milestone }), nil
}

func (m *mockMilestoneRepo) ListByApprovalStatus(_ context.Context, status model.ApprovalStatus) ([]model.MilestoneCost, error) {
	return m.filter(func(mc model.MilestoneCost) bool { return mc.ApprovalStatus == status }), nil
}

func (m *mockMilestoneRepo) Update(_ context.Context, mc *model.MilestoneCost) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updates++
	cp := *mc
	m.items[mc.ID] = &cp
	return nil
}

func (m *mockMilestoneRepo) Delete(_ context.Context, id uint64) error {
	if _, ok := m.items[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *mockMilestoneRepo) filter(keep func(model.MilestoneCost) bool) []model.MilestoneCost {
	var out []model.MilestoneCost
	for id := uint64(1); id <= m.nextID; id++ {
		if mc, ok := m.items[id]; ok && keep(*mc) {
			out = append(out, *mc)
		}
	}
	return out
}

// ── Mock ImportCostRepository ──

type mockImportCostRepo struct {
	items  map[uint64]*model.ImportCost
	nextID uint64
}

func newMockImportCostRepo() *mockImportCostRepo {
	return &mockImportCostRepo{items: make(map[uint64]*model.ImportCost)}
}

func (m *mockImportCostRepo) Create(_ context.Context, c *model.ImportCost) error {
	m.nextID++
	c.ID = m.nextID
	cp := *c
	m.items[c.ID] = &cp
	return nil
}

func (m *mockImportCostRepo) GetByID(_ context.Context, id uint64) (*model.ImportCost, error) {
	if c, ok := m.items[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockImportCostRepo) GetByShipmentID(_ context.Context, shipmentID string) (*model.ImportCost, error) {
	for _, c := range m.items {
		if c.ShipmentID == shipmentID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockImportCostRepo) List(_ context.Context) ([]model.ImportCost, error) {
	var out []model.ImportCost
	for id := uint64(1); id <= m.nextID; id++ {
		if c, ok := m.items[id]; ok {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *mockImportCostRepo) ListBySupplier(ctx context.Context, supplier string) ([]model.ImportCost, error) {
	all, _ := m.List(ctx)
	var out []model.ImportCost
	for _, c := range all {
		if c.Supplier == supplier {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockImportCostRepo) Update(_ context.Context, c *model.ImportCost) error {
	cp := *c
	m.items[c.ID] = &cp
	return nil
}

func (m *mockImportCostRepo) Delete(_ context.Context, id uint64) error {
	if _, ok := m.items[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.items, id)
	return nil
}

// ── Mock ReportCache ──

type mockReportCache struct {
	data        map[string][]byte
	gets, sets  int
	invalidated int
}

func newMockReportCache() *mockReportCache {
	return &mockReportCache{data: make(map[string][]byte)}
}

func (c *mockReportCache) GetJSON(_ context.Context, key string, dst interface{}) (bool, error) {
	c.gets++
	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dst)
}

func (c *mockReportCache) SetJSON(_ context.Context, key string, v interface{}, _ time.Duration) error {
	c.sets++
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.data[key] = raw
	return nil
}

func (c *mockReportCache) DeleteByPrefix(_ context.Context, prefix string) error {
	c.invalidated++
	for k := range c.data {
		if strings.HasPrefix(k, prefix) {
			delete(c.data, k)
		}
	}
	return nil
}

// ── wiring ──

type testRepos struct {
	bom       *mockBomChangeRepo
	milestone *mockMilestoneRepo
	importCst *mockImportCostRepo
}

func newTestRepository() (*repository.Repository, *testRepos) {
	r := &testRepos{
		bom:       newMockBomChangeRepo(),
		milestone: newMockMilestoneRepo(),
		importCst: newMockImportCostRepo(),
	}
	return &repository.Repository{
		BomChange:     r.bom,
		MilestoneCost: r.milestone,
		ImportCost:    r.importCst,
	}, r
}
