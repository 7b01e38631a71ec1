package service

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/ramsis0710-a11y/MBA-QP-GENERATOR/model"
	"github.com/ramsis0710-a11y/MBA-QP-GENERATOR/pkg/metrics"
)

// PlanStore keeps generated plans in memory between generation and download.
// Plans are never written to disk; the oldest are evicted past maxPlans.
type PlanStore struct {
	plans    map[string]*model.QualityPlan
	mu       sync.RWMutex
	maxPlans int // Maximum plans to keep, 0 = unlimited
}

// NewPlanStore creates a store keeping at most maxPlans plans
func NewPlanStore(maxPlans int) *PlanStore {
	if maxPlans < 0 {
		maxPlans = 0
	}
	slog.Info("plan store initialized", "max_plans", maxPlans)
	return &PlanStore{
		plans:    make(map[string]*model.QualityPlan),
		maxPlans: maxPlans,
	}
}

// Save keeps a copy of plan
func (s *PlanStore) Save(plan *model.QualityPlan) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *plan
	s.plans[plan.ID] = &cp

	// Cleanup if exceeds max
	s.cleanupIfNeeded()
	metrics.StoredPlans.Set(float64(len(s.plans)))
}

// Get returns a copy of the plan, nil when absent
func (s *PlanStore) Get(id string) *model.QualityPlan {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.plans[id]
	if !ok {
		return nil
	}
	cp := *p
	return &cp
}

// GetByOwner returns the owner's plans, newest first
func (s *PlanStore) GetByOwner(owner string) []*model.QualityPlan {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*model.QualityPlan
	for _, p := range s.plans {
		if p.Owner == owner {
			cp := *p
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result
}

func (s *PlanStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.plans, id)
	metrics.StoredPlans.Set(float64(len(s.plans)))
}

// SetArchived records the archive object name of a plan's latest document
func (s *PlanStore) SetArchived(id, objectName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.plans[id]; ok {
		p.Archived = objectName
	}
}

// cleanupIfNeeded removes oldest plans if store exceeds maxPlans
// Must be called with lock held
func (s *PlanStore) cleanupIfNeeded() {
	if s.maxPlans <= 0 || len(s.plans) <= s.maxPlans {
		return
	}

	plans := make([]*model.QualityPlan, 0, len(s.plans))
	for _, p := range s.plans {
		plans = append(plans, p)
	}
	sort.Slice(plans, func(i, j int) bool {
		return plans[i].CreatedAt.Before(plans[j].CreatedAt)
	})

	removeCount := len(plans) - s.maxPlans
	for i := 0; i < removeCount; i++ {
		slog.Info("evicting old plan",
			"plan_id", plans[i].ID,
			"wo_no", plans[i].WorkOrder.WONo,
			"created_at", plans[i].CreatedAt,
		)
		delete(s.plans, plans[i].ID)
	}
}

// Count returns the number of plans in the store
func (s *PlanStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.plans)
}
