package service

import (
	"testing"
	"time"

	"github.com/ramsis0710-a11y/MBA-QP-GENERATOR/model"
)

func TestPlanStoreSaveAndGet(t *testing.T) {
	store := NewPlanStore(100)

	plan := &model.QualityPlan{
		ID:        "plan-1",
		Owner:     "qc",
		WorkOrder: model.WorkOrder{WONo: "WO-1"},
		CreatedAt: time.Now(),
	}
	store.Save(plan)

	retrieved := store.Get("plan-1")
	if retrieved == nil {
		t.Fatal("Expected to retrieve plan")
	}
	if retrieved.WorkOrder.WONo != "WO-1" {
		t.Errorf("Expected WO-1, got %s", retrieved.WorkOrder.WONo)
	}

	if store.Get("non-existent") != nil {
		t.Error("Expected nil for non-existent plan")
	}
}

func TestPlanStoreGetByOwner(t *testing.T) {
	store := NewPlanStore(100)
	now := time.Now()

	store.Save(&model.QualityPlan{ID: "1", Owner: "qc", CreatedAt: now})
	store.Save(&model.QualityPlan{ID: "2", Owner: "qc", CreatedAt: now.Add(time.Second)})
	store.Save(&model.QualityPlan{ID: "3", Owner: "other", CreatedAt: now})

	plans := store.GetByOwner("qc")
	if len(plans) != 2 {
		t.Fatalf("Expected 2 plans for qc, got %d", len(plans))
	}
	if plans[0].ID != "2" {
		t.Errorf("Expected newest plan first, got %s", plans[0].ID)
	}

	if len(store.GetByOwner("nobody")) != 0 {
		t.Error("Expected 0 plans for unknown owner")
	}
}

func TestPlanStoreDelete(t *testing.T) {
	store := NewPlanStore(100)

	store.Save(&model.QualityPlan{ID: "delete-me", CreatedAt: time.Now()})
	if store.Get("delete-me") == nil {
		t.Fatal("Expected plan to exist before delete")
	}

	store.Delete("delete-me")

	if store.Get("delete-me") != nil {
		t.Error("Expected plan to be deleted")
	}
}

func TestPlanStoreAutoCleanup(t *testing.T) {
	store := NewPlanStore(3)
	base := time.Now()

	for i := 0; i < 5; i++ {
		store.Save(&model.QualityPlan{
			ID:        string(rune('a' + i)),
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		})
	}

	if store.Count() != 3 {
		t.Errorf("Expected 3 plans after cleanup, got %d", store.Count())
	}
	if store.Get("a") != nil {
		t.Error("Expected oldest plan 'a' to be removed")
	}
	if store.Get("b") != nil {
		t.Error("Expected second oldest plan 'b' to be removed")
	}
	if store.Get("e") == nil {
		t.Error("Expected newest plan 'e' to be kept")
	}
}

func TestPlanStoreUnlimited(t *testing.T) {
	store := NewPlanStore(0)

	for i := 0; i < 10; i++ {
		store.Save(&model.QualityPlan{ID: string(rune('a' + i)), CreatedAt: time.Now()})
	}

	if store.Count() != 10 {
		t.Errorf("Expected 10 plans, got %d", store.Count())
	}
}

func TestNewPlanStoreNegativeLimit(t *testing.T) {
	store := NewPlanStore(-5)

	for i := 0; i < 3; i++ {
		store.Save(&model.QualityPlan{ID: string(rune('a' + i)), CreatedAt: time.Now()})
	}

	if store.Count() != 3 {
		t.Errorf("Expected negative limit to mean unlimited, got %d plans", store.Count())
	}
}

func TestPlanStoreSetArchived(t *testing.T) {
	store := NewPlanStore(10)
	store.Save(&model.QualityPlan{ID: "p", CreatedAt: time.Now()})

	store.SetArchived("p", "qc/p/QP_WO_1.pdf")
	store.SetArchived("missing", "ignored")

	if got := store.Get("p").Archived; got != "qc/p/QP_WO_1.pdf" {
		t.Errorf("Expected archived object to be recorded, got %q", got)
	}
}
