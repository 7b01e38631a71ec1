package service

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ramsis0710-a11y/MBA-QP-GENERATOR/extract"
	"github.com/ramsis0710-a11y/MBA-QP-GENERATOR/model"
	"github.com/ramsis0710-a11y/MBA-QP-GENERATOR/pkg/logger"
	"github.com/ramsis0710-a11y/MBA-QP-GENERATOR/pkg/metrics"
	"github.com/ramsis0710-a11y/MBA-QP-GENERATOR/planner"
	"github.com/ramsis0710-a11y/MBA-QP-GENERATOR/render"
)

// ErrPlanNotFound is returned for unknown plans or plans of another owner
var ErrPlanNotFound = errors.New("plan not found")

// Upload is a work-order file as received from the entry surface
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Text returns the content handed to the field extractor. Only plain text
// uploads are decoded; any other type yields the filename, so PDF or Word
// work orders produce a plan built almost entirely from defaults.
func (u Upload) Text() string {
	mediaType, _, err := mime.ParseMediaType(u.ContentType)
	if err != nil || mediaType != "text/plain" {
		return u.Filename
	}
	return strings.ToValidUTF8(string(u.Data), "")
}

// RenderResult is a rendered plan document
type RenderResult struct {
	Artifact   *render.Artifact
	ArchiveURL string
}

// QualityPlanService runs extraction, planning, storage and rendering
type QualityPlanService struct {
	planner    *planner.Planner
	store      *PlanStore
	renderer   render.Renderer
	archive    Archive
	approvedBy string
	now        func() time.Time
}

// NewQualityPlanService wires the pipeline. archive may be nil.
func NewQualityPlanService(p *planner.Planner, store *PlanStore, r render.Renderer, archive Archive, approvedBy string) *QualityPlanService {
	return &QualityPlanService{
		planner:    p,
		store:      store,
		renderer:   r,
		archive:    archive,
		approvedBy: approvedBy,
		now:        time.Now,
	}
}

// Import extracts a work order from an uploaded file and plans it
func (s *QualityPlanService) Import(ctx context.Context, owner string, u Upload) (*model.QualityPlan, error) {
	res := extract.ParseWorkOrder(u.Text(), s.now())
	unmatched := res.Unmatched()
	if len(unmatched) > 0 {
		logger.Debug(ctx, "work order fields defaulted", "filename", u.Filename, "fields", unmatched)
	}
	return s.create(ctx, owner, model.SourceImport, res.WorkOrder(), unmatched)
}

// Manual plans a work order entered through the form
func (s *QualityPlanService) Manual(ctx context.Context, owner string, entry model.ManualEntry) (*model.QualityPlan, error) {
	wo := entry.WorkOrder(s.now().Format(model.DateLayout))
	return s.create(ctx, owner, model.SourceManual, wo, nil)
}

func (s *QualityPlanService) create(ctx context.Context, owner, source string, wo model.WorkOrder, unmatched []string) (*model.QualityPlan, error) {
	result, err := s.planner.Plan(wo)
	if err != nil {
		metrics.PlanErrors.WithLabelValues(source).Inc()
		return nil, fmt.Errorf("generate operations: %w", err)
	}

	now := s.now()
	plan := &model.QualityPlan{
		ID:         uuid.New().String(),
		Owner:      owner,
		Source:     source,
		WorkOrder:  wo,
		Operations: result.Operations,
		Material:   result.Material,
		QCPRef:     planner.QCPRef(wo.WONo, now),
		Unmatched:  unmatched,
		CreatedAt:  now,
	}
	s.store.Save(plan)
	metrics.RecordPlan(source, result.MaterialMatched, unmatched)

	ctx = logger.WithPlanID(ctx, plan.ID)
	if !result.MaterialMatched {
		logger.Info(ctx, "no grade alias matched, using default material", "grade", wo.Grade)
	}
	logger.Info(ctx, "quality plan generated",
		"source", source,
		"wo_no", wo.WONo,
		"standards", result.Standards.Values,
		"psl", result.PSL.Value,
	)
	return plan, nil
}

// Get returns one of the owner's plans
func (s *QualityPlanService) Get(owner, id string) (*model.QualityPlan, error) {
	plan := s.store.Get(id)
	if plan == nil || plan.Owner != owner {
		return nil, ErrPlanNotFound
	}
	return plan, nil
}

// List returns the owner's plans, newest first
func (s *QualityPlanService) List(owner string) []*model.QualityPlan {
	return s.store.GetByOwner(owner)
}

// Delete drops a plan and its archived document
func (s *QualityPlanService) Delete(ctx context.Context, owner, id string) error {
	plan, err := s.Get(owner, id)
	if err != nil {
		return err
	}
	if plan.Archived != "" && s.archive != nil {
		if err := s.archive.Remove(ctx, plan.Archived); err != nil {
			logger.Warn(ctx, "failed to remove archived document", "object", plan.Archived, "error", err)
		}
	}
	s.store.Delete(id)
	return nil
}

// Render produces the plan document. A failed archive upload is logged and
// the local artifact is still returned.
func (s *QualityPlanService) Render(ctx context.Context, owner, id, preparedBy string) (*RenderResult, error) {
	plan, err := s.Get(owner, id)
	if err != nil {
		return nil, err
	}
	ctx = logger.WithPlanID(ctx, plan.ID)

	start := time.Now()
	artifact, err := s.renderer.Render(ctx, render.Document{
		Operations: plan.Operations,
		WorkOrder:  plan.WorkOrder,
		QCPRef:     plan.QCPRef,
		Material:   plan.Material,
		PreparedBy: preparedBy,
		ApprovedBy: s.approvedBy,
	})
	metrics.RenderDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.RenderErrors.Inc()
		logger.Error(ctx, "failed to render quality plan", "error", err)
		return nil, err
	}
	logger.Info(ctx, "quality plan rendered", "path", artifact.Path, "size", artifact.Size)

	result := &RenderResult{Artifact: artifact}
	if s.archive == nil {
		return result, nil
	}

	objectName := ObjectName(owner, plan.ID, artifact.Name)
	url, err := s.archive.Store(ctx, objectName, artifact)
	if err != nil {
		metrics.ArchiveUploads.WithLabelValues("failed").Inc()
		logger.Warn(ctx, "failed to archive quality plan", "object", objectName, "error", err)
		return result, nil
	}
	metrics.ArchiveUploads.WithLabelValues("ok").Inc()
	s.store.SetArchived(plan.ID, objectName)
	result.ArchiveURL = url
	return result, nil
}
