package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/samber/lo"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"agriportal-go/events"
	"agriportal-go/models"
	"agriportal-go/utils"
)

const publishTimeout = 5 * time.Second

// Applications runs the submission and review workflow.
type Applications struct {
	db        *gorm.DB
	publisher events.Publisher
	log       *slog.Logger
}

func NewApplications(db *gorm.DB, publisher events.Publisher, log *slog.Logger) *Applications {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Applications{db: db, publisher: publisher, log: log}
}

// Submit records a farmer's application against a scheme. A farmer may
// apply to each scheme once. The existence check runs before the insert;
// the unique (farmer_id, scheme_id) index catches a concurrent duplicate
// that slips between the two.
func (s *Applications) Submit(ctx context.Context, farmerID string, req models.ApplicationRequest) (*models.Application, error) {
	db := s.db.WithContext(ctx)

	var schemeCount int64
	if err := db.Model(&models.Scheme{}).Where("id = ?", req.SchemeID).Count(&schemeCount).Error; err != nil {
		return nil, fmt.Errorf("check scheme: %w", err)
	}
	if schemeCount == 0 {
		return nil, ErrSchemeNotFound
	}

	var existing int64
	if err := db.Model(&models.Application{}).
		Where("farmer_id = ? AND scheme_id = ?", farmerID, req.SchemeID).
		Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("check existing application: %w", err)
	}
	if existing > 0 {
		return nil, ErrDuplicateApplication
	}

	snapshot := req.FormData
	snapshot.Crops = append([]string(nil), req.FormData.Crops...)

	app := models.Application{
		FarmerID:    farmerID,
		SchemeID:    req.SchemeID,
		FormData:    datatypes.NewJSONType(snapshot),
		Documents:   utils.SanitizeList(req.Documents),
		Status:      models.StatusSubmitted,
		SubmittedAt: time.Now().UTC(),
	}
	if err := s.insert(ctx, &app); err != nil {
		return nil, err
	}

	s.publish(ctx, events.FromApplication(events.TypeApplicationSubmitted, &app, farmerID))
	return maskedApplication(app), nil
}

// insert stores app, reporting a unique index violation on
// (farmer_id, scheme_id) as ErrDuplicateApplication.
func (s *Applications) insert(ctx context.Context, app *models.Application) error {
	if err := s.db.WithContext(ctx).Create(app).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateApplication
		}
		return fmt.Errorf("create application: %w", err)
	}
	return nil
}

// Review sets an administrator's decision on an application. Any of the
// non-initial statuses may be set from any current status.
func (s *Applications) Review(ctx context.Context, adminID, id string, req models.ApplicationReviewRequest) (*models.Application, error) {
	if !req.Status.Reviewable() {
		return nil, ErrInvalidStatus
	}

	db := s.db.WithContext(ctx)
	var app models.Application
	if err := db.First(&app, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get application %s: %w", id, err)
	}

	previous := app.Status
	app.Status = req.Status
	if req.Remarks != nil {
		app.Remarks = utils.SanitizeString(*req.Remarks)
	}
	app.ReviewedBy = adminID
	app.UpdatedAt = time.Now().UTC()

	if err := db.Save(&app).Error; err != nil {
		return nil, fmt.Errorf("update application %s: %w", id, err)
	}

	s.log.Info("application reviewed",
		"application_id", app.ID, "admin_id", adminID, "from", previous, "to", app.Status)
	s.publish(ctx, events.FromApplication(events.TypeApplicationReviewed, &app, adminID))
	return maskedApplication(app), nil
}

// List returns the applications visible to the principal: everything for
// administrators, only their own for farmers.
func (s *Applications) List(ctx context.Context, role models.Role, principalID string) ([]models.ApplicationView, error) {
	switch role {
	case models.RoleAdmin:
		return s.ListAll(ctx)
	case models.RoleFarmer:
		return s.ListForFarmer(ctx, principalID)
	default:
		return nil, fmt.Errorf("unknown role %q", role)
	}
}

func (s *Applications) ListAll(ctx context.Context) ([]models.ApplicationView, error) {
	var apps []models.Application
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&apps).Error; err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}

	titles := s.schemeTitles(ctx, apps)
	names := s.farmerNames(ctx, apps)
	return lo.Map(apps, func(a models.Application, _ int) models.ApplicationView {
		return models.ApplicationView{
			Application: *maskedApplication(a),
			FarmerName:  labelFor(names, a.FarmerID),
			SchemeTitle: labelFor(titles, a.SchemeID),
		}
	}), nil
}

func (s *Applications) ListForFarmer(ctx context.Context, farmerID string) ([]models.ApplicationView, error) {
	var apps []models.Application
	if err := s.db.WithContext(ctx).
		Where("farmer_id = ?", farmerID).
		Order("created_at DESC").
		Find(&apps).Error; err != nil {
		return nil, fmt.Errorf("list applications for farmer %s: %w", farmerID, err)
	}

	titles := s.schemeTitles(ctx, apps)
	return lo.Map(apps, func(a models.Application, _ int) models.ApplicationView {
		return models.ApplicationView{
			Application: *maskedApplication(a),
			SchemeTitle: labelFor(titles, a.SchemeID),
		}
	}), nil
}

func (s *Applications) Stats(ctx context.Context) (*models.DashboardStats, error) {
	db := s.db.WithContext(ctx)
	var stats models.DashboardStats

	counts := []struct {
		dst   *int64
		query *gorm.DB
	}{
		{&stats.TotalFarmers, db.Model(&models.Farmer{})},
		{&stats.TotalSchemes, db.Model(&models.Scheme{}).Where("is_active = ?", true)},
		{&stats.TotalApplications, db.Model(&models.Application{})},
		{&stats.ApprovedApplications, db.Model(&models.Application{}).Where("status = ?", models.StatusApproved)},
		{&stats.RejectedApplications, db.Model(&models.Application{}).Where("status = ?", models.StatusRejected)},
		{&stats.PendingApplications, db.Model(&models.Application{}).
			Where("status IN ?", []models.ApplicationStatus{models.StatusSubmitted, models.StatusUnderReview})},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dst).Error; err != nil {
			return nil, fmt.Errorf("dashboard stats: %w", err)
		}
	}
	return &stats, nil
}

// schemeTitles and farmerNames are best-effort lookups: a failed query is
// logged and every reference falls back to the unknown label.
func (s *Applications) schemeTitles(ctx context.Context, apps []models.Application) map[string]string {
	ids := lo.Uniq(lo.Map(apps, func(a models.Application, _ int) string { return a.SchemeID }))
	if len(ids) == 0 {
		return nil
	}
	var schemes []models.Scheme
	if err := s.db.WithContext(ctx).Select("id", "title").Where("id IN ?", ids).Find(&schemes).Error; err != nil {
		s.log.Warn("scheme lookup for application listing failed", "err", err)
		return nil
	}
	return lo.Associate(schemes, func(sc models.Scheme) (string, string) { return sc.ID, sc.Title })
}

func (s *Applications) farmerNames(ctx context.Context, apps []models.Application) map[string]string {
	ids := lo.Uniq(lo.Map(apps, func(a models.Application, _ int) string { return a.FarmerID }))
	if len(ids) == 0 {
		return nil
	}
	var farmers []models.Farmer
	if err := s.db.WithContext(ctx).Select("id", "name").Where("id IN ?", ids).Find(&farmers).Error; err != nil {
		s.log.Warn("farmer lookup for application listing failed", "err", err)
		return nil
	}
	return lo.Associate(farmers, func(f models.Farmer) (string, string) { return f.ID, f.Name })
}

// maskedApplication returns a copy of app whose form snapshot shows only the
// last four digits of the bank account.
func maskedApplication(app models.Application) *models.Application {
	snap := app.Snapshot()
	snap.BankAccount = utils.MaskAccount(snap.BankAccount)
	app.FormData = datatypes.NewJSONType(snap)
	return &app
}

func labelFor(labels map[string]string, id string) string {
	if label, ok := labels[id]; ok && label != "" {
		return label
	}
	return models.UnknownLabel
}

// publish never fails the request; a broker outage only costs the event.
func (s *Applications) publish(ctx context.Context, e events.Event) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.log.Error("publish application event", "type", e.Type, "application_id", e.ApplicationID, "err", err)
	}
}
