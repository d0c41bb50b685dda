package statistics

import (
	"context"

	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fahamni/payments/internal/models"
	"github.com/fahamni/payments/pkg/types"
)

type StatisticType string

const (
	StatisticTypeDailyPaidCount  StatisticType = "daily_paid_count"
	StatisticTypeDailyGmv        StatisticType = "daily_gmv"
	StatisticTypeTotalGmv        StatisticType = "total_gmv"
	StatisticTypeStatusBreakdown StatisticType = "status_breakdown"
)

var allStatisticTypes = []StatisticType{
	StatisticTypeDailyPaidCount,
	StatisticTypeDailyGmv,
	StatisticTypeTotalGmv,
	StatisticTypeStatusBreakdown,
}

type StatisticDataItem struct {
	ID StatisticType `json:"id"`
}

type StatisticRequest struct {
	Filters   []*types.CommonFilter `json:"filters"`
	DataItems []*StatisticDataItem  `json:"data_items"`
}

// Build composes the WHERE clause for payment statistics queries.
func (f *StatisticRequest) Build(builder clause.Builder) {
	if f == nil || len(f.Filters) == 0 {
		builder.WriteString("1=1")
		return
	}
	for i, filter := range f.Filters {
		if i > 0 {
			builder.WriteString(" AND ")
		}
		filter.Build(builder)
	}
}

type StatisticResponseDataItem struct {
	Date  string `json:"date"`
	Label string `json:"label,omitempty"`
	Value int64  `json:"value"`
}

type StatisticResponse struct {
	DataItems map[StatisticType][]StatisticResponseDataItem `json:"data_items"`
}

// Service aggregates ledger statistics for the admin dashboard.
type Service struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Service { return &Service{db: db} }

// Query resolves the requested data items; an empty request returns all of
// them.
func (s *Service) Query(ctx context.Context, request *StatisticRequest) (*StatisticResponse, error) {
	if request == nil {
		request = &StatisticRequest{}
	}
	wanted := lo.Map(request.DataItems, func(item *StatisticDataItem, _ int) StatisticType { return item.ID })
	if len(wanted) == 0 {
		wanted = allStatisticTypes
	}

	resp := &StatisticResponse{DataItems: map[StatisticType][]StatisticResponseDataItem{}}
	for _, st := range lo.Uniq(wanted) {
		var (
			items []StatisticResponseDataItem
			err   error
		)
		switch st {
		case StatisticTypeDailyPaidCount:
			items, err = s.dailyPaidCount(ctx, request)
		case StatisticTypeDailyGmv:
			items, err = s.dailyGmv(ctx, request)
		case StatisticTypeTotalGmv:
			items, err = s.totalGmv(ctx, request)
		case StatisticTypeStatusBreakdown:
			items, err = s.statusBreakdown(ctx, request)
		default:
			continue
		}
		if err != nil {
			return nil, err
		}
		resp.DataItems[st] = items
	}
	return resp, nil
}

func (s *Service) dailyPaidCount(ctx context.Context, request *StatisticRequest) ([]StatisticResponseDataItem, error) {
	var results []StatisticResponseDataItem
	err := s.db.WithContext(ctx).Table(models.PaymentTransaction{}.TableName()).
		Select("TO_CHAR(paid_at, 'YYYY-MM-DD') as date, count(*) as value").
		Where("status = ?", models.PaymentStatusPaid).
		Where(clause.Where{Exprs: []clause.Expression{request}}).
		Group("TO_CHAR(paid_at, 'YYYY-MM-DD')").
		Order("date").
		Scan(&results).Error
	return results, err
}

func (s *Service) dailyGmv(ctx context.Context, request *StatisticRequest) ([]StatisticResponseDataItem, error) {
	var results []StatisticResponseDataItem
	err := s.db.WithContext(ctx).Table(models.PaymentTransaction{}.TableName()).
		Select("TO_CHAR(paid_at, 'YYYY-MM-DD') as date, COALESCE(SUM(amount_minor), 0) as value").
		Where("status = ?", models.PaymentStatusPaid).
		Where(clause.Where{Exprs: []clause.Expression{request}}).
		Group("TO_CHAR(paid_at, 'YYYY-MM-DD')").
		Order("date").
		Scan(&results).Error
	return results, err
}

func (s *Service) totalGmv(ctx context.Context, request *StatisticRequest) ([]StatisticResponseDataItem, error) {
	var total int64
	err := s.db.WithContext(ctx).Table(models.PaymentTransaction{}.TableName()).
		Select("COALESCE(SUM(amount_minor), 0)").
		Where("status = ?", models.PaymentStatusPaid).
		Where(clause.Where{Exprs: []clause.Expression{request}}).
		Scan(&total).Error
	if err != nil {
		return nil, err
	}
	return []StatisticResponseDataItem{{Label: "total", Value: total}}, nil
}

func (s *Service) statusBreakdown(ctx context.Context, request *StatisticRequest) ([]StatisticResponseDataItem, error) {
	var results []StatisticResponseDataItem
	err := s.db.WithContext(ctx).Table(models.PaymentTransaction{}.TableName()).
		Select("status as label, count(*) as value").
		Where(clause.Where{Exprs: []clause.Expression{request}}).
		Group("status").
		Order("label").
		Scan(&results).Error
	return results, err
}
