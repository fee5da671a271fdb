package billing

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/clinic-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/clinic-scheduler/internal/domain/billing"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
	"github.com/BruksfildServices01/clinic-scheduler/internal/validators"
)

type AttachServiceInput struct {
	ActorID   uint
	BookingID uint
	ServiceID uint
	// Price overrides the catalog price when set.
	Price *decimal.Decimal
}

type AttachService struct {
	deps Deps
}

func NewAttachService(deps Deps) *AttachService {
	return &AttachService{deps: deps}
}

// Execute reports false, without error, when the booking already has the
// service.
func (uc *AttachService) Execute(ctx context.Context, in AttachServiceInput) (bool, error) {
	var price decimal.Decimal
	if in.Price != nil {
		p, err := validators.ValidatePrice(*in.Price)
		if err != nil {
			return false, err
		}
		price = p
	}

	if _, err := uc.deps.requireBooking(ctx, in.BookingID); err != nil {
		return false, err
	}
	svc, err := uc.deps.Catalog.GetService(ctx, in.ServiceID)
	if err != nil {
		return false, notFoundAs(err, "service_not_found", "Service not found.")
	}
	if in.Price == nil {
		price = svc.Price
	}

	line := &models.ServiceLine{
		BookingID: in.BookingID,
		ServiceID: svc.ID,
		Price:     price,
	}
	added, err := uc.deps.Billing.AttachLine(ctx, line)
	if err != nil || !added {
		return false, err
	}

	uc.deps.recorder().Record(audit.Event{
		ActorID:  in.ActorID,
		Action:   audit.ActionCreate,
		Table:    audit.TableServiceLines,
		RecordID: line.ID,
		After:    lineSnapshot(line),
	})

	if _, err := uc.deps.refresh(ctx, in.BookingID); err != nil {
		return true, err
	}

	uc.deps.logger().Info("service attached",
		zap.Uint("booking_id", in.BookingID),
		zap.Uint("service_line_id", line.ID),
		zap.String("price", price.StringFixed(2)),
	)
	return true, nil
}

type DetachService struct {
	deps Deps
}

func NewDetachService(deps Deps) *DetachService {
	return &DetachService{deps: deps}
}

// Execute removes the line and its payments. It reports false when the
// booking has no such service.
func (uc *DetachService) Execute(ctx context.Context, actorID, bookingID, serviceID uint) (bool, error) {
	line, ok, err := uc.deps.Billing.DetachLine(ctx, bookingID, serviceID)
	if err != nil || !ok {
		return false, err
	}

	uc.deps.recorder().Record(audit.Event{
		ActorID:  actorID,
		Action:   audit.ActionDelete,
		Table:    audit.TableServiceLines,
		RecordID: line.ID,
		Before:   lineSnapshot(line),
	})

	if _, err := uc.deps.refresh(ctx, bookingID); err != nil {
		return true, err
	}

	uc.deps.logger().Info("service detached",
		zap.Uint("booking_id", bookingID),
		zap.Uint("service_line_id", line.ID),
		zap.Int("payments_removed", len(line.Payments)),
	)
	return true, nil
}

type RepriceServiceLine struct {
	deps Deps
}

func NewRepriceServiceLine(deps Deps) *RepriceServiceLine {
	return &RepriceServiceLine{deps: deps}
}

func (uc *RepriceServiceLine) Execute(
	ctx context.Context,
	actorID uint,
	lineID uint,
	newPrice decimal.Decimal,
) (*models.ServiceLine, error) {

	price, err := validators.ValidatePrice(newPrice)
	if err != nil {
		return nil, err
	}

	line, err := uc.deps.requireLine(ctx, lineID)
	if err != nil {
		return nil, err
	}
	old := line.Price

	if err := uc.deps.Billing.UpdateLinePrice(ctx, lineID, price); err != nil {
		return nil, notFoundAs(err, "service_line_not_found", "Service line not found.")
	}
	line.Price = price

	uc.deps.recorder().Record(audit.Event{
		ActorID:  actorID,
		Action:   audit.ActionUpdate,
		Table:    audit.TableServiceLines,
		RecordID: line.ID,
		Before:   map[string]any{"price": old.StringFixed(2)},
		After:    map[string]any{"price": price.StringFixed(2)},
	})

	if _, err := uc.deps.refresh(ctx, line.BookingID); err != nil {
		return nil, err
	}

	uc.deps.logger().Info("service line repriced",
		zap.Uint("service_line_id", line.ID),
		zap.String("old_price", old.StringFixed(2)),
		zap.String("new_price", price.StringFixed(2)),
	)
	return line, nil
}

type BookingServices struct {
	Lines     []domain.Line   `json:"services"`
	TotalCost decimal.Decimal `json:"total_cost"`
}

type ListServiceLines struct {
	deps Deps
}

func NewListServiceLines(deps Deps) *ListServiceLines {
	return &ListServiceLines{deps: deps}
}

// Execute lists the lines ordered by service name with their paid amounts.
func (uc *ListServiceLines) Execute(ctx context.Context, bookingID uint) (*BookingServices, error) {
	if _, err := uc.deps.requireBooking(ctx, bookingID); err != nil {
		return nil, err
	}

	lines, err := uc.deps.Billing.ListLines(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	total, err := uc.deps.Billing.TotalCost(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if lines == nil {
		lines = []domain.Line{}
	}
	return &BookingServices{Lines: lines, TotalCost: total}, nil
}
