package billing

import (
	"context"

	"github.com/careflow/clinic-api/internal/model"
	"github.com/careflow/clinic-api/internal/repository"
	apperrors "github.com/careflow/clinic-api/pkg/errors"
)

// Service issues invoices against medical records and serves invoice
// history for both the reception desk and the patient portal.
type Service interface {
	CreateInvoice(ctx context.Context, req *model.CreateInvoiceRequest) (*model.Invoice, error)
	ListByMedicalRecord(ctx context.Context, medicalRecordID int64) ([]*model.Invoice, error)
	ListByPatient(ctx context.Context, patientID int64) ([]*model.InvoiceSummary, error)
}

type service struct {
	invoices repository.InvoiceRepository
	services repository.ServiceRepository
}

func NewService(invoices repository.InvoiceRepository, services repository.ServiceRepository) Service {
	return &service{invoices: invoices, services: services}
}

func (s *service) CreateInvoice(ctx context.Context, req *model.CreateInvoiceRequest) (*model.Invoice, error) {
	// Recompute the total from the catalog so a stale client price cannot
	// underbill. A mismatch is rejected rather than silently corrected.
	var total float64
	for _, id := range req.ServiceIDs {
		svc, err := s.services.Get(ctx, id)
		if err != nil {
			return nil, apperrors.BadRequest("invoice references an unknown service", err)
		}
		total += svc.Price
	}
	if total != req.TotalPrice {
		return nil, apperrors.BadRequest("total_price does not match the sum of service prices", nil)
	}

	inv := &model.Invoice{
		MedicalRecordID: req.MedicalRecordID,
		TotalPrice:      req.TotalPrice,
		ServiceIDs:      req.ServiceIDs,
	}
	if err := s.invoices.Create(ctx, inv); err != nil {
		return nil, apperrors.Storage(err)
	}
	return inv, nil
}

func (s *service) ListByMedicalRecord(ctx context.Context, medicalRecordID int64) ([]*model.Invoice, error) {
	invoices, err := s.invoices.ListByMedicalRecord(ctx, medicalRecordID)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	return invoices, nil
}

func (s *service) ListByPatient(ctx context.Context, patientID int64) ([]*model.InvoiceSummary, error) {
	summaries, err := s.invoices.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	return summaries, nil
}
