package worker

import (
	"context"

	"github.com/GymAurCode/in-ven-tory/internal/infra"

	"github.com/rs/zerolog/log"
)

// ReceiptWorker archives a PDF receipt for every recorded sale.
type ReceiptWorker struct {
	storagePath  string
	businessName string
}

func NewReceiptWorker(storagePath, businessName string) *ReceiptWorker {
	return &ReceiptWorker{storagePath: storagePath, businessName: businessName}
}

func (w *ReceiptWorker) Process(_ context.Context, job SaleRecordedJob) error {
	sale := job.Sale()
	path, err := infra.WriteSaleReceipt(&sale, w.storagePath, w.businessName)
	if err != nil {
		return err
	}
	log.Info().Str("sale_id", sale.ID.String()).Str("path", path).Msg("receipt_worker: receipt archived")
	return nil
}
