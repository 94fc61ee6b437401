package infra

import (
	"bytes"
	"os"
	"testing"
	"time"

	"github.com/GymAurCode/in-ven-tory/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSale() *model.Sale {
	note := "gift wrap"
	return &model.Sale{
		ID:          uuid.New(),
		ProductID:   uuid.New(),
		ProductName: "A product name that is far too long for the receipt",
		Quantity:    3,
		UnitPrice:   decimal.NewFromInt(100),
		TotalPrice:  decimal.NewFromInt(300),
		Description: &note,
		CreatedAt:   time.Now(),
	}
}

func TestRenderSaleReceipt_ProducesPDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderSaleReceipt(&buf, sampleSale(), "Corner Shop"))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestWriteSaleReceipt_WritesFile(t *testing.T) {
	dir := t.TempDir()
	sale := sampleSale()

	path, err := WriteSaleReceipt(sale, dir, "Corner Shop")
	require.NoError(t, err)
	assert.Contains(t, path, sale.ID.String())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}
