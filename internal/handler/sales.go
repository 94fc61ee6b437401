package handler

import (
	"bytes"
	"net/http"

	"github.com/GymAurCode/in-ven-tory/internal/dto"
	"github.com/GymAurCode/in-ven-tory/internal/infra"
	"github.com/GymAurCode/in-ven-tory/internal/service"

	"github.com/gin-gonic/gin"
)

type SalesHandler struct {
	sales        service.SaleService
	stats        service.StatsService
	businessName string
}

func NewSalesHandler(sales service.SaleService, stats service.StatsService, businessName string) *SalesHandler {
	return &SalesHandler{sales: sales, stats: stats, businessName: businessName}
}

// RecordSale handles POST /api/sales. Field checks live in the service so the
// caller always sees the same messages whichever transport is used.
func (h *SalesHandler) RecordSale(c *gin.Context) {
	var req dto.RecordSaleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.sales.RecordSale(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListSales handles GET /api/sales, newest first.
func (h *SalesHandler) ListSales(c *gin.Context) {
	var filter dto.SaleFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.stats.ListSales(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListByProduct handles GET /api/sales/product/:productId.
func (h *SalesHandler) ListByProduct(c *gin.Context) {
	resp, err := h.stats.ListSales(c.Request.Context(), dto.SaleFilter{ProductID: c.Param("productId")})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SalesHandler) GetStats(c *gin.Context) {
	resp, err := h.stats.GetSalesStats(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SalesHandler) ProductsForSale(c *gin.Context) {
	resp, err := h.stats.ListProductsForSale(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SalesHandler) GetSale(c *gin.Context) {
	resp, err := h.stats.GetSale(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Receipt renders the sale receipt as a PDF on the fly.
func (h *SalesHandler) Receipt(c *gin.Context) {
	sale, err := h.stats.FindSale(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	var buf bytes.Buffer
	if err := infra.RenderSaleReceipt(&buf, sale, h.businessName); err != nil {
		_ = c.Error(err)
		return
	}
	c.Header("Content-Disposition", `inline; filename="receipt_`+sale.ID.String()+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
