package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	invoicedomain "github.com/smallbiznis/billdesk/internal/invoice/domain"
)

type updateInvoiceStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) CreateInvoice(c *gin.Context) {
	var req invoicedomain.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	res, err := s.invoiceSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Set("invoice_no", res.InvoiceNo)
	c.JSON(http.StatusCreated, gin.H{"data": res})
}

func (s *Server) ListInvoices(c *gin.Context) {
	var req invoicedomain.ListInvoiceRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.invoiceSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      resp.Invoices,
		"page_info": resp.PageInfo,
	})
}

func (s *Server) GetInvoiceByID(c *gin.Context) {
	inv, err := s.invoiceSvc.Get(c.Request.Context(), invoiceID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Set("invoice_no", inv.InvoiceNo)
	c.JSON(http.StatusOK, gin.H{"data": inv})
}

func (s *Server) UpdateInvoice(c *gin.Context) {
	var req invoicedomain.UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	res, err := s.invoiceSvc.Update(c.Request.Context(), invoiceID(c), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Set("invoice_no", res.InvoiceNo)
	c.JSON(http.StatusOK, gin.H{"data": res})
}

func (s *Server) UpdateInvoiceStatus(c *gin.Context) {
	var req updateInvoiceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Status) == "" {
		AbortWithError(c, newValidationError("status", "required", "status is required"))
		return
	}

	inv, err := s.invoiceSvc.UpdateStatus(c.Request.Context(), invoiceID(c), invoicedomain.InvoiceStatus(req.Status))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Set("invoice_no", inv.InvoiceNo)
	c.JSON(http.StatusOK, gin.H{"data": inv})
}

func (s *Server) DeleteInvoice(c *gin.Context) {
	if err := s.invoiceSvc.Delete(c.Request.Context(), invoiceID(c)); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) ResendInvoice(c *gin.Context) {
	res, err := s.invoiceSvc.Resend(c.Request.Context(), invoiceID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Set("invoice_no", res.InvoiceNo)
	c.JSON(http.StatusOK, gin.H{"data": res})
}

func (s *Server) DownloadInvoice(c *gin.Context) {
	artifact, err := s.invoiceSvc.Download(c.Request.Context(), invoiceID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", artifact.FileName))
	c.Data(http.StatusOK, "application/pdf", artifact.Content)
}

func (s *Server) PreviewInvoice(c *gin.Context) {
	html, err := s.invoiceSvc.Preview(c.Request.Context(), invoiceID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

func invoiceID(c *gin.Context) string {
	return strings.TrimSpace(c.Param("id"))
}
