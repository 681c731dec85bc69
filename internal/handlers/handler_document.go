package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/ostwerk/billable_app/internal/core/ports/services"
	"github.com/ostwerk/billable_app/internal/dto"
	"github.com/ostwerk/billable_app/internal/middleware"
)

// documentHandler handles HTTP requests related to invoices and credit notes.
type documentHandler struct {
	documentService portssvc.DocumentSvcFacade
}

// newDocumentHandler creates a new documentHandler.
func newDocumentHandler(ds portssvc.DocumentSvcFacade) *documentHandler {
	return &documentHandler{
		documentService: ds,
	}
}

// registerDocumentRoutes registers document routes nested under a company.
func registerDocumentRoutes(rg *gin.RouterGroup, documentService portssvc.DocumentSvcFacade) {
	h := newDocumentHandler(documentService)

	documents := rg.Group("/documents")
	{
		documents.GET("", h.listDocuments)
		documents.GET("/:document_id", h.getDocument)
		documents.POST("/:document_id/issue", h.issueDocument)
		documents.POST("/:document_id/payments", h.recordPayment)
		documents.POST("/:document_id/cancel", h.cancelDocument)
		documents.POST("/:document_id/credit-note", h.createCreditNote)
		documents.GET("/:document_id/pdf", h.renderDocumentPDF)
		documents.POST("/:document_id/send", h.sendDocument)
	}
}

// listDocuments godoc
// @Summary List documents
// @Description Retrieves a paginated list of the company's invoices and credit notes, newest first.
// @Tags documents
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Pagination token"
// @Success 200 {object} dto.ListDocumentsResponse
// @Failure 404 {object} map[string]string "Company not found"
// @Failure 500 {object} map[string]string "Failed to list documents"
// @Security BearerAuth
// @Router /companies/{company_id}/documents [get]
func (h *documentHandler) listDocuments(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")

	var params dto.ListDocumentsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	resp, err := h.documentService.ListDocuments(c.Request.Context(), companyID, userID, params)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list documents")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// getDocument godoc
// @Summary Get a document
// @Description Retrieves a document with its lines and payments.
// @Tags documents
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   document_id path string true "Document ID"
// @Success 200 {object} dto.GetDocumentResponse
// @Failure 404 {object} map[string]string "Document not found"
// @Failure 500 {object} map[string]string "Failed to retrieve document"
// @Security BearerAuth
// @Router /companies/{company_id}/documents/{document_id} [get]
func (h *documentHandler) getDocument(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")
	documentID := c.Param("document_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	resp, err := h.documentService.GetDocumentByID(c.Request.Context(), companyID, documentID, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve document")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// issueDocument godoc
// @Summary Issue a draft document
// @Description Assigns the next sequential document number, stamps issue and due dates and moves the document to ISSUED. Issued documents are immutable.
// @Tags documents
// @Accept  json
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   document_id path string true "Document ID"
// @Param   issue body dto.IssueDocumentRequest false "Issue date override"
// @Success 200 {object} dto.DocumentResponse
// @Failure 400 {object} map[string]string "Document is not a draft"
// @Failure 404 {object} map[string]string "Document not found"
// @Failure 409 {object} map[string]string "Number sequence conflict"
// @Failure 500 {object} map[string]string "Failed to issue document"
// @Security BearerAuth
// @Router /companies/{company_id}/documents/{document_id}/issue [post]
func (h *documentHandler) issueDocument(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")
	documentID := c.Param("document_id")

	var req dto.IssueDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	document, err := h.documentService.IssueDocument(c.Request.Context(), companyID, documentID, req, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to issue document")
		return
	}

	logger.Info("Document issued", slog.String("document_id", documentID), slog.Any("document_number", document.DocumentNumber))
	c.JSON(http.StatusOK, dto.ToDocumentResponse(document))
}

// recordPayment godoc
// @Summary Record a payment
// @Description Records a payment against an issued document. The document becomes PAID once payments cover its total.
// @Tags documents
// @Accept  json
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   document_id path string true "Document ID"
// @Param   payment body dto.RecordPaymentRequest true "Payment details"
// @Success 200 {object} dto.DocumentResponse
// @Failure 400 {object} map[string]string "Invalid payment or document not issued"
// @Failure 404 {object} map[string]string "Document not found"
// @Failure 500 {object} map[string]string "Failed to record payment"
// @Security BearerAuth
// @Router /companies/{company_id}/documents/{document_id}/payments [post]
func (h *documentHandler) recordPayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")
	documentID := c.Param("document_id")

	var req dto.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	document, err := h.documentService.RecordPayment(c.Request.Context(), companyID, documentID, req, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to record payment")
		return
	}

	logger.Info("Payment recorded", slog.String("document_id", documentID), slog.String("status", string(document.Status)))
	c.JSON(http.StatusOK, dto.ToDocumentResponse(document))
}

// cancelDocument godoc
// @Summary Cancel a document
// @Description Cancels a draft or issued document. Cancelling a draft releases its time entries back to APPROVED.
// @Tags documents
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   document_id path string true "Document ID"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string "Document not cancellable"
// @Failure 404 {object} map[string]string "Document not found"
// @Failure 500 {object} map[string]string "Failed to cancel document"
// @Security BearerAuth
// @Router /companies/{company_id}/documents/{document_id}/cancel [post]
func (h *documentHandler) cancelDocument(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")
	documentID := c.Param("document_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.documentService.CancelDocument(c.Request.Context(), companyID, documentID, userID); err != nil {
		respondServiceError(c, logger, err, "Failed to cancel document")
		return
	}

	logger.Info("Document cancelled", slog.String("document_id", documentID))
	c.Status(http.StatusNoContent)
}

// createCreditNote godoc
// @Summary Create a credit note
// @Description Builds a draft credit note with negated lines from an issued or paid invoice.
// @Tags documents
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   document_id path string true "Invoice Document ID"
// @Success 201 {object} dto.GetDocumentResponse
// @Failure 400 {object} map[string]string "Document not creditable"
// @Failure 404 {object} map[string]string "Document not found"
// @Failure 500 {object} map[string]string "Failed to create credit note"
// @Security BearerAuth
// @Router /companies/{company_id}/documents/{document_id}/credit-note [post]
func (h *documentHandler) createCreditNote(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")
	documentID := c.Param("document_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	resp, err := h.documentService.CreateCreditNote(c.Request.Context(), companyID, documentID, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to create credit note")
		return
	}

	logger.Info("Credit note created", slog.String("source_document_id", documentID), slog.String("credit_note_id", resp.Document.DocumentID))
	c.JSON(http.StatusCreated, resp)
}

// renderDocumentPDF godoc
// @Summary Download a document as PDF
// @Description Renders the document to PDF and returns it as a file download.
// @Tags documents
// @Produce  application/pdf
// @Param   company_id path string true "Company ID"
// @Param   document_id path string true "Document ID"
// @Success 200 {file} binary "PDF document"
// @Failure 404 {object} map[string]string "Document not found"
// @Failure 500 {object} map[string]string "Failed to render document"
// @Security BearerAuth
// @Router /companies/{company_id}/documents/{document_id}/pdf [get]
func (h *documentHandler) renderDocumentPDF(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")
	documentID := c.Param("document_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	pdfBytes, filename, err := h.documentService.RenderDocumentPDF(c.Request.Context(), companyID, documentID, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to render document")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}

// sendDocument godoc
// @Summary Email a document
// @Description Renders the document to PDF and emails it to the customer, or to an explicit recipient override.
// @Tags documents
// @Accept  json
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   document_id path string true "Document ID"
// @Param   send body dto.SendDocumentRequest false "Recipient override and message"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string "No recipient available"
// @Failure 404 {object} map[string]string "Document not found"
// @Failure 500 {object} map[string]string "Failed to send document"
// @Security BearerAuth
// @Router /companies/{company_id}/documents/{document_id}/send [post]
func (h *documentHandler) sendDocument(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")
	documentID := c.Param("document_id")

	var req dto.SendDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.documentService.SendDocument(c.Request.Context(), companyID, documentID, req, userID); err != nil {
		respondServiceError(c, logger, err, "Failed to send document")
		return
	}

	logger.Info("Document sent", slog.String("document_id", documentID))
	c.Status(http.StatusNoContent)
}
