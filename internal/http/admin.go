package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/libtrary/libtrary/internal/auth"
	"github.com/libtrary/libtrary/internal/database/books"
	rentalstore "github.com/libtrary/libtrary/internal/database/rentals"
	"github.com/libtrary/libtrary/internal/database/users"
	"github.com/libtrary/libtrary/internal/importers"
	"github.com/libtrary/libtrary/internal/rentals"
)

// AdminController handles staff confirmation, rental management and bulk
// catalog import. All routes except staff confirmation are staff-gated by
// middleware before the handlers run.
type AdminController struct {
	authService    *auth.Service
	rentalService  *rentals.Service
	books          *books.Repository
	maxUploadBytes int64
}

// NewAdminController creates the controller.
func NewAdminController(authService *auth.Service, rentalService *rentals.Service, bookRepo *books.Repository, maxUploadBytes int64) *AdminController {
	return &AdminController{
		authService:    authService,
		rentalService:  rentalService,
		books:          bookRepo,
		maxUploadBytes: maxUploadBytes,
	}
}

type RentalRequest struct {
	UserID uint `json:"user_id" binding:"required"`
	BookID uint `json:"book_id" binding:"required"`
}

// ConfirmStaffAccess handles GET /admin/confirm-staff-access?token=...
// Anyone possessing a valid staff-confirmation token can redeem it.
func (ac *AdminController) ConfirmStaffAccess(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		respondBadRequest(c, "token is required")
		return
	}

	user, err := ac.authService.ConfirmStaff(token)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidToken):
			respondBadRequest(c, "invalid or expired token")
		case errors.Is(err, users.ErrNotFound):
			respondNotFound(c, "user")
		default:
			respondInternalError(c, err, "confirm staff access")
		}
		return
	}

	respondSuccess(c, fmt.Sprintf("Staff access confirmed for %s.", user.Username))
}

// Rent handles POST /admin/rental.
func (ac *AdminController) Rent(c *gin.Context) {
	var req RentalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	rental, dueDate, err := ac.rentalService.Rent(req.UserID, req.BookID)
	if err != nil {
		switch {
		case errors.Is(err, users.ErrNotFound):
			respondNotFound(c, "user")
		case errors.Is(err, books.ErrNotFound):
			respondNotFound(c, "book")
		case errors.Is(err, rentals.ErrBookUnavailable):
			respondBadRequest(c, "book is not available for rental")
		default:
			respondInternalError(c, err, "rent")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"rental":   rental,
		"due_date": dueDate.Format("2006-01-02"),
	})
}

// Return handles POST /admin/rental/return.
func (ac *AdminController) Return(c *gin.Context) {
	var req RentalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	if err := ac.rentalService.Return(req.UserID, req.BookID); err != nil {
		switch {
		case errors.Is(err, rentalstore.ErrNotFound):
			respondNotFound(c, "rental")
		case errors.Is(err, books.ErrNotFound):
			respondNotFound(c, "book")
		default:
			respondInternalError(c, err, "return rental")
		}
		return
	}

	respondSuccess(c, "Rental returned successfully.")
}

// Extend handles POST /admin/rental/extend. The new due date is announced
// by email but not persisted.
func (ac *AdminController) Extend(c *gin.Context) {
	var req RentalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	newDueDate, err := ac.rentalService.Extend(req.UserID, req.BookID)
	if err != nil {
		switch {
		case errors.Is(err, users.ErrNotFound):
			respondNotFound(c, "user")
		case errors.Is(err, books.ErrNotFound):
			respondNotFound(c, "book")
		case errors.Is(err, rentalstore.ErrNotFound):
			respondNotFound(c, "rental")
		default:
			respondInternalError(c, err, "extend rental")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Rental extended successfully.",
		"new_due_date": newDueDate.Format("2006-01-02"),
	})
}

// Report handles GET /admin/rental/report.
func (ac *AdminController) Report(c *gin.Context) {
	report, err := ac.rentalService.Report()
	if err != nil {
		respondInternalError(c, err, "rental report")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"report": report,
		"count":  len(report),
	})
}

// BulkCreateBooks handles POST /admin/books/bulk-create. The upload must be
// CSV and within the size cap; malformed rows are skipped, not fatal.
func (ac *AdminController) BulkCreateBooks(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		respondBadRequest(c, "no CSV file provided")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.Contains(strings.ToLower(contentType), "csv") {
		respondBadRequest(c, "file must be a CSV")
		return
	}
	if header.Size > ac.maxUploadBytes {
		respondBadRequest(c, fmt.Sprintf("file exceeds maximum size of %d bytes", ac.maxUploadBytes))
		return
	}

	parsed, skipped, err := importers.ParseCatalogCSV(file)
	if err != nil {
		respondBadRequest(c, fmt.Sprintf("failed to parse CSV: %v", err))
		return
	}

	created, err := ac.books.CreateBatch(parsed)
	if err != nil {
		respondInternalError(c, err, "bulk create books")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"created": created,
		"skipped": skipped,
	})
}
