package http

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"

	"github.com/libtrary/libtrary/internal/auth"
)

// StaffAccessController lets an authenticated user request staff privileges.
// The request emails the admin a confirmation link carrying a staff token
// for the requesting user's address.
type StaffAccessController struct {
	service    *auth.Service
	notifier   Notifier
	publicURL  string
	adminEmail string
}

// NewStaffAccessController creates the controller.
func NewStaffAccessController(service *auth.Service, notifier Notifier, publicURL, adminEmail string) *StaffAccessController {
	return &StaffAccessController{
		service:    service,
		notifier:   notifier,
		publicURL:  publicURL,
		adminEmail: adminEmail,
	}
}

// Request handles POST /user/request-staff-access.
func (s *StaffAccessController) Request(c *gin.Context) {
	user := auth.CurrentUser(c)

	token, err := s.service.Tokens().IssueConfirmationToken(user.Email)
	if err != nil {
		respondInternalError(c, err, "issue staff confirmation token")
		return
	}

	body := fmt.Sprintf(
		"User %s has requested staff access. Confirm at: %s/admin/confirm-staff-access?token=%s",
		user.Username, s.publicURL, token,
	)
	if err := s.notifier.Notify("Staff Access Request", body, s.adminEmail); err != nil {
		log.Printf("Failed to schedule staff access request email for %s: %v", user.Username, err)
	}

	respondSuccess(c, fmt.Sprintf("Staff access request for %s has been sent.", user.Username))
}
