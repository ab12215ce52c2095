package payment

import (
	"bitwise74/conference-api/app/common"
	"bitwise74/conference-api/internal"
	"bitwise74/conference-api/internal/membership"
	"bitwise74/conference-api/internal/model"
	"bitwise74/conference-api/internal/service"
	"bitwise74/conference-api/internal/workflow"
	"bitwise74/conference-api/pkg/middleware"
	"bitwise74/conference-api/pkg/response"
	"bitwise74/conference-api/pkg/validators"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var errOpenPayment = errors.New("payment already open")

type paymentForm struct {
	PaperID        string `form:"paperID"`
	MembershipID   string `form:"membershipID"`
	TransactionRef string `form:"transactionRef"`
}

// PaymentCreate records the registration payment of an accepted paper
func PaymentCreate(c *gin.Context, d *internal.Deps) {
	p := middleware.GetPrincipal(c)

	var form paymentForm
	if err := c.ShouldBind(&form); err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	paperID, err := strconv.ParseUint(form.PaperID, 10, 64)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid paper ID")
		return
	}

	form.TransactionRef = strings.TrimSpace(form.TransactionRef)
	if form.TransactionRef == "" || len(form.TransactionRef) > 128 {
		response.Fail(c, http.StatusBadRequest, "A transaction reference is required")
		return
	}

	paper, err := service.LoadPaper(d.DB, paperID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Fail(c, http.StatusNotFound, "Paper not found")
			return
		}

		response.Internal(c, "Failed to load paper", err)
		return
	}

	if paper.AuthorID != p.UserID {
		response.Fail(c, http.StatusForbidden, "You don't own this paper")
		return
	}

	if paper.Status != workflow.StatusAccepted {
		response.Fail(c, http.StatusConflict, "Payments are accepted once the paper is accepted")
		return
	}

	membershipType := membership.NonMember
	if id := strings.TrimSpace(form.MembershipID); id != "" {
		if d.Members == nil {
			response.Fail(c, http.StatusServiceUnavailable, "Membership lookup is not available")
			return
		}

		m, err := d.Members.Lookup(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, membership.ErrNotFound) {
				response.Fail(c, http.StatusBadRequest, "Membership not found")
				return
			}

			response.Internal(c, "Failed to look up membership", err)
			return
		}

		if m.Expired(time.Now()) {
			response.Fail(c, http.StatusBadRequest, "The membership has expired")
			return
		}

		membershipType = m.Type
		form.MembershipID = m.ID
	}

	obj, ok := common.Upload(c, d, "file", "payments", validators.Documents)
	if !ok {
		return
	}

	payment := &model.Payment{
		PaperID:        paper.ID,
		SubmissionID:   paper.SubmissionID,
		AuthorID:       p.UserID,
		MembershipID:   form.MembershipID,
		MembershipType: membershipType,
		Amount:         d.Fees.Fee(membershipType),
		Currency:       d.Fees.Currency,
		TransactionRef: form.TransactionRef,
		ProofURL:       obj.URL,
		ProofKey:       obj.Key,
		Status:         model.PaymentSubmitted,
	}

	err = d.DB.Transaction(func(tx *gorm.DB) error {
		// One open payment per paper
		var locked model.Paper
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", paper.ID).First(&locked).Error; err != nil {
			return err
		}

		var open int64

		err := tx.Model(&model.Payment{}).
			Where("paper_id = ? AND status IN ?", paper.ID, []string{model.PaymentSubmitted, model.PaymentVerified}).
			Count(&open).
			Error
		if err != nil {
			return err
		}

		if open > 0 {
			return errOpenPayment
		}

		return tx.Create(payment).Error
	})
	if err != nil {
		service.Discard(d.Storage, obj.Key)

		if errors.Is(err, errOpenPayment) {
			response.Fail(c, http.StatusConflict, "A payment for this paper is already pending or verified")
			return
		}

		response.Internal(c, "Failed to record payment", err)
		return
	}

	response.OK(c, http.StatusCreated, "Payment submitted", payment)
}
