package payment

import (
	"bitwise74/conference-api/internal"
	"bitwise74/conference-api/internal/model"
	"bitwise74/conference-api/internal/service"
	"bitwise74/conference-api/pkg/response"
	"bitwise74/conference-api/pkg/validators"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var errNotSubmitted = errors.New("payment is not awaiting review")

// settle moves a submitted payment to status and runs then inside the same
// transaction
func settle(d *internal.Deps, id uint64, status, comment string, then func(tx *gorm.DB, p *model.Payment) error) (*model.Payment, error) {
	var payment model.Payment

	err := d.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).
			First(&payment).
			Error
		if err != nil {
			return err
		}

		if payment.Status != model.PaymentSubmitted {
			return errNotSubmitted
		}

		updates := map[string]any{
			"status":        status,
			"admin_comment": comment,
		}

		now := time.Now()
		if status == model.PaymentVerified {
			updates["verified_at"] = now
			payment.VerifiedAt = &now
		}

		res := tx.Model(&model.Payment{}).
			Where("id = ? AND status = ?", payment.ID, model.PaymentSubmitted).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			return errNotSubmitted
		}

		payment.Status = status
		payment.AdminComment = comment

		if then != nil {
			if err := then(tx, &payment); err != nil {
				return err
			}
		}

		email := ""
		if err := tx.Model(&model.User{}).Where("id = ?", payment.AuthorID).Pluck("email", &email).Error; err != nil {
			return err
		}

		return d.Outbox.Enqueue(tx, service.PaymentDecisionMail(email, &payment))
	})

	return &payment, err
}

func paymentID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid payment ID")
		return 0, false
	}

	return id, true
}

func settleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		response.Fail(c, http.StatusNotFound, "Payment not found")
	case errors.Is(err, errNotSubmitted):
		response.Fail(c, http.StatusConflict, "The payment was already processed")
	case errors.Is(err, gorm.ErrDuplicatedKey):
		response.Fail(c, http.StatusConflict, "The author of this paper is already registered")
	default:
		response.Internal(c, "Failed to process payment", err)
	}
}

// PaymentVerify confirms a payment and registers the author. Both happen in
// one transaction so there is never a verified payment without a registration.
func PaymentVerify(c *gin.Context, d *internal.Deps) {
	id, ok := paymentID(c)
	if !ok {
		return
	}

	var reg *model.Registration

	payment, err := settle(d, id, model.PaymentVerified, "", func(tx *gorm.DB, p *model.Payment) error {
		var paper model.Paper
		if err := tx.Where("id = ?", p.PaperID).First(&paper).Error; err != nil {
			return err
		}

		reg = &model.Registration{
			SubmissionID:   p.SubmissionID,
			PaperID:        p.PaperID,
			AuthorID:       p.AuthorID,
			PaymentID:      p.ID,
			Name:           paper.AuthorName,
			Email:          paper.AuthorEmail,
			MembershipType: p.MembershipType,
			RegisteredAt:   time.Now(),
		}

		return tx.Create(reg).Error
	})
	if err != nil {
		settleError(c, err)
		return
	}

	response.OK(c, http.StatusOK, "Payment verified", gin.H{
		"payment":      payment,
		"registration": reg,
	})
}

type rejectBody struct {
	Comment string `json:"comment"`
}

// PaymentReject turns a payment down. The author may submit a new one.
func PaymentReject(c *gin.Context, d *internal.Deps) {
	id, ok := paymentID(c)
	if !ok {
		return
	}

	var data rejectBody
	if err := c.ShouldBindJSON(&data); err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validators.TextValidator(data.Comment); err != nil {
		response.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	payment, err := settle(d, id, model.PaymentRejected, data.Comment, nil)
	if err != nil {
		settleError(c, err)
		return
	}

	response.OK(c, http.StatusOK, "Payment rejected", payment)
}
