package payment_test

import (
	"bitwise74/conference-api/internal/membership"
	"bitwise74/conference-api/internal/model"
	"bitwise74/conference-api/internal/testutil"
	"bitwise74/conference-api/internal/workflow"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pay(t *testing.T, e *testutil.Env, author *model.User, p *model.Paper, membershipID string) *model.Payment {
	t.Helper()

	w := e.Multipart(t, "POST", "/api/payments", e.Token(t, author), map[string]string{
		"paperID":        fmt.Sprint(p.ID),
		"membershipID":   membershipID,
		"transactionRef": "TX-1001",
	}, testutil.PDF)
	testutil.Status(t, http.StatusCreated, w)

	var out model.Payment
	testutil.Decode(t, w, &out)

	return &out
}

func TestMembershipLookup(t *testing.T) {
	e := testutil.New(t)
	author := e.SeedUser(t, model.RoleAuthor, "author@example.com")
	e.Members["S-1"] = membership.Member{ID: "S-1", Name: "Sam", Type: "student"}

	w := e.Do(t, "GET", "/api/membership/S-1", e.Token(t, author), nil)
	testutil.Status(t, http.StatusOK, w)

	var out struct {
		Expired  bool    `json:"expired"`
		Fee      float64 `json:"fee"`
		Currency string  `json:"currency"`
	}
	testutil.Decode(t, w, &out)
	assert.False(t, out.Expired)
	assert.Equal(t, 100.0, out.Fee)
	assert.Equal(t, "USD", out.Currency)

	w = e.Do(t, "GET", "/api/membership/nope", e.Token(t, author), nil)
	testutil.Status(t, http.StatusNotFound, w)
}

func TestPaymentRequiresAcceptedPaper(t *testing.T) {
	e := testutil.New(t)
	author := e.SeedUser(t, model.RoleAuthor, "author@example.com")
	p := e.SeedPaper(t, author, workflow.StatusReviewReceived)

	w := e.Multipart(t, "POST", "/api/payments", e.Token(t, author), map[string]string{
		"paperID":        fmt.Sprint(p.ID),
		"transactionRef": "TX-1",
	}, testutil.PDF)
	testutil.Status(t, http.StatusConflict, w)
	assert.Equal(t, 0, e.Storage.Len())
}

func TestPaymentFeeFollowsMembership(t *testing.T) {
	e := testutil.New(t)
	author := e.SeedUser(t, model.RoleAuthor, "author@example.com")
	p := e.SeedPaper(t, author, workflow.StatusAccepted)

	past := time.Now().Add(-24 * time.Hour)
	e.Members["OLD"] = membership.Member{ID: "OLD", Type: "IEEE", ValidUntil: &past}
	e.Members["IEEE-7"] = membership.Member{ID: "IEEE-7", Type: "IEEE"}

	w := e.Multipart(t, "POST", "/api/payments", e.Token(t, author), map[string]string{
		"paperID":        fmt.Sprint(p.ID),
		"membershipID":   "OLD",
		"transactionRef": "TX-1",
	}, testutil.PDF)
	testutil.Status(t, http.StatusBadRequest, w)

	w = e.Multipart(t, "POST", "/api/payments", e.Token(t, author), map[string]string{
		"paperID":        fmt.Sprint(p.ID),
		"membershipID":   "missing",
		"transactionRef": "TX-1",
	}, testutil.PDF)
	testutil.Status(t, http.StatusBadRequest, w)

	out := pay(t, e, author, p, "IEEE-7")
	assert.Equal(t, "IEEE", out.MembershipType)
	assert.Equal(t, 200.0, out.Amount)
	assert.Equal(t, model.PaymentSubmitted, out.Status)

	// One open payment per paper
	w = e.Multipart(t, "POST", "/api/payments", e.Token(t, author), map[string]string{
		"paperID":        fmt.Sprint(p.ID),
		"transactionRef": "TX-2",
	}, testutil.PDF)
	testutil.Status(t, http.StatusConflict, w)
	assert.Equal(t, 1, e.Storage.Len())
}

func TestVerifyTwiceConflicts(t *testing.T) {
	e := testutil.New(t)
	admin := e.SeedUser(t, model.RoleAdmin, "admin@example.com")
	author := e.SeedUser(t, model.RoleAuthor, "author@example.com")
	p := e.SeedPaper(t, author, workflow.StatusAccepted)

	payment := pay(t, e, author, p, "")
	assert.Equal(t, membership.NonMember, payment.MembershipType)
	assert.Equal(t, 300.0, payment.Amount)

	path := fmt.Sprintf("/api/payments/%d/verify", payment.ID)

	w := e.Do(t, "POST", path, e.Token(t, author), nil)
	testutil.Status(t, http.StatusForbidden, w)

	w = e.Do(t, "POST", path, e.Token(t, admin), nil)
	testutil.Status(t, http.StatusOK, w)

	w = e.Do(t, "POST", path, e.Token(t, admin), nil)
	testutil.Status(t, http.StatusConflict, w)

	var regs []model.Registration
	require.NoError(t, e.DB.Find(&regs).Error)
	require.Len(t, regs, 1)
	assert.Equal(t, p.SubmissionID, regs[0].SubmissionID)
	assert.Equal(t, author.Email, regs[0].Email)

	var got model.Payment
	require.NoError(t, e.DB.Where("id = ?", payment.ID).First(&got).Error)
	assert.Equal(t, model.PaymentVerified, got.Status)
	assert.NotNil(t, got.VerifiedAt)

	// A verified payment keeps the paper closed for new ones
	w = e.Multipart(t, "POST", "/api/payments", e.Token(t, author), map[string]string{
		"paperID":        fmt.Sprint(p.ID),
		"transactionRef": "TX-3",
	}, testutil.PDF)
	testutil.Status(t, http.StatusConflict, w)

	w = e.Do(t, "POST", fmt.Sprintf("/api/payments/%d/reject", payment.ID), e.Token(t, admin), gin.H{"comment": "late"})
	testutil.Status(t, http.StatusConflict, w)

	w = e.Do(t, "GET", "/api/registrations", e.Token(t, admin), nil)
	testutil.Status(t, http.StatusOK, w)
}

func TestRejectedPaymentCanBeResubmitted(t *testing.T) {
	e := testutil.New(t)
	admin := e.SeedUser(t, model.RoleAdmin, "admin@example.com")
	author := e.SeedUser(t, model.RoleAuthor, "author@example.com")
	p := e.SeedPaper(t, author, workflow.StatusAccepted)

	first := pay(t, e, author, p, "")

	w := e.Do(t, "POST", fmt.Sprintf("/api/payments/%d/reject", first.ID), e.Token(t, admin), gin.H{"comment": "Reference not found"})
	testutil.Status(t, http.StatusOK, w)

	second := pay(t, e, author, p, "")
	assert.NotEqual(t, first.ID, second.ID)

	w = e.Do(t, "GET", "/api/payments/mine", e.Token(t, author), nil)
	testutil.Status(t, http.StatusOK, w)

	var mine []model.Payment
	testutil.Decode(t, w, &mine)
	assert.Len(t, mine, 2)

	var regs int64
	require.NoError(t, e.DB.Model(&model.Registration{}).Count(&regs).Error)
	assert.Zero(t, regs)

	assert.NotEmpty(t, e.QueuedTo(t, author.Email))
}
