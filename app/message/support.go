package message

import (
	"bitwise74/conference-api/app/common"
	"bitwise74/conference-api/internal"
	"bitwise74/conference-api/internal/model"
	"bitwise74/conference-api/pkg/middleware"
	"bitwise74/conference-api/pkg/response"
	"bitwise74/conference-api/pkg/validators"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func supportKey(userID string) threadKey {
	return threadKey{Kind: model.ThreadSupport, OwnerID: userID}
}

// SupportFetch returns the caller's support thread
func SupportFetch(c *gin.Context, d *internal.Deps) {
	p := middleware.GetPrincipal(c)

	t, err := findThread(d.DB, supportKey(p.UserID))
	if err != nil {
		response.Internal(c, "Failed to fetch support thread", err)
		return
	}

	if t == nil {
		t = &model.Thread{Kind: model.ThreadSupport, OwnerID: p.UserID, Messages: []model.Message{}}
	}

	response.OK(c, http.StatusOK, "", t)
}

// SupportPost appends a message to the caller's support thread
func SupportPost(c *gin.Context, d *internal.Deps) {
	p := middleware.GetPrincipal(c)

	var data messageBody
	if err := c.ShouldBindJSON(&data); err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validators.MessageValidator(data.Text); err != nil {
		response.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	var msg *model.Message

	err := d.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		_, msg, err = appendMessage(tx, supportKey(p.UserID), model.Thread{}, p, data.Text)
		return err
	})
	if err != nil {
		response.Internal(c, "Failed to post message", err)
		return
	}

	response.OK(c, http.StatusCreated, "Message sent", msg)
}

// SupportList lists support threads by latest activity
func SupportList(c *gin.Context, d *internal.Deps) {
	limit, offset := common.Page(c)

	var threads []model.Thread

	err := d.DB.
		Where("kind = ?", model.ThreadSupport).
		Order("last_activity_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&threads).
		Error
	if err != nil {
		response.Internal(c, "Failed to list support threads", err)
		return
	}

	response.OK(c, http.StatusOK, "", threads)
}

// SupportReply answers in a user's support thread
func SupportReply(c *gin.Context, d *internal.Deps) {
	p := middleware.GetPrincipal(c)
	userID := c.Param("userID")

	var data messageBody
	if err := c.ShouldBindJSON(&data); err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validators.MessageValidator(data.Text); err != nil {
		response.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	var owner model.User
	if err := d.DB.Where("id = ?", userID).First(&owner).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Fail(c, http.StatusNotFound, "User not found")
			return
		}

		response.Internal(c, "Failed to look up user", err)
		return
	}

	var msg *model.Message

	err := d.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		_, msg, err = appendMessage(tx, supportKey(userID), model.Thread{}, p, data.Text)
		if err != nil {
			return err
		}

		return notify(tx, d, []string{owner.ID}, p.UserID, "Reply from conference support", data.Text)
	})
	if err != nil {
		response.Internal(c, "Failed to post reply", err)
		return
	}

	response.OK(c, http.StatusCreated, "Reply sent", msg)
}
