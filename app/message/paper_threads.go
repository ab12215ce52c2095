package message

import (
	"bitwise74/conference-api/app/common"
	"bitwise74/conference-api/internal"
	"bitwise74/conference-api/internal/model"
	"bitwise74/conference-api/internal/policy"
	"bitwise74/conference-api/internal/service"
	"bitwise74/conference-api/pkg/middleware"
	"bitwise74/conference-api/pkg/response"
	"bitwise74/conference-api/pkg/validators"
	"fmt"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// resolved describes a paper thread the caller may take part in
type resolved struct {
	key threadKey
	// Participants stored on a new thread
	participants model.Thread
	// User IDs notified about new messages, the sender is skipped
	notify []string
}

// resolveThread checks that the caller takes part in the thread of kind on
// paper and works out its key. On failure the response is already written.
func resolveThread(c *gin.Context, p policy.Principal, kind model.ThreadKind, paper *model.Paper, reviewerID string) (*resolved, bool) {
	editorID := ""
	if paper.EditorID != nil {
		editorID = *paper.EditorID
	}

	base := model.Thread{AuthorID: paper.AuthorID, EditorID: editorID}

	switch kind {
	case model.ThreadPaper:
		if !policy.OwnsPaper(p, paper) && !policy.EditsPaper(p, paper) {
			break
		}

		return &resolved{
			key:          threadKey{Kind: kind, PaperID: paper.ID},
			participants: base,
			notify:       []string{paper.AuthorID, editorID},
		}, true

	case model.ThreadReviewer:
		if p.Role == model.RoleReviewer {
			reviewerID = p.UserID
		}

		if reviewerID == "" {
			response.Fail(c, http.StatusBadRequest, "No reviewer ID provided")
			return nil, false
		}

		isReviewer := p.UserID == reviewerID && policy.ReviewsPaper(p, paper)
		if !isReviewer && !policy.EditsPaper(p, paper) {
			break
		}

		assigned := slices.ContainsFunc(paper.ReviewAssignments, func(a model.ReviewAssignment) bool {
			return a.ReviewerID == reviewerID
		})
		if !assigned {
			response.Fail(c, http.StatusNotFound, "The reviewer isn't assigned to this paper")
			return nil, false
		}

		base.ReviewerID = reviewerID

		return &resolved{
			key:          threadKey{Kind: kind, PaperID: paper.ID, ReviewerID: reviewerID},
			participants: base,
			notify:       []string{editorID, reviewerID},
		}, true

	case model.ThreadCopyright:
		if !policy.OwnsPaper(p, paper) {
			break
		}

		return &resolved{
			key:          threadKey{Kind: kind, PaperID: paper.ID},
			participants: base,
			notify:       []string{paper.AuthorID},
		}, true

	default:
		response.Fail(c, http.StatusBadRequest, "Invalid thread kind")
		return nil, false
	}

	response.Fail(c, http.StatusForbidden, "You are not part of this conversation")
	return nil, false
}

// ThreadFetch returns a paper related thread with its messages
func ThreadFetch(c *gin.Context, d *internal.Deps) {
	p := middleware.GetPrincipal(c)

	paper, ok := common.LoadPaper(c, d, "paperID")
	if !ok {
		return
	}

	r, ok := resolveThread(c, p, model.ThreadKind(c.Param("kind")), paper, c.Query("reviewerID"))
	if !ok {
		return
	}

	t, err := findThread(d.DB, r.key)
	if err != nil {
		response.Internal(c, "Failed to fetch thread", err)
		return
	}

	if t == nil {
		t = &r.participants
		t.Kind = r.key.Kind
		t.PaperID = r.key.PaperID
		t.Messages = []model.Message{}
	}

	response.OK(c, http.StatusOK, "", t)
}

type messageBody struct {
	Text       string `json:"text"`
	ReviewerID string `json:"reviewerID"`
}

// ThreadPost appends a message to a paper related thread
func ThreadPost(c *gin.Context, d *internal.Deps) {
	p := middleware.GetPrincipal(c)

	paper, ok := common.LoadPaper(c, d, "paperID")
	if !ok {
		return
	}

	var data messageBody
	if err := c.ShouldBindJSON(&data); err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validators.MessageValidator(data.Text); err != nil {
		response.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	r, ok := resolveThread(c, p, model.ThreadKind(c.Param("kind")), paper, data.ReviewerID)
	if !ok {
		return
	}

	var msg *model.Message

	err := d.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		_, msg, err = appendMessage(tx, r.key, r.participants, p, data.Text)
		if err != nil {
			return err
		}

		subject := fmt.Sprintf("New message about %s", paper.SubmissionID)
		return notify(tx, d, r.notify, p.UserID, subject, data.Text)
	})
	if err != nil {
		response.Internal(c, "Failed to post message", err)
		return
	}

	response.OK(c, http.StatusCreated, "Message sent", msg)
}

// notify mails everyone in userIDs except the sender
func notify(tx *gorm.DB, d *internal.Deps, userIDs []string, senderID, subject, text string) error {
	ids := slices.DeleteFunc(slices.Clone(userIDs), func(id string) bool {
		return id == "" || id == senderID
	})
	if len(ids) == 0 {
		return nil
	}

	var emails []string
	if err := tx.Model(&model.User{}).Where("id IN ?", ids).Pluck("email", &emails).Error; err != nil {
		return err
	}

	mails := make([]service.Mail, len(emails))
	for i, e := range emails {
		mails[i] = service.MessageMail(e, subject, text)
	}

	return d.Outbox.Enqueue(tx, mails...)
}
