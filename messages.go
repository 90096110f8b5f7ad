package folioapi

import (
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
)

// handleMessageCreate persists a contact-form submission and, when a
// recipient is configured, fires the mail notification. The notification
// runs detached from the request: its failure is logged, never returned,
// and the response does not wait for it.
func (a *App) handleMessageCreate(c echo.Context) error {
	req, apiErr := decodeRequest(c, "")
	if apiErr != nil {
		return apiErr
	}
	msg, apiErr := buildMessage(req)
	if apiErr != nil {
		return apiErr
	}
	saved, err := a.Store.CreateMessage(c.Request().Context(), msg)
	if err != nil {
		return err
	}
	a.notify(c, saved)
	return c.JSON(http.StatusCreated, saved)
}

func (a *App) handleMessageList(c echo.Context) error {
	messages, err := a.Store.ListMessages(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messages)
}

func (a *App) handleMessageGet(c echo.Context) error {
	id, ok := ParseID(c.Param("id"))
	if !ok {
		return badRequest("Invalid message ID")
	}
	msg, err := a.Store.GetMessage(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return notFound("Message not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, msg)
}

func (a *App) handleMessageUpdate(c echo.Context) error {
	id, ok := ParseID(c.Param("id"))
	if !ok {
		return badRequest("Invalid message ID")
	}
	req, apiErr := decodeRequest(c, "")
	if apiErr != nil {
		return apiErr
	}
	set := bson.M{}
	if apiErr := buildMessageUpdate(req, set); apiErr != nil {
		return apiErr
	}
	updated, err := a.Store.UpdateMessage(c.Request().Context(), id, set)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return notFound("Message not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, updated)
}

func (a *App) handleMessageDelete(c echo.Context) error {
	id, ok := ParseID(c.Param("id"))
	if !ok {
		return badRequest("Invalid message ID")
	}
	if err := a.Store.DeleteMessage(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return notFound("Message not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Message deleted successfully"})
}

// notify fires the new-message notification without blocking the
// response.
func (a *App) notify(c echo.Context, msg Message) {
	if a.Mailer == nil {
		return
	}
	logger := c.Logger()
	go func() {
		if err := a.Mailer.Notify(msg); err != nil {
			logger.Errorf("mail notification: %v", err)
		}
	}()
}

// buildMessage assembles a contact message. Fields are trimmed and the
// email lowercased before the length and pattern constraints apply.
func buildMessage(req *request) (Message, *Error) {
	msg := Message{
		Name:    strings.TrimSpace(req.text("name")),
		Email:   strings.ToLower(strings.TrimSpace(req.text("email"))),
		Subject: strings.TrimSpace(req.text("subject")),
		Body:    strings.TrimSpace(req.text("message")),
	}
	if details := validateMessage(msg); len(details) > 0 {
		return Message{}, badRequest("Validation failed", details...)
	}
	return msg, nil
}

// buildMessageUpdate merges the provided fields into a $set document,
// re-applying the per-field length and pattern constraints.
func buildMessageUpdate(req *request, set bson.M) *Error {
	var details []string
	if req.has("name") {
		v := strings.TrimSpace(req.text("name"))
		if utf8.RuneCountInString(v) < 2 {
			details = append(details, "name must be at least 2 characters")
		} else {
			set["name"] = v
		}
	}
	if req.has("email") {
		v := strings.ToLower(strings.TrimSpace(req.text("email")))
		if !emailPattern.MatchString(v) {
			details = append(details, "email must be a valid email address")
		} else {
			set["email"] = v
		}
	}
	if req.has("subject") {
		v := strings.TrimSpace(req.text("subject"))
		if utf8.RuneCountInString(v) < 5 {
			details = append(details, "subject must be at least 5 characters")
		} else {
			set["subject"] = v
		}
	}
	if req.has("message") {
		v := strings.TrimSpace(req.text("message"))
		if utf8.RuneCountInString(v) < 10 {
			details = append(details, "message must be at least 10 characters")
		} else {
			set["message"] = v
		}
	}
	if len(details) > 0 {
		return badRequest("Validation failed", details...)
	}
	return nil
}
