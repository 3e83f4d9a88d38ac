package chatbot

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"famtreebot/internal/service"
	"famtreebot/internal/session"
)

func (e *Engine) handleEditSelectMember(ctx context.Context, c *conversation) (string, error) {
	memberID, err := strconv.ParseInt(c.body, 10, 64)
	if err != nil {
		return "Invalid ID.", nil
	}

	tree, role, err := e.access.ActiveTree(ctx, c.user.ID)
	if err != nil {
		return "", err
	}
	if tree == nil {
		c.sess.Reset()
		return "Tree not found.", nil
	}

	member, err := e.family.GetMember(ctx, memberID)
	if errors.Is(err, service.ErrNotFound) {
		c.sess.Reset()
		return "Member not found in your tree.", nil
	}
	if err != nil {
		return "", err
	}
	if member.TreeID != tree.ID {
		c.sess.Reset()
		return "Member not found in your tree.", nil
	}

	if !role.CanEdit() {
		c.sess.Reset()
		return "Permission denied. Viewers cannot edit.", nil
	}

	if err := e.locks.Acquire(ctx, memberID, c.user.ID); err != nil {
		if errors.Is(err, service.ErrMemberLocked) {
			c.sess.Reset()
			return "Member is currently being edited by another user. Try again later.", nil
		}
		if errors.Is(err, service.ErrNotFound) {
			c.sess.Reset()
			return "Member not found in your tree.", nil
		}
		return "", err
	}

	c.sess.Edit = &session.EditDraft{MemberID: memberID}
	c.sess.State = session.StateEditSelectField
	return fmt.Sprintf("Editing %s. What do you want to change?\n1. Name\n2. DOB\n3. Gender\n4. Phone", member.Name), nil
}

func (e *Engine) handleEditSelectField(ctx context.Context, c *conversation) (string, error) {
	prompts := map[string]string{
		"1": "Enter new Name:",
		"2": "Enter new DOB (DD-MM-YYYY):",
		"3": "Enter new Gender (Male/Female/Other):",
		"4": "Enter new Phone:",
	}

	prompt, ok := prompts[c.body]
	if !ok {
		return "Invalid choice.", nil
	}

	field, _ := strconv.Atoi(c.body)
	c.sess.Edit.Field = field
	c.sess.State = session.StateEditEnterValue
	return prompt, nil
}

func (e *Engine) handleEditEnterValue(ctx context.Context, c *conversation) (string, error) {
	draft := c.sess.Edit

	member, err := e.family.GetMember(ctx, draft.MemberID)
	if errors.Is(err, service.ErrNotFound) {
		c.sess.Reset()
		return "Member not found in your tree.", nil
	}
	if err != nil {
		return "", err
	}

	switch draft.Field {
	case 1:
		member.Name = c.body
	case 2:
		dob, ok := parseDate(c.body)
		if !ok {
			// Re-prompt in place; the edit lock stays held.
			return invalidDateReply, nil
		}
		member.DOB = &dob
	case 3:
		gender, ok := parseGender(c.body)
		if !ok {
			return invalidGenderReply, nil
		}
		member.Gender = gender
	case 4:
		member.Phone = c.body
	}

	if _, err := e.family.UpdateMember(ctx, member); err != nil {
		return "", err
	}
	if err := e.locks.Release(ctx, member.ID, c.user.ID); err != nil {
		return "", err
	}

	c.sess.Reset()
	return "✅ Member updated successfully!\n\n" + mainMenuText, nil
}
