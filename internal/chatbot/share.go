package chatbot

import (
	"context"
	"fmt"
	"strings"

	"famtreebot/internal/models"
)

func (e *Engine) handleShareEnterPhone(ctx context.Context, c *conversation) (string, error) {
	phone := c.body
	if !strings.HasPrefix(phone, "+") {
		phone = "+" + phone
	}

	target, err := e.family.EnsureUser(ctx, phone)
	if err != nil {
		return "", err
	}

	tree, role, err := e.access.ActiveTree(ctx, c.user.ID)
	if err != nil {
		return "", err
	}

	var reply string
	if tree != nil && role == models.RoleOwner {
		if err := e.access.GrantViewer(ctx, tree.ID, target.ID); err != nil {
			return "", err
		}
		reply = fmt.Sprintf("✅ Access granted to %s as Viewer.", phone)
	} else {
		reply = "You do not have permission to share this tree."
	}

	c.sess.Reset()
	return reply + "\n\n" + mainMenuText, nil
}

func (e *Engine) handleTransferEnterPhone(ctx context.Context, c *conversation) (string, error) {
	phone := c.body
	if !strings.HasPrefix(phone, "+") {
		phone = "+" + phone
	}

	target, err := e.family.EnsureUser(ctx, phone)
	if err != nil {
		return "", err
	}

	tree, role, err := e.access.ActiveTree(ctx, c.user.ID)
	if err != nil {
		return "", err
	}

	var reply string
	switch {
	case tree == nil || role != models.RoleOwner:
		reply = "You do not have permission to transfer ownership."
	case target.ID == c.user.ID:
		reply = "You already own this tree."
	default:
		if err := e.access.TransferOwnership(ctx, tree.ID, c.user.ID, target.ID); err != nil {
			return "", err
		}
		reply = fmt.Sprintf("✅ Ownership transferred to %s. You are now an Editor.", phone)
	}

	c.sess.Reset()
	return reply + "\n\n" + mainMenuText, nil
}

func (e *Engine) handleDeleteConfirm(ctx context.Context, c *conversation) (string, error) {
	var reply string
	if strings.EqualFold(c.body, "yes") {
		tree, role, err := e.access.ActiveTree(ctx, c.user.ID)
		if err != nil {
			return "", err
		}
		if tree != nil && role == models.RoleOwner {
			if err := e.family.DeleteTree(ctx, tree.ID); err != nil {
				return "", err
			}
			reply = "✅ Tree deleted successfully."
		} else {
			reply = "Permission denied or tree not found."
		}
	} else {
		reply = "Deletion cancelled."
	}

	c.sess.Reset()
	return reply + "\n\n" + mainMenuText, nil
}
