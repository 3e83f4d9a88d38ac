package chatbot

import (
	"context"
	"fmt"
	"strings"

	"famtreebot/internal/models"
	"famtreebot/internal/render"
	"famtreebot/internal/session"
)

const mainMenuText = "🌳 *Family Tree Bot* 🌳\n\n" +
	"1. 👁 View Tree\n" +
	"2. ➕ Add Member\n" +
	"3. ✏️ Edit Member\n" +
	"4. 📤 Share Tree\n" +
	"5. 🔄 Transfer Ownership\n" +
	"6. 🗑 Delete Tree\n" +
	"7. ℹ️ Help\n" +
	"8. 📅 Manage Events"

func (e *Engine) handleMainMenu(ctx context.Context, c *conversation) (string, error) {
	c.sess.State = session.StateMainMenu

	tree, role, err := e.access.ActiveTree(ctx, c.user.ID)
	if err != nil {
		return "", err
	}

	switch c.body {
	case "1": // View tree
		if tree == nil {
			return "You don't have a tree yet. Select 'Add Member' to start!", nil
		}
		members, err := e.family.MembersOf(ctx, tree.ID)
		if err != nil {
			return "", err
		}
		relationships, err := e.family.RelationshipsOf(ctx, tree.ID)
		if err != nil {
			return "", err
		}
		return render.Tree(members, relationships), nil

	case "2": // Add member; creates the tree lazily on first use
		if tree != nil && !role.CanEdit() {
			return "🔒 You are a Viewer. You cannot add members.", nil
		}
		if tree == nil {
			if _, err := e.family.CreateTree(ctx, c.user); err != nil {
				return "", err
			}
		}
		c.sess.AddMember = &session.AddMemberDraft{}
		c.sess.State = session.StateAddMemberName
		return "Enter the name of the new member:", nil

	case "3": // Edit member
		if tree == nil {
			return "No tree found.", nil
		}
		if !role.CanEdit() {
			return "🔒 You are a Viewer. You cannot edit members.", nil
		}
		members, err := e.family.MembersOf(ctx, tree.ID)
		if err != nil {
			return "", err
		}
		if len(members) == 0 {
			return "No members to edit.", nil
		}
		var b strings.Builder
		b.WriteString("Enter the ID of the member to edit:\n")
		for _, m := range members {
			fmt.Fprintf(&b, "%d. %s\n", m.ID, m.Name)
		}
		c.sess.State = session.StateEditSelectMember
		return b.String(), nil

	case "4": // Share tree
		if tree == nil {
			return "You do not own a tree to share.", nil
		}
		if role != models.RoleOwner {
			return "🔒 Only the Owner can share the tree.", nil
		}
		c.sess.State = session.StateShareEnterPhone
		return "Enter the phone number to share with (e.g. +1234567890):", nil

	case "5": // Transfer ownership
		if tree == nil {
			return "You do not own a tree.", nil
		}
		if role != models.RoleOwner {
			return "🔒 Only the Owner can transfer ownership.", nil
		}
		c.sess.State = session.StateTransferEnterPhone
		return "Enter the phone number of the new owner:", nil

	case "6": // Delete tree
		if tree == nil {
			return "You do not own a tree.", nil
		}
		if role != models.RoleOwner {
			return "🔒 Only the Owner can delete the tree.", nil
		}
		c.sess.State = session.StateDeleteConfirm
		return "Are you sure you want to delete your tree? This cannot be undone. Reply 'yes' to confirm.", nil

	case "7": // Help
		return "Send 'reset' anytime to return to the main menu.", nil

	case "8": // Manage events
		if tree == nil {
			return "No tree found.", nil
		}
		members, err := e.family.MembersOf(ctx, tree.ID)
		if err != nil {
			return "", err
		}
		if len(members) == 0 {
			return "No members found. Add members first.", nil
		}
		var b strings.Builder
		b.WriteString("Select a member to manage events for:\n")
		for _, m := range members {
			fmt.Fprintf(&b, "%d. %s\n", m.ID, m.Name)
		}
		c.sess.State = session.StateEventSelectMember
		return b.String(), nil
	}

	switch strings.ToLower(c.body) {
	case "hi", "hello", "menu", "start":
		return mainMenuText, nil
	}

	return "Invalid option. Send 'menu' to see options.", nil
}
