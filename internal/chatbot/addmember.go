package chatbot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"famtreebot/internal/models"
	"famtreebot/internal/service"
	"famtreebot/internal/session"
)

// Relation of the new member to the chosen relative.
const (
	relationParent = "parent"
	relationChild  = "child"
	relationSpouse = "spouse"
)

func (e *Engine) handleAddMemberName(ctx context.Context, c *conversation) (string, error) {
	if c.sess.AddMember == nil {
		c.sess.AddMember = &session.AddMemberDraft{}
	}
	c.sess.AddMember.Name = c.body
	c.sess.State = session.StateAddMemberDOB
	return "Enter Date of Birth (DD-MM-YYYY):", nil
}

func (e *Engine) handleAddMemberDOB(ctx context.Context, c *conversation) (string, error) {
	dob, ok := parseDate(c.body)
	if !ok {
		return invalidDateReply, nil
	}
	c.sess.AddMember.DOB = &dob
	c.sess.State = session.StateAddMemberGender
	return "Enter Gender (Male/Female/Other):", nil
}

func (e *Engine) handleAddMemberGender(ctx context.Context, c *conversation) (string, error) {
	gender, ok := parseGender(c.body)
	if !ok {
		return invalidGenderReply, nil
	}
	c.sess.AddMember.Gender = gender
	c.sess.State = session.StateAddMemberPhone
	return "Enter Phone Number (optional, send 'skip' to skip):", nil
}

func (e *Engine) handleAddMemberPhone(ctx context.Context, c *conversation) (string, error) {
	if !strings.EqualFold(c.body, "skip") {
		c.sess.AddMember.Phone = c.body
	}

	tree, _, err := e.access.ActiveTree(ctx, c.user.ID)
	if err != nil {
		return "", err
	}

	var members []*models.Member
	if tree != nil {
		if members, err = e.family.MembersOf(ctx, tree.ID); err != nil {
			return "", err
		}
	}

	// First member of a tree is the root: generation 1, no relationship.
	if tree == nil || len(members) == 0 {
		return e.finalizeAddMember(ctx, c, 1, "")
	}

	var b strings.Builder
	b.WriteString("Who is this member related to? Enter the ID of the relative:\n")
	for _, m := range members {
		fmt.Fprintf(&b, "%d. %s (%d)\n", m.ID, m.Name, m.GenerationLevel)
	}
	c.sess.State = session.StateAddMemberRelation
	return b.String(), nil
}

func (e *Engine) handleAddMemberRelation(ctx context.Context, c *conversation) (string, error) {
	relativeID, err := strconv.ParseInt(c.body, 10, 64)
	if err != nil {
		return "Invalid ID. Please enter a number.", nil
	}
	c.sess.AddMember.RelativeID = relativeID
	c.sess.State = session.StateAddMemberRelationType
	return "Is the new member a (1) Parent, (2) Child, or (3) Spouse of the selected relative?", nil
}

func (e *Engine) handleAddMemberRelationType(ctx context.Context, c *conversation) (string, error) {
	choice, err := strconv.Atoi(c.body)
	if err != nil {
		return "Invalid input. Please enter a number.", nil
	}

	relative, err := e.family.GetMember(ctx, c.sess.AddMember.RelativeID)
	if errors.Is(err, service.ErrNotFound) {
		c.sess.Reset()
		return "Relative not found. Aborting.", nil
	}
	if err != nil {
		return "", err
	}

	// The id must name a member of the caller's own tree; an id from another
	// tree aborts the same way a missing one does.
	tree, _, err := e.access.ActiveTree(ctx, c.user.ID)
	if err != nil {
		return "", err
	}
	if tree == nil || relative.TreeID != tree.ID {
		c.sess.Reset()
		return "Relative not found. Aborting.", nil
	}

	var generation int
	var relation string
	switch choice {
	case 1: // New member is a parent of the relative
		generation = relative.GenerationLevel - 1
		relation = relationParent
	case 2: // New member is a child of the relative
		generation = relative.GenerationLevel + 1
		relation = relationChild
	case 3: // Spouse shares the relative's generation, no edge
		generation = relative.GenerationLevel
		relation = relationSpouse
	default:
		return "Invalid choice. Enter 1, 2, or 3.", nil
	}

	return e.finalizeAddMember(ctx, c, generation, relation)
}

// finalizeAddMember creates the member from the accumulated draft and, for
// parent/child relations, the directed edge.
func (e *Engine) finalizeAddMember(ctx context.Context, c *conversation, generation int, relation string) (string, error) {
	tree, role, err := e.access.ActiveTree(ctx, c.user.ID)
	if err != nil {
		return "", err
	}
	if tree == nil || !role.CanEdit() {
		c.sess.Reset()
		return "Permission denied.", nil
	}

	draft := c.sess.AddMember
	member, err := e.family.CreateMember(ctx, &models.Member{
		TreeID:          tree.ID,
		Name:            draft.Name,
		DOB:             draft.DOB,
		Gender:          draft.Gender,
		GenerationLevel: generation,
		Phone:           draft.Phone,
	})
	if err != nil {
		return "", err
	}

	switch relation {
	case relationChild:
		// Relative is the parent of the new member.
		err = e.family.AddRelationship(ctx, tree.ID, draft.RelativeID, member.ID)
	case relationParent:
		// New member is the parent of the relative.
		err = e.family.AddRelationship(ctx, tree.ID, member.ID, draft.RelativeID)
	}
	if err != nil {
		// The relative vanished between validation and the edge write.
		if errors.Is(err, service.ErrNotFound) {
			c.sess.Reset()
			return "Relative not found. Aborting.", nil
		}
		return "", err
	}

	c.sess.Reset()
	return fmt.Sprintf("✅ Added %s to the tree!\n\n%s", member.Name, mainMenuText), nil
}
