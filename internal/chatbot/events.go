package chatbot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"famtreebot/internal/service"
	"famtreebot/internal/session"
)

func (e *Engine) handleEventSelectMember(ctx context.Context, c *conversation) (string, error) {
	memberID, err := strconv.ParseInt(c.body, 10, 64)
	if err != nil {
		return "Invalid ID. Please enter a number.", nil
	}

	tree, _, err := e.access.ActiveTree(ctx, c.user.ID)
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

	c.sess.Event = &session.EventDraft{MemberID: memberID}
	c.sess.State = session.StateEventAction
	return fmt.Sprintf("Selected %s. What would you like to do?\n1. Add Special Date\n2. View Special Dates", member.Name), nil
}

func (e *Engine) handleEventAction(ctx context.Context, c *conversation) (string, error) {
	switch c.body {
	case "1": // Add event — editors and owners only
		_, role, err := e.access.ActiveTree(ctx, c.user.ID)
		if err != nil {
			return "", err
		}
		if !role.CanEdit() {
			c.sess.Reset()
			return "🔒 Only Owners and Editors can add events.\n\n" + mainMenuText, nil
		}
		c.sess.State = session.StateEventType
		return "Enter the Event Type (e.g. Birthday, Anniversary, Death Anniversary):", nil

	case "2": // View events
		events, err := e.family.EventsOf(ctx, c.sess.Event.MemberID)
		if err != nil {
			return "", err
		}

		var reply string
		if len(events) == 0 {
			reply = "No special dates found for this member."
		} else {
			var b strings.Builder
			b.WriteString("*Special Dates:*\n")
			for _, ev := range events {
				fmt.Fprintf(&b, "📅 %s: %s\n", ev.EventDate.Format(dateLayout), ev.EventType)
			}
			reply = strings.TrimRight(b.String(), "\n")
		}

		c.sess.Reset()
		return reply + "\n\n" + mainMenuText, nil

	default:
		return "Invalid choice. Enter 1 or 2.", nil
	}
}

func (e *Engine) handleEventType(ctx context.Context, c *conversation) (string, error) {
	c.sess.Event.EventType = c.body
	c.sess.State = session.StateEventDate
	return "Enter the Date (DD-MM-YYYY):", nil
}

func (e *Engine) handleEventDate(ctx context.Context, c *conversation) (string, error) {
	eventDate, ok := parseDate(c.body)
	if !ok {
		return invalidDateReply, nil
	}

	draft := c.sess.Event
	if _, err := e.family.AddEvent(ctx, draft.MemberID, draft.EventType, eventDate); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.sess.Reset()
			return "Member not found in your tree.", nil
		}
		return "", err
	}

	reply := fmt.Sprintf("✅ Added %s on %s!", draft.EventType, eventDate.Format(dateLayout))
	c.sess.Reset()
	return reply + "\n\n" + mainMenuText, nil
}
