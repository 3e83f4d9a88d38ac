package chatbot

import (
	"context"
	"io"
	"strings"
	"testing"

	"famtreebot/internal/repository/memory"
	"famtreebot/internal/service"
	"famtreebot/internal/session"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	ownerPhone  = "+15550001"
	heirPhone   = "+15550002"
	viewerPhone = "+15550003"
)

func newTestEngine(t *testing.T) (*Engine, *memory.Store) {
	t.Helper()

	l := logrus.New()
	l.SetOutput(io.Discard)

	store := memory.NewStore()
	family := service.NewFamilyService(store.Users(), store.Trees(), store.Members(), store.Events(), l)
	access := service.NewAccessService(store.Trees(), l)
	locks := service.NewLockManager(store.Members(), l)

	return NewEngine(family, access, locks, session.NewMemoryStore(), l), store
}

func send(t *testing.T, e *Engine, from, body string) string {
	t.Helper()
	reply, err := e.HandleMessage(context.Background(), from, body)
	require.NoError(t, err)
	return reply
}

// seedRoot walks the add-member flow for the first member of a fresh tree.
func seedRoot(t *testing.T, e *Engine, from, name string) {
	t.Helper()
	send(t, e, from, "2")
	send(t, e, from, name)
	send(t, e, from, "01-01-1980")
	send(t, e, from, "Male")
	reply := send(t, e, from, "skip")
	require.Contains(t, reply, "✅ Added "+name+" to the tree!")
}

// addRelative walks the add-member flow when the tree already has members and
// returns the final reply.
func addRelative(t *testing.T, e *Engine, from, name, dob, gender, relativeID, relationChoice string) string {
	t.Helper()
	send(t, e, from, "2")
	send(t, e, from, name)
	send(t, e, from, dob)
	send(t, e, from, gender)
	reply := send(t, e, from, "skip")
	require.Contains(t, reply, "Who is this member related to?")
	send(t, e, from, relativeID)
	return send(t, e, from, relationChoice)
}

func TestGreetingShowsMenu(t *testing.T) {
	e, _ := newTestEngine(t)

	for _, greeting := range []string{"Hi", "hello", "menu", "START"} {
		assert.Equal(t, mainMenuText, send(t, e, ownerPhone, greeting))
	}
}

func TestUnknownInputAtMenu(t *testing.T) {
	e, _ := newTestEngine(t)

	reply := send(t, e, ownerPhone, "what is this")
	assert.Equal(t, "Invalid option. Send 'menu' to see options.", reply)
}

func TestViewWithoutTree(t *testing.T) {
	e, _ := newTestEngine(t)

	reply := send(t, e, ownerPhone, "1")
	assert.Equal(t, "You don't have a tree yet. Select 'Add Member' to start!", reply)
}

func TestAddFirstMemberBecomesRoot(t *testing.T) {
	e, _ := newTestEngine(t)

	assert.Equal(t, "Enter the name of the new member:", send(t, e, ownerPhone, "2"))
	assert.Equal(t, "Enter Date of Birth (DD-MM-YYYY):", send(t, e, ownerPhone, "Root"))
	assert.Equal(t, "Enter Gender (Male/Female/Other):", send(t, e, ownerPhone, "01-01-1980"))
	assert.Equal(t, "Enter Phone Number (optional, send 'skip' to skip):", send(t, e, ownerPhone, "Male"))

	reply := send(t, e, ownerPhone, "skip")
	assert.True(t, strings.HasPrefix(reply, "✅ Added Root to the tree!"))

	view := send(t, e, ownerPhone, "1")
	assert.Contains(t, view, "🌳 *Your Family Tree* (1 members)")
	assert.Contains(t, view, "Root (M), Gen 1")
}

func TestAddMemberValidationReprompts(t *testing.T) {
	e, _ := newTestEngine(t)

	send(t, e, ownerPhone, "2")
	send(t, e, ownerPhone, "Root")

	assert.Equal(t, invalidDateReply, send(t, e, ownerPhone, "1980-01-01"))
	assert.Equal(t, "Enter Gender (Male/Female/Other):", send(t, e, ownerPhone, "01-01-1980"))

	assert.Equal(t, invalidGenderReply, send(t, e, ownerPhone, "yes"))
	assert.Equal(t, "Enter Phone Number (optional, send 'skip' to skip):", send(t, e, ownerPhone, "female"))
}

func TestAddChildGeneration(t *testing.T) {
	e, _ := newTestEngine(t)
	seedRoot(t, e, ownerPhone, "Root")

	reply := addRelative(t, e, ownerPhone, "Kid", "05-05-2005", "Female", "1", "2")
	assert.Contains(t, reply, "✅ Added Kid to the tree!")

	view := send(t, e, ownerPhone, "1")
	assert.Contains(t, view, "Root (M), Gen 1")
	assert.Contains(t, view, "└── Kid (F), Gen 2")
}

func TestAddParentGeneration(t *testing.T) {
	e, _ := newTestEngine(t)
	seedRoot(t, e, ownerPhone, "Root")

	reply := addRelative(t, e, ownerPhone, "Elder", "01-01-1950", "Male", "1", "1")
	assert.Contains(t, reply, "✅ Added Elder to the tree!")

	// The new parent sits one generation above the root and becomes the new
	// top of the tree.
	view := send(t, e, ownerPhone, "1")
	assert.Contains(t, view, "Elder (M), Gen 0\n└── Root (M), Gen 1")
}

func TestAddSpouseSharesGenerationWithoutEdge(t *testing.T) {
	e, _ := newTestEngine(t)
	seedRoot(t, e, ownerPhone, "Root")

	reply := addRelative(t, e, ownerPhone, "Wife", "02-02-1982", "Female", "1", "3")
	assert.Contains(t, reply, "✅ Added Wife to the tree!")

	view := send(t, e, ownerPhone, "1")
	assert.Contains(t, view, "Wife (F), Gen 1")
	assert.NotContains(t, view, "── Wife")
}

func TestAddMemberInvalidRelationChoice(t *testing.T) {
	e, _ := newTestEngine(t)
	seedRoot(t, e, ownerPhone, "Root")

	send(t, e, ownerPhone, "2")
	send(t, e, ownerPhone, "Kid")
	send(t, e, ownerPhone, "05-05-2005")
	send(t, e, ownerPhone, "Other")
	send(t, e, ownerPhone, "skip")
	send(t, e, ownerPhone, "1")

	assert.Equal(t, "Invalid choice. Enter 1, 2, or 3.", send(t, e, ownerPhone, "9"))
	// The flow stays parked on the same question.
	reply := send(t, e, ownerPhone, "2")
	assert.Contains(t, reply, "✅ Added Kid to the tree!")
}

func TestAddMemberRelativeFromAnotherTree(t *testing.T) {
	e, store := newTestEngine(t)
	ctx := context.Background()

	seedRoot(t, e, ownerPhone, "RootA")
	seedRoot(t, e, heirPhone, "RootB")

	// The second user names the first user's member id as the relative.
	send(t, e, heirPhone, "2")
	send(t, e, heirPhone, "Kid")
	send(t, e, heirPhone, "05-05-2005")
	send(t, e, heirPhone, "Female")
	send(t, e, heirPhone, "skip")
	send(t, e, heirPhone, "1")
	assert.Equal(t, "Relative not found. Aborting.", send(t, e, heirPhone, "2"))

	// No member was created and the flow is back at the menu, so retrying
	// the same input cannot pile up orphans.
	members, err := store.Members().GetByTree(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, members, 1)

	assert.Equal(t, "Invalid option. Send 'menu' to see options.", send(t, e, heirPhone, "zzz"))
}

func TestResetAbortsFlow(t *testing.T) {
	e, _ := newTestEngine(t)

	send(t, e, ownerPhone, "2")
	assert.Equal(t, mainMenuText, send(t, e, ownerPhone, "reset"))

	// The pending name question is gone; free text lands at the menu again.
	reply := send(t, e, ownerPhone, "Root")
	assert.Equal(t, "Invalid option. Send 'menu' to see options.", reply)
}

func TestResetFromEveryState(t *testing.T) {
	cases := []struct {
		state    session.State
		needRoot bool
		steps    []string
	}{
		{session.StateMainMenu, false, []string{"hi"}},
		{session.StateAddMemberName, false, []string{"2"}},
		{session.StateAddMemberDOB, false, []string{"2", "Root"}},
		{session.StateAddMemberGender, false, []string{"2", "Root", "01-01-1980"}},
		{session.StateAddMemberPhone, false, []string{"2", "Root", "01-01-1980", "Male"}},
		{session.StateAddMemberRelation, true, []string{"2", "Kid", "05-05-2005", "Female", "skip"}},
		{session.StateAddMemberRelationType, true, []string{"2", "Kid", "05-05-2005", "Female", "skip", "1"}},
		{session.StateEditSelectMember, true, []string{"3"}},
		{session.StateEditSelectField, true, []string{"3", "1"}},
		{session.StateEditEnterValue, true, []string{"3", "1", "1"}},
		{session.StateShareEnterPhone, true, []string{"4"}},
		{session.StateTransferEnterPhone, true, []string{"5"}},
		{session.StateDeleteConfirm, true, []string{"6"}},
		{session.StateEventSelectMember, true, []string{"8"}},
		{session.StateEventAction, true, []string{"8", "1"}},
		{session.StateEventType, true, []string{"8", "1", "1"}},
		{session.StateEventDate, true, []string{"8", "1", "1", "Anniversary"}},
	}

	for _, tc := range cases {
		t.Run(string(tc.state), func(t *testing.T) {
			e, _ := newTestEngine(t)
			ctx := context.Background()

			if tc.needRoot {
				seedRoot(t, e, ownerPhone, "Root")
			}
			for _, step := range tc.steps {
				send(t, e, ownerPhone, step)
			}

			stored, err := e.sessions.Get(ctx, ownerPhone)
			require.NoError(t, err)
			require.Equal(t, tc.state, stored.State)

			assert.Equal(t, mainMenuText, send(t, e, ownerPhone, "reset"))

			stored, err = e.sessions.Get(ctx, ownerPhone)
			require.NoError(t, err)
			assert.Equal(t, session.StateMainMenu, stored.State)
			assert.Nil(t, stored.AddMember)
			assert.Nil(t, stored.Edit)
			assert.Nil(t, stored.Event)
		})
	}
}

func TestResetReleasesEditLock(t *testing.T) {
	e, store := newTestEngine(t)
	seedRoot(t, e, ownerPhone, "Root")

	send(t, e, ownerPhone, "3")
	reply := send(t, e, ownerPhone, "1")
	require.Contains(t, reply, "Editing Root.")

	member, err := store.Members().GetByID(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, member.LockedBy)

	assert.Equal(t, mainMenuText, send(t, e, ownerPhone, "RESET"))

	member, err = store.Members().GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Nil(t, member.LockedBy)
}

func TestEditFlowUpdatesMember(t *testing.T) {
	e, _ := newTestEngine(t)
	seedRoot(t, e, ownerPhone, "Root")

	assert.Equal(t, "Enter the ID of the member to edit:\n1. Root\n", send(t, e, ownerPhone, "3"))
	assert.Equal(t, "Editing Root. What do you want to change?\n1. Name\n2. DOB\n3. Gender\n4. Phone", send(t, e, ownerPhone, "1"))
	assert.Equal(t, "Enter new Name:", send(t, e, ownerPhone, "1"))

	reply := send(t, e, ownerPhone, "Renamed")
	assert.True(t, strings.HasPrefix(reply, "✅ Member updated successfully!"))

	view := send(t, e, ownerPhone, "1")
	assert.Contains(t, view, "Renamed (M), Gen 1")
}

func TestEditInvalidDateKeepsLock(t *testing.T) {
	e, store := newTestEngine(t)
	seedRoot(t, e, ownerPhone, "Root")

	send(t, e, ownerPhone, "3")
	send(t, e, ownerPhone, "1")
	send(t, e, ownerPhone, "2")

	assert.Equal(t, invalidDateReply, send(t, e, ownerPhone, "not-a-date"))

	member, err := store.Members().GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.NotNil(t, member.LockedBy)

	reply := send(t, e, ownerPhone, "15-06-1981")
	assert.True(t, strings.HasPrefix(reply, "✅ Member updated successfully!"))

	member, err = store.Members().GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Nil(t, member.LockedBy)
}

func TestEditLockContention(t *testing.T) {
	e, _ := newTestEngine(t)
	seedRoot(t, e, ownerPhone, "Root")

	// Hand ownership to a second user so both sides can edit.
	send(t, e, ownerPhone, "5")
	reply := send(t, e, ownerPhone, heirPhone)
	require.Contains(t, reply, "✅ Ownership transferred to "+heirPhone+". You are now an Editor.")

	send(t, e, ownerPhone, "3")
	require.Contains(t, send(t, e, ownerPhone, "1"), "Editing Root.")

	send(t, e, heirPhone, "3")
	assert.Equal(t, "Member is currently being edited by another user. Try again later.",
		send(t, e, heirPhone, "1"))

	// Finishing the edit releases the lock and unblocks the other user.
	send(t, e, ownerPhone, "1")
	send(t, e, ownerPhone, "Renamed")

	send(t, e, heirPhone, "3")
	assert.Contains(t, send(t, e, heirPhone, "1"), "Editing Renamed.")
}

func TestViewerPermissions(t *testing.T) {
	e, _ := newTestEngine(t)
	seedRoot(t, e, ownerPhone, "Root")

	send(t, e, ownerPhone, "4")
	reply := send(t, e, ownerPhone, viewerPhone)
	require.Contains(t, reply, "✅ Access granted to "+viewerPhone+" as Viewer.")

	view := send(t, e, viewerPhone, "1")
	assert.Contains(t, view, "Root (M), Gen 1")

	assert.Equal(t, "🔒 You are a Viewer. You cannot add members.", send(t, e, viewerPhone, "2"))
	assert.Equal(t, "🔒 You are a Viewer. You cannot edit members.", send(t, e, viewerPhone, "3"))
	assert.Equal(t, "🔒 Only the Owner can share the tree.", send(t, e, viewerPhone, "4"))
	assert.Equal(t, "🔒 Only the Owner can transfer ownership.", send(t, e, viewerPhone, "5"))
	assert.Equal(t, "🔒 Only the Owner can delete the tree.", send(t, e, viewerPhone, "6"))
}

func TestSharePhoneWithoutPlusPrefix(t *testing.T) {
	e, _ := newTestEngine(t)
	seedRoot(t, e, ownerPhone, "Root")

	send(t, e, ownerPhone, "4")
	reply := send(t, e, ownerPhone, "15550003")
	assert.Contains(t, reply, "✅ Access granted to +15550003 as Viewer.")
}

func TestTransferToSelfRejected(t *testing.T) {
	e, _ := newTestEngine(t)
	seedRoot(t, e, ownerPhone, "Root")

	send(t, e, ownerPhone, "5")
	reply := send(t, e, ownerPhone, ownerPhone)
	assert.Contains(t, reply, "You already own this tree.")
}

func TestDeleteTree(t *testing.T) {
	e, _ := newTestEngine(t)
	seedRoot(t, e, ownerPhone, "Root")

	send(t, e, ownerPhone, "6")
	reply := send(t, e, ownerPhone, "no")
	assert.True(t, strings.HasPrefix(reply, "Deletion cancelled."))

	view := send(t, e, ownerPhone, "1")
	assert.Contains(t, view, "Root (M), Gen 1")

	send(t, e, ownerPhone, "6")
	reply = send(t, e, ownerPhone, "yes")
	assert.True(t, strings.HasPrefix(reply, "✅ Tree deleted successfully."))

	assert.Equal(t, "You don't have a tree yet. Select 'Add Member' to start!", send(t, e, ownerPhone, "1"))
}

func TestEventFlow(t *testing.T) {
	e, _ := newTestEngine(t)
	seedRoot(t, e, ownerPhone, "Root")

	assert.Equal(t, "Select a member to manage events for:\n1. Root\n", send(t, e, ownerPhone, "8"))
	assert.Equal(t, "Selected Root. What would you like to do?\n1. Add Special Date\n2. View Special Dates", send(t, e, ownerPhone, "1"))
	assert.Equal(t, "Enter the Event Type (e.g. Birthday, Anniversary, Death Anniversary):", send(t, e, ownerPhone, "1"))
	assert.Equal(t, "Enter the Date (DD-MM-YYYY):", send(t, e, ownerPhone, "Anniversary"))

	reply := send(t, e, ownerPhone, "10-01-1998")
	assert.True(t, strings.HasPrefix(reply, "✅ Added Anniversary on 10-01-1998!"))

	send(t, e, ownerPhone, "8")
	send(t, e, ownerPhone, "1")
	reply = send(t, e, ownerPhone, "2")
	assert.Contains(t, reply, "*Special Dates:*\n📅 10-01-1998: Anniversary")
}

func TestViewerCannotAddEvents(t *testing.T) {
	e, _ := newTestEngine(t)
	seedRoot(t, e, ownerPhone, "Root")

	send(t, e, ownerPhone, "4")
	send(t, e, ownerPhone, viewerPhone)

	send(t, e, viewerPhone, "8")
	send(t, e, viewerPhone, "1")
	reply := send(t, e, viewerPhone, "1")
	assert.True(t, strings.HasPrefix(reply, "🔒 Only Owners and Editors can add events."))
}

func TestIdentityNormalization(t *testing.T) {
	e, _ := newTestEngine(t)

	// The same contact reaches the same tree with or without the transport
	// prefix.
	seedRoot(t, e, "whatsapp:"+ownerPhone, "Root")

	view := send(t, e, ownerPhone, "1")
	assert.Contains(t, view, "Root (M), Gen 1")
}

func TestHandlerFailureLeavesSessionUntouched(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	// A session parked in the events flow without its draft makes the
	// handler panic; the engine must answer gracefully and keep the stored
	// session exactly as it was.
	corrupt := &session.Session{State: session.StateEventAction}
	require.NoError(t, e.sessions.Save(ctx, ownerPhone, corrupt))

	reply := send(t, e, ownerPhone, "2")
	assert.Equal(t, genericErrorReply, reply)

	stored, err := e.sessions.Get(ctx, ownerPhone)
	require.NoError(t, err)
	assert.Equal(t, session.StateEventAction, stored.State)
	assert.Nil(t, stored.Event)
}
