package scheduling

import (
	"context"
	"errors"
	"testing"

	"github.com/example/team-portal/internal/availability"
	"github.com/example/team-portal/internal/identity"
	"github.com/example/team-portal/internal/notify"
	"github.com/example/team-portal/internal/records"
	"github.com/example/team-portal/internal/store/memory"
	"github.com/example/team-portal/internal/testfixtures"
	"github.com/example/team-portal/internal/timegrid"
)

func newTestService(t *testing.T, policy OrganizerPolicy) (*Service, *memory.Store, *testfixtures.Clock) {
	t.Helper()
	s := memory.New(memory.WithIDGenerator(testfixtures.NewIDGenerator("doc").NextFunc()))
	t.Cleanup(s.Close)
	clock := testfixtures.NewClock(testfixtures.ReferenceTime())
	svc := NewService(s, notify.NewStoreDispatcher(s, nil, clock.NowFunc()), policy, clock.NowFunc(), nil)
	return svc, s, clock
}

func seedRoom(t *testing.T, s *memory.Store, room records.Room) string {
	t.Helper()
	id, err := s.Create(context.Background(), records.CollectionRooms, room.EncodeFields())
	if err != nil {
		t.Fatalf("seed room: %v", err)
	}
	return id
}

func seedUser(t *testing.T, s *memory.Store, user records.User) string {
	t.Helper()
	id, err := s.Create(context.Background(), records.CollectionUsers, user.EncodeFields())
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return id
}

func seedMeeting(t *testing.T, s *memory.Store, meeting records.Meeting) string {
	t.Helper()
	id, err := s.Create(context.Background(), records.CollectionMeetings, meeting.EncodeFields())
	if err != nil {
		t.Fatalf("seed meeting: %v", err)
	}
	return id
}

func actorOf(user records.User) identity.User {
	return identity.User{ID: user.ID, Name: user.Name, AvatarURL: user.AvatarURL, Admin: user.Admin}
}

func validDraft(roomID string) Draft {
	return Draft{
		Title:  "Sprint Review",
		Type:   records.MeetingInPerson,
		RoomID: roomID,
		Date:   testfixtures.ReferenceDate(),
		Start:  timegrid.TimeAt(10, 0),
		End:    timegrid.TimeAt(11, 0),
		Participants: []records.Participant{
			{ID: "organizer", Name: "Ada"},
		},
	}
}

func TestCreateMeetingPersists(t *testing.T) {
	t.Parallel()

	svc, s, clock := newTestService(t, OrganizerPolicyRestricted)
	ctx := context.Background()
	room := testfixtures.NewRoom(testfixtures.WithRoomName("Aurora"))
	roomID := seedRoom(t, s, room)

	actor := identity.User{ID: "organizer", Name: "Ada"}
	result, err := svc.CreateMeeting(ctx, actor, validDraft(roomID))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if result.Status != SaveStatusSaved || result.MeetingID == "" {
		t.Fatalf("expected saved result, got %+v", result)
	}

	meeting, err := svc.Meeting(ctx, result.MeetingID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if meeting.Title != "Sprint Review" || meeting.RoomID != roomID || meeting.RoomName != "Aurora" {
		t.Fatalf("unexpected meeting: %+v", meeting)
	}
	if meeting.OrganizerID != "organizer" || meeting.OrganizerName != "Ada" {
		t.Fatalf("expected creator as organizer, got %+v", meeting)
	}
	if !meeting.CreatedAt.Equal(clock.Now()) {
		t.Fatalf("expected injected clock time, got %v", meeting.CreatedAt)
	}
}

func TestCreateMeetingPrependsCreatorAsParticipant(t *testing.T) {
	t.Parallel()

	svc, s, _ := newTestService(t, OrganizerPolicyRestricted)
	ctx := context.Background()
	roomID := seedRoom(t, s, testfixtures.NewRoom())

	draft := validDraft(roomID)
	draft.Participants = []records.Participant{{ID: "u2", Name: "Grace"}}

	actor := identity.User{ID: "organizer", Name: "Ada"}
	result, err := svc.CreateMeeting(ctx, actor, draft)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	meeting, _ := svc.Meeting(ctx, result.MeetingID)
	if len(meeting.Participants) != 2 {
		t.Fatalf("expected creator plus one, got %+v", meeting.Participants)
	}
	if meeting.Participants[0].ID != "organizer" {
		t.Fatalf("expected creator first, got %+v", meeting.Participants)
	}
}

func TestCreateMeetingWithNoParticipantsBooksCreatorAlone(t *testing.T) {
	t.Parallel()

	svc, s, _ := newTestService(t, OrganizerPolicyRestricted)
	ctx := context.Background()
	roomID := seedRoom(t, s, testfixtures.NewRoom())

	draft := validDraft(roomID)
	draft.Participants = nil

	result, err := svc.CreateMeeting(ctx, identity.User{ID: "organizer", Name: "Ada"}, draft)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	meeting, _ := svc.Meeting(ctx, result.MeetingID)
	if len(meeting.Participants) != 1 || meeting.Participants[0].ID != "organizer" {
		t.Fatalf("expected creator as sole participant, got %+v", meeting.Participants)
	}
}

func TestUpdateMeetingRejectsEmptyParticipants(t *testing.T) {
	t.Parallel()

	svc, s, _ := newTestService(t, OrganizerPolicyRestricted)
	ctx := context.Background()
	roomID := seedRoom(t, s, testfixtures.NewRoom())

	actor := identity.User{ID: "organizer", Name: "Ada"}
	created, err := svc.CreateMeeting(ctx, actor, validDraft(roomID))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	draft := validDraft(roomID)
	draft.Participants = nil
	_, err = svc.UpdateMeeting(ctx, actor, created.MeetingID, draft)

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := vErr.FieldErrors["participants"]; !ok {
		t.Fatalf("expected a participants field error, got %v", vErr.FieldErrors)
	}
}

func TestCreateMeetingNotifiesOthers(t *testing.T) {
	t.Parallel()

	svc, s, _ := newTestService(t, OrganizerPolicyRestricted)
	ctx := context.Background()
	roomID := seedRoom(t, s, testfixtures.NewRoom())

	draft := validDraft(roomID)
	draft.Participants = append(draft.Participants, records.Participant{ID: "u2", Name: "Grace"})

	if _, err := svc.CreateMeeting(ctx, identity.User{ID: "organizer", Name: "Ada"}, draft); err != nil {
		t.Fatalf("create: %v", err)
	}

	snapshot, err := s.Query(ctx, records.CollectionNotifications, nil, nil)
	if err != nil {
		t.Fatalf("query notifications: %v", err)
	}
	// Grace only; the creator is never notified about their own action.
	if len(snapshot) != 1 {
		t.Fatalf("expected one notification, got %d", len(snapshot))
	}
	notification := records.DecodeNotification(snapshot[0])
	if notification.RecipientName != "Grace" || notification.Kind != "meeting" {
		t.Fatalf("unexpected notification: %+v", notification)
	}
}

func TestCreateMeetingBlockedByRoomConflict(t *testing.T) {
	t.Parallel()

	svc, s, _ := newTestService(t, OrganizerPolicyRestricted)
	ctx := context.Background()
	room := testfixtures.NewRoom(testfixtures.WithRoomName("Aurora"))
	roomID := seedRoom(t, s, room)
	room.ID = roomID

	seedMeeting(t, s, testfixtures.NewMeeting(
		testfixtures.WithTitle("Standup"),
		testfixtures.InRoom(room),
		testfixtures.Between(timegrid.TimeAt(10, 0), timegrid.TimeAt(11, 0)),
		testfixtures.WithParticipants(testfixtures.NewUser(testfixtures.WithUserID("other"))),
	))

	result, err := svc.CreateMeeting(ctx, identity.User{ID: "organizer", Name: "Ada"}, validDraft(roomID))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if result.Status != SaveStatusBlocked {
		t.Fatalf("expected blocked result, got %+v", result)
	}
	if len(result.HardConflicts) == 0 {
		t.Fatal("expected hard conflict descriptions")
	}

	// Nothing was persisted.
	snapshot, _ := s.Query(ctx, records.CollectionMeetings, nil, nil)
	if len(snapshot) != 1 {
		t.Fatalf("blocked save must not persist, found %d meetings", len(snapshot))
	}
}

func TestUpdateMeetingIgnoresItsOwnBooking(t *testing.T) {
	t.Parallel()

	svc, s, _ := newTestService(t, OrganizerPolicyRestricted)
	ctx := context.Background()
	room := testfixtures.NewRoom(testfixtures.WithRoomName("Aurora"))
	roomID := seedRoom(t, s, room)
	room.ID = roomID

	actor := identity.User{ID: "organizer", Name: "Ada"}
	result, err := svc.CreateMeeting(ctx, actor, validDraft(roomID))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Re-save the identical slot: the meeting must not conflict with itself.
	update := validDraft(roomID)
	update.Title = "Sprint Review (renamed)"
	saved, err := svc.UpdateMeeting(ctx, actor, result.MeetingID, update)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if saved.Status != SaveStatusSaved {
		t.Fatalf("expected save to pass, got %+v", saved)
	}

	meeting, _ := svc.Meeting(ctx, result.MeetingID)
	if meeting.Title != "Sprint Review (renamed)" {
		t.Fatalf("update not applied: %+v", meeting)
	}
}

func TestCreateMeetingValidation(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t, OrganizerPolicyRestricted)
	ctx := context.Background()

	draft := Draft{
		Type:  records.MeetingInPerson,
		Start: timegrid.TimeAt(11, 0),
		End:   timegrid.TimeAt(10, 0),
	}
	_, err := svc.CreateMeeting(ctx, identity.User{ID: "u1", Name: "Ada"}, draft)

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	for _, field := range []string{"title", "date", "time", "room_id"} {
		if _, ok := vErr.FieldErrors[field]; !ok {
			t.Errorf("expected field error for %s, got %v", field, vErr.FieldErrors)
		}
	}
}

func TestCreateMeetingRejectsInactiveRoom(t *testing.T) {
	t.Parallel()

	svc, s, _ := newTestService(t, OrganizerPolicyRestricted)
	ctx := context.Background()
	roomID := seedRoom(t, s, testfixtures.NewRoom(testfixtures.Inactive()))

	_, err := svc.CreateMeeting(ctx, identity.User{ID: "u1", Name: "Ada"}, validDraft(roomID))
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := vErr.FieldErrors["room_id"]; !ok {
		t.Fatalf("expected room_id error, got %v", vErr.FieldErrors)
	}
}

func TestUpdateMeetingMayKeepInactiveRoom(t *testing.T) {
	t.Parallel()

	svc, s, _ := newTestService(t, OrganizerPolicyRestricted)
	ctx := context.Background()
	room := testfixtures.NewRoom(testfixtures.WithRoomName("Aurora"))
	roomID := seedRoom(t, s, room)
	room.ID = roomID

	actor := identity.User{ID: "organizer", Name: "Ada"}
	result, err := svc.CreateMeeting(ctx, actor, validDraft(roomID))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Retire the room, then edit the meeting without changing it.
	if err := s.Update(ctx, records.CollectionRooms, roomID, map[string]any{"active": false}); err != nil {
		t.Fatalf("retire room: %v", err)
	}

	update := validDraft(roomID)
	update.Notes = "still in the same room"
	saved, err := svc.UpdateMeeting(ctx, actor, result.MeetingID, update)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if saved.Status != SaveStatusSaved {
		t.Fatalf("keeping a retired room must be allowed, got %+v", saved)
	}
}

func TestUpdateMeetingKeepsNameOfVanishedRoom(t *testing.T) {
	t.Parallel()

	svc, s, _ := newTestService(t, OrganizerPolicyRestricted)
	ctx := context.Background()
	room := testfixtures.NewRoom(testfixtures.WithRoomName("Aurora"))
	roomID := seedRoom(t, s, room)
	room.ID = roomID

	actor := identity.User{ID: "organizer", Name: "Ada"}
	result, err := svc.CreateMeeting(ctx, actor, validDraft(roomID))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// The room record disappears entirely; the meeting still renders with
	// its stored name and can be edited keeping the room.
	if err := s.Delete(ctx, records.CollectionRooms, roomID); err != nil {
		t.Fatalf("delete room: %v", err)
	}

	update := validDraft(roomID)
	update.Title = "Renamed"
	saved, err := svc.UpdateMeeting(ctx, actor, result.MeetingID, update)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if saved.Status != SaveStatusSaved {
		t.Fatalf("expected save to pass, got %+v", saved)
	}
	meeting, _ := svc.Meeting(ctx, result.MeetingID)
	if meeting.RoomName != "Aurora" {
		t.Fatalf("expected stored room name to survive, got %q", meeting.RoomName)
	}
}

func TestSoftWarningsDoNotBlockSave(t *testing.T) {
	t.Parallel()

	svc, s, _ := newTestService(t, OrganizerPolicyRestricted)
	ctx := context.Background()
	roomID := seedRoom(t, s, testfixtures.NewRoom())

	// The organizer declares availability that excludes the slot.
	seedUser(t, s, records.User{
		Name:   "Ada",
		Email:  "ada@example.com",
		Active: true,
		Availability: availability.Profile{
			Weekly: availability.WeeklySchedule{
				timegrid.Monday: {Active: true, Start: timegrid.TimeAt(13, 0), End: timegrid.TimeAt(17, 0)},
			},
		},
	})

	draft := validDraft(roomID)
	users, err := svc.ActiveUsers(ctx)
	if err != nil {
		t.Fatalf("users: %v", err)
	}
	draft.Participants = []records.Participant{{ID: users[0].ID, Name: "Ada"}}

	result, err := svc.CreateMeeting(ctx, identity.User{ID: users[0].ID, Name: "Ada"}, draft)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if result.Status != SaveStatusSaved {
		t.Fatalf("soft warnings must not block, got %+v", result)
	}
	if len(result.SoftWarnings) != 1 {
		t.Fatalf("expected one soft warning, got %v", result.SoftWarnings)
	}
}

func TestOrganizerPolicyRestricted(t *testing.T) {
	t.Parallel()

	svc, s, _ := newTestService(t, OrganizerPolicyRestricted)
	ctx := context.Background()
	roomID := seedRoom(t, s, testfixtures.NewRoom())

	organizer := identity.User{ID: "organizer", Name: "Ada"}
	result, err := svc.CreateMeeting(ctx, organizer, validDraft(roomID))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Another participant edits without requesting reassignment: the stored
	// organizer survives.
	other := identity.User{ID: "u2", Name: "Grace"}
	update := validDraft(roomID)
	update.Notes = "edited by Grace"
	if _, err := svc.UpdateMeeting(ctx, other, result.MeetingID, update); err != nil {
		t.Fatalf("update: %v", err)
	}
	meeting, _ := svc.Meeting(ctx, result.MeetingID)
	if meeting.OrganizerID != "organizer" {
		t.Fatalf("expected organizer to survive edit, got %+v", meeting)
	}

	// A reassignment request from a non-organizer non-admin is rejected.
	update.OrganizerID = "u2"
	update.OrganizerName = "Grace"
	if _, err := svc.UpdateMeeting(ctx, other, result.MeetingID, update); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	// The organizer may hand the meeting over.
	if _, err := svc.UpdateMeeting(ctx, organizer, result.MeetingID, update); err != nil {
		t.Fatalf("handover: %v", err)
	}
	meeting, _ = svc.Meeting(ctx, result.MeetingID)
	if meeting.OrganizerID != "u2" || meeting.OrganizerName != "Grace" {
		t.Fatalf("expected handover to u2, got %+v", meeting)
	}
}

func TestOrganizerPolicyLastWriter(t *testing.T) {
	t.Parallel()

	svc, s, _ := newTestService(t, OrganizerPolicyLastWriter)
	ctx := context.Background()
	roomID := seedRoom(t, s, testfixtures.NewRoom())

	result, err := svc.CreateMeeting(ctx, identity.User{ID: "organizer", Name: "Ada"}, validDraft(roomID))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	update := validDraft(roomID)
	update.Notes = "edited"
	if _, err := svc.UpdateMeeting(ctx, identity.User{ID: "u2", Name: "Grace"}, result.MeetingID, update); err != nil {
		t.Fatalf("update: %v", err)
	}
	meeting, _ := svc.Meeting(ctx, result.MeetingID)
	if meeting.OrganizerID != "u2" {
		t.Fatalf("last-writer policy should stamp the acting user, got %+v", meeting)
	}
}

func TestDeleteMeetingRequiresConfirmation(t *testing.T) {
	t.Parallel()

	svc, s, _ := newTestService(t, OrganizerPolicyRestricted)
	ctx := context.Background()
	meetingID := seedMeeting(t, s, testfixtures.NewMeeting())
	actor := identity.User{ID: "u1", Name: "Ada"}

	err := svc.DeleteMeeting(ctx, actor, meetingID, func(string) bool { return false })
	if !errors.Is(err, ErrDeleteNotConfirmed) {
		t.Fatalf("expected ErrDeleteNotConfirmed, got %v", err)
	}
	if err := svc.DeleteMeeting(ctx, actor, meetingID, nil); !errors.Is(err, ErrDeleteNotConfirmed) {
		t.Fatalf("expected ErrDeleteNotConfirmed for nil confirm, got %v", err)
	}

	var confirmedTitle string
	err = svc.DeleteMeeting(ctx, actor, meetingID, func(title string) bool {
		confirmedTitle = title
		return true
	})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if confirmedTitle == "" {
		t.Fatal("confirm callback should receive the meeting title")
	}
	if _, err := svc.Meeting(ctx, meetingID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected meeting gone, got %v", err)
	}
}

func TestDeleteMeetingNotFound(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t, OrganizerPolicyRestricted)
	err := svc.DeleteMeeting(context.Background(), identity.User{ID: "u1"}, "missing", func(string) bool { return true })
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateAvailabilityAuthorization(t *testing.T) {
	t.Parallel()

	svc, s, _ := newTestService(t, OrganizerPolicyRestricted)
	ctx := context.Background()
	userID := seedUser(t, s, testfixtures.NewUser())

	profile := availability.Profile{
		Weekly: availability.WeeklySchedule{
			timegrid.Monday: {Active: true, Start: timegrid.TimeAt(9, 0), End: timegrid.TimeAt(17, 0)},
		},
	}

	if err := svc.UpdateAvailability(ctx, identity.User{ID: "someone-else"}, userID, profile); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if err := svc.UpdateAvailability(ctx, identity.User{ID: userID}, userID, profile); err != nil {
		t.Fatalf("self update: %v", err)
	}
	if err := svc.UpdateAvailability(ctx, identity.User{ID: "admin", Admin: true}, userID, profile); err != nil {
		t.Fatalf("admin update: %v", err)
	}

	users, err := svc.ActiveUsers(ctx)
	if err != nil {
		t.Fatalf("users: %v", err)
	}
	if len(users[0].Availability.Weekly) != 1 {
		t.Fatalf("profile not stored: %+v", users[0].Availability)
	}
}

func TestLoadWeekBuildsPlacements(t *testing.T) {
	t.Parallel()

	svc, s, _ := newTestService(t, OrganizerPolicyRestricted)
	ctx := context.Background()
	monday := testfixtures.ReferenceDate()

	a := seedMeeting(t, s, testfixtures.NewMeeting(
		testfixtures.On(monday),
		testfixtures.Between(timegrid.TimeAt(9, 0), timegrid.TimeAt(10, 0)),
	))
	b := seedMeeting(t, s, testfixtures.NewMeeting(
		testfixtures.On(monday),
		testfixtures.Between(timegrid.TimeAt(9, 30), timegrid.TimeAt(10, 30)),
	))
	seedMeeting(t, s, testfixtures.NewMeeting(
		testfixtures.On(monday.AddDays(2)),
		testfixtures.Between(timegrid.TimeAt(14, 0), timegrid.TimeAt(15, 0)),
	))
	// A meeting outside the week never shows up.
	seedMeeting(t, s, testfixtures.NewMeeting(testfixtures.On(monday.AddDays(10))))

	view, err := svc.LoadWeek(ctx, monday.AddDays(3))
	if err != nil {
		t.Fatalf("load week: %v", err)
	}
	if view.WeekStart != monday {
		t.Fatalf("expected week start %s, got %s", monday, view.WeekStart)
	}
	if len(view.Days[0].Meetings) != 2 {
		t.Fatalf("expected two meetings on Monday, got %d", len(view.Days[0].Meetings))
	}
	if len(view.Days[2].Meetings) != 1 {
		t.Fatalf("expected one meeting on Wednesday, got %d", len(view.Days[2].Meetings))
	}
	for _, day := range view.Days[3:] {
		if len(day.Meetings) != 0 {
			t.Fatalf("unexpected meetings on %s", day.Date)
		}
	}

	pa, pb := view.Days[0].Placements[a], view.Days[0].Placements[b]
	if pa.TotalColumns != 2 || pb.TotalColumns != 2 || pa.Column == pb.Column {
		t.Fatalf("expected the overlapping pair split into 2 columns, got %+v / %+v", pa, pb)
	}

	// Meetings are sorted by start time within the day.
	if view.Days[0].Meetings[0].ID != a {
		t.Fatalf("expected start-time order, got %+v", view.Days[0].Meetings)
	}
}

func TestLoadWeekSkipsMalformedRecords(t *testing.T) {
	t.Parallel()

	svc, s, _ := newTestService(t, OrganizerPolicyRestricted)
	ctx := context.Background()
	monday := testfixtures.ReferenceDate()

	seedMeeting(t, s, testfixtures.NewMeeting(testfixtures.On(monday)))
	if _, err := s.Create(ctx, records.CollectionMeetings, map[string]any{
		"title": "damaged",
		"date":  monday.String(),
	}); err != nil {
		t.Fatalf("seed damaged: %v", err)
	}

	view, err := svc.LoadWeek(ctx, monday)
	if err != nil {
		t.Fatalf("load week: %v", err)
	}
	if len(view.Days[0].Meetings) != 1 {
		t.Fatalf("damaged record should be skipped, got %d meetings", len(view.Days[0].Meetings))
	}
}

func TestCheckDraftDoesNotPersist(t *testing.T) {
	t.Parallel()

	svc, s, _ := newTestService(t, OrganizerPolicyRestricted)
	ctx := context.Background()
	room := testfixtures.NewRoom(testfixtures.WithRoomName("Aurora"))
	roomID := seedRoom(t, s, room)
	room.ID = roomID

	seedMeeting(t, s, testfixtures.NewMeeting(
		testfixtures.InRoom(room),
		testfixtures.Between(timegrid.TimeAt(10, 0), timegrid.TimeAt(11, 0)),
	))

	result, err := svc.CheckDraft(ctx, validDraft(roomID), "")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !result.HasHard() {
		t.Fatal("expected hard conflict from the check")
	}

	snapshot, _ := s.Query(ctx, records.CollectionMeetings, nil, nil)
	if len(snapshot) != 1 {
		t.Fatalf("check must not write, found %d meetings", len(snapshot))
	}
}
