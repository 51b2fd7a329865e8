package scheduling

import (
	"context"

	"github.com/example/team-portal/internal/records"
	"github.com/example/team-portal/internal/store"
	"github.com/example/team-portal/internal/timegrid"
)

// WeekWatcher is the orchestrator's live state container for one week. It
// owns three store subscriptions (meetings in range, active rooms, active
// users), rebuilds the WeekView whenever any of them pushes a snapshot, and
// emits the result. Consumers re-render from emitted views; edit sessions
// are separate objects and keep their in-progress drafts across updates.
type WeekWatcher struct {
	updates chan WeekView
	cancel  context.CancelFunc
}

// WatchWeek subscribes to the Monday-start week containing the anchor date.
// The first view arrives promptly; the watcher stops when ctx is cancelled
// or Close is called. Intermediate views are coalesced so consumers always
// render the latest state.
func (s *Service) WatchWeek(ctx context.Context, anchor timegrid.Date) (*WeekWatcher, error) {
	week := timegrid.WeekOf(anchor)
	ctx, cancel := context.WithCancel(ctx)

	meetingsSub, err := s.store.Subscribe(ctx, records.CollectionMeetings, []store.Filter{
		{Field: "date", Op: store.OpGte, Value: week[0].String()},
		{Field: "date", Op: store.OpLte, Value: week[6].String()},
	})
	if err != nil {
		cancel()
		return nil, err
	}
	roomsSub, err := s.store.Subscribe(ctx, records.CollectionRooms,
		[]store.Filter{{Field: "active", Op: store.OpEq, Value: true}})
	if err != nil {
		meetingsSub.Close()
		cancel()
		return nil, err
	}
	usersSub, err := s.store.Subscribe(ctx, records.CollectionUsers,
		[]store.Filter{{Field: "active", Op: store.OpEq, Value: true}})
	if err != nil {
		meetingsSub.Close()
		roomsSub.Close()
		cancel()
		return nil, err
	}

	watcher := &WeekWatcher{
		updates: make(chan WeekView, 1),
		cancel:  cancel,
	}

	go s.runWatcher(ctx, week[0], watcher, meetingsSub, roomsSub, usersSub)
	return watcher, nil
}

// Updates returns the channel of rebuilt week views. It is closed when the
// watcher stops.
func (w *WeekWatcher) Updates() <-chan WeekView { return w.updates }

// Close stops the watcher and its subscriptions.
func (w *WeekWatcher) Close() { w.cancel() }

func (s *Service) runWatcher(ctx context.Context, weekStart timegrid.Date, watcher *WeekWatcher, meetingsSub, roomsSub, usersSub store.Subscription) {
	defer close(watcher.updates)
	defer meetingsSub.Close()
	defer roomsSub.Close()
	defer usersSub.Close()

	var (
		meetings []records.Meeting
		rooms    []records.Room
		users    []records.User
	)
	meetingsCh := meetingsSub.Updates()
	roomsCh := roomsSub.Updates()
	usersCh := usersSub.Updates()

	// Every subscription delivers its current snapshot promptly. Collect
	// all three before the first emit, so the initial view reflects the
	// records that already exist instead of a partial state.
	for pending := 3; pending > 0; pending-- {
		select {
		case <-ctx.Done():
			return
		case snapshot, ok := <-meetingsCh:
			if !ok {
				return
			}
			meetings = s.decodeMeetings(ctx, snapshot)
			meetingsCh = nil
		case snapshot, ok := <-roomsCh:
			if !ok {
				return
			}
			rooms = records.DecodeRooms(snapshot)
			roomsCh = nil
		case snapshot, ok := <-usersCh:
			if !ok {
				return
			}
			users = records.DecodeUsers(snapshot)
			usersCh = nil
		}
	}
	meetingsCh = meetingsSub.Updates()
	roomsCh = roomsSub.Updates()
	usersCh = usersSub.Updates()

	view := s.buildWeekView(ctx, weekStart, meetings, rooms, users)
	deliverView(watcher.updates, view)

	for {
		select {
		case <-ctx.Done():
			return
		case snapshot, ok := <-meetingsCh:
			if !ok {
				return
			}
			meetings = s.decodeMeetings(ctx, snapshot)
		case snapshot, ok := <-roomsCh:
			if !ok {
				return
			}
			rooms = records.DecodeRooms(snapshot)
		case snapshot, ok := <-usersCh:
			if !ok {
				return
			}
			users = records.DecodeUsers(snapshot)
		}

		view := s.buildWeekView(ctx, weekStart, meetings, rooms, users)
		deliverView(watcher.updates, view)
	}
}

// deliverView replaces any pending view so consumers always read the latest
// one.
func deliverView(ch chan WeekView, view WeekView) {
	for {
		select {
		case ch <- view:
			return
		default:
			select {
			case <-ch:
			default:
			}
		}
	}
}
