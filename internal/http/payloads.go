package http

import (
	"github.com/example/team-portal/internal/availability"
	"github.com/example/team-portal/internal/records"
	"github.com/example/team-portal/internal/scheduling"
	"github.com/example/team-portal/internal/timegrid"
)

type participantPayload struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

type meetingPayload struct {
	ID            string               `json:"id"`
	Title         string               `json:"title"`
	Description   string               `json:"description,omitempty"`
	Notes         string               `json:"notes,omitempty"`
	Type          string               `json:"type"`
	RoomID        string               `json:"room_id,omitempty"`
	RoomName      string               `json:"room_name,omitempty"`
	Date          string               `json:"date"`
	StartTime     string               `json:"start_time"`
	EndTime       string               `json:"end_time"`
	Participants  []participantPayload `json:"participants"`
	OrganizerID   string               `json:"organizer_id"`
	OrganizerName string               `json:"organizer_name"`
	ConferenceURL string               `json:"conference_url,omitempty"`
}

type placementPayload struct {
	Column       int `json:"column"`
	TotalColumns int `json:"total_columns"`
}

type dayPayload struct {
	Date       string                      `json:"date"`
	Meetings   []meetingPayload            `json:"meetings"`
	Placements map[string]placementPayload `json:"placements"`
}

type roomPayload struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Capacity    int    `json:"capacity,omitempty"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
}

type windowPayload struct {
	Active bool   `json:"active"`
	Start  string `json:"start"`
	End    string `json:"end"`
}

type exceptionPayload struct {
	Date      string `json:"date"`
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

type availabilityPayload struct {
	Weekly     map[string]windowPayload `json:"weekly,omitempty"`
	Exceptions []exceptionPayload       `json:"exceptions,omitempty"`
}

type userPayload struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	AvatarURL    string              `json:"avatar_url,omitempty"`
	Admin        bool                `json:"admin,omitempty"`
	Availability availabilityPayload `json:"availability"`
}

type weekPayload struct {
	WeekStart string        `json:"week_start"`
	Days      []dayPayload  `json:"days"`
	Rooms     []roomPayload `json:"rooms"`
	Users     []userPayload `json:"users"`
}

type draftRequest struct {
	Title         string               `json:"title"`
	Description   string               `json:"description"`
	Notes         string               `json:"notes"`
	ConferenceURL string               `json:"conference_url"`
	Type          string               `json:"type"`
	RoomID        string               `json:"room_id"`
	Date          string               `json:"date"`
	StartTime     string               `json:"start_time"`
	EndTime       string               `json:"end_time"`
	Participants  []participantPayload `json:"participants"`
	OrganizerID   string               `json:"organizer_id"`
	OrganizerName string               `json:"organizer_name"`
}

type saveResponse struct {
	ID           string   `json:"id"`
	SoftWarnings []string `json:"soft_warnings,omitempty"`
}

type blockedResponse struct {
	Message       string   `json:"message"`
	HardConflicts []string `json:"hard_conflicts"`
	SoftWarnings  []string `json:"soft_warnings,omitempty"`
}

type checkResponse struct {
	HardConflicts []string `json:"hard_conflicts"`
	SoftWarnings  []string `json:"soft_warnings"`
}

// toDraft converts the request payload into a scheduling draft. Date and
// time parsing failures surface as field level validation issues, matching
// the local-validation contract: nothing reaches the store on bad input.
func (p draftRequest) toDraft() (scheduling.Draft, *scheduling.ValidationError) {
	fieldErrors := map[string]string{}

	date, err := timegrid.ParseDate(p.Date)
	if err != nil {
		fieldErrors["date"] = "expected YYYY-MM-DD"
	}
	start, err := timegrid.ParseTimeOfDay(p.StartTime)
	if err != nil {
		fieldErrors["start_time"] = "expected HH:MM"
	}
	end, err := timegrid.ParseTimeOfDay(p.EndTime)
	if err != nil {
		fieldErrors["end_time"] = "expected HH:MM"
	}
	if len(fieldErrors) > 0 {
		return scheduling.Draft{}, &scheduling.ValidationError{FieldErrors: fieldErrors}
	}

	participants := make([]records.Participant, 0, len(p.Participants))
	for _, participant := range p.Participants {
		participants = append(participants, records.Participant{
			ID:        participant.ID,
			Name:      participant.Name,
			AvatarURL: participant.AvatarURL,
		})
	}

	return scheduling.Draft{
		Title:         p.Title,
		Description:   p.Description,
		Notes:         p.Notes,
		ConferenceURL: p.ConferenceURL,
		Type:          records.MeetingType(p.Type),
		RoomID:        p.RoomID,
		Date:          date,
		Start:         start,
		End:           end,
		Participants:  participants,
		OrganizerID:   p.OrganizerID,
		OrganizerName: p.OrganizerName,
	}, nil
}

func toMeetingPayload(m records.Meeting) meetingPayload {
	participants := make([]participantPayload, 0, len(m.Participants))
	for _, p := range m.Participants {
		participants = append(participants, participantPayload{ID: p.ID, Name: p.Name, AvatarURL: p.AvatarURL})
	}
	return meetingPayload{
		ID:            m.ID,
		Title:         m.Title,
		Description:   m.Description,
		Notes:         m.Notes,
		Type:          string(m.Type),
		RoomID:        m.RoomID,
		RoomName:      m.RoomName,
		Date:          m.Date.String(),
		StartTime:     m.Time.Start.String(),
		EndTime:       m.Time.End.String(),
		Participants:  participants,
		OrganizerID:   m.OrganizerID,
		OrganizerName: m.OrganizerName,
		ConferenceURL: m.ConferenceURL,
	}
}

func toRoomPayload(room records.Room) roomPayload {
	return roomPayload{
		ID:          room.ID,
		Name:        room.Name,
		Capacity:    room.Capacity,
		Description: room.Description,
		Color:       room.Color,
	}
}

func toUserPayload(user records.User) userPayload {
	return userPayload{
		ID:           user.ID,
		Name:         user.Name,
		AvatarURL:    user.AvatarURL,
		Admin:        user.Admin,
		Availability: toAvailabilityPayload(user.Availability),
	}
}

func toAvailabilityPayload(profile availability.Profile) availabilityPayload {
	payload := availabilityPayload{}
	if len(profile.Weekly) > 0 {
		payload.Weekly = make(map[string]windowPayload, len(profile.Weekly))
		for weekday, window := range profile.Weekly {
			payload.Weekly[weekday.String()] = windowPayload{
				Active: window.Active,
				Start:  window.Start.String(),
				End:    window.End.String(),
			}
		}
	}
	for date, exc := range profile.Exceptions {
		payload.Exceptions = append(payload.Exceptions, exceptionPayload{
			Date:      date.String(),
			Available: exc.Available,
			Reason:    exc.Reason,
		})
	}
	return payload
}

func (p availabilityPayload) toProfile() (availability.Profile, *scheduling.ValidationError) {
	profile := availability.Profile{}
	fieldErrors := map[string]string{}

	if len(p.Weekly) > 0 {
		profile.Weekly = make(availability.WeeklySchedule, len(p.Weekly))
		for key, window := range p.Weekly {
			weekday, ok := timegrid.ParseWeekday(key)
			if !ok {
				fieldErrors["weekly"] = "unknown weekday " + key
				continue
			}
			start, err := timegrid.ParseTimeOfDay(window.Start)
			if err != nil {
				fieldErrors["weekly."+key] = "expected HH:MM"
				continue
			}
			end, err := timegrid.ParseTimeOfDay(window.End)
			if err != nil {
				fieldErrors["weekly."+key] = "expected HH:MM"
				continue
			}
			profile.Weekly[weekday] = availability.Window{Active: window.Active, Start: start, End: end}
		}
	}

	// Later entries win, enforcing one exception per date.
	for _, exc := range p.Exceptions {
		date, err := timegrid.ParseDate(exc.Date)
		if err != nil {
			fieldErrors["exceptions"] = "expected YYYY-MM-DD dates"
			continue
		}
		profile.SetException(date, availability.Exception{Available: exc.Available, Reason: exc.Reason})
	}

	if len(fieldErrors) > 0 {
		return availability.Profile{}, &scheduling.ValidationError{FieldErrors: fieldErrors}
	}
	return profile, nil
}

func toWeekPayload(view scheduling.WeekView) weekPayload {
	payload := weekPayload{
		WeekStart: view.WeekStart.String(),
		Days:      make([]dayPayload, 0, len(view.Days)),
		Rooms:     make([]roomPayload, 0, len(view.Rooms)),
		Users:     make([]userPayload, 0, len(view.Users)),
	}
	for _, day := range view.Days {
		dp := dayPayload{
			Date:       day.Date.String(),
			Meetings:   make([]meetingPayload, 0, len(day.Meetings)),
			Placements: make(map[string]placementPayload, len(day.Placements)),
		}
		for _, meeting := range day.Meetings {
			dp.Meetings = append(dp.Meetings, toMeetingPayload(meeting))
		}
		for id, placement := range day.Placements {
			dp.Placements[id] = placementPayload{Column: placement.Column, TotalColumns: placement.TotalColumns}
		}
		payload.Days = append(payload.Days, dp)
	}
	for _, room := range view.Rooms {
		payload.Rooms = append(payload.Rooms, toRoomPayload(room))
	}
	for _, user := range view.Users {
		payload.Users = append(payload.Users, toUserPayload(user))
	}
	return payload
}
