package records

import (
	"sort"

	"github.com/example/team-portal/internal/availability"
	"github.com/example/team-portal/internal/store"
	"github.com/example/team-portal/internal/timegrid"
)

// User is a portal account with its embedded availability profile.
type User struct {
	ID           string
	Name         string
	Email        string
	AvatarURL    string
	Active       bool
	Admin        bool
	PasswordHash string
	Availability availability.Profile
}

// AsParticipant converts the user into a meeting participant reference.
func (u User) AsParticipant() Participant {
	return Participant{ID: u.ID, Name: u.Name, AvatarURL: u.AvatarURL}
}

// EncodeFields serializes the user for the record store.
func (u User) EncodeFields() store.Fields {
	return store.Fields{
		"name":                u.Name,
		"email":               u.Email,
		"avatar_url":          u.AvatarURL,
		"active":              u.Active,
		"is_admin":            u.Admin,
		"password_hash":       u.PasswordHash,
		"weekly_availability": encodeWeekly(u.Availability.Weekly),
		"exceptions":          encodeExceptions(u.Availability.Exceptions),
	}
}

// EncodeAvailabilityFields serializes only the availability portion, for
// profile updates that must not touch credentials or account flags.
func EncodeAvailabilityFields(profile availability.Profile) store.Fields {
	return store.Fields{
		"weekly_availability": encodeWeekly(profile.Weekly),
		"exceptions":          encodeExceptions(profile.Exceptions),
	}
}

// DecodeUser rebuilds a user from a stored document.
func DecodeUser(doc store.Doc) User {
	return User{
		ID:           doc.ID,
		Name:         stringField(doc.Fields, "name"),
		Email:        stringField(doc.Fields, "email"),
		AvatarURL:    stringField(doc.Fields, "avatar_url"),
		Active:       boolField(doc.Fields, "active", true),
		Admin:        boolField(doc.Fields, "is_admin", false),
		PasswordHash: stringField(doc.Fields, "password_hash"),
		Availability: availability.Profile{
			Weekly:     decodeWeekly(doc.Fields["weekly_availability"]),
			Exceptions: decodeExceptions(doc.Fields["exceptions"]),
		},
	}
}

// DecodeUsers decodes a snapshot of users.
func DecodeUsers(snapshot store.Snapshot) []User {
	users := make([]User, 0, len(snapshot))
	for _, doc := range snapshot {
		users = append(users, DecodeUser(doc))
	}
	return users
}

// Profiles indexes users' availability by user id, the shape the conflict
// checker consumes.
func Profiles(users []User) map[string]availability.Profile {
	profiles := make(map[string]availability.Profile, len(users))
	for _, u := range users {
		profiles[u.ID] = u.Availability
	}
	return profiles
}

func encodeWeekly(weekly availability.WeeklySchedule) any {
	if len(weekly) == 0 {
		return nil
	}
	out := make(map[string]any, len(weekly))
	for weekday, window := range weekly {
		out[weekday.String()] = map[string]any{
			"active": window.Active,
			"start":  window.Start.String(),
			"end":    window.End.String(),
		}
	}
	return out
}

func decodeWeekly(raw any) availability.WeeklySchedule {
	entries, ok := raw.(map[string]any)
	if !ok || len(entries) == 0 {
		return nil
	}
	weekly := make(availability.WeeklySchedule, len(entries))
	for key, value := range entries {
		weekday, ok := timegrid.ParseWeekday(key)
		if !ok {
			continue
		}
		entry, ok := value.(map[string]any)
		if !ok {
			continue
		}
		start, err := timegrid.ParseTimeOfDay(stringField(entry, "start"))
		if err != nil {
			continue
		}
		end, err := timegrid.ParseTimeOfDay(stringField(entry, "end"))
		if err != nil {
			continue
		}
		weekly[weekday] = availability.Window{
			Active: boolField(entry, "active", false),
			Start:  start,
			End:    end,
		}
	}
	if len(weekly) == 0 {
		return nil
	}
	return weekly
}

// encodeExceptions stores exceptions as a list of dated entries. Decoding
// keeps the last entry per date, enforcing the one-exception-per-date
// invariant on read as well as on write.
func encodeExceptions(exceptions map[timegrid.Date]availability.Exception) any {
	if len(exceptions) == 0 {
		return []any{}
	}
	dates := make([]timegrid.Date, 0, len(exceptions))
	for date := range exceptions {
		dates = append(dates, date)
	}
	// Stable storage order keeps diffs readable in the store console.
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	out := make([]any, 0, len(dates))
	for _, date := range dates {
		exc := exceptions[date]
		out = append(out, map[string]any{
			"date":      date.String(),
			"available": exc.Available,
			"reason":    exc.Reason,
		})
	}
	return out
}

func decodeExceptions(raw any) map[timegrid.Date]availability.Exception {
	entries, ok := raw.([]any)
	if !ok || len(entries) == 0 {
		return nil
	}
	exceptions := make(map[timegrid.Date]availability.Exception, len(entries))
	for _, item := range entries {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		date, err := timegrid.ParseDate(stringField(entry, "date"))
		if err != nil {
			continue
		}
		exceptions[date] = availability.Exception{
			Available: boolField(entry, "available", false),
			Reason:    stringField(entry, "reason"),
		}
	}
	if len(exceptions) == 0 {
		return nil
	}
	return exceptions
}
