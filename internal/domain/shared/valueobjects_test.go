package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMeetingValidate(t *testing.T) {
	tests := []struct {
		name    string
		meeting Meeting
		code    string
	}{
		{"online video", Meeting{Location: LocationOnline, Type: MeetingVideo, Link: "https://meet.example.com/x"}, ""},
		{"online audio without link", Meeting{Location: LocationOnline, Type: MeetingAudio}, ""},
		{"in person with venue", Meeting{Location: LocationInPerson, Type: MeetingInPerson, Venue: "Room 4"}, ""},
		{"unknown location", Meeting{Location: "MOON", Type: MeetingVideo}, "INVALID_LOCATION"},
		{"unknown type", Meeting{Location: LocationOnline, Type: "CHAT"}, "INVALID_MEETING_TYPE"},
		{"in person over video", Meeting{Location: LocationInPerson, Type: MeetingVideo, Venue: "Room 4"}, "INCOMPATIBLE_MEETING_TYPE"},
		{"online in person", Meeting{Location: LocationOnline, Type: MeetingInPerson}, "INCOMPATIBLE_MEETING_TYPE"},
		{"missing venue", Meeting{Location: LocationInPerson, Type: MeetingInPerson, Venue: "  "}, "VENUE_REQUIRED"},
		{"bad link scheme", Meeting{Location: LocationOnline, Type: MeetingVideo, Link: "ftp://files.example.com"}, "INVALID_MEETING_LINK"},
		{"link without host", Meeting{Location: LocationOnline, Type: MeetingVideo, Link: "https://"}, "INVALID_MEETING_LINK"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.meeting.Validate()
			if tt.code == "" {
				assert.NoError(t, err)
				return
			}
			assert.True(t, IsValidation(err))
			assert.Equal(t, tt.code, CodeOf(err))
		})
	}
}

func TestActorValidateValueObjects(t *testing.T) {
	assert.NoError(t, NewActor("st1", RoleStudent).Validate())
	assert.Equal(t, "UNAUTHENTICATED", CodeOf(Actor{Role: RoleStudent}.Validate()))
	assert.Equal(t, "UNAUTHENTICATED", CodeOf(NewActor("st1", "ADMIN").Validate()))

	role, ok := ParseRole("ALUMNI")
	assert.True(t, ok)
	assert.Equal(t, RoleAlumni, role)
	assert.True(t, NewActor("m1", role).IsAlumni())
}
