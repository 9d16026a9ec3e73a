package domain

import "testing"

// FuzzParseUserID checks that parsing never panics on arbitrary input and
// that every accepted value round-trips through String unchanged.
func FuzzParseUserID(f *testing.F) {
	f.Add("")
	f.Add("550e8400-e29b-41d4-a716-446655440000")
	f.Add("00000000-0000-0000-0000-000000000000")
	f.Add("not-a-uuid")
	f.Add("550e8400-e29b-41d4-a716-446655440000\x00suffix")

	f.Fuzz(func(t *testing.T, input string) {
		userID, err := ParseUserID(input)
		if err != nil {
			return
		}
		if userID.IsNil() {
			t.Error("parser accepted a nil UUID")
		}
		roundTrip, err := ParseUserID(userID.String())
		if err != nil {
			t.Errorf("valid ID failed round-trip: %v", err)
		}
		if roundTrip != userID {
			t.Error("round-trip changed ID value")
		}
	})
}
