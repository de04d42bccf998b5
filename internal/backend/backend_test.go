package backend

import "testing"

func TestTaskModeStringKnownAndUnknown(t *testing.T) {
	cases := []struct {
		m    TaskMode
		want string
	}{
		{Sync, "SYNC"},
		{Local, "LOCAL"},
		{LocalControl, "LOCAL_CONTROL"},
		{Control, "CONTROL"},
	}
	for _, c := range cases {
		if got := c.m.String(); got != c.want {
			t.Errorf("%d.String() = %q, want %q", int(c.m), got, c.want)
		}
	}
	if got := TaskMode(999).String(); got != "?" {
		t.Errorf("TaskMode(999).String() = %q, want \"?\"", got)
	}
}
