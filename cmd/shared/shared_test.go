package shared

import "testing"

func TestResolveKey_Passthrough(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value string
		want  string
	}{
		{name: "empty disables auth", value: "", want: ""},
		{name: "literal key", value: "hunter2", want: "hunter2"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := ResolveKey(tc.value)
			if err != nil {
				t.Fatalf("ResolveKey(%q) error = %v", tc.value, err)
			}
			if got != tc.want {
				t.Errorf("ResolveKey(%q) = %q, want %q", tc.value, got, tc.want)
			}
		})
	}
}
