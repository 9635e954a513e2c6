package selfexpand

import "testing"

func TestExpandLineCallForm(t *testing.T) {
	tests := []struct {
		name string
		line string
		want string
	}{
		{
			name: "SELF_set rewrites to qualified call with self first",
			line: "  SELF_set_count(5);",
			want: "  Counter.set_count(self, 5);",
		},
		{
			name: "SELF_add rewrites",
			line: "  SELF_add_count(1);",
			want: "  Counter.add_count(self, 1);",
		},
		{
			name: "bare SELF_ref field rewrites to a self-bound call",
			line: "  var p = SELF_ref_next;",
			want: "  var p = Counter.next(self);",
		},
		{
			name: "bare SELF_notify field rewrites to a self-bound call",
			line: "  SELF_notify_count;",
			want: "  Counter.count(self);",
		},
		{
			name: "bare SELF field with no prefix rewrites",
			line: "  return SELF_count;",
			want: "  return Counter.count(self);",
		},
		{
			name: "a field name that merely shares a prefix is not mis-stripped",
			line: "  SELF_refresh;",
			want: "  Counter.refresh(self);",
		},
		{
			name: "an identifier merely ending in SELF_set_count is left alone",
			line: "  outerSELF_set_count(1);",
			want: "  outerSELF_set_count(1);",
		},
		{
			name: "an identifier merely ending in a bare SELF_ field is left alone",
			line: "  var x = innerSELF_count;",
			want: "  var x = innerSELF_count;",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := expandLine("Counter", tt.line)
			if got != tt.want {
				t.Errorf("expandLine(%q) = %q, want %q", tt.line, got, tt.want)
			}
		})
	}
}
