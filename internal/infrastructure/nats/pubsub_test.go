package nats

import "testing"

func TestSubjectPrefix(t *testing.T) {
	tests := []struct {
		cluster, app, want string
	}{
		{"eu", "app1", "showroom.eu.app1."},
		{"eu.west", "a*b", "showroom.eu_west.a_b."},
	}
	for _, tt := range tests {
		if got := SubjectPrefix(tt.cluster, tt.app); got != tt.want {
			t.Errorf("SubjectPrefix(%q, %q) = %q, want %q", tt.cluster, tt.app, got, tt.want)
		}
	}
}

func TestSubjectKeepsChannelAsSingleToken(t *testing.T) {
	p := &PubSub{prefix: SubjectPrefix("eu", "app")}
	if got := p.subject("chat-1.2"); got != "showroom.eu.app.chat-1_2" {
		t.Errorf("unexpected subject %q", got)
	}
}
