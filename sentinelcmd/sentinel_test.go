package sentinelcmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSentinelValidate(t *testing.T) {
	cases := []struct {
		name    string
		s       Sentinel
		wantErr bool
	}{
		{"ok", Sentinel{C: "version", V: "v1.2.3.abc"}, false},
		{"empty command", Sentinel{C: "", V: "longenoughvalue"}, true},
		{"value too short", Sentinel{C: "version", V: "abc"}, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.s.Validate()
			if c.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
