package keys

import (
	"strings"
	"testing"

	"github.com/kiranshivaraju/keyconsole/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaskSecret(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"short", "short"},
		{"12345678", "12345678"},
		{"123456789", "1234****6789"},
		{"sk-abcdefghijklmnop", "sk-a****mnop"},
		{"密钥密钥密钥密钥密钥", "密钥密钥****密钥密钥"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MaskSecret(tt.in), "MaskSecret(%q)", tt.in)
	}
}

func TestMaskSecret_KeepsEnds(t *testing.T) {
	for n := 9; n <= 64; n++ {
		secret := "abcd" + strings.Repeat("x", n-8) + "wxyz"
		got := MaskSecret(secret)
		assert.True(t, strings.HasPrefix(got, secret[:4]))
		assert.True(t, strings.HasSuffix(got, secret[n-4:]))
		assert.Len(t, got, 12)
	}
}

func TestEditSession_ToggleRecomputesFromTrueSecret(t *testing.T) {
	tests := []struct {
		name   string
		secret string
	}{
		{"long", "sk-0123456789abcdef"},
		{"short", "abc123"},
		// masks to "sk-0****cdef", the same output as the long secret
		{"collides with another mask", "sk-0ZZZZZcdef"},
		{"already looks masked", "sk-0****cdef"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			es := newEditSession(models.APIKey{ID: "k1", KeyName: "ci", APIKey: tt.secret, IsActive: true})

			assert.Equal(t, Hidden, es.Reveal)
			assert.Equal(t, MaskSecret(tt.secret), es.Display())
			assert.Equal(t, "show", es.ToggleLabelKey())

			es.Reveal = Revealed
			assert.Equal(t, tt.secret, es.Display(), "revealed shows the true secret, not a mask")
			assert.Equal(t, "hide", es.ToggleLabelKey())

			es.Reveal = Hidden
			assert.Equal(t, MaskSecret(tt.secret), es.Display())

			es.Reveal = Revealed
			assert.Equal(t, tt.secret, es.Display(), "a second reveal still shows the true secret")
		})
	}
}

func TestEditSession_SharedMaskKeepsSecretsApart(t *testing.T) {
	a := newEditSession(models.APIKey{ID: "a", APIKey: "sk-0123456789abcdef"})
	b := newEditSession(models.APIKey{ID: "b", APIKey: "sk-0ZZZZZcdef"})
	require.Equal(t, a.Display(), b.Display(), "both secrets share one masked form")

	a.Reveal, b.Reveal = Revealed, Revealed
	assert.Equal(t, "sk-0123456789abcdef", a.Display())
	assert.Equal(t, "sk-0ZZZZZcdef", b.Display())

	a.Reveal, b.Reveal = Hidden, Hidden
	assert.Equal(t, "sk-0****cdef", a.Display())
	assert.Equal(t, "sk-0****cdef", b.Display())
}

func TestReveal_String(t *testing.T) {
	assert.Equal(t, "hidden", Hidden.String())
	assert.Equal(t, "revealed", Revealed.String())
}
