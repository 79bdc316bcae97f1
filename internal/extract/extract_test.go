package extract_test

import (
	"testing"

	"github.com/raysh454/safeecho/internal/extract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlainText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "email body",
			in: `<html><head><title>Notice</title><style>p{color:red}</style></head>
<body><p>URGENT:   Your bank account</p>
<p>has been <b>compromised</b>.</p><script>track()</script></body></html>`,
			want: "URGENT: Your bank account has been compromised.",
		},
		{
			name: "fragment",
			in:   `Click <a href="http://bit.ly/scam">here</a> now`,
			want: "Click here now",
		},
		{
			name: "plain text passes through",
			in:   "just words",
			want: "just words",
		},
		{
			name: "entities decoded",
			in:   "Tom &amp; Jerry &lt;3",
			want: "Tom & Jerry <3",
		},
		{
			name: "empty",
			in:   "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := extract.PlainText(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
