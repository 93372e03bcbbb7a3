package dhcp

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLine(t *testing.T) {
	h, err := ParseLine("A1:B2:C3:D4:E5:F6   192.168.0.254    Amazon Echo Spot Kitchen")
	require.NoError(t, err)
	assert.Equal(t, Host{Name: "amazon-echo-spot-kitchen", MAC: "a1:b2:c3:d4:e5:f6", IP: "192.168.0.254"}, h)
}

func TestParseLine_Malformed(t *testing.T) {
	for _, line := range []string{
		"A1:B2:C3:D4:E5:F6 192.168.0.254",
		"not-a-mac 192.168.0.254 printer",
		"A1:B2:C3:D4:E5:F6 999.1.1.1 printer",
	} {
		t.Run(line, func(t *testing.T) {
			_, err := ParseLine(line)
			require.ErrorIs(t, err, ErrMalformedLine)
		})
	}
}

func TestStanza(t *testing.T) {
	h := Host{Name: "amazon-echo-spot-kitchen", MAC: "a1:b2:c3:d4:e5:f6", IP: "192.168.0.254"}
	want := "host amazon-echo-spot-kitchen {\n" +
		"    hardware ethernet a1:b2:c3:d4:e5:f6;\n" +
		"    fixed-address 192.168.0.254;\n" +
		"    ddns-hostname amazon-echo-spot-kitchen;\n" +
		"}\n"
	assert.Equal(t, want, h.Stanza())
}

func TestParseAndRender(t *testing.T) {
	input := strings.Join([]string{
		"# kitchen",
		"A1:B2:C3:D4:E5:F6 192.168.0.254 Echo",
		"",
		"00:11:22:33:44:55 10.0.0.2 NAS Box",
	}, "\n")

	hosts, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, hosts, 2)
	assert.Equal(t, "nas-box", hosts[1].Name)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, hosts))
	assert.Equal(t, hosts[0].Stanza()+"\n"+hosts[1].Stanza()+"\n", buf.String())
}

func TestParse_ReportsLineNumber(t *testing.T) {
	_, err := Parse(strings.NewReader("00:11:22:33:44:55 10.0.0.2 ok\n\nbroken\n"))
	require.ErrorIs(t, err, ErrMalformedLine)
	assert.Contains(t, err.Error(), "line 3")
}
