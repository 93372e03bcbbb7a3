package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAgeCommand(t *testing.T) {
	isolate(t)

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"age", "2023-01-01"}, "Yes, older than 3 months"},
		{[]string{"age", "2023-05-01", "12:00"}, "No, not older than 3 months"},
		{[]string{"age", "-m", "1", "2023-04-30T23:00:00Z"}, "Yes, older than 1 month"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			out, _, err := runCLI(t, tt.args...)
			require.NoError(t, err)
			assert.Contains(t, out, tt.want)
		})
	}
}

func TestAgeCommand_Unparsable(t *testing.T) {
	isolate(t)
	_, _, err := runCLI(t, "age", "yesterday")
	require.Error(t, err)
	assert.Equal(t, ExitConfig, ExitCode(err))
}

func TestConvertCommand(t *testing.T) {
	home := isolate(t)
	in := writeFile(t, home, "in.yaml", "name: app\nports:\n  - 80\n  - 443\n")

	t.Run("prints json by default", func(t *testing.T) {
		out, _, err := runCLI(t, "convert", "--infile", in)
		require.NoError(t, err)
		assert.JSONEq(t, `{"name": "app", "ports": [80, 443]}`, out)
	})

	t.Run("outfile extension wins", func(t *testing.T) {
		dst := filepath.Join(home, "out.yml")
		_, _, err := runCLI(t, "convert", "--infile", in, "--outfile", dst, "-f", "json")
		require.NoError(t, err)

		data, err := os.ReadFile(dst)
		require.NoError(t, err)
		assert.Equal(t, "name: app\nports:\n  - 80\n  - 443\n", string(data))
	})

	t.Run("missing infile flag", func(t *testing.T) {
		_, _, err := runCLI(t, "convert")
		require.Error(t, err)
		assert.Equal(t, ExitConfig, ExitCode(err))
	})

	t.Run("unknown input extension", func(t *testing.T) {
		txt := writeFile(t, home, "in.txt", "a: b\n")
		_, _, err := runCLI(t, "convert", "--infile", txt)
		require.Error(t, err)
		assert.Equal(t, ExitPersistence, ExitCode(err))
	})
}

func TestDHCPCommand(t *testing.T) {
	home := isolate(t)
	in := writeFile(t, home, "hosts.txt", "A1:B2:C3:D4:E5:F6   192.168.0.254    Amazon Echo Spot Kitchen\n")

	out, _, err := runCLI(t, "dhcp", in)
	require.NoError(t, err)
	assert.Equal(t, "host amazon-echo-spot-kitchen {\n"+
		"    hardware ethernet a1:b2:c3:d4:e5:f6;\n"+
		"    fixed-address 192.168.0.254;\n"+
		"    ddns-hostname amazon-echo-spot-kitchen;\n"+
		"}\n\n", out)
}

func TestColumnsCommand(t *testing.T) {
	home := isolate(t)
	in := writeFile(t, home, "table.txt", "+--+--+\n| a | bbb |\n+--+--+\n| cccc | d |\n+--+--+\n")

	out, _, err := runCLI(t, "columns", "--widths", in)
	require.NoError(t, err)
	assert.Equal(t, "Column max lengths:\n  Column 0: 4\n  Column 1: 3\n", out)

	out, _, err = runCLI(t, "columns", in)
	require.NoError(t, err)
	assert.Contains(t, out, "| cccc | d   |")
}
