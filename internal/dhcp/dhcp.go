// Package dhcp turns "MAC IP description" inventory lines into ISC dhcpd host
// declarations.
package dhcp

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"net/netip"
	"strings"
)

// ErrMalformedLine indicates an input line that is not "MAC IP name...".
var ErrMalformedLine = errors.New("malformed host line")

// Host is one fixed-address reservation.
type Host struct {
	// Name is the description lowercased with words joined by "-".
	Name string
	MAC  string
	IP   string
}

// ParseLine reads "A1:B2:C3:D4:E5:F6 192.168.0.254 Amazon Echo Spot".
func ParseLine(line string) (Host, error) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return Host{}, fmt.Errorf("%w: want MAC, IP and a name, got %q", ErrMalformedLine, line)
	}
	if _, err := net.ParseMAC(fields[0]); err != nil {
		return Host{}, fmt.Errorf("%w: %w", ErrMalformedLine, err)
	}
	if _, err := netip.ParseAddr(fields[1]); err != nil {
		return Host{}, fmt.Errorf("%w: %w", ErrMalformedLine, err)
	}

	return Host{
		Name: strings.ToLower(strings.Join(fields[2:], "-")),
		MAC:  strings.ToLower(fields[0]),
		IP:   fields[1],
	}, nil
}

// Parse reads hosts line by line. Blank lines and "#" comments are skipped.
func Parse(r io.Reader) ([]Host, error) {
	var hosts []Host
	scanner := bufio.NewScanner(r)
	n := 0
	for scanner.Scan() {
		n++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		h, err := ParseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
		hosts = append(hosts, h)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read hosts: %w", err)
	}
	return hosts, nil
}

// Stanza renders the dhcpd host block.
func (h Host) Stanza() string {
	var b strings.Builder
	fmt.Fprintf(&b, "host %s {\n", h.Name)
	fmt.Fprintf(&b, "    hardware ethernet %s;\n", h.MAC)
	fmt.Fprintf(&b, "    fixed-address %s;\n", h.IP)
	fmt.Fprintf(&b, "    ddns-hostname %s;\n", h.Name)
	b.WriteString("}\n")
	return b.String()
}

// Render writes every stanza followed by a blank line.
func Render(w io.Writer, hosts []Host) error {
	for _, h := range hosts {
		if _, err := io.WriteString(w, h.Stanza()+"\n"); err != nil {
			return err
		}
	}
	return nil
}
