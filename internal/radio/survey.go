package radio

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"sort"
	"strconv"
	"strings"
)

// BSS is one access point seen in a scan.
type BSS struct {
	SSID    string `json:"ssid"`
	Channel int    `json:"channel"`
	RSSI    int    `json:"rssi"`
}

// Surveyor scans for access points with `iw`.
type Surveyor struct {
	binary string
	iface  string
	run    func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// NewSurveyor creates a surveyor for iface using the iw binary.
func NewSurveyor(binary, iface string) *Surveyor {
	return &Surveyor{binary: binary, iface: iface, run: runCommand}
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec // Binary comes from validated config
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(stderr.String()))
	}
	return out, nil
}

// Scan runs a scan and returns the access points, strongest first.
func (s *Surveyor) Scan(ctx context.Context) ([]BSS, error) {
	out, err := s.run(ctx, s.binary, "dev", s.iface, "scan")
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", s.iface, err)
	}
	list, err := ParseScan(bytes.NewReader(out))
	if err != nil {
		return nil, err
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].RSSI > list[j].RSSI })
	return list, nil
}

// ParseScan reads `iw dev <if> scan` output.
func ParseScan(r io.Reader) ([]BSS, error) {
	var (
		list []BSS
		cur  *BSS
		freq int
	)
	flush := func() {
		if cur == nil {
			return
		}
		if cur.Channel == 0 {
			cur.Channel = freqToChannel(freq)
		}
		list = append(list, *cur)
	}

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(line, "BSS ") {
			flush()
			cur, freq = &BSS{}, 0
			continue
		}
		if cur == nil {
			continue
		}

		field := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(field, "SSID: "):
			cur.SSID = strings.TrimPrefix(field, "SSID: ")
		case strings.HasPrefix(field, "signal: "):
			v := strings.TrimSuffix(strings.TrimPrefix(field, "signal: "), " dBm")
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				cur.RSSI = int(f)
			}
		case strings.HasPrefix(field, "freq: "):
			if f, err := strconv.ParseFloat(strings.TrimPrefix(field, "freq: "), 64); err == nil {
				freq = int(f)
			}
		case strings.HasPrefix(field, "DS Parameter set: channel "):
			cur.Channel, _ = strconv.Atoi(strings.TrimPrefix(field, "DS Parameter set: channel "))
		case strings.HasPrefix(field, "* primary channel: "):
			cur.Channel, _ = strconv.Atoi(strings.TrimPrefix(field, "* primary channel: "))
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading scan output: %w", err)
	}
	flush()
	return list, nil
}

// freqToChannel converts a centre frequency in MHz to a channel number.
func freqToChannel(mhz int) int {
	switch {
	case mhz == 2484:
		return 14
	case mhz >= 2412 && mhz <= 2472:
		return (mhz - 2407) / 5
	case mhz >= 5955 && mhz <= 7115:
		return (mhz - 5950) / 5
	case mhz >= 5000 && mhz < 5955:
		return (mhz - 5000) / 5
	default:
		return 0
	}
}

// FormatSurvey renders a scan for the status topic, one line per AP.
func FormatSurvey(list []BSS) string {
	var b strings.Builder
	for _, bss := range list {
		fmt.Fprintf(&b, "AP: %s, CHAN: %d, RSSI: %d\r\n", bss.SSID, bss.Channel, bss.RSSI)
	}
	return b.String()
}
