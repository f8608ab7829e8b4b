package settings

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func provisioned() map[string]string {
	return map[string]string{
		KeyWiFiSSID: "lab-net",
		KeyWiFiPass: "hunter22",
		KeyMQTTHost: "broker.lan",
	}
}

func TestNew_DefaultsInOrder(t *testing.T) {
	s, err := New(nil)
	require.NoError(t, err)

	want := []string{
		"WIFISSID", "WIFIPASS", "MQTTHOST", "MQTTPORT", "MQTTSECUR", "MQTTDEVID",
		"MQTTCLNT", "MQTTPASS", "MQTTKPALIV", "MQTTDEVPATH", "SNTPHOSTS",
		"UTCOFFSET", "SNTPPOLL", "TIME24",
	}
	fields := s.Fields()
	require.Len(t, fields, len(want))
	for i, f := range fields {
		assert.Equal(t, want[i], f.Key)
		assert.LessOrEqual(t, len(f.Key), MaxKeyLen)
	}

	assert.Equal(t, "-28800", s.Get(KeyUTCOffset))
	assert.Equal(t, "0", s.Get(KeyTime24))
	assert.Equal(t, "3600000", s.Get(KeySNTPPoll))
	assert.Equal(t, "", s.Get("NOPE"))
}

func TestNew_OverridesDoNotLeakIntoDefaults(t *testing.T) {
	s, err := New(map[string]string{KeyUTCOffset: "3600"})
	require.NoError(t, err)
	assert.Equal(t, "3600", s.Get(KeyUTCOffset))

	fresh, err := New(nil)
	require.NoError(t, err)
	assert.Equal(t, "-28800", fresh.Get(KeyUTCOffset))
}

func TestNew_RejectsBadOverrides(t *testing.T) {
	tests := []struct {
		name      string
		overrides map[string]string
		wantErr   error
	}{
		{"unknown key", map[string]string{"COLOR": "red"}, ErrUnknownField},
		{"value too long", map[string]string{KeyWiFiPass: strings.Repeat("x", MaxValueLen+1)}, ErrFieldBounds},
		{"padded offset", map[string]string{KeyUTCOffset: " -18000"}, ErrInvalidValue},
		{"offset not a number", map[string]string{KeyUTCOffset: "abc"}, ErrInvalidValue},
		{"time24 not a number", map[string]string{KeyTime24: "yes"}, ErrInvalidValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.overrides)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNew_AcceptsIntegerStoredFields(t *testing.T) {
	s, err := New(map[string]string{KeyUTCOffset: "-18000", KeyTime24: "1"})
	require.NoError(t, err)
	assert.Equal(t, "-18000", s.Get(KeyUTCOffset))
	assert.Equal(t, "1", s.Get(KeyTime24))
}

func TestNewField_Bounds(t *testing.T) {
	_, err := NewField("", false, "")
	assert.ErrorIs(t, err, ErrFieldBounds)

	_, err = NewField(strings.Repeat("K", MaxKeyLen+1), false, "")
	assert.ErrorIs(t, err, ErrFieldBounds)

	f, err := NewField("OK", true, strings.Repeat("v", MaxValueLen))
	require.NoError(t, err)
	assert.True(t, f.Required)
}

func TestValidate_EveryRequiredField(t *testing.T) {
	s, err := New(nil)
	require.NoError(t, err)

	for _, f := range s.Fields() {
		if !f.Required {
			continue
		}
		t.Run(f.Key, func(t *testing.T) {
			overrides := provisioned()
			overrides[f.Key] = ""
			s, err := New(overrides)
			require.NoError(t, err)

			err = s.Validate()
			require.ErrorIs(t, err, ErrConfigMissingRequired)
			assert.Contains(t, err.Error(), f.Key)
		})
	}

	full, err := New(provisioned())
	require.NoError(t, err)
	assert.NoError(t, full.Validate())
}

func TestValidate_WhitespaceIsEmpty(t *testing.T) {
	overrides := provisioned()
	overrides[KeyMQTTHost] = "   "
	s, err := New(overrides)
	require.NoError(t, err)

	assert.ErrorIs(t, s.Validate(), ErrConfigMissingRequired)
}

func TestSNTPServers(t *testing.T) {
	tests := []struct {
		hosts string
		want  []string
	}{
		{"pool.ntp.org", []string{"pool.ntp.org"}},
		{"a.example, b.example,,c.example", []string{"a.example", "b.example", "c.example"}},
		{"1,2,3,4,5,6", []string{"1", "2", "3", "4"}},
		{"", nil},
	}
	for _, tt := range tests {
		t.Run(tt.hosts, func(t *testing.T) {
			s, err := New(map[string]string{KeySNTPHosts: tt.hosts})
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.SNTPServers())
		})
	}
}

func TestSNTPPollInterval(t *testing.T) {
	s, err := New(nil)
	require.NoError(t, err)
	d, err := s.SNTPPollInterval()
	require.NoError(t, err)
	assert.Equal(t, time.Hour, d)

	s, err = New(map[string]string{KeySNTPPoll: "soon"})
	require.NoError(t, err)
	_, err = s.SNTPPollInterval()
	assert.ErrorIs(t, err, ErrInvalidValue)

	s, err = New(map[string]string{KeySNTPPoll: "0"})
	require.NoError(t, err)
	_, err = s.SNTPPollInterval()
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestTopics(t *testing.T) {
	s, err := New(map[string]string{KeyMQTTDevPath: "/home/lab/clock2/"})
	require.NoError(t, err)

	assert.Equal(t, "/home/lab/clock2", s.DevicePath())
	assert.Equal(t, "/home/lab/clock2/command", s.CommandTopic())
	assert.Equal(t, "/home/lab/clock2/status", s.StatusTopic())
}

func TestBroker(t *testing.T) {
	overrides := provisioned()
	overrides[KeyMQTTSecure] = "1"
	overrides[KeyMQTTUser] = "clock"
	s, err := New(overrides)
	require.NoError(t, err)

	b, err := s.Broker()
	require.NoError(t, err)
	assert.Equal(t, Broker{
		Host:      "broker.lan",
		Port:      1880,
		TLS:       true,
		DeviceID:  "dev_id",
		Username:  "clock",
		KeepAlive: 120 * time.Second,
	}, b)

	s, err = New(map[string]string{KeyMQTTPort: "mqtt"})
	require.NoError(t, err)
	_, err = s.Broker()
	assert.ErrorIs(t, err, ErrInvalidValue)
}
